package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/twmb/franz-go/pkg/kgo"

	"pinguard/internal/pin/generator"
	"pinguard/internal/pin/rotating"
	"pinguard/internal/pin/static"
	"pinguard/internal/pin/throttle"
	"pinguard/internal/platform/config"
	"pinguard/internal/platform/httpserver"
	"pinguard/internal/platform/logger"
	platformmetrics "pinguard/internal/platform/metrics"
	"pinguard/internal/platform/postgres"
	"pinguard/internal/platform/redis"
	"pinguard/internal/redemption/handler"
	redemptionmetrics "pinguard/internal/redemption/metrics"
	"pinguard/internal/redemption/service"
	"pinguard/internal/redemption/store/attempt"
	"pinguard/internal/redemption/store/credential"
	"pinguard/pkg/platform/audit"
	"pinguard/pkg/platform/audit/publisher"
	kafkastore "pinguard/pkg/platform/audit/store/kafka"
	auditmemory "pinguard/pkg/platform/audit/store/memory"
	"pinguard/pkg/platform/middleware/device"
	"pinguard/pkg/platform/middleware/metadata"
	"pinguard/pkg/platform/middleware/request"
	"pinguard/pkg/platform/middleware/requesttime"
)

const (
	auditBufferSize = 1024
	purgeInterval   = time.Hour
)

// main wires dependencies from the environment and runs the HTTP server until
// SIGINT or SIGTERM.
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := openInfra(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer deps.Close()

	m := redemptionmetrics.New()
	credentials, attempts, purgeable := buildStores(deps, log, m)

	auditStore, err := buildAuditStore(deps, cfg)
	if err != nil {
		return err
	}
	auditPublisher := publisher.NewPublisher(auditStore,
		publisher.WithAsyncBuffer(auditBufferSize),
		publisher.WithLogger(log),
	)
	defer auditPublisher.Close()

	pinCfg := cfg.PIN
	svc, err := service.New(credentials, attempts,
		service.WithLogger(log),
		service.WithMetrics(m),
		service.WithAuditPublisher(auditPublisher),
		service.WithHasher(static.New(static.WithConfig(pinCfg.Static), static.WithLogger(log))),
		service.WithRotating(rotating.New(rotating.WithInterval(pinCfg.Rotating.Interval))),
		service.WithThrottle(throttle.New(throttle.WithConfig(pinCfg.Throttle))),
		service.WithGenerator(generator.New()),
	)
	if err != nil {
		return fmt.Errorf("build redemption service: %w", err)
	}

	purger := newAttemptPurger(pinCfg.Throttle.DailyWindow, log, purgeable...)
	go purger.Run(ctx, purgeInterval)

	router := newRouter(log, deps, platformmetrics.New(), handler.New(svc, log))
	srv := httpserver.New(cfg.Addr, router)

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting pinguard", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	log.Info("pinguard stopped")
	return nil
}

func newRouter(log *slog.Logger, deps *infra, httpMetrics *platformmetrics.HTTP, h *handler.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(requesttime.Middleware)
	r.Use(request.RequestID)
	r.Use(metadata.ClientMetadata)
	r.Use(device.Middleware)
	r.Use(chimw.Recoverer)
	r.Use(request.AccessLog(log))
	r.Use(httpMetrics.Middleware)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", deps.healthz)
	h.Register(r)
	return r
}

// infra holds the optional backing services. Any of them may be nil, in which
// case the in-memory equivalent is used.
type infra struct {
	db    *sql.DB
	redis *redis.Client
	kafka *kgo.Client
}

func openInfra(ctx context.Context, cfg *config.Server, log *slog.Logger) (*infra, error) {
	in := &infra{}
	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if db != nil {
		in.db = db
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			in.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		log.Info("postgres connected")
	}

	rc, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		in.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	if rc != nil {
		in.redis = rc
		log.Info("redis connected")
	}

	if len(cfg.Kafka.Brokers) > 0 {
		kc, err := kafkastore.NewClient(cfg.Kafka.Brokers)
		if err != nil {
			in.Close()
			return nil, fmt.Errorf("create kafka client: %w", err)
		}
		in.kafka = kc
		if err := kafkastore.EnsureTopic(ctx, kc, cfg.Kafka.AuditTopic, cfg.Kafka.Partitions, cfg.Kafka.Replication); err != nil {
			in.Close()
			return nil, fmt.Errorf("ensure audit topic: %w", err)
		}
		log.Info("kafka audit sink enabled", "topic", cfg.Kafka.AuditTopic)
	}
	return in, nil
}

func (in *infra) Close() {
	if in.kafka != nil {
		in.kafka.Close()
	}
	if in.redis != nil {
		_ = in.redis.Close()
	}
	if in.db != nil {
		_ = in.db.Close()
	}
}

func (in *infra) healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if in.db != nil {
		if err := in.db.PingContext(ctx); err != nil {
			http.Error(w, "postgres unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	if in.redis != nil {
		if err := in.redis.Health(ctx); err != nil {
			http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// buildStores picks Postgres for credentials when configured. Attempts go to
// Redis, else Postgres, behind a breaker that falls back to process memory.
// The returned purge stores are the attempt stores that need a periodic sweep:
// process memory always, Postgres when it is the primary. Redis trims on write.
func buildStores(in *infra, log *slog.Logger, m *redemptionmetrics.Metrics) (service.CredentialStore, service.AttemptStore, []attemptPurgeStore) {
	var credentials service.CredentialStore = credential.NewInMemoryStore()
	if in.db != nil {
		credentials = credential.NewPostgres(in.db)
	}

	local := attempt.NewInMemoryStore()
	purgeable := []attemptPurgeStore{local}
	var primary attempt.Store
	switch {
	case in.redis != nil:
		primary = attempt.NewRedis(in.redis.Client)
	case in.db != nil:
		pg := attempt.NewPostgres(in.db)
		primary = pg
		purgeable = append(purgeable, pg)
	default:
		return credentials, local, purgeable
	}
	return credentials, attempt.NewFallback(primary, local,
		attempt.WithFallbackLogger(log),
		attempt.WithFallbackMetrics(m),
	), purgeable
}

func buildAuditStore(in *infra, cfg *config.Server) (audit.Store, error) {
	stores := audit.Fanout{auditmemory.NewInMemoryStore()}
	if in.kafka == nil {
		return stores, nil
	}
	ks, err := kafkastore.New(in.kafka, cfg.Kafka.AuditTopic)
	if err != nil {
		return nil, fmt.Errorf("build kafka audit store: %w", err)
	}
	return append(stores, ks), nil
}
