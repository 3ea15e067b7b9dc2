package attempt

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"pinguard/internal/pin/models"
	"pinguard/pkg/platform/tx"
)

// PostgresStore persists attempts in pin_attempts.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, scope string, rec models.AttemptRecord) error {
	id := rec.ID
	if id == "" {
		id = uuid.NewString()
	}
	query := `
		INSERT INTO pin_attempts (id, scope, attempted_at, success, device)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := tx.Or(ctx, s.db).ExecContext(ctx, query, id, scope, rec.AttemptedAt, rec.Success, rec.Device); err != nil {
		return fmt.Errorf("append attempt: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListSince(ctx context.Context, scope string, since time.Time) ([]models.AttemptRecord, error) {
	query := `
		SELECT id, attempted_at, success, device
		FROM pin_attempts
		WHERE scope = $1 AND attempted_at > $2
		ORDER BY attempted_at
	`
	rows, err := tx.Or(ctx, s.db).QueryContext(ctx, query, scope, since)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()

	var out []models.AttemptRecord
	for rows.Next() {
		var rec models.AttemptRecord
		if err := rows.Scan(&rec.ID, &rec.AttemptedAt, &rec.Success, &rec.Device); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attempts: %w", err)
	}
	return out, nil
}

// Purge deletes attempts older than before in batches of batchSize so a
// large backlog never holds long row locks. Each batch selects and deletes in
// one transaction, skipping rows another sweeper has locked. Returns the
// number deleted.
func (s *PostgresStore) Purge(ctx context.Context, before time.Time, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = 1000
	}
	total := 0
	for {
		var ids []string
		err := tx.Run(ctx, s.db, func(ctx context.Context) error {
			var err error
			ids, err = s.expiredIDs(ctx, before, batchSize)
			if err != nil || len(ids) == 0 {
				return err
			}
			res, err := tx.Or(ctx, s.db).ExecContext(ctx,
				`DELETE FROM pin_attempts WHERE id = ANY($1::uuid[])`, pq.Array(ids))
			if err != nil {
				return fmt.Errorf("purge attempts: %w", err)
			}
			n, _ := res.RowsAffected()
			total += int(n)
			return nil
		})
		if err != nil {
			return total, err
		}
		if len(ids) < batchSize {
			return total, nil
		}
	}
}

func (s *PostgresStore) expiredIDs(ctx context.Context, before time.Time, limit int) ([]string, error) {
	rows, err := tx.Or(ctx, s.db).QueryContext(ctx, `
		SELECT id FROM pin_attempts
		WHERE attempted_at < $1
		ORDER BY attempted_at
		LIMIT $2
		FOR UPDATE SKIP LOCKED
	`, before, limit)
	if err != nil {
		return nil, fmt.Errorf("select expired attempts: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan attempt id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
