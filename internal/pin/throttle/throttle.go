// Package throttle decides whether another PIN attempt is allowed given a
// caller-supplied attempt history. It owns no state and fetches nothing; the
// caller sources the history and appends the new attempt afterwards.
package throttle

import (
	"time"

	"pinguard/internal/pin/config"
	"pinguard/internal/pin/models"
)

const (
	MessageHourlyLockout = "Too many failed attempts. Please try again later."
	MessageDailyLimit    = "Daily attempt limit reached. Please try again tomorrow."
)

type Throttle struct {
	cfg   config.ThrottleConfig
	clock func() time.Time
}

type Option func(*Throttle)

func WithConfig(cfg config.ThrottleConfig) Option {
	return func(t *Throttle) {
		t.cfg = cfg
	}
}

func WithClock(clock func() time.Time) Option {
	return func(t *Throttle) {
		if clock != nil {
			t.clock = clock
		}
	}
}

func New(opts ...Option) *Throttle {
	t := &Throttle{
		cfg:   config.DefaultConfig().Throttle,
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Config returns the active policy.
func (t *Throttle) Config() config.ThrottleConfig {
	return t.cfg
}

// Check evaluates attempts against the policy at the current time.
func (t *Throttle) Check(attempts []models.AttemptRecord) models.RateLimitResult {
	return t.CheckAt(attempts, t.clock())
}

// CheckAt evaluates attempts at now. Order of attempts is irrelevant.
//
// The hourly rule denies once the failures inside the trailing hour reach the
// limit; the lockout rolls forward from the oldest of those failures. The daily
// rule counts successes and failures alike.
func (t *Throttle) CheckAt(attempts []models.AttemptRecord, now time.Time) models.RateLimitResult {
	hourAgo := now.Add(-t.cfg.HourlyWindow)
	dayAgo := now.Add(-t.cfg.DailyWindow)

	var (
		failedLastHour int
		oldestFailure  time.Time
		lastDay        int
	)
	for _, a := range attempts {
		if a.AttemptedAt.After(dayAgo) {
			lastDay++
		}
		if a.Success || !a.AttemptedAt.After(hourAgo) {
			continue
		}
		failedLastHour++
		if oldestFailure.IsZero() || a.AttemptedAt.Before(oldestFailure) {
			oldestFailure = a.AttemptedAt
		}
	}

	if failedLastHour >= t.cfg.HourlyFailureLimit {
		next := t.cfg.LockoutEndsAt(oldestFailure)
		return models.RateLimitResult{
			Allowed:       false,
			Message:       MessageHourlyLockout,
			NextAttemptAt: &next,
		}
	}

	if lastDay >= t.cfg.DailyAttemptLimit {
		next := dayAgo.Add(t.cfg.DailyWindow)
		return models.RateLimitResult{
			Allowed:       false,
			Message:       MessageDailyLimit,
			NextAttemptAt: &next,
		}
	}

	return models.RateLimitResult{Allowed: true}
}
