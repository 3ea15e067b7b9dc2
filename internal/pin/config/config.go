// Package config holds the PIN security policy and its defaults.
package config

import "time"

// Config groups the tunables of every PIN component.
type Config struct {
	Format   FormatConfig
	Static   StaticConfig
	Rotating RotatingConfig
	Throttle ThrottleConfig
}

// FormatConfig lists the PINs rejected as too simple regardless of digit diversity.
type FormatConfig struct {
	Length        int
	MinDistinct   int
	MaxRepeatRun  int // runs of this many identical digits or more are weak
	WeakSequences []string
}

// StaticConfig controls adaptive hashing of vendor PINs.
type StaticConfig struct {
	BcryptCost  int
	SaltBytes   int
	TTL         time.Duration
	Concurrency int // 0 means GOMAXPROCS
}

// RotatingConfig controls stateless rotating PIN derivation.
type RotatingConfig struct {
	Interval   time.Duration
	MaxOffsets int
}

// ThrottleConfig controls the hourly failure lockout and the daily attempt ceiling.
type ThrottleConfig struct {
	HourlyWindow       time.Duration
	HourlyFailureLimit int
	LockoutDuration    time.Duration
	DailyWindow        time.Duration
	DailyAttemptLimit  int
}

// DefaultConfig returns the production policy.
func DefaultConfig() *Config {
	return &Config{
		Format: FormatConfig{
			Length:        4,
			MinDistinct:   2,
			MaxRepeatRun:  3,
			WeakSequences: []string{"1234", "4321", "0123", "3210"},
		},
		Static: StaticConfig{
			BcryptCost: 12,
			SaltBytes:  16,
			TTL:        90 * 24 * time.Hour,
		},
		Rotating: RotatingConfig{
			Interval:   30 * time.Minute,
			MaxOffsets: 10,
		},
		Throttle: ThrottleConfig{
			HourlyWindow:       time.Hour,
			HourlyFailureLimit: 5,
			LockoutDuration:    time.Hour,
			DailyWindow:        24 * time.Hour,
			DailyAttemptLimit:  10,
		},
	}
}

// LockoutEndsAt returns when a lockout triggered by a failure at oldestFailure lifts.
func (c ThrottleConfig) LockoutEndsAt(oldestFailure time.Time) time.Time {
	return oldestFailure.Add(c.LockoutDuration)
}

// IntervalMinutes returns the rotation interval in whole minutes.
func (c RotatingConfig) IntervalMinutes() int {
	return int(c.Interval / time.Minute)
}
