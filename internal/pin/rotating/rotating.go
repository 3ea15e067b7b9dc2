// Package rotating derives time-windowed PINs from an entity id and the clock.
//
// Derivation is a pure function of (entity id, window index): any process can
// recompute the same PIN without shared state. The inputs are not secret, so a
// rotating PIN proves presence at the counter, not knowledge of a credential.
package rotating

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/binary"
	"fmt"
	"strconv"
	"time"

	"pinguard/internal/pin/config"
	"pinguard/internal/pin/format"
	"pinguard/internal/pin/models"
)

// Generator computes and verifies rotating PINs.
type Generator struct {
	interval   time.Duration
	maxOffsets int
	clock      func() time.Time
}

type Option func(*Generator)

// WithInterval overrides the rotation interval. Values under a minute are
// ignored; others are truncated to whole minutes so windows match the
// reported RotationInterval.
func WithInterval(d time.Duration) Option {
	return func(g *Generator) {
		if d >= time.Minute {
			g.interval = d.Truncate(time.Minute)
		}
	}
}

// WithMaxOffsets bounds how many suffixed re-derivations are tried before the
// fallback. Negative values are ignored.
func WithMaxOffsets(n int) Option {
	return func(g *Generator) {
		if n >= 0 {
			g.maxOffsets = n
		}
	}
}

func WithClock(clock func() time.Time) Option {
	return func(g *Generator) {
		if clock != nil {
			g.clock = clock
		}
	}
}

func New(opts ...Option) *Generator {
	cfg := config.DefaultConfig().Rotating
	g := &Generator{
		interval:   cfg.Interval,
		maxOffsets: cfg.MaxOffsets,
		clock:      time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Interval returns the rotation interval.
func (g *Generator) Interval() time.Duration {
	return g.interval
}

// Generate returns the PIN for entityID in the current window.
func (g *Generator) Generate(entityID int64) models.RotatingPinResult {
	return g.GenerateAt(entityID, g.clock())
}

// GenerateAt returns the PIN for entityID in the window containing t.
func (g *Generator) GenerateAt(entityID int64, t time.Time) models.RotatingPinResult {
	window := g.WindowIndex(t)
	return models.RotatingPinResult{
		CurrentPin:       g.pinForWindow(entityID, window),
		NextRotationAt:   time.UnixMilli((window + 1) * g.intervalMillis()).UTC(),
		RotationInterval: int(g.interval / time.Minute),
		IsActive:         true,
	}
}

// Verify accepts input if it matches the current or the immediately preceding window.
func (g *Generator) Verify(entityID int64, input string) bool {
	return g.VerifyAt(entityID, input, g.clock())
}

// VerifyAt is Verify evaluated at t. Both windows are always computed and
// compared in constant time.
func (g *Generator) VerifyAt(entityID int64, input string, t time.Time) bool {
	window := g.WindowIndex(t)
	current := g.pinForWindow(entityID, window)
	previous := g.pinForWindow(entityID, window-1)

	in := []byte(input)
	matchCurrent := subtle.ConstantTimeCompare(in, []byte(current))
	matchPrevious := subtle.ConstantTimeCompare(in, []byte(previous))
	return matchCurrent|matchPrevious == 1
}

// WindowIndex returns floor(unixMillis / intervalMillis).
func (g *Generator) WindowIndex(t time.Time) int64 {
	ms := t.UnixMilli()
	w := g.intervalMillis()
	idx := ms / w
	if ms%w != 0 && ms < 0 {
		idx--
	}
	return idx
}

func (g *Generator) intervalMillis() int64 {
	return g.interval.Milliseconds()
}

// pinForWindow hashes "<entity>-<window>"; weak results are re-derived from
// the seed suffixed with 1..maxOffsets so the outcome stays reproducible.
func (g *Generator) pinForWindow(entityID, window int64) string {
	seed := strconv.FormatInt(entityID, 10) + "-" + strconv.FormatInt(window, 10)

	first := derive(seed)
	if pin := fourDigits(first); format.IsValid(pin) {
		return pin
	}
	for offset := 1; offset <= g.maxOffsets; offset++ {
		if pin := fourDigits(derive(seed + strconv.Itoa(offset))); format.IsValid(pin) {
			return pin
		}
	}
	return fallbackPin(first)
}

// fallbackPin is "1" followed by the last three digits of v, stepped forward
// until the result passes the format rules. "1" prefixed to 000..999 always
// contains a valid PIN, e.g. "1023".
func fallbackPin(v uint32) string {
	last := v % 1000
	for i := range uint32(1000) {
		if pin := fmt.Sprintf("1%03d", (last+i)%1000); format.IsValid(pin) {
			return pin
		}
	}
	return "1023"
}

// derive returns the first 8 hex characters of SHA-256(seed) as an integer.
func derive(seed string) uint32 {
	sum := sha256.Sum256([]byte(seed))
	return binary.BigEndian.Uint32(sum[:4])
}

func fourDigits(v uint32) string {
	return fmt.Sprintf("%04d", v%10000)
}
