// Package generator produces random PINs that always pass the format rules.
package generator

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"

	"pinguard/internal/pin/format"
)

const (
	defaultMaxAttempts = 100
	// fallbackPIN is returned only when the random source keeps producing weak
	// PINs through both retry phases.
	fallbackPIN = "1829"
)

var ten = big.NewInt(10)

var defaultGenerator = New()

// Generator draws uniform decimal digits from a cryptographic source.
type Generator struct {
	random      io.Reader
	maxAttempts int
}

type Option func(*Generator)

// WithRandom replaces crypto/rand.Reader, for tests.
func WithRandom(r io.Reader) Option {
	return func(g *Generator) {
		if r != nil {
			g.random = r
		}
	}
}

func WithMaxAttempts(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.maxAttempts = n
		}
	}
}

func New(opts ...Option) *Generator {
	g := &Generator{
		random:      rand.Reader,
		maxAttempts: defaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns a fresh PIN from the default generator.
func Generate() (string, error) {
	return defaultGenerator.Generate()
}

// Generate samples four digits until the format validator accepts them. After
// maxAttempts it switches to "1" followed by three random digits, and after a
// second exhausted round it returns a fixed valid PIN.
func (g *Generator) Generate() (string, error) {
	for range g.maxAttempts {
		pin, err := g.digits(4)
		if err != nil {
			return "", err
		}
		if format.IsValid(pin) {
			return pin, nil
		}
	}

	for range g.maxAttempts {
		tail, err := g.digits(3)
		if err != nil {
			return "", err
		}
		if pin := "1" + tail; format.IsValid(pin) {
			return pin, nil
		}
	}

	return fallbackPIN, nil
}

func (g *Generator) digits(n int) (string, error) {
	buf := make([]byte, n)
	for i := range buf {
		d, err := rand.Int(g.random, ten)
		if err != nil {
			return "", fmt.Errorf("read random digit: %w", err)
		}
		buf[i] = byte('0' + d.Int64())
	}
	return string(buf), nil
}
