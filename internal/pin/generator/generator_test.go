package generator

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pinguard/internal/pin/format"
)

type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	clear(p)
	return len(p), nil
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("entropy exhausted")
}

func TestGenerate(t *testing.T) {
	t.Run("successive outputs all pass format validation", func(t *testing.T) {
		for range 10000 {
			pin, err := Generate()
			require.NoError(t, err)
			require.True(t, format.IsValid(pin), "generated weak PIN %q", pin)
		}
	})

	t.Run("outputs vary", func(t *testing.T) {
		seen := make(map[string]struct{})
		for range 200 {
			pin, err := Generate()
			require.NoError(t, err)
			seen[pin] = struct{}{}
		}
		assert.Greater(t, len(seen), 100)
	})
}

func TestGenerateFallback(t *testing.T) {
	t.Run("degenerate source still yields a valid PIN", func(t *testing.T) {
		g := New(WithRandom(zeroReader{}), WithMaxAttempts(5))
		pin, err := g.Generate()
		require.NoError(t, err)
		assert.Equal(t, fallbackPIN, pin)
		assert.True(t, format.IsValid(pin))
	})

	t.Run("second phase prefixes a one", func(t *testing.T) {
		// First phase draws 0000 once; second phase draws 5,0,5 after the prefix.
		src := bytes.NewReader([]byte{0, 0, 0, 0, 5, 0, 5})
		g := New(WithRandom(src), WithMaxAttempts(1))
		pin, err := g.Generate()
		require.NoError(t, err)
		assert.Equal(t, "1505", pin)
	})

	t.Run("random source errors are returned", func(t *testing.T) {
		g := New(WithRandom(failingReader{}))
		_, err := g.Generate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "entropy exhausted")
	})
}
