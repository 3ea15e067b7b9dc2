package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapAndHasCode(t *testing.T) {
	t.Run("wrap nil returns nil", func(t *testing.T) {
		assert.NoError(t, Wrap(nil, CodeInternal, "ignored"))
	})

	t.Run("code survives fmt wrapping", func(t *testing.T) {
		base := New(CodeRateLimited, "slow down")
		wrapped := fmt.Errorf("redeem: %w", base)
		assert.True(t, HasCode(wrapped, CodeRateLimited))
		assert.True(t, Is(wrapped, CodeRateLimited))
	})

	t.Run("inner code is found through outer domain error", func(t *testing.T) {
		inner := New(CodeExpired, "gone")
		outer := Wrap(inner, CodeInternal, "outer")
		assert.True(t, HasCode(outer, CodeExpired))
		assert.False(t, Is(outer, CodeExpired), "Is only inspects the outermost code")
	})

	t.Run("plain errors carry no code", func(t *testing.T) {
		assert.False(t, HasCode(errors.New("plain"), CodeInternal))
		assert.Nil(t, From(errors.New("plain")))
	})

	t.Run("unwrap exposes the cause", func(t *testing.T) {
		cause := errors.New("bcrypt: bad hash")
		err := Wrap(cause, CodeInternal, "PIN verification failed")
		require.ErrorIs(t, err, cause)
		assert.Equal(t, "PIN verification failed", From(err).Message)
	})
}
