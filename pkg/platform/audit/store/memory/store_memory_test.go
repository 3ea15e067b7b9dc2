package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "pinguard/pkg/platform/audit"
)

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()

	for _, e := range []audit.Event{
		{Subject: "deal:1:customer:a", Action: string(audit.EventPINRedemptionFailed)},
		{Subject: "vendor:9", Action: string(audit.EventPINIssued)},
		{Subject: "deal:1:customer:a", Action: string(audit.EventPINRedeemed)},
	} {
		require.NoError(t, s.Append(ctx, e))
	}

	t.Run("list by subject keeps append order", func(t *testing.T) {
		got, err := s.ListBySubject(ctx, "deal:1:customer:a")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, string(audit.EventPINRedeemed), got[1].Action)
	})

	t.Run("recent returns the tail", func(t *testing.T) {
		got, err := s.ListRecent(ctx, 2)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "vendor:9", got[0].Subject)

		all, err := s.ListRecent(ctx, 100)
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})

	t.Run("returned slices are copies", func(t *testing.T) {
		got, _ := s.ListBySubject(ctx, "vendor:9")
		got[0].Action = "mutated"
		again, _ := s.ListBySubject(ctx, "vendor:9")
		assert.Equal(t, string(audit.EventPINIssued), again[0].Action)
	})

	t.Run("clear", func(t *testing.T) {
		s.Clear()
		got, err := s.ListRecent(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}
