package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "pinguard/pkg/platform/audit"
)

type fakeProducer struct {
	records []*kgo.Record
	err     error
}

func (p *fakeProducer) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	var out kgo.ProduceResults
	for _, r := range rs {
		p.records = append(p.records, r)
		out = append(out, kgo.ProduceResult{Record: r, Err: p.err})
	}
	return out
}

func TestNew(t *testing.T) {
	_, err := New(nil, "pinguard.audit")
	require.Error(t, err)
	_, err = New(&fakeProducer{}, "")
	require.Error(t, err)
}

func TestStore_Append(t *testing.T) {
	t.Run("record is keyed by subject with category headers", func(t *testing.T) {
		p := &fakeProducer{}
		s, err := New(p, "pinguard.audit")
		require.NoError(t, err)

		at := time.Date(2026, 3, 1, 12, 10, 0, 0, time.UTC)
		event := audit.Event{
			Category:  audit.CategorySecurity,
			Timestamp: at,
			Action:    string(audit.EventPINRedemptionThrottled),
			Subject:   "deal:7:customer:c-1",
			DealID:    7,
		}
		require.NoError(t, s.Append(context.Background(), event))

		require.Len(t, p.records, 1)
		rec := p.records[0]
		assert.Equal(t, "pinguard.audit", rec.Topic)
		assert.Equal(t, "deal:7:customer:c-1", string(rec.Key))
		assert.Equal(t, at, rec.Timestamp)
		require.Len(t, rec.Headers, 2)
		assert.Equal(t, "security", string(rec.Headers[0].Value))

		var decoded audit.Event
		require.NoError(t, json.Unmarshal(rec.Value, &decoded))
		assert.Equal(t, event.Action, decoded.Action)
		assert.Equal(t, int64(7), decoded.DealID)
	})

	t.Run("produce failure is returned", func(t *testing.T) {
		s, err := New(&fakeProducer{err: errors.New("NOT_LEADER_FOR_PARTITION")}, "pinguard.audit")
		require.NoError(t, err)

		err = s.Append(context.Background(), audit.Event{Subject: "vendor:1"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "produce audit event")
	})
}
