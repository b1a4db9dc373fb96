package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/antonkhm/warelog/internal/broker/messages"
	"github.com/stretchr/testify/require"
)

type fakeConsumer struct {
	values [][]byte
}

func (c *fakeConsumer) Consume(ctx context.Context, handler func(key, value []byte) error) error {
	for _, v := range c.values {
		if err := handler(nil, v); err != nil {
			return err
		}
	}
	return errors.New("eof")
}

func signalled(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

func TestFeed_Apply_tableMatch(t *testing.T) {
	f := NewFeed(nil)
	ch, cancel := f.Subscribe("vehicle_locations", "", "")
	defer cancel()

	f.Apply(messages.RowChange{Table: "orders", Op: messages.OpUpdate})
	require.False(t, signalled(ch))

	f.Apply(messages.RowChange{Table: "vehicle_locations", Op: messages.OpUpdate})
	require.True(t, signalled(ch))
}

func TestFeed_Apply_columnFilter(t *testing.T) {
	f := NewFeed(nil)
	ch, cancel := f.Subscribe("orders", "id", "abc123")
	defer cancel()

	f.Apply(messages.RowChange{Table: "orders", Row: json.RawMessage(`{"id":"other"}`)})
	require.False(t, signalled(ch))

	f.Apply(messages.RowChange{Table: "orders", Row: json.RawMessage(`{"id":"abc123"}`)})
	require.True(t, signalled(ch))

	// Повреждённая строка не совпадает с фильтром и не роняет раздачу.
	f.Apply(messages.RowChange{Table: "orders", Row: json.RawMessage(`{broken`)})
	require.False(t, signalled(ch))
}

func TestFeed_Apply_coalesces(t *testing.T) {
	f := NewFeed(nil)
	ch, cancel := f.Subscribe("orders", "", "")
	defer cancel()

	for i := 0; i < 10; i++ {
		f.Apply(messages.RowChange{Table: "orders"})
	}
	require.True(t, signalled(ch))
	require.False(t, signalled(ch))
}

func TestFeed_Unsubscribe_idempotent(t *testing.T) {
	f := NewFeed(nil)
	_, cancel := f.Subscribe("orders", "", "")
	require.Equal(t, 1, f.SubscriberCount())

	cancel()
	cancel()
	require.Zero(t, f.SubscriberCount())
}

func TestFeed_Run_skipsMalformed(t *testing.T) {
	good, err := json.Marshal(messages.RowChange{Table: "orders", At: time.Now().UTC()})
	require.NoError(t, err)

	f := NewFeed(&fakeConsumer{values: [][]byte{[]byte("not json"), good}})
	ch, cancel := f.Subscribe("orders", "", "")
	defer cancel()

	require.Error(t, f.Run(context.Background()))
	require.True(t, signalled(ch))
}
