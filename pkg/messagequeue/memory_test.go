package messagequeue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryQueue_PublishConsume(t *testing.T) {
	q := NewMemoryQueue(4)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	require.NoError(t, q.Publish(ctx, "jobs", []byte(`{"n":1}`)))

	got := make(chan []byte, 1)
	go func() {
		_ = q.Consume(ctx, "jobs", func(_ context.Context, body []byte) error {
			got <- body
			return nil
		})
	}()

	select {
	case body := <-got:
		assert.JSONEq(t, `{"n":1}`, string(body))
	case <-ctx.Done():
		t.Fatal("message not delivered")
	}
}

func TestMemoryQueue_ConsumeStopsOnCancel(t *testing.T) {
	q := NewMemoryQueue(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := q.Consume(ctx, "jobs", func(context.Context, []byte) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryQueue_PublishAfterClose(t *testing.T) {
	q := NewMemoryQueue(1)
	require.NoError(t, q.Close())
	assert.ErrorIs(t, q.Publish(context.Background(), "jobs", []byte("x")), ErrClosed)
}
