package messagequeue

import (
	"context"
	"sync"
)

// MemoryQueue is an in-process MessageQueue. It is used when no broker URL is
// configured; messages are lost on restart.
type MemoryQueue struct {
	mu     sync.Mutex
	queues map[string]chan []byte
	size   int
	closed bool
}

// NewMemoryQueue creates a MemoryQueue whose queues buffer up to size messages.
func NewMemoryQueue(size int) *MemoryQueue {
	if size <= 0 {
		size = 128
	}
	return &MemoryQueue{queues: make(map[string]chan []byte), size: size}
}

func (q *MemoryQueue) queue(name string) chan []byte {
	q.mu.Lock()
	defer q.mu.Unlock()
	ch, ok := q.queues[name]
	if !ok {
		ch = make(chan []byte, q.size)
		q.queues[name] = ch
	}
	return ch
}

func (q *MemoryQueue) Publish(ctx context.Context, queueName string, body []byte) error {
	q.mu.Lock()
	closed := q.closed
	q.mu.Unlock()
	if closed {
		return ErrClosed
	}
	select {
	case q.queue(queueName) <- append([]byte(nil), body...):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *MemoryQueue) Consume(ctx context.Context, queueName string, handler Handler) error {
	ch := q.queue(queueName)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case body := <-ch:
			if err := handler(ctx, body); err != nil {
				// requeue without blocking the consumer
				select {
				case ch <- body:
				default:
				}
			}
		}
	}
}

func (q *MemoryQueue) Close() error {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	return nil
}
