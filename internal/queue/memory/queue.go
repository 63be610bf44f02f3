// Package memory provides an in-process implementation of the queue
// interfaces, used for single-node deployments and tests.
package memory

import (
	"context"
	"sync"

	"quantcasa/internal/metrics"
	"quantcasa/internal/queue"
)

// Queue implements both Producer and Consumer over a buffered channel,
// giving simple pub/sub within a process. Safe for concurrent use.
//
// A single channel means a single ordering domain, which trivially satisfies
// the per-key ordering guarantee of the transport contract.
type Queue struct {
	messages chan *queue.Message
	closed   bool
	mu       sync.RWMutex
	wg       sync.WaitGroup
}

// NewQueue creates an in-memory queue with the given buffer size. Publish
// blocks when the buffer is full until space frees up or the context is
// canceled.
func NewQueue(bufferSize int) *Queue {
	return &Queue{
		messages: make(chan *queue.Message, bufferSize),
	}
}

// Publish sends a message to the queue.
func (q *Queue) Publish(ctx context.Context, msg *queue.Message) error {
	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return ErrQueueClosed
	}
	q.mu.RUnlock()

	select {
	case q.messages <- msg:
		metrics.QueueDepth.Set(float64(len(q.messages)))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Start consumes messages and calls the handler for each one. Blocks until
// the context is canceled or the queue is closed. Handler errors are
// swallowed: a bad observation must not stall the ones behind it.
func (q *Queue) Start(ctx context.Context, handler queue.MessageHandler) error {
	q.wg.Add(1)
	defer q.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-q.messages:
			if !ok {
				return nil
			}
			metrics.QueueDepth.Set(float64(len(q.messages)))
			if err := handler(ctx, msg); err != nil {
				continue
			}
		}
	}
}

// Close shuts down the queue, stopping all consumers.
func (q *Queue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}

	q.closed = true
	close(q.messages)
	q.wg.Wait()
	return nil
}

// Len returns the current number of buffered messages. Useful in tests.
func (q *Queue) Len() int {
	return len(q.messages)
}
