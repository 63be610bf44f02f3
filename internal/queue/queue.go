// Package queue defines the transport abstraction carrying price
// observations from the ingest API to the evaluation processor. It allows
// swapping implementations (Kafka, in-memory) without changing business
// logic.
package queue

import (
	"context"
)

// Message is one observation envelope on the wire.
type Message struct {
	// Key is the partition key. Observations for the same city and mode
	// share a key so they are evaluated in arrival order.
	Key []byte

	// Value is the serialized observation payload.
	Value []byte

	// Headers contains optional metadata.
	Headers map[string]string
}

// Producer publishes observation messages. Implementations must be safe for
// concurrent use.
type Producer interface {
	// Publish sends a message. Messages with the same key are delivered
	// to the consumer in publish order.
	Publish(ctx context.Context, msg *Message) error

	// Close releases any resources held by the producer.
	Close() error
}

// MessageHandler processes one consumed message. Returning an error marks
// the message as failed; whether it is retried is implementation-defined.
type MessageHandler func(ctx context.Context, msg *Message) error

// Consumer delivers observation messages to a handler.
type Consumer interface {
	// Start consumes messages and calls the handler for each one. Blocks
	// until the context is canceled or an unrecoverable error occurs.
	Start(ctx context.Context, handler MessageHandler) error

	// Close stops consuming and releases any resources.
	Close() error
}
