// Package kafka publishes search events to a Kafka topic.
package kafka

import (
	"context"
	"fmt"
	"time"

	skafka "github.com/segmentio/kafka-go"
)

// Writer is the part of *kafka.Writer the publisher uses.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...skafka.Message) error
	Close() error
}

type Config struct {
	Brokers      []string
	Topic        string
	WriteTimeout time.Duration
	// BatchTimeout bounds how long a write waits for more messages before it
	// is flushed. Publish runs on the request path, so it is kept short.
	BatchTimeout time.Duration
}

const defaultBatchTimeout = 10 * time.Millisecond

type Publisher struct {
	writer Writer
}

func NewPublisher(cfg Config) *Publisher {
	timeout := cfg.WriteTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	batchTimeout := cfg.BatchTimeout
	if batchTimeout <= 0 {
		batchTimeout = defaultBatchTimeout
	}
	return NewPublisherWithWriter(&skafka.Writer{
		Addr:                   skafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &skafka.Hash{},
		RequiredAcks:           skafka.RequireOne,
		WriteTimeout:           timeout,
		BatchSize:              1,
		BatchTimeout:           batchTimeout,
		AllowAutoTopicCreation: true,
	})
}

func NewPublisherWithWriter(w Writer) *Publisher {
	return &Publisher{writer: w}
}

// Publish writes one message. Messages with the same key land on the same
// partition.
func (p *Publisher) Publish(ctx context.Context, key string, value []byte) error {
	msg := skafka.Message{Key: []byte(key), Value: value, Time: time.Now()}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka write: %w", err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
