// Package kafka delivers outbox messages to a Kafka topic.
package kafka

import (
	"context"
	"fmt"

	"github.com/Shopify/sarama"

	"laluna/internal/infrastructure/storage/postgres"
)

const (
	headerEventType     = "event_type"
	headerAggregateType = "aggregate_type"
	headerMessageID     = "message_id"
)

var _ postgres.OutboxHandler = (*Producer)(nil)

// Producer publishes outbox messages synchronously so the relay only marks
// a message published after the broker acknowledged it.
type Producer struct {
	topic string
	conn  sarama.SyncProducer
}

// NewConfig returns the producer settings used by the worker.
func NewConfig() *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.ClientID = "laluna-worker"
	cfg.Producer.Return.Successes = true
	cfg.Producer.Return.Errors = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Idempotent = true
	cfg.Net.MaxOpenRequests = 1
	cfg.Version = sarama.V2_1_0_0
	return cfg
}

// NewProducer connects to the brokers.
func NewProducer(brokers []string, topic string) (*Producer, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka: no brokers configured")
	}
	conn, err := sarama.NewSyncProducer(brokers, NewConfig())
	if err != nil {
		return nil, fmt.Errorf("kafka: connect: %w", err)
	}
	return NewProducerFrom(conn, topic), nil
}

// NewProducerFrom wraps an existing SyncProducer.
func NewProducerFrom(conn sarama.SyncProducer, topic string) *Producer {
	return &Producer{topic: topic, conn: conn}
}

// Handle sends one outbox message. Messages of one aggregate share a key and
// therefore a partition, which keeps their order.
func (p *Producer) Handle(ctx context.Context, msg *postgres.OutboxMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, _, err := p.conn.SendMessage(p.toProducerMessage(msg)); err != nil {
		return fmt.Errorf("kafka: send %s: %w", msg.EventType, err)
	}
	return nil
}

func (p *Producer) toProducerMessage(msg *postgres.OutboxMessage) *sarama.ProducerMessage {
	return &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(msg.AggregateID.String()),
		Value: sarama.ByteEncoder(msg.Payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte(headerEventType), Value: []byte(msg.EventType)},
			{Key: []byte(headerAggregateType), Value: []byte(msg.AggregateType)},
			{Key: []byte(headerMessageID), Value: []byte(msg.ID.String())},
		},
		Timestamp: msg.CreatedAt,
	}
}

// Close flushes and closes the connection.
func (p *Producer) Close() error {
	return p.conn.Close()
}
