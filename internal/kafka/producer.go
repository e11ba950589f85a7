package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/segmentio/kafka-go"
)

// messageWriter is the part of kafka.Writer the producer uses
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes pipeline output to Kafka
type Producer struct {
	decisionsWriter   messageWriter
	escalationsWriter messageWriter
	repliesWriter     messageWriter
}

// Topics names the output topics
type Topics struct {
	Decisions   string
	Escalations string
	Replies     string
}

func newWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.Hash{},
	}
}

// NewProducer creates a new Kafka producer. Messages are keyed by claim or
// conversation id and hashed to partitions, so events for one key stay in
// order.
func NewProducer(brokers []string, topics Topics) *Producer {
	return &Producer{
		decisionsWriter:   newWriter(brokers, topics.Decisions),
		escalationsWriter: newWriter(brokers, topics.Escalations),
		repliesWriter:     newWriter(brokers, topics.Replies),
	}
}

func send(ctx context.Context, w messageWriter, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	msg := kafka.Message{
		Key:   []byte(key),
		Value: data,
	}
	if err := w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// PublishDecision sends a claim decision to the decisions topic
func (p *Producer) PublishDecision(ctx context.Context, d Decision) error {
	return send(ctx, p.decisionsWriter, d.ClaimID, d)
}

// PublishEscalation sends a hand-off to the escalations topic
func (p *Producer) PublishEscalation(ctx context.Context, e Escalation) error {
	return send(ctx, p.escalationsWriter, e.ConversationID, e)
}

// PublishReply sends an assistant reply to the replies topic
func (p *Producer) PublishReply(ctx context.Context, r ChatReply) error {
	return send(ctx, p.repliesWriter, r.ConversationID, r)
}

// Close closes the Kafka writers
func (p *Producer) Close() error {
	return errors.Join(
		p.decisionsWriter.Close(),
		p.escalationsWriter.Close(),
		p.repliesWriter.Close(),
	)
}
