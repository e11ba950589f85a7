package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/segmentio/kafka-go"
)

// ErrMalformedMessage marks records that are not valid chat messages
var ErrMalformedMessage = errors.New("malformed chat message")

// messageReader is the part of kafka.Reader the consumer uses
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer reads inbound chat messages as a member of a consumer group.
// Offsets are committed explicitly once a message has been handled.
type Consumer struct {
	reader messageReader
}

// NewConsumer joins groupID on topic
func NewConsumer(brokers []string, topic, groupID string) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers: brokers,
			Topic:   topic,
			GroupID: groupID,
		}),
	}
}

// Fetched is a decoded message plus the raw record needed to commit it
type Fetched struct {
	Message ChatMessage
	raw     kafka.Message
}

// Fetch blocks until the next message arrives or ctx is done. A record that
// cannot be decoded is returned together with ErrMalformedMessage so it can
// still be committed past.
func (c *Consumer) Fetch(ctx context.Context) (Fetched, error) {
	raw, err := c.reader.FetchMessage(ctx)
	if err != nil {
		return Fetched{}, err
	}
	f := Fetched{raw: raw}
	if err := json.Unmarshal(raw.Value, &f.Message); err != nil {
		return f, fmt.Errorf("%w at offset %d: %w", ErrMalformedMessage, raw.Offset, err)
	}
	if f.Message.ConversationID == "" {
		f.Message.ConversationID = string(raw.Key)
	}
	if f.Message.MessageID == "" {
		f.Message.MessageID = fmt.Sprintf("%s/%d/%d", raw.Topic, raw.Partition, raw.Offset)
	}
	return f, nil
}

// Commit marks f and every earlier record of its partition as handled
func (c *Consumer) Commit(ctx context.Context, f Fetched) error {
	if err := c.reader.CommitMessages(ctx, f.raw); err != nil {
		return fmt.Errorf("commit offset %d: %w", f.raw.Offset, err)
	}
	return nil
}

// Close leaves the consumer group
func (c *Consumer) Close() error {
	return c.reader.Close()
}
