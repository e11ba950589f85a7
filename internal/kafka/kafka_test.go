package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/refset/returns-assistant/internal/returns"
)

type fakeWriter struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

type fakeReader struct {
	queue     []kafka.Message
	committed []kafka.Message
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	if len(r.queue) == 0 {
		return kafka.Message{}, io.EOF
	}
	m := r.queue[0]
	r.queue = r.queue[1:]
	return m, nil
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *fakeReader) Close() error { return nil }

func newTestProducer() (*Producer, *fakeWriter, *fakeWriter, *fakeWriter) {
	d, e, r := &fakeWriter{}, &fakeWriter{}, &fakeWriter{}
	return &Producer{decisionsWriter: d, escalationsWriter: e, repliesWriter: r}, d, e, r
}

func TestProducer(t *testing.T) {
	ctx := context.Background()

	t.Run("Should key decisions by claim id", func(t *testing.T) {
		p, decisions, _, _ := newTestProducer()
		err := p.PublishDecision(ctx, Decision{
			ClaimID:      "ret_1",
			SellerID:     "seller_1",
			Verdict:      &returns.EligibilityVerdict{IsEligible: true},
			RefundAmount: 84.99,
		})
		require.NoError(t, err)
		require.Len(t, decisions.msgs, 1)
		assert.Equal(t, "ret_1", string(decisions.msgs[0].Key))

		var got Decision
		require.NoError(t, json.Unmarshal(decisions.msgs[0].Value, &got))
		assert.True(t, got.Verdict.IsEligible)
		assert.Equal(t, 84.99, got.RefundAmount)
	})

	t.Run("Should route replies and escalations to their own topics", func(t *testing.T) {
		p, decisions, escalations, replies := newTestProducer()
		require.NoError(t, p.PublishReply(ctx, ChatReply{ConversationID: "conv_1", Text: "hi"}))
		require.NoError(t, p.PublishEscalation(ctx, Escalation{ConversationID: "conv_1", Reason: "High frustration detected (90.0%)"}))
		assert.Empty(t, decisions.msgs)
		assert.Len(t, replies.msgs, 1)
		require.Len(t, escalations.msgs, 1)
		assert.Equal(t, "conv_1", string(escalations.msgs[0].Key))
	})

	t.Run("Should wrap write failures", func(t *testing.T) {
		p, _, _, replies := newTestProducer()
		replies.err = errors.New("broker down")
		err := p.PublishReply(ctx, ChatReply{ConversationID: "conv_9"})
		assert.ErrorContains(t, err, "write conv_9: broker down")
	})

	t.Run("Should close every writer", func(t *testing.T) {
		p, d, e, r := newTestProducer()
		require.NoError(t, p.Close())
		assert.True(t, d.closed && e.closed && r.closed)
	})
}

func TestConsumer(t *testing.T) {
	ctx := context.Background()
	sent := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	body, err := json.Marshal(ChatMessage{ConversationID: "conv_1", Text: "where is my refund?", SentAt: sent})
	require.NoError(t, err)

	t.Run("Should decode and commit messages", func(t *testing.T) {
		r := &fakeReader{queue: []kafka.Message{{Key: []byte("conv_1"), Value: body, Offset: 7}}}
		c := &Consumer{reader: r}

		f, err := c.Fetch(ctx)
		require.NoError(t, err)
		assert.Equal(t, "where is my refund?", f.Message.Text)
		assert.Equal(t, sent, f.Message.SentAt)

		require.NoError(t, c.Commit(ctx, f))
		require.Len(t, r.committed, 1)
		assert.Equal(t, int64(7), r.committed[0].Offset)
	})

	t.Run("Should fall back to the record key for the conversation id", func(t *testing.T) {
		r := &fakeReader{queue: []kafka.Message{{Key: []byte("conv_2"), Value: []byte(`{"text":"hello"}`)}}}
		f, err := (&Consumer{reader: r}).Fetch(ctx)
		require.NoError(t, err)
		assert.Equal(t, "conv_2", f.Message.ConversationID)
	})

	t.Run("Should derive a stable message id from the record position", func(t *testing.T) {
		r := &fakeReader{queue: []kafka.Message{
			{Topic: "returns-messages", Partition: 2, Offset: 41, Value: body},
			{Topic: "returns-messages", Partition: 2, Offset: 42, Value: []byte(`{"message_id":"msg_9","text":"hi"}`)},
		}}
		c := &Consumer{reader: r}

		f, err := c.Fetch(ctx)
		require.NoError(t, err)
		assert.Equal(t, "returns-messages/2/41", f.Message.MessageID)

		f, err = c.Fetch(ctx)
		require.NoError(t, err)
		assert.Equal(t, "msg_9", f.Message.MessageID)
	})

	t.Run("Should return undecodable records for committing", func(t *testing.T) {
		r := &fakeReader{queue: []kafka.Message{{Value: []byte("garbage"), Offset: 3}}}
		c := &Consumer{reader: r}
		f, err := c.Fetch(ctx)
		assert.ErrorIs(t, err, ErrMalformedMessage)
		assert.ErrorContains(t, err, "offset 3")
		require.NoError(t, c.Commit(ctx, f))
		assert.Len(t, r.committed, 1)
	})

	t.Run("Should pass through reader errors", func(t *testing.T) {
		_, err := (&Consumer{reader: &fakeReader{}}).Fetch(ctx)
		assert.ErrorIs(t, err, io.EOF)
	})
}
