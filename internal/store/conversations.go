package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/refset/returns-assistant/internal/returns"
)

const conversationKeyPrefix = "returns:conversation:"

// ConversationStore keeps conversation state in Redis. Every save refreshes
// the TTL, so idle conversations expire on their own.
type ConversationStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewConversationStore creates a ConversationStore; a zero ttl keeps
// conversations forever
func NewConversationStore(client redis.Cmdable, ttl time.Duration) *ConversationStore {
	return &ConversationStore{client: client, ttl: ttl}
}

func conversationKey(id string) string {
	return conversationKeyPrefix + id
}

// Get loads a conversation, or ErrConversationNotFound
func (s *ConversationStore) Get(ctx context.Context, id string) (returns.ConversationState, error) {
	data, err := s.client.Get(ctx, conversationKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return returns.ConversationState{}, fmt.Errorf("conversation %s: %w", id, ErrConversationNotFound)
	}
	if err != nil {
		return returns.ConversationState{}, fmt.Errorf("load conversation %s: %w", id, err)
	}
	var state returns.ConversationState
	if err := json.Unmarshal(data, &state); err != nil {
		return returns.ConversationState{}, fmt.Errorf("decode conversation %s: %w", id, err)
	}
	return state, nil
}

// Save writes state under its conversation id
func (s *ConversationStore) Save(ctx context.Context, state returns.ConversationState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode conversation %s: %w", state.ConversationID, err)
	}
	if err := s.client.Set(ctx, conversationKey(state.ConversationID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save conversation %s: %w", state.ConversationID, err)
	}
	return nil
}
