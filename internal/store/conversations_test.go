package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/refset/returns-assistant/internal/returns"
)

func setupConversationStore(t *testing.T, ttl time.Duration) (*ConversationStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewConversationStore(client, ttl), mr
}

func TestConversationStore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)

	t.Run("Should round-trip conversation state", func(t *testing.T) {
		s, _ := setupConversationStore(t, time.Hour)
		state := returns.NewConversation("conv_1", now)
		state.SellerID = "seller_1"
		state.Messages = []returns.Message{{Role: returns.RoleUser, Content: "hi"}}
		state.MessageCount = 1
		state.ClaimID = "ret_1"
		state.LastMessageID = "returns-messages/0/41"

		require.NoError(t, s.Save(ctx, state))
		got, err := s.Get(ctx, "conv_1")
		require.NoError(t, err)
		assert.Equal(t, state, got)
	})

	t.Run("Should leave attached policy and claim out of the stored state", func(t *testing.T) {
		s, mr := setupConversationStore(t, time.Hour)
		state := returns.NewConversation("conv_4", now)
		state.Policy = samplePolicy()
		state.Claim = &returns.ReturnClaim{ClaimID: "ret_4"}
		state.ClaimID = "ret_4"

		require.NoError(t, s.Save(ctx, state))
		raw, err := mr.Get(conversationKey("conv_4"))
		require.NoError(t, err)
		assert.NotContains(t, raw, "return_window_days")

		got, err := s.Get(ctx, "conv_4")
		require.NoError(t, err)
		assert.Nil(t, got.Policy)
		assert.Nil(t, got.Claim)
		assert.Equal(t, "ret_4", got.ClaimID)
	})

	t.Run("Should report missing conversations", func(t *testing.T) {
		s, _ := setupConversationStore(t, time.Hour)
		_, err := s.Get(ctx, "nope")
		assert.ErrorIs(t, err, ErrConversationNotFound)
	})

	t.Run("Should expire idle conversations", func(t *testing.T) {
		s, mr := setupConversationStore(t, 30*time.Minute)
		require.NoError(t, s.Save(ctx, returns.NewConversation("conv_2", now)))
		assert.Equal(t, 30*time.Minute, mr.TTL(conversationKey("conv_2")))

		mr.FastForward(31 * time.Minute)
		_, err := s.Get(ctx, "conv_2")
		assert.ErrorIs(t, err, ErrConversationNotFound)
	})

	t.Run("Should surface corrupt payloads", func(t *testing.T) {
		s, mr := setupConversationStore(t, 0)
		require.NoError(t, mr.Set(conversationKey("bad"), "{not json"))
		_, err := s.Get(ctx, "bad")
		assert.ErrorContains(t, err, "decode conversation bad")
	})
}
