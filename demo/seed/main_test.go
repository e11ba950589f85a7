package main

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/refset/returns-assistant/internal/logger"
	"github.com/refset/returns-assistant/internal/policy"
)

func anyArgs(n int) []any {
	args := make([]any, n)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

func TestSeed(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("Should create the schema then load every seller and claim", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec("CREATE TABLE IF NOT EXISTS seller_policies").
			WillReturnResult(pgxmock.NewResult("CREATE", 0))
		for _, s := range sellers {
			mock.ExpectExec("INSERT INTO seller_policies").
				WithArgs(s.ID, pgxmock.AnyArg(), s.Name, s.Text, pgxmock.AnyArg(), now).
				WillReturnResult(pgxmock.NewResult("INSERT", 1))
		}
		for _, req := range sampleClaims(now) {
			args := append([]any{pgxmock.AnyArg(), req.CustomerID, req.SellerID}, anyArgs(11)...)
			mock.ExpectExec("INSERT INTO return_claims").
				WithArgs(args...).
				WillReturnResult(pgxmock.NewResult("INSERT", 1))
		}

		require.NoError(t, seed(context.Background(), logger.Discard(), mock, 16, now))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Should stop when the schema cannot be created", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec("CREATE TABLE").WillReturnError(assert.AnError)

		err = seed(context.Background(), logger.Discard(), mock, 16, now)
		assert.ErrorContains(t, err, "create schema")
	})
}

func TestSamplePolicies(t *testing.T) {
	t.Run("Should extract distinct rules per template", func(t *testing.T) {
		std := policy.Extract(standardPolicy)
		assert.Equal(t, 30, std.ReturnWindowDays)
		assert.Equal(t, 15.0, std.RefundDeductionPct)
		assert.True(t, std.SupportsReplacement)

		apparel := policy.Extract(apparelPolicy)
		assert.Equal(t, 14, apparel.ReturnWindowDays)
		assert.True(t, apparel.SupportsPickup)

		strict := policy.Extract(strictPolicy)
		assert.Equal(t, 7, strict.ReturnWindowDays)
		assert.Equal(t, []string{"gift cards", "personalized items"}, strict.Exclusions)
	})
}
