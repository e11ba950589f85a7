package store

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/refset/returns-assistant/internal/returns"
)

var claimColumns = []string{
	"claim_id", "customer_id", "seller_id", "product_name", "category", "price",
	"purchase_date", "condition", "sku", "reason", "description", "created_at",
}

func TestClaimSource_Poll(t *testing.T) {
	purchased := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	created := time.Date(2026, 2, 3, 10, 0, 0, 0, time.UTC)

	t.Run("Should return pending claims in creation order", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery("FROM return_claims").
			WithArgs(time.Time{}, "", 10).
			WillReturnRows(mock.NewRows(claimColumns).
				AddRow("ret_1", "cust_1", "seller_1", "Laptop", "electronics", 1299.99, purchased, "unopened", "SKU-1", "changed_mind", "", created).
				AddRow("ret_2", "cust_2", "seller_1", "Mouse", "electronics", 25.0, purchased, "new", "SKU-2", "defective", "clicks", created.Add(time.Minute)))

		claims, err := NewClaimSource(mock, 10).Poll(context.Background())
		require.NoError(t, err)
		require.Len(t, claims, 2)
		assert.Equal(t, "ret_1", claims[0].ClaimID)
		assert.Equal(t, "seller_1", claims[0].Product.SellerID)
		assert.Equal(t, returns.ReasonChangedMind, claims[0].Reason)
		assert.Equal(t, returns.StatusInitiated, claims[0].Status)
		assert.Equal(t, returns.ReasonDefective, claims[1].Reason)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Should poll an undecided claim again on the next sweep", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()
		row := func() *pgxmock.Rows {
			return mock.NewRows(claimColumns).
				AddRow("ret_A", "cust_1", "seller_new", "Lamp", "home", 40.0, purchased, "new", "SKU-1", "other", "", created)
		}

		mock.ExpectQuery("FROM return_claims").WithArgs(time.Time{}, "", 2).WillReturnRows(row())
		mock.ExpectQuery("FROM return_claims").WithArgs(time.Time{}, "", 2).WillReturnRows(row())

		src := NewClaimSource(mock, 2)
		for range 2 {
			claims, err := src.Poll(context.Background())
			require.NoError(t, err)
			require.Len(t, claims, 1)
			assert.Equal(t, "ret_A", claims[0].ClaimID)
		}
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Should page through claims sharing a creation time", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery("FROM return_claims").
			WithArgs(time.Time{}, "", 1).
			WillReturnRows(mock.NewRows(claimColumns).
				AddRow("ret_A", "cust_1", "seller_1", "Lamp", "home", 40.0, purchased, "new", "SKU-1", "other", "", created))
		mock.ExpectQuery("FROM return_claims").
			WithArgs(created, "ret_A", 1).
			WillReturnRows(mock.NewRows(claimColumns).
				AddRow("ret_B", "cust_2", "seller_1", "Rug", "home", 80.0, purchased, "new", "SKU-2", "other", "", created))
		mock.ExpectQuery("FROM return_claims").
			WithArgs(created, "ret_B", 1).
			WillReturnRows(mock.NewRows(claimColumns))
		mock.ExpectQuery("FROM return_claims").
			WithArgs(time.Time{}, "", 1).
			WillReturnRows(mock.NewRows(claimColumns))

		src := NewClaimSource(mock, 1)
		var seen []string
		for range 4 {
			claims, err := src.Poll(context.Background())
			require.NoError(t, err)
			for _, c := range claims {
				seen = append(seen, c.ClaimID)
			}
		}
		assert.Equal(t, []string{"ret_A", "ret_B"}, seen)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestClaimSource_Decide(t *testing.T) {
	at := time.Date(2026, 2, 4, 0, 0, 0, 0, time.UTC)

	t.Run("Should approve eligible claims with their refund", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()
		mock.ExpectExec("UPDATE return_claims").
			WithArgs("ret_1", "approved", "approved", 169.99, at).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		require.NoError(t, NewClaimSource(mock, 1).Decide(context.Background(), "ret_1", true, 169.99, at))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Should reject ineligible claims with no refund", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()
		mock.ExpectExec("UPDATE return_claims").
			WithArgs("ret_2", "rejected", "rejected", 0.0, at).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		require.NoError(t, NewClaimSource(mock, 1).Decide(context.Background(), "ret_2", false, 80, at))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Should report unknown claims", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()
		mock.ExpectExec("UPDATE return_claims").
			WithArgs("ret_x", "approved", "approved", 1.0, at).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err = NewClaimSource(mock, 1).Decide(context.Background(), "ret_x", true, 1, at)
		assert.ErrorIs(t, err, ErrClaimNotFound)
	})
}

func TestClaimSource_InsertAndGet(t *testing.T) {
	created := time.Date(2026, 2, 3, 10, 0, 0, 0, time.UTC)
	purchased := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	claim := &returns.ReturnClaim{
		ClaimID:    "ret_1",
		CustomerID: "cust_1",
		Product: returns.Product{
			Name: "Laptop", Category: "electronics", Price: 1299.99,
			PurchaseDate: purchased, Condition: "unopened", SKU: "SKU-1", SellerID: "seller_1",
		},
		Reason:       returns.ReasonChangedMind,
		Status:       returns.StatusInitiated,
		RefundStatus: returns.RefundPending,
		CreatedAt:    created,
	}

	t.Run("Should insert a built claim", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()
		mock.ExpectExec("INSERT INTO return_claims").
			WithArgs("ret_1", "cust_1", "seller_1", "Laptop", "electronics", 1299.99,
				purchased, "unopened", "SKU-1", "changed_mind", "", "initiated", "pending", created).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		require.NoError(t, NewClaimSource(mock, 1).Insert(context.Background(), claim))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Should load tracking fields", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()
		received := created.Add(48 * time.Hour)
		var notYet *time.Time
		mock.ExpectQuery("WHERE claim_id = \\$1").
			WithArgs("ret_1").
			WillReturnRows(mock.NewRows([]string{
				"claim_id", "customer_id", "seller_id", "product_name", "category", "price", "purchase_date",
				"condition", "sku", "reason", "description", "status", "refund_status", "refund_amount",
				"label_url", "created_at", "received_at", "refunded_at",
			}).AddRow("ret_1", "cust_1", "seller_1", "Laptop", "electronics", 1299.99, purchased,
				"unopened", "SKU-1", "changed_mind", "", "received", "processing", 1104.99,
				"https://labels.example.com/ret_1.pdf", created, &received, notYet))

		got, err := NewClaimSource(mock, 1).Get(context.Background(), "ret_1")
		require.NoError(t, err)
		assert.Equal(t, returns.StatusReceived, got.Status)
		assert.Equal(t, returns.RefundProcessing, got.RefundStatus)
		assert.Equal(t, 1104.99, got.RefundAmount)
		require.NotNil(t, got.ReceivedAt)
		assert.Equal(t, received, *got.ReceivedAt)
		assert.Nil(t, got.RefundedAt)
	})

	t.Run("Should report unknown claims", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()
		mock.ExpectQuery("WHERE claim_id = \\$1").WithArgs("ret_x").WillReturnError(pgx.ErrNoRows)
		_, err = NewClaimSource(mock, 1).Get(context.Background(), "ret_x")
		assert.ErrorIs(t, err, ErrClaimNotFound)
	})
}
