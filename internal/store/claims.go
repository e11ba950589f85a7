package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/refset/returns-assistant/internal/returns"
)

// ClaimSource polls Postgres for claims still waiting on a decision. Polls
// sweep the initiated claims in (created_at, claim_id) order; once a sweep
// reaches the end it starts over, so claims left undecided are retried.
type ClaimSource struct {
	db        DB
	batchSize int
	cursor    claimCursor
}

type claimCursor struct {
	createdAt time.Time
	claimID   string
}

// NewClaimSource creates a ClaimSource returning at most batchSize claims
// per poll
func NewClaimSource(db DB, batchSize int) *ClaimSource {
	return &ClaimSource{
		db:        db,
		batchSize: batchSize,
	}
}

const pendingClaimsSQL = `
	SELECT claim_id, customer_id, seller_id, product_name, category, price,
	       purchase_date, condition, sku, reason, description, created_at
	FROM return_claims
	WHERE status = 'initiated' AND (created_at, claim_id) > ($1, $2)
	ORDER BY created_at, claim_id
	LIMIT $3`

// Poll fetches the next batch of initiated claims after the cursor. A short
// batch ends the sweep and rewinds the cursor.
func (s *ClaimSource) Poll(ctx context.Context) ([]returns.ReturnClaim, error) {
	rows, err := s.db.Query(ctx, pendingClaimsSQL, s.cursor.createdAt, s.cursor.claimID, s.batchSize)
	if err != nil {
		return nil, fmt.Errorf("query pending claims: %w", err)
	}
	defer rows.Close()

	var claims []returns.ReturnClaim
	for rows.Next() {
		var (
			c      returns.ReturnClaim
			reason string
		)
		err := rows.Scan(
			&c.ClaimID, &c.CustomerID, &c.Product.SellerID, &c.Product.Name,
			&c.Product.Category, &c.Product.Price, &c.Product.PurchaseDate,
			&c.Product.Condition, &c.Product.SKU, &reason, &c.Description, &c.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan pending claim: %w", err)
		}
		c.Reason = returns.Reason(reason)
		c.Status = returns.StatusInitiated
		c.RefundStatus = returns.RefundPending
		claims = append(claims, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read pending claims: %w", err)
	}

	if len(claims) < s.batchSize {
		s.cursor = claimCursor{}
	} else {
		last := claims[len(claims)-1]
		s.cursor = claimCursor{createdAt: last.CreatedAt, claimID: last.ClaimID}
	}
	return claims, nil
}

// Decide records the outcome of evaluating claimID
func (s *ClaimSource) Decide(ctx context.Context, claimID string, eligible bool, refund float64, at time.Time) error {
	status, refundStatus := returns.StatusApproved, returns.RefundApproved
	if !eligible {
		status, refundStatus, refund = returns.StatusRejected, returns.RefundRejected, 0
	}
	tag, err := s.db.Exec(ctx, `
		UPDATE return_claims
		SET status = $2, refund_status = $3, refund_amount = $4, decided_at = $5
		WHERE claim_id = $1`,
		claimID, string(status), string(refundStatus), refund, at)
	if err != nil {
		return fmt.Errorf("record decision for claim %s: %w", claimID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("record decision for claim %s: %w", claimID, ErrClaimNotFound)
	}
	return nil
}

// Insert stores a newly built claim
func (s *ClaimSource) Insert(ctx context.Context, c *returns.ReturnClaim) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO return_claims (claim_id, customer_id, seller_id, product_name, category, price,
			purchase_date, condition, sku, reason, description, status, refund_status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		c.ClaimID, c.CustomerID, c.Product.SellerID, c.Product.Name, c.Product.Category, c.Product.Price,
		c.Product.PurchaseDate, c.Product.Condition, c.Product.SKU, string(c.Reason), c.Description,
		string(c.Status), string(c.RefundStatus), c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert claim %s: %w", c.ClaimID, err)
	}
	return nil
}

// Get loads a claim with its tracking fields, or ErrClaimNotFound
func (s *ClaimSource) Get(ctx context.Context, claimID string) (*returns.ReturnClaim, error) {
	var (
		c                      returns.ReturnClaim
		reason, status, refund string
	)
	err := s.db.QueryRow(ctx, `
		SELECT claim_id, customer_id, seller_id, product_name, category, price, purchase_date,
		       condition, sku, reason, description, status, refund_status, refund_amount,
		       label_url, created_at, received_at, refunded_at
		FROM return_claims WHERE claim_id = $1`, claimID).Scan(
		&c.ClaimID, &c.CustomerID, &c.Product.SellerID, &c.Product.Name, &c.Product.Category,
		&c.Product.Price, &c.Product.PurchaseDate, &c.Product.Condition, &c.Product.SKU,
		&reason, &c.Description, &status, &refund, &c.RefundAmount,
		&c.LabelURL, &c.CreatedAt, &c.ReceivedAt, &c.RefundedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("claim %s: %w", claimID, ErrClaimNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load claim %s: %w", claimID, err)
	}
	c.Reason = returns.Reason(reason)
	c.Status = returns.ReturnStatus(status)
	c.RefundStatus = returns.RefundStatus(refund)
	return &c, nil
}
