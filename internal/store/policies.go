package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/refset/returns-assistant/internal/returns"
)

// PolicyStore keeps one extracted policy per seller
type PolicyStore struct {
	db DB
}

// NewPolicyStore creates a PolicyStore on db
func NewPolicyStore(db DB) *PolicyStore {
	return &PolicyStore{db: db}
}

// Save upserts p as the active policy of its seller
func (s *PolicyStore) Save(ctx context.Context, p *returns.StructuredPolicy) error {
	if p.SellerID == "" {
		return fmt.Errorf("save policy %s: seller id is empty", p.PolicyID)
	}
	rules, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode policy %s: %w", p.PolicyID, err)
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO seller_policies (seller_id, policy_id, policy_name, policy_text, rules, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (seller_id) DO UPDATE SET
			policy_id = EXCLUDED.policy_id,
			policy_name = EXCLUDED.policy_name,
			policy_text = EXCLUDED.policy_text,
			rules = EXCLUDED.rules,
			created_at = EXCLUDED.created_at`,
		p.SellerID, p.PolicyID, p.PolicyName, p.OriginalText, rules, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("save policy for seller %s: %w", p.SellerID, err)
	}
	return nil
}

// Get returns the active policy of sellerID, or ErrPolicyNotFound
func (s *PolicyStore) Get(ctx context.Context, sellerID string) (*returns.StructuredPolicy, error) {
	var rules []byte
	err := s.db.QueryRow(ctx,
		"SELECT rules FROM seller_policies WHERE seller_id = $1", sellerID).Scan(&rules)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("seller %s: %w", sellerID, ErrPolicyNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load policy for seller %s: %w", sellerID, err)
	}
	var p returns.StructuredPolicy
	if err := json.Unmarshal(rules, &p); err != nil {
		return nil, fmt.Errorf("decode policy for seller %s: %w", sellerID, err)
	}
	return &p, nil
}
