// Package store persists seller policies, pending return claims and
// conversation state for the returns pipeline.
package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrPolicyNotFound       = errors.New("seller policy not found")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrClaimNotFound        = errors.New("return claim not found")
)

// DB is the subset of pgxpool.Pool the Postgres stores use
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Schema is the DDL the Postgres stores expect
const Schema = `
CREATE TABLE IF NOT EXISTS seller_policies (
	seller_id   TEXT PRIMARY KEY,
	policy_id   TEXT NOT NULL,
	policy_name TEXT NOT NULL,
	policy_text TEXT NOT NULL,
	rules       JSONB NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS return_claims (
	claim_id      TEXT PRIMARY KEY,
	customer_id   TEXT NOT NULL,
	seller_id     TEXT NOT NULL,
	product_name  TEXT NOT NULL,
	category      TEXT NOT NULL,
	price         DOUBLE PRECISION NOT NULL,
	purchase_date TIMESTAMPTZ NOT NULL,
	condition     TEXT NOT NULL,
	sku           TEXT NOT NULL DEFAULT '',
	reason        TEXT NOT NULL,
	description   TEXT NOT NULL DEFAULT '',
	status        TEXT NOT NULL DEFAULT 'initiated',
	refund_status TEXT NOT NULL DEFAULT 'pending',
	refund_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
	label_url     TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMPTZ NOT NULL,
	decided_at    TIMESTAMPTZ,
	received_at   TIMESTAMPTZ,
	refunded_at   TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS return_claims_pending_idx ON return_claims (created_at) WHERE status = 'initiated';
`
