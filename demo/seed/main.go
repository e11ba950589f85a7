// Command seed creates the returns schema and loads demo sellers and claims
// so the assistant has something to poll.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/refset/returns-assistant/internal/claims"
	"github.com/refset/returns-assistant/internal/config"
	"github.com/refset/returns-assistant/internal/logger"
	"github.com/refset/returns-assistant/internal/policy"
	"github.com/refset/returns-assistant/internal/store"
)

const (
	standardPolicy = `You have 30 days to return your purchase. Electronics and home goods
must be unopened or in like-new condition with original packaging.
A 15% restocking fee applies. Refunds are processed within 7 business days.
Replacement is available on request.`

	apparelPolicy = `You have 14 days to return clothing and
footwear in new or unused condition. Store credit only.
Final sale items: swimwear, underwear. Free pickup available.`

	strictPolicy = `Return window of 7 days. Non-returnable items: gift cards, personalized items.
Refunds within 10 business days.`
)

var sellers = []struct {
	ID, Name, Text string
}{
	{"SELLER-001", "Gadget Hub standard", standardPolicy},
	{"SELLER-002", "Urban Threads apparel", apparelPolicy},
	{"SELLER-003", "Hearth and Home", standardPolicy},
	{"SELLER-004", "Custom Prints", strictPolicy},
	{"SELLER-005", "Sneaker Vault", apparelPolicy},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.NewLogger(nil).Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	log := logger.NewLogger(&logger.Config{Level: logger.LogLevel(cfg.LogLevel), Output: os.Stderr})

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.Postgres.DSN)
	if err != nil {
		log.Error("Failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := seed(ctx, log, pool, cfg.Policy.CacheSize, time.Now()); err != nil {
		log.Error("Seed failed", "error", err)
		os.Exit(1)
	}
}

func seed(ctx context.Context, log logger.Logger, db store.DB, cacheSize int, now time.Time) error {
	if _, err := db.Exec(ctx, store.Schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	// Sellers share template texts, so most extractions are cache hits
	cache, err := policy.NewCache(cacheSize)
	if err != nil {
		return err
	}
	policies := store.NewPolicyStore(db)
	for _, s := range sellers {
		p := cache.Parse(s.Text, s.ID, s.Name, now)
		if err := policies.Save(ctx, &p); err != nil {
			return err
		}
		log.Info("Loaded policy", "seller_id", s.ID, "policy_id", p.PolicyID, "window_days", p.ReturnWindowDays)
	}
	log.Info("Extracted seller policies", "sellers", len(sellers), "distinct_texts", cache.Len())

	builder := claims.NewBuilder(func() time.Time { return now })
	source := store.NewClaimSource(db, 0)
	for _, req := range sampleClaims(now) {
		c, err := builder.Build(req)
		if err != nil {
			return fmt.Errorf("build claim for %s: %w", req.CustomerID, err)
		}
		if err := source.Insert(ctx, c); err != nil {
			return err
		}
		log.Info("Loaded claim", "claim_id", c.ClaimID, "seller_id", c.Product.SellerID, "reason", c.Reason)
	}
	return nil
}

func sampleClaims(now time.Time) []claims.Request {
	daysAgo := func(n int) string { return now.AddDate(0, 0, -n).Format(time.DateOnly) }
	return []claims.Request{
		{SellerID: "SELLER-001", CustomerID: "CUST-001", ProductName: "Wireless Headphones", Category: "electronics",
			Price: 199.99, PurchaseDate: daysAgo(9), Condition: "unopened", Reason: "changed_mind"},
		{SellerID: "SELLER-001", CustomerID: "CUST-002", ProductName: "Smart Watch", Category: "electronics",
			Price: 249.00, PurchaseDate: daysAgo(40), Condition: "used", Reason: "not_as_described"},
		{SellerID: "SELLER-002", CustomerID: "CUST-003", ProductName: "Denim Jacket", Category: "clothing",
			Price: 89.50, PurchaseDate: daysAgo(3), Condition: "new", Reason: "too small"},
		{SellerID: "SELLER-003", CustomerID: "CUST-004", ProductName: "Blender", Category: "home",
			Price: 64.00, PurchaseDate: daysAgo(12), Condition: "unopened", Reason: "defective"},
		{SellerID: "SELLER-004", CustomerID: "CUST-005", ProductName: "Engraved Mug", Category: "home",
			Price: 29.99, PurchaseDate: daysAgo(2), Condition: "new", Reason: "damaged-in-transit"},
		{SellerID: "SELLER-005", CustomerID: "CUST-006", ProductName: "Running Shoes", Category: "footwear",
			Price: 1299.00, PurchaseDate: daysAgo(1), Condition: "new", Reason: "changed_mind",
			Description: "Ordered two pairs, returning one"},
	}
}
