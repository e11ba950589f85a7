package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/errgroup"

	"github.com/refset/returns-assistant/internal/config"
	"github.com/refset/returns-assistant/internal/dialogue"
	"github.com/refset/returns-assistant/internal/eligibility"
	"github.com/refset/returns-assistant/internal/kafka"
	"github.com/refset/returns-assistant/internal/logger"
	"github.com/refset/returns-assistant/internal/metrics"
	"github.com/refset/returns-assistant/internal/returns"
	"github.com/refset/returns-assistant/internal/store"
)

// PolicyLookup finds the active policy of a seller
type PolicyLookup interface {
	Get(ctx context.Context, sellerID string) (*returns.StructuredPolicy, error)
}

// ClaimQueue yields claims awaiting a decision and records outcomes
type ClaimQueue interface {
	Poll(ctx context.Context) ([]returns.ReturnClaim, error)
	Get(ctx context.Context, claimID string) (*returns.ReturnClaim, error)
	Decide(ctx context.Context, claimID string, eligible bool, refund float64, at time.Time) error
}

// Conversations persists conversation state between turns
type Conversations interface {
	Get(ctx context.Context, id string) (returns.ConversationState, error)
	Save(ctx context.Context, state returns.ConversationState) error
}

// Publisher sends pipeline output downstream
type Publisher interface {
	PublishDecision(ctx context.Context, d kafka.Decision) error
	PublishEscalation(ctx context.Context, e kafka.Escalation) error
	PublishReply(ctx context.Context, r kafka.ChatReply) error
	Close() error
}

// MessageSource yields inbound chat messages
type MessageSource interface {
	Fetch(ctx context.Context) (kafka.Fetched, error)
	Commit(ctx context.Context, f kafka.Fetched) error
	Close() error
}

// Deps are the collaborators a Pipeline runs against
type Deps struct {
	Policies      PolicyLookup
	Claims        ClaimQueue
	Conversations Conversations
	Publisher     Publisher
	Messages      MessageSource
	Metrics       *metrics.Metrics
	Now           func() time.Time
}

// Pipeline evaluates pending return claims and answers customer chat
type Pipeline struct {
	cfg       *config.Config
	log       logger.Logger
	deps      Deps
	evaluator *eligibility.Evaluator
	router    *dialogue.Router
	closers   []func()
}

// NewWithDeps creates a pipeline on explicit collaborators
func NewWithDeps(cfg *config.Config, log logger.Logger, deps Deps) *Pipeline {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}
	evaluator := eligibility.New(eligibility.WithClock(deps.Now))
	return &Pipeline{
		cfg:       cfg,
		log:       log,
		deps:      deps,
		evaluator: evaluator,
		router: dialogue.NewRouter(
			dialogue.WithEscalationThreshold(cfg.Dialogue.EscalationThreshold),
			dialogue.WithEvaluator(evaluator),
			dialogue.WithClock(deps.Now),
		),
	}
}

// New connects to Postgres, Redis and Kafka and creates a pipeline
func New(ctx context.Context, cfg *config.Config, log logger.Logger, m *metrics.Metrics) (*Pipeline, error) {
	pool, err := pgxpool.New(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	p := NewWithDeps(cfg, log, Deps{
		Policies:      store.NewPolicyStore(pool),
		Claims:        store.NewClaimSource(pool, cfg.Pipeline.BatchSize),
		Conversations: store.NewConversationStore(rdb, cfg.Redis.ConversationTTL),
		Publisher: kafka.NewProducer(cfg.Kafka.Brokers, kafka.Topics{
			Decisions:   cfg.Kafka.DecisionsTopic,
			Escalations: cfg.Kafka.EscalationsTopic,
			Replies:     cfg.Kafka.RepliesTopic,
		}),
		Messages: kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.MessagesTopic, cfg.Kafka.ConsumerGroup),
		Metrics:  m,
	})
	p.closers = append(p.closers, pool.Close, func() { _ = rdb.Close() })

	if err := pool.Ping(ctx); err != nil {
		p.release()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := rdb.Ping(ctx).Err(); err != nil {
		p.release()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return p, nil
}

func (p *Pipeline) release() {
	for _, c := range p.closers {
		c()
	}
}

// Run polls claims and serves chat until ctx is cancelled
func (p *Pipeline) Run(ctx context.Context) error {
	p.log.Info("Starting returns pipeline",
		"kafka", p.cfg.Kafka.Brokers,
		"poll_interval", p.cfg.Pipeline.PollInterval,
		"escalation_threshold", p.router.Threshold())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return p.runClaims(gctx) })
	g.Go(func() error { return p.runChat(gctx) })
	err := g.Wait()

	p.log.Info("Shutting down pipeline")
	closeErr := errors.Join(p.deps.Publisher.Close(), p.deps.Messages.Close())
	p.release()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return closeErr
}

func (p *Pipeline) runClaims(ctx context.Context) error {
	ticker := time.NewTicker(p.cfg.Pipeline.PollInterval)
	defer ticker.Stop()

	// Initial poll
	if err := p.PollClaims(ctx); err != nil {
		p.log.Error("Initial poll failed", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := p.PollClaims(ctx); err != nil {
				p.log.Error("Poll failed", "error", err)
			}
		}
	}
}

// runChat handles messages in fetch order. Kafka commits are per partition
// offset, so a message is never skipped: one that still fails after the
// configured retries stops the loop uncommitted and is redelivered to the
// next consumer.
func (p *Pipeline) runChat(ctx context.Context) error {
	for {
		f, err := p.deps.Messages.Fetch(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		switch {
		case errors.Is(err, kafka.ErrMalformedMessage):
			p.log.Warn("Skipping malformed message", "error", err)
		case err != nil:
			return fmt.Errorf("fetch message: %w", err)
		default:
			if err := p.handleWithRetry(ctx, f.Message); err != nil {
				return fmt.Errorf("handle message %s: %w", f.Message.MessageID, err)
			}
		}
		if err := p.deps.Messages.Commit(ctx, f); err != nil {
			p.log.Error("Commit failed", "error", err)
		}
	}
}

func (p *Pipeline) handleWithRetry(ctx context.Context, msg kafka.ChatMessage) error {
	backoff := retry.WithMaxRetries(p.cfg.Pipeline.MessageRetries, retry.NewExponential(p.cfg.Pipeline.RetryBackoff))
	attempt := 0
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if err := p.HandleMessage(ctx, msg); err != nil {
			p.log.Warn("Handle message failed",
				"conversation_id", msg.ConversationID,
				"message_id", msg.MessageID,
				"attempt", attempt,
				"error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
}
