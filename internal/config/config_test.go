package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFile(t *testing.T) {
	t.Run("Should use defaults when the file is missing", func(t *testing.T) {
		cfg, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
		assert.Equal(t, 0.7, cfg.Dialogue.EscalationThreshold)
	})

	t.Run("Should overlay the YAML file on defaults", func(t *testing.T) {
		path := writeConfig(t, `
redis:
  addr: redis:6379
  conversation_ttl: 2h
kafka:
  brokers: [k1:9092, k2:9092]
  replies_topic: chat-replies
pipeline:
  poll_interval: 5s
  retry_backoff: 1s
dialogue:
  escalation_threshold: 0.6
log_json: true
`)
		cfg, err := LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "redis:6379", cfg.Redis.Addr)
		assert.Equal(t, 2*time.Hour, cfg.Redis.ConversationTTL)
		assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
		assert.Equal(t, "chat-replies", cfg.Kafka.RepliesTopic)
		assert.Equal(t, "returns-decisions", cfg.Kafka.DecisionsTopic)
		assert.Equal(t, 5*time.Second, cfg.Pipeline.PollInterval)
		assert.Equal(t, 100, cfg.Pipeline.BatchSize)
		assert.Equal(t, time.Second, cfg.Pipeline.RetryBackoff)
		assert.Equal(t, uint64(5), cfg.Pipeline.MessageRetries)
		assert.Equal(t, 0.6, cfg.Dialogue.EscalationThreshold)
		assert.True(t, cfg.LogJSON)
	})

	t.Run("Should let the environment win over the file", func(t *testing.T) {
		path := writeConfig(t, "log_level: warn\n")
		t.Setenv("LOG_LEVEL", "debug")
		t.Setenv("KAFKA_BROKERS", "a:9092,b:9092")
		t.Setenv("RETURNS_ESCALATION_THRESHOLD", "0.85")
		t.Setenv("RETURNS_POSTGRES_DSN", "postgres://db/returns")
		t.Setenv("RETURNS_REDIS_ADDR", "cache:6379")
		t.Setenv("RETURNS_METRICS_ADDR", ":9100")

		cfg, err := LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
		assert.Equal(t, 0.85, cfg.Dialogue.EscalationThreshold)
		assert.Equal(t, "postgres://db/returns", cfg.Postgres.DSN)
		assert.Equal(t, "cache:6379", cfg.Redis.Addr)
		assert.Equal(t, ":9100", cfg.Metrics.Addr)
	})

	t.Run("Should reject malformed input", func(t *testing.T) {
		_, err := LoadFile(writeConfig(t, "pipeline: [oops"))
		assert.ErrorContains(t, err, "parse")

		t.Setenv("RETURNS_ESCALATION_THRESHOLD", "high")
		_, err = LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.ErrorContains(t, err, "RETURNS_ESCALATION_THRESHOLD")
	})
}

func TestValidate(t *testing.T) {
	t.Run("Should accept the defaults", func(t *testing.T) {
		assert.NoError(t, Default().Validate())
	})

	t.Run("Should accept threshold bounds", func(t *testing.T) {
		cfg := Default()
		cfg.Dialogue.EscalationThreshold = 0
		assert.NoError(t, cfg.Validate())
		cfg.Dialogue.EscalationThreshold = 1
		assert.NoError(t, cfg.Validate())
	})

	t.Run("Should report every invalid field", func(t *testing.T) {
		cfg := Default()
		cfg.Dialogue.EscalationThreshold = 1.5
		cfg.Pipeline.PollInterval = 0
		cfg.Pipeline.BatchSize = -1
		cfg.Pipeline.RetryBackoff = 0
		cfg.Policy.CacheSize = 0
		cfg.Kafka.Brokers = nil
		cfg.LogLevel = "verbose"

		err := cfg.Validate()
		require.Error(t, err)
		for _, field := range []string{
			"dialogue.escalation_threshold",
			"pipeline.poll_interval",
			"pipeline.batch_size",
			"pipeline.retry_backoff",
			"policy.cache_size",
			"kafka.brokers",
			"log_level",
		} {
			assert.ErrorContains(t, err, field)
		}
	})
}
