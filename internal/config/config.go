package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Postgres PostgresConfig `yaml:"postgres"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Dialogue DialogueConfig `yaml:"dialogue"`
	Policy   PolicyConfig   `yaml:"policy"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	LogLevel string         `yaml:"log_level"`
	LogJSON  bool           `yaml:"log_json"`
}

type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

type RedisConfig struct {
	Addr            string        `yaml:"addr"`
	Password        string        `yaml:"password"`
	DB              int           `yaml:"db"`
	ConversationTTL time.Duration `yaml:"conversation_ttl"`
}

type KafkaConfig struct {
	Brokers          []string `yaml:"brokers"`
	DecisionsTopic   string   `yaml:"decisions_topic"`
	EscalationsTopic string   `yaml:"escalations_topic"`
	MessagesTopic    string   `yaml:"messages_topic"`
	RepliesTopic     string   `yaml:"replies_topic"`
	ConsumerGroup    string   `yaml:"consumer_group"`
}

type PipelineConfig struct {
	PollInterval time.Duration `yaml:"poll_interval"`
	BatchSize    int           `yaml:"batch_size"`

	// Retries of a failed chat message before the consumer stops
	MessageRetries uint64        `yaml:"message_retries"`
	RetryBackoff   time.Duration `yaml:"retry_backoff"`
}

type DialogueConfig struct {
	EscalationThreshold float64 `yaml:"escalation_threshold"`
}

type PolicyConfig struct {
	CacheSize int `yaml:"cache_size"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns the configuration used when no file or environment
// overrides are present
func Default() *Config {
	return &Config{
		Postgres: PostgresConfig{
			DSN: "postgres://localhost:5432/returns?sslmode=disable",
		},
		Redis: RedisConfig{
			Addr:            "localhost:6379",
			ConversationTTL: 24 * time.Hour,
		},
		Kafka: KafkaConfig{
			Brokers:          []string{"localhost:9092"},
			DecisionsTopic:   "returns-decisions",
			EscalationsTopic: "returns-escalations",
			MessagesTopic:    "returns-messages",
			RepliesTopic:     "returns-replies",
			ConsumerGroup:    "returns-assistant",
		},
		Pipeline: PipelineConfig{
			PollInterval:   10 * time.Second,
			BatchSize:      100,
			MessageRetries: 5,
			RetryBackoff:   200 * time.Millisecond,
		},
		Dialogue: DialogueConfig{
			EscalationThreshold: 0.7,
		},
		Policy: PolicyConfig{
			CacheSize: 256,
		},
		Metrics: MetricsConfig{
			Addr: ":9090",
		},
		LogLevel: "info",
	}
}

// Load reads config.yaml from the working directory
func Load() (*Config, error) {
	return LoadFile("config.yaml")
}

// LoadFile builds the configuration from defaults, the YAML file at path if
// it exists, then environment overrides
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	// Load from YAML if exists
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	// Override from environment
	if v := os.Getenv("RETURNS_POSTGRES_DSN"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("RETURNS_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("RETURNS_ESCALATION_THRESHOLD"); v != "" {
		threshold, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("RETURNS_ESCALATION_THRESHOLD: %w", err)
		}
		cfg.Dialogue.EscalationThreshold = threshold
	}
	if v := os.Getenv("RETURNS_METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once
func (c *Config) Validate() error {
	var errs []error
	if t := c.Dialogue.EscalationThreshold; t < 0 || t > 1 {
		errs = append(errs, fmt.Errorf("dialogue.escalation_threshold must be within [0, 1], got %v", t))
	}
	if c.Pipeline.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("pipeline.poll_interval must be positive, got %s", c.Pipeline.PollInterval))
	}
	if c.Pipeline.BatchSize <= 0 {
		errs = append(errs, fmt.Errorf("pipeline.batch_size must be positive, got %d", c.Pipeline.BatchSize))
	}
	if c.Pipeline.RetryBackoff <= 0 {
		errs = append(errs, fmt.Errorf("pipeline.retry_backoff must be positive, got %s", c.Pipeline.RetryBackoff))
	}
	if c.Policy.CacheSize <= 0 {
		errs = append(errs, fmt.Errorf("policy.cache_size must be positive, got %d", c.Policy.CacheSize))
	}
	if len(c.Kafka.Brokers) == 0 {
		errs = append(errs, errors.New("kafka.brokers must not be empty"))
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log_level must be one of debug, info, warn, error, got %q", c.LogLevel))
	}
	return errors.Join(errs...)
}
