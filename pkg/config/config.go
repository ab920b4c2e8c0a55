// Package config loads and validates the indexer configuration from YAML files
// with environment-variable overrides. It provides typed structs for the
// tokenizer, index builds, statistics, outputs and every optional sink.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	apperrors "github.com/Adithya-Monish-Kumar-K/crawl-index/pkg/errors"
)

// Config is the top-level application configuration.
type Config struct {
	Input     string          `yaml:"input"`
	Tokenizer TokenizerConfig `yaml:"tokenizer"`
	Indexer   IndexerConfig   `yaml:"indexer"`
	Stats     StatsConfig     `yaml:"stats"`
	Output    OutputConfig    `yaml:"output"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	SQLite    SQLiteConfig    `yaml:"sqlite"`
	Redis     RedisConfig     `yaml:"redis"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Retry     RetryConfig     `yaml:"retry"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// TokenizerConfig controls how document fields are split into tokens.
type TokenizerConfig struct {
	Lowercase bool     `yaml:"lowercase"`
	Normalize bool     `yaml:"normalize"`
	StopWords []string `yaml:"stopWords"`

	// DefaultStopWords drops the built-in English stop words when StopWords
	// is empty.
	DefaultStopWords bool `yaml:"defaultStopWords"`
	MinLength        int  `yaml:"minLength"`
}

// IndexerConfig lists the fields to index and the index variants built for
// each of them.
type IndexerConfig struct {
	Fields      []string `yaml:"fields"`
	Variants    []string `yaml:"variants"`
	Stemmer     string   `yaml:"stemmer"`
	Parallelism int      `yaml:"parallelism"`
}

// StatsConfig controls corpus statistics. With Extended off only titles are
// aggregated.
type StatsConfig struct {
	Enabled      bool `yaml:"enabled"`
	Extended     bool `yaml:"extended"`
	Distribution bool `yaml:"distribution"`
}

// OutputConfig controls the JSON files written for every build.
type OutputConfig struct {
	Dir    string `yaml:"dir"`
	Indent bool   `yaml:"indent"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Enabled         bool          `yaml:"enabled"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Database        string        `yaml:"database"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslMode"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

// DSN returns a lib/pq-compatible data source name.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// SQLiteConfig points the SQL export at a local SQLite file.
type SQLiteConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// RedisConfig holds Redis connection and caching parameters.
type RedisConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	PoolSize int           `yaml:"poolSize"`
	TTL      time.Duration `yaml:"ttl"`
}

// KafkaConfig holds Kafka broker and topic settings.
type KafkaConfig struct {
	Enabled bool        `yaml:"enabled"`
	Brokers []string    `yaml:"brokers"`
	Topics  KafkaTopics `yaml:"topics"`
}

// KafkaTopics maps logical topic names to their Kafka topic strings.
type KafkaTopics struct {
	IndexComplete string `yaml:"indexComplete"`
}

// RetryConfig is applied to every network sink write.
type RetryConfig struct {
	MaxAttempts  int           `yaml:"maxAttempts"`
	InitialDelay time.Duration `yaml:"initialDelay"`
	MaxDelay     time.Duration `yaml:"maxDelay"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

var (
	knownVariants = map[string]struct{}{
		"non_pos_index":         {},
		"pos_index":             {},
		"stemmed.non_pos_index": {},
		"stemmed.pos_index":     {},
	}
	knownStemmers = map[string]struct{}{
		"porter": {},
		"suffix": {},
	}
)

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides. Missing values keep their defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration used when no file is given: title-only
// statistics and an unstemmed non-positional title index.
func Default() *Config {
	return &Config{
		Input: "crawled_urls.json",
		Indexer: IndexerConfig{
			Fields:      []string{"title"},
			Variants:    []string{"non_pos_index"},
			Stemmer:     "porter",
			Parallelism: 4,
		},
		Stats: StatsConfig{
			Enabled: true,
		},
		Output: OutputConfig{
			Dir: "data/output",
		},
		Postgres: PostgresConfig{
			Host:            "localhost",
			Port:            5432,
			Database:        "crawlindex",
			User:            "crawlindex",
			Password:        "localdev",
			SSLMode:         "disable",
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxLifetime: 5 * time.Minute,
		},
		SQLite: SQLiteConfig{
			Path: "data/output/index.db",
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			PoolSize: 10,
			TTL:      24 * time.Hour,
		},
		Kafka: KafkaConfig{
			Brokers: []string{"localhost:9092"},
			Topics: KafkaTopics{
				IndexComplete: "index.complete",
			},
		},
		Retry: RetryConfig{
			MaxAttempts:  3,
			InitialDelay: 100 * time.Millisecond,
			MaxDelay:     5 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Port:    9090,
		},
	}
}

// Validate rejects variant and stemmer names the indexer does not know and
// fields or variants listed more than once.
func (c *Config) Validate() error {
	if len(c.Indexer.Variants) > 0 && len(c.Indexer.Fields) == 0 {
		return fmt.Errorf("%w: indexer.variants given without indexer.fields", apperrors.ErrInvalidInput)
	}
	seenVariants := make(map[string]struct{}, len(c.Indexer.Variants))
	for _, v := range c.Indexer.Variants {
		if _, ok := knownVariants[v]; !ok {
			return fmt.Errorf("%w: %q", apperrors.ErrUnknownVariant, v)
		}
		if _, dup := seenVariants[v]; dup {
			return fmt.Errorf("%w: indexer.variants lists %q twice", apperrors.ErrInvalidInput, v)
		}
		seenVariants[v] = struct{}{}
	}
	seenFields := make(map[string]struct{}, len(c.Indexer.Fields))
	for _, f := range c.Indexer.Fields {
		if f == "" {
			return fmt.Errorf("%w: empty name in indexer.fields", apperrors.ErrInvalidInput)
		}
		if _, dup := seenFields[f]; dup {
			return fmt.Errorf("%w: indexer.fields lists %q twice", apperrors.ErrInvalidInput, f)
		}
		seenFields[f] = struct{}{}
	}
	if _, ok := knownStemmers[c.Indexer.Stemmer]; !ok {
		return fmt.Errorf("%w: %q", apperrors.ErrUnknownStemmer, c.Indexer.Stemmer)
	}
	if c.Indexer.Parallelism < 1 {
		return fmt.Errorf("%w: indexer.parallelism must be at least 1, got %d", apperrors.ErrInvalidInput, c.Indexer.Parallelism)
	}
	return nil
}

// StatsFields returns the document fields aggregated for statistics, title
// first so that it is the reference field for the document count.
func (c *Config) StatsFields() []string {
	if !c.Stats.Enabled {
		return nil
	}
	if c.Stats.Extended {
		return []string{"title", "content", "h1"}
	}
	return []string{"title"}
}

// applyEnvOverrides reads CRAWLINDEX_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CRAWLINDEX_INPUT"); v != "" {
		cfg.Input = v
	}
	if v := os.Getenv("CRAWLINDEX_OUTPUT_DIR"); v != "" {
		cfg.Output.Dir = v
	}
	if v := os.Getenv("CRAWLINDEX_INDEXER_FIELDS"); v != "" {
		cfg.Indexer.Fields = strings.Split(v, ",")
	}
	if v := os.Getenv("CRAWLINDEX_INDEXER_VARIANTS"); v != "" {
		cfg.Indexer.Variants = strings.Split(v, ",")
	}
	if v := os.Getenv("CRAWLINDEX_INDEXER_STEMMER"); v != "" {
		cfg.Indexer.Stemmer = v
	}
	if v := os.Getenv("CRAWLINDEX_STATS_EXTENDED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Stats.Extended = b
		}
	}
	if v := os.Getenv("CRAWLINDEX_POSTGRES_HOST"); v != "" {
		cfg.Postgres.Host = v
	}
	if v := os.Getenv("CRAWLINDEX_POSTGRES_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.Port = port
		}
	}
	if v := os.Getenv("CRAWLINDEX_POSTGRES_DATABASE"); v != "" {
		cfg.Postgres.Database = v
	}
	if v := os.Getenv("CRAWLINDEX_POSTGRES_USER"); v != "" {
		cfg.Postgres.User = v
	}
	if v := os.Getenv("CRAWLINDEX_POSTGRES_PASSWORD"); v != "" {
		cfg.Postgres.Password = v
	}
	if v := os.Getenv("CRAWLINDEX_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("CRAWLINDEX_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("CRAWLINDEX_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("CRAWLINDEX_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("CRAWLINDEX_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
