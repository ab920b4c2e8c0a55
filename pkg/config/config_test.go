package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, []string{"title"}, cfg.Indexer.Fields)
	assert.Equal(t, []string{"non_pos_index"}, cfg.Indexer.Variants)
	assert.Equal(t, "porter", cfg.Indexer.Stemmer)
	assert.Equal(t, []string{"title"}, cfg.StatsFields())
	assert.False(t, cfg.Postgres.Enabled)
	assert.False(t, cfg.Redis.Enabled)
	assert.False(t, cfg.Kafka.Enabled)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
input: corpus.json
indexer:
  fields: [title, h1]
  variants: [pos_index, stemmed.non_pos_index]
  stemmer: suffix
stats:
  extended: true
redis:
  enabled: true
  ttl: 1h
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "corpus.json", cfg.Input)
	assert.Equal(t, []string{"title", "h1"}, cfg.Indexer.Fields)
	assert.Equal(t, []string{"pos_index", "stemmed.non_pos_index"}, cfg.Indexer.Variants)
	assert.Equal(t, "suffix", cfg.Indexer.Stemmer)
	assert.Equal(t, []string{"title", "content", "h1"}, cfg.StatsFields())
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, time.Hour, cfg.Redis.TTL)
	// untouched sections keep defaults
	assert.Equal(t, 5432, cfg.Postgres.Port)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CRAWLINDEX_INDEXER_VARIANTS", "pos_index,stemmed.pos_index")
	t.Setenv("CRAWLINDEX_STATS_EXTENDED", "true")
	t.Setenv("CRAWLINDEX_POSTGRES_PORT", "6543")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, []string{"pos_index", "stemmed.pos_index"}, cfg.Indexer.Variants)
	assert.True(t, cfg.Stats.Extended)
	assert.Equal(t, 6543, cfg.Postgres.Port)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"unknown variant", func(c *Config) { c.Indexer.Variants = []string{"bigram"} }, "unknown index variant"},
		{"unknown stemmer", func(c *Config) { c.Indexer.Stemmer = "lancaster" }, "unknown stemmer"},
		{"no fields", func(c *Config) { c.Indexer.Fields = nil }, "without indexer.fields"},
		{"zero parallelism", func(c *Config) { c.Indexer.Parallelism = 0 }, "parallelism"},
		{"repeated field", func(c *Config) { c.Indexer.Fields = []string{"title", "title"} }, `indexer.fields lists "title" twice`},
		{"repeated variant", func(c *Config) { c.Indexer.Variants = []string{"pos_index", "pos_index"} }, `indexer.variants lists "pos_index" twice`},
		{"empty field name", func(c *Config) { c.Indexer.Fields = []string{""} }, "empty name in indexer.fields"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestStatsDisabled(t *testing.T) {
	cfg := Default()
	cfg.Stats.Enabled = false
	assert.Nil(t, cfg.StatsFields())
}

func TestPostgresDSN(t *testing.T) {
	p := Default().Postgres
	assert.Equal(t, "host=localhost port=5432 user=crawlindex password=localdev dbname=crawlindex sslmode=disable", p.DSN())
}
