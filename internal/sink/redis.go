package sink

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/crawl-index/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/crawl-index/internal/stats"
	apperrors "github.com/Adithya-Monish-Kumar-K/crawl-index/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/crawl-index/pkg/logger"
)

// DefaultKeyPrefix namespaces every key written by RedisSink.
const DefaultKeyPrefix = "crawlindex"

// KeyValue is the subset of a Redis client RedisSink needs.
type KeyValue interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// RedisSink stores each index and the statistics as a JSON string, under
// <prefix>:<field>:<variant> and <prefix>:metadata.
type RedisSink struct {
	kv     KeyValue
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedisSink(kv KeyValue, prefix string, ttl time.Duration) *RedisSink {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisSink{
		kv:     kv,
		prefix: prefix,
		ttl:    ttl,
		logger: logger.WithComponent("redis-sink"),
	}
}

func (s *RedisSink) Name() string { return "redis" }

func (s *RedisSink) IndexKey(field string, v index.Variant) string {
	return s.prefix + ":" + field + ":" + v.String()
}

func (s *RedisSink) MetadataKey() string {
	return s.prefix + ":metadata"
}

func (s *RedisSink) WriteIndex(ctx context.Context, field string, ix index.Index) error {
	data, err := ix.MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshaling index: %w", err)
	}
	key := s.IndexKey(field, ix.Variant())
	if err := s.kv.Set(ctx, key, data, s.ttl); err != nil {
		return fmt.Errorf("setting %s: %w", key, err)
	}
	s.logger.Debug("index stored", "key", key, "bytes", len(data))
	return nil
}

func (s *RedisSink) WriteStatistics(ctx context.Context, cs *stats.CorpusStatistics) error {
	data, err := cs.MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshaling statistics: %w", err)
	}
	key := s.MetadataKey()
	if err := s.kv.Set(ctx, key, data, s.ttl); err != nil {
		return fmt.Errorf("setting %s: %w", key, err)
	}
	return nil
}

// LoadIndex fetches an index stored by WriteIndex.
func (s *RedisSink) LoadIndex(ctx context.Context, field string, v index.Variant) (index.Index, error) {
	key := s.IndexKey(field, v)
	data, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("getting %s: %w", key, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrNotFound, key)
	}
	ix, err := index.Decode(bytes.NewReader(data), v)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", key, err)
	}
	return ix, nil
}

func (s *RedisSink) Close() error {
	if c, ok := s.kv.(Closer); ok {
		return c.Close()
	}
	return nil
}
