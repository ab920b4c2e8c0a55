// Package sink delivers built indexes and corpus statistics to their
// destinations: local files, SQL databases, Redis and Kafka.
package sink

import (
	"context"

	"github.com/Adithya-Monish-Kumar-K/crawl-index/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/crawl-index/internal/stats"
)

// Sink receives every index and the statistics produced by one run. Calls
// for different indexes may happen concurrently.
type Sink interface {
	Name() string
	WriteIndex(ctx context.Context, field string, ix index.Index) error
	WriteStatistics(ctx context.Context, cs *stats.CorpusStatistics) error
}

// Closer is implemented by sinks holding connections.
type Closer interface {
	Close() error
}

// CloseAll closes every sink that implements Closer and returns the first
// error.
func CloseAll(sinks []Sink) error {
	var first error
	for _, s := range sinks {
		if c, ok := s.(Closer); ok {
			if err := c.Close(); err != nil && first == nil {
				first = err
			}
		}
	}
	return first
}
