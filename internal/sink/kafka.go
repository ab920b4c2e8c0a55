package sink

import (
	"context"
	"fmt"
	"time"

	"github.com/Adithya-Monish-Kumar-K/crawl-index/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/crawl-index/internal/stats"
	"github.com/Adithya-Monish-Kumar-K/crawl-index/pkg/kafka"
)

// Publisher is the subset of a Kafka producer KafkaNotifier needs.
type Publisher interface {
	Publish(ctx context.Context, events ...kafka.Event) error
}

// IndexBuiltEvent announces that an index is available.
type IndexBuiltEvent struct {
	RunID    string    `json:"run_id"`
	Field    string    `json:"field"`
	Variant  string    `json:"variant"`
	Terms    int       `json:"terms"`
	Postings int       `json:"postings"`
	BuiltAt  time.Time `json:"built_at"`
}

// StatisticsEvent carries the corpus statistics of a run.
type StatisticsEvent struct {
	RunID      string                  `json:"run_id"`
	Statistics *stats.CorpusStatistics `json:"statistics"`
	BuiltAt    time.Time               `json:"built_at"`
}

// KafkaNotifier publishes an event per index and one for the statistics. It
// sends summaries, not index contents.
type KafkaNotifier struct {
	pub   Publisher
	runID string
	now   func() time.Time
}

func NewKafkaNotifier(pub Publisher, runID string) *KafkaNotifier {
	return &KafkaNotifier{pub: pub, runID: runID, now: time.Now}
}

func (n *KafkaNotifier) Name() string { return "kafka" }

func (n *KafkaNotifier) WriteIndex(ctx context.Context, field string, ix index.Index) error {
	postings := 0
	if err := ix.Each(func(string, index.DocID, index.Positions) error {
		postings++
		return nil
	}); err != nil {
		return fmt.Errorf("counting postings for %s: %w", field, err)
	}
	event := IndexBuiltEvent{
		RunID:    n.runID,
		Field:    field,
		Variant:  ix.Variant().String(),
		Terms:    ix.Len(),
		Postings: postings,
		BuiltAt:  n.now().UTC(),
	}
	if err := n.pub.Publish(ctx, kafka.Event{Key: field, Value: event}); err != nil {
		return fmt.Errorf("publishing index event: %w", err)
	}
	return nil
}

func (n *KafkaNotifier) WriteStatistics(ctx context.Context, cs *stats.CorpusStatistics) error {
	event := StatisticsEvent{RunID: n.runID, Statistics: cs, BuiltAt: n.now().UTC()}
	if err := n.pub.Publish(ctx, kafka.Event{Key: stats.GlobalLabel, Value: event}); err != nil {
		return fmt.Errorf("publishing statistics event: %w", err)
	}
	return nil
}

func (n *KafkaNotifier) Close() error {
	if c, ok := n.pub.(Closer); ok {
		return c.Close()
	}
	return nil
}
