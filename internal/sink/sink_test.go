package sink

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/crawl-index/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/crawl-index/internal/stats"
	apperrors "github.com/Adithya-Monish-Kumar-K/crawl-index/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/crawl-index/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/crawl-index/pkg/resilience"
)

var titleStreams = []index.TokenStream{{"cat", "dog"}, {"dog", "dog", "fish"}}

func scenarioStats(t *testing.T) *stats.CorpusStatistics {
	t.Helper()
	cs, err := stats.Aggregator{}.Aggregate(stats.FieldStreams{
		Label:   "title",
		Streams: [][]string{{"cat", "dog"}, {"dog", "dog", "fish"}},
	})
	require.NoError(t, err)
	return cs
}

type fakeKV struct {
	mu     sync.Mutex
	values map[string][]byte
	ttls   map[string]time.Duration
	closed bool
}

func newFakeKV() *fakeKV {
	return &fakeKV{values: make(map[string][]byte), ttls: make(map[string]time.Duration)}
}

func (f *fakeKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.values[key]
	return v, ok, nil
}

func (f *fakeKV) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key] = value
	f.ttls[key] = ttl
	return nil
}

func (f *fakeKV) Close() error {
	f.closed = true
	return nil
}

func TestRedisSink(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	s := NewRedisSink(kv, "", time.Hour)

	ix := index.NewBuilder(nil).Build(titleStreams, index.PositionalVariant)
	require.NoError(t, s.WriteIndex(ctx, "title", ix))
	require.NoError(t, s.WriteStatistics(ctx, scenarioStats(t)))

	assert.Equal(t, `{"cat":{"0":[0]},"dog":{"0":[1],"1":[0,1]},"fish":{"1":[2]}}`, string(kv.values["crawlindex:title:pos_index"]))
	assert.Equal(t, time.Hour, kv.ttls["crawlindex:title:pos_index"])
	assert.Contains(t, string(kv.values["crawlindex:metadata"]), `"global":{"total_documents":2`)

	loaded, err := s.LoadIndex(ctx, "title", index.PositionalVariant)
	require.NoError(t, err)
	assert.Equal(t, ix, loaded)

	_, err = s.LoadIndex(ctx, "title", index.StemmedPositionalVariant)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	require.NoError(t, CloseAll([]Sink{s}))
	assert.True(t, kv.closed)
}

func TestRedisSinkKeys(t *testing.T) {
	s := NewRedisSink(newFakeKV(), "corpus", 0)
	assert.Equal(t, "corpus:h1:stemmed.non_pos_index", s.IndexKey("h1", index.StemmedNonPositionalVariant))
	assert.Equal(t, "corpus:metadata", s.MetadataKey())
}

type fakePublisher struct {
	mu     sync.Mutex
	events []kafka.Event
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, events ...kafka.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, events...)
	return nil
}

func TestKafkaNotifier(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{}
	n := NewKafkaNotifier(pub, "run-1")
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	n.now = func() time.Time { return fixed }

	ix := index.NewBuilder(nil).Build(titleStreams, index.NonPositionalVariant)
	require.NoError(t, n.WriteIndex(ctx, "title", ix))
	require.NoError(t, n.WriteStatistics(ctx, scenarioStats(t)))

	require.Len(t, pub.events, 2)
	assert.Equal(t, "title", pub.events[0].Key)
	assert.Equal(t, IndexBuiltEvent{
		RunID:    "run-1",
		Field:    "title",
		Variant:  "non_pos_index",
		Terms:    3,
		Postings: 4,
		BuiltAt:  fixed,
	}, pub.events[0].Value)

	assert.Equal(t, "global", pub.events[1].Key)
	data, err := json.Marshal(pub.events[1].Value)
	require.NoError(t, err)
	var decoded StatisticsEvent
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "run-1", decoded.RunID)
	assert.Equal(t, 2, decoded.Statistics.TotalDocuments)
	assert.Equal(t, 5, decoded.Statistics.Global.TotalTokens)
}

type brokenIndex struct {
	index.Index
}

func (brokenIndex) Each(func(string, index.DocID, index.Positions) error) error {
	return errors.New("postings unavailable")
}

func TestKafkaNotifierReportsWalkError(t *testing.T) {
	pub := &fakePublisher{}
	n := NewKafkaNotifier(pub, "run-1")

	ix := index.NewBuilder(nil).Build(titleStreams, index.NonPositionalVariant)
	err := n.WriteIndex(context.Background(), "title", brokenIndex{ix})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postings unavailable")
	assert.Empty(t, pub.events)
}

type flakySink struct {
	failures int
	err      error
	calls    int
}

func (f *flakySink) Name() string { return "flaky" }

func (f *flakySink) WriteIndex(context.Context, string, index.Index) error {
	f.calls++
	if f.calls <= f.failures {
		return f.err
	}
	return nil
}

func (f *flakySink) WriteStatistics(context.Context, *stats.CorpusStatistics) error {
	f.calls++
	if f.calls <= f.failures {
		return f.err
	}
	return nil
}

var fastRetry = resilience.RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond}

func TestWithRetry(t *testing.T) {
	ctx := context.Background()
	ix := index.NewBuilder(nil).Build(titleStreams, index.NonPositionalVariant)

	t.Run("recovers", func(t *testing.T) {
		inner := &flakySink{failures: 2, err: errors.New("connection reset")}
		s := WithRetry(inner, fastRetry)
		require.NoError(t, s.WriteIndex(ctx, "title", ix))
		assert.Equal(t, 3, inner.calls)
		assert.Equal(t, "flaky", s.Name())
	})

	t.Run("exhausted", func(t *testing.T) {
		inner := &flakySink{failures: 10, err: errors.New("connection reset")}
		err := WithRetry(inner, fastRetry).WriteStatistics(ctx, scenarioStats(t))
		assert.ErrorIs(t, err, apperrors.ErrSinkUnavailable)
		assert.Equal(t, 3, inner.calls)
		assert.Equal(t, apperrors.ExitSinkFailed, apperrors.ExitCode(err))
	})

	t.Run("permanent", func(t *testing.T) {
		inner := &flakySink{failures: 10, err: apperrors.ErrInvalidInput}
		err := WithRetry(inner, fastRetry).WriteIndex(ctx, "title", ix)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		assert.NotErrorIs(t, err, apperrors.ErrSinkUnavailable)
		assert.Equal(t, 1, inner.calls)
	})
}
