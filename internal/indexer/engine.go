// Package indexer runs an index build over a loaded corpus: it tokenizes the
// requested fields, aggregates statistics, builds every index variant and
// hands the results to the configured sinks.
package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/crawl-index/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/crawl-index/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/crawl-index/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/crawl-index/internal/sink"
	"github.com/Adithya-Monish-Kumar-K/crawl-index/internal/stats"
	"github.com/Adithya-Monish-Kumar-K/crawl-index/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/crawl-index/pkg/metrics"
)

// Plan describes what one run produces.
type Plan struct {
	// IndexFields are built once per entry in Variants.
	IndexFields []string
	Variants    []index.Variant
	// StatsFields are aggregated in order; the first one supplies the
	// document count. Empty disables statistics.
	StatsFields  []string
	Distribution bool
	Parallelism  int
}

// BuiltIndex is one index produced by a run.
type BuiltIndex struct {
	Field string
	Index index.Index
}

type Result struct {
	RunID      string
	Documents  int
	Indexes    []BuiltIndex
	Statistics *stats.CorpusStatistics
	Duration   time.Duration
}

// Lookup returns the index built for field and v.
func (r *Result) Lookup(field string, v index.Variant) (index.Index, bool) {
	for _, b := range r.Indexes {
		if b.Field == field && b.Index.Variant() == v {
			return b.Index, true
		}
	}
	return nil, false
}

type Engine struct {
	tokenizer tokenizer.Tokenizer
	builder   *index.Builder
	sinks     []sink.Sink
	metrics   *metrics.Metrics
}

// NewEngine wires an engine. m may be nil to skip metrics.
func NewEngine(tok tokenizer.Tokenizer, builder *index.Builder, sinks []sink.Sink, m *metrics.Metrics) *Engine {
	return &Engine{
		tokenizer: tok,
		builder:   builder,
		sinks:     sinks,
		metrics:   m,
	}
}

// Run executes plan over docs. Document ids in every index are positions in
// docs. The first failing tokenization, build or sink write aborts the run.
// A run id already carried by ctx is reused.
func (e *Engine) Run(ctx context.Context, docs []corpus.Document, plan Plan) (*Result, error) {
	start := time.Now()
	runID := logger.RunID(ctx)
	if runID == "" {
		runID = uuid.NewString()
		ctx = logger.WithRunID(ctx, runID)
	}
	log := logger.FromContext(ctx).With("component", "indexer")

	res, err := e.run(ctx, log, docs, plan)
	if err != nil {
		e.countRun("error")
		log.Error("index run failed", "error", err)
		return nil, err
	}
	res.RunID = runID
	res.Duration = time.Since(start)
	e.countRun("success")
	log.Info("index run complete",
		"documents", res.Documents,
		"indexes", len(res.Indexes),
		"duration", res.Duration,
	)
	return res, nil
}

func (e *Engine) run(ctx context.Context, log *slog.Logger, docs []corpus.Document, plan Plan) (*Result, error) {
	log.Info("index run started",
		"documents", len(docs),
		"index_fields", plan.IndexFields,
		"variants", len(plan.Variants),
		"stats_fields", plan.StatsFields,
	)
	if e.metrics != nil {
		e.metrics.DocumentsProcessed.Add(float64(len(docs)))
	}

	streams, err := e.tokenize(docs, plan)
	if err != nil {
		return nil, err
	}
	res := &Result{Documents: len(docs)}

	if len(plan.StatsFields) > 0 {
		cs, err := e.aggregate(streams, plan)
		if err != nil {
			return nil, fmt.Errorf("aggregating statistics: %w", err)
		}
		res.Statistics = cs
	}

	indexes, err := e.buildAll(ctx, log, streams, plan)
	if err != nil {
		return nil, err
	}
	res.Indexes = indexes

	if res.Statistics != nil {
		for _, s := range e.sinks {
			if err := e.write(ctx, s, func(ctx context.Context) error {
				return s.WriteStatistics(ctx, res.Statistics)
			}); err != nil {
				return nil, fmt.Errorf("sink %s: %w", s.Name(), err)
			}
		}
	}
	return res, nil
}

// tokenize produces the streams of every field the plan touches, each field
// tokenized once.
func (e *Engine) tokenize(docs []corpus.Document, plan Plan) (map[string][]index.TokenStream, error) {
	fields := slices.Clone(plan.IndexFields)
	if len(plan.Variants) == 0 {
		fields = nil
	}
	for _, f := range plan.StatsFields {
		if !slices.Contains(fields, f) {
			fields = append(fields, f)
		}
	}

	streams := make(map[string][]index.TokenStream, len(fields))
	for _, field := range fields {
		if _, done := streams[field]; done {
			continue
		}
		fs, err := corpus.FieldStreams(docs, field, e.tokenizer)
		if err != nil {
			return nil, err
		}
		streams[field] = fs
		if e.metrics != nil {
			total := 0
			for _, s := range fs {
				total += len(s)
			}
			e.metrics.TokensProcessed.WithLabelValues(field).Add(float64(total))
		}
	}
	return streams, nil
}

func (e *Engine) aggregate(streams map[string][]index.TokenStream, plan Plan) (*stats.CorpusStatistics, error) {
	fields := make([]stats.FieldStreams, 0, len(plan.StatsFields))
	for _, label := range plan.StatsFields {
		fs := streams[label]
		raw := make([][]string, len(fs))
		for i, s := range fs {
			raw[i] = s
		}
		fields = append(fields, stats.FieldStreams{Label: label, Streams: raw})
	}
	cs, err := stats.Aggregator{Distribution: plan.Distribution}.Aggregate(fields...)
	if err != nil {
		return nil, err
	}
	if e.metrics != nil {
		e.metrics.LexicalDiversity.WithLabelValues(stats.GlobalLabel).Set(cs.Global.LexicalDiversity)
		for _, f := range cs.Fields {
			e.metrics.LexicalDiversity.WithLabelValues(f.Label).Set(f.Statistics.LexicalDiversity)
		}
	}
	return cs, nil
}

// buildAll builds every distinct field and variant pair concurrently, writing
// each index to the sinks as soon as it is ready. Results keep plan order.
func (e *Engine) buildAll(ctx context.Context, log *slog.Logger, streams map[string][]index.TokenStream, plan Plan) ([]BuiltIndex, error) {
	type job struct {
		field   string
		variant index.Variant
	}
	var jobs []job
	for _, field := range unique(plan.IndexFields) {
		for _, v := range unique(plan.Variants) {
			jobs = append(jobs, job{field: field, variant: v})
		}
	}
	out := make([]BuiltIndex, len(jobs))

	limit := plan.Parallelism
	if limit < 1 {
		limit = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, j := range jobs {
		i, j := i, j
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			started := time.Now()
			ix := e.builder.Build(streams[j.field], j.variant)
			elapsed := time.Since(started)
			if e.metrics != nil {
				e.metrics.IndexBuildsTotal.WithLabelValues(j.variant.String()).Inc()
				e.metrics.IndexBuildDuration.WithLabelValues(j.variant.String()).Observe(elapsed.Seconds())
				e.metrics.IndexTerms.WithLabelValues(j.field, j.variant.String()).Set(float64(ix.Len()))
			}
			log.Debug("index built",
				"field", j.field,
				"variant", j.variant.String(),
				"terms", ix.Len(),
				"duration", elapsed,
			)
			for _, s := range e.sinks {
				if err := e.write(gctx, s, func(ctx context.Context) error {
					return s.WriteIndex(ctx, j.field, ix)
				}); err != nil {
					return fmt.Errorf("sink %s: %w", s.Name(), err)
				}
			}
			out[i] = BuiltIndex{Field: j.field, Index: ix}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// unique drops repeated entries, keeping the first occurrence.
func unique[T comparable](items []T) []T {
	seen := make(map[T]struct{}, len(items))
	out := make([]T, 0, len(items))
	for _, it := range items {
		if _, dup := seen[it]; dup {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	return out
}

func (e *Engine) write(ctx context.Context, s sink.Sink, fn func(ctx context.Context) error) error {
	started := time.Now()
	err := fn(ctx)
	if e.metrics != nil {
		status := "success"
		if err != nil {
			status = "error"
		}
		e.metrics.SinkWritesTotal.WithLabelValues(s.Name(), status).Inc()
		e.metrics.SinkWriteDuration.WithLabelValues(s.Name()).Observe(time.Since(started).Seconds())
	}
	return err
}

func (e *Engine) countRun(status string) {
	if e.metrics != nil {
		e.metrics.RunsTotal.WithLabelValues(status).Inc()
	}
}
