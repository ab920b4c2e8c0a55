package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Adithya-Monish-Kumar-K/crawl-index/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/crawl-index/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/crawl-index/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/crawl-index/internal/indexer/stemmer"
	"github.com/Adithya-Monish-Kumar-K/crawl-index/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/crawl-index/internal/sink"
	"github.com/Adithya-Monish-Kumar-K/crawl-index/internal/sink/sqlstore"
	"github.com/Adithya-Monish-Kumar-K/crawl-index/internal/store"
	"github.com/Adithya-Monish-Kumar-K/crawl-index/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/crawl-index/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/crawl-index/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/crawl-index/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/crawl-index/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/crawl-index/pkg/postgres"
	"github.com/Adithya-Monish-Kumar-K/crawl-index/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/crawl-index/pkg/resilience"
)

type options struct {
	configPath   string
	input        string
	outDir       string
	stem         bool
	positional   bool
	allVariants  bool
	fieldStats   bool
	distribution bool
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "path to config file")
	flag.StringVar(&opts.input, "input", "", "crawled documents (JSON array); overrides config")
	flag.StringVar(&opts.outDir, "out", "", "output directory; overrides config")
	flag.BoolVar(&opts.stem, "stem", false, "build the stemmed index")
	flag.BoolVar(&opts.positional, "positional", false, "build the positional index")
	flag.BoolVar(&opts.allVariants, "all-variants", false, "build all four index variants")
	flag.BoolVar(&opts.fieldStats, "fields", false, "report statistics for title, content and h1 instead of titles only")
	flag.BoolVar(&opts.distribution, "distribution", false, "add per-document token count distributions to statistics")
	flag.Parse()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(apperrors.ExitCode(err))
	}
	applyFlags(cfg, opts)

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg)
	stop()
	if err != nil {
		slog.Error("indexer failed", "error", err)
		os.Exit(apperrors.ExitCode(err))
	}
}

// applyFlags lets command-line toggles override the loaded config. -stem and
// -positional pick a single variant; -all-variants wins over both.
func applyFlags(cfg *config.Config, opts options) {
	if opts.input != "" {
		cfg.Input = opts.input
	}
	if opts.outDir != "" {
		cfg.Output.Dir = opts.outDir
	}
	switch {
	case opts.allVariants:
		cfg.Indexer.Variants = nil
		for _, v := range index.AllVariants {
			cfg.Indexer.Variants = append(cfg.Indexer.Variants, v.String())
		}
	case opts.stem || opts.positional:
		v := index.Variant{Stemmed: opts.stem, Positional: opts.positional}
		cfg.Indexer.Variants = []string{v.String()}
	}
	if opts.fieldStats {
		cfg.Stats.Enabled = true
		cfg.Stats.Extended = true
	}
	if opts.distribution {
		cfg.Stats.Distribution = true
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	runID := uuid.NewString()
	ctx = logger.WithRunID(ctx, runID)
	log := logger.FromContext(ctx)

	variants, err := index.ParseVariants(cfg.Indexer.Variants)
	if err != nil {
		return err
	}
	stem, err := stemmer.New(cfg.Indexer.Stemmer)
	if err != nil {
		return err
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		m = metrics.New(reg)
		shutdown := metrics.StartServer(cfg.Metrics.Port, reg)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			shutdown(shutdownCtx)
		}()
	}

	sinks, err := openSinks(ctx, cfg, runID)
	if err != nil {
		return err
	}
	defer func() {
		if err := sink.CloseAll(sinks); err != nil {
			log.Warn("closing sinks", "error", err)
		}
	}()

	docs, err := corpus.Load(cfg.Input)
	if err != nil {
		return err
	}
	log.Info("corpus loaded", "path", cfg.Input, "documents", len(docs))

	tok := tokenizer.New(tokenizer.Options{
		Lowercase:        cfg.Tokenizer.Lowercase,
		Normalize:        cfg.Tokenizer.Normalize,
		StopWords:        cfg.Tokenizer.StopWords,
		DefaultStopWords: cfg.Tokenizer.DefaultStopWords,
		MinLength:        cfg.Tokenizer.MinLength,
	})
	engine := indexer.NewEngine(tok, index.NewBuilder(stem), sinks, m)
	res, err := engine.Run(ctx, docs, indexer.Plan{
		IndexFields:  cfg.Indexer.Fields,
		Variants:     variants,
		StatsFields:  cfg.StatsFields(),
		Distribution: cfg.Stats.Distribution,
		Parallelism:  cfg.Indexer.Parallelism,
	})
	if err != nil {
		return err
	}

	if res.Statistics != nil {
		g := res.Statistics.Global
		fmt.Printf("documents: %d\n", res.Statistics.TotalDocuments)
		fmt.Printf("total tokens: %d\n", g.TotalTokens)
		fmt.Printf("unique tokens: %d\n", g.UniqueTokens)
		fmt.Printf("avg tokens per document: %g\n", g.AvgTokensPerDocument)
		fmt.Printf("lexical diversity: %g\n", g.LexicalDiversity)
	}
	for _, b := range res.Indexes {
		fmt.Printf("index %s.%s: %d terms\n", b.Field, b.Index.Variant(), b.Index.Len())
	}
	return nil
}

// openSinks returns the file store plus every enabled external sink. Network
// sinks retry with the configured backoff.
func openSinks(ctx context.Context, cfg *config.Config, runID string) ([]sink.Sink, error) {
	retry := resilience.FromConfig(cfg.Retry)
	sinks := []sink.Sink{store.NewFileStore(cfg.Output.Dir, cfg.Output.Indent)}

	fail := func(err error) ([]sink.Sink, error) {
		sink.CloseAll(sinks)
		return nil, apperrors.New(apperrors.ErrSinkUnavailable, apperrors.ExitSinkFailed, err.Error())
	}

	if cfg.SQLite.Enabled {
		client, err := postgres.NewSQLite(cfg.SQLite)
		if err != nil {
			return fail(err)
		}
		s, err := sqlstore.New(ctx, client)
		if err != nil {
			client.Close()
			return fail(err)
		}
		sinks = append(sinks, s)
	}
	if cfg.Postgres.Enabled {
		client, err := postgres.New(cfg.Postgres)
		if err != nil {
			return fail(err)
		}
		s, err := sqlstore.New(ctx, client)
		if err != nil {
			client.Close()
			return fail(err)
		}
		sinks = append(sinks, sink.WithRetry(s, retry))
	}
	if cfg.Redis.Enabled {
		client, err := redis.NewClient(cfg.Redis)
		if err != nil {
			return fail(err)
		}
		sinks = append(sinks, sink.WithRetry(sink.NewRedisSink(client, sink.DefaultKeyPrefix, cfg.Redis.TTL), retry))
	}
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.IndexComplete)
		sinks = append(sinks, sink.WithRetry(sink.NewKafkaNotifier(producer, runID), retry))
	}
	return sinks, nil
}
