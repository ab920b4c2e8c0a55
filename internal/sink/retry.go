package sink

import (
	"context"
	"errors"
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/crawl-index/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/crawl-index/internal/stats"
	apperrors "github.com/Adithya-Monish-Kumar-K/crawl-index/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/crawl-index/pkg/resilience"
)

type retrying struct {
	next Sink
	cfg  resilience.RetryConfig
}

// WithRetry retries failed writes to s with exponential backoff. Errors that
// cannot succeed on a second attempt (bad input, cancellation) are returned
// at once; exhausted retries are reported as ErrSinkUnavailable.
func WithRetry(s Sink, cfg resilience.RetryConfig) Sink {
	return &retrying{next: s, cfg: cfg}
}

func (r *retrying) Name() string { return r.next.Name() }

func (r *retrying) WriteIndex(ctx context.Context, field string, ix index.Index) error {
	op := fmt.Sprintf("%s write %s.%s", r.next.Name(), field, ix.Variant())
	return r.do(ctx, op, func(ctx context.Context) error {
		return r.next.WriteIndex(ctx, field, ix)
	})
}

func (r *retrying) WriteStatistics(ctx context.Context, cs *stats.CorpusStatistics) error {
	op := r.next.Name() + " write statistics"
	return r.do(ctx, op, func(ctx context.Context) error {
		return r.next.WriteStatistics(ctx, cs)
	})
}

func (r *retrying) Close() error {
	if c, ok := r.next.(Closer); ok {
		return c.Close()
	}
	return nil
}

func (r *retrying) do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	err := resilience.Retry(ctx, op, r.cfg, func(ctx context.Context) error {
		err := fn(ctx)
		if err != nil && !retryable(err) {
			return resilience.Permanent(err)
		}
		return err
	})
	if err == nil || !retryable(err) {
		return err
	}
	return fmt.Errorf("%w: %w", apperrors.ErrSinkUnavailable, err)
}

func retryable(err error) bool {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	case errors.Is(err, apperrors.ErrInvalidInput), errors.Is(err, apperrors.ErrMalformedInput):
		return false
	}
	return true
}
