// Package stats computes lexical statistics over tokenized document fields.
package stats

import (
	"fmt"

	apperrors "github.com/Adithya-Monish-Kumar-K/crawl-index/pkg/errors"
)

// GlobalLabel is the reserved key under which corpus-wide metrics are
// reported.
const GlobalLabel = "global"

// FieldStreams is the per-document token streams of one labeled field.
type FieldStreams struct {
	Label   string
	Streams [][]string
}

type FieldStatistics struct {
	TotalTokens          int           `json:"total_tokens"`
	UniqueTokens         int           `json:"unique_tokens"`
	AvgTokensPerDocument float64       `json:"avg_tokens_per_document"`
	LexicalDiversity     float64       `json:"lexical_diversity"`
	Distribution         *Distribution `json:"distribution,omitempty"`
}

// LabeledStatistics pairs a field label with its metrics.
type LabeledStatistics struct {
	Label      string
	Statistics FieldStatistics
}

// CorpusStatistics holds the global metrics followed by each field's metrics
// in the order the fields were supplied.
type CorpusStatistics struct {
	TotalDocuments int
	Global         FieldStatistics
	Fields         []LabeledStatistics
}

// Field returns the metrics recorded for label.
func (s *CorpusStatistics) Field(label string) (FieldStatistics, bool) {
	for _, f := range s.Fields {
		if f.Label == label {
			return f.Statistics, true
		}
	}
	return FieldStatistics{}, false
}

func (s *CorpusStatistics) Labels() []string {
	labels := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		labels[i] = f.Label
	}
	return labels
}

// Aggregator computes CorpusStatistics. The zero value reports the four core
// metrics; Distribution adds a describe-style summary of per-document token
// counts to every entry.
type Aggregator struct {
	Distribution bool
}

// Aggregate computes per-field metrics and global metrics over the
// concatenation of every field's per-document streams. TotalDocuments is the
// document count of the first field.
func (a Aggregator) Aggregate(fields ...FieldStreams) (*CorpusStatistics, error) {
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		switch {
		case f.Label == "":
			return nil, fmt.Errorf("%w: empty field label", apperrors.ErrInvalidInput)
		case f.Label == GlobalLabel:
			return nil, fmt.Errorf("%w: field label %q is reserved", apperrors.ErrInvalidInput, GlobalLabel)
		}
		if _, dup := seen[f.Label]; dup {
			return nil, fmt.Errorf("%w: duplicate field label %q", apperrors.ErrInvalidInput, f.Label)
		}
		seen[f.Label] = struct{}{}
	}

	out := &CorpusStatistics{Fields: make([]LabeledStatistics, 0, len(fields))}
	if len(fields) > 0 {
		out.TotalDocuments = len(fields[0].Streams)
	}

	var all [][]string
	for _, f := range fields {
		all = append(all, f.Streams...)
		out.Fields = append(out.Fields, LabeledStatistics{
			Label:      f.Label,
			Statistics: a.compute(f.Streams),
		})
	}
	out.Global = a.compute(all)
	return out, nil
}

func (a Aggregator) compute(streams [][]string) FieldStatistics {
	var fs FieldStatistics
	vocab := make(map[string]struct{})
	counts := make([]float64, len(streams))
	for i, stream := range streams {
		fs.TotalTokens += len(stream)
		counts[i] = float64(len(stream))
		for _, tok := range stream {
			vocab[tok] = struct{}{}
		}
	}
	fs.UniqueTokens = len(vocab)
	if len(streams) > 0 {
		fs.AvgTokensPerDocument = float64(fs.TotalTokens) / float64(len(streams))
	}
	if fs.TotalTokens > 0 {
		fs.LexicalDiversity = float64(fs.UniqueTokens) / float64(fs.TotalTokens)
	}
	if a.Distribution {
		d := Describe(counts)
		fs.Distribution = &d
	}
	return fs
}
