package stats

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Adithya-Monish-Kumar-K/crawl-index/pkg/errors"
)

var titles = FieldStreams{
	Label:   "title",
	Streams: [][]string{{"cat", "dog"}, {"dog", "dog", "fish"}},
}

func TestAggregateScenario(t *testing.T) {
	got, err := Aggregator{}.Aggregate(titles)
	require.NoError(t, err)

	want := FieldStatistics{
		TotalTokens:          5,
		UniqueTokens:         3,
		AvgTokensPerDocument: 2.5,
		LexicalDiversity:     0.6,
	}
	assert.Equal(t, 2, got.TotalDocuments)
	assert.Equal(t, want, got.Global)

	title, ok := got.Field("title")
	require.True(t, ok)
	assert.Equal(t, want, title)
	assert.Equal(t, []string{"title"}, got.Labels())
}

func TestAggregateMultipleFields(t *testing.T) {
	content := FieldStreams{
		Label:   "content",
		Streams: [][]string{{"cat", "bird"}, {}, {"eel"}},
	}
	got, err := Aggregator{}.Aggregate(titles, content)
	require.NoError(t, err)

	// document count comes from the first field
	assert.Equal(t, 2, got.TotalDocuments)
	assert.Equal(t, []string{"title", "content"}, got.Labels())

	c, _ := got.Field("content")
	assert.Equal(t, 3, c.TotalTokens)
	assert.Equal(t, 3, c.UniqueTokens)
	assert.InDelta(t, 1.0, c.AvgTokensPerDocument, 1e-12)
	assert.InDelta(t, 1.0, c.LexicalDiversity, 1e-12)

	// global metrics run over the five concatenated per-document streams
	assert.Equal(t, 8, got.Global.TotalTokens)
	assert.Equal(t, 5, got.Global.UniqueTokens)
	assert.InDelta(t, 8.0/5.0, got.Global.AvgTokensPerDocument, 1e-12)
	assert.InDelta(t, 5.0/8.0, got.Global.LexicalDiversity, 1e-12)

	got, err = Aggregator{}.Aggregate(content, titles)
	require.NoError(t, err)
	assert.Equal(t, 3, got.TotalDocuments)
}

func TestAggregateConsistency(t *testing.T) {
	fields := []FieldStreams{
		titles,
		{Label: "h1", Streams: [][]string{{"a", "b", "a"}, {"c"}}},
	}
	got, err := Aggregator{}.Aggregate(fields...)
	require.NoError(t, err)

	for _, f := range append(got.Fields, LabeledStatistics{Label: "global", Statistics: got.Global}) {
		s := f.Statistics
		assert.LessOrEqual(t, s.UniqueTokens, s.TotalTokens, f.Label)
		assert.GreaterOrEqual(t, s.LexicalDiversity, 0.0, f.Label)
		assert.LessOrEqual(t, s.LexicalDiversity, 1.0, f.Label)
		assert.GreaterOrEqual(t, s.AvgTokensPerDocument, 0.0, f.Label)
	}
}

func TestAggregateEmpty(t *testing.T) {
	got, err := Aggregator{}.Aggregate()
	require.NoError(t, err)
	assert.Equal(t, 0, got.TotalDocuments)
	assert.Equal(t, FieldStatistics{}, got.Global)
	assert.Empty(t, got.Fields)

	got, err = Aggregator{}.Aggregate(FieldStreams{Label: "title"})
	require.NoError(t, err)
	assert.Equal(t, 0, got.TotalDocuments)
	title, _ := got.Field("title")
	assert.Equal(t, FieldStatistics{}, title)

	got, err = Aggregator{}.Aggregate(FieldStreams{Label: "title", Streams: [][]string{{}, {}}})
	require.NoError(t, err)
	assert.Equal(t, 2, got.TotalDocuments)
	assert.Zero(t, got.Global.LexicalDiversity)
	assert.Zero(t, got.Global.AvgTokensPerDocument)
}

func TestAggregateRejectsBadLabels(t *testing.T) {
	tests := []struct {
		name   string
		fields []FieldStreams
	}{
		{"empty", []FieldStreams{{Label: ""}}},
		{"reserved", []FieldStreams{{Label: "global"}}},
		{"duplicate", []FieldStreams{titles, titles}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Aggregator{}.Aggregate(tt.fields...)
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		})
	}
}

func TestAggregateDistribution(t *testing.T) {
	got, err := Aggregator{Distribution: true}.Aggregate(titles)
	require.NoError(t, err)

	require.NotNil(t, got.Global.Distribution)
	d := got.Global.Distribution
	assert.Equal(t, 2, d.Count)
	assert.InDelta(t, 2.5, d.Mean, 1e-12)
	assert.InDelta(t, 0.7071067811865476, d.Std, 1e-12)
	assert.Equal(t, 2.0, d.Min)
	assert.Equal(t, 2.25, d.P25)
	assert.Equal(t, 2.5, d.P50)
	assert.Equal(t, 2.75, d.P75)
	assert.Equal(t, 3.0, d.Max)
}

func TestStatisticsJSON(t *testing.T) {
	got, err := Aggregator{}.Aggregate(titles, FieldStreams{Label: "h1", Streams: [][]string{{"x"}, {}}})
	require.NoError(t, err)

	data, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"global": {"total_documents": 2, "total_tokens": 6, "unique_tokens": 4, "avg_tokens_per_document": 1.5, "lexical_diversity": 0.6666666666666666},
		"title": {"total_tokens": 5, "unique_tokens": 3, "avg_tokens_per_document": 2.5, "lexical_diversity": 0.6},
		"h1": {"total_tokens": 1, "unique_tokens": 1, "avg_tokens_per_document": 0.5, "lexical_diversity": 1}
	}`, string(data))
	assert.Regexp(t, `^\{"global":\{"total_documents":2,`, string(data))
	assert.Regexp(t, `"title":.*"h1":`, string(data))

	var decoded CorpusStatistics
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, *got, decoded)
}

func TestStatisticsJSONRejectsInvalid(t *testing.T) {
	for _, input := range []string{
		`[]`,
		`{"title": {"total_tokens": 1}}`,
		`{"global": {}, "title": {}, "title": {}}`,
		`{"global": {"total_tokens": "many"}}`,
	} {
		var s CorpusStatistics
		assert.Error(t, json.Unmarshal([]byte(input), &s), input)
	}
}
