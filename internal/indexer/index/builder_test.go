package index

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/crawl-index/internal/indexer/stemmer"
)

var titleStreams = []TokenStream{
	{"cat", "dog"},
	{"dog", "dog", "fish"},
}

func TestBuildNonPositionalScenario(t *testing.T) {
	ix := NewBuilder(nil).BuildNonPositional(titleStreams, false)

	assert.Equal(t, map[string]PostingList{
		"cat":  {0},
		"dog":  {0, 1},
		"fish": {1},
	}, ix.Map())
	assert.Equal(t, []string{"cat", "dog", "fish"}, ix.Terms())
	assert.Equal(t, NonPositionalVariant, ix.Variant())
}

func TestBuildPositionalScenario(t *testing.T) {
	ix := NewBuilder(nil).BuildPositional(titleStreams, false)

	assert.Equal(t, map[string]map[DocID]Positions{
		"cat":  {0: {0}},
		"dog":  {0: {1}, 1: {0, 1}},
		"fish": {1: {2}},
	}, ix.Map())
	assert.Equal(t, PostingList{0, 1}, ix.Docs("dog"))
	assert.Equal(t, Positions{0, 1}, ix.Positions("dog", 1))
	assert.Equal(t, 2, ix.DocFrequency("dog"))
	assert.Equal(t, PositionalVariant, ix.Variant())
}

func TestNonPositionalIsIdempotentPerDocument(t *testing.T) {
	streams := []TokenStream{
		{"go", "go", "go", "rust", "go"},
		{"rust"},
		{"go", "go"},
	}
	ix := NewBuilder(nil).BuildNonPositional(streams, false)

	assert.Equal(t, PostingList{0, 2}, ix.Postings("go"))
	assert.Equal(t, PostingList{0, 1}, ix.Postings("rust"))
	assert.Equal(t, 2, ix.DocFrequency("go"))
}

func TestPositionalIsComplete(t *testing.T) {
	streams := []TokenStream{
		strings.Fields("the cat saw the other cat near the door"),
		{},
		strings.Fields("cat cat cat"),
	}
	ix := NewBuilder(nil).BuildPositional(streams, false)

	for docIdx, stream := range streams {
		counts := make(map[string]int)
		for _, tok := range stream {
			counts[tok]++
		}
		for term, n := range counts {
			positions := ix.Positions(term, DocID(docIdx))
			require.Len(t, positions, n, "term %q doc %d", term, docIdx)
			for k := 1; k < len(positions); k++ {
				assert.Greater(t, positions[k], positions[k-1])
			}
			for _, p := range positions {
				assert.Equal(t, term, stream[p])
			}
		}
	}
	assert.Equal(t, Positions{0, 3, 7}, ix.Positions("the", 0))
	assert.Equal(t, PostingList{0, 2}, ix.Docs("cat"))
}

func TestBuildEmptyInput(t *testing.T) {
	b := NewBuilder(nil)
	for _, v := range AllVariants {
		t.Run(v.String(), func(t *testing.T) {
			ix := b.Build(nil, v)
			assert.Equal(t, 0, ix.Len())
			assert.Empty(t, ix.Terms())
			assert.Equal(t, v, ix.Variant())

			ix = b.Build([]TokenStream{{}, {}}, v)
			assert.Equal(t, 0, ix.Len())
		})
	}
}

func TestEmptyStreamKeepsDocIDs(t *testing.T) {
	streams := []TokenStream{{}, {"x"}, {}, {"x", "y"}}
	ix := NewBuilder(nil).BuildNonPositional(streams, false)

	assert.Equal(t, PostingList{1, 3}, ix.Postings("x"))
	assert.Equal(t, PostingList{3}, ix.Postings("y"))
}

func TestBuildStemmed(t *testing.T) {
	streams := []TokenStream{
		{"Running", "dogs"},
		{"dog", "runs", "running"},
	}
	b := NewBuilder(stemmer.Porter{})

	np := b.BuildNonPositional(streams, true)
	assert.Equal(t, map[string]PostingList{
		"run": {0, 1},
		"dog": {0, 1},
	}, np.Map())
	assert.Equal(t, StemmedNonPositionalVariant, np.Variant())

	pos := b.BuildPositional(streams, true)
	assert.Equal(t, map[string]map[DocID]Positions{
		"run": {0: {0}, 1: {1, 2}},
		"dog": {0: {1}, 1: {0}},
	}, pos.Map())

	// input streams are not rewritten
	assert.Equal(t, TokenStream{"Running", "dogs"}, streams[0])
}

func TestStemPreservesShape(t *testing.T) {
	upper := stemmer.Func(strings.ToUpper)
	streams := []TokenStream{{"a", "b"}, {}, {"c"}}

	once := Stem(upper, streams)
	twice := Stem(upper, streams)

	assert.Equal(t, once, twice)
	require.Len(t, once, 3)
	assert.Equal(t, TokenStream{"A", "B"}, once[0])
	assert.Empty(t, once[1])
	assert.Equal(t, TokenStream{"C"}, once[2])
}

func TestBuildDispatch(t *testing.T) {
	b := NewBuilder(nil)
	_, ok := b.Build(titleStreams, PositionalVariant).(*Positional)
	assert.True(t, ok)
	_, ok = b.Build(titleStreams, StemmedNonPositionalVariant).(*NonPositional)
	assert.True(t, ok)
}

func TestEach(t *testing.T) {
	b := NewBuilder(nil)

	var got []string
	err := b.Build(titleStreams, PositionalVariant).Each(func(term string, doc DocID, positions Positions) error {
		got = append(got, fmt.Sprintf("%s/%d/%v", term, doc, positions))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"cat/0/[0]", "dog/0/[1]", "dog/1/[0 1]", "fish/1/[2]"}, got)

	got = got[:0]
	err = b.Build(titleStreams, NonPositionalVariant).Each(func(term string, doc DocID, positions Positions) error {
		assert.Nil(t, positions)
		got = append(got, fmt.Sprintf("%s/%d", term, doc))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"cat/0", "dog/0", "dog/1", "fish/1"}, got)
}

func TestVariantNames(t *testing.T) {
	names := []string{"non_pos_index", "pos_index", "stemmed.non_pos_index", "stemmed.pos_index"}
	for i, v := range AllVariants {
		assert.Equal(t, names[i], v.String())
		parsed, err := ParseVariant(names[i])
		require.NoError(t, err)
		assert.Equal(t, v, parsed)
	}

	_, err := ParseVariant("trigram")
	assert.Error(t, err)

	vs, err := ParseVariants([]string{"pos_index", "non_pos_index"})
	require.NoError(t, err)
	assert.Equal(t, []Variant{PositionalVariant, NonPositionalVariant}, vs)
}

func BenchmarkBuild(b *testing.B) {
	terms := []string{"distributed", "search", "analytics", "platform", "indexing", "query", "engine", "ranking"}
	streams := make([]TokenStream, 5000)
	for i := range streams {
		streams[i] = TokenStream{terms[i%len(terms)], terms[(i+1)%len(terms)], terms[(i+3)%len(terms)], terms[i%len(terms)]}
	}
	builder := NewBuilder(nil)
	for _, v := range AllVariants {
		b.Run(v.String(), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_ = builder.Build(streams, v)
			}
		})
	}
}
