// Package index builds inverted indexes over per-document token streams.
//
// Document ids are the positions of the streams in the input slice. Posting
// lists and position lists are always ascending; terms keep the order in which
// they were first seen.
package index

import (
	"github.com/Adithya-Monish-Kumar-K/crawl-index/internal/indexer/stemmer"
)

// Builder constructs indexes. It holds no state between calls and is safe
// for concurrent use as long as its Stemmer is.
type Builder struct {
	stemmer stemmer.Stemmer
}

// NewBuilder returns a Builder stemming with s, or with the Porter stemmer
// when s is nil.
func NewBuilder(s stemmer.Stemmer) *Builder {
	if s == nil {
		s = stemmer.Porter{}
	}
	return &Builder{stemmer: s}
}

// Build dispatches to BuildPositional or BuildNonPositional.
func (b *Builder) Build(streams []TokenStream, v Variant) Index {
	if v.Positional {
		return b.BuildPositional(streams, v.Stemmed)
	}
	return b.BuildNonPositional(streams, v.Stemmed)
}

func (b *Builder) BuildNonPositional(streams []TokenStream, applyStemming bool) *NonPositional {
	if applyStemming {
		streams = Stem(b.stemmer, streams)
	}
	ix := newNonPositional(Variant{Stemmed: applyStemming})
	for i, stream := range streams {
		doc := DocID(i)
		for _, term := range stream {
			ix.add(term, doc)
		}
	}
	return ix
}

func (b *Builder) BuildPositional(streams []TokenStream, applyStemming bool) *Positional {
	if applyStemming {
		streams = Stem(b.stemmer, streams)
	}
	ix := newPositional(Variant{Stemmed: applyStemming, Positional: true})
	for i, stream := range streams {
		doc := DocID(i)
		for pos, term := range stream {
			ix.add(term, doc, pos)
		}
	}
	return ix
}

// Stem maps every token through s into fresh streams of identical shape. The
// input is left untouched.
func Stem(s stemmer.Stemmer, streams []TokenStream) []TokenStream {
	out := make([]TokenStream, len(streams))
	for i, stream := range streams {
		stemmed := make(TokenStream, len(stream))
		for j, token := range stream {
			stemmed[j] = s.Stem(token)
		}
		out[i] = stemmed
	}
	return out
}
