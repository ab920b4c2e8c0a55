package index

import (
	"encoding/json"
	"fmt"

	apperrors "github.com/Adithya-Monish-Kumar-K/crawl-index/pkg/errors"
)

// DocID is the zero-based position of a document in the input collection.
type DocID uint32

// TokenStream is the ordered token sequence of one document field.
type TokenStream []string

// PostingList holds distinct document ids in ascending order.
type PostingList []DocID

// Positions holds strictly ascending token offsets within one document.
type Positions []int

// Variant selects one of the four index shapes.
type Variant struct {
	Stemmed    bool
	Positional bool
}

var (
	NonPositionalVariant        = Variant{}
	PositionalVariant           = Variant{Positional: true}
	StemmedNonPositionalVariant = Variant{Stemmed: true}
	StemmedPositionalVariant    = Variant{Stemmed: true, Positional: true}
)

// AllVariants lists every variant in a fixed order.
var AllVariants = []Variant{
	NonPositionalVariant,
	PositionalVariant,
	StemmedNonPositionalVariant,
	StemmedPositionalVariant,
}

// String returns the variant's file-name form, e.g. "stemmed.pos_index".
func (v Variant) String() string {
	name := "non_pos_index"
	if v.Positional {
		name = "pos_index"
	}
	if v.Stemmed {
		return "stemmed." + name
	}
	return name
}

func ParseVariant(s string) (Variant, error) {
	for _, v := range AllVariants {
		if v.String() == s {
			return v, nil
		}
	}
	return Variant{}, fmt.Errorf("%w: %q", apperrors.ErrUnknownVariant, s)
}

func ParseVariants(names []string) ([]Variant, error) {
	variants := make([]Variant, 0, len(names))
	for _, name := range names {
		v, err := ParseVariant(name)
		if err != nil {
			return nil, err
		}
		variants = append(variants, v)
	}
	return variants, nil
}

// Index is the read-only view shared by both index shapes.
type Index interface {
	Variant() Variant
	// Terms returns the terms in first-seen order.
	Terms() []string
	Len() int
	// DocFrequency is the number of documents containing term.
	DocFrequency(term string) int
	// Each walks every (term, doc) pair in term order then ascending doc
	// order. positions is nil for non-positional indexes.
	Each(fn func(term string, doc DocID, positions Positions) error) error
	json.Marshaler
}
