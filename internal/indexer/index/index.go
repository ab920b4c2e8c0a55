package index

import (
	"slices"
)

// NonPositional maps each term to the documents containing it at least once.
type NonPositional struct {
	variant  Variant
	terms    []string
	postings map[string]PostingList
}

func newNonPositional(v Variant) *NonPositional {
	v.Positional = false
	return &NonPositional{
		variant:  v,
		postings: make(map[string]PostingList),
	}
}

// add records doc for term. Documents arrive in ascending order, so a repeat
// occurrence can only ever match the last posting.
func (ix *NonPositional) add(term string, doc DocID) {
	list, seen := ix.postings[term]
	if !seen {
		ix.terms = append(ix.terms, term)
	}
	if n := len(list); n > 0 && list[n-1] == doc {
		return
	}
	ix.postings[term] = append(list, doc)
}

func (ix *NonPositional) Variant() Variant { return ix.variant }

func (ix *NonPositional) Terms() []string { return slices.Clone(ix.terms) }

func (ix *NonPositional) Len() int { return len(ix.terms) }

func (ix *NonPositional) DocFrequency(term string) int { return len(ix.postings[term]) }

// Postings returns a copy of the posting list for term, or nil.
func (ix *NonPositional) Postings(term string) PostingList {
	return slices.Clone(ix.postings[term])
}

// Map returns a copy of the index as a plain map.
func (ix *NonPositional) Map() map[string]PostingList {
	out := make(map[string]PostingList, len(ix.terms))
	for _, term := range ix.terms {
		out[term] = slices.Clone(ix.postings[term])
	}
	return out
}

func (ix *NonPositional) Each(fn func(term string, doc DocID, positions Positions) error) error {
	for _, term := range ix.terms {
		for _, doc := range ix.postings[term] {
			if err := fn(term, doc, nil); err != nil {
				return err
			}
		}
	}
	return nil
}

type termPositions struct {
	docs      []DocID
	positions map[DocID]Positions
}

// Positional maps each term to every offset it occupies in every document.
type Positional struct {
	variant  Variant
	terms    []string
	postings map[string]*termPositions
}

func newPositional(v Variant) *Positional {
	v.Positional = true
	return &Positional{
		variant:  v,
		postings: make(map[string]*termPositions),
	}
}

func (ix *Positional) add(term string, doc DocID, pos int) {
	tp, seen := ix.postings[term]
	if !seen {
		tp = &termPositions{positions: make(map[DocID]Positions)}
		ix.postings[term] = tp
		ix.terms = append(ix.terms, term)
	}
	if _, ok := tp.positions[doc]; !ok {
		tp.docs = append(tp.docs, doc)
	}
	tp.positions[doc] = append(tp.positions[doc], pos)
}

func (ix *Positional) Variant() Variant { return ix.variant }

func (ix *Positional) Terms() []string { return slices.Clone(ix.terms) }

func (ix *Positional) Len() int { return len(ix.terms) }

func (ix *Positional) DocFrequency(term string) int {
	if tp, ok := ix.postings[term]; ok {
		return len(tp.docs)
	}
	return 0
}

// Docs returns the ascending documents containing term, or nil.
func (ix *Positional) Docs(term string) PostingList {
	if tp, ok := ix.postings[term]; ok {
		return slices.Clone(PostingList(tp.docs))
	}
	return nil
}

// Positions returns a copy of the offsets of term in doc, or nil.
func (ix *Positional) Positions(term string, doc DocID) Positions {
	if tp, ok := ix.postings[term]; ok {
		return slices.Clone(tp.positions[doc])
	}
	return nil
}

// Map returns a copy of the index as plain nested maps.
func (ix *Positional) Map() map[string]map[DocID]Positions {
	out := make(map[string]map[DocID]Positions, len(ix.terms))
	for _, term := range ix.terms {
		tp := ix.postings[term]
		docs := make(map[DocID]Positions, len(tp.docs))
		for _, doc := range tp.docs {
			docs[doc] = slices.Clone(tp.positions[doc])
		}
		out[term] = docs
	}
	return out
}

func (ix *Positional) Each(fn func(term string, doc DocID, positions Positions) error) error {
	for _, term := range ix.terms {
		tp := ix.postings[term]
		for _, doc := range tp.docs {
			if err := fn(term, doc, tp.positions[doc]); err != nil {
				return err
			}
		}
	}
	return nil
}

var (
	_ Index = (*NonPositional)(nil)
	_ Index = (*Positional)(nil)
)
