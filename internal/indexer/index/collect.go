package index

import (
	"fmt"

	apperrors "github.com/Adithya-Monish-Kumar-K/crawl-index/pkg/errors"
)

// Collect rebuilds an index of variant v from (term, doc, positions) triples
// delivered by walk, in the order Each produces them. Postings for a term
// must arrive together with ascending documents; positions are required for
// positional variants and ignored otherwise.
func Collect(v Variant, walk func(emit func(term string, doc DocID, positions Positions) error) error) (Index, error) {
	if v.Positional {
		ix := newPositional(v)
		var last string
		err := walk(func(term string, doc DocID, positions Positions) error {
			tp, seen := ix.postings[term]
			if seen && term != last {
				return fmt.Errorf("%w: postings for %q are not contiguous", apperrors.ErrInvalidInput, term)
			}
			if seen && doc <= tp.docs[len(tp.docs)-1] {
				return fmt.Errorf("%w: documents for %q not strictly ascending", apperrors.ErrInvalidInput, term)
			}
			if len(positions) == 0 {
				return fmt.Errorf("%w: empty positions for %q in %d", apperrors.ErrInvalidInput, term, doc)
			}
			for k, pos := range positions {
				if k > 0 && pos <= positions[k-1] {
					return fmt.Errorf("%w: positions for %q in %d not strictly ascending", apperrors.ErrInvalidInput, term, doc)
				}
				ix.add(term, doc, pos)
			}
			last = term
			return nil
		})
		if err != nil {
			return nil, err
		}
		return ix, nil
	}

	ix := newNonPositional(v)
	var last string
	err := walk(func(term string, doc DocID, _ Positions) error {
		list, seen := ix.postings[term]
		if seen && term != last {
			return fmt.Errorf("%w: postings for %q are not contiguous", apperrors.ErrInvalidInput, term)
		}
		if seen && doc <= list[len(list)-1] {
			return fmt.Errorf("%w: postings for %q not strictly ascending", apperrors.ErrInvalidInput, term)
		}
		ix.add(term, doc)
		last = term
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ix, nil
}
