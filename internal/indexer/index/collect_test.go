package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Adithya-Monish-Kumar-K/crawl-index/pkg/errors"
)

func TestCollectRebuildsEach(t *testing.T) {
	b := NewBuilder(nil)
	for _, v := range AllVariants {
		t.Run(v.String(), func(t *testing.T) {
			built := b.Build(titleStreams, v)
			rebuilt, err := Collect(v, built.Each)
			require.NoError(t, err)
			assert.Equal(t, built, rebuilt)
		})
	}
}

type triple struct {
	term      string
	doc       DocID
	positions Positions
}

func replay(triples ...triple) func(emit func(string, DocID, Positions) error) error {
	return func(emit func(string, DocID, Positions) error) error {
		for _, tr := range triples {
			if err := emit(tr.term, tr.doc, tr.positions); err != nil {
				return err
			}
		}
		return nil
	}
}

func TestCollectRejectsDisorder(t *testing.T) {
	tests := []struct {
		name    string
		variant Variant
		walk    func(emit func(string, DocID, Positions) error) error
	}{
		{"descending docs", NonPositionalVariant, replay(triple{"a", 2, nil}, triple{"a", 1, nil})},
		{"split term", NonPositionalVariant, replay(triple{"a", 0, nil}, triple{"b", 0, nil}, triple{"a", 1, nil})},
		{"missing positions", PositionalVariant, replay(triple{"a", 0, nil})},
		{"descending positions", PositionalVariant, replay(triple{"a", 0, Positions{3, 1}})},
		{"repeated doc", PositionalVariant, replay(triple{"a", 0, Positions{1}}, triple{"a", 0, Positions{2}})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Collect(tt.variant, tt.walk)
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		})
	}
}
