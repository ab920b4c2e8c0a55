// Package stemmer reduces tokens to their stems. Every Stemmer is a pure 1:1
// transform: it never drops or merges tokens.
package stemmer

import (
	"fmt"
	"strings"

	"github.com/kljensen/snowball/english"

	apperrors "github.com/Adithya-Monish-Kumar-K/crawl-index/pkg/errors"
)

type Stemmer interface {
	Stem(token string) string
}

// New returns the stemmer registered under name ("porter" or "suffix").
func New(name string) (Stemmer, error) {
	switch name {
	case "", "porter":
		return Porter{}, nil
	case "suffix":
		return Suffix{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", apperrors.ErrUnknownStemmer, name)
	}
}

// Porter is the Snowball English (Porter2) stemmer. Output is lowercased.
type Porter struct{}

func (Porter) Stem(token string) string {
	return english.Stem(token, true)
}

// Suffix strips common English suffixes without lowercasing its input.
type Suffix struct{}

var suffixRules = []struct {
	suffix      string
	replacement string
	minLen      int
}{
	{"ational", "ate", 2},
	{"tional", "tion", 2},
	{"encies", "ence", 2},
	{"ances", "ance", 2},
	{"ments", "ment", 2},
	{"izing", "ize", 2},
	{"ating", "ate", 2},
	{"iness", "y", 2},
	{"ously", "ous", 2},
	{"ively", "ive", 2},
	{"eness", "ene", 2},
	{"tion", "t", 3},
	{"sion", "s", 3},
	{"ying", "y", 2},
	{"ling", "l", 3},
	{"ies", "y", 2},
	{"ing", "", 3},
	{"ers", "er", 2},
	{"est", "", 3},
	{"ful", "", 3},
	{"ous", "", 3},
	{"ess", "", 3},
	{"ble", "", 3},
	{"ed", "", 3},
	{"er", "", 3},
	{"ly", "", 3},
	{"es", "", 3},
	{"ss", "ss", 2},
	{"s", "", 3},
}

// Stem applies the first matching rule whose result keeps the minimum length.
func (Suffix) Stem(token string) string {
	for _, rule := range suffixRules {
		if strings.HasSuffix(token, rule.suffix) {
			stem := token[:len(token)-len(rule.suffix)] + rule.replacement
			if len(stem) >= rule.minLen {
				return stem
			}
		}
	}
	return token
}

// Func adapts a plain function to the Stemmer interface.
type Func func(token string) string

func (f Func) Stem(token string) string {
	return f(token)
}
