// Package tokenizer splits document text into ordered token streams. Word
// boundaries follow UAX #29; punctuation is kept as separate tokens and case is
// preserved unless the tokenizer is configured otherwise.
package tokenizer

import (
	"strings"
	"unicode/utf8"

	"github.com/clipperhouse/uax29/v2/words"
	"golang.org/x/text/unicode/norm"
)

// DefaultStopWords is the English stop-word list used when
// Options.DefaultStopWords is set and no explicit list is given.
var DefaultStopWords = []string{
	"a", "an", "and", "are", "as", "at",
	"be", "by", "for", "from", "has", "he",
	"in", "is", "it", "its", "of", "on",
	"or", "that", "the", "to", "was", "were",
	"will", "with", "this", "but", "they",
	"have", "had", "what", "when", "where",
	"who", "which", "their", "if", "each",
	"do", "not", "no", "so", "can",
}

// Tokenizer turns text into an ordered sequence of tokens. Implementations
// must be deterministic.
type Tokenizer interface {
	Tokenize(text string) []string
}

// Options configures a WordTokenizer. The zero value keeps every non-space
// segment exactly as written.
type Options struct {
	Lowercase        bool
	Normalize        bool
	StopWords        []string
	// DefaultStopWords removes DefaultStopWords when StopWords is empty.
	DefaultStopWords bool
	MinLength        int
}

// WordTokenizer is the default Tokenizer.
type WordTokenizer struct {
	lowercase bool
	normalize bool
	minLength int
	stopWords map[string]struct{}
}

func New(opts Options) *WordTokenizer {
	t := &WordTokenizer{
		lowercase: opts.Lowercase,
		normalize: opts.Normalize,
		minLength: opts.MinLength,
	}
	stop := opts.StopWords
	if len(stop) == 0 && opts.DefaultStopWords {
		stop = DefaultStopWords
	}
	if len(stop) > 0 {
		t.stopWords = make(map[string]struct{}, len(stop))
		for _, w := range stop {
			t.stopWords[strings.ToLower(w)] = struct{}{}
		}
	}
	return t
}

// Tokenize never returns nil.
func (t *WordTokenizer) Tokenize(text string) []string {
	if t.normalize {
		text = norm.NFKC.String(text)
	}
	if t.lowercase {
		text = strings.ToLower(text)
	}
	tokens := make([]string, 0, len(text)/6)
	segments := words.FromString(text)
	for segments.Next() {
		seg := segments.Value()
		if strings.TrimSpace(seg) == "" {
			continue
		}
		if t.minLength > 0 && utf8.RuneCountInString(seg) < t.minLength {
			continue
		}
		if t.stopWords != nil {
			if _, isStop := t.stopWords[strings.ToLower(seg)]; isStop {
				continue
			}
		}
		tokens = append(tokens, seg)
	}
	return tokens
}

// Func adapts a plain function to the Tokenizer interface.
type Func func(text string) []string

func (f Func) Tokenize(text string) []string {
	return f(text)
}
