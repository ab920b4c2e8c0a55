// Package corpus loads crawled documents and turns their text fields into
// token streams.
package corpus

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/Adithya-Monish-Kumar-K/crawl-index/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/crawl-index/internal/indexer/tokenizer"
	apperrors "github.com/Adithya-Monish-Kumar-K/crawl-index/pkg/errors"
)

// Fields every crawled document is expected to carry.
const (
	FieldTitle   = "title"
	FieldContent = "content"
	FieldH1      = "h1"
)

// ExtendedFields are the fields reported when extended statistics are on.
var ExtendedFields = []string{FieldTitle, FieldContent, FieldH1}

// Document is one crawled page. Values stay raw until a field is read so
// that keys the indexer does not use (url, links, ...) cost nothing.
type Document map[string]json.RawMessage

// Text returns the string value of field. ok is false with a reason when
// the field is missing, null, or not a string.
func (d Document) Text(field string) (text string, reason string, ok bool) {
	raw, present := d[field]
	if !present {
		return "", "is missing", false
	}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return "", "is null", false
	}
	if err := json.Unmarshal(raw, &text); err != nil {
		return "", "is not a string", false
	}
	return text, "", true
}

// Load reads a JSON array of documents from path.
func Load(path string) ([]Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening corpus %s: %w", path, err)
	}
	defer f.Close()

	docs, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("loading corpus %s: %w", path, err)
	}
	return docs, nil
}

// Decode reads a JSON array of documents from r.
func Decode(r io.Reader) ([]Document, error) {
	var docs []Document
	if err := json.NewDecoder(r).Decode(&docs); err != nil {
		return nil, fmt.Errorf("%w: decoding documents: %v", apperrors.ErrMalformedInput, err)
	}
	if docs == nil {
		docs = []Document{}
	}
	for i, doc := range docs {
		if doc == nil {
			return nil, apperrors.NewMalformedInput(i, "", "document is null")
		}
	}
	return docs, nil
}

// FieldStreams tokenizes field in every document. The i-th stream belongs to
// docs[i]. A document whose field is unusable fails the whole call with a
// MalformedInputError.
func FieldStreams(docs []Document, field string, tok tokenizer.Tokenizer) ([]index.TokenStream, error) {
	streams := make([]index.TokenStream, len(docs))
	for i, doc := range docs {
		text, reason, ok := doc.Text(field)
		if !ok {
			return nil, apperrors.NewMalformedInput(i, field, reason)
		}
		streams[i] = tok.Tokenize(text)
	}
	return streams, nil
}
