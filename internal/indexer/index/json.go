package index

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	apperrors "github.com/Adithya-Monish-Kumar-K/crawl-index/pkg/errors"
)

// MarshalJSON writes {"term": [doc, ...], ...} with terms in first-seen order.
func (ix *NonPositional) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, term := range ix.terms {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeKey(&buf, term); err != nil {
			return nil, err
		}
		writeInts(&buf, ix.postings[term])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalJSON writes {"term": {"doc": [pos, ...], ...}, ...}. Document ids
// become object keys, as JSON only allows string keys.
func (ix *Positional) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, term := range ix.terms {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeKey(&buf, term); err != nil {
			return nil, err
		}
		tp := ix.postings[term]
		buf.WriteByte('{')
		for j, doc := range tp.docs {
			if j > 0 {
				buf.WriteByte(',')
			}
			buf.WriteByte('"')
			buf.WriteString(strconv.FormatUint(uint64(doc), 10))
			buf.WriteString(`":`)
			writeInts(&buf, tp.positions[doc])
		}
		buf.WriteByte('}')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads the MarshalJSON form back, keeping key order and
// rejecting postings that break the ordering invariants. The receiver's
// stemmed flag is preserved.
func (ix *NonPositional) UnmarshalJSON(data []byte) error {
	out := newNonPositional(ix.variant)
	dec := json.NewDecoder(bytes.NewReader(data))
	err := decodeObject(dec, func(term string) error {
		if _, dup := out.postings[term]; dup {
			return fmt.Errorf("%w: duplicate term %q", apperrors.ErrInvalidInput, term)
		}
		var list PostingList
		if err := dec.Decode(&list); err != nil {
			return fmt.Errorf("decoding postings for %q: %w", term, err)
		}
		if len(list) == 0 {
			return fmt.Errorf("%w: empty postings for %q", apperrors.ErrInvalidInput, term)
		}
		for k := 1; k < len(list); k++ {
			if list[k] <= list[k-1] {
				return fmt.Errorf("%w: postings for %q not strictly ascending", apperrors.ErrInvalidInput, term)
			}
		}
		out.terms = append(out.terms, term)
		out.postings[term] = list
		return nil
	})
	if err != nil {
		return err
	}
	*ix = *out
	return nil
}

func (ix *Positional) UnmarshalJSON(data []byte) error {
	out := newPositional(ix.variant)
	dec := json.NewDecoder(bytes.NewReader(data))
	err := decodeObject(dec, func(term string) error {
		if _, dup := out.postings[term]; dup {
			return fmt.Errorf("%w: duplicate term %q", apperrors.ErrInvalidInput, term)
		}
		tp := &termPositions{positions: make(map[DocID]Positions)}
		err := decodeObject(dec, func(key string) error {
			id, err := strconv.ParseUint(key, 10, 32)
			if err != nil {
				return fmt.Errorf("%w: document id %q under %q", apperrors.ErrInvalidInput, key, term)
			}
			doc := DocID(id)
			if n := len(tp.docs); n > 0 && doc <= tp.docs[n-1] {
				return fmt.Errorf("%w: documents for %q not strictly ascending", apperrors.ErrInvalidInput, term)
			}
			var positions Positions
			if err := dec.Decode(&positions); err != nil {
				return fmt.Errorf("decoding positions for %q in %d: %w", term, doc, err)
			}
			if len(positions) == 0 {
				return fmt.Errorf("%w: empty positions for %q in %d", apperrors.ErrInvalidInput, term, doc)
			}
			for k := 1; k < len(positions); k++ {
				if positions[k] <= positions[k-1] {
					return fmt.Errorf("%w: positions for %q in %d not strictly ascending", apperrors.ErrInvalidInput, term, doc)
				}
			}
			tp.docs = append(tp.docs, doc)
			tp.positions[doc] = positions
			return nil
		})
		if err != nil {
			return err
		}
		out.terms = append(out.terms, term)
		out.postings[term] = tp
		return nil
	})
	if err != nil {
		return err
	}
	*ix = *out
	return nil
}

// Decode reads an index of variant v from r.
func Decode(r io.Reader, v Variant) (Index, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading index: %w", err)
	}
	if v.Positional {
		ix := newPositional(v)
		if err := ix.UnmarshalJSON(data); err != nil {
			return nil, err
		}
		return ix, nil
	}
	ix := newNonPositional(v)
	if err := ix.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return ix, nil
}

// decodeObject consumes one JSON object from dec, calling fn for each key in
// document order. fn must consume the key's value.
func decodeObject(dec *json.Decoder, fn func(key string) error) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("reading object start: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("%w: expected object, got %v", apperrors.ErrInvalidInput, tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("reading object key: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("%w: expected object key, got %v", apperrors.ErrInvalidInput, tok)
		}
		if err := fn(key); err != nil {
			return err
		}
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("reading object end: %w", err)
	}
	return nil
}

func writeKey(buf *bytes.Buffer, key string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(key); err != nil {
		return fmt.Errorf("encoding term %q: %w", key, err)
	}
	buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
	buf.WriteByte(':')
	return nil
}

func writeInts[T ~int | ~uint32](buf *bytes.Buffer, values []T) {
	buf.WriteByte('[')
	for i, v := range values {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.FormatInt(int64(v), 10))
	}
	buf.WriteByte(']')
}
