package stats

import (
	"bytes"
	"encoding/json"
	"fmt"

	apperrors "github.com/Adithya-Monish-Kumar-K/crawl-index/pkg/errors"
)

type globalStatistics struct {
	TotalDocuments int `json:"total_documents"`
	FieldStatistics
}

// MarshalJSON writes {"global": {...}, "<label>": {...}, ...} with the global
// entry first and fields in their supplied order.
func (s *CorpusStatistics) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	buf.WriteByte('{')
	if err := writeEntry(&buf, enc, GlobalLabel, globalStatistics{
		TotalDocuments:  s.TotalDocuments,
		FieldStatistics: s.Global,
	}); err != nil {
		return nil, err
	}
	for _, f := range s.Fields {
		buf.WriteByte(',')
		if err := writeEntry(&buf, enc, f.Label, f.Statistics); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeEntry(buf *bytes.Buffer, enc *json.Encoder, key string, value any) error {
	if err := enc.Encode(key); err != nil {
		return fmt.Errorf("encoding label %q: %w", key, err)
	}
	buf.Truncate(buf.Len() - 1)
	buf.WriteByte(':')
	if err := enc.Encode(value); err != nil {
		return fmt.Errorf("encoding statistics for %q: %w", key, err)
	}
	buf.Truncate(buf.Len() - 1)
	return nil
}

func (s *CorpusStatistics) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("reading statistics: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("%w: statistics must be an object", apperrors.ErrInvalidInput)
	}

	var out CorpusStatistics
	var haveGlobal bool
	seen := make(map[string]struct{})
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("reading statistics key: %w", err)
		}
		label, ok := tok.(string)
		if !ok {
			return fmt.Errorf("%w: unexpected token %v", apperrors.ErrInvalidInput, tok)
		}
		if _, dup := seen[label]; dup {
			return fmt.Errorf("%w: duplicate label %q", apperrors.ErrInvalidInput, label)
		}
		seen[label] = struct{}{}

		if label == GlobalLabel {
			var g globalStatistics
			if err := dec.Decode(&g); err != nil {
				return fmt.Errorf("decoding global statistics: %w", err)
			}
			out.TotalDocuments = g.TotalDocuments
			out.Global = g.FieldStatistics
			haveGlobal = true
			continue
		}
		var fs FieldStatistics
		if err := dec.Decode(&fs); err != nil {
			return fmt.Errorf("decoding statistics for %q: %w", label, err)
		}
		out.Fields = append(out.Fields, LabeledStatistics{Label: label, Statistics: fs})
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("reading statistics end: %w", err)
	}
	if !haveGlobal {
		return fmt.Errorf("%w: missing %q entry", apperrors.ErrInvalidInput, GlobalLabel)
	}
	*s = out
	return nil
}
