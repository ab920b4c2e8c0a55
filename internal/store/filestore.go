// Package store persists indexes and corpus statistics as JSON files.
//
// Each index lives in <dir>/<field>.<variant>.json and the statistics in
// <dir>/metadata.json. Files are written to a temporary sibling, synced, and
// renamed into place so a reader never observes a partial file.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/crawl-index/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/crawl-index/internal/stats"
	apperrors "github.com/Adithya-Monish-Kumar-K/crawl-index/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/crawl-index/pkg/logger"
)

// MetadataFile is the name of the statistics file.
const MetadataFile = "metadata.json"

// FileStore reads and writes JSON files under a single directory.
type FileStore struct {
	dir    string
	indent bool
	logger *slog.Logger
}

// NewFileStore returns a store rooted at dir. With indent set, files are
// pretty-printed with two-space indentation.
func NewFileStore(dir string, indent bool) *FileStore {
	return &FileStore{
		dir:    dir,
		indent: indent,
		logger: logger.WithComponent("file-store"),
	}
}

func (s *FileStore) Name() string { return "file" }

func (s *FileStore) Dir() string { return s.dir }

// IndexPath returns the file an index for field and v is stored in.
func (s *FileStore) IndexPath(field string, v index.Variant) string {
	return filepath.Join(s.dir, field+"."+v.String()+".json")
}

func (s *FileStore) WriteIndex(ctx context.Context, field string, ix index.Index) error {
	if err := checkField(field); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	path := s.IndexPath(field, ix.Variant())
	if err := s.writeJSON(path, ix); err != nil {
		return fmt.Errorf("writing %s index for %q: %w", ix.Variant(), field, err)
	}
	s.logger.Debug("index written", "field", field, "variant", ix.Variant().String(), "path", path, "terms", ix.Len())
	return nil
}

func (s *FileStore) WriteStatistics(ctx context.Context, cs *stats.CorpusStatistics) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := filepath.Join(s.dir, MetadataFile)
	if err := s.writeJSON(path, cs); err != nil {
		return fmt.Errorf("writing statistics: %w", err)
	}
	s.logger.Debug("statistics written", "path", path)
	return nil
}

// LoadIndex reads back the index for field and v. A missing file yields
// ErrNotFound.
func (s *FileStore) LoadIndex(field string, v index.Variant) (index.Index, error) {
	if err := checkField(field); err != nil {
		return nil, err
	}
	path := s.IndexPath(field, v)
	f, err := os.Open(path)
	if err != nil {
		return nil, notFound(err, path)
	}
	defer f.Close()

	ix, err := index.Decode(f, v)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return ix, nil
}

func (s *FileStore) LoadStatistics() (*stats.CorpusStatistics, error) {
	path := filepath.Join(s.dir, MetadataFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, notFound(err, path)
	}
	var cs stats.CorpusStatistics
	if err := json.Unmarshal(data, &cs); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return &cs, nil
}

func (s *FileStore) writeJSON(path string, v json.Marshaler) error {
	data, err := v.MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshaling: %w", err)
	}
	if s.indent {
		var buf bytes.Buffer
		if err := json.Indent(&buf, data, "", "  "); err != nil {
			return fmt.Errorf("indenting: %w", err)
		}
		data = buf.Bytes()
	}
	return writeAtomic(path, data)
}

// writeAtomic writes data to a uniquely named .tmp sibling of path, syncs it,
// and renames it over path. Concurrent writers of the same path never share a
// temp file; the last rename wins.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	f, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := f.Name()
	if err := f.Chmod(0644); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("setting temp file mode: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

func checkField(field string) error {
	if field == "" || strings.ContainsAny(field, `/\`) || field == "." || field == ".." {
		return fmt.Errorf("%w: field name %q cannot be used as a file name", apperrors.ErrInvalidInput, field)
	}
	return nil
}

func notFound(err error, path string) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", apperrors.ErrNotFound, path)
	}
	return fmt.Errorf("opening %s: %w", path, err)
}
