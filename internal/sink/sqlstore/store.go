// Package sqlstore exports indexes and corpus statistics to PostgreSQL or
// SQLite tables.
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/crawl-index/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/crawl-index/internal/stats"
	"github.com/Adithya-Monish-Kumar-K/crawl-index/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/crawl-index/pkg/postgres"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS index_postings (
		field     TEXT    NOT NULL,
		variant   TEXT    NOT NULL,
		term      TEXT    NOT NULL,
		term_rank INTEGER NOT NULL,
		doc_id    BIGINT  NOT NULL,
		positions TEXT,
		PRIMARY KEY (field, variant, term, doc_id)
	)`,
	`CREATE TABLE IF NOT EXISTS corpus_statistics (
		label                   TEXT             PRIMARY KEY,
		label_rank              INTEGER          NOT NULL,
		total_documents         BIGINT,
		total_tokens            BIGINT           NOT NULL,
		unique_tokens           BIGINT           NOT NULL,
		avg_tokens_per_document DOUBLE PRECISION NOT NULL,
		lexical_diversity       DOUBLE PRECISION NOT NULL,
		distribution            TEXT
	)`,
}

// Store writes to the tables index_postings and corpus_statistics. A write
// replaces whatever an earlier run stored for the same field and variant.
type Store struct {
	client *postgres.Client
	logger *slog.Logger
}

// New returns a Store over client and creates the tables if needed.
func New(ctx context.Context, client *postgres.Client) (*Store, error) {
	s := &Store{
		client: client,
		logger: logger.WithComponent("sql-store").With("driver", client.Driver),
	}
	for _, stmt := range schema {
		if _, err := client.DB.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("creating schema: %w", err)
		}
	}
	return s, nil
}

func (s *Store) Name() string { return s.client.Driver }

func (s *Store) Close() error { return s.client.Close() }

// bind rewrites ? placeholders into $n for PostgreSQL.
func (s *Store) bind(query string) string {
	if s.client.Driver != postgres.DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *Store) WriteIndex(ctx context.Context, field string, ix index.Index) error {
	variant := ix.Variant().String()
	rows := 0
	err := s.client.InTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			s.bind(`DELETE FROM index_postings WHERE field = ? AND variant = ?`),
			field, variant); err != nil {
			return fmt.Errorf("clearing previous postings: %w", err)
		}
		stmt, err := tx.PrepareContext(ctx, s.bind(
			`INSERT INTO index_postings (field, variant, term, term_rank, doc_id, positions)
			VALUES (?, ?, ?, ?, ?, ?)`))
		if err != nil {
			return fmt.Errorf("preparing insert: %w", err)
		}
		defer stmt.Close()

		rank := -1
		last := ""
		return ix.Each(func(term string, doc index.DocID, positions index.Positions) error {
			if rank < 0 || term != last {
				rank++
				last = term
			}
			var pos sql.NullString
			if positions != nil {
				data, err := json.Marshal(positions)
				if err != nil {
					return err
				}
				pos = sql.NullString{String: string(data), Valid: true}
			}
			if _, err := stmt.ExecContext(ctx, field, variant, term, rank, int64(doc), pos); err != nil {
				return fmt.Errorf("inserting posting %q/%d: %w", term, doc, err)
			}
			rows++
			return nil
		})
	})
	if err != nil {
		return fmt.Errorf("writing %s index for %q: %w", variant, field, err)
	}
	s.logger.Debug("index exported", "field", field, "variant", variant, "rows", rows)
	return nil
}

// LoadIndex reads back an index written by WriteIndex. A field and variant
// never written yield an empty index.
func (s *Store) LoadIndex(ctx context.Context, field string, v index.Variant) (index.Index, error) {
	rows, err := s.client.DB.QueryContext(ctx, s.bind(
		`SELECT term, doc_id, positions FROM index_postings
		WHERE field = ? AND variant = ?
		ORDER BY term_rank, doc_id`), field, v.String())
	if err != nil {
		return nil, fmt.Errorf("querying postings: %w", err)
	}
	defer rows.Close()

	ix, err := index.Collect(v, func(emit func(string, index.DocID, index.Positions) error) error {
		for rows.Next() {
			var (
				term string
				doc  int64
				raw  sql.NullString
			)
			if err := rows.Scan(&term, &doc, &raw); err != nil {
				return fmt.Errorf("scanning posting: %w", err)
			}
			var positions index.Positions
			if raw.Valid {
				if err := json.Unmarshal([]byte(raw.String), &positions); err != nil {
					return fmt.Errorf("decoding positions for %q/%d: %w", term, doc, err)
				}
			}
			if err := emit(term, index.DocID(doc), positions); err != nil {
				return err
			}
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("loading %s index for %q: %w", v, field, err)
	}
	return ix, nil
}

func (s *Store) WriteStatistics(ctx context.Context, cs *stats.CorpusStatistics) error {
	err := s.client.InTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM corpus_statistics`); err != nil {
			return fmt.Errorf("clearing previous statistics: %w", err)
		}
		insert := s.bind(`INSERT INTO corpus_statistics
			(label, label_rank, total_documents, total_tokens, unique_tokens,
			 avg_tokens_per_document, lexical_diversity, distribution)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)

		global := sql.NullInt64{Int64: int64(cs.TotalDocuments), Valid: true}
		if err := s.insertStatistics(ctx, tx, insert, stats.GlobalLabel, 0, global, cs.Global); err != nil {
			return err
		}
		for i, f := range cs.Fields {
			if err := s.insertStatistics(ctx, tx, insert, f.Label, i+1, sql.NullInt64{}, f.Statistics); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("writing statistics: %w", err)
	}
	return nil
}

func (s *Store) insertStatistics(ctx context.Context, tx *sql.Tx, query, label string, rank int, docs sql.NullInt64, fs stats.FieldStatistics) error {
	var dist sql.NullString
	if fs.Distribution != nil {
		data, err := json.Marshal(fs.Distribution)
		if err != nil {
			return err
		}
		dist = sql.NullString{String: string(data), Valid: true}
	}
	_, err := tx.ExecContext(ctx, query,
		label, rank, docs, fs.TotalTokens, fs.UniqueTokens,
		fs.AvgTokensPerDocument, fs.LexicalDiversity, dist)
	if err != nil {
		return fmt.Errorf("inserting statistics for %q: %w", label, err)
	}
	return nil
}

// LoadStatistics reads back the statistics written by WriteStatistics.
func (s *Store) LoadStatistics(ctx context.Context) (*stats.CorpusStatistics, error) {
	rows, err := s.client.DB.QueryContext(ctx,
		`SELECT label, total_documents, total_tokens, unique_tokens,
			avg_tokens_per_document, lexical_diversity, distribution
		FROM corpus_statistics ORDER BY label_rank`)
	if err != nil {
		return nil, fmt.Errorf("querying statistics: %w", err)
	}
	defer rows.Close()

	cs := &stats.CorpusStatistics{Fields: []stats.LabeledStatistics{}}
	for rows.Next() {
		var (
			label string
			docs  sql.NullInt64
			fs    stats.FieldStatistics
			dist  sql.NullString
		)
		if err := rows.Scan(&label, &docs, &fs.TotalTokens, &fs.UniqueTokens,
			&fs.AvgTokensPerDocument, &fs.LexicalDiversity, &dist); err != nil {
			return nil, fmt.Errorf("scanning statistics: %w", err)
		}
		if dist.Valid {
			fs.Distribution = &stats.Distribution{}
			if err := json.Unmarshal([]byte(dist.String), fs.Distribution); err != nil {
				return nil, fmt.Errorf("decoding distribution for %q: %w", label, err)
			}
		}
		if label == stats.GlobalLabel {
			cs.TotalDocuments = int(docs.Int64)
			cs.Global = fs
			continue
		}
		cs.Fields = append(cs.Fields, stats.LabeledStatistics{Label: label, Statistics: fs})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading statistics: %w", err)
	}
	return cs, nil
}
