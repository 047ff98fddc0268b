// Package kvstore implements the per-schema, per-dictionary embedded
// key/value table: a single SQLite file mapping a string key to the JSON
// array of shard entries sharing that key, with an index on the key column.
package kvstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/jreader/yomitanctl/internal/jerrors"
)

// schemaSQL creates the single table/index pair used by every schema file.
// The table is named term_entry regardless of which shard it backs, mirroring
// the schema given for the KV store (one physical layout reused per file).
const schemaSQL = `
PRAGMA page_size = 4096;
CREATE TABLE IF NOT EXISTS term_entry (
  id   INTEGER PRIMARY KEY,
  key  TEXT NOT NULL,
  json BLOB
);
CREATE INDEX IF NOT EXISTS idx_term_key ON term_entry(key);
`

// BatchSize is the number of (key, json) rows InsertAll writes between two
// progress increments. All rows of one InsertAll share a single transaction.
const BatchSize = 1000

// ProgressSink is the narrow interface InsertAll needs from a progress
// tracker. internal/progress.Tracker satisfies it structurally.
type ProgressSink interface {
	CreateTask(groupID, taskType, title, revision, schemaName string, total int64) (string, error)
	Increment(taskID string, delta int64) error
}

// Store is a per-schema, per-dictionary embedded KV table, generic over the
// entry type it persists (one of the five yomitan shard schemas).
type Store[T any] struct {
	mu   sync.Mutex
	db   *sql.DB
	path string
}

// FileName returns the on-disk file name for a schema prefix, e.g.
// "term_bank_" -> "term_bank_dict.db".
func FileName(schemaPrefix string) string {
	return schemaPrefix + "dict.db"
}

// OpenRW opens (creating if absent) the store for schemaPrefix under dir,
// ensuring the schema and index exist.
func OpenRW[T any](dir, schemaPrefix string) (*Store[T], error) {
	path := filepath.Join(dir, FileName(schemaPrefix))
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, jerrors.New(jerrors.Storage, "kvstore.OpenRW", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, jerrors.New(jerrors.Storage, "kvstore.OpenRW: init schema", err)
	}
	return &Store[T]{db: db, path: path}, nil
}

// OpenRO opens an existing store read-only, returning ok=false if the file
// is absent.
func OpenRO[T any](dir, schemaPrefix string) (store *Store[T], ok bool, err error) {
	path := filepath.Join(dir, FileName(schemaPrefix))
	dsn := fmt.Sprintf("file:%s?mode=ro", path)
	db, openErr := sql.Open("sqlite3", dsn)
	if openErr != nil {
		return nil, false, jerrors.New(jerrors.Storage, "kvstore.OpenRO", openErr)
	}
	if pingErr := db.Ping(); pingErr != nil {
		db.Close()
		return nil, false, nil
	}
	return &Store[T]{db: db, path: path}, true, nil
}

// Close releases the underlying database handle.
func (s *Store[T]) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// InsertAll bulk-inserts grouped entries (key -> ordered entries sharing
// that key) inside a single transaction, one row per statement, and reports
// progress through sink under one task, incremented once per BatchSize rows.
func (s *Store[T]) InsertAll(ctx context.Context, grouped map[string][]T, sink ProgressSink, title, revision, schemaName, groupID, taskType string) error {
	keys := make([]string, 0, len(grouped))
	for k := range grouped {
		if k == "" {
			return jerrors.New(jerrors.Storage, "kvstore.InsertAll", fmt.Errorf("empty key is not permitted"))
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	totalBatches := int64((len(keys) + BatchSize - 1) / BatchSize)
	var taskID string
	if sink != nil && totalBatches > 0 {
		var err error
		taskID, err = sink.CreateTask(groupID, taskType, title, revision, schemaName, totalBatches)
		if err != nil {
			return jerrors.New(jerrors.Storage, "kvstore.InsertAll: create task", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return jerrors.New(jerrors.Storage, "kvstore.InsertAll: begin tx", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO term_entry (key, json) VALUES (?, ?)")
	if err != nil {
		return jerrors.New(jerrors.Storage, "kvstore.InsertAll: prepare", err)
	}
	defer stmt.Close()

	for batchStart := 0; batchStart < len(keys); batchStart += BatchSize {
		end := batchStart + BatchSize
		if end > len(keys) {
			end = len(keys)
		}
		for _, key := range keys[batchStart:end] {
			payload, err := json.Marshal(grouped[key])
			if err != nil {
				return jerrors.New(jerrors.Storage, "kvstore.InsertAll: marshal", err)
			}
			if _, err := stmt.ExecContext(ctx, key, payload); err != nil {
				return jerrors.New(jerrors.Storage, "kvstore.InsertAll: exec", err)
			}
		}
		if sink != nil && taskID != "" {
			if err := sink.Increment(taskID, 1); err != nil {
				return jerrors.New(jerrors.Storage, "kvstore.InsertAll: increment progress", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return jerrors.New(jerrors.Storage, "kvstore.InsertAll: commit", err)
	}
	return nil
}

// Get returns the entries stored under key, decoded into T, or ok=false if
// absent. Keys are logically unique per schema; if a producer violated that,
// the first matching row wins.
func (s *Store[T]) Get(key string) (entries []T, ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var raw []byte
	row := s.db.QueryRow("SELECT json FROM term_entry WHERE key = ? LIMIT 1", key)
	if err := row.Scan(&raw); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, jerrors.New(jerrors.Storage, "kvstore.Get", err)
	}
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, false, jerrors.New(jerrors.SchemaDecode, "kvstore.Get: decode", err)
	}
	return entries, true, nil
}

// GetFirstRow returns the entries of any one row in the table (used for
// classification) or ok=false if the table is empty.
func (s *Store[T]) GetFirstRow() (entries []T, ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var raw []byte
	row := s.db.QueryRow("SELECT json FROM term_entry LIMIT 1")
	if err := row.Scan(&raw); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, jerrors.New(jerrors.Storage, "kvstore.GetFirstRow", err)
	}
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, false, jerrors.New(jerrors.SchemaDecode, "kvstore.GetFirstRow: decode", err)
	}
	return entries, true, nil
}

// Count returns the number of rows (distinct keys) in the table.
func (s *Store[T]) Count() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	if err := s.db.QueryRow("SELECT COUNT(*) FROM term_entry").Scan(&count); err != nil {
		return 0, jerrors.New(jerrors.Storage, "kvstore.Count", err)
	}
	return count, nil
}

// Group buckets entries by a caller-supplied key function, preserving the
// input order of entries sharing a key. This is the "grouped_entries" input
// InsertAll expects.
func Group[T any](entries []T, keyFn func(T) string) map[string][]T {
	grouped := make(map[string][]T)
	for _, e := range entries {
		k := keyFn(e)
		grouped[k] = append(grouped[k], e)
	}
	return grouped
}

// TrimDBSuffix strips the trailing "dict.db" a schema file name carries, used
// when deriving a schema name for progress reporting from a file name.
func TrimDBSuffix(name string) string {
	return strings.TrimSuffix(name, "dict.db")
}
