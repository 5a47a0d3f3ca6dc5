package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"git.home.luguber.info/inful/snowbow/internal/foundation/errors"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// OpenSQLite opens or creates the database at dbPath, creating its parent
// directory. Use ":memory:" for an in-memory database.
func OpenSQLite(dbPath string) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, errors.WrapError(err, errors.CategoryHistory, "create history directory").
				WithContext("path", dbPath).Build()
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryHistory, "open history database").
			WithContext("path", dbPath).Build()
	}
	// One connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, errors.WrapError(err, errors.CategoryHistory, "initialize history schema").
			WithContext("path", dbPath).Build()
	}
	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS builds (
		id TEXT PRIMARY KEY,
		started INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		trigger TEXT NOT NULL,
		files INTEGER NOT NULL,
		bytes INTEGER NOT NULL,
		articles INTEGER NOT NULL,
		digest TEXT NOT NULL,
		revision TEXT NOT NULL,
		stages TEXT,
		error TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_builds_started ON builds(started);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append adds a record.
func (s *SQLiteStore) Append(ctx context.Context, r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stagesJSON []byte
	if len(r.Stages) > 0 {
		ms := make(map[string]int64, len(r.Stages))
		for k, d := range r.Stages {
			ms[k] = d.Milliseconds()
		}
		var err error
		stagesJSON, err = json.Marshal(ms)
		if err != nil {
			return errors.WrapError(err, errors.CategoryHistory, "marshal stage timings").Build()
		}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO builds (id, started, duration_ms, trigger, files, bytes, articles, digest, revision, stages, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Started.UnixMilli(), r.Duration.Milliseconds(), r.Trigger, r.Files, r.Bytes, r.Articles,
		r.Digest, r.Revision, stagesJSON, r.Error,
	)
	if err != nil {
		return errors.WrapError(err, errors.CategoryHistory, "insert build record").
			WithContext("build_id", r.ID).Build()
	}
	return nil
}

// Recent returns up to limit records, newest first. A limit <= 0 returns all.
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started, duration_ms, trigger, files, bytes, articles, digest, revision, stages, error
		 FROM builds ORDER BY started DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryHistory, "query build records").Build()
	}
	defer rows.Close()

	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	var out []Record
	for rows.Next() {
		var r Record
		var started, durationMS int64
		var stagesJSON []byte
		err := rows.Scan(&r.ID, &started, &durationMS, &r.Trigger, &r.Files, &r.Bytes, &r.Articles,
			&r.Digest, &r.Revision, &stagesJSON, &r.Error)
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryHistory, "scan build record").Build()
		}
		r.Started = time.UnixMilli(started)
		r.Duration = time.Duration(durationMS) * time.Millisecond

		if len(stagesJSON) > 0 {
			var ms map[string]int64
			if err := json.Unmarshal(stagesJSON, &ms); err != nil {
				return nil, errors.WrapError(err, errors.CategoryHistory, "unmarshal stage timings").
					WithContext("build_id", r.ID).Build()
			}
			r.Stages = make(map[string]time.Duration, len(ms))
			for k, v := range ms {
				r.Stages[k] = time.Duration(v) * time.Millisecond
			}
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapError(err, errors.CategoryHistory, "iterate build records").Build()
	}
	return out, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
