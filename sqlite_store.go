package trailproof

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // pure-Go SQLite driver for database/sql
)

// sqliteStore is an additive Store backing: a single WAL-mode SQLite
// database holding one row per event, in insertion order by an
// auto-incrementing rowid.
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens or creates a SQLite-backed Store at dsn (a
// database/sql data source name, e.g. "file:audit.db" or ":memory:").
func OpenSQLiteStore(dsn string) (Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, wrapErr(KindStore, "open sqlite database", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, wrapErr(KindStore, "ping sqlite database", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=FULL;",
		"PRAGMA busy_timeout=5000;",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, wrapErr(KindStore, fmt.Sprintf("set %s", pragma), err)
		}
	}

	schema := `
CREATE TABLE IF NOT EXISTS events (
  seq         INTEGER PRIMARY KEY AUTOINCREMENT,
  event_id    TEXT NOT NULL UNIQUE,
  event_type  TEXT NOT NULL,
  timestamp   TEXT NOT NULL,
  actor_id    TEXT NOT NULL,
  tenant_id   TEXT NOT NULL,
  payload     TEXT NOT NULL,
  prev_hash   TEXT NOT NULL,
  hash        TEXT NOT NULL,
  trace_id    TEXT,
  session_id  TEXT,
  signature   TEXT
);
CREATE INDEX IF NOT EXISTS events_event_type_idx ON events(event_type);
CREATE INDEX IF NOT EXISTS events_trace_id_idx ON events(trace_id);
`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, wrapErr(KindStore, "create sqlite schema", err)
	}

	return &sqliteStore{db: db}, nil
}

func (s *sqliteStore) Append(ev Event) error {
	payload, err := json.Marshal(ev.Payload)
	if err != nil {
		return wrapErr(KindStore, "marshal payload", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = s.db.ExecContext(ctx, `
INSERT INTO events(event_id, event_type, timestamp, actor_id, tenant_id, payload, prev_hash, hash, trace_id, session_id, signature)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.EventID, ev.EventType, ev.Timestamp, ev.ActorID, ev.TenantID, string(payload),
		ev.PrevHash, ev.Hash, nullableText(ev.TraceID), nullableText(ev.SessionID), nullableText(ev.Signature))
	if err != nil {
		return wrapErr(KindStore, "insert event", err)
	}
	return nil
}

func (s *sqliteStore) ReadAll() ([]Event, error) {
	return s.readOrdered()
}

func (s *sqliteStore) Query(filters QueryFilters) (QueryResult, error) {
	events, err := s.readOrdered()
	if err != nil {
		return QueryResult{}, err
	}
	return applyQuery(events, filters), nil
}

func (s *sqliteStore) readOrdered() ([]Event, error) {
	rows, err := s.db.Query(`
SELECT event_id, event_type, timestamp, actor_id, tenant_id, payload, prev_hash, hash, trace_id, session_id, signature
FROM events ORDER BY seq ASC`)
	if err != nil {
		return nil, wrapErr(KindStore, "query events", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var ev Event
		var payload string
		var traceID, sessionID, signature sql.NullString
		if err := rows.Scan(&ev.EventID, &ev.EventType, &ev.Timestamp, &ev.ActorID, &ev.TenantID,
			&payload, &ev.PrevHash, &ev.Hash, &traceID, &sessionID, &signature); err != nil {
			return nil, wrapErr(KindStore, "scan event row", err)
		}
		if err := json.Unmarshal([]byte(payload), &ev.Payload); err != nil {
			return nil, wrapErr(KindStore, "unmarshal payload", err)
		}
		ev.TraceID = traceID.String
		ev.SessionID = sessionID.String
		ev.Signature = signature.String
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr(KindStore, "iterate event rows", err)
	}
	return out, nil
}

func (s *sqliteStore) LastDigest() (string, error) {
	var hash string
	err := s.db.QueryRow(`SELECT hash FROM events ORDER BY seq DESC LIMIT 1`).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return GenesisDigest, nil
	}
	if err != nil {
		return "", wrapErr(KindStore, "select last digest", err)
	}
	return hash, nil
}

func (s *sqliteStore) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM events`).Scan(&n); err != nil {
		return 0, wrapErr(KindStore, "count events", err)
	}
	return n, nil
}

// Flush is a no-op: every Append commits synchronously (PRAGMA
// synchronous=FULL), so there is nothing buffered to surface.
func (s *sqliteStore) Flush() error { return nil }

func (s *sqliteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return wrapErr(KindStore, "close sqlite database", err)
	}
	return nil
}

func nullableText(s string) any {
	if s == "" {
		return nil
	}
	return s
}
