package trailproof

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
)

const jsonlFilePerm = 0o600

// jsonlStore is the durable Store backing described in §4.4.3: one JSON
// object per line, '\n'-terminated, with the trailing newline after the
// last record required for append safety. Construction scans the existing
// file (if any) and rebuilds an in-memory mirror that backs ReadAll/Query/
// LastDigest/Count; corrupt or invalid lines are skipped with a logged
// warning rather than failing the open.
type jsonlStore struct {
	mu     sync.Mutex
	path   string
	file   *os.File
	logger *slog.Logger

	events       []Event
	corruptLines []int
}

// OpenJSONLStore opens (or lazily prepares to create) a line-delimited JSON
// store at path. If path does not exist, no I/O is performed until the
// first Append. If it exists, every line is parsed and validated; lines
// that fail to parse or are missing a mandatory field are skipped and
// logged via logger (slog.Default() if logger is nil).
func OpenJSONLStore(path string, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &jsonlStore{path: path, logger: logger}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, wrapErr(KindStore, "stat jsonl file", err)
	}

	if err := s.loadExisting(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *jsonlStore) loadExisting() error {
	f, err := os.Open(s.path)
	if err != nil {
		return wrapErr(KindStore, "open jsonl file for read", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	line := 0
	for scanner.Scan() {
		text := scanner.Bytes()
		if len(text) == 0 {
			line++
			continue
		}
		ev, err := parseJSONLRecord(text)
		if err != nil {
			s.corruptLines = append(s.corruptLines, line)
			s.logger.Warn("trailproof: skipping corrupt jsonl line",
				"index", line, "path", s.path, "error", err)
			line++
			continue
		}
		s.events = append(s.events, ev)
		line++
	}
	if err := scanner.Err(); err != nil {
		return wrapErr(KindStore, "scan jsonl file", err)
	}
	return nil
}

// parseJSONLRecord decodes a single line and validates that the eight
// mandatory fields of §3 are present with the correct JSON types.
func parseJSONLRecord(line []byte) (Event, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(line, &raw); err != nil {
		return Event{}, fmt.Errorf("invalid json: %w", err)
	}

	required := []string{
		"event_id", "event_type", "timestamp", "actor_id",
		"tenant_id", "payload", "prev_hash", "hash",
	}
	for _, field := range required {
		val, ok := raw[field]
		if !ok || string(val) == "null" {
			return Event{}, fmt.Errorf("missing mandatory field %q", field)
		}
	}

	for _, field := range []string{"event_id", "event_type", "timestamp", "actor_id", "tenant_id", "prev_hash", "hash"} {
		var s string
		if err := json.Unmarshal(raw[field], &s); err != nil {
			return Event{}, fmt.Errorf("field %q is not a string: %w", field, err)
		}
	}
	var payload map[string]any
	if err := json.Unmarshal(raw["payload"], &payload); err != nil {
		return Event{}, fmt.Errorf("field %q is not an object: %w", "payload", err)
	}

	var ev Event
	if err := json.Unmarshal(line, &ev); err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}
	return ev, nil
}

// CorruptLines returns the zero-based indices of lines skipped at load
// time because they failed to parse or validate.
func (s *jsonlStore) CorruptLines() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int, len(s.corruptLines))
	copy(out, s.corruptLines)
	return out
}

func (s *jsonlStore) ensureOpenLocked() error {
	if s.file != nil {
		return nil
	}
	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, jsonlFilePerm)
	if err != nil {
		return wrapErr(KindStore, "open jsonl file for append", err)
	}
	s.file = f
	return nil
}

func (s *jsonlStore) Append(ev Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureOpenLocked(); err != nil {
		return err
	}

	line, err := json.Marshal(ev)
	if err != nil {
		return wrapErr(KindStore, "marshal event", err)
	}
	line = append(line, '\n')

	n, err := s.file.Write(line)
	if err != nil {
		return wrapErr(KindStore, "write jsonl record", err)
	}
	if n != len(line) {
		return wrapErr(KindStore, "incomplete jsonl write", fmt.Errorf("wrote %d of %d bytes", n, len(line)))
	}

	s.events = append(s.events, ev)
	return nil
}

func (s *jsonlStore) ReadAll() ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out, nil
}

func (s *jsonlStore) Query(filters QueryFilters) (QueryResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return applyQuery(s.events, filters), nil
}

func (s *jsonlStore) LastDigest() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.events) == 0 {
		return GenesisDigest, nil
	}
	return s.events[len(s.events)-1].Hash, nil
}

func (s *jsonlStore) Count() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events), nil
}

// Flush surfaces buffered writes to the filesystem. Trailproof does not
// fsync per record by default (§9); Flush is how a caller requests that
// durability explicitly.
func (s *jsonlStore) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	if err := s.file.Sync(); err != nil {
		return wrapErr(KindStore, "sync jsonl file", err)
	}
	return nil
}

func (s *jsonlStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	if err != nil {
		return wrapErr(KindStore, "close jsonl file", err)
	}
	return nil
}
