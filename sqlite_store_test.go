package trailproof

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSQLiteStore_AppendAndReadAll(t *testing.T) {
	dir, err := os.MkdirTemp("", "trailproof-sqlite-*")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	dsn := "file:" + filepath.Join(dir, "audit.db")
	store, err := OpenSQLiteStore(dsn)
	if err != nil {
		t.Fatalf("OpenSQLiteStore failed: %v", err)
	}
	defer store.Close()

	events := sampleEvents(3)
	for _, ev := range events {
		if err := store.Append(ev); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	got, err := store.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 events, got %d", len(got))
	}
	for i := range events {
		if got[i].EventID != events[i].EventID || got[i].Hash != events[i].Hash {
			t.Fatalf("event %d mismatch: got %+v, want %+v", i, got[i], events[i])
		}
	}
}

func TestSQLiteStore_LastDigestIsGenesisWhenEmpty(t *testing.T) {
	dir, err := os.MkdirTemp("", "trailproof-sqlite-*")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	dsn := "file:" + filepath.Join(dir, "audit.db")
	store, err := OpenSQLiteStore(dsn)
	if err != nil {
		t.Fatalf("OpenSQLiteStore failed: %v", err)
	}
	defer store.Close()

	digest, err := store.LastDigest()
	if err != nil {
		t.Fatalf("LastDigest failed: %v", err)
	}
	if digest != GenesisDigest {
		t.Fatalf("expected genesis digest, got %q", digest)
	}
}

func TestSQLiteStore_OptionalFieldsRoundTrip(t *testing.T) {
	dir, err := os.MkdirTemp("", "trailproof-sqlite-*")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	dsn := "file:" + filepath.Join(dir, "audit.db")
	store, err := OpenSQLiteStore(dsn)
	if err != nil {
		t.Fatalf("OpenSQLiteStore failed: %v", err)
	}
	defer store.Close()

	ev := sampleEvents(1)[0]
	ev.TraceID = "trc-1"
	ev.SessionID = "sess-1"
	ev.Signature = SignaturePrefix + "deadbeef"
	if err := store.Append(ev); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	got, err := store.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if got[0].TraceID != "trc-1" || got[0].SessionID != "sess-1" || got[0].Signature != ev.Signature {
		t.Fatalf("optional fields did not round trip: %+v", got[0])
	}
}

func TestSQLiteStore_Query(t *testing.T) {
	dir, err := os.MkdirTemp("", "trailproof-sqlite-*")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	dsn := "file:" + filepath.Join(dir, "audit.db")
	store, err := OpenSQLiteStore(dsn)
	if err != nil {
		t.Fatalf("OpenSQLiteStore failed: %v", err)
	}
	defer store.Close()

	for _, ev := range sampleEvents(5) {
		if err := store.Append(ev); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	result, err := store.Query(QueryFilters{Limit: 2})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(result.Events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(result.Events))
	}
}

func TestSQLiteStore_Count(t *testing.T) {
	dir, err := os.MkdirTemp("", "trailproof-sqlite-*")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	dsn := "file:" + filepath.Join(dir, "audit.db")
	store, err := OpenSQLiteStore(dsn)
	if err != nil {
		t.Fatalf("OpenSQLiteStore failed: %v", err)
	}
	defer store.Close()

	for _, ev := range sampleEvents(4) {
		if err := store.Append(ev); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}
	n, err := store.Count()
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 4 {
		t.Fatalf("expected count 4, got %d", n)
	}
}
