// Package trailproof records a tamper-evident audit trail of application
// events. Each event is linked to its predecessor by a SHA-256 digest over a
// canonical encoding of the event, so that any retroactive modification,
// reordering, insertion, or deletion is detectable by a later verification
// pass. Events may optionally carry an HMAC-SHA256 signature proving they
// were recorded by a holder of a shared key.
//
// # Storage backends
//
// Trailproof ships three Store implementations behind one interface:
//
//  1. Memory (memory_store.go) — DEFAULT for tests and short-lived processes.
//     Volatile, holds records in a slice, nothing survives process exit.
//
//  2. JSONL file (jsonl_store.go) — durable, append-only, one JSON object
//     per line. Survives process restarts; reconstructs its in-memory index
//     by scanning the file at construction. Corrupt trailing lines are
//     skipped with a logged warning rather than failing the open.
//
//  3. SQLite (sqlite_store.go) — durable, transactional, useful when an
//     application already depends on SQLite elsewhere or wants SQL access
//     to the audit trail alongside Trailproof's own query surface.
//
// All three obey the same append-only contract: records are never mutated
// or deleted, reads return independent copies, and last-digest/count are
// O(1) or close to it.
//
// # Usage
//
//	tp, err := trailproof.Open(trailproof.Config{
//		Store:           "jsonl",
//		Path:            "/var/log/myapp/audit.jsonl",
//		SigningKey:      []byte("shared-secret"),
//		DefaultTenantID: "acme-corp",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer tp.Flush()
//
//	ev, err := tp.Emit(trailproof.EmitInput{
//		EventType: "billing.invoice.created",
//		ActorID:   "svc-billing",
//		Payload:   map[string]any{"invoice_id": "INV-1001"},
//	})
//
//	result, err := tp.Verify()
//	if err != nil {
//		log.Fatal(err)
//	}
//	if !result.Intact {
//		log.Printf("tampering detected at indices %v", result.Broken)
//	}
package trailproof
