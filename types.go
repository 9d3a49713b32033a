package trailproof

import "strings"

// GenesisDigest is the 64 ASCII-zero digest used as the predecessor of the
// first record in any chain.
var GenesisDigest = strings.Repeat("0", 64)

// SignaturePrefix is the literal prefix of every Event.Signature value.
const SignaturePrefix = "hmac-sha256:"

// Event is the persisted, hash-chained audit record described in §3. The
// eight mandatory fields are always present; TraceID,
// SessionID, and Signature are optional and are omitted entirely from the
// canonical encoding (and, at the store's discretion, from on-disk JSON) when
// absent.
type Event struct {
	EventID   string         `json:"event_id"`
	EventType string         `json:"event_type"`
	Timestamp string         `json:"timestamp"`
	ActorID   string         `json:"actor_id"`
	TenantID  string         `json:"tenant_id"`
	Payload   map[string]any `json:"payload"`
	PrevHash  string         `json:"prev_hash"`
	Hash      string         `json:"hash"`

	TraceID   string `json:"trace_id,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	Signature string `json:"signature,omitempty"`
}

// QueryFilters selects a subset of a store's events. All fields are
// optional; a zero-value QueryFilters (aside from Limit) returns every
// event, subject to pagination.
type QueryFilters struct {
	EventType string
	ActorID   string
	TenantID  string
	TraceID   string
	SessionID string

	// FromTime and ToTime bound the timestamp range inclusively. Comparison
	// is lexicographic, which is sound because Timestamp is fixed-width
	// ISO-8601 UTC.
	FromTime string
	ToTime   string

	// Limit caps the number of events returned. Zero means the default of
	// 100 (use DefaultQueryLimit explicitly to bypass this substitution).
	Limit int

	// Cursor resumes pagination after the given event_id.
	Cursor string
}

// DefaultQueryLimit is applied when QueryFilters.Limit is zero.
const DefaultQueryLimit = 100

// QueryResult is the result of Store.Query / Facade.Query.
type QueryResult struct {
	Events     []Event
	NextCursor string // empty means no further page
}

// VerifyResult is the result of Facade.Verify.
type VerifyResult struct {
	Intact bool
	Total  int
	Broken []int
}
