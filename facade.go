package trailproof

import (
	"log/slog"
	"sort"
)

// Config configures a Facade at construction, per §4.5 and §6. There is no
// environment-variable or CLI surface: every knob is a Go value passed
// here.
type Config struct {
	// Store selects the backing: "memory" (default), "jsonl", or "sqlite".
	Store string
	// Path is the file path (jsonl) or DSN (sqlite). Required for those
	// two store kinds.
	Path string
	// SigningKey, if non-nil, enables HMAC-SHA256 signing of every
	// emitted event and is required to verify already-signed records.
	// Treated as opaque bytes; never rotated or derived.
	SigningKey []byte
	// DefaultTenantID supplies Event.TenantID when EmitInput omits one.
	DefaultTenantID string

	// Logger receives warnings (e.g. corrupt jsonl lines). Defaults to
	// slog.Default().
	Logger *slog.Logger

	// clock and idGen are test seams (§9); nil means the production
	// defaults (system clock, crypto-random UUIDv4).
	clock Clock
	idGen IDGenerator
}

// Facade is Trailproof's main entry point: it owns a Store, an optional
// signing key, and an optional default tenant, and implements emit →
// validate → timestamp → link → sign → append, plus query and verify.
type Facade struct {
	store           Store
	signingKey      []byte
	defaultTenantID string
	logger          *slog.Logger
	clock           Clock
	idGen           IDGenerator
}

// Open constructs a Facade per cfg. Unknown store kinds, and "jsonl"/
// "sqlite" without a Path, fail validation before any I/O occurs.
func Open(cfg Config) (*Facade, error) {
	var store Store
	switch cfg.Store {
	case "", "memory":
		store = OpenMemoryStore()
	case "jsonl":
		if cfg.Path == "" {
			return nil, newErr(KindValidation, "path is required for jsonl store")
		}
		s, err := OpenJSONLStore(cfg.Path, cfg.Logger)
		if err != nil {
			return nil, err
		}
		store = s
	case "sqlite":
		if cfg.Path == "" {
			return nil, newErr(KindValidation, "path is required for sqlite store")
		}
		s, err := OpenSQLiteStore(cfg.Path)
		if err != nil {
			return nil, err
		}
		store = s
	default:
		return nil, newErr(KindValidation, "unsupported store kind "+quoteKind(cfg.Store))
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clock := cfg.clock
	if clock == nil {
		clock = systemClock
	}
	idGen := cfg.idGen
	if idGen == nil {
		idGen = randomEventID
	}

	return &Facade{
		store:           store,
		signingKey:      cfg.SigningKey,
		defaultTenantID: cfg.DefaultTenantID,
		logger:          logger,
		clock:           clock,
		idGen:           idGen,
	}, nil
}

func quoteKind(s string) string {
	return "\"" + s + "\""
}

// EmitInput carries the caller-supplied fields for Emit. EventType,
// ActorID, and Payload are required; TenantID falls back to the facade's
// DefaultTenantID when empty; TraceID and SessionID are optional.
type EmitInput struct {
	EventType string
	ActorID   string
	Payload   map[string]any
	TenantID  string
	TraceID   string
	SessionID string
}

// Emit records a new event, per §4.5:
//  1. resolve tenant_id (falling back to the configured default);
//  2. reject empty event_type/actor_id/tenant_id;
//  3. generate a fresh event_id and millisecond-precision UTC timestamp;
//  4. read the store's last digest as prev_hash;
//  5. compute hash;
//  6. sign, if a key is configured;
//  7. append and return the completed record.
func (f *Facade) Emit(in EmitInput) (Event, error) {
	tenantID := in.TenantID
	if tenantID == "" {
		tenantID = f.defaultTenantID
	}

	if err := requireNonEmpty("event_type", in.EventType); err != nil {
		return Event{}, err
	}
	if err := requireNonEmpty("actor_id", in.ActorID); err != nil {
		return Event{}, err
	}
	if err := requireNonEmpty("tenant_id", tenantID); err != nil {
		return Event{}, err
	}
	if in.Payload == nil {
		return Event{}, newErr(KindValidation, "payload is required")
	}

	prevHash, err := f.store.LastDigest()
	if err != nil {
		return Event{}, err
	}

	ev := Event{
		EventID:   f.idGen(),
		EventType: in.EventType,
		Timestamp: f.clock(),
		ActorID:   in.ActorID,
		TenantID:  tenantID,
		Payload:   in.Payload,
		PrevHash:  prevHash,
		TraceID:   in.TraceID,
		SessionID: in.SessionID,
	}
	ev.Hash = computeDigest(prevHash, ev)

	if f.signingKey != nil {
		ev.Signature = signEvent(f.signingKey, ev)
	}

	if err := f.store.Append(ev); err != nil {
		return Event{}, err
	}
	return ev, nil
}

func requireNonEmpty(field, value string) error {
	if value == "" {
		return newErr(KindValidation, field+" is required")
	}
	return nil
}

// Query forwards filters to the underlying store unchanged.
func (f *Facade) Query(filters QueryFilters) (QueryResult, error) {
	return f.store.Query(filters)
}

// GetTrace returns every event sharing traceID, sorted by timestamp
// ascending with ties broken by insertion order (§4.5).
func (f *Facade) GetTrace(traceID string) ([]Event, error) {
	result, err := f.store.Query(QueryFilters{TraceID: traceID, Limit: 1_000_000})
	if err != nil {
		return nil, err
	}
	events := result.Events
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp < events[j].Timestamp
	})
	return events, nil
}

// Verify walks every stored record and recomputes its digest, returning a
// structured VerifyResult per §4.5/§8 rather than raising on a broken
// chain — only a signature misconfiguration (a signed record with no key
// configured) is fatal.
func (f *Facade) Verify() (VerifyResult, error) {
	events, err := f.store.ReadAll()
	if err != nil {
		return VerifyResult{}, err
	}
	return VerifyRecords(events, f.signingKey)
}

// Flush surfaces any buffered writes to durable storage. A no-op for the
// memory store.
func (f *Facade) Flush() error {
	return f.store.Flush()
}

// Close releases resources held by the underlying store.
func (f *Facade) Close() error {
	return f.store.Close()
}
