package trailproof

// Store abstracts append-only persistence for Event records, per §4.4. All
// implementations must obey: records are never mutated or removed after
// Append returns; ReadAll/Query return independent copies so callers cannot
// reach into internal state; ordering is always insertion order.
type Store interface {
	// Append stores a single, already-hashed (and, if configured,
	// signed) record. The record becomes visible to subsequent reads
	// once Append returns nil.
	Append(ev Event) error

	// ReadAll returns every stored record in insertion order.
	ReadAll() ([]Event, error)

	// Query returns the records matching filters, applying cursor
	// pagination as described in §4.4.1.
	Query(filters QueryFilters) (QueryResult, error)

	// LastDigest returns the Hash of the most recently appended record,
	// or GenesisDigest if the store is empty.
	LastDigest() (string, error)

	// Count returns the number of stored records.
	Count() (int, error)

	// Flush surfaces any buffered writes to durable storage. A no-op for
	// backings with no write buffering.
	Flush() error

	// Close releases any resources (file handles, database connections)
	// held by the store.
	Close() error
}

// applyQuery runs the filter/cursor/limit algorithm of §4.4.1 against an
// already-ordered, in-memory slice of events. Every Store backing shares
// this logic so that cursor semantics stay identical across backends.
func applyQuery(events []Event, filters QueryFilters) QueryResult {
	working := events

	if filters.Cursor != "" {
		idx := -1
		for i, ev := range working {
			if ev.EventID == filters.Cursor {
				idx = i
				break
			}
		}
		if idx == -1 {
			return QueryResult{}
		}
		working = working[idx+1:]
	}

	working = filterEvents(working, filters)

	limit := filters.Limit
	if limit == 0 {
		limit = DefaultQueryLimit
	}

	var nextCursor string
	if len(working) > limit {
		nextCursor = working[limit-1].EventID
		working = working[:limit]
	}

	out := make([]Event, len(working))
	copy(out, working)
	return QueryResult{Events: out, NextCursor: nextCursor}
}

func filterEvents(events []Event, f QueryFilters) []Event {
	out := events[:0:0]
	for _, ev := range events {
		if f.EventType != "" && ev.EventType != f.EventType {
			continue
		}
		if f.ActorID != "" && ev.ActorID != f.ActorID {
			continue
		}
		if f.TenantID != "" && ev.TenantID != f.TenantID {
			continue
		}
		if f.TraceID != "" && ev.TraceID != f.TraceID {
			continue
		}
		if f.SessionID != "" && ev.SessionID != f.SessionID {
			continue
		}
		if f.FromTime != "" && ev.Timestamp < f.FromTime {
			continue
		}
		if f.ToTime != "" && ev.Timestamp > f.ToTime {
			continue
		}
		out = append(out, ev)
	}
	return out
}
