package trailproof

import "testing"

func sampleEvents(n int) []Event {
	var out []Event
	prev := GenesisDigest
	for i := 0; i < n; i++ {
		ev := Event{
			EventID:   itoaEventID(i),
			EventType: "test.event",
			Timestamp: "2026-01-01T00:00:00.000Z",
			ActorID:   "tester",
			TenantID:  "acme",
			Payload:   map[string]any{"i": i},
			PrevHash:  prev,
		}
		ev.Hash = computeDigest(prev, ev)
		out = append(out, ev)
		prev = ev.Hash
	}
	return out
}

func TestApplyQuery_NoFilters(t *testing.T) {
	events := sampleEvents(3)
	result := applyQuery(events, QueryFilters{})
	if len(result.Events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(result.Events))
	}
	if result.NextCursor != "" {
		t.Fatalf("expected no next cursor, got %q", result.NextCursor)
	}
}

func TestApplyQuery_LimitSetsNextCursor(t *testing.T) {
	events := sampleEvents(5)
	result := applyQuery(events, QueryFilters{Limit: 2})
	if len(result.Events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(result.Events))
	}
	if result.NextCursor != events[1].EventID {
		t.Fatalf("expected next cursor %q, got %q", events[1].EventID, result.NextCursor)
	}
}

func TestApplyQuery_CursorResumesAfterGivenEvent(t *testing.T) {
	events := sampleEvents(5)
	first := applyQuery(events, QueryFilters{Limit: 2})
	second := applyQuery(events, QueryFilters{Limit: 2, Cursor: first.NextCursor})
	if len(second.Events) != 2 {
		t.Fatalf("expected 2 events on second page, got %d", len(second.Events))
	}
	if second.Events[0].EventID != events[2].EventID {
		t.Fatalf("expected second page to start at %q, got %q", events[2].EventID, second.Events[0].EventID)
	}
}

func TestApplyQuery_UnknownCursorReturnsEmpty(t *testing.T) {
	events := sampleEvents(3)
	result := applyQuery(events, QueryFilters{Cursor: "does-not-exist"})
	if len(result.Events) != 0 {
		t.Fatalf("expected empty result for unknown cursor, got %d events", len(result.Events))
	}
}

func TestApplyQuery_PaginationCoversEveryEventExactlyOnce(t *testing.T) {
	events := sampleEvents(10)
	seen := map[string]bool{}
	cursor := ""
	for i := 0; i < 20; i++ {
		result := applyQuery(events, QueryFilters{Limit: 3, Cursor: cursor})
		if len(result.Events) == 0 {
			break
		}
		for _, ev := range result.Events {
			if seen[ev.EventID] {
				t.Fatalf("event %q returned more than once", ev.EventID)
			}
			seen[ev.EventID] = true
		}
		if result.NextCursor == "" {
			break
		}
		cursor = result.NextCursor
	}
	if len(seen) != len(events) {
		t.Fatalf("expected to see all %d events, saw %d", len(events), len(seen))
	}
}

func TestFilterEvents_ExactMatch(t *testing.T) {
	events := sampleEvents(3)
	events[1].ActorID = "bob"
	out := filterEvents(events, QueryFilters{ActorID: "bob"})
	if len(out) != 1 || out[0].EventID != events[1].EventID {
		t.Fatalf("expected to match only bob's event, got %+v", out)
	}
}

func TestFilterEvents_TimestampRangeInclusive(t *testing.T) {
	events := []Event{
		{EventID: "a", Timestamp: "2026-01-01T00:00:00.000Z"},
		{EventID: "b", Timestamp: "2026-01-02T00:00:00.000Z"},
		{EventID: "c", Timestamp: "2026-01-03T00:00:00.000Z"},
	}
	out := filterEvents(events, QueryFilters{
		FromTime: "2026-01-01T00:00:00.000Z",
		ToTime:   "2026-01-02T00:00:00.000Z",
	})
	if len(out) != 2 {
		t.Fatalf("expected 2 events in inclusive range, got %d", len(out))
	}
}
