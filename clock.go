package trailproof

import "time"

// Clock produces the UTC, millisecond-precision, 'Z'-suffixed timestamp
// assigned to each event at emit time (§3, §9 "Time source"). Production
// uses time.Now; tests inject a seam that pins fixed strings.
type Clock func() string

// systemClock is the default Clock.
func systemClock() string {
	return formatTimestamp(time.Now().UTC())
}

// formatTimestamp renders t as ISO-8601 UTC with millisecond precision and
// a literal trailing 'Z', e.g. "2026-08-03T12:34:56.789Z".
func formatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}
