package trailproof

import "github.com/google/uuid"

// IDGenerator produces the 128-bit, text-encoded event_id assigned to each
// event at emit time (§3, §9 "Random source"). Production uses a
// cryptographically acceptable random source; tests inject a deterministic
// sequence through this seam.
type IDGenerator func() string

// randomEventID is the default IDGenerator: a UUIDv4, matching the
// identifier-generation library already depended on elsewhere in the
// retrieval pack (google/uuid) rather than hand-rolling hex over
// crypto/rand.
func randomEventID() string {
	return uuid.NewString()
}
