package trailproof

import (
	"crypto/sha256"
	"encoding/hex"
)

// computeDigest implements §4.2: the lowercase hex SHA-256 of
// utf8(prevDigest) ∥ canonicalBytes(ev), where ev's own Hash and Signature
// fields are excluded from the canonical encoding regardless of their
// current value. computeDigest is pure and holds no state: identical
// inputs always produce the identical digest.
func computeDigest(prevDigest string, ev Event) string {
	h := sha256.New()
	h.Write([]byte(prevDigest))
	h.Write(canonicalBytes(ev))
	return hex.EncodeToString(h.Sum(nil))
}

// VerifyRecords recomputes the hash chain over records in order and reports
// cascading breaks, per §4.5's Verify algorithm. It is independent of any
// Facade or Store, so an external tool that has reconstructed a record
// sequence by some other means (e.g. reading a JSONL file directly) can
// audit it without constructing a Facade.
//
// When key is non-nil, every signed record's MAC is also checked and a
// mismatch counts as a break at that index. When key is nil and any record
// carries a Signature, VerifyRecords returns ErrNoKeyConfigured rather than
// silently skipping signature verification.
func VerifyRecords(records []Event, key []byte) (VerifyResult, error) {
	total := len(records)
	if total == 0 {
		return VerifyResult{Intact: true, Total: 0}, nil
	}

	if key == nil {
		for _, ev := range records {
			if ev.Signature != "" {
				return VerifyResult{}, ErrNoKeyConfigured
			}
		}
	}

	var broken []int
	prevDigest := GenesisDigest
	chainBroken := false

	for i, ev := range records {
		if chainBroken {
			broken = append(broken, i)
			continue
		}

		expected := computeDigest(prevDigest, ev)
		if ev.Hash != expected || ev.PrevHash != prevDigest {
			broken = append(broken, i)
			chainBroken = true
			continue
		}

		if key != nil && ev.Signature != "" {
			if err := verifySignature(key, ev); err != nil {
				broken = append(broken, i)
				chainBroken = true
				continue
			}
		}

		prevDigest = ev.Hash
	}

	return VerifyResult{
		Intact: len(broken) == 0,
		Total:  total,
		Broken: broken,
	}, nil
}
