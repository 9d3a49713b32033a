package trailproof

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// signEvent computes the HMAC-SHA256 signature for ev, per §4.3:
// "hmac-sha256:" + hex(HMAC-SHA256(key, canonicalBytes(ev))). The key is
// treated as opaque bytes; Trailproof never rotates, derives, or otherwise
// transforms it.
func signEvent(key []byte, ev Event) string {
	mac := hmac.New(sha256.New, key)
	mac.Write(canonicalBytes(ev))
	return SignaturePrefix + hex.EncodeToString(mac.Sum(nil))
}

// verifySignature checks ev.Signature against a freshly computed MAC using
// a constant-time comparison, so that no early exit on a mismatched byte
// can leak timing information about the correct tag.
func verifySignature(key []byte, ev Event) error {
	if ev.Signature == "" {
		return ErrMissingSignature
	}
	if !strings.HasPrefix(ev.Signature, SignaturePrefix) {
		return ErrBadSignaturePrefix
	}

	expected := signEvent(key, ev)
	if !constantTimeEqual([]byte(ev.Signature), []byte(expected)) {
		return ErrSignatureMismatch
	}
	return nil
}

// constantTimeEqual performs a constant-time comparison of two byte slices:
// no early exit, accumulate the XOR of every byte pair.
func constantTimeEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	var result byte
	for i := range a {
		result |= a[i] ^ b[i]
	}
	return result == 0
}
