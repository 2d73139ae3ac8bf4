package message

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// Fingerprint returns a stable identifier for a logically identical message:
// the same sender with the same normalized body always hashes to the same
// value, so duplicates can be detected regardless of whitespace or casing
// differences introduced by the acquisition layer.
func (m *RawMessage) Fingerprint() string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(m.Sender) + "\x00" + NormalizeBody(m.Body)))
	return fmt.Sprintf("%x", sum[:])
}

// NormalizeBody lowercases the body and collapses all whitespace runs into
// single spaces. The normalized form is used for fingerprinting only; the
// pipeline always works on the original text.
func NormalizeBody(body string) string {
	return strings.ToLower(strings.Join(strings.Fields(body), " "))
}
