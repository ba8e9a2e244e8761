// Package fingerprint derives one-way identifiers for sensitive inputs.
//
// A fingerprint is the only projection of the raw input that ever leaves the
// pipeline: it appears in proofs, audit evidence, and exports, while the
// input bytes themselves are not logged, stored, or serialized anywhere.
package fingerprint

import (
	"encoding/hex"
	"errors"

	"golang.org/x/crypto/sha3"
)

// DefaultLabel is the domain-separation label used by the pipeline.
const DefaultLabel = "fingerprint"

// ErrEmptyInput is returned when the caller requires non-empty input.
var ErrEmptyInput = errors.New("fingerprint: empty input")

// Options controls input validation.
type Options struct {
	// RequireNonEmpty rejects empty inputs before hashing. The pipeline
	// sets this; library callers fingerprinting arbitrary byte streams
	// may leave it unset.
	RequireNonEmpty bool
}

// Sum returns the lowercase hex SHA3-256 digest of label || "::" || input.
//
// Deterministic for a fixed (input, label) pair. SHA3-256 keeps a 128-bit
// preimage margin under Grover-style attacks, so fingerprints remain
// non-reversible at the post-quantum posture too.
func Sum(input []byte, label string) string {
	h := sha3.New256()
	_, _ = h.Write([]byte(label))
	_, _ = h.Write([]byte("::"))
	_, _ = h.Write(input)
	return hex.EncodeToString(h.Sum(nil))
}

// New validates input per opts and returns its fingerprint.
func New(input []byte, label string, opts Options) (string, error) {
	if opts.RequireNonEmpty && len(input) == 0 {
		return "", ErrEmptyInput
	}
	if label == "" {
		label = DefaultLabel
	}
	return Sum(input, label), nil
}
