// Package commitment implements the hash-commitment proof engine.
//
// The "proof" is a SHA3-256 commitment over the canonical statement bytes.
// It is binding and deterministic but NOT private or succinct: anyone who
// can enumerate candidate statements can test them against the hash. Use
// the groth16 engine where a real zero-knowledge proof is required; this
// engine exists for fallback and demo use.
package commitment

import (
	"context"
	"crypto/subtle"
	"encoding/hex"

	"golang.org/x/crypto/sha3"

	"qproof.io/qpo/proof"
)

const (
	// System identifies this engine in proofs and reports.
	System = "hash-commitment"
	// CircuitVersion tags commitments produced by this engine.
	CircuitVersion = "qpo-commitment-v1"

	domainTag = "zkproof::"
)

// Engine is the hash-commitment proof engine. Stateless; the zero value is
// usable but New is preferred for symmetry with other engines.
type Engine struct{}

// New returns a commitment engine.
func New() *Engine { return &Engine{} }

func (e *Engine) System() string { return System }

// Generate commits to the statement.
func (e *Engine) Generate(ctx context.Context, st proof.Statement) (proof.Proof, error) {
	if err := ctx.Err(); err != nil {
		return proof.Proof{}, err
	}
	return proof.Proof{
		ProofHash:      Commit(st),
		System:         System,
		CircuitVersion: st.CircuitVersion,
	}, nil
}

// Verify recomputes the commitment and compares in constant time.
func (e *Engine) Verify(ctx context.Context, p proof.Proof, st proof.Statement) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	want := Commit(st)
	return subtle.ConstantTimeCompare([]byte(want), []byte(p.ProofHash)) == 1, nil
}

// Commit returns the hex SHA3-256 commitment over the domain-tagged
// canonical statement bytes.
func Commit(st proof.Statement) string {
	h := sha3.New256()
	_, _ = h.Write([]byte(domainTag))
	_, _ = h.Write(st.CanonicalBytes())
	return hex.EncodeToString(h.Sum(nil))
}
