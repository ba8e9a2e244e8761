// Package proof defines the correctness-proof contract for the pipeline.
//
// An Engine binds {fingerprint, compute result, scenario, circuit version}
// into a Proof and later checks that none of the four fields changed.
// Two implementations exist: a hash-commitment stand-in (commitment) and a
// Groth16 succinct-proof adapter (groth16). Callers depend only on this
// contract, never on which implementation is active.
package proof

import (
	"context"
	"encoding/json"
)

// Statement is the public tuple a Proof commits to.
//
// Field order is the canonical serialization order; do not reorder.
type Statement struct {
	Fingerprint     string  `json:"fingerprint"`
	RiskSignal      float64 `json:"riskSignal"`
	OverheadPercent float64 `json:"overheadPercent"`
	ComputeMode     string  `json:"computeMode"`
	Decision        string  `json:"decision,omitempty"`
	Scenario        string  `json:"scenario"`
	CircuitVersion  string  `json:"circuitVersion"`
}

// CanonicalBytes returns the deterministic serialization the commitment is
// computed over. Struct field order fixes the byte layout; no maps are
// involved, so the same statement always yields the same bytes.
func (s Statement) CanonicalBytes() []byte {
	b, err := json.Marshal(s)
	if err != nil {
		// Statement contains only scalars; Marshal cannot fail.
		return nil
	}
	return b
}

// Proof is a correctness artifact.
//
// ProofHash is always the deterministic commitment over the statement;
// engines that produce a real succinct proof carry it in Payload on top of
// the commitment, so the commitment-equality contract holds regardless of
// the active engine.
type Proof struct {
	ProofHash      string
	System         string
	CircuitVersion string
	Payload        []byte
}

// Engine generates and verifies proofs over public statements.
type Engine interface {
	// System names the proof system ("hash-commitment", "groth16").
	System() string
	// Generate produces a proof. Deterministic in ProofHash: the same
	// statement always yields the same commitment.
	Generate(ctx context.Context, st Statement) (Proof, error)
	// Verify reports whether p binds st. Implementations must not mutate
	// either argument and must compare commitments in constant time.
	Verify(ctx context.Context, p Proof, st Statement) (bool, error)
}
