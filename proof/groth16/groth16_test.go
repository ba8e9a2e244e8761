package groth16

import (
	"context"
	"testing"

	"qproof.io/qpo/proof"
	"qproof.io/qpo/proof/commitment"
)

func statement() proof.Statement {
	return proof.Statement{
		Fingerprint:     "9f2a441c88d0e3b7",
		RiskSignal:      61.2,
		OverheadPercent: 5000,
		ComputeMode:     "ENCRYPTED",
		Decision:        "REVIEW",
		Scenario:        "private-loan-preapproval",
		CircuitVersion:  CircuitVersion,
	}
}

func TestGenerateVerify_RoundTrip(t *testing.T) {
	e := New()
	st := statement()
	p, err := e.Generate(context.Background(), st)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if p.System != System {
		t.Fatalf("system = %q, want %q", p.System, System)
	}
	if len(p.Payload) == 0 {
		t.Fatalf("expected serialized proof in payload")
	}
	ok, err := e.Verify(context.Background(), p, st)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Fatalf("proof over unchanged statement must verify")
	}
}

func TestProofHash_IsStatementCommitment(t *testing.T) {
	e := New()
	st := statement()
	p, err := e.Generate(context.Background(), st)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if p.ProofHash != commitment.Commit(st) {
		t.Fatalf("proof hash must equal the statement commitment")
	}
}

func TestVerify_RejectsMutatedStatement(t *testing.T) {
	e := New()
	st := statement()
	p, err := e.Generate(context.Background(), st)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	mutated := st
	mutated.Decision = "APPROVE"
	ok, err := e.Verify(context.Background(), p, mutated)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if ok {
		t.Fatalf("mutated statement must not verify")
	}
}

func TestVerify_RejectsForeignProof(t *testing.T) {
	e := New()
	st1 := statement()
	st2 := statement()
	st2.Fingerprint = "0000111122223333"

	p1, err := e.Generate(context.Background(), st1)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	p2, err := e.Generate(context.Background(), st2)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	// Splice st2's payload under st1's commitment.
	spliced := p1
	spliced.Payload = p2.Payload
	ok, err := e.Verify(context.Background(), spliced, st1)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if ok {
		t.Fatalf("payload proved for another statement must not verify")
	}
}

func TestVerify_MalformedPayload(t *testing.T) {
	e := New()
	st := statement()
	p, err := e.Generate(context.Background(), st)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	p.Payload = []byte("{not json")
	ok, err := e.Verify(context.Background(), p, st)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if ok {
		t.Fatalf("malformed payload must not verify")
	}
}

func TestDeriveWitness_RangeAndDeterminism(t *testing.T) {
	fingerprints := []string{"a", "b", "9f2a441c", "ffffffff"}
	for _, fp := range fingerprints {
		v1, s1 := deriveWitness(fp)
		v2, s2 := deriveWitness(fp)
		if !v1.Equal(&v2) || !s1.Equal(&s2) {
			t.Fatalf("%s: witness derivation not deterministic", fp)
		}
		if !v1.IsUint64() {
			t.Fatalf("%s: value out of uint64 range", fp)
		}
		if u := v1.Uint64(); u < 300 || u > 850 {
			t.Fatalf("%s: value %d outside [300, 850]", fp, u)
		}
	}
}
