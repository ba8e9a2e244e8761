package commitment

import (
	"context"
	"testing"

	"qproof.io/qpo/proof"
)

func statement() proof.Statement {
	return proof.Statement{
		Fingerprint:     "ab12cd34ef56",
		RiskSignal:      42.5,
		OverheadPercent: 5000,
		ComputeMode:     "ENCRYPTED",
		Decision:        "REVIEW",
		Scenario:        "private-loan-preapproval",
		CircuitVersion:  CircuitVersion,
	}
}

func TestGenerateVerify_Soundness(t *testing.T) {
	e := New()
	st := statement()
	p, err := e.Generate(context.Background(), st)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	ok, err := e.Verify(context.Background(), p, st)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Fatalf("proof over unchanged statement must verify")
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	e := New()
	st := statement()
	p1, _ := e.Generate(context.Background(), st)
	p2, _ := e.Generate(context.Background(), st)
	if p1.ProofHash != p2.ProofHash {
		t.Fatalf("commitment changed across calls: %s vs %s", p1.ProofHash, p2.ProofHash)
	}
	if len(p1.ProofHash) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(p1.ProofHash))
	}
}

func TestVerify_BindingOnEveryField(t *testing.T) {
	e := New()
	st := statement()
	p, err := e.Generate(context.Background(), st)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	mutations := map[string]func(*proof.Statement){
		"fingerprint":    func(s *proof.Statement) { s.Fingerprint = "ffffffffffff" },
		"riskSignal":     func(s *proof.Statement) { s.RiskSignal = 43 },
		"computeMode":    func(s *proof.Statement) { s.ComputeMode = "FALLBACK" },
		"decision":       func(s *proof.Statement) { s.Decision = "APPROVE" },
		"scenario":       func(s *proof.Statement) { s.Scenario = "other" },
		"circuitVersion": func(s *proof.Statement) { s.CircuitVersion = "v0" },
	}
	for name, mutate := range mutations {
		mutated := st
		mutate(&mutated)
		ok, err := e.Verify(context.Background(), p, mutated)
		if err != nil {
			t.Fatalf("%s: Verify: %v", name, err)
		}
		if ok {
			t.Fatalf("%s: mutated statement must not verify", name)
		}
	}
}

func TestVerify_RejectsTamperedHash(t *testing.T) {
	e := New()
	st := statement()
	p, _ := e.Generate(context.Background(), st)
	p.ProofHash = "00" + p.ProofHash[2:]
	ok, err := e.Verify(context.Background(), p, st)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if ok {
		t.Fatalf("tampered proof hash must not verify")
	}
}
