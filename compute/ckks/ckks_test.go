package ckks

import (
	"context"
	"math"
	"testing"

	"qproof.io/qpo/compute"
)

func testBackend(t *testing.T) *Backend {
	t.Helper()
	b, err := New(Params{LogN: 13, LogDefaultScale: 40}, compute.Transform{Offset: 300, Ratio: 0.18181818})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !b.Available() {
		t.Fatalf("backend must be available after successful New")
	}
	return b
}

func TestCompute_MatchesPlaintextTransform(t *testing.T) {
	b := testBackend(t)
	in := []byte("loan::750::32::95000::home-loan")

	res, err := b.Compute(context.Background(), compute.Request{Input: in, Scenario: "private-loan-preapproval"})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if res.Mode != compute.ModeEncrypted {
		t.Fatalf("mode = %s, want ENCRYPTED", res.Mode)
	}

	want := compute.Transform{Offset: 300, Ratio: 0.18181818}.Apply(compute.DeriveValue(in))
	// CKKS is approximate; at LogDefaultScale 40 the error is far below 1e-3.
	if math.Abs(res.RiskSignal-want) > 1e-3 {
		t.Fatalf("risk = %v, want %v within 1e-3", res.RiskSignal, want)
	}
	if res.RiskSignal < 0 || res.RiskSignal > 100 {
		t.Fatalf("risk %v outside [0, 100]", res.RiskSignal)
	}
	if res.Parameters["scheme"] != "CKKS" {
		t.Fatalf("result must carry the active scheme parameters, got %v", res.Parameters)
	}
}

func TestCompute_HonorsCancellation(t *testing.T) {
	b := testBackend(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := b.Compute(ctx, compute.Request{Input: []byte("x")}); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestNew_BadParametersLeavesUnavailable(t *testing.T) {
	b, err := New(Params{LogN: 2, LogDefaultScale: 40}, compute.Transform{Offset: 300, Ratio: 0.18181818})
	if err == nil {
		t.Fatalf("expected parameter error")
	}
	if b.Available() {
		t.Fatalf("backend must be unavailable after parameter error")
	}
	if _, err := b.Compute(context.Background(), compute.Request{Input: []byte("x")}); err == nil {
		t.Fatalf("expected ErrBackendUnavailable")
	}
}

func TestSchemeParameters(t *testing.T) {
	b := testBackend(t)
	p := b.SchemeParameters()
	if p["scheme"] != "CKKS" || p["library"] != "lattigo/v6" {
		t.Fatalf("unexpected scheme parameters: %v", p)
	}
}
