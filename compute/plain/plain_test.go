package plain

import (
	"context"
	"testing"

	"qproof.io/qpo/compute"
)

func TestCompute_TagsFallback(t *testing.T) {
	b := New(compute.Transform{Offset: 300, Ratio: 0.18181818})
	res, err := b.Compute(context.Background(), compute.Request{Input: []byte("subject"), Scenario: "s"})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if res.Mode != compute.ModeFallback {
		t.Fatalf("mode = %s, want FALLBACK", res.Mode)
	}
	want := compute.Transform{Offset: 300, Ratio: 0.18181818}.Apply(compute.DeriveValue([]byte("subject")))
	if res.RiskSignal != want {
		t.Fatalf("risk = %v, want %v", res.RiskSignal, want)
	}
}

func TestCompute_AlwaysAvailable(t *testing.T) {
	b := New(compute.Transform{Offset: 300, Ratio: 0.18181818})
	if !b.Available() {
		t.Fatalf("plain backend must always be available")
	}
}

func TestCompute_Cancelled(t *testing.T) {
	b := New(compute.Transform{Offset: 300, Ratio: 0.18181818})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := b.Compute(ctx, compute.Request{Input: []byte("x")}); err == nil {
		t.Fatalf("expected context error")
	}
}
