package fingerprint

import (
	"strings"
	"testing"
)

func TestSum_Deterministic(t *testing.T) {
	in := []byte("loan::750::32::95000::home-loan")
	first := Sum(in, DefaultLabel)
	for i := 0; i < 50; i++ {
		if got := Sum(in, DefaultLabel); got != first {
			t.Fatalf("fingerprint changed across calls: %s vs %s", got, first)
		}
	}
	if len(first) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(first))
	}
	if strings.ToLower(first) != first {
		t.Fatalf("expected lowercase hex: %s", first)
	}
}

func TestSum_LabelSeparatesDomains(t *testing.T) {
	in := []byte("subject")
	if Sum(in, "fingerprint") == Sum(in, "zkproof") {
		t.Fatalf("different labels must not collide")
	}
}

func TestSum_DoesNotContainInput(t *testing.T) {
	in := []byte("very-secret-value")
	fp := Sum(in, DefaultLabel)
	if strings.Contains(fp, string(in)) {
		t.Fatalf("fingerprint leaks input")
	}
}

func TestNew_RejectsEmptyWhenRequired(t *testing.T) {
	if _, err := New(nil, DefaultLabel, Options{RequireNonEmpty: true}); err != ErrEmptyInput {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
	fp, err := New(nil, DefaultLabel, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if fp == "" {
		t.Fatalf("expected fingerprint for empty input when not required")
	}
}

func TestNew_DefaultsLabel(t *testing.T) {
	a, err := New([]byte("x"), "", Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if a != Sum([]byte("x"), DefaultLabel) {
		t.Fatalf("empty label must fall back to DefaultLabel")
	}
}
