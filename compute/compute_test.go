package compute

import "testing"

func TestDeriveValue_DeterministicAndInDomain(t *testing.T) {
	in := []byte("loan::750::32::95000::home-loan")
	first := DeriveValue(in)
	for i := 0; i < 20; i++ {
		if got := DeriveValue(in); got != first {
			t.Fatalf("value changed across calls: %v vs %v", got, first)
		}
	}
	if first < 300 || first > 850 {
		t.Fatalf("derived value %v outside [300, 850]", first)
	}
}

func TestTransform_ApplyClamps(t *testing.T) {
	tr := Transform{Offset: 300, Ratio: 0.18181818}
	if got := tr.Apply(300); got != 0 {
		t.Fatalf("Apply(300) = %v, want 0", got)
	}
	if got := tr.Apply(850); got > 100 || got < 99 {
		t.Fatalf("Apply(850) = %v, want ~100", got)
	}
	if got := tr.Apply(0); got != 0 {
		t.Fatalf("Apply below domain must clamp to 0, got %v", got)
	}
	if got := tr.Apply(10000); got != 100 {
		t.Fatalf("Apply above domain must clamp to 100, got %v", got)
	}
}

func TestThresholds_Classify(t *testing.T) {
	th := Thresholds{ApproveBelow: 40, RejectAtOrAbove: 75}
	cases := []struct {
		risk float64
		want Decision
	}{
		{0, DecisionApprove},
		{39.99, DecisionApprove},
		{40, DecisionReview},
		{74.99, DecisionReview},
		{75, DecisionReject},
		{100, DecisionReject},
	}
	for _, tc := range cases {
		if got := th.Classify(tc.risk); got != tc.want {
			t.Fatalf("Classify(%v) = %s, want %s", tc.risk, got, tc.want)
		}
	}
}
