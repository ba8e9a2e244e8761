package audit

import (
	"bytes"
	"strings"
	"testing"

	"qproof.io/qpo/keys"
	"qproof.io/qpo/model"
)

func sampleRun() model.Run {
	return model.Run{
		RunID:        "run-4f2a0d11aa93c07b",
		TimestampUTC: "2026-08-30T10:15:00Z",
		Scenario:     "private-loan-preapproval",
		SecurityMode: model.ModeNormal,
		Fingerprint:  "c1f5a96e3d0b8f2a4477aa90ee15cd3802b6d1f9e8a5c4b3a2910f6e5d4c3b2a",
		ComputeResult: model.ComputeResult{
			RiskSignal:      42.5,
			OverheadPercent: 5000,
			ComputeMode:     model.ComputeEncrypted,
			Decision:        model.DecisionReview,
			Scheme:          "CKKS",
			Backend:         "ckks",
		},
		Proof: model.Proof{
			ProofHash:      "9a3c5e7f1b2d4a6c8e0f1a2b3c4d5e6f708192a3b4c5d6e7f8091a2b3c4d5e6f",
			ProofSystem:    "hash-commitment",
			CircuitVersion: "qpo-commitment-v1",
			Verified:       true,
		},
		Benchmark: model.Benchmark{
			RuntimeMs:         184,
			FingerprintTimeMs: 1,
			ComputeTimeMs:     162,
			ProofTimeMs:       21,
		},
		Primitives: []string{"SHA3-256", "Ed25519"},
	}
}

func TestNewSignerFromSeed_MatchesKeystoreEncoding(t *testing.T) {
	seed := bytes.Repeat([]byte{0x24}, 32)
	s, err := NewSignerFromSeed(seed)
	if err != nil {
		t.Fatalf("NewSignerFromSeed: %v", err)
	}
	// A signer built from a stored seed must present the same signer-key
	// string the keystore lists for that seed.
	if want := keys.GenerateSignerKeyFromSeed(seed); s.Ed25519Key != want {
		t.Fatalf("ed25519 signer key: got %q want %q", s.Ed25519Key, want)
	}
	if !strings.HasPrefix(s.Dilithium3Key, "dilithium3:") {
		t.Fatalf("dilithium3 signer key must carry the alg prefix, got %q", s.Dilithium3Key)
	}
}

func TestRender_Deterministic(t *testing.T) {
	run := sampleRun()
	a, err := Render(run, RenderOptions{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	b, err := Render(run, RenderOptions{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatalf("same run rendered different bytes")
	}
}

func TestRender_IsCanonical(t *testing.T) {
	doc, err := Render(sampleRun(), RenderOptions{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	canon, err := Canonicalize(doc)
	if err != nil {
		t.Fatalf("rendered document must be canonical: %v", err)
	}
	if !bytes.Equal(doc, canon) {
		t.Fatalf("canonicalization changed rendered bytes")
	}
}

func TestRenderDocument_CIDStable(t *testing.T) {
	run := sampleRun()
	d1, err := RenderDocument(run, RenderOptions{})
	if err != nil {
		t.Fatalf("RenderDocument: %v", err)
	}
	d2, err := RenderDocument(run, RenderOptions{})
	if err != nil {
		t.Fatalf("RenderDocument: %v", err)
	}
	if d1.CID != d2.CID {
		t.Fatalf("CID not stable: %s vs %s", d1.CID, d2.CID)
	}
	if !strings.HasPrefix(d1.CID, "b") {
		t.Fatalf("expected base32 CIDv1, got %q", d1.CID)
	}

	// Any content change must change the CID.
	run.ComputeResult.RiskSignal = 42.6
	d3, err := RenderDocument(run, RenderOptions{})
	if err != nil {
		t.Fatalf("RenderDocument: %v", err)
	}
	if d3.CID == d1.CID {
		t.Fatalf("different evidence must not share a CID")
	}
}

func TestCanonicalize_RejectsNonCanonical(t *testing.T) {
	doc, err := Render(sampleRun(), RenderOptions{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	cases := map[string][]byte{
		"CRLF":                    bytes.Replace(doc, []byte("\n"), []byte("\r\n"), 1),
		"missing trailing LF":     doc[:len(doc)-1],
		"BOM":                     append([]byte{0xEF, 0xBB, 0xBF}, doc...),
		"trailing space":          bytes.Replace(doc, []byte("META\n"), []byte("META \n"), 1),
		"section out of order":    bytes.Replace(doc, []byte("INPUTS"), []byte("RESULT"), 1),
		"content after postamble": append(append([]byte{}, doc...), []byte("x\n")...),
		"empty":                   nil,
	}
	for name, b := range cases {
		if _, err := Canonicalize(b); err == nil {
			t.Fatalf("%s: expected rejection", name)
		}
	}
}

func TestCanonicalize_ReturnsCopy(t *testing.T) {
	doc, err := Render(sampleRun(), RenderOptions{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	canon, err := Canonicalize(doc)
	if err != nil {
		t.Fatalf("Canonicalize: %v", err)
	}
	canon[0] = 'X'
	if doc[0] == 'X' {
		t.Fatalf("Canonicalize must not alias its input")
	}
}

func TestRender_NeverContainsDecisionlessOptionalLines(t *testing.T) {
	run := sampleRun()
	run.ComputeResult.Decision = ""
	run.ComputeResult.Backend = ""
	doc, err := Render(run, RenderOptions{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if bytes.Contains(doc, []byte("Decision: ")) || bytes.Contains(doc, []byte("Backend: ")) {
		t.Fatalf("optional fields must be omitted when unset")
	}
	if _, err := Canonicalize(doc); err != nil {
		t.Fatalf("document without optional fields must stay canonical: %v", err)
	}
}

func TestSectionLines_Fingerprint(t *testing.T) {
	doc, err := Render(sampleRun(), RenderOptions{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	fp, found, err := fieldFromSection(doc, "INPUTS", "Fingerprint")
	if err != nil || !found {
		t.Fatalf("Fingerprint lookup failed: found=%v err=%v", found, err)
	}
	if fp != sampleRun().Fingerprint {
		t.Fatalf("fingerprint mismatch: %q", fp)
	}
}
