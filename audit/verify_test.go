package audit

import (
	"bytes"
	"strings"
	"testing"

	"qproof.io/qpo/model"
)

func testSigner(t *testing.T) *Signer {
	t.Helper()
	seed := bytes.Repeat([]byte{0x42}, 32)
	s, err := NewSignerFromSeed(seed)
	if err != nil {
		t.Fatalf("NewSignerFromSeed: %v", err)
	}
	return s
}

func signedDoc(t *testing.T, mode model.SecurityMode) []byte {
	t.Helper()
	run := sampleRun()
	run.SecurityMode = mode
	doc, err := Render(run, RenderOptions{Signer: testSigner(t)})
	if err != nil {
		t.Fatalf("Render signed (%s): %v", mode, err)
	}
	return doc
}

func TestVerifySignatures_Normal(t *testing.T) {
	doc := signedDoc(t, model.ModeNormal)
	if !bytes.Contains(doc, []byte("Signature-Alg: ed25519")) {
		t.Fatalf("NORMAL evidence must sign with ed25519")
	}
	if bytes.Contains(doc, []byte("PQ-Signature")) {
		t.Fatalf("NORMAL evidence must not carry a PQ signature")
	}
	ok, err := VerifySignatures(doc)
	if err != nil {
		t.Fatalf("VerifySignatures: %v", err)
	}
	if !ok {
		t.Fatalf("valid NORMAL signature must verify")
	}
}

func TestVerifySignatures_HybridCarriesBoth(t *testing.T) {
	doc := signedDoc(t, model.ModeHybrid)
	for _, want := range []string{
		"Signature-Alg: ed25519",
		"PQ-Signature-Alg: dilithium3",
		"PQ-Signer-Key: dilithium3:",
	} {
		if !bytes.Contains(doc, []byte(want)) {
			t.Fatalf("HYBRID evidence missing %q", want)
		}
	}
	ok, err := VerifySignatures(doc)
	if err != nil {
		t.Fatalf("VerifySignatures: %v", err)
	}
	if !ok {
		t.Fatalf("valid HYBRID dual signature must verify")
	}
}

func TestVerifySignatures_PostQuantum(t *testing.T) {
	doc := signedDoc(t, model.ModePostQuantum)
	if !bytes.Contains(doc, []byte("Signature-Alg: dilithium3")) {
		t.Fatalf("POST_QUANTUM evidence must sign with dilithium3")
	}
	if bytes.Contains(doc, []byte("ed25519")) {
		t.Fatalf("POST_QUANTUM evidence must not reference ed25519")
	}
	ok, err := VerifySignatures(doc)
	if err != nil {
		t.Fatalf("VerifySignatures: %v", err)
	}
	if !ok {
		t.Fatalf("valid POST_QUANTUM signature must verify")
	}
}

func TestVerifySignatures_Unsigned(t *testing.T) {
	doc, err := Render(sampleRun(), RenderOptions{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	ok, err := VerifySignatures(doc)
	if err != nil {
		t.Fatalf("unsigned document must not error: %v", err)
	}
	if ok {
		t.Fatalf("unsigned document must not report verified")
	}
}

func TestVerifySignatures_TamperedContent(t *testing.T) {
	doc := signedDoc(t, model.ModeNormal)
	tampered := bytes.Replace(doc, []byte("Risk-Signal: 42.5"), []byte("Risk-Signal: 12.5"), 1)
	if bytes.Equal(tampered, doc) {
		t.Fatalf("tamper did not apply")
	}
	ok, err := VerifySignatures(tampered)
	if ok {
		t.Fatalf("tampered evidence must not verify")
	}
	if err == nil {
		t.Fatalf("tampered evidence must surface a verification error")
	}
}

func TestVerifySignatures_ModeDowngradeRejected(t *testing.T) {
	// A HYBRID run re-labeled as NORMAL keeps its PQ lines; a NORMAL
	// signature set under a HYBRID label is missing them. Both directions
	// must fail before any signature check.
	doc := signedDoc(t, model.ModeNormal)
	relabeled := bytes.Replace(doc, []byte("Security-Mode: NORMAL"), []byte("Security-Mode: HYBRID"), 1)
	ok, err := VerifySignatures(relabeled)
	if ok || err == nil {
		t.Fatalf("NORMAL signature set under HYBRID label must be rejected")
	}
	if !strings.Contains(err.Error(), "HYBRID") {
		t.Fatalf("unexpected rejection reason: %v", err)
	}
}

func TestVerifySignatures_RequiresCanonicalBytes(t *testing.T) {
	doc := signedDoc(t, model.ModeNormal)
	_, err := VerifySignatures(doc[:len(doc)-1])
	if err == nil {
		t.Fatalf("non-canonical bytes must be rejected")
	}
}

func TestNewSignerFromSeed_Deterministic(t *testing.T) {
	seed := bytes.Repeat([]byte{7}, 32)
	a, err := NewSignerFromSeed(seed)
	if err != nil {
		t.Fatalf("NewSignerFromSeed: %v", err)
	}
	b, err := NewSignerFromSeed(seed)
	if err != nil {
		t.Fatalf("NewSignerFromSeed: %v", err)
	}
	if a.Ed25519Key != b.Ed25519Key || a.Dilithium3Key != b.Dilithium3Key {
		t.Fatalf("signer derivation must be deterministic")
	}
	if _, err := NewSignerFromSeed(seed[:16]); err == nil {
		t.Fatalf("short seed must be rejected")
	}
}
