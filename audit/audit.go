// Package audit serializes completed runs into verifiable evidence.
//
// The primary form is a canonical sectioned document with deterministic
// bytes: same run, same document, same CID. The document can be archived,
// re-parsed and re-verified offline without access to the pipeline that
// produced it. JSON and Markdown exports are derived views for machines
// and humans respectively. None of the forms ever contain the raw
// sensitive input; the fingerprint is the only projection that appears.
package audit

import (
	"crypto/ed25519"
	"errors"
	"sort"
	"strconv"
	"strings"

	"github.com/cloudflare/circl/sign/dilithium/mode3"

	"qproof.io/qpo/keys"
	"qproof.io/qpo/model"
)

const (
	Preamble  = "-----BEGIN QPO AUDIT-----"
	Postamble = "-----END QPO AUDIT-----"

	// SpecID names the document format in the META section.
	SpecID = "qpo-audit-1"

	hashAlg = "sha3-256"
)

// Signer holds the key material for audit signing.
//
// The active security mode selects which keys are used: ed25519 at NORMAL,
// both at HYBRID, dilithium3 only at POST_QUANTUM.
type Signer struct {
	Ed25519Priv ed25519.PrivateKey
	Ed25519Key  string // "ed25519:" + base64 public key

	Dilithium3Priv *mode3.PrivateKey
	Dilithium3Key  string // "dilithium3:" + base64 public key
}

// NewSignerFromSeed derives a dual-algorithm signer from one 32-byte seed.
// Deterministic: the same seed always yields the same keys.
func NewSignerFromSeed(seed []byte) (*Signer, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, errors.New("audit: seed must be 32 bytes")
	}
	edPriv := ed25519.NewKeyFromSeed(seed)
	edPub := edPriv.Public().(ed25519.PublicKey)

	var dseed [mode3.SeedSize]byte
	copy(dseed[:], seed)
	dPub, dPriv := mode3.NewKeyFromSeed(&dseed)

	edKey, err := keys.SignerKeyFromPublicKey(edPub)
	if err != nil {
		return nil, err
	}
	dKey, err := keys.PQSignerKeyFromPublicKey(dPub)
	if err != nil {
		return nil, err
	}

	return &Signer{
		Ed25519Priv:    edPriv,
		Ed25519Key:     edKey,
		Dilithium3Priv: dPriv,
		Dilithium3Key:  dKey,
	}, nil
}

// RenderOptions controls document rendering.
type RenderOptions struct {
	// ExporterID identifies the producing system in META.
	ExporterID string
	// Signer enables the CRYPTO section. Nil renders an unsigned document.
	Signer *Signer
}

// Render produces the canonical audit document for a verified run.
// Sections are always present and ordering is deterministic.
func Render(run model.Run, opts RenderOptions) ([]byte, error) {
	exporterID := opts.ExporterID
	if exporterID == "" {
		exporterID = "qpo-audit-reference"
	}

	var sb strings.Builder
	sb.WriteString(Preamble)
	sb.WriteString("\n")

	writeSection(&sb, "META", []string{
		"Exporter-ID: " + exporterID,
		"Run-ID: " + run.RunID,
		"Scenario: " + run.Scenario,
		"Spec: " + SpecID,
		"Timestamp: " + run.TimestampUTC,
		"Version: 1",
	})

	// INPUTS carries only the fingerprint. The raw input never reaches
	// the exporter.
	writeSection(&sb, "INPUTS", []string{
		"Fingerprint: " + run.Fingerprint,
	})

	resultLines := []string{
		"Compute-Mode: " + string(run.ComputeResult.ComputeMode),
		"Overhead-Percent: " + formatFloat(run.ComputeResult.OverheadPercent),
		"Risk-Signal: " + formatFloat(run.ComputeResult.RiskSignal),
		"Security-Mode: " + string(run.SecurityMode),
	}
	if run.ComputeResult.Decision != "" {
		resultLines = append(resultLines, "Decision: "+string(run.ComputeResult.Decision))
	}
	if run.ComputeResult.Backend != "" {
		resultLines = append(resultLines, "Backend: "+run.ComputeResult.Backend)
	}
	writeSection(&sb, "RESULT", resultLines)

	writeSection(&sb, "PROOF", []string{
		"Circuit-Version: " + run.Proof.CircuitVersion,
		"Proof-Hash: " + run.Proof.ProofHash,
		"Proof-System: " + run.Proof.ProofSystem,
		"Verified: " + strconv.FormatBool(run.Proof.Verified),
	})

	writeSection(&sb, "BENCHMARK", []string{
		"Compute-Time-Ms: " + strconv.FormatInt(run.Benchmark.ComputeTimeMs, 10),
		"Fingerprint-Time-Ms: " + strconv.FormatInt(run.Benchmark.FingerprintTimeMs, 10),
		"Proof-Time-Ms: " + strconv.FormatInt(run.Benchmark.ProofTimeMs, 10),
		"Runtime-Ms: " + strconv.FormatInt(run.Benchmark.RuntimeMs, 10),
	})

	writeSection(&sb, "CRYPTO", cryptoPlaceholder(run.SecurityMode, opts.Signer))

	sb.WriteString(Postamble)
	sb.WriteString("\n")
	out := []byte(sb.String())

	if opts.Signer != nil {
		signed, err := sign(out, run.SecurityMode, opts.Signer)
		if err != nil {
			return nil, err
		}
		out = signed
	}
	return out, nil
}

// writeSection emits a named section with sorted body lines and the
// terminating blank line.
func writeSection(sb *strings.Builder, name string, lines []string) {
	sb.WriteString(name)
	sb.WriteString("\n")
	sorted := append([]string(nil), lines...)
	sort.Strings(sorted)
	for _, l := range sorted {
		sb.WriteString(l)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
}

// cryptoPlaceholder emits the CRYPTO section with signature placeholders;
// sign fills them after the full document bytes exist.
func cryptoPlaceholder(mode model.SecurityMode, s *Signer) []string {
	if s == nil {
		return nil
	}
	switch mode {
	case model.ModeHybrid:
		return []string{
			"Hash-Alg: " + hashAlg,
			"PQ-Signature: 0",
			"PQ-Signature-Alg: dilithium3",
			"PQ-Signer-Key: " + s.Dilithium3Key,
			"Signature: 0",
			"Signature-Alg: ed25519",
			"Signer-Key: " + s.Ed25519Key,
		}
	case model.ModePostQuantum:
		return []string{
			"Hash-Alg: " + hashAlg,
			"Signature: 0",
			"Signature-Alg: dilithium3",
			"Signer-Key: " + s.Dilithium3Key,
		}
	default:
		return []string{
			"Hash-Alg: " + hashAlg,
			"Signature: 0",
			"Signature-Alg: ed25519",
			"Signer-Key: " + s.Ed25519Key,
		}
	}
}

// sign computes the signatures over the document bytes excluding the
// Signature and PQ-Signature lines, then substitutes the placeholders.
func sign(doc []byte, mode model.SecurityMode, s *Signer) ([]byte, error) {
	scope, err := signatureScope(doc)
	if err != nil {
		return nil, err
	}

	// Replacements anchor on full lines: "PQ-Signature: 0" contains
	// "Signature: 0" as a substring.
	out := string(doc)
	setLine := func(key, sig string) {
		out = strings.Replace(out, "\n"+key+": 0\n", "\n"+key+": "+sig+"\n", 1)
	}
	switch mode {
	case model.ModeHybrid:
		if s.Ed25519Priv == nil || s.Dilithium3Priv == nil {
			return nil, errors.New("audit: HYBRID signing requires both keys")
		}
		pqSig, err := keys.SignDilithium3(scope, s.Dilithium3Priv)
		if err != nil {
			return nil, err
		}
		setLine("PQ-Signature", pqSig)
		setLine("Signature", keys.SignEd25519(scope, s.Ed25519Priv))
	case model.ModePostQuantum:
		if s.Dilithium3Priv == nil {
			return nil, errors.New("audit: POST_QUANTUM signing requires a dilithium3 key")
		}
		sig, err := keys.SignDilithium3(scope, s.Dilithium3Priv)
		if err != nil {
			return nil, err
		}
		setLine("Signature", sig)
	default:
		if s.Ed25519Priv == nil {
			return nil, errors.New("audit: NORMAL signing requires an ed25519 key")
		}
		setLine("Signature", keys.SignEd25519(scope, s.Ed25519Priv))
	}
	return []byte(out), nil
}

// signatureScope strips the Signature and PQ-Signature lines. The scope is
// identical before and after signing, so verification recomputes it from
// the signed document.
func signatureScope(doc []byte) ([]byte, error) {
	lines := strings.Split(string(doc), "\n")
	var out []string
	for _, l := range lines {
		if strings.HasPrefix(l, "Signature: ") || strings.HasPrefix(l, "PQ-Signature: ") {
			continue
		}
		out = append(out, l)
	}
	return []byte(strings.Join(out, "\n")), nil
}

// formatFloat is the canonical float rendering: shortest representation
// that round-trips, no exponent for the values this domain produces.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
