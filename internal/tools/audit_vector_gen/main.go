// Generates deterministic audit-document conformance vectors: a fixed run
// record rendered and signed with a fixed seed, one vector per security
// mode. Other implementations must reproduce these bytes and CIDs exactly.
package main

import (
	"bytes"
	"fmt"

	"qproof.io/qpo/audit"
	"qproof.io/qpo/model"
)

func fixedRun(mode model.SecurityMode) model.Run {
	run := model.Run{
		RunID:        "run-4f2a0d11aa93c07b",
		TimestampUTC: "2026-08-30T10:15:00Z",
		Scenario:     "private-loan-preapproval",
		SecurityMode: mode,
		Fingerprint:  "9c4f0b7f3a2e8d1c5b6a7f8e9d0c1b2a3e4f5a6b7c8d9e0f1a2b3c4d5e6f7a8b",
		ComputeResult: model.ComputeResult{
			RiskSignal:      42.5,
			OverheadPercent: 5000,
			ComputeMode:     model.ComputeEncrypted,
			Decision:        model.DecisionReview,
			Scheme:          "ckks",
			Backend:         "ckks",
		},
		Proof: model.Proof{
			ProofHash:      "1f2e3d4c5b6a79880716253443526170f0e1d2c3b4a5968778695a4b3c2d1e0f",
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
	}
	return run
}

func main() {
	signer, err := audit.NewSignerFromSeed(bytes.Repeat([]byte{0x42}, 32))
	if err != nil {
		panic(err)
	}

	for _, mode := range []model.SecurityMode{model.ModeNormal, model.ModeHybrid, model.ModePostQuantum} {
		doc, err := audit.RenderDocument(fixedRun(mode), audit.RenderOptions{Signer: signer})
		if err != nil {
			panic(err)
		}
		ok, err := audit.VerifySignatures(doc.Bytes)
		if err != nil || !ok {
			panic(fmt.Sprintf("vector %s does not verify: %v", mode, err))
		}
		fmt.Printf("Mode=%s\n", mode)
		fmt.Printf("CID=%s\n", doc.CID)
		fmt.Printf("---BEGIN---\n%s---END---\n\n", string(doc.Bytes))
	}
}
