//go:build property
// +build property

package pipeline

import (
	"context"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"qproof.io/qpo/compute"
	"qproof.io/qpo/proof/commitment"
	"qproof.io/qpo/securitymode"
)

// TestGateInvariant verifies that runs over well-formed inputs always carry
// a verified proof, and that a tampered proof never escapes the gate, for
// arbitrary inputs and scenarios.
func TestGateInvariant(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	newOrchestrator := func(tamper bool) *Orchestrator {
		cfg := Config{
			Primary:        encrypted(),
			Fallback:       plaintext(),
			Engine:         commitment.New(),
			Modes:          securitymode.New(),
			Thresholds:     compute.Thresholds{ApproveBelow: 40, RejectAtOrAbove: 75},
			CircuitVersion: commitment.CircuitVersion,
		}
		if tamper {
			cfg.Engine = &tamperEngine{inner: commitment.New()}
		}
		o, err := New(cfg)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		return o
	}

	properties.Property("verified proof on every successful run", prop.ForAll(
		func(input string, scenario string) bool {
			if len(input) == 0 {
				return true
			}
			o := newOrchestrator(false)
			run, err := o.Run(context.Background(), Request{
				Input:    []byte(input),
				Scenario: scenario,
			})
			if err != nil {
				return false
			}
			return run.Proof.Verified && len(run.Fingerprint) == 64
		},
		gen.AnyString(),
		gen.Identifier(),
	))

	properties.Property("tampered proof never escapes", prop.ForAll(
		func(input string, scenario string) bool {
			if len(input) == 0 {
				return true
			}
			o := newOrchestrator(true)
			run, err := o.Run(context.Background(), Request{
				Input:    []byte(input),
				Scenario: scenario,
			})
			return err != nil && IsKind(err, KindVerificationFailed) && run.RunID == ""
		},
		gen.AnyString(),
		gen.Identifier(),
	))

	properties.TestingRun(t)
}
