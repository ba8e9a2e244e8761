//go:build property
// +build property

package securitymode

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestEscalationMonotonic verifies that no sequence of simulate calls ever
// lowers the posture and that POST_QUANTUM absorbs.
func TestEscalationMonotonic(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	genAttack := gen.OneConstOf(Grover, Shor)

	properties.Property("mode never decreases", prop.ForAll(
		func(attacks []AttackType) bool {
			c := New()
			prev := c.Current()
			for _, a := range attacks {
				tr, err := c.Simulate(a)
				if err != nil {
					return false
				}
				if Less(tr.New, prev) {
					return false
				}
				prev = tr.New
			}
			return true
		},
		gen.SliceOf(genAttack),
	))

	properties.Property("POST_QUANTUM is absorbing", prop.ForAll(
		func(attacks []AttackType) bool {
			c := New()
			// Force maximum posture first.
			if _, err := c.Simulate(Grover); err != nil {
				return false
			}
			if _, err := c.Simulate(Shor); err != nil {
				return false
			}
			for _, a := range attacks {
				tr, err := c.Simulate(a)
				if err != nil {
					return false
				}
				if tr.New != PostQuantum {
					return false
				}
			}
			return true
		},
		gen.SliceOf(genAttack),
	))

	properties.TestingRun(t)
}
