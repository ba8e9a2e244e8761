// Package securitymode tracks the process-wide defensive posture against
// simulated cryptanalytic threats.
//
// The posture escalates monotonically NORMAL -> HYBRID -> POST_QUANTUM and
// never moves backward; there is no downgrade operation. The Controller is
// the sole writer of the shared mode, and every pipeline run reads a
// consistent snapshot taken at its start.
package securitymode

import (
	"errors"
	"fmt"
	"sync"
)

// Mode is one point on the escalation ladder.
type Mode string

const (
	Normal      Mode = "NORMAL"
	Hybrid      Mode = "HYBRID"
	PostQuantum Mode = "POST_QUANTUM"
)

// AttackType is a simulated cryptanalytic event class.
type AttackType string

const (
	// Grover models quadratic-speedup search attacks against hashes and
	// symmetric primitives.
	Grover AttackType = "GROVER"
	// Shor models period-finding attacks against factoring- and
	// discrete-log-based public-key primitives.
	Shor AttackType = "SHOR"
)

// ErrUnknownAttackType rejects simulate calls with an unrecognized attack
// class. The mode is left unchanged.
var ErrUnknownAttackType = errors.New("securitymode: unknown attack type")

// rank orders modes for monotonicity checks.
func rank(m Mode) int {
	switch m {
	case Normal:
		return 0
	case Hybrid:
		return 1
	case PostQuantum:
		return 2
	default:
		return -1
	}
}

// Less reports whether a is a strictly weaker posture than b.
func Less(a, b Mode) bool { return rank(a) < rank(b) }

// Parse validates a mode name.
func Parse(s string) (Mode, error) {
	m := Mode(s)
	if rank(m) < 0 {
		return "", fmt.Errorf("securitymode: unknown mode %q", s)
	}
	return m, nil
}

// Transition describes one accepted simulate call.
type Transition struct {
	AttackType       AttackType
	Previous         Mode
	New              Mode
	DetectorSummary  string
	AutoResponse     string
	PostQuantumStack []string
}

// Controller guards the shared mode. The zero value is not usable; use New.
type Controller struct {
	mu   sync.RWMutex
	mode Mode
}

// New returns a controller starting at NORMAL.
func New() *Controller {
	return &Controller{mode: Normal}
}

// Current returns a snapshot of the mode.
func (c *Controller) Current() Mode {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mode
}

// Simulate applies one attack event and escalates the mode per the
// transition table. POST_QUANTUM is absorbing. Unknown attack types fail
// with ErrUnknownAttackType and mutate nothing.
func (c *Controller) Simulate(attack AttackType) (Transition, error) {
	switch attack {
	case Grover, Shor:
	default:
		return Transition{}, fmt.Errorf("%w: %q", ErrUnknownAttackType, string(attack))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	prev := c.mode
	next, response := step(prev, attack)
	c.mode = next

	return Transition{
		AttackType:       attack,
		Previous:         prev,
		New:              next,
		DetectorSummary:  detectorSummary(attack),
		AutoResponse:     response,
		PostQuantumStack: StackFor(next),
	}, nil
}

// step is the transition table: a total, deterministic function of
// (current mode, attack type).
func step(current Mode, attack AttackType) (Mode, string) {
	switch current {
	case Normal:
		if attack == Grover {
			return Hybrid, "elevate hash/symmetric margins"
		}
		return Hybrid, "begin lattice-based key migration"
	case Hybrid:
		return PostQuantum, "full post-quantum primitive set enforced"
	case PostQuantum:
		return PostQuantum, "already at maximum posture"
	default:
		// Unreachable for controllers built with New; treat like Normal.
		if attack == Grover {
			return Hybrid, "elevate hash/symmetric margins"
		}
		return Hybrid, "begin lattice-based key migration"
	}
}

func detectorSummary(attack AttackType) string {
	switch attack {
	case Grover:
		return "detector: Grover-class search speedup observed against hash/symmetric margins"
	case Shor:
		return "detector: Shor-class period finding observed against public-key primitives"
	default:
		return ""
	}
}

// StackFor lists the primitives enforced at a posture, strongest first.
// The names match what this repository actually ships, not aspirations.
func StackFor(m Mode) []string {
	switch m {
	case PostQuantum:
		return []string{
			"ML-DSA/Dilithium3 signatures (cloudflare/circl)",
			"SHA3-256 fingerprints and commitments",
			"CKKS lattice-based encrypted compute (lattigo)",
		}
	case Hybrid:
		return []string{
			"Ed25519 + Dilithium3 dual signatures",
			"SHA3-256 fingerprints and commitments",
			"CKKS lattice-based encrypted compute (lattigo)",
		}
	default:
		return []string{
			"Ed25519 signatures",
			"SHA3-256 fingerprints and commitments",
		}
	}
}
