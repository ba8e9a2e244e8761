// Package compute defines the backend contract for privacy-preserving
// evaluation of the risk transform.
//
// A Backend receives the sensitive input and returns only the derived risk
// signal. The encrypted backend keeps the plaintext out of the computation
// entirely; the plaintext fallback tags its result so downstream consumers
// can distinguish trust levels. Adding a backend requires no change to the
// orchestrator: it is registered by name in compute/registry.
package compute

import (
	"context"
	"errors"

	"golang.org/x/crypto/sha3"
)

// Mode records which trust level produced a result.
type Mode string

const (
	ModeEncrypted Mode = "ENCRYPTED"
	ModeFallback  Mode = "FALLBACK"
)

// ErrBackendUnavailable is returned when the encrypted backend cannot run
// (missing parameters, failed key material) and fallback was not requested.
var ErrBackendUnavailable = errors.New("compute: backend unavailable")

// Request carries one evaluation. Input bytes MUST NOT be retained by the
// backend after the call returns.
type Request struct {
	Input    []byte
	Scenario string
}

// Result is the output of one backend evaluation.
type Result struct {
	// RiskSignal is the evaluated transform output, clamped to [0, 100].
	RiskSignal float64
	// OverheadPercent is the backend's approximate cost relative to a
	// plaintext evaluation. Advisory only.
	OverheadPercent float64
	Mode            Mode
	// Scheme names the cryptographic scheme in use, if any.
	Scheme string
	// Backend is the registered backend name.
	Backend string
	// Parameters is the backend's active scheme parameter set, if any.
	Parameters map[string]string
}

// Backend evaluates the risk transform over a sensitive input.
type Backend interface {
	// Name is the registered backend name.
	Name() string
	// Library reports the active library name and version for the status
	// surface. Side-effect-free.
	Library() (name, version string)
	// Available reports whether the backend can currently serve requests.
	Available() bool
	// Compute evaluates the transform. Implementations must honor ctx
	// cancellation and must not keep references to req.Input.
	Compute(ctx context.Context, req Request) (Result, error)
}

// Transform is the affine risk map (value - Offset) * Ratio, evaluated
// under encryption by the CKKS backend and directly by the fallback.
type Transform struct {
	Offset float64
	Ratio  float64
}

// Apply evaluates the transform on a plaintext value and clamps to [0, 100].
func (t Transform) Apply(value float64) float64 {
	return Clamp((value-t.Offset)*t.Ratio, 0, 100)
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// DeriveValue maps input bytes onto the transform's domain [300, 850].
//
// The mapping goes through SHA3-256 first so backends never operate on a
// value that is trivially invertible to the input. Deterministic: the same
// input always yields the same value.
func DeriveValue(input []byte) float64 {
	sum := sha3.Sum256(input)
	v := uint64(sum[0])<<24 | uint64(sum[1])<<16 | uint64(sum[2])<<8 | uint64(sum[3])
	return float64(v%551) + 300
}
