// Package plain is the plaintext fallback compute backend.
//
// It evaluates the same transform as the encrypted backend, directly on the
// derived value, and tags every result ModeFallback so consumers can see
// the reduced trust level. Used when the encrypted backend is unavailable
// or explicitly forced.
package plain

import (
	"context"

	"qproof.io/qpo/compute"
)

const backendName = "plain"

// Backend computes on plaintext. Always available.
type Backend struct {
	transform compute.Transform
}

// New returns a plaintext backend using the given transform.
func New(transform compute.Transform) *Backend {
	return &Backend{transform: transform}
}

func (b *Backend) Name() string { return backendName }

func (b *Backend) Library() (string, string) { return "qpo-plain", "1" }

func (b *Backend) Available() bool { return true }

// Compute applies the transform to the value derived from the input.
func (b *Backend) Compute(ctx context.Context, req compute.Request) (compute.Result, error) {
	if err := ctx.Err(); err != nil {
		return compute.Result{}, err
	}
	value := compute.DeriveValue(req.Input)
	risk := b.transform.Apply(value)
	return compute.Result{
		RiskSignal:      risk,
		OverheadPercent: 100,
		Mode:            compute.ModeFallback,
		Backend:         backendName,
	}, nil
}
