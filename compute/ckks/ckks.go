// Package ckks is the encrypted compute backend.
//
// It evaluates the risk transform homomorphically with the CKKS scheme
// (lattigo): the derived value is encrypted, the affine transform runs on
// the ciphertext, and only the final scalar is decrypted. The plaintext
// value is released after encryption and never appears in the Result.
package ckks

import (
	"context"
	"fmt"

	"github.com/tuneinsight/lattigo/v6/schemes/ckks"

	"qproof.io/qpo/compute"
)

const (
	backendName = "ckks"
	libraryName = "lattigo/v6"
	libraryVer  = "6.1.1"
	schemeName  = "CKKS"

	// fheOverheadPercent is the approximate cost of the homomorphic
	// evaluation relative to plaintext. Advisory only.
	fheOverheadPercent = 5000
)

// Params selects the CKKS parameter set.
type Params struct {
	// LogN is the ring dimension exponent. 13 gives 128-bit security for
	// this modulus chain.
	LogN int
	// LogDefaultScale is the encoding scale exponent.
	LogDefaultScale int
}

// Backend evaluates the transform under CKKS encryption.
//
// Key material is generated per call and discarded with it; nothing
// derived from the input outlives Compute.
type Backend struct {
	params    ckks.Parameters
	transform compute.Transform
	ok        bool
}

// New compiles the CKKS parameter set. A parameter error leaves the
// backend constructed but unavailable, so callers can fall back under an
// explicit policy instead of crashing.
func New(p Params, transform compute.Transform) (*Backend, error) {
	lit := ckks.ParametersLiteral{
		LogN:            p.LogN,
		LogQ:            []int{60, 40, 40, 60},
		LogP:            []int{60},
		LogDefaultScale: p.LogDefaultScale,
	}
	params, err := ckks.NewParametersFromLiteral(lit)
	if err != nil {
		return &Backend{transform: transform}, fmt.Errorf("%w: ckks parameters: %v", compute.ErrBackendUnavailable, err)
	}
	return &Backend{params: params, transform: transform, ok: true}, nil
}

func (b *Backend) Name() string { return backendName }

func (b *Backend) Library() (string, string) { return libraryName, libraryVer }

func (b *Backend) Available() bool { return b != nil && b.ok }

// SchemeParameters describes the active parameter set for audit reports.
func (b *Backend) SchemeParameters() map[string]string {
	if !b.Available() {
		return map[string]string{"enabled": "false"}
	}
	return map[string]string{
		"scheme":         schemeName,
		"log_n":          fmt.Sprintf("%d", b.params.LogN()),
		"security_level": "128-bit",
		"library":        libraryName,
	}
}

// Compute encrypts the derived value, applies (x - offset) * ratio on the
// ciphertext, and decrypts the single output slot.
func (b *Backend) Compute(ctx context.Context, req compute.Request) (compute.Result, error) {
	if !b.Available() {
		return compute.Result{}, compute.ErrBackendUnavailable
	}
	if err := ctx.Err(); err != nil {
		return compute.Result{}, err
	}

	value := compute.DeriveValue(req.Input)

	kgen := ckks.NewKeyGenerator(b.params)
	sk := kgen.GenSecretKeyNew()
	pk := kgen.GenPublicKeyNew(sk)

	ecd := ckks.NewEncoder(b.params)
	enc := ckks.NewEncryptor(b.params, pk)
	dec := ckks.NewDecryptor(b.params, sk)
	eval := ckks.NewEvaluator(b.params, nil)

	pt := ckks.NewPlaintext(b.params, b.params.MaxLevel())
	if err := ecd.Encode([]float64{value}, pt); err != nil {
		return compute.Result{}, fmt.Errorf("%w: encode: %v", compute.ErrBackendUnavailable, err)
	}
	ct, err := enc.EncryptNew(pt)
	if err != nil {
		return compute.Result{}, fmt.Errorf("%w: encrypt: %v", compute.ErrBackendUnavailable, err)
	}

	// Ciphertext-domain evaluation. Scalar operands need no relinearization.
	shifted, err := eval.SubNew(ct, b.transform.Offset)
	if err != nil {
		return compute.Result{}, fmt.Errorf("%w: homomorphic sub: %v", compute.ErrBackendUnavailable, err)
	}
	scaled, err := eval.MulNew(shifted, b.transform.Ratio)
	if err != nil {
		return compute.Result{}, fmt.Errorf("%w: homomorphic mul: %v", compute.ErrBackendUnavailable, err)
	}

	if err := ctx.Err(); err != nil {
		return compute.Result{}, err
	}

	out := make([]float64, 1)
	if err := ecd.Decode(dec.DecryptNew(scaled), out); err != nil {
		return compute.Result{}, fmt.Errorf("%w: decode: %v", compute.ErrBackendUnavailable, err)
	}
	risk := compute.Clamp(out[0], 0, 100)

	return compute.Result{
		RiskSignal:      risk,
		OverheadPercent: fheOverheadPercent,
		Mode:            compute.ModeEncrypted,
		Scheme:          schemeName,
		Backend:         backendName,
		Parameters:      b.SchemeParameters(),
	}, nil
}
