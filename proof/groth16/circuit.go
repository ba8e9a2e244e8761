package groth16

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash/mimc"
)

// BindingCircuit proves knowledge of the numeric input behind a run
// without revealing it.
//
// Public inputs:
//   - InputCommitment: MiMC(Value, Salt), the hiding commitment to the
//     private input.
//   - StatementHash: the canonical statement commitment, reduced into the
//     scalar field.
//   - BindingCommitment: MiMC(InputCommitment, StatementHash), tying the
//     hidden input to exactly one statement.
//
// Private witness:
//   - Value: the derived numeric input, constrained to [300, 850].
//   - Salt: blinding salt so equal values yield distinct commitments.
type BindingCircuit struct {
	InputCommitment   frontend.Variable `gnark:",public"`
	StatementHash     frontend.Variable `gnark:",public"`
	BindingCommitment frontend.Variable `gnark:",public"`

	Value frontend.Variable `gnark:",secret"`
	Salt  frontend.Variable `gnark:",secret"`
}

// Define implements frontend.Circuit.
func (c *BindingCircuit) Define(api frontend.API) error {
	h, err := mimc.NewMiMC(api)
	if err != nil {
		return err
	}

	// InputCommitment opens to (Value, Salt).
	h.Write(c.Value)
	h.Write(c.Salt)
	api.AssertIsEqual(h.Sum(), c.InputCommitment)

	// BindingCommitment ties the opening to one statement.
	h.Reset()
	h.Write(c.InputCommitment)
	h.Write(c.StatementHash)
	api.AssertIsEqual(h.Sum(), c.BindingCommitment)

	// Value stays in the derivation range.
	api.AssertIsLessOrEqual(300, c.Value)
	api.AssertIsLessOrEqual(c.Value, 850)

	return nil
}
