package circuit

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/math/emulated"
)

// TranscriptWords is the number of packed transcript words the circuit
// opens. Each word carries 8 BabyBear felts.
const TranscriptWords = 2

// TranscriptCircuit opens packed STARK transcript words inside the BN254
// circuit and re-checks the verifier arithmetic derived from them:
//
//  1. every public word unpacks to the felts claimed by the prover;
//  2. the running product of all committed felts matches the public claim;
//  3. the extension-field challenge formed by the first four felts is
//     invertible, and its inverse multiplies back to one.
//
// The challenge check means the first four felts must not all be zero; the
// prover tooling guarantees this when it builds the witness.
type TranscriptCircuit struct {
	// Packed transcript words, 8 BabyBear felts each.
	Words [TranscriptWords]frontend.Variable `gnark:",public"`

	// The felts claimed to be committed in Words (private witness).
	Felts [TranscriptWords][8]emulated.Element[BabyBearParams]

	// Running product of all committed felts.
	FeltProduct emulated.Element[BabyBearParams] `gnark:",public"`
}

func (c *TranscriptCircuit) Define(api frontend.API) error {
	chip := NewBabyBearChip(api)

	product := chip.One()
	for i := range c.Words {
		unpacked := chip.UnpackFelts(c.Words[i])
		for j := range unpacked {
			claimed := NewVariableFromElement(&c.Felts[i][j])
			chip.AssertEq(unpacked[j], claimed)
			product = chip.Mul(product, claimed)
		}
	}
	chip.AssertEq(product, NewVariableFromElement(&c.FeltProduct))

	// The first four felts double as the extension-field challenge.
	challenge := &ExtensionVariable{value: [4]*Variable{
		NewVariableFromElement(&c.Felts[0][0]),
		NewVariableFromElement(&c.Felts[0][1]),
		NewVariableFromElement(&c.Felts[0][2]),
		NewVariableFromElement(&c.Felts[0][3]),
	}}
	inv := chip.InvExtension(challenge)
	chip.AssertEqExtension(chip.MulExtension(challenge, inv), chip.OneExtension())

	return nil
}
