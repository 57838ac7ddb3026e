package circuit

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/math/bits"
)

// Proof transcripts pack several BabyBear elements into one BN254 scalar so
// that committing to a transcript costs a fraction of the native wires. The
// layout is little-endian: element k occupies bits [k*31, (k+1)*31) of the
// native value. 8 elements of 31 bits use 248 of the 254 available bits,
// which keeps every packed word strictly below the BN254 modulus.

// UnpackFelts splits a native wire into its packed BabyBear elements. The
// native value is bit-decomposed over exactly 8x31 bits, the groups of 31
// are recombined through the weighted binary sum. The decomposition width
// matters for soundness: a 248-bit sum stays below the native modulus, so
// exactly one bit assignment satisfies the constraints and the word is
// bound to a single felt opening. A wider decomposition would admit the
// bits of word+r as a second opening with different felts. The same width
// constrains the word itself below 2^248, which is the packing invariant.
// Unpacking a word that did not come from PackFelts still yields
// well-formed variables, but nothing guarantees they mean anything.
func (c *BabyBearChip) UnpackFelts(native frontend.Variable) []*Variable {
	count := c.params.NumElmsPerBN254Elm()
	feltBits := c.params.FeltBits()

	nativeBits := bits.ToBinary(c.api, native, bits.WithNbDigits(count*feltBits))

	felts := make([]*Variable, count)
	for i := 0; i < count; i++ {
		group := nativeBits[i*feltBits : (i+1)*feltBits]
		felts[i] = c.FromBits(group)
	}
	return felts
}

// PackFelts is the inverse of UnpackFelts: each element is strictly reduced,
// its 31 canonical bits are concatenated and the whole bit string is
// recombined into one native wire. For any sequence of canonical elements,
// UnpackFelts(PackFelts(xs)) == xs.
func (c *BabyBearChip) PackFelts(felts []*Variable) frontend.Variable {
	count := c.params.NumElmsPerBN254Elm()
	feltBits := c.params.FeltBits()
	if len(felts) != count {
		panic("babybear: packing expects exactly NumElmsPerBN254Elm elements")
	}

	packed := make([]frontend.Variable, 0, count*feltBits)
	for _, felt := range felts {
		packed = append(packed, c.ToBits(felt)...)
	}
	return bits.FromBinary(c.api, packed)
}
