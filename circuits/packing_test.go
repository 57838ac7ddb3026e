package circuit

import (
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/math/bits"
	"github.com/consensys/gnark/std/math/emulated"
	gnark_test "github.com/consensys/gnark/test"
	"github.com/stretchr/testify/require"

	"github.com/kysee/zk-starks/types"
)

// packingCircuit ties both directions together: the private felts must pack
// to the public word, and the word must unpack back to the same felts.
type packingCircuit struct {
	Felts [8]emulated.Element[BabyBearParams]
	Word  frontend.Variable `gnark:",public"`
}

func (c *packingCircuit) Define(api frontend.API) error {
	chip := NewBabyBearChip(api)

	feltVars := make([]*Variable, len(c.Felts))
	for i := range c.Felts {
		feltVars[i] = NewVariableFromElement(&c.Felts[i])
	}

	api.AssertIsEqual(chip.PackFelts(feltVars), c.Word)

	unpacked := chip.UnpackFelts(c.Word)
	for i := range unpacked {
		chip.AssertEq(unpacked[i], feltVars[i])
	}
	return nil
}

func packingWitness(felts []uint64) *packingCircuit {
	witness := &packingCircuit{Word: types.PackFelts(felts)}
	for i, felt := range felts {
		witness.Felts[i] = emulated.ValueOf[BabyBearParams](felt)
	}
	return witness
}

func TestPackingRoundTrip(t *testing.T) {
	err := gnark_test.IsSolved(&packingCircuit{},
		packingWitness([]uint64{1, 2, 3, 4, 5, 6, 7, 8}), ecc.BN254.ScalarField())
	require.NoError(t, err)

	// all-max felts stress every bit of the 31-bit lanes
	max := uint64(2013265920)
	err = gnark_test.IsSolved(&packingCircuit{},
		packingWitness([]uint64{max, 0, max, 0, max, 0, max, max}), ecc.BN254.ScalarField())
	require.NoError(t, err)
}

func TestPackingRoundTripRandom(t *testing.T) {
	for i := 0; i < 3; i++ {
		felts := make([]uint64, types.FeltsPerWord)
		for j := range felts {
			e := randomFelt(t)
			felts[j] = feltValue(&e).Uint64()
		}
		err := gnark_test.IsSolved(&packingCircuit{}, packingWitness(felts), ecc.BN254.ScalarField())
		require.NoError(t, err, "pack/unpack round trip failed for random felts")
	}
}

// unpackOnlyCircuit opens a packed word without re-packing, the way a
// consumer circuit reads committed felts out of a transcript wire.
type unpackOnlyCircuit struct {
	Word  frontend.Variable `gnark:",public"`
	Felts [8]emulated.Element[BabyBearParams]
}

func (c *unpackOnlyCircuit) Define(api frontend.API) error {
	chip := NewBabyBearChip(api)
	unpacked := chip.UnpackFelts(c.Word)
	for i := range unpacked {
		chip.AssertEq(unpacked[i], NewVariableFromElement(&c.Felts[i]))
	}
	return nil
}

func TestUnpackRejectsOversizedWord(t *testing.T) {
	// unpacking constrains the word below 2^248, so a wire outside the
	// packing range has no bit decomposition at all
	witness := &unpackOnlyCircuit{Word: new(big.Int).Lsh(big.NewInt(1), 250)}
	for i := range witness.Felts {
		witness.Felts[i] = emulated.ValueOf[BabyBearParams](0)
	}
	err := gnark_test.IsSolved(&unpackOnlyCircuit{}, witness, ecc.BN254.ScalarField())
	require.Error(t, err)
}

// wordOpeningCircuit mirrors the constraints UnpackFelts emits, but with the
// bit decomposition as free witness variables instead of hint outputs. This
// is the adversarial view: a dishonest prover supplies whatever bits satisfy
// the constraints, so the constraints alone must pin down a unique opening.
type wordOpeningCircuit struct {
	Bits  [8 * 31]frontend.Variable
	Word  frontend.Variable                   `gnark:",public"`
	Felts [8]emulated.Element[BabyBearParams] `gnark:",public"`
}

func (c *wordOpeningCircuit) Define(api frontend.API) error {
	chip := NewBabyBearChip(api)
	for i := range c.Bits {
		api.AssertIsBoolean(c.Bits[i])
	}
	api.AssertIsEqual(bits.FromBinary(api, c.Bits[:]), c.Word)
	for i := range c.Felts {
		group := c.Bits[i*31 : (i+1)*31]
		chip.AssertEq(chip.FromBits(group), NewVariableFromElement(&c.Felts[i]))
	}
	return nil
}

func wordOpeningWitness(word, decomposition *big.Int, felts []uint64) *wordOpeningCircuit {
	witness := &wordOpeningCircuit{Word: word}
	for i := range witness.Bits {
		witness.Bits[i] = decomposition.Bit(i)
	}
	for i, felt := range felts {
		witness.Felts[i] = emulated.ValueOf[BabyBearParams](felt)
	}
	return witness
}

func TestUnpackOpeningIsUnique(t *testing.T) {
	felts := []uint64{1, 2, 3, 4, 5, 6, 7, 8}
	word := types.PackFelts(felts)

	// the canonical decomposition opens to the packed felts
	witness := wordOpeningWitness(word, word, felts)
	err := gnark_test.IsSolved(&wordOpeningCircuit{}, witness, ecc.BN254.ScalarField())
	require.NoError(t, err)

	// word + r is congruent to word in the native field; over a full-width
	// decomposition its bits would be a second opening with different
	// felts. Over 248 bits the weighted sum cannot wrap the native
	// modulus, so the aliased bits fail the sum constraint.
	alias := new(big.Int).Add(word, ecc.BN254.ScalarField())
	aliasFelts := types.UnpackWord(alias, types.FeltsPerWord)
	require.NotEqual(t, felts, aliasFelts)

	witness = wordOpeningWitness(word, alias, aliasFelts)
	err = gnark_test.IsSolved(&wordOpeningCircuit{}, witness, ecc.BN254.ScalarField())
	require.Error(t, err, "an aliased decomposition of word+r must be rejected")
}

func TestPackingMismatch(t *testing.T) {
	// word packed from different felts must not satisfy the circuit
	witness := packingWitness([]uint64{1, 2, 3, 4, 5, 6, 7, 8})
	witness.Word = types.PackFelts([]uint64{1, 2, 3, 4, 5, 6, 7, 9})
	err := gnark_test.IsSolved(&packingCircuit{}, witness, ecc.BN254.ScalarField())
	require.Error(t, err)
}
