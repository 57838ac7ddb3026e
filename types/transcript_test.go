package types

import (
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/field/babybear"
	"github.com/stretchr/testify/require"
)

func TestPackFeltsRoundTrip(t *testing.T) {
	felts := []uint64{1, 2, 3, 4, 5, 6, 7, 8}
	word := PackFelts(felts)
	require.Equal(t, felts, UnpackWord(word, len(felts)))

	// felt k sits at bit offset k*31
	require.Equal(t, uint64(1), new(big.Int).And(word, big.NewInt(0x7fffffff)).Uint64())
	require.Equal(t, uint64(2), new(big.Int).Rsh(word, FeltBits).Uint64()&0x7fffffff)

	max := babybear.Modulus().Uint64() - 1
	felts = []uint64{max, 0, max, 1, 0, max, 2, max}
	require.Equal(t, felts, UnpackWord(PackFelts(felts), len(felts)))

	// 8 lanes of 31 bits stay under the BN254 modulus
	require.LessOrEqual(t, PackFelts(felts).BitLen(), FeltsPerWord*FeltBits)
}

func TestTranscriptWords(t *testing.T) {
	tr := &Transcript{
		Index: 3,
		Felts: []uint64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16},
	}
	words, err := tr.Words()
	require.NoError(t, err)
	require.Len(t, words, 2)
	require.Equal(t, PackFelts(tr.Felts[:8]), words[0])
	require.Equal(t, PackFelts(tr.Felts[8:]), words[1])
}

func TestTranscriptValidate(t *testing.T) {
	tr := &Transcript{Index: 1, Felts: []uint64{1, 2, 3}}
	require.Error(t, tr.Validate(), "a partial word must be rejected")

	tr = &Transcript{Index: 1, Felts: []uint64{1, 2, 3, 4, 5, 6, 7, babybear.Modulus().Uint64()}}
	require.Error(t, tr.Validate(), "a non-canonical felt must be rejected")

	tr = &Transcript{Index: 1, Felts: []uint64{1, 2, 3, 4, 5, 6, 7, 8}}
	require.NoError(t, tr.Validate())
}

func TestFeltProduct(t *testing.T) {
	tr := &Transcript{Index: 0, Felts: []uint64{2, 3, 4, 1, 1, 1, 1, 1}}
	product := tr.FeltProduct()

	var expected babybear.Element
	expected.SetUint64(24)
	require.True(t, product.Equal(&expected))
}

func randomE4Elem(t *testing.T) E4 {
	var x E4
	for i := range x {
		_, err := x[i].SetRandom()
		require.NoError(t, err)
	}
	return x
}

func TestE4ReductionRule(t *testing.T) {
	// u * u^3 = w
	u := NewE4(0, 1, 0, 0)
	uCubed := NewE4(0, 0, 0, 1)
	var prod E4
	prod.Mul(&u, &uCubed)
	expected := NewE4(ExtensionNonResidue, 0, 0, 0)
	require.True(t, prod.Equal(&expected))
}

func TestE4MulLaws(t *testing.T) {
	a := randomE4Elem(t)
	b := randomE4Elem(t)
	c := randomE4Elem(t)

	var one E4
	one.SetOne()

	var lhs, rhs, tmp E4
	require.True(t, lhs.Mul(&a, &one).Equal(&a), "one must be neutral")

	lhs.Mul(&a, &b)
	rhs.Mul(&b, &a)
	require.True(t, lhs.Equal(&rhs), "multiplication must commute")

	tmp.Mul(&a, &b)
	lhs.Mul(&tmp, &c)
	tmp.Mul(&b, &c)
	rhs.Mul(&a, &tmp)
	require.True(t, lhs.Equal(&rhs), "multiplication must associate")

	tmp.Add(&b, &c)
	lhs.Mul(&a, &tmp)
	var ab, ac E4
	ab.Mul(&a, &b)
	ac.Mul(&a, &c)
	rhs.Add(&ab, &ac)
	require.True(t, lhs.Equal(&rhs), "multiplication must distribute over addition")
}

func TestE4Inverse(t *testing.T) {
	var one E4
	one.SetOne()

	for i := 0; i < 10; i++ {
		a := randomE4Elem(t)
		if a.IsZero() {
			a.SetOne()
		}
		var inv, prod E4
		inv.Inverse(&a)
		prod.Mul(&a, &inv)
		require.True(t, prod.Equal(&one), "a * a^-1 must be one")
	}

	// values living in a proper subfield exercise the degenerate norm paths
	subfield := []E4{
		NewE4(5, 0, 0, 0),
		NewE4(0, 0, 7, 0),
		NewE4(3, 0, 9, 0),
		NewE4(0, 2, 0, 0),
		NewE4(0, 0, 0, 2013265920),
	}
	for _, a := range subfield {
		var inv, prod E4
		inv.Inverse(&a)
		prod.Mul(&a, &inv)
		require.True(t, prod.Equal(&one))
	}
}

func TestE4InverseOfZeroPanics(t *testing.T) {
	var zero, z E4
	require.Panics(t, func() { z.Inverse(&zero) })
}
