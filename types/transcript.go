package types

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/field/babybear"
)

// Native-side mirror of the in-circuit BabyBear layout. The prover uses it
// to build witnesses and the circuit tests use it as the reference model, so
// the constants here must stay in lockstep with circuits/babybear.go.
const (
	// FeltsPerWord is how many BabyBear felts a packed BN254 word carries.
	FeltsPerWord = 8
	// FeltBits is the bit width of a canonical BabyBear element.
	FeltBits = 31
	// ExtensionNonResidue is w in BabyBear[u]/(u^4 - w).
	ExtensionNonResidue = 11
)

// Transcript is the STARK prover service's JSON shape for a proof
// transcript: a flat list of canonical BabyBear felts, 8 per packed word.
type Transcript struct {
	Index uint64   `json:"index"`
	Felts []uint64 `json:"felts"`
}

// Validate checks that the felts are canonical and fill whole words.
func (t *Transcript) Validate() error {
	if len(t.Felts)%FeltsPerWord != 0 {
		return fmt.Errorf("transcript %d has %d felts, not a multiple of %d",
			t.Index, len(t.Felts), FeltsPerWord)
	}
	modulus := babybear.Modulus().Uint64()
	for i, felt := range t.Felts {
		if felt >= modulus {
			return fmt.Errorf("transcript %d felt %d is %d, out of range", t.Index, i, felt)
		}
	}
	return nil
}

// Words packs the transcript felts into BN254-sized words, 8 felts per word,
// using the same little-endian 31-bit layout as the packing chip.
func (t *Transcript) Words() ([]*big.Int, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	words := make([]*big.Int, len(t.Felts)/FeltsPerWord)
	for i := range words {
		words[i] = PackFelts(t.Felts[i*FeltsPerWord : (i+1)*FeltsPerWord])
	}
	return words, nil
}

// FeltProduct is the running product of all transcript felts in BabyBear.
func (t *Transcript) FeltProduct() babybear.Element {
	var product babybear.Element
	product.SetOne()
	for _, felt := range t.Felts {
		var e babybear.Element
		e.SetUint64(felt)
		product.Mul(&product, &e)
	}
	return product
}

// PackFelts packs canonical felts into one native word: felt k occupies bits
// [k*31, (k+1)*31) of the result. Mirrors BabyBearChip.PackFelts.
func PackFelts(felts []uint64) *big.Int {
	word := new(big.Int)
	for i, felt := range felts {
		part := new(big.Int).Lsh(new(big.Int).SetUint64(felt), uint(i*FeltBits))
		word.Or(word, part)
	}
	return word
}

// UnpackWord is the inverse of PackFelts, for words known to carry canonical
// felts.
func UnpackWord(word *big.Int, count int) []uint64 {
	mask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), FeltBits), big.NewInt(1))
	felts := make([]uint64, count)
	rest := new(big.Int).Set(word)
	for i := range felts {
		felts[i] = new(big.Int).And(rest, mask).Uint64()
		rest.Rsh(rest, FeltBits)
	}
	return felts
}

// E4 is the quartic extension BabyBear[u]/(u^4 - 11) over the native field:
// the out-of-circuit counterpart of the extension chip. Coefficients are in
// the basis {1, u, u^2, u^3}.
type E4 [4]babybear.Element

// NewE4 builds an extension element from canonical coefficient values.
func NewE4(c0, c1, c2, c3 uint64) E4 {
	var z E4
	z[0].SetUint64(c0)
	z[1].SetUint64(c1)
	z[2].SetUint64(c2)
	z[3].SetUint64(c3)
	return z
}

func (z *E4) SetOne() *E4 {
	z[0].SetOne()
	z[1].SetZero()
	z[2].SetZero()
	z[3].SetZero()
	return z
}

func (z *E4) IsZero() bool {
	return z[0].IsZero() && z[1].IsZero() && z[2].IsZero() && z[3].IsZero()
}

func (z *E4) Equal(x *E4) bool {
	return z[0].Equal(&x[0]) && z[1].Equal(&x[1]) && z[2].Equal(&x[2]) && z[3].Equal(&x[3])
}

// Add sets z = x + y.
func (z *E4) Add(x, y *E4) *E4 {
	for i := 0; i < 4; i++ {
		z[i].Add(&x[i], &y[i])
	}
	return z
}

// Sub sets z = x - y.
func (z *E4) Sub(x, y *E4) *E4 {
	for i := 0; i < 4; i++ {
		z[i].Sub(&x[i], &y[i])
	}
	return z
}

// Mul sets z = x*y: schoolbook multiplication reduced by u^4 = w.
func (z *E4) Mul(x, y *E4) *E4 {
	var w babybear.Element
	w.SetUint64(ExtensionNonResidue)

	var acc [4]babybear.Element
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			var term babybear.Element
			term.Mul(&x[i], &y[j])
			if i+j >= 4 {
				term.Mul(&term, &w)
				acc[i+j-4].Add(&acc[i+j-4], &term)
			} else {
				acc[i+j].Add(&acc[i+j], &term)
			}
		}
	}
	*z = acc
	return z
}

// Inverse sets z = x^-1 through the norm map down the tower
// Fp4 = Fp2[u]/(u^2 - s), Fp2 = Fp[s]/(s^2 - w), the same construction the
// extension chip constrains in-circuit. Inverting zero panics, matching the
// chip's fatal behavior at witness time.
func (z *E4) Inverse(x *E4) *E4 {
	if x.IsZero() {
		panic("babybear E4: inverse of zero")
	}

	var w babybear.Element
	w.SetUint64(ExtensionNonResidue)

	// N2 = A^2 - s*B^2 = n0 + n1*s with A = x0 + x2*s, B = x1 + x3*s.
	var t0, t1, t2, n0, n1 babybear.Element
	t0.Square(&x[0])
	t1.Square(&x[2])
	t1.Mul(&t1, &w)
	t2.Mul(&x[1], &x[3])
	t2.Mul(&t2, &w)
	t2.Double(&t2)
	n0.Add(&t0, &t1)
	n0.Sub(&n0, &t2)

	t0.Mul(&x[0], &x[2])
	t0.Double(&t0)
	t1.Square(&x[1])
	t2.Square(&x[3])
	t2.Mul(&t2, &w)
	n1.Sub(&t0, &t1)
	n1.Sub(&n1, &t2)

	// norm = n0^2 - w*n1^2, then scale (A - B*u)(n0 - n1*s) by norm^-1.
	var norm babybear.Element
	t0.Square(&n0)
	t1.Square(&n1)
	t1.Mul(&t1, &w)
	norm.Sub(&t0, &t1)
	norm.Inverse(&norm)

	var conjA, conjN, prod E4
	conjA[0].Set(&x[0])
	conjA[1].Neg(&x[1])
	conjA[2].Set(&x[2])
	conjA[3].Neg(&x[3])
	conjN[0].Set(&n0)
	conjN[2].Neg(&n1)
	prod.Mul(&conjA, &conjN)

	for i := 0; i < 4; i++ {
		z[i].Mul(&prod[i], &norm)
	}
	return z
}
