package circuit

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/math/emulated"
)

// BabyBearModulus is the BabyBear prime p = 15*2^27 + 1. All of the STARK
// verifier's arithmetic is defined over this field, so every operation
// reproduced inside the BN254 circuit has to be emulated.
var BabyBearModulus = new(big.Int).SetUint64(2013265921)

// BabyBearParams describes the emulated field to gnark's non-native
// arithmetic layer (it implements emulated.FieldParams), and additionally
// carries the extension and packing parameters so they are not scattered
// through the arithmetic code.
type BabyBearParams struct{}

func (BabyBearParams) NbLimbs() uint     { return 1 }
func (BabyBearParams) BitsPerLimb() uint { return 32 }
func (BabyBearParams) IsPrime() bool     { return true }
func (BabyBearParams) Modulus() *big.Int { return BabyBearModulus }

// ExtensionDegree and NonResidue define the quartic extension
// BabyBear[u]/(u^4 - 11) the STARK samples its challenges from.
func (BabyBearParams) ExtensionDegree() int { return 4 }
func (BabyBearParams) NonResidue() uint64   { return 11 }

// NumElmsPerBN254Elm is how many BabyBear elements a proof transcript packs
// into a single BN254 scalar.
func (BabyBearParams) NumElmsPerBN254Elm() int { return 8 }

// FeltBits is the bit width of a canonical BabyBear element.
func (BabyBearParams) FeltBits() int { return BabyBearModulus.BitLen() }

// Variable is an emulated BabyBear element: an opaque handle over the limb
// wires representing the value. Operations return fresh variables and never
// mutate their inputs, so a variable stays valid for reuse after being read.
type Variable struct {
	value *emulated.Element[BabyBearParams]
}

// BabyBearChip emulates BabyBear arithmetic with BN254 constraints.
// All methods are pure apart from emitting constraints into the ambient
// constraint system; the chip itself carries no cross-call state.
type BabyBearChip struct {
	api    frontend.API
	field  *emulated.Field[BabyBearParams]
	params BabyBearParams
}

// NewBabyBearChip validates the field descriptor and binds a chip to the
// given constraint system. The descriptor is a compile-time parameter of the
// whole chip family, so a malformed one aborts circuit construction
// immediately rather than producing a broken circuit.
func NewBabyBearChip(api frontend.API) *BabyBearChip {
	var params BabyBearParams
	if err := validateParams(api, params); err != nil {
		panic(fmt.Sprintf("babybear: invalid field descriptor: %v", err))
	}
	field, err := emulated.NewField[BabyBearParams](api)
	if err != nil {
		panic(err)
	}
	return &BabyBearChip{
		api:    api,
		field:  field,
		params: params,
	}
}

func validateParams(api frontend.API, p BabyBearParams) error {
	mod := p.Modulus()
	if !p.IsPrime() || !mod.ProbablyPrime(20) {
		return fmt.Errorf("modulus %s is not prime", mod)
	}
	if uint(mod.BitLen()) > p.NbLimbs()*p.BitsPerLimb() {
		return fmt.Errorf("%d limbs of %d bits cannot hold a %d-bit modulus",
			p.NbLimbs(), p.BitsPerLimb(), mod.BitLen())
	}
	if p.NonResidue() == 0 {
		return fmt.Errorf("extension non-residue must be non-zero")
	}
	if p.NumElmsPerBN254Elm()*p.FeltBits() >= api.Compiler().FieldBitLen() {
		return fmt.Errorf("packing %d elements of %d bits overflows the %d-bit native field",
			p.NumElmsPerBN254Elm(), p.FeltBits(), api.Compiler().FieldBitLen())
	}
	return nil
}

// NewVariable lifts a literal into a variable with a fixed limb encoding.
func NewVariable(value uint64) *Variable {
	v := emulated.ValueOf[BabyBearParams](value)
	return &Variable{value: &v}
}

// NewVariableFromBigInt reduces value mod p and lifts it.
func NewVariableFromBigInt(value *big.Int) *Variable {
	reduced := new(big.Int).Mod(value, BabyBearModulus)
	v := emulated.ValueOf[BabyBearParams](reduced)
	return &Variable{value: &v}
}

// NewVariableFromElement wraps an emulated element coming from a circuit
// witness, so that packed transcript values can flow into chip operations.
func NewVariableFromElement(e *emulated.Element[BabyBearParams]) *Variable {
	return &Variable{value: e}
}

func (c *BabyBearChip) Zero() *Variable {
	return &Variable{value: c.field.Zero()}
}

func (c *BabyBearChip) One() *Variable {
	return &Variable{value: c.field.One()}
}

func (c *BabyBearChip) Add(a, b *Variable) *Variable {
	return &Variable{value: c.field.Add(a.value, b.value)}
}

func (c *BabyBearChip) Sub(a, b *Variable) *Variable {
	return &Variable{value: c.field.Sub(a.value, b.value)}
}

func (c *BabyBearChip) Neg(a *Variable) *Variable {
	return &Variable{value: c.field.Neg(a.value)}
}

func (c *BabyBearChip) Mul(a, b *Variable) *Variable {
	return &Variable{value: c.field.Mul(a.value, b.value)}
}

// Inv returns a^-1 mod p. The inverse witness comes from a hint and is
// constrained by a*a^-1 = 1, so an honest caller must guarantee a != 0:
// inverting zero makes witness solving fail instead of yielding a
// valid-looking wrong value.
func (c *BabyBearChip) Inv(a *Variable) *Variable {
	return &Variable{value: c.field.Inverse(a.value)}
}

// Reduce returns the unique representative of a in [0, p). Intermediate
// results are only kept congruent mod p; call this before any use that needs
// the canonical encoding.
func (c *BabyBearChip) Reduce(a *Variable) *Variable {
	reduced := c.field.Reduce(a.value)
	c.field.AssertIsInRange(reduced)
	return &Variable{value: reduced}
}

// AssertEq constrains a == b in BabyBear. The constraint system becomes
// unsatisfiable for any witness where the values differ.
func (c *BabyBearChip) AssertEq(a, b *Variable) {
	c.field.AssertIsEqual(a.value, b.value)
}

// AssertNe constrains a != b by forcing the zero flag of a-b to the false
// constant. Computing the flag alone would prove nothing; it is the equality
// with zero that makes a == b unsatisfiable.
func (c *BabyBearChip) AssertNe(a, b *Variable) {
	diff := c.field.Sub(a.value, b.value)
	isZero := c.field.IsZero(diff)
	c.api.AssertIsEqual(isZero, frontend.Variable(0))
}

// Select returns a when cond is 1 and b when cond is 0. cond is constrained
// boolean, so exactly one input determines the output for every valid
// witness.
func (c *BabyBearChip) Select(cond frontend.Variable, a, b *Variable) *Variable {
	c.api.AssertIsBoolean(cond)
	return &Variable{value: c.field.Select(cond, a.value, b.value)}
}

// ToBits decomposes the canonical representative of a into little-endian
// bits. The length is fixed by the field bit width (31 for BabyBear); the
// strict reduction beforehand makes the decomposition unique.
func (c *BabyBearChip) ToBits(a *Variable) []frontend.Variable {
	reduced := c.Reduce(a)
	bits := c.field.ToBits(reduced.value)
	return bits[:c.params.FeltBits()]
}

// FromBits recombines little-endian bits into a variable via the weighted
// binary sum. The bits must already be constrained boolean by the caller.
func (c *BabyBearChip) FromBits(bits []frontend.Variable) *Variable {
	return &Variable{value: c.field.FromBits(bits...)}
}
