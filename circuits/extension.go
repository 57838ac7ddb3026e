package circuit

import (
	"github.com/consensys/gnark/frontend"
)

// ExtensionVariable is an element of the quartic extension
// BabyBear[u]/(u^4 - w), stored as the coefficients of
// c0 + c1*u + c2*u^2 + c3*u^3. It owns its four scalar variables.
type ExtensionVariable struct {
	value [4]*Variable
}

// NewExtensionVariable lifts four literals into an extension constant.
func NewExtensionVariable(value [4]uint64) *ExtensionVariable {
	return &ExtensionVariable{value: [4]*Variable{
		NewVariable(value[0]),
		NewVariable(value[1]),
		NewVariable(value[2]),
		NewVariable(value[3]),
	}}
}

// ExtensionFromBase embeds a base-field element as a degree-0 extension
// element.
func (c *BabyBearChip) ExtensionFromBase(a *Variable) *ExtensionVariable {
	return &ExtensionVariable{value: [4]*Variable{a, c.Zero(), c.Zero(), c.Zero()}}
}

func (c *BabyBearChip) ZeroExtension() *ExtensionVariable {
	return &ExtensionVariable{value: [4]*Variable{c.Zero(), c.Zero(), c.Zero(), c.Zero()}}
}

func (c *BabyBearChip) OneExtension() *ExtensionVariable {
	return &ExtensionVariable{value: [4]*Variable{c.One(), c.Zero(), c.Zero(), c.Zero()}}
}

func (c *BabyBearChip) AddExtension(a, b *ExtensionVariable) *ExtensionVariable {
	var v [4]*Variable
	for i := 0; i < 4; i++ {
		v[i] = c.Add(a.value[i], b.value[i])
	}
	return &ExtensionVariable{value: v}
}

func (c *BabyBearChip) SubExtension(a, b *ExtensionVariable) *ExtensionVariable {
	var v [4]*Variable
	for i := 0; i < 4; i++ {
		v[i] = c.Sub(a.value[i], b.value[i])
	}
	return &ExtensionVariable{value: v}
}

func (c *BabyBearChip) NegExtension(a *ExtensionVariable) *ExtensionVariable {
	var v [4]*Variable
	for i := 0; i < 4; i++ {
		v[i] = c.Neg(a.value[i])
	}
	return &ExtensionVariable{value: v}
}

// MulExtension is schoolbook polynomial multiplication reduced by u^4 = w:
// a_i*b_j lands in coefficient i+j when i+j < 4, and w*a_i*b_j in
// coefficient i+j-4 otherwise.
func (c *BabyBearChip) MulExtension(a, b *ExtensionVariable) *ExtensionVariable {
	w := NewVariable(c.params.NonResidue())
	v := [4]*Variable{c.Zero(), c.Zero(), c.Zero(), c.Zero()}
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			term := c.Mul(a.value[i], b.value[j])
			if i+j >= 4 {
				v[i+j-4] = c.Add(v[i+j-4], c.Mul(term, w))
			} else {
				v[i+j] = c.Add(v[i+j], term)
			}
		}
	}
	return &ExtensionVariable{value: v}
}

// ScalarMulExtension scales every coefficient by a base-field element.
func (c *BabyBearChip) ScalarMulExtension(a *ExtensionVariable, s *Variable) *ExtensionVariable {
	var v [4]*Variable
	for i := 0; i < 4; i++ {
		v[i] = c.Mul(a.value[i], s)
	}
	return &ExtensionVariable{value: v}
}

// InvExtension returns the multiplicative inverse of a, computed through the
// norm map down the tower Fp4 = Fp2[u]/(u^2 - s), Fp2 = Fp[s]/(s^2 - w) with
// s = u^2. Writing a = A + B*u with A = a0 + a2*s and B = a1 + a3*s:
//
//	N2   = A^2 - s*B^2            (the Fp2 norm of a)
//	norm = n0^2 - w*n1^2          (the Fp norm of N2, with N2 = n0 + n1*s)
//	a^-1 = (A - B*u)(n0 - n1*s) / norm
//
// Only the final division needs a base-field inverse; everything else is a
// fixed mul/sub network. Precondition a != 0: the norm of zero is zero, so
// the base-field inversion hint fails and witness solving aborts.
func (c *BabyBearChip) InvExtension(a *ExtensionVariable) *ExtensionVariable {
	w := NewVariable(c.params.NonResidue())
	a0, a1, a2, a3 := a.value[0], a.value[1], a.value[2], a.value[3]

	// N2 = A^2 - s*B^2 = n0 + n1*s over Fp2 = Fp[s]/(s^2 - w):
	//   n0 = a0^2 + w*a2^2 - 2*w*a1*a3
	//   n1 = 2*a0*a2 - a1^2 - w*a3^2
	two := NewVariable(2)
	n0 := c.Sub(
		c.Add(c.Mul(a0, a0), c.Mul(w, c.Mul(a2, a2))),
		c.Mul(two, c.Mul(w, c.Mul(a1, a3))),
	)
	n1 := c.Sub(
		c.Mul(two, c.Mul(a0, a2)),
		c.Add(c.Mul(a1, a1), c.Mul(w, c.Mul(a3, a3))),
	)

	// norm = n0^2 - w*n1^2 lands in the base field.
	norm := c.Sub(c.Mul(n0, n0), c.Mul(w, c.Mul(n1, n1)))
	normInv := c.Inv(norm)

	// (A - B*u) has coefficients (a0, -a1, a2, -a3); (n0 - n1*s) has
	// coefficients (n0, 0, -n1, 0). Their product times norm^-1 is a^-1.
	conjA := &ExtensionVariable{value: [4]*Variable{a0, c.Neg(a1), a2, c.Neg(a3)}}
	conjN := &ExtensionVariable{value: [4]*Variable{n0, c.Zero(), c.Neg(n1), c.Zero()}}
	return c.ScalarMulExtension(c.MulExtension(conjA, conjN), normInv)
}

// DivExtension returns a/b in the extension. Precondition b != 0.
func (c *BabyBearChip) DivExtension(a, b *ExtensionVariable) *ExtensionVariable {
	return c.MulExtension(a, c.InvExtension(b))
}

func (c *BabyBearChip) AssertEqExtension(a, b *ExtensionVariable) {
	for i := 0; i < 4; i++ {
		c.AssertEq(a.value[i], b.value[i])
	}
}

// AssertNeExtension constrains a != b jointly across coefficients: the AND
// of the four per-coefficient zero flags is forced to the false constant, so
// the assertion holds exactly when at least one coefficient pair differs.
func (c *BabyBearChip) AssertNeExtension(a, b *ExtensionVariable) {
	var isZero [4]frontend.Variable
	for i := 0; i < 4; i++ {
		diff := c.field.Sub(a.value[i].value, b.value[i].value)
		isZero[i] = c.field.IsZero(diff)
	}
	allZero := c.api.And(
		c.api.And(isZero[0], isZero[1]),
		c.api.And(isZero[2], isZero[3]),
	)
	c.api.AssertIsEqual(allZero, frontend.Variable(0))
}

func (c *BabyBearChip) SelectExtension(cond frontend.Variable, a, b *ExtensionVariable) *ExtensionVariable {
	c.api.AssertIsBoolean(cond)
	var v [4]*Variable
	for i := 0; i < 4; i++ {
		v[i] = &Variable{value: c.field.Select(cond, a.value[i].value, b.value[i].value)}
	}
	return &ExtensionVariable{value: v}
}
