// Package curve implements BabyJubJub point and scalar arithmetic over the
// BN254 scalar field, as required by the mental-poker ElGamal layer and the
// Groth16 circuits it must stay bit-compatible with.
package curve

import (
	"crypto/rand"
	"errors"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// ErrInvalidPoint is returned when a declared point fails the curve equation.
var ErrInvalidPoint = errors.New("curve: point is not on BabyJubJub")

// Twisted Edwards parameters: a*x^2 + y^2 = 1 + d*x^2*y^2 over F_p, where F_p
// is the BN254 scalar field. These are the standard BabyJubJub constants.
var (
	paramA fr.Element
	paramD fr.Element

	// L is the order of BabyJubJub's prime-order subgroup (cofactor 8).
	L, _ = new(big.Int).SetString("2736030358979909402780800718157159386076813972158567259200215660948447373041", 10)

	genX fr.Element
	genY fr.Element
)

func init() {
	paramA.SetUint64(168700)
	paramD.SetUint64(168696)

	gx, ok := new(big.Int).SetString("995203441582195749578291179787384436505546430278305826713579947235728471134", 10)
	if !ok {
		panic("curve: bad generator x constant")
	}
	gy, ok := new(big.Int).SetString("5472060717959818805561601436314318772137091100104008585924551046643952123905", 10)
	if !ok {
		panic("curve: bad generator y constant")
	}
	genX.SetBigInt(gx)
	genY.SetBigInt(gy)
}

// Point is an affine BabyJubJub point, with an explicit IsInfinity flag
// because the twisted Edwards identity (0, 1) is itself a valid affine
// point and some callers need to distinguish "unset" from "identity".
type Point struct {
	X, Y        fr.Element
	IsInfinity  bool
}

// Identity returns the curve's neutral element, (0, 1).
func Identity() Point {
	p := Point{IsInfinity: true}
	p.Y.SetOne()
	return p
}

// Generator returns the standard BabyJubJub base point.
func Generator() Point {
	return Point{X: genX, Y: genY}
}

// IsOnCurve reports whether p satisfies a*x^2 + y^2 = 1 + d*x^2*y^2.
func IsOnCurve(p Point) bool {
	if p.IsInfinity {
		return p.X.IsZero() && p.Y.IsOne()
	}
	var x2, y2, lhs, rhs, dxy fr.Element
	x2.Square(&p.X)
	y2.Square(&p.Y)

	lhs.Mul(&paramA, &x2)
	lhs.Add(&lhs, &y2)

	dxy.Mul(&paramD, &x2)
	dxy.Mul(&dxy, &y2)
	rhs.SetOne()
	rhs.Add(&rhs, &dxy)

	return lhs.Equal(&rhs)
}

// NewPoint validates and constructs a point from raw coordinates.
func NewPoint(x, y fr.Element) (Point, error) {
	p := Point{X: x, Y: y}
	if x.IsZero() && y.IsOne() {
		p.IsInfinity = true
	}
	if !IsOnCurve(p) {
		return Point{}, ErrInvalidPoint
	}
	return p, nil
}

// Add performs twisted Edwards point addition.
func Add(p, q Point) Point {
	if p.IsInfinity {
		return q
	}
	if q.IsInfinity {
		return p
	}

	var x1y2, y1x2, x1x2, y1y2, dxxyy, num1, num2, den1, den2 fr.Element
	x1y2.Mul(&p.X, &q.Y)
	y1x2.Mul(&p.Y, &q.X)
	x1x2.Mul(&p.X, &q.X)
	y1y2.Mul(&p.Y, &q.Y)
	dxxyy.Mul(&paramD, &x1x2)
	dxxyy.Mul(&dxxyy, &y1y2)

	num1.Add(&x1y2, &y1x2)
	den1.SetOne()
	den1.Add(&den1, &dxxyy)

	var aX1X2 fr.Element
	aX1X2.Mul(&paramA, &x1x2)
	num2.Sub(&y1y2, &aX1X2)
	den2.SetOne()
	den2.Sub(&den2, &dxxyy)

	var den1Inv, den2Inv fr.Element
	den1Inv.Inverse(&den1)
	den2Inv.Inverse(&den2)

	out := Point{}
	out.X.Mul(&num1, &den1Inv)
	out.Y.Mul(&num2, &den2Inv)
	if out.X.IsZero() && out.Y.IsOne() {
		out.IsInfinity = true
	}
	return out
}

// Negate returns -P, which on twisted Edwards is (-x, y).
func Negate(p Point) Point {
	if p.IsInfinity {
		return p
	}
	out := Point{Y: p.Y}
	out.X.Neg(&p.X)
	return out
}

// Equal reports whether two points are the same affine point, identity
// included.
func Equal(p, q Point) bool {
	if p.IsInfinity || q.IsInfinity {
		return p.IsInfinity == q.IsInfinity
	}
	return p.X.Equal(&q.X) && p.Y.Equal(&q.Y)
}

// reduceScalar reduces k modulo the subgroup order L.
func reduceScalar(k *big.Int) *big.Int {
	return new(big.Int).Mod(k, L)
}

// ScalarMul computes k*P via a Montgomery ladder: each bit of k costs the
// same two point additions whatever its value. It is not fully
// constant-time: k is reduced with math/big, whose arithmetic is
// variable-time, and the loop runs k.BitLen() times, so the running time
// can reveal the bit length of k. Callers multiplying a secret scalar (a
// player's long-term key, a shuffling nonce) use this, not ScalarMulVarTime.
func ScalarMul(p Point, k *big.Int) Point {
	k = reduceScalar(k)

	r0 := Identity()
	r1 := p
	bits := k.BitLen()
	for i := bits - 1; i >= 0; i-- {
		bit := k.Bit(i)
		if bit == 0 {
			r1 = Add(r0, r1)
			r0 = Add(r0, r0)
		} else {
			r0 = Add(r0, r1)
			r1 = Add(r1, r1)
		}
	}
	return r0
}

// ScalarMulVarTime is the non-constant-time double-and-add variant, for
// callers operating on public data only (e.g. verifying a card commitment
// against a publicly declared point). Never call this with a secret scalar.
func ScalarMulVarTime(p Point, k *big.Int) Point {
	k = reduceScalar(k)
	result := Identity()
	addend := p
	for i := 0; i < k.BitLen(); i++ {
		if k.Bit(i) == 1 {
			result = Add(result, addend)
		}
		addend = Add(addend, addend)
	}
	return result
}

// RandomScalar draws a scalar uniformly from [0, L) using crypto/rand.
func RandomScalar() (*big.Int, error) {
	return rand.Int(rand.Reader, L)
}
