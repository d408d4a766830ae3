// Package numeric implements Sage's arbitrary-precision Decimal type.
//
// The generator emits java.math.BigDecimal with RoundingMode.HALF_EVEN,
// and Decimal mirrors that representation here — an unscaled math/big.Int
// plus a base-10 scale — so the evaluator's arithmetic and the
// generator's emitted-code arithmetic agree on rounding behavior.
package numeric

import (
	"fmt"
	"math/big"
	"strings"
)

// Decimal is an unscaled big.Int together with a base-10 scale: the value
// is Unscaled * 10^-Scale, matching java.math.BigDecimal's internal shape.
type Decimal struct {
	Unscaled *big.Int
	Scale    int32
}

// NewDecimalFromString parses Sage's decimal literal grammar:
//
//	[0-9]+ ('.' [0-9]+)? ('e' [0-9]+)?
func NewDecimalFromString(s string) (*Decimal, error) {
	mantissa := s
	exp := int32(0)

	if idx := strings.IndexByte(s, 'e'); idx >= 0 {
		mantissa = s[:idx]
		var e int64
		if _, err := fmt.Sscanf(s[idx+1:], "%d", &e); err != nil {
			return nil, fmt.Errorf("invalid exponent in decimal %q", s)
		}
		exp = int32(e)
	}

	scale := int32(0)
	digits := mantissa
	if dot := strings.IndexByte(mantissa, '.'); dot >= 0 {
		digits = mantissa[:dot] + mantissa[dot+1:]
		scale = int32(len(mantissa) - dot - 1)
	}

	unscaled, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, fmt.Errorf("invalid decimal literal %q", s)
	}

	// 2e10 means the literal's value is multiplied by 10^10, which lowers
	// the effective scale (it may go negative, same as BigDecimal).
	scale -= exp

	return &Decimal{Unscaled: unscaled, Scale: scale}, nil
}

// NewDecimalFromInt wraps an integer value as a zero-scale Decimal.
func NewDecimalFromInt(i *big.Int) *Decimal {
	return &Decimal{Unscaled: new(big.Int).Set(i), Scale: 0}
}

// align returns both operands' unscaled values rescaled to the larger of
// the two scales, and that common scale.
func align(a, b *Decimal) (*big.Int, *big.Int, int32) {
	scale := a.Scale
	if b.Scale > scale {
		scale = b.Scale
	}
	au := scaleUp(a.Unscaled, scale-a.Scale)
	bu := scaleUp(b.Unscaled, scale-b.Scale)
	return au, bu, scale
}

func scaleUp(v *big.Int, by int32) *big.Int {
	if by <= 0 {
		return new(big.Int).Set(v)
	}
	factor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(by)), nil)
	return new(big.Int).Mul(v, factor)
}

// Add returns a+b.
func Add(a, b *Decimal) *Decimal {
	au, bu, scale := align(a, b)
	return &Decimal{Unscaled: new(big.Int).Add(au, bu), Scale: scale}
}

// Sub returns a-b.
func Sub(a, b *Decimal) *Decimal {
	au, bu, scale := align(a, b)
	return &Decimal{Unscaled: new(big.Int).Sub(au, bu), Scale: scale}
}

// Mul returns a*b.
func Mul(a, b *Decimal) *Decimal {
	return &Decimal{
		Unscaled: new(big.Int).Mul(a.Unscaled, b.Unscaled),
		Scale:    a.Scale + b.Scale,
	}
}

// divGuardDigits is the number of extra digits Div keeps beyond the
// larger operand scale: every quotient is rounded to that scale plus
// divGuardDigits, the precision a BigDecimal.divide(x,
// RoundingMode.HALF_EVEN) call would need a caller to choose explicitly.
const divGuardDigits = 10

// Div returns a/b, rounded half-to-even at the larger of the two operand
// scales plus divGuardDigits.
func Div(a, b *Decimal) (*Decimal, error) {
	if b.Unscaled.Sign() == 0 {
		return nil, fmt.Errorf("division by zero")
	}

	scale := a.Scale
	if b.Scale > scale {
		scale = b.Scale
	}
	scale += divGuardDigits

	// want: (a.Unscaled / 10^a.Scale) / (b.Unscaled / 10^b.Scale) at `scale`
	// = a.Unscaled * 10^(scale + b.Scale - a.Scale) / b.Unscaled, then round.
	shift := scale + b.Scale - a.Scale
	numerator := scaleUp(a.Unscaled, shift)

	q, r := new(big.Int).QuoRem(numerator, b.Unscaled, new(big.Int))
	q = roundHalfEven(q, r, b.Unscaled)

	return &Decimal{Unscaled: q, Scale: scale}, nil
}

// roundHalfEven adjusts a truncated quotient q (with remainder r over
// divisor d, from QuoRem) to round-half-to-even.
func roundHalfEven(q, r, d *big.Int) *big.Int {
	if r.Sign() == 0 {
		return q
	}
	twiceR := new(big.Int).Mul(new(big.Int).Abs(r), big.NewInt(2))
	absD := new(big.Int).Abs(d)
	cmp := twiceR.Cmp(absD)

	roundAway := cmp > 0
	if cmp == 0 {
		// Exactly halfway: round to even.
		roundAway = q.Bit(0) == 1
	}
	if !roundAway {
		return q
	}

	adjust := big.NewInt(1)
	if (r.Sign() < 0) != (d.Sign() < 0) {
		adjust = big.NewInt(-1)
	}
	return new(big.Int).Add(q, adjust)
}

// ToFloat64 converts d to the nearest float64, for callers (like the
// locale-formatting native) that hand off to a library built on
// float64 rather than arbitrary precision.
func ToFloat64(d *Decimal) float64 {
	num := new(big.Float).SetInt(d.Unscaled)
	if d.Scale > 0 {
		den := new(big.Float).SetInt(scaleUp(big.NewInt(1), d.Scale))
		num.Quo(num, den)
	} else if d.Scale < 0 {
		num.Mul(num, new(big.Float).SetInt(scaleUp(big.NewInt(1), -d.Scale)))
	}
	f, _ := num.Float64()
	return f
}

// Cmp compares a and b numerically, ignoring scale differences.
func Cmp(a, b *Decimal) int {
	au, bu, _ := align(a, b)
	return au.Cmp(bu)
}

// Equal reports whether a and b denote the same numeric value.
func Equal(a, b *Decimal) bool {
	return Cmp(a, b) == 0
}

// String renders the decimal the way its digits were scaled, e.g. "3.140".
func (d *Decimal) String() string {
	if d.Scale <= 0 {
		return scaleUp(d.Unscaled, -d.Scale).String()
	}

	neg := d.Unscaled.Sign() < 0
	digits := new(big.Int).Abs(d.Unscaled).String()
	for int32(len(digits)) <= d.Scale {
		digits = "0" + digits
	}
	cut := int32(len(digits)) - d.Scale
	whole, frac := digits[:cut], digits[cut:]

	var sb strings.Builder
	if neg {
		sb.WriteByte('-')
	}
	sb.WriteString(whole)
	sb.WriteByte('.')
	sb.WriteString(frac)
	return sb.String()
}
