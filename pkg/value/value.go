// Package value implements the numeric values Tally programs compute with.
package value

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/leapstack-labs/tally/pkg/token"
)

// ErrDivisionByZero is returned when the divisor is exactly zero.
var ErrDivisionByZero = errors.New("Division by zero") //nolint:revive,staticcheck // user-facing message

// Kind distinguishes integer and floating-point numbers.
type Kind uint8

const (
	KindInt Kind = iota
	KindFloat
)

func (k Kind) String() string {
	if k == KindFloat {
		return "float"
	}
	return "int"
}

// Number is an integer or floating-point value. Span records where the value
// was produced, for error attribution; it plays no part in arithmetic.
type Number struct {
	kind Kind
	i    int64
	f    float64
	Span token.Span
}

// Int returns an integer Number.
func Int(i int64) Number { return Number{kind: KindInt, i: i} }

// Float returns a floating-point Number.
func Float(f float64) Number { return Number{kind: KindFloat, f: f} }

// FromToken converts an INT or FLOAT literal token into a Number carrying
// the token's span.
func FromToken(tok token.Token) (Number, error) {
	var n Number
	switch tok.Kind {
	case token.INT:
		i, err := strconv.ParseInt(tok.Literal, 10, 64)
		switch {
		case err == nil:
			n = Int(i)
		case errors.Is(err, strconv.ErrRange):
			// Too large for int64; promote like Add and Mul do on overflow.
			f, ferr := strconv.ParseFloat(tok.Literal, 64)
			if ferr != nil {
				return Number{}, fmt.Errorf("invalid integer literal %q: %w", tok.Literal, ferr)
			}
			n = Float(f)
		default:
			return Number{}, fmt.Errorf("invalid integer literal %q: %w", tok.Literal, err)
		}
	case token.FLOAT:
		f, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			return Number{}, fmt.Errorf("invalid float literal %q: %w", tok.Literal, err)
		}
		n = Float(f)
	default:
		return Number{}, fmt.Errorf("token %s is not a number", tok.Kind)
	}
	return n.WithSpan(tok.Span), nil
}

// Parse reads text produced by Number.String back into a Number of the given
// kind.
func Parse(kind Kind, text string) (Number, error) {
	switch kind {
	case KindInt:
		i, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return Number{}, fmt.Errorf("invalid integer %q: %w", text, err)
		}
		return Int(i), nil
	case KindFloat:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return Number{}, fmt.Errorf("invalid float %q: %w", text, err)
		}
		return Float(f), nil
	default:
		return Number{}, fmt.Errorf("unknown number kind %d", kind)
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "int":
		return KindInt, true
	case "float":
		return KindFloat, true
	}
	return 0, false
}

// Kind returns the representation of n.
func (n Number) Kind() Kind { return n.kind }

// IsInt reports whether n is an integer.
func (n Number) IsInt() bool { return n.kind == KindInt }

// Int64 returns the integer magnitude of n, truncating floats.
func (n Number) Int64() int64 {
	if n.kind == KindFloat {
		return int64(n.f)
	}
	return n.i
}

// Float64 returns the magnitude of n as a float64.
func (n Number) Float64() float64 {
	if n.kind == KindFloat {
		return n.f
	}
	return float64(n.i)
}

// IsZero reports whether n is exactly zero.
func (n Number) IsZero() bool {
	if n.kind == KindFloat {
		return n.f == 0
	}
	return n.i == 0
}

// WithSpan returns a copy of n attributed to span.
func (n Number) WithSpan(span token.Span) Number {
	n.Span = span
	return n
}

// Equal compares magnitudes and representation, ignoring spans.
func (n Number) Equal(other Number) bool {
	if n.kind != other.kind {
		return false
	}
	if n.kind == KindFloat {
		return n.f == other.f || (math.IsNaN(n.f) && math.IsNaN(other.f))
	}
	return n.i == other.i
}

// String formats ints plainly and floats in shortest form, keeping a
// trailing ".0" on integral floats so the two kinds stay distinguishable.
func (n Number) String() string {
	if n.kind == KindInt {
		return strconv.FormatInt(n.i, 10)
	}
	s := strconv.FormatFloat(n.f, 'g', -1, 64)
	if math.IsInf(n.f, 0) || math.IsNaN(n.f) {
		return s
	}
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// Add returns n + other.
func (n Number) Add(other Number) Number {
	if n.IsInt() && other.IsInt() {
		s := n.i + other.i
		// Signed overflow: operands share a sign that the result lacks.
		if (n.i >= 0) == (other.i >= 0) && (s >= 0) != (n.i >= 0) {
			return Float(n.Float64() + other.Float64())
		}
		return Int(s)
	}
	return Float(n.Float64() + other.Float64())
}

// Sub returns n - other.
func (n Number) Sub(other Number) Number {
	if n.IsInt() && other.IsInt() {
		d := n.i - other.i
		if (n.i >= 0) != (other.i >= 0) && (d >= 0) != (n.i >= 0) {
			return Float(n.Float64() - other.Float64())
		}
		return Int(d)
	}
	return Float(n.Float64() - other.Float64())
}

// Mul returns n * other.
func (n Number) Mul(other Number) Number {
	if n.IsInt() && other.IsInt() {
		if p, ok := mulInt(n.i, other.i); ok {
			return Int(p)
		}
	}
	return Float(n.Float64() * other.Float64())
}

// Div returns n / other as a float. Dividing by exactly zero fails.
func (n Number) Div(other Number) (Number, error) {
	if other.IsZero() {
		return Number{}, ErrDivisionByZero
	}
	return Float(n.Float64() / other.Float64()), nil
}

// Pow returns n raised to other. Integer bases with non-negative integer
// exponents stay integers while the result fits; zero to a negative power
// is a division by zero.
func (n Number) Pow(other Number) (Number, error) {
	if n.IsZero() && other.Float64() < 0 {
		return Number{}, ErrDivisionByZero
	}
	if n.IsInt() && other.IsInt() && other.i >= 0 {
		if p, ok := powInt(n.i, other.i); ok {
			return Int(p), nil
		}
	}
	return Float(math.Pow(n.Float64(), other.Float64())), nil
}

// Neg returns -n.
func (n Number) Neg() Number {
	return n.Mul(Int(-1))
}

func mulInt(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	p := a * b
	if p/b != a || (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, false
	}
	return p, true
}

func powInt(base, exp int64) (int64, bool) {
	result := int64(1)
	for exp > 0 {
		if exp&1 == 1 {
			r, ok := mulInt(result, base)
			if !ok {
				return 0, false
			}
			result = r
		}
		exp >>= 1
		if exp > 0 {
			b, ok := mulInt(base, base)
			if !ok {
				return 0, false
			}
			base = b
		}
	}
	return result, true
}
