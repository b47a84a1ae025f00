// Package eval computes the numeric value of an expression tree with
// arbitrary-precision floats.
package eval

import (
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/takoeight0821/symdiff/ast"
	"github.com/takoeight0821/symdiff/printer"
	"github.com/zephyrtronium/bigfloat"
)

// DefaultPrecision is the mantissa size, in bits, used when none is given.
const DefaultPrecision = 64

// Evaluator computes the value of a tree for fixed variable bindings.
type Evaluator struct {
	prec uint
	env  map[string]*big.Float
}

// NewEvaluator creates an Evaluator working at prec bits.
func NewEvaluator(prec uint) *Evaluator {
	if prec == 0 {
		prec = DefaultPrecision
	}
	return &Evaluator{prec: prec, env: make(map[string]*big.Float)}
}

// Precision is the mantissa size of every value the Evaluator produces.
func (ev *Evaluator) Precision() uint {
	return ev.prec
}

// Bind sets the value of a variable. v is copied.
func (ev *Evaluator) Bind(name string, v *big.Float) {
	ev.env[name] = ev.newFloat().Set(v)
}

func (ev *Evaluator) BindFloat(name string, v float64) {
	ev.env[name] = ev.newFloat().SetFloat64(v)
}

// ParseBinding reads a binding of the form name=value, e.g. x=1.5.
func (ev *Evaluator) ParseBinding(s string) error {
	name, value, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return fmt.Errorf("invalid binding %q: expected name=value", s)
	}
	v, _, err := big.ParseFloat(strings.TrimSpace(value), 10, ev.prec, big.ToNearestEven)
	if err != nil {
		return fmt.Errorf("invalid binding %q: %w", s, err)
	}
	ev.Bind(name, v)
	return nil
}

// String lists the bindings sorted by name, e.g. "{ x:1.5 y:-2 }".
func (ev *Evaluator) String() string {
	var b strings.Builder
	b.WriteString("{")
	for _, name := range ast.NewSet(ev.names()...).Sorted() {
		b.WriteString(fmt.Sprintf(" %s:%s", name, ev.env[name].Text('g', 10)))
	}
	b.WriteString(" }")
	return b.String()
}

func (ev *Evaluator) names() []string {
	names := make([]string, 0, len(ev.env))
	for name := range ev.env {
		names = append(names, name)
	}
	return names
}

func (ev *Evaluator) newFloat() *big.Float {
	return new(big.Float).SetPrec(ev.prec)
}

// Error reports a subtree without a real value at the current bindings.
type Error struct {
	Node ast.Node
	Msg  string
}

func (e Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Msg, printer.Print(e.Node))
}

func evalError(node ast.Node, msg string) error {
	return Error{Node: node, Msg: msg}
}

func (ev *Evaluator) Eval(node ast.Node) (*big.Float, error) {
	switch n := node.(type) {
	case *ast.Number:
		return ev.newFloat().SetFloat64(n.Value), nil
	case *ast.Variable:
		v, ok := ev.env[n.Name]
		if !ok {
			return nil, evalError(n, "unbound variable")
		}
		return ev.newFloat().Set(v), nil
	case *ast.Constant:
		return ev.constant(n)
	case *ast.Binary:
		l, err := ev.Eval(n.Left)
		if err != nil {
			return nil, err
		}
		r, err := ev.Eval(n.Right)
		if err != nil {
			return nil, err
		}
		return ev.binary(n, l, r)
	case *ast.Unary:
		x, err := ev.Eval(n.X)
		if err != nil {
			return nil, err
		}
		return ev.unary(n, x)
	default:
		return nil, evalError(node, fmt.Sprintf("unexpected node: %T", n))
	}
}

func (ev *Evaluator) constant(n *ast.Constant) (*big.Float, error) {
	switch n.Name {
	case "pi":
		return bigfloat.Pi(ev.newFloat()), nil
	case "e":
		one := ev.newFloat().SetInt64(1)
		return bigfloat.Exp(ev.newFloat(), one), nil
	default:
		return nil, evalError(n, "unknown constant")
	}
}

func (ev *Evaluator) binary(n *ast.Binary, l, r *big.Float) (*big.Float, error) {
	if l.IsInf() || r.IsInf() {
		return nil, evalError(n, "overflow")
	}

	z := ev.newFloat()
	switch n.Op {
	case ast.Add:
		return z.Add(l, r), nil
	case ast.Sub:
		return z.Sub(l, r), nil
	case ast.Mul:
		return z.Mul(l, r), nil
	case ast.Div:
		if r.Sign() == 0 {
			return nil, evalError(n, "division by zero")
		}
		return z.Quo(l, r), nil
	case ast.Pow:
		return ev.pow(n, l, r)
	default:
		return nil, evalError(n, "unknown operator "+n.Op.String())
	}
}

// pow handles the bases bigfloat.Pow rejects: zero and, with an integer
// exponent, negative numbers.
func (ev *Evaluator) pow(n ast.Node, x, y *big.Float) (*big.Float, error) {
	z := ev.newFloat()
	switch x.Sign() {
	case 0:
		switch y.Sign() {
		case 1:
			return z, nil
		case 0:
			return z.SetInt64(1), nil
		default:
			return nil, evalError(n, "division by zero")
		}
	case 1:
		if k, ok := smallInt(y); ok {
			return ev.powInt(x, k), nil
		}
		return bigfloat.Pow(z, x, y), nil
	}

	if !y.IsInt() {
		return nil, evalError(n, "negative base with a fractional exponent")
	}
	if k, ok := smallInt(y); ok {
		return ev.powInt(x, k), nil
	}
	abs := ev.newFloat().Neg(x)
	bigfloat.Pow(z, abs, y)
	if odd(y) {
		z.Neg(z)
	}
	return z, nil
}

// maxIntExponent bounds the exponents computed by repeated squaring.
const maxIntExponent = 1 << 20

func smallInt(y *big.Float) (int64, bool) {
	if !y.IsInt() {
		return 0, false
	}
	k, acc := y.Int64()
	if acc != big.Exact || k > maxIntExponent || k < -maxIntExponent {
		return 0, false
	}
	return k, true
}

// powInt computes x^k by repeated squaring, so integer powers of exactly
// representable values stay exact.
func (ev *Evaluator) powInt(x *big.Float, k int64) *big.Float {
	neg := k < 0
	if neg {
		k = -k
	}
	z := ev.newFloat().SetInt64(1)
	b := ev.newFloat().Set(x)
	for ; k > 0; k >>= 1 {
		if k&1 == 1 {
			z.Mul(z, b)
		}
		b.Mul(b, b)
	}
	if neg {
		z.Quo(ev.newFloat().SetInt64(1), z)
	}
	return z
}

func odd(y *big.Float) bool {
	i, _ := y.Int(nil)
	return i.Bit(0) == 1
}

func (ev *Evaluator) unary(n *ast.Unary, x *big.Float) (*big.Float, error) {
	if x.IsInf() {
		return nil, evalError(n, "overflow")
	}

	z := ev.newFloat()
	switch n.Op {
	case ast.Neg:
		return z.Neg(x), nil
	case ast.Exp:
		return bigfloat.Exp(z, x), nil
	case ast.Ln:
		if x.Sign() <= 0 {
			return nil, evalError(n, "logarithm of a non-positive number")
		}
		return bigfloat.Log(z, x), nil
	case ast.Sqrt:
		if x.Sign() < 0 {
			return nil, evalError(n, "square root of a negative number")
		}
		return z.Sqrt(x), nil
	}

	// bigfloat has no trigonometry; these go through float64.
	f, _ := x.Float64()
	var r float64
	switch n.Op {
	case ast.Sin:
		r = math.Sin(f)
	case ast.Cos:
		r = math.Cos(f)
	case ast.Tan:
		r = math.Tan(f)
	case ast.Arcsin:
		r = math.Asin(f)
	case ast.Arccos:
		r = math.Acos(f)
	case ast.Arctan:
		r = math.Atan(f)
	default:
		return nil, evalError(n, "unknown function "+n.Op.String())
	}
	if math.IsNaN(r) {
		return nil, evalError(n, "argument out of domain")
	}
	return z.SetFloat64(r), nil
}
