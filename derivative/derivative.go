package derivative

import (
	"errors"
	"fmt"

	"github.com/takoeight0821/symdiff/ast"
	"github.com/takoeight0821/symdiff/lexer"
	"github.com/takoeight0821/symdiff/normalize"
	"github.com/takoeight0821/symdiff/printer"
	"github.com/takoeight0821/symdiff/token"
)

// Derive returns the derivative of n with respect to variable. The result is
// a raw tree; pass it through normalize.Normalize before printing it.
// n is normalized first, so a freshly parsed tree is accepted as well.
func Derive(n ast.Node, variable string) (ast.Node, error) {
	if err := CheckVariable(variable); err != nil {
		return nil, err
	}
	n, err := normalize.Normalize(n)
	if err != nil {
		return nil, err
	}
	return deriver{variable}.derive(n)
}

// Deriver is the pass form of Derive.
type Deriver struct {
	Variable string
}

func (d Deriver) Name() string {
	return "derive(" + d.Variable + ")"
}

func (d Deriver) Init(ast.Node) error {
	return CheckVariable(d.Variable)
}

func (d Deriver) Run(n ast.Node) (ast.Node, error) {
	return Derive(n, d.Variable)
}

var ErrInvalidVariable = errors.New("invalid variable name")

// CheckVariable reports whether name lexes as a single variable token.
func CheckVariable(name string) error {
	tokens, err := lexer.Lex(name)
	if err != nil || len(tokens) != 1 || tokens[0].Kind != token.VARIABLE {
		return fmt.Errorf("%w: %q", ErrInvalidVariable, name)
	}
	return nil
}

// DerivativeError reports a node with no differentiation rule.
type DerivativeError struct {
	Node ast.Node
	Msg  string
}

func (e DerivativeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Msg, printer.Print(e.Node))
}

type deriver struct {
	variable string
}

// derive expects a canonical tree: it relies on the dependency sets.
func (d deriver) derive(n ast.Node) (ast.Node, error) {
	if !n.Depends().Has(d.variable) {
		return ast.NewNumber(0), nil
	}

	switch n := n.(type) {
	case *ast.Variable:
		return ast.NewNumber(1), nil
	case *ast.Binary:
		return d.binary(n)
	case *ast.Unary:
		return d.unary(n)
	}

	return nil, DerivativeError{Node: n, Msg: "no differentiation rule"}
}

func (d deriver) binary(n *ast.Binary) (ast.Node, error) {
	a, b := n.Left, n.Right

	if n.Op == ast.Pow {
		// a^b with b free of the variable
		if b.Depends().Has(d.variable) {
			return nil, DerivativeError{Node: n, Msg: "variable exponent is not supported"}
		}
		da, err := d.derive(a)
		if err != nil {
			return nil, err
		}
		return normalize.Normalize(mul(mul(b, pow(a, sub(b, num(1)))), da))
	}

	da, err := d.derive(a)
	if err != nil {
		return nil, err
	}
	db, err := d.derive(b)
	if err != nil {
		return nil, err
	}

	switch n.Op {
	case ast.Add, ast.Sub:
		return ast.NewBinary(n.Op, da, db), nil
	case ast.Mul:
		return normalize.Normalize(add(mul(da, b), mul(a, db)))
	case ast.Div:
		return normalize.Normalize(div(sub(mul(da, b), mul(a, db)), pow(b, num(2))))
	}

	return nil, DerivativeError{Node: n, Msg: "no differentiation rule"}
}

func (d deriver) unary(n *ast.Unary) (ast.Node, error) {
	u := n.X

	switch n.Op {
	case ast.Tan, ast.Arcsin, ast.Arccos, ast.Arctan:
		return nil, DerivativeError{Node: n, Msg: n.Op.String() + " is not supported"}
	}

	du, err := d.derive(u)
	if err != nil {
		return nil, err
	}

	switch n.Op {
	case ast.Neg:
		return ast.NewUnary(ast.Neg, du), nil
	case ast.Exp:
		return normalize.Normalize(mul(ast.NewUnary(ast.Exp, u), du))
	case ast.Ln:
		return normalize.Normalize(mul(div(num(1), u), du))
	case ast.Sin:
		return normalize.Normalize(mul(ast.NewUnary(ast.Cos, u), du))
	case ast.Cos:
		return normalize.Normalize(mul(ast.NewUnary(ast.Neg, ast.NewUnary(ast.Sin, u)), du))
	case ast.Sqrt:
		return normalize.Normalize(div(du, mul(num(2), ast.NewUnary(ast.Sqrt, u))))
	}

	return nil, DerivativeError{Node: n, Msg: "no differentiation rule"}
}

func num(v float64) ast.Node {
	return ast.NewNumber(v)
}

func add(a, b ast.Node) ast.Node {
	return ast.NewBinary(ast.Add, a, b)
}

func sub(a, b ast.Node) ast.Node {
	return ast.NewBinary(ast.Sub, a, b)
}

func mul(a, b ast.Node) ast.Node {
	return ast.NewBinary(ast.Mul, a, b)
}

func div(a, b ast.Node) ast.Node {
	return ast.NewBinary(ast.Div, a, b)
}

func pow(a, b ast.Node) ast.Node {
	return ast.NewBinary(ast.Pow, a, b)
}
