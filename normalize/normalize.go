package normalize

import (
	"fmt"
	"math"

	"github.com/takoeight0821/symdiff/ast"
	"github.com/takoeight0821/symdiff/printer"
)

// Normalize rewrites n into canonical form: literals are folded where the
// result is exact, trivial identities are removed, signs are pulled out of
// products and quotients, no literal is negative and every node carries its
// dependency set. The input is not modified.
//
// Normalize is idempotent: Normalize(Normalize(n)) is equal to Normalize(n).
func Normalize(n ast.Node) (ast.Node, error) {
	r, err := rewrite(n)
	if err != nil {
		return nil, err
	}
	return finish(r), nil
}

// Normalizer is the pass form of Normalize.
type Normalizer struct{}

func (Normalizer) Name() string {
	return "normalize"
}

func (Normalizer) Init(ast.Node) error {
	return nil
}

func (Normalizer) Run(n ast.Node) (ast.Node, error) {
	return Normalize(n)
}

// EvalError reports an operation with no value, such as a division by a
// literal zero.
type EvalError struct {
	Node ast.Node
	Msg  string
}

func (e EvalError) Error() string {
	return fmt.Sprintf("%s: %s", e.Msg, printer.Print(e.Node))
}

// rewrite rebuilds n bottom-up through the smart constructors below. While
// rewriting, negative literals are allowed; finish removes them.
func rewrite(n ast.Node) (ast.Node, error) {
	switch n := n.(type) {
	case *ast.Binary:
		left, err := rewrite(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := rewrite(n.Right)
		if err != nil {
			return nil, err
		}
		return binary(n.Op, left, right)
	case *ast.Unary:
		x, err := rewrite(n.X)
		if err != nil {
			return nil, err
		}
		return unary(n.Op, x)
	case *ast.Number:
		return &ast.Number{Text: n.Text, Value: n.Value}, nil
	case *ast.Variable:
		return ast.NewVariable(n.Name), nil
	case *ast.Constant:
		return ast.NewConstant(n.Name), nil
	}
	panic(fmt.Sprintf("unexpected node %T", n))
}

func binary(op ast.Op, left, right ast.Node) (ast.Node, error) {
	switch op {
	case ast.Add:
		return add(left, right), nil
	case ast.Sub:
		return sub(left, right), nil
	case ast.Mul:
		return mul(left, right)
	case ast.Div:
		return div(left, right)
	case ast.Pow:
		return pow(left, right), nil
	}
	panic(fmt.Sprintf("unexpected binary operator %q", op))
}

func unary(op ast.Op, x ast.Node) (ast.Node, error) {
	switch op {
	case ast.Neg:
		return neg(x), nil
	case ast.Exp:
		return exp(x), nil
	case ast.Sqrt:
		return sqrt(x)
	default:
		return ast.NewUnary(op, x), nil
	}
}

// Each constructor below returns a bare node only when none of its own
// rules applies to exactly those operands. Any other result is built by
// calling a constructor again, which keeps every output a fixed point.

func add(a, b ast.Node) ast.Node {
	if isNumber(b, 0) {
		return a
	}
	if isNumber(a, 0) {
		return b
	}
	if x, y, ok := numbers(a, b); ok {
		if v := x + y; isFinite(v) {
			return ast.NewNumber(v)
		}
	}
	return ast.NewBinary(ast.Add, a, b)
}

func sub(a, b ast.Node) ast.Node {
	if isNumber(a, 0) {
		return neg(b)
	}
	if isNumber(b, 0) {
		return a
	}
	if u, ok := b.(*ast.Unary); ok && u.Op == ast.Neg {
		return add(a, u.X)
	}
	if y, ok := b.(*ast.Number); ok && y.Value < 0 {
		return add(a, ast.NewNumber(-y.Value))
	}
	if x, y, ok := numbers(a, b); ok {
		if v := x - y; isFinite(v) {
			return ast.NewNumber(v)
		}
	}
	return ast.NewBinary(ast.Sub, a, b)
}

func mul(a, b ast.Node) (ast.Node, error) {
	if x, y, ok := numbers(a, b); ok {
		if v := x * y; isInteger(v) {
			return ast.NewNumber(v), nil
		}
	}
	if isNumber(a, 0) || isNumber(b, 0) {
		return ast.NewNumber(0), nil
	}
	if isNumber(a, 1) {
		return b, nil
	}
	if isNumber(b, 1) {
		return a, nil
	}

	qa, aIsDiv := quotient(a)
	qb, bIsDiv := quotient(b)
	switch {
	case aIsDiv && bIsDiv:
		return mulDiv(qa.Left, qb.Left, qa.Right, qb.Right)
	case aIsDiv:
		return mulDiv(qa.Left, b, qa.Right, nil)
	case bIsDiv:
		return mulDiv(a, qb.Left, qb.Right, nil)
	}

	pa, aNeg := positive(a)
	pb, bNeg := positive(b)
	switch {
	case aNeg && bNeg:
		return mul(pa, pb)
	case aNeg:
		return negated(mul(pa, b))
	case bNeg:
		return negated(mul(a, pb))
	}

	// Coefficients go first: x*2 becomes 2*x.
	if isNumeric(b) && !isNumeric(a) {
		return mul(b, a)
	}

	return ast.NewBinary(ast.Mul, a, b), nil
}

// mulDiv builds (n1*n2)/(d1*d2). A nil d2 stands for no second denominator.
func mulDiv(n1, n2, d1, d2 ast.Node) (ast.Node, error) {
	num, err := mul(n1, n2)
	if err != nil {
		return nil, err
	}
	den := d1
	if d2 != nil {
		den, err = mul(d1, d2)
		if err != nil {
			return nil, err
		}
	}
	return div(num, den)
}

func div(a, b ast.Node) (ast.Node, error) {
	if isNumber(b, 0) {
		return nil, EvalError{Node: finish(ast.NewBinary(ast.Div, a, b)), Msg: "division by zero"}
	}
	if isNumber(a, 0) {
		return ast.NewNumber(0), nil
	}
	if x, y, ok := numbers(a, b); ok {
		if v := x / y; isInteger(v) {
			return ast.NewNumber(v), nil
		}
	}

	pa, aNeg := positive(a)
	pb, bNeg := positive(b)
	switch {
	case aNeg && bNeg:
		return div(pa, pb)
	case aNeg:
		return negated(div(pa, b))
	case bNeg:
		return negated(div(a, pb))
	}

	if isNumber(b, 1) {
		return a, nil
	}

	return ast.NewBinary(ast.Div, a, b), nil
}

// powLimit bounds the literal powers that are folded.
const powLimit = 1000

func pow(a, b ast.Node) ast.Node {
	if isNumber(b, 1) {
		return a
	}
	if x, y, ok := numbers(a, b); ok {
		if v := math.Pow(x, y); isInteger(v) && v < powLimit {
			return ast.NewNumber(v)
		}
	}
	if c, ok := a.(*ast.Constant); ok && c.Name == "e" {
		return exp(b)
	}
	return ast.NewBinary(ast.Pow, a, b)
}

func neg(x ast.Node) ast.Node {
	switch x := x.(type) {
	case *ast.Number:
		if x.Value == 0 {
			return ast.NewNumber(0)
		}
		return ast.NewNumber(-x.Value)
	case *ast.Unary:
		if x.Op == ast.Neg {
			return x.X
		}
	}
	return ast.NewUnary(ast.Neg, x)
}

func negated(x ast.Node, err error) (ast.Node, error) {
	if err != nil {
		return nil, err
	}
	return neg(x), nil
}

func exp(x ast.Node) ast.Node {
	if u, ok := x.(*ast.Unary); ok && u.Op == ast.Ln {
		return u.X
	}
	return ast.NewUnary(ast.Exp, x)
}

func sqrt(x ast.Node) (ast.Node, error) {
	if n, ok := x.(*ast.Number); ok {
		if n.Value < 0 {
			return nil, EvalError{Node: finish(ast.NewUnary(ast.Sqrt, x)), Msg: "square root of a negative number"}
		}
		if v := math.Sqrt(n.Value); isInteger(v) {
			return ast.NewNumber(v), nil
		}
	}
	return ast.NewUnary(ast.Sqrt, x), nil
}

// positive returns the positive form of a negative literal or a neg node.
func positive(n ast.Node) (ast.Node, bool) {
	switch n := n.(type) {
	case *ast.Number:
		if n.Value < 0 {
			return ast.NewNumber(-n.Value), true
		}
	case *ast.Unary:
		if n.Op == ast.Neg {
			return n.X, true
		}
	}
	return n, false
}

func quotient(n ast.Node) (*ast.Binary, bool) {
	b, ok := n.(*ast.Binary)
	if ok && b.Op == ast.Div {
		return b, true
	}
	return nil, false
}

func numbers(a, b ast.Node) (float64, float64, bool) {
	x, ok := a.(*ast.Number)
	if !ok {
		return 0, 0, false
	}
	y, ok := b.(*ast.Number)
	if !ok {
		return 0, 0, false
	}
	return x.Value, y.Value, true
}

func isNumber(n ast.Node, v float64) bool {
	x, ok := n.(*ast.Number)
	return ok && x.Value == v
}

// isNumeric reports whether n is a literal, possibly negated.
func isNumeric(n ast.Node) bool {
	p, _ := positive(n)
	_, ok := p.(*ast.Number)
	return ok
}

func isFinite(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v)
}

func isInteger(v float64) bool {
	return isFinite(v) && v == math.Trunc(v)
}

// finish replaces negative literals with neg of their magnitude and fills in
// the dependency set of every node.
func finish(n ast.Node) ast.Node {
	n, _ = ast.Traverse(n, func(n ast.Node, err error) (ast.Node, error) {
		switch n := n.(type) {
		case *ast.Binary:
			n.Deps = n.Left.Depends().Union(n.Right.Depends())
			return n, err
		case *ast.Unary:
			n.Deps = n.X.Depends().Union()
			return n, err
		case *ast.Number:
			if n.Value < 0 {
				lit := &ast.Number{Text: ast.FormatNumber(-n.Value), Value: -n.Value, Deps: ast.NewSet()}
				return &ast.Unary{Op: ast.Neg, X: lit, Deps: ast.NewSet()}, err
			}
			return &ast.Number{Text: n.Text, Value: n.Value, Deps: ast.NewSet()}, err
		case *ast.Variable:
			return &ast.Variable{Name: n.Name, Deps: ast.NewSet(n.Name)}, err
		case *ast.Constant:
			return &ast.Constant{Name: n.Name, Deps: ast.NewSet()}, err
		}
		return n, err
	})
	return n
}
