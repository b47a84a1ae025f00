package printer

import (
	"strings"

	"github.com/takoeight0821/symdiff/ast"
)

// Binding levels. Atoms never need parentheses.
const (
	precAtom    = 0 // numbers, variables, constants, function calls
	precSum     = 1 // + -
	precProduct = 2 // * / neg
	precPower   = 3 // ^ exp
)

func precedence(n ast.Node) int {
	switch n := n.(type) {
	case *ast.Binary:
		switch n.Op {
		case ast.Add, ast.Sub:
			return precSum
		case ast.Mul, ast.Div:
			return precProduct
		case ast.Pow:
			return precPower
		}
	case *ast.Unary:
		switch n.Op {
		case ast.Neg:
			return precProduct
		case ast.Exp:
			return precPower
		}
	}
	return precAtom
}

// Print renders n as infix text without spaces. Parsing the result gives
// back a tree equal to n.
func Print(n ast.Node) string {
	var p printer
	p.node(n)
	return p.String()
}

type printer struct {
	strings.Builder
}

func (p *printer) node(n ast.Node) {
	switch n := n.(type) {
	case *ast.Binary:
		prec := precedence(n)
		p.operand(n.Left, prec, false)
		p.WriteString(n.Op.String())
		p.operand(n.Right, prec, true)
	case *ast.Unary:
		switch {
		case n.Op == ast.Neg:
			p.WriteString("-")
			p.operand(n.X, precProduct, true)
		case n.Op == ast.Exp:
			p.WriteString("e^")
			p.operand(n.X, precPower, true)
		case n.Op.IsFunction():
			p.WriteString(n.Op.String())
			p.WriteString("(")
			p.node(n.X)
			p.WriteString(")")
		}
	case *ast.Number:
		p.WriteString(n.Text)
	case *ast.Variable:
		p.WriteString(n.Name)
	case *ast.Constant:
		p.WriteString(n.Name)
	}
}

// operand writes a child of an operator with the given precedence.
// Equal-precedence chains group to the left when parsed, so a right-hand
// child of the same level needs parentheses while a left-hand one does not.
func (p *printer) operand(child ast.Node, parent int, right bool) {
	prec := precedence(child)
	wrap := prec != precAtom && (prec < parent || (right && prec == parent))

	// A leading minus after * / + - is read back as a sign.
	if right && parent <= precProduct && isNeg(child) {
		wrap = false
	}

	if wrap {
		p.WriteString("(")
		p.node(child)
		p.WriteString(")")
		return
	}
	p.node(child)
}

func isNeg(n ast.Node) bool {
	u, ok := n.(*ast.Unary)
	return ok && u.Op == ast.Neg
}
