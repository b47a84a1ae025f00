package ast

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// AST

// Node is one of *Binary, *Unary, *Number, *Variable or *Constant.
// Nodes are never mutated after construction; rewrites build new nodes and
// share the unchanged subtrees.
type Node interface {
	fmt.Stringer
	// Depends returns the variable names occurring in the subtree.
	// It is only meaningful after normalization.
	Depends() Set
	// Plate applies the given function to each child node and returns a copy
	// of the receiver holding the results.
	// If f returns an error, f also must return the original argument n.
	// FYI: https://hackage.haskell.org/package/lens-5.2.3/docs/Control-Lens-Plated.html
	Plate(error, func(Node, error) (Node, error)) (Node, error)

	sealed()
}

type Op string

const (
	Add Op = "+"
	Sub Op = "-"
	Mul Op = "*"
	Div Op = "/"
	Pow Op = "^"

	Sin    Op = "sin"
	Cos    Op = "cos"
	Tan    Op = "tan"
	Ln     Op = "ln"
	Sqrt   Op = "sqrt"
	Arcsin Op = "arcsin"
	Arccos Op = "arccos"
	Arctan Op = "arctan"
	Exp    Op = "exp"
	Neg    Op = "neg"
)

func (o Op) String() string {
	return string(o)
}

// IsFunction reports whether o is printed in call form, name(u).
func (o Op) IsFunction() bool {
	switch o {
	case Sin, Cos, Tan, Ln, Sqrt, Arcsin, Arccos, Arctan:
		return true
	default:
		return false
	}
}

type Binary struct {
	Op    Op
	Left  Node
	Right Node
	Deps  Set
}

func NewBinary(op Op, left, right Node) *Binary {
	return &Binary{Op: op, Left: left, Right: right}
}

func (b Binary) String() string {
	return parenthesize(b.Op.String(), b.Left, b.Right).String()
}

func (b *Binary) Depends() Set {
	return b.Deps
}

func (b *Binary) Plate(err error, f func(Node, error) (Node, error)) (Node, error) {
	c := *b
	c.Left, err = f(b.Left, err)
	c.Right, err = f(b.Right, err)
	return &c, err
}

func (*Binary) sealed() {}

var _ Node = &Binary{}

type Unary struct {
	Op   Op
	X    Node
	Deps Set
}

func NewUnary(op Op, x Node) *Unary {
	return &Unary{Op: op, X: x}
}

func (u Unary) String() string {
	return parenthesize(u.Op.String(), u.X).String()
}

func (u *Unary) Depends() Set {
	return u.Deps
}

func (u *Unary) Plate(err error, f func(Node, error) (Node, error)) (Node, error) {
	c := *u
	c.X, err = f(u.X, err)
	return &c, err
}

func (*Unary) sealed() {}

var _ Node = &Unary{}

// Number is a numeric literal. Text is what the printer emits.
type Number struct {
	Text  string
	Value float64
	Deps  Set
}

// NewNumber builds a literal whose text re-lexes to v. Negative zero becomes 0.
func NewNumber(v float64) *Number {
	if v == 0 {
		v = 0
	}
	return &Number{Text: FormatNumber(v), Value: v}
}

func (n Number) String() string {
	return n.Text
}

func (n *Number) Depends() Set {
	return n.Deps
}

func (n *Number) Plate(err error, _ func(Node, error) (Node, error)) (Node, error) {
	return n, err
}

func (*Number) sealed() {}

var _ Node = &Number{}

type Variable struct {
	Name string
	Deps Set
}

func NewVariable(name string) *Variable {
	return &Variable{Name: name}
}

func (v Variable) String() string {
	return v.Name
}

func (v *Variable) Depends() Set {
	return v.Deps
}

func (v *Variable) Plate(err error, _ func(Node, error) (Node, error)) (Node, error) {
	return v, err
}

func (*Variable) sealed() {}

var _ Node = &Variable{}

// Constant is pi or e.
type Constant struct {
	Name string
	Deps Set
}

func NewConstant(name string) *Constant {
	return &Constant{Name: name}
}

func (c Constant) String() string {
	return c.Name
}

func (c *Constant) Depends() Set {
	return c.Deps
}

func (c *Constant) Plate(err error, _ func(Node, error) (Node, error)) (Node, error) {
	return c, err
}

func (*Constant) sealed() {}

var _ Node = &Constant{}

// FormatNumber renders v in the literal syntax accepted by the lexer.
// Negative values keep their sign; callers wrap them in neg before printing.
func FormatNumber(v float64) string {
	abs := math.Abs(v)
	if v == 0 || (abs >= 1e-6 && abs < 1e21) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	// 1e+300 is not a literal, 1e300 is.
	return strings.Replace(strconv.FormatFloat(v, 'e', -1, 64), "e+", "e", 1)
}

// Equal reports whether a and b are the same tree. Numbers compare by value and
// dependency sets are ignored.
func Equal(a, b Node) bool {
	switch a := a.(type) {
	case *Binary:
		b, ok := b.(*Binary)
		return ok && a.Op == b.Op && Equal(a.Left, b.Left) && Equal(a.Right, b.Right)
	case *Unary:
		b, ok := b.(*Unary)
		return ok && a.Op == b.Op && Equal(a.X, b.X)
	case *Number:
		b, ok := b.(*Number)
		return ok && a.Value == b.Value
	case *Variable:
		b, ok := b.(*Variable)
		return ok && a.Name == b.Name
	case *Constant:
		b, ok := b.(*Constant)
		return ok && a.Name == b.Name
	}
	return false
}

func parenthesize(head string, elems ...fmt.Stringer) fmt.Stringer {
	var b strings.Builder
	b.WriteString("(")
	elemsStr := concat(elems).String()
	if head != "" {
		b.WriteString(head)
	}
	if elemsStr != "" {
		if head != "" {
			b.WriteString(" ")
		}
		b.WriteString(elemsStr)
	}
	b.WriteString(")")
	return &b
}

// concat joins the string forms of elems with single spaces, skipping empty ones.
func concat[T fmt.Stringer](elems []T) fmt.Stringer {
	var b strings.Builder
	for i, elem := range elems {
		str := elem.String()
		if str == "" {
			continue
		}
		if i != 0 {
			b.WriteString(" ")
		}
		b.WriteString(str)
	}
	return &b
}

// Traverse the [Node] in depth-first order.
// f is called for each node, children before their parent.
// If f returns an error, f also must return the original argument n.
func Traverse(n Node, f func(Node, error) (Node, error)) (Node, error) {
	n, err := n.Plate(nil, func(n Node, err error) (Node, error) {
		return Traverse(n, f)
	})
	return f(n, err)
}

func Universe(n Node) []Node {
	var nodes []Node
	_, err := Traverse(n, func(n Node, _ error) (Node, error) {
		nodes = append(nodes, n)
		return n, nil
	})
	if err != nil {
		panic(fmt.Errorf("unexpected error: %w", err))
	}
	return nodes
}

// Set is a set of variable names.
type Set map[string]struct{}

func NewSet(names ...string) Set {
	s := make(Set, len(names))
	for _, name := range names {
		s[name] = struct{}{}
	}
	return s
}

func (s Set) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Union returns a fresh set holding the members of s and all others.
func (s Set) Union(others ...Set) Set {
	u := make(Set, len(s))
	for name := range s {
		u[name] = struct{}{}
	}
	for _, o := range others {
		for name := range o {
			u[name] = struct{}{}
		}
	}
	return u
}

// Sorted returns the members in lexical order.
func (s Set) Sorted() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s Set) String() string {
	return "{" + strings.Join(s.Sorted(), ", ") + "}"
}
