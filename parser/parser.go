package parser

import (
	"github.com/takoeight0821/symdiff/ast"
	"github.com/takoeight0821/symdiff/token"
	"github.com/takoeight0821/symdiff/utils"
)

// Parser builds a raw tree from a token sequence. Instead of descending
// through a grammar it works on a flat run of slots: parenthesized spans are
// resolved first, then function calls, then operators by family from the
// loosest to the tightest.
type Parser struct {
	tokens []token.Token
}

func NewParser(tokens []token.Token) *Parser {
	return &Parser{tokens}
}

// ParseExpr parses the whole token sequence as one expression.
// The result is a raw tree: dependency sets are empty and literals are not folded.
func (p *Parser) ParseExpr() (ast.Node, error) {
	slots := make([]slot, len(p.tokens))
	for i, t := range p.tokens {
		slots[i] = slot{tok: t}
	}

	node, err := parseRun(slots, endOfInput())
	if err != nil {
		return nil, err
	}

	return rewriteExp(node)
}

// slot is either a raw token or, once resolved, a subtree. tok keeps the
// token the subtree started from so errors can still point at it.
type slot struct {
	tok  token.Token
	node ast.Node
}

func (s slot) resolved() bool {
	return s.node != nil
}

// isValue reports whether the slot stands for an operand on its own.
func (s slot) isValue() bool {
	return s.resolved() || s.tok.Kind.IsValue()
}

func (s slot) is(kinds ...token.Kind) bool {
	if s.resolved() {
		return false
	}
	for _, k := range kinds {
		if s.tok.Kind == k {
			return true
		}
	}
	return false
}

func endOfInput() token.Token {
	return token.Token{Kind: token.EOF, Pos: -1}
}

// parseRun parses a run of slots. end is the token right after the run; it is
// where an empty run is reported.
func parseRun(slots []slot, end token.Token) (ast.Node, error) {
	slots, err := resolveParens(slots)
	if err != nil {
		return nil, err
	}

	slots, err = bindFunctions(slots)
	if err != nil {
		return nil, err
	}

	return reduce(slots, end)
}

// resolveParens replaces every top-level balanced span with a single resolved slot.
func resolveParens(slots []slot) ([]slot, error) {
	out := make([]slot, 0, len(slots))
	for i := 0; i < len(slots); i++ {
		s := slots[i]
		switch {
		case s.is(token.RIGHTPAREN):
			return nil, parseError(s.tok, "unmatched parenthesis")
		case s.is(token.LEFTPAREN):
			j := matchingParen(slots, i)
			if j < 0 {
				return nil, parseError(s.tok, "unclosed parenthesis")
			}
			inner, err := parseRun(slots[i+1:j], slots[j].tok)
			if err != nil {
				return nil, err
			}
			out = append(out, slot{tok: s.tok, node: inner})
			i = j
		default:
			out = append(out, s)
		}
	}

	return out, nil
}

// matchingParen returns the index of the ')' closing the '(' at open, or -1.
func matchingParen(slots []slot, open int) int {
	depth := 0
	for j := open; j < len(slots); j++ {
		switch {
		case slots[j].is(token.LEFTPAREN):
			depth++
		case slots[j].is(token.RIGHTPAREN):
			depth--
			if depth == 0 {
				return j
			}
		}
	}
	return -1
}

var functionOps = map[token.Kind]ast.Op{
	token.SIN:    ast.Sin,
	token.COS:    ast.Cos,
	token.TAN:    ast.Tan,
	token.LN:     ast.Ln,
	token.SQRT:   ast.Sqrt,
	token.ARCSIN: ast.Arcsin,
	token.ARCCOS: ast.Arccos,
	token.ARCTAN: ast.Arctan,
}

// bindFunctions lets each function keyword take the slot right after it.
// Keywords are bound right to left so that sin cos x is sin(cos(x)).
func bindFunctions(slots []slot) ([]slot, error) {
	for i := len(slots) - 1; i >= 0; i-- {
		s := slots[i]
		if s.resolved() || !s.tok.Kind.IsFunction() {
			continue
		}
		if i+1 >= len(slots) {
			return nil, parseError(s.tok, "missing function argument")
		}
		arg, err := operand(slots[i+1])
		if err != nil {
			return nil, err
		}
		slots[i] = slot{tok: s.tok, node: ast.NewUnary(functionOps[s.tok.Kind], arg)}
		slots = append(slots[:i+1], slots[i+2:]...)
	}

	return slots, nil
}

// operand converts a single slot to a node.
func operand(s slot) (ast.Node, error) {
	if s.resolved() {
		return s.node, nil
	}

	switch s.tok.Kind {
	case token.NUMBER:
		return &ast.Number{Text: s.tok.Lexeme, Value: s.tok.Value}, nil
	case token.VARIABLE:
		return ast.NewVariable(s.tok.Lexeme), nil
	case token.CONSTANT:
		return ast.NewConstant(s.tok.Lexeme), nil
	default:
		return nil, parseError(s.tok, "unexpected token")
	}
}

var binaryOps = map[token.Kind]ast.Op{
	token.PLUS:  ast.Add,
	token.MINUS: ast.Sub,
	token.STAR:  ast.Mul,
	token.SLASH: ast.Div,
	token.CARET: ast.Pow,
}

// reduce turns a paren- and function-free run into a tree.
func reduce(slots []slot, end token.Token) (ast.Node, error) {
	switch len(slots) {
	case 0:
		return nil, parseError(end, "expected expression")
	case 1:
		return operand(slots[0])
	}

	if i := splitIndex(slots, token.PLUS, token.MINUS); i > 0 {
		return binary(slots, i, end)
	}
	if i := splitIndex(slots, token.STAR, token.SLASH); i > 0 {
		return binary(slots, i, end)
	}
	if slots[0].is(token.MINUS) {
		x, err := reduce(slots[1:], end)
		if err != nil {
			return nil, err
		}
		return ast.NewUnary(ast.Neg, x), nil
	}
	if i := splitIndex(slots, token.CARET); i > 0 {
		return binary(slots, i, end)
	}

	// Nothing joins the slots: report the first one that cannot start or
	// continue an expression.
	for i, s := range slots {
		if i > 0 && s.isValue() && slots[i-1].isValue() {
			return nil, parseError(s.tok, "missing operator")
		}
	}
	return nil, parseError(slots[0].tok, "unexpected token")
}

// splitIndex finds the rightmost operator of the family. The scan stops
// before index 0 so a leading operator is never split on, and an operator
// that follows another operator is treated as a sign, not a split point.
func splitIndex(slots []slot, kinds ...token.Kind) int {
	for i := len(slots) - 1; i >= 1; i-- {
		if slots[i].is(kinds...) && slots[i-1].isValue() {
			return i
		}
	}
	return -1
}

func binary(slots []slot, i int, end token.Token) (ast.Node, error) {
	left, err := reduce(slots[:i], slots[i].tok)
	if err != nil {
		return nil, err
	}
	right, err := reduce(slots[i+1:], end)
	if err != nil {
		return nil, err
	}
	return ast.NewBinary(binaryOps[slots[i].tok.Kind], left, right), nil
}

// rewriteExp turns every e^u into exp(u), children first.
func rewriteExp(n ast.Node) (ast.Node, error) {
	return ast.Traverse(n, func(n ast.Node, err error) (ast.Node, error) {
		b, ok := n.(*ast.Binary)
		if !ok || b.Op != ast.Pow {
			return n, err
		}
		if c, ok := b.Left.(*ast.Constant); ok && c.Name == "e" {
			return ast.NewUnary(ast.Exp, b.Right), err
		}
		return n, err
	})
}

// ParseError reports a token the parser could not place. A Where of kind
// EOF means the input ended too early.
type ParseError struct {
	Where token.Token
	Msg   string
}

func (e ParseError) Error() string {
	if e.Where.Kind == token.EOF {
		return utils.MsgAt(-1, "", e.Msg)
	}
	return utils.MsgAt(e.Where.Pos, e.Where.Lexeme, e.Msg)
}

func parseError(t token.Token, msg string) error {
	return ParseError{Where: t, Msg: msg}
}
