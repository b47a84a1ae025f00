package token

import (
	"fmt"
	"strconv"
)

type Kind int

const (
	EOF Kind = iota

	// Single-character tokens.
	PLUS
	MINUS
	STAR
	SLASH
	CARET
	LEFTPAREN
	RIGHTPAREN

	// Literals and identifiers.
	VARIABLE
	CONSTANT
	NUMBER

	// Function keywords.
	SIN
	COS
	TAN
	LN
	SQRT
	ARCSIN
	ARCCOS
	ARCTAN
)

var kindNames = [...]string{
	EOF:        "EOF",
	PLUS:       "+",
	MINUS:      "-",
	STAR:       "*",
	SLASH:      "/",
	CARET:      "^",
	LEFTPAREN:  "(",
	RIGHTPAREN: ")",
	VARIABLE:   "variable",
	CONSTANT:   "constant",
	NUMBER:     "number",
	SIN:        "sin",
	COS:        "cos",
	TAN:        "tan",
	LN:         "ln",
	SQRT:       "sqrt",
	ARCSIN:     "arcsin",
	ARCCOS:     "arccos",
	ARCTAN:     "arctan",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindNames[k]
}

// IsFunction reports whether k is one of the function keywords.
func (k Kind) IsFunction() bool {
	return k >= SIN && k <= ARCTAN
}

// IsValue reports whether a token of kind k produces a value on its own.
func (k Kind) IsValue() bool {
	return k == VARIABLE || k == CONSTANT || k == NUMBER
}

type Token struct {
	Kind   Kind
	Lexeme string
	Pos    int     // byte offset of the lexeme in the source
	Value  float64 // parsed value of a NUMBER
}

func (t Token) Pretty() string {
	if t.Kind == NUMBER {
		return fmt.Sprintf("number(%s)", strconv.FormatFloat(t.Value, 'g', -1, 64))
	}
	if t.Kind == VARIABLE || t.Kind == CONSTANT {
		return fmt.Sprintf("%v(%s)", t.Kind, t.Lexeme)
	}
	return t.Lexeme
}

func (t Token) String() string {
	return fmt.Sprintf("{%v, %q, %d}", t.Kind, t.Lexeme, t.Pos)
}
