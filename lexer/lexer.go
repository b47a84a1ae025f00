package lexer

import (
	"errors"
	"regexp"
	"strconv"
	"unicode/utf8"

	"github.com/takoeight0821/symdiff/token"
	"github.com/takoeight0821/symdiff/utils"
)

// Lex splits source into tokens. Scanning stops at the first malformed
// character or number.
func Lex(source string) ([]token.Token, error) {
	lexer := lexer{
		source:  source,
		tokens:  []token.Token{},
		start:   0,
		current: 0,
	}

	for !lexer.isAtEnd() {
		if err := lexer.scanToken(); err != nil {
			return nil, err
		}
	}

	return lexer.tokens, nil
}

type lexer struct {
	source string
	tokens []token.Token

	start   int // start of current lexeme
	current int // current position in source
}

func (l lexer) isAtEnd() bool {
	return l.current >= len(l.source)
}

func (l lexer) peek() rune {
	if l.isAtEnd() {
		return '\x00'
	}
	runeValue, _ := utf8.DecodeRuneInString(l.source[l.current:])

	return runeValue
}

func (l lexer) previous() rune {
	if l.current == 0 {
		return '\x00'
	}
	runeValue, _ := utf8.DecodeLastRuneInString(l.source[:l.current])

	return runeValue
}

func (l *lexer) advance() rune {
	runeValue, width := utf8.DecodeRuneInString(l.source[l.current:])
	l.current += width

	return runeValue
}

func (l *lexer) addToken(kind token.Kind, value float64) {
	text := l.source[l.start:l.current]
	l.tokens = append(l.tokens, token.Token{Kind: kind, Lexeme: text, Pos: l.start, Value: value})
}

// LexError reports an unrecognized character or a malformed number literal.
type LexError struct {
	Pos  int
	Text string
	Msg  string
}

func (e LexError) Error() string {
	return utils.MsgAt(e.Pos, e.Text, e.Msg)
}

func (l *lexer) errorf(msg string) error {
	return LexError{Pos: l.start, Text: l.source[l.start:l.current], Msg: msg}
}

func (l *lexer) scanToken() error {
	l.start = l.current
	char := l.advance()
	switch char {
	case ' ', '\r', '\t', '\n':
		// whitespace only separates runs
		return nil
	default:
		if k, ok := getReservedSymbol(char); ok {
			l.addToken(k, 0)

			return nil
		}
		if isDigit(char) || char == '.' {
			return l.number()
		}
		if isAlpha(char) {
			return l.identifier()
		}
	}

	return l.errorf("unexpected character")
}

func isDigit(c rune) bool {
	return c >= '0' && c <= '9'
}

// numberPattern is the only accepted shape of a number literal.
var numberPattern = regexp.MustCompile(`^\d+(\.\d+)?(e-?\d+)?$`)

// number scans a run of digits, dots and exponent markers. A '-' stays in
// the run only right after an 'e'; anywhere else it is the minus operator.
func (l *lexer) number() error {
	for {
		c := l.peek()
		if isDigit(c) || c == '.' || c == 'e' || (c == '-' && l.previous() == 'e') {
			l.advance()
			continue
		}
		break
	}

	text := l.source[l.start:l.current]
	if !numberPattern.MatchString(text) {
		return l.errorf("invalid number")
	}

	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return l.errorf("number out of range")
		}
		return l.errorf("invalid number")
	}
	l.addToken(token.NUMBER, value)

	return nil
}

func isAlpha(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// identifier scans a run of letters. Digits end the run, so "y20" lexes as
// the variable y followed by the number 20.
func (l *lexer) identifier() error {
	for isAlpha(l.peek()) {
		l.advance()
	}

	value := l.source[l.start:l.current]

	switch {
	case isKeyword(value):
		k, _ := getKeyword(value)
		l.addToken(k, 0)
	case isConstant(value):
		l.addToken(token.CONSTANT, 0)
	default:
		l.addToken(token.VARIABLE, 0)
	}

	return nil
}

func getKeyword(str string) (token.Kind, bool) {
	keywords := map[string]token.Kind{
		"sin":    token.SIN,
		"cos":    token.COS,
		"tan":    token.TAN,
		"ln":     token.LN,
		"sqrt":   token.SQRT,
		"arcsin": token.ARCSIN,
		"arccos": token.ARCCOS,
		"arctan": token.ARCTAN,
	}

	if k, ok := keywords[str]; ok {
		return k, true
	}

	return token.VARIABLE, false
}

func isKeyword(str string) bool {
	_, ok := getKeyword(str)
	return ok
}

func isConstant(str string) bool {
	return str == "pi" || str == "e"
}

func getReservedSymbol(char rune) (token.Kind, bool) {
	reservedSymbols := map[rune]token.Kind{
		'+': token.PLUS,
		'-': token.MINUS,
		'*': token.STAR,
		'/': token.SLASH,
		'^': token.CARET,
		'(': token.LEFTPAREN,
		')': token.RIGHTPAREN,
	}
	if k, ok := reservedSymbols[char]; ok {
		return k, true
	}

	return token.EOF, false
}
