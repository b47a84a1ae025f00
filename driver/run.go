package driver

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/takoeight0821/symdiff/ast"
	"github.com/takoeight0821/symdiff/derivative"
	"github.com/takoeight0821/symdiff/lexer"
	"github.com/takoeight0821/symdiff/normalize"
	"github.com/takoeight0821/symdiff/parser"
	"github.com/takoeight0821/symdiff/token"
)

type Pass interface {
	Init(ast.Node) error
	Run(ast.Node) (ast.Node, error)
}

type PassRunner struct {
	passes []Pass
	logger *slog.Logger
}

func NewPassRunner() *PassRunner {
	return &PassRunner{logger: slog.Default()}
}

// NewSimplifier returns a runner that normalizes the parsed expression.
func NewSimplifier() *PassRunner {
	r := NewPassRunner()
	r.AddPass(normalize.Normalizer{})
	return r
}

// NewDifferentiator returns a runner computing the canonical derivative
// with respect to variable.
func NewDifferentiator(variable string) *PassRunner {
	r := NewSimplifier()
	r.AddPass(derivative.Deriver{Variable: variable})
	r.AddPass(normalize.Normalizer{})
	return r
}

// SetLogger replaces the logger used to trace passes.
func (r *PassRunner) SetLogger(logger *slog.Logger) {
	r.logger = logger
}

// AddPass adds a pass to the end of the pass list.
func (r *PassRunner) AddPass(pass Pass) {
	r.passes = append(r.passes, pass)
}

// Run executes passes in order.
// If an error occurs, it stops the execution and returns the current tree.
func (r *PassRunner) Run(node ast.Node) (ast.Node, error) {
	for _, pass := range r.passes {
		name := passName(pass)
		err := pass.Init(node)
		if err != nil {
			r.logger.Debug("pass init failed", slog.String("pass", name), slog.Any("error", err))
			return node, fmt.Errorf("init: %w", err)
		}
		out, err := pass.Run(node)
		if err != nil {
			r.logger.Debug("pass failed", slog.String("pass", name), slog.Any("error", err))
			return node, fmt.Errorf("run: %w", err)
		}
		node = out
		r.logger.Debug("pass done", slog.String("pass", name), slog.String("tree", node.String()))
	}

	return node, nil
}

// RunSource parses the source code and executes passes in order.
func (r *PassRunner) RunSource(source string) (ast.Node, error) {
	tokens, err := lexer.Lex(source)
	if err != nil {
		return nil, fmt.Errorf("lex: %w", err)
	}
	if r.logger.Enabled(context.Background(), slog.LevelDebug) {
		r.logger.Debug("lexed", slog.String("source", source), slog.String("tokens", prettyTokens(tokens)))
	}

	node, err := parser.NewParser(tokens).ParseExpr()
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	r.logger.Debug("parsed", slog.String("source", source), slog.String("tree", node.String()))

	return r.Run(node)
}

// prettyTokens renders tokens as [number(1), +, variable(x)].
func prettyTokens(tokens []token.Token) string {
	pretty := make([]string, len(tokens))
	for i, t := range tokens {
		pretty[i] = t.Pretty()
	}
	return "[" + strings.Join(pretty, ", ") + "]"
}

func passName(pass Pass) string {
	if named, ok := pass.(interface{ Name() string }); ok {
		return named.Name()
	}
	return fmt.Sprintf("%T", pass)
}
