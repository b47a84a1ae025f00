package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/takoeight0821/symdiff/config"
	"github.com/takoeight0821/symdiff/derivative"
)

const replHelp = `EXPR            print the derivative of EXPR
:var NAME       differentiate with respect to NAME
:simplify EXPR  print the canonical form of EXPR
:eval EXPR      evaluate EXPR with the current bindings
:let NAME=VALUE bind NAME for :eval
:help           show this message
:quit           leave the prompt`

// session is the state of one interactive prompt.
type session struct {
	variable string
	bindings []string
}

var errQuit = errors.New("quit")

func RunPrompt(out io.Writer) error {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	history := config.HistoryPath()
	defer func() {
		if cfg.History {
			saveHistory(line, history)
		}
		line.Close()
	}()

	if cfg.History {
		if f, err := os.Open(history); err == nil {
			defer f.Close()
			if _, err := line.ReadHistory(f); err != nil {
				slog.Warn("failed to read history", "path", history, "err", err)
			}
		}
	}

	s := &session{variable: cfg.Variable}
	for {
		input, err := line.Prompt("d/d" + s.variable + "> ")
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			return nil
		}
		if err != nil {
			return err
		}
		if strings.TrimSpace(input) == "" {
			continue
		}
		line.AppendHistory(input)

		if err := s.handle(out, input); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			printError(out, err)
		}
	}
}

func saveHistory(line *liner.State, history string) {
	if err := os.MkdirAll(filepath.Dir(history), os.ModePerm); err != nil {
		slog.Warn("failed to create history directory", "err", err)
		return
	}
	f, err := os.Create(history)
	if err != nil {
		slog.Warn("failed to save history", "path", history, "err", err)
		return
	}
	defer f.Close()
	if _, err := line.WriteHistory(f); err != nil {
		slog.Warn("failed to save history", "path", history, "err", err)
	}
}

// handle runs one line of input.
func (s *session) handle(out io.Writer, input string) error {
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(input, ":") {
		d, err := Derive(input, s.variable)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, d)
		return nil
	}

	command, arg, _ := strings.Cut(input[1:], " ")
	arg = strings.TrimSpace(arg)
	switch command {
	case "quit", "q":
		return errQuit
	case "help", "h":
		fmt.Fprintln(out, replHelp)
	case "var":
		if err := derivative.CheckVariable(arg); err != nil {
			return err
		}
		s.variable = arg
	case "simplify", "s":
		n, err := Simplify(arg)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, n)
	case "let":
		if _, err := Evaluate("0", cfg.Precision, []string{arg}); err != nil {
			return err
		}
		s.bindings = append(s.bindings, arg)
	case "eval":
		v, err := Evaluate(arg, cfg.Precision, s.bindings)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, v)
	default:
		return fmt.Errorf("unknown command :%s (try :help)", command)
	}
	return nil
}

func printError(out io.Writer, err error) {
	if errs, ok := err.(interface{ Unwrap() []error }); ok {
		for _, err := range errs.Unwrap() {
			fmt.Fprintf(out, "Error: %v\n", err)
		}
		return
	}
	fmt.Fprintf(out, "Error: %v\n", err)
}
