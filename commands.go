package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/takoeight0821/symdiff/driver"
	"github.com/takoeight0821/symdiff/eval"
	"github.com/takoeight0821/symdiff/printer"
)

var (
	inputPath string
	bindings  []string
	precision uint
)

var deriveCmd = &cobra.Command{
	Use:   "derive [EXPR...]",
	Short: "Print the derivative of each expression",
	Example: `  symdiff derive 'x^2' 'e^(2*x)'
  symdiff derive --var t 't*sin(t)'
  symdiff derive -i exprs.txt`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return forEachSource(cmd.OutOrStdout(), args, func(source string) (string, error) {
			return Derive(source, cfg.Variable)
		})
	},
}

var simplifyCmd = &cobra.Command{
	Use:   "simplify [EXPR...]",
	Short: "Print the canonical form of each expression",
	RunE: func(cmd *cobra.Command, args []string) error {
		return forEachSource(cmd.OutOrStdout(), args, Simplify)
	},
}

var evalCmd = &cobra.Command{
	Use:     "eval EXPR",
	Short:   "Evaluate an expression numerically",
	Example: `  symdiff eval --at x=0.5 'sin(x)^2 + cos(x)^2'`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prec := cfg.Precision
		if cmd.Flags().Changed("precision") {
			prec = precision
		}
		out, err := Evaluate(args[0], prec, bindings)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}

// demoSources are differentiated by the demo command.
var demoSources = []string{
	"x^2",
	"(x+8)^5",
	"e^(x^3)",
	"e^(3*x) - sin(pi) * x^2",
	"e^(sin(x)) - ln(cos(x))",
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Differentiate a few sample expressions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return RunDemo(cmd.OutOrStdout())
	},
}

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start the interactive prompt",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return RunPrompt(cmd.OutOrStdout())
	},
}

func init() {
	for _, cmd := range []*cobra.Command{deriveCmd, simplifyCmd} {
		cmd.Flags().StringVarP(&inputPath, "input", "i", "", "read expressions from a file, one per line")
	}
	evalCmd.Flags().StringArrayVar(&bindings, "at", nil, "variable binding name=value (repeatable)")
	evalCmd.Flags().UintVarP(&precision, "precision", "p", eval.DefaultPrecision, "precision in bits")

	rootCmd.AddCommand(deriveCmd, simplifyCmd, evalCmd, demoCmd, replCmd)
}

// Derive returns the printed canonical derivative of source.
func Derive(source, variable string) (string, error) {
	node, err := driver.NewDifferentiator(variable).RunSource(source)
	if err != nil {
		return "", err
	}
	return printer.Print(node), nil
}

// Simplify returns the printed canonical form of source.
func Simplify(source string) (string, error) {
	node, err := driver.NewSimplifier().RunSource(source)
	if err != nil {
		return "", err
	}
	return printer.Print(node), nil
}

// Evaluate computes source at the given name=value bindings.
func Evaluate(source string, prec uint, bindings []string) (string, error) {
	ev := eval.NewEvaluator(prec)
	for _, b := range bindings {
		if err := ev.ParseBinding(b); err != nil {
			return "", err
		}
	}

	node, err := driver.NewSimplifier().RunSource(source)
	if err != nil {
		return "", err
	}
	slog.Debug("evaluating",
		slog.String("source", source),
		slog.String("bindings", ev.String()),
		slog.Uint64("precision", uint64(ev.Precision())))
	v, err := ev.Eval(node)
	if err != nil {
		return "", err
	}
	return v.Text('g', -1), nil
}

func RunDemo(w io.Writer) error {
	for _, source := range demoSources {
		d, err := Derive(source, "x")
		if err != nil {
			return fmt.Errorf("%s: %w", source, err)
		}
		fmt.Fprintf(w, "Derivative of %s is %s\n", source, d)
	}
	return nil
}

// forEachSource applies f to every argument, or to every non-blank line of
// the --input file, and prints the results. The first error stops it.
func forEachSource(w io.Writer, args []string, f func(string) (string, error)) error {
	sources := args
	if inputPath != "" {
		lines, err := readLines(inputPath)
		if err != nil {
			return err
		}
		sources = append(sources, lines...)
	}
	if len(sources) == 0 {
		return fmt.Errorf("no expression given")
	}

	for _, source := range sources {
		out, err := f(source)
		if err != nil {
			return fmt.Errorf("%s: %w", source, err)
		}
		fmt.Fprintln(w, out)
	}
	return nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}
