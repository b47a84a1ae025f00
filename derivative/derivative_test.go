package derivative_test

import (
	"errors"
	"math"
	"testing"

	"github.com/takoeight0821/symdiff/ast"
	"github.com/takoeight0821/symdiff/derivative"
	"github.com/takoeight0821/symdiff/driver"
	"github.com/takoeight0821/symdiff/eval"
	"github.com/takoeight0821/symdiff/lexer"
	"github.com/takoeight0821/symdiff/normalize"
	"github.com/takoeight0821/symdiff/parser"
	"github.com/takoeight0821/symdiff/printer"
	"github.com/takoeight0821/symdiff/utils"
)

func TestDeriveFromTestData(t *testing.T) {
	t.Parallel()
	testcases, err := utils.ReadTestDataFile("../testdata/testcase.yaml")
	if err != nil {
		t.Fatal(err)
	}
	for _, testcase := range testcases {
		expected, ok := testcase.Expected["derive"]
		if !ok {
			continue
		}
		variable := testcase.Variable
		if variable == "" {
			variable = "x"
		}
		driver.RunTest(driver.NewDifferentiator(variable), t, testcase.Label, testcase.Input, expected, printer.Print)
	}
}

func canonical(t *testing.T, source string) ast.Node {
	t.Helper()
	tokens, err := lexer.Lex(source)
	if err != nil {
		t.Fatalf("Lex(%q): %v", source, err)
	}
	node, err := parser.NewParser(tokens).ParseExpr()
	if err != nil {
		t.Fatalf("Parse(%q): %v", source, err)
	}
	node, err = normalize.Normalize(node)
	if err != nil {
		t.Fatalf("Normalize(%q): %v", source, err)
	}
	return node
}

func derive(t *testing.T, source, variable string) ast.Node {
	t.Helper()
	d, err := derivative.Derive(canonical(t, source), variable)
	if err != nil {
		t.Fatalf("Derive(%q): %v", source, err)
	}
	d, err = normalize.Normalize(d)
	if err != nil {
		t.Fatalf("Normalize(d/d%s %q): %v", variable, source, err)
	}
	return d
}

func TestExamples(t *testing.T) {
	t.Parallel()

	cases := []struct {
		input string
		want  string
	}{
		{"x^2", "2*x"},
		{"e^(2*x)", "2*e^(2*x)"},
		{"x", "1"},
		{"y", "0"},
		{"pi^2", "0"},
		{"3*x+2", "3"},
		{"x^3", "3*x^2"},
		{"x^0.5", "0.5*x^(-0.5)"},
		{"-x", "-1"},
		{"cos(x)", "-sin(x)"},
		{"cos(2*x)", "-(2*sin(2*x))"},
		{"x*y", "y"},
		{"ln(x)", "1/x"},
	}

	for _, c := range cases {
		if got := printer.Print(derive(t, c.input, "x")); got != c.want {
			t.Errorf("d/dx %s = %s, want %s", c.input, got, c.want)
		}
	}
}

func TestUnsupported(t *testing.T) {
	t.Parallel()

	for _, source := range []string{"tan(x)", "arcsin(x)", "arccos(2*x)", "arctan(x^2)", "x^x", "2^x", "sin(x)^(x+1)"} {
		_, err := derivative.Derive(canonical(t, source), "x")
		var derivErr derivative.DerivativeError
		if !errors.As(err, &derivErr) {
			t.Errorf("%s: got %v, want DerivativeError", source, err)
		}
	}

	// independent subtrees are never inspected
	for _, source := range []string{"tan(y)", "y^y", "arcsin(pi)"} {
		d := derive(t, source, "x")
		if got := printer.Print(d); got != "0" {
			t.Errorf("d/dx %s = %s, want 0", source, got)
		}
	}
}

func TestCheckVariable(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"x", "y", "theta", "X"} {
		if err := derivative.CheckVariable(name); err != nil {
			t.Errorf("%q: unexpected error %v", name, err)
		}
	}
	for _, name := range []string{"", "e", "pi", "sin", "x1", "x y", "1", "x+y"} {
		if err := derivative.CheckVariable(name); !errors.Is(err, derivative.ErrInvalidVariable) {
			t.Errorf("%q: got %v, want ErrInvalidVariable", name, err)
		}
	}

	runner := driver.NewDifferentiator("pi")
	if _, err := runner.RunSource("x"); !errors.Is(err, derivative.ErrInvalidVariable) {
		t.Errorf("got %v, want ErrInvalidVariable", err)
	}
}

func value(t *testing.T, n ast.Node, x float64) float64 {
	t.Helper()
	ev := eval.NewEvaluator(128)
	ev.BindFloat("x", x)
	v, err := ev.Eval(n)
	if err != nil {
		t.Fatalf("Eval(%v) at x=%g: %v", n, x, err)
	}
	f, _ := v.Float64()
	return f
}

// The symbolic derivative must agree with a central difference quotient.
func TestAgainstFiniteDifferences(t *testing.T) {
	t.Parallel()

	sources := []string{
		"x^2",
		"(x+8)^5",
		"e^(x^3)",
		"e^(3*x) - sin(pi) * x^2",
		"e^(sin(x)) - ln(cos(x))",
		"x*sin(x)",
		"x/(x+1)",
		"sqrt(x)",
		"ln(sin(x))",
		"sin ln(x)",
		"-cos(x)*x^3",
		"sqrt(x^2+1)/ln(x+2)",
		"x^0.5 - x^-2",
		"(x^2+1)^-1",
		"e^(-x)*cos(2*x)",
		"pi*x^pi",
	}
	points := []float64{0.3, 0.7, 1.1}
	const h = 1e-6

	for _, source := range sources {
		f := canonical(t, source)
		d := derive(t, source, "x")
		for _, x := range points {
			want := (value(t, f, x+h) - value(t, f, x-h)) / (2 * h)
			got := value(t, d, x)
			if math.Abs(got-want) > 1e-5*math.Max(1, math.Abs(want)) {
				t.Errorf("d/dx %s at %g: %s gives %g, difference quotient %g", source, x, printer.Print(d), got, want)
			}
		}
	}
}

func TestDeriverPass(t *testing.T) {
	t.Parallel()

	runner := driver.NewPassRunner()
	runner.AddPass(normalize.Normalizer{})
	runner.AddPass(derivative.Deriver{Variable: "t"})
	runner.AddPass(normalize.Normalizer{})

	node, err := runner.RunSource("t^2*x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := printer.Print(node); got != "2*t*x" {
		t.Errorf("got %s, want 2*t*x", got)
	}
}

func TestNoSignedZeroLiterals(t *testing.T) {
	t.Parallel()

	for _, source := range []string{"(1-1)*-3*x + x^2", "x*(0*-1) - x", "-(x-x)*x^3", "sqrt(0*-2)*x"} {
		d := derive(t, source, "x")
		for _, n := range ast.Universe(d) {
			if lit, ok := n.(*ast.Number); ok && (math.Signbit(lit.Value) || lit.Text[0] == '-') {
				t.Errorf("%s: literal %s in derivative %v", source, lit.Text, d)
			}
		}
	}
}
