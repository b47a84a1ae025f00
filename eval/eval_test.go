package eval_test

import (
	"errors"
	"math"
	"math/big"
	"testing"

	"github.com/takoeight0821/symdiff/ast"
	"github.com/takoeight0821/symdiff/driver"
	"github.com/takoeight0821/symdiff/eval"
)

func simplify(t *testing.T, source string) ast.Node {
	t.Helper()
	node, err := driver.NewSimplifier().RunSource(source)
	if err != nil {
		t.Fatalf("%s: %v", source, err)
	}
	return node
}

func TestEval(t *testing.T) {
	t.Parallel()

	testcases := []struct {
		input    string
		x        float64
		expected float64
	}{
		{"1+2*3", 0, 7},
		{"x^2", 3, 9},
		{"x/4", 2, 0.5},
		{"-x", 2, -2},
		{"(-2)^3", 0, -8},
		{"x^3", -2, -8},
		{"x^2", -3, 9},
		{"0^2", 0, 0},
		{"x^0", 0, 1},
		{"2^0.5", 0, math.Sqrt2},
		{"sqrt(x)", 2, math.Sqrt2},
		{"e", 0, math.E},
		{"pi", 0, math.Pi},
		{"e^x", 1, math.E},
		{"ln(e)", 0, 1},
		{"ln(x)", 1, 0},
		{"sin(pi/2)", 0, 1},
		{"cos(x)", 0, 1},
		{"tan(x)", 0, 0},
		{"arcsin(1)", 0, math.Pi / 2},
		{"arccos(x)", 1, 0},
		{"arctan(1)", 0, math.Pi / 4},
		{"3/2", 0, 1.5},
	}

	for _, testcase := range testcases {
		ev := eval.NewEvaluator(0)
		ev.BindFloat("x", testcase.x)
		v, err := ev.Eval(simplify(t, testcase.input))
		if err != nil {
			t.Errorf("%s: unexpected error: %v", testcase.input, err)
			continue
		}
		got, _ := v.Float64()
		if math.Abs(got-testcase.expected) > 1e-12 {
			t.Errorf("%s at x=%g: got %g, want %g", testcase.input, testcase.x, got, testcase.expected)
		}
	}
}

func TestEvalError(t *testing.T) {
	t.Parallel()

	testcases := []struct {
		input string
		x     float64
	}{
		{"y", 0},
		{"1/x", 0},
		{"ln(x)", 0},
		{"ln(-x)", 1},
		{"sqrt(-x)", 1},
		{"x^0.5", -1},
		{"0^-1", 0},
		{"x^-1", 0},
		{"arcsin(x)", 2},
		{"arccos(-x)", 2},
	}

	for _, testcase := range testcases {
		ev := eval.NewEvaluator(0)
		ev.BindFloat("x", testcase.x)
		_, err := ev.Eval(simplify(t, testcase.input))
		var evalErr eval.Error
		if !errors.As(err, &evalErr) {
			t.Errorf("%s at x=%g: got %v, want eval.Error", testcase.input, testcase.x, err)
		}
	}
}

func TestParseBinding(t *testing.T) {
	t.Parallel()

	ev := eval.NewEvaluator(128)
	for _, binding := range []string{"x=1.5", " y = -2 ", "z=1e3"} {
		if err := ev.ParseBinding(binding); err != nil {
			t.Fatalf("%q: unexpected error: %v", binding, err)
		}
	}
	if got, want := ev.String(), "{ x:1.5 y:-2 z:1000 }"; got != want {
		t.Errorf("got %s, want %s", got, want)
	}

	v, err := ev.Eval(simplify(t, "x*y+z"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, _ := v.Float64(); got != 997 {
		t.Errorf("got %g, want 997", got)
	}

	for _, binding := range []string{"x", "=1", "x=abc"} {
		if err := ev.ParseBinding(binding); err == nil {
			t.Errorf("%q: expected an error", binding)
		}
	}
}

func TestPrecision(t *testing.T) {
	t.Parallel()

	if got := eval.NewEvaluator(0).Precision(); got != eval.DefaultPrecision {
		t.Errorf("default precision %d, want %d", got, eval.DefaultPrecision)
	}

	ev := eval.NewEvaluator(256)
	if ev.Precision() != 256 {
		t.Errorf("precision %d, want 256", ev.Precision())
	}
	v, err := ev.Eval(simplify(t, "pi"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Prec() != 256 {
		t.Errorf("precision %d, want 256", v.Prec())
	}
	if got, want := v.Text('f', 40), "3.1415926535897932384626433832795028841972"; got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestIntegerPowerIsExact(t *testing.T) {
	t.Parallel()

	testcases := []struct {
		input    string
		x        float64
		expected string
	}{
		{"x^3", 2, "8"},
		{"x^2*0.5", 3, "4.5"},
		{"x^3", -1.5, "-3.375"},
		{"x^-2", 4, "0.0625"},
	}

	for _, testcase := range testcases {
		ev := eval.NewEvaluator(0)
		ev.BindFloat("x", testcase.x)
		v, err := ev.Eval(simplify(t, testcase.input))
		if err != nil {
			t.Errorf("%s: unexpected error: %v", testcase.input, err)
			continue
		}
		if got := v.Text('g', -1); got != testcase.expected {
			t.Errorf("%s at x=%g: got %s, want %s", testcase.input, testcase.x, got, testcase.expected)
		}
	}
}

func TestBindCopiesValue(t *testing.T) {
	t.Parallel()

	ev := eval.NewEvaluator(128)
	third := new(big.Float).SetPrec(128).Quo(big.NewFloat(1), big.NewFloat(3))
	ev.Bind("x", third)
	third.SetInt64(7)

	v, err := ev.Eval(simplify(t, "3*x"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, _ := v.Float64(); math.Abs(got-1) > 1e-30 {
		t.Errorf("got %g, want 1", got)
	}
	if v.Prec() != 128 {
		t.Errorf("precision %d, want 128", v.Prec())
	}
}
