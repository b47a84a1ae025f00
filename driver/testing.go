package driver

import (
	"github.com/google/go-cmp/cmp"
	"github.com/takoeight0821/symdiff/ast"
)

// reporter is the subset of testing.TB used by RunTest.
type reporter interface {
	Helper()
	Errorf(format string, args ...any)
}

// RunTest runs input through runner and compares show(result) with
// expected. A failing run is rendered as "error: " followed by the message.
func RunTest(runner *PassRunner, t reporter, label, input, expected string, show func(ast.Node) string) {
	t.Helper()

	var actual string
	node, err := runner.RunSource(input)
	if err != nil {
		actual = "error: " + err.Error()
	} else {
		actual = show(node)
	}

	if diff := cmp.Diff(expected, actual); diff != "" {
		t.Errorf("%s: %s mismatch (-want +got):\n%s", label, input, diff)
	}
}
