package codegen

import (
	"math"
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"github.com/igfraga/go-conflake/internal/lexer"
	"github.com/igfraga/go-conflake/internal/parser"
	"github.com/igfraga/go-conflake/internal/semantic"
)

// evalSource runs the whole pipeline on input.
func evalSource(t *testing.T, input string, opts ...Option) (Result, error) {
	t.Helper()
	tokens, err := lexer.Lex(input)
	if err != nil {
		t.Fatalf("lexer error: %v", err)
	}
	top, err := parser.New(tokens).Parse()
	if err != nil {
		t.Fatalf("parser error: %v", err)
	}
	sem, err := semantic.Analyze(top)
	if err != nil {
		t.Fatalf("semantic error: %v", err)
	}
	return New(opts...).Run(sem)
}

func mustEval(t *testing.T, input string, opts ...Option) Result {
	t.Helper()
	result, err := evalSource(t, input, opts...)
	if err != nil {
		t.Fatalf("codegen error: %v", err)
	}
	return result
}

// TestEvaluateDouble tests real-valued programs end to end.
func TestEvaluateDouble(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		{"4.0 + 5.0;", 9.0},
		{"2.0 * 3.0 + 1.0;", 7.0},
		{"def sq(real x):real x*x  sq(3.0);", 9.0},
		{"def foo(real a, real b): real a*a + 2.0*a*b + b*b; foo(1.0, 2.0);", 9.0},
		{"if(True, 1.0, 2.0);", 1.0},
		{"if(False, 1.0, 2.0);", 2.0},
		{"if(1.0 > 2.0, 1.0, 2.0);", 2.0},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := mustEval(t, tt.input)
			if result.Kind != DoubleValue {
				t.Fatalf("want a double result, got kind %v", result.Kind)
			}
			if result.Double != tt.expected {
				t.Errorf("want %v, got %v", tt.expected, result.Double)
			}
		})
	}
}

// TestEvaluateInt64 tests integer-valued programs end to end.
func TestEvaluateInt64(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"1i + 2i;", 3},
		{"def sq(integer x):integer x*x;  sq(3i)+sq(2i);", 13},
		{"if(True, 1i, 2i);", 1},
		{"if(False, 1i, 2i);", 2},
		{"def fib(integer n):integer if(n < 2i, n, fib(n-1i)+fib(n-2i)); fib(8i);", 21},
		{"def first(list<integer> xs): integer xs[0]  first([7i 8i 9i]);", 7},
		{"def third(list<integer> xs): integer xs[2]  third([7i 8i 9i]);", 9},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := mustEval(t, tt.input)
			if result.Kind != Int64Value {
				t.Fatalf("want an int64 result, got kind %v", result.Kind)
			}
			if result.Int != tt.expected {
				t.Errorf("want %v, got %v", tt.expected, result.Int)
			}
		})
	}
}

// TestEvaluateBool tests boolean-valued programs end to end.
func TestEvaluateBool(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"True and (False or True);", true},
		{"True and False;", false},
		{"1.0 < 2.0;", true},
		{"3i > 4i;", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := mustEval(t, tt.input)
			if result.Kind != BoolValue {
				t.Fatalf("want a bool result, got kind %v", result.Kind)
			}
			if result.Bool != tt.expected {
				t.Errorf("want %v, got %v", tt.expected, result.Bool)
			}
		})
	}
}

// TestExternCall evaluates a declared extern against the host math table.
func TestExternCall(t *testing.T) {
	result := mustEval(t, "extern cos(real x): real; cos(1.234);")
	if result.Kind != DoubleValue {
		t.Fatalf("want a double result, got kind %v", result.Kind)
	}
	if math.Abs(result.Double-math.Cos(1.234)) > 1e-15 {
		t.Errorf("want cos(1.234)=%v, got %v", math.Cos(1.234), result.Double)
	}
}

// TestNoValue tests programs without a trailing anonymous expression.
func TestNoValue(t *testing.T) {
	tests := []string{
		"",
		"def foo(real a, real b): real a*a + 2.0*a*b + b*b;",
		"extern cos(real x): real;",
		"1.0 + 2.0; def f(real a):real a;",
	}
	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			result := mustEval(t, input)
			if result.Kind != NoValue {
				t.Errorf("want no value, got kind %v", result.Kind)
			}
			if result.String() != "void" {
				t.Errorf("want void, got %v", result.String())
			}
		})
	}
}

// TestResultString tests the CLI rendering of results.
func TestResultString(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"4.0 + 5.0;", "9.0"},
		{"2.5 * 2.0;", "5.0"},
		{"1.0 + 0.25;", "1.25"},
		{"def sq(integer x):integer x*x;  sq(3i)+sq(2i);", "13i"},
		{"True and (False or True);", "True"},
		{"True and False;", "False"},
		{"def foo(real a): real a;", "void"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := mustEval(t, tt.input)
			if got := result.String(); got != tt.expected {
				t.Errorf("want %q, got %q", tt.expected, got)
			}
		})
	}
}

// TestIntegerWrap documents two's-complement wrap-around on overflow.
func TestIntegerWrap(t *testing.T) {
	result := mustEval(t, "def big(integer x):integer x*x  big(4294967296i)*big(4294967296i);")
	if result.Kind != Int64Value {
		t.Fatalf("want an int64 result, got kind %v", result.Kind)
	}
	if result.Int != 0 {
		t.Errorf("want wrapped 0, got %v", result.Int)
	}
}

// TestDumpWriter checks the module listing emitted before evaluation.
func TestDumpWriter(t *testing.T) {
	var sb strings.Builder
	result := mustEval(t, "def sq(real x):real x*x  sq(3.0);", WithDumpWriter(&sb))
	if result.Double != 9.0 {
		t.Fatalf("want 9.0, got %v", result.Double)
	}
	text := sb.String()
	for _, want := range []string{"target datalayout", "define double @sq(double %x)", "define double @__anon_expr()"} {
		if !strings.Contains(text, want) {
			t.Errorf("module listing missing %q:\n%s", want, text)
		}
	}
}

// TestModuleListings snapshots the optimized IR for representative
// programs.
func TestModuleListings(t *testing.T) {
	sources := map[string]string{
		"arith":  "def axpy(real a, real x, real y):real a*x + y  axpy(2.0, 3.0, 4.0);",
		"branch": "def pick(integer n):integer if(n < 0i, 0i - n, n)  pick(0i - 5i);",
		"list":   "def second(list<real> xs): real xs[1]  second([1.5 2.5]);",
	}
	for name, src := range sources {
		t.Run(name, func(t *testing.T) {
			var sb strings.Builder
			mustEval(t, src, WithDumpWriter(&sb))
			snaps.MatchSnapshot(t, sb.String())
		})
	}
}
