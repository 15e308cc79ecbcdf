package conflake

import (
	"errors"
	"strings"
	"testing"
)

// TestRunScenarios runs the end-to-end programs through the public API.
func TestRunScenarios(t *testing.T) {
	tests := []struct {
		input    string
		rendered string
	}{
		{"4.0 + 5.0;", "9.0"},
		{"def foo(real a, real b): real a*a + 2.0*a*b + b*b;", "void"},
		{"def sq(integer x):integer x*x;  sq(3i)+sq(2i);", "13i"},
		{"def fib(integer n):integer if(n < 2i, n, fib(n-1i)+fib(n-2i)); fib(8i);", "21i"},
		{"True and (False or True);", "True"},
		{"", "void"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, err := Run(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := result.String(); got != tt.rendered {
				t.Errorf("want %q, got %q", tt.rendered, got)
			}
		})
	}
}

// TestStagePrefixes checks the single-line diagnostic prefixes per stage.
func TestStagePrefixes(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		prefix string
		stage  Stage
	}{
		{"lexer", "4.0 @ 5.0;", "Lexer error: ", StageLexer},
		{"parser", "(4.0 + 5.0;", "Parser error: ", StageParser},
		{"semantic", "3i + 1.0;", "Semantic error: ", StageSemantic},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Run(tt.input)
			if err == nil {
				t.Fatalf("expected an error")
			}
			if !strings.HasPrefix(err.Error(), tt.prefix) {
				t.Errorf("want prefix %q, got %q", tt.prefix, err.Error())
			}
			var perr *PipelineError
			if !errors.As(err, &perr) {
				t.Fatalf("error is not a PipelineError: %T", err)
			}
			if perr.Stage != tt.stage {
				t.Errorf("want stage %v, got %v", tt.stage, perr.Stage)
			}
		})
	}
}

// TestDumpWriter checks that the IR listing option reaches the generator.
func TestDumpWriter(t *testing.T) {
	var sb strings.Builder
	if _, err := Run("1.0 + 2.0;", WithDumpWriter(&sb)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(sb.String(), "define double @__anon_expr()") {
		t.Errorf("missing IR listing, got:\n%s", sb.String())
	}
}

// TestParseAndAnalyze smoke-tests the partial pipeline entry points.
func TestParseAndAnalyze(t *testing.T) {
	top, err := Parse("def f(real a):real a;")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if len(top) != 1 {
		t.Fatalf("want 1 unit, got %d", len(top))
	}

	if _, err := Analyze("def f(real a):real a  f(True);"); err == nil {
		t.Errorf("expected a semantic error")
	}
}
