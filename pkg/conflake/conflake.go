// Package conflake is the embedding API for the Conflake compiler: it wires
// the lexer, parser, semantic analyzer and code generator into a single
// pipeline and reports failures tagged with the stage that produced them.
package conflake

import (
	"io"

	"github.com/igfraga/go-conflake/internal/ast"
	"github.com/igfraga/go-conflake/internal/codegen"
	"github.com/igfraga/go-conflake/internal/lexer"
	"github.com/igfraga/go-conflake/internal/parser"
	"github.com/igfraga/go-conflake/internal/semantic"
)

// Result is the tagged value of an evaluated program.
type Result = codegen.Result

// Result kinds, re-exported for callers switching on Result.Kind.
const (
	NoValue     = codegen.NoValue
	DoubleValue = codegen.DoubleValue
	Int64Value  = codegen.Int64Value
	BoolValue   = codegen.BoolValue
)

// Stage identifies the pipeline stage an error came from.
type Stage int

const (
	StageLexer Stage = iota
	StageParser
	StageSemantic
	StageCodegen
)

// Prefix returns the diagnostic prefix the CLI prints for the stage.
func (s Stage) Prefix() string {
	switch s {
	case StageLexer:
		return "Lexer error: "
	case StageParser:
		return "Parser error: "
	case StageSemantic:
		return "Semantic error: "
	}
	return "Error: "
}

// PipelineError wraps a stage error for single-line reporting.
type PipelineError struct {
	Stage Stage
	Err   error
}

func (e *PipelineError) Error() string { return e.Stage.Prefix() + e.Err.Error() }

func (e *PipelineError) Unwrap() error { return e.Err }

func stageErr(stage Stage, err error) *PipelineError {
	return &PipelineError{Stage: stage, Err: err}
}

// Option configures a Run.
type Option func(*config)

type config struct {
	dump io.Writer
}

// WithDumpWriter makes Run print the optimized module's textual IR to w
// before evaluating it.
func WithDumpWriter(w io.Writer) Option {
	return func(c *config) {
		c.dump = w
	}
}

// Run compiles and evaluates a Conflake source string. The pipeline
// short-circuits on the first error of any stage; errors are returned as
// *PipelineError.
func Run(source string, opts ...Option) (Result, error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	top, err := Analyze(source)
	if err != nil {
		return Result{}, err
	}

	var genOpts []codegen.Option
	if cfg.dump != nil {
		genOpts = append(genOpts, codegen.WithDumpWriter(cfg.dump))
	}
	result, err := codegen.New(genOpts...).Run(top)
	if err != nil {
		return Result{}, stageErr(StageCodegen, err)
	}
	return result, nil
}

// Parse runs the front half of the pipeline and returns the parsed
// top-level.
func Parse(source string) (ast.TopLevel, error) {
	tokens, err := lexer.Lex(source)
	if err != nil {
		return nil, stageErr(StageLexer, err)
	}
	top, err := parser.New(tokens).Parse()
	if err != nil {
		return nil, stageErr(StageParser, err)
	}
	return top, nil
}

// Analyze parses and semantically checks a source string.
func Analyze(source string) (semantic.TopLevel, error) {
	top, err := Parse(source)
	if err != nil {
		return nil, err
	}
	sem, err := semantic.Analyze(top)
	if err != nil {
		return nil, stageErr(StageSemantic, err)
	}
	return sem, nil
}
