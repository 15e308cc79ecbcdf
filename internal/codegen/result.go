package codegen

import (
	"strconv"
	"strings"
)

// ResultKind tags the value an evaluated program produced.
type ResultKind int

const (
	// NoValue means the program had no trailing anonymous expression.
	NoValue ResultKind = iota
	// DoubleValue is a real result.
	DoubleValue
	// Int64Value is an integer result.
	Int64Value
	// BoolValue is a boolean result.
	BoolValue
)

// Result is the tagged value of the evaluated top-level expression.
type Result struct {
	Kind   ResultKind
	Double float64
	Int    int64
	Bool   bool
}

// String renders the result the way the CLI prints it: doubles in decimal
// (with a trailing .0 when integral, so a real result stays recognizable),
// integers with a trailing i, booleans as True/False, and void when the
// program produced no value.
func (r Result) String() string {
	switch r.Kind {
	case DoubleValue:
		s := strconv.FormatFloat(r.Double, 'f', -1, 64)
		if !strings.ContainsAny(s, ".eIN") {
			s += ".0"
		}
		return s
	case Int64Value:
		return strconv.FormatInt(r.Int, 10) + "i"
	case BoolValue:
		if r.Bool {
			return "True"
		}
		return "False"
	}
	return "void"
}
