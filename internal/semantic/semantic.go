package semantic

import (
	"strings"

	"github.com/igfraga/go-conflake/internal/ast"
	"github.com/igfraga/go-conflake/internal/types"
)

// InternalPrefix marks diagnostics for inconsistencies an earlier stage
// should have made impossible, as opposed to errors in the user's program.
const InternalPrefix = "pom should have caught: "

// Error is a semantic analysis failure.
type Error struct {
	Message  string
	Internal bool
}

func (e *Error) Error() string {
	if e.Internal {
		return InternalPrefix + e.Message
	}
	return e.Message
}

// Arg is a resolved prototype argument.
type Arg struct {
	Type types.Type
	Name string
}

// Signature is a prototype with every annotation resolved to a Type. After
// analysis the return type is always present.
type Signature struct {
	Name string
	Args []Arg
	Ret  types.Type
}

// Type returns the function type described by the signature.
func (s *Signature) Type() *types.Function {
	argTypes := make([]types.Type, len(s.Args))
	for i, a := range s.Args {
		argTypes[i] = a.Type
	}
	return types.NewFunction(s.Ret, argTypes...)
}

// String renders the resolved signature.
func (s *Signature) String() string {
	var sb strings.Builder
	sb.WriteString(s.Name)
	sb.WriteByte('(')
	for i, a := range s.Args {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(a.Type.Describe())
		sb.WriteByte(' ')
		sb.WriteString(a.Name)
	}
	sb.WriteString("):")
	sb.WriteString(s.Ret.Describe())
	return sb.String()
}

// Function is an analyzed definition: the resolved signature, the shared
// body expression, and the context the code generator lowers the body in.
type Function struct {
	Sig  *Signature
	Body ast.Expr
	Ctx  *Context
}

// TopLevelUnit is either an extern *Signature or an analyzed *Function.
type TopLevelUnit interface {
	semanticUnit()
}

func (*Signature) semanticUnit() {}
func (*Function) semanticUnit()  {}

// TopLevel is the analyzer's output, in source order.
type TopLevel []TopLevelUnit
