package semantic

import (
	"fmt"
	"sort"
	"strings"

	"github.com/igfraga/go-conflake/internal/ast"
	"github.com/igfraga/go-conflake/internal/types"
)

// Context carries the bindings visible while analyzing one scope: names in
// scope mapped to their types, plus the type assigned to every expression
// node visited in that scope. Contexts nest lexically by forking.
type Context struct {
	Variables   map[string]types.Type
	Expressions map[ast.ExprID]types.Type
}

// NewContext creates an empty context.
func NewContext() *Context {
	return &Context{
		Variables:   make(map[string]types.Type),
		Expressions: make(map[ast.ExprID]types.Type),
	}
}

// Fork copies the name bindings into a fresh context with its own
// per-expression map. The receiver is unaffected by writes to the fork.
func (c *Context) Fork() *Context {
	fork := NewContext()
	for name, ty := range c.Variables {
		fork.Variables[name] = ty
	}
	return fork
}

// setExprType records the type of an expression node. Every ID is written
// exactly once per context; a duplicate write is an internal inconsistency.
func (c *Context) setExprType(id ast.ExprID, ty types.Type) error {
	if _, ok := c.Expressions[id]; ok {
		return &Error{
			Message:  fmt.Sprintf("expression %v typed twice", id),
			Internal: true,
		}
	}
	c.Expressions[id] = ty
	return nil
}

// ExprType returns the recorded type of an expression node.
func (c *Context) ExprType(id ast.ExprID) (types.Type, bool) {
	ty, ok := c.Expressions[id]
	return ty, ok
}

// String renders the context's variable bindings, for debugging dumps.
func (c *Context) String() string {
	names := make([]string, 0, len(c.Variables))
	for name := range c.Variables {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	sb.WriteString("=========== Context ==========\n")
	for _, name := range names {
		fmt.Fprintf(&sb, "%s: %s\n", name, c.Variables[name].Describe())
	}
	sb.WriteString("===========---------==========\n")
	return sb.String()
}
