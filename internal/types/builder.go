package types

import (
	"fmt"

	"github.com/igfraga/go-conflake/internal/ast"
)

// TypeError reports an invalid type annotation or a failed call check. It is
// surfaced to the user as a semantic error.
type TypeError struct {
	Message string
}

func (e *TypeError) Error() string { return e.Message }

// Build resolves a surface type annotation to a Type.
//
// Recognized names: real, integer, boolean (no template arguments); list
// (exactly one template argument); fun (at least one template argument,
// first is the return type, the rest are argument types).
func Build(desc *ast.TypeDesc) (Type, error) {
	if desc == nil {
		return nil, &TypeError{Message: "missing type annotation"}
	}

	switch desc.Name {
	case "real", "integer", "boolean":
		if len(desc.TemplateArgs) != 0 {
			return nil, &TypeError{
				Message: fmt.Sprintf("type %v takes no template arguments", desc.Name),
			}
		}
		switch desc.Name {
		case "real":
			return Real(), nil
		case "integer":
			return Integer(), nil
		default:
			return Boolean(), nil
		}

	case "list":
		if len(desc.TemplateArgs) != 1 {
			return nil, &TypeError{
				Message: fmt.Sprintf("list takes exactly one template argument, got %v", len(desc.TemplateArgs)),
			}
		}
		elem, err := Build(desc.TemplateArgs[0])
		if err != nil {
			return nil, err
		}
		return NewList(elem), nil

	case "fun":
		if len(desc.TemplateArgs) < 1 {
			return nil, &TypeError{
				Message: "fun takes at least one template argument",
			}
		}
		ret, err := Build(desc.TemplateArgs[0])
		if err != nil {
			return nil, err
		}
		args := make([]Type, 0, len(desc.TemplateArgs)-1)
		for _, argDesc := range desc.TemplateArgs[1:] {
			arg, err := Build(argDesc)
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
		}
		return NewFunction(ret, args...), nil
	}

	return nil, &TypeError{
		Message: fmt.Sprintf("unknown type: %v", desc.Name),
	}
}
