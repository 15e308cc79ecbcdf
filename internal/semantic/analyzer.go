// Package semantic implements the Conflake semantic analyzer.
//
// The analyzer walks the parsed top-level in source order, resolving type
// annotations, computing the type of every expression node and threading an
// outer context so later units see the names earlier units introduced. A
// function sees itself in scope (and may recurse) only when the user
// declared its return type; without a declaration there is nothing to
// resolve a self-reference against.
package semantic

import (
	"fmt"

	"github.com/igfraga/go-conflake/internal/ast"
	"github.com/igfraga/go-conflake/internal/ops"
	"github.com/igfraga/go-conflake/internal/types"
)

// Analyze checks a parsed top-level and produces its semantic counterpart,
// or the first semantic error.
func Analyze(top ast.TopLevel) (TopLevel, error) {
	outer := NewContext()
	var result TopLevel

	for _, unit := range top {
		switch u := unit.(type) {
		case *ast.Signature:
			sig, err := analyzeExtern(u)
			if err != nil {
				return nil, err
			}
			outer.Variables[sig.Name] = sig.Type()
			result = append(result, sig)

		case *ast.Function:
			fn, err := analyzeFunction(u, outer)
			if err != nil {
				return nil, err
			}
			outer.Variables[fn.Sig.Name] = fn.Sig.Type()
			result = append(result, fn)
		}
	}
	return result, nil
}

// analyzeExtern resolves an extern prototype. Externs must declare their
// return type; there is no body to infer one from.
func analyzeExtern(sig *ast.Signature) (*Signature, error) {
	if sig.RetType == nil {
		return nil, &Error{
			Message: fmt.Sprintf("extern %v must declare a return type", sig.Name),
		}
	}
	return resolveSignature(sig)
}

// resolveSignature converts every annotation in a prototype to a Type.
// The returned signature's Ret is nil when the prototype had none.
func resolveSignature(sig *ast.Signature) (*Signature, error) {
	resolved := &Signature{Name: sig.Name}
	for _, arg := range sig.Args {
		ty, err := types.Build(arg.Type)
		if err != nil {
			return nil, &Error{Message: err.Error()}
		}
		resolved.Args = append(resolved.Args, Arg{Type: ty, Name: arg.Name})
	}
	if sig.RetType != nil {
		ret, err := types.Build(sig.RetType)
		if err != nil {
			return nil, &Error{Message: err.Error()}
		}
		resolved.Ret = ret
	}
	return resolved, nil
}

// analyzeFunction checks a definition against the outer context and infers
// or validates its return type.
func analyzeFunction(fn *ast.Function, outer *Context) (*Function, error) {
	sig, err := resolveSignature(fn.Sig)
	if err != nil {
		return nil, err
	}

	ctx := outer.Fork()
	for _, arg := range sig.Args {
		ctx.Variables[arg.Name] = arg.Type
	}
	if sig.Ret != nil {
		// A declared return type puts the function in its own scope,
		// enabling recursion.
		ctx.Variables[sig.Name] = sig.Type()
	}

	bodyType, err := calculateType(fn.Body, ctx)
	if err != nil {
		return nil, err
	}
	if sig.Ret != nil && !types.Equal(sig.Ret, bodyType) {
		return nil, &Error{
			Message: fmt.Sprintf("%v declared to return %v but its body has type %v",
				sig.Name, sig.Ret.Describe(), bodyType.Describe()),
		}
	}
	sig.Ret = bodyType

	return &Function{Sig: sig, Body: fn.Body, Ctx: ctx}, nil
}

// calculateType computes and records the type of an expression node. Every
// visited node's ID is written into the context exactly once.
func calculateType(e ast.Expr, ctx *Context) (types.Type, error) {
	ty, err := exprType(e, ctx)
	if err != nil {
		return nil, err
	}
	if err := ctx.setExprType(e.ID(), ty); err != nil {
		return nil, err
	}
	return ty, nil
}

func exprType(e ast.Expr, ctx *Context) (types.Type, error) {
	switch n := e.(type) {
	case *ast.RealLiteral:
		return types.Real(), nil

	case *ast.IntegerLiteral:
		return types.Integer(), nil

	case *ast.BooleanLiteral:
		return types.Boolean(), nil

	case *ast.Var:
		ty, ok := ctx.Variables[n.Name]
		if !ok {
			return nil, &Error{
				Message: fmt.Sprintf("Variable %v not found in this context", n.Name),
			}
		}
		if n.Subscript == nil {
			return ty, nil
		}
		elem := ty.SubscriptedType()
		if elem == nil {
			return nil, &Error{
				Message: fmt.Sprintf("%v is not subscriptable", ty.Describe()),
			}
		}
		return elem, nil

	case *ast.ListExpr:
		if len(n.Elems) == 0 {
			return nil, &Error{Message: "cannot deduce the type of an empty list"}
		}
		var elemType types.Type
		for _, elem := range n.Elems {
			ty, err := calculateType(elem, ctx)
			if err != nil {
				return nil, err
			}
			if elemType == nil {
				elemType = ty
				continue
			}
			if !types.Equal(elemType, ty) {
				return nil, &Error{
					Message: fmt.Sprintf("list elements must share one type, got %v and %v",
						elemType.Describe(), ty.Describe()),
				}
			}
		}
		return types.NewList(elemType), nil

	case *ast.BinaryExpr:
		lhs, err := calculateType(n.Lhs, ctx)
		if err != nil {
			return nil, err
		}
		rhs, err := calculateType(n.Rhs, ctx)
		if err != nil {
			return nil, err
		}
		info, err := ops.Get(string(n.Op), []types.Type{lhs, rhs})
		if err != nil {
			return nil, &Error{Message: err.Error()}
		}
		return info.Result, nil

	case *ast.Call:
		argTypes := make([]types.Type, len(n.Args))
		for i, arg := range n.Args {
			ty, err := calculateType(arg, ctx)
			if err != nil {
				return nil, err
			}
			argTypes[i] = ty
		}

		// Builtin intrinsics (if, and, or) take precedence over names.
		if info, err := ops.Get(n.Callee, argTypes); err == nil {
			return info.Result, nil
		}

		ty, ok := ctx.Variables[n.Callee]
		if !ok {
			return nil, &Error{
				Message: fmt.Sprintf("Function %v not found in this context", n.Callee),
			}
		}
		fnType, isFn := ty.(*types.Function)
		if !isFn || ty.ReturnType() == nil {
			return nil, &Error{
				Message: fmt.Sprintf("%v is not callable", n.Callee),
			}
		}
		ret, err := fnType.Callable(argTypes)
		if err != nil {
			return nil, &Error{
				Message: fmt.Sprintf("Type error calling %v: %v", n.Callee, err),
			}
		}
		return ret, nil
	}

	return nil, &Error{
		Message:  fmt.Sprintf("unhandled expression kind %T", e),
		Internal: true,
	}
}
