// Package codegen lowers an analyzed Conflake top-level to IR, runs the
// function-level optimization pipeline, and evaluates the trailing
// anonymous expression through a JIT session.
package codegen

import (
	"fmt"
	"io"

	"github.com/igfraga/go-conflake/internal/ast"
	"github.com/igfraga/go-conflake/internal/ir"
	"github.com/igfraga/go-conflake/internal/jit"
	"github.com/igfraga/go-conflake/internal/ops"
	"github.com/igfraga/go-conflake/internal/semantic"
	"github.com/igfraga/go-conflake/internal/types"
)

// Error is a code generation failure. Internal errors are inconsistencies
// the semantic stage should have made impossible.
type Error struct {
	Message  string
	Internal bool
}

func (e *Error) Error() string {
	if e.Internal {
		return semantic.InternalPrefix + e.Message
	}
	return e.Message
}

func errorf(format string, args ...any) *Error {
	return &Error{Message: fmt.Sprintf(format, args...)}
}

func internalf(format string, args ...any) *Error {
	return &Error{Message: fmt.Sprintf(format, args...), Internal: true}
}

// Generator owns the per-compilation state: the IR module and builder, the
// pass pipeline, the JIT session and the per-function name map.
type Generator struct {
	module  *ir.Module
	builder *ir.Builder
	fpm     *ir.FunctionPassManager
	session *jit.Session
	named   map[string]ir.Value
	dump    io.Writer
}

// Option configures a Generator.
type Option func(*Generator)

// WithDumpWriter makes the generator print the optimized module's textual
// IR to w before evaluation.
func WithDumpWriter(w io.Writer) Option {
	return func(g *Generator) {
		g.dump = w
	}
}

// New creates a Generator with a fresh module, builder and JIT session,
// seeded with the JIT's target data layout.
func New(opts ...Option) *Generator {
	g := &Generator{
		module:  ir.NewModule("conflake jit"),
		fpm:     ir.NewFunctionPassManager(),
		session: jit.NewSession(),
	}
	g.module.DataLayout = jit.DataLayout
	g.builder = ir.NewBuilder(g.module)
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Session exposes the generator's JIT session, letting embedders register
// extra host externs before Run.
func (g *Generator) Session() *jit.Session { return g.session }

// Run lowers every unit in order, optimizes each function, and evaluates
// the result. The module handle is released on every exit path.
func (g *Generator) Run(top semantic.TopLevel) (Result, error) {
	var lastName string
	var lastType types.Type

	for _, unit := range top {
		switch u := unit.(type) {
		case *semantic.Signature:
			if _, err := g.declareFunction(u); err != nil {
				return Result{}, err
			}
			lastName, lastType = "", nil

		case *semantic.Function:
			fn, err := g.lowerFunction(u)
			if err != nil {
				return Result{}, err
			}
			if len(fn.Params) == 0 {
				lastName, lastType = fn.Nam, u.Sig.Ret
			} else {
				lastName, lastType = "", nil
			}
		}
	}

	if g.dump != nil {
		fmt.Fprint(g.dump, g.module.String())
	}

	if lastName == "" {
		return Result{Kind: NoValue}, nil
	}

	handle, err := g.session.AddModule(g.module)
	if err != nil {
		return Result{}, errorf("%v", err)
	}
	defer g.session.RemoveModule(handle)

	sym, err := g.session.Lookup(lastName)
	if err != nil {
		return Result{}, errorf("%v", err)
	}

	switch lastType.Mangled() {
	case "real":
		v, err := sym.CallDouble()
		if err != nil {
			return Result{}, errorf("%v", err)
		}
		return Result{Kind: DoubleValue, Double: v}, nil
	case "integer":
		v, err := sym.CallInt64()
		if err != nil {
			return Result{}, errorf("%v", err)
		}
		return Result{Kind: Int64Value, Int: v}, nil
	case "boolean":
		v, err := sym.CallBool()
		if err != nil {
			return Result{}, errorf("%v", err)
		}
		return Result{Kind: BoolValue, Bool: v}, nil
	}
	return Result{}, errorf("Cannot evaluate something of type %v", lastType.Describe())
}

// typeToIR lowers a semantic type: scalars map to f64/i64/i1, lists to a
// pointer to the element type, and function types to a pointer to a
// function type whose argument list begins with the return type.
func typeToIR(t types.Type) (ir.Type, error) {
	switch ty := t.(type) {
	case *types.List:
		elem, err := typeToIR(ty.Elem)
		if err != nil {
			return nil, err
		}
		return ir.NewPointerType(elem), nil

	case *types.Function:
		ret, err := typeToIR(ty.Ret)
		if err != nil {
			return nil, err
		}
		params := []ir.Type{ret}
		for _, a := range ty.Args {
			at, err := typeToIR(a)
			if err != nil {
				return nil, err
			}
			params = append(params, at)
		}
		return ir.NewPointerType(ir.NewFuncType(ret, params...)), nil
	}

	switch t.Mangled() {
	case "real":
		return ir.DoubleType(), nil
	case "integer":
		return ir.Int64Type(), nil
	case "boolean":
		return ir.Int1Type(), nil
	}
	return nil, errorf("type not supported: %v", t.Describe())
}

// declareFunction creates (or returns) the IR function for a signature.
func (g *Generator) declareFunction(sig *semantic.Signature) (*ir.Function, error) {
	if fn := g.module.Func(sig.Name); fn != nil {
		return fn, nil
	}
	params := make([]ir.Type, len(sig.Args))
	for i, a := range sig.Args {
		ty, err := typeToIR(a.Type)
		if err != nil {
			return nil, err
		}
		params[i] = ty
	}
	ret, err := typeToIR(sig.Ret)
	if err != nil {
		return nil, err
	}
	fn := g.module.NewFunc(sig.Name, ir.NewFuncType(ret, params...))
	for i, a := range sig.Args {
		fn.Params[i].Nam = a.Name
	}
	return fn, nil
}

// lowerFunction emits the body of a definition into an entry block and runs
// the optimization pipeline over the finished function.
func (g *Generator) lowerFunction(sem *semantic.Function) (*ir.Function, error) {
	fn, err := g.declareFunction(sem.Sig)
	if err != nil {
		return nil, err
	}
	if !fn.IsDeclaration() {
		// A second anonymous top-level expression (or a redefinition) gets
		// its own IR function rather than a second entry block.
		sig := *sem.Sig
		sig.Name = fmt.Sprintf("%s.%d", sem.Sig.Name, len(g.module.Funcs))
		fn, err = g.declareFunction(&sig)
		if err != nil {
			return nil, err
		}
	}

	entry := fn.NewBlock("entry")
	g.builder.SetInsertPoint(entry)

	g.named = make(map[string]ir.Value, len(fn.Params))
	for _, p := range fn.Params {
		g.named[p.Nam] = p
	}

	ret, err := g.lowerExpr(sem.Body, sem.Ctx)
	if err != nil {
		return nil, err
	}
	g.builder.CreateRet(ret)

	g.fpm.Run(fn)
	return fn, nil
}

// exprType fetches the type the analyzer recorded for a node.
func exprType(ctx *semantic.Context, e ast.Expr) (types.Type, error) {
	ty, ok := ctx.ExprType(e.ID())
	if !ok {
		return nil, internalf("expression %v has no recorded type", e.ID())
	}
	return ty, nil
}

func (g *Generator) lowerExpr(e ast.Expr, ctx *semantic.Context) (ir.Value, error) {
	switch n := e.(type) {
	case *ast.RealLiteral:
		return &ir.ConstFloat{V: n.Value}, nil

	case *ast.IntegerLiteral:
		return &ir.ConstInt{Ty: ir.Int64Type(), V: n.Value}, nil

	case *ast.BooleanLiteral:
		if n.Value {
			return ir.True(), nil
		}
		return ir.False(), nil

	case *ast.Var:
		v, ok := g.named[n.Name]
		if !ok {
			return nil, internalf("Unknown variable name: %v", n.Name)
		}
		if n.Subscript == nil {
			return v, nil
		}
		idx := &ir.ConstInt{Ty: ir.Int64Type(), V: *n.Subscript}
		addr := g.builder.CreateGEP(v, idx, "elemaddr")
		return g.builder.CreateLoad(addr, "elemtmp"), nil

	case *ast.ListExpr:
		return g.lowerList(n, ctx)

	case *ast.BinaryExpr:
		return g.lowerBinary(n, ctx)

	case *ast.Call:
		return g.lowerCall(n, ctx)
	}
	return nil, internalf("unhandled expression kind %T", e)
}

// lowerList allocates the list on the heap via the module's malloc runtime
// and stores each element at its index.
func (g *Generator) lowerList(n *ast.ListExpr, ctx *semantic.Context) (ir.Value, error) {
	listType, err := exprType(ctx, n)
	if err != nil {
		return nil, err
	}
	lt, ok := listType.(*types.List)
	if !ok {
		return nil, internalf("list literal typed as %v", listType.Describe())
	}
	elemIR, err := typeToIR(lt.Elem)
	if err != nil {
		return nil, err
	}

	size := &ir.ConstInt{Ty: ir.Int64Type(), V: ir.SizeOf(elemIR) * int64(len(n.Elems))}
	malloc := g.module.DeclareMalloc()
	raw := g.builder.CreateCall(malloc, []ir.Value{size}, "rawtmp")
	list := g.builder.CreateBitCast(raw, ir.NewPointerType(elemIR), "listtmp")

	for i, elem := range n.Elems {
		ev, err := g.lowerExpr(elem, ctx)
		if err != nil {
			return nil, err
		}
		idx := &ir.ConstInt{Ty: ir.Int64Type(), V: int64(i)}
		addr := g.builder.CreateGEP(list, idx, "elemaddr")
		g.builder.CreateStore(ev, addr)
	}
	return list, nil
}

func (g *Generator) lowerBinary(n *ast.BinaryExpr, ctx *semantic.Context) (ir.Value, error) {
	lhsType, err := exprType(ctx, n.Lhs)
	if err != nil {
		return nil, err
	}
	rhsType, err := exprType(ctx, n.Rhs)
	if err != nil {
		return nil, err
	}
	info, err := ops.Get(string(n.Op), []types.Type{lhsType, rhsType})
	if err != nil {
		return nil, internalf("%v", err)
	}

	lhs, err := g.lowerExpr(n.Lhs, ctx)
	if err != nil {
		return nil, err
	}
	rhs, err := g.lowerExpr(n.Rhs, ctx)
	if err != nil {
		return nil, err
	}
	return info.Build(g.builder, []ir.Value{lhs, rhs}), nil
}

// lowerCall dispatches through the operator table first, handing the entry
// lazy value producers so intrinsics like if control where each operand is
// emitted. Plain function calls evaluate arguments in order and emit a
// direct call.
func (g *Generator) lowerCall(n *ast.Call, ctx *semantic.Context) (ir.Value, error) {
	argTypes := make([]types.Type, len(n.Args))
	for i, arg := range n.Args {
		ty, err := exprType(ctx, arg)
		if err != nil {
			return nil, err
		}
		argTypes[i] = ty
	}

	if info, err := ops.Get(n.Callee, argTypes); err == nil {
		producers := make([]ops.ValueProducer, len(n.Args))
		for i, arg := range n.Args {
			producers[i] = func() (ir.Value, error) {
				return g.lowerExpr(arg, ctx)
			}
		}
		if info.Lazy != nil {
			return info.Lazy(g.builder, producers)
		}
		values := make([]ir.Value, len(producers))
		for i, produce := range producers {
			v, err := produce()
			if err != nil {
				return nil, err
			}
			values[i] = v
		}
		return info.Build(g.builder, values), nil
	}

	fn := g.module.Func(n.Callee)
	if fn == nil {
		return nil, internalf("Unknown function referenced: %v", n.Callee)
	}
	if len(fn.Params) != len(n.Args) {
		return nil, internalf("Incorrect # arguments passed %v vs %v", len(fn.Params), len(n.Args))
	}
	args := make([]ir.Value, len(n.Args))
	for i, arg := range n.Args {
		v, err := g.lowerExpr(arg, ctx)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return g.builder.CreateCall(fn, args, "calltmp"), nil
}
