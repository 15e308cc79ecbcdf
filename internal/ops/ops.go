// Package ops holds the process-wide registry of built-in operators and
// intrinsics. Each entry is keyed by the operator name plus the exact
// operand type tuple and carries both the result type and the IR builder
// that emits the operation. Lookup never converts: an entry matches only on
// type equality.
package ops

import (
	"fmt"

	"github.com/igfraga/go-conflake/internal/ir"
	"github.com/igfraga/go-conflake/internal/types"
)

// Err is an operator lookup or build failure.
type Err struct {
	Message string
}

func (e *Err) Error() string { return e.Message }

// ValueProducer lazily emits the IR for one operand at the builder's current
// insertion point. Lazy builders call producers themselves so they can
// control evaluation order and basic-block placement.
type ValueProducer func() (ir.Value, error)

// EagerBuilder emits an operation from already-evaluated operand values.
type EagerBuilder func(b *ir.Builder, operands []ir.Value) ir.Value

// LazyBuilder emits an operation from operand producers. Required for
// operators that create basic blocks or short-circuit.
type LazyBuilder func(b *ir.Builder, operands []ValueProducer) (ir.Value, error)

// OpInfo is one registered operator overload.
type OpInfo struct {
	Key    string
	Args   []types.Type
	Result types.Type
	Build  EagerBuilder
	Lazy   LazyBuilder
}

// makeKey builds the composite registry key from the operator name and the
// mangled operand tuple.
func makeKey(op string, operands []types.Type) string {
	return op + "__" + types.MangleTuple(operands)
}

var registry = makeRegistry()

func makeRegistry() map[string]OpInfo {
	real := types.Real()
	integer := types.Integer()
	boolean := types.Boolean()

	entries := []OpInfo{
		{Key: "+", Args: []types.Type{real, real}, Result: real, Build: binary(ir.OpFAdd, "addtmp")},
		{Key: "-", Args: []types.Type{real, real}, Result: real, Build: binary(ir.OpFSub, "subtmp")},
		{Key: "*", Args: []types.Type{real, real}, Result: real, Build: binary(ir.OpFMul, "multmp")},

		{Key: "+", Args: []types.Type{integer, integer}, Result: integer, Build: binary(ir.OpAdd, "addtmp")},
		{Key: "-", Args: []types.Type{integer, integer}, Result: integer, Build: binary(ir.OpSub, "subtmp")},
		{Key: "*", Args: []types.Type{integer, integer}, Result: integer, Build: binary(ir.OpMul, "multmp")},

		{Key: "<", Args: []types.Type{real, real}, Result: boolean, Build: binary(ir.OpFCmpULT, "lttmp")},
		{Key: ">", Args: []types.Type{real, real}, Result: boolean, Build: binary(ir.OpFCmpUGT, "gttmp")},
		{Key: "<", Args: []types.Type{integer, integer}, Result: boolean, Build: binary(ir.OpICmpSLT, "lttmp")},
		{Key: ">", Args: []types.Type{integer, integer}, Result: boolean, Build: binary(ir.OpICmpSGT, "gttmp")},

		{Key: "or", Args: []types.Type{boolean, boolean}, Result: boolean, Build: binary(ir.OpOr, "ortmp")},
		{Key: "and", Args: []types.Type{boolean, boolean}, Result: boolean, Build: binary(ir.OpAnd, "andtmp")},

		{Key: "if", Args: []types.Type{boolean, real, real}, Result: real, Lazy: buildIf(ir.DoubleType())},
		{Key: "if", Args: []types.Type{boolean, integer, integer}, Result: integer, Lazy: buildIf(ir.Int64Type())},
	}

	reg := make(map[string]OpInfo, len(entries))
	for _, e := range entries {
		reg[makeKey(e.Key, e.Args)] = e
	}
	return reg
}

// Get looks up the operator overload for the given operand types.
func Get(op string, operands []types.Type) (OpInfo, error) {
	info, ok := registry[makeKey(op, operands)]
	if !ok {
		descs := ""
		for _, t := range operands {
			descs += t.Describe() + ","
		}
		return OpInfo{}, &Err{
			Message: fmt.Sprintf("Op not found: %v with operands of type %v", op, descs),
		}
	}
	return info, nil
}

// binary returns an eager builder emitting a single two-operand instruction.
func binary(op ir.Opcode, name string) EagerBuilder {
	return func(b *ir.Builder, operands []ir.Value) ir.Value {
		lhs, rhs := operands[0], operands[1]
		switch op {
		case ir.OpFAdd:
			return b.CreateFAdd(lhs, rhs, name)
		case ir.OpFSub:
			return b.CreateFSub(lhs, rhs, name)
		case ir.OpFMul:
			return b.CreateFMul(lhs, rhs, name)
		case ir.OpAdd:
			return b.CreateAdd(lhs, rhs, name)
		case ir.OpSub:
			return b.CreateSub(lhs, rhs, name)
		case ir.OpMul:
			return b.CreateMul(lhs, rhs, name)
		case ir.OpFCmpULT:
			return b.CreateFCmpULT(lhs, rhs, name)
		case ir.OpFCmpUGT:
			return b.CreateFCmpUGT(lhs, rhs, name)
		case ir.OpICmpSLT:
			return b.CreateICmpSLT(lhs, rhs, name)
		case ir.OpICmpSGT:
			return b.CreateICmpSGT(lhs, rhs, name)
		case ir.OpAnd:
			return b.CreateAnd(lhs, rhs, name)
		case ir.OpOr:
			return b.CreateOr(lhs, rhs, name)
		}
		return nil
	}
}

// buildIf returns the lazy builder for the if intrinsic. The condition is
// produced eagerly in the current block; each arm is produced inside its own
// block and the results meet at a phi node in the merge block.
func buildIf(resultTy ir.Type) LazyBuilder {
	return func(b *ir.Builder, operands []ValueProducer) (ir.Value, error) {
		if len(operands) != 3 {
			return nil, &Err{Message: fmt.Sprintf("if expects 3 operands, got %v", len(operands))}
		}
		cond, err := operands[0]()
		if err != nil {
			return nil, err
		}

		fn := b.InsertBlock().Parent
		thenBB := fn.NewBlock("then")
		elseBB := fn.NewBlock("else")
		mergeBB := fn.NewBlock("ifcont")
		b.CreateCondBr(cond, thenBB, elseBB)

		b.SetInsertPoint(thenBB)
		thenVal, err := operands[1]()
		if err != nil {
			return nil, err
		}
		b.CreateBr(mergeBB)
		// Arms may themselves branch; the incoming edge is wherever the arm
		// ended up.
		thenEnd := b.InsertBlock()

		b.SetInsertPoint(elseBB)
		elseVal, err := operands[2]()
		if err != nil {
			return nil, err
		}
		b.CreateBr(mergeBB)
		elseEnd := b.InsertBlock()

		b.SetInsertPoint(mergeBB)
		phi := b.CreatePHI(resultTy, "iftmp")
		phi.AddIncoming(thenVal, thenEnd)
		phi.AddIncoming(elseVal, elseEnd)
		return phi, nil
	}
}
