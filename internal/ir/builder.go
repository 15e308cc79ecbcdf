package ir

// Builder constructs instructions at an insertion point, in the manner of
// LLVM's IRBuilder. All Create methods append to the current block and
// return the new instruction as a Value.
type Builder struct {
	module *Module
	block  *BasicBlock
}

// NewBuilder creates a builder for the module with no insertion point.
func NewBuilder(m *Module) *Builder {
	return &Builder{module: m}
}

// Module returns the module the builder emits into.
func (b *Builder) Module() *Module { return b.module }

// SetInsertPoint positions the builder at the end of the given block.
func (b *Builder) SetInsertPoint(bb *BasicBlock) { b.block = bb }

// InsertBlock returns the block the builder currently appends to.
func (b *Builder) InsertBlock() *BasicBlock { return b.block }

func (b *Builder) insert(i *Instr) *Instr {
	b.block.Instrs = append(b.block.Instrs, i)
	return i
}

func (b *Builder) binary(op Opcode, ty Type, lhs, rhs Value, name string) Value {
	return b.insert(&Instr{Op: op, Ty: ty, Nam: name, Operands: []Value{lhs, rhs}})
}

// CreateFAdd emits a double addition.
func (b *Builder) CreateFAdd(lhs, rhs Value, name string) Value {
	return b.binary(OpFAdd, DoubleType(), lhs, rhs, name)
}

// CreateFSub emits a double subtraction.
func (b *Builder) CreateFSub(lhs, rhs Value, name string) Value {
	return b.binary(OpFSub, DoubleType(), lhs, rhs, name)
}

// CreateFMul emits a double multiplication.
func (b *Builder) CreateFMul(lhs, rhs Value, name string) Value {
	return b.binary(OpFMul, DoubleType(), lhs, rhs, name)
}

// CreateAdd emits an i64 addition (two's-complement wrap).
func (b *Builder) CreateAdd(lhs, rhs Value, name string) Value {
	return b.binary(OpAdd, Int64Type(), lhs, rhs, name)
}

// CreateSub emits an i64 subtraction (two's-complement wrap).
func (b *Builder) CreateSub(lhs, rhs Value, name string) Value {
	return b.binary(OpSub, Int64Type(), lhs, rhs, name)
}

// CreateMul emits an i64 multiplication (two's-complement wrap).
func (b *Builder) CreateMul(lhs, rhs Value, name string) Value {
	return b.binary(OpMul, Int64Type(), lhs, rhs, name)
}

// CreateFCmpULT emits a double less-than comparison yielding i1.
func (b *Builder) CreateFCmpULT(lhs, rhs Value, name string) Value {
	return b.binary(OpFCmpULT, Int1Type(), lhs, rhs, name)
}

// CreateFCmpUGT emits a double greater-than comparison yielding i1.
func (b *Builder) CreateFCmpUGT(lhs, rhs Value, name string) Value {
	return b.binary(OpFCmpUGT, Int1Type(), lhs, rhs, name)
}

// CreateICmpSLT emits a signed i64 less-than comparison yielding i1.
func (b *Builder) CreateICmpSLT(lhs, rhs Value, name string) Value {
	return b.binary(OpICmpSLT, Int1Type(), lhs, rhs, name)
}

// CreateICmpSGT emits a signed i64 greater-than comparison yielding i1.
func (b *Builder) CreateICmpSGT(lhs, rhs Value, name string) Value {
	return b.binary(OpICmpSGT, Int1Type(), lhs, rhs, name)
}

// CreateAnd emits a bitwise and (i1 operands here).
func (b *Builder) CreateAnd(lhs, rhs Value, name string) Value {
	return b.binary(OpAnd, lhs.Type(), lhs, rhs, name)
}

// CreateOr emits a bitwise or (i1 operands here).
func (b *Builder) CreateOr(lhs, rhs Value, name string) Value {
	return b.binary(OpOr, lhs.Type(), lhs, rhs, name)
}

// CreateCall emits a direct call.
func (b *Builder) CreateCall(callee *Function, args []Value, name string) Value {
	return b.insert(&Instr{Op: OpCall, Ty: callee.Ty.Ret, Nam: name, Callee: callee, Operands: args})
}

// CreateGEP emits an address computation: base of pointer type T*, offset
// index, result T*.
func (b *Builder) CreateGEP(base, index Value, name string) Value {
	return b.insert(&Instr{Op: OpGEP, Ty: base.Type(), Nam: name, Operands: []Value{base, index}})
}

// CreateLoad emits a load through a typed pointer.
func (b *Builder) CreateLoad(ptr Value, name string) Value {
	elem := ptr.Type().(*PointerType).Elem
	return b.insert(&Instr{Op: OpLoad, Ty: elem, Nam: name, Operands: []Value{ptr}})
}

// CreateStore emits a store of val through a typed pointer.
func (b *Builder) CreateStore(val, ptr Value) Value {
	return b.insert(&Instr{Op: OpStore, Ty: VoidType(), Operands: []Value{val, ptr}})
}

// CreateBitCast emits a pointer cast.
func (b *Builder) CreateBitCast(val Value, to Type, name string) Value {
	return b.insert(&Instr{Op: OpBitCast, Ty: to, Nam: name, Operands: []Value{val}})
}

// CreatePHI emits an empty phi node of the given type; incomings are added
// with AddIncoming.
func (b *Builder) CreatePHI(ty Type, name string) *Instr {
	return b.insert(&Instr{Op: OpPhi, Ty: ty, Nam: name})
}

// AddIncoming appends a (value, predecessor) pair to a phi node.
func (phi *Instr) AddIncoming(v Value, bb *BasicBlock) {
	phi.Incomings = append(phi.Incomings, Incoming{Value: v, Block: bb})
}

// CreateBr emits an unconditional branch.
func (b *Builder) CreateBr(target *BasicBlock) *Instr {
	return b.insert(&Instr{Op: OpBr, Ty: VoidType(), Then: target})
}

// CreateCondBr emits a conditional branch on an i1 value.
func (b *Builder) CreateCondBr(cond Value, then, els *BasicBlock) *Instr {
	return b.insert(&Instr{Op: OpCondBr, Ty: VoidType(), Operands: []Value{cond}, Then: then, Else: els})
}

// CreateRet emits a return.
func (b *Builder) CreateRet(v Value) *Instr {
	return b.insert(&Instr{Op: OpRet, Ty: VoidType(), Operands: []Value{v}})
}
