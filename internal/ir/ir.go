// Package ir defines the intermediate representation the code generator
// lowers Conflake programs into: a module of typed functions, each a graph
// of basic blocks holding three-address instructions in SSA form.
//
// The instruction set is the subset of LLVM-style operations the language
// needs: float and integer arithmetic, comparisons, bitwise and/or, memory
// (malloc/getelementptr/load/store), control flow (br/condbr/phi/ret) and
// direct calls. Values are immutable after construction except for operand
// rewrites performed by the optimization passes.
package ir

import "fmt"

// ============================================================================
// Types
// ============================================================================

// Type is the IR-level type of a value.
type Type interface {
	String() string
	irType()
}

// ScalarKind enumerates the primitive IR types.
type ScalarKind int

const (
	Void ScalarKind = iota
	Double
	Int64
	Int8
	Int1
)

// Scalar is a primitive IR type.
type Scalar struct {
	Kind ScalarKind
}

func (s *Scalar) String() string {
	switch s.Kind {
	case Void:
		return "void"
	case Double:
		return "double"
	case Int64:
		return "i64"
	case Int8:
		return "i8"
	case Int1:
		return "i1"
	}
	return "?"
}

func (*Scalar) irType() {}

var (
	voidType   = &Scalar{Kind: Void}
	doubleType = &Scalar{Kind: Double}
	int64Type  = &Scalar{Kind: Int64}
	int8Type   = &Scalar{Kind: Int8}
	int1Type   = &Scalar{Kind: Int1}
)

// VoidType returns the void type.
func VoidType() Type { return voidType }

// DoubleType returns the 64-bit float type.
func DoubleType() Type { return doubleType }

// Int64Type returns the 64-bit integer type.
func Int64Type() Type { return int64Type }

// Int8Type returns the 8-bit integer type (raw memory).
func Int8Type() Type { return int8Type }

// Int1Type returns the 1-bit boolean type.
func Int1Type() Type { return int1Type }

// PointerType is a typed pointer.
type PointerType struct {
	Elem Type
}

func (p *PointerType) String() string { return p.Elem.String() + "*" }
func (*PointerType) irType()          {}

// NewPointerType returns the pointer type to elem.
func NewPointerType(elem Type) *PointerType { return &PointerType{Elem: elem} }

// FuncType is a function signature type.
type FuncType struct {
	Ret    Type
	Params []Type
}

func (f *FuncType) String() string {
	s := f.Ret.String() + " ("
	for i, p := range f.Params {
		if i > 0 {
			s += ", "
		}
		s += p.String()
	}
	return s + ")"
}

func (*FuncType) irType() {}

// NewFuncType returns the function type ret(params...).
func NewFuncType(ret Type, params ...Type) *FuncType {
	return &FuncType{Ret: ret, Params: params}
}

// SizeOf returns the data-layout size of a type in bytes. The layout is the
// common 64-bit one: 8-byte doubles, integers and pointers, single bytes for
// i1 and i8.
func SizeOf(t Type) int64 {
	switch ty := t.(type) {
	case *Scalar:
		switch ty.Kind {
		case Double, Int64:
			return 8
		case Int8, Int1:
			return 1
		}
	case *PointerType:
		return 8
	}
	return 8
}

// TypesEqual reports structural equality of two IR types.
func TypesEqual(a, b Type) bool {
	switch at := a.(type) {
	case *Scalar:
		bt, ok := b.(*Scalar)
		return ok && at.Kind == bt.Kind
	case *PointerType:
		bt, ok := b.(*PointerType)
		return ok && TypesEqual(at.Elem, bt.Elem)
	case *FuncType:
		bt, ok := b.(*FuncType)
		if !ok || !TypesEqual(at.Ret, bt.Ret) || len(at.Params) != len(bt.Params) {
			return false
		}
		for i := range at.Params {
			if !TypesEqual(at.Params[i], bt.Params[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// ============================================================================
// Values
// ============================================================================

// Value is anything an instruction can consume as an operand.
type Value interface {
	Type() Type
}

// ConstFloat is a double constant.
type ConstFloat struct {
	V float64
}

func (*ConstFloat) Type() Type { return doubleType }

// ConstInt is an integer constant of a given integer type (i64 or i1).
type ConstInt struct {
	Ty Type
	V  int64
}

func (c *ConstInt) Type() Type { return c.Ty }

// True and False are the i1 constants.
func True() *ConstInt  { return &ConstInt{Ty: int1Type, V: 1} }
func False() *ConstInt { return &ConstInt{Ty: int1Type, V: 0} }

// Argument is a formal parameter of a function.
type Argument struct {
	Nam   string
	Ty    Type
	Index int
}

func (a *Argument) Type() Type { return a.Ty }

// ============================================================================
// Instructions
// ============================================================================

// Opcode enumerates the instruction set.
type Opcode int

const (
	OpFAdd Opcode = iota
	OpFSub
	OpFMul
	OpAdd
	OpSub
	OpMul
	OpFCmpULT
	OpFCmpUGT
	OpICmpSLT
	OpICmpSGT
	OpAnd
	OpOr
	OpCall
	OpGEP
	OpLoad
	OpStore
	OpBitCast
	OpPhi
	OpBr
	OpCondBr
	OpRet
)

var opcodeNames = map[Opcode]string{
	OpFAdd:    "fadd",
	OpFSub:    "fsub",
	OpFMul:    "fmul",
	OpAdd:     "add",
	OpSub:     "sub",
	OpMul:     "mul",
	OpFCmpULT: "fcmp ult",
	OpFCmpUGT: "fcmp ugt",
	OpICmpSLT: "icmp slt",
	OpICmpSGT: "icmp sgt",
	OpAnd:     "and",
	OpOr:      "or",
	OpCall:    "call",
	OpGEP:     "getelementptr",
	OpLoad:    "load",
	OpStore:   "store",
	OpBitCast: "bitcast",
	OpPhi:     "phi",
	OpBr:      "br",
	OpCondBr:  "br",
	OpRet:     "ret",
}

// Name returns the mnemonic of the opcode.
func (op Opcode) Name() string { return opcodeNames[op] }

// Incoming is one (value, predecessor) pair of a phi node.
type Incoming struct {
	Value Value
	Block *BasicBlock
}

// Instr is a single instruction. Which fields are meaningful depends on Op:
// Operands for data operands, Callee for calls, Incomings for phi nodes, and
// the block fields for branches.
type Instr struct {
	Op        Opcode
	Ty        Type
	Nam       string
	Operands  []Value
	Callee    *Function
	Incomings []Incoming
	Then      *BasicBlock
	Else      *BasicBlock
}

func (i *Instr) Type() Type { return i.Ty }

// IsTerminator reports whether the instruction ends a basic block.
func (i *Instr) IsTerminator() bool {
	return i.Op == OpBr || i.Op == OpCondBr || i.Op == OpRet
}

// ============================================================================
// Functions, blocks, module
// ============================================================================

// BasicBlock is a label plus a straight-line run of instructions ending in a
// terminator.
type BasicBlock struct {
	Nam    string
	Instrs []*Instr
	Parent *Function
}

// Terminator returns the block's final instruction, or nil if the block is
// not yet terminated.
func (b *BasicBlock) Terminator() *Instr {
	if len(b.Instrs) == 0 {
		return nil
	}
	last := b.Instrs[len(b.Instrs)-1]
	if !last.IsTerminator() {
		return nil
	}
	return last
}

// Successors returns the blocks the terminator can branch to.
func (b *BasicBlock) Successors() []*BasicBlock {
	term := b.Terminator()
	if term == nil {
		return nil
	}
	switch term.Op {
	case OpBr:
		return []*BasicBlock{term.Then}
	case OpCondBr:
		return []*BasicBlock{term.Then, term.Else}
	}
	return nil
}

// Function is an IR function. A function with no blocks is a declaration
// (an extern or the malloc runtime).
type Function struct {
	Nam    string
	Ty     *FuncType
	Params []*Argument
	Blocks []*BasicBlock
}

func (f *Function) Type() Type { return NewPointerType(f.Ty) }

// IsDeclaration reports whether the function has no body.
func (f *Function) IsDeclaration() bool { return len(f.Blocks) == 0 }

// NewBlock appends a new basic block with the given label to the function.
func (f *Function) NewBlock(name string) *BasicBlock {
	bb := &BasicBlock{Nam: name, Parent: f}
	f.Blocks = append(f.Blocks, bb)
	return bb
}

// Module is a collection of functions plus a named data layout.
type Module struct {
	Nam        string
	DataLayout string
	Funcs      []*Function
}

// NewModule creates an empty module.
func NewModule(name string) *Module {
	return &Module{Nam: name}
}

// Func returns the named function, or nil.
func (m *Module) Func(name string) *Function {
	for _, f := range m.Funcs {
		if f.Nam == name {
			return f
		}
	}
	return nil
}

// NewFunc creates a function with the given name and type and adds it to the
// module. Arguments are named later by the code generator.
func (m *Module) NewFunc(name string, ty *FuncType) *Function {
	f := &Function{Nam: name, Ty: ty}
	for i, p := range ty.Params {
		f.Params = append(f.Params, &Argument{Nam: fmt.Sprintf("arg%d", i), Ty: p, Index: i})
	}
	m.Funcs = append(m.Funcs, f)
	return f
}

// MallocName is the name of the runtime allocation function declared once
// per module as i8* malloc(i64).
const MallocName = "malloc"

// DeclareMalloc returns the module's malloc declaration, creating it on
// first use.
func (m *Module) DeclareMalloc() *Function {
	if f := m.Func(MallocName); f != nil {
		return f
	}
	return m.NewFunc(MallocName, NewFuncType(NewPointerType(int8Type), int64Type))
}
