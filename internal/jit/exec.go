package jit

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/igfraga/go-conflake/internal/ir"
)

// word is a runtime value: exactly one field is meaningful, according to the
// IR type of the value it materializes.
type word struct {
	f float64
	i int64
	b bool
	p pointer
}

// pointer is a typed address into a heap allocation.
type pointer struct {
	buf []byte
	off int64
}

// machine evaluates IR functions of one resident module. Call instructions
// into defined functions run their bodies; calls into declarations other
// than malloc resolve against the session's host externs.
type machine struct {
	session *Session
	module  *ir.Module
}

// run executes fn with the given arguments and returns the value of its ret
// instruction.
func (m *machine) run(fn *ir.Function, args []word) (word, error) {
	if fn.IsDeclaration() {
		return word{}, &Err{Message: fmt.Sprintf("cannot execute declaration %v", fn.Nam)}
	}
	if len(args) != len(fn.Params) {
		return word{}, &Err{
			Message: fmt.Sprintf("Incorrect # arguments passed %v vs %v", len(fn.Params), len(args)),
		}
	}

	env := make(map[ir.Value]word)
	for i, p := range fn.Params {
		env[p] = args[i]
	}

	block := fn.Blocks[0]
	var prev *ir.BasicBlock
	for {
		next, ret, done, err := m.runBlock(block, prev, env)
		if err != nil {
			return word{}, err
		}
		if done {
			return ret, nil
		}
		prev, block = block, next
	}
}

// runBlock executes one basic block. It returns either the successor block
// or, when the terminator is a ret, the final value.
func (m *machine) runBlock(bb *ir.BasicBlock, prev *ir.BasicBlock, env map[ir.Value]word) (*ir.BasicBlock, word, bool, error) {
	for _, in := range bb.Instrs {
		switch in.Op {
		case ir.OpPhi:
			w, err := m.phiValue(in, prev, env)
			if err != nil {
				return nil, word{}, false, err
			}
			env[in] = w

		case ir.OpBr:
			return in.Then, word{}, false, nil

		case ir.OpCondBr:
			cond, err := m.valueOf(in.Operands[0], env)
			if err != nil {
				return nil, word{}, false, err
			}
			if cond.b {
				return in.Then, word{}, false, nil
			}
			return in.Else, word{}, false, nil

		case ir.OpRet:
			w, err := m.valueOf(in.Operands[0], env)
			if err != nil {
				return nil, word{}, false, err
			}
			return nil, w, true, nil

		default:
			w, err := m.evalInstr(in, env)
			if err != nil {
				return nil, word{}, false, err
			}
			env[in] = w
		}
	}
	return nil, word{}, false, &Err{Message: fmt.Sprintf("block %v has no terminator", bb.Nam)}
}

func (m *machine) phiValue(phi *ir.Instr, prev *ir.BasicBlock, env map[ir.Value]word) (word, error) {
	for _, inc := range phi.Incomings {
		if inc.Block == prev {
			return m.valueOf(inc.Value, env)
		}
	}
	return word{}, &Err{Message: "phi has no incoming for predecessor"}
}

func (m *machine) valueOf(v ir.Value, env map[ir.Value]word) (word, error) {
	switch val := v.(type) {
	case *ir.ConstFloat:
		return word{f: val.V}, nil
	case *ir.ConstInt:
		if sc, ok := val.Ty.(*ir.Scalar); ok && sc.Kind == ir.Int1 {
			return word{b: val.V != 0}, nil
		}
		return word{i: val.V}, nil
	}
	if w, ok := env[v]; ok {
		return w, nil
	}
	return word{}, &Err{Message: "use of an undefined value"}
}

func (m *machine) evalInstr(in *ir.Instr, env map[ir.Value]word) (word, error) {
	operands := make([]word, len(in.Operands))
	for i, op := range in.Operands {
		w, err := m.valueOf(op, env)
		if err != nil {
			return word{}, err
		}
		operands[i] = w
	}

	switch in.Op {
	case ir.OpFAdd:
		return word{f: operands[0].f + operands[1].f}, nil
	case ir.OpFSub:
		return word{f: operands[0].f - operands[1].f}, nil
	case ir.OpFMul:
		return word{f: operands[0].f * operands[1].f}, nil
	case ir.OpAdd:
		return word{i: operands[0].i + operands[1].i}, nil
	case ir.OpSub:
		return word{i: operands[0].i - operands[1].i}, nil
	case ir.OpMul:
		return word{i: operands[0].i * operands[1].i}, nil
	case ir.OpFCmpULT:
		return word{b: operands[0].f < operands[1].f}, nil
	case ir.OpFCmpUGT:
		return word{b: operands[0].f > operands[1].f}, nil
	case ir.OpICmpSLT:
		return word{b: operands[0].i < operands[1].i}, nil
	case ir.OpICmpSGT:
		return word{b: operands[0].i > operands[1].i}, nil
	case ir.OpAnd:
		return word{b: operands[0].b && operands[1].b}, nil
	case ir.OpOr:
		return word{b: operands[0].b || operands[1].b}, nil

	case ir.OpBitCast:
		return operands[0], nil

	case ir.OpGEP:
		elem := in.Operands[0].Type().(*ir.PointerType).Elem
		p := operands[0].p
		p.off += operands[1].i * ir.SizeOf(elem)
		return word{p: p}, nil

	case ir.OpLoad:
		return m.load(in.Ty, operands[0].p)

	case ir.OpStore:
		return word{}, m.store(in.Operands[0].Type(), operands[0], operands[1].p)

	case ir.OpCall:
		return m.call(in.Callee, operands)
	}

	return word{}, &Err{Message: fmt.Sprintf("cannot evaluate instruction %v", in.Op.Name())}
}

func (m *machine) call(callee *ir.Function, args []word) (word, error) {
	if callee.Nam == ir.MallocName {
		return word{p: pointer{buf: make([]byte, args[0].i)}}, nil
	}
	if !callee.IsDeclaration() {
		return m.run(callee, args)
	}

	host, ok := m.session.externs[callee.Nam]
	if !ok {
		return word{}, &Err{Message: fmt.Sprintf("Could not find symbol: %v", callee.Nam)}
	}
	if host.Arity != len(args) {
		return word{}, &Err{
			Message: fmt.Sprintf("Incorrect # arguments passed %v vs %v", host.Arity, len(args)),
		}
	}
	floats := make([]float64, len(args))
	for i, a := range args {
		floats[i] = a.f
	}
	return word{f: host.Fn(floats)}, nil
}

func (m *machine) load(ty ir.Type, p pointer) (word, error) {
	if p.buf == nil {
		return word{}, &Err{Message: "load through a null pointer"}
	}
	sc, ok := ty.(*ir.Scalar)
	if !ok {
		return word{}, &Err{Message: fmt.Sprintf("cannot load value of type %v", ty)}
	}
	switch sc.Kind {
	case ir.Double:
		bits := binary.LittleEndian.Uint64(p.buf[p.off:])
		return word{f: math.Float64frombits(bits)}, nil
	case ir.Int64:
		return word{i: int64(binary.LittleEndian.Uint64(p.buf[p.off:]))}, nil
	case ir.Int1, ir.Int8:
		return word{b: p.buf[p.off] != 0, i: int64(p.buf[p.off])}, nil
	}
	return word{}, &Err{Message: fmt.Sprintf("cannot load value of type %v", ty)}
}

func (m *machine) store(ty ir.Type, w word, p pointer) error {
	if p.buf == nil {
		return &Err{Message: "store through a null pointer"}
	}
	sc, ok := ty.(*ir.Scalar)
	if !ok {
		return &Err{Message: fmt.Sprintf("cannot store value of type %v", ty)}
	}
	switch sc.Kind {
	case ir.Double:
		binary.LittleEndian.PutUint64(p.buf[p.off:], math.Float64bits(w.f))
		return nil
	case ir.Int64:
		binary.LittleEndian.PutUint64(p.buf[p.off:], uint64(w.i))
		return nil
	case ir.Int1, ir.Int8:
		var b byte
		if w.b || w.i != 0 {
			b = 1
		}
		p.buf[p.off] = b
		return nil
	}
	return &Err{Message: fmt.Sprintf("cannot store value of type %v", ty)}
}
