package ir

// Function-level optimization passes, run in the fixed order established by
// the pass manager: instruction combining, reassociation, global value
// numbering, CFG simplification.

// FunctionPass transforms a single function and reports whether it changed
// anything.
type FunctionPass interface {
	Name() string
	Run(f *Function) bool
}

// FunctionPassManager runs a fixed pipeline of function passes.
type FunctionPassManager struct {
	passes []FunctionPass
}

// NewFunctionPassManager returns the standard pipeline.
func NewFunctionPassManager() *FunctionPassManager {
	return &FunctionPassManager{
		passes: []FunctionPass{
			instCombine{},
			reassociate{},
			gvn{},
			simplifyCFG{},
		},
	}
}

// Run applies the pipeline to a function. Declarations are left untouched.
func (pm *FunctionPassManager) Run(f *Function) {
	if f.IsDeclaration() {
		return
	}
	for _, p := range pm.passes {
		p.Run(f)
	}
}

// replaceAllUses rewrites every operand and phi incoming equal to old with
// new, across the whole function.
func replaceAllUses(f *Function, old, new Value) {
	for _, bb := range f.Blocks {
		for _, in := range bb.Instrs {
			for i, op := range in.Operands {
				if op == old {
					in.Operands[i] = new
				}
			}
			for i := range in.Incomings {
				if in.Incomings[i].Value == old {
					in.Incomings[i].Value = new
				}
			}
		}
	}
}

// isPure reports whether the instruction has no side effects and can be
// removed when unused or deduplicated.
func isPure(in *Instr) bool {
	switch in.Op {
	case OpFAdd, OpFSub, OpFMul, OpAdd, OpSub, OpMul,
		OpFCmpULT, OpFCmpUGT, OpICmpSLT, OpICmpSGT,
		OpAnd, OpOr, OpGEP, OpBitCast:
		return true
	}
	return false
}

// removeDead erases pure instructions with no remaining uses.
func removeDead(f *Function) bool {
	used := map[Value]bool{}
	for _, bb := range f.Blocks {
		for _, in := range bb.Instrs {
			for _, op := range in.Operands {
				used[op] = true
			}
			for _, inc := range in.Incomings {
				used[inc.Value] = true
			}
		}
	}
	changed := false
	for _, bb := range f.Blocks {
		kept := bb.Instrs[:0]
		for _, in := range bb.Instrs {
			if isPure(in) && !used[in] {
				changed = true
				continue
			}
			kept = append(kept, in)
		}
		bb.Instrs = kept
	}
	return changed
}

// ============================================================================
// Instruction combining
// ============================================================================

// instCombine folds constant expressions and trivial integer identities.
type instCombine struct{}

func (instCombine) Name() string { return "instcombine" }

func (instCombine) Run(f *Function) bool {
	changed := false
	for _, bb := range f.Blocks {
		for _, in := range bb.Instrs {
			if folded := foldInstr(in); folded != nil {
				replaceAllUses(f, in, folded)
				changed = true
			}
		}
	}
	if removeDead(f) {
		changed = true
	}
	return changed
}

func constIntOf(v Value) (*ConstInt, bool) {
	c, ok := v.(*ConstInt)
	return c, ok
}

func constFloatOf(v Value) (*ConstFloat, bool) {
	c, ok := v.(*ConstFloat)
	return c, ok
}

// foldInstr returns a constant or simpler value equivalent to in, or nil.
// Float folds only happen when both operands are constants; no fast-math
// identities.
func foldInstr(in *Instr) Value {
	if len(in.Operands) != 2 {
		return nil
	}
	lhs, rhs := in.Operands[0], in.Operands[1]

	if lc, ok := constIntOf(lhs); ok {
		if rc, ok := constIntOf(rhs); ok {
			return foldIntPair(in.Op, lc, rc)
		}
	}
	if lc, ok := constFloatOf(lhs); ok {
		if rc, ok := constFloatOf(rhs); ok {
			return foldFloatPair(in.Op, lc, rc)
		}
	}

	// Integer identities.
	if rc, ok := constIntOf(rhs); ok && TypesEqual(in.Ty, Int64Type()) {
		switch {
		case in.Op == OpAdd && rc.V == 0, in.Op == OpSub && rc.V == 0, in.Op == OpMul && rc.V == 1:
			return lhs
		case in.Op == OpMul && rc.V == 0:
			return &ConstInt{Ty: Int64Type(), V: 0}
		}
	}
	if lc, ok := constIntOf(lhs); ok && TypesEqual(in.Ty, Int64Type()) {
		switch {
		case in.Op == OpAdd && lc.V == 0, in.Op == OpMul && lc.V == 1:
			return rhs
		case in.Op == OpMul && lc.V == 0:
			return &ConstInt{Ty: Int64Type(), V: 0}
		}
	}
	return nil
}

func boolConst(b bool) *ConstInt {
	if b {
		return True()
	}
	return False()
}

func foldIntPair(op Opcode, l, r *ConstInt) Value {
	switch op {
	case OpAdd:
		return &ConstInt{Ty: Int64Type(), V: l.V + r.V}
	case OpSub:
		return &ConstInt{Ty: Int64Type(), V: l.V - r.V}
	case OpMul:
		return &ConstInt{Ty: Int64Type(), V: l.V * r.V}
	case OpICmpSLT:
		return boolConst(l.V < r.V)
	case OpICmpSGT:
		return boolConst(l.V > r.V)
	case OpAnd:
		return &ConstInt{Ty: l.Ty, V: l.V & r.V}
	case OpOr:
		return &ConstInt{Ty: l.Ty, V: l.V | r.V}
	}
	return nil
}

func foldFloatPair(op Opcode, l, r *ConstFloat) Value {
	switch op {
	case OpFAdd:
		return &ConstFloat{V: l.V + r.V}
	case OpFSub:
		return &ConstFloat{V: l.V - r.V}
	case OpFMul:
		return &ConstFloat{V: l.V * r.V}
	case OpFCmpULT:
		return boolConst(l.V < r.V)
	case OpFCmpUGT:
		return boolConst(l.V > r.V)
	}
	return nil
}

// ============================================================================
// Reassociation
// ============================================================================

// reassociate canonicalizes commutative integer expressions: constants move
// to the right operand, and constant tails of chained same-opcode
// operations fold together.
type reassociate struct{}

func (reassociate) Name() string { return "reassociate" }

func isCommutative(op Opcode) bool {
	switch op {
	case OpAdd, OpMul, OpFAdd, OpFMul, OpAnd, OpOr:
		return true
	}
	return false
}

func (reassociate) Run(f *Function) bool {
	changed := false
	for _, bb := range f.Blocks {
		for _, in := range bb.Instrs {
			if !isCommutative(in.Op) || len(in.Operands) != 2 {
				continue
			}
			lhs, rhs := in.Operands[0], in.Operands[1]
			if _, ok := constIntOf(lhs); ok {
				if _, isConst := constIntOf(rhs); !isConst {
					in.Operands[0], in.Operands[1] = rhs, lhs
					changed = true
				}
			}
			// (x op c1) op c2 -> x op (c1 op c2) for integer add/mul
			if (in.Op == OpAdd || in.Op == OpMul) && foldChain(in) {
				changed = true
			}
		}
	}
	return changed
}

func foldChain(in *Instr) bool {
	rc, ok := constIntOf(in.Operands[1])
	if !ok {
		return false
	}
	inner, ok := in.Operands[0].(*Instr)
	if !ok || inner.Op != in.Op || len(inner.Operands) != 2 {
		return false
	}
	ic, ok := constIntOf(inner.Operands[1])
	if !ok {
		return false
	}
	var v int64
	if in.Op == OpAdd {
		v = ic.V + rc.V
	} else {
		v = ic.V * rc.V
	}
	in.Operands[0] = inner.Operands[0]
	in.Operands[1] = &ConstInt{Ty: Int64Type(), V: v}
	return true
}

// ============================================================================
// Global value numbering
// ============================================================================

// gvn eliminates redundant pure instructions with identical opcode and
// operands within a block.
type gvn struct{}

func (gvn) Name() string { return "gvn" }

type gvnKey struct {
	op Opcode
	a  Value
	b  Value
}

func (gvn) Run(f *Function) bool {
	changed := false
	for _, bb := range f.Blocks {
		seen := map[gvnKey]*Instr{}
		for _, in := range bb.Instrs {
			if !isPure(in) || len(in.Operands) != 2 {
				continue
			}
			key := gvnKey{op: in.Op, a: in.Operands[0], b: in.Operands[1]}
			if prev, ok := seen[key]; ok {
				replaceAllUses(f, in, prev)
				changed = true
				continue
			}
			seen[key] = in
			if isCommutative(in.Op) {
				seen[gvnKey{op: in.Op, a: in.Operands[1], b: in.Operands[0]}] = in
			}
		}
	}
	if removeDead(f) {
		changed = true
	}
	return changed
}

// ============================================================================
// CFG simplification
// ============================================================================

// simplifyCFG threads branches on constant conditions and removes
// unreachable blocks, fixing up phi incomings from removed predecessors.
type simplifyCFG struct{}

func (simplifyCFG) Name() string { return "simplifycfg" }

func (simplifyCFG) Run(f *Function) bool {
	changed := false

	// Constant conditional branches become unconditional.
	for _, bb := range f.Blocks {
		term := bb.Terminator()
		if term == nil || term.Op != OpCondBr {
			continue
		}
		c, ok := constIntOf(term.Operands[0])
		if !ok {
			continue
		}
		dead := term.Else
		target := term.Then
		if c.V == 0 {
			dead, target = target, dead
		}
		term.Op = OpBr
		term.Operands = nil
		term.Then = target
		term.Else = nil
		removePhiIncoming(dead, bb)
		changed = true
	}

	// Drop blocks unreachable from entry.
	if len(f.Blocks) > 0 {
		reachable := map[*BasicBlock]bool{}
		var walk func(bb *BasicBlock)
		walk = func(bb *BasicBlock) {
			if reachable[bb] {
				return
			}
			reachable[bb] = true
			for _, s := range bb.Successors() {
				walk(s)
			}
		}
		walk(f.Blocks[0])

		kept := f.Blocks[:0]
		for _, bb := range f.Blocks {
			if reachable[bb] {
				kept = append(kept, bb)
				continue
			}
			for _, s := range bb.Successors() {
				removePhiIncoming(s, bb)
			}
			changed = true
		}
		f.Blocks = kept
	}

	// Single-incoming phis collapse to their value.
	for _, bb := range f.Blocks {
		for _, in := range bb.Instrs {
			if in.Op == OpPhi && len(in.Incomings) == 1 {
				replaceAllUses(f, in, in.Incomings[0].Value)
				changed = true
			}
		}
	}
	if removePhis(f) {
		changed = true
	}
	return changed
}

// removePhiIncoming deletes incomings from pred in every phi of bb.
func removePhiIncoming(bb *BasicBlock, pred *BasicBlock) {
	for _, in := range bb.Instrs {
		if in.Op != OpPhi {
			continue
		}
		kept := in.Incomings[:0]
		for _, inc := range in.Incomings {
			if inc.Block != pred {
				kept = append(kept, inc)
			}
		}
		in.Incomings = kept
	}
}

// removePhis erases phi nodes with no remaining uses or no incomings.
func removePhis(f *Function) bool {
	used := map[Value]bool{}
	for _, bb := range f.Blocks {
		for _, in := range bb.Instrs {
			for _, op := range in.Operands {
				used[op] = true
			}
			for _, inc := range in.Incomings {
				used[inc.Value] = true
			}
		}
	}
	changed := false
	for _, bb := range f.Blocks {
		kept := bb.Instrs[:0]
		for _, in := range bb.Instrs {
			if in.Op == OpPhi && (!used[in] || len(in.Incomings) == 0) {
				changed = true
				continue
			}
			kept = append(kept, in)
		}
		bb.Instrs = kept
	}
	return changed
}
