package ir

import (
	"strings"
	"testing"
)

func testFunc() (*Module, *Function, *Builder) {
	m := NewModule("test")
	f := m.NewFunc("f", NewFuncType(Int64Type()))
	b := NewBuilder(m)
	b.SetInsertPoint(f.NewBlock("entry"))
	return m, f, b
}

func i64(v int64) *ConstInt { return &ConstInt{Ty: Int64Type(), V: v} }

// TestInstCombineFoldsConstants checks constant folding through the whole
// pipeline.
func TestInstCombineFoldsConstants(t *testing.T) {
	_, f, b := testFunc()
	sum := b.CreateAdd(i64(2), i64(3), "addtmp")
	b.CreateRet(sum)

	NewFunctionPassManager().Run(f)

	ret := f.Blocks[0].Terminator()
	if ret == nil || ret.Op != OpRet {
		t.Fatalf("missing ret")
	}
	c, ok := ret.Operands[0].(*ConstInt)
	if !ok || c.V != 5 {
		t.Fatalf("want ret i64 5, got %v", ret.Operands[0])
	}
	if len(f.Blocks[0].Instrs) != 1 {
		t.Errorf("folded instruction not removed: %d instrs", len(f.Blocks[0].Instrs))
	}
}

// TestInstCombineIdentities checks x+0 and x*1 elimination.
func TestInstCombineIdentities(t *testing.T) {
	_, f, b := testFunc()
	arg := &Argument{Nam: "x", Ty: Int64Type()}
	f.Params = append(f.Params, arg)

	sum := b.CreateAdd(arg, i64(0), "addtmp")
	prod := b.CreateMul(sum, i64(1), "multmp")
	b.CreateRet(prod)

	NewFunctionPassManager().Run(f)

	ret := f.Blocks[0].Terminator()
	if ret.Operands[0] != arg {
		t.Fatalf("want ret of the argument, got %v", ret.Operands[0])
	}
}

// TestGVNDeduplicates checks that identical pure instructions collapse.
func TestGVNDeduplicates(t *testing.T) {
	_, f, b := testFunc()
	arg := &Argument{Nam: "x", Ty: Int64Type()}
	f.Params = append(f.Params, arg)

	a := b.CreateMul(arg, arg, "multmp")
	c := b.CreateMul(arg, arg, "multmp")
	sum := b.CreateAdd(a, c, "addtmp")
	b.CreateRet(sum)

	gvn{}.Run(f)

	instrs := f.Blocks[0].Instrs
	muls := 0
	for _, in := range instrs {
		if in.Op == OpMul {
			muls++
		}
	}
	if muls != 1 {
		t.Errorf("want 1 mul after gvn, got %d", muls)
	}
	add := instrs[len(instrs)-2]
	if add.Op != OpAdd || add.Operands[0] != add.Operands[1] {
		t.Errorf("add operands not unified: %v", add)
	}
}

// TestSimplifyCFGConstantBranch checks branch threading and unreachable
// block removal, including phi fixups.
func TestSimplifyCFGConstantBranch(t *testing.T) {
	_, f, b := testFunc()
	thenBB := f.NewBlock("then")
	elseBB := f.NewBlock("else")
	mergeBB := f.NewBlock("ifcont")

	b.CreateCondBr(True(), thenBB, elseBB)

	b.SetInsertPoint(thenBB)
	b.CreateBr(mergeBB)
	b.SetInsertPoint(elseBB)
	b.CreateBr(mergeBB)

	b.SetInsertPoint(mergeBB)
	phi := b.CreatePHI(Int64Type(), "iftmp")
	phi.AddIncoming(i64(1), thenBB)
	phi.AddIncoming(i64(2), elseBB)
	b.CreateRet(phi)

	simplifyCFG{}.Run(f)

	for _, bb := range f.Blocks {
		if bb.Nam == "else" {
			t.Errorf("unreachable else block survived")
		}
	}
	ret := f.Blocks[len(f.Blocks)-1].Terminator()
	if ret == nil || ret.Op != OpRet {
		t.Fatalf("missing ret")
	}
	c, ok := ret.Operands[0].(*ConstInt)
	if !ok || c.V != 1 {
		t.Fatalf("want ret i64 1 after phi collapse, got %v", ret.Operands[0])
	}
}

// TestReassociateCanonicalizes checks constant placement and chain folding.
func TestReassociateCanonicalizes(t *testing.T) {
	_, f, b := testFunc()
	arg := &Argument{Nam: "x", Ty: Int64Type()}
	f.Params = append(f.Params, arg)

	inner := b.CreateAdd(arg, i64(2), "addtmp")
	outer := b.CreateAdd(i64(3), inner, "addtmp")
	b.CreateRet(outer)

	reassociate{}.Run(f)

	out := outer.(*Instr)
	if out.Operands[0] != arg {
		t.Fatalf("constant not moved to the right: %v", out.Operands)
	}
	c, ok := out.Operands[1].(*ConstInt)
	if !ok || c.V != 5 {
		t.Fatalf("chain constants not folded, got %v", out.Operands[1])
	}
}

// TestPrint smoke-checks the textual rendering.
func TestPrint(t *testing.T) {
	m, f, b := testFunc()
	arg := &Argument{Nam: "x", Ty: Int64Type()}
	f.Params = append(f.Params, arg)
	f.Ty.Params = append(f.Ty.Params, Int64Type())

	sum := b.CreateAdd(arg, i64(1), "addtmp")
	b.CreateRet(sum)

	text := m.String()
	for _, want := range []string{
		"define i64 @f(i64 %x)",
		"entry:",
		"%addtmp = add i64 %x, 1",
		"ret i64 %addtmp",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("module text missing %q:\n%s", want, text)
		}
	}
}
