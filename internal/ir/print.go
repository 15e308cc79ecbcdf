package ir

import (
	"fmt"
	"strings"
)

// String renders the module as LLVM-style textual IR. Local value names are
// uniquified per function the way LLVM does on printing.
func (m *Module) String() string {
	var sb strings.Builder
	if m.DataLayout != "" {
		fmt.Fprintf(&sb, "target datalayout = %q\n\n", m.DataLayout)
	}
	for i, f := range m.Funcs {
		if i > 0 {
			sb.WriteByte('\n')
		}
		writeFunc(&sb, f)
	}
	return sb.String()
}

type namer struct {
	names map[Value]string
	used  map[string]int
}

func newNamer() *namer {
	return &namer{names: map[Value]string{}, used: map[string]int{}}
}

func (n *namer) name(v Value, hint string) string {
	if s, ok := n.names[v]; ok {
		return s
	}
	if hint == "" {
		hint = "tmp"
	}
	s := hint
	if c, ok := n.used[hint]; ok {
		s = fmt.Sprintf("%s%d", hint, c)
	}
	n.used[hint]++
	n.names[v] = s
	return s
}

func (n *namer) operand(v Value) string {
	switch val := v.(type) {
	case *ConstFloat:
		return fmt.Sprintf("double %e", val.V)
	case *ConstInt:
		return fmt.Sprintf("%s %d", val.Ty, val.V)
	case *Argument:
		return fmt.Sprintf("%s %%%s", val.Ty, val.Nam)
	case *Function:
		return fmt.Sprintf("%s @%s", val.Type(), val.Nam)
	case *Instr:
		return fmt.Sprintf("%s %%%s", val.Ty, n.names[val])
	}
	return "<?>"
}

func writeFunc(sb *strings.Builder, f *Function) {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = fmt.Sprintf("%s %%%s", p.Ty, p.Nam)
	}
	if f.IsDeclaration() {
		fmt.Fprintf(sb, "declare %s @%s(%s)\n", f.Ty.Ret, f.Nam, strings.Join(params, ", "))
		return
	}

	n := newNamer()
	// Pre-name everything so forward references (phi incomings) resolve.
	for _, bb := range f.Blocks {
		for _, in := range bb.Instrs {
			if in.Nam != "" && in.Op != OpStore && !in.IsTerminator() {
				n.name(in, in.Nam)
			}
		}
	}

	fmt.Fprintf(sb, "define %s @%s(%s) {\n", f.Ty.Ret, f.Nam, strings.Join(params, ", "))
	for _, bb := range f.Blocks {
		fmt.Fprintf(sb, "%s:\n", bb.Nam)
		for _, in := range bb.Instrs {
			writeInstr(sb, n, in)
		}
	}
	sb.WriteString("}\n")
}

func writeInstr(sb *strings.Builder, n *namer, in *Instr) {
	sb.WriteString("  ")
	switch in.Op {
	case OpStore:
		fmt.Fprintf(sb, "store %s, %s\n", n.operand(in.Operands[0]), n.operand(in.Operands[1]))
	case OpBr:
		fmt.Fprintf(sb, "br label %%%s\n", in.Then.Nam)
	case OpCondBr:
		fmt.Fprintf(sb, "br %s, label %%%s, label %%%s\n",
			n.operand(in.Operands[0]), in.Then.Nam, in.Else.Nam)
	case OpRet:
		fmt.Fprintf(sb, "ret %s\n", n.operand(in.Operands[0]))
	case OpCall:
		args := make([]string, len(in.Operands))
		for i, a := range in.Operands {
			args[i] = n.operand(a)
		}
		fmt.Fprintf(sb, "%%%s = call %s @%s(%s)\n",
			n.names[in], in.Ty, in.Callee.Nam, strings.Join(args, ", "))
	case OpPhi:
		incs := make([]string, len(in.Incomings))
		for i, inc := range in.Incomings {
			val := n.operand(inc.Value)
			// phi renders bare values without the type prefix per pair
			if idx := strings.IndexByte(val, ' '); idx >= 0 {
				val = val[idx+1:]
			}
			incs[i] = fmt.Sprintf("[ %s, %%%s ]", val, inc.Block.Nam)
		}
		fmt.Fprintf(sb, "%%%s = phi %s %s\n", n.names[in], in.Ty, strings.Join(incs, ", "))
	case OpGEP:
		base := in.Operands[0].Type().(*PointerType)
		fmt.Fprintf(sb, "%%%s = getelementptr %s, %s, %s\n",
			n.names[in], base.Elem, n.operand(in.Operands[0]), n.operand(in.Operands[1]))
	case OpLoad:
		fmt.Fprintf(sb, "%%%s = load %s, %s\n", n.names[in], in.Ty, n.operand(in.Operands[0]))
	case OpBitCast:
		fmt.Fprintf(sb, "%%%s = bitcast %s to %s\n", n.names[in], n.operand(in.Operands[0]), in.Ty)
	default:
		ops := make([]string, len(in.Operands))
		for i, o := range in.Operands {
			val := n.operand(o)
			if i > 0 {
				// first operand keeps its type, later ones render bare
				if idx := strings.IndexByte(val, ' '); idx >= 0 {
					val = val[idx+1:]
				}
			}
			ops[i] = val
		}
		fmt.Fprintf(sb, "%%%s = %s %s\n", n.names[in], in.Op.Name(), strings.Join(ops, ", "))
	}
}
