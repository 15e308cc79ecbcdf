package ast

// EqualExpr reports structural equality of two expressions, ignoring IDs.
func EqualExpr(a, b Expr) bool {
	switch an := a.(type) {
	case *RealLiteral:
		bn, ok := b.(*RealLiteral)
		return ok && an.Value == bn.Value
	case *IntegerLiteral:
		bn, ok := b.(*IntegerLiteral)
		return ok && an.Value == bn.Value
	case *BooleanLiteral:
		bn, ok := b.(*BooleanLiteral)
		return ok && an.Value == bn.Value
	case *Var:
		bn, ok := b.(*Var)
		if !ok || an.Name != bn.Name {
			return false
		}
		if (an.Subscript == nil) != (bn.Subscript == nil) {
			return false
		}
		return an.Subscript == nil || *an.Subscript == *bn.Subscript
	case *ListExpr:
		bn, ok := b.(*ListExpr)
		if !ok || len(an.Elems) != len(bn.Elems) {
			return false
		}
		for i := range an.Elems {
			if !EqualExpr(an.Elems[i], bn.Elems[i]) {
				return false
			}
		}
		return true
	case *BinaryExpr:
		bn, ok := b.(*BinaryExpr)
		return ok && an.Op == bn.Op && EqualExpr(an.Lhs, bn.Lhs) && EqualExpr(an.Rhs, bn.Rhs)
	case *Call:
		bn, ok := b.(*Call)
		if !ok || an.Callee != bn.Callee || len(an.Args) != len(bn.Args) {
			return false
		}
		for i := range an.Args {
			if !EqualExpr(an.Args[i], bn.Args[i]) {
				return false
			}
		}
		return true
	}
	return false
}

func equalTypeDesc(a, b *TypeDesc) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	if a == nil {
		return true
	}
	if a.Name != b.Name || len(a.TemplateArgs) != len(b.TemplateArgs) {
		return false
	}
	for i := range a.TemplateArgs {
		if !equalTypeDesc(a.TemplateArgs[i], b.TemplateArgs[i]) {
			return false
		}
	}
	return true
}

// EqualSignature reports structural equality of two prototypes.
func EqualSignature(a, b *Signature) bool {
	if a.Name != b.Name || len(a.Args) != len(b.Args) {
		return false
	}
	for i := range a.Args {
		if a.Args[i].Name != b.Args[i].Name || !equalTypeDesc(a.Args[i].Type, b.Args[i].Type) {
			return false
		}
	}
	return equalTypeDesc(a.RetType, b.RetType)
}

// EqualTopLevel reports structural equality of two parsed top-levels,
// ignoring expression IDs.
func EqualTopLevel(a, b TopLevel) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		switch au := a[i].(type) {
		case *Signature:
			bu, ok := b[i].(*Signature)
			if !ok || !EqualSignature(au, bu) {
				return false
			}
		case *Function:
			bu, ok := b[i].(*Function)
			if !ok || !EqualSignature(au.Sig, bu.Sig) || !EqualExpr(au.Body, bu.Body) {
				return false
			}
		}
	}
	return true
}
