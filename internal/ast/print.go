package ast

import (
	"strconv"
	"strings"
)

// String renders the literal in source form.
func (l *RealLiteral) String() string {
	s := strconv.FormatFloat(l.Value, 'f', -1, 64)
	if !strings.ContainsAny(s, ".einf") {
		s += ".0"
	}
	return s
}

func (l *IntegerLiteral) String() string {
	return strconv.FormatInt(l.Value, 10) + "i"
}

func (l *BooleanLiteral) String() string {
	if l.Value {
		return "True"
	}
	return "False"
}

func (v *Var) String() string {
	if v.Subscript != nil {
		return v.Name + "[" + strconv.FormatInt(*v.Subscript, 10) + "]"
	}
	return v.Name
}

func (l *ListExpr) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, e := range l.Elems {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(e.String())
	}
	sb.WriteByte(']')
	return sb.String()
}

func (b *BinaryExpr) String() string {
	return "(" + b.Lhs.String() + " " + string(b.Op) + " " + b.Rhs.String() + ")"
}

func (c *Call) String() string {
	var sb strings.Builder
	sb.WriteString(c.Callee)
	sb.WriteByte('(')
	for i, a := range c.Args {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(a.String())
	}
	sb.WriteByte(')')
	return sb.String()
}

// String renders the type annotation in source form, e.g. list<integer>.
func (t *TypeDesc) String() string {
	if len(t.TemplateArgs) == 0 {
		return t.Name
	}
	parts := make([]string, len(t.TemplateArgs))
	for i, a := range t.TemplateArgs {
		parts[i] = a.String()
	}
	return t.Name + "<" + strings.Join(parts, ", ") + ">"
}

// String renders the prototype in source form.
func (s *Signature) String() string {
	var sb strings.Builder
	sb.WriteString(s.Name)
	sb.WriteByte('(')
	for i, a := range s.Args {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(a.Type.String())
		sb.WriteByte(' ')
		sb.WriteString(a.Name)
	}
	sb.WriteByte(')')
	if s.RetType != nil {
		sb.WriteString(":")
		sb.WriteString(s.RetType.String())
	}
	return sb.String()
}

// Print renders a parsed top-level, one unit per line. A bare top-level
// expression prints as its body rather than as the synthesized wrapper, so
// printed output re-parses to a structurally equal top-level.
func Print(top TopLevel) string {
	var sb strings.Builder
	for _, unit := range top {
		switch u := unit.(type) {
		case *Signature:
			sb.WriteString("extern ")
			sb.WriteString(u.String())
			sb.WriteString(";\n")
		case *Function:
			if u.Sig.Name == AnonExprName {
				sb.WriteString(u.Body.String())
				sb.WriteString(";\n")
				continue
			}
			sb.WriteString("def ")
			sb.WriteString(u.Sig.String())
			sb.WriteByte(' ')
			sb.WriteString(u.Body.String())
			sb.WriteString(";\n")
		}
	}
	return sb.String()
}
