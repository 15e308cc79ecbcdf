// Package ast defines the abstract syntax tree for Conflake programs.
//
// Expression nodes are immutable once built and carry a dense, creation-
// ordered ID assigned by the parser. Downstream stages key per-expression
// metadata (notably the resolved type of every node) on the ID instead of on
// node pointers, so the tree can be shared freely.
package ast

// ExprID identifies an expression node. IDs are assigned by the parser from
// a per-parse counter starting at zero, so they are dense and unique within
// a single parsed top-level.
type ExprID int64

// Expr is the interface implemented by all expression nodes.
type Expr interface {
	// ID returns the node's parse-unique identifier.
	ID() ExprID

	// String returns the source-like rendering of the expression.
	String() string

	exprNode()
}

// expr provides the ID plumbing shared by all expression nodes. Nodes are
// built through the New* constructors, which is where the parser stamps the
// ID; there is no way to change an ID afterwards.
type expr struct {
	id ExprID
}

func (e expr) ID() ExprID { return e.id }
func (expr) exprNode()    {}

// RealLiteral is a real (float64) literal expression.
type RealLiteral struct {
	expr
	Value float64
}

// IntegerLiteral is an integer (int64) literal expression. Integer
// arithmetic wraps two's-complement.
type IntegerLiteral struct {
	expr
	Value int64
}

// BooleanLiteral is a True/False literal expression.
type BooleanLiteral struct {
	expr
	Value bool
}

// Var is a variable reference, optionally subscripted: a or a[0].
type Var struct {
	expr
	Name      string
	Subscript *int64
}

// ListExpr is a list literal: [e0 e1 e2]. Elements are juxtaposed with no
// separators.
type ListExpr struct {
	expr
	Elems []Expr
}

// BinaryExpr is a binary operator application: lhs op rhs.
type BinaryExpr struct {
	expr
	Op  byte
	Lhs Expr
	Rhs Expr
}

// Call is a named call: callee(arg, ...). Besides user functions this form
// also carries the builtin intrinsics if, and, or.
type Call struct {
	expr
	Callee string
	Args   []Expr
}

// NewRealLiteral builds a real literal node.
func NewRealLiteral(id ExprID, v float64) *RealLiteral {
	return &RealLiteral{expr: expr{id: id}, Value: v}
}

// NewIntegerLiteral builds an integer literal node.
func NewIntegerLiteral(id ExprID, v int64) *IntegerLiteral {
	return &IntegerLiteral{expr: expr{id: id}, Value: v}
}

// NewBooleanLiteral builds a boolean literal node.
func NewBooleanLiteral(id ExprID, v bool) *BooleanLiteral {
	return &BooleanLiteral{expr: expr{id: id}, Value: v}
}

// NewVar builds a variable reference; subscript may be nil.
func NewVar(id ExprID, name string, subscript *int64) *Var {
	return &Var{expr: expr{id: id}, Name: name, Subscript: subscript}
}

// NewListExpr builds a list literal node.
func NewListExpr(id ExprID, elems []Expr) *ListExpr {
	return &ListExpr{expr: expr{id: id}, Elems: elems}
}

// NewBinaryExpr builds a binary operator node.
func NewBinaryExpr(id ExprID, op byte, lhs, rhs Expr) *BinaryExpr {
	return &BinaryExpr{expr: expr{id: id}, Op: op, Lhs: lhs, Rhs: rhs}
}

// NewCall builds a call node.
func NewCall(id ExprID, callee string, args []Expr) *Call {
	return &Call{expr: expr{id: id}, Callee: callee, Args: args}
}

// TypeDesc is the surface syntax of a type annotation, e.g. real or
// list<integer>. The semantic stage resolves it to a types.Type.
type TypeDesc struct {
	Name         string
	TemplateArgs []*TypeDesc
}

// Arg is a typed prototype argument.
type Arg struct {
	Type *TypeDesc
	Name string
}

// Signature is a function prototype: name, typed arguments and an optional
// declared return type. RetType is required for externs and optional for
// definitions (then inferred by the semantic stage).
type Signature struct {
	Name    string
	Args    []Arg
	RetType *TypeDesc
}

// Function is a definition: a prototype plus a single body expression.
type Function struct {
	Sig  *Signature
	Body Expr
}

// AnonExprName is the name given to the function synthesized around a bare
// top-level expression.
const AnonExprName = "__anon_expr"

// TopLevelUnit is either an extern *Signature or a *Function definition.
type TopLevelUnit interface {
	topLevelUnit()
}

func (*Signature) topLevelUnit() {}
func (*Function) topLevelUnit()  {}

// TopLevel is an ordered sequence of top-level units.
type TopLevel []TopLevelUnit
