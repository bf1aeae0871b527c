package ast

// Expr is implemented by every expression node.
type Expr interface {
	Node
	exprNode()
}

// Stmt is implemented by every statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Identifier is a reference to a named declaration.
type Identifier struct {
	ID    NodeID
	Name  string
	Annot Annotation
}

// MemberAccess is a qualified reference, e.g. C.f, super.f, mod.free, x.helper.
type MemberAccess struct {
	ID     NodeID
	Expr   Expr
	Member string
	Annot  Annotation
}

// FunctionCall applies a callee expression to arguments.
type FunctionCall struct {
	ID    NodeID
	Func  Expr
	Args  []Expr
	Annot Annotation
}

// NewExpr instantiates a contract (or allocates a dynamic array; only the
// contract case carries a Contract in its annotation).
type NewExpr struct {
	ID       NodeID
	TypeName string
	Annot    Annotation
}

// BinaryExpr is any binary operation; the operator is irrelevant here.
type BinaryExpr struct {
	ID   NodeID
	X, Y Expr
}

// UnaryExpr is any unary operation.
type UnaryExpr struct {
	ID NodeID
	X  Expr
}

// IndexExpr is a subscript access.
type IndexExpr struct {
	ID    NodeID
	X     Expr
	Index Expr
}

// TupleExpr groups component expressions; components may be nil for skipped
// tuple slots.
type TupleExpr struct {
	ID    NodeID
	Elems []Expr
}

// Literal is any literal value; the builder never looks inside.
type Literal struct {
	ID    NodeID
	Value string
}

func (e *Identifier) ASTID() NodeID   { return e.ID }
func (e *MemberAccess) ASTID() NodeID { return e.ID }
func (e *FunctionCall) ASTID() NodeID { return e.ID }
func (e *NewExpr) ASTID() NodeID      { return e.ID }
func (e *BinaryExpr) ASTID() NodeID   { return e.ID }
func (e *UnaryExpr) ASTID() NodeID    { return e.ID }
func (e *IndexExpr) ASTID() NodeID    { return e.ID }
func (e *TupleExpr) ASTID() NodeID    { return e.ID }
func (e *Literal) ASTID() NodeID      { return e.ID }

func (*Identifier) exprNode()   {}
func (*MemberAccess) exprNode() {}
func (*FunctionCall) exprNode() {}
func (*NewExpr) exprNode()      {}
func (*BinaryExpr) exprNode()   {}
func (*UnaryExpr) exprNode()    {}
func (*IndexExpr) exprNode()    {}
func (*TupleExpr) exprNode()    {}
func (*Literal) exprNode()      {}

// ExprStmt evaluates an expression for effect.
type ExprStmt struct {
	ID NodeID
	X  Expr
}

// Block is a brace-delimited statement list.
type Block struct {
	ID    NodeID
	Stmts []Stmt
}

// If is a conditional; Else may be nil.
type If struct {
	ID   NodeID
	Cond Expr
	Then Stmt
	Else Stmt
}

// While is a pre-checked loop.
type While struct {
	ID   NodeID
	Cond Expr
	Body Stmt
}

// For is a three-clause loop; Init, Cond, and Post may each be nil.
type For struct {
	ID   NodeID
	Init Stmt
	Cond Expr
	Post Stmt
	Body Stmt
}

// Return carries zero or more result expressions.
type Return struct {
	ID      NodeID
	Results []Expr
}

// VarDeclStmt declares local variables; Value may be nil.
type VarDeclStmt struct {
	ID    NodeID
	Names []string
	Value Expr
}

// Emit raises an event. Events are not callables; only the argument
// expressions matter to analysis.
type Emit struct {
	ID   NodeID
	Call *FunctionCall
}

func (s *ExprStmt) ASTID() NodeID    { return s.ID }
func (s *Block) ASTID() NodeID       { return s.ID }
func (s *If) ASTID() NodeID          { return s.ID }
func (s *While) ASTID() NodeID       { return s.ID }
func (s *For) ASTID() NodeID         { return s.ID }
func (s *Return) ASTID() NodeID      { return s.ID }
func (s *VarDeclStmt) ASTID() NodeID { return s.ID }
func (s *Emit) ASTID() NodeID        { return s.ID }

func (*ExprStmt) stmtNode()    {}
func (*Block) stmtNode()       {}
func (*If) stmtNode()          {}
func (*While) stmtNode()       {}
func (*For) stmtNode()         {}
func (*Return) stmtNode()      {}
func (*VarDeclStmt) stmtNode() {}
func (*Emit) stmtNode()        {}
