package callgraph

import (
	"fmt"

	"github.com/sable-lang/sable/ast"
)

// builder holds the transient state of one Create call: the graph under
// construction, the memo of fully traversed callables, and the two pieces of
// traversal state — the current node and the dispatch sentinel of the
// current execution epoch.
type builder struct {
	contract *ast.Contract
	graph    *ContractCallGraph

	visited map[*ast.Callable]bool

	currentNode     Node
	currentDispatch Node
}

// Create builds the call graph of one fully type-checked contract.
//
// The construction epoch is walked first: base contracts in reverse
// linearization order, each base's state-variable initializers and
// base-constructor arguments, then its constructor, all rooted at
// CreationRoot with CreationDispatch as the active dispatch table. The
// runtime epoch then visits every externally reachable interface function as
// an independent root. Finally the creation dispatch set is merged into the
// runtime one and all external entry points (interface functions, fallback,
// receive) become direct callees of RuntimeDispatch.
//
// The input is assumed valid; a broken assumption (unresolved reference,
// lookup-strategy mismatch, double traversal) is an internal error and
// panics with a diagnostic naming the offending AST node.
func Create(contract *ast.Contract) *ContractCallGraph {
	b := &builder{
		contract: contract,
		graph:    newContractCallGraph(contract),
		visited:  make(map[*ast.Callable]bool),
	}

	// Phase 1: construction graph.
	b.currentNode = CreationRoot
	b.currentDispatch = CreationDispatch
	b.visitConstructor(contract, contract.Linearized[1:])
	b.currentNode = Unset
	b.currentDispatch = RuntimeDispatch

	// Phase 2: runtime graph. Interface functions are sorted by selector, so
	// root order is deterministic.
	for _, ifn := range contract.InterfaceFunctions {
		if ifn.Decl.Kind == ast.KindFunction && !b.visited[ifn.Decl] {
			b.visitCallable(ifn.Decl)
		}
	}
	for _, entry := range []*ast.Callable{contract.Fallback, contract.Receive} {
		if entry != nil && !b.visited[entry] {
			b.visitCallable(entry)
		}
	}

	// Phase 3: anything callable at construction time may have been stored
	// and called later, so the creation dispatch set is also runtime
	// dispatchable.
	for _, callee := range b.graph.Callees(CreationDispatch) {
		b.graph.add(RuntimeDispatch, callee)
	}

	// External entry points are always reachable at runtime, whether or not
	// any code calls them.
	for _, ifn := range contract.InterfaceFunctions {
		b.graph.add(RuntimeDispatch, CallableNode(ifn.Decl))
	}
	if contract.Fallback != nil {
		b.graph.add(RuntimeDispatch, CallableNode(contract.Fallback))
	}
	if contract.Receive != nil {
		b.graph.add(RuntimeDispatch, CallableNode(contract.Receive))
	}

	b.assert(!b.currentNode.Set(), contract.ID, "current node not reset after build")
	return b.graph
}

// visitConstructor walks the construction sequence of contract, after first
// recursing through the remaining linearization chain. bases holds the
// not-yet-visited part of the chain, so the most-base contract's
// initializers and constructor are reached first and each exactly once.
func (b *builder) visitConstructor(contract *ast.Contract, bases []*ast.Contract) {
	if len(bases) > 0 {
		b.visitConstructor(bases[0], bases[1:])
	}

	for _, sv := range contract.StateVars {
		if sv.Value != nil {
			b.walkExpr(sv.Value)
		}
	}
	for _, spec := range contract.BaseSpecifiers {
		for _, arg := range spec.Args {
			b.walkExpr(arg)
		}
	}
	if contract.Constructor != nil {
		b.visitCallable(contract.Constructor)
	}
}

// visitCallable traverses a callable body exactly once. It records the
// callable as the current node, adds the edge from the previous current node
// (unless the traversal was rooted outside any callable), walks modifier
// invocations and the body, and restores the previous node.
func (b *builder) visitCallable(callable *ast.Callable) {
	b.assert(!b.visited[callable], callable.ID, "callable traversed twice")
	b.visited[callable] = true

	previous := b.currentNode
	b.currentNode = CallableNode(callable)

	if previous.Set() {
		b.graph.add(previous, b.currentNode)
	}

	for _, inv := range callable.ModifierInvocations {
		if inv.Name != nil {
			b.walkExpr(inv.Name)
		}
		for _, arg := range inv.Args {
			b.walkExpr(arg)
		}
	}
	for _, stmt := range callable.Body {
		b.walkStmt(stmt)
	}

	b.currentNode = previous
}

// enter records a call edge to callable and, on first encounter, descends
// into its body depth-first. A reference that is not an immediate call also
// enters the active dispatch table. Re-encountering an already traversed
// callable only adds the edge; that is what bounds work and breaks cycles.
func (b *builder) enter(callable *ast.Callable, annot ast.Annotation) {
	if !annot.CalledDirectly {
		b.graph.add(b.currentDispatch, CallableNode(callable))
	}
	if b.visited[callable] {
		if b.currentNode.Set() {
			b.graph.add(b.currentNode, CallableNode(callable))
		}
		return
	}
	b.visitCallable(callable)
}

// visitIdentifier handles plain references to internal callables, which the
// type checker always marks for virtual lookup.
func (b *builder) visitIdentifier(id *ast.Identifier) {
	callable := id.Annot.ReferencedDecl
	if callable == nil {
		return
	}
	b.assert(id.Annot.Lookup == ast.LookupVirtual, id.ID, "identifier reference requires virtual lookup")
	if callable.Kind == ast.KindFunction {
		b.assert(id.Annot.Type.Kind == ast.TypeInternalFunction, id.ID, "identifier reference must be an internal function")
	}

	b.enter(callable.ResolveVirtual(b.contract, nil), id.Annot)
}

// visitMemberAccess handles the qualified call forms: bound calls, C.f()
// static access, module free functions, and super.f().
func (b *builder) visitMemberAccess(m *ast.MemberAccess) {
	// Bound calls: x.helper() where helper is attached to x's type.
	if m.Annot.Type.Kind == ast.TypeInternalFunction && m.Annot.Type.Bound {
		b.assert(m.Annot.ReferencedDecl != nil, m.ID, "bound call without referenced declaration")
		b.enter(m.Annot.ReferencedDecl, m.Annot)
		return
	}

	qualifier := exprType(m.Expr)

	// Direct access like C.f(): the exact declared function, no override
	// resolution.
	if qualifier.Kind == ast.TypeTypeType && qualifier.Contract != nil &&
		m.Annot.Type.Kind == ast.TypeInternalFunction && m.Annot.ReferencedDecl != nil {
		b.assert(m.Annot.Lookup == ast.LookupStatic, m.ID, "contract member access requires static lookup")
		b.enter(m.Annot.ReferencedDecl, m.Annot)
		return
	}

	// Free functions referenced through a module namespace.
	if qualifier.Kind == ast.TypeModule {
		if m.Annot.ReferencedDecl == nil {
			return
		}
		b.assert(m.Annot.Type.Kind == ast.TypeInternalFunction, m.ID, "module member must be an internal function")
		b.assert(m.Annot.Lookup == ast.LookupStatic, m.ID, "module member access requires static lookup")
		b.enter(m.Annot.ReferencedDecl, m.Annot)
		return
	}

	// super.f(): override search starts just past the contract the super
	// qualifier belongs to.
	if qualifier.Kind == ast.TypeContract && qualifier.Super {
		b.assert(m.Annot.ReferencedDecl != nil, m.ID, "super reference not resolved")
		b.assert(m.Annot.Lookup == ast.LookupSuper, m.ID, "super member access requires super lookup")

		start := qualifier.Contract.SuperContract(b.contract)
		b.assert(start != nil, m.ID, "super call from the most-base contract")
		b.enter(m.Annot.ReferencedDecl.ResolveVirtual(b.contract, start), m.Annot)
		return
	}
}

// endVisitCall runs after a call's children: a call through an internal
// function value with no statically known declaration can reach anything in
// the active dispatch table, so the edge starts at the dispatch sentinel.
func (b *builder) endVisitCall(call *ast.FunctionCall) {
	t := exprType(call.Func)
	if t.Kind == ast.TypeInternalFunction && !t.HasDeclaration {
		b.graph.add(b.currentDispatch, CallSiteNode(call))
	}
}

// visitNew records the instantiated contract type. new is not a call edge.
func (b *builder) visitNew(n *ast.NewExpr) {
	if n.Annot.Type.Contract != nil {
		b.graph.addCreated(n.Annot.Type.Contract)
	}
}

func (b *builder) walkStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.ExprStmt:
		b.walkExpr(s.X)
	case *ast.Block:
		for _, inner := range s.Stmts {
			b.walkStmt(inner)
		}
	case *ast.If:
		b.walkExpr(s.Cond)
		b.walkStmt(s.Then)
		if s.Else != nil {
			b.walkStmt(s.Else)
		}
	case *ast.While:
		b.walkExpr(s.Cond)
		b.walkStmt(s.Body)
	case *ast.For:
		if s.Init != nil {
			b.walkStmt(s.Init)
		}
		if s.Cond != nil {
			b.walkExpr(s.Cond)
		}
		if s.Post != nil {
			b.walkStmt(s.Post)
		}
		b.walkStmt(s.Body)
	case *ast.Return:
		for _, r := range s.Results {
			b.walkExpr(r)
		}
	case *ast.VarDeclStmt:
		if s.Value != nil {
			b.walkExpr(s.Value)
		}
	case *ast.Emit:
		b.walkExpr(s.Call)
	default:
		panic(fmt.Sprintf("callgraph: unhandled statement %T", stmt))
	}
}

func (b *builder) walkExpr(expr ast.Expr) {
	switch e := expr.(type) {
	case *ast.Identifier:
		b.visitIdentifier(e)
	case *ast.MemberAccess:
		b.visitMemberAccess(e)
		b.walkExpr(e.Expr)
	case *ast.FunctionCall:
		b.walkExpr(e.Func)
		for _, arg := range e.Args {
			if arg != nil {
				b.walkExpr(arg)
			}
		}
		b.endVisitCall(e)
	case *ast.NewExpr:
		b.visitNew(e)
	case *ast.BinaryExpr:
		b.walkExpr(e.X)
		b.walkExpr(e.Y)
	case *ast.UnaryExpr:
		b.walkExpr(e.X)
	case *ast.IndexExpr:
		b.walkExpr(e.X)
		b.walkExpr(e.Index)
	case *ast.TupleExpr:
		for _, elem := range e.Elems {
			if elem != nil {
				b.walkExpr(elem)
			}
		}
	case *ast.Literal:
		// nothing to do
	default:
		panic(fmt.Sprintf("callgraph: unhandled expression %T", expr))
	}
}

// assert panics when an assumption guaranteed by the type-checked input does
// not hold. These are front-end (or builder) defects, never user errors.
func (b *builder) assert(cond bool, at ast.NodeID, msg string) {
	if !cond {
		panic(fmt.Sprintf("callgraph: internal invariant violated at node %d: %s", at, msg))
	}
}

// exprType returns the type information of an expression, the zero TypeInfo
// when the node kind carries none.
func exprType(expr ast.Expr) ast.TypeInfo {
	switch e := expr.(type) {
	case *ast.Identifier:
		return e.Annot.Type
	case *ast.MemberAccess:
		return e.Annot.Type
	case *ast.FunctionCall:
		return e.Annot.Type
	case *ast.NewExpr:
		return e.Annot.Type
	default:
		return ast.TypeInfo{}
	}
}
