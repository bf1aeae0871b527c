// Package callgraph builds the per-contract call graph used by later
// analysis stages. Given one fully type-checked contract it produces a
// ContractCallGraph: every call relationship reachable from the contract's
// construction sequence and from its externally invocable entry points,
// including virtual, static, super, and indirect dispatch.
package callgraph

import (
	"fmt"

	"github.com/sable-lang/sable/ast"
)

// Kind discriminates the variants of Node.
type Kind uint8

const (
	// KindUnset is the zero Node. It marks "no current node" during
	// traversal of contexts outside any callable body and is never a graph
	// vertex.
	KindUnset Kind = iota

	// KindCreationRoot is the entry of the construction epoch.
	KindCreationRoot

	// KindCreationDispatch stands for any function reachable through an
	// indirect call while the contract is being constructed.
	KindCreationDispatch

	// KindRuntimeDispatch stands for any function reachable through an
	// indirect call after construction, plus all external entry points.
	KindRuntimeDispatch

	// KindCallable is a reference to a function, modifier, or constructor
	// declaration.
	KindCallable

	// KindCallSite is a placeholder for a call whose target cannot be
	// statically named.
	KindCallSite
)

func (k Kind) String() string {
	switch k {
	case KindUnset:
		return "unset"
	case KindCreationRoot:
		return "creation-root"
	case KindCreationDispatch:
		return "creation-dispatch"
	case KindRuntimeDispatch:
		return "runtime-dispatch"
	case KindCallable:
		return "callable"
	case KindCallSite:
		return "call-site"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Node is a graph vertex: a callable declaration, an unresolvable call site,
// or one of the dispatch sentinels. The zero value is Unset. Node is
// comparable and totally ordered, so callee sets and serializations are
// deterministic.
type Node struct {
	kind     Kind
	callable *ast.Callable
	callSite *ast.FunctionCall
}

// Sentinel nodes. Unset is the zero value; the others are valid vertices.
var (
	Unset            = Node{}
	CreationRoot     = Node{kind: KindCreationRoot}
	CreationDispatch = Node{kind: KindCreationDispatch}
	RuntimeDispatch  = Node{kind: KindRuntimeDispatch}
)

// CallableNode returns the node for a callable declaration.
func CallableNode(c *ast.Callable) Node {
	if c == nil {
		panic("callgraph: nil callable")
	}
	return Node{kind: KindCallable, callable: c}
}

// CallSiteNode returns the node standing for an unresolvable call site.
func CallSiteNode(call *ast.FunctionCall) Node {
	if call == nil {
		panic("callgraph: nil call site")
	}
	return Node{kind: KindCallSite, callSite: call}
}

// Kind returns the node's variant.
func (n Node) Kind() Kind { return n.kind }

// Set reports whether the node is a valid vertex, i.e. not Unset.
func (n Node) Set() bool { return n.kind != KindUnset }

// Callable returns the referenced declaration, or nil for other kinds.
func (n Node) Callable() *ast.Callable { return n.callable }

// CallSite returns the referenced call expression, or nil for other kinds.
func (n Node) CallSite() *ast.FunctionCall { return n.callSite }

// astID returns the identity used to order nodes of the same kind.
func (n Node) astID() ast.NodeID {
	switch n.kind {
	case KindCallable:
		return n.callable.ID
	case KindCallSite:
		return n.callSite.ID
	default:
		return 0
	}
}

// Less defines the total order over nodes: sentinels first in epoch order,
// then callables, then call sites, each by AST node ID.
func (n Node) Less(other Node) bool {
	if n.kind != other.kind {
		return n.kind < other.kind
	}
	return n.astID() < other.astID()
}

func (n Node) String() string {
	switch n.kind {
	case KindUnset:
		return "Unset"
	case KindCreationRoot:
		return "CreationRoot"
	case KindCreationDispatch:
		return "CreationDispatch"
	case KindRuntimeDispatch:
		return "RuntimeDispatch"
	case KindCallable:
		return n.callable.String()
	case KindCallSite:
		return fmt.Sprintf("indirect call @%d", n.callSite.ID)
	default:
		return fmt.Sprintf("Node(kind=%d)", n.kind)
	}
}
