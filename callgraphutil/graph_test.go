package callgraphutil_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sable-lang/sable/ast"
	"github.com/sable-lang/sable/callgraph"
	"github.com/sable-lang/sable/callgraphutil"
)

// testContract builds contract A by hand with fixed IDs: the constructor
// calls g, g calls h, and h is externally visible.
//
//	contract A {
//	    constructor() { g(); }
//	    function g() internal { h(); }
//	    function h() external {}
//	}
func testContract() *ast.Contract {
	a := &ast.Contract{ID: 1, Name: "A"}
	a.Linearized = []*ast.Contract{a}

	h := &ast.Callable{ID: 2, Name: "h", Kind: ast.KindFunction, Signature: "()", Contract: a, Implemented: true}
	g := &ast.Callable{ID: 3, Name: "g", Kind: ast.KindFunction, Signature: "()", Contract: a, Implemented: true}
	ctor := &ast.Callable{ID: 4, Name: "constructor", Kind: ast.KindConstructor, Signature: "()", Contract: a, Implemented: true}

	g.Body = []ast.Stmt{callStmt(10, h)}
	ctor.Body = []ast.Stmt{callStmt(13, g)}

	a.Functions = []*ast.Callable{h, g}
	a.Constructor = ctor
	a.InterfaceFunctions = []ast.InterfaceFunction{{Selector: "00000001", Decl: h}}
	return a
}

// callStmt builds the direct call target() using id, id+1, and id+2.
func callStmt(id ast.NodeID, target *ast.Callable) ast.Stmt {
	return &ast.ExprStmt{ID: id, X: &ast.FunctionCall{
		ID: id + 1,
		Func: &ast.Identifier{
			ID:   id + 2,
			Name: target.Name,
			Annot: ast.Annotation{
				ReferencedDecl: target,
				Lookup:         ast.LookupVirtual,
				CalledDirectly: true,
				Type:           ast.TypeInfo{Kind: ast.TypeInternalFunction, HasDeclaration: true},
			},
		},
		Annot: ast.Annotation{Type: ast.TypeInfo{Kind: ast.TypeOther}},
	}}
}

func TestGraphString(t *testing.T) {
	g := callgraph.Create(testContract())

	want := "CreationRoot\n" +
		"\t→ A.constructor\n" +
		"\n" +
		"RuntimeDispatch\n" +
		"\t→ A.h()\n" +
		"\n" +
		"A.h()\n" +
		"\n" +
		"A.g()\n" +
		"\t→ A.h()\n" +
		"\n" +
		"A.constructor\n" +
		"\t→ A.g()\n" +
		"\n"

	require.Equal(t, want, callgraphutil.GraphString(g))
}

func TestCalleesAndCallers(t *testing.T) {
	contract := testContract()
	g := callgraph.Create(contract)

	h := callgraph.CallableNode(contract.Functions[0])
	ctor := callgraph.CallableNode(contract.Constructor)

	callees := callgraphutil.CalleesOf(g, callgraph.CreationRoot)
	require.Equal(t, callgraphutil.Nodes{ctor}, callees)

	callers := callgraphutil.CallersOf(g, h)
	require.Equal(t, callgraphutil.Nodes{
		callgraph.RuntimeDispatch,
		callgraph.CallableNode(contract.Functions[1]),
	}, callers)

	require.Equal(t, callgraphutil.Nodes{h}, callgraphutil.EntryPoints(g))
	require.Nil(t, callgraphutil.CalleesOf(g, h))
}
