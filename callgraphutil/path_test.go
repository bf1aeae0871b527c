package callgraphutil_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sable-lang/sable/ast"
	"github.com/sable-lang/sable/callgraph"
	"github.com/sable-lang/sable/callgraphutil"
)

// pathContract has two construction routes to h: constructor → g → h and
// constructor → h.
func pathContract() *ast.Contract {
	a := &ast.Contract{ID: 1, Name: "A"}
	a.Linearized = []*ast.Contract{a}

	h := &ast.Callable{ID: 2, Name: "h", Kind: ast.KindFunction, Signature: "()", Contract: a, Implemented: true}
	g := &ast.Callable{ID: 3, Name: "g", Kind: ast.KindFunction, Signature: "()", Contract: a, Implemented: true}
	ctor := &ast.Callable{ID: 4, Name: "constructor", Kind: ast.KindConstructor, Signature: "()", Contract: a, Implemented: true}

	g.Body = []ast.Stmt{callStmt(10, h)}
	ctor.Body = []ast.Stmt{callStmt(13, g), callStmt(16, h)}

	a.Functions = []*ast.Callable{h, g}
	a.Constructor = ctor
	return a
}

func TestPathSearch(t *testing.T) {
	g := callgraph.Create(pathContract())

	path := callgraphutil.PathSearchCallTo(g, callgraph.CreationRoot, "A.h()")
	require.False(t, path.Empty())
	require.Equal(t, callgraph.CreationRoot, path.First())
	require.Equal(t, "A.h()", path.Last().String())
	require.Equal(t, "CreationRoot → A.constructor → A.h()", path.String())

	require.True(t, callgraphutil.PathSearchCallTo(g, callgraph.CreationRoot, "A.missing()").Empty())
}

func TestPathsSearch(t *testing.T) {
	g := callgraph.Create(pathContract())

	paths := callgraphutil.PathsSearchCallTo(g, callgraph.CreationRoot, "A.h()")
	require.Len(t, paths, 2)
	require.Equal(t, "CreationRoot → A.constructor → A.h()", paths.Shortest().String())
	require.Equal(t, "CreationRoot → A.constructor → A.g() → A.h()", paths.Longest().String())
}

func TestPathsSearchCycle(t *testing.T) {
	a := &ast.Contract{ID: 1, Name: "C"}
	a.Linearized = []*ast.Contract{a}

	fa := &ast.Callable{ID: 2, Name: "a", Kind: ast.KindFunction, Signature: "()", Contract: a, Implemented: true}
	fb := &ast.Callable{ID: 3, Name: "b", Kind: ast.KindFunction, Signature: "()", Contract: a, Implemented: true}
	fa.Body = []ast.Stmt{callStmt(10, fb)}
	fb.Body = []ast.Stmt{callStmt(13, fa)}
	a.Functions = []*ast.Callable{fa, fb}
	a.InterfaceFunctions = []ast.InterfaceFunction{{Selector: "00000001", Decl: fa}}

	g := callgraph.Create(a)

	// Mutual recursion must not hang the search.
	paths := callgraphutil.PathsSearchCallTo(g, callgraph.RuntimeDispatch, "C.b()")
	require.Len(t, paths, 1)
	require.Equal(t, "RuntimeDispatch → C.a() → C.b()", paths[0].String())
}
