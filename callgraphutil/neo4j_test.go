package callgraphutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sable-lang/sable/ast"
	"github.com/sable-lang/sable/callgraph"
)

// Batch-row construction is tested without a live database; the Cypher side
// only sees the rows built here.
func TestNeo4jBatchRows(t *testing.T) {
	child := &ast.Contract{ID: 10, Name: "Child"}
	child.Linearized = []*ast.Contract{child}

	a := &ast.Contract{ID: 1, Name: "A"}
	a.Linearized = []*ast.Contract{a}
	spawn := &ast.Callable{ID: 2, Name: "spawn", Kind: ast.KindFunction, Signature: "()", Contract: a, Implemented: true}
	spawn.Body = []ast.Stmt{
		&ast.ExprStmt{ID: 3, X: &ast.FunctionCall{
			ID: 4,
			Func: &ast.NewExpr{
				ID:       5,
				TypeName: "Child",
				Annot:    ast.Annotation{Type: ast.TypeInfo{Kind: ast.TypeTypeType, Contract: child}},
			},
			Annot: ast.Annotation{Type: ast.TypeInfo{Kind: ast.TypeContract, Contract: child}},
		}},
	}
	a.Functions = []*ast.Callable{spawn}
	a.InterfaceFunctions = []ast.InterfaceFunction{{Selector: "00000001", Decl: spawn}}

	g := callgraph.Create(a)

	nodes := nodeRows(g)
	require.Equal(t, []map[string]any{
		{"key": "A/runtime-dispatch", "kind": "runtime-dispatch", "contract": "A", "declared": "", "label": "RuntimeDispatch"},
		{"key": "A/callable-2", "kind": "callable", "contract": "A", "declared": "A", "label": "A.spawn()"},
	}, nodes)

	edges := edgeRows(g)
	require.Equal(t, []map[string]any{
		{"caller": "A/runtime-dispatch", "callee": "A/callable-2"},
	}, edges)

	created := createdRows(g)
	require.Equal(t, []map[string]any{
		{"creator": "A", "created": "Child"},
	}, created)
}
