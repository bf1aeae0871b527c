package ast_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"

	"github.com/sable-lang/sable/ast"
	"github.com/sable-lang/sable/callgraph"
)

// fixture returns the named file from the units archive.
func fixture(t *testing.T, name string) []byte {
	t.Helper()

	archive, err := txtar.ParseFile("testdata/units.txtar")
	require.NoError(t, err)

	for _, file := range archive.Files {
		if file.Name == name {
			return file.Data
		}
	}
	t.Fatalf("no fixture %q in testdata/units.txtar", name)
	return nil
}

func decode(t *testing.T, name string) *ast.Unit {
	t.Helper()

	unit, err := ast.DecodeUnit(bytes.NewReader(fixture(t, name)))
	require.NoError(t, err)
	return unit
}

func TestDecodeBasic(t *testing.T) {
	unit := decode(t, "basic.json")
	require.Len(t, unit.Contracts, 1)

	a := unit.Contracts[0]
	require.Equal(t, "A", a.Name)
	require.Equal(t, []*ast.Contract{a}, a.Linearized)
	require.NotNil(t, a.Constructor)
	require.Equal(t, ast.KindConstructor, a.Constructor.Kind)
	require.Same(t, a, a.Constructor.Contract)
	require.Len(t, a.Functions, 2)

	g, h := a.Functions[0], a.Functions[1]
	require.Equal(t, "A.g()", g.String())

	// The constructor body call references g by declaration identity.
	stmt, ok := a.Constructor.Body[0].(*ast.ExprStmt)
	require.True(t, ok)
	call, ok := stmt.X.(*ast.FunctionCall)
	require.True(t, ok)
	ident, ok := call.Func.(*ast.Identifier)
	require.True(t, ok)
	require.Same(t, g, ident.Annot.ReferencedDecl)
	require.Equal(t, ast.LookupVirtual, ident.Annot.Lookup)
	require.True(t, ident.Annot.CalledDirectly)
	require.Equal(t, ast.TypeInternalFunction, ident.Annot.Type.Kind)
	require.True(t, ident.Annot.Type.HasDeclaration)

	require.Len(t, a.InterfaceFunctions, 1)
	require.Equal(t, "00000001", a.InterfaceFunctions[0].Selector)
	require.Same(t, h, a.InterfaceFunctions[0].Decl)
}

func TestDecodeDiamond(t *testing.T) {
	unit := decode(t, "diamond.json")
	require.Len(t, unit.Contracts, 2)

	base, derived := unit.Contracts[0], unit.Contracts[1]
	require.Equal(t, []*ast.Contract{derived, base}, derived.Linearized)

	// State variable initializer.
	require.Len(t, base.StateVars, 1)
	lit, ok := base.StateVars[0].Value.(*ast.Literal)
	require.True(t, ok)
	require.Equal(t, "1", lit.Value)

	// Base-constructor arguments.
	require.Len(t, derived.BaseSpecifiers, 1)
	require.Same(t, base, derived.BaseSpecifiers[0].Base)
	require.Len(t, derived.BaseSpecifiers[0].Args, 1)

	// Modifier invocation resolves to the declared modifier.
	caller := derived.Functions[1]
	require.Equal(t, "caller", caller.Name)
	require.Len(t, caller.ModifierInvocations, 1)
	require.Same(t, base.Modifiers[0], caller.ModifierInvocations[0].Name.Annot.ReferencedDecl)

	// super.f() carries the super lookup and the qualifying contract.
	derivedF := derived.Functions[0]
	stmt := derivedF.Body[0].(*ast.ExprStmt)
	access := stmt.X.(*ast.FunctionCall).Func.(*ast.MemberAccess)
	require.Equal(t, ast.LookupSuper, access.Annot.Lookup)
	require.Same(t, base.Functions[0], access.Annot.ReferencedDecl)
	super := access.Expr.(*ast.Identifier)
	require.True(t, super.Annot.Type.Super)
	require.Same(t, derived, super.Annot.Type.Contract)

	// Interface entries come back sorted by selector regardless of input order.
	require.Equal(t, "00000001", derived.InterfaceFunctions[0].Selector)
	require.Equal(t, "0000aa01", derived.InterfaceFunctions[1].Selector)
}

func TestDecodeErrors(t *testing.T) {
	cases := []struct {
		fixture string
		want    string
	}{
		{"bad-dup-id.json", "duplicate node ID"},
		{"bad-linearization.json", "linearization must start with the contract itself"},
		{"bad-unknown-base.json", "unknown contract 99 in linearization"},
		{"bad-decl-ref.json", "unknown callable 99 in declRef"},
		{"bad-kind-slot.json", "declared as constructor in a function slot"},
	}
	for _, tc := range cases {
		t.Run(tc.fixture, func(t *testing.T) {
			_, err := ast.DecodeUnit(bytes.NewReader(fixture(t, tc.fixture)))
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestDecodeRejectsUnknownTopLevelField(t *testing.T) {
	_, err := ast.DecodeUnit(bytes.NewReader([]byte(`{"contracts": [], "extra": 1}`)))
	require.Error(t, err)
}

// A decoded unit feeds straight into call-graph construction.
func TestDecodeAndBuild(t *testing.T) {
	unit := decode(t, "basic.json")
	a := unit.Contracts[0]

	graph := callgraph.Create(a)

	var edges []string
	err := graph.VisitEdges(func(caller, callee callgraph.Node) error {
		edges = append(edges, caller.String()+" -> "+callee.String())
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []string{
		"CreationRoot -> A.constructor",
		"RuntimeDispatch -> A.h()",
		"A.constructor -> A.g()",
		"A.g() -> A.h()",
	}, edges)
}
