package callgraphutil_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sable-lang/sable/callgraph"
	"github.com/sable-lang/sable/callgraphutil"
)

func TestWriteDOT(t *testing.T) {
	g := callgraph.Create(testContract())

	var buf bytes.Buffer
	require.NoError(t, callgraphutil.WriteDOT(&buf, g))

	want := `digraph callgraph {
	label="A";
	graph [fontname="Helvetica"];
	node [fontname="Helvetica"];
	edge [fontname="Helvetica"];
	"creation-root" [label="CreationRoot" shape=diamond];
	"runtime-dispatch" [label="RuntimeDispatch" shape=diamond];
	"callable-2" [label="A.h()"];
	"callable-3" [label="A.g()"];
	"callable-4" [label="A.constructor"];
	"creation-root" -> "callable-4";
	"runtime-dispatch" -> "callable-2";
	"callable-3" -> "callable-2";
	"callable-4" -> "callable-3";
}
`
	require.Equal(t, want, buf.String())
}
