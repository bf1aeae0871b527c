package callgraphutil_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sable-lang/sable/callgraph"
	"github.com/sable-lang/sable/callgraphutil"
)

func TestWriteCosmograph(t *testing.T) {
	g := callgraph.Create(testContract())

	var graph, metadata bytes.Buffer
	require.NoError(t, callgraphutil.WriteCosmograph(&graph, &metadata, g))

	wantGraph := "source,target\n" +
		"creation-root,callable-4\n" +
		"runtime-dispatch,callable-2\n" +
		"callable-3,callable-2\n" +
		"callable-4,callable-3\n"
	require.Equal(t, wantGraph, graph.String())

	wantMetadata := "id,kind,contract,label\n" +
		"creation-root,creation-root,,CreationRoot\n" +
		"runtime-dispatch,runtime-dispatch,,RuntimeDispatch\n" +
		"callable-2,callable,A,A.h()\n" +
		"callable-3,callable,A,A.g()\n" +
		"callable-4,callable,A,A.constructor\n"
	require.Equal(t, wantMetadata, metadata.String())
}
