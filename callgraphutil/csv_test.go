package callgraphutil_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sable-lang/sable/callgraph"
	"github.com/sable-lang/sable/callgraphutil"
)

func TestWriteCSV(t *testing.T) {
	g := callgraph.Create(testContract())

	var buf bytes.Buffer
	require.NoError(t, callgraphutil.WriteCSV(&buf, g))

	want := "source_id,source_kind,source_contract,source,target_id,target_kind,target_contract,target\n" +
		"creation-root,creation-root,,CreationRoot,callable-4,callable,A,A.constructor\n" +
		"runtime-dispatch,runtime-dispatch,,RuntimeDispatch,callable-2,callable,A,A.h()\n" +
		"callable-3,callable,A,A.g(),callable-2,callable,A,A.h()\n" +
		"callable-4,callable,A,A.constructor,callable-3,callable,A,A.g()\n"

	require.Equal(t, want, buf.String())
}
