package callgraphutil_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sable-lang/sable/callgraphutil"
)

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := callgraphutil.NewLogger(callgraphutil.LogLevelInfo, &buf)

	logger.Info("building %s", "A")
	logger.Debug("hidden")
	logger.Trace("hidden")

	out := buf.String()
	require.Contains(t, out, "building A")
	require.NotContains(t, out, "hidden")

	buf.Reset()
	debug := callgraphutil.NewLogger(callgraphutil.LogLevelDebug, &buf)
	debug.Debug("visible now")
	require.Contains(t, buf.String(), "visible now")
}

func TestLoggerPrefix(t *testing.T) {
	var buf bytes.Buffer
	logger := callgraphutil.NewLogger(callgraphutil.LogLevelInfo, &buf).
		WithPrefix("neo4j").
		WithPrefix("load")

	logger.Info("ok")
	require.Contains(t, buf.String(), "[neo4j load] ok")
}

func TestLoggerSilent(t *testing.T) {
	var buf bytes.Buffer
	logger := callgraphutil.NewLogger(callgraphutil.LogLevelSilent, &buf)

	logger.Info("a")
	logger.Error("b")
	logger.Step("c")
	require.Empty(t, buf.String())
}

func TestLoggerFromContext(t *testing.T) {
	// Without a logger in context everything is discarded.
	fallback := callgraphutil.FromContext(context.Background())
	require.NotNil(t, fallback)
	fallback.Info("dropped")

	var buf bytes.Buffer
	logger := callgraphutil.NewLogger(callgraphutil.LogLevelInfo, &buf)
	ctx := callgraphutil.WithLogger(context.Background(), logger)

	callgraphutil.FromContext(ctx).Step("resolved", "2 contracts")
	require.True(t, strings.Contains(buf.String(), "resolved: 2 contracts"))
}
