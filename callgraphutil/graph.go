// Package callgraphutil provides utilities for working with contract call
// graphs produced by the callgraph package: text, DOT, CSV, and Cosmograph
// exports, path searches, and a Neo4j loader.
package callgraphutil

import (
	"bytes"
	"fmt"

	"github.com/sable-lang/sable/callgraph"
)

// vertices returns every vertex of the graph, callers and callees alike, in
// node order.
func vertices(g *callgraph.ContractCallGraph) []callgraph.Node {
	seen := make(map[callgraph.Node]bool)
	for _, caller := range g.Nodes() {
		seen[caller] = true
		for _, callee := range g.Callees(caller) {
			seen[callee] = true
		}
	}

	all := make([]callgraph.Node, 0, len(seen))
	for n := range seen {
		all = append(all, n)
	}
	sortNodes(all)
	return all
}

// nodeID returns a stable textual identifier for a node, used wherever an
// export format needs a reference rather than a display label.
func nodeID(n callgraph.Node) string {
	switch n.Kind() {
	case callgraph.KindCallable:
		return fmt.Sprintf("callable-%d", n.Callable().ID)
	case callgraph.KindCallSite:
		return fmt.Sprintf("site-%d", n.CallSite().ID)
	default:
		return n.Kind().String()
	}
}

// nodeContract returns the defining contract name of a callable node, empty
// for sentinels and call sites.
func nodeContract(n callgraph.Node) string {
	if n.Kind() == callgraph.KindCallable && n.Callable().Contract != nil {
		return n.Callable().Contract.Name
	}
	return ""
}

// GraphString returns a string representation of the call graph,
// which is a sequence of nodes separated by newlines, with the
// callees of each node indented by a tab.
func GraphString(g *callgraph.ContractCallGraph) string {
	var buf bytes.Buffer

	for _, n := range vertices(g) {
		fmt.Fprintf(&buf, "%s\n", n)
		for _, callee := range g.Callees(n) {
			fmt.Fprintf(&buf, "\t→ %s\n", callee)
		}
		fmt.Fprintf(&buf, "\n")
	}

	return buf.String()
}
