package callgraphutil

import (
	"sort"

	"github.com/sable-lang/sable/callgraph"
)

// Nodes is a set of graph nodes.
type Nodes []callgraph.Node

func sortNodes(nodes []callgraph.Node) {
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Less(nodes[j]) })
}

// CalleesOf returns the nodes called by caller.
func CalleesOf(g *callgraph.ContractCallGraph, caller callgraph.Node) Nodes {
	callees := g.Callees(caller)
	if len(callees) == 0 {
		return nil
	}
	out := make(Nodes, len(callees))
	copy(out, callees)
	return out
}

// CallersOf returns the nodes that call callee, in node order.
func CallersOf(g *callgraph.ContractCallGraph, callee callgraph.Node) Nodes {
	var out Nodes
	for _, caller := range g.Nodes() {
		for _, c := range g.Callees(caller) {
			if c == callee {
				out = append(out, caller)
				break
			}
		}
	}
	return out
}

// EntryPoints returns everything dispatchable from outside the contract
// after construction.
func EntryPoints(g *callgraph.ContractCallGraph) Nodes {
	return CalleesOf(g, callgraph.RuntimeDispatch)
}
