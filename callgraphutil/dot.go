package callgraphutil

import (
	"bufio"
	"fmt"
	"io"

	"github.com/sable-lang/sable/callgraph"
)

// WriteDOT writes the given call graph to the given io.Writer in the
// DOT format, which can be used to generate a visual representation of the
// call graph using Graphviz.
func WriteDOT(w io.Writer, g *callgraph.ContractCallGraph) error {
	b := bufio.NewWriter(w)
	defer b.Flush()

	b.WriteString("digraph callgraph {\n")
	fmt.Fprintf(b, "\tlabel=%q;\n", g.Contract.Name)
	b.WriteString("\tgraph [fontname=\"Helvetica\"];\n")
	b.WriteString("\tnode [fontname=\"Helvetica\"];\n")
	b.WriteString("\tedge [fontname=\"Helvetica\"];\n")

	// Write nodes. Sentinels and unresolved call sites get a distinct shape
	// so the two dispatch tables stand out.
	for _, n := range vertices(g) {
		switch n.Kind() {
		case callgraph.KindCallable:
			fmt.Fprintf(b, "\t%q [label=%q];\n", nodeID(n), n.String())
		default:
			fmt.Fprintf(b, "\t%q [label=%q shape=diamond];\n", nodeID(n), n.String())
		}
	}

	// Write edges.
	err := g.VisitEdges(func(caller, callee callgraph.Node) error {
		_, err := fmt.Fprintf(b, "\t%q -> %q;\n", nodeID(caller), nodeID(callee))
		return err
	})
	if err != nil {
		return err
	}

	b.WriteString("}\n")
	return nil
}
