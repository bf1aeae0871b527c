package callgraphutil

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/sable-lang/sable/callgraph"
)

// WriteCosmograph writes the given call graph to the given io.Writer in CSV
// format, which can be used to generate a visual representation of the call
// graph using Cosmograph. The metadata writer receives the node table.
//
// https://cosmograph.app/run/
func WriteCosmograph(graph, metadata io.Writer, g *callgraph.ContractCallGraph) error {
	graphWriter := csv.NewWriter(graph)
	graphWriter.Comma = ','
	defer graphWriter.Flush()

	metadataWriter := csv.NewWriter(metadata)
	metadataWriter.Comma = ','
	defer metadataWriter.Flush()

	// Write header.
	if err := graphWriter.Write([]string{"source", "target"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	// Write metadata header.
	if err := metadataWriter.Write([]string{"id", "kind", "contract", "label"}); err != nil {
		return fmt.Errorf("failed to write metadata header: %w", err)
	}

	// Write nodes.
	for _, n := range vertices(g) {
		if err := metadataWriter.Write([]string{
			nodeID(n),
			n.Kind().String(),
			nodeContract(n),
			n.String(),
		}); err != nil {
			return fmt.Errorf("failed to write metadata: %w", err)
		}
	}

	// Write edges.
	return g.VisitEdges(func(caller, callee callgraph.Node) error {
		if err := graphWriter.Write([]string{nodeID(caller), nodeID(callee)}); err != nil {
			return fmt.Errorf("failed to write edge: %w", err)
		}
		return nil
	})
}
