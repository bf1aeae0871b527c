package callgraphutil

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/sable-lang/sable/callgraph"
)

// WriteCSV writes the given call graph to the given io.Writer in CSV
// format. This format can be used to generate a visual representation of the
// call graph using many different tools.
func WriteCSV(w io.Writer, g *callgraph.ContractCallGraph) error {
	cw := csv.NewWriter(w)
	cw.Comma = ','
	defer cw.Flush()

	// Write header.
	if err := cw.Write([]string{
		"source_id",
		"source_kind",
		"source_contract",
		"source",
		"target_id",
		"target_kind",
		"target_contract",
		"target",
	}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	// Write edges.
	return g.VisitEdges(func(caller, callee callgraph.Node) error {
		if err := cw.Write([]string{
			nodeID(caller),
			caller.Kind().String(),
			nodeContract(caller),
			caller.String(),
			nodeID(callee),
			callee.Kind().String(),
			nodeContract(callee),
			callee.String(),
		}); err != nil {
			return fmt.Errorf("failed to write edge: %w", err)
		}
		return nil
	})
}
