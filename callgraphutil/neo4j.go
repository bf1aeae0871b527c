package callgraphutil

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/sable-lang/sable/callgraph"
)

// Neo4jLoader loads contract call graphs into a Neo4j database using batch
// UNWIND queries, so graphs of many contracts can be queried together.
type Neo4jLoader struct {
	driver neo4j.DriverWithContext
	ctx    context.Context
}

// NewNeo4jLoader connects to Neo4j and returns a ready-to-use loader.
func NewNeo4jLoader(ctx context.Context, uri, user, password string) (*Neo4jLoader, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}
	return &Neo4jLoader{driver: driver, ctx: ctx}, nil
}

// Close releases the underlying Neo4j driver resources.
func (l *Neo4jLoader) Close() {
	l.driver.Close(l.ctx)
}

// runCypher runs a single Cypher statement with optional parameters.
func (l *Neo4jLoader) runCypher(cypher string, params map[string]any) error {
	_, err := neo4j.ExecuteQuery(l.ctx, l.driver, cypher, params, neo4j.EagerResultTransformer)
	return err
}

// CleanGraph removes all previously loaded call-graph nodes and
// relationships.
func (l *Neo4jLoader) CleanGraph() error {
	FromContext(l.ctx).Step("Cleaning existing call graph data")
	queries := []string{
		"MATCH ()-[r:CALLS]->() DELETE r",
		"MATCH ()-[r:CREATES]->() DELETE r",
		"MATCH (n:CallGraphNode) DETACH DELETE n",
		"MATCH (n:Contract) DETACH DELETE n",
	}
	for _, q := range queries {
		if err := l.runCypher(q, nil); err != nil {
			return err
		}
	}
	return nil
}

// CreateIndexes ensures the required Neo4j indexes exist.
func (l *Neo4jLoader) CreateIndexes() error {
	FromContext(l.ctx).Step("Creating indexes")
	indexes := []string{
		"CREATE INDEX callgraph_node_key IF NOT EXISTS FOR (n:CallGraphNode) ON (n.key)",
		"CREATE INDEX contract_name IF NOT EXISTS FOR (n:Contract) ON (n.name)",
	}
	for _, q := range indexes {
		if err := l.runCypher(q, nil); err != nil {
			return err
		}
	}
	return nil
}

// nodeRows returns the UNWIND batch of vertex rows for g. Node keys are
// prefixed with the contract name, so several contract graphs can coexist
// without their sentinel nodes colliding.
func nodeRows(g *callgraph.ContractCallGraph) []map[string]any {
	all := vertices(g)
	rows := make([]map[string]any, 0, len(all))
	for _, n := range all {
		rows = append(rows, map[string]any{
			"key":      g.Contract.Name + "/" + nodeID(n),
			"kind":     n.Kind().String(),
			"contract": g.Contract.Name,
			"declared": nodeContract(n),
			"label":    n.String(),
		})
	}
	return rows
}

// edgeRows returns the UNWIND batch of call-edge rows for g.
func edgeRows(g *callgraph.ContractCallGraph) []map[string]any {
	var rows []map[string]any
	g.VisitEdges(func(caller, callee callgraph.Node) error {
		rows = append(rows, map[string]any{
			"caller": g.Contract.Name + "/" + nodeID(caller),
			"callee": g.Contract.Name + "/" + nodeID(callee),
		})
		return nil
	})
	return rows
}

// createdRows returns the UNWIND batch of instantiated-contract rows for g.
func createdRows(g *callgraph.ContractCallGraph) []map[string]any {
	created := g.CreatedContracts()
	rows := make([]map[string]any, 0, len(created))
	for _, c := range created {
		rows = append(rows, map[string]any{
			"creator": g.Contract.Name,
			"created": c.Name,
		})
	}
	return rows
}

// LoadGraph upserts one contract's call graph: its Contract node, every
// vertex, the CALLS relationships, and CREATES relationships for every
// contract instantiated with new.
func (l *Neo4jLoader) LoadGraph(g *callgraph.ContractCallGraph) error {
	logger := FromContext(l.ctx)
	start := time.Now()

	if err := l.runCypher(
		`MERGE (c:Contract {name: $name})`,
		map[string]any{"name": g.Contract.Name},
	); err != nil {
		return fmt.Errorf("failed to load contract: %w", err)
	}

	nodes := nodeRows(g)
	logger.Debug("Loading %d nodes for %s", len(nodes), g.Contract.Name)
	if err := l.runCypher(
		`UNWIND $batch AS row
		 MERGE (n:CallGraphNode {key: row.key})
		 SET n.kind = row.kind, n.contract = row.contract,
		     n.declared_in = row.declared, n.label = row.label
		 WITH n, row
		 MATCH (c:Contract {name: row.contract})
		 MERGE (n)-[:IN_CONTRACT]->(c)`,
		map[string]any{"batch": nodes},
	); err != nil {
		return fmt.Errorf("failed to load nodes: %w", err)
	}

	edges := edgeRows(g)
	logger.Debug("Loading %d call edges for %s", len(edges), g.Contract.Name)
	if err := l.runCypher(
		`UNWIND $batch AS row
		 MATCH (caller:CallGraphNode {key: row.caller}),
		       (callee:CallGraphNode {key: row.callee})
		 MERGE (caller)-[:CALLS]->(callee)`,
		map[string]any{"batch": edges},
	); err != nil {
		return fmt.Errorf("failed to load edges: %w", err)
	}

	if created := createdRows(g); len(created) > 0 {
		logger.Debug("Loading %d creation edges for %s", len(created), g.Contract.Name)
		if err := l.runCypher(
			`UNWIND $batch AS row
			 MATCH (creator:Contract {name: row.creator})
			 MERGE (created:Contract {name: row.created})
			 MERGE (creator)-[:CREATES]->(created)`,
			map[string]any{"batch": created},
		); err != nil {
			return fmt.Errorf("failed to load creation edges: %w", err)
		}
	}

	logger.Progress("Loaded "+g.Contract.Name, len(nodes)+len(edges), 0, time.Since(start))
	return nil
}
