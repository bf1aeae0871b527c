package callgraph

import (
	"sort"

	"github.com/sable-lang/sable/ast"
)

// nodeSet is an ordered set of nodes. Insertion keeps the Node total order
// and duplicates are no-ops, so iteration is deterministic.
type nodeSet struct {
	nodes []Node
}

// insert adds n, reporting whether it was not already present.
func (s *nodeSet) insert(n Node) bool {
	i := sort.Search(len(s.nodes), func(i int) bool { return !s.nodes[i].Less(n) })
	if i < len(s.nodes) && s.nodes[i] == n {
		return false
	}
	s.nodes = append(s.nodes, Node{})
	copy(s.nodes[i+1:], s.nodes[i:])
	s.nodes[i] = n
	return true
}

// ContractCallGraph is the derived call graph of one contract: an adjacency
// mapping from node to ordered callee set, plus the contracts the contract
// can instantiate with new. It is built once by Create and read-only
// afterwards.
type ContractCallGraph struct {
	// Contract is the contract the graph was built for.
	Contract *ast.Contract

	edges   map[Node]*nodeSet
	created map[ast.NodeID]*ast.Contract
}

func newContractCallGraph(contract *ast.Contract) *ContractCallGraph {
	return &ContractCallGraph{
		Contract: contract,
		edges:    make(map[Node]*nodeSet),
		created:  make(map[ast.NodeID]*ast.Contract),
	}
}

// add records the edge caller→callee, reporting whether it was new. Adding
// an existing edge is a no-op, which is what makes re-discovered call
// relationships idempotent.
func (g *ContractCallGraph) add(caller, callee Node) bool {
	if !callee.Set() {
		panic("callgraph: edge to unset node")
	}
	set, ok := g.edges[caller]
	if !ok {
		set = &nodeSet{}
		g.edges[caller] = set
	}
	return set.insert(callee)
}

// addCreated records that the contract instantiates c.
func (g *ContractCallGraph) addCreated(c *ast.Contract) {
	g.created[c.ID] = c
}

// Nodes returns every node with outgoing edges, in node order.
func (g *ContractCallGraph) Nodes() []Node {
	nodes := make([]Node, 0, len(g.edges))
	for n := range g.edges {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Less(nodes[j]) })
	return nodes
}

// Callees returns the ordered callee set of n. The returned slice is shared;
// callers must not modify it.
func (g *ContractCallGraph) Callees(n Node) []Node {
	set, ok := g.edges[n]
	if !ok {
		return nil
	}
	return set.nodes
}

// CreatedContracts returns the contracts instantiated via new anywhere in
// the reachable graph, ordered by declaration ID.
func (g *ContractCallGraph) CreatedContracts() []*ast.Contract {
	out := make([]*ast.Contract, 0, len(g.created))
	for _, c := range g.created {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// VisitEdges calls fn for every edge in deterministic order. If fn returns
// a non-nil error, visitation stops and VisitEdges returns that error.
func (g *ContractCallGraph) VisitEdges(fn func(caller, callee Node) error) error {
	for _, caller := range g.Nodes() {
		for _, callee := range g.Callees(caller) {
			if err := fn(caller, callee); err != nil {
				return err
			}
		}
	}
	return nil
}
