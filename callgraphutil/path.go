package callgraphutil

import (
	"bytes"

	"github.com/sable-lang/sable/callgraph"
)

// Path is a sequence of nodes making up a "chain" of calls,
// e.g.: CreationRoot → A.constructor → A.g().
type Path []callgraph.Node

// Empty returns true if the path is empty, false otherwise.
func (p Path) Empty() bool {
	return len(p) == 0
}

// First returns the first node in the path, or Unset if the path is empty.
func (p Path) First() callgraph.Node {
	if len(p) == 0 {
		return callgraph.Unset
	}
	return p[0]
}

// Last returns the last node in the path, or Unset if the path is empty.
func (p Path) Last() callgraph.Node {
	if len(p) == 0 {
		return callgraph.Unset
	}
	return p[len(p)-1]
}

// String returns a string representation of the path which
// is a sequence of nodes separated by " → ".
//
// Intended to be used while debugging.
func (p Path) String() string {
	var buf bytes.Buffer
	for i, n := range p {
		if i > 0 {
			buf.WriteString(" → ")
		}
		buf.WriteString(n.String())
	}
	return buf.String()
}

// Paths is a collection of paths, which may be logically grouped
// together, e.g.: all paths from CreationRoot to a given function.
type Paths []Path

// Shortest returns the shortest path in the collection of paths.
//
// If there are no paths, this returns nil. If there are multiple
// paths of the same length, this returns the first path found.
func (p Paths) Shortest() Path {
	if len(p) == 0 {
		return nil
	}

	shortest := p[0]
	for _, path := range p {
		if len(path) < len(shortest) {
			shortest = path
		}
	}

	return shortest
}

// Longest returns the longest path in the collection of paths.
//
// If there are no paths, this returns nil. If there are multiple
// paths of the same length, the first path found is returned.
func (p Paths) Longest() Path {
	if len(p) == 0 {
		return nil
	}

	longest := p[0]
	for _, path := range p {
		if len(path) > len(longest) {
			longest = path
		}
	}

	return longest
}

// PathSearch returns the first path found from the start node to a node that
// matches the isMatch function. This is a depth first search, so it will
// return the first path found, which may not be the shortest path.
//
// To find all paths, use PathsSearch, which returns a collection of paths.
func PathSearch(g *callgraph.ContractCallGraph, start callgraph.Node, isMatch func(callgraph.Node) bool) Path {
	var (
		stack = make(Path, 0, 32)
		seen  = make(map[callgraph.Node]bool)

		search func(n callgraph.Node) Path
	)

	search = func(n callgraph.Node) Path {
		if seen[n] {
			return nil
		}
		seen[n] = true

		stack = append(stack, n) // push
		if isMatch(n) {
			found := make(Path, len(stack))
			copy(found, stack)
			return found
		}
		for _, callee := range g.Callees(n) {
			if found := search(callee); found != nil {
				return found
			}
		}
		stack = stack[:len(stack)-1] // pop
		return nil
	}
	return search(start)
}

// PathsSearch returns all paths found from the start node to a node that
// matches the isMatch function. Under the hood, this is a depth first
// search; a matched node is not searched past, so each returned path ends
// at its first match.
func PathsSearch(g *callgraph.ContractCallGraph, start callgraph.Node, isMatch func(callgraph.Node) bool) Paths {
	var (
		paths = Paths{}

		stack = make(Path, 0, 32)

		search func(n callgraph.Node)
	)

	search = func(n callgraph.Node) {
		// Cycles are broken against the path under construction, so two
		// distinct routes to the same match both get reported.
		for _, onPath := range stack {
			if onPath == n {
				return
			}
		}

		stack = append(stack, n) // push
		if isMatch(n) {
			found := make(Path, len(stack))
			copy(found, stack)
			paths = append(paths, found)
		} else {
			for _, callee := range g.Callees(n) {
				search(callee)
			}
		}
		stack = stack[:len(stack)-1] // pop
	}
	search(start)

	return paths
}

// PathSearchCallTo returns the first path found from the start node
// to the node whose string form matches name, e.g. "A.transfer(address,uint256)".
func PathSearchCallTo(g *callgraph.ContractCallGraph, start callgraph.Node, name string) Path {
	return PathSearch(g, start, func(n callgraph.Node) bool {
		return n.String() == name
	})
}

// PathsSearchCallTo returns all paths from the start node to the node whose
// string form matches name.
func PathsSearchCallTo(g *callgraph.ContractCallGraph, start callgraph.Node, name string) Paths {
	return PathsSearch(g, start, func(n callgraph.Node) bool {
		return n.String() == name
	})
}
