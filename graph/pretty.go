package graph

import (
	"fmt"

	i "github.com/k5h4tr1y4/simplify/utils/indenter"

	"github.com/k5h4tr1y4/simplify/execgraph"
)

// Pretty renders an execution graph as nested, indented text rooted at
// its entry node — the `--verbose=3` diagnostic dump, cheaper than a
// full .dot render when a developer just wants to eyeball one method's
// shape in a terminal. Grounded on the teacher's own
// `i.Indenter().Start(...).NestThunked(...).End(...)` nested-braces
// idiom (analysis/lattice/map-base.go's String method), applied here to
// an execution-graph node tree instead of a lattice map.
func Pretty(g *execgraph.Graph) string {
	return prettyNode(g, g.Root(), map[execgraph.NodeID]bool{})
}

func prettyNode(g *execgraph.Graph, id execgraph.NodeID, visited map[execgraph.NodeID]bool) string {
	n := g.Node(id)
	label := fmt.Sprintf("n%d[%04d: %s]", id, n.Location().Offset, n.Instruction().Mnemonic())

	if visited[id] {
		return i.Indenter().Start(label + " (visited)").End("")
	}
	visited[id] = true

	children := n.Children()
	if len(children) == 0 {
		return i.Indenter().Start(label).End("")
	}

	thunks := make([]func() string, len(children))
	for idx, child := range children {
		child := child
		thunks[idx] = func() string { return prettyNode(g, child, visited) }
	}
	return i.Indenter().Start(label + ": {").NestThunked(thunks...).End("}")
}
