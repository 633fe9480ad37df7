package graph

import (
	"fmt"
	"os"

	"github.com/goccy/go-graphviz"

	"github.com/k5h4tr1y4/simplify/execgraph"
	"github.com/k5h4tr1y4/simplify/value"
)

// Build turns an execution graph into a Dot document: one box per node,
// labeled with its location offset, mnemonic, and side-effect level, and
// colored red for a node carrying an unrecovered exception.
func Build(title string, g *execgraph.Graph) *Dot {
	d := &Dot{Title: title}
	nodes := make(map[execgraph.NodeID]*Node, g.NodeCount())

	for _, n := range g.AllNodes() {
		id := fmt.Sprintf("n%d", n.ID())
		attrs := Attrs{
			"label": fmt.Sprintf("%04d: %s\n%s", n.Location().Offset, n.Instruction().Mnemonic(), n.Level()),
		}
		if _, ok := n.Exception(); ok {
			attrs["fillcolor"] = "lightpink"
		} else if n.Level() == value.STRONG {
			attrs["fillcolor"] = "lightyellow"
		}
		dn := &Node{ID: id, Attrs: attrs}
		nodes[n.ID()] = dn
		d.Nodes = append(d.Nodes, dn)
	}

	for _, n := range g.AllNodes() {
		from := nodes[n.ID()]
		for _, childID := range n.Children() {
			to := nodes[childID]
			d.Edges = append(d.Edges, &Edge{From: from, To: to, Attrs: Attrs{}})
		}
	}

	return d
}

// Render writes the execution graph as a dot file at dotPath, and — when
// format is non-empty — additionally rasterizes it in-process via
// go-graphviz to imgPath (e.g. "svg", "png"), the way the teacher's own
// go-graphviz dependency is used for a static artifact rather than an
// interactive xdot session.
func Render(title string, g *execgraph.Graph, dotPath, imgPath, format string) error {
	d := Build(title, g)
	dotBytes, err := d.Bytes()
	if err != nil {
		return err
	}
	if err := os.WriteFile(dotPath, dotBytes, 0o644); err != nil {
		return err
	}
	if format == "" {
		return nil
	}

	gv := graphviz.New()
	defer gv.Close()
	parsed, err := graphviz.ParseBytes(dotBytes)
	if err != nil {
		return err
	}
	defer parsed.Close()
	return gv.RenderFilename(parsed, graphviz.Format(format), imgPath)
}
