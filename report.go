package graphgo

import (
	"fmt"
	"strings"
)

// Report returns a multi-line human-readable summary of the graph for
// diagnostics and logging. The layout is not a stable interface; machine
// consumers use the accessor methods instead.
func (g *Graph) Report() string {
	var b strings.Builder

	direction := "undirected"
	if g.directed {
		direction = "directed"
	}
	if g.name != "" {
		fmt.Fprintf(&b, "graph %q (%s)\n", g.name, direction)
	} else {
		fmt.Fprintf(&b, "graph (%s)\n", direction)
	}

	fmt.Fprintf(&b, "  nodes:      %d\n", g.NodeCount())
	fmt.Fprintf(&b, "  edges:      %d (%d directed entries)\n", g.EdgeCount(), g.DirectedEdgeCount())
	fmt.Fprintf(&b, "  density:    %.6f\n", g.Density())
	fmt.Fprintf(&b, "  self-loops: %d\n", g.SelfloopCount())
	fmt.Fprintf(&b, "  trap nodes: %d\n", g.TrapNodeCount())
	if g.NodeCount() > 0 {
		fmt.Fprintf(&b, "  degree:     min %d / mean %.2f / max %d\n", g.MinDegree(), g.MeanDegree(), g.MaxDegree())
	}
	if g.IsWeighted() {
		fmt.Fprintf(&b, "  weights:    yes (total %.3f)\n", g.totalEdgeWeight())
	} else {
		fmt.Fprintf(&b, "  weights:    none\n")
	}
	if g.HasEdgeTypes() {
		fmt.Fprintf(&b, "  edge types: %d\n", g.EdgeTypeCount())
	}
	if g.HasNodeTypes() {
		fmt.Fprintf(&b, "  node types: %d\n", g.NodeTypeCount())
	}
	encoding := "csr"
	if g.IsSuccinct() {
		encoding = "elias-fano"
	}
	fmt.Fprintf(&b, "  encoding:   %s", encoding)

	return b.String()
}

// String implements fmt.Stringer with a one-line summary.
func (g *Graph) String() string {
	return fmt.Sprintf("Graph(name=%q, directed=%t, nodes=%d, edges=%d, weighted=%t, succinct=%t)",
		g.name, g.directed, g.NodeCount(), g.EdgeCount(), g.IsWeighted(), g.IsSuccinct())
}

func (g *Graph) totalEdgeWeight() float64 {
	var total float64
	for _, w := range g.weights {
		total += float64(w)
	}
	return total
}
