package render

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"

	corecluster "github.com/trellisplot/trellis/pkg/core/cluster"
)

// DendrogramToDOT converts a linkage tree to Graphviz DOT. Leaves use the
// given labels (index numbers when labels are nil); internal nodes carry the
// merge distance. The resulting DOT can be rendered with [DOTToSVG].
func DendrogramToDOT(l corecluster.Linkage, labels []string) string {
	n := l.NumItems()

	var buf bytes.Buffer
	buf.WriteString("digraph dendrogram {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  node [shape=box, style=rounded, fontsize=12];\n")
	buf.WriteString("\n")

	for i := 0; i < n; i++ {
		label := fmt.Sprintf("%d", i)
		if i < len(labels) {
			label = labels[i]
		}
		fmt.Fprintf(&buf, "  leaf%d [label=%q];\n", i, label)
	}
	for i, m := range l {
		fmt.Fprintf(&buf, "  merge%d [label=%q, shape=ellipse];\n",
			i, fmt.Sprintf("d=%.3g", m.Distance))
	}

	buf.WriteString("\n")
	for i, m := range l {
		fmt.Fprintf(&buf, "  merge%d -> %s;\n", i, nodeID(m.Left, n))
		fmt.Fprintf(&buf, "  merge%d -> %s;\n", i, nodeID(m.Right, n))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeID(id, n int) string {
	if id < n {
		return fmt.Sprintf("leaf%d", id)
	}
	return fmt.Sprintf("merge%d", id-n)
}

// DOTToSVG renders a DOT graph to SVG using Graphviz.
func DOTToSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
