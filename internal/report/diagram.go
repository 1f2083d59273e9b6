package report

import (
	"fmt"
	"strings"

	"github.com/phobologic/archmap/internal/model"
)

// Diagram renders a Mermaid flowchart with one subgraph per non-empty layer.
// Only resolved edges are drawn.
func Diagram(arch *model.Architecture) string {
	var b strings.Builder
	b.WriteString("flowchart LR\n")

	ids := make(map[string]string, len(arch.Modules))
	for i := range arch.Modules {
		ids[arch.Modules[i].Path] = fmt.Sprintf("m%d", i)
	}

	for _, layer := range model.Layers {
		var members []int
		for i := range arch.Modules {
			if arch.LayerOf(arch.Modules[i].Path) == layer {
				members = append(members, i)
			}
		}
		if len(members) == 0 {
			continue
		}
		fmt.Fprintf(&b, "  subgraph %s[\"%s\"]\n", layerID(layer), escapeLabel(string(layer)))
		for _, i := range members {
			m := &arch.Modules[i]
			fmt.Fprintf(&b, "    %s[\"%s\"]\n", ids[m.Path], escapeLabel(nodeLabel(m)))
		}
		b.WriteString("  end\n")
	}

	for _, e := range arch.Graph.Edges {
		from, ok := ids[e.Source]
		if !ok {
			continue
		}
		to, ok := ids[e.Target]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "  %s --> %s\n", from, to)
	}

	return b.String()
}

func nodeLabel(m *model.ModuleRecord) string {
	return fmt.Sprintf("%s %s (%d)", Glyph(m.Complexity), m.Name, m.Complexity)
}

func layerID(l model.Layer) string {
	return "layer_" + strings.ReplaceAll(string(l), " ", "_")
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, `"`, "#quot;")
}
