package report

import (
	"fmt"
	"strings"

	"github.com/phobologic/archmap/internal/model"
)

// LayerSummary aggregates the modules assigned to one layer.
type LayerSummary struct {
	Layer         model.Layer
	Count         int
	AvgComplexity float64
	Bytes         int
	Critical      []string // paths, most complex first, capped
	MoreCritical  int      // critical modules beyond the cap
}

// Summarize groups modules by layer in display order. Empty layers are
// omitted. Counts always sum to len(arch.Modules).
func Summarize(arch *model.Architecture, maxCritical int) []LayerSummary {
	byLayer := make(map[model.Layer]*LayerSummary, len(model.Layers))
	totals := make(map[model.Layer]int, len(model.Layers))

	for _, i := range byComplexity(arch.Modules) {
		m := &arch.Modules[i]
		l := arch.LayerOf(m.Path)
		s, ok := byLayer[l]
		if !ok {
			s = &LayerSummary{Layer: l}
			byLayer[l] = s
		}
		s.Count++
		s.Bytes += m.Size
		totals[l] += m.Complexity
		if model.BandFor(m.Complexity) == model.BandCritical {
			if len(s.Critical) < maxCritical {
				s.Critical = append(s.Critical, m.Path)
			} else {
				s.MoreCritical++
			}
		}
	}

	var out []LayerSummary
	for _, l := range model.Layers {
		s, ok := byLayer[l]
		if !ok {
			continue
		}
		s.AvgComplexity = average(totals[l], s.Count)
		out = append(out, *s)
	}
	return out
}

// Layers renders the per-layer summary document.
func Layers(arch *model.Architecture, maxCritical int) string {
	summaries := Summarize(arch, maxCritical)

	var b strings.Builder
	b.WriteString("# Layers\n\n")
	b.WriteString(LayerTable(summaries))

	for _, s := range summaries {
		if len(s.Critical) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n## %s\n\nCritical modules:\n\n", s.Layer)
		for _, p := range s.Critical {
			fmt.Fprintf(&b, "- %s `%s`\n", glyphs[model.BandCritical], p)
		}
		if s.MoreCritical > 0 {
			fmt.Fprintf(&b, "- and %d more\n", s.MoreCritical)
		}
	}

	return b.String()
}

// LayerTable renders the summary rows as a Markdown table.
func LayerTable(summaries []LayerSummary) string {
	var b strings.Builder
	b.WriteString("| Layer | Modules | Avg complexity | Bytes | Critical |\n")
	b.WriteString("|-------|---------|----------------|-------|----------|\n")
	for _, s := range summaries {
		fmt.Fprintf(&b, "| %s | %d | %.1f | %d | %d |\n",
			s.Layer, s.Count, s.AvgComplexity, s.Bytes, len(s.Critical)+s.MoreCritical)
	}
	return b.String()
}
