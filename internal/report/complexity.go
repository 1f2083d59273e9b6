package report

import (
	"fmt"
	"strings"

	"github.com/phobologic/archmap/internal/model"
)

// Complexity renders totals, the top-N table, band counts and
// recommendations for high and critical modules.
func Complexity(arch *model.Architecture, topN int) string {
	var b strings.Builder
	b.WriteString("# Complexity Report\n\n")

	total := 0
	for i := range arch.Modules {
		total += arch.Modules[i].Complexity
	}
	fmt.Fprintf(&b, "- Modules: %d\n", len(arch.Modules))
	fmt.Fprintf(&b, "- Total complexity: %d\n", total)
	fmt.Fprintf(&b, "- Average complexity: %.1f\n\n", average(total, len(arch.Modules)))

	order := byComplexity(arch.Modules)

	rows := min(max(topN, 0), len(order))
	fmt.Fprintf(&b, "## Top %d\n\n", rows)
	b.WriteString("| # | Module | Layer | Complexity | Band |\n")
	b.WriteString("|---|--------|-------|------------|------|\n")
	for rank, i := range order[:rows] {
		m := &arch.Modules[i]
		band := model.BandFor(m.Complexity)
		fmt.Fprintf(&b, "| %d | `%s` | %s | %d | %s %s |\n",
			rank+1, m.Path, arch.LayerOf(m.Path), m.Complexity, glyphs[band], band)
	}

	b.WriteString("\n## Bands\n\n")
	b.WriteString("| Band | Range | Modules |\n")
	b.WriteString("|------|-------|---------|\n")
	counts := BandCounts(arch)
	for _, band := range model.Bands {
		fmt.Fprintf(&b, "| %s %s | %s | %d |\n", glyphs[band], band, bandRange(band), counts[band])
	}

	b.WriteString("\n## Recommendations\n\n")
	n := 0
	for _, i := range order {
		m := &arch.Modules[i]
		band := model.BandFor(m.Complexity)
		if band != model.BandHigh && band != model.BandCritical {
			continue
		}
		fmt.Fprintf(&b, "- %s `%s` (%d, %s): %s\n", glyphs[band], m.Path, m.Complexity, band, advice(band))
		n++
	}
	if n == 0 {
		b.WriteString("No high or critical modules.\n")
	}

	return b.String()
}

func average(total, n int) float64 {
	if n == 0 {
		return 0
	}
	return float64(total) / float64(n)
}

func bandRange(b model.Band) string {
	switch b {
	case model.BandLow:
		return "0-10"
	case model.BandMedium:
		return "11-20"
	case model.BandHigh:
		return "21-30"
	}
	return ">30"
}

func advice(b model.Band) string {
	if b == model.BandCritical {
		return "split into smaller modules and flatten nested callbacks"
	}
	return "consider extracting helpers to reduce branching"
}
