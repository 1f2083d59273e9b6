package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/phobologic/archmap/internal/model"
	"github.com/phobologic/archmap/internal/report"
)

var bandColors = map[model.Band]lipgloss.Color{
	model.BandLow:      lipgloss.Color("2"),
	model.BandMedium:   lipgloss.Color("3"),
	model.BandHigh:     lipgloss.Color("208"),
	model.BandCritical: lipgloss.Color("1"),
}

// printSummary writes a short styled overview of a run. Styling degrades to
// plain text when w is not a terminal.
func printSummary(w io.Writer, arch *model.Architecture, maxCritical int, written []string) {
	r := lipgloss.NewRenderer(w)
	title := r.NewStyle().Bold(true)
	label := r.NewStyle().Width(18)
	dim := r.NewStyle().Faint(true)

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", title.Render("archmap:"),
		fmt.Sprintf("%s (%d modules, %d edges)", arch.Name, len(arch.Modules), len(arch.Graph.Edges)))

	for _, s := range report.Summarize(arch, maxCritical) {
		fmt.Fprintf(&b, "  %s%4d  avg %.1f\n", label.Render(string(s.Layer)), s.Count, s.AvgComplexity)
	}

	counts := report.BandCounts(arch)
	bands := make([]string, 0, len(model.Bands))
	for _, band := range model.Bands {
		style := r.NewStyle().Foreground(bandColors[band])
		bands = append(bands, style.Render(fmt.Sprintf("%s %d", band, counts[band])))
	}
	fmt.Fprintf(&b, "  %s\n", strings.Join(bands, "  "))

	for _, p := range written {
		fmt.Fprintf(&b, "  %s\n", dim.Render("wrote "+p))
	}

	_, _ = io.WriteString(w, b.String())
}
