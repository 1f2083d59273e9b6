// Package report renders the analyzed architecture into text artifacts.
// Every function here is pure; callers decide where the output goes.
package report

import (
	"sort"

	"github.com/phobologic/archmap/internal/model"
	"github.com/phobologic/archmap/internal/toon"
)

// Artifact is one rendered document.
type Artifact struct {
	Name    string
	Content string
}

// Options tunes rendering.
type Options struct {
	TopN        int // rows in the complexity table
	MaxCritical int // critical modules listed per layer
}

// DefaultOptions mirrors the CLI defaults.
func DefaultOptions() Options {
	return Options{TopN: 10, MaxCritical: 5}
}

// Artifact names, in render order.
const (
	DiagramFile    = "diagram.md"
	MatrixFile     = "matrix.md"
	ComplexityFile = "complexity.md"
	LayersFile     = "layers.md"
	ModelFile      = "model.toon"
)

// Render produces every artifact for arch.
func Render(arch *model.Architecture, opts Options) []Artifact {
	return []Artifact{
		{Name: DiagramFile, Content: "# Architecture Diagram\n\n```mermaid\n" + Diagram(arch) + "```\n"},
		{Name: MatrixFile, Content: Matrix(arch)},
		{Name: ComplexityFile, Content: Complexity(arch, opts.TopN)},
		{Name: LayersFile, Content: Layers(arch, opts.MaxCritical)},
		{Name: ModelFile, Content: toon.Encode(arch) + "\n"},
	}
}

var glyphs = map[model.Band]string{
	model.BandLow:      "🟢",
	model.BandMedium:   "🟡",
	model.BandHigh:     "🟠",
	model.BandCritical: "🔴",
}

// Glyph returns the marker drawn next to a module with the given score.
func Glyph(score int) string {
	return glyphs[model.BandFor(score)]
}

// BandGlyph returns the marker for a band.
func BandGlyph(b model.Band) string {
	return glyphs[b]
}

// byComplexity returns module indexes sorted by descending complexity.
// Ties keep enumeration order.
func byComplexity(mods []model.ModuleRecord) []int {
	idx := make([]int, len(mods))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return mods[idx[a]].Complexity > mods[idx[b]].Complexity
	})
	return idx
}

// BandCounts tallies modules per complexity band.
func BandCounts(arch *model.Architecture) map[model.Band]int {
	counts := make(map[model.Band]int, len(model.Bands))
	for i := range arch.Modules {
		counts[model.BandFor(arch.Modules[i].Complexity)]++
	}
	return counts
}
