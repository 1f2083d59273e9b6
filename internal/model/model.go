// Package model defines core data structures for archmap.
package model

import (
	"path"
	"strings"
)

// SourceFile is one file handed to the analyzer. Path is slash-separated and
// relative to the analysis root.
type SourceFile struct {
	Path string
	Text []byte
}

// Size returns the raw byte length of the file.
func (f SourceFile) Size() int {
	return len(f.Text)
}

// ModuleRecord is the structural summary of a single source file.
type ModuleRecord struct {
	Path         string
	Name         string
	Dependencies []string // sorted, unique raw specifiers
	Exports      []string
	Functions    []string
	Classes      []string
	Size         int
	Complexity   int
}

// EmptyRecord returns the degraded record used when a file cannot be read,
// parsed, or traversed.
func EmptyRecord(f SourceFile) ModuleRecord {
	return ModuleRecord{
		Path: f.Path,
		Name: DisplayName(f.Path),
		Size: f.Size(),
	}
}

// DisplayName returns the basename of p without its final extension.
func DisplayName(p string) string {
	base := path.Base(p)
	return strings.TrimSuffix(base, path.Ext(base))
}

// Layer is an architectural category label.
type Layer string

const (
	LayerAPI            Layer = "API Layer"
	LayerUI             Layer = "UI Components"
	LayerData           Layer = "Data Layer"
	LayerUtilities      Layer = "Utilities"
	LayerConfiguration  Layer = "Configuration"
	LayerInfrastructure Layer = "Infrastructure"
	LayerBusinessLogic  Layer = "Business Logic"
	LayerUnknown        Layer = "Unknown"
)

// Layers lists every label in display order.
var Layers = []Layer{
	LayerAPI,
	LayerUI,
	LayerData,
	LayerBusinessLogic,
	LayerUtilities,
	LayerConfiguration,
	LayerInfrastructure,
	LayerUnknown,
}

// Band is a complexity severity tier. It is derived for reporting and never
// stored on a record.
type Band string

const (
	BandLow      Band = "low"
	BandMedium   Band = "medium"
	BandHigh     Band = "high"
	BandCritical Band = "critical"
)

// Bands lists the tiers from least to most severe.
var Bands = []Band{BandLow, BandMedium, BandHigh, BandCritical}

// BandFor maps a complexity score to its band.
func BandFor(score int) Band {
	switch {
	case score <= 10:
		return BandLow
	case score <= 20:
		return BandMedium
	case score <= 30:
		return BandHigh
	default:
		return BandCritical
	}
}

// Dependency represents an edge in the resolved graph:
// Source imports Target through one or more specifiers.
type Dependency struct {
	Source     string
	Target     string
	Specifiers []string
}

// ExternalRef is a specifier that did not resolve to any analyzed module.
type ExternalRef struct {
	Source    string
	Specifier string
}

// ResolvedGraph holds the dependency edges that were mapped to analyzed
// modules. Edges are ordered by source enumeration order, then by first
// resolution.
type ResolvedGraph struct {
	Edges []Dependency
}

// Has reports whether the graph contains the edge src → tgt.
func (g ResolvedGraph) Has(src, tgt string) bool {
	for i := range g.Edges {
		if g.Edges[i].Source == src && g.Edges[i].Target == tgt {
			return true
		}
	}
	return false
}

// Targets returns the targets of src in edge order.
func (g ResolvedGraph) Targets(src string) []string {
	var out []string
	for i := range g.Edges {
		if g.Edges[i].Source == src {
			out = append(out, g.Edges[i].Target)
		}
	}
	return out
}

// Architecture is the complete analyzed model, ready for rendering.
type Architecture struct {
	Name    string
	Root    string
	Modules []ModuleRecord // enumeration order
	Layers  map[string]Layer
	Graph   ResolvedGraph
	Ranks   map[string]float64
}

// LayerOf returns the layer assigned to the module at path p.
func (a *Architecture) LayerOf(p string) Layer {
	if l, ok := a.Layers[p]; ok {
		return l
	}
	return LayerUnknown
}
