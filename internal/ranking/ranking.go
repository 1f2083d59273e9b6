// Package ranking narrows an analyzed architecture by centrality or by a
// fuzzy module query.
package ranking

import (
	"sort"

	"github.com/sahilm/fuzzy"

	"github.com/phobologic/archmap/internal/model"
)

// SelectModules returns a new Architecture with only the maxModules
// highest-ranked modules. Selected modules keep enumeration order. If
// maxModules is <= 0 or >= len(modules), arch is returned as is.
func SelectModules(arch *model.Architecture, maxModules int) *model.Architecture {
	if maxModules <= 0 || maxModules >= len(arch.Modules) {
		return arch
	}

	idx := make([]int, len(arch.Modules))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return arch.Ranks[arch.Modules[idx[a]].Path] > arch.Ranks[arch.Modules[idx[b]].Path]
	})

	keep := make(map[string]struct{}, maxModules)
	for _, i := range idx[:maxModules] {
		keep[arch.Modules[i].Path] = struct{}{}
	}

	return subset(arch, keep, func(d *model.Dependency) bool {
		_, srcOK := keep[d.Source]
		_, tgtOK := keep[d.Target]
		return srcOK && tgtOK
	})
}

// FilterByModule returns a new Architecture with the modules whose path
// fuzzy-matches query, their direct dependencies and dependents, and the
// edges touching a matched module. An empty query returns arch as is.
func FilterByModule(arch *model.Architecture, query string) *model.Architecture {
	if query == "" {
		return arch
	}

	paths := make([]string, len(arch.Modules))
	for i := range arch.Modules {
		paths[i] = arch.Modules[i].Path
	}

	matched := make(map[string]struct{})
	for _, m := range fuzzy.Find(query, paths) {
		matched[m.Str] = struct{}{}
	}

	keep := make(map[string]struct{}, len(matched))
	for p := range matched {
		keep[p] = struct{}{}
	}
	for _, d := range arch.Graph.Edges {
		_, srcOK := matched[d.Source]
		_, tgtOK := matched[d.Target]
		if srcOK {
			keep[d.Target] = struct{}{}
		}
		if tgtOK {
			keep[d.Source] = struct{}{}
		}
	}

	return subset(arch, keep, func(d *model.Dependency) bool {
		_, srcOK := matched[d.Source]
		_, tgtOK := matched[d.Target]
		return srcOK || tgtOK
	})
}

func subset(arch *model.Architecture, keep map[string]struct{}, edge func(*model.Dependency) bool) *model.Architecture {
	out := &model.Architecture{
		Name:   arch.Name,
		Root:   arch.Root,
		Layers: make(map[string]model.Layer, len(keep)),
		Ranks:  make(map[string]float64, len(keep)),
	}

	for i := range arch.Modules {
		p := arch.Modules[i].Path
		if _, ok := keep[p]; !ok {
			continue
		}
		out.Modules = append(out.Modules, arch.Modules[i])
		if l, ok := arch.Layers[p]; ok {
			out.Layers[p] = l
		}
		if r, ok := arch.Ranks[p]; ok {
			out.Ranks[p] = r
		}
	}

	for i := range arch.Graph.Edges {
		if edge(&arch.Graph.Edges[i]) {
			out.Graph.Edges = append(out.Graph.Edges, arch.Graph.Edges[i])
		}
	}

	return out
}
