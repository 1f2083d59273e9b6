// Package graph resolves dependency specifiers to analyzed modules and
// computes PageRank over the resulting graph.
package graph

import (
	"math"
	"path"
	"strings"

	"github.com/phobologic/archmap/internal/model"
)

// Rule identifies which resolution rule matched a specifier.
type Rule int

const (
	RuleNone Rule = iota
	RuleName
	RuleBasename
	RuleDirSuffix
	RuleSubstring
)

func (r Rule) String() string {
	switch r {
	case RuleName:
		return "name"
	case RuleBasename:
		return "basename"
	case RuleDirSuffix:
		return "dir-suffix"
	case RuleSubstring:
		return "substring"
	}
	return "none"
}

type candidate struct {
	path string
	name string
	base string
	dir  []string
}

func newCandidates(records []model.ModuleRecord) []candidate {
	cands := make([]candidate, len(records))
	for i := range records {
		p := records[i].Path
		cands[i] = candidate{
			path: p,
			name: records[i].Name,
			base: path.Base(p),
			dir:  dirSegments(path.Dir(p)),
		}
	}
	return cands
}

type specifier struct {
	last string
	stem string
	dir  []string
}

func parseSpecifier(s string) specifier {
	last := path.Base(s)
	stem := strings.TrimSuffix(last, path.Ext(last))
	if stem == "." || stem == ".." {
		stem = ""
	}
	return specifier{last: last, stem: stem, dir: dirSegments(path.Dir(s))}
}

// dirSegments splits a directory path, dropping "." and ".." parts.
func dirSegments(dir string) []string {
	var segs []string
	for _, s := range strings.Split(dir, "/") {
		if s != "" && s != "." && s != ".." {
			segs = append(segs, s)
		}
	}
	return segs
}

func hasSuffixSegments(full, suffix []string) bool {
	if len(suffix) == 0 || len(suffix) > len(full) {
		return false
	}
	off := len(full) - len(suffix)
	for i := range suffix {
		if full[off+i] != suffix[i] {
			return false
		}
	}
	return true
}

// rules are tried in order; within a rule the earliest candidate wins.
var rules = []struct {
	rule  Rule
	match func(s specifier, c candidate) bool
}{
	{RuleName, func(s specifier, c candidate) bool {
		return s.stem != "" && s.stem == c.name
	}},
	{RuleBasename, func(s specifier, c candidate) bool {
		return s.last == c.base
	}},
	{RuleDirSuffix, func(s specifier, c candidate) bool {
		if len(s.dir) == 0 || len(c.dir) == 0 {
			return false
		}
		return hasSuffixSegments(s.dir, c.dir) || hasSuffixSegments(c.dir, s.dir)
	}},
	{RuleSubstring, func(s specifier, c candidate) bool {
		if s.stem == "" || c.name == "" {
			return false
		}
		return strings.Contains(c.name, s.stem) || strings.Contains(s.stem, c.name)
	}},
}

func lookup(spec string, cands []candidate) (int, Rule) {
	s := parseSpecifier(spec)
	for _, r := range rules {
		for i := range cands {
			if r.match(s, cands[i]) {
				return i, r.rule
			}
		}
	}
	return -1, RuleNone
}

// Lookup resolves a single specifier against records and reports the target
// path and the rule that matched. ok is false for external specifiers.
func Lookup(spec string, records []model.ModuleRecord) (target string, rule Rule, ok bool) {
	cands := newCandidates(records)
	i, r := lookup(spec, cands)
	if i < 0 {
		return "", RuleNone, false
	}
	return cands[i].path, r, true
}

// Resolve maps every raw specifier of every record to at most one record.
// Unresolved specifiers produce no edge. Self edges are kept. Several
// specifiers reaching the same target share one edge.
func Resolve(records []model.ModuleRecord) model.ResolvedGraph {
	cands := newCandidates(records)

	type edgeKey struct{ src, tgt string }
	index := make(map[edgeKey]int)
	var edges []model.Dependency

	for i := range records {
		src := records[i].Path
		for _, spec := range records[i].Dependencies {
			j, _ := lookup(spec, cands)
			if j < 0 {
				continue
			}
			key := edgeKey{src, cands[j].path}
			if k, ok := index[key]; ok {
				edges[k].Specifiers = append(edges[k].Specifiers, spec)
				continue
			}
			index[key] = len(edges)
			edges = append(edges, model.Dependency{
				Source:     src,
				Target:     cands[j].path,
				Specifiers: []string{spec},
			})
		}
	}

	return model.ResolvedGraph{Edges: edges}
}

// Unresolved lists the specifiers that the graph did not map to a module,
// in record order.
func Unresolved(records []model.ModuleRecord, g model.ResolvedGraph) []model.ExternalRef {
	type specKey struct{ src, spec string }
	resolved := make(map[specKey]struct{})
	for i := range g.Edges {
		for _, s := range g.Edges[i].Specifiers {
			resolved[specKey{g.Edges[i].Source, s}] = struct{}{}
		}
	}

	var out []model.ExternalRef
	for i := range records {
		for _, spec := range records[i].Dependencies {
			if _, ok := resolved[specKey{records[i].Path, spec}]; ok {
				continue
			}
			out = append(out, model.ExternalRef{Source: records[i].Path, Specifier: spec})
		}
	}
	return out
}

// Rank applies PageRank over the resolved graph. Each specifier on an edge
// counts as one link. With no edges every module gets a uniform rank.
func Rank(records []model.ModuleRecord, g model.ResolvedGraph) map[string]float64 {
	if len(records) == 0 {
		return nil
	}

	nodes := make(map[string]struct{}, len(records))
	for i := range records {
		nodes[records[i].Path] = struct{}{}
	}

	if len(g.Edges) == 0 {
		uniform := 1.0 / float64(len(records))
		ranks := make(map[string]float64, len(records))
		for node := range nodes {
			ranks[node] = uniform
		}
		return ranks
	}

	outEdges := make(map[string][]string) // node → targets, repeated per specifier
	outDegree := make(map[string]int)
	for _, d := range g.Edges {
		if _, ok := nodes[d.Target]; !ok {
			continue
		}
		for range d.Specifiers {
			outEdges[d.Source] = append(outEdges[d.Source], d.Target)
			outDegree[d.Source]++
		}
	}

	return pageRank(nodes, outEdges, outDegree, 0.85, 100, 1e-6)
}

func pageRank(
	nodes map[string]struct{},
	outEdges map[string][]string,
	outDegree map[string]int,
	alpha float64,
	maxIter int,
	tol float64,
) map[string]float64 {
	n := len(nodes)
	if n == 0 {
		return nil
	}

	rank := make(map[string]float64, n)
	initial := 1.0 / float64(n)
	for node := range nodes {
		rank[node] = initial
	}

	teleport := (1.0 - alpha) / float64(n)

	for iter := 0; iter < maxIter; iter++ {
		newRank := make(map[string]float64, n)

		// Dangling node contribution (nodes with no outgoing edges)
		var danglingSum float64
		for node := range nodes {
			if outDegree[node] == 0 {
				danglingSum += rank[node]
			}
		}
		danglingContrib := alpha * danglingSum / float64(n)

		for node := range nodes {
			newRank[node] = teleport + danglingContrib
		}

		for src, targets := range outEdges {
			contrib := alpha * rank[src] / float64(outDegree[src])
			for _, tgt := range targets {
				newRank[tgt] += contrib
			}
		}

		var diff float64
		for node := range nodes {
			diff += math.Abs(newRank[node] - rank[node])
		}

		rank = newRank

		if diff < tol {
			break
		}
	}

	return rank
}
