// Package classify assigns each module record to one architectural layer
// using an ordered table of heuristic rules.
package classify

import (
	"strings"

	"github.com/phobologic/archmap/internal/model"
)

// Thresholds for the size/complexity fallback.
const (
	maxComplexity = 15
	maxFunctions  = 8
	maxClasses    = 2
)

// Rule is one entry of the classification table. Rules are evaluated in
// order and the first match decides the layer.
type Rule struct {
	Name  string
	Match func(rec *model.ModuleRecord) bool
	Layer model.Layer
}

var rules = buildRules()

// Rules returns a copy of the ordered rule table.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// Classify returns the layer for rec. It depends only on the record's fields.
func Classify(rec model.ModuleRecord) model.Layer {
	for i := range rules {
		if rules[i].Match(&rec) {
			return rules[i].Layer
		}
	}
	return model.LayerUnknown
}

// Explain returns the name of the rule that decides rec's layer, or
// "default" when none match.
func Explain(rec model.ModuleRecord) string {
	for i := range rules {
		if rules[i].Match(&rec) {
			return rules[i].Name
		}
	}
	return "default"
}

func buildRules() []Rule {
	var table []Rule

	// 1. Exported names and path agree on a role.
	for _, r := range roles {
		table = append(table, Rule{
			Name: "content:" + r.key,
			Match: func(rec *model.ModuleRecord) bool {
				return r.matchesAnyExport(rec.Exports) && hasSegmentPrefix(segments(rec.Path), r.segments)
			},
			Layer: r.layer,
		})
	}

	// 2. Folder conventions, family by family.
	for _, fam := range conventions {
		for _, pc := range fam.pairs {
			table = append(table, Rule{
				Name: "path:" + fam.name + ":" + pc.pattern,
				Match: func(rec *model.ModuleRecord) bool {
					return pc.matches(segments(rec.Path))
				},
				Layer: pc.layer,
			})
		}
	}

	// 3. The module name alone.
	for _, r := range roles {
		table = append(table, Rule{
			Name: "name:" + r.key,
			Match: func(rec *model.ModuleRecord) bool {
				return r.matchesName(rec.Name)
			},
			Layer: r.layer,
		})
	}

	// 4. Large or intricate modules.
	table = append(table, Rule{
		Name: "size",
		Match: func(rec *model.ModuleRecord) bool {
			return rec.Complexity > maxComplexity ||
				len(rec.Functions) > maxFunctions ||
				len(rec.Classes) > maxClasses
		},
		Layer: model.LayerBusinessLogic,
	})

	return table
}

// segments splits a slash path into lower-cased parts. The final part is the
// file stem, so "src/config.ts" yields ["src", "config"].
func segments(p string) []string {
	parts := strings.Split(strings.ToLower(strings.Trim(p, "/")), "/")
	if n := len(parts); n > 0 {
		parts[n-1] = model.DisplayName(parts[n-1])
	}
	out := parts[:0]
	for _, s := range parts {
		if s != "" && s != "." {
			out = append(out, s)
		}
	}
	return out
}

func hasSegmentPrefix(segs, prefixes []string) bool {
	for _, s := range segs {
		for _, p := range prefixes {
			if strings.HasPrefix(s, p) {
				return true
			}
		}
	}
	return false
}
