package graph

import (
	"math"
	"testing"

	"github.com/phobologic/archmap/internal/model"
)

func rec(path string, deps ...string) model.ModuleRecord {
	return model.ModuleRecord{Path: path, Name: model.DisplayName(path), Dependencies: deps}
}

func TestResolveRelativeImport(t *testing.T) {
	t.Parallel()

	records := []model.ModuleRecord{
		rec("src/app.ts", "./utils/helper", "react"),
		rec("src/utils/helper.ts"),
	}

	g := Resolve(records)
	if len(g.Edges) != 1 {
		t.Fatalf("expected 1 edge, got %d: %+v", len(g.Edges), g.Edges)
	}
	e := g.Edges[0]
	if e.Source != "src/app.ts" || e.Target != "src/utils/helper.ts" {
		t.Errorf("edge: %+v", e)
	}
	if len(e.Specifiers) != 1 || e.Specifiers[0] != "./utils/helper" {
		t.Errorf("specifiers: %v", e.Specifiers)
	}
}

func TestLookupRules(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		records []model.ModuleRecord
		spec    string
		want    string
		rule    Rule
	}{
		{
			name:    "display name",
			records: []model.ModuleRecord{rec("src/utils/helper.ts")},
			spec:    "../utils/helper",
			want:    "src/utils/helper.ts",
			rule:    RuleName,
		},
		{
			name:    "explicit extension",
			records: []model.ModuleRecord{rec("src/utils/helper.ts")},
			spec:    "./helper.ts",
			want:    "src/utils/helper.ts",
			rule:    RuleName,
		},
		{
			name:    "basename of extension-only file",
			records: []model.ModuleRecord{{Path: "src/.js", Name: ""}},
			spec:    "./.js",
			want:    "src/.js",
			rule:    RuleBasename,
		},
		{
			name:    "directory suffix",
			records: []model.ModuleRecord{rec("src/components/index.ts")},
			spec:    "./components/Button",
			want:    "src/components/index.ts",
			rule:    RuleDirSuffix,
		},
		{
			name:    "substring of module name",
			records: []model.ModuleRecord{rec("src/userServiceImpl.ts")},
			spec:    "./userService",
			want:    "src/userServiceImpl.ts",
			rule:    RuleSubstring,
		},
		{
			name:    "module name inside specifier",
			records: []model.ModuleRecord{rec("src/store.ts")},
			spec:    "./storeFactory",
			want:    "src/store.ts",
			rule:    RuleSubstring,
		},
		{
			name:    "earlier rule beats earlier candidate",
			records: []model.ModuleRecord{rec("src/userServiceImpl.ts"), rec("src/userService.ts")},
			spec:    "./userService",
			want:    "src/userService.ts",
			rule:    RuleName,
		},
		{
			name:    "enumeration order breaks ties",
			records: []model.ModuleRecord{rec("a/helper.ts"), rec("b/helper.ts")},
			spec:    "./helper",
			want:    "a/helper.ts",
			rule:    RuleName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, rule, ok := Lookup(tt.spec, tt.records)
			if !ok {
				t.Fatalf("Lookup(%q) did not resolve", tt.spec)
			}
			if got != tt.want {
				t.Errorf("Lookup(%q) = %q, want %q", tt.spec, got, tt.want)
			}
			if rule != tt.rule {
				t.Errorf("Lookup(%q) rule = %s, want %s", tt.spec, rule, tt.rule)
			}
		})
	}
}

func TestLookupExternal(t *testing.T) {
	t.Parallel()

	records := []model.ModuleRecord{rec("src/app.ts"), rec("src/utils/helper.ts")}
	for _, spec := range []string{"react", "lodash/debounce", "..", "."} {
		if got, _, ok := Lookup(spec, records); ok {
			t.Errorf("Lookup(%q) = %q, want unresolved", spec, got)
		}
	}
}

func TestResolveSelfEdge(t *testing.T) {
	t.Parallel()

	records := []model.ModuleRecord{rec("src/a.ts", "./a")}
	g := Resolve(records)
	if !g.Has("src/a.ts", "src/a.ts") {
		t.Errorf("expected self edge, got %+v", g.Edges)
	}
}

func TestResolveMergesSpecifiers(t *testing.T) {
	t.Parallel()

	records := []model.ModuleRecord{
		rec("src/app.ts", "./helper", "./helper.ts"),
		rec("src/helper.ts"),
	}
	g := Resolve(records)
	if len(g.Edges) != 1 {
		t.Fatalf("expected 1 merged edge, got %d: %+v", len(g.Edges), g.Edges)
	}
	if len(g.Edges[0].Specifiers) != 2 {
		t.Errorf("specifiers: %v", g.Edges[0].Specifiers)
	}
}

func TestResolveEdgeOrder(t *testing.T) {
	t.Parallel()

	records := []model.ModuleRecord{
		rec("src/b.ts", "./c"),
		rec("src/a.ts", "./b", "./c"),
		rec("src/c.ts"),
	}
	g := Resolve(records)
	want := []model.Dependency{
		{Source: "src/b.ts", Target: "src/c.ts"},
		{Source: "src/a.ts", Target: "src/b.ts"},
		{Source: "src/a.ts", Target: "src/c.ts"},
	}
	if len(g.Edges) != len(want) {
		t.Fatalf("expected %d edges, got %d", len(want), len(g.Edges))
	}
	for i := range want {
		if g.Edges[i].Source != want[i].Source || g.Edges[i].Target != want[i].Target {
			t.Errorf("edge %d = %+v, want %s -> %s", i, g.Edges[i], want[i].Source, want[i].Target)
		}
	}
}

func TestResolveEmpty(t *testing.T) {
	t.Parallel()
	g := Resolve(nil)
	if g.Edges != nil {
		t.Errorf("expected nil edges, got %v", g.Edges)
	}
}

func TestUnresolved(t *testing.T) {
	t.Parallel()

	records := []model.ModuleRecord{
		rec("src/app.ts", "./utils/helper", "react"),
		rec("src/utils/helper.ts", "lodash"),
	}
	ext := Unresolved(records, Resolve(records))
	want := []model.ExternalRef{
		{Source: "src/app.ts", Specifier: "react"},
		{Source: "src/utils/helper.ts", Specifier: "lodash"},
	}
	if len(ext) != len(want) {
		t.Fatalf("expected %d external refs, got %d: %+v", len(want), len(ext), ext)
	}
	for i := range want {
		if ext[i] != want[i] {
			t.Errorf("external %d = %+v, want %+v", i, ext[i], want[i])
		}
	}
}

func TestRankUniform(t *testing.T) {
	t.Parallel()

	records := []model.ModuleRecord{rec("a.ts"), rec("b.ts"), rec("c.ts")}
	ranks := Rank(records, model.ResolvedGraph{})

	expected := 1.0 / 3.0
	for _, r := range records {
		if math.Abs(ranks[r.Path]-expected) > 1e-9 {
			t.Errorf("%s rank = %f, want %f", r.Path, ranks[r.Path], expected)
		}
	}
}

func TestRankWithEdges(t *testing.T) {
	t.Parallel()

	records := []model.ModuleRecord{rec("a.ts"), rec("b.ts"), rec("c.ts")}
	g := model.ResolvedGraph{Edges: []model.Dependency{
		{Source: "a.ts", Target: "b.ts", Specifiers: []string{"./b"}},
		{Source: "c.ts", Target: "b.ts", Specifiers: []string{"./b"}},
	}}

	ranks := Rank(records, g)

	var sum float64
	for _, r := range ranks {
		sum += r
	}
	if math.Abs(sum-1.0) > 0.01 {
		t.Errorf("ranks sum to %f, expected ~1.0", sum)
	}

	// b.ts is imported by both a and c
	if ranks["b.ts"] <= ranks["a.ts"] || ranks["b.ts"] <= ranks["c.ts"] {
		t.Errorf("b.ts rank (%f) should exceed a.ts (%f) and c.ts (%f)",
			ranks["b.ts"], ranks["a.ts"], ranks["c.ts"])
	}
}

func TestRankEmpty(t *testing.T) {
	t.Parallel()
	if ranks := Rank(nil, model.ResolvedGraph{}); ranks != nil {
		t.Errorf("expected nil, got %v", ranks)
	}
}
