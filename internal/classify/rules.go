package classify

import (
	"strings"
	"unicode"

	"github.com/phobologic/archmap/internal/model"
)

// role is a keyword family shared by the content rule and the name fallback.
type role struct {
	key      string
	layer    model.Layer
	keywords []string // lower-case substrings
	hooks    bool     // React-style useXxx names belong to this role
	segments []string // corroborating path segment prefixes
}

var roles = []role{
	{
		key:      "api",
		layer:    model.LayerAPI,
		keywords: []string{"fetch", "api", "service", "client", "request", "endpoint", "http", "graphql"},
		segments: []string{"api", "service", "client", "endpoint"},
	},
	{
		key:      "ui",
		layer:    model.LayerUI,
		keywords: []string{"component", "view", "render", "page", "screen", "widget", "layout", "modal", "button", "hook"},
		hooks:    true,
		segments: []string{"component", "ui", "view", "page", "screen", "hook"},
	},
	{
		key:      "data",
		layer:    model.LayerData,
		keywords: []string{"model", "store", "repository", "schema", "entity", "dao", "reducer"},
		segments: []string{"model", "store", "data", "repository", "dao", "schema"},
	},
	{
		key:      "util",
		layer:    model.LayerUtilities,
		keywords: []string{"util", "helper", "format", "parse", "validate", "convert"},
		segments: []string{"util", "helper", "lib"},
	},
}

func (r role) matchesName(name string) bool {
	if r.hooks && isHookName(name) {
		return true
	}
	lower := strings.ToLower(name)
	for _, kw := range r.keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func (r role) matchesAnyExport(exports []string) bool {
	for _, e := range exports {
		if r.matchesName(e) {
			return true
		}
	}
	return false
}

// isHookName reports names like useAuth or useState.
func isHookName(name string) bool {
	if len(name) <= 3 || !strings.HasPrefix(name, "use") {
		return false
	}
	return unicode.IsUpper(rune(name[3]))
}

// pathConvention maps a folder pattern to a layer. Prefix patterns match any
// single segment starting with the pattern ("components" for "component");
// other patterns match a run of whole segments ("shared/api").
type pathConvention struct {
	pattern string
	prefix  bool
	layer   model.Layer
}

func (pc pathConvention) matches(segs []string) bool {
	if pc.prefix {
		return hasSegmentPrefix(segs, []string{pc.pattern})
	}
	want := strings.Split(pc.pattern, "/")
	for i := 0; i+len(want) <= len(segs); i++ {
		ok := true
		for j := range want {
			if segs[i+j] != want[j] {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}

type family struct {
	name  string
	pairs []pathConvention
}

func exact(pattern string, layer model.Layer) pathConvention {
	return pathConvention{pattern: pattern, layer: layer}
}

func prefix(pattern string, layer model.Layer) pathConvention {
	return pathConvention{pattern: pattern, prefix: true, layer: layer}
}

// conventions is evaluated family by family, in this order.
var conventions = []family{
	{
		name: "fsd",
		pairs: []pathConvention{
			exact("shared/api", model.LayerAPI),
			exact("shared/ui", model.LayerUI),
			exact("shared/lib", model.LayerUtilities),
			exact("shared/config", model.LayerConfiguration),
			exact("entities", model.LayerData),
			exact("widgets", model.LayerUI),
			exact("features", model.LayerBusinessLogic),
			exact("processes", model.LayerBusinessLogic),
		},
	},
	{
		name: "ddd",
		pairs: []pathConvention{
			exact("domain", model.LayerBusinessLogic),
			exact("application", model.LayerBusinessLogic),
			exact("usecases", model.LayerBusinessLogic),
			exact("use-cases", model.LayerBusinessLogic),
			exact("aggregates", model.LayerData),
			exact("value-objects", model.LayerData),
			exact("valueobjects", model.LayerData),
			exact("infrastructure", model.LayerInfrastructure),
			exact("adapters", model.LayerInfrastructure),
			exact("presentation", model.LayerUI),
		},
	},
	{
		name: "atomic",
		pairs: []pathConvention{
			exact("atoms", model.LayerUI),
			exact("molecules", model.LayerUI),
			exact("organisms", model.LayerUI),
			exact("templates", model.LayerUI),
		},
	},
	{
		name: "generic",
		pairs: []pathConvention{
			prefix("api", model.LayerAPI),
			prefix("service", model.LayerAPI),
			prefix("client", model.LayerAPI),
			prefix("endpoint", model.LayerAPI),
			prefix("component", model.LayerUI),
			prefix("ui", model.LayerUI),
			prefix("view", model.LayerUI),
			prefix("page", model.LayerUI),
			prefix("screen", model.LayerUI),
			prefix("hook", model.LayerUI),
			prefix("model", model.LayerData),
			prefix("store", model.LayerData),
			prefix("data", model.LayerData),
			prefix("repository", model.LayerData),
			prefix("dao", model.LayerData),
			prefix("schema", model.LayerData),
			prefix("util", model.LayerUtilities),
			prefix("helper", model.LayerUtilities),
			prefix("lib", model.LayerUtilities),
			prefix("config", model.LayerConfiguration),
			prefix("setting", model.LayerConfiguration),
			prefix("env", model.LayerConfiguration),
			prefix("middleware", model.LayerInfrastructure),
			prefix("server", model.LayerInfrastructure),
			prefix("plugin", model.LayerInfrastructure),
		},
	},
}
