// Package toon implements TOON (Token-Oriented Object Notation) encoding.
package toon

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/phobologic/archmap/internal/graph"
	"github.com/phobologic/archmap/internal/model"
)

var (
	needsQuoting = regexp.MustCompile(`[,:"\\{}\[\]]`)
	looksNumeric = regexp.MustCompile(`^-?(?:0|[1-9]\d*)(?:\.\d+)?$`)
	keywords     = map[string]struct{}{
		"true":  {},
		"false": {},
		"null":  {},
	}
)

// Encode converts an Architecture into TOON format.
func Encode(arch *model.Architecture) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("project: %s", encodeValue(arch.Name)))
	parts = append(parts, fmt.Sprintf("root: %s", encodeValue(arch.Root)))

	var moduleRows [][]string
	for i := range arch.Modules {
		m := &arch.Modules[i]
		moduleRows = append(moduleRows, []string{
			m.Path,
			m.Name,
			string(arch.LayerOf(m.Path)),
			strconv.Itoa(m.Complexity),
			string(model.BandFor(m.Complexity)),
			strconv.Itoa(m.Size),
			fmt.Sprintf("%.4f", arch.Ranks[m.Path]),
		})
	}
	parts = append(parts, formatTabular("modules",
		[]string{"path", "name", "layer", "complexity", "band", "size", "rank"}, moduleRows))

	var exportRows [][]string
	for i := range arch.Modules {
		m := &arch.Modules[i]
		for _, name := range m.Exports {
			exportRows = append(exportRows, []string{m.Path, name})
		}
	}
	parts = append(parts, formatTabular("exports", []string{"module", "name"}, exportRows))

	var depRows [][]string
	for i := range arch.Graph.Edges {
		d := &arch.Graph.Edges[i]
		depRows = append(depRows, []string{
			d.Source,
			d.Target,
			strings.Join(d.Specifiers, " "),
		})
	}
	parts = append(parts, formatTabular("dependencies", []string{"source", "target", "specifiers"}, depRows))

	if ext := graph.Unresolved(arch.Modules, arch.Graph); len(ext) > 0 {
		extRows := make([][]string, 0, len(ext))
		for _, e := range ext {
			extRows = append(extRows, []string{e.Source, e.Specifier})
		}
		parts = append(parts, formatTabular("external", []string{"source", "specifier"}, extRows))
	}

	return strings.Join(parts, "\n")
}

func formatTabular(name string, columns []string, rows [][]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%d]{%s}:", name, len(rows), strings.Join(columns, ","))
	for _, row := range rows {
		encoded := make([]string, len(row))
		for i, cell := range row {
			encoded[i] = encodeValue(cell)
		}
		fmt.Fprintf(&b, "\n  %s", strings.Join(encoded, ","))
	}
	return b.String()
}

func encodeValue(value string) string {
	if value == "" {
		return `""`
	}

	if value != strings.TrimSpace(value) {
		return quote(value)
	}

	if strings.ContainsAny(value, "\n\r\t") {
		return quote(value)
	}

	if _, ok := keywords[strings.ToLower(value)]; ok {
		return quote(value)
	}

	if looksNumeric.MatchString(value) {
		return value
	}

	if needsQuoting.MatchString(value) {
		return quote(value)
	}

	if strings.HasPrefix(value, "-") {
		return quote(value)
	}

	return value
}

func quote(value string) string {
	escaped := strings.ReplaceAll(value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	escaped = strings.ReplaceAll(escaped, "\n", `\n`)
	escaped = strings.ReplaceAll(escaped, "\r", `\r`)
	escaped = strings.ReplaceAll(escaped, "\t", `\t`)
	return `"` + escaped + `"`
}
