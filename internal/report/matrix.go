package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/phobologic/archmap/internal/model"
)

// Matrix renders the square dependency matrix as a Markdown document. Cell
// (i, j) is X when i depends on j, either through the resolved graph or
// because j's path appears verbatim among i's raw specifiers.
func Matrix(arch *model.Architecture) string {
	cells := matrixCells(arch)
	n := len(arch.Modules)

	var b strings.Builder
	b.WriteString("# Dependency Matrix\n\n")
	if n == 0 {
		b.WriteString("No modules analyzed.\n")
		return b.String()
	}

	w := len(strconv.Itoa(n - 1))

	b.WriteString("```text\n")
	b.WriteString(strings.Repeat(" ", w))
	for j := range n {
		b.WriteString(" ")
		b.WriteString(runewidth.FillLeft(strconv.Itoa(j), w))
	}
	b.WriteString("\n")
	for i := range n {
		b.WriteString(runewidth.FillLeft(strconv.Itoa(i), w))
		for j := range n {
			mark := "."
			if cells[i][j] {
				mark = "X"
			}
			b.WriteString(" ")
			b.WriteString(runewidth.FillLeft(mark, w))
		}
		b.WriteString("\n")
	}
	b.WriteString("```\n\n")

	b.WriteString("## Legend\n\n```text\n")
	pathWidth := 0
	for i := range arch.Modules {
		pathWidth = max(pathWidth, runewidth.StringWidth(arch.Modules[i].Path))
	}
	for i := range arch.Modules {
		m := &arch.Modules[i]
		fmt.Fprintf(&b, "%s  %s  %s\n",
			runewidth.FillLeft(strconv.Itoa(i), w),
			runewidth.FillRight(m.Path, pathWidth),
			arch.LayerOf(m.Path))
	}
	b.WriteString("```\n")

	return b.String()
}

func matrixCells(arch *model.Architecture) [][]bool {
	n := len(arch.Modules)
	index := make(map[string]int, n)
	for i := range arch.Modules {
		index[arch.Modules[i].Path] = i
	}

	cells := make([][]bool, n)
	for i := range cells {
		cells[i] = make([]bool, n)
	}

	for _, e := range arch.Graph.Edges {
		i, ok := index[e.Source]
		if !ok {
			continue
		}
		if j, ok := index[e.Target]; ok {
			cells[i][j] = true
		}
	}

	for i := range arch.Modules {
		raw := make(map[string]struct{}, len(arch.Modules[i].Dependencies))
		for _, d := range arch.Modules[i].Dependencies {
			raw[d] = struct{}{}
		}
		for j := range arch.Modules {
			p := arch.Modules[j].Path
			if _, ok := raw[p]; ok {
				cells[i][j] = true
				continue
			}
			if _, ok := raw[stripExt(p)]; ok {
				cells[i][j] = true
			}
		}
	}

	return cells
}

func stripExt(p string) string {
	slash := strings.LastIndexByte(p, '/')
	dot := strings.LastIndexByte(p, '.')
	if dot <= slash+1 {
		return p
	}
	return p[:dot]
}
