// Package extract collects raw dependency specifiers from JavaScript and
// TypeScript syntax trees.
package extract

import (
	"context"
	"sort"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/archmap/internal/lang"
	"github.com/phobologic/archmap/internal/parse"
)

// loaderCalls are the call-style dependency loaders: the CommonJS loader and
// the webpack runtime indirection.
var loaderCalls = map[string]struct{}{
	"require":             {},
	"__webpack_require__": {},
}

// Dependencies parses source and returns its specifier set. Unsupported file
// kinds and unparsable sources yield an empty set; it never fails.
func Dependencies(ctx context.Context, p *parse.Parser, path string, source []byte) []string {
	l := lang.ForPath(path)
	if l == nil {
		return nil
	}
	res, err := p.Parse(ctx, l, source)
	if err != nil {
		return nil
	}
	defer res.Close()
	return FromTree(res.Root(), source)
}

// FromTree returns the sorted, de-duplicated specifiers found under root.
func FromTree(root *sitter.Node, source []byte) []string {
	if root == nil {
		return nil
	}
	set := make(map[string]struct{})
	collect(root, source, set)

	specs := make([]string, 0, len(set))
	for s := range set {
		specs = append(specs, s)
	}
	sort.Strings(specs)
	return specs
}

func collect(node *sitter.Node, source []byte, set map[string]struct{}) {
	switch node.Type() {
	case "import_statement":
		if s, ok := importSource(node, source); ok {
			set[s] = struct{}{}
		}
	case "export_statement":
		// Both `export {a} from "m"` and `export * from "m"` carry a source.
		if src := node.ChildByFieldName("source"); src != nil && src.Type() == "string" {
			set[stringValue(src, source)] = struct{}{}
		}
	case "call_expression":
		if s, ok := loaderSpecifier(node, source); ok {
			set[s] = struct{}{}
		}
	}

	for i := 0; i < int(node.NamedChildCount()); i++ {
		collect(node.NamedChild(i), source, set)
	}
}

func importSource(node *sitter.Node, source []byte) (string, bool) {
	if src := node.ChildByFieldName("source"); src != nil && src.Type() == "string" {
		return stringValue(src, source), true
	}
	// TypeScript: import fs = require("fs")
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() != "import_require_clause" {
			continue
		}
		for j := 0; j < int(child.NamedChildCount()); j++ {
			if gc := child.NamedChild(j); gc.Type() == "string" {
				return stringValue(gc, source), true
			}
		}
	}
	return "", false
}

// loaderSpecifier matches require("m") and __webpack_require__("m") where the
// only argument is a plain string literal.
func loaderSpecifier(call *sitter.Node, source []byte) (string, bool) {
	fn := call.ChildByFieldName("function")
	if fn == nil || fn.Type() != "identifier" {
		return "", false
	}
	if _, ok := loaderCalls[lang.NodeText(fn, source)]; !ok {
		return "", false
	}
	args := call.ChildByFieldName("arguments")
	if args == nil {
		return "", false
	}
	var only *sitter.Node
	for i := 0; i < int(args.NamedChildCount()); i++ {
		arg := args.NamedChild(i)
		if arg.Type() == "comment" {
			continue
		}
		if only != nil {
			return "", false
		}
		only = arg
	}
	if only == nil || only.Type() != "string" {
		return "", false
	}
	return stringValue(only, source), true
}

// stringValue strips the surrounding quotes from a string literal node.
func stringValue(node *sitter.Node, source []byte) string {
	text := lang.NodeText(node, source)
	if len(text) >= 2 {
		return text[1 : len(text)-1]
	}
	return text
}
