// Package analyze builds module records from JavaScript and TypeScript
// syntax trees: exported names, declared functions and classes, and a
// weighted complexity score.
package analyze

import (
	"fmt"
	"math"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/archmap/internal/extract"
	"github.com/phobologic/archmap/internal/lang"
	"github.com/phobologic/archmap/internal/model"
)

// Complexity weights.
const (
	weightBranch   = 1.0
	weightTernary  = 1.0
	weightLogical  = 0.5
	weightAwait    = 0.5
	weightCallback = 0.5
	weightClass    = 2.0
	weightFunction = 1.0
)

var branchNodes = map[string]struct{}{
	"if_statement":     {},
	"while_statement":  {},
	"do_statement":     {},
	"for_statement":    {},
	"for_in_statement": {}, // covers for-of as well
	"catch_clause":     {},
}

var functionNodes = map[string]struct{}{
	"function_declaration":           {},
	"generator_function_declaration": {},
	"function_expression":            {},
	"function":                       {},
	"generator_function":             {},
	"arrow_function":                 {},
	"method_definition":              {},
}

var classNodes = map[string]struct{}{
	"class_declaration":          {},
	"abstract_class_declaration": {},
}

// Analyze builds the module record for file from its parse tree. A nil root
// means the file could not be parsed and yields the empty record. A panic
// during traversal is recovered and also yields the empty record, together
// with an error describing it.
func Analyze(file model.SourceFile, root *sitter.Node) (rec model.ModuleRecord, err error) {
	if root == nil {
		return model.EmptyRecord(file), nil
	}

	defer func() {
		if r := recover(); r != nil {
			rec = model.EmptyRecord(file)
			err = fmt.Errorf("analyzing %s: %v", file.Path, r)
		}
	}()

	a := &analyzer{source: file.Text, acc: newAccumulator()}
	a.collectExports(root)
	score := a.walk(root)

	rec = model.ModuleRecord{
		Path:         file.Path,
		Name:         model.DisplayName(file.Path),
		Dependencies: extract.FromTree(root, file.Text),
		Exports:      a.acc.exports,
		Functions:    a.acc.functions,
		Classes:      a.acc.classes,
		Size:         file.Size(),
		Complexity:   roundScore(score),
	}
	return rec, nil
}

func roundScore(score float64) int {
	n := int(math.Round(score))
	if n < 0 {
		return 0
	}
	return n
}

// accumulator holds everything collected for one file. It is threaded
// through the traversal explicitly.
type accumulator struct {
	exports    []string
	exportSeen map[string]struct{}
	functions  []string
	classes    []string
	// registered holds start offsets of function nodes already named by
	// the export pass, so the full traversal does not list them twice.
	registered map[uint32]struct{}
}

func newAccumulator() *accumulator {
	return &accumulator{
		exportSeen: make(map[string]struct{}),
		registered: make(map[uint32]struct{}),
	}
}

func (acc *accumulator) addExport(name string) {
	if name == "" {
		return
	}
	if _, dup := acc.exportSeen[name]; dup {
		return
	}
	acc.exportSeen[name] = struct{}{}
	acc.exports = append(acc.exports, name)
}

func (acc *accumulator) addFunction(node *sitter.Node, name string) {
	if name == "" {
		return
	}
	if _, done := acc.registered[node.StartByte()]; done {
		return
	}
	acc.registered[node.StartByte()] = struct{}{}
	acc.functions = append(acc.functions, name)
}

type analyzer struct {
	source []byte
	acc    *accumulator
}

func (a *analyzer) text(node *sitter.Node) string {
	return lang.NodeText(node, a.source)
}

func (a *analyzer) fieldText(node *sitter.Node, field string) string {
	if child := node.ChildByFieldName(field); child != nil {
		return a.text(child)
	}
	return ""
}

// walk sums the scores of node's named children.
func (a *analyzer) walk(node *sitter.Node) float64 {
	var sum float64
	for i := 0; i < int(node.NamedChildCount()); i++ {
		sum += a.visit(node.NamedChild(i))
	}
	return sum
}

// visit scores one node. A function-like node is scored on its own, as its
// base cost plus its body, and that sub-score flows into the enclosing scope.
func (a *analyzer) visit(node *sitter.Node) float64 {
	typ := node.Type()

	if _, ok := functionNodes[typ]; ok {
		a.recordFunction(node)
		return weightFunction + a.walk(node)
	}

	switch typ {
	case "variable_declarator":
		if value := node.ChildByFieldName("value"); value != nil && isFunction(value) {
			if name := node.ChildByFieldName("name"); name != nil && name.Type() == "identifier" {
				a.acc.addFunction(value, a.text(name))
			}
		}
	case "class_declaration", "abstract_class_declaration":
		a.acc.classes = append(a.acc.classes, a.fieldText(node, "name"))
	}

	return a.weight(node) + a.walk(node)
}

func (a *analyzer) recordFunction(node *sitter.Node) {
	switch node.Type() {
	case "function_declaration", "generator_function_declaration":
		a.acc.addFunction(node, a.fieldText(node, "name"))
	case "method_definition":
		// Object method shorthand only; class methods are scored but not listed.
		if parent := node.Parent(); parent != nil && parent.Type() == "object" {
			a.acc.addFunction(node, a.fieldText(node, "name"))
		}
	}
}

// weight returns the cost of node itself, excluding its children.
func (a *analyzer) weight(node *sitter.Node) float64 {
	typ := node.Type()
	if _, ok := branchNodes[typ]; ok {
		return weightBranch
	}
	if _, ok := classNodes[typ]; ok {
		return weightClass
	}

	switch typ {
	case "switch_case":
		if node.ChildByFieldName("value") != nil {
			return weightBranch
		}
	case "ternary_expression":
		return weightTernary
	case "binary_expression":
		if op := node.ChildByFieldName("operator"); op != nil {
			switch op.Type() {
			case "&&", "||":
				return weightLogical
			}
		}
	case "await_expression":
		return weightAwait
	case "call_expression":
		if hasInlineCallback(node) {
			return weightCallback
		}
	}
	return 0
}

func hasInlineCallback(call *sitter.Node) bool {
	args := call.ChildByFieldName("arguments")
	if args == nil {
		return false
	}
	for i := 0; i < int(args.NamedChildCount()); i++ {
		if isFunction(args.NamedChild(i)) {
			return true
		}
	}
	return false
}

func isFunction(node *sitter.Node) bool {
	switch node.Type() {
	case "function_expression", "function", "generator_function", "arrow_function":
		return true
	}
	return false
}
