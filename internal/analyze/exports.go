package analyze

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// collectExports records exported names from the program's top-level export
// statements. Exported functions are named here, ahead of the full traversal.
func (a *analyzer) collectExports(root *sitter.Node) {
	for i := 0; i < int(root.NamedChildCount()); i++ {
		stmt := root.NamedChild(i)
		if stmt.Type() == "export_statement" {
			a.exportStatement(stmt)
		}
	}
}

func (a *analyzer) exportStatement(stmt *sitter.Node) {
	isDefault := false
	for i := 0; i < int(stmt.ChildCount()); i++ {
		if stmt.Child(i).Type() == "default" {
			isDefault = true
			break
		}
	}

	if decl := stmt.ChildByFieldName("declaration"); decl != nil {
		names := a.declaredNames(decl)
		if isDefault && len(names) == 0 {
			names = []string{"default"}
		}
		for _, name := range names {
			a.acc.addExport(name)
		}
		return
	}

	if isDefault {
		// export default <expression>
		a.acc.addExport("default")
		return
	}

	for i := 0; i < int(stmt.NamedChildCount()); i++ {
		child := stmt.NamedChild(i)
		switch child.Type() {
		case "export_clause":
			for j := 0; j < int(child.NamedChildCount()); j++ {
				spec := child.NamedChild(j)
				if spec.Type() != "export_specifier" {
					continue
				}
				name := a.fieldText(spec, "alias")
				if name == "" {
					name = a.fieldText(spec, "name")
				}
				a.acc.addExport(strings.Trim(name, `"'`))
			}
		case "namespace_export":
			// export * as ns from "m"
			for j := 0; j < int(child.NamedChildCount()); j++ {
				if id := child.NamedChild(j); id.Type() == "identifier" || id.Type() == "string" {
					a.acc.addExport(strings.Trim(a.text(id), `"'`))
				}
			}
		}
	}
}

// declaredNames returns the names introduced by an exported declaration and
// registers exported functions.
func (a *analyzer) declaredNames(decl *sitter.Node) []string {
	switch decl.Type() {
	case "function_declaration", "generator_function_declaration":
		name := a.fieldText(decl, "name")
		a.acc.addFunction(decl, name)
		return nonEmpty(name)
	case "lexical_declaration", "variable_declaration":
		var names []string
		for i := 0; i < int(decl.NamedChildCount()); i++ {
			d := decl.NamedChild(i)
			if d.Type() != "variable_declarator" {
				continue
			}
			nameNode := d.ChildByFieldName("name")
			if nameNode == nil || nameNode.Type() != "identifier" {
				continue
			}
			name := a.text(nameNode)
			if value := d.ChildByFieldName("value"); value != nil && isFunction(value) {
				a.acc.addFunction(value, name)
			}
			names = append(names, name)
		}
		return names
	case "class_declaration", "abstract_class_declaration",
		"interface_declaration", "type_alias_declaration", "enum_declaration",
		"function_signature":
		return nonEmpty(a.fieldText(decl, "name"))
	}
	return nil
}

func nonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	return []string{s}
}
