package lang

import (
	"github.com/smacker/go-tree-sitter/javascript"
)

func init() {
	Languages[JavaScript] = &Language{
		Name:       JavaScript,
		Extensions: []string{".js", ".jsx", ".mjs", ".cjs"},
		lang:       javascript.GetLanguage(),
	}
}
