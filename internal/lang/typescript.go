package lang

import (
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

func init() {
	Languages[TypeScript] = &Language{
		Name:       TypeScript,
		Extensions: []string{".ts", ".mts", ".cts"},
		lang:       typescript.GetLanguage(),
	}
	// TSX doubles as the auto-detect grammar: it accepts JSX and type syntax.
	Languages[TSX] = &Language{
		Name:       TSX,
		Extensions: []string{".tsx"},
		lang:       tsx.GetLanguage(),
	}
}
