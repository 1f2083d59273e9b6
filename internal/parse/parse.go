// Package parse turns source text into tree-sitter syntax trees, falling back
// through progressively looser parse modes.
package parse

import (
	"context"
	"errors"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/archmap/internal/lang"
)

var (
	// ErrUnsupported is returned for files whose extension has no grammar.
	ErrUnsupported = errors.New("unsupported file kind")
	// ErrUnparsable is returned when every parse mode, including the
	// comment-stripped retry, produced a tree with syntax errors.
	ErrUnparsable = errors.New("unparsable source")
)

// Mode is a parse strictness level.
type Mode int

const (
	// ModeModule parses with the file's own grammar.
	ModeModule Mode = iota
	// ModeScript parses with the plain JavaScript grammar and rejects
	// module syntax.
	ModeScript
	// ModeAuto parses with the TSX grammar, which accepts both JSX and
	// type annotations.
	ModeAuto
)

func (m Mode) String() string {
	switch m {
	case ModeModule:
		return "module"
	case ModeScript:
		return "script"
	case ModeAuto:
		return "auto"
	}
	return "unknown"
}

// modes is the fallback order.
var modes = []Mode{ModeModule, ModeScript, ModeAuto}

// Result is a successfully parsed tree. Byte offsets in the tree always refer
// to the original source, since comment stripping preserves length.
type Result struct {
	Tree     *sitter.Tree
	Mode     Mode
	Stripped bool
}

// Root returns the root node of the tree.
func (r *Result) Root() *sitter.Node {
	return r.Tree.RootNode()
}

// Close releases the tree.
func (r *Result) Close() {
	if r != nil && r.Tree != nil {
		r.Tree.Close()
	}
}

// Parser caches one tree-sitter parser per grammar.
// It is not safe for concurrent use; each goroutine needs its own.
type Parser struct {
	parsers map[string]*sitter.Parser
}

// NewParser returns an empty Parser. Grammar parsers are created on demand.
func NewParser() *Parser {
	return &Parser{parsers: make(map[string]*sitter.Parser)}
}

func (p *Parser) get(l *lang.Language) *sitter.Parser {
	sp, ok := p.parsers[l.Name]
	if !ok {
		sp = l.NewParser()
		p.parsers[l.Name] = sp
	}
	return sp
}

// Parse tries module, script, and auto modes in order, then retries auto once
// with comments blanked out. It returns ErrUnparsable if nothing produced a
// clean tree.
func (p *Parser) Parse(ctx context.Context, l *lang.Language, source []byte) (*Result, error) {
	if l == nil {
		return nil, ErrUnsupported
	}

	for _, mode := range modes {
		if tree, ok := p.attempt(ctx, grammarFor(mode, l), mode, source); ok {
			return &Result{Tree: tree, Mode: mode}, nil
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	stripped := StripComments(source)
	if tree, ok := p.attempt(ctx, grammarFor(ModeAuto, l), ModeAuto, stripped); ok {
		return &Result{Tree: tree, Mode: ModeAuto, Stripped: true}, nil
	}
	return nil, ErrUnparsable
}

func (p *Parser) attempt(ctx context.Context, l *lang.Language, mode Mode, source []byte) (*sitter.Tree, bool) {
	tree, err := p.get(l).ParseCtx(ctx, nil, source)
	if err != nil || tree == nil {
		return nil, false
	}
	root := tree.RootNode()
	if root == nil || root.HasError() || (mode == ModeScript && hasModuleSyntax(root)) {
		tree.Close()
		return nil, false
	}
	return tree, true
}

func grammarFor(mode Mode, l *lang.Language) *lang.Language {
	switch mode {
	case ModeScript:
		return lang.Languages[lang.JavaScript]
	case ModeAuto:
		return lang.Languages[lang.TSX]
	}
	return l
}

// hasModuleSyntax reports whether the program has top-level import or export
// statements, which a classic script may not contain.
func hasModuleSyntax(root *sitter.Node) bool {
	for i := 0; i < int(root.NamedChildCount()); i++ {
		switch root.NamedChild(i).Type() {
		case "import_statement", "export_statement":
			return true
		}
	}
	return false
}
