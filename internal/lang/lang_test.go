package lang

import (
	"testing"
)

func TestForExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ext  string
		want string
	}{
		{".js", "javascript"},
		{".jsx", "javascript"},
		{".mjs", "javascript"},
		{".cjs", "javascript"},
		{".ts", "typescript"},
		{".mts", "typescript"},
		{".tsx", "tsx"},
		{".TS", "typescript"},
		{".py", ""},
		{".go", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			t.Parallel()
			got := ForExtension(tt.ext)
			if got != tt.want {
				t.Errorf("ForExtension(%q) = %q, want %q", tt.ext, got, tt.want)
			}
		})
	}
}

func TestForPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want string
	}{
		{"src/api/client.ts", "typescript"},
		{"src/App.tsx", "tsx"},
		{"index.js", "javascript"},
		{"README.md", ""},
		{"Makefile", ""},
		{"some.dir/Makefile", ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			l := ForPath(tt.path)
			got := ""
			if l != nil {
				got = l.Name
			}
			if got != tt.want {
				t.Errorf("ForPath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestLanguagesRegistered(t *testing.T) {
	t.Parallel()

	for _, name := range []string{JavaScript, TypeScript, TSX} {
		l, ok := Languages[name]
		if !ok {
			t.Fatalf("%s language not registered", name)
		}
		if l.GetLanguage() == nil {
			t.Errorf("%s language is nil", name)
		}
	}
}

func TestNewParser(t *testing.T) {
	t.Parallel()

	p := Languages[JavaScript].NewParser()
	if p == nil {
		t.Fatal("NewParser returned nil")
	}
}
