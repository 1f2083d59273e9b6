package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/phobologic/archmap/internal/config"
	"github.com/phobologic/archmap/internal/model"
	"github.com/phobologic/archmap/internal/report"
)

const (
	sentinelStart = "<!-- archmap:start -->"
	sentinelEnd   = "<!-- archmap:end -->"
)

// runEmbed implements the `archmap embed` subcommand, which writes (or
// updates) the layer summary inside a Markdown file.
func runEmbed(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("archmap embed", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		common commonFlags
		root   string
		dryRun bool
	)
	common.register(fs)
	fs.StringVar(&root, "root", ".", "project to analyze")
	fs.BoolVar(&dryRun, "dry-run", false, "print what would be written without modifying the file")

	fs.Usage = func() {
		fmt.Fprintf(stderr, `Usage: archmap embed [flags] [path-to-ARCHITECTURE.md]

Write the layer summary of the project at --root to a Markdown file. The
section is wrapped in sentinel comments so it can be updated in place on
subsequent runs without touching surrounding content. Creates the file if it
does not exist.

path-to-ARCHITECTURE.md defaults to ./ARCHITECTURE.md.

Flags:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(reorderArgs(args)); err != nil {
		return err
	}

	root, err := resolveRoot(root)
	if err != nil {
		return err
	}
	cfg, err := config.Load(root, common.configPath)
	if err != nil {
		return err
	}
	common.apply(fs, &cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	arch, err := analyzeRoot(context.Background(), root, cfg, newLogger(stderr, common.verbose))
	if err != nil {
		return err
	}
	section := generateSection(arch, cfg.CriticalPerLayer)

	path := "ARCHITECTURE.md"
	if fs.NArg() > 0 {
		path = fs.Arg(0)
	}

	existing, _ := os.ReadFile(path)
	updated := applySection(string(existing), section)

	if dryRun {
		_, _ = fmt.Fprint(stdout, updated)
		return nil
	}

	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	_, _ = fmt.Fprintf(stderr, "wrote archmap section to %s\n", path)
	return nil
}

// generateSection returns the sentinel-wrapped layer summary for arch.
func generateSection(arch *model.Architecture, maxCritical int) string {
	var b strings.Builder
	b.WriteString("## Architecture Layers\n\n")
	b.WriteString("Generated by `archmap`. Re-run `archmap embed` to refresh.\n\n")
	b.WriteString(report.LayerTable(report.Summarize(arch, maxCritical)))

	counts := report.BandCounts(arch)
	bands := make([]string, 0, len(model.Bands))
	for _, band := range model.Bands {
		bands = append(bands, fmt.Sprintf("%s %s %d", report.BandGlyph(band), band, counts[band]))
	}
	fmt.Fprintf(&b, "\nComplexity bands: %s\n", strings.Join(bands, ", "))

	return sentinelStart + "\n" + b.String() + sentinelEnd
}

// applySection inserts section into content, replacing an existing sentinel
// block if present or appending if not. It is a pure function for easy testing.
func applySection(content, section string) string {
	start := strings.Index(content, sentinelStart)
	end := strings.Index(content, sentinelEnd)

	if start >= 0 && end > start {
		return content[:start] + section + content[end+len(sentinelEnd):]
	}

	// Append, ensuring a blank line separator.
	if len(content) > 0 && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return content + "\n" + section + "\n"
}
