// archmap maps the layered architecture of a JavaScript or TypeScript project.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/phobologic/archmap/internal/config"
	"github.com/phobologic/archmap/internal/discover"
	"github.com/phobologic/archmap/internal/model"
	"github.com/phobologic/archmap/internal/pipeline"
	"github.com/phobologic/archmap/internal/ranking"
	"github.com/phobologic/archmap/internal/report"
	"github.com/phobologic/archmap/internal/toon"
)

var version = "dev"

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// listFlag collects repeatable, comma separated values.
type listFlag []string

func (l *listFlag) String() string { return strings.Join(*l, ",") }

func (l *listFlag) Set(v string) error {
	*l = append(*l, config.SplitList(v)...)
	return nil
}

// commonFlags are shared by the default command and embed.
type commonFlags struct {
	configPath  string
	maxFiles    int
	maxFileSize int64
	workers     int
	exclude     listFlag
	skipTests   bool
	verbose     bool
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configPath, "config", "", "config file (default <root>/"+config.FileName+")")
	fs.IntVar(&c.maxFiles, "n", 0, "keep only the N most central modules")
	fs.IntVar(&c.maxFiles, "max-files", 0, "keep only the N most central modules")
	fs.Int64Var(&c.maxFileSize, "max-file-size", 0, "skip files larger than this many bytes")
	fs.IntVar(&c.workers, "w", 0, "number of parser workers")
	fs.IntVar(&c.workers, "workers", 0, "number of parser workers")
	fs.Var(&c.exclude, "exclude", "glob of paths to skip (repeatable, comma separated)")
	fs.BoolVar(&c.skipTests, "skip-tests", false, "skip test and spec files")
	fs.BoolVar(&c.verbose, "v", false, "log debug output to stderr")
	fs.BoolVar(&c.verbose, "verbose", false, "log debug output to stderr")
}

// apply overlays explicitly set flags onto cfg.
func (c *commonFlags) apply(fs *flag.FlagSet, cfg *config.Config) {
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "n", "max-files":
			cfg.MaxFiles = c.maxFiles
		case "max-file-size":
			cfg.MaxFileSize = c.maxFileSize
		case "w", "workers":
			cfg.Workers = c.workers
		case "skip-tests":
			cfg.SkipTests = c.skipTests
		}
	})
	cfg.Exclude = append(cfg.Exclude, c.exclude...)
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) > 0 && args[0] == "embed" {
		return runEmbed(args[1:], stdout, stderr)
	}

	fs := flag.NewFlagSet("archmap", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		common      commonFlags
		outDir      string
		topN        int
		focus       string
		toStdout    bool
		showVersion bool
	)

	common.register(fs)
	fs.StringVar(&outDir, "o", "", "output directory (default archmap-out)")
	fs.StringVar(&outDir, "out", "", "output directory (default archmap-out)")
	fs.IntVar(&topN, "top", 0, "rows in the complexity table (default 10)")
	fs.StringVar(&focus, "focus", "", "fuzzy module query; keep matches and their direct neighbours")
	fs.BoolVar(&toStdout, "stdout", false, "print the TOON model instead of writing files")
	fs.BoolVar(&showVersion, "V", false, "show version and exit")
	fs.BoolVar(&showVersion, "version", false, "show version and exit")

	fs.Usage = func() {
		fmt.Fprintf(stderr, `Usage: archmap [flags] [root]
       archmap embed [flags] [path-to-ARCHITECTURE.md]

Analyze the JavaScript/TypeScript project at root (default ".") and write a
layered diagram, a dependency matrix, a complexity report, a layer summary
and a TOON model to the output directory.

Flags:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(reorderArgs(args)); err != nil {
		return err
	}

	if showVersion {
		_, _ = fmt.Fprintf(stdout, "archmap %s\n", version)
		return nil
	}

	root := "."
	if fs.NArg() > 0 {
		root = fs.Arg(0)
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
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "o", "out":
			cfg.OutDir = outDir
		case "top":
			cfg.TopN = topN
		}
	})
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger(stderr, common.verbose)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	arch, err := analyzeRoot(ctx, root, cfg, logger)
	if err != nil {
		return err
	}

	if focus != "" {
		arch = ranking.FilterByModule(arch, focus)
		if len(arch.Modules) == 0 {
			return fmt.Errorf("no modules match %q", focus)
		}
	}

	if toStdout {
		_, _ = fmt.Fprintln(stdout, toon.Encode(arch))
		return nil
	}

	written, err := writeArtifacts(cfg.OutDir, report.Render(arch, report.Options{
		TopN:        cfg.TopN,
		MaxCritical: cfg.CriticalPerLayer,
	}))
	if err != nil {
		return err
	}

	printSummary(stdout, arch, cfg.CriticalPerLayer, written)
	return nil
}

func resolveRoot(root string) (string, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolving root: %w", err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return "", fmt.Errorf("root path: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s: not a directory", root)
	}
	return root, nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// analyzeRoot discovers and analyzes every source file under root. Only a
// failure to enumerate files is fatal.
func analyzeRoot(ctx context.Context, root string, cfg config.Config, logger *slog.Logger) (*model.Architecture, error) {
	files, err := discover.Files(root, discover.Options{
		SkipDirs:  cfg.SkipDirs,
		Exclude:   cfg.Exclude,
		SkipTests: cfg.SkipTests,
	})
	if err != nil {
		return nil, fmt.Errorf("discovering files: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no JavaScript or TypeScript files found")
	}
	logger.Debug("discovered files", "count", len(files), "root", root)

	arch, err := pipeline.Run(ctx, root, files, pipeline.Options{
		Workers:      cfg.Workers,
		MaxFileSize:  cfg.MaxFileSize,
		CacheEntries: cfg.CacheEntries,
		Logger:       logger,
	})
	if err != nil {
		return nil, fmt.Errorf("analyzing %s: %w", root, err)
	}

	if cfg.MaxFiles > 0 {
		arch = ranking.SelectModules(arch, cfg.MaxFiles)
	}
	return arch, nil
}

func writeArtifacts(dir string, artifacts []report.Artifact) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	written := make([]string, 0, len(artifacts))
	for _, a := range artifacts {
		p := filepath.Join(dir, a.Name)
		if err := os.WriteFile(p, []byte(a.Content), 0o644); err != nil {
			return written, fmt.Errorf("writing %s: %w", p, err)
		}
		written = append(written, p)
	}
	return written, nil
}

// flagsWithValue lists flags that take a value argument.
var flagsWithValue = map[string]bool{
	"-o": true, "--o": true,
	"-out": true, "--out": true,
	"-n": true, "--n": true,
	"-max-files": true, "--max-files": true,
	"-top": true, "--top": true,
	"-max-file-size": true, "--max-file-size": true,
	"-w": true, "--w": true,
	"-workers": true, "--workers": true,
	"-config": true, "--config": true,
	"-focus": true, "--focus": true,
	"-exclude": true, "--exclude": true,
	"-root": true, "--root": true,
}

// reorderArgs moves positional arguments after all flags so Go's flag package
// can parse them correctly (it stops at the first non-flag arg).
func reorderArgs(args []string) []string {
	var flags, positional []string
	for i := 0; i < len(args); i++ {
		if args[i] == "--" {
			positional = append(positional, args[i+1:]...)
			break
		}
		if len(args[i]) > 0 && args[i][0] == '-' {
			flags = append(flags, args[i])
			if flagsWithValue[args[i]] && i+1 < len(args) {
				i++
				flags = append(flags, args[i])
			}
		} else {
			positional = append(positional, args[i])
		}
	}
	return append(flags, positional...)
}
