// Package pipeline runs per-file analysis over a bounded worker pool and
// assembles the whole-project model once every file is done.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/zeebo/xxh3"
	"golang.org/x/sync/errgroup"

	"github.com/phobologic/archmap/internal/analyze"
	"github.com/phobologic/archmap/internal/classify"
	"github.com/phobologic/archmap/internal/discover"
	"github.com/phobologic/archmap/internal/graph"
	"github.com/phobologic/archmap/internal/lang"
	"github.com/phobologic/archmap/internal/model"
	"github.com/phobologic/archmap/internal/parse"
)

// Options tunes a run.
type Options struct {
	Workers      int   // <= 0 means one per CPU
	MaxFileSize  int64 // <= 0 disables the limit
	CacheEntries int   // <= 0 disables the content memo
	Logger       *slog.Logger
}

// memoKey identifies identical contents parsed with the same grammar.
type memoKey struct {
	sum  xxh3.Uint128
	lang string
}

// summary is the path-independent part of a module record.
type summary struct {
	deps, exports, functions, classes []string
	complexity                        int
}

type runner struct {
	root   string
	opts   Options
	log    *slog.Logger
	memo   *lru.Cache[memoKey, summary]
	parser *parse.Parser
}

// Run analyzes files under root and returns the assembled architecture.
// Per-file failures degrade to empty records and are logged; the only error
// returned is the context's.
func Run(ctx context.Context, root string, files []discover.FileEntry, opts Options) (*model.Architecture, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	var memo *lru.Cache[memoKey, summary]
	if opts.CacheEntries > 0 {
		c, err := lru.New[memoKey, summary](opts.CacheEntries)
		if err != nil {
			return nil, err
		}
		memo = c
	}

	numWorkers := opts.Workers
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	numWorkers = max(min(numWorkers, len(files)), 1)

	records := make([]model.ModuleRecord, len(files))
	work := make(chan int, len(files))
	for i := range files {
		work <- i
	}
	close(work)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(numWorkers)
	for range numWorkers {
		g.Go(func() error {
			// Each worker owns its parser; tree-sitter parsers are not shared.
			r := &runner{root: root, opts: opts, log: log, memo: memo, parser: parse.NewParser()}
			for idx := range work {
				if err := gctx.Err(); err != nil {
					return err
				}
				records[idx] = r.analyzeFile(gctx, files[idx].Path)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	log.Debug("analysis complete", "files", len(records), "workers", numWorkers)
	arch := Assemble(filepath.Base(root), records)
	if log.Enabled(ctx, slog.LevelDebug) {
		traceDecisions(log, arch)
	}
	return arch, nil
}

// traceDecisions logs which rule placed each module in its layer and how
// each of its specifiers resolved.
func traceDecisions(log *slog.Logger, arch *model.Architecture) {
	for i := range arch.Modules {
		rec := &arch.Modules[i]
		log.Debug("classified", "path", rec.Path, "layer", arch.Layers[rec.Path], "rule", classify.Explain(*rec))
		for _, spec := range rec.Dependencies {
			if target, rule, ok := graph.Lookup(spec, arch.Modules); ok {
				log.Debug("resolved", "path", rec.Path, "specifier", spec, "target", target, "rule", rule)
			} else {
				log.Debug("external", "path", rec.Path, "specifier", spec)
			}
		}
	}
}

// Assemble classifies, resolves and ranks a complete batch of records.
func Assemble(name string, records []model.ModuleRecord) *model.Architecture {
	layers := make(map[string]model.Layer, len(records))
	for i := range records {
		layers[records[i].Path] = classify.Classify(records[i])
	}
	g := graph.Resolve(records)
	return &model.Architecture{
		Name:    name,
		Root:    name,
		Modules: records,
		Layers:  layers,
		Graph:   g,
		Ranks:   graph.Rank(records, g),
	}
}

func (r *runner) analyzeFile(ctx context.Context, rel string) model.ModuleRecord {
	abs := filepath.Join(r.root, filepath.FromSlash(rel))
	empty := model.SourceFile{Path: rel}

	if r.opts.MaxFileSize > 0 {
		info, err := os.Stat(abs)
		if err != nil {
			r.log.Warn("unreadable file", "path", rel, "err", err)
			return model.EmptyRecord(empty)
		}
		if info.Size() > r.opts.MaxFileSize {
			r.log.Warn("skipping oversized file", "path", rel, "size", info.Size(), "limit", r.opts.MaxFileSize)
			rec := model.EmptyRecord(empty)
			rec.Size = int(info.Size())
			return rec
		}
	}

	text, err := os.ReadFile(abs)
	if err != nil {
		r.log.Warn("unreadable file", "path", rel, "err", err)
		return model.EmptyRecord(empty)
	}
	file := model.SourceFile{Path: rel, Text: text}

	l := lang.ForPath(rel)
	if l == nil {
		r.log.Debug("unsupported file kind", "path", rel)
		return model.EmptyRecord(file)
	}

	key := memoKey{sum: xxh3.Hash128(text), lang: l.Name}
	if r.memo != nil {
		if s, ok := r.memo.Get(key); ok {
			r.log.Debug("memo hit", "path", rel)
			return s.record(file)
		}
	}

	res, err := r.parser.Parse(ctx, l, text)
	if err != nil {
		switch {
		case errors.Is(err, parse.ErrUnparsable):
			r.log.Warn("unparsable file", "path", rel)
		case ctx.Err() != nil:
		default:
			r.log.Warn("parse failed", "path", rel, "err", err)
		}
		return model.EmptyRecord(file)
	}
	defer res.Close()
	r.log.Debug("parsed", "path", rel, "mode", res.Mode, "stripped", res.Stripped)

	rec, err := analyze.Analyze(file, res.Root())
	if err != nil {
		r.log.Warn("analysis failed", "path", rel, "err", err)
		return rec
	}

	if r.memo != nil {
		r.memo.Add(key, summary{
			deps:       rec.Dependencies,
			exports:    rec.Exports,
			functions:  rec.Functions,
			classes:    rec.Classes,
			complexity: rec.Complexity,
		})
	}
	return rec
}

func (s summary) record(file model.SourceFile) model.ModuleRecord {
	return model.ModuleRecord{
		Path:         file.Path,
		Name:         model.DisplayName(file.Path),
		Dependencies: s.deps,
		Exports:      s.exports,
		Functions:    s.functions,
		Classes:      s.classes,
		Size:         file.Size(),
		Complexity:   s.complexity,
	}
}
