// Package driver orchestrates the compiler's per-source pipeline:
// classify each input, dispatch it through the frontend/IR-build stages,
// route the resulting artifacts, and report progress and exit status.
// Multiple sources compile concurrently via golang.org/x/sync/errgroup,
// bounded by Options.Jobs.
package driver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"c11c/internal/ast"
	"c11c/internal/cache"
	"c11c/internal/diag"
	"c11c/internal/ir"
	"c11c/internal/irbuilder"
	"c11c/internal/observ"
	"c11c/internal/project"
	"c11c/internal/target"
)

// Stage identifies one step of the fixed preprocess -> lex -> parse ->
// typecheck -> IR build -> optimize -> lower -> regalloc -> emit -> link
// pipeline.
type Stage uint8

const (
	StageFrontend Stage = iota // preprocess+lex+parse+typecheck, external collaborator
	StageIRBuild
	StageOptimize
	StageLower
	StageEmit
	StageLink
)

func (s Stage) String() string {
	names := [...]string{"frontend", "ir-build", "optimize", "lower", "emit", "link"}
	if int(s) < len(names) {
		return names[s]
	}
	return "stage(?)"
}

// Status is one Event's progress state.
type Status uint8

const (
	StatusQueued Status = iota
	StatusWorking
	StatusDone
	StatusError
)

// Event reports one file's transition through one Stage, consumed by
// internal/progress to render either the TUI or the plain sink.
type Event struct {
	File   string
	Stage  Stage
	Status Status
	Err    error
	Dur    time.Duration
}

// Frontend is the external collaborator boundary: whatever produces
// a typed AST for one source file. This compiler core ships no real
// preprocessor/lexer/parser/type-checker; a Frontend implementation is
// supplied by the caller (e.g. a test double, or a future front-end
// package built on top of this one).
type Frontend interface {
	Parse(ctx context.Context, path string) (*ast.Unit, error)
}

// Options configures one driver run.
type Options struct {
	Files    []string
	Target   target.Descriptor
	Jobs     int // concurrent source compiles; 0 means runtime.GOMAXPROCS
	Frontend Frontend
	Progress chan<- Event // optional; nil disables progress reporting
	Timer    *observ.Timer

	// Cache, if set, lets a source whose content and target triple are
	// unchanged since the last run skip frontend+IR-build. A hit yields a
	// Result with no Unit and no Diags: the cached diagnostics are not
	// replayed, only the cached failed/clean outcome is reported.
	Cache *cache.Disk
	// ReadSource overrides how source bytes are read for cache-key
	// hashing; nil defaults to os.ReadFile. Tests that hand synthetic
	// ast.Units to a fake Frontend can set this to avoid touching disk.
	ReadSource func(path string) ([]byte, error)
}

// Result is the outcome of one file's compilation.
type Result struct {
	File  string
	Unit  *ir.Unit
	Diags *diag.Bag
	Err   error
}

// Run classifies and compiles every source in opts.Files concurrently,
// closing opts.Progress (if set) when all files have been dispatched.
func Run(ctx context.Context, opts Options) ([]Result, error) {
	if opts.Progress != nil {
		defer close(opts.Progress)
	}
	sources := classify(opts.Files)

	g, gctx := errgroup.WithContext(ctx)
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	g.SetLimit(jobs)

	results := make([]Result, len(sources))
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			results[i] = compileOne(gctx, opts, src)
			return nil // per-file errors are carried in Result, not propagated
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// classify filters the input file list down to compilable C sources;
// headers and unrecognized extensions are dropped rather than compiled
// directly.
func classify(files []string) []string {
	var out []string
	for _, f := range files {
		switch filepath.Ext(f) {
		case ".c":
			out = append(out, f)
		}
	}
	return out
}

func compileOne(ctx context.Context, opts Options, src string) Result {
	emit := func(stage Stage, status Status, err error, dur time.Duration) {
		if opts.Progress == nil {
			return
		}
		select {
		case opts.Progress <- Event{File: src, Stage: stage, Status: status, Err: err, Dur: dur}:
		case <-ctx.Done():
		}
	}

	var cacheKey project.Digest
	haveCacheKey := false
	if opts.Cache != nil {
		read := opts.ReadSource
		if read == nil {
			read = os.ReadFile
		}
		if content, err := read(src); err == nil {
			cacheKey = project.Combine(project.HashBytes(content), opts.Target.Triple())
			haveCacheKey = true
			if entry, ok, err := opts.Cache.Get(cacheKey); err == nil && ok {
				if entry.Broken {
					emit(StageIRBuild, StatusError, fmt.Errorf("cached failure"), 0)
					return Result{File: src, Err: fmt.Errorf("compilation of %s failed (cached)", src)}
				}
				emit(StageIRBuild, StatusDone, nil, 0)
				return Result{File: src}
			}
		}
	}

	emit(StageFrontend, StatusWorking, nil, 0)
	if opts.Frontend == nil {
		err := fmt.Errorf("driver: no frontend registered to parse %s", src)
		emit(StageFrontend, StatusError, err, 0)
		return Result{File: src, Err: err}
	}

	start := time.Now()
	astUnit, err := opts.Frontend.Parse(ctx, src)
	if err != nil {
		emit(StageFrontend, StatusError, err, time.Since(start))
		return Result{File: src, Err: err}
	}
	emit(StageFrontend, StatusDone, nil, time.Since(start))

	emit(StageIRBuild, StatusWorking, nil, 0)
	irStart := time.Now()
	unit := ir.NewUnit(opts.Target)
	diags := diag.NewBag(200)
	buildFn := func() error {
		irbuilder.BuildUnit(unit, astUnit, diags)
		return nil
	}
	if opts.Timer != nil {
		_ = opts.Timer.Track(fmt.Sprintf("ir-build:%s", src), buildFn)
	} else {
		_ = buildFn()
	}

	broken := diags.HasErrors()
	if opts.Cache != nil && haveCacheKey {
		rendered := make([]string, 0, diags.Len())
		for _, item := range diags.Items() {
			rendered = append(rendered, item.Message)
		}
		_ = opts.Cache.Put(cacheKey, &cache.Entry{
			SourcePath:  src,
			ContentHash: cacheKey,
			Broken:      broken,
			Diagnostics: rendered,
		})
	}

	if broken {
		emit(StageIRBuild, StatusError, fmt.Errorf("%d diagnostic(s)", diags.Len()), time.Since(irStart))
		return Result{File: src, Unit: unit, Diags: diags, Err: fmt.Errorf("compilation of %s failed", src)}
	}
	emit(StageIRBuild, StatusDone, nil, time.Since(irStart))
	return Result{File: src, Unit: unit, Diags: diags}
}

// ExitCode maps a batch of Results to the process exit code the cmd/c11c
// entry point returns: any internal invariant failure or frontend
// error is a hard
// failure (1); a clean run is 0.
func ExitCode(results []Result) int {
	for _, r := range results {
		if r.Err != nil {
			return 1
		}
	}
	return 0
}
