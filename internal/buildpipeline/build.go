// Package buildpipeline compiles a set of units in parallel, writes their
// LLVM modules and reports progress.
package buildpipeline

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"scriptc/internal/driver"
	"scriptc/internal/project"
)

// ErrUnitsFailed is returned by Build when at least one unit did not compile.
var ErrUnitsFailed = errors.New("build failed")

// BuildRequest configures Build.
type BuildRequest struct {
	Files     []string
	BaseDir   string
	OutputDir string
	Config    project.Config
	// Jobs bounds the number of units compiled at once; 0 uses GOMAXPROCS.
	Jobs           int
	Cache          *DiskCache
	Progress       ProgressSink
	MaxDiagnostics int
}

// UnitResult is the outcome for one input file.
type UnitResult struct {
	Path    string
	Display string
	Output  string
	Cached  bool
	// Unit is nil for cache hits and load failures.
	Unit *driver.Unit
	Err  error
}

// Failed reports whether the unit produced no output.
func (u UnitResult) Failed() bool {
	return u.Err != nil || (u.Unit != nil && u.Unit.Failed())
}

// BuildResult collects the per-unit outcomes in input order.
type BuildResult struct {
	Units   []UnitResult
	Timings Timings
}

// FailedCount returns the number of failed units.
func (r BuildResult) FailedCount() int {
	n := 0
	for _, u := range r.Units {
		if u.Failed() {
			n++
		}
	}
	return n
}

// Build compiles every file of req to a .ll file below OutputDir, mirroring
// the layout of the inputs relative to BaseDir. Units that fail keep their
// diagnostics in the result; Build then returns ErrUnitsFailed.
func Build(ctx context.Context, req *BuildRequest) (BuildResult, error) {
	var result BuildResult
	if req == nil {
		return result, fmt.Errorf("missing build request")
	}
	if len(req.Files) == 0 {
		return result, fmt.Errorf("no input files")
	}
	jobs := req.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	outDir := req.OutputDir
	if outDir == "" {
		outDir = "."
	}

	display := DisplayNames(req.Files, req.BaseDir)
	result.Units = make([]UnitResult, len(req.Files))
	emitQueued(req.Progress, display)

	opts := driver.OptionsFromConfig(req.Config)
	if req.MaxDiagnostics > 0 {
		opts.MaxDiagnostics = req.MaxDiagnostics
	}
	fingerprint := project.HashString(strings.Join([]string{
		opts.Triple, opts.Lower.Entry, opts.Lower.AllocateHook, opts.Lower.ReleaseHook,
	}, "\x00"))

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(req.Files)))

	for i, path := range req.Files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			ur := UnitResult{
				Path:    path,
				Display: display[i],
				Output:  filepath.Join(outDir, outputName(display[i])),
			}
			var timings Timings
			buildUnit(gctx, req, opts, fingerprint, &ur, &timings)
			result.Units[i] = ur

			mu.Lock()
			result.Timings.Merge(timings)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return result, err
	}
	if n := result.FailedCount(); n > 0 {
		return result, fmt.Errorf("%w: %d of %d units", ErrUnitsFailed, n, len(result.Units))
	}
	return result, nil
}

func buildUnit(ctx context.Context, req *BuildRequest, opts driver.Options, fingerprint project.Digest, ur *UnitResult, timings *Timings) {
	data, err := os.ReadFile(ur.Path) // #nosec G304 -- inputs come from the command line
	if err != nil {
		ur.Err = fmt.Errorf("failed to read %s: %w", ur.Path, err)
		emit(req.Progress, ur.Display, StageParse, StatusError, ur.Err)
		return
	}
	key := project.Combine(sha256.Sum256(data), fingerprint)

	var cached CachePayload
	if hit, cerr := req.Cache.Get(key, &cached); cerr == nil && hit {
		start := time.Now()
		ur.Cached = true
		ur.Err = writeOutput(ur.Output, cached.IR)
		timings.Add(StageWrite, time.Since(start))
		if ur.Err != nil {
			emit(req.Progress, ur.Display, StageWrite, StatusError, ur.Err)
			return
		}
		emit(req.Progress, ur.Display, StageWrite, StatusCached, nil)
		return
	}

	opts.Observer = func(ev driver.PhaseEvent) {
		stage := Stage(ev.Name)
		switch {
		case ev.Status == driver.PhaseStart:
			emit(req.Progress, ur.Display, stage, StatusWorking, nil)
		case ev.Failed:
			timings.Add(stage, ev.Elapsed)
			emit(req.Progress, ur.Display, stage, StatusError, nil)
		default:
			timings.Add(stage, ev.Elapsed)
		}
	}
	unit, err := driver.CompileFile(ctx, ur.Path, opts)
	ur.Unit = unit
	if err != nil {
		ur.Err = err
		emit(req.Progress, ur.Display, StageParse, StatusError, err)
		return
	}
	if unit.Failed() {
		return
	}

	start := time.Now()
	emit(req.Progress, ur.Display, StageWrite, StatusWorking, nil)
	if err := writeOutput(ur.Output, unit.IR); err != nil {
		ur.Err = err
		emit(req.Progress, ur.Display, StageWrite, StatusError, err)
		return
	}
	// a cache failure only costs the next build
	_ = req.Cache.Put(key, payloadFor(unit))
	timings.Add(StageWrite, time.Since(start))
	emit(req.Progress, ur.Display, StageWrite, StatusDone, nil)
}

func payloadFor(unit *driver.Unit) *CachePayload {
	p := &CachePayload{
		SourcePath: unit.Path,
		SourceHash: unit.File.Hash,
		Entry:      unit.Lowered.Entry,
		IR:         unit.IR,
		Objects:    unit.Lowered.Objects,
	}
	for _, f := range unit.Lowered.Functions {
		p.Functions = append(p.Functions, CacheFunction{Name: f.Name, Pure: f.Pure})
	}
	for _, d := range unit.Lowered.Registry.Descriptors() {
		p.Layouts = append(p.Layouts, d.String())
	}
	return p
}

func writeOutput(path, text string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(text), 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func outputName(display string) string {
	name := strings.TrimSuffix(display, filepath.Ext(display)) + ".ll"
	return filepath.FromSlash(strings.TrimLeft(name, "./"))
}
