package pipeline

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tikzmagic/pkg/config"
	"github.com/matzehuels/tikzmagic/pkg/convert"
	"github.com/matzehuels/tikzmagic/pkg/display"
	"github.com/matzehuels/tikzmagic/pkg/document"
	"github.com/matzehuels/tikzmagic/pkg/errors"
	"github.com/matzehuels/tikzmagic/pkg/latex"
	"github.com/matzehuels/tikzmagic/pkg/observability"
	"github.com/matzehuels/tikzmagic/pkg/scratch"
	"github.com/matzehuels/tikzmagic/pkg/toolexec"
)

// Runner executes pipeline requests.
//
// The Runner holds only configuration, the publisher and the logger. Each
// run's scratch directory travels as a value through the stages, so
// multiple goroutines can safely call Run on the same Runner, provided the
// logger's writer is safe for concurrent writes (os.Stderr is).
type Runner struct {
	Config    config.Config
	Publisher display.Publisher
	Logger    *log.Logger

	// SearchDir is added to TEXINPUTS. Empty means the working directory
	// at the time of the run.
	SearchDir string

	// ToolOutput receives the stdout and stderr of the external tools.
	// Nil discards them.
	ToolOutput io.Writer
}

// NewRunner creates a runner.
// If pub is nil, results are recorded in memory and discarded.
// If logger is nil, log.Default is used. Each run logs through its own
// derived logger, so a logger shared by concurrent runs needs a writer that
// serializes writes itself.
func NewRunner(cfg config.Config, pub display.Publisher, logger *log.Logger) *Runner {
	if pub == nil {
		pub = display.NewRecorder()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Config:    cfg,
		Publisher: pub,
		Logger:    logger,
	}
}

// Run executes the complete stage → compile → convert → publish pipeline.
//
// Tool failures do not fail the run: they are logged and visible in the
// Result. Run returns an error for an invalid request, when the scratch
// directory cannot be created, when the generated SVG is malformed, and
// when ctx is cancelled. The Result is non-nil whenever a scratch directory
// was created.
func (r *Runner) Run(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()

	// Stage 1: scratch directory and document
	stageStart := time.Now()
	dir, err := scratch.New(r.Config.ScratchDir)
	if err != nil {
		return nil, err
	}
	logger := r.Logger.With("run", shortID(dir.ID))
	hooks := observability.Pipeline()
	hooks.OnRunStart(ctx, dir.ID)
	hooks.OnStageStart(ctx, dir.ID, observability.StageScratch)

	result := &Result{Dir: dir}
	finish := func(err error) (*Result, error) {
		result.Stats.TotalTime = time.Since(start)
		hooks.OnRunComplete(ctx, dir.ID, result.Stats.TotalTime, err)
		return result, err
	}

	source, err := document.Build(req.Source, document.Options{
		Libraries: req.Libraries,
		Preamble:  req.Preamble,
		NoWrap:    req.NoWrap,
	})
	result.Stats.StageTime = time.Since(stageStart)
	hooks.OnStageComplete(ctx, dir.ID, observability.StageScratch, result.Stats.StageTime, err)
	if err != nil {
		return finish(err)
	}
	logger.Debug("staged", "dir", dir.Root, "duration", result.Stats.StageTime)

	inv := toolexec.New(r.ToolOutput, logger)

	// Stage 2: compile
	result.Stats.CompileTime, err = r.stage(ctx, dir.ID, observability.StageCompile, func() error {
		compiler := latex.New(r.Config.Tools.PDFLaTeX, inv, logger)
		compiler.SearchDir = r.searchDir(logger)
		result.Log = compiler.Compile(ctx, dir, source)
		if result.Log == nil {
			return nil
		}
		result.Diagnostics = latex.Summarize(*result.Log)
		for _, d := range result.Diagnostics {
			logger.Error(d.Message, "line", d.Line, "context", d.Context)
		}
		return errors.New(errors.ErrCodeToolFailed, "compilation failed")
	})
	if err := ctx.Err(); err != nil {
		return finish(err)
	}
	if err == nil {
		logger.Info("compiled", "duration", result.Stats.CompileTime.Round(time.Millisecond))
	}

	// Stage 3: convert
	result.Stats.ConvertTime, _ = r.stage(ctx, dir.ID, observability.StageConvert, func() error {
		conv := convert.New(r.Config.Tools.PDF2SVG, r.Config.Tools.Convert, inv, logger)
		result.Conversions = conv.All(ctx, dir)
		for _, format := range convert.Order {
			if res := result.Conversions[format]; !res.OK() {
				return res.Err
			}
		}
		return nil
	})
	if err := ctx.Err(); err != nil {
		return finish(err)
	}
	logger.Debug("converted", "duration", result.Stats.ConvertTime.Round(time.Millisecond))

	// Stage 4: publish
	result.Stats.PublishTime, err = r.stage(ctx, dir.ID, observability.StagePublish, func() error {
		return r.publish(dir, req, result, logger)
	})
	if err != nil {
		return finish(err)
	}
	return finish(nil)
}

// stage runs fn between the stage hooks and returns its duration.
func (r *Runner) stage(ctx context.Context, runID, name string, fn func() error) (time.Duration, error) {
	hooks := observability.Pipeline()
	hooks.OnStageStart(ctx, runID, name)
	start := time.Now()
	err := fn()
	d := time.Since(start)
	hooks.OnStageComplete(ctx, runID, name, d, err)
	return d, err
}

func (r *Runner) searchDir(logger *log.Logger) string {
	if r.SearchDir != "" {
		return r.SearchDir
	}
	wd, err := os.Getwd()
	if err != nil {
		logger.Warn("could not resolve working directory for TEXINPUTS", "err", err)
		return "."
	}
	return wd
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
