// Package cli implements the tikzmagic command-line interface.
//
// The CLI plays the role of the %%tikz notebook magic: it reads a TikZ cell,
// runs the compile-and-convert pipeline, and shows the result either in the
// terminal or as Jupyter display_data messages. It is built using cobra and
// supports verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - cell: Run a cell whose first line is a %%tikz magic line
//   - render: Run TikZ source with the magic options given as flags
//   - scratch: Locate, list and clean scratch directories
//   - doctor: Check that the external tools are installed
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// forwards the output of pdflatex and the converters. Loggers are passed
// through context.Context to allow structured progress tracking.
//
// # Example
//
//	import "github.com/matzehuels/tikzmagic/internal/cli"
//
//	func main() {
//	    c := cli.New(os.Stderr, cli.LogInfo)
//	    if err := c.RootCommand().Execute(); err != nil {
//	        os.Exit(1)
//	    }
//	}
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tikzmagic/pkg/observability"
)

// newLogger creates a logger writing to w at level, with "15:04:05.00"
// timestamps.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs the elapsed time of a command when it finishes.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time.
// Example output: "Rendered tikz-3f2a… (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached to ctx, or log.Default.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// logHooks reports pipeline stages at debug level through the logger
// carried by the event's context.
type logHooks struct {
	observability.NoopPipelineHooks
}

func (logHooks) OnStageComplete(ctx context.Context, runID, stage string, d time.Duration, err error) {
	l := loggerFromContext(ctx)
	if err != nil {
		l.Debug("stage failed", "stage", stage, "duration", d.Round(time.Millisecond), "err", err)
		return
	}
	l.Debug("stage done", "stage", stage, "duration", d.Round(time.Millisecond))
}

func (logHooks) OnRunComplete(ctx context.Context, runID string, d time.Duration, err error) {
	if err != nil {
		loggerFromContext(ctx).Debug("run failed", "run", runID, "err", err)
	}
}

var _ observability.PipelineHooks = logHooks{}
