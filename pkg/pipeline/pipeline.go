// Package pipeline runs the TikZ compile-and-display pipeline.
//
// One [Runner.Run] call processes one [Request] through four stages:
//
//  1. Stage: create a fresh scratch directory and build the document
//  2. Compile: run pdflatex on tikz.tex
//  3. Convert: produce tikz.svg, tikz.jpg and tikz.png from tikz.pdf
//  4. Publish: size-fix and display the SVG, copy requested artifacts,
//     list the scratch directory
//
// The pipeline is best-effort. Tool failures are logged and the run goes on,
// so the caller always sees a final display attempt and the file listing.
// Only a scratch directory that cannot be created, a malformed SVG and
// cancellation end a run with an error.
//
// # Usage
//
//	runner := pipeline.NewRunner(config.Default(), display.NewNotebook(os.Stdout), logger)
//	result, err := runner.Run(ctx, pipeline.Request{
//	    Source: `\draw (0,0) circle (1);`,
//	    Size:   &pipeline.Size{Width: 200, Height: 100},
//	    Save:   []string{"circle.pdf"},
//	})
//
// The scratch directory is a per-run value threaded through the stages and
// returned in [Result.Dir]; the Runner holds no per-run state, so one Runner
// can serve concurrent calls as long as its logger writes to a sink that is
// safe for concurrent use.
package pipeline

import (
	"time"

	"github.com/matzehuels/tikzmagic/pkg/display"
	"github.com/matzehuels/tikzmagic/pkg/errors"
	"github.com/matzehuels/tikzmagic/pkg/latex"
	"github.com/matzehuels/tikzmagic/pkg/scratch"
	"github.com/matzehuels/tikzmagic/pkg/svgfix"
	"github.com/matzehuels/tikzmagic/pkg/toolexec"
)

// NoImageMessage is logged when no SVG was produced.
const NoImageMessage = "No image generated."

// Size is a display size in pixels.
type Size = svgfix.Size

// =============================================================================
// Request - Pipeline Input
// =============================================================================

// Request is the input of one pipeline run.
type Request struct {
	// Source is the cell body: TikZ drawing commands or a complete document.
	Source string
	// Size is the display size of the SVG. Nil uses the viewBox extent.
	Size *Size
	// Save lists destination paths. The extension of each selects the
	// artifact that is copied; unknown extensions are ignored.
	Save []string
	// Libraries are loaded with \usetikzlibrary.
	Libraries []string
	// Preamble is inserted before \begin{document}.
	Preamble string
	// NoWrap compiles Source as-is instead of wrapping it in a document.
	NoWrap bool
}

// Validate checks the request before any work is done.
func (r Request) Validate() error {
	if r.Size != nil && (r.Size.Width <= 0 || r.Size.Height <= 0) {
		return errors.New(errors.ErrCodeInvalidSize, "size must be positive, got %s", r.Size)
	}
	for _, path := range r.Save {
		if err := errors.ValidateSavePath(path); err != nil {
			return err
		}
	}
	for _, lib := range r.Libraries {
		if err := errors.ValidateLibraryName(lib); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Result - Pipeline Output
// =============================================================================

// Result contains the outputs of a pipeline run.
type Result struct {
	// Dir is the run's scratch directory. It is left on disk.
	Dir *scratch.Dir

	// Log is the compilation log, set only when pdflatex failed.
	Log *string

	// Diagnostics are the errors extracted from Log.
	Diagnostics []latex.Diagnostic

	// Conversions holds the outcome of each converter keyed by format.
	Conversions map[string]toolexec.Result

	// Image is the published, size-fixed SVG. Nil if none was generated.
	Image *display.Image

	// Saved lists the destinations that received a copy.
	Saved []string

	// Files lists the contents of the scratch directory.
	Files []display.FileLink

	// Stats contains timing information.
	Stats Stats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	StageTime   time.Duration
	CompileTime time.Duration
	ConvertTime time.Duration
	PublishTime time.Duration
	TotalTime   time.Duration
}

// Compiled reports whether pdflatex succeeded.
func (r *Result) Compiled() bool {
	return r.Log == nil
}
