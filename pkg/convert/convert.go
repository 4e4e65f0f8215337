// Package convert turns the compiled tikz.pdf into SVG and raster images.
//
// The conversions shell out to fixed command lines:
//
//	pdf2svg tikz.pdf tikz.svg
//	convert -density 1200 tikz.pdf -quality 100 -density 300 -background white -flatten tikz.jpg
//	convert -density 1200 tikz.pdf -quality 100 -density 300 -background white -flatten tikz.png
//
// Each conversion is attempted independently; a failed or missing converter
// is logged and does not stop the others. Consumers check for the output
// files before using them.
package convert

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tikzmagic/pkg/errors"
	"github.com/matzehuels/tikzmagic/pkg/scratch"
	"github.com/matzehuels/tikzmagic/pkg/toolexec"
)

// Format constants for converted outputs.
const (
	FormatSVG = "svg"
	FormatJPG = "jpg"
	FormatPNG = "png"
)

// Order is the sequence in which [Converter.All] runs the conversions.
var Order = []string{FormatSVG, FormatJPG, FormatPNG}

// outputs maps a format to its artifact name.
var outputs = map[string]string{
	FormatSVG: scratch.SVG,
	FormatJPG: scratch.JPG,
	FormatPNG: scratch.PNG,
}

// Converter runs the PDF converters against a scratch directory.
type Converter struct {
	// PDF2SVG is the pdf2svg executable.
	PDF2SVG string
	// Convert is the ImageMagick convert executable.
	Convert string
	Invoker *toolexec.Invoker
	Logger  *log.Logger
}

// New creates a converter for the given executables.
func New(pdf2svg, convert string, inv *toolexec.Invoker, logger *log.Logger) *Converter {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if inv == nil {
		inv = toolexec.New(nil, logger)
	}
	return &Converter{PDF2SVG: pdf2svg, Convert: convert, Invoker: inv, Logger: logger}
}

// Command returns the command that produces format inside dir.
// It returns false for formats other than svg, jpg and png.
func (c *Converter) Command(dir *scratch.Dir, format string) (toolexec.Command, bool) {
	out, ok := outputs[format]
	if !ok {
		return toolexec.Command{}, false
	}
	if format == FormatSVG {
		return toolexec.Command{
			Name: c.PDF2SVG,
			Args: []string{scratch.PDF, out},
			Dir:  dir.Root,
		}, true
	}
	return toolexec.Command{
		Name: c.Convert,
		Args: []string{
			"-density", "1200", scratch.PDF,
			"-quality", "100",
			"-density", "300",
			"-background", "white",
			"-flatten", out,
		},
		Dir: dir.Root,
	}, true
}

// SVG converts tikz.pdf to tikz.svg.
func (c *Converter) SVG(ctx context.Context, dir *scratch.Dir) toolexec.Result {
	return c.run(ctx, dir, FormatSVG)
}

// Raster converts tikz.pdf to tikz.jpg or tikz.png.
func (c *Converter) Raster(ctx context.Context, dir *scratch.Dir, format string) toolexec.Result {
	return c.run(ctx, dir, format)
}

// All runs every conversion in [Order] and returns the results keyed by
// format. A failure in one conversion never skips the others.
func (c *Converter) All(ctx context.Context, dir *scratch.Dir) map[string]toolexec.Result {
	results := make(map[string]toolexec.Result, len(Order))
	for _, format := range Order {
		results[format] = c.run(ctx, dir, format)
	}
	return results
}

func (c *Converter) run(ctx context.Context, dir *scratch.Dir, format string) toolexec.Result {
	cmd, ok := c.Command(dir, format)
	if !ok {
		err := errors.New(errors.ErrCodeInvalidInput, "unsupported conversion format %q", format)
		c.Logger.Error(err.Message)
		return toolexec.Result{ExitCode: -1, Err: err}
	}
	if !dir.Exists(scratch.PDF) {
		c.Logger.Debug("converting without tikz.pdf", "format", format)
	}
	return c.Invoker.Run(ctx, cmd)
}
