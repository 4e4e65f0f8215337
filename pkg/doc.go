// Package pkg provides the core libraries for tikzmagic.
//
// # Overview
//
// tikzmagic renders a TikZ picture typed into a notebook cell (or a file) as
// an image. Each run gets its own scratch directory; the picture is wrapped in
// a standalone LaTeX document, compiled with pdflatex, converted with pdf2svg
// and ImageMagick, and published to a display surface.
//
// # Architecture
//
// The data flow of a single run:
//
//	%%tikz cell
//	     ↓
//	[magic] (flags + cell body → request)
//	     ↓
//	[scratch] (fresh tikz-<uuid> directory)
//	     ↓
//	[document] (tikz.tex) → [latex] (tikz.pdf, tikz.log)
//	     ↓
//	[convert] (tikz.svg, tikz.jpg, tikz.png)
//	     ↓
//	[svgfix] (width/height) → [display] (image + file links)
//
// [pipeline] ties the stages together and is used by both CLI commands.
//
// # Quick Start
//
//	cfg, _ := config.Load("")
//	runner := pipeline.NewRunner(cfg, display.NewNotebook(os.Stdout), nil)
//	req, _ := magic.Parse("-s 400,300", `\draw (0,0) circle (1);`)
//	res, err := runner.Run(ctx, req)
//
// # Packages
//
// [magic] - Magic line tokenizing and flag parsing.
//
// [scratch] - Per-run scratch directories and the artifact names inside them.
//
// [document] - Standalone LaTeX document assembly.
//
// [latex] - pdflatex invocation and log diagnostics.
//
// [convert] - PDF to SVG and raster conversion.
//
// [svgfix] - Width/height rewriting of the converted SVG.
//
// [display] - Display bundles, the notebook publisher and file listings.
//
// [toolexec] - External process execution with captured output.
//
// [config] - TOML configuration for tool paths and defaults.
//
// [observability] - Pipeline and tool hooks.
//
// [errors] - Coded errors and input validation.
//
// [buildinfo] - Version information.
//
// [magic]: https://pkg.go.dev/github.com/matzehuels/tikzmagic/pkg/magic
// [scratch]: https://pkg.go.dev/github.com/matzehuels/tikzmagic/pkg/scratch
// [document]: https://pkg.go.dev/github.com/matzehuels/tikzmagic/pkg/document
// [latex]: https://pkg.go.dev/github.com/matzehuels/tikzmagic/pkg/latex
// [convert]: https://pkg.go.dev/github.com/matzehuels/tikzmagic/pkg/convert
// [svgfix]: https://pkg.go.dev/github.com/matzehuels/tikzmagic/pkg/svgfix
// [display]: https://pkg.go.dev/github.com/matzehuels/tikzmagic/pkg/display
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/tikzmagic/pkg/pipeline
// [toolexec]: https://pkg.go.dev/github.com/matzehuels/tikzmagic/pkg/toolexec
// [config]: https://pkg.go.dev/github.com/matzehuels/tikzmagic/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/tikzmagic/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/tikzmagic/pkg/errors
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/tikzmagic/pkg/buildinfo
package pkg
