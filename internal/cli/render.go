package cli

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tikzmagic/pkg/display"
	"github.com/matzehuels/tikzmagic/pkg/document"
	"github.com/matzehuels/tikzmagic/pkg/errors"
	"github.com/matzehuels/tikzmagic/pkg/pipeline"
	"github.com/matzehuels/tikzmagic/pkg/scratch"
	"github.com/matzehuels/tikzmagic/pkg/svgfix"
)

// outputOpts selects how results are shown.
type outputOpts struct {
	notebook bool   // emit display_data JSON lines instead of terminal output
	output   string // write the sized SVG here (terminal mode)
}

// renderOpts holds the command-line flags for the render command.
// They mirror the flags of the %%tikz magic line.
type renderOpts struct {
	size      string   // display size "W,H"
	save      []string // destinations; the extension selects the artifact
	libraries string   // comma-separated TikZ libraries
	preamble  string   // extra preamble
	noWrap    bool     // compile the input as a complete document
	outputOpts
}

// renderCommand creates the render command, which runs TikZ source with the
// magic options given as regular flags.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [file|-]",
		Short: "Compile TikZ source and display the SVG",
		Long: `Compile TikZ source and display the SVG.

The source is read from the file argument, or from stdin when the argument
is "-" or missing. Drawing commands are wrapped in a standalone document
unless the source already contains \documentclass or --no-wrap is given.`,
		Example: `  echo '\draw (0,0) circle (1);' | tikzmagic render -s 200,100 -S circle.pdf -o circle.svg
  tikzmagic render figure.tex -l arrows.meta,positioning --notebook`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := readInput(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			req, err := c.renderRequest(source, opts)
			if err != nil {
				return err
			}
			return c.run(cmd.Context(), req, opts.outputOpts)
		},
	}

	cmd.Flags().StringVarP(&opts.size, "size", "s", "", `display size in pixels, "width,height" (default from config, 400,240)`)
	cmd.Flags().StringArrayVarP(&opts.save, "save", "S", nil, "save a copy of an artifact (.tex, .pdf, .svg, .png, .jpg); repeatable")
	cmd.Flags().StringVarP(&opts.libraries, "library", "l", "", "comma-separated TikZ libraries")
	cmd.Flags().StringVarP(&opts.preamble, "preamble", "x", "", "extra preamble lines")
	cmd.Flags().BoolVar(&opts.noWrap, "no-wrap", false, "compile the source as a complete document")
	addOutputFlags(cmd, &opts.outputOpts)

	return cmd
}

func addOutputFlags(cmd *cobra.Command, opts *outputOpts) {
	cmd.Flags().BoolVar(&opts.notebook, "notebook", false, "write Jupyter display_data messages to stdout")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the sized SVG to this file")
}

// renderRequest builds a pipeline request from flags, falling back to the
// configured defaults.
func (c *CLI) renderRequest(source string, opts renderOpts) (pipeline.Request, error) {
	size := c.Config.DefaultSize()
	if opts.size != "" {
		s, err := svgfix.ParseSize(opts.size)
		if err != nil {
			return pipeline.Request{}, err
		}
		size = s
	}
	libs := c.Config.Defaults.Libraries
	if opts.libraries != "" {
		libs = document.SplitLibraries(opts.libraries)
	}
	preamble := c.Config.Defaults.Preamble
	if opts.preamble != "" {
		preamble = opts.preamble
	}

	req := pipeline.Request{
		Source:    source,
		Size:      &size,
		Save:      opts.save,
		Libraries: libs,
		Preamble:  preamble,
		NoWrap:    opts.noWrap,
	}
	return req, req.Validate()
}

// run executes req and reports the outcome.
func (c *CLI) run(ctx context.Context, req pipeline.Request, opts outputOpts) error {
	logger := loggerFromContext(ctx)

	var pub display.Publisher
	if opts.notebook {
		pub = display.NewNotebook(c.Out)
	} else {
		pub = newTerminalPublisher(c.Out, opts.output)
	}
	runner := c.newRunner(pub, logger)

	prog := newProgress(logger)
	spinner := newSpinnerWithContext(ctx, c.Err, "Compiling TikZ...")
	if !opts.notebook && !c.verbose {
		spinner.Start()
	}
	res, err := runner.Run(ctx, req)
	spinner.Stop()
	if err != nil {
		return err
	}

	if !res.Compiled() && !opts.notebook {
		printWarning(c.Out, "pdflatex failed")
		for _, d := range res.Diagnostics {
			if d.Line > 0 {
				printDetail(c.Out, "l.%d: %s  %s", d.Line, d.Message, d.Context)
			} else {
				printDetail(c.Out, "%s", d.Message)
			}
		}
		if len(res.Diagnostics) == 0 {
			printDetail(c.Out, "see %s", res.Dir.Path(scratch.Log))
		}
	}
	prog.done("Rendered " + res.Dir.Name())
	return nil
}

// readInput reads the file named by args[0], or stdin for "-" or no args.
func readInput(stdin io.Reader, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "read stdin")
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.Wrap(errors.ErrCodeFileNotFound, err, "%s not found", args[0])
		}
		return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", args[0])
	}
	return string(data), nil
}
