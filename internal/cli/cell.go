package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/tikzmagic/pkg/magic"
)

// cellCommand creates the cell command, which runs a notebook cell whose
// first line is the magic line.
func (c *CLI) cellCommand() *cobra.Command {
	var opts outputOpts

	cmd := &cobra.Command{
		Use:   "cell [file|-]",
		Short: "Run a %%tikz cell",
		Long: `Run a %%tikz cell.

The first line of the input is the magic line, the rest is the cell body:

  %%tikz -s 200,100 -S circle.pdf -l arrows.meta
  \draw[->] (0,0) -- (1,1);

Magic flags:
  -s, --size W,H        display size in pixels (default 400,240)
  -S, --save PATH       copy an artifact to PATH; repeatable
  -l, --library a,b     TikZ libraries to load
  -x, --preamble TEXT   extra preamble lines
      --no-wrap         compile the body as a complete document

Input without a magic line is treated as a cell body with default options.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := readInput(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			parser := magic.Parser{
				Size:      c.Config.DefaultSize(),
				Libraries: c.Config.Defaults.Libraries,
				Preamble:  c.Config.Defaults.Preamble,
			}
			req, err := parser.Parse(magic.Split(input))
			if err != nil {
				return err
			}
			return c.run(cmd.Context(), req, opts)
		},
	}

	addOutputFlags(cmd, &opts)
	return cmd
}
