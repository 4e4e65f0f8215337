package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/tikzmagic/pkg/errors"
	"github.com/matzehuels/tikzmagic/pkg/toolexec"
)

// doctorCommand creates the doctor command, which checks that the external
// tools are installed.
func (c *CLI) doctorCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that pdflatex, pdf2svg and convert are available",
		RunE: func(cmd *cobra.Command, args []string) error {
			tools := []struct{ role, name string }{
				{"pdflatex", c.Config.Tools.PDFLaTeX},
				{"pdf2svg", c.Config.Tools.PDF2SVG},
				{"convert", c.Config.Tools.Convert},
			}

			var missing []string
			for _, t := range tools {
				path, err := toolexec.LookPath(t.name)
				if err != nil {
					printError(c.Out, "%s: %s not found", t.role, t.name)
					missing = append(missing, t.role)
					continue
				}
				printSuccess(c.Out, "%s", t.role)
				printKeyValue(c.Out, "  path", path)
			}

			if len(missing) > 0 {
				return errors.New(errors.ErrCodeToolNotFound, "%d of %d tools missing", len(missing), len(tools))
			}
			return nil
		},
	}
}
