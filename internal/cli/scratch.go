package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tikzmagic/pkg/errors"
	"github.com/matzehuels/tikzmagic/pkg/scratch"
)

// scratchCommand creates the scratch directory management command.
func (c *CLI) scratchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scratch",
		Short: "Manage the tikz-* scratch directories",
		Long: `Manage the tikz-* scratch directories.

Every run leaves its sources and generated files in a tikz-<id> directory
so they can be downloaded afterwards. These commands locate and remove them.`,
	}

	cmd.AddCommand(c.scratchPathCommand())
	cmd.AddCommand(c.scratchListCommand())
	cmd.AddCommand(c.scratchCleanCommand())

	return cmd
}

// scratchBase returns the directory that holds the scratch directories.
func (c *CLI) scratchBase() (string, error) {
	base := c.Config.ScratchDir
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", errors.Wrap(errors.ErrCodeScratch, err, "resolve working directory")
		}
		base = wd
	}
	return filepath.Abs(base)
}

// scratchPathCommand creates the "scratch path" subcommand.
func (c *CLI) scratchPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the directory scratch directories are created in",
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := c.scratchBase()
			if err != nil {
				return err
			}
			fmt.Fprintln(c.Out, base)
			return nil
		},
	}
}

// scratchListCommand creates the "scratch list" subcommand.
func (c *CLI) scratchListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List scratch directories, oldest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := c.scratchBase()
			if err != nil {
				return err
			}
			dirs, err := scratch.Find(base)
			if err != nil {
				return errors.Wrap(errors.ErrCodeScratch, err, "list %s", base)
			}
			if len(dirs) == 0 {
				printInfo(c.Out, "No scratch directories in %s", base)
				return nil
			}
			for _, d := range dirs {
				entries, err := d.List()
				if err != nil {
					continue
				}
				var size int64
				for _, e := range entries {
					size += e.Size
				}
				printFileSize(c.Out, d.Name(), size)
				for _, e := range entries {
					printDetail(c.Out, "%s", e.Name)
				}
			}
			return nil
		},
	}
}

// scratchCleanCommand creates the "scratch clean" subcommand.
func (c *CLI) scratchCleanCommand() *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove scratch directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := c.scratchBase()
			if err != nil {
				return err
			}
			var cutoff time.Time
			if olderThan > 0 {
				cutoff = time.Now().Add(-olderThan)
			}
			n, err := scratch.Clean(base, cutoff)
			if err != nil {
				return errors.Wrap(errors.ErrCodeScratch, err, "clean %s", base)
			}
			if n == 0 {
				printInfo(c.Out, "Nothing to clean")
				return nil
			}
			printSuccess(c.Out, "Removed %d scratch directories", n)
			printDetail(c.Out, "Directory: %s", base)
			return nil
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 0, "only remove directories not modified within this duration (e.g. 24h)")
	return cmd
}
