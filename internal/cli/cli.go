// Package cli implements the tikzmagic command-line interface.
package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tikzmagic/pkg/buildinfo"
	"github.com/matzehuels/tikzmagic/pkg/config"
	"github.com/matzehuels/tikzmagic/pkg/display"
	"github.com/matzehuels/tikzmagic/pkg/observability"
	"github.com/matzehuels/tikzmagic/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = "tikzmagic"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is loaded before any command runs.
	Config config.Config

	// Out receives command output; Err receives logs, progress and tool
	// output.
	Out io.Writer
	Err io.Writer

	configPath string
	verbose    bool
}

// New creates a new CLI instance with a default logger writing to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
		Out:    os.Stdout,
		Err:    w,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "tikzmagic compiles TikZ pictures to SVG, PNG and JPG",
		Long: `tikzmagic compiles TikZ drawings with pdflatex, converts the result with
pdf2svg and ImageMagick, and displays the SVG in the terminal or as a Jupyter
display_data message.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.SetLogLevel(LogDebug)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			observability.SetPipelineHooks(logHooks{})
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/tikzmagic/config.toml)")

	// Register all subcommands
	root.AddCommand(c.cellCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.scratchCommand())
	root.AddCommand(c.doctorCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the --config file, or the default location when unset.
func (c *CLI) loadConfig() error {
	path := c.configPath
	if path == "" {
		p, err := config.Path()
		if err != nil {
			c.Logger.Debug("no config location", "err", err)
			return nil
		}
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	c.Logger.Debug("loaded config", "path", path)
	c.Config = cfg
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. Tool output is shown
// only in verbose mode.
func (c *CLI) newRunner(pub display.Publisher, logger *log.Logger) *pipeline.Runner {
	runner := pipeline.NewRunner(c.Config, pub, logger)
	if c.verbose {
		runner.ToolOutput = c.Err
	}
	return runner
}
