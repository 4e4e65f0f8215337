// Package config loads tikzmagic settings from a TOML file.
//
// Every field has a default, so a missing file is not an error:
//
//	scratch_dir = ""          # empty: the current working directory
//
//	[tools]
//	pdflatex = "pdflatex"
//	pdf2svg  = "pdf2svg"
//	convert  = "convert"
//
//	[defaults]
//	size      = "400,240"
//	libraries = ["arrows.meta"]
//	preamble  = ""
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/tikzmagic/pkg/errors"
	"github.com/matzehuels/tikzmagic/pkg/svgfix"
)

// appName is used for the configuration directory.
const appName = "tikzmagic"

// Config holds all user-configurable settings.
type Config struct {
	// ScratchDir is the parent of the per-run scratch directories.
	ScratchDir string   `toml:"scratch_dir"`
	Tools      Tools    `toml:"tools"`
	Defaults   Defaults `toml:"defaults"`
}

// Tools names the external programs. Each entry is a program name looked up
// on PATH or an absolute path.
type Tools struct {
	PDFLaTeX string `toml:"pdflatex"`
	PDF2SVG  string `toml:"pdf2svg"`
	Convert  string `toml:"convert"`
}

// Defaults are applied to requests that do not set the value themselves.
type Defaults struct {
	Size      string   `toml:"size"`
	Libraries []string `toml:"libraries"`
	Preamble  string   `toml:"preamble"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Tools: Tools{
			PDFLaTeX: "pdflatex",
			PDF2SVG:  "pdf2svg",
			Convert:  "convert",
		},
		Defaults: Defaults{
			Size: svgfix.DefaultSize.String(),
		},
	}
}

// Path returns the default configuration file location, honoring
// XDG_CONFIG_HOME (~/.config/tikzmagic/config.toml).
func Path() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Load reads the configuration file at path on top of [Default].
// A missing file yields the defaults. Unknown keys are rejected so typos in
// tool names do not silently fall back to PATH lookups.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, &cfg)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeConfig, err, "read %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, errors.New(errors.ErrCodeConfig, "unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the pipeline cannot use.
func (c Config) Validate() error {
	if _, err := svgfix.ParseSize(c.Defaults.Size); err != nil {
		return errors.Wrap(errors.ErrCodeConfig, err, "defaults.size")
	}
	for _, lib := range c.Defaults.Libraries {
		if err := errors.ValidateLibraryName(lib); err != nil {
			return errors.Wrap(errors.ErrCodeConfig, err, "defaults.libraries")
		}
	}
	for name, tool := range map[string]string{
		"tools.pdflatex": c.Tools.PDFLaTeX,
		"tools.pdf2svg":  c.Tools.PDF2SVG,
		"tools.convert":  c.Tools.Convert,
	} {
		if strings.TrimSpace(tool) == "" {
			return errors.New(errors.ErrCodeConfig, "%s cannot be empty", name)
		}
	}
	return nil
}

// DefaultSize returns the parsed default display size.
func (c Config) DefaultSize() svgfix.Size {
	s, err := svgfix.ParseSize(c.Defaults.Size)
	if err != nil {
		return svgfix.DefaultSize
	}
	return s
}
