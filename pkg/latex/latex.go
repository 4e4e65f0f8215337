// Package latex runs the LaTeX compile stage of the pipeline.
//
// [Compiler.Compile] stages the document as tikz.tex in a scratch directory
// and runs
//
//	pdflatex -shell-escape tikz.tex
//
// inside it. Shell-escape is required because TikZ externalization and
// gnuplot-backed plots run programs from within the document. The caller's
// working directory is added to TEXINPUTS so documents can \input files that
// sit next to the notebook.
//
// Compilation never fails the pipeline. A non-zero exit is reported by
// returning the content of tikz.log, or [NoLogMessage] when LaTeX did not
// get far enough to write one.
package latex

import (
	"bufio"
	"context"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tikzmagic/pkg/scratch"
	"github.com/matzehuels/tikzmagic/pkg/toolexec"
)

// NoLogMessage is returned in place of the log when compilation failed
// without producing tikz.log.
const NoLogMessage = "No log file generated."

// SearchPathVar is the environment variable TeX uses to locate inputs.
const SearchPathVar = "TEXINPUTS"

// Compiler runs pdflatex against a scratch directory.
type Compiler struct {
	// Binary is the pdflatex executable.
	Binary string
	// SearchDir is added to TEXINPUTS. Empty means the working directory
	// at the time Compile is called.
	SearchDir string
	Invoker   *toolexec.Invoker
	Logger    *log.Logger
}

// New creates a compiler for the given pdflatex binary.
func New(binary string, inv *toolexec.Invoker, logger *log.Logger) *Compiler {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if inv == nil {
		inv = toolexec.New(nil, logger)
	}
	return &Compiler{Binary: binary, Invoker: inv, Logger: logger}
}

// Command returns the compile command for dir with env as the base
// environment.
func (c *Compiler) Command(dir *scratch.Dir, env []string, searchDir string) toolexec.Command {
	return toolexec.Command{
		Name: c.Binary,
		Args: []string{"-shell-escape", scratch.Source},
		Dir:  dir.Root,
		Env:  toolexec.ExtendPath(env, SearchPathVar, searchDir),
	}
}

// Compile writes source verbatim to tikz.tex and runs pdflatex on it.
// It returns nil on success and the compilation log on failure.
func (c *Compiler) Compile(ctx context.Context, dir *scratch.Dir, source string) *string {
	if err := dir.WriteFile(scratch.Source, []byte(source)); err != nil {
		c.Logger.Error("could not stage source", "err", err)
		msg := err.Error()
		return &msg
	}

	searchDir := c.SearchDir
	if searchDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			c.Logger.Warn("could not resolve working directory for TEXINPUTS", "err", err)
			wd = "."
		}
		searchDir = wd
	}

	res := c.Invoker.Run(ctx, c.Command(dir, os.Environ(), searchDir))
	if res.OK() {
		return nil
	}

	data, err := dir.ReadFile(scratch.Log)
	if err != nil {
		c.Logger.Error(NoLogMessage)
		msg := NoLogMessage
		return &msg
	}
	logText := string(data)
	return &logText
}

// Diagnostic is one error reported in a LaTeX log.
type Diagnostic struct {
	// Message is the text after the leading "! ".
	Message string
	// Line is the source line number from the following "l.<n>" marker,
	// or 0 if none was found.
	Line int
	// Context is the source excerpt printed after the line marker.
	Context string
}

// Summarize extracts the errors from a LaTeX log. TeX reports each error as
// a line starting with "!" followed, a few lines later, by "l.<n> <excerpt>".
func Summarize(logText string) []Diagnostic {
	var diags []Diagnostic
	var cur *Diagnostic

	sc := bufio.NewScanner(strings.NewReader(logText))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, "!"):
			if cur != nil {
				diags = append(diags, *cur)
			}
			cur = &Diagnostic{Message: strings.TrimSpace(strings.TrimPrefix(line, "!"))}
		case cur != nil && cur.Line == 0 && strings.HasPrefix(line, "l."):
			num, rest, _ := strings.Cut(strings.TrimPrefix(line, "l."), " ")
			n := 0
			for _, r := range num {
				if r < '0' || r > '9' {
					n = 0
					break
				}
				n = n*10 + int(r-'0')
			}
			cur.Line = n
			cur.Context = strings.TrimSpace(rest)
			diags = append(diags, *cur)
			cur = nil
		}
	}
	if cur != nil {
		diags = append(diags, *cur)
	}
	return diags
}
