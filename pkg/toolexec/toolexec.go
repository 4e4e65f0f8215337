// Package toolexec runs the external programs of the pipeline.
//
// Commands are started with an explicit argument vector, never through a
// shell. The working directory is set on the child process only, so the
// calling process's current directory is never changed and cannot be left
// pointing at a scratch directory when a tool fails.
//
// Tool failures are not errors of the pipeline: [Invoker.Run] always returns
// a [Result], logs the failure, and leaves it to the caller to decide
// whether to continue.
package toolexec

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	tmerrors "github.com/matzehuels/tikzmagic/pkg/errors"
	"github.com/matzehuels/tikzmagic/pkg/observability"
)

// Command describes one external program invocation.
type Command struct {
	// Name is the program to run, looked up on PATH unless it contains a
	// path separator.
	Name string
	// Args are passed verbatim, without shell interpretation.
	Args []string
	// Dir is the child's working directory.
	Dir string
	// Env is the child's environment. Nil inherits the caller's.
	Env []string
}

// String renders the command line for logs.
func (c Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Result is the outcome of a command.
type Result struct {
	// ExitCode is the program's exit status, or -1 if it never ran or was
	// killed by a signal.
	ExitCode int
	// Err is nil on success, otherwise a *errors.ToolError.
	Err error
	// Duration is the wall time of the invocation.
	Duration time.Duration
}

// OK reports whether the command ran and exited with status zero.
func (r Result) OK() bool {
	return r.Err == nil
}

// Invoker runs commands, forwarding their output and logging failures.
type Invoker struct {
	// Output receives the child's stdout and stderr. Nil discards them.
	Output io.Writer
	Logger *log.Logger
}

// New creates an invoker. A nil logger discards log output.
func New(output io.Writer, logger *log.Logger) *Invoker {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Invoker{Output: output, Logger: logger}
}

// Run executes cmd and blocks until it exits or ctx is cancelled.
// Non-zero exit statuses and launch failures are logged at error level and
// reported in the Result; Run itself never fails.
func (inv *Invoker) Run(ctx context.Context, cmd Command) Result {
	start := time.Now()
	inv.Logger.Debug("running", "cmd", cmd.String(), "dir", cmd.Dir)

	observability.Tool().OnToolStart(ctx, cmd.Name, cmd.Args)

	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	c.Env = cmd.Env
	out := inv.Output
	if out == nil {
		out = io.Discard
	}
	c.Stdout = out
	c.Stderr = out

	err := c.Run()
	res := Result{Duration: time.Since(start)}
	defer func() {
		observability.Tool().OnToolExit(ctx, cmd.Name, res.ExitCode, res.Duration)
	}()
	if err == nil {
		inv.Logger.Debug("finished", "tool", cmd.Name, "duration", res.Duration.Round(time.Millisecond))
		return res
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
	} else {
		res.ExitCode = -1
	}
	toolErr := &tmerrors.ToolError{Tool: cmd.Name, ExitCode: res.ExitCode, Err: err}
	res.Err = toolErr
	inv.Logger.Error(toolErr.Error())
	return res
}

// LookPath reports the resolved path of a program, or a TOOL_NOT_FOUND error.
func LookPath(name string) (string, error) {
	p, err := exec.LookPath(name)
	if err != nil {
		return "", tmerrors.Wrap(tmerrors.ErrCodeToolNotFound, err, "%s not found", name)
	}
	return p, nil
}

// ExtendPath returns a copy of env in which the search-path variable key is
// extended with dir.
//
// If key is already set, dir is prepended to it. Otherwise key becomes
// ".", dir and a trailing empty segment; TeX reads the empty segment as
// "the default search path", which keeps the system packages reachable.
func ExtendPath(env []string, key, dir string) []string {
	sep := string(os.PathListSeparator)
	out := make([]string, 0, len(env)+1)
	found := false
	for _, kv := range env {
		k, v, ok := strings.Cut(kv, "=")
		if ok && k == key && !found {
			out = append(out, key+"="+dir+sep+v)
			found = true
			continue
		}
		if ok && k == key {
			// Later duplicates would shadow the extended value.
			continue
		}
		out = append(out, kv)
	}
	if !found {
		out = append(out, key+"=."+sep+dir+sep+sep)
	}
	return out
}
