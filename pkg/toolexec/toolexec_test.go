package toolexec

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tikzmagic/pkg/errors"
	"github.com/matzehuels/tikzmagic/pkg/observability"
)

// writeScript writes an executable /bin/sh script into dir.
func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunSuccess(t *testing.T) {
	bin := t.TempDir()
	work := t.TempDir()
	tool := writeScript(t, bin, "touchpdf", `echo "$@" > out.txt`)

	inv := New(nil, nil)
	res := inv.Run(context.Background(), Command{Name: tool, Args: []string{"a b", "c"}, Dir: work})
	if !res.OK() {
		t.Fatalf("Run() error: %v", res.Err)
	}
	if res.ExitCode != 0 {
		t.Errorf("ExitCode = %d, want 0", res.ExitCode)
	}

	data, err := os.ReadFile(filepath.Join(work, "out.txt"))
	if err != nil {
		t.Fatalf("tool should run inside Dir: %v", err)
	}
	if strings.TrimSpace(string(data)) != "a b c" {
		t.Errorf("args = %q, want %q", strings.TrimSpace(string(data)), "a b c")
	}
}

func TestRunDoesNotChangeWorkingDirectory(t *testing.T) {
	bin := t.TempDir()
	tool := writeScript(t, bin, "fail", "exit 3")

	before, _ := os.Getwd()
	New(nil, nil).Run(context.Background(), Command{Name: tool, Dir: t.TempDir()})
	after, _ := os.Getwd()
	if before != after {
		t.Errorf("working directory changed from %s to %s", before, after)
	}
}

func TestRunNonZeroExit(t *testing.T) {
	bin := t.TempDir()
	tool := writeScript(t, bin, "fail", "echo boom >&2; exit 3")

	var out, logs bytes.Buffer
	logger := log.NewWithOptions(&logs, log.Options{Level: log.DebugLevel})
	res := New(&out, logger).Run(context.Background(), Command{Name: tool, Dir: t.TempDir()})

	if res.OK() {
		t.Fatal("Run() should report failure")
	}
	if res.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", res.ExitCode)
	}
	var te *errors.ToolError
	if !asToolError(res.Err, &te) || te.Code() != errors.ErrCodeToolFailed {
		t.Errorf("Err = %v, want ToolError with TOOL_FAILED", res.Err)
	}
	if !strings.Contains(out.String(), "boom") {
		t.Errorf("tool stderr should be forwarded, got %q", out.String())
	}
	if !strings.Contains(logs.String(), "terminated with status 3") {
		t.Errorf("failure should be logged, got %q", logs.String())
	}
}

func TestRunMissingBinary(t *testing.T) {
	var logs bytes.Buffer
	logger := log.NewWithOptions(&logs, log.Options{})
	res := New(nil, logger).Run(context.Background(), Command{
		Name: filepath.Join(t.TempDir(), "no-such-tool"),
		Dir:  t.TempDir(),
	})

	if res.OK() {
		t.Fatal("Run() should report failure for a missing binary")
	}
	if res.ExitCode != -1 {
		t.Errorf("ExitCode = %d, want -1", res.ExitCode)
	}
	var te *errors.ToolError
	if !asToolError(res.Err, &te) || te.Code() != errors.ErrCodeToolNotFound {
		t.Errorf("Err = %v, want ToolError with TOOL_NOT_FOUND", res.Err)
	}
	if !strings.Contains(logs.String(), "execution failed") {
		t.Errorf("launch failure should be logged, got %q", logs.String())
	}
}

func TestRunCancelled(t *testing.T) {
	bin := t.TempDir()
	tool := writeScript(t, bin, "slow", "sleep 5")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := New(nil, nil).Run(ctx, Command{Name: tool, Dir: t.TempDir()})
	if res.OK() {
		t.Error("Run() with cancelled context should fail")
	}
}

func TestRunEnvironment(t *testing.T) {
	bin := t.TempDir()
	work := t.TempDir()
	tool := writeScript(t, bin, "env", `printf '%s' "$TEXINPUTS" > env.txt`)

	res := New(nil, nil).Run(context.Background(), Command{
		Name: tool,
		Dir:  work,
		Env:  []string{"TEXINPUTS=/notebooks:", "PATH=" + os.Getenv("PATH")},
	})
	if !res.OK() {
		t.Fatalf("Run() error: %v", res.Err)
	}
	data, _ := os.ReadFile(filepath.Join(work, "env.txt"))
	if string(data) != "/notebooks:" {
		t.Errorf("TEXINPUTS = %q, want %q", data, "/notebooks:")
	}
}

func TestExtendPath(t *testing.T) {
	sep := string(os.PathListSeparator)
	tests := []struct {
		name string
		env  []string
		want string
	}{
		{
			name: "unset adds dot, dir and default path",
			env:  []string{"HOME=/root"},
			want: "TEXINPUTS=." + sep + "/work" + sep + sep,
		},
		{
			name: "set is extended, not replaced",
			env:  []string{"TEXINPUTS=/styles" + sep},
			want: "TEXINPUTS=/work" + sep + "/styles" + sep,
		},
		{
			name: "empty value is extended",
			env:  []string{"TEXINPUTS="},
			want: "TEXINPUTS=/work" + sep,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtendPath(tt.env, "TEXINPUTS", "/work")
			var found []string
			for _, kv := range got {
				if strings.HasPrefix(kv, "TEXINPUTS=") {
					found = append(found, kv)
				}
			}
			if len(found) != 1 || found[0] != tt.want {
				t.Errorf("ExtendPath() TEXINPUTS = %v, want [%s]", found, tt.want)
			}
		})
	}
}

func TestExtendPathDoesNotMutateInput(t *testing.T) {
	env := []string{"TEXINPUTS=/a", "HOME=/root"}
	_ = ExtendPath(env, "TEXINPUTS", "/work")
	if env[0] != "TEXINPUTS=/a" {
		t.Errorf("input modified: %v", env)
	}
}

func TestCommandString(t *testing.T) {
	c := Command{Name: "pdflatex", Args: []string{"-shell-escape", "tikz.tex"}}
	if c.String() != "pdflatex -shell-escape tikz.tex" {
		t.Errorf("String() = %q", c.String())
	}
}

func TestLookPath(t *testing.T) {
	if _, err := LookPath("sh"); err != nil {
		t.Errorf("LookPath(sh) error: %v", err)
	}
	_, err := LookPath("tikzmagic-no-such-program")
	if !errors.Is(err, errors.ErrCodeToolNotFound) {
		t.Errorf("LookPath(missing) code = %v, want %v", errors.GetCode(err), errors.ErrCodeToolNotFound)
	}
}

func asToolError(err error, target **errors.ToolError) bool {
	te, ok := err.(*errors.ToolError)
	if ok {
		*target = te
	}
	return ok
}

type recordingToolHooks struct {
	observability.NoopToolHooks
	mu     sync.Mutex
	starts []string
	exits  []int
}

func (h *recordingToolHooks) OnToolStart(_ context.Context, tool string, _ []string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.starts = append(h.starts, filepath.Base(tool))
}

func (h *recordingToolHooks) OnToolExit(_ context.Context, _ string, exitCode int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.exits = append(h.exits, exitCode)
}

func TestRunEmitsToolHooks(t *testing.T) {
	hooks := &recordingToolHooks{}
	observability.SetToolHooks(hooks)
	defer observability.Reset()

	bin := t.TempDir()
	ok := writeScript(t, bin, "ok", "exit 0")
	bad := writeScript(t, bin, "bad", "exit 2")

	inv := New(nil, nil)
	inv.Run(context.Background(), Command{Name: ok, Dir: t.TempDir()})
	inv.Run(context.Background(), Command{Name: bad, Dir: t.TempDir()})

	if len(hooks.starts) != 2 || hooks.starts[0] != "ok" || hooks.starts[1] != "bad" {
		t.Errorf("starts = %v, want [ok bad]", hooks.starts)
	}
	if len(hooks.exits) != 2 || hooks.exits[0] != 0 || hooks.exits[1] != 2 {
		t.Errorf("exits = %v, want [0 2]", hooks.exits)
	}
}
