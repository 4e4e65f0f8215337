package convert

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/tikzmagic/pkg/scratch"
)

// fakeTools writes pdf2svg and convert scripts that append their name to
// calls.log and create their last argument.
func fakeTools(t *testing.T, pdf2svgBody, convertBody string) (string, string) {
	t.Helper()
	bin := t.TempDir()
	write := func(name, body string) string {
		path := filepath.Join(bin, name)
		script := "#!/bin/sh\necho " + name + " \"$@\" >> calls.log\n" + body + "\n"
		if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
			t.Fatal(err)
		}
		return path
	}
	return write("pdf2svg", pdf2svgBody), write("convert", convertBody)
}

const createLastArg = `for last; do :; done; echo out > "$last"`

func newDir(t *testing.T) *scratch.Dir {
	t.Helper()
	d, err := scratch.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := d.WriteFile(scratch.PDF, []byte("%PDF-1.5")); err != nil {
		t.Fatal(err)
	}
	return d
}

func TestAllRunsInOrder(t *testing.T) {
	pdf2svg, conv := fakeTools(t, createLastArg, createLastArg)
	dir := newDir(t)

	results := New(pdf2svg, conv, nil, nil).All(context.Background(), dir)
	for _, format := range Order {
		if !results[format].OK() {
			t.Errorf("%s conversion failed: %v", format, results[format].Err)
		}
	}
	for _, name := range []string{scratch.SVG, scratch.JPG, scratch.PNG} {
		if !dir.Exists(name) {
			t.Errorf("%s should be generated", name)
		}
	}

	data, err := os.ReadFile(dir.Path("calls.log"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	want := []string{
		"pdf2svg tikz.pdf tikz.svg",
		"convert -density 1200 tikz.pdf -quality 100 -density 300 -background white -flatten tikz.jpg",
		"convert -density 1200 tikz.pdf -quality 100 -density 300 -background white -flatten tikz.png",
	}
	if len(lines) != len(want) {
		t.Fatalf("calls = %q, want %q", lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("call %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestAllContinuesAfterFailure(t *testing.T) {
	pdf2svg, conv := fakeTools(t, "exit 1", createLastArg)
	dir := newDir(t)

	results := New(pdf2svg, conv, nil, nil).All(context.Background(), dir)
	if results[FormatSVG].OK() {
		t.Error("svg conversion should fail")
	}
	if results[FormatSVG].ExitCode != 1 {
		t.Errorf("svg exit code = %d, want 1", results[FormatSVG].ExitCode)
	}
	if !results[FormatJPG].OK() || !results[FormatPNG].OK() {
		t.Error("raster conversions should still run after svg failure")
	}
	if dir.Exists(scratch.SVG) {
		t.Error("tikz.svg should not exist")
	}
	if !dir.Exists(scratch.PNG) || !dir.Exists(scratch.JPG) {
		t.Error("raster outputs should exist")
	}
}

func TestAllWithMissingConverters(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing")
	results := New(missing, missing, nil, nil).All(context.Background(), newDir(t))
	if len(results) != 3 {
		t.Fatalf("All() returned %d results, want 3", len(results))
	}
	for format, res := range results {
		if res.OK() || res.ExitCode != -1 {
			t.Errorf("%s: result = %+v, want launch failure", format, res)
		}
	}
}

func TestCommandUnsupportedFormat(t *testing.T) {
	c := New("pdf2svg", "convert", nil, nil)
	if _, ok := c.Command(&scratch.Dir{Root: "/tmp"}, "gif"); ok {
		t.Error("Command(gif) should not be supported")
	}
	res := c.Raster(context.Background(), &scratch.Dir{Root: "/tmp"}, "gif")
	if res.OK() {
		t.Error("Raster(gif) should fail")
	}
}

func TestCommandUsesArgumentVector(t *testing.T) {
	c := New("/opt/bin/pdf2svg", "magick", nil, nil)
	dir := &scratch.Dir{Root: "/tmp/tikz-abc"}

	cmd, ok := c.Command(dir, FormatSVG)
	if !ok {
		t.Fatal("Command(svg) not supported")
	}
	if cmd.Name != "/opt/bin/pdf2svg" || len(cmd.Args) != 2 || cmd.Dir != dir.Root {
		t.Errorf("Command(svg) = %+v", cmd)
	}

	cmd, _ = c.Command(dir, FormatPNG)
	if cmd.Name != "magick" || cmd.Args[len(cmd.Args)-1] != scratch.PNG {
		t.Errorf("Command(png) = %+v", cmd)
	}
}
