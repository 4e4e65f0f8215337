package document

import (
	"strings"
	"testing"

	"github.com/matzehuels/tikzmagic/pkg/errors"
)

func TestBuildWrapsDrawingCommands(t *testing.T) {
	got, err := Build(`\draw (0,0) circle (1);`, Options{})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	want := `\documentclass[tikz,border=2pt]{standalone}
\usepackage{tikz}
\begin{document}
\begin{tikzpicture}
\draw (0,0) circle (1);
\end{tikzpicture}
\end{document}
`
	if got != want {
		t.Errorf("Build() =\n%s\nwant\n%s", got, want)
	}
}

func TestBuildWithLibrariesAndPreamble(t *testing.T) {
	got, err := Build("\\node[draw, ellipse] {x};\n", Options{
		Libraries: []string{"arrows.meta", "shapes"},
		Preamble:  `\usepackage{amsmath}`,
	})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	want := `\documentclass[tikz,border=2pt]{standalone}
\usepackage{tikz}
\usetikzlibrary{arrows.meta,shapes}
\usepackage{amsmath}
\begin{document}
\begin{tikzpicture}
\node[draw, ellipse] {x};
\end{tikzpicture}
\end{document}
`
	if got != want {
		t.Errorf("Build() =\n%s\nwant\n%s", got, want)
	}
}

func TestBuildKeepsExistingPicture(t *testing.T) {
	body := "\\begin{tikzpicture}[scale=2]\n\\draw (0,0) -- (1,1);\n\\end{tikzpicture}"
	got, err := Build(body, Options{})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if strings.Count(got, `\begin{tikzpicture}`) != 1 {
		t.Errorf("Build() should not nest tikzpicture:\n%s", got)
	}
	if !strings.Contains(got, `\begin{tikzpicture}[scale=2]`) {
		t.Errorf("Build() lost picture options:\n%s", got)
	}
}

func TestBuildPassesCompleteDocuments(t *testing.T) {
	body := "\\documentclass{article}\n\\usepackage{tikz}\n\\begin{document}\\tikz\\draw (0,0) circle (1);\\end{document}\n"
	got, err := Build(body, Options{Libraries: []string{"arrows"}})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if got != body {
		t.Errorf("Build() should pass complete documents through verbatim, got\n%s", got)
	}
}

func TestBuildNoWrap(t *testing.T) {
	body := `\draw (0,0) circle (1);`
	got, err := Build(body, Options{NoWrap: true})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if got != body {
		t.Errorf("Build(NoWrap) = %q, want %q", got, body)
	}
}

func TestBuildRejectsBadLibrary(t *testing.T) {
	_, err := Build(`\draw (0,0);`, Options{Libraries: []string{`arrows}\input{/etc/passwd`}})
	if !errors.Is(err, errors.ErrCodeInvalidLibrary) {
		t.Errorf("Build() code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidLibrary)
	}
}

func TestSplitLibraries(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", nil},
		{"arrows", []string{"arrows"}},
		{"arrows, shapes.geometric", []string{"arrows", "shapes.geometric"}},
		{",arrows,,", []string{"arrows"}},
	}

	for _, tt := range tests {
		got := SplitLibraries(tt.input)
		if len(got) != len(tt.want) {
			t.Errorf("SplitLibraries(%q) = %v, want %v", tt.input, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("SplitLibraries(%q)[%d] = %q, want %q", tt.input, i, got[i], tt.want[i])
			}
		}
	}
}
