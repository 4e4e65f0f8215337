// Package document turns a cell body into a complete LaTeX document.
//
// Cells usually contain only TikZ drawing commands. [Build] wraps such a
// body in a standalone document that loads TikZ, the requested TikZ
// libraries and any extra preamble. A body that already declares
// \documentclass is passed through untouched.
package document

import (
	"bytes"
	"strings"
	"text/template"

	"github.com/matzehuels/tikzmagic/pkg/errors"
)

// Options configures the generated document.
type Options struct {
	// Libraries are passed to \usetikzlibrary.
	Libraries []string
	// Preamble is inserted verbatim before \begin{document}.
	Preamble string
	// NoWrap disables wrapping; the body is compiled as-is.
	NoWrap bool
}

var standalone = template.Must(template.New("standalone").Parse(`\documentclass[tikz,border=2pt]{standalone}
\usepackage{tikz}
{{- if .Libraries}}
\usetikzlibrary{ {{- .Libraries -}} }
{{- end}}
{{- if .Preamble}}
{{.Preamble}}
{{- end}}
\begin{document}
{{- if .Picture}}
\begin{tikzpicture}
{{.Body}}
\end{tikzpicture}
{{- else}}
{{.Body}}
{{- end}}
\end{document}
`))

// IsComplete reports whether body is already a full LaTeX document.
func IsComplete(body string) bool {
	return strings.Contains(body, `\documentclass`)
}

// Build returns the document to compile for body.
func Build(body string, opts Options) (string, error) {
	if opts.NoWrap || IsComplete(body) {
		return body, nil
	}
	for _, lib := range opts.Libraries {
		if err := errors.ValidateLibraryName(lib); err != nil {
			return "", err
		}
	}

	var buf bytes.Buffer
	err := standalone.Execute(&buf, struct {
		Libraries string
		Preamble  string
		Picture   bool
		Body      string
	}{
		Libraries: strings.Join(opts.Libraries, ","),
		Preamble:  strings.TrimSpace(opts.Preamble),
		Picture:   !strings.Contains(body, `\begin{tikzpicture}`),
		Body:      strings.TrimSpace(body),
	})
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "render document")
	}
	return buf.String(), nil
}

// SplitLibraries parses a comma-separated library list, dropping blanks.
func SplitLibraries(s string) []string {
	var libs []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			libs = append(libs, p)
		}
	}
	return libs
}
