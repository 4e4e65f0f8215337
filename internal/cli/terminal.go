package cli

import (
	"io"
	"os"

	"github.com/matzehuels/tikzmagic/pkg/display"
	"github.com/matzehuels/tikzmagic/pkg/errors"
)

// terminalPublisher shows pipeline output in a terminal. Images cannot be
// displayed inline, so the SVG is written to a file when one is given.
type terminalPublisher struct {
	w      io.Writer
	output string // SVG destination; empty means report only
}

func newTerminalPublisher(w io.Writer, output string) *terminalPublisher {
	return &terminalPublisher{w: w, output: output}
}

func (p *terminalPublisher) Publish(b display.Bundle) error {
	for mime, data := range b.Data {
		if mime != display.MIMESVG || p.output == "" {
			printSuccess(p.w, "Rendered %s %s", mime, StyleDim.Render(formatBytes(int64(len(data)))))
			continue
		}
		if err := os.WriteFile(p.output, []byte(data), 0o644); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", p.output)
		}
		printSuccess(p.w, "Wrote %s", p.output)
	}
	return nil
}

func (p *terminalPublisher) Files(dir string, links []display.FileLink) error {
	printInfo(p.w, "%s", StyleTitle.Render(dir))
	for _, l := range links {
		printFileSize(p.w, l.Href, l.Size)
	}
	return nil
}

var _ display.Publisher = (*terminalPublisher)(nil)
