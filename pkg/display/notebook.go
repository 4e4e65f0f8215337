package display

import (
	"encoding/json"
	"fmt"
	"html"
	"io"
	"path/filepath"
	"strings"
	"sync"
)

// message is a Jupyter display_data message body.
type message struct {
	OutputType string            `json:"output_type"`
	Source     string            `json:"source,omitempty"`
	Data       map[string]string `json:"data"`
	Metadata   map[string]string `json:"metadata"`
}

// Notebook writes each publication as one display_data JSON object per
// line, the format kernels forward to the frontend.
type Notebook struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewNotebook creates a Notebook publisher writing to w.
func NewNotebook(w io.Writer) *Notebook {
	return &Notebook{enc: json.NewEncoder(w)}
}

// Publish writes b as a display_data message.
func (n *Notebook) Publish(b Bundle) error {
	return n.write(message{
		OutputType: "display_data",
		Source:     b.Source,
		Data:       b.Data,
		Metadata:   nonNil(b.Metadata),
	})
}

// Files writes the listing as HTML download links with a plain-text
// fallback, mirroring how notebooks render a FileLinks object.
func (n *Notebook) Files(dir string, links []FileLink) error {
	return n.write(message{
		OutputType: "display_data",
		Source:     SourceTag,
		Data: map[string]string{
			MIMEHTML:  LinksHTML(dir, links),
			MIMEPlain: LinksText(dir, links),
		},
		Metadata: map[string]string{},
	})
}

func (n *Notebook) write(m message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.enc.Encode(m); err != nil {
		return fmt.Errorf("write display_data: %w", err)
	}
	return nil
}

// LinksHTML renders a directory heading followed by one link per file.
func LinksHTML(dir string, links []FileLink) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s<br>\n", html.EscapeString(dirLabel(dir)))
	for _, l := range links {
		fmt.Fprintf(&b, "&nbsp;&nbsp;<a href='%s' target='_blank'>%s</a><br>\n",
			html.EscapeString(filepath.ToSlash(l.Href)), html.EscapeString(l.Name))
	}
	return b.String()
}

// LinksText renders the listing as indented plain text.
func LinksText(dir string, links []FileLink) string {
	var b strings.Builder
	b.WriteString(dirLabel(dir))
	b.WriteString("\n")
	for _, l := range links {
		fmt.Fprintf(&b, "  %s\n", l.Name)
	}
	return b.String()
}

func dirLabel(dir string) string {
	return "./" + filepath.Base(dir) + "/"
}

func nonNil(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

var _ Publisher = (*Notebook)(nil)
