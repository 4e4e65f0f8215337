package pipeline

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tikzmagic/pkg/display"
	"github.com/matzehuels/tikzmagic/pkg/scratch"
	"github.com/matzehuels/tikzmagic/pkg/svgfix"
)

// publish displays the SVG, copies the requested artifacts and lists dir.
// Only a malformed SVG is returned as an error.
func (r *Runner) publish(dir *scratch.Dir, req Request, result *Result, logger *log.Logger) error {
	data, err := dir.ReadFile(scratch.SVG)
	if err != nil {
		logger.Error(NoImageMessage)
	} else {
		fixed, err := svgfix.Fix(data, req.Size)
		if err != nil {
			return err
		}
		result.Image = &display.Image{MIMEType: display.MIMESVG, Data: []byte(fixed)}
	}

	result.Saved = Save(dir, req.Save, logger)

	if result.Image != nil {
		if err := r.Publisher.Publish(display.ImageBundle(*result.Image)); err != nil {
			logger.Error("could not publish image", "err", err)
		}
	}

	result.Files = Links(dir, logger)
	if err := r.Publisher.Files(dir.Root, result.Files); err != nil {
		logger.Error("could not publish file listing", "err", err)
	}
	return nil
}

// Save copies artifacts from dir to the destinations, choosing each
// artifact by the destination's extension. Unknown extensions are skipped
// silently; missing artifacts and failed copies are logged and skipped.
// It returns the destinations that were written.
func Save(dir *scratch.Dir, dests []string, logger *log.Logger) []string {
	var saved []string
	for _, dest := range dests {
		name, ok := scratch.Artifacts[filepath.Ext(dest)]
		if !ok {
			logger.Debug("ignoring save destination", "path", dest)
			continue
		}
		if !dir.Exists(name) {
			logger.Error(name+" was not generated", "save", dest)
			continue
		}
		if err := copyFile(dir.Path(name), dest); err != nil {
			logger.Error("could not save", "path", dest, "err", err)
			continue
		}
		logger.Info("saved", "path", dest)
		saved = append(saved, dest)
	}
	return saved
}

// Links lists dir as download links relative to the working directory.
func Links(dir *scratch.Dir, logger *log.Logger) []display.FileLink {
	entries, err := dir.List()
	if err != nil {
		logger.Error("could not list scratch directory", "dir", dir.Root, "err", err)
		return nil
	}
	wd, _ := os.Getwd()
	links := make([]display.FileLink, 0, len(entries))
	for _, e := range entries {
		href := e.Path
		if wd != "" {
			if rel, err := filepath.Rel(wd, e.Path); err == nil {
				href = rel
			}
		}
		links = append(links, display.FileLink{Name: e.Name, Href: href, Size: e.Size})
	}
	return links
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
