// Package scratch manages the per-run working directories of the pipeline.
//
// Every run stages its source and collects its artifacts in a fresh
// directory named "tikz-<uuid>". The directory is the run's only shared
// resource and is handed from stage to stage as an explicit [*Dir] value,
// so two runs never observe each other's files.
//
// Directories are never removed by the pipeline: they are left on disk so
// the generated PDF, SVG and raster files can be downloaded afterwards.
// [Clean] is provided for operators.
package scratch

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/tikzmagic/pkg/errors"
)

// Prefix is the name prefix of every scratch directory.
const Prefix = "tikz-"

// Artifact names generated inside a scratch directory.
const (
	Source = "tikz.tex"
	PDF    = "tikz.pdf"
	Log    = "tikz.log"
	SVG    = "tikz.svg"
	PNG    = "tikz.png"
	JPG    = "tikz.jpg"
)

// Artifacts maps a save-path extension to the artifact it selects.
var Artifacts = map[string]string{
	".tex": Source,
	".pdf": PDF,
	".svg": SVG,
	".png": PNG,
	".jpg": JPG,
}

// Dir is a single run's scratch directory.
type Dir struct {
	// ID is the run identifier embedded in the directory name.
	ID string
	// Root is the absolute path of the directory.
	Root string
}

// New creates a uniquely named scratch directory under base and makes it
// world-accessible. An empty base means the current working directory.
func New(base string) (*Dir, error) {
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeScratch, err, "resolve working directory")
		}
		base = wd
	}
	base, err := filepath.Abs(base)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeScratch, err, "resolve scratch base %s", base)
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeScratch, err, "create scratch base %s", base)
	}

	id := uuid.NewString()
	root := filepath.Join(base, Prefix+id)
	if err := os.Mkdir(root, 0o700); err != nil {
		return nil, errors.Wrap(errors.ErrCodeScratch, err, "create scratch directory %s", root)
	}
	// Mkdir is subject to the umask; Chmod is not.
	if err := os.Chmod(root, 0o777); err != nil {
		return nil, errors.Wrap(errors.ErrCodeScratch, err, "chmod scratch directory %s", root)
	}
	return &Dir{ID: id, Root: root}, nil
}

// Name returns the base name of the directory.
func (d *Dir) Name() string {
	return filepath.Base(d.Root)
}

// Path returns the absolute path of the named file inside the directory.
func (d *Dir) Path(name string) string {
	return filepath.Join(d.Root, name)
}

// Exists reports whether the named artifact is present as a regular file.
func (d *Dir) Exists(name string) bool {
	info, err := os.Stat(d.Path(name))
	return err == nil && info.Mode().IsRegular()
}

// ReadFile reads the named artifact. A missing file yields FILE_NOT_FOUND.
func (d *Dir) ReadFile(name string) ([]byte, error) {
	data, err := os.ReadFile(d.Path(name))
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "%s was not generated", name)
	}
	return data, err
}

// WriteFile writes the named artifact.
func (d *Dir) WriteFile(name string, data []byte) error {
	return os.WriteFile(d.Path(name), data, 0o644)
}

// Entry describes one file in a scratch directory.
type Entry struct {
	Name    string
	Path    string
	Size    int64
	ModTime time.Time
}

// List returns the regular files in the directory sorted by name.
func (d *Dir) List() ([]Entry, error) {
	des, err := os.ReadDir(d.Root)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(des))
	for _, de := range des {
		if !de.Type().IsRegular() {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		entries = append(entries, Entry{
			Name:    de.Name(),
			Path:    filepath.Join(d.Root, de.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// Find returns the scratch directories directly under base, oldest first.
func Find(base string) ([]*Dir, error) {
	des, err := os.ReadDir(base)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	type found struct {
		dir *Dir
		mod time.Time
	}
	var all []found
	for _, de := range des {
		if !de.IsDir() || !strings.HasPrefix(de.Name(), Prefix) {
			continue
		}
		id := strings.TrimPrefix(de.Name(), Prefix)
		if _, err := uuid.Parse(id); err != nil {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		all = append(all, found{
			dir: &Dir{ID: id, Root: filepath.Join(base, de.Name())},
			mod: info.ModTime(),
		})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].mod.Before(all[j].mod) })

	dirs := make([]*Dir, len(all))
	for i, f := range all {
		dirs[i] = f.dir
	}
	return dirs, nil
}

// Clean removes scratch directories under base that were last modified
// before cutoff. A zero cutoff removes all of them. It returns the number of
// directories removed.
func Clean(base string, cutoff time.Time) (int, error) {
	dirs, err := Find(base)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, d := range dirs {
		if !cutoff.IsZero() {
			info, err := os.Stat(d.Root)
			if err != nil || info.ModTime().After(cutoff) {
				continue
			}
		}
		if err := os.RemoveAll(d.Root); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}
