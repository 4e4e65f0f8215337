// Package display publishes pipeline results to the calling environment.
//
// A result is handed over as a MIME bundle, the unit notebook frontends
// render: a map from MIME type to payload plus free-form metadata. The
// scratch directory listing is published separately so frontends can offer
// the generated files for download.
//
// Three publishers are provided:
//   - [Notebook] writes Jupyter display_data messages as JSON lines
//   - [Recorder] keeps everything in memory (tests, embedding)
//   - the tikzmagic CLI adds a terminal publisher on top of [Publisher]
package display

import (
	"sync"
)

// MIME types used by the pipeline.
const (
	MIMESVG   = "image/svg+xml"
	MIMEPNG   = "image/png"
	MIMEJPEG  = "image/jpeg"
	MIMEPDF   = "application/pdf"
	MIMEHTML  = "text/html"
	MIMEPlain = "text/plain"
)

// SourceTag identifies tikzmagic as the origin of a bundle.
const SourceTag = "tikzmagic.Tikz"

// Image is a rendered picture.
type Image struct {
	MIMEType string
	Data     []byte
}

// Bundle is one display payload.
type Bundle struct {
	// Source names the producer of the bundle.
	Source string `json:"source"`
	// Data maps MIME types to their representation of the same content.
	Data map[string]string `json:"data"`
	// Metadata is passed through to the frontend.
	Metadata map[string]string `json:"metadata"`
}

// ImageBundle wraps an image in an isolated bundle. Isolation makes
// notebook frontends render SVGs in an iframe so their ids cannot clash
// with other outputs on the page.
func ImageBundle(img Image) Bundle {
	return Bundle{
		Source:   SourceTag,
		Data:     map[string]string{img.MIMEType: string(img.Data)},
		Metadata: map[string]string{"isolated": "true"},
	}
}

// FileLink is one downloadable file.
type FileLink struct {
	// Name is the file's base name.
	Name string `json:"name"`
	// Href is the path relative to the caller's working directory.
	Href string `json:"href"`
	// Size is the file size in bytes.
	Size int64 `json:"size"`
}

// Publisher receives pipeline output.
type Publisher interface {
	// Publish displays one bundle.
	Publish(b Bundle) error
	// Files lists the contents of a scratch directory.
	Files(dir string, links []FileLink) error
}

// Listing is a recorded call to [Publisher.Files].
type Listing struct {
	Dir   string
	Links []FileLink
}

// Recorder is an in-memory Publisher. It is safe for concurrent use.
type Recorder struct {
	mu       sync.Mutex
	bundles  []Bundle
	listings []Listing
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Publish records b.
func (r *Recorder) Publish(b Bundle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bundles = append(r.bundles, b)
	return nil
}

// Files records the listing.
func (r *Recorder) Files(dir string, links []FileLink) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listings = append(r.listings, Listing{Dir: dir, Links: append([]FileLink(nil), links...)})
	return nil
}

// Bundles returns the recorded bundles.
func (r *Recorder) Bundles() []Bundle {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Bundle(nil), r.bundles...)
}

// Listings returns the recorded directory listings.
func (r *Recorder) Listings() []Listing {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Listing(nil), r.listings...)
}

var _ Publisher = (*Recorder)(nil)
