// Package svgfix sets explicit width and height attributes on SVG documents.
//
// pdf2svg emits a root <svg> element with a viewBox but without width and
// height, which makes browsers and notebook frontends scale the picture
// inconsistently. [Fix] parses the document, locates the single <svg>
// element and writes both attributes, either from a caller-supplied [Size]
// or from the viewBox itself.
//
//	fixed, err := svgfix.Fix(raw, &svgfix.Size{Width: 400, Height: 240})
//	// <svg ... width="400px" height="240px">
package svgfix

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/beevik/etree"

	"github.com/matzehuels/tikzmagic/pkg/errors"
)

// DefaultSize is the display size used when none is requested.
var DefaultSize = Size{Width: 400, Height: 240}

// Size is a display size in pixels.
type Size struct {
	Width  int
	Height int
}

// String formats the size in the "W,H" form accepted by [ParseSize].
func (s Size) String() string {
	return fmt.Sprintf("%d,%d", s.Width, s.Height)
}

// ParseSize parses a "W,H" pixel pair such as "400,240".
// Both components must be positive integers.
func ParseSize(s string) (Size, error) {
	w, h, ok := strings.Cut(s, ",")
	if !ok {
		return Size{}, errors.New(errors.ErrCodeInvalidSize, "size must be \"width,height\": %q", s)
	}
	width, err := strconv.Atoi(strings.TrimSpace(w))
	if err != nil {
		return Size{}, errors.Wrap(errors.ErrCodeInvalidSize, err, "invalid width in %q", s)
	}
	height, err := strconv.Atoi(strings.TrimSpace(h))
	if err != nil {
		return Size{}, errors.Wrap(errors.ErrCodeInvalidSize, err, "invalid height in %q", s)
	}
	if width <= 0 || height <= 0 {
		return Size{}, errors.New(errors.ErrCodeInvalidSize, "size must be positive: %q", s)
	}
	return Size{Width: width, Height: height}, nil
}

// Fix returns svg with explicit width and height attributes on its root
// element.
//
// With a non-nil size the attributes become "{W}px" and "{H}px". With a nil
// size they are copied verbatim from the third and fourth viewBox fields.
// The document must contain exactly one <svg> element; anything else yields
// an INVALID_SVG error.
func Fix(svg []byte, size *Size) (string, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(svg); err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidSVG, err, "parse svg")
	}

	elems := doc.FindElements("//svg")
	if len(elems) != 1 {
		return "", errors.New(errors.ErrCodeInvalidSVG, "expected exactly one <svg> element, found %d", len(elems))
	}
	root := elems[0]

	var width, height string
	if size != nil {
		width = fmt.Sprintf("%dpx", size.Width)
		height = fmt.Sprintf("%dpx", size.Height)
	} else {
		box, err := ViewBox(root.SelectAttrValue("viewBox", ""))
		if err != nil {
			return "", err
		}
		width, height = box[2], box[3]
	}

	root.CreateAttr("width", width)
	root.CreateAttr("height", height)

	out, err := doc.WriteToString()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "serialize svg")
	}
	return out, nil
}

// ViewBox splits a viewBox attribute into its four fields. Fields are
// separated by whitespace and optionally a comma, and each must be numeric.
func ViewBox(attr string) ([4]string, error) {
	var box [4]string
	fields := strings.FieldsFunc(attr, func(r rune) bool {
		return unicode.IsSpace(r) || r == ','
	})
	if len(fields) != 4 {
		return box, errors.New(errors.ErrCodeInvalidSVG, "viewBox must have four fields: %q", attr)
	}
	for i, f := range fields {
		if _, err := strconv.ParseFloat(f, 64); err != nil {
			return box, errors.Wrap(errors.ErrCodeInvalidSVG, err, "viewBox field %d is not numeric", i+1)
		}
		box[i] = f
	}
	return box, nil
}
