package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// tikzLibraryRegex matches TikZ library names such as "arrows.meta" or
// "decorations.pathmorphing".
var tikzLibraryRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9.\-]*$`)

// ValidateLibraryName validates a TikZ library name before it is interpolated
// into \usetikzlibrary{...}. Braces, backslashes and whitespace would let a
// library flag inject arbitrary TeX into the preamble.
func ValidateLibraryName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidLibrary, "library name cannot be empty")
	}
	if len(name) > 128 {
		return New(ErrCodeInvalidLibrary, "library name too long (max 128 characters)")
	}
	if !tikzLibraryRegex.MatchString(name) {
		return New(ErrCodeInvalidLibrary, "invalid TikZ library name: %q", name)
	}
	return nil
}

// ValidateSavePath validates a save destination given on the magic line.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
//   - Must not end in a path separator (a file name is required)
func ValidateSavePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "save path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "save path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "save path contains invalid characters")
		}
	}

	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, "\\") {
		return New(ErrCodeInvalidPath, "save path must name a file: %q", path)
	}

	return nil
}
