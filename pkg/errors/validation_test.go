package errors

import (
	"strings"
	"testing"
)

func TestValidateLibraryName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "arrows", false},
		{"valid dotted", "arrows.meta", false},
		{"valid nested", "decorations.pathmorphing", false},
		{"valid leading digit", "3d", false},
		{"valid dash", "shapes.multipart-x", false},
		{"valid with digits", "shapes2", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 200), true},
		{"brace injection", "arrows}\\input{/etc/passwd", true},
		{"backslash", "arrows\\relax", true},
		{"space", "arrows meta", true},
		{"comma", "arrows,shapes", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLibraryName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateLibraryName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidLibrary) {
				t.Errorf("ValidateLibraryName(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidLibrary)
			}
		})
	}
}

func TestValidateSavePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"relative", "figure.pdf", false},
		{"absolute", "/tmp/out/figure.svg", false},
		{"nested relative", "figs/circle.png", false},
		{"no extension", "figure", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 5000), true},
		{"null byte", "fig\x00.pdf", true},
		{"newline", "fig\n.pdf", true},
		{"trailing slash", "figs/", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSavePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSavePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
