package errors

import (
	"errors"
	"fmt"
	"os/exec"
	"testing"
)

func TestErrorString(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"plain", New(ErrCodeInvalidSize, "size must be W,H: %q", "wide"), `INVALID_SIZE: size must be W,H: "wide"`},
		{"wrapped", Wrap(ErrCodeScratch, errors.New("permission denied"), "create tikz-1"), "SCRATCH_FAILED: create tikz-1: permission denied"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrapUnwraps(t *testing.T) {
	cause := errors.New("read-only file system")
	err := Wrap(ErrCodeScratch, cause, "create scratch directory")

	if errors.Unwrap(err) != cause {
		t.Errorf("Unwrap() = %v, want %v", errors.Unwrap(err), cause)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestGetCode(t *testing.T) {
	toolFailed := &ToolError{Tool: "pdflatex", ExitCode: 1}
	toolMissing := &ToolError{Tool: "pdf2svg", ExitCode: -1, Err: exec.ErrNotFound}

	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"Error", New(ErrCodeInvalidSVG, "no <svg> element"), ErrCodeInvalidSVG},
		{"outermost Error wins", Wrap(ErrCodeScratch, New(ErrCodeInvalidInput, "inner"), "outer"), ErrCodeScratch},
		{"tool exit status", toolFailed, ErrCodeToolFailed},
		{"tool not started", toolMissing, ErrCodeToolNotFound},
		{"tool behind fmt wrap", fmt.Errorf("convert stage: %w", toolFailed), ErrCodeToolFailed},
		{"Error around tool", Wrap(ErrCodeInternal, toolMissing, "doctor"), ErrCodeInternal},
		{"plain error", errors.New("plain"), ""},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.want {
				t.Errorf("GetCode() = %q, want %q", got, tt.want)
			}
			if tt.want != "" && !Is(tt.err, tt.want) {
				t.Errorf("Is(err, %q) = false", tt.want)
			}
		})
	}
}

func TestIsNeverMatchesEmpty(t *testing.T) {
	if Is(errors.New("plain"), "") {
		t.Error("Is(plain, \"\") = true, want false")
	}
	if Is(nil, ErrCodeInvalidInput) {
		t.Error("Is(nil, INVALID_INPUT) = true, want false")
	}
	if Is(New(ErrCodeInvalidInput, "x"), ErrCodeInvalidSize) {
		t.Error("Is matched a different code")
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"Error", New(ErrCodeInvalidLibrary, "invalid TikZ library name %q", "a b"), `invalid TikZ library name "a b"`},
		{"with cause", Wrap(ErrCodeScratch, errors.New("permission denied"), "create scratch directory"), "create scratch directory: permission denied"},
		{"plain error", errors.New("plain error"), "plain error"},
		{"tool error", &ToolError{Tool: "pdflatex", ExitCode: 1}, "pdflatex terminated with status 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.want {
				t.Errorf("UserMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestToolError(t *testing.T) {
	cause := errors.New("executable file not found in $PATH")
	err := &ToolError{Tool: "pdf2svg", ExitCode: -1, Err: cause}

	if want := "pdf2svg execution failed: executable file not found in $PATH"; err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}

	var te *ToolError
	if !errors.As(fmt.Errorf("wrapped: %w", err), &te) || te.Tool != "pdf2svg" {
		t.Errorf("errors.As did not find the ToolError: %v", te)
	}
}
