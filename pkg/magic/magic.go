// Package magic parses the %%tikz cell magic into a pipeline request.
//
// A cell starts with a magic line followed by the TikZ body:
//
//	%%tikz -s 200,100 -S fig.pdf -S fig.svg -l arrows.meta
//	\draw[->] (0,0) -- (1,1);
//
// The line is tokenized like a shell command line and parsed with the
// following flags:
//
//	-s, --size W,H        display size in pixels (default 400,240)
//	-S, --save PATH       copy an artifact to PATH; repeatable
//	-l, --library a,b     TikZ libraries to load
//	-x, --preamble TEXT   extra preamble lines
//	    --no-wrap         compile the body as a complete document
//
// Flag parsing stops at the first token that is not a flag. That token and
// everything after it are joined with spaces and prepended to the body,
// which allows one-line use: %tikz -s 200,100 \draw (0,0) -- (1,1);
// Flags therefore go before the TikZ code.
//
// Backslashes in the line are literal so TeX control sequences survive
// tokenizing; quotes still group words and are removed. A lone apostrophe
// in the TikZ part, as in %tikz \node {it's};, makes the line fall back to
// a plain whitespace split; an unbalanced quote inside a flag is an error.
package magic

import (
	"io"
	"strings"

	"github.com/google/shlex"
	"github.com/spf13/pflag"

	"github.com/matzehuels/tikzmagic/pkg/document"
	"github.com/matzehuels/tikzmagic/pkg/errors"
	"github.com/matzehuels/tikzmagic/pkg/pipeline"
	"github.com/matzehuels/tikzmagic/pkg/svgfix"
)

// Names are the magic markers recognized at the start of a line.
var Names = []string{"%%tikz", "%tikz", "%%pylatex", "%pylatex"}

// Parser parses magic lines with configurable defaults.
type Parser struct {
	// Size is used when -s is absent. Zero means svgfix.DefaultSize.
	Size svgfix.Size
	// Libraries are loaded when -l is absent.
	Libraries []string
	// Preamble is used when -x is absent.
	Preamble string
}

// Parse parses a magic line and cell body with the built-in defaults.
func Parse(line, cell string) (pipeline.Request, error) {
	return Parser{}.Parse(line, cell)
}

// Parse parses a magic line and cell body into a request.
func (p Parser) Parse(line, cell string) (pipeline.Request, error) {
	tokens, err := Tokenize(line)
	if err == nil {
		return p.parse(tokens, cell)
	}

	// An unbalanced quote in the TikZ part of a line magic, as in
	// "%tikz \node {it's};", is source text. Retry with a plain split
	// and keep it only if no flag token carries a quote.
	fields := strings.Fields(line)
	if len(fields) > 0 && isMarker(fields[0]) {
		fields = fields[1:]
	}
	fs := p.flagSet()
	if fs.Parse(fields) != nil || fs.NArg() == 0 {
		return pipeline.Request{}, err
	}
	for _, tok := range fields[:len(fields)-fs.NArg()] {
		if strings.ContainsAny(tok, `'"`) {
			return pipeline.Request{}, err
		}
	}
	return p.parse(fields, cell)
}

// flagSet declares the magic flags with p's defaults. Parsing stops at the
// first positional token so the TikZ source of a line magic, including its
// "--" path operators, is never read as flags.
func (p Parser) flagSet() *pflag.FlagSet {
	size := p.Size
	if size.Width == 0 || size.Height == 0 {
		size = svgfix.DefaultSize
	}

	fs := pflag.NewFlagSet("tikz", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SetInterspersed(false)
	fs.StringP("size", "s", size.String(), `display size in pixels, "width,height"`)
	fs.StringArrayP("save", "S", nil, "save a copy of an artifact; the extension selects it")
	fs.StringP("library", "l", strings.Join(p.Libraries, ","), "comma-separated TikZ libraries")
	fs.StringP("preamble", "x", p.Preamble, "extra preamble")
	fs.Bool("no-wrap", false, "compile the body as a complete document")
	return fs
}

func (p Parser) parse(tokens []string, cell string) (pipeline.Request, error) {
	fs := p.flagSet()
	if err := fs.Parse(tokens); err != nil {
		return pipeline.Request{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid magic arguments")
	}
	sizeFlag, _ := fs.GetString("size")
	saves, _ := fs.GetStringArray("save")
	libFlag, _ := fs.GetString("library")
	preamble, _ := fs.GetString("preamble")
	noWrap, _ := fs.GetBool("no-wrap")

	parsed, err := svgfix.ParseSize(sizeFlag)
	if err != nil {
		return pipeline.Request{}, err
	}
	for _, path := range saves {
		if err := errors.ValidateSavePath(path); err != nil {
			return pipeline.Request{}, err
		}
	}
	libs := document.SplitLibraries(libFlag)
	for _, lib := range libs {
		if err := errors.ValidateLibraryName(lib); err != nil {
			return pipeline.Request{}, err
		}
	}

	return pipeline.Request{
		Source:    strings.Join(fs.Args(), " ") + cell,
		Size:      &parsed,
		Save:      saves,
		Libraries: libs,
		Preamble:  preamble,
		NoWrap:    noWrap,
	}, nil
}

// Tokenize splits a magic line into arguments, dropping a leading magic
// marker.
func Tokenize(line string) ([]string, error) {
	tokens, err := shlex.Split(literalBackslashes(line))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "tokenize magic line")
	}
	if len(tokens) > 0 && isMarker(tokens[0]) {
		tokens = tokens[1:]
	}
	return tokens, nil
}

// Split separates a cell into its magic line and body. The first line is
// the magic line only if it starts with a recognized marker.
func Split(input string) (line, cell string) {
	first, rest, _ := strings.Cut(input, "\n")
	fields := strings.Fields(first)
	if len(fields) > 0 && isMarker(fields[0]) {
		return strings.TrimRight(first, "\r"), rest
	}
	return "", input
}

// literalBackslashes escapes every backslash outside single quotes, where
// the tokenizer would otherwise consume it.
func literalBackslashes(line string) string {
	var b strings.Builder
	b.Grow(len(line))
	inSingle, inDouble := false, false
	for _, r := range line {
		switch {
		case r == '\'' && !inDouble:
			inSingle = !inSingle
		case r == '"' && !inSingle:
			inDouble = !inDouble
		case r == '\\' && !inSingle:
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isMarker(tok string) bool {
	for _, n := range Names {
		if tok == n {
			return true
		}
	}
	return false
}
