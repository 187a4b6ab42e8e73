// Package tokenize defines the token vocabulary the fingerprint normalizer
// consumes and a chroma-backed implementation that produces it.
package tokenize

import (
	"errors"
	"path/filepath"
)

// ErrUnsupported is returned when no lexer is available for a format hint.
var ErrUnsupported = errors.New("unsupported format")

// Kind classifies a token by its role in structural comparison.
type Kind int

const (
	// Other covers keywords, literals, operators and punctuation.
	Other Kind = iota
	Whitespace
	Newline
	Comment
	Identifier
	FunctionName
)

// String returns a lowercase name for the kind.
func (k Kind) String() string {
	switch k {
	case Whitespace:
		return "whitespace"
	case Newline:
		return "newline"
	case Comment:
		return "comment"
	case Identifier:
		return "identifier"
	case FunctionName:
		return "function"
	default:
		return "other"
	}
}

// Token is a single lexical unit of source text.
type Token struct {
	Kind  Kind
	Value string
}

// Tokenizer turns raw source text into an ordered token sequence. The hint
// names the format, typically the file name so the extension can select a
// lexer. Implementations return ErrUnsupported (possibly wrapped) for
// formats they cannot handle.
type Tokenizer interface {
	Tokenize(text, hint string) ([]Token, error)
}

// HintFor returns the format hint for a file path.
func HintFor(path string) string {
	return filepath.Base(path)
}
