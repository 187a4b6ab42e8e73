// Package fingerprint reduces source files to content-addressed structural
// fingerprints and accumulates them into an index of occurrences.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"

	"github.com/davetashner/drydock/internal/tokenize"
)

// Placeholder replaces every identifier and function name in the
// normalized stream, so renamed clones still collide.
const Placeholder = "__ID__"

// lineBreakRe matches the line separators counted by LineCount.
var lineBreakRe = regexp.MustCompile(`\r?\n`)

// Result is the fingerprint of one normalized file.
type Result struct {
	Fingerprint string
	LineCount   int
}

// Normalizer converts file content into a fingerprint using a tokenizer.
type Normalizer struct {
	Tokenizer tokenize.Tokenizer
}

// NewNormalizer returns a Normalizer backed by t.
func NewNormalizer(t tokenize.Tokenizer) *Normalizer {
	return &Normalizer{Tokenizer: t}
}

// Normalize tokenizes text and fingerprints its structure. The boolean is
// false when the file has no structural content (empty, whitespace or
// comments only); that is not an error. A tokenizer failure is returned as
// an error for the caller to log and skip.
func (n *Normalizer) Normalize(text, hint string) (Result, bool, error) {
	if strings.TrimSpace(text) == "" {
		return Result{}, false, nil
	}

	tokens, err := n.Tokenizer.Tokenize(text, hint)
	if err != nil {
		return Result{}, false, err
	}
	if len(tokens) == 0 {
		return Result{}, false, nil
	}

	normalized := Normalize(tokens)
	if normalized == "" {
		return Result{}, false, nil
	}

	return Result{
		Fingerprint: Sum(normalized),
		LineCount:   LineCount(text),
	}, true, nil
}

// Normalize concatenates the structural tokens, dropping whitespace, newlines
// and comments and masking identifiers with Placeholder. Identifier tokens
// with an empty value are dropped rather than masked.
func Normalize(tokens []tokenize.Token) string {
	var b strings.Builder
	for _, t := range tokens {
		switch t.Kind {
		case tokenize.Whitespace, tokenize.Newline, tokenize.Comment:
			continue
		case tokenize.Identifier, tokenize.FunctionName:
			if t.Value == "" {
				continue
			}
			b.WriteString(Placeholder)
		default:
			b.WriteString(t.Value)
		}
	}
	return b.String()
}

// Sum returns the hex-encoded SHA-256 of a normalized string.
func Sum(normalized string) string {
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// LineCount counts line breaks in the raw text plus one.
func LineCount(text string) int {
	return len(lineBreakRe.FindAllStringIndex(text, -1)) + 1
}

// IsFingerprint reports whether s looks like a value produced by Sum.
func IsFingerprint(s string) bool {
	if len(s) != sha256.Size*2 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
