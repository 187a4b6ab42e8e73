package tokenize

import (
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
)

// Chroma tokenizes source text with the chroma lexer registry.
type Chroma struct {
	// Analyse enables content sniffing when no lexer matches the hint.
	Analyse bool
}

// NewChroma returns a Chroma tokenizer that only selects lexers by name.
func NewChroma() *Chroma {
	return &Chroma{}
}

// Tokenize lexes text with the lexer registered for hint.
func (c *Chroma) Tokenize(text, hint string) ([]Token, error) {
	lexer := lexers.Match(hint)
	if lexer == nil && c.Analyse {
		lexer = lexers.Analyse(text)
	}
	if lexer == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, hint)
	}

	it, err := lexer.Tokenise(nil, text)
	if err != nil {
		return nil, fmt.Errorf("tokenise %s with %s: %w", hint, lexer.Config().Name, err)
	}

	raw := it.Tokens()
	tokens := make([]Token, 0, len(raw))
	for _, t := range raw {
		if t.Value == "" {
			continue
		}
		tokens = append(tokens, Token{Kind: kindOf(t), Value: t.Value})
	}
	return tokens, nil
}

// kindOf maps a chroma token type onto the normalizer vocabulary.
// Preprocessor directives live in chroma's comment category but carry
// structure, so they stay Other.
func kindOf(t chroma.Token) Kind {
	tt := t.Type
	switch {
	case tt.InCategory(chroma.Text):
		if strings.TrimSpace(t.Value) != "" {
			return Other
		}
		if strings.ContainsAny(t.Value, "\r\n") {
			return Newline
		}
		return Whitespace
	case tt.InCategory(chroma.Comment):
		if tt.InSubCategory(chroma.CommentPreproc) {
			return Other
		}
		return Comment
	case tt == chroma.NameFunction || tt == chroma.NameFunctionMagic:
		return FunctionName
	case tt.InCategory(chroma.Name):
		return Identifier
	default:
		return Other
	}
}

var _ Tokenizer = (*Chroma)(nil)
