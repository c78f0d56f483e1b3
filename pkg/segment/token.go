package segment

import "strings"

// Type classifies a token.
type Type string

const (
	Word        Type = "word"
	Punctuation Type = "punctuation"
	Whitespace  Type = "whitespace"
	Newline     Type = "newline"
	Multiword   Type = "multiword"
)

// Token is one classified fragment of page content. Index is the zero-based
// position in the page's base token sequence and is stable across status
// resolution and multiword grouping; a multiword carries the index of its
// first child.
type Token struct {
	Index    int     `json:"index"`
	Content  string  `json:"content"`
	Type     Type    `json:"type"`
	Status   *int    `json:"status,omitempty"`
	Children []Token `json:"children,omitempty"`
}

// IsWord reports whether t carries a learning status (word or multiword).
func (t Token) IsWord() bool { return t.Type == Word || t.Type == Multiword }

// Join concatenates token contents.
func Join(tokens []Token) string {
	var b strings.Builder
	for _, t := range tokens {
		b.WriteString(t.Content)
	}
	return b.String()
}
