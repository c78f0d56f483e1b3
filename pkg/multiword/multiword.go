// Package multiword groups runs of tokens into learner-defined phrases.
package multiword

import (
	"cmp"
	"slices"
	"strings"

	"github.com/japaniel/lingoreader/pkg/language"
	"github.com/japaniel/lingoreader/pkg/segment"
	"github.com/japaniel/lingoreader/pkg/vocab"
)

// DefaultWindow is how many tokens past the anchor Select looks at when the
// caller passes no window.
const DefaultWindow = 64

// Phrase is a multi-token vocabulary item ready to be matched against a page.
type Phrase struct {
	Content string
	Status  vocab.Status
	// Tokens is how many base tokens Content tokenizes into.
	Tokens int

	key   string
	first string
}

// NewPhrase tokenizes content with p and reports whether it can act as a
// phrase: at least two tokens, starting with a word and free of newlines.
func NewPhrase(p *language.Profile, content string, status vocab.Status) (Phrase, bool) {
	tokens := segment.Tokenize(p, content)
	if len(tokens) < 2 || tokens[0].Type != segment.Word {
		return Phrase{}, false
	}
	for _, t := range tokens {
		if t.Type == segment.Newline {
			return Phrase{}, false
		}
	}
	return Phrase{
		Content: content,
		Status:  status,
		Tokens:  len(tokens),
		key:     vocab.Key(content),
		first:   vocab.Key(tokens[0].Content),
	}, true
}

// Select works out which whole tokens a reader's raw selection covers.
//
// anchor is the Index of the token the selection starts in. The text of up to
// window tokens from the anchor onward is tokenized again with p and the
// selection is located inside it; it must begin within the anchor token but
// may begin or end part way through a token. Every token the selection
// touches is kept, then whitespace is trimmed from both edges. A nil result
// means there is nothing to compose: the selection was not found, or the run
// is shorter than two tokens or crosses a line break.
func Select(p *language.Profile, tokens []segment.Token, anchor int, selection string, window int) []segment.Token {
	if selection == "" {
		return nil
	}
	if window <= 0 {
		window = DefaultWindow
	}
	base := Flatten(tokens)
	pos := slices.IndexFunc(base, func(t segment.Token) bool { return t.Index == anchor })
	if pos < 0 {
		return nil
	}
	end := min(pos+window, len(base))
	neighborhood := segment.Join(base[pos:end])

	start := strings.Index(neighborhood, selection)
	if start < 0 || start >= len(base[pos].Content) {
		return nil
	}
	stop := start + len(selection)

	var run []segment.Token
	offset := 0
	for _, t := range segment.Tokenize(p, neighborhood) {
		from, to := offset, offset+len(t.Content)
		offset = to
		if to <= start {
			continue
		}
		if from >= stop {
			break
		}
		t.Index += anchor
		run = append(run, t)
	}

	for len(run) > 0 && run[0].Type == segment.Whitespace {
		run = run[1:]
	}
	for len(run) > 0 && run[len(run)-1].Type == segment.Whitespace {
		run = run[:len(run)-1]
	}
	if len(run) < 2 {
		return nil
	}
	for _, t := range run {
		if t.Type == segment.Newline {
			return nil
		}
	}
	return run
}

// Apply collapses every occurrence of the phrases in tokens into multiword
// tokens tagged with the phrase status. Existing multiwords are flattened
// first, so Apply can be run again on its own output.
//
// The scan goes left to right. At each word token the phrases whose first
// token matches are tried longest first; a phrase of N tokens matches when
// the next N tokens concatenate to its content, compared case-insensitively.
// A match becomes one multiword carrying the first child's index and the
// scan resumes after it, so later or shorter overlapping matches are skipped.
func Apply(tokens []segment.Token, phrases []Phrase) []segment.Token {
	base := Flatten(tokens)
	if len(phrases) == 0 {
		return base
	}

	byFirst := make(map[string][]Phrase)
	for _, ph := range phrases {
		if ph.Tokens < 2 {
			continue
		}
		byFirst[ph.first] = append(byFirst[ph.first], ph)
	}
	for _, list := range byFirst {
		slices.SortStableFunc(list, func(a, b Phrase) int { return cmp.Compare(b.Tokens, a.Tokens) })
	}

	out := make([]segment.Token, 0, len(base))
	for i := 0; i < len(base); {
		if base[i].Type == segment.Word {
			if n, ph, ok := match(base[i:], byFirst[vocab.Key(base[i].Content)]); ok {
				out = append(out, group(base[i:i+n], ph.Status))
				i += n
				continue
			}
		}
		out = append(out, base[i])
		i++
	}
	return out
}

func match(tokens []segment.Token, candidates []Phrase) (int, Phrase, bool) {
	for _, ph := range candidates {
		if ph.Tokens > len(tokens) {
			continue
		}
		if vocab.Key(segment.Join(tokens[:ph.Tokens])) == ph.key {
			return ph.Tokens, ph, true
		}
	}
	return 0, Phrase{}, false
}

func group(run []segment.Token, status vocab.Status) segment.Token {
	s := int(status)
	return segment.Token{
		Index:    run[0].Index,
		Content:  segment.Join(run),
		Type:     segment.Multiword,
		Status:   &s,
		Children: slices.Clone(run),
	}
}

// Flatten replaces multiword tokens with their children.
func Flatten(tokens []segment.Token) []segment.Token {
	out := make([]segment.Token, 0, len(tokens))
	for _, t := range tokens {
		if t.Type == segment.Multiword {
			out = append(out, Flatten(t.Children)...)
			continue
		}
		out = append(out, t)
	}
	return out
}
