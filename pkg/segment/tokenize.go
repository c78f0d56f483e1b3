package segment

import (
	"unicode/utf8"

	"github.com/japaniel/lingoreader/pkg/language"
)

// Tokenize splits page content into classified tokens in one pass.
//
// A rune is a boundary when it is
//
//	(a) intraword punctuation not followed by an alphabet rune, or
//	(b) intraword punctuation not preceded by an alphabet rune, or
//	(c) neither alphabet nor intraword punctuation.
//
// Each boundary rune becomes its own token; everything between boundaries is a
// word. Punctuation with alphabet runes on both sides (the apostrophe in
// "didn't") therefore stays inside the word, while punctuation at a word edge
// is peeled off. Runes no class knows about become punctuation tokens, so
// Tokenize never fails.
func Tokenize(p *language.Profile, content string) []Token {
	runes := make([]rune, 0, len(content))
	sizes := make([]int, 0, len(content))
	for i := 0; i < len(content); {
		r, size := utf8.DecodeRuneInString(content[i:])
		runes = append(runes, r)
		sizes = append(sizes, size)
		i += size
	}
	tokens := make([]Token, 0, len(runes)/3+1)

	wordStart := -1 // byte offset of the open word run, or -1
	offset := 0
	emit := func(text string, typ Type) {
		tokens = append(tokens, Token{Index: len(tokens), Content: text, Type: typ})
	}

	for i, r := range runes {
		size := sizes[i]
		if isBoundary(p, runes, i) {
			if wordStart >= 0 {
				emit(content[wordStart:offset], Word)
				wordStart = -1
			}
			emit(content[offset:offset+size], boundaryType(p, r))
		} else if wordStart < 0 {
			wordStart = offset
		}
		offset += size
	}
	if wordStart >= 0 {
		emit(content[wordStart:], Word)
	}
	return tokens
}

func isBoundary(p *language.Profile, runes []rune, i int) bool {
	r := runes[i]
	if p.IsAlphabet(r) {
		return false
	}
	if !p.IsIntraword(r) {
		return true
	}
	nextAlpha := i+1 < len(runes) && p.IsAlphabet(runes[i+1])
	prevAlpha := i > 0 && p.IsAlphabet(runes[i-1])
	return !nextAlpha || !prevAlpha
}

// boundaryType classifies a single boundary rune. Any rune of the profile's
// whitespace class is whitespace, not only the ASCII space.
func boundaryType(p *language.Profile, r rune) Type {
	switch {
	case r == '\n':
		return Newline
	case p.IsWhitespace(r):
		return Whitespace
	default:
		return Punctuation
	}
}

// TrimTerm drops the tokens that are not words from both ends of a
// vocabulary term and returns the rest with its token count. A term without
// any word gives "" and 0.
func TrimTerm(p *language.Profile, term string) (string, int) {
	tokens := Tokenize(p, term)
	first, last := -1, -1
	for i, t := range tokens {
		if t.Type != Word {
			continue
		}
		if first < 0 {
			first = i
		}
		last = i
	}
	if first < 0 {
		return "", 0
	}
	run := tokens[first : last+1]
	return Join(run), len(run)
}
