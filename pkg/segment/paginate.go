package segment

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/japaniel/lingoreader/pkg/language"
)

// ErrInvalidPageCount matches every *InvalidPageCountError via errors.Is.
var ErrInvalidPageCount = errors.New("invalid page count")

// InvalidPageCountError is returned when a text is split into fewer than one page.
type InvalidPageCountError struct {
	Count int
}

func (e *InvalidPageCountError) Error() string {
	return fmt.Sprintf("segment: page count must be positive, got %d", e.Count)
}

func (e *InvalidPageCountError) Is(target error) bool { return target == ErrInvalidPageCount }

// SplitUnits cuts text into sentence units. A unit ends after a run of
// sentence delimiters, or a run of newlines, together with all whitespace and
// newlines that follow. Units are never trimmed: joining them gives back text.
func SplitUnits(p *language.Profile, text string) []string {
	blank := func(r rune) bool { return r == '\n' || p.IsWhitespace(r) }

	var units []string
	start := 0
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		switch {
		case p.IsSentenceDelimiter(r):
			end := skip(text, i+size, p.IsSentenceDelimiter)
			end = skip(text, end, blank)
			units = append(units, text[start:end])
			start, i = end, end
		case r == '\n':
			end := skip(text, i, blank)
			units = append(units, text[start:end])
			start, i = end, end
		default:
			i += size
		}
	}
	if start < len(text) {
		units = append(units, text[start:])
	}
	return units
}

func skip(text string, i int, match func(rune) bool) int {
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		if !match(r) {
			break
		}
		i += size
	}
	return i
}

// Paginate splits text into exactly n pages at sentence-unit boundaries.
// Joining the pages in order reproduces text byte for byte.
func Paginate(p *language.Profile, text string, n int) ([]string, error) {
	if n <= 0 {
		return nil, &InvalidPageCountError{Count: n}
	}
	return Distribute(SplitUnits(p, text), n), nil
}

// Distribute spreads units over n pages in order. Each page gets
// len(units)/n units and the first len(units)%n pages get one more, so page
// sizes differ by at most one unit. Pages past the unit count are empty.
func Distribute(units []string, n int) []string {
	pages := make([]string, n)
	per, extra := len(units)/n, len(units)%n
	k := 0
	for i := range pages {
		size := per
		if i < extra {
			size++
		}
		pages[i] = strings.Join(units[k:k+size], "")
		k += size
	}
	return pages
}

// PageCount returns how many pages hold units at perPage units each,
// never less than one.
func PageCount(units, perPage int) int {
	if perPage <= 0 || units <= perPage {
		return 1
	}
	return (units + perPage - 1) / perPage
}
