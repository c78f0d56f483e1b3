package language

import (
	"fmt"
	"regexp/syntax"
	"sort"
	"strings"
	"unicode"
)

// charClass is a compiled single-character class. Membership is answered from
// the sorted range table produced by the regexp parser, so no regexp engine
// runs per rune and the value is safe to share between goroutines.
type charClass struct {
	pattern string
	ranges  []rune // lo, hi pairs, sorted
}

// compileClass parses pattern as exactly one character class. A pattern that
// is not wrapped in brackets is treated as a class body ("a-z'" means "[a-z']").
func compileClass(field, pattern string) (*charClass, error) {
	expr := pattern
	if !(strings.HasPrefix(expr, "[") && strings.HasSuffix(expr, "]")) {
		expr = "[" + expr + "]"
	}

	re, err := syntax.Parse(expr, syntax.Perl)
	if err != nil {
		return nil, &InvalidPatternError{Field: field, Pattern: pattern, Err: err}
	}
	re = re.Simplify()

	var ranges []rune
	switch re.Op {
	case syntax.OpCharClass:
		ranges = append(ranges, re.Rune...)
	case syntax.OpLiteral:
		if len(re.Rune) != 1 {
			return nil, &InvalidPatternError{Field: field, Pattern: pattern, Err: fmt.Errorf("matches %d characters, want 1", len(re.Rune))}
		}
		ranges = []rune{re.Rune[0], re.Rune[0]}
	case syntax.OpAnyCharNotNL:
		ranges = []rune{0, '\n' - 1, '\n' + 1, unicode.MaxRune}
	case syntax.OpAnyChar:
		ranges = []rune{0, unicode.MaxRune}
	default:
		return nil, &InvalidPatternError{Field: field, Pattern: pattern, Err: fmt.Errorf("not a single character class")}
	}

	return &charClass{pattern: expr, ranges: ranges}, nil
}

// contains reports whether r is a member of the class.
func (c *charClass) contains(r rune) bool {
	n := len(c.ranges) / 2
	i := sort.Search(n, func(i int) bool { return c.ranges[2*i+1] >= r })
	return i < n && c.ranges[2*i] <= r
}
