package builtin

import (
	"fmt"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"

	"github.com/japaniel/lingoreader/pkg/language"
	"github.com/japaniel/lingoreader/pkg/plugin"
)

const WordBreakName = "japanese-wordbreak"

// WordBreaker inserts language.WordBreak between adjacent Japanese
// morphemes so the tokenizer can split unspaced text into words. The IPA
// dictionary is loaded on first use.
type WordBreaker struct {
	once sync.Once
	t    *tokenizer.Tokenizer
	err  error
}

func NewWordBreaker() *WordBreaker {
	return &WordBreaker{}
}

func (w *WordBreaker) Name() string { return WordBreakName }

func (w *WordBreaker) Register(host plugin.Host) error {
	return host.Register(plugin.Func{
		Name:      WordBreakName,
		Languages: []string{"Japanese"},
		Fn:        w.Process,
	})
}

func (w *WordBreaker) load() (*tokenizer.Tokenizer, error) {
	w.once.Do(func() {
		w.t, w.err = tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
		if w.err != nil {
			w.err = fmt.Errorf("load ipa dictionary: %w", w.err)
		}
	})
	return w.t, w.err
}

// Process returns text with a word break at every morpheme boundary that
// falls between two word characters. Existing spacing and punctuation are left
// alone, so removing every inserted marker gives back the input.
func (w *WordBreaker) Process(text string) (string, error) {
	t, err := w.load()
	if err != nil {
		return "", err
	}

	cuts := make(map[int]bool)
	for _, tok := range t.Tokenize(text) {
		if tok.Class == tokenizer.DUMMY {
			continue
		}
		end := tok.Position + len(tok.Surface)
		if end > 0 && end < len(text) {
			cuts[end] = true
		}
	}

	var b strings.Builder
	b.Grow(len(text) + len(cuts)*utf8.RuneLen(language.WordBreak))
	prev := utf8.RuneError
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if cuts[i] && wordRune(prev) && wordRune(r) && !unicode.IsMark(r) {
			b.WriteRune(language.WordBreak)
		}
		b.WriteString(text[i : i+size])
		prev = r
		i += size
	}
	return b.String(), nil
}

func wordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsMark(r)
}
