package language

import (
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
)

// WordBreak is the zero-width marker processors insert between words of
// scripts written without spaces. Every preset whitespace class contains it.
const WordBreak = '\u200B'

// Default character classes, a broad Latin-script profile.
const (
	DefaultAlphabet             = `[a-zA-Z\x{00C0}-\x{00D6}\x{00D8}-\x{00F6}\x{00F8}-\x{024F}\x{1E00}-\x{1EFF}]`
	DefaultSentenceDelimiters   = `[.!?]`
	DefaultWhitespace           = `[ \t\r\x{00A0}\x{2009}\x{200B}\x{3000}]`
	DefaultIntrawordPunctuation = `['’\-]`
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Definition is the raw, user-editable configuration of a language.
// Empty patterns fall back to the defaults above.
type Definition struct {
	Name                 string `yaml:"name" json:"name" validate:"required,max=64"`
	Alphabet             string `yaml:"alphabet" json:"alphabet,omitempty"`
	SentenceDelimiters   string `yaml:"sentence_delimiters" json:"sentenceDelimiters,omitempty"`
	Whitespace           string `yaml:"whitespace" json:"whitespace,omitempty"`
	IntrawordPunctuation string `yaml:"intraword_punctuation" json:"intrawordPunctuation,omitempty"`
	ShowSpaces           *bool  `yaml:"show_spaces" json:"showSpaces,omitempty"`
}

// Validate checks the name and that every pattern compiles.
func (d Definition) Validate() error {
	if err := validate.Struct(d); err != nil {
		return fmt.Errorf("language: %w", err)
	}
	_, err := Compile(d)
	return err
}

// Profile is the compiled, immutable lexical configuration of a language.
// Editing a language produces a new Profile; segmentation already done with
// the old one is unaffected.
type Profile struct {
	name           string
	alphabet       *charClass
	sentenceDelims *charClass
	whitespace     *charClass
	intraword      *charClass
	showSpaces     bool
}

// Compile validates def and builds a Profile from it.
func Compile(def Definition) (*Profile, error) {
	p := &Profile{name: def.Name, showSpaces: true}
	if def.ShowSpaces != nil {
		p.showSpaces = *def.ShowSpaces
	}

	fields := []struct {
		name, pattern, fallback string
		dst                     **charClass
	}{
		{"alphabet", def.Alphabet, DefaultAlphabet, &p.alphabet},
		{"sentence_delimiters", def.SentenceDelimiters, DefaultSentenceDelimiters, &p.sentenceDelims},
		{"whitespace", def.Whitespace, DefaultWhitespace, &p.whitespace},
		{"intraword_punctuation", def.IntrawordPunctuation, DefaultIntrawordPunctuation, &p.intraword},
	}
	for _, f := range fields {
		pattern := f.pattern
		if pattern == "" {
			pattern = f.fallback
		}
		c, err := compileClass(f.name, pattern)
		if err != nil {
			return nil, err
		}
		*f.dst = c
	}
	return p, nil
}

// MustCompile is like Compile but panics on error. Intended for presets and tests.
func MustCompile(def Definition) *Profile {
	p, err := Compile(def)
	if err != nil {
		panic(err)
	}
	return p
}

// Default returns the unnamed Latin profile.
func Default() *Profile { return MustCompile(Definition{}) }

func (p *Profile) Name() string                    { return p.name }
func (p *Profile) ShowSpaces() bool                { return p.showSpaces }
func (p *Profile) IsAlphabet(r rune) bool          { return p.alphabet.contains(r) }
func (p *Profile) IsSentenceDelimiter(r rune) bool { return p.sentenceDelims.contains(r) }
func (p *Profile) IsWhitespace(r rune) bool        { return p.whitespace.contains(r) }
func (p *Profile) IsIntraword(r rune) bool         { return p.intraword.contains(r) }

// Definition returns the effective definition, defaults filled in.
func (p *Profile) Definition() Definition {
	show := p.showSpaces
	return Definition{
		Name:                 p.name,
		Alphabet:             p.alphabet.pattern,
		SentenceDelimiters:   p.sentenceDelims.pattern,
		Whitespace:           p.whitespace.pattern,
		IntrawordPunctuation: p.intraword.pattern,
		ShowSpaces:           &show,
	}
}

// Bool returns a pointer to b, for Definition.ShowSpaces literals.
func Bool(b bool) *bool { return &b }

var presets = map[string]Definition{
	"English": {Name: "English"},
	"French":  {Name: "French", SentenceDelimiters: `[.!?…]`},
	"German":  {Name: "German", SentenceDelimiters: `[.!?…]`},
	"Spanish": {Name: "Spanish", SentenceDelimiters: `[.!?…]`},
	"Japanese": {
		Name:                 "Japanese",
		Alphabet:             `[\p{Han}\p{Hiragana}\p{Katakana}ー々〆〤ヶ]`,
		SentenceDelimiters:   `[。！？!?]`,
		Whitespace:           `[ \t\r\x{200B}\x{3000}]`,
		IntrawordPunctuation: `[・]`,
		ShowSpaces:           Bool(false),
	},
}

// Preset returns a built-in definition by name.
func Preset(name string) (Definition, bool) {
	d, ok := presets[name]
	return d, ok
}

// Presets returns the names of all built-in definitions, sorted.
func Presets() []string {
	names := make([]string, 0, len(presets))
	for n := range presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
