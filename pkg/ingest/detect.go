package ingest

import (
	"errors"
	"strings"

	"github.com/pemistahl/lingua-go"
)

// ErrLanguageUndetected is returned when no candidate language fits a text.
var ErrLanguageUndetected = errors.New("language could not be detected")

// Detector picks which of the configured reading languages a text is in.
type Detector struct {
	names    map[lingua.Language]string
	only     string
	detector lingua.LanguageDetector
}

// NewDetector builds a detector over the given language names. Names lingua
// does not know are ignored; they can never be detected.
func NewDetector(candidates []string) (*Detector, error) {
	d := &Detector{names: make(map[lingua.Language]string)}
	for _, name := range candidates {
		if l, ok := linguaLanguage(name); ok {
			d.names[l] = name
		}
	}
	switch len(d.names) {
	case 0:
		return nil, ErrLanguageUndetected
	case 1:
		for _, name := range d.names {
			d.only = name
		}
		return d, nil
	}
	langs := make([]lingua.Language, 0, len(d.names))
	for l := range d.names {
		langs = append(langs, l)
	}
	d.detector = lingua.NewLanguageDetectorBuilder().FromLanguages(langs...).Build()
	return d, nil
}

// Detect returns the candidate name text is most likely written in.
func (d *Detector) Detect(text string) (string, error) {
	if d.only != "" {
		return d.only, nil
	}
	l, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return "", ErrLanguageUndetected
	}
	return d.names[l], nil
}

func linguaLanguage(name string) (lingua.Language, bool) {
	for _, l := range lingua.AllLanguages() {
		if strings.EqualFold(l.String(), name) {
			return l, true
		}
	}
	return lingua.Unknown, false
}
