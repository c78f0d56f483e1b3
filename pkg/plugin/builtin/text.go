package builtin

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/japaniel/lingoreader/pkg/plugin"
)

const (
	NFCName     = "unicode-nfc"
	AozoraName  = "aozora-ruby"
	ReplaceName = "replace"
)

// NFC normalizes text to Unicode normalization form C so that precomposed and
// combining spellings of a word look up the same vocabulary entry.
func NFC() plugin.Plugin {
	return static(NFCName, plugin.Func{
		Name:      NFCName,
		Languages: []string{plugin.AnyLanguage},
		Fn:        func(s string) (string, error) { return norm.NFC.String(s), nil },
	})
}

var (
	// 《reading》 following a base.
	reAozoraReading = regexp.MustCompile(`《[^《》]*》`)
	// ［＃...］ editorial notes.
	reAozoraNote = regexp.MustCompile(`［＃[^］]*］`)
)

// AozoraRuby strips Aozora Bunko ruby and annotation markup, keeping the base
// text: "｜青空《あおぞら》文庫［＃注記］" becomes "青空文庫".
func AozoraRuby() plugin.Plugin {
	return static(AozoraName, plugin.Func{
		Name:      AozoraName,
		Languages: []string{"Japanese"},
		Fn:        stripAozora,
	})
}

func stripAozora(s string) (string, error) {
	s = reAozoraReading.ReplaceAllString(s, "")
	// ｜ marks where a base starts when it is not obvious from the script.
	s = strings.ReplaceAll(s, "｜", "")
	return reAozoraNote.ReplaceAllString(s, ""), nil
}

// NewReplace builds a regular expression substitution from manifest options:
// "pattern" (required), "replacement" (may use $1 style groups) and "id"
// (defaults to "replace"). It applies to every language unless the manifest
// narrows it.
func NewReplace(options map[string]string) (plugin.Plugin, error) {
	pattern := options["pattern"]
	if pattern == "" {
		return nil, fmt.Errorf("%s: option \"pattern\" is required", ReplaceName)
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ReplaceName, err)
	}
	id := options["id"]
	if id == "" {
		id = ReplaceName
	}
	replacement := options["replacement"]
	return static(ReplaceName, plugin.Func{
		Name:      id,
		Languages: []string{plugin.AnyLanguage},
		Fn:        func(s string) (string, error) { return re.ReplaceAllString(s, replacement), nil },
	}), nil
}
