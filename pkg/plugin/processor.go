// Package plugin runs the ordered chain of text processors applied to
// imported text before it is paginated.
//
// Plugins are compiled in and handed to a Registry, either directly or by name
// through a Manifest. During loading each plugin receives its own Host handle
// whose only capability is registering processors; the handle is revoked as
// soon as the plugin's Register method returns.
package plugin

import "strings"

// AnyLanguage in SupportedLanguages makes a processor apply to every text.
const AnyLanguage = "*"

// CapRegister is the only capability a plugin can be granted.
const CapRegister = "register"

// Processor is a pure text transform.
type Processor interface {
	ID() string
	SupportedLanguages() []string
	ProcessText(text string) (string, error)
}

// Host is the capability surface a plugin sees while it registers.
type Host interface {
	Register(p Processor) error
}

// Plugin contributes processors to a Registry.
type Plugin interface {
	Name() string
	Register(host Host) error
}

// Func adapts a plain function to Processor.
type Func struct {
	Name      string
	Languages []string
	Fn        func(text string) (string, error)
}

func (f Func) ID() string                              { return f.Name }
func (f Func) SupportedLanguages() []string            { return f.Languages }
func (f Func) ProcessText(text string) (string, error) { return f.Fn(text) }

// Static is a Plugin that registers a fixed list of processors.
type Static struct {
	PluginName string
	Procs      []Processor
}

func (s Static) Name() string { return s.PluginName }

func (s Static) Register(host Host) error {
	for _, p := range s.Procs {
		if err := host.Register(p); err != nil {
			return err
		}
	}
	return nil
}

// Supports reports whether p applies to texts in lang. Language names compare
// case-insensitively.
func Supports(p Processor, lang string) bool {
	for _, l := range p.SupportedLanguages() {
		if l == AnyLanguage || strings.EqualFold(l, lang) {
			return true
		}
	}
	return false
}

// scoped overrides the language set of a processor.
type scoped struct {
	Processor
	languages []string
}

func (s scoped) SupportedLanguages() []string { return s.languages }
