// Package builtin holds the text processors compiled into lingoreader.
package builtin

import (
	"github.com/japaniel/lingoreader/pkg/plugin"
)

// Catalog returns factories for every built-in plugin, keyed by the name a
// manifest uses.
func Catalog() plugin.Catalog {
	return plugin.Catalog{
		NFCName:       func(map[string]string) (plugin.Plugin, error) { return NFC(), nil },
		AozoraName:    func(map[string]string) (plugin.Plugin, error) { return AozoraRuby(), nil },
		WordBreakName: func(map[string]string) (plugin.Plugin, error) { return NewWordBreaker(), nil },
		ReplaceName:   NewReplace,
	}
}

// DefaultManifest is used when no manifest file is configured.
func DefaultManifest() plugin.Manifest {
	return plugin.Manifest{Plugins: []plugin.ManifestEntry{
		{Name: NFCName},
		{Name: AozoraName, Languages: []string{"Japanese"}},
		{Name: WordBreakName, Languages: []string{"Japanese"}},
	}}
}

func static(name string, procs ...plugin.Processor) plugin.Plugin {
	return plugin.Static{PluginName: name, Procs: procs}
}
