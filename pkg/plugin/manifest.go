package plugin

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Manifest declares which compiled-in plugins to load, in order.
//
//	plugins:
//	  - name: unicode-nfc
//	  - name: replace
//	    languages: [English]
//	    options: {pattern: "\\s+--\\s+", replacement: " - "}
type Manifest struct {
	Plugins []ManifestEntry `yaml:"plugins"`
}

type ManifestEntry struct {
	Name         string            `yaml:"name"`
	Languages    []string          `yaml:"languages,omitempty"`
	Capabilities []string          `yaml:"capabilities,omitempty"`
	Options      map[string]string `yaml:"options,omitempty"`
}

func (e ManifestEntry) checkCapabilities() *CapabilityViolation {
	for _, c := range e.Capabilities {
		if !strings.EqualFold(strings.TrimSpace(c), CapRegister) {
			return &CapabilityViolation{Plugin: e.Name, Capability: c, Reason: "only registration is granted"}
		}
	}
	return nil
}

// Factory builds a plugin from its manifest options.
type Factory func(options map[string]string) (Plugin, error)

// Catalog maps plugin names to factories.
type Catalog map[string]Factory

// ParseManifest decodes a YAML manifest. Every entry needs a name.
func ParseManifest(data []byte) (Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("parse plugin manifest: %w", err)
	}
	for i, e := range m.Plugins {
		if strings.TrimSpace(e.Name) == "" {
			return Manifest{}, fmt.Errorf("plugin manifest entry %d has no name", i+1)
		}
	}
	return m, nil
}

// ReadManifest loads a manifest file.
func ReadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("read plugin manifest: %w", err)
	}
	return ParseManifest(data)
}
