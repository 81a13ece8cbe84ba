package pipeline

import (
	"fmt"
	"slices"
	"strings"
)

// Preset is a named group of tools dispatched together.
type Preset struct {
	Name        string
	Description string
	Tools       []string
}

// builtinPresets is the registry of all known presets.
var builtinPresets = map[string]Preset{
	"web": {
		Name:        "web",
		Description: "Web application surface: server misconfiguration, templates and passive ZAP baseline",
		Tools:       []string{"nikto", "nuclei", "zap-baseline"},
	},
	"network": {
		Name:        "network",
		Description: "Host exposure: open ports and TLS configuration",
		Tools:       []string{"nmap", "sslyze"},
	},
	"full": {
		Name:        "full",
		Description: "Every targeted scanner",
		Tools:       []string{"nmap", "nikto", "nuclei", "sslyze", "zap-baseline"},
	},
}

// BuiltinPresets returns the available preset templates.
func BuiltinPresets() map[string]Preset {
	// Return a copy so callers cannot mutate the registry.
	out := make(map[string]Preset, len(builtinPresets))
	for k, v := range builtinPresets {
		v.Tools = slices.Clone(v.Tools)
		out[k] = v
	}
	return out
}

// PresetNames returns preset names in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(builtinPresets))
	for k := range builtinPresets {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

// GetPreset returns a preset by name, or an error if not found.
func GetPreset(name string) (*Preset, error) {
	p, ok := builtinPresets[name]
	if !ok {
		return nil, fmt.Errorf("unknown preset %q (available: %s)", name, strings.Join(PresetNames(), ", "))
	}
	p.Tools = slices.Clone(p.Tools)
	return &p, nil
}
