package config

import "sort"

var Presets = map[string]*Config{
	"frozen": {
		Size: 32, Steps: 200_000, Beta: 100, Coupling: 1, Init: "up",
	},
	"cold": {
		Size: 32, Steps: 500_000, Beta: 1.0, Coupling: 1, Init: "random",
	},
	"critical": {
		Size: 64, Steps: 2_000_000, Beta: 0.4407, Coupling: 1, Init: "random",
	},
	"hot": {
		Size: 32, Steps: 200_000, Beta: 0.1, Coupling: 1, Init: "random",
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := *p
	return &cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
