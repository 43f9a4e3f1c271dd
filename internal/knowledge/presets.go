package knowledge

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"maps"
	"path"
	"slices"
	"strings"

	"github.com/z58362026/mcp-packages/pkg/schema"
)

//go:embed presets/*.json
var presetFiles embed.FS

// presets is populated once at init and never written afterwards.
var presets = mustLoadPresets()

func mustLoadPresets() map[string]*schema.ResolvedConfig {
	loaded, err := loadPresets(presetFiles)
	if err != nil {
		panic(fmt.Sprintf("knowledge: invalid embedded preset: %v", err))
	}
	return loaded
}

func loadPresets(fsys fs.FS) (map[string]*schema.ResolvedConfig, error) {
	entries, err := fs.ReadDir(fsys, "presets")
	if err != nil {
		return nil, err
	}

	out := make(map[string]*schema.ResolvedConfig, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		data, err := fs.ReadFile(fsys, path.Join("presets", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read preset %s: %w", entry.Name(), err)
		}

		var cfg schema.ResolvedConfig
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse preset %s: %w", entry.Name(), err)
		}

		out[strings.TrimSuffix(entry.Name(), ".json")] = &cfg
	}
	return out, nil
}

// LookupPreset returns a copy of the built-in configuration for a framework.
// The lookup is case-insensitive; ok is false when no preset exists.
func LookupPreset(framework string) (cfg *schema.ResolvedConfig, ok bool) {
	preset, ok := presets[strings.ToLower(strings.TrimSpace(framework))]
	if !ok {
		return nil, false
	}
	return preset.Clone(), true
}

// Presets returns the names of all built-in presets in sorted order.
func Presets() []string {
	return slices.Sorted(maps.Keys(presets))
}
