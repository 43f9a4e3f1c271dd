package knowledge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresets(t *testing.T) {
	assert.Equal(t, []string{"next", "react", "vue"}, Presets())
}

func TestLookupPreset(t *testing.T) {
	for _, name := range []string{"react", "React", "REACT", " vue ", "Next"} {
		cfg, ok := LookupPreset(name)
		require.True(t, ok, name)
		assert.NotEmpty(t, cfg.Standards.Naming, name)
		assert.NotEmpty(t, cfg.Standards.Structure, name)
		assert.NotEmpty(t, cfg.Standards.Conventions, name)
		assert.NotEmpty(t, cfg.Templates, name)
	}

	cfg, ok := LookupPreset("svelte")
	assert.False(t, ok)
	assert.Nil(t, cfg)
}

func TestLookupPreset_ReturnsCopy(t *testing.T) {
	first, _ := LookupPreset("react")
	first.Standards.Naming["components"] = "mutated"
	first.Standards.Conventions[0] = "mutated"
	first.Standards.Structure["extra"] = "x"

	second, _ := LookupPreset("react")
	assert.Equal(t, "PascalCase", second.Standards.Naming["components"])
	assert.Equal(t, "使用 TypeScript", second.Standards.Conventions[0])
	assert.NotContains(t, second.Standards.Structure, "extra")
}

func TestReactPresetContents(t *testing.T) {
	cfg, _ := LookupPreset("react")

	assert.Equal(t, "kebab-case", cfg.Standards.Naming["files"])
	assert.Equal(t, "src/hooks", cfg.Standards.Structure["hooks"])
	assert.Contains(t, cfg.Standards.Conventions, "使用 CSS Modules 或 styled-components")
	assert.Equal(t, []string{"component", "hook"}, cfg.TemplateNames())
	assert.Equal(t, "templates/react/component.tsx", cfg.Templates["component"].Path)
}
