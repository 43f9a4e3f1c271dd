package knowledge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/z58362026/mcp-packages/pkg/schema"
)

func reactPreset(t *testing.T) *schema.ResolvedConfig {
	t.Helper()
	cfg, ok := LookupPreset("React")
	require.True(t, ok)
	return cfg
}

func TestApplyOverrides_NoMarkerIsIdentity(t *testing.T) {
	base := reactPreset(t)

	for _, text := range []string{"", "hello", "please use snake case", "使用 redux"} {
		got := ApplyOverrides(base, text)
		assert.Equal(t, base, got, "text %q", text)
		assert.NotSame(t, base, got)
	}
}

func TestApplyOverrides_SnakeCase(t *testing.T) {
	base := reactPreset(t)

	got := ApplyOverrides(base, "我们"+MarkerSnakeCase+"吧")

	assert.Equal(t, "snake_case", got.Standards.Naming["components"])
	assert.Equal(t, "snake_case", got.Standards.Naming["files"])
	assert.Equal(t, "useCamelCase", got.Standards.Naming["hooks"])

	// base untouched
	assert.Equal(t, "PascalCase", base.Standards.Naming["components"])
	assert.Equal(t, "kebab-case", base.Standards.Naming["files"])
}

func TestApplyOverrides_FeaturesDirectoryKeepsEntries(t *testing.T) {
	base := reactPreset(t)

	got := ApplyOverrides(base, MarkerFeaturesDir)

	assert.Equal(t, "src/features", got.Standards.Structure["features"])
	for role, dir := range base.Standards.Structure {
		assert.Equal(t, dir, got.Standards.Structure[role], "role %s", role)
	}
	assert.NotContains(t, base.Standards.Structure, "features")
}

func TestApplyOverrides_Redux(t *testing.T) {
	base := reactPreset(t)

	got := ApplyOverrides(base, MarkerRedux)

	require.Len(t, got.Standards.Conventions, len(base.Standards.Conventions)+1)
	assert.Equal(t, "使用 Redux 进行状态管理", got.Standards.Conventions[len(got.Standards.Conventions)-1])
	assert.Equal(t, base.Standards.Conventions, got.Standards.Conventions[:len(base.Standards.Conventions)])
}

func TestApplyOverrides_CSSInJS(t *testing.T) {
	base := reactPreset(t)

	got := ApplyOverrides(base, MarkerCSSInJS)

	assert.Contains(t, got.Standards.Conventions, "使用 styled-components 或 emotion")
	assert.NotContains(t, got.Standards.Conventions, "使用 CSS Modules 或 styled-components")
	assert.Contains(t, got.Standards.Conventions, "使用 TypeScript")
	assert.Len(t, got.Standards.Conventions, len(base.Standards.Conventions))
	assert.Contains(t, base.Standards.Conventions, "使用 CSS Modules 或 styled-components")
}

func TestApplyOverrides_MarkersAreCaseSensitive(t *testing.T) {
	base := reactPreset(t)

	got := ApplyOverrides(base, "使用 redux, 使用 css-in-js")

	assert.Equal(t, base, got)
}

func TestApplyOverrides_AllRules(t *testing.T) {
	base := reactPreset(t)
	text := MarkerSnakeCase + " " + MarkerFeaturesDir + " " + MarkerRedux + " " + MarkerCSSInJS

	got := ApplyOverrides(base, text)

	assert.Equal(t, "snake_case", got.Standards.Naming["files"])
	assert.Contains(t, got.Standards.Structure, "features")
	assert.Contains(t, got.Standards.Conventions, "使用 Redux 进行状态管理")
	assert.Contains(t, got.Standards.Conventions, "使用 styled-components 或 emotion")
	assert.Equal(t, base.Templates, got.Templates)
}

func TestApplyOverrides_NeverRemovesStructure(t *testing.T) {
	bases := []*schema.ResolvedConfig{
		{},
		{Standards: schema.Standards{Structure: map[string]string{"features": "lib/features"}}},
		reactPreset(t),
	}

	for _, base := range bases {
		for _, rule := range Rules() {
			got := ApplyOverrides(base, rule.Marker)
			for role := range base.Standards.Structure {
				assert.Contains(t, got.Standards.Structure, role, "rule %s", rule.Name)
			}
		}
	}
}

func TestApplyRules_LaterRulesSeeEarlierEffects(t *testing.T) {
	rules := []Rule{
		{
			Name:   "add",
			Marker: "x",
			Apply: func(cfg *schema.ResolvedConfig) {
				cfg.Standards.Conventions = append([]string{}, "CSS Modules first")
			},
		},
		Rules()[3],
	}

	got := ApplyRules(&schema.ResolvedConfig{}, "x "+MarkerCSSInJS, rules)

	assert.Equal(t, []string{"使用 styled-components 或 emotion"}, got.Standards.Conventions)
}

func TestApplyOverrides_NilBase(t *testing.T) {
	got := ApplyOverrides(nil, MarkerSnakeCase)

	require.NotNil(t, got)
	assert.Equal(t, "snake_case", got.Standards.Naming["components"])
}

func TestApplyOverrides_DropsSourceDocument(t *testing.T) {
	base := &schema.ResolvedConfig{
		Standards: schema.Standards{Naming: map[string]string{"files": "kebab-case"}},
		Raw:       []byte(`{"standards":{"naming":{"files":"kebab-case"}}}`),
	}

	assert.Equal(t, base.Raw, ApplyOverrides(base, "nothing to see").Raw)

	got := ApplyOverrides(base, MarkerSnakeCase)
	assert.Nil(t, got.Raw)
	assert.NotNil(t, base.Raw)
}
