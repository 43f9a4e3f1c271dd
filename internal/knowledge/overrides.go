package knowledge

import (
	"maps"
	"slices"
	"strings"

	"github.com/z58362026/mcp-packages/pkg/schema"
)

// Conversation markers recognised by the built-in rules. They are matched as
// exact, case-sensitive substrings.
const (
	MarkerSnakeCase   = "使用下划线命名"
	MarkerFeaturesDir = "使用 features 目录"
	MarkerRedux       = "使用 Redux"
	MarkerCSSInJS     = "使用 CSS-in-JS"
)

const (
	snakeCase          = "snake_case"
	featuresDir        = "src/features"
	reduxConvention    = "使用 Redux 进行状态管理"
	cssModulesMention  = "CSS Modules"
	cssInJSConvention  = "使用 styled-components 或 emotion"
	namingComponentKey = "components"
	namingFileKey      = "files"
)

// Rule rewrites a working copy of a configuration when its marker occurs in
// the conversation text. Apply must only replace the parts of cfg it changes,
// never edit shared maps or slices in place.
type Rule struct {
	Name   string
	Marker string
	Apply  func(cfg *schema.ResolvedConfig)
}

// Matches reports whether the rule fires for the given conversation.
func (r Rule) Matches(conversation string) bool {
	return r.Marker != "" && strings.Contains(conversation, r.Marker)
}

var defaultRules = []Rule{
	{
		Name:   "snake-case-naming",
		Marker: MarkerSnakeCase,
		Apply: func(cfg *schema.ResolvedConfig) {
			naming := maps.Clone(cfg.Standards.Naming)
			if naming == nil {
				naming = make(map[string]string, 2)
			}
			naming[namingComponentKey] = snakeCase
			naming[namingFileKey] = snakeCase
			cfg.Standards.Naming = naming
		},
	},
	{
		Name:   "features-directory",
		Marker: MarkerFeaturesDir,
		Apply: func(cfg *schema.ResolvedConfig) {
			structure := maps.Clone(cfg.Standards.Structure)
			if structure == nil {
				structure = make(map[string]string, 1)
			}
			structure["features"] = featuresDir
			cfg.Standards.Structure = structure
		},
	},
	{
		Name:   "redux-state",
		Marker: MarkerRedux,
		Apply: func(cfg *schema.ResolvedConfig) {
			conventions := slices.Clone(cfg.Standards.Conventions)
			cfg.Standards.Conventions = append(conventions, reduxConvention)
		},
	},
	{
		Name:   "css-in-js",
		Marker: MarkerCSSInJS,
		Apply: func(cfg *schema.ResolvedConfig) {
			conventions := slices.Clone(cfg.Standards.Conventions)
			for i, conv := range conventions {
				if strings.Contains(conv, cssModulesMention) {
					conventions[i] = cssInJSConvention
				}
			}
			cfg.Standards.Conventions = conventions
		},
	},
}

// Rules returns the built-in rules in evaluation order.
func Rules() []Rule {
	return slices.Clone(defaultRules)
}

// ApplyOverrides adjusts base according to the conversation using the
// built-in rules. base is never modified.
func ApplyOverrides(base *schema.ResolvedConfig, conversation string) *schema.ResolvedConfig {
	return ApplyRules(base, conversation, defaultRules)
}

// ApplyRules runs rules in order against a single working copy of base, so a
// later rule observes the effects of earlier ones.
func ApplyRules(base *schema.ResolvedConfig, conversation string, rules []Rule) *schema.ResolvedConfig {
	if base == nil {
		base = &schema.ResolvedConfig{}
	}

	// Shallow copy: untouched maps and slices stay shared with base, rules
	// replace what they change.
	working := *base
	for _, rule := range rules {
		if rule.Matches(conversation) {
			rule.Apply(&working)
			working.Raw = nil
		}
	}
	return &working
}
