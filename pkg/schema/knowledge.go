package schema

import (
	"bytes"
	"encoding/json"
	"maps"
	"slices"
)

// Standards holds the naming, layout and convention rules of a knowledge base.
type Standards struct {
	Naming      map[string]string `json:"naming,omitempty"`
	Structure   map[string]string `json:"structure,omitempty"`
	Conventions []string          `json:"conventions,omitempty"`
}

// Template is a named starter file shipped with a knowledge base.
type Template struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// ResolvedConfig is the knowledge base a single analysis runs against.
//
// Analysis and Artifacts are only set when an authoritative remote service
// returned a finished result; they are kept verbatim.
type ResolvedConfig struct {
	Standards Standards           `json:"standards"`
	Templates map[string]Template `json:"templates,omitempty"`
	Analysis  json.RawMessage     `json:"analysis,omitempty"`
	Artifacts json.RawMessage     `json:"structure,omitempty"`

	// Raw is the document the configuration was decoded from, as received.
	// Configurations derived by overrides do not carry it.
	Raw json.RawMessage `json:"-"`
}

// UnmarshalJSON decodes the typed view leniently: members and entries whose
// shape does not match are skipped instead of failing the document. The
// input must still be a JSON object.
func (c *ResolvedConfig) UnmarshalJSON(data []byte) error {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil {
		return err
	}

	var cfg ResolvedConfig
	if raw, ok := members["standards"]; ok {
		cfg.Standards = decodeStandards(raw)
	}
	if raw, ok := members["templates"]; ok {
		cfg.Templates = decodeTemplates(raw)
	}
	cfg.Analysis = present(members["analysis"])
	cfg.Artifacts = present(members["structure"])
	*c = cfg
	return nil
}

func decodeStandards(raw json.RawMessage) Standards {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(raw, &members); err != nil {
		return Standards{}
	}
	return Standards{
		Naming:      stringMap(members["naming"]),
		Structure:   stringMap(members["structure"]),
		Conventions: stringList(members["conventions"]),
	}
}

func decodeTemplates(raw json.RawMessage) map[string]Template {
	var entries map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil || entries == nil {
		return nil
	}
	templates := make(map[string]Template, len(entries))
	for name, entry := range entries {
		var tmpl Template
		if err := json.Unmarshal(entry, &tmpl); err == nil {
			templates[name] = tmpl
		}
	}
	return templates
}

// stringMap keeps the string-valued members of a JSON object.
func stringMap(raw json.RawMessage) map[string]string {
	var entries map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil || entries == nil {
		return nil
	}
	out := make(map[string]string, len(entries))
	for key, entry := range entries {
		var value string
		if err := json.Unmarshal(entry, &value); err == nil {
			out[key] = value
		}
	}
	return out
}

// stringList keeps the string elements of a JSON array.
func stringList(raw json.RawMessage) []string {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil || items == nil {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		var value string
		if err := json.Unmarshal(item, &value); err == nil {
			out = append(out, value)
		}
	}
	return out
}

func present(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil
	}
	return raw
}

// Clone returns a deep copy.
func (c *ResolvedConfig) Clone() *ResolvedConfig {
	if c == nil {
		return nil
	}
	return &ResolvedConfig{
		Standards: Standards{
			Naming:      maps.Clone(c.Standards.Naming),
			Structure:   maps.Clone(c.Standards.Structure),
			Conventions: slices.Clone(c.Standards.Conventions),
		},
		Templates: maps.Clone(c.Templates),
		Analysis:  slices.Clone(c.Analysis),
		Artifacts: slices.Clone(c.Artifacts),
		Raw:       slices.Clone(c.Raw),
	}
}

// TemplateNames returns the template keys in sorted order.
func (c *ResolvedConfig) TemplateNames() []string {
	return slices.Sorted(maps.Keys(c.Templates))
}
