package knowledge

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/z58362026/mcp-packages/pkg/schema"
	"gopkg.in/yaml.v3"
)

// yamlMatter reads "---" delimited front matter with yaml.v3 so nested maps
// decode with string keys.
var yamlMatter = frontmatter.NewFormat("---", "---", yaml.Unmarshal)

// decodeDocument parses a knowledge base file. The format is chosen by
// extension: .yaml/.yml, .md (front matter) and JSON for everything else.
func decodeDocument(name string, data []byte) (*schema.ResolvedConfig, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		var doc map[string]any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse yaml: %w", err)
		}
		return fromGeneric(doc)
	case ".md", ".markdown":
		var doc map[string]any
		if _, err := frontmatter.MustParse(bytes.NewReader(data), &doc, yamlMatter); err != nil {
			return nil, fmt.Errorf("failed to parse front matter: %w", err)
		}
		return fromGeneric(doc)
	default:
		var cfg schema.ResolvedConfig
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse json: %w", err)
		}
		cfg.Raw = data
		return &cfg, nil
	}
}

// fromGeneric converts a decoded YAML tree into a ResolvedConfig by way of
// its JSON form, so both encodings share one set of field names. The JSON
// form becomes Raw.
func fromGeneric(doc map[string]any) (*schema.ResolvedConfig, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize document: %w", err)
	}

	var cfg schema.ResolvedConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	cfg.Raw = data
	return &cfg, nil
}
