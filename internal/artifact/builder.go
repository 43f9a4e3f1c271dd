package artifact

import (
	"encoding/json"
	"fmt"
	"path"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/z58362026/mcp-packages/pkg/schema"
)

// Default top-level directories and the subdirectories planned inside them.
var (
	defaultSourceDir = "src"
	defaultTestDir   = "test"
	defaultDocsDir   = "docs"

	sourceLayout = []string{"components", "services", "utils"}
	testLayout   = []string{"unit", "integration"}
	docsLayout   = []string{"api", "guides"}
)

// Report is returned next to the artifact tree so callers can trace which
// rules and which document an analysis used. It is never written to disk.
type Report struct {
	ID          string            `json:"id"`
	ProjectType string            `json:"projectType"`
	Framework   string            `json:"framework"`
	Naming      map[string]string `json:"naming,omitempty"`
	Conventions []string          `json:"conventions"`
	Templates   []string          `json:"templates,omitempty"`
	Analysis    json.RawMessage   `json:"analysis,omitempty"`
	Document    string            `json:"document"`
}

// Build plans the artifact tree for a project. When cfg carries a prebuilt
// structure from a remote analysis service that structure is used as-is,
// otherwise a schematic source/test/docs layout is produced. cfg is only read.
func Build(document string, cfg *schema.ResolvedConfig, spec schema.ProjectSpec) (*Dir, *Report, error) {
	if cfg == nil {
		cfg = &schema.ResolvedConfig{}
	}

	id, err := gonanoid.New()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate report id: %w", err)
	}

	report := &Report{
		ID:          id,
		ProjectType: spec.Type,
		Framework:   spec.Framework,
		Naming:      cfg.Standards.Naming,
		Conventions: mergeConventions(cfg.Standards.Conventions, spec.Conventions),
		Templates:   cfg.TemplateNames(),
		Analysis:    cfg.Analysis,
		Document:    document,
	}

	if len(cfg.Artifacts) > 0 {
		tree, err := ParseTree(cfg.Artifacts)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid prebuilt structure: %w", err)
		}
		return tree, report, nil
	}

	tree, err := schematic(spec.Structure)
	if err != nil {
		return nil, nil, err
	}
	return tree, report, nil
}

func schematic(layout *schema.ProjectStructure) (*Dir, error) {
	dirs := schema.ProjectStructure{Src: defaultSourceDir, Test: defaultTestDir, Docs: defaultDocsDir}
	if layout != nil {
		if layout.Src != "" {
			dirs.Src = layout.Src
		}
		if layout.Test != "" {
			dirs.Test = layout.Test
		}
		if layout.Docs != "" {
			dirs.Docs = layout.Docs
		}
	}

	root := NewDir()
	for _, section := range []struct {
		role   string
		dir    string
		layout []string
	}{
		{"src", dirs.Src, sourceLayout},
		{"test", dirs.Test, testLayout},
		{"docs", dirs.Docs, docsLayout},
	} {
		elems, err := splitRelative(section.dir)
		if err != nil {
			return nil, fmt.Errorf("invalid %s directory: %w", section.role, err)
		}

		parent := root.MkdirPath(elems...)
		for _, name := range section.layout {
			parent.MkdirPath(name)
		}
	}
	return root, nil
}

// splitRelative turns "a/b/c" into its elements, refusing paths that would
// escape the output directory.
func splitRelative(dir string) ([]string, error) {
	dir = strings.ReplaceAll(dir, "\\", "/")
	if path.IsAbs(dir) {
		return nil, schema.Validationf("%q must be relative", dir)
	}

	cleaned := path.Clean(dir)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return nil, schema.Validationf("%q must stay inside the output directory", dir)
	}
	return strings.Split(cleaned, "/"), nil
}

// mergeConventions appends project conventions to the resolved ones,
// dropping duplicates while keeping first-seen order.
func mergeConventions(lists ...[]string) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, list := range lists {
		for _, conv := range list {
			if conv == "" || seen[conv] {
				continue
			}
			seen[conv] = true
			out = append(out, conv)
		}
	}
	return out
}
