package schema

import "strings"

// Project types accepted in a ProjectSpec.
const (
	ProjectFrontend  = "frontend"
	ProjectBackend   = "backend"
	ProjectFullstack = "fullstack"
)

// Knowledge base source types.
const (
	SourceLocal  = "local"
	SourceRemote = "remote"
)

// SourceDescriptor tells the resolver where a knowledge base lives.
type SourceDescriptor struct {
	Type             string `json:"type" jsonschema:"Knowledge base type: local or remote"`
	Path             string `json:"path,omitempty" jsonschema:"Local knowledge base file path (required when type is local)"`
	URL              string `json:"url,omitempty" jsonschema:"Remote knowledge base URL (required when type is remote)"`
	AnalysisEndpoint string `json:"analysisEndpoint,omitempty" jsonschema:"Remote analysis endpoint (optional, remote only)"`
}

// IsLocal reports whether the descriptor points at a local file.
func (s SourceDescriptor) IsLocal() bool {
	return s.Type == SourceLocal
}

// Validate checks the per-type required fields.
func (s SourceDescriptor) Validate() error {
	switch s.Type {
	case SourceLocal:
		if strings.TrimSpace(s.Path) == "" {
			return Validationf("local knowledge base requires a path")
		}
	case SourceRemote:
		if strings.TrimSpace(s.URL) == "" {
			return Validationf("remote knowledge base requires a url")
		}
	case "":
		return Validationf("knowledge base type is required")
	default:
		return Validationf("unknown knowledge base type %q (expected local or remote)", s.Type)
	}
	return nil
}

// ProjectStructure maps logical roles to relative directory paths.
type ProjectStructure struct {
	Src  string `json:"src,omitempty" jsonschema:"Source directory"`
	Test string `json:"test,omitempty" jsonschema:"Test directory"`
	Docs string `json:"docs,omitempty" jsonschema:"Documentation directory"`
}

// ProjectSpec describes the project code will be planned for.
type ProjectSpec struct {
	Type        string            `json:"type" jsonschema:"Project type: frontend, backend or fullstack"`
	Framework   string            `json:"framework" jsonschema:"Framework, e.g. React, Vue, Express"`
	Structure   *ProjectStructure `json:"structure,omitempty" jsonschema:"Project directory layout"`
	Conventions []string          `json:"conventions,omitempty" jsonschema:"Project conventions such as naming or code style rules"`
}

// Validate rejects specs missing the fields downstream consumers rely on.
func (p ProjectSpec) Validate() error {
	switch p.Type {
	case ProjectFrontend, ProjectBackend, ProjectFullstack:
	case "":
		return Validationf("project spec must include type")
	default:
		return Validationf("unknown project type %q", p.Type)
	}
	if strings.TrimSpace(p.Framework) == "" {
		return Validationf("project spec must include framework")
	}
	return nil
}
