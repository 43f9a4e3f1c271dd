package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/pflag"
	"github.com/z58362026/mcp-packages/pkg/schema"
)

// sourceFlags collects a knowledge base descriptor from the command line.
type sourceFlags struct {
	kind     string
	path     string
	url      string
	endpoint string
}

func (f *sourceFlags) bind(fs *pflag.FlagSet) {
	fs.StringVar(&f.kind, "kb-type", schema.SourceLocal, "knowledge base type: local or remote")
	fs.StringVar(&f.path, "kb-path", "", "local knowledge base file (.json, .yaml or .md with front matter)")
	fs.StringVar(&f.url, "kb-url", "", "remote knowledge base URL")
	fs.StringVar(&f.endpoint, "kb-endpoint", "", "remote analysis endpoint")
}

// descriptor returns the validated source with a local path made absolute.
func (f *sourceFlags) descriptor() (schema.SourceDescriptor, error) {
	src := schema.SourceDescriptor{
		Type:             f.kind,
		Path:             f.path,
		URL:              f.url,
		AnalysisEndpoint: f.endpoint,
	}
	if err := src.Validate(); err != nil {
		return src, err
	}
	if src.IsLocal() {
		abs, err := filepath.Abs(src.Path)
		if err != nil {
			return src, fmt.Errorf("failed to resolve %s: %w", src.Path, err)
		}
		src.Path = abs
	}
	return src, nil
}

// specFlags collects a project description from the command line.
type specFlags struct {
	kind        string
	framework   string
	src         string
	test        string
	docs        string
	conventions []string
}

func (f *specFlags) bind(fs *pflag.FlagSet) {
	fs.StringVar(&f.kind, "type", "", "project type: frontend, backend or fullstack")
	fs.StringVar(&f.framework, "framework", "", "framework, e.g. React, Vue, Express")
	fs.StringVar(&f.src, "src", "", "source directory (default src)")
	fs.StringVar(&f.test, "test", "", "test directory (default test)")
	fs.StringVar(&f.docs, "docs", "", "documentation directory (default docs)")
	fs.StringArrayVar(&f.conventions, "convention", nil, "project convention (repeatable, taken verbatim)")
}

func (f *specFlags) spec() (schema.ProjectSpec, error) {
	spec := schema.ProjectSpec{
		Type:        f.kind,
		Framework:   f.framework,
		Conventions: f.conventions,
	}
	if f.src != "" || f.test != "" || f.docs != "" {
		spec.Structure = &schema.ProjectStructure{Src: f.src, Test: f.test, Docs: f.docs}
	}
	return spec, spec.Validate()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}
