package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/z58362026/mcp-packages/internal/config"
	"github.com/z58362026/mcp-packages/internal/knowledge"
	"github.com/z58362026/mcp-packages/internal/ui"
	"github.com/z58362026/mcp-packages/pkg/schema"
	"gopkg.in/yaml.v3"
)

const otherFramework = "other"

var errKnowledgeBaseExists = errors.New("knowledge base file already exists")

var (
	initType         string
	initFramework    string
	initOutput       string
	initConversation string
	initForce        bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a local knowledge base file",
	Long: `Create a local knowledge base file seeded from a built-in preset.

Project type and framework are asked interactively unless given as flags.
Pattern overrides in --conversation (for example "使用 Redux") are applied to
the seed. The file format follows the extension: .json, .yaml or .yml.`,
	Example: `  mcpkg init
  mcpkg init --type frontend --framework react --conversation "使用下划线命名" --out .mcpkg/knowledge.yaml`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().StringVar(&initType, "type", "", "project type: frontend, backend or fullstack")
	initCmd.Flags().StringVar(&initFramework, "framework", "", "framework; presets are seeded from the built-in table")
	initCmd.Flags().StringVarP(&initOutput, "out", "o", "", "knowledge base file to write (default: .mcpkg/knowledge.json in the project root)")
	initCmd.Flags().StringVar(&initConversation, "conversation", "", "pattern overrides to apply to the seed")
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing file without asking")
}

func runInit(cmd *cobra.Command, args []string) error {
	kind := initType
	if kind == "" {
		choice, err := selectOption("Project type", []string{schema.ProjectFrontend, schema.ProjectBackend, schema.ProjectFullstack})
		if err != nil {
			return err
		}
		kind = choice
	}

	framework := initFramework
	if framework == "" {
		choice, err := selectOption("Framework", append(knowledge.Presets(), otherFramework))
		if err != nil {
			return err
		}
		framework = choice
	}
	if framework == otherFramework {
		prompt := promptui.Prompt{Label: "Framework name"}
		name, err := prompt.Run()
		if err != nil {
			return fmt.Errorf("init cancelled: %w", err)
		}
		framework = strings.TrimSpace(name)
	}

	spec := schema.ProjectSpec{Type: kind, Framework: framework}
	if err := spec.Validate(); err != nil {
		return err
	}

	out, err := knowledgeBasePath(initOutput)
	if err != nil {
		return err
	}

	kb := seedKnowledgeBase(framework, initConversation)
	fsys := osfs.New("/")
	err = writeKnowledgeBase(fsys, out, kb, initForce)
	if errors.Is(err, errKnowledgeBaseExists) {
		confirm := promptui.Prompt{
			Label:     fmt.Sprintf("%s exists. Overwrite", initOutput),
			IsConfirm: true,
		}
		if _, perr := confirm.Run(); perr != nil {
			ui.PrintWarn("Kept the existing knowledge base")
			return nil
		}
		err = writeKnowledgeBase(fsys, out, kb, true)
	}
	if err != nil {
		return err
	}

	ui.PrintOK(fmt.Sprintf("Knowledge base written to %s", out))
	ui.PrintIndent(fmt.Sprintf("mcpkg analyze --kb-path %s --type %s --framework %s --doc-url <url>", out, kind, framework))
	return nil
}

// knowledgeBasePath resolves the init target, defaulting to the project's
// .mcpkg directory.
func knowledgeBasePath(out string) (string, error) {
	if out != "" {
		return filepath.Abs(out)
	}
	dir, err := config.ProjectDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "knowledge.json"), nil
}

func selectOption(label string, items []string) (string, error) {
	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}?",
		Active:   "▸ {{ . | cyan }}",
		Inactive: "  {{ . }}",
		Selected: "✓ {{ . | green }}",
	}

	prompt := promptui.Select{
		Label:     label,
		Items:     items,
		Templates: templates,
		Size:      len(items),
	}
	_, choice, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("init cancelled: %w", err)
	}
	return choice, nil
}

// seedKnowledgeBase starts from the framework preset, or an empty knowledge
// base for frameworks without one, and applies conversation overrides.
func seedKnowledgeBase(framework, conversation string) *schema.ResolvedConfig {
	base, ok := knowledge.LookupPreset(framework)
	if !ok {
		base = &schema.ResolvedConfig{}
	}
	return knowledge.ApplyOverrides(base, conversation)
}

// writeKnowledgeBase encodes kb by the extension of path. An existing file is
// only replaced when overwrite is set.
func writeKnowledgeBase(fsys billy.Filesystem, path string, kb *schema.ResolvedConfig, overwrite bool) error {
	if !overwrite {
		if _, err := fsys.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", errKnowledgeBaseExists, path)
		}
	}

	data, err := json.MarshalIndent(kb, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode knowledge base: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var doc map[string]any
		if err := json.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("failed to encode knowledge base: %w", err)
		}
		if data, err = yaml.Marshal(doc); err != nil {
			return fmt.Errorf("failed to encode knowledge base: %w", err)
		}
	case ".json":
		data = append(data, '\n')
	default:
		return schema.Validationf("unsupported knowledge base extension %q (want .json, .yaml or .yml)", filepath.Ext(path))
	}

	if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}
	if err := util.WriteFile(fsys, path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
