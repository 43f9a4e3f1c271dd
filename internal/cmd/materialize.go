package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/spf13/cobra"
	"github.com/z58362026/mcp-packages/internal/artifact"
	"github.com/z58362026/mcp-packages/internal/ui"
)

var materializeOutput string

var materializeCmd = &cobra.Command{
	Use:   "materialize <tree.json>",
	Short: "Write an artifact tree to disk",
	Long: `Write a JSON artifact tree to disk. Objects become directories and strings
become files holding that text, for example:

  {"src": {"components": {}, "index.ts": "export {}\n"}}`,
	Example: `  mcpkg materialize structure.json --out ./generated`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return materializeFile(osfs.New("/"), args[0], materializeOutput)
	},
}

func init() {
	rootCmd.AddCommand(materializeCmd)

	materializeCmd.Flags().StringVarP(&materializeOutput, "out", "o", ".", "directory to write the tree into")
}

// materializeFile writes the tree stored at treePath below out. Relative
// paths are resolved against the working directory.
func materializeFile(fsys billy.Filesystem, treePath, out string) error {
	treePath, err := filepath.Abs(treePath)
	if err != nil {
		return err
	}
	out, err = filepath.Abs(out)
	if err != nil {
		return err
	}

	data, err := util.ReadFile(fsys, treePath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", treePath, err)
	}
	tree, err := artifact.ParseTree(data)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", treePath, err)
	}

	if err := artifact.NewMaterializer(fsys, verbose).Materialize(tree, out); err != nil {
		return err
	}
	ui.PrintDone(fmt.Sprintf("Wrote %d top-level entries to %s", tree.Len(), out))
	return nil
}
