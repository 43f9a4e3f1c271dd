package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/z58362026/mcp-packages/pkg/schema"
)

const (
	dirPerm  os.FileMode = 0755
	filePerm os.FileMode = 0644
)

// Materializer writes artifact trees onto a filesystem.
type Materializer struct {
	fs      billy.Filesystem
	verbose bool
}

// NewMaterializer creates a materializer writing to fsys.
func NewMaterializer(fsys billy.Filesystem, verbose bool) *Materializer {
	return &Materializer{fs: fsys, verbose: verbose}
}

// Materialize creates basePath and everything below tree. Directories are
// created before any of their children; existing files are overwritten.
// The first failure aborts the walk and whatever was already written stays.
func (m *Materializer) Materialize(tree *Dir, basePath string) error {
	if strings.TrimSpace(basePath) == "" {
		return schema.Validationf("output path is required")
	}
	if err := m.fs.MkdirAll(basePath, dirPerm); err != nil {
		return fmt.Errorf("%w: failed to create %s: %w", schema.ErrFilesystem, basePath, err)
	}
	if tree == nil {
		return nil
	}
	return m.writeDir(tree, basePath)
}

func (m *Materializer) writeDir(dir *Dir, current string) error {
	for _, name := range dir.Names() {
		if err := validName(name); err != nil {
			return fmt.Errorf("%w: %s: %w", schema.ErrFilesystem, current, err)
		}

		full := m.fs.Join(current, name)
		child, _ := dir.Get(name)

		switch node := child.(type) {
		case *Dir:
			if err := m.fs.MkdirAll(full, dirPerm); err != nil {
				return fmt.Errorf("%w: failed to create directory %s: %w", schema.ErrFilesystem, full, err)
			}
			if err := m.writeDir(node, full); err != nil {
				return err
			}
		case File:
			if err := util.WriteFile(m.fs, full, []byte(node), filePerm); err != nil {
				return fmt.Errorf("%w: failed to write %s: %w", schema.ErrFilesystem, full, err)
			}
			if m.verbose {
				fmt.Fprintf(os.Stderr, "  ✓ Wrote: %s\n", full)
			}
		}
	}
	return nil
}

func validName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return fmt.Errorf("invalid entry name %q", name)
	case strings.ContainsRune(name, '/'), strings.ContainsRune(name, filepath.Separator):
		return fmt.Errorf("entry name %q must not contain a path separator", name)
	}
	return nil
}
