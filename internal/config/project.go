package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// ProjectDirName holds project-level config and knowledge base files.
const ProjectDirName = ".mcpkg"

// ProjectRoot returns the nearest ancestor of the working directory that
// contains a .git directory, or the working directory itself outside a
// repository.
func ProjectRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}

	for dir := cwd; ; {
		if info, err := os.Stat(filepath.Join(dir, ".git")); err == nil && info.IsDir() {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return cwd, nil
		}
		dir = parent
	}
}

// ProjectDir returns the .mcpkg directory below ProjectRoot.
func ProjectDir() (string, error) {
	root, err := ProjectRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, ProjectDirName), nil
}
