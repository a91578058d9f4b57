// Package pathutil keeps result files inside their results directory.
package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// RedactPath reduces a full path to .../<parent>/<basename> for messages that
// may leave the machine, such as MCP tool errors.
// "/home/user/results/jve_results.json" becomes ".../results/jve_results.json".
func RedactPath(path string) string {
	if path == "" {
		return ""
	}
	cleaned := filepath.Clean(path)
	parent := filepath.Base(filepath.Dir(cleaned))
	base := filepath.Base(cleaned)
	if parent == "." || parent == string(filepath.Separator) {
		return base
	}
	return ".../" + parent + "/" + base
}

// Within joins name onto dir and returns the result if it stays inside dir
// after cleaning and symlink resolution.
func Within(dir, name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("invalid result name: empty")
	}
	path := filepath.Join(dir, name)
	if err := ValidatePath(path, dir); err != nil {
		return "", err
	}
	return path, nil
}

// ValidatePath checks that path is root or lies below it. Neither needs to
// exist yet; the deepest existing ancestor of each is resolved.
func ValidatePath(path, root string) error {
	if path == "" {
		return fmt.Errorf("path validation failed: path is empty")
	}
	if root == "" {
		return fmt.Errorf("path validation failed: no root directory")
	}
	if strings.ContainsRune(path, '\x00') {
		return fmt.Errorf("path validation failed: path contains null byte")
	}

	absPath, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("path validation failed: cannot resolve absolute path: %w", err)
	}
	resolvedDir, err := resolveExisting(filepath.Dir(absPath))
	if err != nil {
		return fmt.Errorf("path validation failed: %w", err)
	}
	resolved := filepath.Join(resolvedDir, filepath.Base(absPath))

	absRoot, err := filepath.Abs(filepath.Clean(root))
	if err != nil {
		return fmt.Errorf("path validation failed: cannot resolve root: %w", err)
	}
	resolvedRoot, err := resolveExisting(absRoot)
	if err != nil {
		return fmt.Errorf("path validation failed: %w", err)
	}

	if !isSubpath(resolved, resolvedRoot) {
		return fmt.Errorf("path validation failed: %q is outside %q", RedactPath(absPath), RedactPath(absRoot))
	}
	return nil
}

// resolveExisting resolves symlinks on the deepest existing ancestor of dir
// and re-appends the missing tail.
func resolveExisting(dir string) (string, error) {
	resolved, err := filepath.EvalSymlinks(dir)
	if err == nil {
		return resolved, nil
	}

	parent := filepath.Dir(dir)
	if parent == dir {
		return "", fmt.Errorf("cannot resolve path: %s", RedactPath(dir))
	}

	resolvedParent, err := resolveExisting(parent)
	if err != nil {
		return "", err
	}
	return filepath.Join(resolvedParent, filepath.Base(dir)), nil
}

// isSubpath reports whether path equals base or lies below it.
func isSubpath(path, base string) bool {
	if path == base {
		return true
	}
	return strings.HasPrefix(path, base+string(os.PathSeparator))
}
