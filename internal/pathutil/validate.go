// Package pathutil keeps export paths supplied by external callers inside
// the directories latwalk is allowed to write to.
package pathutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nvandessel/latwalk/internal/constants"
)

// ErrOutsideAllowed is returned when a path escapes every allowed directory.
var ErrOutsideAllowed = errors.New("path is outside allowed directories")

// RedactPath shortens a path to .../<parent>/<name> for error messages
// that may leave the machine.
func RedactPath(path string) string {
	if path == "" {
		return ""
	}
	cleaned := filepath.Clean(path)
	parent := filepath.Base(filepath.Dir(cleaned))
	name := filepath.Base(cleaned)
	if parent == "." || parent == string(filepath.Separator) {
		return name
	}
	return ".../" + parent + "/" + name
}

// ValidatePath reports whether path lies inside one of allowedDirs after
// cleaning it and resolving symlinks on every existing ancestor.
// The path itself does not need to exist.
func ValidatePath(path string, allowedDirs []string) error {
	switch {
	case path == "":
		return fmt.Errorf("invalid path: empty")
	case strings.ContainsRune(path, '\x00'):
		return fmt.Errorf("invalid path: contains null byte")
	case len(allowedDirs) == 0:
		return fmt.Errorf("invalid path: no allowed directories configured")
	}

	target, err := resolve(path)
	if err != nil {
		return fmt.Errorf("invalid path %s: %w", RedactPath(path), err)
	}

	for _, dir := range allowedDirs {
		root, err := resolve(dir)
		if err != nil {
			continue
		}
		if within(target, root) {
			return nil
		}
	}
	return fmt.Errorf("%s: %w", RedactPath(target), ErrOutsideAllowed)
}

// ResolveExportDir turns a requested output directory into an absolute path
// under projectRoot. Relative requests are taken relative to projectRoot;
// an empty request means projectRoot itself.
func ResolveExportDir(projectRoot, requested string) (string, error) {
	root, err := filepath.Abs(projectRoot)
	if err != nil {
		return "", fmt.Errorf("resolving project root: %w", err)
	}
	dir := requested
	if dir == "" {
		dir = root
	} else if !filepath.IsAbs(dir) {
		dir = filepath.Join(root, dir)
	}
	if err := ValidatePath(dir, AllowedExportDirs(root)); err != nil {
		return "", err
	}
	return filepath.Clean(dir), nil
}

// AllowedExportDirs returns the directories exports may be written to:
// the project root and ~/.latwalk/exports when a home directory exists.
func AllowedExportDirs(projectRoot string) []string {
	dirs := []string{projectRoot}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, constants.DataDirName, "exports"))
	}
	return dirs
}

// resolve returns the absolute, symlink-free form of path. Missing trailing
// components are kept as written.
func resolve(path string) (string, error) {
	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", err
	}

	var missing []string
	cur := abs
	for {
		resolved, err := filepath.EvalSymlinks(cur)
		if err == nil {
			parts := append([]string{resolved}, missing...)
			return filepath.Join(parts...), nil
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return "", fmt.Errorf("no existing ancestor")
		}
		missing = append([]string{filepath.Base(cur)}, missing...)
		cur = parent
	}
}

// within reports whether path equals base or lies below it.
func within(path, base string) bool {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
