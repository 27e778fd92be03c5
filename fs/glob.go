package fs

import (
	"fmt"
	iofs "io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fwojciec/sketchui"
)

// DefaultSketchPattern matches common image files at any depth.
const DefaultSketchPattern = "**/*.{png,jpg,jpeg,gif,webp,PNG,JPG,JPEG}"

// FindSketches returns the files under root matching a doublestar pattern,
// sorted. Directories are skipped. An empty pattern means
// DefaultSketchPattern.
func FindSketches(root, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = DefaultSketchPattern
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("fs: invalid glob pattern %q: %w", pattern, sketchui.ErrValidation)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("fs: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("fs: %s is not a directory: %w", root, sketchui.ErrValidation)
	}

	var matches []string
	err = doublestar.GlobWalk(os.DirFS(root), pattern, func(path string, d iofs.DirEntry) error {
		if d.IsDir() {
			return nil
		}
		matches = append(matches, filepath.Join(root, filepath.FromSlash(path)))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fs: match %q: %w", pattern, err)
	}
	slices.Sort(matches)
	return matches, nil
}

// ResolveSketches expands arg into sketch paths. A plain file path is
// returned as is; anything containing glob metacharacters is split into
// its static base directory and pattern and expanded with FindSketches.
func ResolveSketches(arg string) ([]string, error) {
	base, pattern := doublestar.SplitPattern(filepath.ToSlash(arg))
	if pattern == "" || !hasMeta(pattern) {
		return []string{arg}, nil
	}
	return FindSketches(filepath.FromSlash(base), pattern)
}

func hasMeta(p string) bool {
	for _, r := range p {
		switch r {
		case '*', '?', '[', '{':
			return true
		}
	}
	return false
}
