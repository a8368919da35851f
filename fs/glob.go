package fs

import (
	"fmt"
	iofs "io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// Expand resolves patterns to the regular files they match, in pattern order.
// Patterns support ** for recursive matching; a plain path matches itself.
// Stdin is passed through. A file matched by several patterns is listed once.
func Expand(patterns []string) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	for _, p := range patterns {
		if p == Stdin {
			out = append(out, p)
			continue
		}
		matches, err := glob(p)
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			if seen[m] {
				continue
			}
			seen[m] = true
			out = append(out, m)
		}
	}
	return out, nil
}

func glob(pattern string) ([]string, error) {
	slashed := filepath.ToSlash(pattern)
	if !doublestar.ValidatePattern(slashed) {
		return nil, fmt.Errorf("invalid glob pattern: %s", pattern)
	}

	base, rest := doublestar.SplitPattern(slashed)
	root := filepath.FromSlash(base)
	var matches []string
	err := doublestar.GlobWalk(os.DirFS(root), rest, func(path string, d iofs.DirEntry) error {
		if d.IsDir() {
			return nil
		}
		matches = append(matches, filepath.Join(root, filepath.FromSlash(path)))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("match %s: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoMatch, pattern)
	}
	return matches, nil
}
