package filetools

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"bizwiz/internal/errors"
)

// ExpandPaths turns a mix of file paths, directories and glob patterns into
// the files whose base name matches pattern (case-insensitive). Glob matches
// and directory entries are sorted; otherwise the input order is kept and
// duplicates are dropped.
func ExpandPaths(inputs []string, pattern string) ([]string, error) {
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, errors.InvalidInput(fmt.Sprintf("invalid file pattern %q", pattern))
	}

	seen := make(map[string]bool)
	var out []string
	add := func(path string) {
		if seen[path] || !matchBase(pattern, path) {
			return
		}
		seen[path] = true
		out = append(out, path)
	}

	for _, in := range inputs {
		if containsGlobChar(in) {
			matches, err := filepath.Glob(in)
			if err != nil {
				return nil, errors.InvalidInput(fmt.Sprintf("invalid glob pattern %q", in))
			}
			sort.Strings(matches)
			for _, m := range matches {
				if info, err := os.Stat(m); err == nil && !info.IsDir() {
					add(m)
				}
			}
			continue
		}

		info, err := os.Stat(in)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, errors.NotFound(fmt.Sprintf("file %s", in))
			}
			return nil, fmt.Errorf("stat %s: %w", in, err)
		}
		if !info.IsDir() {
			add(in)
			continue
		}

		entries, err := os.ReadDir(in)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", in, err)
		}
		for _, e := range entries {
			if !e.IsDir() {
				add(filepath.Join(in, e.Name()))
			}
		}
	}
	return out, nil
}

func matchBase(pattern, path string) bool {
	ok, _ := filepath.Match(strings.ToLower(pattern), strings.ToLower(filepath.Base(path)))
	return ok
}

func containsGlobChar(s string) bool {
	return strings.ContainsAny(s, "*?[")
}
