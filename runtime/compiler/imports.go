package compiler

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// resolver tracks the import closure of one compile. Every path is
// processed at most once; pending paths are taken in sorted order so the
// output does not depend on declaration order across files.
type resolver struct {
	seen      map[string]bool
	pending   []string          // sorted, no duplicates
	from      map[string]string // first file that imported each path
	processed []string
	max       int
}

func newResolver(max int) *resolver {
	return &resolver{
		seen: make(map[string]bool),
		from: make(map[string]string),
		max:  max,
	}
}

// markSeen records path as already compiled without adding it to the
// closure. Used for the root file.
func (r *resolver) markSeen(path string) {
	r.seen[path] = true
}

// add queues path unless it was already compiled or queued.
func (r *resolver) add(path, importedFrom string) {
	if r.seen[path] {
		return
	}
	i, found := slices.BinarySearch(r.pending, path)
	if found {
		return
	}
	r.pending = slices.Insert(r.pending, i, path)
	r.from[path] = importedFrom
}

// next pops the smallest pending path and marks it seen.
func (r *resolver) next() (string, bool) {
	if len(r.pending) == 0 {
		return "", false
	}
	path := r.pending[0]
	r.pending = r.pending[1:]
	r.seen[path] = true
	r.processed = append(r.processed, path)
	return path, true
}

func (r *resolver) checkLimit(path string) error {
	if r.max > 0 && len(r.processed) > r.max {
		return &CompileError{
			Kind:    KindReadConfig,
			Path:    path,
			Message: fmt.Sprintf("import closure exceeds the limit of %d files", r.max),
			Context: map[string]any{"imported_from": r.from[path]},
		}
	}
	return nil
}

func (r *resolver) importedFrom(path string) string {
	return r.from[path]
}

// closure returns every imported path, sorted.
func (r *resolver) closure() []string {
	out := slices.Clone(r.processed)
	slices.Sort(out)
	if out == nil {
		out = []string{}
	}
	return out
}

// expandPath resolves an import path: a leading ~/ is the home directory,
// and a relative path is taken relative to the importing file.
func expandPath(path, importedFrom string) (string, error) {
	switch {
	case path == "~" || strings.HasPrefix(path, "~/"):
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
	case !filepath.IsAbs(path) && importedFrom != "":
		path = filepath.Join(filepath.Dir(importedFrom), path)
	}
	return filepath.Clean(path), nil
}
