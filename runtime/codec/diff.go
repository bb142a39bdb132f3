package codec

import (
	"fmt"
	"strings"

	"github.com/aledsdavies/bindc/core/hotkey"
)

// DiffResult lists the entries that differ between two configs. Entries are
// the lines of Text, with mode entries prefixed by their mode header.
type DiffResult struct {
	Added   []string
	Removed []string
}

// Empty reports whether the configs were equivalent.
func (d *DiffResult) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0
}

// Diff compares two configs entry by entry. Duplicate entries are counted,
// so a binding declared twice and then once is reported as removed once.
func Diff(before, after *hotkey.Config) *DiffResult {
	result := &DiffResult{}
	old := entries(before)
	cur := entries(after)

	remaining := make(map[string]int, len(old))
	for _, e := range old {
		remaining[e]++
	}
	for _, e := range cur {
		if remaining[e] > 0 {
			remaining[e]--
			continue
		}
		result.Added = append(result.Added, e)
	}
	for _, e := range old {
		if remaining[e] > 0 {
			remaining[e]--
			result.Removed = append(result.Removed, e)
		}
	}
	return result
}

func entries(cfg *hotkey.Config) []string {
	if cfg == nil {
		return nil
	}
	var out []string
	prefix := ""
	for _, line := range lines(cfg) {
		switch {
		case strings.HasPrefix(line, "mode "):
			prefix = line + ": "
			out = append(out, line)
		case strings.HasPrefix(line, "  "):
			out = append(out, prefix+strings.TrimPrefix(line, "  "))
		default:
			out = append(out, line)
		}
	}
	return out
}

// FormatDiff returns a human-readable diff display.
func FormatDiff(result *DiffResult, useColor bool) string {
	var b strings.Builder

	red, green, reset := "", "", ""
	if useColor {
		red = "\033[31m"
		green = "\033[32m"
		reset = "\033[0m"
	}

	for _, e := range result.Added {
		fmt.Fprintf(&b, "%s+ %s%s\n", green, e, reset)
	}
	for _, e := range result.Removed {
		fmt.Fprintf(&b, "%s- %s%s\n", red, e, reset)
	}
	if result.Empty() {
		fmt.Fprintln(&b, "No differences found.")
	}
	return b.String()
}
