package parser

import (
	"slices"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Modifiers lists the modifier names the grammar accepts, matched without
// regard to case.
var Modifiers = []string{
	"super", "mod4",
	"hyper", "mod3",
	"meta",
	"ctrl", "control",
	"alt", "mod1",
	"altgr", "mod5",
	"shift",
	"any",
}

// IsModifier reports whether word names a modifier.
func IsModifier(word string) bool {
	return slices.Contains(Modifiers, strings.ToLower(word))
}

// closestModifier returns the modifier the user most likely meant, or "".
// Fuzzy ranking catches dropped letters ("supr"); edit distance catches the
// rest ("sihft").
func closestModifier(word string) string {
	if len(word) < 2 {
		return ""
	}
	if ranks := fuzzy.RankFindFold(word, Modifiers); len(ranks) > 0 {
		slices.SortStableFunc(ranks, func(a, b fuzzy.Rank) int { return a.Distance - b.Distance })
		return ranks[0].Target
	}

	best, bestDist := "", 3
	for _, m := range Modifiers {
		if d := levenshtein.ComputeDistance(strings.ToLower(word), m); d < bestDist {
			best, bestDist = m, d
		}
	}
	if bestDist >= len(word) {
		return ""
	}
	return best
}
