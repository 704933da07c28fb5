package domain

import (
	"sort"
	"strings"
)

// MaxTagLength is the longest canonical tag name accepted on a write.
const MaxTagLength = 50

// TagCount is the listing shape for the tag index: a canonical name and how
// many recipes currently reference it. Tags are global and implicit — one
// exists exactly while at least one recipe references it; the first reference
// creates it and the last dereference destroys it. Identity is the canonical
// upper-cased name.
type TagCount struct {
	Name        string `json:"name"`
	RecipeCount int    `json:"recipe_count"`
}

// NormalizeTagName canonicalizes a tag name: trimmed and upper-cased.
// Returns "" for empty or whitespace-only input; callers drop such names.
// Upper case is the store-wide canonical form — it must be applied on every
// write and lookup so "Dessert" and "dessert" resolve to the same tag.
func NormalizeTagName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// NormalizeTagSet canonicalizes a list of tag names into a sorted,
// de-duplicated set, dropping names that normalize to empty.
func NormalizeTagSet(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		c := NormalizeTagName(n)
		if c == "" {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// TagDelta is the set difference between a recipe's previous and new tag
// sets, computed on update. Added and Removed are disjoint; names are
// canonical.
type TagDelta struct {
	Added   []string
	Removed []string
}

// DiffTags computes the delta that turns the old tag set into the new one.
// Both inputs must already be canonical sets (NormalizeTagSet output).
func DiffTags(oldTags, newTags []string) TagDelta {
	oldSet := make(map[string]struct{}, len(oldTags))
	for _, t := range oldTags {
		oldSet[t] = struct{}{}
	}
	newSet := make(map[string]struct{}, len(newTags))
	for _, t := range newTags {
		newSet[t] = struct{}{}
	}

	var d TagDelta
	for _, t := range newTags {
		if _, ok := oldSet[t]; !ok {
			d.Added = append(d.Added, t)
		}
	}
	for _, t := range oldTags {
		if _, ok := newSet[t]; !ok {
			d.Removed = append(d.Removed, t)
		}
	}
	return d
}
