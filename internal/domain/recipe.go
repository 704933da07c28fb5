// Package domain contains the core data types for the Recipe Box application.
// This package has zero external dependencies and is imported by every other
// internal package (repo, filestore, service, handler).
package domain

import "time"

// Recipe represents a single dish with its editable content.
// A recipe is the top-level aggregate; ingredients are value objects owned by
// the recipe, while tags are held by name only — the tag index owns the
// reverse mapping from tag name to recipe ids.
type Recipe struct {
	// ID is an opaque stable identifier (e.g. "recipe_042").
	// Immutable after creation; assigned by the repo's id allocator.
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Ingredients  []Ingredient `json:"ingredients"`
	Instructions string       `json:"instructions,omitempty"`
	Notes        string       `json:"notes,omitempty"`

	// Tags holds canonical (upper-cased) tag names. The slice is treated as a
	// set: no duplicates, order not meaningful.
	Tags []string `json:"tags"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasTag reports whether the recipe carries the given canonical tag name.
func (r Recipe) HasTag(name string) bool {
	for _, t := range r.Tags {
		if t == name {
			return true
		}
	}
	return false
}

// Ingredient is one line of a recipe's ingredient list. It is a value type
// with no identity of its own; order within Recipe.Ingredients is preserved
// and meaningful (display and instruction-reference order).
type Ingredient struct {
	// Amount is either empty or a quantity accepted by ValidateAmount:
	// an integer/decimal in [0, 1000], a fraction "a/b", or a mixed
	// number "a b/c".
	Amount      string `json:"amount,omitempty"`
	Unit        string `json:"unit,omitempty"`
	Description string `json:"description"`
}
