package domain

// Export is a full dump of the store: every recipe plus the tag index
// summary. It is the payload of GET /api/export and the unit the admin CLI
// moves between storage backends.
type Export struct {
	Recipes []Recipe   `json:"recipes"`
	Tags    []TagCount `json:"tags"`
}

// Inconsistency describes one divergence between the recipe records and the
// tag index, found by the audit pass.
type Inconsistency struct {
	// Tag is the canonical tag name involved.
	Tag string `json:"tag"`
	// RecipeID is the recipe id involved.
	RecipeID string `json:"recipe_id"`
	// Detail says which direction the divergence runs, e.g.
	// "tag references missing recipe" or "recipe tag absent from index".
	Detail string `json:"detail"`
}
