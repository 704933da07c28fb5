package repo

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"

	"github.com/pkordes/recipe-box/internal/domain"
)

// pgTagIndex is the Postgres implementation of TagIndex.
// A tag is one row in tags; its recipe set is the matching rows in
// recipe_tags. The empty-set lifecycle rule is enforced by deleting the tags
// row whenever its last recipe_tags row goes away.
type pgTagIndex struct {
	db db

	// mu serializes the read-modify-write cycles (ApplyDelta, Rename,
	// Delete, Replace) within this process. Cross-process serialization
	// relies on the database's own row locking.
	mu sync.Mutex
}

// NewTagIndex constructs a TagIndex backed by the provided db connection.
func NewTagIndex(db db) TagIndex {
	return &pgTagIndex{db: db}
}

// NamesFor returns the canonical tag names linked to a recipe, sorted.
func (r *pgTagIndex) NamesFor(ctx context.Context, recipeID string) ([]string, error) {
	const q = `
		SELECT tag_name
		FROM recipe_tags
		WHERE recipe_id = @recipe_id
		ORDER BY tag_name`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"recipe_id": recipeID})
	if err != nil {
		return nil, fmt.Errorf("repo.TagIndex.NamesFor: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("repo.TagIndex.NamesFor: scan: %w", err)
		}
		names = append(names, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.TagIndex.NamesFor: rows: %w", err)
	}
	return names, nil
}

// ApplyDelta unlinks removed names, reaping tags left with no recipes, then
// links added names, creating tags on first reference. Removals run before
// additions so a name in both sets survives with its created_at intact. The
// whole delta commits as one transaction; a failure part-way leaves the index
// as it was.
func (r *pgTagIndex) ApplyDelta(ctx context.Context, recipeID string, added, removed []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repo.TagIndex.ApplyDelta: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, name := range domain.NormalizeTagSet(removed) {
		if err := unlink(ctx, tx, recipeID, name); err != nil {
			return fmt.Errorf("repo.TagIndex.ApplyDelta: remove %q: %w", name, err)
		}
	}
	for _, name := range domain.NormalizeTagSet(added) {
		if err := link(ctx, tx, recipeID, name); err != nil {
			return fmt.Errorf("repo.TagIndex.ApplyDelta: add %q: %w", name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("repo.TagIndex.ApplyDelta: commit: %w", err)
	}
	return nil
}

// unlink removes one recipe from one tag and reaps the tag if now empty.
func unlink(ctx context.Context, tx db, recipeID, name string) error {
	const del = `
		DELETE FROM recipe_tags
		WHERE tag_name = @name AND recipe_id = @recipe_id`
	if _, err := tx.Exec(ctx, del, pgx.NamedArgs{"name": name, "recipe_id": recipeID}); err != nil {
		return err
	}

	const reap = `
		DELETE FROM tags t
		WHERE t.name = @name
		  AND NOT EXISTS (SELECT 1 FROM recipe_tags rt WHERE rt.tag_name = t.name)`
	_, err := tx.Exec(ctx, reap, pgx.NamedArgs{"name": name})
	return err
}

// link adds one recipe to one tag, creating the tag if absent. Idempotent.
func link(ctx context.Context, tx db, recipeID, name string) error {
	const upsertTag = `
		INSERT INTO tags (name) VALUES (@name)
		ON CONFLICT (name) DO NOTHING`
	if _, err := tx.Exec(ctx, upsertTag, pgx.NamedArgs{"name": name}); err != nil {
		return err
	}

	const linkQ = `
		INSERT INTO recipe_tags (tag_name, recipe_id)
		VALUES (@name, @recipe_id)
		ON CONFLICT (tag_name, recipe_id) DO NOTHING`
	_, err := tx.Exec(ctx, linkQ, pgx.NamedArgs{"name": name, "recipe_id": recipeID})
	return err
}

// AllTags returns every tag with its recipe count, ordered by name.
func (r *pgTagIndex) AllTags(ctx context.Context) ([]domain.TagCount, error) {
	const q = `
		SELECT t.name, COUNT(rt.recipe_id)
		FROM tags t
		LEFT JOIN recipe_tags rt ON rt.tag_name = t.name
		GROUP BY t.name
		ORDER BY t.name`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.TagIndex.AllTags: %w", err)
	}
	defer rows.Close()

	tags := []domain.TagCount{}
	for rows.Next() {
		var tc domain.TagCount
		if err := rows.Scan(&tc.Name, &tc.RecipeCount); err != nil {
			return nil, fmt.Errorf("repo.TagIndex.AllTags: scan: %w", err)
		}
		tags = append(tags, tc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.TagIndex.AllTags: rows: %w", err)
	}
	return tags, nil
}

// Rename changes a tag's name, only while no recipes reference it.
func (r *pgTagIndex) Rename(ctx context.Context, oldName, newName string) error {
	oldName = domain.NormalizeTagName(oldName)
	newName = domain.NormalizeTagName(newName)
	if newName == "" {
		return fmt.Errorf("repo.TagIndex.Rename: %w: new name is empty", domain.ErrValidation)
	}
	if oldName == newName {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	count, exists, err := r.tagState(ctx, oldName)
	if err != nil {
		return fmt.Errorf("repo.TagIndex.Rename: %w", err)
	}
	if !exists {
		return fmt.Errorf("repo.TagIndex.Rename: %w", domain.ErrNotFound)
	}
	if count > 0 {
		return fmt.Errorf("repo.TagIndex.Rename: %w", domain.ErrTagInUse)
	}

	_, targetExists, err := r.tagState(ctx, newName)
	if err != nil {
		return fmt.Errorf("repo.TagIndex.Rename: %w", err)
	}
	if targetExists {
		return fmt.Errorf("repo.TagIndex.Rename: %q: %w", newName, domain.ErrConflict)
	}

	const q = `UPDATE tags SET name = @new WHERE name = @old`
	if _, err := r.db.Exec(ctx, q, pgx.NamedArgs{"new": newName, "old": oldName}); err != nil {
		return fmt.Errorf("repo.TagIndex.Rename: %w", err)
	}
	return nil
}

// Delete removes a tag outright, only while no recipes reference it.
func (r *pgTagIndex) Delete(ctx context.Context, name string) error {
	name = domain.NormalizeTagName(name)

	r.mu.Lock()
	defer r.mu.Unlock()

	count, exists, err := r.tagState(ctx, name)
	if err != nil {
		return fmt.Errorf("repo.TagIndex.Delete: %w", err)
	}
	if !exists {
		return fmt.Errorf("repo.TagIndex.Delete: %w", domain.ErrNotFound)
	}
	if count > 0 {
		return fmt.Errorf("repo.TagIndex.Delete: %w", domain.ErrTagInUse)
	}

	const q = `DELETE FROM tags WHERE name = @name`
	if _, err := r.db.Exec(ctx, q, pgx.NamedArgs{"name": name}); err != nil {
		return fmt.Errorf("repo.TagIndex.Delete: %w", err)
	}
	return nil
}

// Replace swaps the entire index for the given mapping inside a single
// transaction, so concurrent readers see the old index until commit and a
// failure part-way leaves it untouched. Callers pass canonical names.
func (r *pgTagIndex) Replace(ctx context.Context, index map[string][]string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repo.TagIndex.Replace: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM recipe_tags`); err != nil {
		return fmt.Errorf("repo.TagIndex.Replace: clear links: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM tags`); err != nil {
		return fmt.Errorf("repo.TagIndex.Replace: clear tags: %w", err)
	}

	for name, ids := range index {
		if len(ids) == 0 {
			continue // empty sets must not resurrect tags
		}
		for _, id := range ids {
			if err := link(ctx, tx, id, name); err != nil {
				return fmt.Errorf("repo.TagIndex.Replace: %q: %w", name, err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("repo.TagIndex.Replace: commit: %w", err)
	}
	return nil
}

// tagState reports the recipe count for a tag and whether the tag exists.
func (r *pgTagIndex) tagState(ctx context.Context, name string) (count int, exists bool, err error) {
	const q = `
		SELECT COUNT(rt.recipe_id), COUNT(t.name) > 0
		FROM tags t
		LEFT JOIN recipe_tags rt ON rt.tag_name = t.name
		WHERE t.name = @name`

	err = r.db.QueryRow(ctx, q, pgx.NamedArgs{"name": name}).Scan(&count, &exists)
	return count, exists, err
}
