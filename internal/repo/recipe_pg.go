package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jackc/pgx/v5"

	"github.com/pkordes/recipe-box/internal/domain"
)

// pgRecipeRepo is the Postgres implementation of RecipeRepo.
// Ingredients are stored as a JSONB column; tags live as a text[] on the row
// so the recipe record remains the authoritative source the tag index can be
// rebuilt from.
type pgRecipeRepo struct {
	db db

	// mu guards lastID so NextID stays monotone within this process even
	// when two creates race before either row is committed.
	mu     sync.Mutex
	lastID int
}

// NewRecipeRepo constructs a RecipeRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewRecipeRepo(db db) RecipeRepo {
	return &pgRecipeRepo{db: db}
}

// NextID allocates the next "recipe_NNN" id from the maximum numeric suffix
// present in the recipes table.
func (r *pgRecipeRepo) NextID(ctx context.Context) (string, error) {
	const q = `
		SELECT COALESCE(MAX(substring(id FROM 8)::int), 0)
		FROM recipes
		WHERE id ~ '^recipe_[0-9]+$'`

	var maxSuffix int
	if err := r.db.QueryRow(ctx, q).Scan(&maxSuffix); err != nil {
		return "", fmt.Errorf("repo.RecipeRepo.NextID: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	next := maxSuffix + 1
	if next <= r.lastID {
		next = r.lastID + 1
	}
	r.lastID = next
	return fmt.Sprintf("recipe_%03d", next), nil
}

// Put inserts or fully overwrites the record under recipe.ID.
func (r *pgRecipeRepo) Put(ctx context.Context, recipe domain.Recipe) error {
	ingredients, err := json.Marshal(recipe.Ingredients)
	if err != nil {
		return fmt.Errorf("repo.RecipeRepo.Put: encode ingredients: %w", err)
	}

	const q = `
		INSERT INTO recipes (id, name, ingredients, instructions, notes, tags, created_at, updated_at)
		VALUES (@id, @name, @ingredients, @instructions, @notes, @tags, @created_at, @updated_at)
		ON CONFLICT (id) DO UPDATE SET
			name         = EXCLUDED.name,
			ingredients  = EXCLUDED.ingredients,
			instructions = EXCLUDED.instructions,
			notes        = EXCLUDED.notes,
			tags         = EXCLUDED.tags,
			updated_at   = EXCLUDED.updated_at`

	args := pgx.NamedArgs{
		"id":           recipe.ID,
		"name":         recipe.Name,
		"ingredients":  ingredients,
		"instructions": recipe.Instructions,
		"notes":        recipe.Notes,
		"tags":         recipe.Tags,
		"created_at":   recipe.CreatedAt,
		"updated_at":   recipe.UpdatedAt,
	}

	if _, err := r.db.Exec(ctx, q, args); err != nil {
		return fmt.Errorf("repo.RecipeRepo.Put: %w", err)
	}
	return nil
}

// Get retrieves a recipe by primary key.
func (r *pgRecipeRepo) Get(ctx context.Context, id string) (domain.Recipe, error) {
	const q = `
		SELECT id, name, ingredients, instructions, notes, tags, created_at, updated_at
		FROM recipes
		WHERE id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanRecipe(row)
	if err != nil {
		return domain.Recipe{}, fmt.Errorf("repo.RecipeRepo.Get: %w", err)
	}
	return result, nil
}

// List returns all recipes. Rows whose ingredients column fails to decode are
// skipped and logged rather than failing the whole listing.
func (r *pgRecipeRepo) List(ctx context.Context) ([]domain.Recipe, error) {
	const q = `
		SELECT id, name, ingredients, instructions, notes, tags, created_at, updated_at
		FROM recipes
		ORDER BY id`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.RecipeRepo.List: %w", err)
	}
	defer rows.Close()

	recipes := []domain.Recipe{}
	for rows.Next() {
		rec, err := scanRecipe(rows)
		if err != nil {
			slog.Warn("skipping unreadable recipe row", "error", err)
			continue
		}
		recipes = append(recipes, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.RecipeRepo.List: rows: %w", err)
	}
	return recipes, nil
}

// Delete removes a recipe by id.
func (r *pgRecipeRepo) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM recipes WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.RecipeRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.RecipeRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// scanRecipe maps a single database row into a domain.Recipe.
func scanRecipe(s scanner) (domain.Recipe, error) {
	var (
		rec         domain.Recipe
		ingredients []byte
	)
	err := s.Scan(&rec.ID, &rec.Name, &ingredients, &rec.Instructions, &rec.Notes,
		&rec.Tags, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Recipe{}, domain.ErrNotFound
		}
		return domain.Recipe{}, err
	}
	if err := json.Unmarshal(ingredients, &rec.Ingredients); err != nil {
		return domain.Recipe{}, fmt.Errorf("decode ingredients for %s: %w", rec.ID, err)
	}
	if rec.Tags == nil {
		rec.Tags = []string{}
	}
	return rec, nil
}

// scanner is the single-row scan interface shared by pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}
