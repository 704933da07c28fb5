// Package service contains the business logic for the Recipe Box API.
// Services validate inputs, enforce business rules, and orchestrate repo
// calls — in particular the save/delete sequencing that keeps the recipe
// records and the tag index mutually consistent. No storage details live
// here — services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/pkordes/recipe-box/internal/domain"
	"github.com/pkordes/recipe-box/internal/repo"
)

// maxIngredients bounds the ingredient list on a single recipe.
const maxIngredients = 100

// RecipeService implements the recipe mutation lifecycle. Every create,
// update, and delete flows through here so the two stores stay consistent:
// the record write always precedes the index write on create/update, and the
// index cleanup always precedes the record delete on delete. The one accepted
// inconsistency window — record written, index write failed — is logged and
// repaired by RebuildIndex rather than rolled back, because the two backing
// stores share no transaction log.
type RecipeService struct {
	recipes repo.RecipeRepo
	index   repo.TagIndex
	log     *slog.Logger
	now     func() time.Time
}

// NewRecipeService constructs a RecipeService backed by the provided repos.
// A nil logger falls back to slog.Default().
func NewRecipeService(recipes repo.RecipeRepo, index repo.TagIndex, log *slog.Logger) *RecipeService {
	if log == nil {
		log = slog.Default()
	}
	return &RecipeService{recipes: recipes, index: index, log: log, now: time.Now}
}

// Create validates and persists a new recipe, then registers its tags.
// The returned recipe carries the allocated id and timestamps.
// Returns domain.ErrValidation if input violates business rules.
func (s *RecipeService) Create(ctx context.Context, rec domain.Recipe) (domain.Recipe, error) {
	rec = normalizeRecipe(rec)
	if err := validateRecipe(rec); err != nil {
		return domain.Recipe{}, err
	}

	id, err := s.recipes.NextID(ctx)
	if err != nil {
		return domain.Recipe{}, fmt.Errorf("service.RecipeService.Create: %w", err)
	}
	rec.ID = id

	nowUTC := s.now().UTC()
	rec.CreatedAt = nowUTC
	rec.UpdatedAt = nowUTC

	if err := s.recipes.Put(ctx, rec); err != nil {
		return domain.Recipe{}, fmt.Errorf("service.RecipeService.Create: %w", err)
	}

	// The record is durable; an index failure past this point leaves it
	// untagged but intact. Log and let a rebuild repair it.
	if err := s.index.ApplyDelta(ctx, rec.ID, rec.Tags, nil); err != nil {
		s.log.Error("tag index update failed after record write; run rebuild",
			"recipe_id", rec.ID, "error", err)
	}

	return rec, nil
}

// GetByID returns a single recipe by id.
// Returns domain.ErrNotFound if it does not exist.
func (s *RecipeService) GetByID(ctx context.Context, id string) (domain.Recipe, error) {
	rec, err := s.recipes.Get(ctx, id)
	if err != nil {
		return domain.Recipe{}, fmt.Errorf("service.RecipeService.GetByID: %w", err)
	}
	return rec, nil
}

// List returns all recipes sorted by name, case-insensitively.
// Always returns a non-nil slice so callers can safely range over it.
func (s *RecipeService) List(ctx context.Context) ([]domain.Recipe, error) {
	recipes, err := s.recipes.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.RecipeService.List: %w", err)
	}
	if recipes == nil {
		recipes = []domain.Recipe{}
	}
	sortByName(recipes)
	return recipes, nil
}

// FilterByTags returns the recipes carrying the given tags, sorted by name.
// With matchAll set a recipe must carry every tag; otherwise any one
// suffices. An empty tag list returns everything.
func (s *RecipeService) FilterByTags(ctx context.Context, tagNames []string, matchAll bool) ([]domain.Recipe, error) {
	names := domain.NormalizeTagSet(tagNames)
	if len(names) == 0 {
		return s.List(ctx)
	}

	all, err := s.recipes.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.RecipeService.FilterByTags: %w", err)
	}

	matched := []domain.Recipe{}
	for _, rec := range all {
		if matchesTags(rec, names, matchAll) {
			matched = append(matched, rec)
		}
	}
	sortByName(matched)
	return matched, nil
}

// Update validates and fully overwrites an existing recipe, then applies the
// tag delta between the stored and incoming tag sets.
// Returns domain.ErrValidation for invalid input (including a missing id) and
// domain.ErrNotFound if the recipe does not exist.
func (s *RecipeService) Update(ctx context.Context, rec domain.Recipe) (domain.Recipe, error) {
	if strings.TrimSpace(rec.ID) == "" {
		return domain.Recipe{}, fmt.Errorf("%w: id is required", domain.ErrValidation)
	}

	existing, err := s.recipes.Get(ctx, rec.ID)
	if err != nil {
		return domain.Recipe{}, fmt.Errorf("service.RecipeService.Update: %w", err)
	}

	rec = normalizeRecipe(rec)
	if err := validateRecipe(rec); err != nil {
		return domain.Recipe{}, err
	}

	rec.CreatedAt = existing.CreatedAt // immutable after creation
	rec.UpdatedAt = s.now().UTC()

	delta := domain.DiffTags(existing.Tags, rec.Tags)

	if err := s.recipes.Put(ctx, rec); err != nil {
		return domain.Recipe{}, fmt.Errorf("service.RecipeService.Update: %w", err)
	}

	if err := s.index.ApplyDelta(ctx, rec.ID, delta.Added, delta.Removed); err != nil {
		s.log.Error("tag index update failed after record write; run rebuild",
			"recipe_id", rec.ID, "error", err)
	}

	return rec, nil
}

// Delete removes a recipe and its tag associations. Tag cleanup runs first,
// so a failure mid-operation leaves at worst a record with no tag references
// rather than dangling index entries pointing at a vanished record.
// Returns domain.ErrNotFound if the recipe does not exist.
func (s *RecipeService) Delete(ctx context.Context, id string) error {
	existing, err := s.recipes.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("service.RecipeService.Delete: %w", err)
	}

	if err := s.index.ApplyDelta(ctx, id, nil, existing.Tags); err != nil {
		return fmt.Errorf("service.RecipeService.Delete: untag: %w", err)
	}

	if err := s.recipes.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.RecipeService.Delete: %w", err)
	}
	return nil
}

// sortByName orders recipes by display name, case-insensitively, with the id
// as a tiebreaker so the order is stable for equal names.
func sortByName(recipes []domain.Recipe) {
	sort.Slice(recipes, func(i, j int) bool {
		a, b := strings.ToLower(recipes[i].Name), strings.ToLower(recipes[j].Name)
		if a != b {
			return a < b
		}
		return recipes[i].ID < recipes[j].ID
	})
}

// matchesTags reports whether the recipe satisfies the tag filter.
func matchesTags(rec domain.Recipe, names []string, matchAll bool) bool {
	for _, name := range names {
		has := rec.HasTag(name)
		if matchAll && !has {
			return false
		}
		if !matchAll && has {
			return true
		}
	}
	return matchAll
}

// normalizeRecipe canonicalizes an incoming record: fields trimmed,
// ingredient amounts normalized, descriptionless ingredients dropped, and the
// tag list reduced to a canonical set.
func normalizeRecipe(rec domain.Recipe) domain.Recipe {
	rec.Name = strings.TrimSpace(rec.Name)
	rec.Instructions = strings.TrimSpace(rec.Instructions)
	rec.Notes = strings.TrimSpace(rec.Notes)
	rec.Tags = domain.NormalizeTagSet(rec.Tags)

	ingredients := make([]domain.Ingredient, 0, len(rec.Ingredients))
	for _, ing := range rec.Ingredients {
		ing.Description = strings.TrimSpace(ing.Description)
		if ing.Description == "" {
			continue
		}
		ing.Amount = domain.NormalizeAmount(ing.Amount)
		ing.Unit = strings.TrimSpace(ing.Unit)
		ingredients = append(ingredients, ing)
	}
	rec.Ingredients = ingredients
	return rec
}

// validateRecipe enforces business rules common to Create and Update.
// Expects normalizeRecipe to have run first.
//   - Name must be non-empty.
//   - At least one ingredient with a description is required.
//   - Ingredient amounts must satisfy the amount grammar.
//   - Tag names must not exceed MaxTagLength.
func validateRecipe(rec domain.Recipe) error {
	if rec.Name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if len(rec.Ingredients) == 0 {
		return fmt.Errorf("%w: at least one ingredient with a description is required", domain.ErrValidation)
	}
	if len(rec.Ingredients) > maxIngredients {
		return fmt.Errorf("%w: at most %d ingredients allowed", domain.ErrValidation, maxIngredients)
	}
	for i, ing := range rec.Ingredients {
		if !domain.ValidateAmount(ing.Amount) {
			return fmt.Errorf("%w: ingredient %d: invalid amount %q (use numbers or fractions, e.g. 1/2, 2.5)",
				domain.ErrValidation, i+1, ing.Amount)
		}
	}
	for _, tag := range rec.Tags {
		if len(tag) > domain.MaxTagLength {
			return fmt.Errorf("%w: tag %q exceeds %d characters", domain.ErrValidation, tag, domain.MaxTagLength)
		}
	}
	return nil
}
