package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/recipe-box/internal/domain"
	"github.com/pkordes/recipe-box/internal/filestore"
	"github.com/pkordes/recipe-box/internal/repo"
	"github.com/pkordes/recipe-box/internal/service"
)

func TestMaintenanceService_RebuildIndex_GroupsByTag(t *testing.T) {
	recipes := &mockRecipeRepo{
		list: func(context.Context) ([]domain.Recipe, error) {
			return []domain.Recipe{
				{ID: "recipe_001", Name: "Soup", Tags: []string{"DINNER", "EASY"}},
				{ID: "recipe_002", Name: "Stew", Tags: []string{"DINNER"}},
				{ID: "recipe_003", Name: "Toast"},
			}, nil
		},
	}
	var replaced map[string][]string
	index := &mockTagIndex{
		replace: func(_ context.Context, idx map[string][]string) error {
			replaced = idx
			return nil
		},
	}
	svc := service.NewMaintenanceService(recipes, index)

	require.NoError(t, svc.RebuildIndex(context.Background()))
	assert.Equal(t, map[string][]string{
		"DINNER": {"recipe_001", "recipe_002"},
		"EASY":   {"recipe_001"},
	}, replaced)
}

func TestMaintenanceService_Audit_Clean(t *testing.T) {
	recipes := &mockRecipeRepo{
		list: func(context.Context) ([]domain.Recipe, error) {
			return []domain.Recipe{
				{ID: "recipe_001", Name: "Soup", Tags: []string{"DINNER"}},
			}, nil
		},
	}
	index := &mockTagIndex{
		namesFor: func(context.Context, string) ([]string, error) {
			return []string{"DINNER"}, nil
		},
		allTags: func(context.Context) ([]domain.TagCount, error) {
			return []domain.TagCount{{Name: "DINNER", RecipeCount: 1}}, nil
		},
	}
	svc := service.NewMaintenanceService(recipes, index)

	findings, err := svc.Audit(context.Background())

	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestMaintenanceService_Audit_ReportsDivergence(t *testing.T) {
	recipes := &mockRecipeRepo{
		list: func(context.Context) ([]domain.Recipe, error) {
			return []domain.Recipe{
				{ID: "recipe_001", Name: "Soup", Tags: []string{"DINNER", "EASY"}},
			}, nil
		},
	}
	// The index missed EASY entirely and still references a stale VEGAN tag.
	index := &mockTagIndex{
		namesFor: func(context.Context, string) ([]string, error) {
			return []string{"DINNER", "VEGAN"}, nil
		},
		allTags: func(context.Context) ([]domain.TagCount, error) {
			return []domain.TagCount{
				{Name: "DINNER", RecipeCount: 1},
				{Name: "VEGAN", RecipeCount: 1},
			}, nil
		},
	}
	svc := service.NewMaintenanceService(recipes, index)

	findings, err := svc.Audit(context.Background())

	require.NoError(t, err)

	byDetail := map[string][]string{}
	for _, f := range findings {
		byDetail[f.Detail] = append(byDetail[f.Detail], f.Tag)
	}
	assert.Contains(t, byDetail["recipe tag absent from index"], "EASY")
	assert.Contains(t, byDetail["index references tag the recipe no longer has"], "VEGAN")
	assert.Contains(t, byDetail["index count 1, records say 0"], "VEGAN")
	assert.Contains(t, byDetail["tag missing from index entirely"], "EASY")
}

// ---- file-backed integration -----------------------------------------------

// newFileBackend wires the real file-backed repos in a temp dir.
func newFileBackend(t *testing.T) (repo.RecipeRepo, repo.TagIndex) {
	t.Helper()
	dir := t.TempDir()
	recipes, err := filestore.NewRecipeRepo(dir)
	require.NoError(t, err)
	index, err := filestore.NewTagIndex(dir)
	require.NoError(t, err)
	return recipes, index
}

// TestRebuildIndex_RepairsMissedWrite simulates a crash between the record
// write and the index write: the record is durable but untagged in the index.
// The audit must flag it and a rebuild must bring the index back in line.
func TestRebuildIndex_RepairsMissedWrite(t *testing.T) {
	recipes, index := newFileBackend(t)
	ctx := context.Background()

	svc := service.NewRecipeService(recipes, index, nil)
	_, err := svc.Create(ctx, domain.Recipe{
		Name:        "Soup",
		Ingredients: []domain.Ingredient{{Description: "water"}},
		Tags:        []string{"dinner"},
	})
	require.NoError(t, err)

	// Write a second record directly, bypassing the index.
	orphan := domain.Recipe{
		ID:          "recipe_002",
		Name:        "Stew",
		Ingredients: []domain.Ingredient{{Description: "beef"}},
		Tags:        []string{"DINNER", "SLOW"},
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	require.NoError(t, recipes.Put(ctx, orphan))

	maint := service.NewMaintenanceService(recipes, index)

	findings, err := maint.Audit(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, findings, "the orphaned record must be flagged")

	require.NoError(t, maint.RebuildIndex(ctx))

	findings, err = maint.Audit(ctx)
	require.NoError(t, err)
	assert.Empty(t, findings, "a rebuild must leave the index consistent")

	tags, err := index.AllTags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.TagCount{
		{Name: "DINNER", RecipeCount: 2},
		{Name: "SLOW", RecipeCount: 1},
	}, tags)
}

// TestRecipeLifecycle_FileBackend runs the whole create/update/delete flow
// against the real file-backed stores and checks the tag index tracks it.
func TestRecipeLifecycle_FileBackend(t *testing.T) {
	recipes, index := newFileBackend(t)
	ctx := context.Background()

	svc := service.NewRecipeService(recipes, index, nil)

	created, err := svc.Create(ctx, domain.Recipe{
		Name:         "Soup",
		Ingredients:  []domain.Ingredient{{Amount: "2", Unit: "cups", Description: "water"}},
		Instructions: "Boil.",
		Tags:         []string{"dinner", "Easy"},
	})
	require.NoError(t, err)
	assert.Equal(t, "recipe_001", created.ID)

	tags, err := index.AllTags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.TagCount{
		{Name: "DINNER", RecipeCount: 1},
		{Name: "EASY", RecipeCount: 1},
	}, tags)

	created.Tags = []string{"dinner", "soup"}
	updated, err := svc.Update(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, []string{"DINNER", "SOUP"}, updated.Tags)

	tags, err = index.AllTags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.TagCount{
		{Name: "DINNER", RecipeCount: 1},
		{Name: "SOUP", RecipeCount: 1},
	}, tags, "EASY died with its last reference")

	require.NoError(t, svc.Delete(ctx, created.ID))

	tags, err = index.AllTags(ctx)
	require.NoError(t, err)
	assert.Empty(t, tags)

	_, err = svc.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
