package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/recipe-box/internal/domain"
	"github.com/pkordes/recipe-box/internal/repo"
	"github.com/pkordes/recipe-box/internal/service"
)

// ---- mock RecipeRepo -------------------------------------------------------

// mockRecipeRepo is a test double for repo.RecipeRepo.
// Set only the method fields your test needs.
type mockRecipeRepo struct {
	nextID  func(ctx context.Context) (string, error)
	get     func(ctx context.Context, id string) (domain.Recipe, error)
	list    func(ctx context.Context) ([]domain.Recipe, error)
	put     func(ctx context.Context, rec domain.Recipe) error
	deleteF func(ctx context.Context, id string) error
}

func (m *mockRecipeRepo) NextID(ctx context.Context) (string, error) { return m.nextID(ctx) }
func (m *mockRecipeRepo) Get(ctx context.Context, id string) (domain.Recipe, error) {
	return m.get(ctx, id)
}
func (m *mockRecipeRepo) List(ctx context.Context) ([]domain.Recipe, error) { return m.list(ctx) }
func (m *mockRecipeRepo) Put(ctx context.Context, rec domain.Recipe) error  { return m.put(ctx, rec) }
func (m *mockRecipeRepo) Delete(ctx context.Context, id string) error       { return m.deleteF(ctx, id) }

// compile-time check
var _ repo.RecipeRepo = (*mockRecipeRepo)(nil)

// ---- mock TagIndex ---------------------------------------------------------

type mockTagIndex struct {
	namesFor   func(ctx context.Context, recipeID string) ([]string, error)
	applyDelta func(ctx context.Context, recipeID string, added, removed []string) error
	allTags    func(ctx context.Context) ([]domain.TagCount, error)
	rename     func(ctx context.Context, oldName, newName string) error
	deleteF    func(ctx context.Context, name string) error
	replace    func(ctx context.Context, index map[string][]string) error
}

func (m *mockTagIndex) NamesFor(ctx context.Context, recipeID string) ([]string, error) {
	return m.namesFor(ctx, recipeID)
}
func (m *mockTagIndex) ApplyDelta(ctx context.Context, recipeID string, added, removed []string) error {
	return m.applyDelta(ctx, recipeID, added, removed)
}
func (m *mockTagIndex) AllTags(ctx context.Context) ([]domain.TagCount, error) {
	return m.allTags(ctx)
}
func (m *mockTagIndex) Rename(ctx context.Context, oldName, newName string) error {
	return m.rename(ctx, oldName, newName)
}
func (m *mockTagIndex) Delete(ctx context.Context, name string) error { return m.deleteF(ctx, name) }
func (m *mockTagIndex) Replace(ctx context.Context, index map[string][]string) error {
	return m.replace(ctx, index)
}

var _ repo.TagIndex = (*mockTagIndex)(nil)

// ---- helpers ---------------------------------------------------------------

func validInput() domain.Recipe {
	return domain.Recipe{
		Name: "Soup",
		Ingredients: []domain.Ingredient{
			{Description: "water"},
		},
		Tags: []string{"Dinner", "Easy"},
	}
}

// ---- Create ----------------------------------------------------------------

func TestRecipeService_Create_WritesRecordThenIndex(t *testing.T) {
	var calls []string
	var saved domain.Recipe
	var deltaAdded []string

	recipes := &mockRecipeRepo{
		nextID: func(context.Context) (string, error) { return "recipe_001", nil },
		put: func(_ context.Context, rec domain.Recipe) error {
			calls = append(calls, "put")
			saved = rec
			return nil
		},
	}
	index := &mockTagIndex{
		applyDelta: func(_ context.Context, recipeID string, added, removed []string) error {
			calls = append(calls, "applyDelta")
			assert.Equal(t, "recipe_001", recipeID)
			deltaAdded = added
			assert.Empty(t, removed)
			return nil
		},
	}
	svc := service.NewRecipeService(recipes, index, nil)

	got, err := svc.Create(context.Background(), validInput())

	require.NoError(t, err)
	assert.Equal(t, []string{"put", "applyDelta"}, calls, "record write must precede index write")
	assert.Equal(t, "recipe_001", got.ID)
	assert.Equal(t, []string{"DINNER", "EASY"}, saved.Tags, "tags stored in canonical case")
	assert.Equal(t, []string{"DINNER", "EASY"}, deltaAdded)
	assert.False(t, got.CreatedAt.IsZero())
	assert.Equal(t, got.CreatedAt, got.UpdatedAt)
}

func TestRecipeService_Create_IndexFailureIsRecoverable(t *testing.T) {
	recipes := &mockRecipeRepo{
		nextID: func(context.Context) (string, error) { return "recipe_001", nil },
		put:    func(context.Context, domain.Recipe) error { return nil },
	}
	index := &mockTagIndex{
		applyDelta: func(context.Context, string, []string, []string) error {
			return errors.New("disk full")
		},
	}
	svc := service.NewRecipeService(recipes, index, nil)

	got, err := svc.Create(context.Background(), validInput())

	require.NoError(t, err, "an index failure after a durable record write must not fail the create")
	assert.Equal(t, "recipe_001", got.ID)
}

func TestRecipeService_Create_PutFailureAborts(t *testing.T) {
	indexTouched := false
	recipes := &mockRecipeRepo{
		nextID: func(context.Context) (string, error) { return "recipe_001", nil },
		put:    func(context.Context, domain.Recipe) error { return errors.New("disk full") },
	}
	index := &mockTagIndex{
		applyDelta: func(context.Context, string, []string, []string) error {
			indexTouched = true
			return nil
		},
	}
	svc := service.NewRecipeService(recipes, index, nil)

	_, err := svc.Create(context.Background(), validInput())

	require.Error(t, err)
	assert.False(t, indexTouched, "the index must not be touched when the record write failed")
}

func TestRecipeService_Create_AllocationFailureAborts(t *testing.T) {
	recipes := &mockRecipeRepo{
		nextID: func(context.Context) (string, error) { return "", errors.New("unreadable dir") },
	}
	svc := service.NewRecipeService(recipes, &mockTagIndex{}, nil)

	_, err := svc.Create(context.Background(), validInput())

	assert.Error(t, err, "an id must never be guessed when allocation fails")
}

func TestRecipeService_Create_Validation(t *testing.T) {
	svc := service.NewRecipeService(&mockRecipeRepo{}, &mockTagIndex{}, nil)
	ctx := context.Background()

	cases := map[string]domain.Recipe{
		"missing name": {
			Ingredients: []domain.Ingredient{{Description: "water"}},
		},
		"no ingredients": {
			Name: "Soup",
		},
		"only descriptionless ingredients": {
			Name:        "Soup",
			Ingredients: []domain.Ingredient{{Amount: "1", Unit: "cup"}},
		},
		"bad amount": {
			Name:        "Soup",
			Ingredients: []domain.Ingredient{{Amount: "abc", Description: "water"}},
		},
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Create(ctx, input)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestRecipeService_Create_NormalizesAmounts(t *testing.T) {
	var saved domain.Recipe
	recipes := &mockRecipeRepo{
		nextID: func(context.Context) (string, error) { return "recipe_001", nil },
		put: func(_ context.Context, rec domain.Recipe) error {
			saved = rec
			return nil
		},
	}
	index := &mockTagIndex{
		applyDelta: func(context.Context, string, []string, []string) error { return nil },
	}
	svc := service.NewRecipeService(recipes, index, nil)

	input := validInput()
	input.Ingredients = []domain.Ingredient{{Amount: "1½", Unit: " cups ", Description: " flour "}}

	_, err := svc.Create(context.Background(), input)

	require.NoError(t, err)
	require.Len(t, saved.Ingredients, 1)
	assert.Equal(t, "1 1/2", saved.Ingredients[0].Amount)
	assert.Equal(t, "cups", saved.Ingredients[0].Unit)
	assert.Equal(t, "flour", saved.Ingredients[0].Description)
}

// ---- Update ----------------------------------------------------------------

func TestRecipeService_Update_AppliesTagDelta(t *testing.T) {
	existing := validInput()
	existing.ID = "recipe_001"
	existing.Tags = []string{"A", "B"}

	var gotAdded, gotRemoved []string
	recipes := &mockRecipeRepo{
		get: func(_ context.Context, id string) (domain.Recipe, error) {
			assert.Equal(t, "recipe_001", id)
			return existing, nil
		},
		put: func(context.Context, domain.Recipe) error { return nil },
	}
	index := &mockTagIndex{
		applyDelta: func(_ context.Context, _ string, added, removed []string) error {
			gotAdded, gotRemoved = added, removed
			return nil
		},
	}
	svc := service.NewRecipeService(recipes, index, nil)

	incoming := validInput()
	incoming.ID = "recipe_001"
	incoming.Tags = []string{"b", "c"}

	_, err := svc.Update(context.Background(), incoming)

	require.NoError(t, err)
	assert.Equal(t, []string{"C"}, gotAdded)
	assert.Equal(t, []string{"A"}, gotRemoved)
}

func TestRecipeService_Update_PreservesCreatedAt(t *testing.T) {
	existing := validInput()
	existing.ID = "recipe_001"
	created := existing.CreatedAt

	var saved domain.Recipe
	recipes := &mockRecipeRepo{
		get: func(context.Context, string) (domain.Recipe, error) { return existing, nil },
		put: func(_ context.Context, rec domain.Recipe) error {
			saved = rec
			return nil
		},
	}
	index := &mockTagIndex{
		applyDelta: func(context.Context, string, []string, []string) error { return nil },
	}
	svc := service.NewRecipeService(recipes, index, nil)

	incoming := validInput()
	incoming.ID = "recipe_001"

	got, err := svc.Update(context.Background(), incoming)

	require.NoError(t, err)
	assert.Equal(t, created, saved.CreatedAt)
	assert.False(t, got.UpdatedAt.IsZero())
}

func TestRecipeService_Update_MissingID(t *testing.T) {
	svc := service.NewRecipeService(&mockRecipeRepo{}, &mockTagIndex{}, nil)

	_, err := svc.Update(context.Background(), validInput())

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestRecipeService_Update_NotFound(t *testing.T) {
	recipes := &mockRecipeRepo{
		get: func(context.Context, string) (domain.Recipe, error) {
			return domain.Recipe{}, domain.ErrNotFound
		},
	}
	svc := service.NewRecipeService(recipes, &mockTagIndex{}, nil)

	incoming := validInput()
	incoming.ID = "recipe_999"

	_, err := svc.Update(context.Background(), incoming)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ---- Delete ----------------------------------------------------------------

func TestRecipeService_Delete_UntagsBeforeRemovingRecord(t *testing.T) {
	existing := validInput()
	existing.ID = "recipe_001"
	existing.Tags = []string{"DINNER"}

	var calls []string
	recipes := &mockRecipeRepo{
		get: func(context.Context, string) (domain.Recipe, error) { return existing, nil },
		deleteF: func(_ context.Context, id string) error {
			calls = append(calls, "delete")
			return nil
		},
	}
	index := &mockTagIndex{
		applyDelta: func(_ context.Context, recipeID string, added, removed []string) error {
			calls = append(calls, "applyDelta")
			assert.Empty(t, added)
			assert.Equal(t, []string{"DINNER"}, removed)
			return nil
		},
	}
	svc := service.NewRecipeService(recipes, index, nil)

	require.NoError(t, svc.Delete(context.Background(), "recipe_001"))
	assert.Equal(t, []string{"applyDelta", "delete"}, calls, "tag cleanup must precede record deletion")
}

func TestRecipeService_Delete_UntagFailureAborts(t *testing.T) {
	recordDeleted := false
	recipes := &mockRecipeRepo{
		get: func(context.Context, string) (domain.Recipe, error) {
			rec := validInput()
			rec.ID = "recipe_001"
			return rec, nil
		},
		deleteF: func(context.Context, string) error {
			recordDeleted = true
			return nil
		},
	}
	index := &mockTagIndex{
		applyDelta: func(context.Context, string, []string, []string) error {
			return errors.New("disk full")
		},
	}
	svc := service.NewRecipeService(recipes, index, nil)

	err := svc.Delete(context.Background(), "recipe_001")

	require.Error(t, err)
	assert.False(t, recordDeleted, "the record must survive when untagging fails")
}

func TestRecipeService_Delete_NotFoundLeavesIndexUntouched(t *testing.T) {
	indexTouched := false
	recipes := &mockRecipeRepo{
		get: func(context.Context, string) (domain.Recipe, error) {
			return domain.Recipe{}, domain.ErrNotFound
		},
	}
	index := &mockTagIndex{
		applyDelta: func(context.Context, string, []string, []string) error {
			indexTouched = true
			return nil
		},
	}
	svc := service.NewRecipeService(recipes, index, nil)

	err := svc.Delete(context.Background(), "recipe_999")

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.False(t, indexTouched)
}

// ---- List / FilterByTags ---------------------------------------------------

func TestRecipeService_List_SortsByNameCaseInsensitively(t *testing.T) {
	recipes := &mockRecipeRepo{
		list: func(context.Context) ([]domain.Recipe, error) {
			return []domain.Recipe{
				{ID: "recipe_002", Name: "banana bread"},
				{ID: "recipe_001", Name: "Apple Pie"},
				{ID: "recipe_003", Name: "Carbonara"},
			}, nil
		},
	}
	svc := service.NewRecipeService(recipes, &mockTagIndex{}, nil)

	got, err := svc.List(context.Background())

	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Apple Pie", got[0].Name)
	assert.Equal(t, "banana bread", got[1].Name)
	assert.Equal(t, "Carbonara", got[2].Name)
}

func TestRecipeService_FilterByTags(t *testing.T) {
	all := []domain.Recipe{
		{ID: "recipe_001", Name: "Soup", Tags: []string{"DINNER", "EASY"}},
		{ID: "recipe_002", Name: "Cake", Tags: []string{"DESSERT"}},
		{ID: "recipe_003", Name: "Stew", Tags: []string{"DINNER"}},
	}
	recipes := &mockRecipeRepo{
		list: func(context.Context) ([]domain.Recipe, error) { return all, nil },
	}
	svc := service.NewRecipeService(recipes, &mockTagIndex{}, nil)
	ctx := context.Background()

	anyMatch, err := svc.FilterByTags(ctx, []string{"dinner", "dessert"}, false)
	require.NoError(t, err)
	assert.Len(t, anyMatch, 3)

	allMatch, err := svc.FilterByTags(ctx, []string{"dinner", "easy"}, true)
	require.NoError(t, err)
	require.Len(t, allMatch, 1)
	assert.Equal(t, "recipe_001", allMatch[0].ID)

	everything, err := svc.FilterByTags(ctx, nil, false)
	require.NoError(t, err)
	assert.Len(t, everything, 3)
}
