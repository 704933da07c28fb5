package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/recipe-box/internal/domain"
	"github.com/pkordes/recipe-box/internal/service"
)

func TestExportService_Export(t *testing.T) {
	recipes := &mockRecipeRepo{
		list: func(context.Context) ([]domain.Recipe, error) {
			return []domain.Recipe{
				{ID: "recipe_002", Name: "Stew"},
				{ID: "recipe_001", Name: "Soup"},
			}, nil
		},
	}
	index := &mockTagIndex{
		allTags: func(context.Context) ([]domain.TagCount, error) {
			return []domain.TagCount{{Name: "DINNER", RecipeCount: 2}}, nil
		},
	}
	svc := service.NewExportService(recipes, index)

	got, err := svc.Export(context.Background())

	require.NoError(t, err)
	require.Len(t, got.Recipes, 2)
	assert.Equal(t, "Soup", got.Recipes[0].Name, "recipes come out sorted by name")
	assert.Equal(t, []domain.TagCount{{Name: "DINNER", RecipeCount: 2}}, got.Tags)
}

func TestExportService_Export_EmptyStore(t *testing.T) {
	recipes := &mockRecipeRepo{
		list: func(context.Context) ([]domain.Recipe, error) { return nil, nil },
	}
	index := &mockTagIndex{
		allTags: func(context.Context) ([]domain.TagCount, error) { return nil, nil },
	}
	svc := service.NewExportService(recipes, index)

	got, err := svc.Export(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, got.Recipes)
	assert.NotNil(t, got.Tags)
}

func TestExportService_Export_ListFailure(t *testing.T) {
	recipes := &mockRecipeRepo{
		list: func(context.Context) ([]domain.Recipe, error) {
			return nil, errors.New("unreadable dir")
		},
	}
	svc := service.NewExportService(recipes, &mockTagIndex{})

	_, err := svc.Export(context.Background())

	assert.Error(t, err)
}
