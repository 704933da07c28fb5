package service

import (
	"context"
	"fmt"

	"github.com/pkordes/recipe-box/internal/domain"
	"github.com/pkordes/recipe-box/internal/repo"
)

// ExportService assembles a full dump of the store: every recipe plus the
// tag index summary. The dump is also the unit of transfer when migrating
// between the file store and the Postgres backend.
type ExportService struct {
	recipes repo.RecipeRepo
	index   repo.TagIndex
}

// NewExportService constructs an ExportService backed by the provided repos.
func NewExportService(recipes repo.RecipeRepo, index repo.TagIndex) *ExportService {
	return &ExportService{recipes: recipes, index: index}
}

// Export returns all recipes (sorted by name) and all tags with counts.
func (s *ExportService) Export(ctx context.Context) (domain.Export, error) {
	recipes, err := s.recipes.List(ctx)
	if err != nil {
		return domain.Export{}, fmt.Errorf("service.ExportService.Export: %w", err)
	}
	if recipes == nil {
		recipes = []domain.Recipe{}
	}
	sortByName(recipes)

	tags, err := s.index.AllTags(ctx)
	if err != nil {
		return domain.Export{}, fmt.Errorf("service.ExportService.Export: %w", err)
	}
	if tags == nil {
		tags = []domain.TagCount{}
	}

	return domain.Export{Recipes: recipes, Tags: tags}, nil
}
