package service

import (
	"context"
	"fmt"

	"github.com/pkordes/recipe-box/internal/domain"
	"github.com/pkordes/recipe-box/internal/repo"
)

// MaintenanceService holds the repair and audit passes for the tag index.
// The recipe records are the source of truth: the index is always
// re-derivable by scanning every record, which is what makes the
// no-rollback design of the save path sound.
type MaintenanceService struct {
	recipes repo.RecipeRepo
	index   repo.TagIndex
}

// NewMaintenanceService constructs a MaintenanceService backed by the
// provided repos.
func NewMaintenanceService(recipes repo.RecipeRepo, index repo.TagIndex) *MaintenanceService {
	return &MaintenanceService{recipes: recipes, index: index}
}

// RebuildIndex recomputes the tag index from every stored recipe and
// atomically replaces the persisted index with the result. Run after a
// detected inconsistency or on demand.
func (s *MaintenanceService) RebuildIndex(ctx context.Context) error {
	recipes, err := s.recipes.List(ctx)
	if err != nil {
		return fmt.Errorf("service.MaintenanceService.RebuildIndex: %w", err)
	}

	rebuilt := map[string][]string{}
	for _, rec := range recipes {
		for _, name := range domain.NormalizeTagSet(rec.Tags) {
			rebuilt[name] = append(rebuilt[name], rec.ID)
		}
	}

	if err := s.index.Replace(ctx, rebuilt); err != nil {
		return fmt.Errorf("service.MaintenanceService.RebuildIndex: %w", err)
	}
	return nil
}

// Audit compares the stored recipes against the tag index and reports every
// divergence. An empty result means the two are consistent. Audit never
// mutates anything; pair it with RebuildIndex to repair.
func (s *MaintenanceService) Audit(ctx context.Context) ([]domain.Inconsistency, error) {
	recipes, err := s.recipes.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.MaintenanceService.Audit: %w", err)
	}

	findings := []domain.Inconsistency{}
	expected := map[string]int{}

	// Per-recipe: the index's view of a recipe must equal the record's tags.
	for _, rec := range recipes {
		tags := domain.NormalizeTagSet(rec.Tags)
		for _, name := range tags {
			expected[name]++
		}

		indexed, err := s.index.NamesFor(ctx, rec.ID)
		if err != nil {
			return nil, fmt.Errorf("service.MaintenanceService.Audit: %w", err)
		}
		delta := domain.DiffTags(indexed, tags)
		for _, name := range delta.Added {
			findings = append(findings, domain.Inconsistency{
				Tag: name, RecipeID: rec.ID, Detail: "recipe tag absent from index",
			})
		}
		for _, name := range delta.Removed {
			findings = append(findings, domain.Inconsistency{
				Tag: name, RecipeID: rec.ID, Detail: "index references tag the recipe no longer has",
			})
		}
	}

	// Per-tag: counts in the index must match counts derived from records.
	// A mismatch with no per-recipe finding means the index references a
	// recipe id that no longer exists.
	tags, err := s.index.AllTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.MaintenanceService.Audit: %w", err)
	}
	for _, tc := range tags {
		if want := expected[tc.Name]; tc.RecipeCount != want {
			findings = append(findings, domain.Inconsistency{
				Tag:    tc.Name,
				Detail: fmt.Sprintf("index count %d, records say %d", tc.RecipeCount, want),
			})
		}
		delete(expected, tc.Name)
	}
	for name := range expected {
		findings = append(findings, domain.Inconsistency{
			Tag: name, Detail: "tag missing from index entirely",
		})
	}

	return findings, nil
}
