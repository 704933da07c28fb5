package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkordes/recipe-box/internal/domain"
	"github.com/pkordes/recipe-box/internal/repo"
)

// TagService implements the direct tag operations: listing the index and the
// rename/delete of unreferenced tags. Tags attached to recipes are protected —
// they can only change by editing the recipes that carry them.
type TagService struct {
	index repo.TagIndex
}

// NewTagService constructs a TagService backed by the provided TagIndex.
func NewTagService(index repo.TagIndex) *TagService {
	return &TagService{index: index}
}

// List returns every tag with its recipe count, ordered by name.
// Always returns a non-nil slice so callers can safely range over it.
func (s *TagService) List(ctx context.Context) ([]domain.TagCount, error) {
	tags, err := s.index.AllTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.TagService.List: %w", err)
	}
	if tags == nil {
		tags = []domain.TagCount{}
	}
	return tags, nil
}

// Rename changes a tag's name. Returns domain.ErrValidation for an empty new
// name, domain.ErrNotFound if the tag is absent, domain.ErrTagInUse if it
// still has recipes, and domain.ErrConflict if the new name is taken.
func (s *TagService) Rename(ctx context.Context, oldName, newName string) error {
	if strings.TrimSpace(newName) == "" {
		return fmt.Errorf("%w: tag name is required", domain.ErrValidation)
	}
	if len(domain.NormalizeTagName(newName)) > domain.MaxTagLength {
		return fmt.Errorf("%w: tag name exceeds %d characters", domain.ErrValidation, domain.MaxTagLength)
	}
	if err := s.index.Rename(ctx, oldName, newName); err != nil {
		return fmt.Errorf("service.TagService.Rename: %w", err)
	}
	return nil
}

// Delete removes an unreferenced tag. Returns domain.ErrNotFound if absent
// and domain.ErrTagInUse if recipes still carry it.
func (s *TagService) Delete(ctx context.Context, name string) error {
	if err := s.index.Delete(ctx, name); err != nil {
		return fmt.Errorf("service.TagService.Delete: %w", err)
	}
	return nil
}
