package filestore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/pkordes/recipe-box/internal/domain"
	"github.com/pkordes/recipe-box/internal/repo"
)

// fileRecipeRepo is the JSON-file implementation of repo.RecipeRepo.
// Each recipe lives in its own <dir>/<id>.json file; per-id files are
// independent, so recipes may be written concurrently without a shared lock.
type fileRecipeRepo struct {
	dir string

	// mu guards lastID so NextID stays monotone within this process even
	// when two creates race before either file lands on disk.
	mu     sync.Mutex
	lastID int
}

// NewRecipeRepo constructs a RecipeRepo storing one JSON file per recipe
// under <dataDir>/recipes, creating the directory if needed.
func NewRecipeRepo(dataDir string) (repo.RecipeRepo, error) {
	dir := filepath.Join(dataDir, "recipes")
	if err := ensureDir(dir); err != nil {
		return nil, fmt.Errorf("filestore.NewRecipeRepo: %w", err)
	}
	return &fileRecipeRepo{dir: dir}, nil
}

// NextID allocates the next "recipe_NNN" id from the maximum numeric suffix
// among the stored files. A directory read failure is returned as an error —
// an id is never guessed or reused.
func (r *fileRecipeRepo) NextID(_ context.Context) (string, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return "", fmt.Errorf("filestore.RecipeRepo.NextID: %w", err)
	}

	maxSuffix := 0
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, "recipe_") || !strings.HasSuffix(name, ".json") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, "recipe_"), ".json"))
		if err != nil {
			continue
		}
		if n > maxSuffix {
			maxSuffix = n
		}
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

// Get reads and decodes a single recipe file.
func (r *fileRecipeRepo) Get(_ context.Context, id string) (domain.Recipe, error) {
	b, err := os.ReadFile(r.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return domain.Recipe{}, fmt.Errorf("filestore.RecipeRepo.Get: %s: %w", id, domain.ErrNotFound)
		}
		return domain.Recipe{}, fmt.Errorf("filestore.RecipeRepo.Get: %w", err)
	}

	var rec domain.Recipe
	if err := json.Unmarshal(b, &rec); err != nil {
		return domain.Recipe{}, fmt.Errorf("filestore.RecipeRepo.Get: decode %s: %w", id, err)
	}
	if rec.Tags == nil {
		rec.Tags = []string{}
	}
	return rec, nil
}

// List decodes every *.json file in the recipes directory, ordered by
// filename. Files that cannot be read or decoded are skipped and logged
// rather than failing the whole listing.
func (r *fileRecipeRepo) List(ctx context.Context) ([]domain.Recipe, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("filestore.RecipeRepo.List: %w", err)
	}

	recipes := []domain.Recipe{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		rec, err := r.Get(ctx, strings.TrimSuffix(name, ".json"))
		if err != nil {
			slog.Warn("skipping unreadable recipe file", "file", name, "error", err)
			continue
		}
		recipes = append(recipes, rec)
	}
	return recipes, nil
}

// Put atomically overwrites the record file for recipe.ID.
func (r *fileRecipeRepo) Put(_ context.Context, recipe domain.Recipe) error {
	if recipe.ID == "" {
		return fmt.Errorf("filestore.RecipeRepo.Put: %w: missing id", domain.ErrValidation)
	}
	if err := writeFileAtomic(r.path(recipe.ID), recipe); err != nil {
		return fmt.Errorf("filestore.RecipeRepo.Put: %s: %w", recipe.ID, err)
	}
	return nil
}

// Delete removes the record file for id.
func (r *fileRecipeRepo) Delete(_ context.Context, id string) error {
	err := os.Remove(r.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("filestore.RecipeRepo.Delete: %s: %w", id, domain.ErrNotFound)
		}
		return fmt.Errorf("filestore.RecipeRepo.Delete: %w", err)
	}
	return nil
}

// path returns the record file path for a recipe id.
func (r *fileRecipeRepo) path(id string) string {
	return filepath.Join(r.dir, id+".json")
}
