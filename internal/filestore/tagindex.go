package filestore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/pkordes/recipe-box/internal/domain"
	"github.com/pkordes/recipe-box/internal/repo"
)

// tagRecord is the on-disk shape of one tag index entry.
// The key of the enclosing map is the canonical tag name.
type tagRecord struct {
	Recipes   []string  `json:"recipes"`
	CreatedAt time.Time `json:"created_at"`
}

// fileTagIndex is the JSON-file implementation of repo.TagIndex.
// The whole index is one file; every mutation is a read-modify-persist cycle
// under mu, so two recipes adding a brand-new tag concurrently can never race
// each other's whole-file rewrite into a lost update.
type fileTagIndex struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

// NewTagIndex constructs a TagIndex persisted at <dataDir>/tags.json,
// creating an empty index file if none exists.
func NewTagIndex(dataDir string) (repo.TagIndex, error) {
	if err := ensureDir(dataDir); err != nil {
		return nil, fmt.Errorf("filestore.NewTagIndex: %w", err)
	}
	idx := &fileTagIndex{
		path: filepath.Join(dataDir, "tags.json"),
		now:  time.Now,
	}
	if _, err := os.Stat(idx.path); os.IsNotExist(err) {
		if err := writeFileAtomic(idx.path, map[string]tagRecord{}); err != nil {
			return nil, fmt.Errorf("filestore.NewTagIndex: %w", err)
		}
	}
	return idx, nil
}

// NamesFor returns the canonical tag names whose recipe set contains the id.
func (x *fileTagIndex) NamesFor(_ context.Context, recipeID string) ([]string, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	index, err := x.load()
	if err != nil {
		return nil, fmt.Errorf("filestore.TagIndex.NamesFor: %w", err)
	}

	names := []string{}
	for name, rec := range index {
		if contains(rec.Recipes, recipeID) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// ApplyDelta removes the recipe from every name in removed (reaping tags left
// empty), then adds it to every name in added (creating tags on first
// reference), and persists the updated index atomically. Removals run before
// additions so a name present in both sets keeps its created_at.
func (x *fileTagIndex) ApplyDelta(_ context.Context, recipeID string, added, removed []string) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	index, err := x.load()
	if err != nil {
		return fmt.Errorf("filestore.TagIndex.ApplyDelta: %w", err)
	}

	for _, name := range domain.NormalizeTagSet(removed) {
		rec, ok := index[name]
		if !ok {
			continue
		}
		rec.Recipes = remove(rec.Recipes, recipeID)
		if len(rec.Recipes) == 0 {
			delete(index, name)
			continue
		}
		index[name] = rec
	}

	for _, name := range domain.NormalizeTagSet(added) {
		rec, ok := index[name]
		if !ok {
			rec = tagRecord{Recipes: []string{}, CreatedAt: x.now().UTC()}
		}
		if !contains(rec.Recipes, recipeID) {
			rec.Recipes = append(rec.Recipes, recipeID)
			sort.Strings(rec.Recipes)
		}
		index[name] = rec
	}

	if err := x.persist(index); err != nil {
		return fmt.Errorf("filestore.TagIndex.ApplyDelta: %w", err)
	}
	return nil
}

// AllTags returns every tag with its recipe count, ordered by name.
func (x *fileTagIndex) AllTags(_ context.Context) ([]domain.TagCount, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	index, err := x.load()
	if err != nil {
		return nil, fmt.Errorf("filestore.TagIndex.AllTags: %w", err)
	}

	tags := make([]domain.TagCount, 0, len(index))
	for name, rec := range index {
		tags = append(tags, domain.TagCount{Name: name, RecipeCount: len(rec.Recipes)})
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	return tags, nil
}

// Rename changes a tag's name, only while no recipes reference it.
func (x *fileTagIndex) Rename(_ context.Context, oldName, newName string) error {
	oldName = domain.NormalizeTagName(oldName)
	newName = domain.NormalizeTagName(newName)
	if newName == "" {
		return fmt.Errorf("filestore.TagIndex.Rename: %w: new name is empty", domain.ErrValidation)
	}
	if oldName == newName {
		return nil
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	index, err := x.load()
	if err != nil {
		return fmt.Errorf("filestore.TagIndex.Rename: %w", err)
	}

	rec, ok := index[oldName]
	if !ok {
		return fmt.Errorf("filestore.TagIndex.Rename: %s: %w", oldName, domain.ErrNotFound)
	}
	if len(rec.Recipes) > 0 {
		return fmt.Errorf("filestore.TagIndex.Rename: %s: %w", oldName, domain.ErrTagInUse)
	}
	if _, taken := index[newName]; taken {
		return fmt.Errorf("filestore.TagIndex.Rename: %s: %w", newName, domain.ErrConflict)
	}

	delete(index, oldName)
	index[newName] = rec

	if err := x.persist(index); err != nil {
		return fmt.Errorf("filestore.TagIndex.Rename: %w", err)
	}
	return nil
}

// Delete removes a tag outright, only while no recipes reference it.
func (x *fileTagIndex) Delete(_ context.Context, name string) error {
	name = domain.NormalizeTagName(name)

	x.mu.Lock()
	defer x.mu.Unlock()

	index, err := x.load()
	if err != nil {
		return fmt.Errorf("filestore.TagIndex.Delete: %w", err)
	}

	rec, ok := index[name]
	if !ok {
		return fmt.Errorf("filestore.TagIndex.Delete: %s: %w", name, domain.ErrNotFound)
	}
	if len(rec.Recipes) > 0 {
		return fmt.Errorf("filestore.TagIndex.Delete: %s: %w", name, domain.ErrTagInUse)
	}

	delete(index, name)

	if err := x.persist(index); err != nil {
		return fmt.Errorf("filestore.TagIndex.Delete: %w", err)
	}
	return nil
}

// Replace swaps the entire persisted index for the given mapping, keeping
// created_at for names that already exist. Entries with empty recipe sets are
// dropped — a tag must not outlive its last reference.
func (x *fileTagIndex) Replace(_ context.Context, index map[string][]string) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	old, err := x.load()
	if err != nil {
		return fmt.Errorf("filestore.TagIndex.Replace: %w", err)
	}

	next := make(map[string]tagRecord, len(index))
	for name, ids := range index {
		name = domain.NormalizeTagName(name)
		if name == "" || len(ids) == 0 {
			continue
		}
		createdAt := x.now().UTC()
		if prev, ok := old[name]; ok {
			createdAt = prev.CreatedAt
		}
		sorted := append([]string(nil), ids...)
		sort.Strings(sorted)
		next[name] = tagRecord{Recipes: sorted, CreatedAt: createdAt}
	}

	if err := x.persist(next); err != nil {
		return fmt.Errorf("filestore.TagIndex.Replace: %w", err)
	}
	return nil
}

// load reads the whole index file. A missing file is an empty index.
func (x *fileTagIndex) load() (map[string]tagRecord, error) {
	b, err := os.ReadFile(x.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]tagRecord{}, nil
		}
		return nil, err
	}
	index := map[string]tagRecord{}
	if err := json.Unmarshal(b, &index); err != nil {
		return nil, fmt.Errorf("decode %s: %w", x.path, err)
	}
	return index, nil
}

// persist atomically rewrites the whole index file.
func (x *fileTagIndex) persist(index map[string]tagRecord) error {
	return writeFileAtomic(x.path, index)
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func remove(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
