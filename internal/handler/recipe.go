package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pkordes/recipe-box/internal/domain"
)

// RecipeRequest is the request body for POST /api/recipes and
// PUT /api/recipes/{recipeID}. The id, created_at, and updated_at fields are
// server-owned and never accepted from the client.
type RecipeRequest struct {
	Name         string              `json:"name"`
	Ingredients  []domain.Ingredient `json:"ingredients"`
	Instructions string              `json:"instructions"`
	Notes        string              `json:"notes"`
	Tags         []string            `json:"tags"`
}

// toDomain converts the request body to a domain.Recipe with the given id
// ("" for create).
func (req RecipeRequest) toDomain(id string) domain.Recipe {
	return domain.Recipe{
		ID:           id,
		Name:         req.Name,
		Ingredients:  req.Ingredients,
		Instructions: req.Instructions,
		Notes:        req.Notes,
		Tags:         req.Tags,
	}
}

// recipeListResponse wraps the recipe collection so the payload can grow
// (e.g. filter echo) without breaking clients.
type recipeListResponse struct {
	Data []domain.Recipe `json:"data"`
}

// ListRecipes handles GET /api/recipes.
// Optional query parameters: ?tags=a,b filters by tag, ?match=all requires
// every tag (default: any).
func (s *Server) ListRecipes(w http.ResponseWriter, r *http.Request) {
	var tagNames []string
	if raw := r.URL.Query().Get("tags"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tagNames = append(tagNames, t)
			}
		}
	}
	matchAll := r.URL.Query().Get("match") == "all"

	recipes, err := s.recipes.FilterByTags(r.Context(), tagNames, matchAll)
	if err != nil {
		writeInternal(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recipeListResponse{Data: recipes})
}

// CreateRecipe handles POST /api/recipes.
func (s *Server) CreateRecipe(w http.ResponseWriter, r *http.Request) {
	var req RecipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	rec, err := s.recipes.Create(r.Context(), req.toDomain(""))
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			writeValidation(w, err)
			return
		}
		writeInternal(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// GetRecipe handles GET /api/recipes/{recipeID}.
func (s *Server) GetRecipe(w http.ResponseWriter, r *http.Request) {
	rec, err := s.recipes.GetByID(r.Context(), chi.URLParam(r, "recipeID"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeNotFound(w, "recipe not found")
			return
		}
		writeInternal(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// UpdateRecipe handles PUT /api/recipes/{recipeID}.
// The body is a full replacement; fields absent from it are cleared.
func (s *Server) UpdateRecipe(w http.ResponseWriter, r *http.Request) {
	var req RecipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	rec, err := s.recipes.Update(r.Context(), req.toDomain(chi.URLParam(r, "recipeID")))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			writeNotFound(w, "recipe not found")
		case errors.Is(err, domain.ErrValidation):
			writeValidation(w, err)
		default:
			writeInternal(w, err)
		}
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// DeleteRecipe handles DELETE /api/recipes/{recipeID}.
func (s *Server) DeleteRecipe(w http.ResponseWriter, r *http.Request) {
	err := s.recipes.Delete(r.Context(), chi.URLParam(r, "recipeID"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeNotFound(w, "recipe not found")
			return
		}
		writeInternal(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
