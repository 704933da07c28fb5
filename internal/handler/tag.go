package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pkordes/recipe-box/internal/domain"
)

// tagListResponse wraps the tag collection.
type tagListResponse struct {
	Data []domain.TagCount `json:"data"`
}

// renameTagRequest is the body of PUT /api/tags/{name}.
type renameTagRequest struct {
	Name string `json:"name"`
}

// ListTags handles GET /api/tags.
func (s *Server) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.tags.List(r.Context())
	if err != nil {
		writeInternal(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tagListResponse{Data: tags})
}

// RenameTag handles PUT /api/tags/{name}.
// Only tags with zero associated recipes may be renamed; a protected tag
// yields 409 with code "tag_in_use".
func (s *Server) RenameTag(w http.ResponseWriter, r *http.Request) {
	var req renameTagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	oldName := chi.URLParam(r, "name")
	err := s.tags.Rename(r.Context(), oldName, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			writeNotFound(w, "tag not found")
		case errors.Is(err, domain.ErrValidation):
			writeValidation(w, err)
		case errors.Is(err, domain.ErrTagInUse):
			writeConflict(w, "tag_in_use", "tag is still referenced by recipes")
		case errors.Is(err, domain.ErrConflict):
			writeConflict(w, "conflict", "a tag with that name already exists")
		default:
			writeInternal(w, err)
		}
		return
	}
	writeJSON(w, http.StatusOK, domain.TagCount{Name: domain.NormalizeTagName(req.Name)})
}

// DeleteTag handles DELETE /api/tags/{name}.
// Same protected-tag rule as RenameTag.
func (s *Server) DeleteTag(w http.ResponseWriter, r *http.Request) {
	err := s.tags.Delete(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			writeNotFound(w, "tag not found")
		case errors.Is(err, domain.ErrTagInUse):
			writeConflict(w, "tag_in_use", "tag is still referenced by recipes")
		default:
			writeInternal(w, err)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
