// Package handler — export.go implements GET /api/export.
// Returns every recipe plus the tag index summary.
// Supports content negotiation via ?format=csv (one row per recipe) or
// default (JSON).
package handler

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pkordes/recipe-box/internal/domain"
)

// csvHeaders defines the column names written as the first row of any CSV export.
var csvHeaders = []string{
	"id", "name", "ingredients", "instructions", "notes", "tags",
	"created_at", "updated_at",
}

// GetExport handles GET /api/export.
// Use ?format=csv to receive CSV; default is JSON.
func (s *Server) GetExport(w http.ResponseWriter, r *http.Request) {
	dump, err := s.export.Export(r.Context())
	if err != nil {
		writeInternal(w, err)
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		writeCSVExport(w, dump)
		return
	}
	writeJSON(w, http.StatusOK, dump)
}

// writeCSVExport encodes one CSV row per recipe. Ingredient lines and tags
// are pipe-separated ("|") to keep each recipe on a single CSV line.
func writeCSVExport(w http.ResponseWriter, dump domain.Export) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	//nolint:errcheck — bytes.Buffer writes never fail.
	cw.Write(csvHeaders)
	for _, rec := range dump.Recipes {
		//nolint:errcheck
		cw.Write(recipeToCSVRecord(rec))
	}
	cw.Flush()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck
	w.Write(buf.Bytes())
}

// recipeToCSVRecord encodes a recipe as a flat string slice.
func recipeToCSVRecord(rec domain.Recipe) []string {
	lines := make([]string, 0, len(rec.Ingredients))
	for _, ing := range rec.Ingredients {
		lines = append(lines, formatIngredient(ing))
	}
	return []string{
		rec.ID,
		rec.Name,
		strings.Join(lines, "|"),
		rec.Instructions,
		rec.Notes,
		strings.Join(rec.Tags, "|"),
		rec.CreatedAt.UTC().Format(time.RFC3339),
		rec.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// formatIngredient renders one ingredient line the way it reads on a recipe
// card: "<amount> <unit> <description>" with empty parts omitted.
func formatIngredient(ing domain.Ingredient) string {
	parts := make([]string, 0, 3)
	if ing.Amount != "" {
		parts = append(parts, ing.Amount)
	}
	if ing.Unit != "" {
		parts = append(parts, ing.Unit)
	}
	parts = append(parts, ing.Description)
	return strings.Join(parts, " ")
}
