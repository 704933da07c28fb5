package handler

import (
	"net/http"

	"github.com/pkordes/recipe-box/internal/domain"
)

// auditResponse is the body of GET /api/index/audit.
type auditResponse struct {
	Consistent bool                   `json:"consistent"`
	Findings   []domain.Inconsistency `json:"findings"`
}

// RebuildIndex handles POST /api/index/rebuild.
// Recomputes the tag index from the recipe records and swaps it in.
func (s *Server) RebuildIndex(w http.ResponseWriter, r *http.Request) {
	if err := s.maintenance.RebuildIndex(r.Context()); err != nil {
		writeInternal(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AuditIndex handles GET /api/index/audit.
// Reports divergences between the recipe records and the tag index without
// mutating anything.
func (s *Server) AuditIndex(w http.ResponseWriter, r *http.Request) {
	findings, err := s.maintenance.Audit(r.Context())
	if err != nil {
		writeInternal(w, err)
		return
	}
	if findings == nil {
		findings = []domain.Inconsistency{}
	}
	writeJSON(w, http.StatusOK, auditResponse{Consistent: len(findings) == 0, Findings: findings})
}
