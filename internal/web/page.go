package web

import (
	"net/http"

	"github.com/JonMunkholm/partlib/internal/core"
	"github.com/JonMunkholm/partlib/internal/logging"
	"github.com/JonMunkholm/partlib/internal/web/templates"
)

// handleSearchPage renders the search page. The q parameter works as in
// GET /api/parts.
func (s *Server) handleSearchPage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")

	var parts []core.PartRecord
	if _, searched := r.URL.Query()["q"]; searched {
		rs, err := s.service.Query(r.Context(), parsePatterns(r))
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		parts = rs.Working
	}

	st, err := s.service.Status(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.SearchPage(q, parts, st).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render search page", "error", err)
	}
}
