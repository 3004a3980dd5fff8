package web

import (
	"net/http"

	"github.com/JonMunkholm/partlib/internal/core"
)

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, map[string]string{"status": "ok"})
}

// handleStatus reports the library size, file locations and the running
// operation, if any.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st, err := s.service.Status(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, r, st)
}

// handleGetMapping returns the current column mapping.
func (s *Server) handleGetMapping(w http.ResponseWriter, r *http.Request) {
	m, err := s.service.Mapping(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, r, m)
}

// handlePutMapping replaces the column mapping. The whole object is
// required; omitted fields are treated as unmapped.
func (s *Server) handlePutMapping(w http.ResponseWriter, r *http.Request) {
	var m core.ColumnMapping
	if err := decodeJSON(w, r, &m); err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := s.service.SaveMapping(r.Context(), m); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, r, m)
}

type pathRequest struct {
	Path string `json:"path"`
}

// handlePreview returns the first line of a file with marked columns.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req pathRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if req.Path == "" {
		s.respondError(w, r, errMissing("path"))
		return
	}

	p, err := s.service.Preview(req.Path)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, r, p)
}

// handleQueryParts returns the parts matching the comma-separated q
// parameter. A missing q matches nothing; an empty q matches everything.
func (s *Server) handleQueryParts(w http.ResponseWriter, r *http.Request) {
	rs, err := s.service.Query(r.Context(), parsePatterns(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, r, rs.Working)
}

type updateRequest struct {
	Original []core.PartRecord `json:"original"`
	Working  []core.PartRecord `json:"working"`
}

// handleUpdateParts writes back the edited records. The client sends the
// records it queried alongside its edited copies.
func (s *Server) handleUpdateParts(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	n, err := s.service.ApplyUpdates(r.Context(), req.Original, req.Working)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, r, map[string]int{"updated": n})
}

type exportRequest struct {
	Path      string `json:"path"`
	OutputDir string `json:"output_dir"`
}

// handleExport merges a source file with the library.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if req.Path == "" {
		s.respondError(w, r, errMissing("path"))
		return
	}

	res, err := s.service.Export(r.Context(), req.Path, req.OutputDir)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, r, res)
}

type restoreRequest struct {
	Confirm bool `json:"confirm"`
}

// handleRestore replaces the library with its backup. The body must carry
// {"confirm": true}.
func (s *Server) handleRestore(w http.ResponseWriter, r *http.Request) {
	var req restoreRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	outcome, err := s.service.Restore(r.Context(), req.Confirm)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, r, map[string]core.RestoreOutcome{"outcome": outcome})
}
