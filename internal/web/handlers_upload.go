package web

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/partlib/internal/logging"
)

type importRequest struct {
	Paths []string `json:"paths"`
}

// handleImport imports CSV files into the library. Files are either named
// by local path in a JSON body ({"paths": [...]}) or uploaded as a
// multipart form with one or more "file" parts.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		s.handleImportUpload(w, r)
		return
	}

	var req importRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if len(req.Paths) == 0 {
		s.respondError(w, r, errMissing("paths"))
		return
	}

	res, err := s.service.Import(r.Context(), req.Paths)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, r, res)
}

// handleImportUpload stages uploaded files in a temp dir, imports them in one
// transaction and removes them again.
func (s *Server) handleImportUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		s.respondError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck

	headers := r.MultipartForm.File["file"]
	if len(headers) == 0 {
		s.respondError(w, r, errNoFile)
		return
	}

	dir, err := os.MkdirTemp("", "partlib-import-*")
	if err != nil {
		s.respondError(w, r, fmt.Errorf("stage upload: %w", err))
		return
	}
	defer os.RemoveAll(dir)

	paths := make([]string, 0, len(headers))
	for i, fh := range headers {
		path, err := stageUpload(dir, i, fh)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		paths = append(paths, path)
	}

	logging.FromContext(r.Context()).Debug("staged upload", "files", len(paths), "dir", dir)

	res, err := s.service.Import(r.Context(), paths)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, r, res)
}

// stageUpload copies one uploaded file into dir. The index prefix keeps two
// uploads with the same name apart.
func stageUpload(dir string, i int, fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload %s: %w", fh.Filename, err)
	}
	defer src.Close()

	path := filepath.Join(dir, fmt.Sprintf("%03d-%s", i, filepath.Base(fh.Filename)))
	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("stage upload %s: %w", fh.Filename, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return "", fmt.Errorf("stage upload %s: %w", fh.Filename, err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("stage upload %s: %w", fh.Filename, err)
	}
	return path, nil
}
