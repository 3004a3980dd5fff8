package web

// handlers_common.go contains shared request helpers used across handlers.

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// MaxUploadSize is the maximum allowed multipart import size (100MB).
const MaxUploadSize = 100 * 1024 * 1024

// maxJSONBody bounds JSON request bodies.
const maxJSONBody = 1 << 20

// errNoFile is returned when a multipart import carries no files.
var errNoFile = errors.New("no file provided")

// errMissing reports a required JSON field that was empty.
func errMissing(field string) error {
	return fmt.Errorf("%w: %s is required", errBadRequest, field)
}

// decodeJSON decodes a single JSON object from the request body into v.
// Unknown fields are rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: trailing data", errBadRequest)
	}
	return nil
}

// parsePatterns splits the comma-separated q parameter. A missing q yields
// no patterns; an empty q yields the single empty pattern, which matches
// every part. Empty items inside a list are dropped.
func parsePatterns(r *http.Request) []string {
	values, ok := r.URL.Query()["q"]
	if !ok {
		return nil
	}

	var patterns []string
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			patterns = append(patterns, "")
			continue
		}
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				patterns = append(patterns, p)
			}
		}
	}
	return patterns
}
