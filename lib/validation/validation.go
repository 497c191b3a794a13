// Package validation decodes and validates request payloads and writes JSON
// error responses.
package validation

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	gojson "github.com/goccy/go-json"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// DecodeJSON decodes the request body into dst and validates it against its
// struct tags. Unknown fields are ignored, matching the permissive client.
func DecodeJSON(r *http.Request, dst any) error {
	if err := gojson.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	if err := validate.Struct(dst); err != nil {
		return fmt.Errorf("invalid request data: %w", err)
	}
	return nil
}

// ParsePage reads the 1-based page query parameter, defaulting to 1 when the
// parameter is missing or not a positive integer.
func ParsePage(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// WriteError writes a JSON error response with the given status code.
func WriteError(w http.ResponseWriter, err error, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := gojson.NewEncoder(w).Encode(map[string]string{
		"message": err.Error(),
	}); err != nil {
		slog.Error("Failed to encode error response", slog.Any("error", err))
	}
}
