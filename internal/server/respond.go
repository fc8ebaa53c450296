package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	json "github.com/goccy/go-json"

	"github.com/DreamStack-us/redisTOON/internal/store"
	"github.com/DreamStack-us/redisTOON/pkg/toon"
)

type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func respondError(w http.ResponseWriter, err error) {
	respondJSON(w, statusFor(err), errorResponse{Error: err.Error()})
}

func respondBadRequest(w http.ResponseWriter, err error) {
	respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
}

func setRevision(w http.ResponseWriter, meta store.Meta) {
	w.Header().Set("ETag", strconv.Quote(meta.Revision))
}

// statusFor maps error taxonomy to HTTP status: syntax problems are 400,
// absence is 404, wrong-kind operations are 409, structural violations
// are 422.
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrKeyNotFound), errors.Is(err, toon.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, toon.ErrInvalidPath):
		return http.StatusBadRequest
	}

	var decErr *toon.DecodeError
	if errors.As(err, &decErr) {
		return http.StatusBadRequest
	}
	var idxErr *toon.IndexError
	if errors.As(err, &idxErr) {
		return http.StatusBadRequest
	}
	var opErr *toon.OperationError
	if errors.As(err, &opErr) {
		return http.StatusConflict
	}
	var valErr *toon.ValidationError
	if errors.As(err, &valErr) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
