package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"

	"github.com/DreamStack-us/redisTOON/internal/store"
	"github.com/DreamStack-us/redisTOON/pkg/toon"
)

// Handlers provides the HTTP handlers for the document API.
type Handlers struct {
	store *store.Store
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(st *store.Store) *Handlers {
	return &Handlers{store: st}
}

type documentResponse struct {
	Key      string `json:"key"`
	Revision string `json:"revision"`
	Body     string `json:"body"`
}

type listEntry struct {
	Key       string    `json:"key"`
	Revision  string    `json:"revision"`
	UpdatedAt time.Time `json:"updated_at"`
	Tokens    int       `json:"tokens"`
}

// Health reports liveness.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// List returns one row per stored document.
func (h *Handlers) List(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.Stats()
	if err != nil {
		respondError(w, err)
		return
	}
	entries := make([]listEntry, 0, len(stats))
	for _, st := range stats {
		entries = append(entries, listEntry{
			Key:       st.Key,
			Revision:  st.Revision,
			UpdatedAt: st.UpdatedAt,
			Tokens:    st.Tokens,
		})
	}
	respondJSON(w, http.StatusOK, map[string][]listEntry{"documents": entries})
}

// Put stores the request body as the document at {key}.
func (h *Handlers) Put(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	text, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, fmt.Errorf("read body: %w", err))
		return
	}
	body, meta, err := h.store.Set(key, string(text))
	if err != nil {
		respondError(w, err)
		return
	}
	setRevision(w, meta)
	respondJSON(w, http.StatusOK, documentResponse{Key: key, Revision: meta.Revision, Body: body})
}

// Get returns the document text, or the fragment named by ?path=.
func (h *Handlers) Get(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	body, meta, err := h.store.Get(key, r.URL.Query().Get("path"))
	if err != nil {
		respondError(w, err)
		return
	}
	setRevision(w, meta)
	respondText(w, http.StatusOK, body)
}

// Delete removes the document, or the value named by ?path= inside it.
func (h *Handlers) Delete(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	path := r.URL.Query().Get("path")
	body, meta, err := h.store.Del(key, path)
	if err != nil {
		respondError(w, err)
		return
	}
	if path == "" || path == "$" {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	setRevision(w, meta)
	respondJSON(w, http.StatusOK, documentResponse{Key: key, Revision: meta.Revision, Body: body})
}

// Type reports the kind name at ?path= (the root when absent).
func (h *Handlers) Type(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	path := r.URL.Query().Get("path")
	kind, err := h.store.Type(key, path)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"key": key, "path": path, "type": kind})
}

// GetJSON renders the document as JSON.
func (h *Handlers) GetJSON(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	out, meta, err := h.store.ToJSON(key)
	if err != nil {
		respondError(w, err)
		return
	}
	setRevision(w, meta)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, out)
}

// PutJSON parses the request body as JSON and stores the converted document.
func (h *Handlers) PutJSON(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	text, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, fmt.Errorf("read body: %w", err))
		return
	}
	body, meta, err := h.store.FromJSON(key, string(text))
	if err != nil {
		if errors.Is(err, store.ErrStoreClosed) {
			respondError(w, err)
			return
		}
		respondBadRequest(w, err)
		return
	}
	setRevision(w, meta)
	respondJSON(w, http.StatusOK, documentResponse{Key: key, Revision: meta.Revision, Body: body})
}

// Tokens reports the token estimate of the document against its JSON form.
func (h *Handlers) Tokens(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	toonTokens, jsonTokens, err := h.store.TokenCount(key)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"key":         key,
		"toon_tokens": toonTokens,
		"json_tokens": jsonTokens,
	})
}

type appendRequest struct {
	Path   string            `json:"path"`
	Values []json.RawMessage `json:"values"`
}

// ArrayAppend appends the request values to the array at path.
func (h *Handlers) ArrayAppend(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	var req appendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, fmt.Errorf("invalid request: %w", err))
		return
	}
	values, err := decodeValues(req.Values)
	if err != nil {
		respondBadRequest(w, err)
		return
	}
	length, body, meta, err := h.store.ArrAppend(key, orRoot(req.Path), values...)
	if err != nil {
		respondError(w, err)
		return
	}
	setRevision(w, meta)
	respondJSON(w, http.StatusOK, map[string]any{
		"key":      key,
		"revision": meta.Revision,
		"length":   length,
		"body":     body,
	})
}

type insertRequest struct {
	Path  string          `json:"path"`
	Index int             `json:"index"`
	Value json.RawMessage `json:"value"`
}

// ArrayInsert inserts the request value at index in the array at path.
func (h *Handlers) ArrayInsert(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	var req insertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, fmt.Errorf("invalid request: %w", err))
		return
	}
	value, err := toon.FromJSON(string(req.Value))
	if err != nil {
		respondBadRequest(w, err)
		return
	}
	body, meta, err := h.store.ArrInsert(key, orRoot(req.Path), req.Index, value)
	if err != nil {
		respondError(w, err)
		return
	}
	setRevision(w, meta)
	respondJSON(w, http.StatusOK, documentResponse{Key: key, Revision: meta.Revision, Body: body})
}

type popRequest struct {
	Path  string `json:"path"`
	Index *int   `json:"index"`
}

// ArrayPop removes and returns the element at index (the last when absent)
// in the array at path.
func (h *Handlers) ArrayPop(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	var req popRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, fmt.Errorf("invalid request: %w", err))
		return
	}
	index := -1
	if req.Index != nil {
		index = *req.Index
	}
	popped, body, meta, err := h.store.ArrPop(key, orRoot(req.Path), index)
	if err != nil {
		respondError(w, err)
		return
	}
	poppedJSON, err := toon.ToJSON(popped)
	if err != nil {
		respondError(w, err)
		return
	}
	setRevision(w, meta)
	respondJSON(w, http.StatusOK, map[string]any{
		"key":      key,
		"revision": meta.Revision,
		"value":    json.RawMessage(poppedJSON),
		"body":     body,
	})
}

// ArrayLength reports the element count of the array at ?path=.
func (h *Handlers) ArrayLength(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	path := r.URL.Query().Get("path")
	length, err := h.store.ArrLen(key, orRoot(path))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"key": key, "path": path, "length": length})
}

// Merge deep-merges the request body, a TOON object, into the document.
func (h *Handlers) Merge(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	text, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, fmt.Errorf("read body: %w", err))
		return
	}
	source, err := toon.Decode(string(text))
	if err != nil {
		respondError(w, err)
		return
	}
	body, meta, err := h.store.Merge(key, source)
	if err != nil {
		respondError(w, err)
		return
	}
	setRevision(w, meta)
	respondJSON(w, http.StatusOK, documentResponse{Key: key, Revision: meta.Revision, Body: body})
}

// Validate checks the structural invariants of the document.
func (h *Handlers) Validate(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if err := h.store.Validate(key); err != nil {
		var valErr *toon.ValidationError
		if errors.As(err, &valErr) {
			respondJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"valid": false,
				"error": valErr.Error(),
			})
			return
		}
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"valid": true})
}

type pathRequest struct {
	Op    string          `json:"op"`
	Path  string          `json:"path"`
	Value json.RawMessage `json:"value"`
}

// Path applies a set or delete at a path inside the document.
func (h *Handlers) Path(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	var req pathRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, fmt.Errorf("invalid request: %w", err))
		return
	}

	var (
		body string
		meta store.Meta
		err  error
	)
	switch req.Op {
	case "set":
		var value *toon.Value
		value, err = toon.FromJSON(string(req.Value))
		if err != nil {
			respondBadRequest(w, err)
			return
		}
		body, meta, err = h.store.SetPath(key, req.Path, value)
	case "delete":
		if req.Path == "" || req.Path == "$" {
			respondBadRequest(w, fmt.Errorf("the root cannot be deleted, delete the document instead"))
			return
		}
		body, meta, err = h.store.Del(key, req.Path)
	default:
		respondBadRequest(w, fmt.Errorf("unknown op %q, want set or delete", req.Op))
		return
	}
	if err != nil {
		respondError(w, err)
		return
	}
	setRevision(w, meta)
	respondJSON(w, http.StatusOK, documentResponse{Key: key, Revision: meta.Revision, Body: body})
}

// decodeValues converts raw JSON values into document values.
func decodeValues(raw []json.RawMessage) ([]*toon.Value, error) {
	values := make([]*toon.Value, 0, len(raw))
	for _, r := range raw {
		v, err := toon.FromJSON(string(r))
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

// orRoot defaults an empty path to the document root.
func orRoot(path string) string {
	if path == "" {
		return "$"
	}
	return path
}
