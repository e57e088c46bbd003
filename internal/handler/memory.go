package handler

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/memories-api/internal/apperror"
	"github.com/sakif/memories-api/internal/auth"
	"github.com/sakif/memories-api/internal/service"
)

// MemoryHandler manages CRUD operations for journal entries.
//
// Each handler struct "owns" one area of functionality. All routes here run
// behind auth.RequireAuth, so UserIDFromContext always succeeds — the
// fallback 401s are belt-and-braces for misconfigured routing.
type MemoryHandler struct {
	memories *service.MemoryService
	logger   *slog.Logger
}

// NewMemoryHandler creates a new MemoryHandler.
func NewMemoryHandler(memories *service.MemoryService, logger *slog.Logger) *MemoryHandler {
	return &MemoryHandler{
		memories: memories,
		logger:   logger,
	}
}

// looseBool accepts the whole zoo of "boolean-ish" JSON values the frontend
// may send for isPublic: true/false, 0/1 (or any number), null, and strings.
//
// COERCION RULES (JavaScript truthiness, which the frontend relies on):
//   absent, null, false, 0   → false
//   "" (empty string)        → false
//   true, any non-zero number → true
//   any non-empty string      → true  (yes, including "false" and "0")
//
// Implementing json.Unmarshaler on a named bool type keeps the coercion in
// one place; the struct field below just works.
type looseBool bool

func (b *looseBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	if len(data) == 0 || string(data) == "null" {
		*b = false
		return nil
	}

	switch data[0] {
	case 't', 'f':
		var v bool
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*b = looseBool(v)
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*b = s != ""
	default:
		var n float64
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*b = n != 0
	}

	return nil
}

// memoryRequest is the body of both POST /memories and PUT /memories/{id}.
// Content and CoverURL are pointers so a missing field is distinguishable
// from an empty string — missing fails validation, empty is allowed.
type memoryRequest struct {
	Content  *string   `json:"content"`
	CoverURL *string   `json:"coverUrl"`
	IsPublic looseBool `json:"isPublic"`
}

// decodeMemoryRequest parses and validates the shared create/edit body.
func decodeMemoryRequest(r *http.Request) (*memoryRequest, error) {
	var req memoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, apperror.ValidationFailed("body", "request body must be valid JSON")
	}
	if req.Content == nil {
		return nil, apperror.ValidationFailed("content", "content is required")
	}
	if req.CoverURL == nil {
		return nil, apperror.ValidationFailed("coverUrl", "coverUrl is required")
	}
	return &req, nil
}

// softFailure is the body of the 422 answer for edit/delete misses.
type softFailure struct {
	Success bool `json:"success"`
}

// HandleList returns the caller's timeline.
//
// HTTP: GET /memories
// RESPONSE: [{"id":"...","coverUrl":"...","excerpt":"first 115 chars..."}, ...]
// ordered by creation time ascending.
func (h *MemoryHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "valid authentication required"})
		return
	}

	summaries, err := h.memories.List(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, summaries)
}

// HandleGet returns one full memory.
//
// HTTP: GET /memories/{id}  (id must be a UUID)
//
// Only an owned AND public memory is returned; everything else — unknown id,
// someone else's memory, the caller's own private one — is a 404.
func (h *MemoryHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "valid authentication required"})
		return
	}

	memory, err := h.memories.Get(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, memory)
}

// HandleCreate saves a new memory owned by the caller.
//
// HTTP: POST /memories
// REQUEST BODY: {"content": "...", "coverUrl": "...", "isPublic": 1}
// RESPONSE: the created record, including generated id and createdAt.
func (h *MemoryHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "valid authentication required"})
		return
	}

	req, err := decodeMemoryRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	memory, err := h.memories.Create(r.Context(), userID, *req.Content, *req.CoverURL, bool(req.IsPublic))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, memory)
}

// HandleEdit fully replaces a memory's content/coverUrl/isPublic.
//
// HTTP: PUT /memories/{id}
//
// SOFT FAILURE CONTRACT:
// When (id, caller) matches no row — wrong owner or no such memory — the
// answer is 422 {"success":false}, NOT a 404. The frontend treats this as
// "refresh your state", and probing ids never reveals whether they exist.
func (h *MemoryHandler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "valid authentication required"})
		return
	}

	req, err := decodeMemoryRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	matched, err := h.memories.Edit(r.Context(), r.PathValue("id"), userID, *req.Content, *req.CoverURL, bool(req.IsPublic))
	if err != nil {
		writeError(w, err)
		return
	}
	if !matched {
		writeJSON(w, http.StatusUnprocessableEntity, softFailure{Success: false})
		return
	}

	writeJSON(w, http.StatusOK, softFailure{Success: true})
}

// HandleDelete removes a memory. Same soft-failure contract as HandleEdit.
//
// HTTP: DELETE /memories/{id}
func (h *MemoryHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "valid authentication required"})
		return
	}

	matched, err := h.memories.Delete(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	if !matched {
		writeJSON(w, http.StatusUnprocessableEntity, softFailure{Success: false})
		return
	}

	writeJSON(w, http.StatusOK, softFailure{Success: true})
}
