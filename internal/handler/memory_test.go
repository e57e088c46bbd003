package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/sakif/memories-api/internal/apperror"
	"github.com/sakif/memories-api/internal/auth"
	"github.com/sakif/memories-api/internal/handler"
	"github.com/sakif/memories-api/internal/model"
	"github.com/sakif/memories-api/internal/repository"
	"github.com/sakif/memories-api/internal/service"
)

// memoryStore is a slice-backed repository.MemoryRepository, so handler tests
// exercise the real service layer with only the database swapped out.
type memoryStore struct {
	memories []*model.Memory
}

func (s *memoryStore) Create(_ context.Context, memory *model.Memory) error {
	memory.ID = uuid.NewString()
	stored := *memory
	s.memories = append(s.memories, &stored)
	return nil
}

func (s *memoryStore) ListByUser(_ context.Context, userID string) ([]model.Memory, error) {
	result := []model.Memory{}
	for _, m := range s.memories {
		if m.UserID == userID {
			result = append(result, *m)
		}
	}
	return result, nil
}

func (s *memoryStore) GetPublicOwned(_ context.Context, id, userID string) (*model.Memory, error) {
	for _, m := range s.memories {
		if m.ID == id && m.UserID == userID && m.IsPublic {
			result := *m
			return &result, nil
		}
	}
	return nil, apperror.NotFound("memory", id)
}

func (s *memoryStore) Update(_ context.Context, memory *model.Memory) (bool, error) {
	for _, m := range s.memories {
		if m.ID == memory.ID && m.UserID == memory.UserID {
			m.Content = memory.Content
			m.CoverURL = memory.CoverURL
			m.IsPublic = memory.IsPublic
			return true, nil
		}
	}
	return false, nil
}

func (s *memoryStore) Delete(_ context.Context, id, userID string) (bool, error) {
	for i, m := range s.memories {
		if m.ID == id && m.UserID == userID {
			s.memories = append(s.memories[:i], s.memories[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

var _ repository.MemoryRepository = (*memoryStore)(nil)

func newMemoryHandler() (*handler.MemoryHandler, *memoryStore) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	store := &memoryStore{}
	svc := service.NewMemoryService(store, logger)
	return handler.NewMemoryHandler(svc, logger), store
}

// authedRequest builds a request that looks like it already passed RequireAuth.
func authedRequest(method, target, body, userID string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req.WithContext(auth.ContextWithUserID(req.Context(), userID))
}

func seedMemory(t *testing.T, store *memoryStore, userID, content string, public bool) *model.Memory {
	t.Helper()
	memory := &model.Memory{UserID: userID, Content: content, CoverURL: "https://cdn.example/c.jpg", IsPublic: public}
	if err := store.Create(context.Background(), memory); err != nil {
		t.Fatalf("seeding memory: %v", err)
	}
	return memory
}

func TestMemoryHandler_HandleCreate(t *testing.T) {
	t.Run("valid body returns created record", func(t *testing.T) {
		h, _ := newMemoryHandler()

		req := authedRequest(http.MethodPost, "/memories",
			`{"content":"first day of the trip","coverUrl":"https://cdn.example/1.jpg","isPublic":1}`, "user-1")
		rr := httptest.NewRecorder()

		h.HandleCreate(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)

		var created model.Memory
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&created))
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, "user-1", created.UserID)
		assert.Equal(t, "first day of the trip", created.Content)
		assert.True(t, created.IsPublic)
	})

	t.Run("missing content", func(t *testing.T) {
		h, _ := newMemoryHandler()

		req := authedRequest(http.MethodPost, "/memories", `{"coverUrl":"x"}`, "user-1")
		rr := httptest.NewRecorder()

		h.HandleCreate(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("missing coverUrl", func(t *testing.T) {
		h, _ := newMemoryHandler()

		req := authedRequest(http.MethodPost, "/memories", `{"content":"x"}`, "user-1")
		rr := httptest.NewRecorder()

		h.HandleCreate(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("invalid JSON body", func(t *testing.T) {
		h, _ := newMemoryHandler()

		req := authedRequest(http.MethodPost, "/memories", `{"content":`, "user-1")
		rr := httptest.NewRecorder()

		h.HandleCreate(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("no authenticated user", func(t *testing.T) {
		h, _ := newMemoryHandler()

		req := httptest.NewRequest(http.MethodPost, "/memories",
			strings.NewReader(`{"content":"x","coverUrl":"y"}`))
		rr := httptest.NewRecorder()

		h.HandleCreate(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

// The frontend sends isPublic as whatever its form state happens to hold:
// numbers, strings, null, or nothing. The handler coerces with JavaScript
// truthiness, so "false" and "0" are TRUE (non-empty strings).
func TestMemoryHandler_IsPublicCoercion(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{`true`, true},
		{`false`, false},
		{`1`, true},
		{`0`, false},
		{`2.5`, true},
		{`null`, false},
		{`""`, false},
		{`"yes"`, true},
		{`"false"`, true},
		{`"0"`, true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			h, store := newMemoryHandler()

			body := fmt.Sprintf(`{"content":"c","coverUrl":"u","isPublic":%s}`, tt.value)
			rr := httptest.NewRecorder()

			h.HandleCreate(rr, authedRequest(http.MethodPost, "/memories", body, "user-1"))

			assert.Equal(t, http.StatusCreated, rr.Code)
			assert.Equal(t, tt.want, store.memories[0].IsPublic, "isPublic=%s", tt.value)
		})
	}

	t.Run("absent field defaults to false", func(t *testing.T) {
		h, store := newMemoryHandler()
		rr := httptest.NewRecorder()

		h.HandleCreate(rr, authedRequest(http.MethodPost, "/memories", `{"content":"c","coverUrl":"u"}`, "user-1"))

		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.False(t, store.memories[0].IsPublic)
	})
}

func TestMemoryHandler_HandleList(t *testing.T) {
	h, store := newMemoryHandler()
	seedMemory(t, store, "user-1", strings.Repeat("a", 200), true)
	seedMemory(t, store, "user-2", "someone else's", true)

	rr := httptest.NewRecorder()
	h.HandleList(rr, authedRequest(http.MethodGet, "/memories", "", "user-1"))

	assert.Equal(t, http.StatusOK, rr.Code)

	var summaries []model.MemorySummary
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&summaries))
	assert.Len(t, summaries, 1, "only the caller's memories")
	assert.Equal(t, strings.Repeat("a", 115)+"...", summaries[0].Excerpt)
}

func TestMemoryHandler_HandleList_Empty(t *testing.T) {
	h, _ := newMemoryHandler()

	rr := httptest.NewRecorder()
	h.HandleList(rr, authedRequest(http.MethodGet, "/memories", "", "user-1"))

	assert.Equal(t, http.StatusOK, rr.Code)
	// An empty timeline is [], never null — the frontend maps over it directly.
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestMemoryHandler_HandleGet(t *testing.T) {
	t.Run("public owned memory", func(t *testing.T) {
		h, store := newMemoryHandler()
		seeded := seedMemory(t, store, "user-1", "full content here", true)

		req := authedRequest(http.MethodGet, "/memories/"+seeded.ID, "", "user-1")
		req.SetPathValue("id", seeded.ID)
		rr := httptest.NewRecorder()

		h.HandleGet(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var found model.Memory
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&found))
		assert.Equal(t, "full content here", found.Content)
	})

	t.Run("private memory is 404 even for its owner", func(t *testing.T) {
		h, store := newMemoryHandler()
		seeded := seedMemory(t, store, "user-1", "private", false)

		req := authedRequest(http.MethodGet, "/memories/"+seeded.ID, "", "user-1")
		req.SetPathValue("id", seeded.ID)
		rr := httptest.NewRecorder()

		h.HandleGet(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("malformed id is 400", func(t *testing.T) {
		h, _ := newMemoryHandler()

		req := authedRequest(http.MethodGet, "/memories/not-a-uuid", "", "user-1")
		req.SetPathValue("id", "not-a-uuid")
		rr := httptest.NewRecorder()

		h.HandleGet(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestMemoryHandler_HandleEdit(t *testing.T) {
	t.Run("owned memory is replaced", func(t *testing.T) {
		h, store := newMemoryHandler()
		seeded := seedMemory(t, store, "user-1", "before", false)

		req := authedRequest(http.MethodPut, "/memories/"+seeded.ID,
			`{"content":"after","coverUrl":"https://cdn.example/new.jpg","isPublic":true}`, "user-1")
		req.SetPathValue("id", seeded.ID)
		rr := httptest.NewRecorder()

		h.HandleEdit(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"success":true}`, rr.Body.String())
		assert.Equal(t, "after", store.memories[0].Content)
		assert.True(t, store.memories[0].IsPublic)
	})

	t.Run("unknown id is a 422 soft failure", func(t *testing.T) {
		h, _ := newMemoryHandler()

		id := uuid.NewString()
		req := authedRequest(http.MethodPut, "/memories/"+id, `{"content":"c","coverUrl":"u"}`, "user-1")
		req.SetPathValue("id", id)
		rr := httptest.NewRecorder()

		h.HandleEdit(rr, req)

		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		assert.JSONEq(t, `{"success":false}`, rr.Body.String())
	})

	t.Run("someone else's memory is the same 422", func(t *testing.T) {
		h, store := newMemoryHandler()
		seeded := seedMemory(t, store, "user-1", "keep out", true)

		req := authedRequest(http.MethodPut, "/memories/"+seeded.ID, `{"content":"hijack","coverUrl":"u"}`, "user-2")
		req.SetPathValue("id", seeded.ID)
		rr := httptest.NewRecorder()

		h.HandleEdit(rr, req)

		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		assert.Equal(t, "keep out", store.memories[0].Content, "the row must be untouched")
	})

	t.Run("missing content is validation, not a soft failure", func(t *testing.T) {
		h, store := newMemoryHandler()
		seeded := seedMemory(t, store, "user-1", "before", false)

		req := authedRequest(http.MethodPut, "/memories/"+seeded.ID, `{"coverUrl":"u"}`, "user-1")
		req.SetPathValue("id", seeded.ID)
		rr := httptest.NewRecorder()

		h.HandleEdit(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestMemoryHandler_HandleDelete(t *testing.T) {
	t.Run("owned memory is removed", func(t *testing.T) {
		h, store := newMemoryHandler()
		seeded := seedMemory(t, store, "user-1", "goodbye", true)

		req := authedRequest(http.MethodDelete, "/memories/"+seeded.ID, "", "user-1")
		req.SetPathValue("id", seeded.ID)
		rr := httptest.NewRecorder()

		h.HandleDelete(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"success":true}`, rr.Body.String())
		assert.Empty(t, store.memories)
	})

	t.Run("unknown id is a 422 soft failure", func(t *testing.T) {
		h, _ := newMemoryHandler()

		id := uuid.NewString()
		req := authedRequest(http.MethodDelete, "/memories/"+id, "", "user-1")
		req.SetPathValue("id", id)
		rr := httptest.NewRecorder()

		h.HandleDelete(rr, req)

		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		assert.JSONEq(t, `{"success":false}`, rr.Body.String())
	})
}
