// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, enforces rules, orchestrates
//	Repository (Data layer)  → reads/writes to the database
//
// Handlers only know about HTTP (status codes, headers, JSON). Services only
// know about business rules (ownership, visibility, projections). Neither
// knows about SQL.
//
// DEPENDENCY INJECTION:
// MemoryService takes a repository.MemoryRepository (interface), NOT a
// *sqlite.DB. Tests pass an in-memory mock; main wires the real thing. The
// service doesn't import the sqlite package at all.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/sakif/memories-api/internal/apperror"
	"github.com/sakif/memories-api/internal/model"
	"github.com/sakif/memories-api/internal/repository"
)

// excerptLength is how much of the content the list view shows.
const excerptLength = 115

// MemoryService handles business logic for journal entries. Every operation
// takes the authenticated user's id — ownership scoping is not optional.
type MemoryService struct {
	repo   repository.MemoryRepository
	logger *slog.Logger
}

// NewMemoryService creates a MemoryService. The caller decides WHICH
// repository implementation to use (SQLite, or a mock in tests).
func NewMemoryService(repo repository.MemoryRepository, logger *slog.Logger) *MemoryService {
	return &MemoryService{
		repo:   repo,
		logger: logger,
	}
}

// List returns the caller's timeline, oldest first, projected to summaries.
//
// THE EXCERPT RULE:
// excerpt = first 115 characters of content + "...", and the suffix is
// appended even when the content is shorter than 115 characters. Truncating
// "hi" to "hi..." looks odd, but the frontend renders excerpts uniformly and
// was built against exactly this output — so it is the contract.
func (s *MemoryService) List(ctx context.Context, userID string) ([]model.MemorySummary, error) {
	memories, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list memories",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing memories: %w", err)
	}

	summaries := make([]model.MemorySummary, 0, len(memories))
	for _, m := range memories {
		summaries = append(summaries, model.MemorySummary{
			ID:       m.ID,
			CoverURL: m.CoverURL,
			Excerpt:  excerpt(m.Content),
		})
	}

	return summaries, nil
}

// excerpt truncates content to the first excerptLength characters and always
// appends "...". Runes, not bytes — cutting a multi-byte character in half
// would produce invalid UTF-8.
func excerpt(content string) string {
	runes := []rune(content)
	if len(runes) > excerptLength {
		runes = runes[:excerptLength]
	}
	return string(runes) + "..."
}

// Get returns the full memory for the detail view.
//
// The id must parse as a UUID (ValidationError otherwise — no point querying
// for something that cannot be a memory id). The repository then requires the
// row to be owned by the caller AND public; anything else is NotFound.
func (s *MemoryService) Get(ctx context.Context, id, userID string) (*model.Memory, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperror.ValidationFailed("id", "memory id must be a valid UUID")
	}

	return s.repo.GetPublicOwned(ctx, id, userID)
}

// Create persists a new memory owned by the caller and returns the created
// record verbatim (including the generated id and createdAt).
func (s *MemoryService) Create(ctx context.Context, userID, content, coverURL string, isPublic bool) (*model.Memory, error) {
	memory := &model.Memory{
		UserID:   userID,
		Content:  content,
		CoverURL: coverURL,
		IsPublic: isPublic,
	}

	if err := s.repo.Create(ctx, memory); err != nil {
		s.logger.Error("failed to create memory",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating memory: %w", err)
	}

	s.logger.Info("memory created",
		slog.String("id", memory.ID),
		slog.String("userID", userID),
		slog.Bool("isPublic", memory.IsPublic),
	)

	return memory, nil
}

// Edit fully replaces content/coverUrl/isPublic of the memory matching
// (id, caller).
//
// SOFT FAILURE:
// The bool is false when no owned row matched — the handler turns that into
// a 422 {"success":false} rather than an error. A miss here is a routine
// outcome (stale frontend state, or someone probing ids), so it is modeled
// as a result, not an exception; the error return is only for the database
// itself failing.
func (s *MemoryService) Edit(ctx context.Context, id, userID, content, coverURL string, isPublic bool) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, apperror.ValidationFailed("id", "memory id must be a valid UUID")
	}

	matched, err := s.repo.Update(ctx, &model.Memory{
		ID:       id,
		UserID:   userID,
		Content:  content,
		CoverURL: coverURL,
		IsPublic: isPublic,
	})
	if err != nil {
		s.logger.Error("failed to update memory",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return false, fmt.Errorf("updating memory: %w", err)
	}

	if matched {
		s.logger.Info("memory updated", slog.String("id", id), slog.String("userID", userID))
	}

	return matched, nil
}

// Delete removes the memory matching (id, caller). Same soft-failure
// contract as Edit.
func (s *MemoryService) Delete(ctx context.Context, id, userID string) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, apperror.ValidationFailed("id", "memory id must be a valid UUID")
	}

	matched, err := s.repo.Delete(ctx, id, userID)
	if err != nil {
		s.logger.Error("failed to delete memory",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return false, fmt.Errorf("deleting memory: %w", err)
	}

	if matched {
		s.logger.Info("memory deleted", slog.String("id", id), slog.String("userID", userID))
	}

	return matched, nil
}
