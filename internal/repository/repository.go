// Package repository declares the persistence interfaces the service layer
// programs against. The sqlite subpackage provides the only implementation;
// tests substitute in-memory mocks.
package repository

import (
	"context"

	"github.com/sakif/memories-api/internal/model"
)

// UserRepository persists user accounts keyed by their GitHub identity.
type UserRepository interface {
	// GetByGitHubID returns the user for a GitHub numeric id, or
	// apperror.ErrNotFound if no such account has registered yet.
	GetByGitHubID(ctx context.Context, githubID int64) (*model.User, error)

	// Create inserts a new user, filling in ID and CreatedAt.
	Create(ctx context.Context, user *model.User) error

	// GetByID returns the user for an internal id.
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// MemoryRepository persists journal entries. Every method that touches an
// existing row takes the owner's userID alongside the memory id — ownership
// is enforced in the WHERE clause, not checked after the fact.
type MemoryRepository interface {
	// Create inserts a new memory, filling in ID and CreatedAt.
	Create(ctx context.Context, memory *model.Memory) error

	// ListByUser returns all memories owned by userID, oldest first.
	ListByUser(ctx context.Context, userID string) ([]model.Memory, error)

	// GetPublicOwned returns the memory only if it exists, belongs to
	// userID, AND is public; otherwise apperror.ErrNotFound.
	GetPublicOwned(ctx context.Context, id, userID string) (*model.Memory, error)

	// Update replaces content/coverUrl/isPublic of the row matching
	// (id, userID). The bool reports whether such a row existed — a miss
	// is a normal outcome, not an error. The error is reserved for real
	// storage failures.
	Update(ctx context.Context, memory *model.Memory) (bool, error)

	// Delete removes the row matching (id, userID), with the same
	// matched-vs-failed split as Update.
	Delete(ctx context.Context, id, userID string) (bool, error)
}

// LogRepository appends request/response audit rows. There is deliberately no
// read method — the application never consumes its own audit log.
type LogRepository interface {
	Append(ctx context.Context, entry *model.LogEntry) error
}
