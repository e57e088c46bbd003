package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sakif/memories-api/internal/apperror"
	"github.com/sakif/memories-api/internal/model"
	"github.com/sakif/memories-api/internal/repository"
)

// COMPILE-TIME INTERFACE CHECK:
// `var _ X = (*Y)(nil)` assigns a nil *Y to a variable of interface type X.
// If *Y doesn't implement X, the compiler errors immediately — instead of at
// some distant call site. A Go best practice for any interface implementation.
var _ repository.MemoryRepository = (*DB)(nil)

// Create inserts a new memory into the database.
//
// ID GENERATION:
// Memories get uuid.V4 ids because the route layer validates path ids as
// UUIDs before querying. Users keep xid ids (see user.go) — the two schemes
// never mix because a memory id is only ever looked up as a memory id.
//
// POINTER RECEIVER (*model.Memory):
// We take a pointer so the caller's struct ends up with the generated ID and
// CreatedAt — the created record is returned to the client verbatim.
func (db *DB) Create(ctx context.Context, memory *model.Memory) error {
	memory.ID = uuid.NewString()
	memory.CreatedAt = time.Now()

	// PARAMETERIZED QUERIES (the ? placeholders):
	// Never build SQL with string concatenation — the driver escapes these
	// values, which is what prevents SQL injection.
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO memories (id, user_id, content, cover_url, is_public, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		memory.ID,
		memory.UserID,
		memory.Content,
		memory.CoverURL,
		memory.IsPublic,
		memory.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating memory: %w", err)
	}

	return nil
}

// ListByUser returns all memories owned by userID, ordered by creation time
// ascending — the timeline reads oldest to newest.
func (db *DB) ListByUser(ctx context.Context, userID string) ([]model.Memory, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, content, cover_url, is_public, created_at
		 FROM memories
		 WHERE user_id = ?
		 ORDER BY created_at ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing memories: %w", err)
	}
	// sql.Rows holds a connection from the pool — forgetting Close() leaks it.
	defer rows.Close()

	memories := []model.Memory{}
	for rows.Next() {
		var m model.Memory
		if err := rows.Scan(
			&m.ID, &m.UserID, &m.Content, &m.CoverURL, &m.IsPublic, &m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning memory row: %w", err)
		}
		memories = append(memories, m)
	}

	// rows.Err() catches errors that happened DURING iteration (e.g. the
	// connection dropping mid-result-set).
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating memories: %w", err)
	}

	return memories, nil
}

// GetPublicOwned retrieves a single memory by id, but only when it belongs to
// userID AND is marked public.
//
// Yes, that means an owner cannot fetch their own private memory by id — the
// detail view is the shareable view, and the frontend reads private entries
// from the list endpoint instead. The WHERE clause encodes all three
// conditions so a miss on any of them is indistinguishable from the row not
// existing.
func (db *DB) GetPublicOwned(ctx context.Context, id, userID string) (*model.Memory, error) {
	var m model.Memory

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, user_id, content, cover_url, is_public, created_at
		 FROM memories
		 WHERE id = ? AND user_id = ? AND is_public = 1`,
		id, userID,
	).Scan(
		&m.ID, &m.UserID, &m.Content, &m.CoverURL, &m.IsPublic, &m.CreatedAt,
	)
	if err != nil {
		// sql.ErrNoRows is a sentinel, not a real failure — translate it to
		// the domain's NotFound so the handler can answer 404.
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("memory", id)
		}
		return nil, fmt.Errorf("sqlite: getting memory %s: %w", id, err)
	}

	return &m, nil
}

// Update replaces content, cover_url and is_public of the row matching
// (id, user_id). The returned bool is false when no such row exists — which
// covers both "no memory with this id" and "memory owned by someone else",
// deliberately without distinguishing them.
//
// RowsAffected() is how we learn whether the WHERE clause matched: zero rows
// means a miss, and a miss is an ordinary answer here, not an error. Errors
// are reserved for the database itself failing.
func (db *DB) Update(ctx context.Context, memory *model.Memory) (bool, error) {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE memories
		 SET content = ?, cover_url = ?, is_public = ?
		 WHERE id = ? AND user_id = ?`,
		memory.Content,
		memory.CoverURL,
		memory.IsPublic,
		memory.ID,
		memory.UserID,
	)
	if err != nil {
		return false, fmt.Errorf("sqlite: updating memory %s: %w", memory.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// Delete removes the row matching (id, user_id). Same matched-vs-failed
// contract as Update.
func (db *DB) Delete(ctx context.Context, id, userID string) (bool, error) {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM memories WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	if err != nil {
		return false, fmt.Errorf("sqlite: deleting memory %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}
