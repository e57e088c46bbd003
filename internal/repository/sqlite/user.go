package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/memories-api/internal/apperror"
	"github.com/sakif/memories-api/internal/model"
	"github.com/sakif/memories-api/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

// GetByGitHubID looks up a user by their GitHub numeric id.
// Returns apperror.ErrNotFound when this GitHub account has never logged in —
// the auth service treats that as "create one now".
func (db *DB) GetByGitHubID(ctx context.Context, githubID int64) (*model.User, error) {
	var u model.User

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, github_id, login, name, avatar_url, created_at
		 FROM users WHERE github_id = ?`,
		githubID,
	).Scan(
		&u.ID, &u.GitHubID, &u.Login, &u.Name, &u.AvatarURL, &u.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", strconv.FormatInt(githubID, 10))
		}
		return nil, fmt.Errorf("sqlite: getting user by github_id %d: %w", githubID, err)
	}

	return &u, nil
}

// Create inserts a new user row, generating the internal ID.
//
// WHY xid FOR USERS?
// xid ids are 20 chars, URL-safe, and sortable by creation time — and unlike
// memories, user ids never appear as validated UUID path parameters, so
// there's no reason to pay for the longer format.
//
// The UNIQUE constraint on github_id is the backstop against two concurrent
// first logins for the same GitHub account: one INSERT wins, the other fails
// here — at most one row ever exists per GitHub id.
func (db *DB) Create(ctx context.Context, user *model.User) error {
	user.ID = xid.New().String()
	user.CreatedAt = time.Now()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (id, github_id, login, name, avatar_url, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.GitHubID,
		user.Login,
		user.Name,
		user.AvatarURL,
		user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting user (githubID=%d): %w", user.GitHubID, err)
	}

	return nil
}

// GetByID retrieves a user by their internal ID.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (db *DB) GetByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, github_id, login, name, avatar_url, created_at
		 FROM users WHERE id = ?`,
		id,
	).Scan(
		&u.ID, &u.GitHubID, &u.Login, &u.Name, &u.AvatarURL, &u.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", id, err)
	}

	return &u, nil
}
