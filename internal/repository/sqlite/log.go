package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/memories-api/internal/model"
	"github.com/sakif/memories-api/internal/repository"
)

// compile-time check that *DB implements repository.LogRepository
var _ repository.LogRepository = (*DB)(nil)

// Append inserts one audit row. There is no corresponding read method — the
// audit log is written for operators to inspect with the sqlite3 CLI, never
// consumed by the application.
func (db *DB) Append(ctx context.Context, entry *model.LogEntry) error {
	entry.ID = xid.New().String()
	entry.CreatedAt = time.Now()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO logs (id, request, response, source, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		entry.ID,
		entry.Request,
		entry.Response,
		entry.Source,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: appending log entry: %w", err)
	}

	return nil
}
