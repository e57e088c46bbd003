// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other languages,
// but without inheritance. Go favours composition over inheritance.
package model

import "time"

// Memory represents a single journal entry: a piece of text, a cover image or
// video URL, and a visibility flag.
//
// The `json:"..."` tags tell Go's encoding/json package how to serialize/deserialize
// this struct to/from JSON. This is called a "struct tag" — metadata attached to fields.
//
// WHY A UUID FOR ID?
// Memory IDs are exposed in URLs (GET /memories/{id}) and the route layer
// validates them as UUIDs before touching the database, so the repository
// generates uuid.V4 strings rather than xid (which User uses). An id that
// fails uuid.Parse can be rejected without a query.
//
// OWNERSHIP:
// UserID is a foreign key to users.id. The pair (ID, UserID) is unique and is
// the required key for update/delete — even a guessed valid id cannot mutate
// another user's row, because the owner is always part of the WHERE clause.
type Memory struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Content   string    `json:"content"`
	CoverURL  string    `json:"coverUrl"`
	IsPublic  bool      `json:"isPublic"`
	CreatedAt time.Time `json:"createdAt"`
}

// MemorySummary is the projection returned by the list endpoint.
//
// The list view never exposes full content — only an excerpt of the first 115
// characters with a "..." suffix. The suffix is appended unconditionally, even
// when the content is shorter than 115 characters. That matches the behaviour
// the frontend was built against, so we keep it.
type MemorySummary struct {
	ID       string `json:"id"`
	CoverURL string `json:"coverUrl"`
	Excerpt  string `json:"excerpt"`
}
