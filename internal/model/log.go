package model

import "time"

// LogEntry is one row of the request/response audit log.
//
// Every API invocation that passes through the audit middleware produces
// exactly one entry: the stringified request, the response body, and a source
// identifier (method + route pattern, e.g. "PUT /memories/{id}").
//
// Entries are write-once and append-only. Nothing in the application ever
// reads them back — they exist purely for observability, so there are no
// foreign keys and no indexes beyond the primary key.
type LogEntry struct {
	ID        string    `json:"id"`
	Request   string    `json:"request"`
	Response  string    `json:"response"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"createdAt"`
}
