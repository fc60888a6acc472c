// Package store persists local application state: the history of bulk
// operations and configuration values (including encrypted API keys).
// Note content itself lives in Anki; nothing here duplicates it.
package store

import "time"

// Run operation names as recorded in history.
const (
	OpCompact  = "compact"
	OpRollback = "rollback"
)

// Run is one completed bulk operation.
type Run struct {
	ID        string    `json:"id"`
	Op        string    `json:"op"`
	Deck      string    `json:"deck"`
	Field     string    `json:"field"`
	Provider  string    `json:"provider,omitempty"`
	Updated   int       `json:"updated"`
	Skipped   int       `json:"skipped"`
	Restored  int       `json:"restored"`
	CreatedAt time.Time `json:"created_at"`
}

// Store is the persistence contract the CLI and server program against.
type Store interface {
	RecordRun(run *Run) error
	ListRuns(limit int) ([]*Run, error)
	SetConfig(key, value string) error
	GetConfig(key string) (string, error)
	Close() error
}
