package storage

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrDisabled = errors.New("storage disabled")

// Config configures storage.
//
// Driver values:
//   - "file": JSON Lines file at Path
//   - "sqlite": SQLite database file at Path
//
// If Driver is empty or "none", storage is disabled.
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// RunRecord is one recorded scenario run.
// Keep it compact and schema-stable.
type RunRecord struct {
	ID        uuid.UUID     `json:"id"`
	At        time.Time     `json:"at"`
	Scenario  string        `json:"scenario"`
	Source    string        `json:"source,omitempty"`
	Trace     []string      `json:"trace"`
	Errors    []string      `json:"errors,omitempty"`
	Executed  uint64        `json:"executed"`
	Cancelled uint64        `json:"cancelled"`
	Matched   bool          `json:"matched"`
	Took      time.Duration `json:"took"`
}

// NewRunRecord stamps a record with a fresh ID and the current time.
func NewRunRecord(scenario string) RunRecord {
	return RunRecord{ID: uuid.New(), At: time.Now().UTC(), Scenario: scenario}
}
