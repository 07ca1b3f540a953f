package types

import (
	"time"

	"github.com/google/uuid"
)

// StatusEntry is one row of an aggregate's append-only status audit log.
type StatusEntry struct {
	Status    string     `json:"status"`
	Timestamp time.Time  `json:"timestamp"`
	Actor     *uuid.UUID `json:"actor,omitempty"`
	Notes     string     `json:"notes,omitempty"`
}

// StatusHistory lives as a jsonb column. Entries are only ever appended;
// seeding happens at aggregate creation so the log is never empty.
type StatusHistory []StatusEntry

// Append returns the history with a new entry stamped at now.
func (h StatusHistory) Append(status string, actor *uuid.UUID, notes string, now time.Time) StatusHistory {
	return append(h, StatusEntry{
		Status:    status,
		Timestamp: now,
		Actor:     actor,
		Notes:     notes,
	})
}

// Latest returns the most recent entry, or a zero entry for an empty log.
func (h StatusHistory) Latest() StatusEntry {
	if len(h) == 0 {
		return StatusEntry{}
	}
	return h[len(h)-1]
}
