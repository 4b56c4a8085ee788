package models

import "time"

// Entry schedules one file for removal once its retention period ends.
type Entry struct {
	UserID       string     `json:"user_id"`
	FilePath     string     `json:"file_path"`
	DeletionDate time.Time  `json:"deletion_date"`
	Deleted      bool       `json:"deleted"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

// DueAt reports whether the entry should be removed at now.
func (e Entry) DueAt(now time.Time) bool {
	return !e.Deleted && !e.DeletionDate.After(now)
}
