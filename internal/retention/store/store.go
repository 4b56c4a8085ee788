package store

import (
	"context"
	"path/filepath"
	"time"

	"faceguard/internal/platform/filestore"
	"faceguard/internal/retention/models"
	dErrors "faceguard/pkg/domain-errors"
)

// FileName is the schedule file under the storage root.
const FileName = "deletion_schedule.json"

// Error Contract:
// - read/write failures against the file are StorageError (dErrors.CodeStorage)

func emptySchedule() []models.Entry {
	return []models.Entry{}
}

// Store persists the deletion schedule as a JSON list, rewritten whole on
// every change.
type Store struct {
	doc *filestore.Document[[]models.Entry]
}

func New(root string) *Store {
	return &Store{
		doc: filestore.NewDocument(filepath.Join(root, FileName), emptySchedule),
	}
}

// Schedule records that path belongs to userID and must be removed at
// deleteAt. Rescheduling a pending path moves its date instead of adding a
// second entry.
func (s *Store) Schedule(_ context.Context, userID, path string, deleteAt time.Time) error {
	err := s.doc.Update(func(entries *[]models.Entry) (bool, error) {
		for i := range *entries {
			e := &(*entries)[i]
			if e.FilePath == path && !e.Deleted {
				e.UserID = userID
				e.DeletionDate = deleteAt
				return true, nil
			}
		}
		*entries = append(*entries, models.Entry{
			UserID:       userID,
			FilePath:     path,
			DeletionDate: deleteAt,
		})
		return true, nil
	})
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeStorage, "failed to schedule deletion")
	}
	return nil
}

// Due returns pending entries whose deletion date is at or before now.
func (s *Store) Due(_ context.Context, now time.Time) ([]models.Entry, error) {
	entries, err := s.doc.Load()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStorage, "failed to read deletion schedule")
	}
	due := make([]models.Entry, 0)
	for _, e := range entries {
		if e.DueAt(now) {
			due = append(due, e)
		}
	}
	return due, nil
}

// MarkDeleted flags the pending entry for path as done. It reports whether a
// pending entry existed.
func (s *Store) MarkDeleted(_ context.Context, path string, at time.Time) (bool, error) {
	found := false
	err := s.doc.Update(func(entries *[]models.Entry) (bool, error) {
		for i := range *entries {
			e := &(*entries)[i]
			if e.FilePath == path && !e.Deleted {
				e.Deleted = true
				deletedAt := at
				e.DeletedAt = &deletedAt
				found = true
				return true, nil
			}
		}
		return false, nil
	})
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeStorage, "failed to update deletion schedule")
	}
	return found, nil
}

// List returns every entry, pending and completed.
func (s *Store) List(_ context.Context) ([]models.Entry, error) {
	entries, err := s.doc.Load()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStorage, "failed to read deletion schedule")
	}
	return entries, nil
}
