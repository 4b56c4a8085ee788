package store

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"faceguard/internal/consent/models"
	"faceguard/internal/platform/filestore"
	"faceguard/internal/sentinel"
	dErrors "faceguard/pkg/domain-errors"
)

// FileName is the ledger file under the storage root.
const FileName = "consents.json"

// DefaultRetentionDays is used by ScheduleDeletion when the user has no
// consent record to take a retention period from.
const DefaultRetentionDays = 30

// Error Contract:
// - GetUserConsent returns sentinel.ErrNotFound when no record exists
// - read/write failures against the file are StorageError (dErrors.CodeStorage)

// DeletionScheduler receives files that must be removed once a user's
// retention period has elapsed.
type DeletionScheduler interface {
	Schedule(ctx context.Context, userID, path string, deleteAt time.Time) error
}

type document struct {
	Consents []models.Record `json:"consents"`
}

func emptyDocument() document {
	return document{Consents: []models.Record{}}
}

// Ledger persists consent records as {"consents": [...]} in one file. Every
// mutation rewrites the whole file under the document's writer lock.
type Ledger struct {
	doc       *filestore.Document[document]
	scheduler DeletionScheduler
	now       func() time.Time
}

type Option func(*Ledger)

func WithScheduler(s DeletionScheduler) Option {
	return func(l *Ledger) {
		l.scheduler = s
	}
}

func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		if now != nil {
			l.now = now
		}
	}
}

func New(root string, opts ...Option) *Ledger {
	l := &Ledger{
		doc: filestore.NewDocument(filepath.Join(root, FileName), emptyDocument),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// RecordConsent upserts by user id. An existing record keeps its position.
func (l *Ledger) RecordConsent(_ context.Context, record models.Record) error {
	err := l.doc.Update(func(d *document) (bool, error) {
		for i := range d.Consents {
			if d.Consents[i].UserID == record.UserID {
				d.Consents[i] = record
				return true, nil
			}
		}
		d.Consents = append(d.Consents, record)
		return true, nil
	})
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeStorage, "failed to write consent ledger")
	}
	return nil
}

// GetAllConsents returns every record in ledger order.
func (l *Ledger) GetAllConsents(_ context.Context) ([]models.Record, error) {
	d, err := l.doc.Load()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStorage, "failed to read consent ledger")
	}
	return d.Consents, nil
}

func (l *Ledger) GetUserConsent(_ context.Context, userID string) (*models.Record, error) {
	d, err := l.doc.Load()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStorage, "failed to read consent ledger")
	}
	for _, r := range d.Consents {
		if r.UserID == userID {
			rec := r
			return &rec, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

// RevokeConsent sets revoked on the user's record and reports whether one
// existed. A missing user leaves the file untouched.
func (l *Ledger) RevokeConsent(_ context.Context, userID string) (bool, error) {
	found := false
	err := l.doc.Update(func(d *document) (bool, error) {
		for i := range d.Consents {
			if d.Consents[i].UserID == userID {
				found = true
				if d.Consents[i].Revoked {
					return false, nil
				}
				d.Consents[i].Revoked = true
				return true, nil
			}
		}
		return false, nil
	})
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeStorage, "failed to write consent ledger")
	}
	return found, nil
}

// ScheduleDeletion hands path to the retention scheduler, due when the
// user's consent retention period ends.
func (l *Ledger) ScheduleDeletion(ctx context.Context, userID, path string) error {
	if l.scheduler == nil {
		return dErrors.New(dErrors.CodeInternal, "no deletion scheduler configured")
	}
	deleteAt := l.now().AddDate(0, 0, DefaultRetentionDays)
	rec, err := l.GetUserConsent(ctx, userID)
	switch {
	case err == nil:
		deleteAt = rec.RetainUntil()
	case !errors.Is(err, sentinel.ErrNotFound):
		return err
	}
	if err := l.scheduler.Schedule(ctx, userID, path, deleteAt); err != nil {
		return dErrors.Wrap(err, dErrors.CodeStorage, "failed to schedule deletion")
	}
	return nil
}

// Count returns the number of records in the ledger.
func (l *Ledger) Count(ctx context.Context) (int, error) {
	all, err := l.GetAllConsents(ctx)
	if err != nil {
		return 0, err
	}
	return len(all), nil
}
