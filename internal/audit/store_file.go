package audit

import (
	"context"

	"faceguard/internal/platform/filestore"
)

// FileStore appends events to a JSON-lines file.
type FileStore struct {
	log *filestore.Log[Event]
}

func NewFileStore(path string) *FileStore {
	return &FileStore{log: filestore.NewLog[Event](path)}
}

func (s *FileStore) Append(_ context.Context, event Event) error {
	return s.log.Append(event)
}

func (s *FileStore) ListByUser(_ context.Context, userID string) ([]Event, error) {
	all, err := s.log.ReadAll()
	if err != nil {
		return nil, err
	}
	out := make([]Event, 0)
	for _, e := range all {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}
