package store

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"faceguard/internal/auth/models"
	"faceguard/internal/platform/filestore"
	"faceguard/internal/sentinel"
	dErrors "faceguard/pkg/domain-errors"
	"faceguard/pkg/secrets"
)

// FileName is the credential file under the storage root.
const FileName = "clients.json"

// Error Contract:
// - Create returns sentinel.ErrConflict when the username is taken
// - Get, RecordLogin and FindByToken return sentinel.ErrNotFound
// - file failures are StorageError (dErrors.CodeStorage)

type clients map[string]models.Client

func emptyClients() clients {
	return clients{}
}

// FileStore persists {username: Client} in a single file replaced on every write.
type FileStore struct {
	doc *filestore.Document[clients]
}

func New(root string) *FileStore {
	return &FileStore{doc: filestore.NewDocument(filepath.Join(root, FileName), emptyClients)}
}

func (s *FileStore) Create(_ context.Context, client models.Client) error {
	err := s.doc.Update(func(c *clients) (bool, error) {
		if _, exists := (*c)[client.Username]; exists {
			return false, sentinel.ErrConflict
		}
		(*c)[client.Username] = client
		return true, nil
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return err
		}
		return dErrors.Wrap(err, dErrors.CodeStorage, "failed to write client credentials")
	}
	return nil
}

func (s *FileStore) Get(_ context.Context, username string) (*models.Client, error) {
	all, err := s.doc.Load()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStorage, "failed to read client credentials")
	}
	client, ok := all[username]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	client.Username = username
	return &client, nil
}

// RecordLogin stamps last_login and last_login_ip.
func (s *FileStore) RecordLogin(_ context.Context, username string, at time.Time, ip string) error {
	err := s.doc.Update(func(c *clients) (bool, error) {
		client, ok := (*c)[username]
		if !ok {
			return false, sentinel.ErrNotFound
		}
		client.LastLogin = &at
		client.LastLoginIP = &ip
		(*c)[username] = client
		return true, nil
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return err
		}
		return dErrors.Wrap(err, dErrors.CodeStorage, "failed to write client credentials")
	}
	return nil
}

// FindByToken scans every stored token. Each comparison is constant-time and
// the scan never stops early, so timing does not reveal which entry matched.
func (s *FileStore) FindByToken(_ context.Context, token string) (*models.Client, error) {
	all, err := s.doc.Load()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStorage, "failed to read client credentials")
	}
	var match *models.Client
	for username, client := range all {
		if secrets.Equal(client.Token, token) && match == nil {
			c := client
			c.Username = username
			match = &c
		}
	}
	if match == nil {
		return nil, sentinel.ErrNotFound
	}
	return match, nil
}

func (s *FileStore) Count(_ context.Context) (int, error) {
	all, err := s.doc.Load()
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeStorage, "failed to read client credentials")
	}
	return len(all), nil
}
