package vault

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"

	dErrors "faceguard/pkg/domain-errors"
)

// KeyFileName is the key file under the storage root.
const KeyFileName = ".key"

// KeySize is the length of the symmetric key in bytes.
const KeySize = chacha20poly1305.KeySize

// Key is the process-wide symmetric key for data at rest.
type Key [KeySize]byte

// KeyPath returns <root>/.key.
func KeyPath(root string) string {
	return filepath.Join(root, KeyFileName)
}

// LoadOrCreateKey returns the key stored under root, generating and
// persisting a new one when none exists. An existing key file is never
// replaced: a new key is written to a temp file and hard-linked into place,
// and a creator that loses the race loads the winner's key instead.
func LoadOrCreateKey(root string) (Key, error) {
	path := KeyPath(root)

	key, err := readKey(path)
	if err == nil {
		return key, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return Key{}, err
	}

	if err := os.MkdirAll(root, 0o700); err != nil {
		return Key{}, dErrors.Wrap(err, dErrors.CodeStorage, "failed to create storage root")
	}

	var fresh Key
	if _, err := io.ReadFull(rand.Reader, fresh[:]); err != nil {
		return Key{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate key")
	}

	if err := linkKey(root, path, fresh); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return readKey(path)
		}
		return Key{}, dErrors.Wrap(err, dErrors.CodeStorage, "failed to persist key")
	}
	return fresh, nil
}

func linkKey(root, path string, key Key) error {
	tmp, err := os.CreateTemp(root, ".key-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	encoded := base64.RawURLEncoding.EncodeToString(key[:])
	if _, err := tmp.WriteString(encoded); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpPath, 0o600); err != nil {
		return err
	}
	return os.Link(tmpPath, path)
}

func readKey(path string) (Key, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Key{}, err
		}
		return Key{}, dErrors.Wrap(err, dErrors.CodeStorage, "failed to read key")
	}
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimSpace(string(data)))
	if err != nil || len(raw) != KeySize {
		return Key{}, dErrors.New(dErrors.CodeStorage, fmt.Sprintf("key file %s is corrupt", path))
	}
	var key Key
	copy(key[:], raw)
	return key, nil
}
