// Package vault encrypts sensitive blobs at rest with a single key that is
// created once per storage root.
package vault

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/renameio"
	"github.com/google/uuid"
	"golang.org/x/crypto/chacha20poly1305"

	dErrors "faceguard/pkg/domain-errors"
)

// BlobDir is the directory under the storage root holding sealed blobs.
const BlobDir = "blobs"

var labelSanitizer = regexp.MustCompile(`[^a-z0-9_]+`)

// Vault encrypts and decrypts with XChaCha20-Poly1305. Ciphertexts are the
// random 24-byte nonce followed by the sealed payload.
type Vault struct {
	root string
	aead cipher.AEAD
}

// New loads or creates the key under root.
func New(root string) (*Vault, error) {
	key, err := LoadOrCreateKey(root)
	if err != nil {
		return nil, err
	}
	return NewWithKey(root, key)
}

func NewWithKey(root string, key Key) (*Vault, error) {
	aead, err := chacha20poly1305.NewX(key[:])
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to initialize cipher")
	}
	return &Vault{root: root, aead: aead}, nil
}

// Encrypt seals plaintext under a fresh random nonce.
func (v *Vault) Encrypt(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, v.aead.NonceSize(), v.aead.NonceSize()+len(plaintext)+v.aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate nonce")
	}
	return v.aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Decrypt opens ciphertext produced by Encrypt. Truncated, tampered, or
// foreign-key input fails with a decryption error and no plaintext.
func (v *Vault) Decrypt(ciphertext []byte) ([]byte, error) {
	ns := v.aead.NonceSize()
	if len(ciphertext) < ns+v.aead.Overhead() {
		return nil, dErrors.New(dErrors.CodeDecryption, "ciphertext too short")
	}
	plaintext, err := v.aead.Open(nil, ciphertext[:ns], ciphertext[ns:], nil)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeDecryption, "failed to decrypt data")
	}
	return plaintext, nil
}

// Seal encrypts data and writes it to a new file under
// <root>/blobs/<user hash>/. The returned path is what Open and the
// retention schedule refer to.
func (v *Vault) Seal(_ context.Context, userID, label string, data []byte) (string, error) {
	if userID == "" {
		return "", dErrors.New(dErrors.CodeValidation, "missing required field: user_id")
	}
	ciphertext, err := v.Encrypt(data)
	if err != nil {
		return "", err
	}

	dir := filepath.Join(v.root, BlobDir, userDir(userID))
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeStorage, "failed to create blob directory")
	}
	name := uuid.NewString()
	if l := labelSanitizer.ReplaceAllString(strings.ToLower(label), "_"); l != "" {
		name += "-" + l
	}
	path := filepath.Join(dir, name+".bin")
	if err := renameio.WriteFile(path, ciphertext, 0o600); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeStorage, "failed to write sealed blob")
	}
	return path, nil
}

// Open reads and decrypts a blob written by Seal.
func (v *Vault) Open(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStorage, "failed to read sealed blob")
	}
	return v.Decrypt(data)
}

// userDir keeps raw user ids off the filesystem.
func userDir(userID string) string {
	sum := sha256.Sum256([]byte(userID))
	return hex.EncodeToString(sum[:8])
}
