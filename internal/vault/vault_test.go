package vault

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "faceguard/pkg/domain-errors"
)

func TestLoadOrCreateKey(t *testing.T) {
	t.Run("creates then reloads the same key", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "secure_storage")

		first, err := LoadOrCreateKey(root)
		require.NoError(t, err)
		second, err := LoadOrCreateKey(root)
		require.NoError(t, err)

		assert.Equal(t, first, second)
		info, err := os.Stat(KeyPath(root))
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	})

	t.Run("no temp files left behind", func(t *testing.T) {
		root := t.TempDir()
		_, err := LoadOrCreateKey(root)
		require.NoError(t, err)

		entries, err := os.ReadDir(root)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, KeyFileName, entries[0].Name())
	})

	t.Run("concurrent creators agree on one key", func(t *testing.T) {
		root := t.TempDir()
		const n = 16
		keys := make([]Key, n)
		errs := make([]error, n)

		var wg sync.WaitGroup
		for i := range n {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				keys[i], errs[i] = LoadOrCreateKey(root)
			}(i)
		}
		wg.Wait()

		onDisk, err := LoadOrCreateKey(root)
		require.NoError(t, err)
		for i := range n {
			require.NoError(t, errs[i])
			assert.Equal(t, onDisk, keys[i])
		}
	})

	t.Run("corrupt key file is a storage error", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.WriteFile(KeyPath(root), []byte("not-a-key"), 0o600))

		_, err := LoadOrCreateKey(root)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeStorage))

		data, err := os.ReadFile(KeyPath(root))
		require.NoError(t, err)
		assert.Equal(t, "not-a-key", string(data), "existing key file must not be replaced")
	})
}

func TestEncryptDecrypt(t *testing.T) {
	v, err := New(t.TempDir())
	require.NoError(t, err)

	inputs := [][]byte{
		{},
		[]byte("x"),
		[]byte("\x00\xff binary \x10"),
		bytes.Repeat([]byte("facial_features"), 4096),
	}
	for _, in := range inputs {
		ct, err := v.Encrypt(in)
		require.NoError(t, err)
		assert.False(t, len(in) > 0 && bytes.Contains(ct, in))

		out, err := v.Decrypt(ct)
		require.NoError(t, err)
		assert.Equal(t, len(in), len(out))
		assert.True(t, bytes.Equal(in, out))
	}
}

func TestEncryptUsesFreshNonce(t *testing.T) {
	v, err := New(t.TempDir())
	require.NoError(t, err)

	a, err := v.Encrypt([]byte("same"))
	require.NoError(t, err)
	b, err := v.Encrypt([]byte("same"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestDecryptFailsClosed(t *testing.T) {
	v, err := New(t.TempDir())
	require.NoError(t, err)
	ct, err := v.Encrypt([]byte("reference image bytes"))
	require.NoError(t, err)

	tests := map[string][]byte{
		"flipped payload bit": flip(ct, len(ct)-1),
		"flipped nonce bit":   flip(ct, 0),
		"truncated":           ct[:len(ct)-1],
		"too short":           ct[:10],
		"empty":               nil,
	}
	for name, tampered := range tests {
		t.Run(name, func(t *testing.T) {
			out, err := v.Decrypt(tampered)
			require.Error(t, err)
			assert.Nil(t, out)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeDecryption))
		})
	}

	t.Run("wrong key", func(t *testing.T) {
		other, err := New(t.TempDir())
		require.NoError(t, err)
		_, err = other.Decrypt(ct)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeDecryption))
	})
}

func TestSealAndOpen(t *testing.T) {
	root := t.TempDir()
	v, err := New(root)
	require.NoError(t, err)

	path, err := v.Seal(context.Background(), "user/../../etc", "Reference Image", []byte("jpeg"))
	require.NoError(t, err)

	rel, err := filepath.Rel(filepath.Join(root, BlobDir), path)
	require.NoError(t, err)
	assert.False(t, strings.HasPrefix(rel, ".."))
	assert.NotContains(t, path, "etc")
	assert.True(t, strings.HasSuffix(path, "-reference_image.bin"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "jpeg")

	plain, err := v.Open(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg"), plain)

	_, err = v.Seal(context.Background(), "", "x", []byte("y"))
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func flip(b []byte, i int) []byte {
	out := append([]byte(nil), b...)
	out[i] ^= 0x01
	return out
}
