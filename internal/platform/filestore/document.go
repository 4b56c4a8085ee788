// Package filestore provides the durable file primitives shared by the
// stores: whole-file JSON documents replaced atomically, and append-only
// JSON-lines logs.
package filestore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/renameio"
)

const (
	dirPerm  = 0o700
	filePerm = 0o600
)

// Document is a JSON value persisted as a single file. Every write replaces
// the whole file (temp file, fsync, rename), so readers never observe a
// partially written document. The mutex is held across read-modify-write.
type Document[T any] struct {
	path  string
	empty func() T
	mu    sync.Mutex
}

// NewDocument returns a document stored at path. empty builds the value used
// when the file does not exist yet.
func NewDocument[T any](path string, empty func() T) *Document[T] {
	return &Document[T]{path: path, empty: empty}
}

// Path returns the file backing the document.
func (d *Document[T]) Path() string {
	return d.path
}

// Load returns the current document contents.
func (d *Document[T]) Load() (T, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.read()
}

// Update applies fn to the current contents and persists the result when fn
// reports a change. Nothing is written when fn returns false or an error.
func (d *Document[T]) Update(fn func(v *T) (bool, error)) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	v, err := d.read()
	if err != nil {
		return err
	}
	changed, err := fn(&v)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	return d.write(v)
}

func (d *Document[T]) read() (T, error) {
	data, err := os.ReadFile(d.path)
	if errors.Is(err, fs.ErrNotExist) {
		return d.empty(), nil
	}
	if err != nil {
		var zero T
		return zero, fmt.Errorf("read %s: %w", d.path, err)
	}
	if len(data) == 0 {
		return d.empty(), nil
	}
	v := d.empty()
	if err := json.Unmarshal(data, &v); err != nil {
		var zero T
		return zero, fmt.Errorf("decode %s: %w", d.path, err)
	}
	return v, nil
}

func (d *Document[T]) write(v T) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", d.path, err)
	}
	if err := os.MkdirAll(filepath.Dir(d.path), dirPerm); err != nil {
		return fmt.Errorf("create dir for %s: %w", d.path, err)
	}
	if err := renameio.WriteFile(d.path, data, filePerm); err != nil {
		return fmt.Errorf("replace %s: %w", d.path, err)
	}
	return nil
}
