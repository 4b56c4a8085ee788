package filestore

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// maxLineSize bounds a single JSON line when reading a log back.
const maxLineSize = 1 << 20

// Log is an append-only JSON-lines file. Appends are serialized by the log's
// own mutex and written with O_APPEND.
type Log[T any] struct {
	path string
	mu   sync.Mutex
}

func NewLog[T any](path string) *Log[T] {
	return &Log[T]{path: path}
}

func (l *Log[T]) Path() string {
	return l.path
}

// Append writes v as one line.
func (l *Log[T]) Append(v T) error {
	line, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode log line: %w", err)
	}
	line = append(line, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), dirPerm); err != nil {
		return fmt.Errorf("create dir for %s: %w", l.path, err)
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, filePerm)
	if err != nil {
		return fmt.Errorf("open %s: %w", l.path, err)
	}
	if _, err := f.Write(line); err != nil {
		_ = f.Close()
		return fmt.Errorf("append %s: %w", l.path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", l.path, err)
	}
	return nil
}

// ReadAll returns every well-formed line in order. Lines that fail to decode
// (for example a torn final line after a crash) are skipped. A missing file
// yields an empty slice.
func (l *Log[T]) ReadAll() ([]T, error) {
	data, err := os.ReadFile(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", l.path, err)
	}

	out := []T{}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var v T
		if err := json.Unmarshal(line, &v); err != nil {
			continue
		}
		out = append(out, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", l.path, err)
	}
	return out, nil
}

// Tail returns at most the last n well-formed lines.
func (l *Log[T]) Tail(n int) ([]T, error) {
	all, err := l.ReadAll()
	if err != nil {
		return nil, err
	}
	if n >= 0 && len(all) > n {
		all = all[len(all)-n:]
	}
	return all, nil
}
