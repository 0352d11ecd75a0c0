// Package jsonstore implements flat-file JSON persistence. Each
// document type lives in its own file; every operation does a
// whole-file load, mutates in memory and atomically rewrites the file
// (temp file + rename), so a crash never leaves a half-written
// document behind.
package jsonstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ayaka-hub/ayaka-learning-bot/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// DOCUMENT
// ══════════════════════════════════════════════════════════════════════════════

// Document is one JSON file on disk. A missing file reads as the empty
// default (first run); a present-but-unparseable file is corruption and
// fails every operation until repaired by hand. Documents are never
// silently reset.
type Document struct {
	path string
	mu   sync.Mutex
}

// NewDocument creates a document handle for the given path. The parent
// directory is created if needed.
func NewDocument(path string) (*Document, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &Document{path: path}, nil
}

// Path returns the backing file path.
func (d *Document) Path() string {
	return d.path
}

// Load reads the document into out. A missing file leaves out at its
// zero value and returns nil.
func (d *Document) Load(out any) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.load(out)
}

// Update runs a load-mutate-save cycle under the document lock. The
// mutate callback sees the loaded state in out and returns an error to
// abort without writing.
func (d *Document) Update(out any, mutate func() error) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.load(out); err != nil {
		return err
	}
	if err := mutate(); err != nil {
		return err
	}
	return d.save(out)
}

func (d *Document) load(out any) error {
	data, err := os.ReadFile(d.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", d.path, shared.ErrPersistence)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s (%v): %w", d.path, err, shared.ErrCorruptDocument)
	}
	return nil
}

func (d *Document) save(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", d.path, shared.ErrPersistence)
	}

	dir := filepath.Dir(d.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(d.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", dir, shared.ErrPersistence)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", tmpName, shared.ErrPersistence)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close %s: %w", tmpName, shared.ErrPersistence)
	}

	if err := os.Rename(tmpName, d.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", d.path, shared.ErrPersistence)
	}
	return nil
}

// idKey renders a numeric identity as a JSON map key.
func idKey(id int64) string {
	return fmt.Sprintf("%d", id)
}
