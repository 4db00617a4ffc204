package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/edustore/edustore-backend/internal/content"
)

var ErrNotFound = errors.New("content item not found")

// FileRepository owns the in-memory catalog and mirrors it to a JSON file
// on every mutation. Reads and the read-modify-write of each mutation run
// under one lock, so individual operations are atomic with respect to the
// in-memory structure.
type FileRepository struct {
	mu   sync.RWMutex
	path string
	cat  content.Catalog
}

// NewFileRepository loads the catalog file when present; an absent file
// yields an empty catalog that is not written until the first mutation.
func NewFileRepository(path string) (*FileRepository, error) {
	r := &FileRepository{path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return r, nil
		}
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	if err := json.Unmarshal(data, &r.cat); err != nil {
		return nil, fmt.Errorf("parse catalog file %s: %w", path, err)
	}
	return r, nil
}

// Snapshot returns a copy of the full catalog.
func (r *FileRepository) Snapshot() content.Catalog {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return content.Catalog{
		Basic:    append([]content.Item(nil), r.cat.Basic...),
		Advanced: append([]content.Item(nil), r.cat.Advanced...),
	}
}

// ListByCategory returns a copy of one bucket.
func (r *FileRepository) ListByCategory(cat content.Category) []content.Item {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]content.Item(nil), r.cat.Bucket(cat)...)
}

// Find scans both buckets for the item with the given id.
func (r *FileRepository) Find(id string) (content.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if cat, i := r.locate(id); i >= 0 {
		return r.bucket(cat)[i], nil
	}
	return content.Item{}, ErrNotFound
}

// Insert appends the item to its category bucket and persists.
func (r *FileRepository) Insert(item content.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch item.Category {
	case content.CategoryAdvanced:
		r.cat.Advanced = append(r.cat.Advanced, item)
	default:
		r.cat.Basic = append(r.cat.Basic, item)
	}
	return r.persist()
}

// Replace swaps the stored item with the same id and persists. When the
// item's category no longer matches its current bucket it is moved: removed
// in place and appended to the other bucket.
func (r *FileRepository) Replace(item content.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cat, i := r.locate(item.ID)
	if i < 0 {
		return ErrNotFound
	}
	if cat == item.Category {
		r.bucket(cat)[i] = item
		return r.persist()
	}
	r.removeAt(cat, i)
	if item.Category == content.CategoryAdvanced {
		r.cat.Advanced = append(r.cat.Advanced, item)
	} else {
		r.cat.Basic = append(r.cat.Basic, item)
	}
	return r.persist()
}

// Delete removes the item from whichever bucket contains it, persists and
// returns the removed entry.
func (r *FileRepository) Delete(id string) (content.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cat, i := r.locate(id)
	if i < 0 {
		return content.Item{}, ErrNotFound
	}
	removed := r.bucket(cat)[i]
	r.removeAt(cat, i)
	if err := r.persist(); err != nil {
		return content.Item{}, err
	}
	return removed, nil
}

func (r *FileRepository) bucket(cat content.Category) []content.Item {
	if cat == content.CategoryAdvanced {
		return r.cat.Advanced
	}
	return r.cat.Basic
}

func (r *FileRepository) removeAt(cat content.Category, i int) {
	if cat == content.CategoryAdvanced {
		r.cat.Advanced = append(r.cat.Advanced[:i], r.cat.Advanced[i+1:]...)
	} else {
		r.cat.Basic = append(r.cat.Basic[:i], r.cat.Basic[i+1:]...)
	}
}

func (r *FileRepository) locate(id string) (content.Category, int) {
	for i := range r.cat.Basic {
		if r.cat.Basic[i].ID == id {
			return content.CategoryBasic, i
		}
	}
	for i := range r.cat.Advanced {
		if r.cat.Advanced[i].ID == id {
			return content.CategoryAdvanced, i
		}
	}
	return "", -1
}

// persist rewrites the backing file through a temp file and rename, so a
// crash mid-write cannot truncate the catalog. Caller must hold the write
// lock.
func (r *FileRepository) persist() error {
	data, err := json.MarshalIndent(&r.cat, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal catalog: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write catalog file: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("replace catalog file: %w", err)
	}
	return nil
}
