package users

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/edustore/edustore-backend/internal/models"
)

var (
	ErrNotFound      = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already taken")
)

// Repository defines persistence operations for users
type Repository interface {
	GetByUsername(username string) (*models.User, error)
	Create(u *models.User) error
	HasAdmin() (bool, error)
}

// FileRepository keeps the credential store in memory and mirrors it to a
// JSON file on every mutation. The file is the unit of persistence: each
// write rewrites it completely.
type FileRepository struct {
	mu    sync.RWMutex
	path  string
	users []models.User
}

// NewFileRepository loads the users file when it exists; otherwise the store
// starts empty and the file is not created until the first mutation.
func NewFileRepository(path string) (*FileRepository, error) {
	r := &FileRepository{path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return r, nil
		}
		return nil, fmt.Errorf("read users file: %w", err)
	}
	if err := json.Unmarshal(data, &r.users); err != nil {
		return nil, fmt.Errorf("parse users file %s: %w", path, err)
	}
	return r, nil
}

func (r *FileRepository) GetByUsername(username string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.users {
		if r.users[i].Username == username {
			u := r.users[i]
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (r *FileRepository) Create(u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.users {
		if r.users[i].Username == u.Username {
			return ErrUsernameTaken
		}
	}
	r.users = append(r.users, *u)
	if err := r.persist(); err != nil {
		r.users = r.users[:len(r.users)-1]
		return err
	}
	return nil
}

func (r *FileRepository) HasAdmin() (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.users {
		if r.users[i].Role == models.RoleAdmin {
			return true, nil
		}
	}
	return false, nil
}

// persist rewrites the whole file via a temp file and rename so a crash
// mid-write cannot truncate the store. Caller must hold the write lock.
func (r *FileRepository) persist() error {
	data, err := json.MarshalIndent(r.users, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal users: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write users file: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("replace users file: %w", err)
	}
	return nil
}
