package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/edustore/edustore-backend/internal/content"
	"github.com/edustore/edustore-backend/internal/content/repository"
	"github.com/edustore/edustore-backend/pkg/logger"
	"github.com/edustore/edustore-backend/pkg/metrics"
)

var (
	ErrNotFound        = errors.New("content item not found")
	ErrCategoryUnknown = errors.New("category not found")
)

// ValidationError marks a missing required field.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}

// FileStore is the slice of the upload storage the service needs for
// cleaning up files when their catalog entry goes away.
type FileStore interface {
	Remove(ctx context.Context, category, filename string) error
}

// CreateInput carries the fields of a new catalog entry. Filename and
// OriginalName are set by the caller after the upload has been stored.
type CreateInput struct {
	Title        string
	Description  string
	Category     string
	Type         string
	Filename     string
	OriginalName string
}

// UpdateInput is a partial update: nil fields keep their prior value.
type UpdateInput struct {
	Title       *string
	Description *string
	Category    *string
	Type        *string
}

// Service implements the catalog operations on top of the file-backed
// repository. Every mutation is persisted before it returns.
type Service struct {
	repo  *repository.FileRepository
	files FileStore
}

func NewService(repo *repository.FileRepository, files FileStore) *Service {
	return &Service{repo: repo, files: files}
}

// ListAll returns a snapshot of the full catalog.
func (s *Service) ListAll() content.Catalog {
	return s.repo.Snapshot()
}

// ListByCategory returns one bucket. Unknown categories fail with
// ErrCategoryUnknown.
func (s *Service) ListByCategory(raw string) ([]content.Item, error) {
	cat, err := content.ParseCategory(raw)
	if err != nil {
		return nil, ErrCategoryUnknown
	}
	return s.repo.ListByCategory(cat), nil
}

// Create validates the input, appends the item to its bucket and persists
// the catalog before returning.
func (s *Service) Create(in CreateInput, actor string) (content.Item, error) {
	if in.Title == "" {
		return content.Item{}, &ValidationError{Field: "title"}
	}
	if in.Category == "" {
		return content.Item{}, &ValidationError{Field: "category"}
	}
	if in.Type == "" {
		return content.Item{}, &ValidationError{Field: "type"}
	}
	cat, err := content.ParseCategory(in.Category)
	if err != nil {
		return content.Item{}, err
	}

	item := content.Item{
		ID:           uuid.NewString(),
		Title:        in.Title,
		Description:  in.Description,
		Category:     cat,
		Type:         in.Type,
		Filename:     in.Filename,
		OriginalName: in.OriginalName,
		UploadDate:   time.Now().UTC(),
		UploadedBy:   actor,
	}
	if err := s.repo.Insert(item); err != nil {
		return content.Item{}, err
	}
	metrics.CatalogWrites.WithLabelValues("create").Inc()
	return item, nil
}

// Update applies the supplied fields to the matching item and persists.
// When the category changes the item moves to the new bucket.
func (s *Service) Update(id string, in UpdateInput, actor string) (content.Item, error) {
	item, err := s.repo.Find(id)
	if err != nil {
		return content.Item{}, ErrNotFound
	}
	if in.Title != nil {
		item.Title = *in.Title
	}
	if in.Description != nil {
		item.Description = *in.Description
	}
	if in.Type != nil {
		item.Type = *in.Type
	}
	if in.Category != nil {
		cat, err := content.ParseCategory(*in.Category)
		if err != nil {
			return content.Item{}, err
		}
		item.Category = cat
	}
	now := time.Now().UTC()
	item.UpdatedAt = &now
	item.UpdatedBy = actor

	if err := s.repo.Replace(item); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return content.Item{}, ErrNotFound
		}
		return content.Item{}, err
	}
	metrics.CatalogWrites.WithLabelValues("update").Inc()
	return item, nil
}

// Delete removes the matching item from its bucket, persists, then removes
// the stored file best-effort. A failed file removal leaves an orphan on
// disk but does not fail the request.
func (s *Service) Delete(ctx context.Context, id string) error {
	removed, err := s.repo.Delete(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	metrics.CatalogWrites.WithLabelValues("delete").Inc()
	if s.files != nil && removed.Filename != "" {
		if err := s.files.Remove(ctx, string(removed.Category), removed.Filename); err != nil {
			logger.Warnf("orphaned upload %s/%s: %v", removed.Category, removed.Filename, err)
		}
	}
	return nil
}
