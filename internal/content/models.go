package content

import (
	"errors"
	"strings"
	"time"
)

// ErrInvalidCategory is returned when a category does not normalize to one
// of the two known values.
var ErrInvalidCategory = errors.New("invalid category")

// Category is one of the two fixed content groupings.
type Category string

const (
	CategoryBasic    Category = "basic"
	CategoryAdvanced Category = "advanced"
)

// ParseCategory normalizes raw input (case-insensitive) to a known category.
func ParseCategory(raw string) (Category, error) {
	switch Category(strings.ToLower(strings.TrimSpace(raw))) {
	case CategoryBasic:
		return CategoryBasic, nil
	case CategoryAdvanced:
		return CategoryAdvanced, nil
	}
	return "", ErrInvalidCategory
}

// Item is a single catalog entry. Filename references the uploaded file on
// disk; the reference is weak in the sense that the file lives outside the
// catalog's unit of persistence.
type Item struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	Category     Category   `json:"category"`
	Type         string     `json:"type"`
	Filename     string     `json:"filename,omitempty"`
	OriginalName string     `json:"originalName,omitempty"`
	UploadDate   time.Time  `json:"uploadDate"`
	UploadedBy   string     `json:"uploadedBy,omitempty"`
	UpdatedAt    *time.Time `json:"updatedAt,omitempty"`
	UpdatedBy    string     `json:"updatedBy,omitempty"`
}

// Catalog is the full collection across both categories and the unit of
// persistence: every mutation rewrites the whole structure.
type Catalog struct {
	Basic    []Item `json:"basic"`
	Advanced []Item `json:"advanced"`
}

// Bucket returns the slice for the given category.
func (c *Catalog) Bucket(cat Category) []Item {
	if cat == CategoryAdvanced {
		return c.Advanced
	}
	return c.Basic
}
