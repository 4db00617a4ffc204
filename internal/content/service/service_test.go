package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/edustore/edustore-backend/internal/content"
	"github.com/edustore/edustore-backend/internal/content/repository"
)

type fakeFiles struct {
	removed []string
	err     error
}

func (f *fakeFiles) Remove(_ context.Context, category, filename string) error {
	f.removed = append(f.removed, category+"/"+filename)
	return f.err
}

func newTestService(t *testing.T) (*Service, *fakeFiles) {
	t.Helper()
	repo, err := repository.NewFileRepository(filepath.Join(t.TempDir(), "content.json"))
	require.NoError(t, err)
	files := &fakeFiles{}
	return NewService(repo, files), files
}

func TestCreateNormalizesCategory(t *testing.T) {
	svc, _ := newTestService(t)

	item, err := svc.Create(CreateInput{Title: "Intro", Category: "Basic", Type: "pdf"}, "admin")
	require.NoError(t, err)
	require.Equal(t, content.CategoryBasic, item.Category)
	require.NotEmpty(t, item.ID)
	require.Equal(t, "admin", item.UploadedBy)

	list, err := svc.ListByCategory("BASIC")
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, item.ID, list[0].ID)

	all := svc.ListAll()
	require.Len(t, all.Basic, 1)
	require.Empty(t, all.Advanced)
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newTestService(t)

	var verr *ValidationError
	_, err := svc.Create(CreateInput{Category: "basic", Type: "pdf"}, "")
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "title", verr.Field)

	_, err = svc.Create(CreateInput{Title: "x", Category: "basic"}, "")
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "type", verr.Field)

	_, err = svc.Create(CreateInput{Title: "x", Category: "expert", Type: "pdf"}, "")
	require.ErrorIs(t, err, content.ErrInvalidCategory)
}

func TestListByCategoryUnknown(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.ListByCategory("unknown")
	require.ErrorIs(t, err, ErrCategoryUnknown)
}

func TestUpdatePartial(t *testing.T) {
	svc, _ := newTestService(t)
	item, err := svc.Create(CreateInput{Title: "Intro", Description: "d", Category: "basic", Type: "pdf"}, "admin")
	require.NoError(t, err)

	title := "Intro v2"
	got, err := svc.Update(item.ID, UpdateInput{Title: &title}, "editor")
	require.NoError(t, err)
	require.Equal(t, "Intro v2", got.Title)
	require.Equal(t, "d", got.Description)
	require.Equal(t, content.CategoryBasic, got.Category)
	require.NotNil(t, got.UpdatedAt)
	require.Equal(t, "editor", got.UpdatedBy)
}

func TestUpdateMovesBucket(t *testing.T) {
	svc, _ := newTestService(t)
	item, err := svc.Create(CreateInput{Title: "Intro", Category: "basic", Type: "pdf"}, "admin")
	require.NoError(t, err)

	cat := "Advanced"
	got, err := svc.Update(item.ID, UpdateInput{Category: &cat}, "admin")
	require.NoError(t, err)
	require.Equal(t, content.CategoryAdvanced, got.Category)

	all := svc.ListAll()
	require.Empty(t, all.Basic)
	require.Len(t, all.Advanced, 1)
}

func TestUpdateErrors(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Update("missing", UpdateInput{}, "admin")
	require.ErrorIs(t, err, ErrNotFound)

	item, err := svc.Create(CreateInput{Title: "Intro", Category: "basic", Type: "pdf"}, "admin")
	require.NoError(t, err)
	bad := "expert"
	_, err = svc.Update(item.ID, UpdateInput{Category: &bad}, "admin")
	require.ErrorIs(t, err, content.ErrInvalidCategory)
}

func TestDeleteRemovesStoredFile(t *testing.T) {
	svc, files := newTestService(t)
	item, err := svc.Create(CreateInput{Title: "Intro", Category: "basic", Type: "pdf", Filename: "123-abc.pdf"}, "admin")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), item.ID))
	require.Equal(t, []string{"basic/123-abc.pdf"}, files.removed)

	require.ErrorIs(t, svc.Delete(context.Background(), item.ID), ErrNotFound)
}

func TestDeleteWithoutFileSkipsCleanup(t *testing.T) {
	svc, files := newTestService(t)
	item, err := svc.Create(CreateInput{Title: "Intro", Category: "basic", Type: "link"}, "admin")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), item.ID))
	require.Empty(t, files.removed)
}
