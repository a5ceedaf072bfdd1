package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emrgen/content/internal/model"
	"github.com/emrgen/content/internal/tester"
)

func newContent(t *testing.T, s Store) *model.PublishableContent {
	content := &model.PublishableContent{
		ID:       uuid.New().String(),
		Type:     model.ContentTypeArticle,
		Title:    "An article",
		Slug:     "an-article",
		ShaDraft: "da39a3ee5e6b4b0d3255bfef95601890afd80709",
	}
	require.NoError(t, s.CreateContent(context.TODO(), content))
	return content
}

func TestGormStore_Content(t *testing.T) {
	s := NewGormStore(tester.TestDB(t))
	ctx := context.TODO()
	content := newContent(t, s)
	id := uuid.MustParse(content.ID)

	got, err := s.GetContent(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, content.Title, got.Title)
	assert.False(t, got.IsPublic())

	require.NoError(t, s.UpdateShaPublic(ctx, id, content.ShaDraft))
	got, err = s.GetContent(ctx, id)
	require.NoError(t, err)
	assert.True(t, got.IsPublic())

	list, err := s.ListContents(ctx, model.ContentTypeTutorial)
	require.NoError(t, err)
	assert.Empty(t, list)
	list, err = s.ListContents(ctx, "")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, s.DeleteContent(ctx, id))
	_, err = s.GetContent(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.UpdateShaPublic(ctx, uuid.New(), ""), ErrNotFound)
}

func TestGormStore_PublishedContent(t *testing.T) {
	s := NewGormStore(tester.TestDB(t))
	ctx := context.TODO()
	content := newContent(t, s)
	id := uuid.MustParse(content.ID)

	_, err := s.GetPublishedContent(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)

	first := &model.PublishedContent{
		ContentID:         content.ID,
		ContentType:       content.Type,
		ContentPublicSlug: content.Slug,
		ShaPublic:         "1111111111111111111111111111111111111111",
		PublicationDate:   time.Now(),
	}
	require.NoError(t, s.SavePublishedContent(ctx, first))
	assert.NotZero(t, first.ID)

	second := &model.PublishedContent{
		ContentID:         content.ID,
		ContentType:       content.Type,
		ContentPublicSlug: "renamed",
		ShaPublic:         "2222222222222222222222222222222222222222",
		PublicationDate:   time.Now(),
	}
	require.NoError(t, s.SavePublishedContent(ctx, second))
	assert.Equal(t, first.ID, second.ID)

	count, err := s.CountPublishedContents(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	got, err := s.GetPublishedContent(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.ContentPublicSlug)
	assert.Equal(t, second.ShaPublic, got.ShaPublic)

	bySlug, err := s.GetPublishedContentBySlug(ctx, "renamed")
	require.NoError(t, err)
	assert.Equal(t, content.ID, bySlug.ContentID)
	_, err = s.GetPublishedContentBySlug(ctx, content.Slug)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.DeletePublishedContent(ctx, id))
	count, err = s.CountPublishedContents(ctx, id)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestGormStore_TransactionRollback(t *testing.T) {
	s := NewGormStore(tester.TestDB(t))
	ctx := context.TODO()
	content := newContent(t, s)
	boom := errors.New("boom")

	err := s.Transaction(ctx, func(tx Store) error {
		err := tx.SavePublishedContent(ctx, &model.PublishedContent{
			ContentID:         content.ID,
			ContentType:       content.Type,
			ContentPublicSlug: content.Slug,
			ShaPublic:         content.ShaDraft,
		})
		if err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	count, err := s.CountPublishedContents(ctx, uuid.MustParse(content.ID))
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestGormStore_Licence(t *testing.T) {
	s := NewGormStore(tester.TestDB(t))
	ctx := context.TODO()

	require.NoError(t, s.CreateLicence(ctx, &model.Licence{Code: "CC BY", Title: "Creative Commons BY"}))
	got, err := s.GetLicence(ctx, "CC BY")
	require.NoError(t, err)
	assert.Equal(t, "Creative Commons BY", got.Title)

	_, err = s.GetLicence(ctx, "CC0")
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := s.ListLicences(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestGormStore_PublishedSlugIsUnique(t *testing.T) {
	s := NewGormStore(tester.TestDB(t))
	ctx := context.TODO()
	first := newContent(t, s)
	second := newContent(t, s)

	require.NoError(t, s.SavePublishedContent(ctx, &model.PublishedContent{
		ContentID:         first.ID,
		ContentType:       first.Type,
		ContentPublicSlug: "same",
		ShaPublic:         first.ShaDraft,
	}))
	err := s.SavePublishedContent(ctx, &model.PublishedContent{
		ContentID:         second.ID,
		ContentType:       second.Type,
		ContentPublicSlug: "same",
		ShaPublic:         second.ShaDraft,
	})
	assert.ErrorIs(t, err, ErrConflict)

	holder, err := s.GetPublishedContentBySlug(ctx, "same")
	require.NoError(t, err)
	assert.Equal(t, first.ID, holder.ContentID)
	count, err := s.CountPublishedContents(ctx, uuid.MustParse(second.ID))
	require.NoError(t, err)
	assert.Zero(t, count)
}
