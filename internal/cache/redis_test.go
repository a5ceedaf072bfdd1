package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emrgen/content/internal/model"
)

func newRedisCache(t *testing.T) (*RedisPublicationCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	c := NewRedisPublicationCache(RedisOptions{Addr: mr.Addr(), TTL: time.Minute})
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestRedisPublicationCache_SetGet(t *testing.T) {
	c, mr := newRedisCache(t)
	id := uuid.New()
	published := &model.PublishedContent{
		ContentID:         id.String(),
		ContentType:       model.ContentTypeTutorial,
		ContentPublicSlug: "go-tour",
		ShaPublic:         "abc123",
		PublicationDate:   time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}

	require.NoError(t, c.SetPublished(context.TODO(), published))

	got, err := c.GetPublished(context.TODO(), id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, published.ContentPublicSlug, got.ContentPublicSlug)
	assert.Equal(t, published.ShaPublic, got.ShaPublic)
	assert.Equal(t, published.ContentType, got.ContentType)
	assert.True(t, published.PublicationDate.Equal(got.PublicationDate))

	assert.Equal(t, "abc123", mr.HGet(publishedVersionHash, id.String()))
	assert.Equal(t, time.Minute, mr.TTL(publishedKey(id.String())))
}

func TestRedisPublicationCache_Miss(t *testing.T) {
	c, _ := newRedisCache(t)

	got, err := c.GetPublished(context.TODO(), uuid.New())
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisPublicationCache_Delete(t *testing.T) {
	c, mr := newRedisCache(t)
	id := uuid.New()
	require.NoError(t, c.SetPublished(context.TODO(), &model.PublishedContent{ContentID: id.String(), ShaPublic: "abc"}))

	require.NoError(t, c.DeletePublished(context.TODO(), id))

	got, err := c.GetPublished(context.TODO(), id)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.False(t, mr.Exists(publishedKey(id.String())))
	assert.Empty(t, mr.HGet(publishedVersionHash, id.String()))

	// deleting what is not cached is not an error
	assert.NoError(t, c.DeletePublished(context.TODO(), uuid.New()))
}

func TestRedisPublicationCache_Unreachable(t *testing.T) {
	c, mr := newRedisCache(t)
	mr.Close()

	_, err := c.GetPublished(context.TODO(), uuid.New())
	assert.Error(t, err)
}
