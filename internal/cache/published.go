package cache

import (
	"context"

	"github.com/google/uuid"

	"github.com/emrgen/content/internal/model"
)

// PublicationCache is a cache for published records.
type PublicationCache interface {
	// GetPublished gets the published record of a content, nil on a miss.
	GetPublished(ctx context.Context, contentID uuid.UUID) (*model.PublishedContent, error)
	// SetPublished sets the published record of a content.
	SetPublished(ctx context.Context, published *model.PublishedContent) error
	// DeletePublished evicts the published record of a content.
	DeletePublished(ctx context.Context, contentID uuid.UUID) error
}

var _ PublicationCache = (*NopPublicationCache)(nil)

// NopPublicationCache never holds anything.
type NopPublicationCache struct{}

func NewNopPublicationCache() *NopPublicationCache {
	return &NopPublicationCache{}
}

func (n *NopPublicationCache) GetPublished(ctx context.Context, contentID uuid.UUID) (*model.PublishedContent, error) {
	return nil, nil
}

func (n *NopPublicationCache) SetPublished(ctx context.Context, published *model.PublishedContent) error {
	return nil
}

func (n *NopPublicationCache) DeletePublished(ctx context.Context, contentID uuid.UUID) error {
	return nil
}
