package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/emrgen/content/internal/model"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a write would break a unique constraint.
	ErrConflict = errors.New("record conflicts with an existing one")
)

type Store interface {
	ContentStore
	PublishedContentStore
	LicenceStore
	Transaction(ctx context.Context, f func(tx Store) error) error
	Migrate() error
}

type ContentStore interface {
	// CreateContent creates a new publishable content.
	CreateContent(ctx context.Context, content *model.PublishableContent) error
	// GetContent retrieves a content by ID.
	GetContent(ctx context.Context, id uuid.UUID) (*model.PublishableContent, error)
	// ListContents retrieves contents, all types when contentType is empty.
	ListContents(ctx context.Context, contentType model.ContentType) ([]*model.PublishableContent, error)
	// UpdateContent saves every field of a content.
	UpdateContent(ctx context.Context, content *model.PublishableContent) error
	// UpdateShaPublic sets the public version of a content, empty when unpublished.
	UpdateShaPublic(ctx context.Context, id uuid.UUID, sha string) error
	// DeleteContent soft deletes a content by ID.
	DeleteContent(ctx context.Context, id uuid.UUID) error
}

type PublishedContentStore interface {
	// SavePublishedContent creates or replaces the published record of a content.
	SavePublishedContent(ctx context.Context, published *model.PublishedContent) error
	// GetPublishedContent retrieves the published record of a content.
	GetPublishedContent(ctx context.Context, contentID uuid.UUID) (*model.PublishedContent, error)
	// GetPublishedContentBySlug retrieves the published record holding a public slug.
	GetPublishedContentBySlug(ctx context.Context, slug string) (*model.PublishedContent, error)
	// ListPublishedContents retrieves every published record.
	ListPublishedContents(ctx context.Context) ([]*model.PublishedContent, error)
	// CountPublishedContents counts published records of a content, 0 or 1.
	CountPublishedContents(ctx context.Context, contentID uuid.UUID) (int64, error)
	// DeletePublishedContent removes the published record of a content.
	DeletePublishedContent(ctx context.Context, contentID uuid.UUID) error
}

type LicenceStore interface {
	// CreateLicence creates a licence.
	CreateLicence(ctx context.Context, licence *model.Licence) error
	// GetLicence retrieves a licence by code.
	GetLicence(ctx context.Context, code string) (*model.Licence, error)
	// ListLicences retrieves every licence.
	ListLicences(ctx context.Context) ([]*model.Licence, error)
}
