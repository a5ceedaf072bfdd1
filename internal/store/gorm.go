package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/emrgen/content/internal/model"
)

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{
		db: db,
	}
}

var _ Store = (*GormStore)(nil)

type GormStore struct {
	db *gorm.DB
}

func (g *GormStore) CreateContent(ctx context.Context, content *model.PublishableContent) error {
	return g.db.WithContext(ctx).Create(content).Error
}

func (g *GormStore) GetContent(ctx context.Context, id uuid.UUID) (*model.PublishableContent, error) {
	var content model.PublishableContent
	err := g.db.WithContext(ctx).Where("id = ?", id.String()).First(&content).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &content, nil
}

func (g *GormStore) ListContents(ctx context.Context, contentType model.ContentType) ([]*model.PublishableContent, error) {
	var contents []*model.PublishableContent
	query := g.db.WithContext(ctx).Order("created_at desc")
	if contentType != "" {
		query = query.Where("type = ?", contentType)
	}
	err := query.Find(&contents).Error
	return contents, err
}

func (g *GormStore) UpdateContent(ctx context.Context, content *model.PublishableContent) error {
	return g.db.WithContext(ctx).Save(content).Error
}

func (g *GormStore) UpdateShaPublic(ctx context.Context, id uuid.UUID, sha string) error {
	res := g.db.WithContext(ctx).Model(&model.PublishableContent{}).
		Where("id = ?", id.String()).
		Update("sha_public", sha)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (g *GormStore) DeleteContent(ctx context.Context, id uuid.UUID) error {
	return g.db.WithContext(ctx).Where("id = ?", id.String()).Delete(&model.PublishableContent{}).Error
}

// SavePublishedContent upserts on the content id, so a content never has two published records.
func (g *GormStore) SavePublishedContent(ctx context.Context, published *model.PublishedContent) error {
	logrus.Infof("saving published content %s version %s", published.ContentID, published.ShaPublic)

	err := g.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "content_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"content_type", "content_public_slug", "sha_public", "publication_date", "updated_at",
		}),
	}).Omit("Content").Create(published).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: public slug %q", ErrConflict, published.ContentPublicSlug)
	}
	if err != nil {
		return err
	}

	// the id is not reliably returned on conflict
	var saved model.PublishedContent
	if err := g.db.WithContext(ctx).Where("content_id = ?", published.ContentID).First(&saved).Error; err != nil {
		return err
	}
	*published = saved
	return nil
}

func (g *GormStore) GetPublishedContent(ctx context.Context, contentID uuid.UUID) (*model.PublishedContent, error) {
	var published model.PublishedContent
	err := g.db.WithContext(ctx).Where("content_id = ?", contentID.String()).First(&published).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &published, nil
}

func (g *GormStore) GetPublishedContentBySlug(ctx context.Context, slug string) (*model.PublishedContent, error) {
	var published model.PublishedContent
	err := g.db.WithContext(ctx).Where("content_public_slug = ?", slug).First(&published).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &published, nil
}

func (g *GormStore) ListPublishedContents(ctx context.Context) ([]*model.PublishedContent, error) {
	var published []*model.PublishedContent
	err := g.db.WithContext(ctx).Order("publication_date desc").Find(&published).Error
	return published, err
}

func (g *GormStore) CountPublishedContents(ctx context.Context, contentID uuid.UUID) (int64, error) {
	var count int64
	err := g.db.WithContext(ctx).Model(&model.PublishedContent{}).Where("content_id = ?", contentID.String()).Count(&count).Error
	return count, err
}

func (g *GormStore) DeletePublishedContent(ctx context.Context, contentID uuid.UUID) error {
	return g.db.WithContext(ctx).Where("content_id = ?", contentID.String()).Delete(&model.PublishedContent{}).Error
}

func (g *GormStore) CreateLicence(ctx context.Context, licence *model.Licence) error {
	return g.db.WithContext(ctx).Create(licence).Error
}

func (g *GormStore) GetLicence(ctx context.Context, code string) (*model.Licence, error) {
	var licence model.Licence
	err := g.db.WithContext(ctx).Where("code = ?", code).First(&licence).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &licence, nil
}

func (g *GormStore) ListLicences(ctx context.Context) ([]*model.Licence, error) {
	var licences []*model.Licence
	err := g.db.WithContext(ctx).Order("code").Find(&licences).Error
	return licences, err
}

func (g *GormStore) Migrate() error {
	return model.Migrate(g.db)
}

func (g *GormStore) Transaction(ctx context.Context, f func(tx Store) error) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return f(&GormStore{db: tx})
	})
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
