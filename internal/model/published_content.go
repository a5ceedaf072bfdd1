package model

import "time"

// PublishedContent binds a content to the version materialized on disk.
// There is at most one row per content and per public slug.
type PublishedContent struct {
	ID                uint                `gorm:"primarykey"`
	ContentID         string              `gorm:"uuid;not null;uniqueIndex"`
	Content           *PublishableContent `gorm:"foreignKey:ContentID;references:ID"`
	ContentType       ContentType         `gorm:"not null"`
	ContentPublicSlug string              `gorm:"not null;uniqueIndex"`
	ShaPublic         string              `gorm:"size:40;not null"`
	PublicationDate   time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (PublishedContent) TableName() string {
	return "published_contents"
}
