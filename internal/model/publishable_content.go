package model

import (
	"time"

	"gorm.io/gorm"
)

type ContentType string

const (
	ContentTypeArticle  ContentType = "ARTICLE"
	ContentTypeTutorial ContentType = "TUTORIAL"
)

// Valid reports whether t is a known content type.
func (t ContentType) Valid() bool {
	return t == ContentTypeArticle || t == ContentTypeTutorial
}

// PublishableContent is an article or a tutorial with its draft tree.
// The draft is stored encoded (and possibly compressed) in Draft; ShaDraft identifies it.
type PublishableContent struct {
	ID          string      `gorm:"primaryKey;uuid;not null"`
	Type        ContentType `gorm:"not null"`
	Title       string      `gorm:"not null"`
	Slug        string      `gorm:"not null;index"`
	Description string
	LicenceCode string
	ShaDraft    string `gorm:"size:40"`
	ShaPublic   string `gorm:"size:40"`
	Draft       []byte
	Compression string // the compression algorithm used to encode the draft
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

func (PublishableContent) TableName() string {
	return "publishable_contents"
}

// IsPublic reports whether a version of the content is currently published.
func (c *PublishableContent) IsPublic() bool {
	return c.ShaPublic != ""
}
