package publish

import "errors"

var (
	// ErrInvalidDraft is returned when the draft tree breaks a structural rule.
	ErrInvalidDraft = errors.New("invalid draft")
	// ErrNotPublished is returned when a content has no published record.
	ErrNotPublished = errors.New("content is not published")
	// ErrSlugTaken is returned when another content is already published under the slug.
	ErrSlugTaken = errors.New("public slug is used by another content")
	// ErrInvalidContent is returned when the content record cannot be published.
	ErrInvalidContent = errors.New("invalid content")
)
