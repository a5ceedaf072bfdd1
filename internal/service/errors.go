package service

import "errors"

var (
	// ErrInvalidContentType is returned for a content type other than ARTICLE or TUTORIAL.
	ErrInvalidContentType = errors.New("invalid content type, expected ARTICLE or TUTORIAL")
	// ErrUnknownLicence is returned when a licence code is not registered.
	ErrUnknownLicence = errors.New("unknown licence")
	// ErrNodeNotFound is returned when a path does not match any node of the draft.
	ErrNodeNotFound = errors.New("no node at this path")
	// ErrDraftCorrupted is returned when a stored draft cannot be decoded.
	ErrDraftCorrupted = errors.New("draft is corrupted")
)
