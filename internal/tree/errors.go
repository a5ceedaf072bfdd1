package tree

import "errors"

var (
	// ErrTooDeep is returned when a container would be nested below MaxContainerDepth.
	ErrTooDeep = errors.New("container nesting is too deep")
	// ErrMixedChildren is returned when a container would hold both containers and extracts.
	ErrMixedChildren = errors.New("a container cannot hold both containers and extracts")
	// ErrEmptyTree is returned when the root has no children.
	ErrEmptyTree = errors.New("content is empty")
	// ErrDuplicateSlug is returned when two siblings share a slug.
	ErrDuplicateSlug = errors.New("duplicate slug among siblings")
	// ErrInvalidSlug is returned for empty slugs or slugs containing a path separator.
	ErrInvalidSlug = errors.New("invalid slug")
	// ErrReservedSlug is returned when a child slug collides with a file of the published output.
	ErrReservedSlug = errors.New("slug is reserved")
	// ErrInvalidMove is returned when a node cannot be moved next to the requested target.
	ErrInvalidMove = errors.New("node cannot be moved here")
	// ErrUnknownObject is returned when decoding a node with an unknown object kind.
	ErrUnknownObject = errors.New("unknown object kind")
)
