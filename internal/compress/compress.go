package compress

import (
	"errors"
	"fmt"
)

// ErrUnknownCompression is returned for an unsupported compression name.
var ErrUnknownCompression = errors.New("unknown compression")

const (
	NameNone   = "none"
	NameGZip   = "gzip"
	NameBrotli = "brotli"
	NameLZ4    = "lz4"
)

// Compress encodes and decodes stored draft blobs.
type Compress interface {
	Name() string
	Encode(data []byte) ([]byte, error)
	Decode(data []byte) ([]byte, error)
}

// New returns the codec registered under name. An empty name means no compression.
func New(name string) (Compress, error) {
	switch name {
	case "", NameNone:
		return NewNop(), nil
	case NameGZip:
		return NewGZip(), nil
	case NameBrotli:
		return NewBrotli(), nil
	case NameLZ4:
		return NewLZ4(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCompression, name)
}
