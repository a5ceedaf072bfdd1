package manifest

import (
	"encoding/json"
	"errors"
	"os"
)

// FileName is the name of the manifest at the top of a content directory.
const FileName = "manifest.json"

// CurrentVersion is the schema version produced by this package.
const CurrentVersion = 2

const (
	ObjectContainer = "container"
	ObjectExtract   = "extract"
)

var (
	// ErrUnknownManifest is returned when a manifest matches no known shape.
	ErrUnknownManifest = errors.New("unknown manifest format")
	// ErrAlreadyUpgraded is returned when upgrading a manifest that is already current.
	ErrAlreadyUpgraded = errors.New("manifest is already up to date")
)

// Manifest describes the structure of a content, enough to rebuild its tree.
type Manifest struct {
	Object       string  `json:"object"`
	Slug         string  `json:"slug"`
	Title        string  `json:"title"`
	Version      int     `json:"version"`
	Type         string  `json:"type"`
	Licence      string  `json:"licence"`
	Description  string  `json:"description,omitempty"`
	Introduction string  `json:"introduction,omitempty"`
	Conclusion   string  `json:"conclusion,omitempty"`
	Children     []*Node `json:"children"`
}

// Node is a container or an extract below the manifest root.
type Node struct {
	Object       string  `json:"object"`
	Slug         string  `json:"slug"`
	Title        string  `json:"title"`
	Introduction string  `json:"introduction,omitempty"`
	Conclusion   string  `json:"conclusion,omitempty"`
	Text         string  `json:"text,omitempty"`
	Children     []*Node `json:"children,omitempty"`
}

// Marshal encodes m with indentation.
func Marshal(m *Manifest) ([]byte, error) {
	if m.Children == nil {
		m.Children = []*Node{}
	}
	return json.MarshalIndent(m, "", "  ")
}

// WriteFile writes m to path.
func WriteFile(path string, m *Manifest) error {
	data, err := Marshal(m)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadFile loads a manifest from path.
func ReadFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
