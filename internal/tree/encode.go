package tree

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

const (
	ObjectContainer = "container"
	ObjectExtract   = "extract"
)

// wireNode is the serialized form of a draft node.
type wireNode struct {
	Object       string      `json:"object" yaml:"object"`
	Slug         string      `json:"slug" yaml:"slug"`
	Title        string      `json:"title" yaml:"title"`
	Introduction string      `json:"introduction,omitempty" yaml:"introduction,omitempty"`
	Conclusion   string      `json:"conclusion,omitempty" yaml:"conclusion,omitempty"`
	Text         string      `json:"text,omitempty" yaml:"text,omitempty"`
	Children     []*wireNode `json:"children,omitempty" yaml:"children,omitempty"`
}

// Encode serializes the draft tree. The output is deterministic for a given tree.
func Encode(root *Container) ([]byte, error) {
	return json.Marshal(toWire(root))
}

// Decode rebuilds a draft tree from Encode output.
func Decode(data []byte) (*Container, error) {
	var w wireNode
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	return rootFromWire(&w)
}

// DecodeYAML reads a hand written draft description. Missing slugs are derived from titles.
func DecodeYAML(data []byte) (*Container, error) {
	var w wireNode
	if err := yaml.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	if w.Object == "" {
		w.Object = ObjectContainer
	}
	return rootFromWire(&w)
}

// Version returns the content addressed identifier of the tree snapshot.
func Version(root *Container) (string, error) {
	data, err := Encode(root)
	if err != nil {
		return "", err
	}
	sum := sha1.Sum(data)
	return hex.EncodeToString(sum[:]), nil
}

func toWire(n Node) *wireNode {
	switch v := n.(type) {
	case *Container:
		w := &wireNode{
			Object:       ObjectContainer,
			Slug:         v.Slug,
			Title:        v.Title,
			Introduction: v.Introduction,
			Conclusion:   v.Conclusion,
		}
		for _, child := range v.Children {
			w.Children = append(w.Children, toWire(child))
		}
		return w
	case *Extract:
		return &wireNode{Object: ObjectExtract, Slug: v.Slug, Title: v.Title, Text: v.Text}
	}
	return nil
}

func rootFromWire(w *wireNode) (*Container, error) {
	if w.Object != ObjectContainer {
		return nil, fmt.Errorf("%w: root must be a container, got %q", ErrUnknownObject, w.Object)
	}
	n, err := fromWire(w)
	if err != nil {
		return nil, err
	}
	return n.(*Container), nil
}

func fromWire(w *wireNode) (Node, error) {
	s := w.Slug
	if s == "" {
		s = Slugify(w.Title)
	}

	object := w.Object
	if object == "" {
		object = ObjectContainer
		if len(w.Children) == 0 && w.Text != "" {
			object = ObjectExtract
		}
	}

	switch object {
	case ObjectContainer:
		c := NewContainer(w.Title, s)
		c.Introduction = w.Introduction
		c.Conclusion = w.Conclusion
		for _, cw := range w.Children {
			child, err := fromWire(cw)
			if err != nil {
				return nil, err
			}
			if cw.Slug == "" {
				// derived slugs are made unique the same way AddContainer/AddExtract do
				child.setSlug(c.uniqueSlug(child.GetSlug()))
			}
			c.Append(child)
		}
		return c, nil
	case ObjectExtract:
		return NewExtract(w.Title, s, w.Text), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownObject, w.Object)
}
