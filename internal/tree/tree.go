package tree

import (
	"strconv"
	"strings"

	"github.com/gosimple/slug"
)

const (
	// MaxContainerDepth is the deepest level a container can live at (root=0, part=1, chapter=2).
	MaxContainerDepth = 2
	// MaxDepth is the deepest level of any node, extracts included.
	MaxDepth = MaxContainerDepth + 1
)

// Node is either a *Container or an *Extract.
type Node interface {
	GetSlug() string
	GetTitle() string
	Parent() *Container
	setParent(c *Container)
	setSlug(s string)
}

type node struct {
	Slug   string
	Title  string
	parent *Container
}

func (n *node) GetSlug() string {
	return n.Slug
}

func (n *node) GetTitle() string {
	return n.Title
}

func (n *node) Parent() *Container {
	return n.parent
}

func (n *node) setParent(c *Container) {
	n.parent = c
}

func (n *node) setSlug(s string) {
	n.Slug = s
}

// Container holds an ordered list of children and optional introduction and conclusion.
type Container struct {
	node
	Introduction string
	Conclusion   string
	Children     []Node
}

// Extract is a leaf holding markdown text.
type Extract struct {
	node
	Text string
}

// NewRoot creates the root container of a draft tree.
func NewRoot(title string) *Container {
	return &Container{node: node{Title: title, Slug: Slugify(title)}}
}

// NewContainer creates a detached container with an explicit slug.
func NewContainer(title, slug string) *Container {
	return &Container{node: node{Title: title, Slug: slug}}
}

// NewExtract creates a detached extract with an explicit slug.
func NewExtract(title, slug, text string) *Extract {
	return &Extract{node: node{Title: title, Slug: slug}, Text: text}
}

// Slugify turns a title into a url safe slug.
func Slugify(title string) string {
	s := slug.Make(title)
	if s == "" {
		return "untitled"
	}
	return s
}

// AddContainer appends a new container below c with a slug unique among c's children.
func (c *Container) AddContainer(title string) (*Container, error) {
	if Depth(c)+1 > MaxContainerDepth {
		return nil, ErrTooDeep
	}
	if c.HasExtracts() {
		return nil, ErrMixedChildren
	}

	child := &Container{node: node{Title: title, Slug: c.uniqueSlug(Slugify(title))}}
	child.setParent(c)
	c.Children = append(c.Children, child)
	return child, nil
}

// AddExtract appends a new extract below c with a slug unique among c's children.
func (c *Container) AddExtract(title, text string) (*Extract, error) {
	if c.HasSubContainers() {
		return nil, ErrMixedChildren
	}

	child := &Extract{node: node{Title: title, Slug: c.uniqueSlug(Slugify(title))}, Text: text}
	child.setParent(c)
	c.Children = append(c.Children, child)
	return child, nil
}

// Append attaches an existing detached node as the last child of c without any checks.
// Callers are expected to run Validate on the resulting tree.
func (c *Container) Append(n Node) {
	n.setParent(c)
	c.Children = append(c.Children, n)
}

// Remove detaches n from c. It reports whether n was a child of c.
func (c *Container) Remove(n Node) bool {
	for i, child := range c.Children {
		if child == n {
			c.Children = append(c.Children[:i:i], c.Children[i+1:]...)
			n.setParent(nil)
			return true
		}
	}
	return false
}

// HasSubContainers reports whether c holds at least one container.
func (c *Container) HasSubContainers() bool {
	for _, child := range c.Children {
		if _, ok := child.(*Container); ok {
			return true
		}
	}
	return false
}

// HasExtracts reports whether c holds at least one extract.
func (c *Container) HasExtracts() bool {
	for _, child := range c.Children {
		if _, ok := child.(*Extract); ok {
			return true
		}
	}
	return false
}

// Child returns the direct child with the given slug.
func (c *Container) Child(slug string) Node {
	for _, child := range c.Children {
		if child.GetSlug() == slug {
			return child
		}
	}
	return nil
}

// reservedSlugs name the files and directories the published output places next to children.
var reservedSlugs = map[string]struct{}{
	"introduction":      {},
	"conclusion":        {},
	"introduction.html": {},
	"conclusion.html":   {},
	"images":            {},
	"manifest.json":     {},
}

func reserved(s string) bool {
	_, ok := reservedSlugs[s]
	return ok
}

// Reserved reports whether s cannot be the slug of a child node.
func Reserved(s string) bool {
	return reserved(s) || strings.HasPrefix(s, ".")
}

func (c *Container) uniqueSlug(base string) string {
	candidate := base
	for i := 1; reserved(candidate) || c.Child(candidate) != nil; i++ {
		candidate = base + "-" + strconv.Itoa(i)
	}
	return candidate
}

// Root walks up to the root of n.
func Root(n Node) *Container {
	var root *Container
	if c, ok := n.(*Container); ok {
		root = c
	}
	for p := n.Parent(); p != nil; p = p.Parent() {
		root = p
	}
	return root
}

// Depth is the number of ancestors of n. The root has depth 0.
func Depth(n Node) int {
	depth := 0
	for p := n.Parent(); p != nil; p = p.Parent() {
		depth++
	}
	return depth
}

// Height is the length of the longest chain of descendants below n.
func Height(n Node) int {
	c, ok := n.(*Container)
	if !ok {
		return 0
	}
	height := 0
	for _, child := range c.Children {
		if h := Height(child) + 1; h > height {
			height = h
		}
	}
	return height
}

// ContainerHeight is like Height but only counts container levels.
func ContainerHeight(n Node) int {
	c, ok := n.(*Container)
	if !ok {
		return 0
	}
	height := 0
	for _, child := range c.Children {
		if sub, ok := child.(*Container); ok {
			if h := ContainerHeight(sub) + 1; h > height {
				height = h
			}
		}
	}
	return height
}

// Path returns the slugs from the first level below the root down to n, joined with "/".
// The root has an empty path.
func Path(n Node) string {
	var parts []string
	for cur := n; cur != nil && cur.Parent() != nil; cur = cur.Parent() {
		parts = append(parts, cur.GetSlug())
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "/")
}

// IsDescendant reports whether n lives strictly below ancestor.
func IsDescendant(n Node, ancestor *Container) bool {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if p == ancestor {
			return true
		}
	}
	return false
}

// Walk visits every node below root in depth first pre-order. The root itself is skipped.
func Walk(root *Container, fn func(n Node)) {
	for _, child := range root.Children {
		fn(child)
		if c, ok := child.(*Container); ok {
			Walk(c, fn)
		}
	}
}

// Find returns the node at the given path, or nil.
func Find(root *Container, path string) Node {
	if path == "" {
		return root
	}
	var cur Node = root
	for _, part := range strings.Split(path, "/") {
		c, ok := cur.(*Container)
		if !ok {
			return nil
		}
		cur = c.Child(part)
		if cur == nil {
			return nil
		}
	}
	return cur
}
