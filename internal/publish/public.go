package publish

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/emrgen/content/internal/manifest"
	"github.com/emrgen/content/internal/model"
	"github.com/emrgen/content/internal/render"
)

const excerptLength = 280

// PublicNode is a node of a published tree as read back from its manifest. Paths are relative
// to the content directory.
type PublicNode struct {
	Object string
	Slug   string
	Title  string
	// ProdPath is the HTML page holding the node, a directory for containers of containers
	// and a page anchor for extracts.
	ProdPath     string
	Introduction string
	Conclusion   string
	Children     []*PublicNode
}

// PublicContent is the root of a published tree.
type PublicContent struct {
	PublicNode
	Dir         string
	Type        string
	Licence     string
	Description string
	Version     int
	// Excerpt is the start of the text of the introduction, or of the page of a flat content.
	Excerpt string
}

// LoadPublic rebuilds the public tree of a published record from its manifest.
func (p *Publisher) LoadPublic(ctx context.Context, published *model.PublishedContent) (*PublicContent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir := p.cfg.ContentDir(published.ContentPublicSlug)
	m, err := manifest.ReadFile(filepath.Join(dir, manifest.FileName))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: no output for %s", ErrNotPublished, published.ContentID)
	}
	if err != nil {
		return nil, err
	}

	pc := &PublicContent{
		PublicNode: PublicNode{
			Object:       m.Object,
			Slug:         m.Slug,
			Title:        m.Title,
			Introduction: m.Introduction,
			Conclusion:   m.Conclusion,
		},
		Dir:         dir,
		Type:        m.Type,
		Licence:     m.Licence,
		Description: m.Description,
		Version:     m.Version,
	}

	if holdsContainers(m.Children) {
		pc.ProdPath = "."
		for _, child := range m.Children {
			pc.Children = append(pc.Children, publicContainer(child, ""))
		}
	} else {
		pc.ProdPath = m.Slug + ".html"
		pc.Children = publicExtracts(m.Children, pc.ProdPath)
	}
	pc.Excerpt = excerpt(dir, pc)

	return pc, nil
}

func excerpt(dir string, pc *PublicContent) string {
	page := pc.Introduction
	if page == "" && pc.ProdPath != "." {
		page = pc.ProdPath
	}
	if page == "" {
		return ""
	}

	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(page)))
	if err != nil {
		logrus.Warnf("no excerpt for %s: %v", pc.Slug, err)
		return ""
	}
	text, err := render.Excerpt(string(data), excerptLength)
	if err != nil {
		logrus.Warnf("no excerpt for %s: %v", pc.Slug, err)
		return ""
	}
	return text
}

func publicContainer(n *manifest.Node, dir string) *PublicNode {
	pn := &PublicNode{
		Object:       n.Object,
		Slug:         n.Slug,
		Title:        n.Title,
		Introduction: n.Introduction,
		Conclusion:   n.Conclusion,
	}

	if !holdsContainers(n.Children) {
		pn.ProdPath = path.Join(dir, n.Slug+".html")
		pn.Children = publicExtracts(n.Children, pn.ProdPath)
		return pn
	}

	pn.ProdPath = path.Join(dir, n.Slug)
	for _, child := range n.Children {
		pn.Children = append(pn.Children, publicContainer(child, pn.ProdPath))
	}
	return pn
}

func publicExtracts(nodes []*manifest.Node, page string) []*PublicNode {
	var extracts []*PublicNode
	for _, n := range nodes {
		extracts = append(extracts, &PublicNode{
			Object:   n.Object,
			Slug:     n.Slug,
			Title:    n.Title,
			ProdPath: page + "#" + n.Slug,
		})
	}
	return extracts
}

func holdsContainers(nodes []*manifest.Node) bool {
	for _, n := range nodes {
		if n.Object == manifest.ObjectContainer {
			return true
		}
	}
	return false
}
