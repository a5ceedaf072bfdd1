package publish

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/emrgen/content/internal/images"
	"github.com/emrgen/content/internal/manifest"
	"github.com/emrgen/content/internal/model"
	"github.com/emrgen/content/internal/render"
	"github.com/emrgen/content/internal/tree"
)

const (
	introductionFile = "introduction.html"
	conclusionFile   = "conclusion.html"
)

// materializer writes a draft tree below dir. Paths it records are relative to dir and use
// forward slashes.
type materializer struct {
	renderer *render.Renderer
	// nil when images are not retrieved
	images *images.Session
	dir    string
}

func (m *materializer) content(ctx context.Context, content *model.PublishableContent, slug string, root *tree.Container) (*manifest.Manifest, error) {
	title := content.Title
	if title == "" {
		title = root.GetTitle()
	}

	man := &manifest.Manifest{
		Object:      manifest.ObjectContainer,
		Slug:        slug,
		Title:       title,
		Version:     manifest.CurrentVersion,
		Type:        string(content.Type),
		Licence:     content.LicenceCode,
		Description: content.Description,
		Children:    []*manifest.Node{},
	}

	if !root.HasSubContainers() {
		if err := m.page(ctx, root, title, "", slug); err != nil {
			return nil, err
		}
		man.Children = extractNodes(root)
		return man, nil
	}

	var err error
	man.Introduction, man.Conclusion, err = m.introConclusion(ctx, root, "")
	if err != nil {
		return nil, err
	}
	for _, child := range root.Children {
		c, ok := child.(*tree.Container)
		if !ok {
			return nil, fmt.Errorf("%w: %s", tree.ErrMixedChildren, root.GetSlug())
		}
		n, err := m.container(ctx, c, "")
		if err != nil {
			return nil, err
		}
		man.Children = append(man.Children, n)
	}

	return man, nil
}

// container emits a directory for a container of containers and a single page otherwise.
func (m *materializer) container(ctx context.Context, c *tree.Container, dir string) (*manifest.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	n := &manifest.Node{
		Object: manifest.ObjectContainer,
		Slug:   c.GetSlug(),
		Title:  c.GetTitle(),
	}

	if !c.HasSubContainers() {
		if err := m.page(ctx, c, c.GetTitle(), dir, c.GetSlug()); err != nil {
			return nil, err
		}
		n.Children = extractNodes(c)
		return n, nil
	}

	sub := path.Join(dir, c.GetSlug())
	if err := os.MkdirAll(m.abs(sub), 0o755); err != nil {
		return nil, err
	}

	var err error
	n.Introduction, n.Conclusion, err = m.introConclusion(ctx, c, sub)
	if err != nil {
		return nil, err
	}
	for _, child := range c.Children {
		cc, ok := child.(*tree.Container)
		if !ok {
			return nil, fmt.Errorf("%w: %s", tree.ErrMixedChildren, tree.Path(c))
		}
		cn, err := m.container(ctx, cc, sub)
		if err != nil {
			return nil, err
		}
		n.Children = append(n.Children, cn)
	}

	return n, nil
}

// extractNodes lists the extracts of a container already inlined into its page.
func extractNodes(c *tree.Container) []*manifest.Node {
	var nodes []*manifest.Node
	for _, child := range c.Children {
		nodes = append(nodes, &manifest.Node{
			Object: manifest.ObjectExtract,
			Slug:   child.GetSlug(),
			Title:  child.GetTitle(),
		})
	}
	return nodes
}

// page renders c with its introduction, extracts and conclusion into dir/name.html.
func (m *materializer) page(ctx context.Context, c *tree.Container, title, dir, name string) error {
	intro, err := m.markdown(ctx, c.Introduction)
	if err != nil {
		return err
	}
	conclusion, err := m.markdown(ctx, c.Conclusion)
	if err != nil {
		return err
	}

	page := render.Page{
		Title:        title,
		Introduction: intro,
		Conclusion:   conclusion,
	}
	for _, child := range c.Children {
		e, ok := child.(*tree.Extract)
		if !ok {
			return fmt.Errorf("%w: %s", tree.ErrMixedChildren, tree.Path(c))
		}
		body, err := m.markdown(ctx, e.Text)
		if err != nil {
			return err
		}
		page.Sections = append(page.Sections, render.Section{
			ID:    e.GetSlug(),
			Title: e.GetTitle(),
			Body:  body,
		})
	}

	out, err := m.renderer.Page(page)
	if err != nil {
		return err
	}
	return m.write(path.Join(dir, name+".html"), out)
}

// introConclusion writes the introduction and conclusion of c as files in dir and returns
// their paths, empty for a missing text.
func (m *materializer) introConclusion(ctx context.Context, c *tree.Container, dir string) (string, string, error) {
	intro, err := m.fragment(ctx, "introduction", c.Introduction, path.Join(dir, introductionFile))
	if err != nil {
		return "", "", err
	}
	conclusion, err := m.fragment(ctx, "conclusion", c.Conclusion, path.Join(dir, conclusionFile))
	if err != nil {
		return "", "", err
	}
	return intro, conclusion, nil
}

func (m *materializer) fragment(ctx context.Context, class, src, rel string) (string, error) {
	if strings.TrimSpace(src) == "" {
		return "", nil
	}
	src, err := m.markdown(ctx, src)
	if err != nil {
		return "", err
	}
	out, err := m.renderer.Fragment(class, src)
	if err != nil {
		return "", err
	}
	if err := m.write(rel, out); err != nil {
		return "", err
	}
	return rel, nil
}

func (m *materializer) markdown(ctx context.Context, src string) (string, error) {
	if m.images == nil || strings.TrimSpace(src) == "" {
		return src, nil
	}
	return m.images.RetrieveAndUpdateLinks(ctx, src)
}

func (m *materializer) write(rel, data string) error {
	return os.WriteFile(m.abs(rel), []byte(data), 0o644)
}

func (m *materializer) abs(rel string) string {
	return filepath.Join(m.dir, filepath.FromSlash(rel))
}
