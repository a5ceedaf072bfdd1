package render

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	xhtml "golang.org/x/net/html"
)

// Renderer turns markdown bodies of a draft tree into HTML fragments.
type Renderer struct {
	md goldmark.Markdown
}

// NewRenderer creates a renderer with GFM tables, strikethrough and autolinks enabled.
func NewRenderer() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Footnote),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(gmhtml.WithXHTML()),
		),
	}
}

// Markdown renders a markdown body to an HTML fragment.
func (r *Renderer) Markdown(src string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Section is one titled part of a combined page.
type Section struct {
	ID    string
	Title string
	Body  string
}

// Page is a combined HTML document made of sections framed by an optional introduction and conclusion.
type Page struct {
	Title        string
	Introduction string
	Sections     []Section
	Conclusion   string
}

// Page renders every markdown body of p and assembles them into one HTML document.
func (r *Renderer) Page(p Page) (string, error) {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\" />\n")
	fmt.Fprintf(&b, "<title>%s</title>\n</head>\n<body>\n", html.EscapeString(p.Title))
	fmt.Fprintf(&b, "<h1>%s</h1>\n", html.EscapeString(p.Title))

	if err := r.block(&b, "introduction", p.Introduction); err != nil {
		return "", err
	}
	for _, s := range p.Sections {
		fmt.Fprintf(&b, "<section id=\"%s\">\n<h2>%s</h2>\n", html.EscapeString(s.ID), html.EscapeString(s.Title))
		body, err := r.Markdown(s.Body)
		if err != nil {
			return "", fmt.Errorf("render section %q: %w", s.ID, err)
		}
		b.WriteString(body)
		b.WriteString("</section>\n")
	}
	if err := r.block(&b, "conclusion", p.Conclusion); err != nil {
		return "", err
	}

	b.WriteString("</body>\n</html>\n")
	return b.String(), nil
}

// Fragment renders a single markdown body wrapped in a div with the given class.
func (r *Renderer) Fragment(class, src string) (string, error) {
	var b strings.Builder
	if err := r.block(&b, class, src); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (r *Renderer) block(b *strings.Builder, class, src string) error {
	if strings.TrimSpace(src) == "" {
		return nil
	}
	body, err := r.Markdown(src)
	if err != nil {
		return fmt.Errorf("render %s: %w", class, err)
	}
	fmt.Fprintf(b, "<div class=\"%s\">\n%s</div>\n", class, body)
	return nil
}

// Excerpt returns at most n runes of the visible text of doc, whitespace collapsed.
func Excerpt(doc string, n int) (string, error) {
	text, err := Text(doc)
	if err != nil {
		return "", err
	}
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= n {
		return text, nil
	}
	return strings.TrimSpace(string(runes[:n])) + "…", nil
}

// Text extracts the visible text of an HTML document.
func Text(doc string) (string, error) {
	root, err := xhtml.Parse(strings.NewReader(doc))
	if err != nil {
		return "", err
	}
	var b strings.Builder
	var walk func(n *xhtml.Node)
	walk = func(n *xhtml.Node) {
		if n.Type == xhtml.ElementNode && (n.Data == "head" || n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == xhtml.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				if b.Len() > 0 {
					b.WriteByte(' ')
				}
				b.WriteString(t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return b.String(), nil
}
