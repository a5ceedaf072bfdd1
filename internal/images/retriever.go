package images

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/sirupsen/logrus"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

// Dir is the directory, relative to the content directory, holding retrieved images.
const Dir = "images"

// ErrForbiddenImage is returned for image links that may not be read from the local disk.
var ErrForbiddenImage = errors.New("image link not allowed")

// local files are only copied with one of these extensions
var imageExts = map[string]struct{}{
	".png": {}, ".jpg": {}, ".jpeg": {}, ".gif": {}, ".webp": {},
	".bmp": {}, ".tif": {}, ".tiff": {}, ".svg": {},
}

// converted to png after retrieval
var decoders = map[string]func(io.Reader) (image.Image, error){
	".gif":  gif.Decode,
	".webp": webp.Decode,
	".bmp":  bmp.Decode,
	".tif":  tiff.Decode,
	".tiff": tiff.Decode,
	".svg":  rasterizeSVG,
}

type Option func(*Retriever)

// WithHTTPClient sets the client used to download remote images.
func WithHTTPClient(client *http.Client) Option {
	return func(r *Retriever) {
		r.client = client
	}
}

// WithBaseDir sets the directory relative image paths are resolved against.
func WithBaseDir(dir string) Option {
	return func(r *Retriever) {
		r.baseDir = dir
	}
}

// WithMaxWidth downscales converted images wider than width.
func WithMaxWidth(width int) Option {
	return func(r *Retriever) {
		r.maxWidth = width
	}
}

// Retriever copies the images referenced by markdown next to the published content.
type Retriever struct {
	client   *http.Client
	baseDir  string
	maxWidth int
}

func NewRetriever(opts ...Option) *Retriever {
	r := &Retriever{
		client: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RetrieveAndUpdateLinks stores every image of md under dir/images and returns md with the
// links pointing to the stored copies. Images that cannot be fetched are logged and their
// link is rewritten anyway.
func (r *Retriever) RetrieveAndUpdateLinks(ctx context.Context, md string, dir string) (string, error) {
	return r.NewSession(dir).RetrieveAndUpdateLinks(ctx, md)
}

// Session stores the images of several markdown bodies under the same directory. A link met
// twice is stored once and two different links never share a file.
type Session struct {
	r     *Retriever
	dir   string
	names map[string]string
	used  map[string]struct{}
}

// NewSession starts a session storing images under dir/images.
func (r *Retriever) NewSession(dir string) *Session {
	return &Session{
		r:     r,
		dir:   filepath.Join(dir, Dir),
		names: make(map[string]string),
		used:  make(map[string]struct{}),
	}
}

// RetrieveAndUpdateLinks works like Retriever.RetrieveAndUpdateLinks within the session.
func (s *Session) RetrieveAndUpdateLinks(ctx context.Context, md string) (string, error) {
	links, linked := destinations(md)
	if len(links) == 0 {
		return md, nil
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", err
	}

	for _, link := range links {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if _, ok := s.names[link]; ok {
			continue
		}

		name := uniqueName(fileName(link), s.taken)
		final, err := s.r.retrieve(ctx, link, s.dir, name)
		if err != nil {
			return "", err
		}
		s.used[name] = struct{}{}
		s.used[final] = struct{}{}
		s.names[link] = final
	}

	return rewrite(md, s.names, linked), nil
}

// taken reports whether name is already handed out or already present on disk.
func (s *Session) taken(name string) bool {
	if _, ok := s.used[name]; ok {
		return true
	}
	_, err := os.Lstat(filepath.Join(s.dir, name))
	return err == nil
}

// Links returns the image destinations of md in document order, skipping inline data and
// images already stored next to the content.
func Links(md string) []string {
	links, _ := destinations(md)
	return links
}

// destinations returns the image destinations to retrieve and the destinations of ordinary links.
func destinations(md string) ([]string, map[string]struct{}) {
	source := []byte(md)
	doc := goldmark.DefaultParser().Parse(text.NewReader(source))

	var links []string
	seen := make(map[string]struct{})
	linked := make(map[string]struct{})
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Link:
			linked[string(node.Destination)] = struct{}{}
		case *ast.Image:
			dest := string(node.Destination)
			if dest == "" || strings.HasPrefix(dest, "data:") || strings.HasPrefix(dest, Dir+"/") {
				return ast.WalkContinue, nil
			}
			if _, ok := seen[dest]; !ok {
				seen[dest] = struct{}{}
				links = append(links, dest)
			}
		}
		return ast.WalkContinue, nil
	})

	return links, linked
}

// rewrite points inline image destinations and image reference definitions to the stored
// copies. Ordinary links keep their destination, and so does a reference definition that an
// ordinary link also uses.
func rewrite(md string, names map[string]string, linked map[string]struct{}) string {
	var b strings.Builder
	b.Grow(len(md))

	for i := 0; i < len(md); {
		if md[i] != ']' {
			b.WriteByte(md[i])
			i++
			continue
		}

		rest := md[i+1:]
		switch {
		case strings.HasPrefix(rest, "("):
			if link, ok := destinationAt(rest[1:], names); ok && imageLabel(md[:i+1]) {
				b.WriteString("](" + path.Join(Dir, names[link]))
				i += 2 + len(link)
				continue
			}
		case strings.HasPrefix(rest, ": "):
			if link, ok := destinationAt(rest[2:], names); ok {
				if _, shared := linked[link]; !shared {
					b.WriteString("]: " + path.Join(Dir, names[link]))
					i += 3 + len(link)
					continue
				}
			}
		}

		b.WriteByte(']')
		i++
	}

	return b.String()
}

// destinationAt returns the destination starting s when it is one of names.
func destinationAt(s string, names map[string]string) (string, bool) {
	end := strings.IndexAny(s, " \t\r\n)")
	if end < 0 {
		end = len(s)
	}
	link := s[:end]
	_, ok := names[link]
	return link, ok
}

// imageLabel reports whether s, ending with the closing bracket of a label, is an image label.
func imageLabel(s string) bool {
	depth := 0
	for i := len(s) - 1; i >= 0; i-- {
		switch s[i] {
		case ']':
			depth++
		case '[':
			depth--
			if depth == 0 {
				return i > 0 && s[i-1] == '!'
			}
		}
	}
	return false
}

// retrieve stores link as dir/name and returns the final file name, which differs from name
// when the image was converted.
func (r *Retriever) retrieve(ctx context.Context, link, dir, name string) (string, error) {
	data, err := r.fetch(ctx, link)
	if err != nil {
		logrus.Warnf("image %s not retrieved: %v", link, err)
		return name, nil
	}

	dst := filepath.Join(dir, name)
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(name))
	decode, ok := decoders[ext]
	if !ok {
		return name, nil
	}

	img, err := decode(bytes.NewReader(data))
	if err != nil {
		logrus.Warnf("image %s not converted: %v", link, err)
		return name, nil
	}
	img = r.downscale(img)

	pngName := strings.TrimSuffix(name, filepath.Ext(name)) + ".png"
	if err := writePNG(filepath.Join(dir, pngName), img); err != nil {
		return "", err
	}
	if err := os.Remove(dst); err != nil {
		return "", err
	}

	return pngName, nil
}

func (r *Retriever) fetch(ctx context.Context, link string) ([]byte, error) {
	u, err := url.Parse(link)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		local, err := r.localPath(u)
		if err != nil {
			return nil, err
		}
		return os.ReadFile(local)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, err
	}
	res, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", res.Status)
	}
	return io.ReadAll(res.Body)
}

// localPath resolves a relative image link inside the base directory. Symlinks are followed
// before the containment check.
func (r *Retriever) localPath(u *url.URL) (string, error) {
	if u.Scheme != "" || u.Host != "" || u.Opaque != "" {
		return "", fmt.Errorf("%w: unsupported scheme %q", ErrForbiddenImage, u.Scheme)
	}
	if r.baseDir == "" {
		return "", fmt.Errorf("%w: local images are disabled", ErrForbiddenImage)
	}
	if strings.HasPrefix(u.Path, "/") || !filepath.IsLocal(filepath.FromSlash(u.Path)) {
		return "", fmt.Errorf("%w: %q is not a relative path below %s", ErrForbiddenImage, u.Path, r.baseDir)
	}
	if _, ok := imageExts[strings.ToLower(path.Ext(u.Path))]; !ok {
		return "", fmt.Errorf("%w: %q is not an image", ErrForbiddenImage, u.Path)
	}

	base, err := filepath.Abs(r.baseDir)
	if err != nil {
		return "", err
	}
	if base, err = filepath.EvalSymlinks(base); err != nil {
		return "", err
	}
	local, err := filepath.EvalSymlinks(filepath.Join(base, filepath.FromSlash(u.Path)))
	if err != nil {
		return "", err
	}

	rel, err := filepath.Rel(base, local)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q is outside %s", ErrForbiddenImage, u.Path, r.baseDir)
	}
	return local, nil
}

func (r *Retriever) downscale(img image.Image) image.Image {
	b := img.Bounds()
	if r.maxWidth <= 0 || b.Dx() <= r.maxWidth {
		return img
	}

	height := b.Dy() * r.maxWidth / b.Dx()
	if height < 1 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, r.maxWidth, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Over, nil)
	return dst
}

func rasterizeSVG(in io.Reader) (image.Image, error) {
	icon, err := oksvg.ReadIconStream(in)
	if err != nil {
		return nil, err
	}

	w, h := int(icon.ViewBox.W), int(icon.ViewBox.H)
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("svg has no size")
	}

	icon.SetTarget(0, 0, float64(w), float64(h))
	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, rgba, rgba.Bounds())
	icon.Draw(rasterx.NewDasher(w, h, scanner), 1)
	return rgba, nil
}

func writePNG(name string, img image.Image) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return err
	}
	return f.Close()
}

// fileName keeps the last element of link, replacing characters unsafe in a file name.
func fileName(link string) string {
	base := link
	if u, err := url.Parse(link); err == nil && u.Path != "" {
		base = u.Path
	}
	base = path.Base(filepath.ToSlash(base))

	ext := path.Ext(base)
	stem := strings.Trim(strings.Map(safeRune, strings.TrimSuffix(base, ext)), "-.")
	if stem == "" {
		stem = "image"
	}
	return stem + strings.Map(safeRune, ext)
}

func safeRune(r rune) rune {
	if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' || r == '.' {
		return r
	}
	return '-'
}

func uniqueName(name string, taken func(string) bool) string {
	ext := path.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	candidate := name
	for i := 1; taken(candidate) || taken(strings.TrimSuffix(candidate, ext)+".png"); i++ {
		candidate = stem + "-" + strconv.Itoa(i) + ext
	}
	return candidate
}
