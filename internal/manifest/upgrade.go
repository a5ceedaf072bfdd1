package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/emrgen/content/internal/tree"
)

// LicenceResolver maps a licence code found in an old manifest to a known licence code.
type LicenceResolver interface {
	ResolveLicence(code string) (string, bool)
}

// v1 shapes: big tutorials have parts, mini tutorials a single chapter, articles a text.
type v1Manifest struct {
	Version      json.Number `json:"version"`
	Title        string      `json:"title"`
	Slug         string      `json:"slug"`
	Description  string      `json:"description"`
	Type         string      `json:"type"`
	Licence      string      `json:"licence"`
	Introduction string      `json:"introduction"`
	Conclusion   string      `json:"conclusion"`
	Text         string      `json:"text"`
	Parts        []v1Part    `json:"parts"`
	Chapter      *v1Chapter  `json:"chapter"`
}

type v1Part struct {
	Title        string      `json:"title"`
	Introduction string      `json:"introduction"`
	Conclusion   string      `json:"conclusion"`
	Chapters     []v1Chapter `json:"chapters"`
}

type v1Chapter struct {
	Title        string      `json:"title"`
	Introduction string      `json:"introduction"`
	Conclusion   string      `json:"conclusion"`
	Extracts     []v1Extract `json:"extracts"`
}

type v1Extract struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// UpgradeToV2 converts a v1 manifest to the current schema. Licence codes unknown to the
// resolver fall back to defaultLicence.
func UpgradeToV2(data []byte, licences LicenceResolver, defaultLicence string) (*Manifest, error) {
	var old v1Manifest
	if err := json.Unmarshal(data, &old); err != nil {
		return nil, err
	}
	if v, err := old.Version.Int64(); err == nil && v >= CurrentVersion {
		return nil, ErrAlreadyUpgraded
	}

	m := &Manifest{
		Object:       ObjectContainer,
		Slug:         old.Slug,
		Title:        old.Title,
		Version:      CurrentVersion,
		Description:  old.Description,
		Introduction: old.Introduction,
		Conclusion:   old.Conclusion,
		Licence:      defaultLicence,
		Children:     []*Node{},
	}
	if m.Slug == "" {
		m.Slug = tree.Slugify(old.Title)
	}
	if code := strings.TrimSpace(old.Licence); code != "" && licences != nil {
		if resolved, ok := licences.ResolveLicence(code); ok {
			m.Licence = resolved
		}
	}

	var slugs siblingSlugs
	switch {
	case len(old.Parts) > 0 || strings.EqualFold(old.Type, "BIG"):
		m.Type = "TUTORIAL"
		for _, part := range old.Parts {
			m.Children = append(m.Children, upgradePart(part, &slugs))
		}
	case old.Chapter != nil || strings.EqualFold(old.Type, "MINI"):
		m.Type = "TUTORIAL"
		if old.Chapter != nil {
			m.Children = upgradeExtracts(old.Chapter.Extracts)
		}
	case old.Text != "":
		m.Type = "ARTICLE"
		m.Children = append(m.Children, &Node{
			Object: ObjectExtract,
			Slug:   slugs.next(old.Title),
			Title:  old.Title,
			Text:   old.Text,
		})
	default:
		return nil, fmt.Errorf("%w: no parts, chapter or text", ErrUnknownManifest)
	}

	return m, nil
}

// UpgradeFile upgrades the manifest at path in place.
func UpgradeFile(path string, licences LicenceResolver, defaultLicence string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m, err := UpgradeToV2(data, licences, defaultLicence)
	if err != nil {
		return nil, err
	}
	if err := WriteFile(path, m); err != nil {
		return nil, err
	}
	return m, nil
}

func upgradePart(part v1Part, slugs *siblingSlugs) *Node {
	n := &Node{
		Object:       ObjectContainer,
		Slug:         slugs.next(part.Title),
		Title:        part.Title,
		Introduction: part.Introduction,
		Conclusion:   part.Conclusion,
	}
	var chapterSlugs siblingSlugs
	for _, chapter := range part.Chapters {
		n.Children = append(n.Children, &Node{
			Object:       ObjectContainer,
			Slug:         chapterSlugs.next(chapter.Title),
			Title:        chapter.Title,
			Introduction: chapter.Introduction,
			Conclusion:   chapter.Conclusion,
			Children:     upgradeExtracts(chapter.Extracts),
		})
	}
	return n
}

func upgradeExtracts(extracts []v1Extract) []*Node {
	var slugs siblingSlugs
	nodes := make([]*Node, 0, len(extracts))
	for _, e := range extracts {
		nodes = append(nodes, &Node{
			Object: ObjectExtract,
			Slug:   slugs.next(e.Title),
			Title:  e.Title,
			Text:   e.Text,
		})
	}
	return nodes
}

type siblingSlugs map[string]struct{}

func (s *siblingSlugs) next(title string) string {
	if *s == nil {
		*s = make(map[string]struct{})
	}
	base := tree.Slugify(title)
	candidate := base
	for i := 1; ; i++ {
		if _, taken := (*s)[candidate]; !taken && !tree.Reserved(candidate) {
			break
		}
		candidate = base + "-" + strconv.Itoa(i)
	}
	(*s)[candidate] = struct{}{}
	return candidate
}
