package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type licences map[string]bool

func (l licences) ResolveLicence(code string) (string, bool) {
	return code, l[code]
}

// copyFixture copies a testdata manifest to a temp dir so the upgrade can rewrite it.
func copyFixture(t *testing.T, name string) string {
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestUpgradeFile(t *testing.T) {
	known := licences{"CC BY": true}

	tests := []struct {
		name        string
		fixture     string
		kind        string
		licence     string
		children    int
		firstObject string
	}{
		{name: "mini tutorial", fixture: "balise_audio.json", kind: "TUTORIAL", licence: "CC BY", children: 3, firstObject: ObjectExtract},
		{name: "big tutorial", fixture: "big_tuto_v1.json", kind: "TUTORIAL", licence: "CC BY", children: 5, firstObject: ObjectContainer},
		{name: "article", fixture: "article_v1.json", kind: "ARTICLE", licence: "Tous droits réservés", children: 1, firstObject: ObjectExtract},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := copyFixture(t, tt.fixture)

			_, err := UpgradeFile(path, known, "Tous droits réservés")
			require.NoError(t, err)

			m, err := ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, CurrentVersion, m.Version)
			assert.Equal(t, tt.kind, m.Type)
			assert.Equal(t, tt.licence, m.Licence)
			require.Len(t, m.Children, tt.children)
			assert.Equal(t, tt.firstObject, m.Children[0].Object)

			_, err = UpgradeFile(path, known, "")
			assert.ErrorIs(t, err, ErrAlreadyUpgraded)
		})
	}
}

func TestUpgradeToV2_BigTutorialStructure(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "big_tuto_v1.json"))
	require.NoError(t, err)

	m, err := UpgradeToV2(data, nil, "CC BY")
	require.NoError(t, err)

	part := m.Children[0]
	assert.Equal(t, "part-1", part.Slug)
	assert.Equal(t, "1/introduction.md", part.Introduction)
	require.Len(t, part.Children, 3)
	require.Len(t, part.Children[0].Children, 3)
	assert.Equal(t, ObjectExtract, part.Children[0].Children[0].Object)
	assert.Equal(t, "1/1/extract-1.md", part.Children[0].Children[0].Text)
}

func TestUpgradeToV2_Unknown(t *testing.T) {
	_, err := UpgradeToV2([]byte(`{"title": "nothing"}`), nil, "")
	assert.ErrorIs(t, err, ErrUnknownManifest)

	_, err = UpgradeToV2([]byte(`not json`), nil, "")
	assert.Error(t, err)
}

func TestWriteReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, WriteFile(path, &Manifest{Object: ObjectContainer, Slug: "a", Title: "A", Version: CurrentVersion}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"children": []`)
	assert.NotContains(t, string(data), `"introduction"`)
}
