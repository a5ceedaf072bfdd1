package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emrgen/content/internal/compress"
	"github.com/emrgen/content/internal/manifest"
	"github.com/emrgen/content/internal/model"
	"github.com/emrgen/content/internal/publish"
	"github.com/emrgen/content/internal/store"
	"github.com/emrgen/content/internal/tester"
	"github.com/emrgen/content/internal/tree"
)

func newService(t *testing.T, codec compress.Compress) (*ContentService, store.Store, publish.Config) {
	db := tester.TestDB(t)
	tester.Licence(t, db, "CC BY")
	s := store.NewGormStore(db)
	cfg := publish.Config{PublicPath: filepath.Join(t.TempDir(), "public")}
	return NewContentService(codec, s, publish.NewPublisher(cfg, s, nil, nil)), s, cfg
}

func tutorial(t *testing.T) *tree.Container {
	root := tree.NewRoot("Learn Go")
	root.Introduction = "Welcome"
	part1, err := root.AddContainer("Part 1")
	require.NoError(t, err)
	for _, title := range []string{"Chapter A", "Chapter B"} {
		chapter, err := part1.AddContainer(title)
		require.NoError(t, err)
		_, err = chapter.AddExtract("Extract", "text of "+title)
		require.NoError(t, err)
	}
	part2, err := root.AddContainer("Part 2")
	require.NoError(t, err)
	chapter, err := part2.AddContainer("Chapter C")
	require.NoError(t, err)
	_, err = chapter.AddExtract("Extract", "text of Chapter C")
	require.NoError(t, err)
	return root
}

func targetsByPath(targets []tree.Target) map[string]bool {
	out := make(map[string]bool, len(targets))
	for _, target := range targets {
		out[target.Path] = target.CanMoveHere
	}
	return out
}

func TestContentService_CreateContent(t *testing.T) {
	svc, _, _ := newService(t, compress.NewBrotli())
	ctx := context.TODO()

	_, err := svc.CreateContent(ctx, CreateContentRequest{Type: "BOOK", Title: "Nope"})
	assert.ErrorIs(t, err, ErrInvalidContentType)

	_, err = svc.CreateContent(ctx, CreateContentRequest{Type: model.ContentTypeArticle, Title: "Nope", LicenceCode: "WTFPL"})
	assert.ErrorIs(t, err, ErrUnknownLicence)

	content, err := svc.CreateContent(ctx, CreateContentRequest{
		Type:        model.ContentTypeTutorial,
		Title:       "Learn Go",
		LicenceCode: "CC BY",
		Draft:       tutorial(t),
	})
	require.NoError(t, err)
	assert.Equal(t, "learn-go", content.Slug)
	assert.Equal(t, compress.NameBrotli, content.Compression)
	assert.Len(t, content.ShaDraft, 40)
	assert.False(t, content.IsPublic())

	got, draft, err := svc.GetDraft(ctx, uuid.MustParse(content.ID))
	require.NoError(t, err)
	assert.Equal(t, content.ShaDraft, got.ShaDraft)
	assert.Equal(t, "Welcome", draft.Introduction)
	require.Len(t, draft.Children, 2)
	assert.NotNil(t, tree.Find(draft, "part-1/chapter-b"))

	list, err := svc.ListContents(ctx, model.ContentTypeTutorial)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	_, err = svc.ListContents(ctx, "BOOK")
	assert.ErrorIs(t, err, ErrInvalidContentType)
}

func TestContentService_DraftReadableAfterCodecChange(t *testing.T) {
	db := tester.TestDB(t)
	s := store.NewGormStore(db)
	cfg := publish.Config{PublicPath: t.TempDir()}
	gzipSvc := NewContentService(compress.NewGZip(), s, publish.NewPublisher(cfg, s, nil, nil))
	lz4Svc := NewContentService(compress.NewLZ4(), s, publish.NewPublisher(cfg, s, nil, nil))

	content, err := gzipSvc.CreateContent(context.TODO(), CreateContentRequest{Type: model.ContentTypeTutorial, Draft: tutorial(t)})
	require.NoError(t, err)
	assert.Equal(t, "Learn Go", content.Title)

	_, draft, err := lz4Svc.GetDraft(context.TODO(), uuid.MustParse(content.ID))
	require.NoError(t, err)

	saved, err := lz4Svc.SaveDraft(context.TODO(), uuid.MustParse(content.ID), draft)
	require.NoError(t, err)
	assert.Equal(t, compress.NameLZ4, saved.Compression)
	assert.Equal(t, content.ShaDraft, saved.ShaDraft)
}

func TestContentService_SaveDraft(t *testing.T) {
	svc, _, _ := newService(t, compress.NewNop())
	ctx := context.TODO()

	content, err := svc.CreateContent(ctx, CreateContentRequest{Type: model.ContentTypeArticle, Title: "Notes"})
	require.NoError(t, err)
	id := uuid.MustParse(content.ID)

	draft := tree.NewRoot("Notes")
	_, err = draft.AddExtract("One", "first")
	require.NoError(t, err)
	saved, err := svc.SaveDraft(ctx, id, draft)
	require.NoError(t, err)
	assert.NotEqual(t, content.ShaDraft, saved.ShaDraft)

	mixed := tree.NewRoot("Notes")
	_, err = mixed.AddExtract("One", "first")
	require.NoError(t, err)
	mixed.Append(tree.NewContainer("Part", "part"))
	_, err = svc.SaveDraft(ctx, id, mixed)
	assert.ErrorIs(t, err, tree.ErrMixedChildren)

	_, err = svc.SaveDraft(ctx, uuid.New(), draft)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestContentService_MoveTargets(t *testing.T) {
	svc, _, _ := newService(t, compress.NewGZip())
	ctx := context.TODO()

	content, err := svc.CreateContent(ctx, CreateContentRequest{Type: model.ContentTypeTutorial, Draft: tutorial(t)})
	require.NoError(t, err)
	id := uuid.MustParse(content.ID)

	targets, err := svc.MoveTargets(ctx, id, "part-1/chapter-a")
	require.NoError(t, err)
	got := targetsByPath(targets)
	assert.NotContains(t, got, "")
	assert.False(t, got["part-1/chapter-a"])
	assert.True(t, got["part-1/chapter-b"])
	assert.True(t, got["part-2/chapter-c"])
	assert.True(t, got["part-2"])
	assert.False(t, got["part-2/chapter-c/extract"])

	targets, err = svc.MoveTargets(ctx, id, "part-1/chapter-a/extract")
	require.NoError(t, err)
	got = targetsByPath(targets)
	assert.True(t, got["part-2/chapter-c/extract"])
	assert.False(t, got["part-1"])
	assert.False(t, got["part-1/chapter-a/extract"])

	_, err = svc.MoveTargets(ctx, id, "part-9")
	assert.ErrorIs(t, err, ErrNodeNotFound)
	_, err = svc.MoveTargets(ctx, id, "")
	assert.ErrorIs(t, err, tree.ErrInvalidMove)
}

func TestContentService_Move(t *testing.T) {
	svc, _, _ := newService(t, compress.NewGZip())
	ctx := context.TODO()

	content, err := svc.CreateContent(ctx, CreateContentRequest{Type: model.ContentTypeTutorial, Draft: tutorial(t)})
	require.NoError(t, err)
	id := uuid.MustParse(content.ID)

	moved, err := svc.Move(ctx, id, "part-1/chapter-a", "part-2/chapter-c", true)
	require.NoError(t, err)
	assert.NotEqual(t, content.ShaDraft, moved.ShaDraft)

	_, draft, err := svc.GetDraft(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, tree.Find(draft, "part-1/chapter-a"))
	part2 := tree.Find(draft, "part-2").(*tree.Container)
	require.Len(t, part2.Children, 2)
	assert.Equal(t, "chapter-a", part2.Children[1].GetSlug())

	_, err = svc.Move(ctx, id, "part-1", "part-1/chapter-b/extract", false)
	assert.ErrorIs(t, err, tree.ErrInvalidMove)
	_, err = svc.Move(ctx, id, "part-1", "nowhere", false)
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestContentService_PublishUnpublish(t *testing.T) {
	svc, s, cfg := newService(t, compress.NewGZip())
	ctx := context.TODO()

	content, err := svc.CreateContent(ctx, CreateContentRequest{Type: model.ContentTypeTutorial, Draft: tutorial(t)})
	require.NoError(t, err)
	id := uuid.MustParse(content.ID)

	published, err := svc.Publish(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, content.ShaDraft, published.ShaPublic)
	assert.DirExists(t, cfg.ContentDir("learn-go"))

	public, err := svc.LoadPublic(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Learn Go", public.Title)
	assert.Equal(t, "introduction.html", public.Introduction)
	require.Len(t, public.Children, 2)

	list, err := svc.ListPublished(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.DeleteContent(ctx, id))
	assert.NoDirExists(t, cfg.ContentDir("learn-go"))
	count, err := s.CountPublishedContents(ctx, id)
	require.NoError(t, err)
	assert.Zero(t, count)
	_, err = svc.GetContent(ctx, id)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestContentService_PublishEmptyDraft(t *testing.T) {
	svc, _, _ := newService(t, compress.NewNop())
	content, err := svc.CreateContent(context.TODO(), CreateContentRequest{Type: model.ContentTypeArticle, Title: "Empty"})
	require.NoError(t, err)

	_, err = svc.Publish(context.TODO(), uuid.MustParse(content.ID))
	assert.ErrorIs(t, err, publish.ErrInvalidDraft)
}

func TestLicenceService(t *testing.T) {
	db := tester.TestDB(t)
	licences := NewLicenceService(store.NewGormStore(db))

	_, err := licences.CreateLicence(context.TODO(), "CC BY", "Creative Commons BY")
	require.NoError(t, err)

	code, ok := licences.ResolveLicence("CC BY")
	assert.True(t, ok)
	assert.Equal(t, "CC BY", code)
	_, ok = licences.ResolveLicence("CC BY-SA")
	assert.False(t, ok)

	data, err := os.ReadFile(filepath.Join("..", "manifest", "testdata", "article_v1.json"))
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), manifest.FileName)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	m, err := licences.UpgradeManifest(path, "CC BY")
	require.NoError(t, err)
	assert.Equal(t, "CC BY", m.Licence)
	assert.Equal(t, "ARTICLE", m.Type)

	all, err := licences.ListLicences(context.TODO())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
