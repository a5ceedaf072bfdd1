package publish

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/emrgen/content/internal/cache"
	"github.com/emrgen/content/internal/events"
	"github.com/emrgen/content/internal/images"
	"github.com/emrgen/content/internal/manifest"
	"github.com/emrgen/content/internal/model"
	"github.com/emrgen/content/internal/render"
	"github.com/emrgen/content/internal/store"
	"github.com/emrgen/content/internal/tree"
)

const defaultNotifyTimeout = 10 * time.Second

// Publisher materializes draft trees into static output and keeps the published records in sync.
type Publisher struct {
	cfg       Config
	store     store.Store
	cache     cache.PublicationCache
	notifier  events.Notifier
	renderer  *render.Renderer
	retriever *images.Retriever
	locks     *keyedMutex

	// bounds the wait for a notification delivery
	notifyTimeout time.Duration
}

// NewPublisher creates a publisher. A nil cache or notifier disables that concern.
func NewPublisher(cfg Config, s store.Store, c cache.PublicationCache, notifier events.Notifier) *Publisher {
	p := &Publisher{
		cfg:      cfg,
		store:    s,
		cache:    c,
		notifier: notifier,
		renderer: render.NewRenderer(),
		locks:    newKeyedMutex(),

		notifyTimeout: defaultNotifyTimeout,
	}
	if p.cache == nil {
		p.cache = cache.NewNopPublicationCache()
	}
	if p.notifier == nil {
		p.notifier = events.NewNopNotifier()
	}
	if cfg.RetrieveImages {
		p.retriever = images.NewRetriever(
			images.WithBaseDir(cfg.ImagesBaseDir),
			images.WithMaxWidth(cfg.MaxImageWidth),
		)
	}
	return p
}

func (p *Publisher) Config() Config {
	return p.cfg
}

// Publish materializes draft as the public version of content. A previous publication of the
// same content is replaced: its record is overwritten and its output removed once the new
// output is committed.
func (p *Publisher) Publish(ctx context.Context, content *model.PublishableContent, draft *tree.Container) (*model.PublishedContent, error) {
	id, err := uuid.Parse(content.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidContent, err)
	}

	unlock := p.locks.Lock(contentKey(content.ID))
	defer unlock()

	if err := tree.Validate(draft); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDraft, err)
	}

	sha := content.ShaDraft
	if sha == "" {
		sha, err = tree.Version(draft)
		if err != nil {
			return nil, err
		}
	}

	slug := content.Slug
	if slug == "" {
		slug = draft.GetSlug()
	}
	if !validPublicSlug(slug) {
		return nil, fmt.Errorf("%w: public slug %q", ErrInvalidContent, slug)
	}

	previous, err := p.store.GetPublishedContent(ctx, id)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	published, err := p.publishAs(ctx, content, id, slug, sha, draft)
	if err != nil {
		return nil, err
	}

	if previous != nil && previous.ContentPublicSlug != slug {
		p.removeOutput(ctx, previous.ContentPublicSlug)
	}

	content.ShaPublic = sha

	if err := p.cache.SetPublished(ctx, published); err != nil {
		logrus.Warnf("failed to cache publication of %s: %v", content.ID, err)
	}
	if err := p.notify(ctx, events.NewEvent(events.KindPublished, published)); err != nil {
		logrus.Warnf("failed to notify publication of %s: %v", content.ID, err)
	}

	return published, nil
}

// publishAs stages, swaps in and commits the output of content under slug. The slug stays
// locked throughout so two contents never write the same directory.
func (p *Publisher) publishAs(ctx context.Context, content *model.PublishableContent, id uuid.UUID, slug, sha string, draft *tree.Container) (*model.PublishedContent, error) {
	unlock := p.locks.Lock(slugKey(slug))
	defer unlock()

	if holder, err := p.store.GetPublishedContentBySlug(ctx, slug); err == nil {
		if holder.ContentID != content.ID {
			return nil, fmt.Errorf("%w: %s", ErrSlugTaken, slug)
		}
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	logrus.Infof("publishing content %s version %s as %s", content.ID, sha, slug)

	staging, err := p.stage(ctx, content, slug, draft)
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(staging)

	target := p.cfg.ContentDir(slug)
	backup, err := swap(staging, target)
	if err != nil {
		return nil, err
	}

	published := &model.PublishedContent{
		ContentID:         content.ID,
		ContentType:       content.Type,
		ContentPublicSlug: slug,
		ShaPublic:         sha,
		PublicationDate:   time.Now().UTC(),
	}
	err = p.store.Transaction(ctx, func(tx store.Store) error {
		if err := tx.SavePublishedContent(ctx, published); err != nil {
			return err
		}
		return tx.UpdateShaPublic(ctx, id, sha)
	})
	if err != nil {
		logrus.Errorf("failed to commit publication of %s: %v", content.ID, err)
		restore(target, backup)
		if errors.Is(err, store.ErrConflict) {
			return nil, fmt.Errorf("%w: %s", ErrSlugTaken, slug)
		}
		return nil, err
	}

	if backup != "" {
		if err := os.RemoveAll(backup); err != nil {
			logrus.Warnf("failed to remove previous output of %s: %v", content.ID, err)
		}
	}

	return published, nil
}

// removeOutput deletes the directory of a slug no record points to anymore.
func (p *Publisher) removeOutput(ctx context.Context, slug string) {
	unlock := p.locks.Lock(slugKey(slug))
	defer unlock()

	if holder, err := p.store.GetPublishedContentBySlug(ctx, slug); err == nil {
		logrus.Infof("output %s now belongs to content %s, keeping it", slug, holder.ContentID)
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		logrus.Warnf("failed to check owner of output %s: %v", slug, err)
		return
	}

	if err := os.RemoveAll(p.cfg.ContentDir(slug)); err != nil {
		logrus.Warnf("failed to remove output of old slug %s: %v", slug, err)
	}
}

// Unpublish removes the published record and output of content. It does nothing when the
// content is not published.
func (p *Publisher) Unpublish(ctx context.Context, content *model.PublishableContent) error {
	id, err := uuid.Parse(content.ID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidContent, err)
	}

	unlock := p.locks.Lock(contentKey(content.ID))
	defer unlock()

	published, err := p.store.GetPublishedContent(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		logrus.Infof("content %s is not published, nothing to unpublish", content.ID)
		return nil
	}
	if err != nil {
		return err
	}

	unlockSlug := p.locks.Lock(slugKey(published.ContentPublicSlug))
	defer unlockSlug()

	err = p.store.Transaction(ctx, func(tx store.Store) error {
		if err := tx.DeletePublishedContent(ctx, id); err != nil {
			return err
		}
		// the content row may already be gone
		if err := tx.UpdateShaPublic(ctx, id, ""); err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := os.RemoveAll(p.cfg.ContentDir(published.ContentPublicSlug)); err != nil {
		return err
	}
	content.ShaPublic = ""
	logrus.Infof("unpublished content %s", content.ID)

	if err := p.cache.DeletePublished(ctx, id); err != nil {
		logrus.Warnf("failed to evict publication of %s: %v", content.ID, err)
	}
	if err := p.notify(ctx, events.NewEvent(events.KindUnpublished, published)); err != nil {
		logrus.Warnf("failed to notify unpublication of %s: %v", content.ID, err)
	}

	return nil
}

// Published returns the live record of a content.
func (p *Publisher) Published(ctx context.Context, contentID uuid.UUID) (*model.PublishedContent, error) {
	cached, err := p.cache.GetPublished(ctx, contentID)
	if err != nil {
		logrus.Warnf("publication cache lookup failed for %s: %v", contentID, err)
	}
	if cached != nil {
		return cached, nil
	}

	published, err := p.store.GetPublishedContent(ctx, contentID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotPublished, contentID)
	}
	if err != nil {
		return nil, err
	}

	if err := p.cache.SetPublished(ctx, published); err != nil {
		logrus.Warnf("failed to cache publication of %s: %v", contentID, err)
	}
	return published, nil
}

// RefreshPublished copies the stored record of a content to the cache, or evicts it when the
// content is not published. It reports whether a record was cached. It runs under the content
// lock so it never races with Publish or Unpublish.
func (p *Publisher) RefreshPublished(ctx context.Context, contentID uuid.UUID) (bool, error) {
	unlock := p.locks.Lock(contentKey(contentID.String()))
	defer unlock()

	published, err := p.store.GetPublishedContent(ctx, contentID)
	if errors.Is(err, store.ErrNotFound) {
		return false, p.cache.DeletePublished(ctx, contentID)
	}
	if err != nil {
		return false, err
	}
	return true, p.cache.SetPublished(ctx, published)
}

// notify sends event without letting a slow broker hold the content lock for long.
func (p *Publisher) notify(ctx context.Context, event events.Event) error {
	ctx, cancel := context.WithTimeout(ctx, p.notifyTimeout)
	defer cancel()
	return p.notifier.Notify(ctx, event)
}

func contentKey(id string) string {
	return "content:" + id
}

func slugKey(slug string) string {
	return "slug:" + slug
}

// stage builds the whole output in a fresh directory and returns it.
func (p *Publisher) stage(ctx context.Context, content *model.PublishableContent, slug string, draft *tree.Container) (string, error) {
	if err := os.MkdirAll(p.cfg.StagingDir(), 0o755); err != nil {
		return "", err
	}
	if err := os.MkdirAll(p.cfg.PublicPath, 0o755); err != nil {
		return "", err
	}

	dir, err := os.MkdirTemp(p.cfg.StagingDir(), slug+"-")
	if err != nil {
		return "", err
	}
	// MkdirTemp creates 0700 directories
	if err := os.Chmod(dir, 0o755); err != nil {
		os.RemoveAll(dir)
		return "", err
	}

	m := &materializer{renderer: p.renderer, dir: dir}
	if p.retriever != nil {
		m.images = p.retriever.NewSession(dir)
	}
	man, err := m.content(ctx, content, slug, draft)
	if err == nil {
		err = manifest.WriteFile(filepath.Join(dir, manifest.FileName), man)
	}
	if err != nil {
		os.RemoveAll(dir)
		return "", fmt.Errorf("materialize %s: %w", content.ID, err)
	}

	return dir, nil
}

// swap moves staging to target and returns where the previous target was moved, empty when
// there was none.
func swap(staging, target string) (string, error) {
	var backup string
	if _, err := os.Stat(target); err == nil {
		backup = staging + ".previous"
		if err := os.Rename(target, backup); err != nil {
			return "", err
		}
	} else if !os.IsNotExist(err) {
		return "", err
	}

	if err := os.Rename(staging, target); err != nil {
		restore(target, backup)
		return "", err
	}
	return backup, nil
}

// restore puts the previous output back in place of target.
func restore(target, backup string) {
	if err := os.RemoveAll(target); err != nil {
		logrus.Errorf("failed to remove output %s: %v", target, err)
	}
	if backup == "" {
		return
	}
	if err := os.Rename(backup, target); err != nil {
		logrus.Errorf("failed to restore previous output %s: %v", target, err)
	}
}

func validPublicSlug(slug string) bool {
	return slug != "" && !strings.HasPrefix(slug, ".") && !strings.ContainsAny(slug, `/\`)
}
