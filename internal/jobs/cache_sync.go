package jobs

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/emrgen/content/internal/store"
)

// PublicationRefresher copies the stored record of one content to the publication cache,
// evicting it when the content is no longer published.
type PublicationRefresher interface {
	RefreshPublished(ctx context.Context, contentID uuid.UUID) (bool, error)
}

// CacheSyncTask refreshes the publication cache from the store.
type CacheSyncTask struct {
	refresher PublicationRefresher
	store     store.PublishedContentStore
	cron      string
}

func NewCacheSyncTask(interval string, store store.PublishedContentStore, refresher PublicationRefresher) *CacheSyncTask {
	return &CacheSyncTask{
		store:     store,
		refresher: refresher,
		cron:      interval,
	}
}

func (c *CacheSyncTask) Name() string {
	return "cache_sync"
}

func (c *CacheSyncTask) Schedule() string {
	return c.cron
}

func (c *CacheSyncTask) Run() {
	if _, err := c.Sync(context.Background()); err != nil {
		logrus.Errorf("cache sync failed: %v", err)
	}
}

// Sync refreshes the cached record of every listed publication and returns how many were
// written. Each record is read again while refreshing, so one unpublished after the listing
// is evicted instead of written back.
func (c *CacheSyncTask) Sync(ctx context.Context) (int, error) {
	published, err := c.store.ListPublishedContents(ctx)
	if err != nil {
		return 0, err
	}

	synced := 0
	for _, p := range published {
		id, err := uuid.Parse(p.ContentID)
		if err != nil {
			logrus.Warnf("skipping published record with bad content id %q", p.ContentID)
			continue
		}
		cached, err := c.refresher.RefreshPublished(ctx, id)
		if err != nil {
			return synced, err
		}
		if cached {
			synced++
		}
	}

	return synced, nil
}
