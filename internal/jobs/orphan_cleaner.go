package jobs

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	goset "github.com/deckarep/golang-set/v2"
	"github.com/sirupsen/logrus"

	"github.com/emrgen/content/internal/publish"
	"github.com/emrgen/content/internal/store"
)

// OrphanCleaner removes published output that no record points to, and staging leftovers.
// Entries younger than the grace period are left alone since a publication may be in flight.
type OrphanCleaner struct {
	store store.PublishedContentStore
	cfg   publish.Config
	cron  string
	grace time.Duration
}

func NewOrphanCleaner(interval string, grace time.Duration, store store.PublishedContentStore, cfg publish.Config) *OrphanCleaner {
	return &OrphanCleaner{
		store: store,
		cfg:   cfg,
		cron:  interval,
		grace: grace,
	}
}

func (c *OrphanCleaner) Name() string {
	return "orphan_cleaner"
}

func (c *OrphanCleaner) Schedule() string {
	return c.cron
}

func (c *OrphanCleaner) Run() {
	removed, err := c.Clean(context.Background(), time.Now())
	if err != nil {
		logrus.Errorf("orphan cleaning failed: %v", err)
		return
	}
	if len(removed) > 0 {
		logrus.Infof("removed %d orphan directories", len(removed))
	}
}

// Clean removes orphans last modified before now minus the grace period and returns their paths.
func (c *OrphanCleaner) Clean(ctx context.Context, now time.Time) ([]string, error) {
	published, err := c.store.ListPublishedContents(ctx)
	if err != nil {
		return nil, err
	}

	live := goset.NewThreadUnsafeSet[string]()
	for _, p := range published {
		live.Add(p.ContentPublicSlug)
	}

	cutoff := now.Add(-c.grace)
	var removed []string

	entries, err := readDir(c.cfg.PublicPath)
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".") || live.Contains(entry.Name()) {
			continue
		}
		path := filepath.Join(c.cfg.PublicPath, entry.Name())
		if c.remove(path, entry, cutoff) {
			removed = append(removed, path)
		}
	}

	staged, err := readDir(c.cfg.StagingDir())
	if err != nil {
		return removed, err
	}
	for _, entry := range staged {
		path := filepath.Join(c.cfg.StagingDir(), entry.Name())
		if c.remove(path, entry, cutoff) {
			removed = append(removed, path)
		}
	}

	return removed, nil
}

func (c *OrphanCleaner) remove(path string, entry os.DirEntry, cutoff time.Time) bool {
	if !entry.IsDir() {
		return false
	}
	info, err := entry.Info()
	if err != nil || info.ModTime().After(cutoff) {
		return false
	}

	logrus.Infof("removing orphan directory %s", path)
	if err := os.RemoveAll(path); err != nil {
		logrus.Errorf("failed to remove %s: %v", path, err)
		return false
	}
	return true
}

func readDir(dir string) ([]os.DirEntry, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	return entries, err
}
