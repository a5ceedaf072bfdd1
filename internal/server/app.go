package server

import (
	"github.com/sirupsen/logrus"

	"github.com/emrgen/content/internal/cache"
	"github.com/emrgen/content/internal/compress"
	"github.com/emrgen/content/internal/config"
	"github.com/emrgen/content/internal/events"
	"github.com/emrgen/content/internal/publish"
	"github.com/emrgen/content/internal/service"
	"github.com/emrgen/content/internal/store"
)

// App wires the services of a configuration together.
type App struct {
	Config    *config.Config
	Store     store.Store
	Cache     cache.PublicationCache
	Notifier  events.Notifier
	Publisher *publish.Publisher
	Contents  *service.ContentService
	Licences  *service.LicenceService
}

// NewApp opens the database, migrates it and builds the services.
func NewApp(cfg *config.Config) (*App, error) {
	compressor, err := compress.New(cfg.Compression)
	if err != nil {
		return nil, err
	}

	contentStore := store.NewGormStore(config.GetDb(cfg))
	if err := contentStore.Migrate(); err != nil {
		return nil, err
	}

	publicationCache := config.GetPublicationCache(cfg)
	notifier := config.GetNotifier(cfg)
	publisher := publish.NewPublisher(cfg.Publish, contentStore, publicationCache, notifier)

	return &App{
		Config:    cfg,
		Store:     contentStore,
		Cache:     publicationCache,
		Notifier:  notifier,
		Publisher: publisher,
		Contents:  service.NewContentService(compressor, contentStore, publisher),
		Licences:  service.NewLicenceService(contentStore),
	}, nil
}

// Close flushes pending events and releases connections.
func (a *App) Close() {
	if err := a.Notifier.Close(); err != nil {
		logrus.Errorf("error closing notifier: %v", err)
	}
	if closer, ok := a.Cache.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logrus.Errorf("error closing cache: %v", err)
		}
	}
}
