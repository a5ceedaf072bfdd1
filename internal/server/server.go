package server

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"github.com/emrgen/content/internal/config"
	"github.com/emrgen/content/internal/jobs"
)

// Server runs the background jobs of the content service until interrupted.
type Server struct {
	cfg *config.Config
}

// NewServer creates a new server
func NewServer(cfg *config.Config) *Server {
	return &Server{cfg: cfg}
}

// Start starts the server
func (s *Server) Start() {
	if err := Start(s.cfg); err != nil {
		logrus.Fatalf("error starting server: %v", err)
	}
}

// Start runs the cache sync and orphan cleaner jobs until SIGTERM or SIGINT.
func Start(cfg *config.Config) error {
	app, err := NewApp(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	executor := Executor(app)
	if err := executor.Run(); err != nil {
		return err
	}

	logrus.Infof("publishing to %s", cfg.Publish.PublicPath)
	logrus.Infof("Press Ctrl+C to stop the server")

	// listen for interrupt signal to gracefully shut down the server
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, unix.SIGTERM, unix.SIGINT, unix.SIGTSTP)
	<-sigs
	// clean Ctrl+C output
	fmt.Println()

	executor.Stop()
	return nil
}

// Executor schedules the jobs enabled in the configuration of app.
func Executor(app *App) *jobs.TaskExecutor {
	var cronJobs []jobs.CronJob
	if app.Config.Jobs.CacheSync != "" && app.Config.Redis.Enabled {
		cronJobs = append(cronJobs, jobs.NewCacheSyncTask(app.Config.Jobs.CacheSync, app.Store, app.Publisher))
	}
	if app.Config.Jobs.OrphanCleaner != "" {
		cronJobs = append(cronJobs, jobs.NewOrphanCleaner(app.Config.Jobs.OrphanCleaner, app.Config.Jobs.OrphanGrace, app.Store, app.Config.Publish))
	}
	return jobs.NewTaskExecutor(nil, cronJobs)
}
