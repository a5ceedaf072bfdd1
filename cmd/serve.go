package cmd

import (
	"context"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/emrgen/content/internal/config"
	"github.com/emrgen/content/internal/jobs"
	"github.com/emrgen/content/internal/server"
)

func init() {
	rootCmd.AddCommand(serveCommand())
	rootCmd.AddCommand(jobsCommand())
}

func serveCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "serve",
		Short: "run the background jobs until interrupted",
		Run: func(cmd *cobra.Command, args []string) {
			server.NewServer(config.LoadConfig()).Start()
		},
	}

	return command
}

func jobsCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "jobs",
		Short: "run the background jobs once",
	}

	command.AddCommand(&cobra.Command{
		Use:   "clean",
		Short: "remove orphan output and staging directories",
		Run: func(cmd *cobra.Command, args []string) {
			withApp(func(app *server.App) error {
				cleaner := jobs.NewOrphanCleaner("", app.Config.Jobs.OrphanGrace, app.Store, app.Config.Publish)
				removed, err := cleaner.Clean(context.Background(), time.Now())
				if err != nil {
					return err
				}
				for _, path := range removed {
					printField("Removed", path)
				}
				return nil
			})
		},
	})

	command.AddCommand(&cobra.Command{
		Use:   "sync-cache",
		Short: "load every published record into the cache",
		Run: func(cmd *cobra.Command, args []string) {
			withApp(func(app *server.App) error {
				synced, err := jobs.NewCacheSyncTask("", app.Store, app.Publisher).Sync(context.Background())
				if err != nil {
					return err
				}
				printField("Synced", strconv.Itoa(synced))
				return nil
			})
		},
	})

	return command
}
