package cmd

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/emrgen/content/internal/model"
	"github.com/emrgen/content/internal/publish"
	"github.com/emrgen/content/internal/server"
)

var publishedCmd = &cobra.Command{
	Use:   "published",
	Short: "published content commands",
}

func init() {
	rootCmd.AddCommand(publishCommand())
	rootCmd.AddCommand(unpublishCommand())

	publishedCmd.AddCommand(listPublishedCommand())
	publishedCmd.AddCommand(showPublishedCommand())
	rootCmd.AddCommand(publishedCmd)
}

func publishCommand() *cobra.Command {
	var contentID string

	command := &cobra.Command{
		Use:   "publish",
		Short: "publish the current draft of a content",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, []string{"content"}) {
				return
			}
			id, ok := parseContentID(contentID)
			if !ok {
				return
			}

			withApp(func(app *server.App) error {
				published, err := app.Contents.Publish(context.Background(), id)
				if err != nil {
					return err
				}
				printPublished(published)
				printField("Output", app.Publisher.Config().ContentDir(published.ContentPublicSlug))
				return nil
			})
		},
	}

	command.Flags().StringVarP(&contentID, "content", "c", "", "content id")

	return command
}

func unpublishCommand() *cobra.Command {
	var contentID string

	command := &cobra.Command{
		Use:   "unpublish",
		Short: "remove the public version of a content",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, []string{"content"}) {
				return
			}
			id, ok := parseContentID(contentID)
			if !ok {
				return
			}

			withApp(func(app *server.App) error {
				if err := app.Contents.Unpublish(context.Background(), id); err != nil {
					return err
				}
				color.Green("unpublished %s", id)
				return nil
			})
		},
	}

	command.Flags().StringVarP(&contentID, "content", "c", "", "content id")

	return command
}

func listPublishedCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "list",
		Short: "list published contents",
		Run: func(cmd *cobra.Command, args []string) {
			withApp(func(app *server.App) error {
				published, err := app.Contents.ListPublished(context.Background())
				if err != nil {
					return err
				}

				table := tablewriter.NewWriter(os.Stdout)
				table.SetHeader([]string{"Content", "Type", "Slug", "Version", "Published At"})
				for _, p := range published {
					table.Append([]string{p.ContentID, string(p.ContentType), p.ContentPublicSlug, p.ShaPublic, p.PublicationDate.Format(time.RFC3339)})
				}
				table.Render()
				return nil
			})
		},
	}

	return command
}

func showPublishedCommand() *cobra.Command {
	var contentID string

	command := &cobra.Command{
		Use:   "show",
		Short: "show the public tree of a content",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, []string{"content"}) {
				return
			}
			id, ok := parseContentID(contentID)
			if !ok {
				return
			}

			withApp(func(app *server.App) error {
				public, err := app.Contents.LoadPublic(context.Background(), id)
				if err != nil {
					return err
				}
				printField("Title", public.Title)
				printField("Type", public.Type)
				printField("Licence", public.Licence)
				printField("Dir", public.Dir)
				if public.Excerpt != "" {
					printField("Excerpt", public.Excerpt)
				}
				printPublicNode(&public.PublicNode, 0)
				return nil
			})
		},
	}

	command.Flags().StringVarP(&contentID, "content", "c", "", "content id")

	return command
}

func printPublished(published *model.PublishedContent) {
	printField("Content", published.ContentID)
	printField("Slug", published.ContentPublicSlug)
	printField("Version", published.ShaPublic)
	printField("Published At", published.PublicationDate.Format(time.RFC3339))
}

func printPublicNode(n *publish.PublicNode, depth int) {
	indent := strings.Repeat("  ", depth)
	color.Cyan("%s%s", indent, n.Title)
	color.White("%s  %s", indent, n.ProdPath)
	for _, child := range n.Children {
		printPublicNode(child, depth+1)
	}
}
