package cmd

import (
	"context"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/emrgen/content/internal/model"
	"github.com/emrgen/content/internal/server"
	"github.com/emrgen/content/internal/service"
	"github.com/emrgen/content/internal/tree"
)

func init() {
	rootCmd.AddCommand(createContentCommand())
	rootCmd.AddCommand(listContentCommand())
	rootCmd.AddCommand(showContentCommand())
	rootCmd.AddCommand(deleteContentCommand())
}

func createContentCommand() *cobra.Command {
	var contentType string
	var title string
	var description string
	var licence string
	var file string

	command := &cobra.Command{
		Use:   "create",
		Short: "create an article or a tutorial",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, []string{"type"}) {
				return
			}
			if title == "" && file == "" {
				color.Red("missing: --title or --file")
				return
			}

			req := service.CreateContentRequest{
				Type:        model.ContentType(strings.ToUpper(contentType)),
				Title:       title,
				Description: description,
				LicenceCode: licence,
			}
			if file != "" {
				data, err := os.ReadFile(file)
				if err != nil {
					color.Red("error reading %s: %v", file, err)
					return
				}
				draft, err := tree.DecodeYAML(data)
				if err != nil {
					color.Red("error decoding %s: %v", file, err)
					return
				}
				req.Draft = draft
			}

			withApp(func(app *server.App) error {
				content, err := app.Contents.CreateContent(context.Background(), req)
				if err != nil {
					return err
				}
				printContent(content)
				return nil
			})
		},
	}

	command.Flags().StringVarP(&contentType, "type", "t", "", "content type, ARTICLE or TUTORIAL")
	command.Flags().StringVarP(&title, "title", "n", "", "content title, defaults to the draft title")
	command.Flags().StringVarP(&description, "description", "d", "", "content description")
	command.Flags().StringVarP(&licence, "licence", "l", "", "licence code")
	command.Flags().StringVarP(&file, "file", "f", "", "yaml file holding the draft tree")

	return command
}

func listContentCommand() *cobra.Command {
	var contentType string

	command := &cobra.Command{
		Use:   "list",
		Short: "list contents",
		Run: func(cmd *cobra.Command, args []string) {
			withApp(func(app *server.App) error {
				contents, err := app.Contents.ListContents(context.Background(), model.ContentType(strings.ToUpper(contentType)))
				if err != nil {
					return err
				}

				table := tablewriter.NewWriter(os.Stdout)
				table.SetHeader([]string{"ID", "Type", "Slug", "Title", "Draft", "Public"})
				for _, content := range contents {
					table.Append([]string{content.ID, string(content.Type), content.Slug, content.Title, content.ShaDraft, content.ShaPublic})
				}
				table.Render()
				return nil
			})
		},
	}

	command.Flags().StringVarP(&contentType, "type", "t", "", "filter by content type")

	return command
}

func showContentCommand() *cobra.Command {
	var contentID string

	command := &cobra.Command{
		Use:   "show",
		Short: "show a content and its draft tree",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, []string{"content"}) {
				return
			}
			id, ok := parseContentID(contentID)
			if !ok {
				return
			}

			withApp(func(app *server.App) error {
				content, draft, err := app.Contents.GetDraft(context.Background(), id)
				if err != nil {
					return err
				}
				printContent(content)
				printTree(draft)
				return nil
			})
		},
	}

	command.Flags().StringVarP(&contentID, "content", "c", "", "content id")

	return command
}

func deleteContentCommand() *cobra.Command {
	var contentID string

	command := &cobra.Command{
		Use:   "delete",
		Short: "unpublish and delete a content",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, []string{"content"}) {
				return
			}
			id, ok := parseContentID(contentID)
			if !ok {
				return
			}

			withApp(func(app *server.App) error {
				if err := app.Contents.DeleteContent(context.Background(), id); err != nil {
					return err
				}
				color.Green("deleted %s", id)
				return nil
			})
		},
	}

	command.Flags().StringVarP(&contentID, "content", "c", "", "content id")

	return command
}

func printContent(content *model.PublishableContent) {
	printField("ID", content.ID)
	printField("Type", string(content.Type))
	printField("Title", content.Title)
	printField("Slug", content.Slug)
	if content.LicenceCode != "" {
		printField("Licence", content.LicenceCode)
	}
	printField("Draft", content.ShaDraft)
	if content.IsPublic() {
		printField("Public", content.ShaPublic)
	}
}

func printTree(root *tree.Container) {
	tree.Walk(root, func(n tree.Node) {
		indent := strings.Repeat("  ", tree.Depth(n)-1)
		switch n.(type) {
		case *tree.Container:
			color.Cyan("%s%s (%s)", indent, n.GetTitle(), tree.Path(n))
		default:
			color.White("%s%s (%s)", indent, n.GetTitle(), tree.Path(n))
		}
	})
}
