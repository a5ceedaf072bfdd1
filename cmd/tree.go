package cmd

import (
	"context"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/emrgen/content/internal/server"
)

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "draft tree commands",
}

func init() {
	treeCmd.AddCommand(moveTargetsCommand())
	treeCmd.AddCommand(moveCommand())
	rootCmd.AddCommand(treeCmd)
}

func moveTargetsCommand() *cobra.Command {
	var contentID string
	var path string

	command := &cobra.Command{
		Use:   "targets",
		Short: "list where a node of the draft can be moved",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, []string{"content", "path"}) {
				return
			}
			id, ok := parseContentID(contentID)
			if !ok {
				return
			}

			withApp(func(app *server.App) error {
				targets, err := app.Contents.MoveTargets(context.Background(), id, path)
				if err != nil {
					return err
				}

				table := tablewriter.NewWriter(os.Stdout)
				table.SetHeader([]string{"Path", "Title", "Depth", "Allowed"})
				for _, target := range targets {
					title := strings.Repeat("  ", target.Depth-1) + target.Title
					table.Append([]string{target.Path, title, strconv.Itoa(target.Depth), strconv.FormatBool(target.CanMoveHere)})
				}
				table.Render()
				return nil
			})
		},
	}

	command.Flags().StringVarP(&contentID, "content", "c", "", "content id")
	command.Flags().StringVarP(&path, "path", "p", "", "path of the node to move")

	return command
}

func moveCommand() *cobra.Command {
	var contentID string
	var path string
	var before string
	var after string

	command := &cobra.Command{
		Use:   "move",
		Short: "move a node of the draft before or after another node",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, []string{"content", "path"}) {
				return
			}
			if (before == "") == (after == "") {
				color.Red("provide exactly one of --before or --after")
				return
			}
			id, ok := parseContentID(contentID)
			if !ok {
				return
			}

			target := before
			if after != "" {
				target = after
			}

			withApp(func(app *server.App) error {
				content, err := app.Contents.Move(context.Background(), id, path, target, after != "")
				if err != nil {
					return err
				}
				_, draft, err := app.Contents.GetDraft(context.Background(), id)
				if err != nil {
					return err
				}
				printField("Draft", content.ShaDraft)
				printTree(draft)
				return nil
			})
		},
	}

	command.Flags().StringVarP(&contentID, "content", "c", "", "content id")
	command.Flags().StringVarP(&path, "path", "p", "", "path of the node to move")
	command.Flags().StringVar(&before, "before", "", "path of the node to move before")
	command.Flags().StringVar(&after, "after", "", "path of the node to move after")

	return command
}
