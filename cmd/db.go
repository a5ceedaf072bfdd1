package cmd

import (
	"context"
	"os"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/emrgen/content/internal/config"
	"github.com/emrgen/content/internal/model"
	"github.com/emrgen/content/internal/server"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "db commands",
}

func init() {
	dbCmd.AddCommand(migrateCommand())
	dbCmd.AddCommand(licenceCommand())
}

func migrateCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "migrate",
		Short: "Migrate the database",
		Run: func(cmd *cobra.Command, args []string) {
			db := config.GetDb(config.LoadConfig())
			err := model.Migrate(db)
			if err != nil {
				panic(err)
			}
			color.Green("database migrated")
		},
	}

	return command
}

func licenceCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "licence",
		Short: "licence commands",
	}

	command.AddCommand(addLicenceCommand())
	command.AddCommand(listLicenceCommand())

	return command
}

func addLicenceCommand() *cobra.Command {
	var code string
	var title string

	command := &cobra.Command{
		Use:   "add",
		Short: "register a licence",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, []string{"code"}) {
				return
			}
			if title == "" {
				title = code
			}

			withApp(func(app *server.App) error {
				licence, err := app.Licences.CreateLicence(context.Background(), code, title)
				if err != nil {
					return err
				}
				printField("Code", licence.Code)
				printField("Title", licence.Title)
				return nil
			})
		},
	}

	command.Flags().StringVarP(&code, "code", "c", "", "licence code, e.g. CC BY")
	command.Flags().StringVarP(&title, "title", "t", "", "licence title")

	return command
}

func listLicenceCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "list",
		Short: "list licences",
		Run: func(cmd *cobra.Command, args []string) {
			withApp(func(app *server.App) error {
				licences, err := app.Licences.ListLicences(context.Background())
				if err != nil {
					return err
				}

				table := tablewriter.NewWriter(os.Stdout)
				table.SetHeader([]string{"Code", "Title"})
				for _, licence := range licences {
					table.Append([]string{licence.Code, licence.Title})
				}
				table.Render()
				return nil
			})
		},
	}

	return command
}
