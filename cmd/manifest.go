package cmd

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/emrgen/content/internal/server"
)

var manifestCmd = &cobra.Command{
	Use:   "manifest",
	Short: "manifest commands",
}

func init() {
	manifestCmd.AddCommand(upgradeManifestCommand())
	rootCmd.AddCommand(manifestCmd)
}

func upgradeManifestCommand() *cobra.Command {
	var files []string
	var defaultLicence string

	command := &cobra.Command{
		Use:   "upgrade",
		Short: "upgrade v1 manifests to the current version in place",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, []string{"file"}) {
				return
			}

			withApp(func(app *server.App) error {
				for _, file := range files {
					m, err := app.Licences.UpgradeManifest(file, defaultLicence)
					if err != nil {
						color.Red("%s: %v", file, err)
						continue
					}
					color.Green("%s: upgraded %s %q (licence %s)", file, m.Type, m.Title, m.Licence)
				}
				return nil
			})
		},
	}

	command.Flags().StringSliceVarP(&files, "file", "f", nil, "manifest files to upgrade")
	command.Flags().StringVarP(&defaultLicence, "default-licence", "l", "", "licence used when the manifest one is unknown")

	return command
}
