package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "content",
	Short: "tutorial and article publication tool",
	Example: `content create -t ARTICLE -f article.yml -l "CC BY"
content list -t TUTORIAL
content show -c <content-id>
content tree targets -c <content-id> -p part-1/chapter-2
content tree move -c <content-id> -p part-1/chapter-2 --after part-2/chapter-1
content publish -c <content-id>
content unpublish -c <content-id>
content published list
content manifest upgrade -f manifest.json
content images rewrite -f extract.md -o out/
content serve`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(dbCmd)
	rootCmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})

	rootCmd.CompletionOptions.HiddenDefaultCmd = true
	cobra.EnableCommandSorting = false
}
