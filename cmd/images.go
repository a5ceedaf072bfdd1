package cmd

import (
	"context"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/emrgen/content/internal/config"
	"github.com/emrgen/content/internal/images"
)

var imagesCmd = &cobra.Command{
	Use:   "images",
	Short: "image commands",
}

func init() {
	imagesCmd.AddCommand(rewriteImagesCommand())
	rootCmd.AddCommand(imagesCmd)
}

func rewriteImagesCommand() *cobra.Command {
	var file string
	var output string

	command := &cobra.Command{
		Use:   "rewrite",
		Short: "download the images of a markdown file and point its links to the local copies",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, []string{"file", "output"}) {
				return
			}

			md, err := os.ReadFile(file)
			if err != nil {
				color.Red("error reading %s: %v", file, err)
				return
			}

			cfg := config.LoadConfig()
			baseDir := cfg.Publish.ImagesBaseDir
			if baseDir == "" {
				baseDir = filepath.Dir(file)
			}
			retriever := images.NewRetriever(
				images.WithBaseDir(baseDir),
				images.WithMaxWidth(cfg.Publish.MaxImageWidth),
			)

			rewritten, err := retriever.RetrieveAndUpdateLinks(context.Background(), string(md), output)
			if err != nil {
				color.Red("error retrieving images: %v", err)
				return
			}

			target := filepath.Join(output, filepath.Base(file))
			if err := os.WriteFile(target, []byte(rewritten), 0o644); err != nil {
				color.Red("error writing %s: %v", target, err)
				return
			}

			printField("Markdown", target)
			printField("Images", filepath.Join(output, images.Dir))
		},
	}

	command.Flags().StringVarP(&file, "file", "f", "", "markdown file")
	command.Flags().StringVarP(&output, "output", "o", "", "output directory")

	return command
}
