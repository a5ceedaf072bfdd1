package publish

import "path/filepath"

const stagingDirName = ".staging"

// Config locates the published output.
type Config struct {
	// PublicPath holds one directory per published content.
	PublicPath string
	// StagingPath is where output is built before being swapped in. It must live on the
	// same filesystem as PublicPath. Defaults to PublicPath/.staging.
	StagingPath string
	// RetrieveImages copies the images of every markdown body next to the output.
	RetrieveImages bool
	// ImagesBaseDir resolves relative image paths.
	ImagesBaseDir string
	// MaxImageWidth downscales converted images, 0 keeps their size.
	MaxImageWidth int
}

// StagingDir is where output is built before being swapped in.
func (c Config) StagingDir() string {
	if c.StagingPath != "" {
		return c.StagingPath
	}
	return filepath.Join(c.PublicPath, stagingDirName)
}

// ContentDir is the directory holding the output of a published slug.
func (c Config) ContentDir(slug string) string {
	return filepath.Join(c.PublicPath, slug)
}
