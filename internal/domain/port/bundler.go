package port

import "context"

// Bundler packages run outputs into a single archive for sharing.
type Bundler interface {
	CreateBundle(ctx context.Context, filePaths []string, outputPath string) error
}
