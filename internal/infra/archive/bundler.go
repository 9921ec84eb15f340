package archive

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Bundler packages extracted images and the metadata table into one ZIP
// for handoff to downstream tooling.
type Bundler struct{}

func NewBundler() *Bundler {
	return &Bundler{}
}

func (b *Bundler) CreateBundle(ctx context.Context, filePaths []string, outputPath string) error {
	bundleFile, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create bundle file: %w", err)
	}
	defer bundleFile.Close()

	zw := zip.NewWriter(bundleFile)
	defer zw.Close()

	for _, fp := range filePaths {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := addFileToBundle(zw, fp); err != nil {
			return fmt.Errorf("add %s to bundle: %w", fp, err)
		}
	}

	return nil
}

func addFileToBundle(zw *zip.Writer, filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}

	header.Name = filepath.Base(filename)
	header.Method = zip.Deflate

	writer, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}

	_, err = io.Copy(writer, file)
	return err
}
