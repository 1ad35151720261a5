package qobuz

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/oshokin/qobuz-grabber/internal/constants"
	"github.com/oshokin/qobuz-grabber/internal/logger"
)

// zipFolder archives folder into <folder>.zip and removes the folder.
// Entries are stored under the folder base name.
func zipFolder(ctx context.Context, folder string) (string, error) {
	folder = filepath.Clean(folder)
	archivePath := folder + constants.ExtensionZIP

	if err := writeArchive(ctx, folder, archivePath); err != nil {
		_ = os.Remove(archivePath)

		return "", fmt.Errorf("%w: %s: %w", ErrFormat, folder, err)
	}

	if err := os.RemoveAll(folder); err != nil {
		logger.Warnf(ctx, "Failed to remove '%s' after archiving: %v", folder, err)
	}

	return archivePath, nil
}

func writeArchive(ctx context.Context, folder, archivePath string) (err error) {
	file, err := os.OpenFile(filepath.Clean(archivePath), overwriteFileOptions, constants.DefaultFilePermissions)
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := file.Close(); err == nil {
			err = closeErr
		}
	}()

	writer := zip.NewWriter(file)

	defer func() {
		if closeErr := writer.Close(); err == nil {
			err = closeErr
		}
	}()

	parent := filepath.Dir(folder)

	return filepath.WalkDir(folder, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		rel, relErr := filepath.Rel(parent, path)
		if relErr != nil {
			return relErr
		}

		name := filepath.ToSlash(rel)

		if entry.IsDir() {
			_, createErr := writer.Create(name + "/")

			return createErr
		}

		if !entry.Type().IsRegular() {
			return nil
		}

		return addArchiveFile(writer, path, name)
	})
}

func addArchiveFile(writer *zip.Writer, path, name string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}

	header.Name = name
	// Audio is already compressed.
	header.Method = zip.Store

	entryWriter, err := writer.CreateHeader(header)
	if err != nil {
		return err
	}

	source, err := os.Open(filepath.Clean(path))
	if err != nil {
		return err
	}

	defer source.Close() //nolint:errcheck // Read-only file.

	_, err = io.Copy(entryWriter, source)

	return err
}
