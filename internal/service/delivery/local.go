package delivery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/oshokin/qobuz-grabber/internal/config"
	"github.com/oshokin/qobuz-grabber/internal/constants"
	"github.com/oshokin/qobuz-grabber/internal/logger"
)

const (
	// localLockFilename is the merge lock kept in the destination root.
	localLockFilename = ".qobuz-grabber.lock"
	// localLockRetryDelay is the polling interval while waiting for the merge lock.
	localLockRetryDelay = 250 * time.Millisecond
)

// LocalBackend merges delivered trees into a local destination root.
type LocalBackend struct {
	// destinationRoot is the folder every delivery is merged into.
	destinationRoot string
}

// NewLocalBackend creates a backend copying into cfg.LocalDestinationDir.
func NewLocalBackend(cfg *config.Config) Backend {
	return &LocalBackend{destinationRoot: cfg.LocalDestinationDir}
}

// Name identifies the backend in logs and errors.
func (b *LocalBackend) Name() string {
	return "local"
}

// Deliver copies the source under the destination root, keeping its path relative to the run.
// Existing destination files are left untouched and partial copies are not rolled back.
func (b *LocalBackend) Deliver(ctx context.Context, req *Request) (*Result, error) {
	if err := os.MkdirAll(b.destinationRoot, constants.DefaultFolderPermissions); err != nil {
		return nil, fmt.Errorf("%w: failed to create destination root: %w", ErrIO, err)
	}

	lock := flock.New(filepath.Join(b.destinationRoot, localLockFilename))

	locked, err := lock.TryLockContext(ctx, localLockRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to lock destination root: %w", ErrIO, err)
	}

	if !locked {
		return nil, fmt.Errorf("%w: destination root is locked", ErrIO)
	}

	defer func() {
		if unlockErr := lock.Unlock(); unlockErr != nil {
			logger.Warnf(ctx, "Failed to release destination lock: %v", unlockErr)
		}
	}()

	destination := filepath.Join(b.destinationRoot, relativeToRun(req))

	if err = mergeCopy(ctx, req.SourcePath, destination); err != nil {
		return nil, err
	}

	logger.Infof(ctx, "Copied '%s' to '%s'", req.Title, destination)

	return &Result{}, nil
}

// mergeCopy copies src into dst, recursing into folders and skipping files that already exist.
func mergeCopy(ctx context.Context, src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}

	if !info.IsDir() {
		return copyFileIfAbsent(src, dst)
	}

	return filepath.WalkDir(src, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return fmt.Errorf("%w: %w", ErrIO, walkErr)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrIO, err)
		}

		target := filepath.Join(dst, rel)

		if entry.IsDir() {
			if err = os.MkdirAll(target, constants.DefaultFolderPermissions); err != nil {
				return fmt.Errorf("%w: %w", ErrIO, err)
			}

			return nil
		}

		if !entry.Type().IsRegular() {
			return nil
		}

		return copyFileIfAbsent(path, target)
	})
}

// copyFileIfAbsent copies one file unless the target already exists.
func copyFileIfAbsent(src, dst string) (err error) {
	if _, statErr := os.Stat(dst); statErr == nil {
		return nil
	} else if !errors.Is(statErr, fs.ErrNotExist) {
		return fmt.Errorf("%w: %w", ErrIO, statErr)
	}

	if err = os.MkdirAll(filepath.Dir(dst), constants.DefaultFolderPermissions); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}

	in, err := os.Open(filepath.Clean(src))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}

	defer in.Close() //nolint:errcheck // Error on close is not critical here.

	out, err := os.OpenFile(filepath.Clean(dst), os.O_CREATE|os.O_EXCL|os.O_WRONLY, constants.DefaultFilePermissions)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil
		}

		return fmt.Errorf("%w: %w", ErrIO, err)
	}

	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("%w: %w", ErrIO, closeErr)
		}
	}()

	if _, err = io.Copy(out, in); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}

	return nil
}
