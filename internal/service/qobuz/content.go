package qobuz

//go:generate $MOCKGEN -source=content.go -destination=mocks/content_mock.go

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/oshokin/qobuz-grabber/internal/client/qobuz"
	"github.com/oshokin/qobuz-grabber/internal/config"
	"github.com/oshokin/qobuz-grabber/internal/constants"
	"github.com/oshokin/qobuz-grabber/internal/logger"
)

// overwriteFileOptions opens a file for writing, replacing any previous content.
const overwriteFileOptions = os.O_CREATE | os.O_TRUNC | os.O_WRONLY

// ContentInfo is the stream location of one track.
type ContentInfo struct {
	// URL is the temporary content URL.
	URL string
	// Quality is the format actually granted.
	Quality TrackQuality
	// BitDepth is the granted bit depth.
	BitDepth int
	// SamplingRate is the granted sampling rate in kHz.
	SamplingRate float64
}

// ContentFetcher obtains and downloads track content.
type ContentFetcher interface {
	// FetchContent returns the stream location of a track.
	FetchContent(ctx context.Context, itemID string) (*ContentInfo, error)
	// DownloadToPath downloads url to destPath and returns the number of bytes written.
	DownloadToPath(ctx context.Context, url, destPath string) (int64, error)
}

// ContentFetcherImpl implements ContentFetcher with the Qobuz client.
type ContentFetcherImpl struct {
	client     qobuz.Client
	cfg        *config.Config
	isTerminal func() bool
}

// NewContentFetcher creates a new ContentFetcher.
func NewContentFetcher(cfg *config.Config, client qobuz.Client) ContentFetcher {
	return &ContentFetcherImpl{
		client: client,
		cfg:    cfg,
		isTerminal: func() bool {
			fd := os.Stderr.Fd()

			return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
		},
	}
}

// FetchContent returns the stream location of a track.
func (f *ContentFetcherImpl) FetchContent(ctx context.Context, itemID string) (*ContentInfo, error) {
	fileURL, err := f.client.GetFileURL(ctx, itemID, int(f.cfg.Quality))
	if err != nil {
		if errors.Is(err, qobuz.ErrEmptyFileURL) || errors.Is(err, qobuz.ErrSampleOnly) {
			return nil, fmt.Errorf("%w: %w", ErrItemUnavailable, err)
		}

		return nil, err
	}

	quality := TrackQuality(fileURL.FormatID) //nolint:gosec // Format ids are small.
	if quality != TrackQuality(f.cfg.Quality) {
		logger.Infof(ctx, "Track %s is only available in quality: %s", itemID, quality)
	}

	return &ContentInfo{
		URL:          fileURL.URL,
		Quality:      quality,
		BitDepth:     fileURL.BitDepth,
		SamplingRate: fileURL.SamplingRate,
	}, nil
}

// DownloadToPath downloads url to destPath through a temporary .part file.
//
//nolint:funlen // Download, throttling and cleanup belong together.
func (f *ContentFetcherImpl) DownloadToPath(ctx context.Context, url, destPath string) (int64, error) {
	if destPath == "" {
		return 0, ErrEmptyTrackPath
	}

	fetchResult, err := f.client.FetchContent(ctx, url)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch content: %w", err)
	}

	defer fetchResult.Body.Close() //nolint:errcheck // Error on close is not critical here.

	tempFilePath := destPath + constants.ExtensionPart

	// Always overwrite .part files (they indicate incomplete downloads).
	file, err := os.OpenFile(filepath.Clean(tempFilePath), overwriteFileOptions, constants.DefaultFilePermissions)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to create temporary file: %w", ErrIO, err)
	}

	var downloadSucceeded, fileClosed bool

	defer func() {
		var closeErr error
		if !fileClosed {
			closeErr = file.Close()
		}

		if downloadSucceeded {
			return
		}

		if removeErr := os.Remove(tempFilePath); removeErr != nil && !os.IsNotExist(removeErr) {
			logger.Warnf(ctx, "Failed to clean up temporary file '%s': %v (close error: %v)",
				tempFilePath, removeErr, closeErr)
		}
	}()

	// Progress bars are disabled when runs are concurrent to avoid terminal output conflicts.
	var writer io.Writer = file

	if logger.Level() <= zap.InfoLevel && f.cfg.MaxConcurrentRuns == 1 && f.isTerminal() {
		bar := progressbar.DefaultBytes(fetchResult.TotalBytes, "Downloading")
		writer = io.MultiWriter(file, bar)
	}

	bytesWritten, err := f.copyContent(ctx, writer, fetchResult.Body)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to write file: %w", ErrIO, err)
	}

	if fetchResult.TotalBytes >= 0 && bytesWritten != fetchResult.TotalBytes {
		return 0, fmt.Errorf(
			"%w: %w: wrote %d bytes, expected %d bytes",
			ErrIO,
			ErrIncompleteDownload,
			bytesWritten,
			fetchResult.TotalBytes,
		)
	}

	fileClosed = true
	if err = file.Close(); err != nil {
		return 0, fmt.Errorf("%w: failed to close file: %w", ErrIO, err)
	}

	if err = os.Rename(tempFilePath, destPath); err != nil {
		return 0, fmt.Errorf("%w: failed to finalize file: %w", ErrIO, err)
	}

	downloadSucceeded = true

	return bytesWritten, nil
}

// copyContent copies body to writer, throttled to the configured speed limit.
func (f *ContentFetcherImpl) copyContent(ctx context.Context, writer io.Writer, body io.Reader) (int64, error) {
	if f.cfg.ParsedDownloadSpeedLimit == 0 {
		return io.Copy(writer, body)
	}

	var bytesWritten int64

	for {
		n, err := io.CopyN(writer, body, f.cfg.ParsedDownloadSpeedLimit)
		bytesWritten += n

		if errors.Is(err, io.EOF) {
			return bytesWritten, nil
		}

		if err != nil {
			return bytesWritten, err
		}

		// Throttle to respect speed limit.
		select {
		case <-ctx.Done():
			return bytesWritten, ctx.Err()
		case <-time.After(time.Second):
		}
	}
}
