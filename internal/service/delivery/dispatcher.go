package delivery

//go:generate $MOCKGEN -source=dispatcher.go -destination=mocks/dispatcher_mock.go

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oshokin/qobuz-grabber/internal/config"
	"github.com/oshokin/qobuz-grabber/internal/logger"
)

// Request describes one artifact to deliver.
type Request struct {
	// SourcePath is the file, folder or archive to deliver.
	SourcePath string
	// ScopeRoot is the provider-scoped staging root of the run, <base>/<requestId>/<provider>.
	ScopeRoot string
	// Title is a human readable name used in logs and remote names.
	Title string
	// DisableLink suppresses link generation.
	DisableLink bool
}

// Result holds the links produced by a delivery.
// Both links empty means a local-only delivery.
type Result struct {
	// PrimaryLink is the share or remote link.
	PrimaryLink string
	// SecondaryLink is the browsable index link.
	SecondaryLink string
}

// Links returns the non-empty links in order.
func (r *Result) Links() []string {
	if r == nil {
		return nil
	}

	links := make([]string, 0, 2) //nolint:mnd // Primary and secondary.

	for _, link := range []string{r.PrimaryLink, r.SecondaryLink} {
		if link != "" {
			links = append(links, link)
		}
	}

	return links
}

// Backend transfers a source to its destination.
type Backend interface {
	// Deliver transfers req.SourcePath and returns the produced links.
	Deliver(ctx context.Context, req *Request) (*Result, error)
	// Name identifies the backend in logs and errors.
	Name() string
}

// Dispatcher delivers artifacts and cleans their sources up.
type Dispatcher interface {
	// Deliver transfers the request source and removes it on success.
	Deliver(ctx context.Context, req *Request) (*Result, error)
	// Cleanup removes a path; an absent path is not an error.
	Cleanup(path string) error
}

// DispatcherImpl implements the Dispatcher interface on top of one backend.
type DispatcherImpl struct {
	// backend is the configured transfer strategy.
	backend Backend
	// mode is the configured upload mode.
	mode config.UploadMode
	// timeout bounds every backend call.
	timeout time.Duration
}

// NewDispatcher creates a dispatcher for the configured upload mode.
func NewDispatcher(cfg *config.Config, backend Backend) Dispatcher {
	return &DispatcherImpl{
		backend: backend,
		mode:    cfg.UploadMode,
		timeout: cfg.ParsedDeliveryTimeout,
	}
}

// NewBackend builds the backend selected by cfg.UploadMode.
func NewBackend(cfg *config.Config) (Backend, error) {
	switch cfg.UploadMode {
	case config.UploadModeLocal, "":
		return NewLocalBackend(cfg), nil
	case config.UploadModeHostedShare:
		return NewGoFileBackendFromConfig(cfg)
	case config.UploadModeRemoteSync:
		return NewRCloneBackend(cfg, NewExecRunner()), nil
	default:
		return nil, fmt.Errorf("%w: '%s'", config.ErrUnknownUploadMode, cfg.UploadMode)
	}
}

// Deliver transfers the request source and removes it on success.
func (d *DispatcherImpl) Deliver(ctx context.Context, req *Request) (*Result, error) {
	if _, err := os.Stat(req.SourcePath); err != nil {
		return nil, fmt.Errorf("%w: %w: %s", ErrDelivery, ErrSourceMissing, req.SourcePath)
	}

	deliverCtx := ctx
	if d.timeout > 0 {
		var cancel context.CancelFunc

		deliverCtx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	logger.Debugf(ctx, "Delivering '%s' with %s backend", req.SourcePath, d.backend.Name())

	result, err := d.backend.Deliver(deliverCtx, req)
	if err != nil {
		if errors.Is(deliverCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, fmt.Errorf("%w: %s: %w: %w", ErrDelivery, d.backend.Name(), ErrDeliveryTimeout, err)
		}

		return nil, fmt.Errorf("%w: %s: %w", ErrDelivery, d.backend.Name(), err)
	}

	if result == nil {
		result = &Result{}
	}

	target := req.SourcePath
	if d.mode == config.UploadModeLocal && req.ScopeRoot != "" {
		target = req.ScopeRoot
	}

	if err = d.Cleanup(target); err != nil {
		logger.Warnf(ctx, "Failed to clean up '%s' after delivery: %v", target, err)
	}

	return result, nil
}

// Cleanup removes a path; an absent path is not an error.
func (d *DispatcherImpl) Cleanup(path string) error {
	return Cleanup(path)
}

// Cleanup removes a file or folder tree; an absent or empty path is not an error.
func Cleanup(path string) error {
	if path == "" {
		return nil
	}

	if err := os.RemoveAll(filepath.Clean(path)); err != nil {
		return fmt.Errorf("%w: failed to remove %s: %w", ErrIO, path, err)
	}

	return nil
}

// PruneEmptyDirs removes root and its sub-folders when they contain no files.
// Folders still holding files, such as sources kept after a failed delivery, stay.
func PruneEmptyDirs(root string) error {
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}

		return fmt.Errorf("%w: %w", ErrIO, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			if err = PruneEmptyDirs(filepath.Join(root, entry.Name())); err != nil {
				return err
			}
		}
	}

	entries, err = os.ReadDir(root)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}

	if len(entries) > 0 {
		return nil
	}

	if err = os.Remove(root); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}

	return nil
}

// runRoot returns the request folder that holds the provider scope.
func runRoot(req *Request) string {
	if req.ScopeRoot == "" {
		return filepath.Dir(req.SourcePath)
	}

	return filepath.Dir(filepath.Clean(req.ScopeRoot))
}

// relativeToRun returns the source path relative to the request folder.
// Sources outside the run keep only their base name.
func relativeToRun(req *Request) string {
	source := filepath.Clean(req.SourcePath)

	rel, err := filepath.Rel(runRoot(req), source)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.Base(source)
	}

	return rel
}
