package delivery

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/oshokin/qobuz-grabber/internal/client/gofile"
	"github.com/oshokin/qobuz-grabber/internal/config"
	"github.com/oshokin/qobuz-grabber/internal/logger"
)

// GoFileBackend uploads deliveries to a GoFile account and returns a folder share link.
type GoFileBackend struct {
	// client talks to the GoFile API.
	client gofile.Client
	// policy selects the fixed or fresh container behavior.
	policy config.GoFileFolderPolicy
	// folderName is the container name used by the fixed policy.
	folderName string
	// recursive mirrors nested folders instead of uploading top-level files only.
	recursive bool
	// mu guards the cached ids below.
	mu sync.Mutex
	// rootFolderID is the cached account root folder.
	rootFolderID string
	// fixedFolderID is the cached container of the fixed policy.
	fixedFolderID string
}

// NewGoFileBackend creates a GoFile backend on top of an API client.
func NewGoFileBackend(cfg *config.Config, client gofile.Client) Backend {
	policy := cfg.GoFile.FolderPolicy
	if policy == "" {
		policy = config.GoFileFolderPolicyFixed
	}

	return &GoFileBackend{
		client:     client,
		policy:     policy,
		folderName: cfg.GoFile.FolderName,
		recursive:  cfg.GoFile.Recursive,
	}
}

// NewGoFileBackendFromConfig creates the API client and the backend.
func NewGoFileBackendFromConfig(cfg *config.Config) (Backend, error) {
	client, err := gofile.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gofile client: %w", err)
	}

	return NewGoFileBackend(cfg, client), nil
}

// Name identifies the backend in logs and errors.
func (b *GoFileBackend) Name() string {
	return "gofile"
}

// Deliver uploads the source into the policy container.
// Already uploaded files are not removed when a later upload fails.
func (b *GoFileBackend) Deliver(ctx context.Context, req *Request) (*Result, error) {
	folderID, err := b.container(ctx)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(req.SourcePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceMissing, err)
	}

	var uploaded int

	switch {
	case !info.IsDir():
		uploaded, err = b.uploadFiles(ctx, folderID, []string{req.SourcePath})
	case b.recursive:
		uploaded, err = b.uploadTree(ctx, folderID, req.SourcePath)
	default:
		uploaded, err = b.uploadTopLevel(ctx, folderID, req.SourcePath)
	}

	if err != nil {
		return nil, err
	}

	if uploaded == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptySource, req.SourcePath)
	}

	logger.Infof(ctx, "Uploaded %d file(s) of '%s' to GoFile", uploaded, req.Title)

	if req.DisableLink {
		return &Result{}, nil
	}

	return &Result{PrimaryLink: b.client.FolderLink(folderID)}, nil
}

// container returns the folder uploads go to, according to the policy.
func (b *GoFileBackend) container(ctx context.Context) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.policy == config.GoFileFolderPolicyFixed && b.fixedFolderID != "" {
		return b.fixedFolderID, nil
	}

	rootFolderID, err := b.rootFolder(ctx)
	if err != nil {
		return "", err
	}

	if b.policy == config.GoFileFolderPolicyFresh {
		return b.client.CreateFolder(ctx, rootFolderID, uuid.NewString())
	}

	contents, err := b.client.GetFolderContents(ctx, rootFolderID)
	if err != nil {
		return "", err
	}

	for _, item := range contents {
		if item.Type == gofile.ContentTypeFolder && item.Name == b.folderName {
			b.fixedFolderID = item.ID

			return item.ID, nil
		}
	}

	folderID, err := b.client.CreateFolder(ctx, rootFolderID, b.folderName)
	if err != nil {
		return "", err
	}

	b.fixedFolderID = folderID

	return folderID, nil
}

// rootFolder resolves the account root folder once. The caller holds mu.
func (b *GoFileBackend) rootFolder(ctx context.Context) (string, error) {
	if b.rootFolderID != "" {
		return b.rootFolderID, nil
	}

	accountID, err := b.client.GetAccountID(ctx)
	if err != nil {
		return "", err
	}

	rootFolderID, err := b.client.GetRootFolder(ctx, accountID)
	if err != nil {
		return "", err
	}

	b.rootFolderID = rootFolderID

	return rootFolderID, nil
}

// uploadTopLevel uploads the regular files directly inside dir.
func (b *GoFileBackend) uploadTopLevel(ctx context.Context, folderID, dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrIO, err)
	}

	files := make([]string, 0, len(entries))

	for _, entry := range entries {
		if entry.Type().IsRegular() {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}

	return b.uploadFiles(ctx, folderID, files)
}

// uploadTree mirrors dir under folderID, creating one remote folder per local folder.
func (b *GoFileBackend) uploadTree(ctx context.Context, folderID, dir string) (int, error) {
	folderIDs := map[string]string{".": folderID}
	uploaded := 0

	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return fmt.Errorf("%w: %w", ErrIO, walkErr)
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrIO, err)
		}

		if rel == "." {
			return nil
		}

		parentID := folderIDs[filepath.Dir(rel)]

		if entry.IsDir() {
			childID, createErr := b.client.CreateFolder(ctx, parentID, entry.Name())
			if createErr != nil {
				return createErr
			}

			folderIDs[rel] = childID

			return nil
		}

		if !entry.Type().IsRegular() {
			return nil
		}

		count, uploadErr := b.uploadFiles(ctx, parentID, []string{path})
		uploaded += count

		return uploadErr
	})

	return uploaded, err
}

// uploadFiles uploads files one by one, stopping at the first failure.
func (b *GoFileBackend) uploadFiles(ctx context.Context, folderID string, files []string) (int, error) {
	for i, path := range files {
		select {
		case <-ctx.Done():
			return i, ctx.Err()
		default:
		}

		if _, err := b.client.UploadFile(ctx, folderID, path); err != nil {
			return i, err
		}

		logger.Debugf(ctx, "Uploaded '%s' to GoFile folder %s", filepath.Base(path), folderID)
	}

	return len(files), nil
}
