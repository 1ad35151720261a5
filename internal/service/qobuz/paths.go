package qobuz

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/oshokin/qobuz-grabber/internal/utils"
)

// unknownSegment names folders whose source text is empty.
const unknownSegment = "Unknown"

// pathBuilder lays out the staging tree of one run.
type pathBuilder struct {
	// runRoot is <base>/<requestId>.
	runRoot string
	// scopeRoot is <base>/<requestId>/<provider>.
	scopeRoot string
	// maxFolderNameLength truncates folder names, 0 disables truncation.
	maxFolderNameLength int
	// claimed holds every file path handed out during the run.
	claimed map[string]struct{}
}

func newPathBuilder(baseDir, requestID, provider string, maxFolderNameLength int64) *pathBuilder {
	runRoot := filepath.Join(baseDir, requestID)

	return &pathBuilder{
		runRoot:             runRoot,
		scopeRoot:           filepath.Join(runRoot, utils.NormalizePathSegment(provider)),
		maxFolderNameLength: int(maxFolderNameLength),
		claimed:             make(map[string]struct{}),
	}
}

// folderSegment turns a title into one sanitized and truncated folder name.
func (b *pathBuilder) folderSegment(name string) string {
	if strings.TrimSpace(name) == "" {
		name = unknownSegment
	}

	segment := utils.TruncateRunes(utils.NormalizePathSegment(name), b.maxFolderNameLength)

	// Truncation can leave a trailing dot that some filesystems reject.
	return utils.SanitizeFilename(segment)
}

// collectionFolder returns <scope>/<name>, used for artists, labels and playlists.
func (b *pathBuilder) collectionFolder(name string) string {
	return filepath.Join(b.scopeRoot, b.folderSegment(name))
}

// albumFolder returns <parent>/<album>, or <scope>/<artist>/<album> when parent is empty.
func (b *pathBuilder) albumFolder(parent, artistName, albumTitle string) string {
	if parent == "" {
		return b.nestedFolder(b.scopeRoot, artistName, albumTitle)
	}

	return b.nestedFolder(parent, albumTitle)
}

// nestedFolder returns root joined with one sanitized segment per name.
func (b *pathBuilder) nestedFolder(root string, names ...string) string {
	path := root
	for _, name := range names {
		path = filepath.Join(path, b.folderSegment(name))
	}

	return path
}

// coversFolder holds the cover art of the run outside the provider scope.
func (b *pathBuilder) coversFolder() string {
	return filepath.Join(b.runRoot, coversFolderName)
}

// trackFile returns a file path inside folder that no other track of the run uses.
func (b *pathBuilder) trackFile(folder, filename, extension string) string {
	name := utils.NormalizePathSegment(filename)

	path := filepath.Join(folder, name+extension)
	for i := 2; ; i++ {
		if _, taken := b.claimed[path]; !taken {
			break
		}

		path = filepath.Join(folder, name+" ("+strconv.Itoa(i)+")"+extension)
	}

	b.claimed[path] = struct{}{}

	return path
}
