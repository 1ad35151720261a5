package qobuz

//go:generate $MOCKGEN -source=locator.go -destination=mocks/locator_mock.go

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/oshokin/qobuz-grabber/internal/utils"
)

// Locator parses catalog URLs.
type Locator interface {
	// Resolve parses a catalog URL into a reference.
	Resolve(url string) (*CatalogRef, error)
	// ExpandURLs flattens .txt files of URLs and removes duplicates, keeping the first occurrence.
	ExpandURLs(urls []string) ([]string, error)
}

// LocatorImpl implements the Locator interface.
type LocatorImpl struct{}

// defaultTextExtension is the extension of files holding one URL per line.
const defaultTextExtension = ".txt"

//nolint:gochecknoglobals,lll // This is a justified global variable: immutable data, performance optimization, and reusability.
var (
	// classicURLPattern matches "/type/slug/id" URLs with an optional host and locale.
	classicURLPattern = regexp.MustCompile(
		`^(?:https://(?:www|open|play)\.qobuz\.com)?(?:/[a-z]{2}-[a-z]{2})?/(?<Kind>album|artist|track|playlist|label|interpreter)(?:/[^/?#]+)?/(?<ID>\w+)/?(?:[?#].*)?$`)
	// playlistURLPattern matches the "/playlists/slug/id" form.
	playlistURLPattern = regexp.MustCompile(
		`^https://(?:www|open|play)\.qobuz\.com(?:/[a-z]{2}-[a-z]{2})?/playlists/[^/?#]+/(?<ID>\d+)/?(?:[?#].*)?$`)
	// catalogKindsByName maps URL path types to catalog kinds.
	catalogKindsByName = map[string]CatalogKind{
		"album":       CatalogKindAlbum,
		"artist":      CatalogKindArtist,
		"interpreter": CatalogKindArtist,
		"label":       CatalogKindLabel,
		"playlist":    CatalogKindPlaylist,
		"track":       CatalogKindTrack,
	}
)

// NewLocator creates and returns a new instance of LocatorImpl.
func NewLocator() Locator {
	return &LocatorImpl{}
}

// Resolve parses a catalog URL into a reference.
func (l *LocatorImpl) Resolve(url string) (*CatalogRef, error) {
	url = strings.TrimSpace(url)

	if match := classicURLPattern.FindStringSubmatch(url); match != nil {
		kind := catalogKindsByName[match[classicURLPattern.SubexpIndex("Kind")]]

		return &CatalogRef{Kind: kind, ID: match[classicURLPattern.SubexpIndex("ID")]}, nil
	}

	if id := utils.ExtractNamedGroup(playlistURLPattern, "ID", url); id != "" {
		return &CatalogRef{Kind: CatalogKindPlaylist, ID: id}, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrInvalidReference, url)
}

// ExpandURLs flattens .txt files of URLs and removes duplicates, keeping the first occurrence.
func (l *LocatorImpl) ExpandURLs(urls []string) ([]string, error) {
	var (
		processedSet       = make(map[string]struct{}, len(urls))
		processedTextFiles = make(map[string]struct{})
		processedURLs      = make([]string, 0, len(urls))
	)

	add := func(url string) {
		url = strings.TrimSpace(url)
		if url == "" {
			return
		}

		if _, ok := processedSet[url]; ok {
			return
		}

		processedSet[url] = struct{}{}
		processedURLs = append(processedURLs, url)
	}

	for _, url := range urls {
		if !strings.HasSuffix(strings.ToLower(url), defaultTextExtension) {
			add(url)

			continue
		}

		if _, exists := processedTextFiles[url]; exists {
			continue
		}

		lines, err := utils.ReadUniqueLinesFromFile(url)
		if err != nil {
			return nil, fmt.Errorf("failed to read URLs from %s: %w", url, err)
		}

		for _, line := range lines {
			add(line)
		}

		processedTextFiles[url] = struct{}{}
	}

	return processedURLs, nil
}
