package qobuz

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ReleaseCandidate is one listed release of a discography.
type ReleaseCandidate struct {
	// ID is the album identifier.
	ID string
	// Title is the album title.
	Title string
	// Version is an optional edition qualifier.
	Version string
	// ArtistName is the credited main artist.
	ArtistName string
	// BitDepth is the best available bit depth.
	BitDepth int
	// SamplingRate is the best available sampling rate in kHz.
	SamplingRate float64
	// IsRemaster is true when title or version mention a (re)master.
	IsRemaster bool
	// IsExtra is true when title or version mention a bonus edition.
	IsExtra bool
}

// SelectorOptions tunes the selection.
type SelectorOptions struct {
	// PreferSmallerFiles picks the lowest sampling rate at the best bit depth.
	PreferSmallerFiles bool
	// ExcludeBonusEditions drops deluxe, live and similar editions.
	ExcludeBonusEditions bool
}

//nolint:gochecknoglobals // This is a justified global variable: immutable data, performance optimization, and reusability.
var (
	// remasterPattern detects remastered editions.
	remasterPattern = regexp.MustCompile(`(?i)(re)?master(ed)?`)
	// extraPattern detects bonus editions.
	extraPattern = regexp.MustCompile(`(?i)(anniversary|deluxe|live|collector|demo|expanded)`)
	// essenceFolder lower-cases essence keys.
	essenceFolder = cases.Lower(language.Und)
)

// NewReleaseCandidate builds a candidate and classifies it from its title and version.
func NewReleaseCandidate(
	id, title, version, artistName string,
	bitDepth int,
	samplingRate float64,
) *ReleaseCandidate {
	text := title + " " + version

	return &ReleaseCandidate{
		ID:           id,
		Title:        title,
		Version:      version,
		ArtistName:   artistName,
		BitDepth:     bitDepth,
		SamplingRate: samplingRate,
		IsRemaster:   remasterPattern.MatchString(text),
		IsExtra:      extraPattern.MatchString(text),
	}
}

// EssenceKey returns the grouping key of a title: the text before the first
// parenthesis or bracket, trimmed and lower-cased, or the whole title when that prefix is empty.
func EssenceKey(title string) string {
	prefix := title
	if i := strings.IndexAny(title, "(["); i >= 0 {
		prefix = title[:i]
	}

	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = strings.TrimSpace(title)
	}

	return essenceFolder.String(prefix)
}

// Select keeps one canonical edition per essence-key group, in first-seen group order.
// An empty requestedArtistName accepts any credited artist.
func Select(requestedArtistName string, candidates []*ReleaseCandidate, opts SelectorOptions) []*ReleaseCandidate {
	var (
		order  []string
		groups = make(map[string][]*ReleaseCandidate)
	)

	for _, candidate := range candidates {
		if candidate == nil {
			continue
		}

		key := EssenceKey(candidate.Title)
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}

		groups[key] = append(groups[key], candidate)
	}

	result := make([]*ReleaseCandidate, 0, len(order))

	for _, key := range order {
		if best := selectFromGroup(requestedArtistName, groups[key], opts); best != nil {
			result = append(result, best)
		}
	}

	return result
}

// selectFromGroup returns the first valid candidate of a group, or nil.
func selectFromGroup(requestedArtistName string, group []*ReleaseCandidate, opts SelectorOptions) *ReleaseCandidate {
	bestBitDepth := group[0].BitDepth
	for _, candidate := range group[1:] {
		bestBitDepth = max(bestBitDepth, candidate.BitDepth)
	}

	var (
		bestSamplingRate float64
		rateFound        bool
		remasterExists   bool
	)

	for _, candidate := range group {
		remasterExists = remasterExists || candidate.IsRemaster

		if candidate.BitDepth != bestBitDepth {
			continue
		}

		switch {
		case !rateFound:
			bestSamplingRate, rateFound = candidate.SamplingRate, true
		case opts.PreferSmallerFiles:
			bestSamplingRate = min(bestSamplingRate, candidate.SamplingRate)
		default:
			bestSamplingRate = max(bestSamplingRate, candidate.SamplingRate)
		}
	}

	for _, candidate := range group {
		if candidate.BitDepth != bestBitDepth || candidate.SamplingRate != bestSamplingRate {
			continue
		}

		if requestedArtistName != "" && candidate.ArtistName != requestedArtistName {
			continue
		}

		if remasterExists && !candidate.IsRemaster {
			continue
		}

		if opts.ExcludeBonusEditions && candidate.IsExtra {
			continue
		}

		return candidate
	}

	return nil
}
