package qobuz

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPathBuilder_Layout tests the staging tree of a run.
func TestPathBuilder_Layout(t *testing.T) {
	t.Parallel()

	base := filepath.Join("tmp", "staging")
	paths := newPathBuilder(base, "req-1", "Qobuz", 0)

	assert.Equal(t, filepath.Join(base, "req-1"), paths.runRoot)
	assert.Equal(t, filepath.Join(base, "req-1", "Qobuz"), paths.scopeRoot)
	assert.Equal(t, filepath.Join(base, "req-1", coversFolderName), paths.coversFolder())
	assert.Equal(t,
		filepath.Join(base, "req-1", "Qobuz", "Artist", "Album"),
		paths.albumFolder("", "Artist", "Album"))
	assert.Equal(t,
		filepath.Join(base, "req-1", "Qobuz", "Artist", "Album"),
		paths.albumFolder(paths.collectionFolder("Artist"), "Ignored", "Album"))
	assert.Equal(t,
		filepath.Join(base, "req-1", "Qobuz", "Mix", "A", "B"),
		paths.nestedFolder(paths.collectionFolder("Mix"), "A", "B"))
}

// TestPathBuilder_FolderSegment tests sanitizing and truncation of folder names.
func TestPathBuilder_FolderSegment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		maxLength int64
		input     string
		expected  string
	}{
		{name: "plain", input: "Abbey Road", expected: "Abbey Road"},
		{name: "empty", input: "  ", expected: unknownSegment},
		{name: "separators replaced", input: "AC/DC: Live?", expected: "AC_DC_ Live_"},
		{name: "whitespace collapsed", input: "A   B\tC", expected: "A B C"},
		{name: "reserved name", input: "CON", expected: "_CON"},
		{name: "truncated", maxLength: 5, input: "Abbey Road", expected: "Abbey"},
		{name: "truncation drops trailing dot", maxLength: 4, input: "Mr. X", expected: "Mr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			paths := newPathBuilder(t.TempDir(), "req", "Qobuz", tt.maxLength)
			segment := paths.folderSegment(tt.input)

			assert.Equal(t, tt.expected, segment)
			assert.NotContains(t, segment, string(filepath.Separator))
		})
	}
}

// TestPathBuilder_DistinctAlbums checks that distinct artist and album pairs never share a folder.
func TestPathBuilder_DistinctAlbums(t *testing.T) {
	t.Parallel()

	var (
		artists = []string{"Artist", "Artist 2", "Другой", "Ä"}
		albums  = []string{"One", "One (Live)", "Two", "Ωmega"}
		paths   = newPathBuilder(t.TempDir(), "req", "Qobuz", 0)
		seen    = make(map[string]string)
	)

	for _, artist := range artists {
		for _, album := range albums {
			folder := paths.albumFolder("", artist, album)
			key := artist + "/" + album

			previous, exists := seen[folder]
			require.False(t, exists, "%s and %s share %s", previous, key, folder)

			seen[folder] = key

			assert.True(t, strings.HasPrefix(folder, paths.scopeRoot))
		}
	}
}

// TestPathBuilder_TrackFile tests that track paths are unique within a run.
func TestPathBuilder_TrackFile(t *testing.T) {
	t.Parallel()

	paths := newPathBuilder(t.TempDir(), "req", "Qobuz", 0)
	folder := paths.albumFolder("", "Artist", "Album")

	first := paths.trackFile(folder, "01 - Intro", ".flac")
	second := paths.trackFile(folder, "01 - Intro", ".flac")
	third := paths.trackFile(folder, "01 - Intro", ".flac")
	other := paths.trackFile(folder, "01 - Intro", ".mp3")

	assert.Equal(t, filepath.Join(folder, "01 - Intro.flac"), first)
	assert.Equal(t, filepath.Join(folder, "01 - Intro (2).flac"), second)
	assert.Equal(t, filepath.Join(folder, "01 - Intro (3).flac"), third)
	assert.Equal(t, filepath.Join(folder, "01 - Intro.mp3"), other)

	sanitized := paths.trackFile(folder, "A/B", ".flac")
	assert.Equal(t, filepath.Join(folder, "A_B.flac"), sanitized)
}
