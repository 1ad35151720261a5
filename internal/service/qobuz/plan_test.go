package qobuz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oshokin/qobuz-grabber/internal/config"
)

// TestPlanFor tests the delivery plan of every request kind and option combination.
func TestPlanFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		kind     CatalogKind
		cfg      config.Config
		expected DeliveryPlan
	}{
		{
			name:     "track is delivered once",
			kind:     CatalogKindTrack,
			cfg:      config.Config{UploadMode: config.UploadModeHostedShare, AlbumZip: true},
			expected: DeliveryPlan{Final: true},
		},
		{
			name:     "album zip",
			kind:     CatalogKindAlbum,
			cfg:      config.Config{UploadMode: config.UploadModeHostedShare, AlbumZip: true},
			expected: DeliveryPlan{Archive: true, Final: true},
		},
		{
			name:     "album per item on hosted share",
			kind:     CatalogKindAlbum,
			cfg:      config.Config{UploadMode: config.UploadModeHostedShare},
			expected: DeliveryPlan{PerItem: true},
		},
		{
			name:     "album folder on local",
			kind:     CatalogKindAlbum,
			cfg:      config.Config{UploadMode: config.UploadModeLocal},
			expected: DeliveryPlan{Final: true},
		},
		{
			name:     "album folder on remote sync",
			kind:     CatalogKindAlbum,
			cfg:      config.Config{UploadMode: config.UploadModeRemoteSync},
			expected: DeliveryPlan{Final: true},
		},
		{
			name:     "artist zip wins over batch",
			kind:     CatalogKindArtist,
			cfg:      config.Config{UploadMode: config.UploadModeLocal, ArtistZip: true, ArtistBatch: true},
			expected: DeliveryPlan{Archive: true, Final: true},
		},
		{
			name:     "artist batch",
			kind:     CatalogKindArtist,
			cfg:      config.Config{UploadMode: config.UploadModeRemoteSync, ArtistBatch: true},
			expected: DeliveryPlan{Final: true},
		},
		{
			name:     "artist batch ignored on hosted share",
			kind:     CatalogKindArtist,
			cfg:      config.Config{UploadMode: config.UploadModeHostedShare, ArtistBatch: true},
			expected: DeliveryPlan{PerAlbum: true},
		},
		{
			name:     "artist per album by default",
			kind:     CatalogKindArtist,
			cfg:      config.Config{UploadMode: config.UploadModeLocal},
			expected: DeliveryPlan{PerAlbum: true},
		},
		{
			name:     "label follows artist rules",
			kind:     CatalogKindLabel,
			cfg:      config.Config{UploadMode: config.UploadModeLocal, ArtistBatch: true},
			expected: DeliveryPlan{Final: true},
		},
		{
			name:     "playlist zip without sort",
			kind:     CatalogKindPlaylist,
			cfg:      config.Config{UploadMode: config.UploadModeLocal, PlaylistZip: true},
			expected: DeliveryPlan{Archive: true, Final: true},
		},
		{
			name:     "playlist zip with sort",
			kind:     CatalogKindPlaylist,
			cfg:      config.Config{UploadMode: config.UploadModeLocal, PlaylistZip: true, PlaylistSort: true},
			expected: DeliveryPlan{Archive: true, Final: true, Sort: true},
		},
		{
			name: "playlist zip on hosted share ignores sort",
			kind: CatalogKindPlaylist,
			cfg: config.Config{
				UploadMode:   config.UploadModeHostedShare,
				PlaylistZip:  true,
				PlaylistSort: true,
			},
			expected: DeliveryPlan{Archive: true, Final: true},
		},
		{
			name:     "playlist sort delivers per item",
			kind:     CatalogKindPlaylist,
			cfg:      config.Config{UploadMode: config.UploadModeRemoteSync, PlaylistSort: true},
			expected: DeliveryPlan{PerItem: true, Sort: true},
		},
		{
			name: "playlist sort without links",
			kind: CatalogKindPlaylist,
			cfg: config.Config{
				UploadMode:      config.UploadModeRemoteSync,
				PlaylistSort:    true,
				DisableSortLink: true,
			},
			expected: DeliveryPlan{PerItem: true, Sort: true, DisableItemLinks: true},
		},
		{
			name:     "playlist on hosted share is per item and unsorted",
			kind:     CatalogKindPlaylist,
			cfg:      config.Config{UploadMode: config.UploadModeHostedShare, PlaylistSort: true},
			expected: DeliveryPlan{PerItem: true},
		},
		{
			name:     "playlist folder by default",
			kind:     CatalogKindPlaylist,
			cfg:      config.Config{UploadMode: config.UploadModeLocal},
			expected: DeliveryPlan{Final: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, PlanFor(tt.kind, &tt.cfg))
		})
	}
}
