package qobuz

import "github.com/oshokin/qobuz-grabber/internal/config"

// DeliveryPlan says when a request is archived and delivered.
type DeliveryPlan struct {
	// PerItem delivers every track right after it is fetched.
	PerItem bool
	// PerAlbum applies the album plan to every album of a discography.
	PerAlbum bool
	// Archive zips the request folder once every child is fetched.
	Archive bool
	// Final delivers the request folder, archive or track once every child is fetched.
	Final bool
	// Sort lays playlist tracks out by artist and album.
	Sort bool
	// DisableItemLinks suppresses links of per-item deliveries.
	DisableItemLinks bool
}

// PlanFor returns the delivery plan of a request kind under cfg.
func PlanFor(kind CatalogKind, cfg *config.Config) DeliveryPlan {
	perItemMode := cfg.UploadMode.RequiresPerItemDelivery()

	switch kind {
	case CatalogKindAlbum:
		switch {
		case cfg.AlbumZip:
			return DeliveryPlan{Archive: true, Final: true}
		case perItemMode:
			return DeliveryPlan{PerItem: true}
		default:
			return DeliveryPlan{Final: true}
		}
	case CatalogKindArtist, CatalogKindLabel:
		switch {
		case cfg.ArtistZip:
			return DeliveryPlan{Archive: true, Final: true}
		case cfg.ArtistBatch && !perItemMode:
			return DeliveryPlan{Final: true}
		default:
			return DeliveryPlan{PerAlbum: true}
		}
	case CatalogKindPlaylist:
		sort := cfg.PlaylistSort && !perItemMode

		switch {
		case cfg.PlaylistZip:
			return DeliveryPlan{Archive: true, Final: true, Sort: sort}
		case sort:
			return DeliveryPlan{PerItem: true, Sort: true, DisableItemLinks: cfg.DisableSortLink}
		case perItemMode:
			return DeliveryPlan{PerItem: true}
		default:
			return DeliveryPlan{Final: true}
		}
	case CatalogKindTrack, CatalogKindUnknown:
		return DeliveryPlan{Final: true}
	default:
		return DeliveryPlan{Final: true}
	}
}
