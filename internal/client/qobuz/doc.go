// Package qobuz provides a Go client for the Qobuz JSON API.
// It resolves tracks, albums, artists, labels and playlists,
// pages through large collections concurrently,
// signs file URL requests with the application secret
// and streams track content for download.
// Metadata lookups are cached in LRU caches shared by concurrent runs.
package qobuz
