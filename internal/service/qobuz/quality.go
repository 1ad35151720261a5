package qobuz

import (
	"fmt"

	"github.com/oshokin/qobuz-grabber/internal/constants"
)

// TrackQuality is a Qobuz format id.
type TrackQuality uint8

const (
	// TrackQualityUnknown represents an unknown format.
	TrackQualityUnknown TrackQuality = 0
	// TrackQualityMP3 represents MP3 at 320 Kbps.
	TrackQualityMP3 TrackQuality = 5
	// TrackQualityCD represents FLAC 16-bit / 44.1 kHz.
	TrackQualityCD TrackQuality = 6
	// TrackQualityHiRes96 represents FLAC 24-bit up to 96 kHz.
	TrackQualityHiRes96 TrackQuality = 7
	// TrackQualityHiRes192 represents FLAC 24-bit up to 192 kHz.
	TrackQualityHiRes192 TrackQuality = 27
)

// String returns the display value of the TrackQuality.
func (tq TrackQuality) String() string {
	switch tq {
	case TrackQualityMP3:
		return "MP3, 320 Kbps"
	case TrackQualityCD:
		return "FLAC, 16-bit / 44.1 kHz (CD quality)"
	case TrackQualityHiRes96:
		return "FLAC, 24-bit up to 96 kHz (hi-res)"
	case TrackQualityHiRes192:
		return "FLAC, 24-bit up to 192 kHz (hi-res)"
	case TrackQualityUnknown:
		return "unknown format"
	default:
		return fmt.Sprintf("unknown format: %d", tq)
	}
}

// IsLossless reports whether the format is FLAC.
func (tq TrackQuality) IsLossless() bool {
	return tq == TrackQualityCD || tq == TrackQualityHiRes96 || tq == TrackQualityHiRes192
}

// Extension returns the file extension for the format.
func (tq TrackQuality) Extension() string {
	if tq == TrackQualityMP3 {
		return constants.ExtensionMP3
	}

	return constants.ExtensionFLAC
}
