package qobuz

//go:generate $MOCKGEN -source=tag_processor.go -destination=mocks/tag_processor_mock.go

import (
	"context"
	"mime"
	"os"
	"path/filepath"

	"github.com/go-flac/flacpicture"
	"github.com/go-flac/flacvorbis"
	"github.com/go-flac/go-flac"
	"github.com/oshokin/id3v2/v2"

	"github.com/oshokin/qobuz-grabber/internal/logger"
)

// TagProcessor writes metadata tags and cover art into fetched tracks.
type TagProcessor interface {
	WriteTags(ctx context.Context, req *WriteTagsRequest) error
}

// WriteTagsRequest contains parameters for writing metadata to audio files.
type WriteTagsRequest struct {
	// TrackPath is the file path of the audio track.
	TrackPath string
	// CoverPath is the file path of the cover art image, empty when there is none.
	CoverPath string
	// Quality is the format of the track file.
	Quality TrackQuality
	// TrackTags contains metadata key-value pairs to write.
	TrackTags map[string]string
}

// TagProcessorImpl provides the default implementation of TagProcessor.
type TagProcessorImpl struct{}

// imageMetadata contains image data and its MIME type.
type imageMetadata struct {
	// data contains the raw image bytes.
	data []byte
	// mimeType specifies the image format (e.g., "image/jpeg").
	mimeType string
}

// NewTagProcessor creates a new TagProcessor instance.
func NewTagProcessor() TagProcessor {
	return new(TagProcessorImpl)
}

// WriteTags writes metadata to audio files based on the provided request.
func (tp *TagProcessorImpl) WriteTags(ctx context.Context, req *WriteTagsRequest) error {
	if req.TrackPath == "" {
		return ErrEmptyTrackPath
	}

	var image *imageMetadata

	if req.CoverPath != "" {
		imageData, err := os.ReadFile(filepath.Clean(req.CoverPath))
		if err != nil {
			return err
		}

		image = &imageMetadata{
			data:     imageData,
			mimeType: mime.TypeByExtension(filepath.Ext(req.CoverPath)),
		}
	}

	if req.Quality.IsLossless() {
		return tp.writeFLACTags(ctx, req, image)
	}

	return tp.writeMP3Tags(req, image)
}

func (tp *TagProcessorImpl) writeFLACTags(ctx context.Context, req *WriteTagsRequest, image *imageMetadata) error {
	f, err := flac.ParseFile(filepath.Clean(req.TrackPath))
	if err != nil {
		return err
	}

	commentIndex := -1

	var tag *flacvorbis.MetaDataBlockVorbisComment

	// Reuse the existing Vorbis comment block when the file has one.
	for idx, meta := range f.Meta {
		if meta.Type != flac.VorbisComment {
			continue
		}

		if comment, parseErr := flacvorbis.ParseFromMetaDataBlock(*meta); parseErr == nil {
			tag, commentIndex = comment, idx

			break
		}
	}

	if tag == nil {
		tag = flacvorbis.New()
	}

	if err = addFLACTags(tag, req.TrackTags); err != nil {
		return err
	}

	tagMeta := tag.Marshal()
	if commentIndex >= 0 {
		f.Meta[commentIndex] = &tagMeta
	} else {
		f.Meta = append(f.Meta, &tagMeta)
	}

	if image != nil {
		picture, pictureErr := flacpicture.NewFromImageData(
			flacpicture.PictureTypeFrontCover, "", image.data, image.mimeType)
		if pictureErr != nil {
			logger.Errorf(ctx, "Failed to embed image to FLAC: %v", pictureErr)
		} else {
			pictureMeta := picture.Marshal()
			f.Meta = append(f.Meta, &pictureMeta)
		}
	}

	return f.Save(req.TrackPath)
}

func addFLACTags(tag *flacvorbis.MetaDataBlockVorbisComment, tags map[string]string) error {
	flacTags := []struct {
		key   string
		value string
	}{
		{"TITLE", tags["trackTitle"]},
		{"ARTIST", tags["trackArtist"]},
		{"ALBUM", tags["albumTitle"]},
		{"ALBUMARTIST", tags["albumArtist"]},
		{"TRACKNUMBER", tags["trackNumber"]},
		{"TOTALTRACKS", tags["trackCount"]},
		{"DISCNUMBER", tags["discNumber"]},
		{"DATE", tags["releaseDate"]},
		{"YEAR", tags["releaseYear"]},
		{"GENRE", tags["genre"]},
		{"ORGANIZATION", tags["recordLabel"]},
		{"COPYRIGHT", tags["copyright"]},
		{"ISRC", tags["isrc"]},
		{"PLAYLIST", tags["playlistTitle"]},
	}

	for _, t := range flacTags {
		if t.value == "" {
			continue
		}

		if err := tag.Add(t.key, t.value); err != nil {
			return err
		}
	}

	return nil
}

func (tp *TagProcessorImpl) writeMP3Tags(req *WriteTagsRequest, image *imageMetadata) error {
	//nolint:exhaustruct // ParseFrames intentionally omitted when Parse=false (parsing disabled).
	tag, err := id3v2.Open(req.TrackPath, id3v2.Options{Parse: false})
	if err != nil {
		return err
	}

	defer tag.Close()

	addMP3Tags(tag, req.TrackTags)

	if image != nil {
		//nolint:exhaustruct // Description field intentionally empty for cover images.
		tag.AddAttachedPicture(id3v2.PictureFrame{
			Encoding:    id3v2.EncodingUTF8,
			MimeType:    image.mimeType,
			PictureType: id3v2.PTFrontCover,
			Picture:     image.data,
		})
	}

	return tag.Save()
}

func addMP3Tags(tag *id3v2.Tag, tags map[string]string) {
	tag.SetDefaultEncoding(id3v2.EncodingUTF8)

	tag.SetAlbum(tags["albumTitle"])
	tag.SetArtist(tags["trackArtist"])
	tag.SetGenre(tags["genre"])
	tag.SetTitle(tags["trackTitle"])
	tag.SetYear(tags["releaseYear"])

	// Track number and total tracks (e.g., "1/10").
	trackNumber, trackCount := tags["trackNumber"], tags["trackCount"]
	if trackNumber != "" && trackCount != "" {
		tag.AddTextFrame(tag.CommonID("Track number/Position in set"), tag.DefaultEncoding(),
			trackNumber+"/"+trackCount)
	}

	optionalFrames := []struct {
		frame string
		value string
	}{
		{"Band/Orchestra/Accompaniment", tags["albumArtist"]},
		{"Publisher", tags["recordLabel"]},
		{"Part of a set", tags["discNumber"]},
		{"Copyright message", tags["copyright"]},
		{"ISRC", tags["isrc"]},
	}

	for _, f := range optionalFrames {
		if f.value == "" {
			continue
		}

		tag.AddTextFrame(tag.CommonID(f.frame), tag.DefaultEncoding(), f.value)
	}
}
