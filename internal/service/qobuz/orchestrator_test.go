package qobuz_test

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/oshokin/qobuz-grabber/internal/config"
	"github.com/oshokin/qobuz-grabber/internal/history"
	mock_history "github.com/oshokin/qobuz-grabber/internal/history/mocks"
	"github.com/oshokin/qobuz-grabber/internal/service/delivery"
	mock_delivery "github.com/oshokin/qobuz-grabber/internal/service/delivery/mocks"
	"github.com/oshokin/qobuz-grabber/internal/service/notify"
	mock_notify "github.com/oshokin/qobuz-grabber/internal/service/notify/mocks"
	"github.com/oshokin/qobuz-grabber/internal/service/qobuz"
	mock_qobuz "github.com/oshokin/qobuz-grabber/internal/service/qobuz/mocks"
)

const testProvider = "Qobuz"

// fixture wires an orchestrator with mocked catalog access.
type fixture struct {
	cfg      *config.Config
	resolver *mock_qobuz.MockMetadataResolver
	content  *mock_qobuz.MockContentFetcher
	tags     *mock_qobuz.MockTagProcessor
	stats    *qobuz.SessionStatistics
	notifier notify.Notifier
	history  history.Store
}

func newFixture(t *testing.T, mode config.UploadMode) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	dir := t.TempDir()

	return &fixture{
		cfg: &config.Config{
			DownloadBaseDir:          filepath.Join(dir, "staging"),
			LocalDestinationDir:      filepath.Join(dir, "library"),
			ProviderName:             testProvider,
			TrackFilenameTemplate:    config.DefaultTrackFilenameTemplate,
			PlaylistFilenameTemplate: config.DefaultPlaylistFilenameTemplate,
			UploadMode:               mode,
			Requester:                "tester",
		},
		resolver: mock_qobuz.NewMockMetadataResolver(ctrl),
		content:  mock_qobuz.NewMockContentFetcher(ctrl),
		tags:     mock_qobuz.NewMockTagProcessor(ctrl),
		stats:    qobuz.NewSessionStatistics(),
		notifier: notify.NewLogNotifier(zap.NewNop().Sugar()),
	}
}

// serveContent makes every track downloadable except the failing ones.
func (f *fixture) serveContent(failing ...string) {
	f.content.EXPECT().FetchContent(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, id string) (*qobuz.ContentInfo, error) {
			if slices.Contains(failing, id) {
				return nil, fmt.Errorf("%w: sample only", qobuz.ErrItemUnavailable)
			}

			return &qobuz.ContentInfo{URL: "https://streaming.qobuz.test/" + id, Quality: qobuz.TrackQualityCD}, nil
		}).AnyTimes()

	f.content.EXPECT().DownloadToPath(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, url, destPath string) (int64, error) {
			data := []byte(url)

			return int64(len(data)), os.WriteFile(destPath, data, 0o600)
		}).AnyTimes()
}

func (f *fixture) acceptTags() {
	f.tags.EXPECT().WriteTags(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
}

func (f *fixture) orchestrator(dispatcher delivery.Dispatcher) qobuz.Orchestrator {
	return qobuz.NewOrchestrator(f.cfg, &qobuz.OrchestratorDependencies{
		Locator:         qobuz.NewLocator(),
		Resolver:        f.resolver,
		Content:         f.content,
		TagProcessor:    f.tags,
		TemplateManager: qobuz.NewTemplateManager(context.Background(), f.cfg),
		Dispatcher:      dispatcher,
		Notifier:        f.notifier,
		History:         f.history,
		Statistics:      f.stats,
	})
}

func (f *fixture) localDispatcher() delivery.Dispatcher {
	return delivery.NewDispatcher(f.cfg, delivery.NewLocalBackend(f.cfg))
}

// recorder is a mocked dispatcher that keeps every delivery request.
type recorder struct {
	mu       sync.Mutex
	requests []*delivery.Request
}

func (r *recorder) sources() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	sources := make([]string, 0, len(r.requests))
	for _, req := range r.requests {
		sources = append(sources, req.SourcePath)
	}

	return sources
}

func newRecordingDispatcher(t *testing.T) (*mock_delivery.MockDispatcher, *recorder) {
	t.Helper()

	var (
		dispatcher = mock_delivery.NewMockDispatcher(gomock.NewController(t))
		rec        = new(recorder)
	)

	dispatcher.EXPECT().Deliver(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req *delivery.Request) (*delivery.Result, error) {
			_, err := os.Stat(req.SourcePath)
			assert.NoError(t, err, "Delivered source should exist")

			rec.mu.Lock()
			rec.requests = append(rec.requests, req)
			rec.mu.Unlock()

			return &delivery.Result{PrimaryLink: "https://share.test/" + filepath.Base(req.SourcePath)}, nil
		}).AnyTimes()
	dispatcher.EXPECT().Cleanup(gomock.Any()).DoAndReturn(delivery.Cleanup).AnyTimes()

	return dispatcher, rec
}

func newAlbum(id, artist, title string, trackTitles ...string) *qobuz.ItemRecord {
	tracks := make([]*qobuz.ItemRecord, len(trackTitles))

	for i, trackTitle := range trackTitles {
		tracks[i] = qobuz.NewTrackRecord(testProvider, fmt.Sprintf("%s-t%d", id, i+1), trackTitle, &qobuz.TrackPayload{
			Number:          int64(i + 1),
			DiscNumber:      1,
			ArtistName:      artist,
			AlbumID:         id,
			AlbumTitle:      title,
			AlbumArtist:     artist,
			AlbumTrackCount: int64(len(trackTitles)),
			ReleaseDate:     "2020-01-01",
		})
	}

	return qobuz.NewAlbumRecord(testProvider, id, title, &qobuz.AlbumPayload{
		ArtistName: artist,
		TrackCount: int64(len(trackTitles)),
	}, tracks)
}

func scopeRoot(cfg *config.Config, report *qobuz.RunReport) string {
	return filepath.Join(cfg.DownloadBaseDir, report.RequestID, testProvider)
}

// TestOrchestrator_AlbumWithFailedTrack tests that one failed track does not stop the album.
func TestOrchestrator_AlbumWithFailedTrack(t *testing.T) {
	t.Parallel()

	f := newFixture(t, config.UploadModeLocal)
	f.resolver.EXPECT().GetAlbum(gomock.Any(), "a1").
		Return(newAlbum("a1", "Artist", "Album", "One", "Two", "Three"), nil)
	f.serveContent("a1-t2")
	f.acceptTags()

	report := f.orchestrator(f.localDispatcher()).Run(context.Background(), "https://www.qobuz.com/us-en/album/album/a1")

	require.NoError(t, report.Err)
	assert.Equal(t, qobuz.RunStateDone, report.State)
	assert.Equal(t, []qobuz.RunState{
		qobuz.RunStateResolving,
		qobuz.RunStateExpanding,
		qobuz.RunStateFetchingItem,
		qobuz.RunStateDelivering,
		qobuz.RunStateDone,
	}, report.States)

	require.Len(t, report.Failures, 1)
	assert.Equal(t, "a1-t2", report.Failures[0].ItemID)
	assert.Equal(t, "fetching content", report.Failures[0].Phase)
	require.ErrorIs(t, report.Failures[0].Err, qobuz.ErrItemUnavailable)

	require.Len(t, report.Progress, 3)

	for i, event := range report.Progress {
		assert.Equal(t, i+1, event.Index)
		assert.Equal(t, 3, event.Total)
	}

	albumDir := filepath.Join(f.cfg.LocalDestinationDir, testProvider, "Artist", "Album")
	assert.FileExists(t, filepath.Join(albumDir, "01 - One.flac"))
	assert.NoFileExists(t, filepath.Join(albumDir, "02 - Two.flac"))
	assert.FileExists(t, filepath.Join(albumDir, "03 - Three.flac"))

	assert.NoDirExists(t, filepath.Join(f.cfg.DownloadBaseDir, report.RequestID), "Staging should be removed")

	stats := f.stats.Snapshot()
	assert.Equal(t, int64(2), stats.TracksDownloaded)
	assert.Equal(t, int64(1), stats.TracksFailed)
	assert.Equal(t, int64(1), stats.Deliveries)
	assert.Equal(t, int64(1), stats.RunsDone)
	require.Len(t, stats.Errors, 1)
	assert.Equal(t, "a1", stats.Errors[0].ParentID)
}

// TestOrchestrator_PerItemDeliveryFailure tests that a track that cannot be delivered counts as failed.
func TestOrchestrator_PerItemDeliveryFailure(t *testing.T) {
	t.Parallel()

	f := newFixture(t, config.UploadModeHostedShare)
	f.resolver.EXPECT().GetAlbum(gomock.Any(), "a1").
		Return(newAlbum("a1", "Artist", "Album", "One", "Two"), nil)
	f.serveContent()
	f.acceptTags()

	dispatcher := mock_delivery.NewMockDispatcher(gomock.NewController(t))
	dispatcher.EXPECT().Cleanup(gomock.Any()).DoAndReturn(delivery.Cleanup).AnyTimes()
	dispatcher.EXPECT().Deliver(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req *delivery.Request) (*delivery.Result, error) {
			if strings.HasSuffix(req.SourcePath, "01 - One.flac") {
				return nil, fmt.Errorf("%w: upload rejected", delivery.ErrDelivery)
			}

			return &delivery.Result{PrimaryLink: "https://share.test/two"}, nil
		}).Times(2)

	report := f.orchestrator(dispatcher).Run(context.Background(), "https://play.qobuz.com/album/a1")

	require.NoError(t, report.Err)
	assert.Equal(t, qobuz.RunStateDone, report.State)

	require.Len(t, report.Failures, 1)
	assert.Equal(t, "a1-t1", report.Failures[0].ItemID)
	assert.Equal(t, "delivering", report.Failures[0].Phase)
	require.ErrorIs(t, report.Failures[0].Err, delivery.ErrDelivery)

	stats := f.stats.Snapshot()
	assert.Equal(t, int64(2), stats.TracksDownloaded)
	assert.Equal(t, int64(1), stats.TracksFailed)
	assert.Equal(t, int64(1), stats.Deliveries)
}

// TestOrchestrator_DeliveryPlans tests when and what the orchestrator delivers.
func TestOrchestrator_DeliveryPlans(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		mode      config.UploadMode
		configure func(cfg *config.Config)
		url       string
		setup     func(f *fixture)
		check     func(t *testing.T, cfg *config.Config, report *qobuz.RunReport, rec *recorder)
	}{
		{
			name: "album per item on hosted share",
			mode: config.UploadModeHostedShare,
			url:  "https://play.qobuz.com/album/a1",
			setup: func(f *fixture) {
				f.resolver.EXPECT().GetAlbum(gomock.Any(), "a1").
					Return(newAlbum("a1", "Artist", "Album", "One", "Two"), nil)
			},
			check: func(t *testing.T, cfg *config.Config, report *qobuz.RunReport, rec *recorder) {
				t.Helper()

				albumDir := filepath.Join(scopeRoot(cfg, report), "Artist", "Album")
				assert.Equal(t, []string{
					filepath.Join(albumDir, "01 - One.flac"),
					filepath.Join(albumDir, "02 - Two.flac"),
				}, rec.sources())
				assert.Len(t, report.Links(), 2)
				assert.NotContains(t, report.States, qobuz.RunStateDelivering)
			},
		},
		{
			name:      "album archive",
			mode:      config.UploadModeLocal,
			configure: func(cfg *config.Config) { cfg.AlbumZip = true },
			url:       "https://play.qobuz.com/album/a1",
			setup: func(f *fixture) {
				f.resolver.EXPECT().GetAlbum(gomock.Any(), "a1").
					Return(newAlbum("a1", "Artist", "Album", "One", "Two"), nil)
			},
			check: func(t *testing.T, cfg *config.Config, report *qobuz.RunReport, rec *recorder) {
				t.Helper()

				archivePath := filepath.Join(scopeRoot(cfg, report), "Artist", "Album.zip")
				require.Equal(t, []string{archivePath}, rec.sources())
				assert.Contains(t, report.States, qobuz.RunStateZipping)

				reader, err := zip.OpenReader(archivePath)
				require.NoError(t, err)

				defer reader.Close() //nolint:errcheck // Test cleanup.

				names := make([]string, 0, len(reader.File))
				for _, file := range reader.File {
					names = append(names, file.Name)
				}

				assert.ElementsMatch(t, []string{"Album/", "Album/01 - One.flac", "Album/02 - Two.flac"}, names)
			},
		},
		{
			name: "artist per album",
			mode: config.UploadModeLocal,
			url:  "https://play.qobuz.com/artist/ar1",
			setup: func(f *fixture) {
				f.resolver.EXPECT().GetArtistReleases(gomock.Any(), "ar1").Return(&qobuz.Discography{
					ID:   "ar1",
					Name: "Artist",
					Candidates: []*qobuz.ReleaseCandidate{
						qobuz.NewReleaseCandidate("a1", "First", "", "Artist", 16, 44.1),
						qobuz.NewReleaseCandidate("a2", "First", "Remastered", "Artist", 16, 44.1),
						qobuz.NewReleaseCandidate("a3", "Second", "", "Artist", 24, 96),
						qobuz.NewReleaseCandidate("a4", "Hits", "", "Various Artists", 16, 44.1),
					},
				}, nil)
				f.resolver.EXPECT().GetAlbum(gomock.Any(), "a2").
					Return(newAlbum("a2", "Artist", "First (Remastered)", "One"), nil)
				f.resolver.EXPECT().GetAlbum(gomock.Any(), "a3").
					Return(newAlbum("a3", "Artist", "Second", "One"), nil)
			},
			check: func(t *testing.T, cfg *config.Config, report *qobuz.RunReport, rec *recorder) {
				t.Helper()

				artistDir := filepath.Join(scopeRoot(cfg, report), "Artist")
				assert.Equal(t, []string{
					filepath.Join(artistDir, "First (Remastered)"),
					filepath.Join(artistDir, "Second"),
				}, rec.sources())
				assert.Len(t, report.Progress, 4, "Two track events and two album events")
			},
		},
		{
			name:      "artist batch with unavailable release",
			mode:      config.UploadModeRemoteSync,
			configure: func(cfg *config.Config) { cfg.ArtistBatch = true },
			url:       "https://play.qobuz.com/artist/ar1",
			setup: func(f *fixture) {
				f.resolver.EXPECT().GetArtistReleases(gomock.Any(), "ar1").Return(&qobuz.Discography{
					ID:   "ar1",
					Name: "Artist",
					Candidates: []*qobuz.ReleaseCandidate{
						qobuz.NewReleaseCandidate("a1", "First", "", "Artist", 16, 44.1),
						qobuz.NewReleaseCandidate("a2", "Second", "", "Artist", 16, 44.1),
					},
				}, nil)
				f.resolver.EXPECT().GetAlbum(gomock.Any(), "a1").
					Return(newAlbum("a1", "Artist", "First", "One"), nil)
				f.resolver.EXPECT().GetAlbum(gomock.Any(), "a2").
					Return(nil, fmt.Errorf("%w: album a2", qobuz.ErrNotStreamable))
			},
			check: func(t *testing.T, cfg *config.Config, report *qobuz.RunReport, rec *recorder) {
				t.Helper()

				assert.Equal(t, []string{filepath.Join(scopeRoot(cfg, report), "Artist")}, rec.sources())
				require.Len(t, report.Failures, 1)
				assert.Equal(t, "a2", report.Failures[0].ItemID)
				assert.Equal(t, "fetching metadata", report.Failures[0].Phase)
			},
		},
		{
			name:      "label ignores credited artists",
			mode:      config.UploadModeLocal,
			configure: func(cfg *config.Config) { cfg.ArtistBatch = true },
			url:       "https://www.qobuz.com/gb-en/label/warp/l1",
			setup: func(f *fixture) {
				f.resolver.EXPECT().GetLabelReleases(gomock.Any(), "l1").Return(&qobuz.Discography{
					ID:      "l1",
					Name:    "Warp",
					IsLabel: true,
					Candidates: []*qobuz.ReleaseCandidate{
						qobuz.NewReleaseCandidate("a1", "First", "", "Someone", 16, 44.1),
						qobuz.NewReleaseCandidate("a2", "Second", "", "Somebody Else", 16, 44.1),
					},
				}, nil)
				f.resolver.EXPECT().GetAlbum(gomock.Any(), "a1").
					Return(newAlbum("a1", "Someone", "First", "One"), nil)
				f.resolver.EXPECT().GetAlbum(gomock.Any(), "a2").
					Return(newAlbum("a2", "Somebody Else", "Second", "One"), nil)
			},
			check: func(t *testing.T, cfg *config.Config, report *qobuz.RunReport, rec *recorder) {
				t.Helper()

				labelDir := filepath.Join(scopeRoot(cfg, report), "Warp")
				require.Equal(t, []string{labelDir}, rec.sources())
				assert.DirExists(t, filepath.Join(labelDir, "First"))
				assert.DirExists(t, filepath.Join(labelDir, "Second"))
			},
		},
		{
			name: "sorted playlist without links",
			mode: config.UploadModeRemoteSync,
			configure: func(cfg *config.Config) {
				cfg.PlaylistSort = true
				cfg.DisableSortLink = true
			},
			url: "https://open.qobuz.com/playlist/p1",
			setup: func(f *fixture) {
				first := newAlbum("a1", "Artist X", "Album X", "Song X").Children[0]
				second := newAlbum("a2", "Artist Y", "Album Y", "Song Y").Children[0]

				f.resolver.EXPECT().GetPlaylist(gomock.Any(), "p1").
					Return(qobuz.NewPlaylistRecord(testProvider, "p1", "Mix", nil, []*qobuz.ItemRecord{first, second}), nil)
			},
			check: func(t *testing.T, cfg *config.Config, report *qobuz.RunReport, rec *recorder) {
				t.Helper()

				scope := scopeRoot(cfg, report)
				assert.Equal(t, []string{
					filepath.Join(scope, "Artist X", "Album X", "01 - Song X.flac"),
					filepath.Join(scope, "Artist Y", "Album Y", "02 - Song Y.flac"),
				}, rec.sources())

				for _, req := range rec.requests {
					assert.True(t, req.DisableLink)
				}
			},
		},
		{
			name: "playlist folder",
			mode: config.UploadModeLocal,
			url:  "https://www.qobuz.com/us-en/playlists/mix/123",
			setup: func(f *fixture) {
				first := newAlbum("a1", "Artist X", "Album X", "Song X").Children[0]
				second := newAlbum("a2", "Artist Y", "Album Y", "Song Y").Children[0]

				f.resolver.EXPECT().GetPlaylist(gomock.Any(), "123").
					Return(qobuz.NewPlaylistRecord(testProvider, "123", "Mix", nil, []*qobuz.ItemRecord{first, second}), nil)
			},
			check: func(t *testing.T, cfg *config.Config, report *qobuz.RunReport, rec *recorder) {
				t.Helper()

				playlistDir := filepath.Join(scopeRoot(cfg, report), "Mix")
				require.Equal(t, []string{playlistDir}, rec.sources())
				assert.FileExists(t, filepath.Join(playlistDir, "01 - Artist X - Song X.flac"))
				assert.FileExists(t, filepath.Join(playlistDir, "02 - Artist Y - Song Y.flac"))
			},
		},
		{
			name: "single track",
			mode: config.UploadModeHostedShare,
			url:  "https://open.qobuz.com/track/555",
			setup: func(f *fixture) {
				f.resolver.EXPECT().GetTrack(gomock.Any(), "555").
					Return(newAlbum("a1", "Artist", "Album", "Song").Children[0], nil)
			},
			check: func(t *testing.T, cfg *config.Config, report *qobuz.RunReport, rec *recorder) {
				t.Helper()

				assert.Equal(t, []string{
					filepath.Join(scopeRoot(cfg, report), "Artist", "Album", "01 - Song.flac"),
				}, rec.sources())
				assert.Equal(t, []qobuz.ProgressEvent{{Index: 1, Total: 1, Title: "Song"}}, report.Progress)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t, tt.mode)
			if tt.configure != nil {
				tt.configure(f.cfg)
			}

			tt.setup(f)
			f.serveContent()
			f.acceptTags()

			dispatcher, rec := newRecordingDispatcher(t)

			report := f.orchestrator(dispatcher).Run(context.Background(), tt.url)

			require.NoError(t, report.Err)
			assert.Equal(t, qobuz.RunStateDone, report.State)
			tt.check(t, f.cfg, report, rec)
		})
	}
}

// TestOrchestrator_Failures tests runs that end in the Failed state.
func TestOrchestrator_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		url         string
		failing     []string
		setup       func(f *fixture, dispatcher *mock_delivery.MockDispatcher)
		expectedErr error
		check       func(t *testing.T, f *fixture, report *qobuz.RunReport)
	}{
		{
			name:        "invalid url",
			url:         "https://example.com/album/1",
			expectedErr: qobuz.ErrInvalidReference,
			check: func(t *testing.T, _ *fixture, report *qobuz.RunReport) {
				t.Helper()

				assert.Nil(t, report.Ref)
				assert.Equal(t, []qobuz.RunState{qobuz.RunStateResolving, qobuz.RunStateFailed}, report.States)
			},
		},
		{
			name:        "not streamable album",
			url:         "https://play.qobuz.com/album/a1",
			expectedErr: qobuz.ErrNotStreamable,
			setup: func(f *fixture, _ *mock_delivery.MockDispatcher) {
				f.resolver.EXPECT().GetAlbum(gomock.Any(), "a1").
					Return(nil, fmt.Errorf("%w: album a1", qobuz.ErrNotStreamable))
			},
			check: func(t *testing.T, f *fixture, _ *qobuz.RunReport) {
				t.Helper()

				stats := f.stats.Snapshot()
				require.Len(t, stats.Errors, 1)
				assert.Equal(t, "https://play.qobuz.com/album/a1", stats.Errors[0].ItemURL)
				assert.Equal(t, "Resolving", stats.Errors[0].Phase)
				assert.Equal(t, int64(1), stats.RunsFailed)
			},
		},
		{
			name:        "every track fails",
			url:         "https://play.qobuz.com/album/a1",
			failing:     []string{"a1-t1", "a1-t2"},
			expectedErr: qobuz.ErrNothingFetched,
			setup: func(f *fixture, _ *mock_delivery.MockDispatcher) {
				f.resolver.EXPECT().GetAlbum(gomock.Any(), "a1").
					Return(newAlbum("a1", "Artist", "Album", "One", "Two"), nil)
			},
			check: func(t *testing.T, _ *fixture, report *qobuz.RunReport) {
				t.Helper()

				assert.Len(t, report.Failures, 2)
				assert.Empty(t, report.Results)
			},
		},
		{
			name:        "empty album",
			url:         "https://play.qobuz.com/album/a1",
			expectedErr: qobuz.ErrNothingFetched,
			setup: func(f *fixture, _ *mock_delivery.MockDispatcher) {
				f.resolver.EXPECT().GetAlbum(gomock.Any(), "a1").Return(newAlbum("a1", "Artist", "Album"), nil)
			},
		},
		{
			name:        "discography without selectable release",
			url:         "https://play.qobuz.com/artist/ar1",
			expectedErr: qobuz.ErrNothingFetched,
			setup: func(f *fixture, _ *mock_delivery.MockDispatcher) {
				f.resolver.EXPECT().GetArtistReleases(gomock.Any(), "ar1").Return(&qobuz.Discography{
					ID:   "ar1",
					Name: "Artist",
					Candidates: []*qobuz.ReleaseCandidate{
						qobuz.NewReleaseCandidate("a1", "Hits", "", "Various Artists", 16, 44.1),
					},
				}, nil)
			},
		},
		{
			name:        "final delivery fails",
			url:         "https://play.qobuz.com/album/a1",
			expectedErr: qobuz.ErrDelivery,
			setup: func(f *fixture, dispatcher *mock_delivery.MockDispatcher) {
				f.resolver.EXPECT().GetAlbum(gomock.Any(), "a1").
					Return(newAlbum("a1", "Artist", "Album", "One"), nil)
				dispatcher.EXPECT().Deliver(gomock.Any(), gomock.Any()).
					Return(nil, fmt.Errorf("%w: remote_sync: exit status 1", delivery.ErrDelivery))
			},
			check: func(t *testing.T, f *fixture, report *qobuz.RunReport) {
				t.Helper()

				assert.DirExists(t, filepath.Join(scopeRoot(f.cfg, report), "Artist", "Album"),
					"Staged files should be kept after a failed delivery")

				stats := f.stats.Snapshot()
				require.Len(t, stats.Errors, 1)
				assert.Equal(t, "Delivering", stats.Errors[0].Phase)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t, config.UploadModeRemoteSync)
			f.serveContent(tt.failing...)
			f.acceptTags()

			dispatcher := mock_delivery.NewMockDispatcher(gomock.NewController(t))
			dispatcher.EXPECT().Cleanup(gomock.Any()).DoAndReturn(delivery.Cleanup).AnyTimes()

			if tt.setup != nil {
				tt.setup(f, dispatcher)
			}

			report := f.orchestrator(dispatcher).Run(context.Background(), tt.url)

			require.ErrorIs(t, report.Err, tt.expectedErr)
			assert.Equal(t, qobuz.RunStateFailed, report.State)
			assert.False(t, report.FinishedAt.Before(report.StartedAt))

			if tt.check != nil {
				tt.check(t, f, report)
			}
		})
	}
}

// TestOrchestrator_TagFailure tests that an untagged track is removed and reported.
func TestOrchestrator_TagFailure(t *testing.T) {
	t.Parallel()

	f := newFixture(t, config.UploadModeRemoteSync)
	f.resolver.EXPECT().GetAlbum(gomock.Any(), "a1").
		Return(newAlbum("a1", "Artist", "Album", "One", "Two"), nil)
	f.serveContent()
	f.tags.EXPECT().WriteTags(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req *qobuz.WriteTagsRequest) error {
			if strings.HasSuffix(req.TrackPath, "01 - One.flac") {
				return errors.New("corrupted stream")
			}

			return nil
		}).Times(2)

	dispatcher, rec := newRecordingDispatcher(t)

	report := f.orchestrator(dispatcher).Run(context.Background(), "https://play.qobuz.com/album/a1")

	require.NoError(t, report.Err)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "writing metadata tags", report.Failures[0].Phase)

	albumDir := filepath.Join(scopeRoot(f.cfg, report), "Artist", "Album")
	require.Equal(t, []string{albumDir}, rec.sources())
	assert.NoFileExists(t, filepath.Join(albumDir, "01 - One.flac"))
	assert.FileExists(t, filepath.Join(albumDir, "02 - Two.flac"))
}

// TestOrchestrator_CoverArt tests that cover art is fetched once per album and removed afterwards.
func TestOrchestrator_CoverArt(t *testing.T) {
	t.Parallel()

	const coverURL = "https://static.qobuz.test/a1_600.jpg"

	f := newFixture(t, config.UploadModeRemoteSync)

	album := newAlbum("a1", "Artist", "Album", "One", "Two")
	for _, track := range album.Children {
		track.Track.CoverURL = coverURL
	}

	f.resolver.EXPECT().GetAlbum(gomock.Any(), "a1").Return(album, nil)
	f.content.EXPECT().FetchContent(gomock.Any(), gomock.Any()).
		Return(&qobuz.ContentInfo{URL: "https://streaming.qobuz.test/audio", Quality: qobuz.TrackQualityMP3}, nil).
		Times(2)

	var coverDownloads int

	f.content.EXPECT().DownloadToPath(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, url, destPath string) (int64, error) {
			if url == coverURL {
				coverDownloads++
			}

			return 5, os.WriteFile(destPath, []byte("bytes"), 0o600)
		}).Times(3)

	var coverPaths []string

	f.tags.EXPECT().WriteTags(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req *qobuz.WriteTagsRequest) error {
			assert.FileExists(t, req.CoverPath)
			assert.Equal(t, qobuz.TrackQualityMP3, req.Quality)

			coverPaths = append(coverPaths, req.CoverPath)

			return nil
		}).Times(2)

	dispatcher, rec := newRecordingDispatcher(t)

	report := f.orchestrator(dispatcher).Run(context.Background(), "https://play.qobuz.com/album/a1")

	require.NoError(t, report.Err)
	assert.Equal(t, 1, coverDownloads)
	require.Len(t, coverPaths, 2)
	assert.Equal(t, coverPaths[0], coverPaths[1])
	assert.NoFileExists(t, coverPaths[0], "Cover art should be removed with the run")

	albumDir := filepath.Join(scopeRoot(f.cfg, report), "Artist", "Album")
	require.Equal(t, []string{albumDir}, rec.sources())
	assert.FileExists(t, filepath.Join(albumDir, "01 - One.mp3"))
}

// TestOrchestrator_NotificationsAndHistory tests the notifier and history interactions of a run.
func TestOrchestrator_NotificationsAndHistory(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	notifier := mock_notify.NewMockNotifier(ctrl)
	store := mock_history.NewMockStore(ctrl)

	f := newFixture(t, config.UploadModeRemoteSync)
	f.notifier = notifier
	f.history = store

	f.resolver.EXPECT().GetAlbum(gomock.Any(), "a1").
		Return(newAlbum("a1", "Artist", "Album", "One", "Two"), nil)
	f.serveContent()
	f.acceptTags()

	gomock.InOrder(
		store.EXPECT().StartRun(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, run *history.Run) error {
				assert.Equal(t, "https://play.qobuz.com/album/a1", run.URL)
				assert.Equal(t, "tester", run.Requester)

				return nil
			}),
		store.EXPECT().UpdateRun(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, run *history.Run) error {
				assert.Equal(t, "album", run.Kind)
				assert.Equal(t, "a1", run.RefID)

				return nil
			}),
		store.EXPECT().FinishRun(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, run *history.Run) error {
				assert.Equal(t, "Done", run.State)
				assert.Equal(t, []string{"https://share.test/Album"}, run.Links)
				assert.Empty(t, run.Error)

				return errors.New("database is locked")
			}),
	)

	gomock.InOrder(
		notifier.EXPECT().Announce(gomock.Any(), "tester", gomock.Any()).Return("poster-1"),
		notifier.EXPECT().UpdateProgress(gomock.Any(), "tester", 1, 2, "One"),
		notifier.EXPECT().UpdateProgress(gomock.Any(), "tester", 2, 2, "Two"),
		notifier.EXPECT().Notify(gomock.Any(), "tester", gomock.Any()).Do(
			func(_ context.Context, _ string, msg *notify.Message) {
				assert.Equal(t, "poster-1", msg.ReplyTo)
				assert.Equal(t, []string{"https://share.test/Album"}, msg.Links)
				assert.NoError(t, msg.Err)
			}),
	)

	dispatcher, _ := newRecordingDispatcher(t)

	report := f.orchestrator(dispatcher).Run(context.Background(), "https://play.qobuz.com/album/a1")

	require.NoError(t, report.Err, "History failures should not fail the run")
	assert.Equal(t, qobuz.RunStateDone, report.State)
}

// TestOrchestrator_Canceled tests that a canceled run stops without recording item failures.
func TestOrchestrator_Canceled(t *testing.T) {
	t.Parallel()

	f := newFixture(t, config.UploadModeLocal)
	f.resolver.EXPECT().GetAlbum(gomock.Any(), "a1").
		Return(newAlbum("a1", "Artist", "Album", "One", "Two"), nil)

	dispatcher, rec := newRecordingDispatcher(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report := f.orchestrator(dispatcher).Run(ctx, "https://play.qobuz.com/album/a1")

	require.ErrorIs(t, report.Err, context.Canceled)
	assert.Equal(t, qobuz.RunStateFailed, report.State)
	assert.Empty(t, report.Failures)
	assert.Empty(t, rec.sources())
	assert.Empty(t, f.stats.Snapshot().Errors)
}

// TestOrchestrator_ConcurrentRuns tests that concurrent runs never share staging folders.
func TestOrchestrator_ConcurrentRuns(t *testing.T) {
	t.Parallel()

	f := newFixture(t, config.UploadModeRemoteSync)
	f.resolver.EXPECT().GetAlbum(gomock.Any(), "a1").DoAndReturn(
		func(context.Context, string) (*qobuz.ItemRecord, error) {
			return newAlbum("a1", "Artist", "Album", "One"), nil
		}).Times(4)
	f.serveContent()
	f.acceptTags()

	dispatcher, rec := newRecordingDispatcher(t)
	orchestrator := f.orchestrator(dispatcher)

	var (
		wg      sync.WaitGroup
		reports = make([]*qobuz.RunReport, 4)
	)

	for i := range reports {
		wg.Go(func() {
			reports[i] = orchestrator.Run(context.Background(), "https://play.qobuz.com/album/a1")
		})
	}

	wg.Wait()

	requestIDs := make(map[string]struct{})

	for _, report := range reports {
		require.NoError(t, report.Err)

		requestIDs[report.RequestID] = struct{}{}
	}

	assert.Len(t, requestIDs, len(reports))
	assert.Len(t, rec.sources(), len(reports))
	assert.Equal(t, int64(len(reports)), f.stats.Snapshot().RunsDone)
}
