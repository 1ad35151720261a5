package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/oshokin/qobuz-grabber/internal/app"
	"github.com/oshokin/qobuz-grabber/internal/config"
	"github.com/oshokin/qobuz-grabber/internal/logger"
	"github.com/oshokin/qobuz-grabber/internal/version"
)

var (
	//nolint:gochecknoglobals // It is required for configuration initialization before the application starts.
	configFilenameFromFlag string

	//nolint:gochecknoglobals,lll // It is initialized once during the application's startup and shared across the command execution logic.
	appConfig *config.Config

	//nolint:gochecknoglobals,lll // Cobra command requires a global definition for proper command-line parsing and execution.
	rootCmd = &cobra.Command{
		Use:   "qobuz-grabber [flags] {urls}",
		Short: "Download and deliver Qobuz tracks, albums, playlists, artist or label catalogs.",
		Long: `Qobuz Grabber fetches catalog items from Qobuz and delivers them to a destination.
It supports:
- Individual tracks
- Full albums
- Playlists
- Discographies of an artist or a label
- Text files listing any of the above, one URL per line

Completed items are copied to a local folder, uploaded to GoFile,
or mirrored to any rclone remote.`,
		Version:          version.Full(),
		Args:             cobra.MinimumNArgs(1),
		PersistentPreRun: initConfig,
		Run: func(cmd *cobra.Command, urls []string) {
			if err := bindFlagsToConfig(cmd.Flags(), appConfig); err != nil {
				logger.Fatalf(cmd.Context(), "Failed to parse flags: %v", err)
			}

			logger.SetLevel(appConfig.ParsedLogLevel)
			app.ExecuteRootCommand(cmd.Context(), appConfig, urls)
		},
	}
)

// Execute executes the root command.
func Execute() {
	signals := []os.Signal{syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM}
	ctx, stop := signal.NotifyContext(context.Background(), signals...)

	defer func() {
		_ = logger.Logger().Sync()
	}()

	defer stop()

	go func() {
		defer stop()

		err := rootCmd.ExecuteContext(ctx)
		cobra.CheckErr(err)
	}()

	<-ctx.Done()
}

//nolint:gochecknoinits // Cobra requires the init function to set up flags before the command is executed.
func init() {
	rootCmd.PersistentFlags().StringVarP(
		&configFilenameFromFlag,
		"config",
		"c",
		"",
		fmt.Sprintf("path to the configuration file (default is '%s')",
			config.DefaultConfigFilename))

	registerRootFlags(rootCmd.Flags())
}

// registerRootFlags declares the flags that override configuration values.
func registerRootFlags(flags *pflag.FlagSet) {
	flags.Uint8P(
		"quality",
		"q",
		0,
		"audio quality: 5 = MP3 320 Kbps, 6 = FLAC 16-bit/44.1kHz, 7 = FLAC 24-bit up to 96kHz, 27 = FLAC 24-bit up to 192kHz.")

	flags.StringP(
		"output",
		"o",
		"",
		"staging directory for downloads (the path will be created if it doesn’t exist).")

	flags.StringP(
		"upload-mode",
		"u",
		"",
		"delivery backend: local, hosted_share (GoFile) or remote_sync (rclone).")

	flags.StringP(
		"destination",
		"d",
		"",
		"destination root for the local upload mode.")

	flags.Bool("album-zip", false, "deliver every album as one zip archive.")
	flags.Bool("artist-zip", false, "deliver an artist or label discography as one zip archive.")
	flags.Bool("artist-batch", false, "deliver an artist or label discography once, after every release.")
	flags.Bool("playlist-zip", false, "deliver every playlist as one zip archive.")
	flags.Bool("playlist-sort", false, "file playlist tracks under their own artist and album folders.")

	flags.StringP(
		"speed-limit",
		"s",
		"",
		"set download speed limit, for example: 500 kbps, 1 mbps, 1.5 mbps.")

	flags.String("user", "", "name of the requester that receives notifications.")

	flags.Int64P(
		"concurrency",
		"j",
		0,
		"number of URLs processed at the same time.")
}

func initConfig(cmd *cobra.Command, _ []string) {
	var err error

	appConfig, err = config.LoadConfig(configFilenameFromFlag)
	if err != nil {
		logger.Fatalf(cmd.Context(), "Failed to load configuration: %v", err)
	}

	logger.SetLevel(appConfig.ParsedLogLevel)
}

//nolint:cyclop // Every override is a separate check.
func bindFlagsToConfig(flags *pflag.FlagSet, cfg *config.Config) error {
	if changed(flags, "quality") {
		cfg.Quality, _ = flags.GetUint8("quality")
	}

	if changed(flags, "output") {
		cfg.DownloadBaseDir, _ = flags.GetString("output")
	}

	if changed(flags, "upload-mode") {
		mode, _ := flags.GetString("upload-mode")
		cfg.UploadMode = config.UploadMode(mode)
	}

	if changed(flags, "destination") {
		cfg.LocalDestinationDir, _ = flags.GetString("destination")
	}

	boolOverrides := map[string]*bool{
		"album-zip":     &cfg.AlbumZip,
		"artist-zip":    &cfg.ArtistZip,
		"artist-batch":  &cfg.ArtistBatch,
		"playlist-zip":  &cfg.PlaylistZip,
		"playlist-sort": &cfg.PlaylistSort,
	}

	for name, target := range boolOverrides {
		if changed(flags, name) {
			*target, _ = flags.GetBool(name)
		}
	}

	if changed(flags, "speed-limit") {
		cfg.DownloadSpeedLimit, _ = flags.GetString("speed-limit")
	}

	if changed(flags, "user") {
		cfg.Requester, _ = flags.GetString("user")
	}

	if changed(flags, "concurrency") {
		cfg.MaxConcurrentRuns, _ = flags.GetInt64("concurrency")
	}

	return config.ValidateConfig(cfg)
}

func changed(flags *pflag.FlagSet, name string) bool {
	flag := flags.Lookup(name)

	return flag != nil && flag.Changed
}
