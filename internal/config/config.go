package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/oshokin/qobuz-grabber/internal/constants"
	"github.com/oshokin/qobuz-grabber/internal/logger"
	"github.com/oshokin/qobuz-grabber/internal/utils"
)

// UploadMode selects the delivery backend used after content is fetched.
type UploadMode string

const (
	// UploadModeLocal copies completed folders into a local destination root.
	UploadModeLocal UploadMode = "local"
	// UploadModeHostedShare uploads completed files to a GoFile account.
	UploadModeHostedShare UploadMode = "hosted_share"
	// UploadModeRemoteSync mirrors completed folders with rclone.
	UploadModeRemoteSync UploadMode = "remote_sync"
)

// RequiresPerItemDelivery reports whether each fetched track is delivered
// as soon as it is ready instead of once per folder.
func (m UploadMode) RequiresPerItemDelivery() bool {
	return m == UploadModeHostedShare
}

// IsValid reports whether the mode is one of the known backends.
func (m UploadMode) IsValid() bool {
	switch m {
	case UploadModeLocal, UploadModeHostedShare, UploadModeRemoteSync:
		return true
	default:
		return false
	}
}

// GoFileFolderPolicy selects how the HostedShare backend picks its remote folder.
type GoFileFolderPolicy string

const (
	// GoFileFolderPolicyFixed reuses one named folder for the process lifetime.
	GoFileFolderPolicyFixed GoFileFolderPolicy = "fixed"
	// GoFileFolderPolicyFresh creates a new randomly named folder per delivery.
	GoFileFolderPolicyFresh GoFileFolderPolicy = "fresh"
)

// GoFileConfig holds the HostedShare backend settings.
type GoFileConfig struct {
	// Token is the GoFile account API token.
	Token string `mapstructure:"token"`
	// FolderName is the folder used by the fixed policy.
	FolderName string `mapstructure:"folder_name"`
	// FolderPolicy is either "fixed" or "fresh".
	FolderPolicy GoFileFolderPolicy `mapstructure:"folder_policy"`
	// Recursive uploads nested folders too instead of top-level files only.
	Recursive bool `mapstructure:"recursive"`
}

// RCloneConfig holds the RemoteSync backend settings.
type RCloneConfig struct {
	// Binary is the rclone executable used for link derivation.
	Binary string `mapstructure:"binary"`
	// ConfigPath is the rclone configuration file.
	ConfigPath string `mapstructure:"config_path"`
	// Destination is the remote root, e.g. "remote:music".
	Destination string `mapstructure:"destination"`
	// CommandTemplate is the sync command with {config}, {source} and {destination} placeholders.
	CommandTemplate string `mapstructure:"command_template"`
	// IndexBaseURL is the public index URL used to build the secondary link.
	IndexBaseURL string `mapstructure:"index_base_url"`
}

// Config holds all configuration settings.
type Config struct {
	// AppID is the Qobuz application identifier.
	AppID string `mapstructure:"app_id"`
	// AppSecret is the Qobuz application secret used to sign file URL requests.
	AppSecret string `mapstructure:"app_secret"`
	// UserAuthToken is the Qobuz user authentication token.
	UserAuthToken string `mapstructure:"user_auth_token"`
	// Quality is the requested Qobuz format id (5, 6, 7 or 27).
	Quality uint8 `mapstructure:"quality"`
	// DownloadBaseDir is the staging root; every request gets its own subfolder.
	DownloadBaseDir string `mapstructure:"download_base_dir"`
	// ProviderName is the provider path segment under each request folder.
	ProviderName string `mapstructure:"provider_name"`
	// TrackFilenameTemplate is the template for naming album track files.
	TrackFilenameTemplate string `mapstructure:"track_filename_template"`
	// PlaylistFilenameTemplate is the template for naming playlist track files.
	PlaylistFilenameTemplate string `mapstructure:"playlist_filename_template"`
	// MaxFolderNameLength truncates folder names, 0 disables truncation.
	MaxFolderNameLength int64 `mapstructure:"max_folder_name_length"`
	// UploadMode selects the delivery backend.
	UploadMode UploadMode `mapstructure:"upload_mode"`
	// AlbumZip archives album folders before delivery.
	AlbumZip bool `mapstructure:"album_zip"`
	// ArtistZip archives whole artist discographies before delivery.
	ArtistZip bool `mapstructure:"artist_zip"`
	// ArtistBatch delivers a discography once instead of album by album.
	ArtistBatch bool `mapstructure:"artist_batch"`
	// PlaylistZip archives playlists before delivery.
	PlaylistZip bool `mapstructure:"playlist_zip"`
	// PlaylistSort lays playlist tracks out by artist and album.
	PlaylistSort bool `mapstructure:"playlist_sort"`
	// DisableSortLink suppresses link generation for sorted playlist deliveries.
	DisableSortLink bool `mapstructure:"disable_sort_link"`
	// PreferSmallerFiles picks the lowest sampling rate at the best bit depth.
	PreferSmallerFiles bool `mapstructure:"prefer_smaller_files"`
	// ExcludeBonusEditions drops deluxe, live and similar editions from discographies.
	ExcludeBonusEditions bool `mapstructure:"exclude_bonus_editions"`
	// LocalDestinationDir is the root the Local backend copies into.
	LocalDestinationDir string `mapstructure:"local_destination_dir"`
	// GoFile holds the HostedShare backend settings.
	GoFile GoFileConfig `mapstructure:"gofile"`
	// RClone holds the RemoteSync backend settings.
	RClone RCloneConfig `mapstructure:"rclone"`
	// LogLevel specifies the logging verbosity level.
	LogLevel string `mapstructure:"log_level"`
	// DownloadSpeedLimit sets the maximum download speed (e.g., "1MB", "500KB").
	DownloadSpeedLimit string `mapstructure:"download_speed_limit"`
	// RequestTimeout bounds every API request.
	RequestTimeout string `mapstructure:"request_timeout"`
	// DeliveryTimeout bounds every delivery backend call.
	DeliveryTimeout string `mapstructure:"delivery_timeout"`
	// APIRequestsPerSecond throttles API requests, 0 disables throttling.
	APIRequestsPerSecond float64 `mapstructure:"api_requests_per_second"`
	// MaxConcurrentRuns is the number of URLs processed at the same time.
	MaxConcurrentRuns int64 `mapstructure:"max_concurrent_runs"`
	// HistoryDBPath is the SQLite run history file, empty disables history.
	HistoryDBPath string `mapstructure:"history_db_path"`
	// Requester is the notification recipient name.
	Requester string `mapstructure:"requester"`
	// QobuzBaseURL is the base URL for the Qobuz API (set automatically).
	QobuzBaseURL string
	// ParsedDownloadSpeedLimit is the parsed download speed limit in bytes.
	ParsedDownloadSpeedLimit int64
	// ParsedLogLevel is the parsed zap log level.
	ParsedLogLevel zapcore.Level
	// ParsedRequestTimeout is the parsed API request timeout.
	ParsedRequestTimeout time.Duration
	// ParsedDeliveryTimeout is the parsed delivery timeout.
	ParsedDeliveryTimeout time.Duration
}

const (
	// QobuzAPIBaseURL is the base URL of the Qobuz JSON API.
	QobuzAPIBaseURL = "https://www.qobuz.com/api.json/0.2/"

	// DefaultConfigFilename is the default name of the configuration file.
	DefaultConfigFilename = ".qobuz-grabber.yaml"

	// DefaultTrackFilenameTemplate is the default template for naming downloaded track files.
	DefaultTrackFilenameTemplate = "{{.trackNumberPad}} - {{.trackTitle}}"

	// DefaultPlaylistFilenameTemplate is the default template for naming downloaded track files from playlists.
	DefaultPlaylistFilenameTemplate = "{{.trackNumberPad}} - {{.trackArtist}} - {{.trackTitle}}"

	// DefaultRCloneCommandTemplate is the default RemoteSync command.
	DefaultRCloneCommandTemplate = "rclone copy --config {config} {source} {destination}"

	// DefaultMaxLogLength is the default maximum size (in bytes) of logged HTTP dumps.
	DefaultMaxLogLength = 1 * 1024 * 1024 // 1 MB

	// defaultQuality is the hi-res FLAC format id.
	defaultQuality = 27
	// defaultDownloadBaseDir is the default staging root.
	defaultDownloadBaseDir = "downloads"
	// defaultProviderName is the provider path segment.
	defaultProviderName = "Qobuz"
	// defaultGoFileFolderName is the folder used by the fixed GoFile policy.
	defaultGoFileFolderName = "MyMusic"
	// defaultRequestTimeout bounds API requests when nothing is configured.
	defaultRequestTimeout = 60 * time.Second
	// defaultDeliveryTimeout bounds delivery calls when nothing is configured.
	defaultDeliveryTimeout = 30 * time.Minute
	// defaultRequester is the notification recipient for CLI runs.
	defaultRequester = "cli"
)

// Static error definitions for better error handling.
var (
	// ErrEmptyAppID indicates that the Qobuz application id is missing.
	ErrEmptyAppID = errors.New("app id cannot be empty")
	// ErrEmptyAppSecret indicates that the Qobuz application secret is missing.
	ErrEmptyAppSecret = errors.New("app secret cannot be empty")
	// ErrEmptyAuthToken indicates that the authentication token is missing.
	ErrEmptyAuthToken = errors.New("authentication token cannot be empty")
	// ErrInvalidQuality indicates that the quality setting is invalid.
	ErrInvalidQuality = errors.New("invalid quality")
	// ErrUnknownLogLevel indicates that the log level is not recognized.
	ErrUnknownLogLevel = errors.New("unknown log level")
	// ErrUnknownUploadMode indicates that the upload mode is not recognized.
	ErrUnknownUploadMode = errors.New("unknown upload mode")
	// ErrEmptyLocalDestination indicates that the Local backend has no destination root.
	ErrEmptyLocalDestination = errors.New("local destination dir cannot be empty in local upload mode")
	// ErrEmptyGoFileToken indicates that the HostedShare backend has no token.
	ErrEmptyGoFileToken = errors.New("gofile token cannot be empty in hosted_share upload mode")
	// ErrUnknownGoFilePolicy indicates that the GoFile folder policy is not recognized.
	ErrUnknownGoFilePolicy = errors.New("unknown gofile folder policy")
	// ErrEmptyRCloneDestination indicates that the RemoteSync backend has no destination.
	ErrEmptyRCloneDestination = errors.New("rclone destination cannot be empty in remote_sync upload mode")
	// ErrInvalidRequestTimeout indicates that the request timeout is not positive.
	ErrInvalidRequestTimeout = errors.New("request_timeout must be positive")
	// ErrInvalidDeliveryTimeout indicates that the delivery timeout is not positive.
	ErrInvalidDeliveryTimeout = errors.New("delivery_timeout must be positive")
	// ErrInvalidRequestsPerSecond indicates that the API rate is negative.
	ErrInvalidRequestsPerSecond = errors.New("api_requests_per_second cannot be negative")
	// ErrInvalidConcurrentRuns indicates that the concurrent runs count is invalid.
	ErrInvalidConcurrentRuns = errors.New("max concurrent runs must be a positive integer")
)

// validQualities lists the Qobuz format ids the client knows how to handle.
//
//nolint:gochecknoglobals // Immutable lookup table.
var validQualities = map[uint8]struct{}{
	5:  {},
	6:  {},
	7:  {},
	27: {},
}

// SetDefaults registers default values for every optional setting.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("quality", defaultQuality)
	v.SetDefault("download_base_dir", defaultDownloadBaseDir)
	v.SetDefault("provider_name", defaultProviderName)
	v.SetDefault("track_filename_template", DefaultTrackFilenameTemplate)
	v.SetDefault("playlist_filename_template", DefaultPlaylistFilenameTemplate)
	v.SetDefault("upload_mode", string(UploadModeLocal))
	v.SetDefault("prefer_smaller_files", true)
	v.SetDefault("exclude_bonus_editions", true)
	v.SetDefault("gofile.folder_name", defaultGoFileFolderName)
	v.SetDefault("gofile.folder_policy", string(GoFileFolderPolicyFixed))
	v.SetDefault("rclone.binary", "rclone")
	v.SetDefault("rclone.command_template", DefaultRCloneCommandTemplate)
	v.SetDefault("log_level", "info")
	v.SetDefault("request_timeout", defaultRequestTimeout.String())
	v.SetDefault("delivery_timeout", defaultDeliveryTimeout.String())
	v.SetDefault("max_concurrent_runs", 1)
	v.SetDefault("history_db_path", ".qobuz-grabber.db")
	v.SetDefault("requester", defaultRequester)
}

// LoadConfig loads configuration settings from a YAML file.
func LoadConfig(configFilename string) (*Config, error) {
	if configFilename == "" {
		configFilename = DefaultConfigFilename
	}

	SetDefaults(viper.GetViper())
	viper.SetConfigFile(configFilename)

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config from file: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// The log level is applied before validation so early messages respect it.
	cfg.ParsedLogLevel, _ = logger.ParseLogLevel(cfg.LogLevel)

	return &cfg, nil
}

// ValidateConfig checks the configuration for validity and sets derived fields.
//
//nolint:funlen,gocognit,cyclop // Validation functions naturally have high complexity and length due to sequential checks.
func ValidateConfig(cfg *Config) error {
	var (
		downloadSpeedLimit       = strings.TrimSpace(cfg.DownloadSpeedLimit)
		parsedDownloadSpeedLimit uint64
		err                      error
	)

	if strings.TrimSpace(cfg.AppID) == "" {
		return ErrEmptyAppID
	}

	if strings.TrimSpace(cfg.AppSecret) == "" {
		return ErrEmptyAppSecret
	}

	if strings.TrimSpace(cfg.UserAuthToken) == "" {
		return ErrEmptyAuthToken
	}

	if cfg.QobuzBaseURL == "" {
		cfg.QobuzBaseURL = QobuzAPIBaseURL
	}

	if _, ok := validQualities[cfg.Quality]; !ok {
		return fmt.Errorf("%w: must be one of 5, 6, 7 or 27", ErrInvalidQuality)
	}

	if cfg.DownloadBaseDir == "" {
		cfg.DownloadBaseDir = defaultDownloadBaseDir
	}

	if cfg.ProviderName == "" {
		cfg.ProviderName = defaultProviderName
	}

	parsedLogLevel, isLogLevelCorrect := logger.ParseLogLevel(cfg.LogLevel)
	if !(isLogLevelCorrect) {
		return fmt.Errorf("%w: '%s'", ErrUnknownLogLevel, cfg.LogLevel)
	}

	cfg.ParsedLogLevel = parsedLogLevel

	if downloadSpeedLimit != "" && downloadSpeedLimit != "0" {
		parsedDownloadSpeedLimit, err = humanize.ParseBytes(downloadSpeedLimit)
		if err != nil {
			return fmt.Errorf("failed to parse download speed limit: %w", err)
		}
	}

	// io.CopyN accepts only int64 so we transform it safely in order to use it later.
	cfg.ParsedDownloadSpeedLimit = utils.SafeUint64ToInt64(parsedDownloadSpeedLimit)

	if err = validateUploadMode(cfg); err != nil {
		return err
	}

	cfg.ParsedRequestTimeout, err = parseOptionalDuration(cfg.RequestTimeout, defaultRequestTimeout)
	if err != nil {
		return fmt.Errorf("failed to parse request timeout: %w", err)
	}

	if cfg.ParsedRequestTimeout <= 0 {
		return ErrInvalidRequestTimeout
	}

	cfg.ParsedDeliveryTimeout, err = parseOptionalDuration(cfg.DeliveryTimeout, defaultDeliveryTimeout)
	if err != nil {
		return fmt.Errorf("failed to parse delivery timeout: %w", err)
	}

	if cfg.ParsedDeliveryTimeout <= 0 {
		return ErrInvalidDeliveryTimeout
	}

	if cfg.APIRequestsPerSecond < 0 {
		return ErrInvalidRequestsPerSecond
	}

	if cfg.MaxConcurrentRuns <= 0 {
		return ErrInvalidConcurrentRuns
	}

	if cfg.Requester == "" {
		cfg.Requester = defaultRequester
	}

	return nil
}

// validateUploadMode checks the selected backend and its own settings.
func validateUploadMode(cfg *Config) error {
	if cfg.UploadMode == "" {
		cfg.UploadMode = UploadModeLocal
	}

	cfg.UploadMode = UploadMode(strings.ToLower(string(cfg.UploadMode)))
	if !cfg.UploadMode.IsValid() {
		return fmt.Errorf("%w: '%s'", ErrUnknownUploadMode, cfg.UploadMode)
	}

	switch cfg.UploadMode {
	case UploadModeLocal:
		if strings.TrimSpace(cfg.LocalDestinationDir) == "" {
			return ErrEmptyLocalDestination
		}
	case UploadModeHostedShare:
		if strings.TrimSpace(cfg.GoFile.Token) == "" {
			return ErrEmptyGoFileToken
		}

		if cfg.GoFile.FolderPolicy == "" {
			cfg.GoFile.FolderPolicy = GoFileFolderPolicyFixed
		}

		if cfg.GoFile.FolderPolicy != GoFileFolderPolicyFixed && cfg.GoFile.FolderPolicy != GoFileFolderPolicyFresh {
			return fmt.Errorf("%w: '%s'", ErrUnknownGoFilePolicy, cfg.GoFile.FolderPolicy)
		}

		if cfg.GoFile.FolderName == "" {
			cfg.GoFile.FolderName = defaultGoFileFolderName
		}
	case UploadModeRemoteSync:
		if strings.TrimSpace(cfg.RClone.Destination) == "" {
			return ErrEmptyRCloneDestination
		}

		if cfg.RClone.CommandTemplate == "" {
			cfg.RClone.CommandTemplate = DefaultRCloneCommandTemplate
		}

		if cfg.RClone.Binary == "" {
			cfg.RClone.Binary = "rclone"
		}
	}

	return nil
}

// parseOptionalDuration parses value, returning fallback for an empty string.
func parseOptionalDuration(value string, fallback time.Duration) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}

	return time.ParseDuration(value)
}

// SaveConfig saves the configuration to the file while preserving the original format and order.
func SaveConfig(cfg *Config) error {
	configFile := getConfigFilePath()

	// Read the original file content.
	originalContent, err := os.ReadFile(configFile)
	if err != nil {
		return handleMissingConfigFile(configFile, cfg.UserAuthToken, err)
	}

	// Parse YAML while preserving order using yaml.Node.
	var node yaml.Node
	if err = yaml.Unmarshal(originalContent, &node); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	setTokenInNode(&node, cfg.UserAuthToken)

	// Marshal back to YAML (preserves order).
	newContent, err := yaml.Marshal(&node)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}

	if err = os.WriteFile(configFile, newContent, constants.DefaultFilePermissions); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// getConfigFilePath returns the config file path from viper or the default.
func getConfigFilePath() string {
	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		return DefaultConfigFilename
	}

	return configFile
}

// handleMissingConfigFile creates a new config file if it doesn't exist.
func handleMissingConfigFile(configFile, authToken string, err error) error {
	if !os.IsNotExist(err) {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	viper.Set("user_auth_token", authToken)

	if err = viper.SafeWriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	return nil
}

// setTokenInNode updates or appends user_auth_token in the YAML node tree.
func setTokenInNode(node *yaml.Node, authToken string) {
	// The root node is a document node, content[0] is the actual map.
	if len(node.Content) == 0 || node.Content[0].Kind != yaml.MappingNode {
		return
	}

	mapNode := node.Content[0]

	// Iterate through key-value pairs (stored as alternating nodes).
	for i := 0; i < len(mapNode.Content); i += 2 {
		keyNode := mapNode.Content[i]
		valueNode := mapNode.Content[i+1]

		if keyNode.Value != "user_auth_token" {
			continue
		}

		valueNode.Value = authToken
		if valueNode.Style == 0 {
			valueNode.Style = yaml.DoubleQuotedStyle
		}

		return
	}

	mapNode.Content = append(mapNode.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Value: "user_auth_token"},
		&yaml.Node{Kind: yaml.ScalarNode, Value: authToken, Style: yaml.DoubleQuotedStyle},
	)
}
