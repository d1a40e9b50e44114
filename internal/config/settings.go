package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/turkoid/zipadeedoodah/internal/engine"
	"github.com/turkoid/zipadeedoodah/internal/http"
)

// EnvPrefix prefixes every environment variable read by ApplyEnv.
const EnvPrefix = "ZIPPY_"

// Settings holds all configuration options.
type Settings struct {
	// Target directory
	DownloadsPath string `json:"downloads_path"`

	// Engine settings
	Engine     string `json:"engine"` // chrome, otto
	ChromePath string `json:"chrome_path"`
	ChromeURL  string `json:"chrome_url"` // DevTools websocket URL of a running browser
	Headless   bool   `json:"headless"`

	// Resolution settings, durations in seconds
	ResolveTimeout           float64 `json:"resolve_timeout"`
	HTTPTimeout              float64 `json:"http_timeout"`
	UserAgent                string  `json:"user_agent"`
	RequestsPerSecond        float64 `json:"requests_per_second"`
	MaxConcurrentResolutions int     `json:"max_concurrent_resolutions"` // 0 = unlimited

	// Download settings
	Download                  bool    `json:"download"`
	MaxConcurrentDownloads    int     `json:"max_concurrent_downloads"`
	DownloadMaxRetries        int     `json:"download_max_retries"`
	DownloadRetryCooldown     float64 `json:"download_retry_cooldown"`
	DownloadRetryExponent     float64 `json:"download_retry_exponent"`
	AllowedFileSizeDifference float64 `json:"allowed_file_size_difference"`

	// Tag settings
	TagSource bool `json:"tag_source"`

	// Playlist settings
	CreatePlaylist   bool   `json:"create_playlist"`
	PlaylistFormat   string `json:"playlist_format"` // m3u, pls
	PlaylistFileName string `json:"playlist_file_name"`
	M3UExtended      bool   `json:"m3u_extended"`

	// Observability
	LogLevel    string `json:"log_level"`
	LogFile     string `json:"log_file"`
	MetricsAddr string `json:"metrics_addr"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		DownloadsPath: "./",

		Engine:   "chrome",
		Headless: true,

		ResolveTimeout:           60,
		HTTPTimeout:              30,
		MaxConcurrentResolutions: 0,

		Download:                  false,
		MaxConcurrentDownloads:    4,
		DownloadMaxRetries:        7,
		DownloadRetryCooldown:     0.2,
		DownloadRetryExponent:     4.0,
		AllowedFileSizeDifference: 0.05,

		TagSource: true,

		CreatePlaylist:   false,
		PlaylistFormat:   "m3u",
		PlaylistFileName: "zippyshare",
		M3UExtended:      true,

		LogLevel: "info",
	}
}

// DefaultPath returns the per-user settings file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "zipadeedoodah.json"
	}
	return filepath.Join(dir, "zipadeedoodah", "config.json")
}

// Load reads settings from a JSON file.
// A missing file yields DefaultSettings.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return settings, nil
}

// Save writes settings to a JSON file.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// ApplyEnv loads envFile into the process environment, if it exists, and
// then overrides settings from ZIPPY_* variables. Variables already set in
// the environment win over the file.
func (s *Settings) ApplyEnv(envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	var errs []error
	str := func(name string, dst *string) {
		if v, ok := os.LookupEnv(EnvPrefix + name); ok {
			*dst = v
		}
	}
	boolean := func(name string, dst *bool) {
		if v, ok := os.LookupEnv(EnvPrefix + name); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = b
		}
	}
	integer := func(name string, dst *int) {
		if v, ok := os.LookupEnv(EnvPrefix + name); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = n
		}
	}
	float := func(name string, dst *float64) {
		if v, ok := os.LookupEnv(EnvPrefix + name); ok {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = f
		}
	}

	str("DOWNLOADS_PATH", &s.DownloadsPath)
	str("ENGINE", &s.Engine)
	str("CHROME_PATH", &s.ChromePath)
	str("CHROME_URL", &s.ChromeURL)
	boolean("HEADLESS", &s.Headless)
	float("RESOLVE_TIMEOUT", &s.ResolveTimeout)
	float("HTTP_TIMEOUT", &s.HTTPTimeout)
	str("USER_AGENT", &s.UserAgent)
	float("REQUESTS_PER_SECOND", &s.RequestsPerSecond)
	integer("MAX_CONCURRENT_RESOLUTIONS", &s.MaxConcurrentResolutions)
	boolean("DOWNLOAD", &s.Download)
	integer("MAX_CONCURRENT_DOWNLOADS", &s.MaxConcurrentDownloads)
	integer("DOWNLOAD_MAX_RETRIES", &s.DownloadMaxRetries)
	boolean("TAG_SOURCE", &s.TagSource)
	boolean("CREATE_PLAYLIST", &s.CreatePlaylist)
	str("PLAYLIST_FORMAT", &s.PlaylistFormat)
	str("LOG_LEVEL", &s.LogLevel)
	str("LOG_FILE", &s.LogFile)
	str("METRICS_ADDR", &s.MetricsAddr)

	return errors.Join(errs...)
}

// Validate reports settings that cannot be used.
func (s *Settings) Validate() error {
	var errs []error
	switch s.Engine {
	case "chrome", "otto":
	default:
		errs = append(errs, fmt.Errorf("engine must be chrome or otto, got %q", s.Engine))
	}
	switch s.PlaylistFormat {
	case "m3u", "pls":
	default:
		errs = append(errs, fmt.Errorf("playlist_format must be m3u or pls, got %q", s.PlaylistFormat))
	}
	if s.ResolveTimeout <= 0 {
		errs = append(errs, fmt.Errorf("resolve_timeout must be positive, got %v", s.ResolveTimeout))
	}
	if s.MaxConcurrentResolutions < 0 {
		errs = append(errs, fmt.Errorf("max_concurrent_resolutions must not be negative, got %d", s.MaxConcurrentResolutions))
	}
	if s.MaxConcurrentDownloads < 1 {
		errs = append(errs, fmt.Errorf("max_concurrent_downloads must be at least 1, got %d", s.MaxConcurrentDownloads))
	}
	if s.DownloadMaxRetries < 1 {
		errs = append(errs, fmt.Errorf("download_max_retries must be at least 1, got %d", s.DownloadMaxRetries))
	}
	return errors.Join(errs...)
}

// ResolveTimeoutDuration returns ResolveTimeout as a time.Duration.
func (s *Settings) ResolveTimeoutDuration() time.Duration {
	return seconds(s.ResolveTimeout)
}

// HTTPTimeoutDuration returns HTTPTimeout as a time.Duration.
func (s *Settings) HTTPTimeoutDuration() time.Duration {
	return seconds(s.HTTPTimeout)
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}

// ToHTTPOptions converts settings to http.Options.
func (s *Settings) ToHTTPOptions() http.Options {
	return http.Options{
		Timeout:           s.HTTPTimeoutDuration(),
		UserAgent:         s.UserAgent,
		RequestsPerSecond: s.RequestsPerSecond,
	}
}

// ToEngineOptions converts settings to engine.Options.
// The browser is given the same User-Agent as the HTTP client.
func (s *Settings) ToEngineOptions() engine.Options {
	return engine.Options{
		Kind:       engine.Kind(s.Engine),
		ChromePath: s.ChromePath,
		RemoteURL:  s.ChromeURL,
		Headless:   s.Headless,
		UserAgent:  s.UserAgent,
	}
}
