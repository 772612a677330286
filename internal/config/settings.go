// Package config loads user settings from config.yaml and YTFETCH_*
// environment variables through viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ytget/ytfetch/internal/model"
	"github.com/ytget/ytfetch/internal/platform"
)

// Settings keys
const (
	KeyDownloadDir      = "download.output_dir"
	KeyFormat           = "download.format"
	KeyQuality          = "download.quality"
	KeySubtitles        = "download.subtitles"
	KeyMaxParallel      = "download.max_parallel"
	KeyEngineExecutable = "engine.executable"
	KeyEngineInstall    = "engine.auto_install"
	KeyProgressInterval = "engine.progress_interval"
	KeyLogLevel         = "logging.level"
	KeyLogFile          = "logging.file"
	KeyHistoryEnabled   = "history.enabled"
	KeyHistoryPath      = "history.path"
)

// Default values
const (
	DefaultDownloadDir      = "~/Downloads"
	DefaultFormat           = model.FamilyVideo
	DefaultQuality          = model.QualityBest
	DefaultMaxParallel      = 1
	DefaultProgressInterval = 500 * time.Millisecond
	DefaultLogLevel         = "info"
	DefaultHistoryPath      = "~/.local/share/ytfetch/history.db"
)

// Config file location
const (
	ConfigName = "config"
	ConfigType = "yaml"
	EnvPrefix  = "YTFETCH"
	AppDirName = "ytfetch"
)

// Settings manages application configuration
type Settings struct {
	v *viper.Viper
}

// NewSettings wraps v and registers defaults
func NewSettings(v *viper.Viper) *Settings {
	if v == nil {
		v = viper.New()
	}
	v.SetDefault(KeyDownloadDir, DefaultDownloadDir)
	v.SetDefault(KeyFormat, string(DefaultFormat))
	v.SetDefault(KeyQuality, string(DefaultQuality))
	v.SetDefault(KeySubtitles, false)
	v.SetDefault(KeyMaxParallel, DefaultMaxParallel)
	v.SetDefault(KeyEngineExecutable, "")
	v.SetDefault(KeyEngineInstall, false)
	v.SetDefault(KeyProgressInterval, DefaultProgressInterval)
	v.SetDefault(KeyLogLevel, DefaultLogLevel)
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyHistoryEnabled, true)
	v.SetDefault(KeyHistoryPath, DefaultHistoryPath)
	return &Settings{v: v}
}

// DefaultConfigDir returns the per-user config directory for the current OS
func DefaultConfigDir() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), AppDirName)
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", AppDirName)
	}
}

// Load reads configFile, or config.yaml from the default locations when
// configFile is empty. A missing default file is not an error.
func Load(configFile string) (*Settings, error) {
	v := viper.New()
	s := NewSettings(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(ConfigName)
		v.SetConfigType(ConfigType)
		v.AddConfigPath(DefaultConfigDir())
		v.AddConfigPath(".")
	}

	// Environment variable overrides
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return s, nil
}

// ErrUnknownKey indicates a settings key that does not exist.
var ErrUnknownKey = errors.New("unknown setting")

var knownKeys = []string{
	KeyDownloadDir, KeyFormat, KeyQuality, KeySubtitles, KeyMaxParallel,
	KeyEngineExecutable, KeyEngineInstall, KeyProgressInterval,
	KeyLogLevel, KeyLogFile, KeyHistoryEnabled, KeyHistoryPath,
}

// Keys returns every settings key in sorted order
func Keys() []string {
	keys := append([]string(nil), knownKeys...)
	sort.Strings(keys)
	return keys
}

func isKnownKey(key string) bool {
	for _, k := range knownKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Get returns the effective value of key as text
func (s *Settings) Get(key string) (string, error) {
	if !isKnownKey(key) {
		return "", fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	return s.v.GetString(key), nil
}

// Set parses value according to key and stores it
func (s *Settings) Set(key, value string) error {
	value = strings.TrimSpace(value)

	switch key {
	case KeyDownloadDir:
		s.SetDownloadDirectory(value)
	case KeyFormat:
		f, err := model.ParseFormatFamily(value)
		if err != nil {
			return err
		}
		s.SetFormat(f)
	case KeyQuality:
		q, err := model.ParseQuality(value)
		if err != nil {
			return err
		}
		s.SetQuality(q)
	case KeyMaxParallel:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for %s: %w", key, err)
		}
		s.SetMaxParallelDownloads(n)
	case KeySubtitles, KeyEngineInstall, KeyHistoryEnabled:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for %s: %w", key, err)
		}
		s.v.Set(key, b)
	case KeyProgressInterval:
		d, err := time.ParseDuration(value)
		if err != nil || d <= 0 {
			return fmt.Errorf("invalid value for %s: %q", key, value)
		}
		s.v.Set(key, d.String())
	case KeyEngineExecutable, KeyLogLevel, KeyLogFile, KeyHistoryPath:
		s.v.Set(key, value)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	return nil
}

// ConfigFileUsed returns the file settings were read from, if any
func (s *Settings) ConfigFileUsed() string {
	return s.v.ConfigFileUsed()
}

// GetDownloadDirectory returns the configured download directory with ~ expanded
func (s *Settings) GetDownloadDirectory() string {
	dir := strings.TrimSpace(s.v.GetString(KeyDownloadDir))
	if dir == "" {
		defaultDir, err := platform.GetHomeDownloadsDir()
		if err != nil {
			defaultDir = filepath.Join(os.TempDir(), "downloads")
		}
		return defaultDir
	}
	if expanded, err := platform.ExpandHome(dir); err == nil {
		return expanded
	}
	return dir
}

// SetDownloadDirectory sets the download directory
func (s *Settings) SetDownloadDirectory(dir string) {
	s.v.Set(KeyDownloadDir, dir)
}

// GetFormat returns the configured format family, falling back to the default
func (s *Settings) GetFormat() model.FormatFamily {
	f, err := model.ParseFormatFamily(s.v.GetString(KeyFormat))
	if err != nil {
		return DefaultFormat
	}
	return f
}

// SetFormat sets the format family
func (s *Settings) SetFormat(f model.FormatFamily) {
	s.v.Set(KeyFormat, string(f))
}

// GetQuality returns the configured quality tier, falling back to the default
func (s *Settings) GetQuality() model.Quality {
	q, err := model.ParseQuality(s.v.GetString(KeyQuality))
	if err != nil {
		return DefaultQuality
	}
	return q
}

// SetQuality sets the quality tier
func (s *Settings) SetQuality(q model.Quality) {
	s.v.Set(KeyQuality, string(q))
}

// GetSubtitles returns whether subtitles are requested by default
func (s *Settings) GetSubtitles() bool {
	return s.v.GetBool(KeySubtitles)
}

// GetMaxParallelDownloads returns the maximum number of parallel downloads
func (s *Settings) GetMaxParallelDownloads() int {
	return model.ClampParallel(s.v.GetInt(KeyMaxParallel))
}

// SetMaxParallelDownloads sets the maximum number of parallel downloads
func (s *Settings) SetMaxParallelDownloads(count int) {
	s.v.Set(KeyMaxParallel, model.ClampParallel(count))
}

// GetEngineExecutable returns the custom yt-dlp path, empty for PATH lookup
func (s *Settings) GetEngineExecutable() string {
	return s.v.GetString(KeyEngineExecutable)
}

// GetEngineAutoInstall returns whether a managed yt-dlp should be installed
func (s *Settings) GetEngineAutoInstall() bool {
	return s.v.GetBool(KeyEngineInstall)
}

// GetProgressInterval returns how often engine progress is sampled
func (s *Settings) GetProgressInterval() time.Duration {
	d := s.v.GetDuration(KeyProgressInterval)
	if d <= 0 {
		return DefaultProgressInterval
	}
	return d
}

// GetLogLevel returns the configured log level name
func (s *Settings) GetLogLevel() string {
	return s.v.GetString(KeyLogLevel)
}

// GetLogFile returns the log file path, empty for stderr
func (s *Settings) GetLogFile() string {
	return s.v.GetString(KeyLogFile)
}

// GetHistoryEnabled returns whether runs are recorded
func (s *Settings) GetHistoryEnabled() bool {
	return s.v.GetBool(KeyHistoryEnabled)
}

// GetHistoryPath returns the history database path with ~ expanded
func (s *Settings) GetHistoryPath() string {
	path := s.v.GetString(KeyHistoryPath)
	if expanded, err := platform.ExpandHome(path); err == nil {
		return expanded
	}
	return path
}

// DefaultConfigFile returns the config.yaml path inside DefaultConfigDir
func DefaultConfigFile() string {
	return filepath.Join(DefaultConfigDir(), ConfigName+"."+ConfigType)
}

// Save writes the current settings to path as YAML
func (s *Settings) Save(path string) error {
	if err := platform.CreateDirectoryIfNotExists(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := s.v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
