package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds the complete application configuration
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Storage   StorageConfig   `mapstructure:"storage"`
	UI        UIConfig        `mapstructure:"ui"`
	Favorites FavoritesConfig `mapstructure:"favorites"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// StorageConfig locates the persisted view state
type StorageConfig struct {
	// GlobalFile is the key=value record holding app-level settings.
	GlobalFile string `mapstructure:"global_file"`
	// DirectoryFile is the per-directory JSON record name.
	DirectoryFile string `mapstructure:"directory_file"`
}

// UIConfig holds user interface configuration
type UIConfig struct {
	ImageExtensions    []string `mapstructure:"image_extensions"`
	PageMargin         int      `mapstructure:"page_margin"`
	CellWidth          int      `mapstructure:"cell_width"`
	CellHeight         int      `mapstructure:"cell_height"`
	ImagePreviewMethod string   `mapstructure:"image_preview_method"`
	NoticeSeconds      int      `mapstructure:"notice_seconds"`
	ResizeDebounceMS   int      `mapstructure:"resize_debounce_ms"`
	Watch              bool     `mapstructure:"watch"`
	RasterCacheEntries int      `mapstructure:"raster_cache_entries"`
}

// FavoritesConfig holds favorites list configuration
type FavoritesConfig struct {
	Capacity int `mapstructure:"capacity"`
}

// Load loads configuration from multiple sources with priority:
// 1. Environment variables (highest)
// 2. Configuration file
// 3. Defaults (lowest)
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("SCOREPAGER")
	v.AutomaticEnv()

	v.BindEnv("log.level", "SCOREPAGER_LOG_LEVEL")
	v.BindEnv("log.format", "SCOREPAGER_LOG_FORMAT")
	v.BindEnv("storage.global_file", "SCOREPAGER_GLOBAL_FILE")
	v.BindEnv("storage.directory_file", "SCOREPAGER_DIRECTORY_FILE")
	v.BindEnv("ui.image_preview_method", "SCOREPAGER_UI_IMAGE_PREVIEW_METHOD")
	v.BindEnv("ui.watch", "SCOREPAGER_UI_WATCH")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")

		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.scorepager")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is not an error - defaults and env vars apply
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("storage.global_file", filepath.Join(GetConfigDir(), "setup.ini"))
	v.SetDefault("storage.directory_file", "image_config.json")

	v.SetDefault("ui.image_extensions", []string{".png", ".jpg", ".jpeg", ".gif", ".bmp"})
	v.SetDefault("ui.page_margin", 20)
	v.SetDefault("ui.cell_width", 8)
	v.SetDefault("ui.cell_height", 16)
	v.SetDefault("ui.image_preview_method", "auto")
	v.SetDefault("ui.notice_seconds", 3)
	v.SetDefault("ui.resize_debounce_ms", 100)
	v.SetDefault("ui.watch", true)
	v.SetDefault("ui.raster_cache_entries", 4)

	v.SetDefault("favorites.capacity", 50)
}

// Default returns the configuration obtained from defaults alone
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var config Config
	_ = v.Unmarshal(&config)
	return &config
}

// GetConfigDir returns the directory holding the config file and global record
func GetConfigDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(homeDir, ".scorepager")
}

// GetDefaultConfigPath returns the default configuration file path
func GetDefaultConfigPath() string {
	return filepath.Join(GetConfigDir(), "config.toml")
}

// EnsureConfigDir creates the directory holding the global record if it doesn't exist
func (c *Config) EnsureConfigDir() error {
	return os.MkdirAll(filepath.Dir(c.Storage.GlobalFile), 0700)
}
