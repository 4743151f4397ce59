package config

import (
	"fmt"
	"strings"
)

// Validate validates the configuration and returns an error if invalid
func Validate(config *Config) error {
	if err := validateLogConfig(&config.Log); err != nil {
		return fmt.Errorf("log config validation failed: %w", err)
	}

	if err := validateStorageConfig(&config.Storage); err != nil {
		return fmt.Errorf("storage config validation failed: %w", err)
	}

	if err := validateUIConfig(&config.UI); err != nil {
		return fmt.Errorf("ui config validation failed: %w", err)
	}

	if config.Favorites.Capacity <= 0 {
		return fmt.Errorf("favorites.capacity must be positive, got: %d", config.Favorites.Capacity)
	}

	return nil
}

// validateLogConfig validates log configuration
func validateLogConfig(config *LogConfig) error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"fatal": true,
		"panic": true,
	}

	level := strings.ToLower(config.Level)
	if !validLevels[level] {
		return fmt.Errorf("invalid log level: %s (valid: debug, info, warn, error, fatal, panic)", config.Level)
	}

	validFormats := map[string]bool{
		"text": true,
		"json": true,
	}

	format := strings.ToLower(config.Format)
	if !validFormats[format] {
		return fmt.Errorf("invalid log format: %s (valid: text, json)", config.Format)
	}

	return nil
}

// validateStorageConfig validates storage locations
func validateStorageConfig(config *StorageConfig) error {
	if strings.TrimSpace(config.GlobalFile) == "" {
		return fmt.Errorf("global_file is required")
	}

	name := strings.TrimSpace(config.DirectoryFile)
	if name == "" {
		return fmt.Errorf("directory_file is required")
	}
	if strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("directory_file must be a bare file name, got: %s", name)
	}

	return nil
}

// validateUIConfig validates user interface configuration
func validateUIConfig(config *UIConfig) error {
	if len(config.ImageExtensions) == 0 {
		return fmt.Errorf("image_extensions must not be empty")
	}
	for _, ext := range config.ImageExtensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return fmt.Errorf("invalid image extension: %q (expected a leading dot, e.g. .png)", ext)
		}
	}

	if config.PageMargin < 0 {
		return fmt.Errorf("page_margin must be non-negative, got: %d", config.PageMargin)
	}

	if config.CellWidth <= 0 || config.CellHeight <= 0 {
		return fmt.Errorf("cell_width and cell_height must be positive, got: %dx%d", config.CellWidth, config.CellHeight)
	}

	validMethods := map[string]bool{
		"auto":   true,
		"text":   true,
		"kitty":  true,
		"iterm2": true,
		"sixel":  true,
	}
	if !validMethods[strings.ToLower(config.ImagePreviewMethod)] {
		return fmt.Errorf("invalid image_preview_method: %s (valid: auto, text, kitty, iterm2, sixel)", config.ImagePreviewMethod)
	}

	if config.NoticeSeconds < 0 {
		return fmt.Errorf("notice_seconds must be non-negative, got: %d", config.NoticeSeconds)
	}

	if config.ResizeDebounceMS < 0 {
		return fmt.Errorf("resize_debounce_ms must be non-negative, got: %d", config.ResizeDebounceMS)
	}

	if config.RasterCacheEntries <= 0 {
		return fmt.Errorf("raster_cache_entries must be positive, got: %d", config.RasterCacheEntries)
	}

	return nil
}
