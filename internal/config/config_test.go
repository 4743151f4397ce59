package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "image_config.json", cfg.Storage.DirectoryFile)
	assert.Equal(t, "setup.ini", filepath.Base(cfg.Storage.GlobalFile))
	assert.Equal(t, []string{".png", ".jpg", ".jpeg", ".gif", ".bmp"}, cfg.UI.ImageExtensions)
	assert.Equal(t, 20, cfg.UI.PageMargin)
	assert.Equal(t, 50, cfg.Favorites.Capacity)
	assert.True(t, cfg.UI.Watch)
}

func TestLoad_FileOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[log]
level = "debug"

[ui]
page_margin = 10
image_extensions = [".png", ".webp"]

[favorites]
capacity = 10
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 10, cfg.UI.PageMargin)
	assert.Equal(t, []string{".png", ".webp"}, cfg.UI.ImageExtensions)
	assert.Equal(t, 10, cfg.Favorites.Capacity)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	t.Setenv("SCOREPAGER_LOG_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, true},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, true},
		{"directory file with slash", func(c *Config) { c.Storage.DirectoryFile = "a/b.json" }, true},
		{"no extensions", func(c *Config) { c.UI.ImageExtensions = nil }, true},
		{"extension without dot", func(c *Config) { c.UI.ImageExtensions = []string{"png"} }, true},
		{"zero cell", func(c *Config) { c.UI.CellHeight = 0 }, true},
		{"unknown preview method", func(c *Config) { c.UI.ImagePreviewMethod = "braille" }, true},
		{"zero capacity", func(c *Config) { c.Favorites.Capacity = 0 }, true},
		{"zero cache", func(c *Config) { c.UI.RasterCacheEntries = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := Validate(cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
