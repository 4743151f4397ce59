package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/HaiFongPan/scorepager/internal/config"
	"github.com/HaiFongPan/scorepager/internal/store"
	"github.com/HaiFongPan/scorepager/internal/tree"
	"github.com/HaiFongPan/scorepager/internal/tui"
)

var (
	cfgFile      string
	verbose      bool
	quiet        bool
	rootDirs     []string
	globalConfig *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "scorepager",
	Short: "A terminal pager for tall sheet-music images",
	Long: `Score Pager splits tall score images into overlapping, screen-high pages
laid out side by side, so a long score can be read without scrolling.
Zoom, overlap and sort order are remembered per image and per directory.

Example usage:
  scorepager                         # Interactive browser rooted at the filesystem
  scorepager --root ~/scores         # Interactive browser rooted at a directory
  scorepager pages score.png         # Print the page layout of an image
  scorepager export score.png -o out # Write the pages as PNG files
  scorepager favorites list`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// When called without subcommands, directly enter interactive browser
		return runInteractiveBrowser()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ~/.scorepager/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "enable quiet mode")

	rootCmd.Flags().StringSliceVarP(&rootDirs, "root", "r", nil, "directories shown as tree roots (default is the filesystem root)")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() error {
	var err error
	globalConfig, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Configure logging
	setupLogging()

	return nil
}

// setupLogging configures the global logger based on config and flags
func setupLogging() {
	// Set log level
	level := globalConfig.Log.Level
	if verbose {
		level = "debug"
	} else if quiet {
		level = "error"
	}

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logrus.Warnf("Invalid log level %s, using info", level)
		logLevel = logrus.InfoLevel
	}
	logrus.SetLevel(logLevel)

	// Redirect all logs to file to prevent UI interference
	logDir := filepath.Join(os.TempDir(), "scorepager")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		// Fallback to stderr if can't create log directory
		logrus.Warnf("Failed to create log directory %s: %v", logDir, err)
	} else {
		logFile := filepath.Join(logDir, "app.log")
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			logrus.Warnf("Failed to open log file %s: %v", logFile, err)
		} else {
			logrus.SetOutput(file)
		}
	}

	// Set log format
	if globalConfig.Log.Format == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{
			DisableTimestamp: quiet,
			FullTimestamp:    verbose,
		})
	}
}

// GetConfig returns the global configuration
func GetConfig() *config.Config {
	return globalConfig
}

// openStore opens the ConfigStore described by the configuration
func openStore(cfg *config.Config) (*store.Store, error) {
	if err := cfg.EnsureConfigDir(); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}
	return store.New(cfg.Storage.GlobalFile, cfg.Storage.DirectoryFile), nil
}

// runInteractiveBrowser runs the interactive tree and page strip
func runInteractiveBrowser() error {
	cfg := globalConfig

	st, err := openStore(cfg)
	if err != nil {
		return err
	}

	var roots tree.RootsProvider = tree.OSRoots{}
	if len(rootDirs) > 0 {
		dirs, err := tree.DirRoots(rootDirs...)
		if err != nil {
			return err
		}
		roots = dirs
	}

	model, err := tui.NewFileBrowserModel(cfg, st, roots)
	if err != nil {
		return fmt.Errorf("failed to create browser: %w", err)
	}

	if cfg.UI.Watch {
		watcher, err := tree.NewWatcher(tree.IgnoreNames(cfg.Storage.DirectoryFile))
		if err != nil {
			// Browsing still works, only external changes go unnoticed
			logrus.WithError(err).Warn("directory watcher unavailable")
		} else {
			defer watcher.Close()
			model.SetWatcher(watcher)
		}
	}

	program := tea.NewProgram(model, tea.WithAltScreen())

	_, err = program.Run()
	return err
}
