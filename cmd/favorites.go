package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/HaiFongPan/scorepager/internal/store"
)

var favoritesForce bool

// favoritesCmd represents the favorites command
var favoritesCmd = &cobra.Command{
	Use:     "favorites",
	Aliases: []string{"fav"},
	Short:   "Manage the favorites list",
	Long: `List, add, remove and reorder favorite images and directories. The list
is shared with the interactive browser.

Examples:
  scorepager favorites list
  scorepager favorites add score.png
  scorepager favorites move score.png -- -1   # One position up
  scorepager favorites prune               # Drop entries that no longer exist`,
}

var favoritesListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the favorites in order",
	Args:  cobra.NoArgs,
	RunE: withFavorites(func(favs *store.Favorites, args []string) error {
		for i, id := range favs.List() {
			missing := ""
			if !pathExists(id) {
				missing = "  (missing)"
			}
			fmt.Printf("%3d  %s%s\n", i+1, id, missing)
		}
		return nil
	}),
}

var favoritesAddCmd = &cobra.Command{
	Use:   "add <path>...",
	Short: "Append entries to the favorites",
	Args:  cobra.MinimumNArgs(1),
	RunE: withFavorites(func(favs *store.Favorites, args []string) error {
		for _, arg := range args {
			id, err := absExisting(arg)
			if err != nil {
				return err
			}
			if err := favs.Add(id); err != nil {
				if errors.Is(err, store.ErrCapacityExceeded) {
					return fmt.Errorf("cannot add %s: favorites are full (%d entries)", id, favs.Capacity())
				}
				return err
			}
			fmt.Printf("Added %s\n", id)
		}
		return nil
	}),
}

var favoritesRemoveCmd = &cobra.Command{
	Use:     "remove <path>...",
	Aliases: []string{"rm"},
	Short:   "Remove entries from the favorites",
	Args:    cobra.MinimumNArgs(1),
	RunE: withFavorites(func(favs *store.Favorites, args []string) error {
		for _, arg := range args {
			id, err := filepath.Abs(arg)
			if err != nil {
				return fmt.Errorf("failed to resolve %s: %w", arg, err)
			}
			if !favs.Contains(id) {
				return fmt.Errorf("%s is not a favorite", id)
			}
			favs.Remove(id)
			fmt.Printf("Removed %s\n", id)
		}
		return nil
	}),
}

var favoritesMoveCmd = &cobra.Command{
	Use:   "move <path> <delta>",
	Short: "Shift a favorite up (negative delta) or down",
	Args:  cobra.ExactArgs(2),
	RunE: withFavorites(func(favs *store.Favorites, args []string) error {
		id, err := filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", args[0], err)
		}
		delta, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid delta %q: %w", args[1], err)
		}
		if !favs.Contains(id) {
			return fmt.Errorf("%s is not a favorite", id)
		}
		if !favs.Move(id, delta) {
			fmt.Println("Order unchanged")
		}
		return nil
	}),
}

var favoritesPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove favorites that no longer exist",
	Args:  cobra.NoArgs,
	RunE: withFavorites(func(favs *store.Favorites, args []string) error {
		removed := favs.Prune(pathExists)
		for _, id := range removed {
			fmt.Printf("Removed %s\n", id)
		}
		logrus.WithField("removed", len(removed)).Info("pruned missing favorites")
		if len(removed) == 0 {
			fmt.Println("All favorites exist")
		}
		return nil
	}),
}

var favoritesClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all favorites",
	Args:  cobra.NoArgs,
	RunE: withFavorites(func(favs *store.Favorites, args []string) error {
		// Ask for confirmation unless --force is used
		if !favoritesForce {
			fmt.Printf("Remove all %d favorites? (y/N): ", len(favs.List()))
			var response string
			fmt.Scanln(&response)

			response = strings.ToLower(strings.TrimSpace(response))
			if response != "y" && response != "yes" {
				fmt.Println("Clear cancelled.")
				return nil
			}
		}
		favs.Clear()
		fmt.Println("Favorites cleared")
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(favoritesCmd)
	favoritesCmd.AddCommand(favoritesListCmd, favoritesAddCmd, favoritesRemoveCmd,
		favoritesMoveCmd, favoritesPruneCmd, favoritesClearCmd)

	favoritesClearCmd.Flags().BoolVarP(&favoritesForce, "force", "f", false, "clear without confirmation")
}

// withFavorites opens the favorites store before running fn
func withFavorites(fn func(favs *store.Favorites, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		return fn(store.NewFavorites(st, cfg.Favorites.Capacity), args)
	}
}

func absExisting(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	if _, err := os.Stat(abs); err != nil {
		return "", fmt.Errorf("cannot add %s: %w", abs, err)
	}
	return abs, nil
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !errors.Is(err, os.ErrNotExist)
}
