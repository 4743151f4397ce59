package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/HaiFongPan/scorepager/internal/store"
)

// sortCmd represents the sort command
var sortCmd = &cobra.Command{
	Use:   "sort <dir> [method]",
	Short: "Show or set the sort order of a directory",
	Long: `Print the sort order the browser uses for a directory, or store a new one.
Methods: ` + strings.Join(store.SortMethods, ", ") + `.

Examples:
  scorepager sort ~/scores             # Print the current method
  scorepager sort ~/scores time_desc   # Newest first`,
	Args: cobra.RangeArgs(1, 2),
	RunE: sortDirectory,
}

func init() {
	rootCmd.AddCommand(sortCmd)
}

func sortDirectory(cmd *cobra.Command, args []string) error {
	dir, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", args[0], err)
	}

	st, err := openStore(GetConfig())
	if err != nil {
		return err
	}

	if len(args) == 1 {
		fmt.Println(st.SortMethod(dir))
		return nil
	}

	method := strings.ToLower(args[1])
	if !store.ValidSortMethod(method) {
		return fmt.Errorf("unknown sort method %q (valid: %s)", args[1], strings.Join(store.SortMethods, ", "))
	}
	st.SetSortMethod(dir, method)
	fmt.Printf("Sort %s by %s\n", dir, method)
	return nil
}
