package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/HaiFongPan/scorepager/internal/store"
	"github.com/HaiFongPan/scorepager/internal/tree"
)

var (
	treeDepth   int
	treeWorkers int
)

// treeCmd represents the tree command
var treeCmd = &cobra.Command{
	Use:   "tree [dir]",
	Short: "Print the directories and images below a directory",
	Long: `Print the tree the browser would show, with the stored sort order of every
directory and favorites marked with a star.

Examples:
  scorepager tree                # Current directory, two levels deep
  scorepager tree ~/scores -L 4  # Four levels deep`,
	Args: cobra.MaximumNArgs(1),
	RunE: printTree,
}

func init() {
	rootCmd.AddCommand(treeCmd)

	treeCmd.Flags().IntVarP(&treeDepth, "level", "L", 2, "number of directory levels to expand")
	treeCmd.Flags().IntVar(&treeWorkers, "workers", 8, "directories listed in parallel")
}

func printTree(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	roots, err := tree.DirRoots(dir)
	if err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	filter, err := tree.ImageFilter(cfg.UI.ImageExtensions)
	if err != nil {
		return fmt.Errorf("invalid image extensions %v: %w", cfg.UI.ImageExtensions, err)
	}

	model := tree.New(roots,
		tree.WithFilter(filter),
		tree.WithSortPolicies(st),
		tree.WithFavorites(store.NewFavorites(st, cfg.Favorites.Capacity)),
	)

	if err := expandLevels(model, model.Roots(), treeDepth, treeWorkers); err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, row := range model.Visible() {
		n := row.Node
		mark := " "
		if row.Favorite {
			mark = "★"
		}
		name := n.DisplayName()
		if n.IsDir() {
			name += "/"
		}

		size := ""
		if !n.IsDir() {
			size = humanize.Bytes(uint64(n.Size))
		}
		modified := ""
		if !n.ModTime.IsZero() {
			modified = humanize.Time(n.ModTime)
		}
		fmt.Fprintf(w, "%s %s%s\t%s\t%s\n", mark, strings.Repeat("  ", row.Depth), name, size, modified)
	}
	return w.Flush()
}

// expandLevels lists one level of directories in parallel, attaches the
// results and descends until depth levels are open.
func expandLevels(model *tree.Model, nodes []*tree.Node, depth, workers int) error {
	for level := 0; level < depth && len(nodes) > 0; level++ {
		var dirs []*tree.Node
		var reqs []tree.Request
		for _, n := range nodes {
			if req, ok := model.Begin(n); ok {
				dirs = append(dirs, n)
				reqs = append(reqs, req)
			}
		}

		listings := make([]tree.Listing, len(reqs))
		var g errgroup.Group
		g.SetLimit(max(workers, 1))
		for i, req := range reqs {
			g.Go(func() error {
				listings[i] = model.Fetch(req)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		var next []*tree.Node
		for i, n := range dirs {
			model.Attach(n, listings[i])
			n.Expanded = true
			next = append(next, n.Children()...)
		}
		nodes = next
	}
	return nil
}
