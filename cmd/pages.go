package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/HaiFongPan/scorepager/internal/config"
	"github.com/HaiFongPan/scorepager/internal/paginate"
	"github.com/HaiFongPan/scorepager/internal/store"
	"github.com/HaiFongPan/scorepager/internal/tui/image"
)

// viewOptions are the view flags shared by pages, show and export
type viewOptions struct {
	zoom    float64
	overlap float64
	rows    int
	mask    bool
	save    bool
}

var pagesView viewOptions

// pagesCmd represents the pages command
var pagesCmd = &cobra.Command{
	Use:   "pages <image>",
	Short: "Print the page layout of an image",
	Long: `Paginate an image with its stored view state and print where every page
is cropped from and where it lands on the strip.

Examples:
  scorepager pages score.png                  # Use the stored zoom and overlap
  scorepager pages score.png --rows 50        # Paginate for a 50-row viewport
  scorepager pages score.png --zoom 0.8 --save # Change and remember the zoom`,
	Args: cobra.ExactArgs(1),
	RunE: printPages,
}

func init() {
	rootCmd.AddCommand(pagesCmd)
	addViewFlags(pagesCmd, &pagesView)
}

func addViewFlags(cmd *cobra.Command, opts *viewOptions) {
	cmd.Flags().Float64VarP(&opts.zoom, "zoom", "z", 0, "zoom factor (default is the stored value)")
	cmd.Flags().Float64VarP(&opts.overlap, "overlap", "o", 0, "overlap ratio between pages (default is the stored value)")
	cmd.Flags().IntVar(&opts.rows, "rows", 0, "viewport height in terminal rows (default is the terminal height)")
	cmd.Flags().BoolVarP(&opts.mask, "mask", "m", false, "highlight overlap bands (default is the stored setting)")
	cmd.Flags().BoolVar(&opts.save, "save", false, "store the zoom and overlap for this image")
}

// loadPreview paginates path with the stored view state overridden by flags
func loadPreview(cmd *cobra.Command, cfg *config.Config, path string, opts viewOptions) (*image.Preview, error) {
	st, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	view := st.LoadViewState(abs)
	if cmd.Flags().Changed("zoom") {
		view.Scale = paginate.ClampScale(opts.zoom)
	}
	if cmd.Flags().Changed("overlap") {
		view.OverlapRatio = paginate.ClampOverlap(opts.overlap)
	}
	if opts.save {
		st.SaveViewState(abs, view)
		logrus.WithField("image", abs).Info("view state saved")
	}

	mask := store.NewSettings(st).MaskEnabled()
	if cmd.Flags().Changed("mask") {
		mask = opts.mask
	}

	rows := opts.rows
	if rows <= 0 {
		rows = terminalRows()
	}

	manager := image.NewImageManager(
		image.NewRasterCache(cfg.UI.RasterCacheEntries, nil),
		cfg.UI.CellWidth, cfg.UI.CellHeight, cfg.UI.PageMargin, nil)

	return manager.Preview(image.PreviewRequest{
		Path:         abs,
		View:         view,
		ViewportRows: rows,
		Mask:         mask,
	})
}

// terminalRows is the page height used by the browser for the current
// terminal, or a 40-row default when stdout is not a terminal.
func terminalRows() int {
	_, height, err := terminalSize()
	if err != nil || height <= 0 {
		return 40
	}
	return max(height-3, 1)
}

func printPages(cmd *cobra.Command, args []string) error {
	p, err := loadPreview(cmd, GetConfig(), args[0], pagesView)
	if err != nil {
		return err
	}

	var size uint64
	if info, err := os.Stat(p.Path); err == nil {
		size = uint64(info.Size())
	}

	fmt.Printf("%s  %s  %s\n", p.Path, p.Stats.OriginalSize, humanize.Bytes(size))
	fmt.Printf("zoom %d%%  overlap %d%% (%d px)  step %d px  %d pages\n\n",
		int(p.View.Scale*100+0.5), int(p.View.OverlapRatio*100+0.5),
		p.Layout.Overlap, p.Layout.Step, p.PageCount())

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PAGE\tCROP\tHEIGHT\tOFFSET\tDIVIDERS\tBANDS")
	for _, page := range p.Layout.Pages {
		fmt.Fprintf(w, "%d/%d\t%d-%d\t%d\t%d,%d\t%v\t%d\n",
			page.Index+1, page.Count,
			page.SourceCrop.Min.Y, page.SourceCrop.Max.Y, page.SourceCrop.Dy(),
			page.CanvasOffset.X, page.CanvasOffset.Y,
			page.Dividers, len(page.MaskBands))
	}
	return w.Flush()
}
