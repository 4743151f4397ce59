package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/HaiFongPan/scorepager/internal/tui/image"
	"github.com/HaiFongPan/scorepager/internal/tui/theme"
)

var (
	showView   viewOptions
	showPage   int
	showMethod string
)

// termGetSize is replaced in tests
var termGetSize = term.GetSize

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show <image>",
	Short: "Print the pages of an image to the terminal",
	Long: `Render the pages of an image one below the other, using the terminal's
graphics protocol when available and colored half blocks otherwise.

Examples:
  scorepager show score.png               # All pages
  scorepager show score.png --page 2      # Only the second page
  scorepager show score.png --method text # Force half-block output`,
	Args: cobra.ExactArgs(1),
	RunE: showPages,
}

func init() {
	rootCmd.AddCommand(showCmd)
	addViewFlags(showCmd, &showView)

	showCmd.Flags().IntVarP(&showPage, "page", "p", 0, "page number to show (default is every page)")
	showCmd.Flags().StringVar(&showMethod, "method", "", "auto, text, kitty, iterm2 or sixel (overrides config)")
}

func terminalSize() (int, int, error) {
	return termGetSize(int(os.Stdout.Fd()))
}

func showPages(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	p, err := loadPreview(cmd, cfg, args[0], showView)
	if err != nil {
		return err
	}

	first, last := 0, p.PageCount()-1
	if showPage != 0 {
		if showPage < 1 || showPage > p.PageCount() {
			return fmt.Errorf("page %d out of range, %s has %d pages", showPage, args[0], p.PageCount())
		}
		first, last = showPage-1, showPage-1
	}

	method := cfg.UI.ImagePreviewMethod
	if showMethod != "" {
		method = showMethod
	}
	renderer := image.NewImageRenderer(method)

	caption := theme.CreateInfoTextStyle()
	for i := first; i <= last; i++ {
		if err := renderer.Write(os.Stdout, p.Compose(i), p.PageCols, p.PageRows[i]); err != nil {
			return err
		}
		fmt.Println()
		fmt.Println(caption.Render(p.Layout.Pages[i].Caption()))
	}
	return nil
}
