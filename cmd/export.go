package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	exportView   viewOptions
	exportOutput string
	exportStrip  bool
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export <image>",
	Short: "Write the pages of an image as PNG files",
	Long: `Compose every page of an image (crop, overlap bands and dividers) and
save it as a PNG file, or save the whole strip as one image.

Examples:
  scorepager export score.png                 # score_page1.png, score_page2.png, ...
  scorepager export score.png -d out --strip  # out/score_strip.png`,
	Args: cobra.ExactArgs(1),
	RunE: exportPages,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	addViewFlags(exportCmd, &exportView)

	exportCmd.Flags().StringVarP(&exportOutput, "dir", "d", ".", "output directory")
	exportCmd.Flags().BoolVar(&exportStrip, "strip", false, "write all pages side by side into one image")
}

func exportPages(cmd *cobra.Command, args []string) error {
	p, err := loadPreview(cmd, GetConfig(), args[0], exportView)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(exportOutput, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(p.Path), filepath.Ext(p.Path))

	if exportStrip {
		out := filepath.Join(exportOutput, base+"_strip.png")
		if err := imaging.Save(p.ComposeStrip(), out); err != nil {
			return fmt.Errorf("failed to save %s: %w", out, err)
		}
		fmt.Println(out)
		return nil
	}

	for i := range p.Layout.Pages {
		out := filepath.Join(exportOutput, fmt.Sprintf("%s_page%d.png", base, i+1))
		if err := imaging.Save(p.Compose(i), out); err != nil {
			return fmt.Errorf("failed to save %s: %w", out, err)
		}
		logrus.WithField("file", out).Debug("page exported")
		fmt.Println(out)
	}
	return nil
}
