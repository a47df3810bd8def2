package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fpang/photo-album-pipeline/internal/document"
)

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List the supported print formats",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		for _, name := range document.Names() {
			f, _ := document.Lookup(name)
			w, h := f.PixelSize()
			marker := " "
			if name == document.DefaultFormat {
				marker = "*"
			}
			fmt.Fprintf(out, "%s %-20s %5.0f x %-5.0f mm  %d DPI  %d x %d px\n",
				marker, name, f.WidthMM, f.HeightMM, f.DPI, w, h)
		}
	},
}
