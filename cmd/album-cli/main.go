// Command album-cli generates photo album PDFs from a local directory of
// photos, using the same pipeline as the album worker Lambda.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/fpang/photo-album-pipeline/internal/logging"
)

var configFlag string

// rootCmd is the main Cobra command for the album CLI.
var rootCmd = &cobra.Command{
	Use:   "album-cli",
	Short: "Generate print-ready photo album PDFs",
	Long: `album-cli turns a directory of photos into a print-ready album PDF.

Photos are classified with Gemini, arranged into a storyboard, given generated
or style-colored backgrounds, composed into pages and assembled into a PDF.
With --no-ai no model is called: photos get default analyses, the
deterministic curator plans the album and backgrounds are solid colors.

Configuration is read from --config (or $ALBUM_CONFIG) and ALBUM_* environment
variables. Run "album-cli config init" for an annotated starting point.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Path to a TOML config file (default $ALBUM_CONFIG)")
	rootCmd.AddCommand(generateCmd, configCmd, formatsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
