package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/photo-album-pipeline/internal/config"
)

var configWriteFlag string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or create configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Print the annotated sample configuration",
	Long: `Print the annotated sample configuration, or write it with --write.
An existing file is never overwritten.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if configWriteFlag == "" {
			fmt.Fprint(cmd.OutOrStdout(), config.SampleConfig())
			return
		}
		f, err := os.OpenFile(configWriteFlag, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err != nil {
			log.Fatal().Err(err).Str("path", configWriteFlag).Msg("Failed to create config file")
		}
		defer f.Close()
		if _, err := f.WriteString(config.SampleConfig()); err != nil {
			log.Fatal().Err(err).Str("path", configWriteFlag).Msg("Failed to write config file")
		}
		log.Info().Str("path", configWriteFlag).Msg("Sample config written")
	},
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Load and validate the effective configuration",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, loaded, err := config.Load(configFlag)
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid configuration")
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "file loaded:      %v\n", loaded)
		fmt.Fprintf(out, "default format:   %s\n", cfg.Pipeline.DefaultFormat)
		fmt.Fprintf(out, "text model:       %s\n", cfg.Gemini.TextModel)
		fmt.Fprintf(out, "image model:      %s\n", cfg.Gemini.ImageModel)
		fmt.Fprintf(out, "ai backgrounds:   %v\n", cfg.Gemini.BackgroundsEnabled)
		fmt.Fprintf(out, "gemini rate:      %.1f/s burst %d\n", cfg.Gemini.RequestsPerSecond, cfg.Gemini.Burst)
		fmt.Fprintf(out, "job timeout:      %s\n", cfg.JobTimeout())
		fmt.Fprintf(out, "api key set:      %v\n", cfg.Gemini.APIKey != "")
	},
}

func init() {
	configInitCmd.Flags().StringVarP(&configWriteFlag, "write", "w", "", "Write the sample to this path instead of stdout")
	configCmd.AddCommand(configInitCmd, configCheckCmd)
}
