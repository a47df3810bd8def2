package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/photo-album-pipeline/internal/album"
	"github.com/fpang/photo-album-pipeline/internal/chat"
	"github.com/fpang/photo-album-pipeline/internal/cli"
	"github.com/fpang/photo-album-pipeline/internal/config"
	"github.com/fpang/photo-album-pipeline/internal/filehandler"
	"github.com/fpang/photo-album-pipeline/internal/jobs"
	"github.com/fpang/photo-album-pipeline/internal/logging"
	"github.com/fpang/photo-album-pipeline/internal/pipeline"
	"github.com/fpang/photo-album-pipeline/internal/storage"
	"github.com/fpang/photo-album-pipeline/internal/store"
)

// CLI flags
var (
	noAIFlag     bool
	formatFlag   string
	bleedFlag    float64
	pagesFlag    int
	sampleFlag   bool
	outFlag      string
	maxDepthFlag int
	limitFlag    int
	groupFlags   []string
	answerFlags  map[string]string
	occasionFlag string
	styleFlag    string
	namesFlag    string
	messageFlag  string
	titleFlag    string
)

var generateCmd = &cobra.Command{
	Use:   "generate [directory]",
	Short: "Generate an album PDF from a directory of photos",
	Long: `Generate scans a directory (recursively by default) for JPEG, PNG and WebP
photos and produces an album PDF in --out. Photos are used in path order.

Examples:
  album-cli generate ./wedding --occasion wedding --names "Ana & Luis"
  album-cli generate ./trip --no-ai --format print_a4_landscape --pages 12
  album-cli generate ./trip --sample --style vintage
  album-cli generate ./party --group IMG_01,IMG_02 --group IMG_07
  album-cli generate  # Interactive mode - prompts for directory`,
	Args: cobra.MaximumNArgs(1),
	Run:  runGenerate,
}

func init() {
	f := generateCmd.Flags()
	f.BoolVar(&noAIFlag, "no-ai", false, "Run without Gemini: default analyses, curator plan, solid backgrounds")
	f.StringVarP(&formatFlag, "format", "f", "", "Print format (see 'album-cli formats'; default from config)")
	f.Float64Var(&bleedFlag, "bleed", -1, "Bleed in mm on every edge (default from config)")
	f.IntVarP(&pagesFlag, "pages", "p", 0, "Target page count including covers (0 = no limit)")
	f.BoolVar(&sampleFlag, "sample", false, "Generate a short sample without a back cover")
	f.StringVarP(&outFlag, "out", "o", "album-output", "Output directory for pages, backgrounds and the PDF")
	f.IntVar(&maxDepthFlag, "max-depth", 0, "Maximum recursion depth (0 = unlimited)")
	f.IntVar(&limitFlag, "limit", 0, "Maximum photos to use (0 = unlimited)")
	f.StringArrayVarP(&groupFlags, "group", "g", nil, "Comma-separated photo IDs that share a page (repeatable)")
	f.StringToStringVarP(&answerFlags, "answer", "a", nil, "Extra questionnaire answers as key=value")
	f.StringVar(&occasionFlag, "occasion", "", "Occasion, e.g. wedding or birthday")
	f.StringVar(&styleFlag, "style", "", "Visual style, e.g. classic, modern, vintage")
	f.StringVar(&namesFlag, "names", "", "Names shown on the cover and back cover")
	f.StringVar(&messageFlag, "message", "", "Dedication shown on the cover")
	f.StringVar(&titleFlag, "title", "", "Explicit album title")
}

func runGenerate(cmd *cobra.Command, args []string) {
	start := time.Now()

	cfg, loaded, err := config.Load(configFlag)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	logging.Configure(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)
	log.Debug().Bool("fileLoaded", loaded).Msg("Configuration loaded")

	dirPath := ""
	if len(args) == 1 {
		dirPath = args[0]
	} else {
		cwd, err := os.Getwd()
		if err != nil {
			cwd = "."
		}
		dirPath = cli.PromptForDirectory(cmd.InOrStdin(), cmd.OutOrStdout(), cwd)
	}
	dirPath, err = cli.ResolveDirectory(dirPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid photo directory")
	}

	photos, err := filehandler.ScanPhotos(dirPath, filehandler.ScanOptions{MaxDepth: maxDepthFlag, Limit: limitFlag})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to scan photos")
	}
	if len(photos) == 0 {
		log.Fatal().Str("directory", dirPath).Msg("No supported photos found")
	}

	objects, err := storage.NewDirStore(outFlag)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to prepare output directory")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, cfg.JobTimeout())
	defer cancel()

	var ai *chat.Gemini
	if !noAIFlag {
		ai = cli.InitGemini(ctx, cfg)
	}
	// EMF documents are for CloudWatch; locally they would only clutter stdout.
	orchestrator := pipeline.Build(cfg, store.NewMemoryStore(), objects, ai, io.Discard)

	event := pipeline.GenerateEvent{
		Type:          pipeline.EventTypeGenerate,
		JobID:         jobs.GenerateID(jobs.AlbumPrefix),
		SessionID:     "local",
		Photos:        photos,
		Questionnaire: questionnaire(),
		PageCount:     pagesFlag,
		IsSample:      sampleFlag,
		Groupings:     parseGroups(groupFlags),
		Format:        formatFlag,
		BleedMM:       cfg.Pipeline.BleedMM,
	}
	if bleedFlag >= 0 {
		event.BleedMM = bleedFlag
	}
	req, err := event.Request(cfg.Pipeline.DefaultFormat)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid album request")
	}

	log.Info().
		Str("jobId", req.JobID).
		Int("photos", len(photos)).
		Str("format", req.Format.Name).
		Bool("ai", ai != nil).
		Msg("Generating album")

	job, err := orchestrator.Run(ctx, req)
	if err != nil {
		log.Fatal().Err(err).Msg("Album generation failed")
	}

	pdfPath, err := objects.Path(job.ResultRef)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid result reference")
	}
	size := int64(0)
	if info, err := os.Stat(pdfPath); err == nil {
		size = info.Size()
	}
	if abs, err := filepath.Abs(pdfPath); err == nil {
		pdfPath = abs
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\nAlbum ready: %s\n", pdfPath)
	fmt.Fprintf(out, "  pages:   %d of %d planned (%s plan)\n", job.PagesDone, job.PagesTotal, job.PlanSource)
	fmt.Fprintf(out, "  size:    %s\n", cli.FormatBytes(size))
	fmt.Fprintf(out, "  elapsed: %s\n", cli.FormatDurationShort(time.Since(start)))
}

// questionnaire merges --answer pairs with the named flags, which win.
func questionnaire() album.Questionnaire {
	q := album.Questionnaire{}
	for k, v := range answerFlags {
		q[k] = v
	}
	named := map[string]string{
		album.KeyOccasion:       occasionFlag,
		album.KeyStyle:          styleFlag,
		album.KeyNames:          namesFlag,
		album.KeySpecialMessage: messageFlag,
		album.KeyTitle:          titleFlag,
	}
	for k, v := range named {
		if v != "" {
			q[k] = v
		}
	}
	return q
}

// parseGroups splits each --group value on commas, dropping blanks and
// empty groups.
func parseGroups(values []string) [][]string {
	var groups [][]string
	for _, v := range values {
		var ids []string
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
		if len(ids) > 0 {
			groups = append(groups, ids)
		}
	}
	return groups
}
