package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/ytget/ytfetch/internal/download"
	"github.com/ytget/ytfetch/internal/metadata"
	"github.com/ytget/ytfetch/internal/model"
	"github.com/ytget/ytfetch/internal/platform"
)

type getOptions struct {
	start     int
	end       int
	format    string
	quality   string
	subs      bool
	output    string
	clipboard bool
}

func (a *App) getCommand() *cobra.Command {
	opts := &getOptions{}

	cmd := &cobra.Command{
		Use:   "get [url]",
		Short: "get downloads a video or a range of a playlist",
		Long: `get downloads a single video, or the entries start..end of a playlist,
in the requested format and quality into the output directory.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runGet(cmd, args, opts)
		},
	}

	cmd.Flags().IntVar(&opts.start, "start", 1, "first playlist entry (1-based)")
	cmd.Flags().IntVar(&opts.end, "end", 0, "last playlist entry (default: end of playlist)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "format: "+strings.Join(model.FormatFamilyNames(), ", "))
	cmd.Flags().StringVarP(&opts.quality, "quality", "q", "", "quality: "+strings.Join(model.QualityNames(), ", "))
	cmd.Flags().BoolVar(&opts.subs, "subs", false, "also download English subtitles")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output directory")
	cmd.Flags().BoolVar(&opts.clipboard, "clipboard", false, "read the URL from the clipboard")

	return cmd
}

func (a *App) runGet(cmd *cobra.Command, args []string, opts *getOptions) error {
	raw, err := a.referenceInput(args, opts.clipboard)
	if err != nil {
		return err
	}
	ref, err := platform.NewReference(raw)
	if err != nil {
		return err
	}

	family, quality, err := a.selection(cmd, opts.format, opts.quality)
	if err != nil {
		return err
	}
	subs := a.settings.GetSubtitles()
	if cmd.Flags().Changed("subs") {
		subs = opts.subs
	}
	outputDir := a.settings.GetDownloadDirectory()
	if opts.output != "" {
		outputDir = opts.output
	}

	plan := model.NewVideoPlan(ref, family, quality, outputDir)
	plan.Subtitles = subs

	if ref.IsCollection() {
		resolver := metadata.NewResolver(a.Engine, a.log)
		m, err := resolver.Preview(cmd.Context(), ref, model.DefaultPlaylistCount)
		if err != nil {
			return err
		}
		plan.StartIndex = opts.start
		plan.EndIndex = opts.end
		if plan.EndIndex == 0 {
			plan.EndIndex = m.Count()
		}
		if !m.Placeholder {
			plan.ItemCount = m.Count()
			plan.Title = m.Title
		}
		fmt.Fprintf(a.Out, "Downloading %s, items %d-%d\n", m.Title, plan.StartIndex, plan.EndIndex)
	}

	store, err := a.openHistory()
	if err != nil {
		return err
	}
	orchOpts := []download.Option{
		download.WithLogger(a.log),
		download.WithMaxParallel(a.settings.GetMaxParallelDownloads()),
	}
	if store != nil {
		defer store.Close()
		orchOpts = append(orchOpts, download.WithRecorder(store))
	}

	printer := newProgressPrinter(a.Out)
	result := download.NewOrchestrator(a.Engine, orchOpts...).Run(cmd.Context(), plan, printer.Update)
	printer.Done()

	if !result.Success {
		return errors.New(result.Message)
	}

	fmt.Fprintln(a.Out, result.Message)
	for _, name := range result.FilesWritten {
		fmt.Fprintf(a.Out, "  %s (%s)\n", name, sniffFile(filepath.Join(result.OutputDir, name)))
	}
	for _, item := range result.ItemErrors {
		fmt.Fprintf(a.Out, "  skipped: %s\n", item.Message)
	}
	return nil
}

// referenceInput returns the URL argument or the clipboard contents
func (a *App) referenceInput(args []string, fromClipboard bool) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if !fromClipboard {
		return "", errors.New("a URL argument or --clipboard is required")
	}

	read := a.ReadClipboard
	if read == nil {
		read = clipboard.ReadAll
	}
	text, err := read()
	if err != nil {
		return "", fmt.Errorf("failed to read clipboard: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// selection returns the format family and quality from the -f/-q flags,
// falling back to settings for flags that were not given
func (a *App) selection(cmd *cobra.Command, formatName, qualityName string) (model.FormatFamily, model.Quality, error) {
	var err error

	family := a.settings.GetFormat()
	if cmd.Flags().Changed("format") {
		if family, err = model.ParseFormatFamily(formatName); err != nil {
			return "", "", withSuggestion(err, formatName, model.FormatFamilyNames())
		}
	}
	quality := a.settings.GetQuality()
	if cmd.Flags().Changed("quality") {
		if quality, err = model.ParseQuality(qualityName); err != nil {
			return "", "", withSuggestion(err, qualityName, model.QualityNames())
		}
	}
	return family, quality, nil
}
