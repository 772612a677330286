package engine

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/lrstanley/go-ytdlp"
	"github.com/sirupsen/logrus"

	"github.com/ytget/ytfetch/internal/logger"
)

// DefaultProgressInterval is how often the engine reports progress
const DefaultProgressInterval = 500 * time.Millisecond

// errorLinePrefix marks a failure line in the engine's stderr
const errorLinePrefix = "ERROR:"

// addHeadersFlag is repeated once per header on the command line
const addHeadersFlag = "--add-headers"

// RunError carries the engine's own failure text
type RunError struct {
	Message string
	Err     error
}

func (e *RunError) Error() string {
	return e.Message
}

func (e *RunError) Unwrap() error {
	return e.Err
}

// YTDLP implements Engine on top of the yt-dlp binary
type YTDLP struct {
	executable       string
	autoInstall      bool
	progressInterval time.Duration
	log              logrus.FieldLogger

	installOnce sync.Once
	installErr  error
}

// Option configures a YTDLP engine
type Option func(*YTDLP)

// WithExecutable uses a specific yt-dlp binary instead of the one on PATH
func WithExecutable(path string) Option {
	return func(y *YTDLP) { y.executable = path }
}

// WithAutoInstall downloads a managed yt-dlp binary before the first call
func WithAutoInstall(enabled bool) Option {
	return func(y *YTDLP) { y.autoInstall = enabled }
}

// WithProgressInterval sets how often progress callbacks fire
func WithProgressInterval(d time.Duration) Option {
	return func(y *YTDLP) {
		if d > 0 {
			y.progressInterval = d
		}
	}
}

// WithLogger sets the logger
func WithLogger(log logrus.FieldLogger) Option {
	return func(y *YTDLP) {
		if log != nil {
			y.log = log
		}
	}
}

// NewYTDLP creates the yt-dlp backed engine
func NewYTDLP(opts ...Option) *YTDLP {
	y := &YTDLP{
		progressInterval: DefaultProgressInterval,
		log:              logger.Nop(),
	}
	for _, opt := range opts {
		opt(y)
	}
	return y
}

// prepare installs the managed binary once when auto install is enabled
func (y *YTDLP) prepare(ctx context.Context) error {
	if !y.autoInstall {
		return nil
	}
	y.installOnce.Do(func() {
		y.log.Info("installing yt-dlp")
		if _, err := ytdlp.Install(ctx, nil); err != nil {
			y.installErr = fmt.Errorf("failed to install yt-dlp: %w", err)
		}
	})
	return y.installErr
}

// command returns a fresh builder bound to the configured executable
func (y *YTDLP) command() *ytdlp.Command {
	dl := ytdlp.New()
	if y.executable != "" {
		dl.SetExecutable(y.executable)
	}
	return dl
}

// Metadata runs the engine in simulate mode and decodes the JSON it prints
func (y *YTDLP) Metadata(ctx context.Context, url string, opts MetadataOptions) (*Info, error) {
	if err := y.prepare(ctx); err != nil {
		return nil, err
	}

	dl, args := y.metadataCommand(opts)

	y.log.WithField("url", url).Debug("extracting metadata")

	result, err := dl.Run(ctx, append(args, url)...)
	if err != nil {
		return nil, runError(result, err)
	}

	return DecodeInfo(result.Stdout)
}

// Download runs one engine invocation for the whole item range
func (y *YTDLP) Download(ctx context.Context, url string, cfg Config, onEvent func(Event)) (*Outcome, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := y.prepare(ctx); err != nil {
		return nil, err
	}

	dl, args := y.build(cfg)

	var finished int
	var mu sync.Mutex
	dl.ProgressFunc(y.progressInterval, func(update ytdlp.ProgressUpdate) {
		ev, ok := newEvent(
			string(update.Status),
			update.Filename,
			float64(update.DownloadedBytes),
			float64(update.TotalBytes),
			update.Started,
			time.Now(),
		)
		if !ok {
			return
		}
		if ev.Status == StatusFinished {
			mu.Lock()
			finished++
			mu.Unlock()
		}
		if onEvent != nil {
			onEvent(ev)
		}
	})

	y.log.WithFields(logrus.Fields{
		"url":      url,
		"selector": cfg.Selector,
		"items":    cfg.ItemRange,
	}).Debug("starting engine")

	result, err := dl.Run(ctx, append(args, url)...)

	outcome := &Outcome{}
	if result != nil {
		outcome.Warnings = ErrorLines(result.Stderr)
		outcome.Files = extractedFiles(result)
	}

	if err != nil {
		mu.Lock()
		tolerated := cfg.IgnoreErrors && finished > 0 && ctx.Err() == nil
		mu.Unlock()
		if tolerated {
			y.log.WithField("warnings", len(outcome.Warnings)).Warn("engine finished with skipped items")
			return outcome, nil
		}
		return nil, runError(result, err)
	}

	return outcome, nil
}

// metadataCommand builds the simulate-mode command and its extra arguments
func (y *YTDLP) metadataCommand(opts MetadataOptions) (*ytdlp.Command, []string) {
	dl := y.command().
		DumpSingleJSON().
		NoWarnings()
	if !opts.ExpandEntries {
		dl.FlatPlaylist()
	}
	applySleep(dl, opts.Sleep)
	if opts.ExtractorArgs != "" {
		dl.ExtractorArgs(opts.ExtractorArgs)
	}
	return dl, headerArgs(opts.Headers)
}

// build translates a Config into yt-dlp flags. Headers are returned as
// extra arguments to place before the URL.
func (y *YTDLP) build(cfg Config) (*ytdlp.Command, []string) {
	dl := y.command().
		Format(cfg.Selector).
		Output(cfg.OutputTemplate).
		Retries(strconv.Itoa(cfg.Retries)).
		FragmentRetries(strconv.Itoa(cfg.FragmentRetries))

	if cfg.SkipUnavailableFragments {
		dl.SkipUnavailableFragments()
	}
	if cfg.IgnoreErrors {
		dl.IgnoreErrors()
	}
	if cfg.ItemRange != "" {
		dl.PlaylistItems(cfg.ItemRange)
	}
	if cfg.PostProcessing != nil {
		dl.ExtractAudio().
			AudioFormat(cfg.PostProcessing.Codec).
			AudioQuality(strconv.Itoa(cfg.PostProcessing.TargetBitrate) + "K")
	}
	if cfg.Subtitles {
		dl.WriteSubs().
			WriteAutoSubs().
			SubLangs(strings.Join(cfg.SubtitleLanguages, ","))
	}
	if cfg.ExtractorArgs != "" {
		dl.ExtractorArgs(cfg.ExtractorArgs)
	}
	applySleep(dl, cfg.Sleep)

	return dl, headerArgs(cfg.Headers)
}

// headerArgs renders one --add-headers pair per header. The builder holds a
// single header value, so the full set goes on the command line.
func headerArgs(headers map[string]string) []string {
	lines := HeaderLines(headers)
	args := make([]string, 0, 2*len(lines))
	for _, line := range lines {
		args = append(args, addHeadersFlag, line)
	}
	return args
}

func applySleep(dl *ytdlp.Command, sleep SleepWindow) {
	if sleep.Base > 0 {
		dl.SleepInterval(sleep.Base.Seconds())
	}
	if sleep.Max > 0 {
		dl.MaxSleepInterval(sleep.Max.Seconds())
	}
	if sleep.Subtitles > 0 {
		dl.SleepSubtitles(int(math.Ceil(sleep.Subtitles.Seconds())))
	}
}

// extractedFiles returns the final file names the engine printed, if any
func extractedFiles(result *ytdlp.Result) []string {
	info, err := result.GetExtractedInfo()
	if err != nil {
		return nil
	}
	var files []string
	for _, it := range info {
		if it != nil && it.Filename != nil && *it.Filename != "" {
			files = append(files, *it.Filename)
		}
	}
	return files
}

// runError prefers the engine's last ERROR line over the process error
func runError(result *ytdlp.Result, err error) error {
	if result != nil {
		if lines := ErrorLines(result.Stderr); len(lines) > 0 {
			return &RunError{Message: lines[len(lines)-1], Err: err}
		}
		if msg := strings.TrimSpace(result.Stderr); msg != "" {
			return &RunError{Message: msg, Err: err}
		}
	}
	return &RunError{Message: err.Error(), Err: err}
}

// ErrorLines returns the ERROR lines of the engine's stderr without the prefix
func ErrorLines(stderr string) []string {
	var lines []string
	for _, line := range strings.Split(stderr, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, errorLinePrefix) {
			continue
		}
		if msg := strings.TrimSpace(strings.TrimPrefix(line, errorLinePrefix)); msg != "" {
			lines = append(lines, msg)
		}
	}
	return lines
}

// newEvent converts raw progress numbers into display strings. Statuses
// other than downloading and finished are dropped.
func newEvent(status, filename string, downloaded, total float64, started, now time.Time) (Event, bool) {
	switch status {
	case StatusDownloading:
	case StatusFinished:
		return Event{Status: StatusFinished, Filename: filename, Percent: "100.0%"}, true
	default:
		return Event{}, false
	}

	ev := Event{Status: StatusDownloading, Filename: filename}
	if total > 0 {
		ev.Percent = fmt.Sprintf("%.1f%%", downloaded/total*100)
	}

	if started.IsZero() {
		return ev, true
	}
	elapsed := now.Sub(started).Seconds()
	if elapsed <= 0 || downloaded <= 0 {
		return ev, true
	}

	rate := downloaded / elapsed
	ev.Speed = humanize.Bytes(uint64(rate)) + "/s"
	if total > downloaded {
		remaining := time.Duration((total - downloaded) / rate * float64(time.Second))
		ev.ETA = remaining.Round(time.Second).String()
	}
	return ev, true
}
