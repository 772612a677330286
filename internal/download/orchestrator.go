package download

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ytget/ytfetch/internal/engine"
	"github.com/ytget/ytfetch/internal/failure"
	"github.com/ytget/ytfetch/internal/format"
	"github.com/ytget/ytfetch/internal/logger"
	"github.com/ytget/ytfetch/internal/model"
	"github.com/ytget/ytfetch/internal/platform"
	"github.com/ytget/ytfetch/internal/progress"
)

// Pacing used between downloads
const (
	SleepBase      = 2 * time.Second
	SleepMax       = 10 * time.Second
	SleepSubtitles = 2 * time.Second
)

// LockFileName is the advisory lock taken inside the output directory
const LockFileName = ".ytfetch.lock"

// Messages
const (
	DirectoryErrorPrefix = "Cannot create output directory: "
	DirectoryBusyPrefix  = "Output directory is in use by another download: "
	successTemplate      = "Successfully downloaded %d file(s) to %s"
)

// Recorder persists run records
type Recorder interface {
	Record(run *model.Run) error
}

// Orchestrator executes download plans one at a time
type Orchestrator struct {
	engine      engine.Engine
	progress    *progress.Aggregator
	log         logrus.FieldLogger
	recorder    Recorder
	now         func() time.Time
	maxParallel int

	runMu sync.Mutex
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithLogger sets the logger
func WithLogger(log logrus.FieldLogger) Option {
	return func(o *Orchestrator) {
		if log != nil {
			o.log = log
		}
	}
}

// WithRecorder reports every run to r
func WithRecorder(r Recorder) Option {
	return func(o *Orchestrator) { o.recorder = r }
}

// WithMaxParallel stores the parallelism setting. Runs are still executed
// by a single engine call.
func WithMaxParallel(n int) Option {
	return func(o *Orchestrator) { o.SetMaxParallel(n) }
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// NewOrchestrator creates an orchestrator driving eng
func NewOrchestrator(eng engine.Engine, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		engine:      eng,
		progress:    progress.NewAggregator(nil),
		log:         logger.Nop(),
		now:         time.Now,
		maxParallel: model.MinParallel,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// SetMaxParallel clamps and stores the parallelism setting
func (o *Orchestrator) SetMaxParallel(n int) {
	o.maxParallel = model.ClampParallel(n)
}

// MaxParallel returns the stored parallelism setting
func (o *Orchestrator) MaxParallel() int {
	return o.maxParallel
}

// Progress returns the current progress snapshot
func (o *Orchestrator) Progress() model.ProgressState {
	return o.progress.Snapshot()
}

// Run executes plan and always returns a result; onProgress may be nil
func (o *Orchestrator) Run(ctx context.Context, plan model.DownloadPlan, onProgress func(model.ProgressState)) *model.DownloadResult {
	o.runMu.Lock()
	defer o.runMu.Unlock()

	runID := generateRunID()
	run := model.NewRun(runID, plan, o.now())
	log := o.log.WithFields(logrus.Fields{
		"run_id":  runID,
		"url":     plan.Reference.URL,
		"kind":    plan.Reference.Kind,
		"format":  plan.Family,
		"quality": plan.Quality,
	})

	result := o.execute(ctx, plan, run, log, onProgress)
	result.RunID = runID

	run.Finish(result, o.now())
	o.record(run, log)

	entry := log.WithFields(logrus.Fields{
		"files":   len(result.FilesWritten),
		"elapsed": run.Elapsed().Round(time.Millisecond),
	})
	if result.Success {
		entry.WithField("skipped", len(result.ItemErrors)).Info(result.Message)
	} else {
		entry.WithField("failure", result.FailureKind).Error(result.Message)
	}
	return result
}

func (o *Orchestrator) execute(ctx context.Context, plan model.DownloadPlan, run *model.Run, log logrus.FieldLogger, onProgress func(model.ProgressState)) *model.DownloadResult {
	result := &model.DownloadResult{
		OutputDir:    plan.OutputDir,
		Requested:    plan.TotalCount(),
		FilesWritten: []string{},
	}

	if err := plan.Validate(); err != nil {
		return fail(result, failure.Classify(err.Error()))
	}

	dir, err := platform.EnsureDirectory(plan.OutputDir)
	if err != nil {
		return fail(result, failure.DirectoryUnwritable(DirectoryErrorPrefix+err.Error()))
	}
	result.OutputDir = dir

	lock := flock.New(filepath.Join(dir, LockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return fail(result, failure.DirectoryUnwritable(DirectoryErrorPrefix+err.Error()))
	}
	if !locked {
		return fail(result, failure.DirectoryUnwritable(DirectoryBusyPrefix+dir))
	}
	defer lock.Unlock()

	cfg, err := buildConfig(plan, dir)
	if err != nil {
		return fail(result, failure.Classify(err.Error()))
	}

	o.progress.SetListener(onProgress)
	defer o.progress.SetListener(nil)
	o.progress.Reset(plan.TotalCount())

	run.Status = model.RunStatusDownloading
	o.record(run, log)
	log.WithFields(logrus.Fields{
		"dir":      dir,
		"items":    cfg.ItemRange,
		"selector": cfg.Selector,
		"parallel": o.maxParallel,
	}).Info("download started")

	outcome, err := o.engine.Download(ctx, plan.Reference.URL, cfg, o.onEvent)
	if err != nil {
		return fail(result, failure.Classify(err.Error()))
	}

	snapshot := o.progress.Snapshot()
	reported := snapshot.CompletedFiles
	if len(reported) == 0 && outcome != nil {
		reported = outcome.Files
	}

	result.Success = true
	result.FilesWritten = resolveFiles(dir, reported, log)
	if outcome != nil {
		for _, w := range outcome.Warnings {
			c := failure.Classify(w)
			result.ItemErrors = append(result.ItemErrors, model.ItemError{Message: w, Kind: c.Kind})
		}
	}
	result.Message = fmt.Sprintf(successTemplate, len(result.FilesWritten), dir)
	return result
}

// onEvent routes engine events into the aggregator
func (o *Orchestrator) onEvent(ev engine.Event) {
	switch ev.Status {
	case engine.StatusDownloading:
		o.progress.Downloading(ev.Filename, ev.Percent, ev.Speed, ev.ETA)
	case engine.StatusFinished:
		o.progress.Finished(ev.Filename)
	}
}

func (o *Orchestrator) record(run *model.Run, log logrus.FieldLogger) {
	if o.recorder == nil {
		return
	}
	if err := o.recorder.Record(run); err != nil {
		log.WithError(err).Warn("failed to record run")
	}
}

// buildConfig assembles the single engine configuration for plan
func buildConfig(plan model.DownloadPlan, dir string) (engine.Config, error) {
	sel, err := format.Negotiate(plan.Family, plan.Quality, plan.Reference.Kind)
	if err != nil {
		return engine.Config{}, err
	}
	items, err := format.NewItemRange(plan.Reference.Kind, plan.StartIndex, plan.EndIndex, plan.ItemCount)
	if err != nil {
		return engine.Config{}, err
	}

	cfg := engine.Config{
		Selector:                 sel.Selector,
		OutputTemplate:           filepath.Join(dir, sel.NamingTemplate),
		PostProcessing:           sel.PostProcessing,
		ItemRange:                items.String(),
		Retries:                  engine.DefaultRetries,
		FragmentRetries:          engine.DefaultFragmentRetries,
		SkipUnavailableFragments: true,
		IgnoreErrors:             true,
		Headers:                  engine.CopyHeaders(),
		Sleep: engine.SleepWindow{
			Base:      SleepBase,
			Max:       SleepMax,
			Subtitles: SleepSubtitles,
		},
		ExtractorArgs: engine.DefaultExtractorArgs,
	}
	if plan.Subtitles {
		cfg.Subtitles = true
		cfg.SubtitleLanguages = append([]string(nil), engine.DefaultSubtitleLanguages...)
	}
	return cfg, cfg.Validate()
}

// resolveFiles maps reported names to the files left on disk, dropping
// duplicates produced by stream merging or audio extraction
func resolveFiles(dir string, reported []string, log logrus.FieldLogger) []string {
	files := make([]string, 0, len(reported))
	seen := make(map[string]struct{}, len(reported))
	for _, name := range reported {
		final := filepath.Base(name)
		if path, err := platform.ResolveWrittenFile(dir, name); err == nil {
			final = filepath.Base(path)
		} else {
			log.WithError(err).WithField("file", name).Debug("keeping reported file name")
		}
		if _, dup := seen[final]; dup {
			continue
		}
		seen[final] = struct{}{}
		files = append(files, final)
	}
	return files
}

func fail(result *model.DownloadResult, c failure.Classification) *model.DownloadResult {
	result.Success = false
	result.FailureKind = c.Kind
	result.Message = c.UserMessage
	return result
}

// generateRunID generates a unique run ID
func generateRunID() string {
	return "run-" + uuid.NewString()
}
