package download

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/gofrs/flock"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ytget/ytfetch/internal/engine"
	"github.com/ytget/ytfetch/internal/engine/enginetest"
	"github.com/ytget/ytfetch/internal/failure"
	"github.com/ytget/ytfetch/internal/model"
)

const (
	videoURL    = "https://www.youtube.com/watch?v=abc"
	playlistURL = "https://www.youtube.com/playlist?list=PL1"
)

type memoryRecorder struct {
	mu   sync.Mutex
	runs []model.Run
	err  error
}

func (m *memoryRecorder) Record(run *model.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, *run)
	return m.err
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}
}

func videoPlan(dir string, family model.FormatFamily) model.DownloadPlan {
	ref := model.ContentReference{URL: videoURL, Kind: model.KindVideo}
	return model.NewVideoPlan(ref, family, model.QualityBest, dir)
}

func playlistPlan(dir string, start, end int) model.DownloadPlan {
	return model.DownloadPlan{
		Reference:  model.ContentReference{URL: playlistURL, Kind: model.KindCollection},
		StartIndex: start,
		EndIndex:   end,
		ItemCount:  10,
		Family:     model.FamilyAudioLossy,
		Quality:    model.QualityMedium,
		OutputDir:  dir,
	}
}

func TestRun_VideoSuccess(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "Song.mp4")

	eng := &enginetest.Mock{Events: []engine.Event{
		{Status: engine.StatusDownloading, Filename: filepath.Join(dir, "Song.mp4"), Percent: "50.0%", Speed: "1 MB/s", ETA: "2s"},
		{Status: engine.StatusFinished, Filename: filepath.Join(dir, "Song.mp4")},
	}}
	eng.On("Download", mock.Anything, videoURL, mock.MatchedBy(func(cfg engine.Config) bool {
		return cfg.Selector == "bestvideo[ext=mp4][height<=1080]+bestaudio[ext=m4a]/best[ext=mp4][height<=1080]/best" &&
			cfg.OutputTemplate == filepath.Join(dir, "%(title)s.%(ext)s") &&
			cfg.ItemRange == "" &&
			cfg.PostProcessing == nil &&
			cfg.Retries == 3 && cfg.FragmentRetries == 3 &&
			cfg.SkipUnavailableFragments && cfg.IgnoreErrors &&
			!cfg.Subtitles &&
			cfg.Sleep.Base == SleepBase && cfg.Sleep.Max == SleepMax && cfg.Sleep.Subtitles == SleepSubtitles &&
			cfg.ExtractorArgs == "youtube:skip=dash,hls;player_skip=configs" &&
			strings.Contains(cfg.Headers["User-Agent"], "Chrome/91")
	})).Return(&engine.Outcome{}, nil).Once()

	var states []model.ProgressState
	o := NewOrchestrator(eng, WithLogger(quietLogger()))
	result := o.Run(context.Background(), videoPlan(dir, model.FamilyVideo), func(s model.ProgressState) {
		states = append(states, s)
	})

	require.True(t, result.Success, result.Message)
	assert.Equal(t, []string{"Song.mp4"}, result.FilesWritten)
	assert.Equal(t, "Successfully downloaded 1 file(s) to "+dir, result.Message)
	assert.Equal(t, failure.KindNone, result.FailureKind)
	assert.True(t, strings.HasPrefix(result.RunID, "run-"))
	assert.Equal(t, 1, result.Requested)
	assert.Empty(t, result.ItemErrors)

	require.NotEmpty(t, states)
	assert.Equal(t, 1.0, states[len(states)-1].OverallFraction)
	assert.Equal(t, 1.0, o.Progress().OverallFraction)

	eng.AssertExpectations(t)
}

func TestRun_PlaylistRangeAndSubtitles(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "2 - two.mp3", "3 - three.mp3")

	eng := &enginetest.Mock{Events: []engine.Event{
		{Status: engine.StatusFinished, Filename: filepath.Join(dir, "2 - two.webm")},
		{Status: engine.StatusFinished, Filename: filepath.Join(dir, "3 - three.webm")},
	}}
	eng.On("Download", mock.Anything, playlistURL, mock.MatchedBy(func(cfg engine.Config) bool {
		return cfg.ItemRange == "2-4" &&
			cfg.OutputTemplate == filepath.Join(dir, "%(playlist_index)s - %(title)s.%(ext)s") &&
			cfg.Selector == "bestaudio/best" &&
			cfg.PostProcessing != nil && cfg.PostProcessing.Codec == "mp3" && cfg.PostProcessing.TargetBitrate == 192 &&
			cfg.Subtitles &&
			assert.ObjectsAreEqual([]string{"en", "en-US", "en-GB", "auto"}, cfg.SubtitleLanguages)
	})).Return(&engine.Outcome{
		Warnings: []string{"[youtube] xyz: Private video. Sign in if you've been granted access"},
	}, nil).Once()

	plan := playlistPlan(dir, 2, 4)
	plan.Subtitles = true

	result := NewOrchestrator(eng, WithLogger(quietLogger())).Run(context.Background(), plan, nil)

	require.True(t, result.Success, result.Message)
	assert.Equal(t, []string{"2 - two.mp3", "3 - three.mp3"}, result.FilesWritten)
	assert.Equal(t, 3, result.Requested)
	assert.Equal(t, 1, result.Skipped())
	require.Len(t, result.ItemErrors, 1)
	assert.Equal(t, failure.KindPrivateContent, result.ItemErrors[0].Kind)

	eng.AssertExpectations(t)
}

func TestRun_MergedStreamsCountOnce(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "Clip.mp4")

	eng := &enginetest.Mock{Events: []engine.Event{
		{Status: engine.StatusFinished, Filename: filepath.Join(dir, "Clip.f137.mp4")},
		{Status: engine.StatusFinished, Filename: filepath.Join(dir, "Clip.f140.m4a")},
	}}
	eng.On("Download", mock.Anything, videoURL, mock.Anything).Return(&engine.Outcome{}, nil)

	result := NewOrchestrator(eng, WithLogger(quietLogger())).Run(context.Background(), videoPlan(dir, model.FamilyVideo), nil)

	require.True(t, result.Success)
	assert.Equal(t, []string{"Clip.mp4"}, result.FilesWritten)
}

func TestRun_DirectoryUnwritable(t *testing.T) {
	base := t.TempDir()
	blocker := filepath.Join(base, "file")
	touch(t, base, "file")

	eng := &enginetest.Mock{}
	result := NewOrchestrator(eng, WithLogger(quietLogger())).Run(context.Background(), videoPlan(filepath.Join(blocker, "sub"), model.FamilyVideo), nil)

	assert.False(t, result.Success)
	assert.Equal(t, failure.KindDirectoryUnwritable, result.FailureKind)
	assert.True(t, strings.HasPrefix(result.Message, DirectoryErrorPrefix), result.Message)
	assert.Empty(t, result.FilesWritten)
	eng.AssertNotCalled(t, "Download", mock.Anything, mock.Anything, mock.Anything)
}

func TestRun_DirectoryBusy(t *testing.T) {
	dir := t.TempDir()
	held := flock.New(filepath.Join(dir, LockFileName))
	locked, err := held.TryLock()
	require.NoError(t, err)
	require.True(t, locked)
	defer held.Unlock()

	eng := &enginetest.Mock{}
	result := NewOrchestrator(eng, WithLogger(quietLogger())).Run(context.Background(), videoPlan(dir, model.FamilyVideo), nil)

	assert.False(t, result.Success)
	assert.Equal(t, failure.KindDirectoryUnwritable, result.FailureKind)
	assert.Equal(t, DirectoryBusyPrefix+dir, result.Message)
	eng.AssertNotCalled(t, "Download", mock.Anything, mock.Anything, mock.Anything)
}

func TestRun_EngineFailureIsClassified(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		kind     failure.Kind
		expected string
	}{
		{"throttling", "[youtube] abc: Sign in to confirm you're not a bot", failure.KindThrottlingDetected, failure.MessageThrottling},
		{"format", "Requested format is not available", failure.KindFormatUnavailable, failure.MessageFormatUnavailable},
		{"unknown", "disk quota exceeded", failure.KindUnknown, "Download error: disk quota exceeded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := &enginetest.Mock{}
			eng.On("Download", mock.Anything, videoURL, mock.Anything).Return(nil, errors.New(tt.raw)).Once()

			result := NewOrchestrator(eng, WithLogger(quietLogger())).Run(context.Background(), videoPlan(t.TempDir(), model.FamilyAudioContainer), nil)

			assert.False(t, result.Success)
			assert.Equal(t, tt.kind, result.FailureKind)
			assert.Equal(t, tt.expected, result.Message)
			eng.AssertExpectations(t)
		})
	}
}

func TestRun_InvalidPlan(t *testing.T) {
	eng := &enginetest.Mock{}
	plan := playlistPlan(t.TempDir(), 5, 2)

	result := NewOrchestrator(eng, WithLogger(quietLogger())).Run(context.Background(), plan, nil)

	assert.False(t, result.Success)
	assert.Equal(t, failure.KindUnknown, result.FailureKind)
	assert.Contains(t, result.Message, "invalid download plan")
	eng.AssertNotCalled(t, "Download", mock.Anything, mock.Anything, mock.Anything)
}

func TestRun_Recorder(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "Song.m4a")

	eng := &enginetest.Mock{Events: []engine.Event{
		{Status: engine.StatusFinished, Filename: "Song.m4a"},
	}}
	eng.On("Download", mock.Anything, videoURL, mock.Anything).Return(&engine.Outcome{}, nil)

	rec := &memoryRecorder{err: errors.New("disk full")}
	result := NewOrchestrator(eng, WithLogger(quietLogger()), WithRecorder(rec)).
		Run(context.Background(), videoPlan(dir, model.FamilyAudioContainer), nil)
	require.True(t, result.Success)

	require.Len(t, rec.runs, 2)
	assert.Equal(t, model.RunStatusDownloading, rec.runs[0].Status)
	last := rec.runs[1]
	assert.Equal(t, result.RunID, last.ID)
	assert.Equal(t, model.RunStatusCompleted, last.Status)
	assert.Equal(t, []string{"Song.m4a"}, last.Files)
	assert.False(t, last.FinishedAt.IsZero())
}

func TestRun_LockReleased(t *testing.T) {
	dir := t.TempDir()
	eng := &enginetest.Mock{}
	eng.On("Download", mock.Anything, videoURL, mock.Anything).Return(&engine.Outcome{}, nil).Twice()

	o := NewOrchestrator(eng, WithLogger(quietLogger()))
	first := o.Run(context.Background(), videoPlan(dir, model.FamilyVideo), nil)
	second := o.Run(context.Background(), videoPlan(dir, model.FamilyVideo), nil)

	assert.True(t, first.Success)
	assert.True(t, second.Success)
	assert.Equal(t, "Successfully downloaded 0 file(s) to "+dir, second.Message)
	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestSetMaxParallel(t *testing.T) {
	tests := []struct {
		input    int
		expected int
	}{
		{0, 1},
		{-3, 1},
		{1, 1},
		{4, 4},
		{10, 10},
		{50, 10},
	}

	for _, tt := range tests {
		o := NewOrchestrator(&enginetest.Mock{}, WithMaxParallel(tt.input))
		if o.MaxParallel() != tt.expected {
			t.Errorf("WithMaxParallel(%d) = %d, expected %d", tt.input, o.MaxParallel(), tt.expected)
		}
		if o.MaxParallel() != model.ClampParallel(tt.input) {
			t.Errorf("WithMaxParallel(%d) disagrees with the settings clamp", tt.input)
		}
	}
}

func TestGenerateRunID(t *testing.T) {
	id1 := generateRunID()
	id2 := generateRunID()

	if id1 == id2 {
		t.Error("Expected unique run IDs")
	}
	if !strings.HasPrefix(id1, "run-") {
		t.Errorf("Expected run ID to start with 'run-', got %s", id1)
	}
}
