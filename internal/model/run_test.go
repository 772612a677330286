package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ytget/ytfetch/internal/failure"
)

func TestRun_Finish(t *testing.T) {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	plan := DownloadPlan{
		Reference:  ContentReference{URL: "https://www.youtube.com/playlist?list=PL1", Kind: KindCollection},
		StartIndex: 2,
		EndIndex:   4,
		Family:     FamilyAudioLossy,
		Quality:    QualityMedium,
		OutputDir:  "/tmp/out",
	}

	run := NewRun("run-1", plan, start)
	assert.Equal(t, RunStatusPending, run.Status)
	assert.Equal(t, time.Duration(0), run.Elapsed())

	run.Finish(&DownloadResult{Success: true, Message: "ok", FilesWritten: []string{"2 - a.mp3"}}, start.Add(time.Minute))
	assert.Equal(t, RunStatusCompleted, run.Status)
	assert.Equal(t, time.Minute, run.Elapsed())
	assert.Equal(t, []string{"2 - a.mp3"}, run.Files)
	assert.Empty(t, run.FailureKind)

	failed := NewRun("run-2", plan, start)
	failed.Finish(&DownloadResult{Success: false, Message: "blocked", FailureKind: failure.KindThrottlingDetected}, start)
	assert.Equal(t, RunStatusError, failed.Status)
	assert.Equal(t, "throttling_detected", failed.FailureKind)
}

func TestRun_GetDisplayTitle(t *testing.T) {
	tests := []struct {
		title    string
		files    []string
		url      string
		expected string
	}{
		{"Video Title", nil, "https://youtube.com/watch?v=123", "Video Title"},
		{"", []string{"1 - First.mp4"}, "https://youtube.com/watch?v=123", "1 - First"},
		{"", nil, "https://youtube.com/watch?v=123", "https://youtube.com/watch?v=123"},
		{"https://youtube.com/watch?v=456", nil, "https://youtube.com/watch?v=456", "https://youtube.com/watch?v=456"},
	}

	for _, test := range tests {
		run := &Run{Title: test.title, Files: test.files, URL: test.url}
		result := run.GetDisplayTitle()
		if result != test.expected {
			t.Errorf("GetDisplayTitle() with title='%s', url='%s' = '%s', expected '%s'",
				test.title, test.url, result, test.expected)
		}
	}
}

func TestDownloadResult_Skipped(t *testing.T) {
	r := &DownloadResult{Success: true, Requested: 5, FilesWritten: []string{"a", "b", "c"}}
	assert.Equal(t, 2, r.Skipped())

	r = &DownloadResult{Success: true, Requested: 1, FilesWritten: []string{"a.f137.mp4", "a.f140.m4a"}}
	assert.Equal(t, 0, r.Skipped())

	r = &DownloadResult{Success: false, Requested: 5}
	assert.Equal(t, 0, r.Skipped())
}
