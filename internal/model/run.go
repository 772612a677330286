package model

import (
	"strings"
	"time"
)

// Run is the persisted record of one orchestration run
type Run struct {
	ID          string       `json:"id"`
	URL         string       `json:"url"`
	Kind        Kind         `json:"kind"`
	Title       string       `json:"title,omitempty"`
	Status      RunStatus    `json:"status"`
	Family      FormatFamily `json:"family"`
	Quality     Quality      `json:"quality"`
	StartIndex  int          `json:"start_index"`
	EndIndex    int          `json:"end_index"`
	OutputDir   string       `json:"output_dir"`
	Files       []string     `json:"files,omitempty"`
	Message     string       `json:"message,omitempty"`
	FailureKind string       `json:"failure_kind,omitempty"`
	StartedAt   time.Time    `json:"started_at"`
	FinishedAt  time.Time    `json:"finished_at"`
}

// NewRun creates a pending run record for plan
func NewRun(id string, plan DownloadPlan, startedAt time.Time) *Run {
	return &Run{
		ID:         id,
		URL:        plan.Reference.URL,
		Kind:       plan.Reference.Kind,
		Title:      plan.Title,
		Status:     RunStatusPending,
		Family:     plan.Family,
		Quality:    plan.Quality,
		StartIndex: plan.StartIndex,
		EndIndex:   plan.EndIndex,
		OutputDir:  plan.OutputDir,
		StartedAt:  startedAt,
	}
}

// Finish copies the terminal result into the run
func (r *Run) Finish(result *DownloadResult, finishedAt time.Time) {
	r.FinishedAt = finishedAt
	r.Message = result.Message
	r.Files = append([]string(nil), result.FilesWritten...)
	if result.Success {
		r.Status = RunStatusCompleted
		return
	}
	r.Status = RunStatusError
	r.FailureKind = result.FailureKind.String()
}

// Elapsed returns how long the run took, or zero while it is unfinished
func (r *Run) Elapsed() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// GetDisplayTitle returns title, first file name, or URL in order of preference
func (r *Run) GetDisplayTitle() string {
	if r.Title != "" && !strings.HasPrefix(r.Title, "http") {
		return r.Title
	}

	if len(r.Files) > 0 {
		name := r.Files[0]
		if idx := strings.LastIndex(name, "."); idx > 0 {
			name = name[:idx]
		}
		return name
	}

	return r.URL
}
