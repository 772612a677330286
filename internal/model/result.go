package model

import (
	"github.com/ytget/ytfetch/internal/failure"
)

// ItemError describes one playlist entry the engine skipped
type ItemError struct {
	Message string       `json:"message"`
	Kind    failure.Kind `json:"kind"`
}

// DownloadResult is the terminal value of one orchestration run
type DownloadResult struct {
	RunID        string       `json:"run_id"`
	Success      bool         `json:"success"`
	Message      string       `json:"message"`
	FailureKind  failure.Kind `json:"failure_kind,omitempty"`
	OutputDir    string       `json:"output_dir"`
	Requested    int          `json:"requested"`
	FilesWritten []string     `json:"files_written"`
	ItemErrors   []ItemError  `json:"item_errors,omitempty"`
}

// Skipped returns how many requested items produced no file
func (r *DownloadResult) Skipped() int {
	if r == nil || !r.Success {
		return 0
	}
	if n := r.Requested - len(r.FilesWritten); n > 0 {
		return n
	}
	return 0
}
