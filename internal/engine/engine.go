package engine

import (
	"context"
	"time"
)

// Event statuses
const (
	StatusDownloading = "downloading"
	StatusFinished    = "finished"
)

// Event is one progress notification from the engine
type Event struct {
	Status   string
	Filename string
	Percent  string // "42.5%"
	Speed    string
	ETA      string
}

// Outcome is what a completed Download call reports
type Outcome struct {
	// Files holds the final paths the engine reported, when it reports them
	Files []string
	// Warnings holds per-item ERROR lines the engine tolerated
	Warnings []string
}

// SleepWindow is the randomized pause the engine takes between requests
type SleepWindow struct {
	Base      time.Duration
	Max       time.Duration
	Subtitles time.Duration
}

// MetadataOptions configures a metadata-only engine call
type MetadataOptions struct {
	Headers       map[string]string
	Sleep         SleepWindow
	ExtractorArgs string
	// ExpandEntries asks for every playlist entry instead of the first page
	ExpandEntries bool
}

// Engine performs metadata extraction and downloads
type Engine interface {
	Metadata(ctx context.Context, url string, opts MetadataOptions) (*Info, error)
	Download(ctx context.Context, url string, cfg Config, onEvent func(Event)) (*Outcome, error)
}
