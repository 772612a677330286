package model

import (
	"errors"
	"fmt"
	"strings"
)

// FormatFamily is the kind of output the user asked for
type FormatFamily string

const (
	FamilyVideo          FormatFamily = "video"
	FamilyAudioLossy     FormatFamily = "mp3"
	FamilyAudioContainer FormatFamily = "m4a"
)

// Quality is one of three coarse quality tiers
type Quality string

const (
	QualityBest   Quality = "best"
	QualityMedium Quality = "medium"
	QualityLow    Quality = "low"
)

var (
	// ErrUnknownFormat indicates a format family name that is not recognized.
	ErrUnknownFormat = errors.New("unknown format")
	// ErrUnknownQuality indicates a quality tier name that is not recognized.
	ErrUnknownQuality = errors.New("unknown quality")
	// ErrInvalidPlan indicates a plan that violates its range or directory invariants.
	ErrInvalidPlan = errors.New("invalid download plan")
)

var familyAliases = map[string]FormatFamily{
	"video":     FamilyVideo,
	"mp4":       FamilyVideo,
	"mp3":       FamilyAudioLossy,
	"audio":     FamilyAudioLossy,
	"audio-mp3": FamilyAudioLossy,
	"m4a":       FamilyAudioContainer,
	"audio-m4a": FamilyAudioContainer,
}

var qualityAliases = map[string]Quality{
	"best":   QualityBest,
	"high":   QualityBest,
	"medium": QualityMedium,
	"low":    QualityLow,
}

// ParseFormatFamily maps a user supplied name to a FormatFamily
func ParseFormatFamily(name string) (FormatFamily, error) {
	if f, ok := familyAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// ParseQuality maps a user supplied name to a Quality
func ParseQuality(name string) (Quality, error) {
	if q, ok := qualityAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return q, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownQuality, name)
}

// FormatFamilyNames returns every accepted format family spelling
func FormatFamilyNames() []string {
	return []string{"video", "mp4", "mp3", "audio", "audio-mp3", "m4a", "audio-m4a"}
}

// QualityNames returns every accepted quality spelling
func QualityNames() []string {
	return []string{"best", "high", "medium", "low"}
}

// Label returns a human readable name of the family
func (f FormatFamily) Label() string {
	switch f {
	case FamilyVideo:
		return "Video (MP4)"
	case FamilyAudioLossy:
		return "Audio (MP3)"
	case FamilyAudioContainer:
		return "Audio (M4A)"
	default:
		return string(f)
	}
}

// DownloadPlan is everything a single orchestration run needs
type DownloadPlan struct {
	Reference  ContentReference
	StartIndex int
	EndIndex   int
	// ItemCount is the playlist size from the preview; 0 leaves the upper bound unchecked
	ItemCount int
	Family    FormatFamily
	Quality   Quality
	Subtitles bool
	OutputDir string
	// Title is the preview title, kept for the run record only
	Title string
}

// NewVideoPlan returns a plan for a single item
func NewVideoPlan(ref ContentReference, family FormatFamily, quality Quality, outputDir string) DownloadPlan {
	return DownloadPlan{
		Reference:  ref,
		StartIndex: 1,
		EndIndex:   1,
		ItemCount:  1,
		Family:     family,
		Quality:    quality,
		OutputDir:  outputDir,
	}
}

// Validate checks the range invariants of the plan
func (p DownloadPlan) Validate() error {
	if p.Reference.URL == "" {
		return fmt.Errorf("%w: empty reference", ErrInvalidPlan)
	}
	if strings.TrimSpace(p.OutputDir) == "" {
		return fmt.Errorf("%w: empty output directory", ErrInvalidPlan)
	}
	switch p.Family {
	case FamilyVideo, FamilyAudioLossy, FamilyAudioContainer:
	default:
		return fmt.Errorf("%w: %w: %q", ErrInvalidPlan, ErrUnknownFormat, p.Family)
	}
	switch p.Quality {
	case QualityBest, QualityMedium, QualityLow:
	default:
		return fmt.Errorf("%w: %w: %q", ErrInvalidPlan, ErrUnknownQuality, p.Quality)
	}

	switch p.Reference.Kind {
	case KindVideo:
		if p.StartIndex != 1 || p.EndIndex != 1 {
			return fmt.Errorf("%w: video range must be 1-1, got %d-%d", ErrInvalidPlan, p.StartIndex, p.EndIndex)
		}
	case KindCollection:
		if p.StartIndex < 1 || p.StartIndex > p.EndIndex {
			return fmt.Errorf("%w: range %d-%d", ErrInvalidPlan, p.StartIndex, p.EndIndex)
		}
		if p.ItemCount > 0 && p.EndIndex > p.ItemCount {
			return fmt.Errorf("%w: end index %d exceeds playlist size %d", ErrInvalidPlan, p.EndIndex, p.ItemCount)
		}
	default:
		return fmt.Errorf("%w: unknown reference kind %q", ErrInvalidPlan, p.Reference.Kind)
	}
	return nil
}

// Parallelism bounds for the max_parallel setting
const (
	MinParallel = 1
	MaxParallel = 10
)

// ClampParallel bounds n to [MinParallel, MaxParallel]
func ClampParallel(n int) int {
	return min(max(n, MinParallel), MaxParallel)
}

// TotalCount returns the number of items the run is expected to produce
func (p DownloadPlan) TotalCount() int {
	if p.Reference.Kind != KindCollection {
		return 1
	}
	return p.EndIndex - p.StartIndex + 1
}
