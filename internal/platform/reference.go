package platform

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/ytget/ytfetch/internal/model"
)

// Validation reasons
const (
	ReasonEmpty   = "URL cannot be empty"
	ReasonInvalid = "Please enter a valid YouTube URL (video or playlist)"
)

// ErrInvalidReference indicates a string that is not a supported link.
var ErrInvalidReference = errors.New("invalid reference")

type referencePattern struct {
	kind model.Kind
	re   *regexp.Regexp
}

// referencePatterns are checked in order. Playlist shapes come first so
// that a watch link carrying a list id is treated as the playlist.
var referencePatterns = []referencePattern{
	{model.KindCollection, regexp.MustCompile(`^https?://(www\.)?youtube\.com/playlist\?list=[\w-]+`)},
	{model.KindCollection, regexp.MustCompile(`^https?://(www\.)?youtube\.com/watch\?v=[\w-]+&list=[\w-]+`)},
	{model.KindCollection, regexp.MustCompile(`^https?://youtu\.be/[\w-]+\?list=[\w-]+`)},
	{model.KindVideo, regexp.MustCompile(`^https?://(www\.)?youtube\.com/watch\?v=[\w-]+`)},
	{model.KindVideo, regexp.MustCompile(`^https?://youtu\.be/[\w-]+`)},
}

// Classification is the outcome of checking a user supplied link
type Classification struct {
	Valid  bool
	Kind   model.Kind
	Reason string
}

// ClassifyReference decides whether raw is a supported link and which kind it denotes
func ClassifyReference(raw string) Classification {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Classification{Reason: ReasonEmpty}
	}

	for _, p := range referencePatterns {
		if p.re.MatchString(trimmed) {
			return Classification{Valid: true, Kind: p.kind}
		}
	}

	return Classification{Reason: ReasonInvalid}
}

// NewReference classifies raw and returns the reference, or an error wrapping ErrInvalidReference
func NewReference(raw string) (model.ContentReference, error) {
	c := ClassifyReference(raw)
	if !c.Valid {
		return model.ContentReference{}, fmt.Errorf("%w: %s", ErrInvalidReference, c.Reason)
	}
	return model.ContentReference{URL: strings.TrimSpace(raw), Kind: c.Kind}, nil
}
