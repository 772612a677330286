package model

// Preview defaults
const (
	PreviewUnavailableTitle = "preview unavailable"
	UnknownOwner            = "Unknown"
	MaxPreviewItems         = 3
	MaxPreviewTags          = 5
	DefaultVideoItemCount   = 1
	DefaultPlaylistCount    = 10
)

// ItemMetadata is the preview of one playlist entry
type ItemMetadata struct {
	Title           string `json:"title"`
	DurationSeconds *int   `json:"duration_seconds,omitempty"`
}

// ContentMetadata is the descriptive preview of a reference. It is produced
// once per distinct reference and replaced, never merged, when the reference
// changes.
type ContentMetadata struct {
	Kind            Kind     `json:"kind"`
	Title           string   `json:"title"`
	Owner           string   `json:"owner"`
	ViewCount       int64    `json:"view_count"`
	LikeCount       *int64   `json:"like_count,omitempty"`
	DurationSeconds *int     `json:"duration_seconds,omitempty"`
	ThumbnailURL    string   `json:"thumbnail_url,omitempty"`
	Tags            []string `json:"tags"`

	// Playlist only
	Items                []ItemMetadata `json:"items,omitempty"`
	ItemCount            int            `json:"item_count"`
	TotalDurationSeconds int            `json:"total_duration_seconds"`

	// Placeholder is set on the synthesized fallback instance
	Placeholder bool `json:"placeholder"`
}

// FallbackMetadata returns the lightweight preview used when resolution fails
// non-fatally, so callers never handle an absent metadata value.
func FallbackMetadata(kind Kind, defaultCount int) *ContentMetadata {
	if defaultCount <= 0 {
		defaultCount = DefaultItemCount(kind)
	}
	if kind == KindVideo {
		defaultCount = DefaultVideoItemCount
	}
	return &ContentMetadata{
		Kind:        kind,
		Title:       PreviewUnavailableTitle,
		Owner:       UnknownOwner,
		Tags:        []string{},
		ItemCount:   defaultCount,
		Placeholder: true,
	}
}

// DefaultItemCount returns the item count assumed when nothing better is known
func DefaultItemCount(kind Kind) int {
	if kind == KindCollection {
		return DefaultPlaylistCount
	}
	return DefaultVideoItemCount
}

// Count returns the number of downloadable items the preview describes
func (m *ContentMetadata) Count() int {
	if m == nil {
		return 0
	}
	if m.Kind == KindVideo {
		return DefaultVideoItemCount
	}
	return m.ItemCount
}

// Duration returns the single-item duration for videos and the aggregate for playlists
func (m *ContentMetadata) Duration() int {
	if m == nil {
		return 0
	}
	if m.Kind == KindCollection {
		return m.TotalDurationSeconds
	}
	if m.DurationSeconds == nil {
		return 0
	}
	return *m.DurationSeconds
}
