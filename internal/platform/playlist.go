package platform

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ytget/ytdlp"
	"github.com/ytget/ytfetch/internal/model"
)

// Timeout constants
const (
	DefaultParseTimeout = 60 * time.Second
)

// URL parameters and separators
const (
	PlaylistParam  = "list="
	ParamSeparator = "&"
)

// URL templates
const (
	YouTubeVideoURLTemplate = "https://www.youtube.com/watch?v=%s"
)

// PlaylistEntry is one item of a playlist as reported by the native lister
type PlaylistEntry struct {
	Index   int
	VideoID string
	Title   string
	URL     string
}

// fetchFunc returns raw id/title pairs for a playlist id
type fetchFunc func(ctx context.Context, playlistID string) ([]PlaylistEntry, error)

// YTDLPParserService lists playlist entries without spawning the yt-dlp binary
type YTDLPParserService struct {
	timeout time.Duration
	fetch   fetchFunc
}

// NewYTDLPParserService creates a new parser service
func NewYTDLPParserService() *YTDLPParserService {
	return &YTDLPParserService{
		timeout: DefaultParseTimeout,
		fetch:   fetchWithLibrary,
	}
}

// SetTimeout sets the timeout for parsing operations
func (y *YTDLPParserService) SetTimeout(timeout time.Duration) {
	y.timeout = timeout
}

// ListEntries returns the entries of the playlist the reference points at
func (y *YTDLPParserService) ListEntries(ctx context.Context, url string) ([]PlaylistEntry, error) {
	c := ClassifyReference(url)
	if !c.Valid || c.Kind != model.KindCollection {
		return nil, fmt.Errorf("invalid playlist URL: %s", url)
	}

	playlistID := extractPlaylistID(url)
	if playlistID == "" {
		return nil, fmt.Errorf("could not extract playlist ID from URL: %s", url)
	}

	if y.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, y.timeout)
		defer cancel()
	}

	raw, err := y.fetch(ctx, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to get playlist items: %w", err)
	}

	entries := make([]PlaylistEntry, 0, len(raw))
	for _, it := range raw {
		if it.VideoID == "" {
			continue
		}
		entries = append(entries, PlaylistEntry{
			Index:   len(entries) + 1,
			VideoID: it.VideoID,
			Title:   strings.TrimSpace(it.Title),
			URL:     fmt.Sprintf(YouTubeVideoURLTemplate, it.VideoID),
		})
	}

	return entries, nil
}

// fetchWithLibrary asks the ytdlp library for every item of the playlist
func fetchWithLibrary(ctx context.Context, playlistID string) ([]PlaylistEntry, error) {
	d := ytdlp.New()
	items, err := d.GetPlaylistItemsAll(ctx, playlistID, 0)
	if err != nil {
		return nil, err
	}

	entries := make([]PlaylistEntry, 0, len(items))
	for _, it := range items {
		entries = append(entries, PlaylistEntry{VideoID: it.VideoID, Title: it.Title})
	}
	return entries, nil
}

// extractPlaylistID extracts the playlist ID from various URL formats
func extractPlaylistID(url string) string {
	_, after, found := strings.Cut(url, PlaylistParam)
	if !found {
		return ""
	}
	id, _, _ := strings.Cut(after, ParamSeparator)
	return id
}
