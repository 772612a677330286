package engine

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Info is the subset of the engine's JSON description used by the resolver
type Info struct {
	ID            string   `json:"id"`
	Type          string   `json:"_type"`
	Title         string   `json:"title"`
	Uploader      string   `json:"uploader"`
	Channel       string   `json:"channel"`
	ViewCount     *int64   `json:"view_count"`
	LikeCount     *int64   `json:"like_count"`
	Duration      *float64 `json:"duration"`
	Thumbnail     string   `json:"thumbnail"`
	Tags          []string `json:"tags"`
	PlaylistCount *int     `json:"playlist_count"`
	Entries       []*Info  `json:"entries"`
}

// DecodeInfo parses the single JSON document printed by the engine
func DecodeInfo(raw string) (*Info, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("empty metadata output")
	}

	// warning lines may precede the document
	if !strings.HasPrefix(raw, "{") {
		idx := strings.Index(raw, "\n{")
		if idx < 0 {
			return nil, fmt.Errorf("failed to decode metadata: no JSON document in output")
		}
		raw = raw[idx+1:]
	}

	var info Info
	if err := json.Unmarshal([]byte(raw), &info); err != nil {
		return nil, fmt.Errorf("failed to decode metadata: %w", err)
	}
	return &info, nil
}

// IsPlaylist reports whether the document describes a playlist
func (i *Info) IsPlaylist() bool {
	return i.Type == "playlist" || len(i.Entries) > 0
}

// Owner returns the uploader, falling back to the channel name
func (i *Info) Owner() string {
	if i.Uploader != "" {
		return i.Uploader
	}
	return i.Channel
}

// DurationSeconds returns the duration rounded down, or nil when unknown
func (i *Info) DurationSeconds() *int {
	if i.Duration == nil {
		return nil
	}
	d := int(*i.Duration)
	return &d
}
