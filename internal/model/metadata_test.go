package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFallbackMetadata(t *testing.T) {
	tests := []struct {
		name          string
		kind          Kind
		defaultCount  int
		expectedCount int
	}{
		{"playlist with caller default", KindCollection, 25, 25},
		{"playlist without caller default", KindCollection, 0, DefaultPlaylistCount},
		{"video ignores caller default", KindVideo, 25, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := FallbackMetadata(tt.kind, tt.defaultCount)

			assert.Equal(t, tt.kind, meta.Kind)
			assert.Equal(t, PreviewUnavailableTitle, meta.Title)
			assert.Equal(t, tt.expectedCount, meta.Count())
			assert.True(t, meta.Placeholder)
			assert.NotNil(t, meta.Tags)
		})
	}
}

func TestContentMetadata_Duration(t *testing.T) {
	secs := 90
	video := &ContentMetadata{Kind: KindVideo, DurationSeconds: &secs}
	assert.Equal(t, 90, video.Duration())

	playlist := &ContentMetadata{Kind: KindCollection, TotalDurationSeconds: 600}
	assert.Equal(t, 600, playlist.Duration())

	var missing *ContentMetadata
	assert.Equal(t, 0, missing.Duration())
	assert.Equal(t, 0, missing.Count())
}
