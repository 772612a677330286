package engine

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrInvalidConfig indicates a Config that cannot be handed to the engine.
var ErrInvalidConfig = errors.New("invalid engine config")

// Download defaults
const (
	DefaultRetries         = 3
	DefaultFragmentRetries = 3
	DefaultExtractorArgs   = "youtube:skip=dash,hls;player_skip=configs"
)

// DefaultSubtitleLanguages are requested when subtitles are enabled
var DefaultSubtitleLanguages = []string{"en", "en-US", "en-GB", "auto"}

// DefaultHeaders present a common desktop browser identity
var DefaultHeaders = map[string]string{
	"User-Agent":                "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	"Accept-Language":           "en-us,en;q=0.5",
	"Accept-Encoding":           "gzip,deflate",
	"Accept-Charset":            "ISO-8859-1,utf-8;q=0.7,*;q=0.7",
	"Connection":                "keep-alive",
	"Upgrade-Insecure-Requests": "1",
}

// PostProcessing asks the engine to extract and transcode audio
type PostProcessing struct {
	Codec         string
	TargetBitrate int // kbps
}

// Config is the complete, typed description of one download run
type Config struct {
	Selector       string
	OutputTemplate string
	PostProcessing *PostProcessing
	// ItemRange is empty for single items, "3-7" or "3" for playlists
	ItemRange                string
	Retries                  int
	FragmentRetries          int
	SkipUnavailableFragments bool
	IgnoreErrors             bool
	Subtitles                bool
	SubtitleLanguages        []string
	Headers                  map[string]string
	Sleep                    SleepWindow
	ExtractorArgs            string
}

// Validate checks the config before it reaches the engine
func (c Config) Validate() error {
	if strings.TrimSpace(c.Selector) == "" {
		return fmt.Errorf("%w: empty format selector", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.OutputTemplate) == "" {
		return fmt.Errorf("%w: empty output template", ErrInvalidConfig)
	}
	if c.Retries < 0 || c.FragmentRetries < 0 {
		return fmt.Errorf("%w: negative retries", ErrInvalidConfig)
	}
	if c.Sleep.Base < 0 || c.Sleep.Subtitles < 0 {
		return fmt.Errorf("%w: negative sleep interval", ErrInvalidConfig)
	}
	if c.Sleep.Max > 0 && c.Sleep.Max < c.Sleep.Base {
		return fmt.Errorf("%w: max sleep %s below base %s", ErrInvalidConfig, c.Sleep.Max, c.Sleep.Base)
	}
	if c.PostProcessing != nil {
		if c.PostProcessing.Codec == "" {
			return fmt.Errorf("%w: post-processing without codec", ErrInvalidConfig)
		}
		if c.PostProcessing.TargetBitrate <= 0 {
			return fmt.Errorf("%w: non-positive bitrate %d", ErrInvalidConfig, c.PostProcessing.TargetBitrate)
		}
	}
	if c.Subtitles && len(c.SubtitleLanguages) == 0 {
		return fmt.Errorf("%w: subtitles requested without languages", ErrInvalidConfig)
	}
	return nil
}

// HeaderLines renders headers as sorted "Key:Value" lines
func HeaderLines(headers map[string]string) []string {
	lines := make([]string, 0, len(headers))
	for k, v := range headers {
		lines = append(lines, k+":"+v)
	}
	sort.Strings(lines)
	return lines
}

// CopyHeaders returns a copy of DefaultHeaders
func CopyHeaders() map[string]string {
	out := make(map[string]string, len(DefaultHeaders))
	for k, v := range DefaultHeaders {
		out[k] = v
	}
	return out
}
