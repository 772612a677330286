// Package format turns a requested format family and quality tier into the
// engine's selector expression, naming template and post-processing step.
package format

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ytget/ytfetch/internal/engine"
	"github.com/ytget/ytfetch/internal/model"
)

// Naming templates
const (
	CollectionTemplate = "%(playlist_index)s - %(title)s.%(ext)s"
	ItemTemplate       = "%(title)s.%(ext)s"
)

// Selectors that do not depend on quality
const (
	AudioLossySelector     = "bestaudio/best"
	AudioContainerSelector = "bestaudio[ext=m4a]/bestaudio/best"
	videoSelectorTemplate  = "bestvideo[ext=mp4][height<=%d]+bestaudio[ext=m4a]/best[ext=mp4][height<=%d]/best"
)

// LossyCodec is the audio codec used for the lossy family
const LossyCodec = "mp3"

// ErrInvalidRange indicates an item range outside the playlist.
var ErrInvalidRange = errors.New("invalid item range")

var videoHeights = map[model.Quality]int{
	model.QualityBest:   1080,
	model.QualityMedium: 720,
	model.QualityLow:    480,
}

var lossyBitrates = map[model.Quality]int{
	model.QualityBest:   320,
	model.QualityMedium: 192,
	model.QualityLow:    128,
}

// Selection is the engine-facing result of negotiation
type Selection struct {
	Selector       string
	NamingTemplate string
	PostProcessing *engine.PostProcessing
}

// Negotiate maps a family and quality to a selector. The mapping is total
// over the known families and tiers.
func Negotiate(family model.FormatFamily, quality model.Quality, kind model.Kind) (Selection, error) {
	height, ok := videoHeights[quality]
	if !ok {
		return Selection{}, fmt.Errorf("%w: %q", model.ErrUnknownQuality, quality)
	}

	sel := Selection{NamingTemplate: NamingTemplate(kind)}

	switch family {
	case model.FamilyVideo:
		sel.Selector = fmt.Sprintf(videoSelectorTemplate, height, height)
	case model.FamilyAudioLossy:
		sel.Selector = AudioLossySelector
		sel.PostProcessing = &engine.PostProcessing{
			Codec:         LossyCodec,
			TargetBitrate: lossyBitrates[quality],
		}
	case model.FamilyAudioContainer:
		sel.Selector = AudioContainerSelector
	default:
		return Selection{}, fmt.Errorf("%w: %q", model.ErrUnknownFormat, family)
	}

	return sel, nil
}

// NamingTemplate returns the output name template for the reference kind
func NamingTemplate(kind model.Kind) string {
	if kind == model.KindCollection {
		return CollectionTemplate
	}
	return ItemTemplate
}

// Chain splits a selector into its ordered fallback alternatives
func Chain(selector string) []string {
	var out []string
	for _, part := range strings.Split(selector, "/") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ItemRange is an inclusive 1-based range of playlist entries. The zero
// value means "no range" and is used for single items.
type ItemRange struct {
	Start int
	End   int
}

// NewItemRange validates a range for the given reference kind. itemCount of
// zero leaves the upper bound unchecked.
func NewItemRange(kind model.Kind, start, end, itemCount int) (ItemRange, error) {
	if kind != model.KindCollection {
		return ItemRange{}, nil
	}
	if start < 1 || end < start {
		return ItemRange{}, fmt.Errorf("%w: %d-%d", ErrInvalidRange, start, end)
	}
	if itemCount > 0 && end > itemCount {
		return ItemRange{}, fmt.Errorf("%w: end %d exceeds %d items", ErrInvalidRange, end, itemCount)
	}
	return ItemRange{Start: start, End: end}, nil
}

// IsZero reports whether the range is unset
func (r ItemRange) IsZero() bool {
	return r.Start == 0 && r.End == 0
}

// Count returns the number of entries in the range
func (r ItemRange) Count() int {
	if r.IsZero() {
		return 0
	}
	return r.End - r.Start + 1
}

// String renders the range in the engine's playlist-items syntax
func (r ItemRange) String() string {
	if r.IsZero() {
		return ""
	}
	if r.Start == r.End {
		return strconv.Itoa(r.Start)
	}
	return strconv.Itoa(r.Start) + "-" + strconv.Itoa(r.End)
}
