// Package metadata resolves a content reference into its descriptive preview.
package metadata

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/ytget/ytfetch/internal/engine"
	"github.com/ytget/ytfetch/internal/failure"
	"github.com/ytget/ytfetch/internal/logger"
	"github.com/ytget/ytfetch/internal/model"
)

// Pacing used for metadata-only calls
const (
	SleepBase      = 1 * time.Second
	SleepMax       = 5 * time.Second
	SleepSubtitles = 1 * time.Second
)

// ErrThrottled indicates the platform refused the request as automated traffic.
var ErrThrottled = errors.New("metadata resolution throttled")

// ResolutionError is a non-throttling failure carrying the engine's text
type ResolutionError struct {
	URL     string
	Message string
	Err     error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("failed to resolve %s: %s", e.URL, e.Message)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// cacheEntry is the single remembered resolution
type cacheEntry struct {
	key   string
	value *model.ContentMetadata
}

// Resolver produces ContentMetadata through the engine and remembers the
// most recent result
type Resolver struct {
	engine engine.Engine
	log    logrus.FieldLogger

	group singleflight.Group

	mu    sync.Mutex
	cache *cacheEntry
}

// NewResolver creates a resolver; log may be nil
func NewResolver(eng engine.Engine, log logrus.FieldLogger) *Resolver {
	if log == nil {
		log = logger.Nop()
	}
	return &Resolver{engine: eng, log: log}
}

// Resolve returns metadata for ref, from the cache when the same reference
// was resolved last. The returned value must be treated as read-only.
func (r *Resolver) Resolve(ctx context.Context, ref model.ContentReference) (*model.ContentMetadata, error) {
	if m, ok := r.Cached(ref.URL); ok {
		return m, nil
	}

	for {
		v, err, shared := r.group.Do(ref.URL, func() (interface{}, error) {
			if m, ok := r.Cached(ref.URL); ok {
				return m, nil
			}
			m, err := r.resolve(ctx, ref)
			if err != nil && ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return m, err
		})
		if shared {
			r.log.WithField("url", ref.URL).Debug("joined in-flight resolution")
		}
		// the caller that ran the shared call went away; retry with our context
		if shared && isCanceled(err) && ctx.Err() == nil {
			continue
		}
		if err != nil {
			return nil, err
		}
		return v.(*model.ContentMetadata), nil
	}
}

func isCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func (r *Resolver) resolve(ctx context.Context, ref model.ContentReference) (*model.ContentMetadata, error) {
	opts := engine.MetadataOptions{
		Headers: engine.CopyHeaders(),
		Sleep: engine.SleepWindow{
			Base:      SleepBase,
			Max:       SleepMax,
			Subtitles: SleepSubtitles,
		},
		ExpandEntries: ref.IsCollection(),
	}

	log := r.log.WithFields(logrus.Fields{"url": ref.URL, "kind": ref.Kind})
	log.Debug("resolving metadata")

	info, err := r.engine.Metadata(ctx, ref.URL, opts)
	if err != nil {
		if failure.IsThrottling(err.Error()) {
			return nil, fmt.Errorf("%w: %s", ErrThrottled, err.Error())
		}
		return nil, &ResolutionError{URL: ref.URL, Message: err.Error(), Err: err}
	}
	if info == nil {
		return nil, &ResolutionError{URL: ref.URL, Message: "engine returned no metadata"}
	}

	m := fromInfo(ref.Kind, info)

	r.mu.Lock()
	r.cache = &cacheEntry{key: ref.URL, value: m}
	r.mu.Unlock()

	log.WithField("title", m.Title).Info("metadata resolved")
	return m, nil
}

// Cached returns the remembered metadata when key matches the last resolution
func (r *Resolver) Cached(key string) (*model.ContentMetadata, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cache == nil || r.cache.key != key {
		return nil, false
	}
	return r.cache.value, true
}

// Preview resolves ref and substitutes the placeholder when the platform
// throttles the request. Other failures are returned unchanged.
func (r *Resolver) Preview(ctx context.Context, ref model.ContentReference, defaultCount int) (*model.ContentMetadata, error) {
	m, err := r.Resolve(ctx, ref)
	if err == nil {
		return m, nil
	}
	if errors.Is(err, ErrThrottled) {
		r.log.WithField("url", ref.URL).WithError(err).Warn("metadata throttled, using placeholder preview")
		return model.FallbackMetadata(ref.Kind, defaultCount), nil
	}
	return nil, err
}

// fromInfo maps the engine document onto the preview model
func fromInfo(kind model.Kind, info *engine.Info) *model.ContentMetadata {
	m := &model.ContentMetadata{
		Kind:  kind,
		Title: info.Title,
		Owner: info.Owner(),
		Tags:  []string{},
	}
	if m.Owner == "" {
		m.Owner = model.UnknownOwner
	}
	if info.ViewCount != nil {
		m.ViewCount = *info.ViewCount
	}

	// a list link can resolve to the single item it points at
	if kind == model.KindCollection && !info.IsPlaylist() {
		d := info.DurationSeconds()
		m.ItemCount = 1
		m.Items = []model.ItemMetadata{{Title: info.Title, DurationSeconds: d}}
		if d != nil {
			m.TotalDurationSeconds = *d
		}
		return m
	}

	if kind == model.KindCollection {
		m.ItemCount = len(info.Entries)
		if m.ItemCount == 0 && info.PlaylistCount != nil {
			m.ItemCount = *info.PlaylistCount
		}
		for i, entry := range info.Entries {
			if entry == nil {
				continue
			}
			d := entry.DurationSeconds()
			if d != nil {
				m.TotalDurationSeconds += *d
			}
			if i < model.MaxPreviewItems {
				m.Items = append(m.Items, model.ItemMetadata{Title: entry.Title, DurationSeconds: d})
			}
		}
		return m
	}

	m.ItemCount = model.DefaultVideoItemCount
	m.LikeCount = info.LikeCount
	m.DurationSeconds = info.DurationSeconds()
	m.ThumbnailURL = info.Thumbnail
	tags := info.Tags
	if len(tags) > model.MaxPreviewTags {
		tags = tags[:model.MaxPreviewTags]
	}
	m.Tags = append(m.Tags, tags...)
	return m
}
