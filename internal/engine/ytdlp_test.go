package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/lrstanley/go-ytdlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	started := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := started.Add(time.Second)

	tests := []struct {
		name       string
		status     string
		downloaded float64
		total      float64
		started    time.Time
		ok         bool
		expected   Event
	}{
		{
			name:       "downloading with rate",
			status:     StatusDownloading,
			downloaded: 1500000,
			total:      3000000,
			started:    started,
			ok:         true,
			expected:   Event{Status: StatusDownloading, Filename: "a.mp4", Percent: "50.0%", Speed: "1.5 MB/s", ETA: "1s"},
		},
		{
			name:       "unknown total",
			status:     StatusDownloading,
			downloaded: 1500000,
			started:    started,
			ok:         true,
			expected:   Event{Status: StatusDownloading, Filename: "a.mp4", Speed: "1.5 MB/s"},
		},
		{
			name:       "not started",
			status:     StatusDownloading,
			downloaded: 10,
			total:      100,
			ok:         true,
			expected:   Event{Status: StatusDownloading, Filename: "a.mp4", Percent: "10.0%"},
		},
		{
			name:     "finished",
			status:   StatusFinished,
			ok:       true,
			expected: Event{Status: StatusFinished, Filename: "a.mp4", Percent: "100.0%"},
		},
		{
			name:   "post processing is dropped",
			status: "post_processing",
			ok:     false,
		},
		{
			name:   "starting is dropped",
			status: "starting",
			ok:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := newEvent(tt.status, "a.mp4", tt.downloaded, tt.total, tt.started, now)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, got)
			}
		})
	}
}

func TestErrorLines(t *testing.T) {
	stderr := "WARNING: [youtube] slow\n" +
		"ERROR: [youtube] abc: Video unavailable\n" +
		"  ERROR: [youtube] def: Private video\n" +
		"ERROR:\n" +
		"random line\n"

	assert.Equal(t, []string{
		"[youtube] abc: Video unavailable",
		"[youtube] def: Private video",
	}, ErrorLines(stderr))
	assert.Empty(t, ErrorLines(""))
}

func TestRunError(t *testing.T) {
	inner := errors.New("exit status 1")

	err := runError(nil, inner)
	assert.Equal(t, "exit status 1", err.Error())
	assert.ErrorIs(t, err, inner)
}

func TestNewYTDLPOptions(t *testing.T) {
	y := NewYTDLP(
		WithExecutable("/opt/yt-dlp"),
		WithAutoInstall(true),
		WithProgressInterval(0),
		WithLogger(nil),
	)

	assert.Equal(t, "/opt/yt-dlp", y.executable)
	assert.True(t, y.autoInstall)
	assert.Equal(t, DefaultProgressInterval, y.progressInterval)
	assert.NotNil(t, y.log)

	y = NewYTDLP(WithProgressInterval(time.Second))
	assert.Equal(t, time.Second, y.progressInterval)
}

func testConfig() Config {
	return Config{
		Selector:                 "bestvideo[ext=mp4]+bestaudio[ext=m4a]/best[ext=mp4]/best",
		OutputTemplate:           "/tmp/out/%(title)s.%(ext)s",
		Retries:                  DefaultRetries,
		FragmentRetries:          DefaultFragmentRetries,
		SkipUnavailableFragments: true,
		IgnoreErrors:             true,
		Headers:                  CopyHeaders(),
		Sleep:                    SleepWindow{Base: 2 * time.Second, Max: 10 * time.Second, Subtitles: 2 * time.Second},
		ExtractorArgs:            DefaultExtractorArgs,
	}
}

func TestBuild_CommonFlags(t *testing.T) {
	dl, _ := NewYTDLP().build(testConfig())
	flags := dl.GetFlagConfig()

	require.NotNil(t, flags.VideoFormat.Format)
	assert.Equal(t, "bestvideo[ext=mp4]+bestaudio[ext=m4a]/best[ext=mp4]/best", *flags.VideoFormat.Format)
	require.NotNil(t, flags.Filesystem.Output)
	assert.Equal(t, "/tmp/out/%(title)s.%(ext)s", *flags.Filesystem.Output)
	require.NotNil(t, flags.Download.Retries)
	assert.Equal(t, "3", *flags.Download.Retries)
	require.NotNil(t, flags.Download.FragmentRetries)
	assert.Equal(t, "3", *flags.Download.FragmentRetries)
	require.NotNil(t, flags.Download.SkipUnavailableFragments)
	assert.True(t, *flags.Download.SkipUnavailableFragments)
	require.NotNil(t, flags.General.IgnoreErrors)
	assert.True(t, *flags.General.IgnoreErrors)
	require.NotNil(t, flags.Extractor.ExtractorArgs)
	assert.Equal(t, DefaultExtractorArgs, *flags.Extractor.ExtractorArgs)

	require.NotNil(t, flags.Workarounds.SleepInterval)
	assert.Equal(t, 2.0, *flags.Workarounds.SleepInterval)
	require.NotNil(t, flags.Workarounds.MaxSleepInterval)
	assert.Equal(t, 10.0, *flags.Workarounds.MaxSleepInterval)
	require.NotNil(t, flags.Workarounds.SleepSubtitles)
	assert.Equal(t, 2, *flags.Workarounds.SleepSubtitles)

	assert.Nil(t, flags.VideoSelection.PlaylistItems)
	assert.Nil(t, flags.PostProcessing.ExtractAudio)
	assert.Nil(t, flags.Subtitle.WriteSubs)
}

func TestBuild_OptionalFlags(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		check  func(t *testing.T, dl *ytdlp.Command)
	}{
		{
			name:   "playlist range",
			modify: func(c *Config) { c.ItemRange = "1-5" },
			check: func(t *testing.T, dl *ytdlp.Command) {
				flags := dl.GetFlagConfig()
				require.NotNil(t, flags.VideoSelection.PlaylistItems)
				assert.Equal(t, "1-5", *flags.VideoSelection.PlaylistItems)
			},
		},
		{
			name: "audio extraction",
			modify: func(c *Config) {
				c.PostProcessing = &PostProcessing{Codec: "mp3", TargetBitrate: 192}
			},
			check: func(t *testing.T, dl *ytdlp.Command) {
				flags := dl.GetFlagConfig()
				require.NotNil(t, flags.PostProcessing.ExtractAudio)
				assert.True(t, *flags.PostProcessing.ExtractAudio)
				require.NotNil(t, flags.PostProcessing.AudioFormat)
				assert.Equal(t, "mp3", *flags.PostProcessing.AudioFormat)
				require.NotNil(t, flags.PostProcessing.AudioQuality)
				assert.Equal(t, "192K", *flags.PostProcessing.AudioQuality)
			},
		},
		{
			name: "subtitles",
			modify: func(c *Config) {
				c.Subtitles = true
				c.SubtitleLanguages = DefaultSubtitleLanguages
			},
			check: func(t *testing.T, dl *ytdlp.Command) {
				flags := dl.GetFlagConfig()
				require.NotNil(t, flags.Subtitle.WriteSubs)
				assert.True(t, *flags.Subtitle.WriteSubs)
				require.NotNil(t, flags.Subtitle.WriteAutoSubs)
				assert.True(t, *flags.Subtitle.WriteAutoSubs)
				require.NotNil(t, flags.Subtitle.SubLangs)
				assert.Equal(t, "en,en-US,en-GB,auto", *flags.Subtitle.SubLangs)
			},
		},
		{
			name: "no ignore errors",
			modify: func(c *Config) {
				c.IgnoreErrors = false
				c.SkipUnavailableFragments = false
			},
			check: func(t *testing.T, dl *ytdlp.Command) {
				flags := dl.GetFlagConfig()
				assert.Nil(t, flags.General.IgnoreErrors)
				assert.Nil(t, flags.Download.SkipUnavailableFragments)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.modify(&cfg)
			dl, _ := NewYTDLP().build(cfg)
			tt.check(t, dl)
		})
	}
}

func TestBuild_PassesEveryHeader(t *testing.T) {
	_, args := NewYTDLP().build(testConfig())

	require.Len(t, args, 2*len(DefaultHeaders))
	got := map[string]bool{}
	for i := 0; i < len(args); i += 2 {
		assert.Equal(t, "--add-headers", args[i])
		got[args[i+1]] = true
	}
	for k, v := range DefaultHeaders {
		assert.True(t, got[k+":"+v], "header %s not passed", k)
	}
}

func TestMetadataCommand(t *testing.T) {
	opts := MetadataOptions{
		Headers:       CopyHeaders(),
		Sleep:         SleepWindow{Base: time.Second, Max: 5 * time.Second, Subtitles: time.Second},
		ExtractorArgs: DefaultExtractorArgs,
	}

	dl, args := NewYTDLP().metadataCommand(opts)
	flags := dl.GetFlagConfig()

	require.NotNil(t, flags.VerbositySimulation.DumpSingleJSON)
	assert.True(t, *flags.VerbositySimulation.DumpSingleJSON)
	require.NotNil(t, flags.General.FlatPlaylist)
	assert.True(t, *flags.General.FlatPlaylist)
	require.NotNil(t, flags.Workarounds.MaxSleepInterval)
	assert.Equal(t, 5.0, *flags.Workarounds.MaxSleepInterval)
	assert.Len(t, args, 2*len(DefaultHeaders))

	opts.ExpandEntries = true
	dl, _ = NewYTDLP().metadataCommand(opts)
	assert.Nil(t, dl.GetFlagConfig().General.FlatPlaylist)
}

func TestApplySleep_RoundsSubtitleWindowUp(t *testing.T) {
	dl := ytdlp.New()
	applySleep(dl, SleepWindow{Subtitles: 500 * time.Millisecond})

	flags := dl.GetFlagConfig()
	require.NotNil(t, flags.Workarounds.SleepSubtitles)
	assert.Equal(t, 1, *flags.Workarounds.SleepSubtitles)
	assert.Nil(t, flags.Workarounds.SleepInterval)
	assert.Nil(t, flags.Workarounds.MaxSleepInterval)
}

func TestHeaderArgs_Empty(t *testing.T) {
	assert.Empty(t, headerArgs(nil))
}
