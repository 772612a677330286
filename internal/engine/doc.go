// Package engine is the boundary to the external media engine (yt-dlp).
// Callers describe a run with a typed Config and receive progress as Events;
// the YTDLP type drives the binary through github.com/lrstanley/go-ytdlp.
package engine
