package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// File permissions
const (
	DefaultDirPermissions = 0755
)

// MaxNameDifference is how many bytes a truncated or decorated name may differ by
const MaxNameDifference = 10

// Extensions the engine leaves behind while a file is still being written
var (
	PartialExtensions = []string{".part", ".ytdl", ".temp"}
)

// formatIDSuffix matches the ".f137" marker yt-dlp puts on pre-merge streams
var formatIDSuffix = regexp.MustCompile(`\.f[0-9]+(-[0-9a-zA-Z]+)?$`)

// ErrNotWritable indicates the output directory exists but cannot be written to.
var ErrNotWritable = errors.New("directory is not writable")

// ExpandHome replaces a leading ~ with the user's home directory
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, `~\`) {
		return path, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, path[1:]), nil
}

// CreateDirectoryIfNotExists creates directory if it doesn't exist
func CreateDirectoryIfNotExists(dirPath string) error {
	if _, err := os.Stat(dirPath); os.IsNotExist(err) {
		return os.MkdirAll(dirPath, DefaultDirPermissions)
	}
	return nil
}

// EnsureDirectory expands, creates and write-tests dir, returning its absolute path
func EnsureDirectory(dir string) (string, error) {
	expanded, err := ExpandHome(strings.TrimSpace(dir))
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	if err := CreateDirectoryIfNotExists(abs); err != nil {
		return "", err
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", abs)
	}

	scratch, err := os.CreateTemp(abs, ".ytfetch-scratch-*")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotWritable, err)
	}
	scratch.Close()
	os.Remove(scratch.Name())

	return abs, nil
}

// GetHomeDownloadsDir returns the standard Downloads directory for the user
func GetHomeDownloadsDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	downloadsDir := filepath.Join(homeDir, "Downloads")
	return downloadsDir, nil
}

// ResolveWrittenFile maps a file name reported during download to the file
// that actually ended up in dir. The reported name can be a pre-merge stream
// ("Title.f137.mp4") or the source of an audio extraction ("Title.webm").
func ResolveWrittenFile(dir, name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("file name is empty")
	}
	if strings.HasPrefix(name, "http") {
		return "", fmt.Errorf("file name appears to be a URL: %s", name)
	}

	exact := filepath.Join(dir, filepath.Base(name))
	if info, err := os.Stat(exact); err == nil && !info.IsDir() {
		return exact, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	stem := formatIDSuffix.ReplaceAllString(strings.TrimSuffix(filepath.Base(name), filepath.Ext(name)), "")

	var sameStem []string
	var similar []string
	for _, entry := range entries {
		if entry.IsDir() || isPartialFile(entry.Name()) {
			continue
		}

		entryName := entry.Name()
		entryStem := strings.TrimSuffix(entryName, filepath.Ext(entryName))

		if entryStem == stem {
			sameStem = append(sameStem, filepath.Join(dir, entryName))
			continue
		}
		if isSimilarFileName(entryStem, stem) {
			similar = append(similar, filepath.Join(dir, entryName))
		}
	}

	if len(sameStem) > 0 {
		sort.Strings(sameStem)
		return sameStem[0], nil
	}
	if len(similar) > 0 {
		sort.Strings(similar)
		return similar[0], nil
	}

	return "", fmt.Errorf("file not found: %s", exact)
}

// isPartialFile reports whether name is an unfinished download artifact
func isPartialFile(name string) bool {
	for _, ext := range PartialExtensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// isSimilarFileName checks if two file names are similar enough to be considered the same file
func isSimilarFileName(name1, name2 string) bool {
	clean1 := strings.TrimSpace(name1)
	clean2 := strings.TrimSpace(name2)

	if clean1 == clean2 {
		return true
	}

	// Variations added by filename restriction
	variations := []string{
		"-" + clean1,
		clean1 + "-",
		"_" + clean1,
		clean1 + "_",
	}

	for _, variation := range variations {
		if clean2 == variation {
			return true
		}
	}

	// Truncated names
	if strings.Contains(clean1, clean2) || strings.Contains(clean2, clean1) {
		diff := len(clean1) - len(clean2)
		if diff < 0 {
			diff = -diff
		}
		if diff <= MaxNameDifference {
			return true
		}
	}

	return false
}
