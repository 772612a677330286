package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/h2non/filetype"
	"golang.org/x/term"

	"github.com/ytget/ytfetch/internal/model"
)

// sniffHeaderSize is how many bytes filetype needs to identify a file
const sniffHeaderSize = 262

// isTerminal reports whether w is an interactive terminal
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// progressPrinter renders progress snapshots. On a terminal it rewrites a
// single line; otherwise it prints one line per completed file.
type progressPrinter struct {
	w           io.Writer
	interactive bool
	completed   int
	lastWidth   int
}

func newProgressPrinter(w io.Writer) *progressPrinter {
	return &progressPrinter{w: w, interactive: isTerminal(w)}
}

// Update consumes one snapshot
func (p *progressPrinter) Update(s model.ProgressState) {
	if !p.interactive {
		for _, name := range s.CompletedFiles[min(p.completed, len(s.CompletedFiles)):] {
			fmt.Fprintf(p.w, "[%3d%%] finished %s\n", s.Percent(), name)
		}
		p.completed = len(s.CompletedFiles)
		return
	}

	line := fmt.Sprintf("[%3d%%] %d/%d", s.Percent(), s.CompletedCount, s.TotalCount)
	if s.CurrentFileName != "" {
		line += " " + s.CurrentFileName
	}
	if s.SpeedLabel != "" {
		line += "  " + s.SpeedLabel
	}
	if s.ETALabel != "" {
		line += "  ETA " + s.ETALabel
	}

	pad := ""
	if n := p.lastWidth - len(line); n > 0 {
		pad = strings.Repeat(" ", n)
	}
	p.lastWidth = len(line)
	fmt.Fprint(p.w, "\r"+line+pad)
}

// Done ends the progress line
func (p *progressPrinter) Done() {
	if p.interactive && p.lastWidth > 0 {
		fmt.Fprintln(p.w)
	}
}

// sniffFile returns the MIME type detected from the file header
func sniffFile(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return "missing"
	}
	defer f.Close()

	head := make([]byte, sniffHeaderSize)
	n, _ := io.ReadFull(f, head)

	kind, err := filetype.Match(head[:n])
	if err != nil || kind == filetype.Unknown {
		return "unknown"
	}
	return kind.MIME.Value
}
