// Package extract filters log lines from plain and compressed files into
// a single aggregate stream.
package extract

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Log lines longer than this are treated as a read failure for the file.
const maxLineBytes = 1 << 20

// Extractor scans candidate files and appends lines accepted by the
// filter to one aggregate writer, in the order files are handed to it.
type Extractor struct {
	filter  *LineFilter
	out     io.Writer
	journal io.Writer // per-run processing journal, one attempted path per line
	log     *slog.Logger
}

// New creates an Extractor. A nil logger falls back to slog.Default.
func New(filter *LineFilter, out, journal io.Writer, log *slog.Logger) *Extractor {
	if log == nil {
		log = slog.Default()
	}
	return &Extractor{filter: filter, out: out, journal: journal, log: log}
}

// Extract reads one file through the codec selected by its extension and
// appends matching lines to the aggregate. Matches are staged per file
// and reach the aggregate only after a clean read: a corrupt archive or a
// mid-read failure contributes zero lines, and a non-nil error with a
// zero count is the caller's signal to skip the file.
func (e *Extractor) Extract(path string) (int, error) {
	if e.journal != nil {
		fmt.Fprintln(e.journal, path)
	}
	e.log.Debug("processing file", "path", path)

	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	r, err := decode(path, f)
	if err != nil {
		return 0, fmt.Errorf("decode: %w", err)
	}

	var staged bytes.Buffer
	lines := 0
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		line := scanner.Text()
		if !e.filter.Include(line) {
			continue
		}
		staged.WriteString(line)
		staged.WriteByte('\n')
		lines++
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("read: %w", err)
	}
	if _, err := io.Copy(e.out, &staged); err != nil {
		return 0, fmt.Errorf("append to aggregate: %w", err)
	}
	return lines, nil
}
