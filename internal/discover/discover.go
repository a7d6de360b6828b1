// Package discover walks log directories and matches candidate files
// against glob patterns.
package discover

import (
	"fmt"
	"io/fs"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// File is a candidate log file found during discovery.
type File struct {
	Path string
	Size int64

	// Readable is false for empty files and files the process cannot
	// open. Those are counted in the discovery tally but never processed.
	Readable bool
}

// Discoverer finds log files under a set of root directories.
type Discoverer struct {
	log *slog.Logger
}

// New creates a Discoverer. A nil logger falls back to slog.Default.
func New(log *slog.Logger) *Discoverer {
	if log == nil {
		log = slog.Default()
	}
	return &Discoverer{log: log}
}

// Discover yields regular files under each directory whose base name
// matches each pattern: directory order, then pattern order, then walk
// order. A file matching two overlapping patterns is yielded twice;
// callers that want one visit per path must deduplicate themselves.
// Directories that do not exist are skipped silently.
func (d *Discoverer) Discover(dirs, patterns []string) iter.Seq[File] {
	return func(yield func(File) bool) {
		for _, dir := range dirs {
			if _, err := os.Stat(dir); err != nil {
				continue
			}
			for _, pattern := range patterns {
				if !d.walk(dir, pattern, yield) {
					return
				}
			}
		}
	}
}

func (d *Discoverer) walk(dir, pattern string, yield func(File) bool) bool {
	cont := true
	_ = filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			d.log.Warn("skipping unreadable path", "path", path, "error", err)
			return nil
		}
		if !entry.Type().IsRegular() {
			return nil
		}
		ok, merr := doublestar.Match(pattern, entry.Name())
		if merr != nil || !ok {
			return nil
		}
		f := File{Path: path}
		if info, ierr := entry.Info(); ierr == nil {
			f.Size = info.Size()
		}
		f.Readable = f.Size > 0 && canOpen(path)
		if !yield(f) {
			cont = false
			return fs.SkipAll
		}
		return nil
	})
	return cont
}

// ValidatePatterns rejects malformed globs before any filesystem work.
func ValidatePatterns(patterns []string) error {
	for _, p := range patterns {
		if strings.TrimSpace(p) == "" || !doublestar.ValidatePattern(p) {
			return &BadPatternError{Pattern: p}
		}
	}
	return nil
}

// BadPatternError reports a glob that cannot be compiled.
type BadPatternError struct {
	Pattern string
}

func (e *BadPatternError) Error() string {
	return fmt.Sprintf("invalid log pattern %q", e.Pattern)
}

func canOpen(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	f.Close()
	return true
}
