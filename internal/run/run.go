// Package run orchestrates one audit run: locking, discovery, extraction,
// compression, summary, and cleanup.
package run

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/ehrlich-b/logsift/internal/audit"
	"github.com/ehrlich-b/logsift/internal/discover"
	"github.com/ehrlich-b/logsift/internal/extract"
	"github.com/ehrlich-b/logsift/internal/lock"
)

// state names the coordinator's position in the run lifecycle. The lock
// is released on every path out of the machine.
type state string

const (
	stateValidating  state = "validating"
	stateLocked      state = "lock_acquired"
	stateDiscovering state = "discovering"
	stateExtracting  state = "extracting"
	stateCompressing state = "compressing"
	stateSummarizing state = "summarizing"
	stateCleaningUp  state = "cleaning_up"
	stateReleased    state = "released"
)

// Recorder persists run summaries to the run ledger.
type Recorder interface {
	Record(ctx context.Context, s *Summary) error
}

// Uploader pushes finished artifacts to remote storage.
type Uploader interface {
	Upload(ctx context.Context, paths ...string) error
}

// Coordinator drives the pipeline for a single request. Zero values for
// the optional fields select sensible defaults.
type Coordinator struct {
	Req audit.Request

	// LockPath overrides the well-known marker path. Tests point this at
	// a temp directory.
	LockPath string

	// Now overrides the clock used for artifact names and retention.
	Now func() time.Time

	Log *slog.Logger

	// History, when set, records the summary in the run ledger. Failures
	// are logged, never fatal.
	History Recorder

	// Uploader, when set, pushes the artifact and summary to remote
	// storage. Failures are logged, never fatal: the files are already
	// on disk.
	Uploader Uploader
}

// Run executes the whole pipeline and returns the run summary. Per-file
// failures are recorded and skipped; any returned error is a run-level
// failure that produced no artifact.
func (c *Coordinator) Run(ctx context.Context) (*Summary, error) {
	log := c.logger()

	c.transition(stateValidating)
	filter, err := extract.NewLineFilter(c.Req.Range, c.Req.LevelFilter)
	if err != nil {
		return nil, err
	}
	if err := discover.ValidatePatterns(c.Req.LogPatterns); err != nil {
		return nil, err
	}
	if err := ensureWritableDir(c.Req.OutputDir); err != nil {
		return nil, err
	}

	lk, err := lock.Acquire(c.lockPath())
	if err != nil {
		return nil, err
	}
	defer func() {
		lk.Release()
		c.transition(stateReleased)
	}()
	c.transition(stateLocked)

	workDir, err := os.MkdirTemp("", "logsift-run-*")
	if err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	defer os.RemoveAll(workDir)

	journal, err := os.Create(filepath.Join(workDir, "journal.txt"))
	if err != nil {
		return nil, fmt.Errorf("create journal: %w", err)
	}
	defer journal.Close()

	aggregatePath := filepath.Join(workDir, "aggregate.log")
	aggregate, err := os.Create(aggregatePath)
	if err != nil {
		return nil, fmt.Errorf("create aggregate: %w", err)
	}
	defer aggregate.Close()

	ex := extract.New(filter, aggregate, journal, log)

	c.transition(stateDiscovering)
	d := discover.New(log)

	var found, processed, lines int
	c.transition(stateExtracting)
	for f := range d.Discover(c.Req.LogDirs, c.Req.LogPatterns) {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("run interrupted: %w", err)
		}
		found++
		if !f.Readable {
			log.Warn("skipping file", "path", f.Path, "reason", "empty or unreadable")
			continue
		}
		n, err := ex.Extract(f.Path)
		if err != nil {
			log.Warn("file skipped", "path", f.Path, "error", err)
			continue
		}
		lines += n
		processed++
	}

	c.transition(stateCompressing)
	if lines == 0 {
		// The run always produces a non-empty artifact.
		msg := fmt.Sprintf("No log entries matched between %s and %s.\n",
			c.Req.Range.Start, c.Req.Range.End)
		if _, err := aggregate.WriteString(msg); err != nil {
			return nil, fmt.Errorf("write placeholder: %w", err)
		}
	}

	ts := c.now().Format("20060102_150405")
	artifactPath := filepath.Join(c.Req.OutputDir, "audit_"+ts+".log.gz")
	size, err := compressFile(aggregatePath, artifactPath)
	if err != nil {
		return nil, fmt.Errorf("compress aggregate: %w", err)
	}

	c.transition(stateSummarizing)
	sum := &Summary{
		ID:             uuid.NewString(),
		GeneratedAt:    c.now(),
		Period:         c.Req.Range,
		LevelFilter:    c.Req.LevelFilter,
		FilesFound:     found,
		FilesProcessed: processed,
		LinesExtracted: lines,
		OutputPath:     artifactPath,
		OutputSize:     size,
	}
	summaryPath := filepath.Join(c.Req.OutputDir, "audit_summary_"+ts+".txt")
	if err := os.WriteFile(summaryPath, []byte(sum.Render()), 0644); err != nil {
		return nil, fmt.Errorf("write summary: %w", err)
	}

	if c.History != nil {
		if err := c.History.Record(ctx, sum); err != nil {
			log.Warn("run ledger write failed", "error", err)
		}
	}
	if c.Uploader != nil {
		if err := c.Uploader.Upload(ctx, artifactPath, summaryPath); err != nil {
			log.Warn("artifact upload failed", "error", err)
		}
	}

	c.transition(stateCleaningUp)
	sweepRetention(c.Req.OutputDir, c.Req.RetentionDays, c.now(), log)

	return sum, nil
}

// ensureWritableDir creates dir if needed and probes that the process can
// actually write into it. MkdirAll alone returns nil for an existing
// unwritable directory, which would otherwise surface only after all
// extraction work is done.
func ensureWritableDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("output directory: %w", err)
	}
	probe, err := os.CreateTemp(dir, ".logsift-probe-*")
	if err != nil {
		return fmt.Errorf("output directory not writable: %w", err)
	}
	probe.Close()
	os.Remove(probe.Name())
	return nil
}

// compressFile gzips src into dst via a temp file in dst's directory, so
// the artifact never appears half-written. Returns the compressed size.
func compressFile(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, fmt.Errorf("open aggregate: %w", err)
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".audit-*.tmp")
	if err != nil {
		return 0, fmt.Errorf("create temp artifact: %w", err)
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	gw := gzip.NewWriter(tmp)
	if _, err := io.Copy(gw, in); err != nil {
		return 0, fmt.Errorf("gzip: %w", err)
	}
	if err := gw.Close(); err != nil {
		return 0, fmt.Errorf("gzip close: %w", err)
	}

	info, err := tmp.Stat()
	if err != nil {
		return 0, err
	}
	if err := tmp.Close(); err != nil {
		return 0, err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return 0, err
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return 0, fmt.Errorf("publish artifact: %w", err)
	}
	return info.Size(), nil
}

func (c *Coordinator) transition(s state) {
	c.logger().Debug("state transition", "state", string(s))
}

func (c *Coordinator) lockPath() string {
	if c.LockPath != "" {
		return c.LockPath
	}
	return lock.DefaultPath()
}

func (c *Coordinator) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *Coordinator) logger() *slog.Logger {
	if c.Log != nil {
		return c.Log
	}
	return slog.Default()
}
