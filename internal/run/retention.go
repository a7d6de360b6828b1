package run

import (
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"time"
)

// Only files matching the run's own naming convention are sweep
// candidates; anything else in the output directory is left alone.
var (
	artifactName = regexp.MustCompile(`^audit_\d{8}_\d{6}\.log\.gz$`)
	summaryName  = regexp.MustCompile(`^audit_summary_\d{8}_\d{6}\.txt$`)
)

// sweepRetention deletes prior artifacts in dir whose modification time
// is older than the retention threshold. Failures are logged, never
// escalated; this is a best-effort policy pass independent of the run
// that triggered it.
func sweepRetention(dir string, days int, now time.Time, log *slog.Logger) {
	if days <= 0 {
		return
	}
	cutoff := now.AddDate(0, 0, -days)

	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Warn("retention sweep skipped", "dir", dir, "error", err)
		return
	}

	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		name := entry.Name()
		if !artifactName.MatchString(name) && !summaryName.MatchString(name) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		path := filepath.Join(dir, name)
		if err := os.Remove(path); err != nil {
			log.Warn("retention sweep failed to delete", "path", path, "error", err)
			continue
		}
		log.Info("retention sweep deleted expired artifact", "path", path)
	}
}
