package run

import (
	"fmt"
	"strings"
	"time"

	"github.com/ehrlich-b/logsift/internal/audit"
)

// Summary is the immutable record of one completed run. It is created
// once at the end of the run and written once.
type Summary struct {
	ID             string
	GeneratedAt    time.Time
	Period         audit.Range
	LevelFilter    string
	FilesFound     int
	FilesProcessed int
	LinesExtracted int
	OutputPath     string
	OutputSize     int64
}

// Render produces the fixed key/value report written next to the
// compressed artifact.
func (s *Summary) Render() string {
	level := s.LevelFilter
	if level == "" {
		level = "(none)"
	}

	var b strings.Builder
	b.WriteString("Log Audit Summary\n")
	b.WriteString("=================\n")
	fmt.Fprintf(&b, "Generated:       %s\n", s.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Period:          %s\n", s.Period)
	fmt.Fprintf(&b, "Level filter:    %s\n", level)
	fmt.Fprintf(&b, "Files found:     %d\n", s.FilesFound)
	fmt.Fprintf(&b, "Files processed: %d\n", s.FilesProcessed)
	fmt.Fprintf(&b, "Lines extracted: %d\n", s.LinesExtracted)
	fmt.Fprintf(&b, "Output:          %s\n", s.OutputPath)
	fmt.Fprintf(&b, "Output size:     %d bytes\n", s.OutputSize)
	return b.String()
}
