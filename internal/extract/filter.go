package extract

import (
	"fmt"
	"regexp"

	"github.com/ehrlich-b/logsift/internal/audit"
)

// dateToken matches a leading zero-padded ISO date token followed by
// whitespace or end of line. Lines without this token are never extracted;
// there is no fallback timestamp parsing.
var dateToken = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})(?:\s|$)`)

// LineFilter decides whether a log line belongs to the audit period.
type LineFilter struct {
	rng   audit.Range
	level *regexp.Regexp // nil when no severity filter is configured
}

// NewLineFilter compiles a filter for the given range and optional level
// expression. The level expression is a regular expression matched
// anywhere in the line, grep style.
func NewLineFilter(rng audit.Range, level string) (*LineFilter, error) {
	f := &LineFilter{rng: rng}
	if level != "" {
		re, err := regexp.Compile(level)
		if err != nil {
			return nil, fmt.Errorf("level filter: %w", err)
		}
		f.level = re
	}
	return f, nil
}

// Include reports whether the line's leading date token falls inside the
// range and, when a level filter is set, whether the line matches it.
func (f *LineFilter) Include(line string) bool {
	m := dateToken.FindStringSubmatch(line)
	if m == nil {
		return false
	}
	if !f.rng.ContainsToken(m[1]) {
		return false
	}
	return f.level == nil || f.level.MatchString(line)
}
