package audit

// Request describes one audit run. It is built once at startup by merging
// config-file defaults with CLI overrides and is not modified afterwards.
type Request struct {
	// Range is the inclusive period to extract.
	Range Range

	// LevelFilter is an optional regular expression matched anywhere in a
	// line. Empty means no severity filtering.
	LevelFilter string

	// LogDirs are the root directories to search, in order.
	LogDirs []string

	// LogPatterns are globs matched against file base names, in order.
	LogPatterns []string

	// OutputDir receives the compressed artifact and the summary report.
	OutputDir string

	// RetentionDays is the age threshold for the post-run sweep of prior
	// artifacts. Zero or negative disables the sweep.
	RetentionDays int
}
