package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ehrlich-b/logsift/internal/audit"
	"github.com/ehrlich-b/logsift/internal/config"
	"github.com/ehrlich-b/logsift/internal/history"
	"github.com/ehrlich-b/logsift/internal/run"
	"github.com/ehrlich-b/logsift/internal/upload"
	"github.com/ehrlich-b/logsift/internal/version"
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logsift",
		Short: "Extract and archive log lines for an audit period",
		Long: `Logsift scans a set of log directories for plain and compressed log
files, extracts every line whose leading date token falls inside the
audit period, and writes one compressed artifact plus a summary report.

Prior artifacts older than the retention threshold are swept after each
run. A lock marker prevents two runs from racing on the same output.`,
		Version:      version.Version,
		SilenceUsage: true,
		RunE:         runAudit,
	}

	// SilenceUsage keeps runtime failures clean, but a bad flag should
	// still show the operator how to invoke the tool.
	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return fmt.Errorf("%w\n\n%s", err, c.UsageString())
	})

	cmd.Flags().String("start-date", "", "Start of the audit period (YYYY-MM-DD)")
	cmd.Flags().String("end-date", "", "End of the audit period (YYYY-MM-DD)")
	cmd.Flags().String("output-dir", "", "Directory for the artifact and summary")
	cmd.Flags().String("log-level", "", "Only extract lines matching this expression")
	cmd.Flags().String("config", "", "Config file (default: searched in $HOME, /etc/logsift)")
	cmd.Flags().Bool("verbose", false, "Enable debug logging")

	cmd.AddCommand(historyCmd(), configCmd())
	return cmd
}

// loadConfig resolves the --config flag or falls back to the default
// search locations.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		return config.LoadFile(path)
	}
	cfg, _, err := config.LoadDefault()
	return cfg, err
}

// buildRequest merges CLI flags over the config file into the immutable
// request the pipeline runs with. Flags always win.
func buildRequest(cmd *cobra.Command, cfg *config.Config) (audit.Request, error) {
	startStr := override(cmd, "start-date", cfg.StartDate)
	endStr := override(cmd, "end-date", cfg.EndDate)
	if startStr == "" || endStr == "" {
		return audit.Request{}, fmt.Errorf("both --start-date and --end-date are required (or start_date/end_date in the config file)")
	}

	start, err := audit.ParseDate(startStr)
	if err != nil {
		return audit.Request{}, err
	}
	end, err := audit.ParseDate(endStr)
	if err != nil {
		return audit.Request{}, err
	}
	rng, err := audit.NewRange(start, end)
	if err != nil {
		return audit.Request{}, err
	}

	level, _ := cmd.Flags().GetString("log-level")

	return audit.Request{
		Range:         rng,
		LevelFilter:   level,
		LogDirs:       cfg.LogDirs,
		LogPatterns:   cfg.LogPatterns,
		OutputDir:     override(cmd, "output-dir", cfg.OutputDir),
		RetentionDays: cfg.RetentionDays,
	}, nil
}

// override returns the flag value when set, the config value otherwise.
func override(cmd *cobra.Command, flag, fromConfig string) string {
	if v, _ := cmd.Flags().GetString(flag); v != "" {
		return v
	}
	return fromConfig
}

func runAudit(cmd *cobra.Command, args []string) error {
	level := slog.LevelInfo
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	req, err := buildRequest(cmd, cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	coord := &run.Coordinator{Req: req, Log: log}

	// The run ledger lives next to the artifacts. Its name never matches
	// the artifact convention, so the retention sweep leaves it alone.
	if err := os.MkdirAll(req.OutputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if store, err := history.Open(filepath.Join(req.OutputDir, "logsift.db")); err != nil {
		log.Warn("run ledger unavailable", "error", err)
	} else {
		defer store.Close()
		coord.History = store
	}

	if cfg.Upload != nil {
		uploader, err := upload.New(ctx, upload.Config{
			Endpoint:        cfg.Upload.Endpoint,
			Region:          cfg.Upload.Region,
			Bucket:          cfg.Upload.Bucket,
			AccessKeyID:     cfg.Upload.AccessKeyID,
			SecretAccessKey: cfg.Upload.SecretAccessKey,
		}, log)
		if err != nil {
			return fmt.Errorf("configure upload: %w", err)
		}
		coord.Uploader = uploader
	}

	sum, err := coord.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Print(sum.Render())
	return nil
}

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent audit runs from the ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			outputDir := override(cmd, "output-dir", cfg.OutputDir)
			limit, _ := cmd.Flags().GetInt("limit")

			store, err := history.Open(filepath.Join(outputDir, "logsift.db"))
			if err != nil {
				return fmt.Errorf("open run ledger: %w", err)
			}
			defer store.Close()

			entries, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("read run ledger: %w", err)
			}
			if len(entries) == 0 {
				fmt.Println("no recorded runs")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "WHEN\tPERIOD\tFILES\tLINES\tARTIFACT")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s to %s\t%d/%d\t%d\t%s\n",
					e.CreatedAt.Format("2006-01-02 15:04:05"),
					e.PeriodStart, e.PeriodEnd,
					e.FilesProcessed, e.FilesFound,
					e.LinesExtracted, e.ArtifactPath)
			}
			return w.Flush()
		},
	}
	cmd.Flags().Int("limit", 10, "Number of runs to show")
	cmd.Flags().String("output-dir", "", "Directory holding the run ledger")
	cmd.Flags().String("config", "", "Config file path")
	return cmd
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration commands",
	}
	cmd.AddCommand(configValidateCmd())
	return cmd
}

func configValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				cfg  *config.Config
				path string
				err  error
			)
			if flagPath, _ := cmd.Flags().GetString("config"); flagPath != "" {
				path = flagPath
				cfg, err = config.LoadFile(flagPath)
			} else {
				cfg, path, err = config.LoadDefault()
			}
			if err != nil {
				return err
			}
			if path == "" {
				fmt.Println("No config file found; defaults apply")
			} else {
				fmt.Printf("Valid: %s\n", path)
			}
			fmt.Printf("  log_dirs: %s\n", strings.Join(cfg.LogDirs, ", "))
			fmt.Printf("  log_patterns: %s\n", strings.Join(cfg.LogPatterns, ", "))
			fmt.Printf("  output_dir: %s\n", cfg.OutputDir)
			fmt.Printf("  retention_days: %d\n", cfg.RetentionDays)
			if cfg.Upload != nil {
				fmt.Printf("  upload: bucket %s\n", cfg.Upload.Bucket)
			}
			return nil
		},
	}
	cmd.Flags().String("config", "", "Config file path")
	return cmd
}
