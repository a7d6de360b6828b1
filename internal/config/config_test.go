package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	content := `log_dirs:
  - /var/log
  - /srv/app/logs
log_patterns:
  - "*.log"
start_date: "2023-01-02"
end_date: "2023-01-04"
output_dir: /var/log/audit
retention_days: 14
`
	if err := os.WriteFile(filepath.Join(dir, ".logsift.yaml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, path, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if filepath.Base(path) != ".logsift.yaml" {
		t.Errorf("expected .logsift.yaml, got %s", path)
	}
	if len(cfg.LogDirs) != 2 || cfg.LogDirs[1] != "/srv/app/logs" {
		t.Errorf("unexpected log_dirs: %v", cfg.LogDirs)
	}
	if cfg.StartDate != "2023-01-02" || cfg.EndDate != "2023-01-04" {
		t.Errorf("unexpected period: %s to %s", cfg.StartDate, cfg.EndDate)
	}
	if cfg.RetentionDays != 14 {
		t.Errorf("expected retention 14, got %d", cfg.RetentionDays)
	}
}

func TestLoadTOML(t *testing.T) {
	dir := t.TempDir()
	content := `log_dirs = ["/var/log"]
output_dir = "/tmp/audit"
retention_days = 7
`
	if err := os.WriteFile(filepath.Join(dir, ".logsift.toml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, _, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.OutputDir != "/tmp/audit" {
		t.Errorf("expected /tmp/audit, got %s", cfg.OutputDir)
	}
	if cfg.RetentionDays != 7 {
		t.Errorf("expected retention 7, got %d", cfg.RetentionDays)
	}
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	content := `{"log_dirs": ["/var/log"], "retention_days": 3}`
	if err := os.WriteFile(filepath.Join(dir, ".logsift.json"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, _, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.RetentionDays != 3 {
		t.Errorf("expected retention 3, got %d", cfg.RetentionDays)
	}
}

func TestLoadStrictYAML(t *testing.T) {
	dir := t.TempDir()
	content := `log_dirs: [/var/log]
no_such_key: true
`
	if err := os.WriteFile(filepath.Join(dir, ".logsift.yaml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := Load(dir); err == nil {
		t.Error("expected error for unknown config key")
	}
}

func TestDefaults(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".logsift.yaml"), []byte("start_date: \"2023-01-01\""), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, _, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.LogDirs) == 0 || cfg.LogDirs[0] != "/var/log" {
		t.Errorf("expected default log_dirs, got %v", cfg.LogDirs)
	}
	if len(cfg.LogPatterns) != 2 {
		t.Errorf("expected default patterns, got %v", cfg.LogPatterns)
	}
	if cfg.OutputDir != "/var/log/audit" {
		t.Errorf("expected default output dir, got %s", cfg.OutputDir)
	}
	if cfg.RetentionDays != 30 {
		t.Errorf("expected default retention 30, got %d", cfg.RetentionDays)
	}
}

func TestNoConfig(t *testing.T) {
	if _, _, err := Load(t.TempDir()); !errors.Is(err, ErrNoConfig) {
		t.Errorf("expected ErrNoConfig, got %v", err)
	}
}

func TestValidateNegativeRetention(t *testing.T) {
	cfg := &Config{RetentionDays: -1}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for negative retention_days")
	}
}

func TestValidateUpload(t *testing.T) {
	cfg := &Config{Upload: &Upload{Bucket: ""}}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for upload without bucket")
	}

	cfg = &Config{Upload: &Upload{Bucket: "audits"}}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for upload without credentials")
	}

	cfg = &Config{Upload: &Upload{
		Bucket:          "audits",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
	}}
	if err := cfg.Validate(); err != nil {
		t.Errorf("valid upload config rejected: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.toml")
	if err := os.WriteFile(path, []byte(`retention_days = 5`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.RetentionDays != 5 {
		t.Errorf("expected retention 5, got %d", cfg.RetentionDays)
	}
}

func TestLoadPriority(t *testing.T) {
	// The dotted name wins over the bare one.
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".logsift.yaml"), []byte("output_dir: /first"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "logsift.yaml"), []byte("output_dir: /second"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, _, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.OutputDir != "/first" {
		t.Errorf("expected /first, got %s", cfg.OutputDir)
	}
}
