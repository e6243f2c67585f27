package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(Options{SearchPaths: []string{t.TempDir()}})
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.DB != DefaultDB {
		t.Errorf("DB = %q, want %q", cfg.DB, DefaultDB)
	}
	if !cfg.AutoInit {
		t.Error("AutoInit should default to true")
	}
	if cfg.Dashboard.Port != DefaultDashboardPort {
		t.Errorf("Dashboard.Port = %d, want %d", cfg.Dashboard.Port, DefaultDashboardPort)
	}
	if cfg.Dashboard.Debounce != DefaultDashboardDebounce {
		t.Errorf("Dashboard.Debounce = %v, want %v", cfg.Dashboard.Debounce, DefaultDashboardDebounce)
	}
	if cfg.ConfigFile != "" {
		t.Errorf("ConfigFile = %q, want empty", cfg.ConfigFile)
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "jira.yaml", `
db: tracker.yaml
auto_init: false
log:
  file: jira.log
  verbose: true
dashboard:
  port: 9001
  debounce: 250ms
`)

	cfg, err := Load(Options{SearchPaths: []string{dir}})
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.DB != "tracker.yaml" || cfg.AutoInit {
		t.Errorf("DB/AutoInit = %q/%v", cfg.DB, cfg.AutoInit)
	}
	if cfg.Log.File != "jira.log" || !cfg.Log.Verbose {
		t.Errorf("Log = %+v", cfg.Log)
	}
	if cfg.Dashboard.Port != 9001 || cfg.Dashboard.Debounce != 250*time.Millisecond {
		t.Errorf("Dashboard = %+v", cfg.Dashboard)
	}
	if cfg.ConfigFile == "" {
		t.Error("ConfigFile should be set")
	}
}

func TestLoad_TOMLExplicitFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "custom.toml", "db = \"other.json\"\n[dashboard]\nport = 7000\n")

	cfg, err := Load(Options{File: path})
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.DB != "other.json" || cfg.Dashboard.Port != 7000 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	_, err := Load(Options{File: filepath.Join(t.TempDir(), "nope.yaml")})
	if err == nil {
		t.Fatal("Load() should fail for a missing explicit file")
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "jira.yaml", "db: from-file.json\n")
	t.Setenv("JIRA_DB", "from-env.json")
	t.Setenv("JIRA_DASHBOARD_PORT", "9100")

	cfg, err := Load(Options{SearchPaths: []string{dir}})
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.DB != "from-env.json" {
		t.Errorf("DB = %q, want from-env.json", cfg.DB)
	}
	if cfg.Dashboard.Port != 9100 {
		t.Errorf("Dashboard.Port = %d, want 9100", cfg.Dashboard.Port)
	}
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	t.Setenv("JIRA_DB", "from-env.json")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("db", DefaultDB, "")
	flags.Bool("no-init", false, "")
	flags.Bool("verbose", false, "")
	if err := flags.Parse([]string{"--db", "from-flag.json", "--no-init", "--verbose"}); err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}

	cfg, err := Load(Options{SearchPaths: []string{t.TempDir()}, Flags: flags})
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.DB != "from-flag.json" {
		t.Errorf("DB = %q, want from-flag.json", cfg.DB)
	}
	if cfg.AutoInit {
		t.Error("--no-init should disable AutoInit")
	}
	if !cfg.Log.Verbose {
		t.Error("--verbose should enable verbose logging")
	}
}

func TestLoad_UnsetFlagKeepsEnv(t *testing.T) {
	t.Setenv("JIRA_DB", "from-env.json")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("db", DefaultDB, "")
	if err := flags.Parse(nil); err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}

	cfg, err := Load(Options{SearchPaths: []string{t.TempDir()}, Flags: flags})
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.DB != "from-env.json" {
		t.Errorf("DB = %q, want from-env.json", cfg.DB)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{DB: "db.json", Dashboard: DashboardConfig{Port: 8080}}, false},
		{"empty db", Config{DB: " "}, true},
		{"bad port", Config{DB: "db.json", Dashboard: DashboardConfig{Port: 70000}}, true},
		{"negative debounce", Config{DB: "db.json", Dashboard: DashboardConfig{Debounce: -time.Second}}, true},
		{"negative rotation", Config{DB: "db.json", Log: LogConfig{MaxBackups: -1}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
