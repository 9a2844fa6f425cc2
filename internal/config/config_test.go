package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadProjectConfigDefaultsWhenMissing(t *testing.T) {
	projectDir := t.TempDir()
	c := &Config{ProjectDir: projectDir, ToolProjectDir: filepath.Join(projectDir, ToolDir), Project: defaultProjectConfig()}
	if err := c.loadProjectConfig(); err != nil {
		t.Fatalf("loadProjectConfig returned error: %v", err)
	}
	if c.Project.Version != 1 {
		t.Fatalf("expected default version == 1, got %d", c.Project.Version)
	}
	if c.SettleDelay() != 500*time.Millisecond {
		t.Fatalf("settle delay = %s, want 500ms", c.SettleDelay())
	}
	if c.SweepInterval() != time.Minute {
		t.Fatalf("interval = %s, want 1m", c.SweepInterval())
	}
	if !c.CloseReadyPlans() {
		t.Fatalf("expected close_ready_plans to default to true")
	}
	if len(c.PlanSteps()) != len(defaultPlanSteps) {
		t.Fatalf("plan steps = %v", c.PlanSteps())
	}
}

func TestLoadProjectConfigParsesYaml(t *testing.T) {
	projectDir := t.TempDir()
	toolDir := filepath.Join(projectDir, ToolDir)
	if err := os.MkdirAll(toolDir, 0o755); err != nil {
		t.Fatal(err)
	}
	configYAML := strings.TrimSpace(`
version: 1
watcher:
  settle_delay: 2s
  transient_suffix: .part
  timestamp_policy: Local
orchestrator:
  interval: 15
  close_ready_plans: false
plan:
  steps:
    - Read it
    - "  "
    - File it
`)
	if err := os.WriteFile(filepath.Join(toolDir, "config.yaml"), []byte(configYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := NewConfig(projectDir)
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	if c.SettleDelay() != 2*time.Second {
		t.Fatalf("settle delay = %s", c.SettleDelay())
	}
	if c.SweepInterval() != 15*time.Second {
		t.Fatalf("interval = %s, want 15s", c.SweepInterval())
	}
	if c.Project.Watcher.TimestampPolicy != TimestampLocal {
		t.Fatalf("timestamp policy = %q", c.Project.Watcher.TimestampPolicy)
	}
	if c.Project.Watcher.TransientSuffix != ".part" {
		t.Fatalf("transient suffix = %q", c.Project.Watcher.TransientSuffix)
	}
	if c.CloseReadyPlans() {
		t.Fatalf("expected close_ready_plans=false")
	}
	steps := c.PlanSteps()
	if len(steps) != 2 || steps[0] != "Read it" || steps[1] != "File it" {
		t.Fatalf("plan steps = %v", steps)
	}
}

func TestLoadProjectConfigValidation(t *testing.T) {
	projectDir := t.TempDir()
	toolDir := filepath.Join(projectDir, ToolDir)
	if err := os.MkdirAll(toolDir, 0o755); err != nil {
		t.Fatal(err)
	}
	configYAML := "version: 1\nwatcher:\n  timestamp_policy: martian\n"
	if err := os.WriteFile(filepath.Join(toolDir, "config.yaml"), []byte(configYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewConfig(projectDir); err == nil {
		t.Fatalf("expected validation error but got none")
	}
}

func TestInitProjectDirCreatesLayoutAndKeepsDashboard(t *testing.T) {
	projectDir := t.TempDir()
	dashboard := filepath.Join(projectDir, DashboardName)
	existing := "# Mine\n\n## Recent Activity\n   - [2026-01-01 09:00] kept\n"
	if err := os.WriteFile(dashboard, []byte(existing), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := InitProjectDir(projectDir); err != nil {
		t.Fatalf("InitProjectDir: %v", err)
	}
	for _, name := range []string{InboxDirName, NeedsActionDirName, PlansDirName, DoneDirName, ArchiveDirName, filepath.Join(ToolDir, "logs")} {
		info, err := os.Stat(filepath.Join(projectDir, name))
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s: %v", name, err)
		}
	}
	data, err := os.ReadFile(dashboard)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != existing {
		t.Fatalf("dashboard rewritten: %q", data)
	}
	c, err := NewConfig(projectDir)
	if err != nil {
		t.Fatalf("NewConfig after init: %v", err)
	}
	if c.Project.Watcher.CollisionPolicy != CollisionNumericSuffix {
		t.Fatalf("collision policy = %q", c.Project.Watcher.CollisionPolicy)
	}
}

func TestInitProjectDirSeedsDashboardMarker(t *testing.T) {
	projectDir := t.TempDir()
	if err := InitProjectDir(projectDir); err != nil {
		t.Fatalf("InitProjectDir: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(projectDir, DashboardName))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "\n## Recent Activity\n") {
		t.Fatalf("dashboard missing marker: %q", data)
	}
}
