// internal/config/config.go
//
// This package handles configuration and the project directory layout.
// Every project managed by taskflow gets the pipeline folders in its root
// and a hidden .taskflow/ folder for tool state.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kingrea/taskflow/internal/artifact"
)

const (
	// ToolDir is the hidden directory created in each project root
	ToolDir = ".taskflow"

	InboxDirName       = "Inbox"
	NeedsActionDirName = "Needs_Action"
	PlansDirName       = "Plans"
	DoneDirName        = "Done"
	ArchiveDirName     = "Archive"
	DashboardName      = "Dashboard.md"

	// RootEnv overrides the project root when --root is not given.
	RootEnv = "TASKFLOW_ROOT"
)

// Timestamp policies for watcher detected_at values.
const (
	TimestampUTC   = "utc"
	TimestampLocal = "local"
)

// CollisionNumericSuffix is the only supported watcher collision policy.
const CollisionNumericSuffix = "numeric_suffix"

const defaultDashboard = `# Dashboard

## Recent Activity
`

const defaultProjectConfigYAML = `# taskflow project configuration
version: 1

watcher:
  # Wait this long after a file appears in Inbox/ before reading it.
  settle_delay: 500ms
  # Files ending in this suffix are still being written and are ignored.
  transient_suffix: .tmp
  # utc writes 2006-01-02T15:04:05Z; local writes the local offset instead.
  timestamp_policy: utc
  collision_policy: numeric_suffix

orchestrator:
  interval: 60s
  # Archive plans whose checklist is fully ticked during each sweep.
  close_ready_plans: true

plan:
  steps:
    - Review the content of the dropped file
    - Decide required actions (e.g., archive, escalate, summarize)
    - Execute basic next step if safe
    - Move original task file to Done/ when finished
    - Log activity to Dashboard.md
`

var defaultPlanSteps = []string{
	"Review the content of the dropped file",
	"Decide required actions (e.g., archive, escalate, summarize)",
	"Execute basic next step if safe",
	"Move original task file to Done/ when finished",
	"Log activity to Dashboard.md",
}

// Duration is a time.Duration that reads and writes Go duration strings.
type Duration time.Duration

// UnmarshalYAML accepts "500ms", "1m" or a bare number of seconds.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		*d = 0
		return nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		var seconds float64
		if _, scanErr := fmt.Sscanf(raw, "%g", &seconds); scanErr != nil {
			return fmt.Errorf("invalid duration %q", raw)
		}
		parsed = time.Duration(seconds * float64(time.Second))
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML writes the duration in Go notation.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// WatcherConfig tunes the inbox watcher.
type WatcherConfig struct {
	SettleDelay     Duration `yaml:"settle_delay"`
	TransientSuffix string   `yaml:"transient_suffix"`
	TimestampPolicy string   `yaml:"timestamp_policy"`
	CollisionPolicy string   `yaml:"collision_policy"`
}

// OrchestratorConfig tunes the sweep loop.
type OrchestratorConfig struct {
	Interval        Duration `yaml:"interval"`
	CloseReadyPlans *bool    `yaml:"close_ready_plans,omitempty"`
}

// PlanConfig controls generated plan content.
type PlanConfig struct {
	Steps []string `yaml:"steps"`
}

// ProjectConfig models .taskflow/config.yaml.
type ProjectConfig struct {
	Version      int                `yaml:"version"`
	Watcher      WatcherConfig      `yaml:"watcher"`
	Orchestrator OrchestratorConfig `yaml:"orchestrator"`
	Plan         PlanConfig         `yaml:"plan"`
}

// Config holds the runtime configuration for one project root.
type Config struct {
	// ProjectDir is the absolute project root holding the pipeline folders
	ProjectDir string

	// ToolProjectDir is ProjectDir/.taskflow
	ToolProjectDir string

	Project ProjectConfig
}

// InitProjectDir creates the pipeline directory structure in the given project directory.
//
// Structure created:
// Inbox/          <- files dropped here are picked up by the watcher
// Needs_Action/   <- task records waiting for a plan
// Plans/          <- plan records
// Done/           <- task records that have a plan
// Archive/        <- closed plans
// Dashboard.md    <- activity log (only when absent)
// .taskflow/
// ├── logs/
// └── config.yaml
func InitProjectDir(projectDir string) error {
	toolDir := filepath.Join(projectDir, ToolDir)
	dirs := []string{
		filepath.Join(projectDir, InboxDirName),
		filepath.Join(projectDir, NeedsActionDirName),
		filepath.Join(projectDir, PlansDirName),
		filepath.Join(projectDir, DoneDirName),
		filepath.Join(projectDir, ArchiveDirName),
		filepath.Join(toolDir, "logs"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := ensureFile(filepath.Join(toolDir, "config.yaml"), defaultProjectConfigYAML); err != nil {
		return err
	}
	return ensureFile(filepath.Join(projectDir, DashboardName), defaultDashboard)
}

// NewConfig creates a Config for projectDir populated with project settings.
func NewConfig(projectDir string) (*Config, error) {
	if strings.TrimSpace(projectDir) == "" {
		return nil, fmt.Errorf("config: project directory is required")
	}
	abs, err := filepath.Abs(projectDir)
	if err != nil {
		return nil, fmt.Errorf("config: resolve %s: %w", projectDir, err)
	}
	cfg := &Config{
		ProjectDir:     abs,
		ToolProjectDir: filepath.Join(abs, ToolDir),
		Project:        defaultProjectConfig(),
	}
	if err := cfg.loadProjectConfig(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ResolveRoot picks the project root: the explicit flag value, then
// $TASKFLOW_ROOT, then the working directory.
func ResolveRoot(flagValue string) (string, error) {
	if v := strings.TrimSpace(flagValue); v != "" {
		return filepath.Abs(v)
	}
	if v := strings.TrimSpace(os.Getenv(RootEnv)); v != "" {
		return filepath.Abs(v)
	}
	return os.Getwd()
}

// InboxDir returns the drop folder watched for new files
func (c *Config) InboxDir() string {
	return filepath.Join(c.ProjectDir, InboxDirName)
}

// NeedsActionDir returns the folder holding pending task records
func (c *Config) NeedsActionDir() string {
	return filepath.Join(c.ProjectDir, NeedsActionDirName)
}

// PlansDir returns the folder holding plan records
func (c *Config) PlansDir() string {
	return filepath.Join(c.ProjectDir, PlansDirName)
}

// DoneDir returns the folder holding planned task records
func (c *Config) DoneDir() string {
	return filepath.Join(c.ProjectDir, DoneDirName)
}

// ArchiveDir returns the folder holding closed plans
func (c *Config) ArchiveDir() string {
	return filepath.Join(c.ProjectDir, ArchiveDirName)
}

// DashboardPath returns the activity log document
func (c *Config) DashboardPath() string {
	return filepath.Join(c.ProjectDir, DashboardName)
}

// LogsDir returns the path to the diagnostics log directory
func (c *Config) LogsDir() string {
	return filepath.Join(c.ToolProjectDir, "logs")
}

// ProjectConfigPath returns the on-disk location for the project config file.
func (c *Config) ProjectConfigPath() string {
	return filepath.Join(c.ToolProjectDir, "config.yaml")
}

// Layout returns the pipeline directories for an artifact.Store.
func (c *Config) Layout() artifact.Layout {
	return artifact.Layout{
		Root:        c.ProjectDir,
		Inbox:       c.InboxDir(),
		NeedsAction: c.NeedsActionDir(),
		Plans:       c.PlansDir(),
		Done:        c.DoneDir(),
		Archive:     c.ArchiveDir(),
	}
}

// SettleDelay returns how long the watcher waits before reading a new file.
func (c *Config) SettleDelay() time.Duration {
	return time.Duration(c.Project.Watcher.SettleDelay)
}

// TransientSuffix returns the filename suffix the watcher treats as in-progress.
func (c *Config) TransientSuffix() string {
	return c.Project.Watcher.TransientSuffix
}

// LocalTimestamps reports whether detected_at is written with the local offset
// instead of UTC.
func (c *Config) LocalTimestamps() bool {
	return c.Project.Watcher.TimestampPolicy == TimestampLocal
}

// SweepInterval returns the pause between orchestrator sweeps in loop mode.
func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.Project.Orchestrator.Interval)
}

// CloseReadyPlans reports whether sweeps archive fully ticked plans.
func (c *Config) CloseReadyPlans() bool {
	v := c.Project.Orchestrator.CloseReadyPlans
	return v == nil || *v
}

// PlanSteps returns the checklist written into new plans.
func (c *Config) PlanSteps() []string {
	return append([]string{}, c.Project.Plan.Steps...)
}

func (c *Config) loadProjectConfig() error {
	path := c.ProjectConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var parsed ProjectConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	parsed.applyDefaults()
	parsed.normalize()
	if err := parsed.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	c.Project = parsed
	return nil
}

func defaultProjectConfig() ProjectConfig {
	pc := ProjectConfig{}
	pc.applyDefaults()
	return pc
}

func (pc *ProjectConfig) applyDefaults() {
	if pc.Version == 0 {
		pc.Version = 1
	}
	if pc.Watcher.SettleDelay == 0 {
		pc.Watcher.SettleDelay = Duration(500 * time.Millisecond)
	}
	if pc.Watcher.TransientSuffix == "" {
		pc.Watcher.TransientSuffix = ".tmp"
	}
	if pc.Watcher.TimestampPolicy == "" {
		pc.Watcher.TimestampPolicy = TimestampUTC
	}
	if pc.Watcher.CollisionPolicy == "" {
		pc.Watcher.CollisionPolicy = CollisionNumericSuffix
	}
	if pc.Orchestrator.Interval == 0 {
		pc.Orchestrator.Interval = Duration(60 * time.Second)
	}
	if len(pc.Plan.Steps) == 0 {
		pc.Plan.Steps = append([]string{}, defaultPlanSteps...)
	}
}

func (pc *ProjectConfig) normalize() {
	pc.Watcher.TimestampPolicy = normalizeKeyword(pc.Watcher.TimestampPolicy)
	pc.Watcher.CollisionPolicy = normalizeKeyword(pc.Watcher.CollisionPolicy)
	pc.Watcher.TransientSuffix = strings.TrimSpace(pc.Watcher.TransientSuffix)
	steps := pc.Plan.Steps[:0]
	for _, step := range pc.Plan.Steps {
		if s := strings.TrimSpace(step); s != "" {
			steps = append(steps, s)
		}
	}
	pc.Plan.Steps = steps
}

func (pc *ProjectConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	switch pc.Watcher.TimestampPolicy {
	case TimestampUTC, TimestampLocal:
	default:
		return fmt.Errorf("watcher.timestamp_policy must be 'utc' or 'local'")
	}
	if pc.Watcher.CollisionPolicy != CollisionNumericSuffix {
		return fmt.Errorf("watcher.collision_policy must be 'numeric_suffix'")
	}
	if pc.Watcher.SettleDelay < 0 {
		return fmt.Errorf("watcher.settle_delay must not be negative")
	}
	if pc.Orchestrator.Interval <= 0 {
		return fmt.Errorf("orchestrator.interval must be positive")
	}
	if len(pc.Plan.Steps) == 0 {
		return fmt.Errorf("plan.steps must list at least one step")
	}
	return nil
}

func normalizeKeyword(value string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(value)), "-", "_")
}

func ensureFile(path, content string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}
