// internal/config/config.go
//
// This package handles configuration and the .adjudicate directory structure.
// Every directory the tool runs in gets a .adjudicate/ folder holding the
// project config, the session log, and (by default) the exports.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kingrea/adjudicate/internal/adjudication"
	"github.com/kingrea/adjudicate/internal/labels"
)

const (
	// ProjectDirName is the name of the directory we create in each project
	ProjectDirName = ".adjudicate"

	// ExportDirEnv overrides export.dir when set.
	ExportDirEnv = "ADJUDICATE_EXPORT_DIR"

	// FormatBoth writes CSV and JSON in one export.
	FormatBoth = "both"

	defaultExportDir    = ".adjudicate/exports"
	defaultExportFormat = FormatBoth
)

const defaultProjectConfigYAML = `# adjudicate project configuration
version: 1

# Name recorded in export summaries. Optional.
adjudicator: ""

export:
  # Relative paths resolve against the project directory.
  dir: .adjudicate/exports
  # csv, json, or both
  format: both
  # Write adjudication_summary_<timestamp>.md next to every export.
  summary: true

# Values offered for custom choices. Leave a list empty to keep the default.
# The emotion default keeps the "Happniess" spelling used by the source data.
labels:
  emotion: []
  sentiment: []
  hate_speech: []
  cyberbully: []
`

// ExportConfig controls where and how decisions are written.
type ExportConfig struct {
	Dir     string `yaml:"dir"`
	Format  string `yaml:"format"`
	Summary *bool  `yaml:"summary,omitempty"`
}

// LabelConfig overrides the custom option sets.
type LabelConfig struct {
	Emotion    []string `yaml:"emotion,omitempty"`
	Sentiment  []string `yaml:"sentiment,omitempty"`
	HateSpeech []string `yaml:"hate_speech,omitempty"`
	Cyberbully []string `yaml:"cyberbully,omitempty"`
}

// ProjectConfig models .adjudicate/config.yaml.
type ProjectConfig struct {
	Version     int          `yaml:"version"`
	Adjudicator string       `yaml:"adjudicator,omitempty"`
	Export      ExportConfig `yaml:"export"`
	Labels      LabelConfig  `yaml:"labels"`
}

// Config holds the runtime configuration.
type Config struct {
	// ProjectDir is the directory the tool was started from
	ProjectDir string

	// StateDir is ProjectDir/.adjudicate
	StateDir string

	Project ProjectConfig

	// exportDir is export.dir as resolved from the file, before any
	// ADJUDICATE_EXPORT_DIR override.
	exportDir string
}

// InitDir creates the .adjudicate directory structure in the given project
// directory and writes a default config.yaml when none exists.
//
// Structure created:
// .adjudicate/
// ├── config.yaml
// ├── logs/       <- session.log
// └── exports/    <- default export directory
func InitDir(projectDir string) error {
	root := filepath.Join(projectDir, ProjectDirName)
	dirs := []string{
		filepath.Join(root, "logs"),
		filepath.Join(root, "exports"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return ensureProjectConfig(filepath.Join(root, "config.yaml"))
}

// NewConfig creates a Config populated with project settings. A missing
// config.yaml yields the defaults.
func NewConfig(projectDir string) (*Config, error) {
	abs, err := filepath.Abs(projectDir)
	if err != nil {
		return nil, fmt.Errorf("config: resolve project dir: %w", err)
	}
	cfg := &Config{
		ProjectDir: abs,
		StateDir:   filepath.Join(abs, ProjectDirName),
		Project:    defaultProjectConfig(),
	}
	cfg.Project.normalize(abs)
	if err := cfg.loadProjectConfig(); err != nil {
		return nil, err
	}
	cfg.exportDir = cfg.Project.Export.Dir
	if dir := strings.TrimSpace(os.Getenv(ExportDirEnv)); dir != "" {
		cfg.Project.Export.Dir = resolvePath(abs, dir)
	}
	return cfg, nil
}

// LogsDir returns the path to the logs directory
func (c *Config) LogsDir() string {
	return filepath.Join(c.StateDir, "logs")
}

// LogPath returns the session log file.
func (c *Config) LogPath() string {
	return filepath.Join(c.LogsDir(), "session.log")
}

// ExportDir returns the absolute export directory.
func (c *Config) ExportDir() string {
	return c.Project.Export.Dir
}

// ProjectConfigPath returns the on-disk location for the project config file.
func (c *Config) ProjectConfigPath() string {
	return filepath.Join(c.StateDir, "config.yaml")
}

// ExportFormats expands export.format into concrete formats.
func (c *Config) ExportFormats() []adjudication.Format {
	return formatsFor(c.Project.Export.Format)
}

// WriteSummary reports whether exports include a summary document.
func (c *Config) WriteSummary() bool {
	if c.Project.Export.Summary == nil {
		return true
	}
	return *c.Project.Export.Summary
}

// Adjudicator returns the configured adjudicator name.
func (c *Config) Adjudicator() string {
	return c.Project.Adjudicator
}

// LabelOptions returns the default option sets overlaid with config overrides.
func (c *Config) LabelOptions() labels.OptionSets {
	return labels.Defaults().Merge(labels.OptionSets{
		labels.Emotion:    c.Project.Labels.Emotion,
		labels.Sentiment:  c.Project.Labels.Sentiment,
		labels.HateSpeech: c.Project.Labels.HateSpeech,
		labels.Cyberbully: c.Project.Labels.Cyberbully,
	})
}

// SetExportFormat updates export.format and persists the value back to
// .adjudicate/config.yaml.
func (c *Config) SetExportFormat(format string) error {
	format = strings.ToLower(strings.TrimSpace(format))
	if formatsFor(format) == nil {
		return fmt.Errorf("config: unknown export format %q", format)
	}
	c.Project.Export.Format = format
	return c.saveProjectConfig()
}

func formatsFor(value string) []adjudication.Format {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case FormatBoth:
		return []adjudication.Format{adjudication.FormatCSV, adjudication.FormatJSON}
	case string(adjudication.FormatCSV):
		return []adjudication.Format{adjudication.FormatCSV}
	case string(adjudication.FormatJSON):
		return []adjudication.Format{adjudication.FormatJSON}
	default:
		return nil
	}
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
	parsed.normalize(c.ProjectDir)
	if err := parsed.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	c.Project = parsed
	return nil
}

func defaultProjectConfig() ProjectConfig {
	return ProjectConfig{
		Version: 1,
		Export: ExportConfig{
			Dir:    defaultExportDir,
			Format: defaultExportFormat,
		},
	}
}

func (pc *ProjectConfig) applyDefaults() {
	if pc.Version == 0 {
		pc.Version = 1
	}
	if strings.TrimSpace(pc.Export.Dir) == "" {
		pc.Export.Dir = defaultExportDir
	}
	if strings.TrimSpace(pc.Export.Format) == "" {
		pc.Export.Format = defaultExportFormat
	}
}

func (pc *ProjectConfig) normalize(base string) {
	pc.Adjudicator = strings.TrimSpace(pc.Adjudicator)
	pc.Export.Dir = resolvePath(base, pc.Export.Dir)
	pc.Export.Format = strings.ToLower(strings.TrimSpace(pc.Export.Format))
}

func (pc *ProjectConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	if formatsFor(pc.Export.Format) == nil {
		return fmt.Errorf("export.format must be 'csv', 'json', or 'both'")
	}
	if pc.Export.Dir == "" {
		return fmt.Errorf("export.dir is required")
	}
	return nil
}

func resolvePath(base, candidate string) string {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return ""
	}
	if filepath.IsAbs(trimmed) {
		return filepath.Clean(trimmed)
	}
	return filepath.Clean(filepath.Join(base, trimmed))
}

// relativeTo keeps paths inside the project relative so config.yaml stays
// portable.
func relativeTo(base, path string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return rel
}

func ensureProjectConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultProjectConfigYAML), 0o644)
}

func (c *Config) saveProjectConfig() error {
	if c == nil {
		return fmt.Errorf("config: nil receiver")
	}
	c.Project.applyDefaults()
	c.Project.normalize(c.ProjectDir)
	if err := c.Project.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := os.MkdirAll(c.StateDir, 0o755); err != nil {
		return fmt.Errorf("config: ensure state dir: %w", err)
	}
	onDisk := c.Project
	if c.exportDir != "" {
		onDisk.Export.Dir = relativeTo(c.ProjectDir, c.exportDir)
	}
	data, err := yaml.Marshal(onDisk)
	if err != nil {
		return fmt.Errorf("config: encode config: %w", err)
	}
	if err := os.WriteFile(c.ProjectConfigPath(), data, 0o644); err != nil {
		return fmt.Errorf("config: write project config: %w", err)
	}
	return nil
}
