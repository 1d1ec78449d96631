package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	History     HistoryConfig     `json:"history" yaml:"history"`
	Aggregation AggregationConfig `json:"aggregation" yaml:"aggregation"`
	Filters     FilterConfig      `json:"filters" yaml:"filters"`
	Batch       BatchConfig       `json:"batch" yaml:"batch"`
	Output      OutputConfig      `json:"output" yaml:"output"`
}

// HistoryConfig controls which slice of history is read.
type HistoryConfig struct {
	Branch string `json:"branch" yaml:"branch"` // Default: "HEAD"
}

// AggregationConfig controls how the report is computed.
type AggregationConfig struct {
	Reference    string `json:"reference" yaml:"reference"` // "latest" or "now"
	Timezone     string `json:"timezone" yaml:"timezone"`   // "utc" or "commit"
	WindowDays   []int  `json:"windowDays" yaml:"windowDays"`
	SkipVendored bool   `json:"skipVendored" yaml:"skipVendored"`
}

// FilterConfig holds file path filtering options.
type FilterConfig struct {
	Include []string `json:"include" yaml:"include"`
	Exclude []string `json:"exclude" yaml:"exclude"`
}

// BatchConfig holds batch runner options.
type BatchConfig struct {
	Jobs       int    `json:"jobs" yaml:"jobs"` // Default: 4
	WorkDir    string `json:"workDir" yaml:"workDir"`
	KeepClones bool   `json:"keepClones" yaml:"keepClones"`
	OutputDir  string `json:"outputDir" yaml:"outputDir"`
}

// OutputConfig holds report output options.
type OutputConfig struct {
	Format string `json:"format" yaml:"format"` // Default: "console"
	Top    int    `json:"top" yaml:"top"`       // 0 means unlimited
}

// configBaseName is searched for (with .json and .yaml extensions) in the
// working directory and the home directory when no path is given.
const configBaseName = ".repometrics"

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		History: HistoryConfig{
			Branch: "HEAD",
		},
		Aggregation: AggregationConfig{
			Reference:    "latest",
			Timezone:     "utc",
			WindowDays:   []int{7, 30, 90},
			SkipVendored: false,
		},
		Filters: FilterConfig{
			Include: []string{},
			Exclude: []string{},
		},
		Batch: BatchConfig{
			Jobs:      4,
			OutputDir: "reports",
		},
		Output: OutputConfig{
			Format: "console",
			Top:    0,
		},
	}
}

// LoadConfig loads configuration from a file, merging with defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = findConfigFile()
	}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := unmarshalConfig(path, data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing default config file, searching
// the working directory before the home directory.
func findConfigFile() string {
	dirs := []string{"."}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		dirs = append(dirs, home)
	} else if envHome := os.Getenv("HOME"); envHome != "" {
		dirs = append(dirs, envHome)
	}

	for _, dir := range dirs {
		for _, ext := range []string{".json", ".yaml", ".yml"} {
			p := filepath.Join(dir, configBaseName+ext)
			if _, err := os.Stat(p); err == nil {
				return p
			}
		}
	}
	return ""
}

func unmarshalConfig(path string, data []byte, cfg *Config) error {
	if isYAMLPath(path) {
		return yaml.Unmarshal(data, cfg)
	}
	return json.Unmarshal(data, cfg)
}

// SaveConfig saves configuration to a file, choosing the encoding by the
// file extension.
func SaveConfig(cfg *Config, path string) error {
	var (
		data []byte
		err  error
	)
	if isYAMLPath(path) {
		data, err = yaml.Marshal(cfg)
	} else {
		data, err = json.MarshalIndent(cfg, "", "  ")
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func isYAMLPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
