// =============================================================================
// Legacy Payment Converter - Configuration Module
// =============================================================================
//
// This module is responsible for loading and managing the application
// configuration (config.yaml).
//
// CONFIGURATION FILE:
//   A single YAML document controls directories, logging, output naming,
//   concurrency, report generation and the HTTP listener. Every key is
//   optional; unset keys take the defaults below. A missing file is not an
//   error: the defaults alone describe a working setup.
//
// FORMAT MATCHING:
//   input_patterns maps a source format name ("mt103", "nacha") to a list of
//   glob patterns. An input file is converted with the first format whose
//   patterns match its base name.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/iso20022-converter/internal/types"
)

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is scanned for legacy files to convert.
	// Default: "./input"
	InputDir string `yaml:"input_dir"`

	// OutputDir receives the generated XML, reports and run logs.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// InputArchiveDir receives source files after a successful conversion.
	// Default: "./input_archive"
	InputArchiveDir string `yaml:"input_archive_dir"`

	// OutputArchiveDir receives a copy of every generated XML document.
	// Default: "./output_archive"
	OutputArchiveDir string `yaml:"output_archive_dir"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogFile is an additional zap output path. Empty logs to stderr only.
	LogFile string `yaml:"log_file"`

	// LogLevel is one of "debug", "info", "warn", "error".
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// UUIDFormat names output files. Placeholders:
	//   {uuid}      - A random UUID
	//   {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
	//   {original}  - Input file name without extension
	//   {format}    - Source format (mt103, nacha)
	//   {message}   - Target message (pacs.008, pain.001)
	// Default: "{original}_{uuid}.xml"
	UUIDFormat string `yaml:"uuid_format"`

	// WriteJSONReport writes <name>.report.json next to the XML.
	// Default: true
	WriteJSONReport *bool `yaml:"write_json_report"`

	// WriteXLSXReport writes <name>.report.xlsx next to the XML.
	// Default: true
	WriteXLSXReport *bool `yaml:"write_xlsx_report"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// MaxConcurrency bounds the number of files converted at once.
	// Default: 4
	MaxConcurrency int `yaml:"max_concurrency"`

	// ContinueOnError keeps a document whose soft validation failed. When
	// false such a file is reported as failed and nothing is written.
	// Default: true
	ContinueOnError *bool `yaml:"continue_on_error"`

	// ArchiveOnSuccess moves converted inputs to InputArchiveDir and copies
	// outputs to OutputArchiveDir.
	// Default: true
	ArchiveOnSuccess *bool `yaml:"archive_on_success"`

	// InputPatterns maps a format name to the globs that select its files.
	// Default: mt103: ["*.mt103", "*.fin", "*.txt"], nacha: ["*.ach", "*.nacha"]
	InputPatterns map[string][]string `yaml:"input_patterns"`

	// =========================================================================
	// SERVER SETTINGS
	// =========================================================================

	// ServerAddr is the listen address of the serve command.
	// Default: ":8080"
	ServerAddr string `yaml:"server_addr"`
}

// JSONReport reports whether the JSON report is written.
func (c *MainConfig) JSONReport() bool { return boolOr(c.WriteJSONReport, true) }

// XLSXReport reports whether the workbook report is written.
func (c *MainConfig) XLSXReport() bool { return boolOr(c.WriteXLSXReport, true) }

// KeepOnInvalid reports whether documents failing soft validation are kept.
func (c *MainConfig) KeepOnInvalid() bool { return boolOr(c.ContinueOnError, true) }

// ArchiveEnabled reports whether converted files are archived.
func (c *MainConfig) ArchiveEnabled() bool { return boolOr(c.ArchiveOnSuccess, true) }

func boolOr(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}

// =============================================================================
// LOADING
// =============================================================================

// Default returns a configuration with every default applied.
func Default() *MainConfig {
	cfg := &MainConfig{}
	applyMainConfigDefaults(cfg)
	return cfg
}

// LoadMainConfig loads the main configuration from a YAML file.
//
// PARAMETERS:
//   - configPath: The path to the main configuration file.
//
// RETURNS:
//   - A pointer to the MainConfig struct. A missing file yields Default().
//   - An error if the file cannot be read, parsed or validated.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	data, err := os.ReadFile(configPath)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config MainConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyMainConfigDefaults(&config)

	if err := validateMainConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// applyMainConfigDefaults sets default values for any unset configuration options.
func applyMainConfigDefaults(config *MainConfig) {
	if config.InputDir == "" {
		config.InputDir = "./input"
	}
	if config.OutputDir == "" {
		config.OutputDir = "./output"
	}
	if config.InputArchiveDir == "" {
		config.InputArchiveDir = "./input_archive"
	}
	if config.OutputArchiveDir == "" {
		config.OutputArchiveDir = "./output_archive"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.UUIDFormat == "" {
		config.UUIDFormat = "{original}_{uuid}.xml"
	}
	if config.MaxConcurrency == 0 {
		config.MaxConcurrency = 4
	}
	if len(config.InputPatterns) == 0 {
		config.InputPatterns = map[string][]string{
			"mt103": {"*.mt103", "*.fin", "*.txt"},
			"nacha": {"*.ach", "*.nacha"},
		}
	}
	if config.ServerAddr == "" {
		config.ServerAddr = ":8080"
	}
}

// validateMainConfig validates the main configuration.
func validateMainConfig(config *MainConfig) error {
	switch strings.ToLower(config.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level %q must be one of debug, info, warn, error", config.LogLevel)
	}

	if config.MaxConcurrency < 1 {
		return fmt.Errorf("max_concurrency must be at least 1, got %d", config.MaxConcurrency)
	}

	for name, patterns := range config.InputPatterns {
		if _, err := types.ParseFormat(name); err != nil {
			return fmt.Errorf("input_patterns: %w", err)
		}
		for _, p := range patterns {
			if _, err := filepath.Match(p, ""); err != nil {
				return fmt.Errorf("input_patterns.%s: bad pattern %q: %w", name, p, err)
			}
		}
	}

	return nil
}

// =============================================================================
// FORMAT MATCHING
// =============================================================================

// MatchFormat returns the format whose input patterns match the base name
// of filePath. Formats are tried in name order so the result is stable.
//
// PARAMETERS:
//   - filePath: The path to the input file.
//
// RETURNS:
//   - The matching format and true, or false if no pattern matches.
func (c *MainConfig) MatchFormat(filePath string) (types.Format, bool) {
	fileName := filepath.Base(filePath)

	names := make([]string, 0, len(c.InputPatterns))
	for name := range c.InputPatterns {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		for _, pattern := range c.InputPatterns[name] {
			matched, err := filepath.Match(pattern, fileName)
			if err != nil || !matched {
				continue
			}
			format, err := types.ParseFormat(name)
			if err != nil {
				continue
			}
			return format, true
		}
	}

	return 0, false
}

// Patterns returns every configured glob, deduplicated and sorted.
func (c *MainConfig) Patterns() []string {
	seen := map[string]bool{}
	var out []string
	for _, patterns := range c.InputPatterns {
		for _, p := range patterns {
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		}
	}
	sort.Strings(out)
	return out
}
