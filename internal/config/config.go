// =============================================================================
// XLSX Record Reader - Configuration Module
// =============================================================================
//
// This module loads the main application configuration (config.yaml).
//
// The loading pipeline is:
//   read file -> parse YAML -> apply defaults -> validate
//
// Validation reports every problem at once rather than stopping at the first,
// so a broken config file can be fixed in a single edit.
//
// EXAMPLE:
//
//   input_dir: ./input
//   output_dir: ./output
//   report_format: yaml
//   report_name_format: "{book}_{timestamp}_{uuid}"
//   sheets:
//     Roles:
//       header_row: 2
//       first_data_row: 3
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
// This is loaded from the main config.yaml file.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is scanned for workbooks when no files are given on the
	// command line.
	// Default: "./input"
	InputDir string `yaml:"input_dir"`

	// OutputDir receives one report per workbook.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// InputArchiveDir receives workbooks that were read without any error,
	// when ArchiveOnSuccess is set.
	// Default: "./input_archive"
	InputArchiveDir string `yaml:"input_archive_dir"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogFile, when set, receives a copy of the log output and is rotated.
	// Default: "" (console only)
	LogFile string `yaml:"log_file"`

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// LogFormat selects the log line format.
	// Valid values: "text", "json"
	// Default: "text"
	LogFormat string `yaml:"log_format"`

	// LogMaxSizeMB is the size at which the log file is rotated.
	// Default: 10
	LogMaxSizeMB int `yaml:"log_max_size_mb"`

	// LogMaxBackups is the number of rotated log files to keep. 0 keeps all.
	LogMaxBackups int `yaml:"log_max_backups"`

	// LogMaxAgeDays is the age after which rotated log files are removed.
	// 0 keeps them forever.
	LogMaxAgeDays int `yaml:"log_max_age_days"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// ReportFormat is the encoding of the per-workbook report.
	// Valid values: "yaml", "json", "xml"
	// Default: "yaml"
	ReportFormat string `yaml:"report_format"`

	// ReportNameFormat defines the report file name, without extension.
	// Placeholders:
	//   {uuid}      - A random UUID
	//   {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
	//   {book}      - Input file name without extension
	//
	// Default: "{book}_{timestamp}"
	ReportNameFormat string `yaml:"report_name_format"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// MaxConcurrency is the maximum number of workbooks read at once.
	// Set to 1 for sequential processing.
	// Default: 4
	MaxConcurrency int `yaml:"max_concurrency"`

	// ArchiveOnSuccess moves fully valid workbooks to InputArchiveDir.
	// Default: false
	ArchiveOnSuccess bool `yaml:"archive_on_success"`

	// ArchiveDateSubdirs files archived workbooks under YYYY/MM/DD
	// subdirectories of InputArchiveDir.
	// Default: false
	ArchiveDateSubdirs bool `yaml:"archive_date_subdirs"`

	// Sheets moves the header row and first data row of individual sheets,
	// keyed by sheet name.
	Sheets map[string]SheetOverride `yaml:"sheets"`
}

// SheetOverride moves the rows of one sheet. Zero keeps the built-in value.
type SheetOverride struct {
	HeaderRow    int `yaml:"header_row"`
	FirstDataRow int `yaml:"first_data_row"`
}

// Valid values for the enumerated settings.
var (
	LogLevels     = []string{"debug", "info", "warn", "error"}
	LogFormats    = []string{"text", "json"}
	ReportFormats = []string{"yaml", "json", "xml"}
)

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Default returns a configuration with every default applied.
func Default() *MainConfig {
	var config MainConfig
	applyMainConfigDefaults(&config)
	return &config
}

// LoadMainConfig loads the main configuration from a YAML file.
//
// PARAMETERS:
//   - configPath: The path to the main configuration file.
//
// RETURNS:
//   - A pointer to the MainConfig struct.
//   - An error if the file cannot be read, parsed or validated.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParseMainConfig(data)
}

// LoadMainConfigOrDefault behaves like LoadMainConfig, except that a missing
// file yields the defaults. found reports whether the file existed.
func LoadMainConfigOrDefault(configPath string) (config *MainConfig, found bool, err error) {
	config, err = LoadMainConfig(configPath)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), false, nil
	}
	if err != nil {
		return nil, true, err
	}
	return config, true, nil
}

// ParseMainConfig parses, defaults and validates YAML configuration data.
func ParseMainConfig(data []byte) (*MainConfig, error) {
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
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.LogFormat == "" {
		config.LogFormat = "text"
	}
	if config.LogMaxSizeMB == 0 {
		config.LogMaxSizeMB = 10
	}
	if config.ReportFormat == "" {
		config.ReportFormat = "yaml"
	}
	if config.ReportNameFormat == "" {
		config.ReportNameFormat = "{book}_{timestamp}"
	}
	if config.MaxConcurrency == 0 {
		config.MaxConcurrency = 4
	}

	config.LogLevel = strings.ToLower(config.LogLevel)
	config.LogFormat = strings.ToLower(config.LogFormat)
	config.ReportFormat = strings.ToLower(config.ReportFormat)
}

// validateMainConfig checks every setting and returns all problems found.
func validateMainConfig(config *MainConfig) error {
	var result *multierror.Error

	if !slices.Contains(LogLevels, config.LogLevel) {
		result = multierror.Append(result, fmt.Errorf("log_level %q must be one of %s", config.LogLevel, strings.Join(LogLevels, ", ")))
	}
	if !slices.Contains(LogFormats, config.LogFormat) {
		result = multierror.Append(result, fmt.Errorf("log_format %q must be one of %s", config.LogFormat, strings.Join(LogFormats, ", ")))
	}
	if !slices.Contains(ReportFormats, config.ReportFormat) {
		result = multierror.Append(result, fmt.Errorf("report_format %q must be one of %s", config.ReportFormat, strings.Join(ReportFormats, ", ")))
	}
	if strings.ContainsAny(config.ReportNameFormat, `/\`) {
		result = multierror.Append(result, fmt.Errorf("report_name_format %q must not contain path separators", config.ReportNameFormat))
	}
	if config.MaxConcurrency < 1 {
		result = multierror.Append(result, fmt.Errorf("max_concurrency must be at least 1, got %d", config.MaxConcurrency))
	}
	if config.LogMaxSizeMB < 0 || config.LogMaxBackups < 0 || config.LogMaxAgeDays < 0 {
		result = multierror.Append(result, errors.New("log rotation settings must not be negative"))
	}

	for name, o := range config.Sheets {
		if o.HeaderRow < 0 {
			result = multierror.Append(result, fmt.Errorf("sheets.%s.header_row must not be negative, got %d", name, o.HeaderRow))
		}
		if o.FirstDataRow < 0 {
			result = multierror.Append(result, fmt.Errorf("sheets.%s.first_data_row must not be negative, got %d", name, o.FirstDataRow))
		}
	}

	return result.ErrorOrNil()
}
