package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultPath         = "devtools.yaml"
	DefaultDatabaseFile = "tenantrating_v2.db"
	DefaultSampleLimit  = 5
	DefaultMarker       = "<!-- CODE APPENDICES - FULL PAGE EXAMPLES -->"
	// 1-based line of the marker in the project book as last drafted.
	DefaultFallbackLine = 1036
)

type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Inspect  InspectConfig  `yaml:"inspect"`
	Splice   SpliceConfig   `yaml:"splice"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type DatabaseConfig struct {
	DBType           string `yaml:"type"`
	ConnectionString string `yaml:"connection_string,omitempty"`
	File             string `yaml:"file,omitempty"`
}

type InspectConfig struct {
	Limit  int    `yaml:"limit"`
	Format string `yaml:"format"`
}

type SpliceConfig struct {
	Source       string `yaml:"source"`
	Draft        string `yaml:"draft"`
	Destination  string `yaml:"destination,omitempty"`
	Marker       string `yaml:"marker"`
	FallbackLine int    `yaml:"fallback_line"`
	Strict       bool   `yaml:"strict"`
	Backup       bool   `yaml:"backup"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	SeqURL string `yaml:"seq_url,omitempty"`
}

// Default returns the configuration the tools run with when no file is given.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			DBType: "sqlite",
			File:   DefaultDatabaseFile,
		},
		Inspect: InspectConfig{
			Limit:  DefaultSampleLimit,
			Format: "text",
		},
		Splice: SpliceConfig{
			Source:       "ProjectBook.html",
			Draft:        "appendices_draft.html",
			Marker:       DefaultMarker,
			FallbackLine: DefaultFallbackLine,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig reads configPath over the defaults. A missing file is only
// tolerated for DefaultPath.
func LoadConfig(configPath string) (*Config, error) {
	explicit := configPath != ""
	if !explicit {
		configPath = DefaultPath
	}

	cfg := Default()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.DBType {
	case "sqlite", "mysql", "postgres":
	default:
		return fmt.Errorf("unsupported Database type: %s", c.Database.DBType)
	}
	if c.Inspect.Limit < 0 {
		return errors.New("inspect.limit must not be negative")
	}
	switch c.Inspect.Format {
	case "text", "json":
	default:
		return fmt.Errorf("inspect.format must be text or json, got %q", c.Inspect.Format)
	}
	return c.Splice.Validate()
}

// Validate checks the splice settings after flags have been merged in.
func (s *SpliceConfig) Validate() error {
	if s.Marker == "" {
		return errors.New("splice.marker is required")
	}
	if s.FallbackLine < 1 {
		return errors.New("splice.fallback_line must be at least 1")
	}
	return nil
}

func (d *DatabaseConfig) GetConnectionString() (string, error) {
	switch d.DBType {
	case "postgres", "mysql":
		if d.ConnectionString == "" {
			return "", fmt.Errorf("Connection string is required for %s connection", d.DBType)
		}

		return d.ConnectionString, nil

	case "sqlite":
		if d.File == "" {
			d.File = DefaultDatabaseFile
		}
		return d.File, nil

	default:
		return "", fmt.Errorf("unsupported Database type: %s", d.DBType)
	}
}

// DisplayName is the label printed in the report banner.
func (d *DatabaseConfig) DisplayName() string {
	if d.DBType == "sqlite" {
		if d.File == "" {
			return DefaultDatabaseFile
		}
		return d.File
	}
	return d.DBType
}

// DestinationPath is where the spliced document is written; it defaults
// to rewriting the source in place.
func (s *SpliceConfig) DestinationPath() string {
	if s.Destination != "" {
		return s.Destination
	}
	return s.Source
}
