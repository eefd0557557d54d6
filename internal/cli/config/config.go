package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/conduit-lang/typegen/internal/typegen/generator"
	"github.com/conduit-lang/typegen/internal/typegen/mapper"
	"github.com/conduit-lang/typegen/internal/typegen/naming"
)

// ConfigNames are the file names searched for, in order
var ConfigNames = []string{"typegen.yml", "typegen.yaml"}

// Config represents the typegen configuration
type Config struct {
	Metadata           string         `mapstructure:"metadata" yaml:"metadata"`
	Output             string         `mapstructure:"output" yaml:"output"`
	Roots              []string       `mapstructure:"roots" yaml:"roots"`
	UntypedPlaceholder string         `mapstructure:"untyped_placeholder" yaml:"untyped_placeholder"`
	FieldCase          string         `mapstructure:"field_case" yaml:"field_case"`
	TypeOverrides      []TypeOverride `mapstructure:"type_overrides" yaml:"type_overrides,omitempty"`
	FieldRenames       []FieldRename  `mapstructure:"field_renames" yaml:"field_renames,omitempty"`
	Log                LogConfig      `mapstructure:"log" yaml:"log"`

	// File is the config file that was read; empty when running on defaults
	File string `mapstructure:"-" yaml:"-"`
}

// TypeOverride maps a source type name to a target type name
type TypeOverride struct {
	Type string `mapstructure:"type" yaml:"type"`
	Name string `mapstructure:"name" yaml:"name"`
}

// FieldRename renames one field of one resource
type FieldRename struct {
	Resource string `mapstructure:"resource" yaml:"resource"`
	Field    string `mapstructure:"field" yaml:"field"`
	Name     string `mapstructure:"name" yaml:"name"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Development bool   `mapstructure:"development" yaml:"development"`
}

// Default returns the configuration used when no file sets a key
func Default() *Config {
	return &Config{
		Metadata:           "metadata.json",
		Output:             "typegen.ts",
		UntypedPlaceholder: mapper.DefaultUntypedPlaceholder,
		FieldCase:          "camel",
		Log:                LogConfig{Level: "warn"},
	}
}

func newViper() *viper.Viper {
	v := viper.New()
	d := Default()

	// Set defaults
	v.SetDefault("metadata", d.Metadata)
	v.SetDefault("output", d.Output)
	v.SetDefault("roots", []string{})
	v.SetDefault("untyped_placeholder", d.UntypedPlaceholder)
	v.SetDefault("field_case", d.FieldCase)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.development", d.Log.Development)

	// Enable environment variable support (TYPEGEN_OUTPUT, TYPEGEN_LOG_LEVEL, ...)
	v.SetEnvPrefix("TYPEGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load loads the configuration from typegen.yml or typegen.yaml, searching the
// working directory and its parents
func Load() (*Config, error) {
	path, err := FindConfigFile()
	if err != nil {
		return load(newViper(), "")
	}
	return LoadFile(path)
}

// LoadFile loads the configuration from path
func LoadFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	return load(v, path)
}

func load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.File = path

	// Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// FindConfigFile looks for a config file in the working directory and its parents
func FindConfigFile() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		for _, name := range ConfigNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}

		// Move up one directory
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return "", fmt.Errorf("no typegen.yml found")
		}
		dir = parent
	}
}

// Save writes cfg as YAML to path
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// MetadataPath returns the metadata path, relative paths resolved against the
// config file's directory
func (c *Config) MetadataPath() string {
	return c.resolve(c.Metadata)
}

// OutputPath returns the output path, relative paths resolved against the config
// file's directory
func (c *Config) OutputPath() string {
	return c.resolve(c.Output)
}

func (c *Config) resolve(path string) string {
	if c.File == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(filepath.Dir(c.File), path)
}

// Namer builds the field namer from field_case and field_renames
func (c *Config) Namer() (*naming.FieldNamer, error) {
	fieldCase, err := naming.ParseCase(c.FieldCase)
	if err != nil {
		return nil, err
	}
	renames := make([]naming.Rename, len(c.FieldRenames))
	for i, r := range c.FieldRenames {
		renames[i] = naming.Rename{Resource: r.Resource, Field: r.Field, Name: r.Name}
	}
	return naming.NewFieldNamer(naming.NewFormatter(fieldCase), renames...), nil
}

// GeneratorConfig converts the configuration for the generator
func (c *Config) GeneratorConfig() (generator.Config, error) {
	namer, err := c.Namer()
	if err != nil {
		return generator.Config{}, err
	}

	overrides := make(map[string]string, len(c.TypeOverrides))
	for _, o := range c.TypeOverrides {
		overrides[o.Type] = o.Name
	}

	return generator.Config{
		Roots:              c.Roots,
		Overrides:          overrides,
		UntypedPlaceholder: c.UntypedPlaceholder,
		Namer:              namer,
	}, nil
}

// ErrNoRoots is returned when no root resource is configured
var ErrNoRoots = errors.New("at least one root resource is required (roots)")

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	if len(cfg.Roots) == 0 {
		return ErrNoRoots
	}
	if cfg.Metadata == "" {
		return fmt.Errorf("metadata must not be empty")
	}
	if _, err := naming.ParseCase(cfg.FieldCase); err != nil {
		return fmt.Errorf("field_case: %w", err)
	}
	for i, o := range cfg.TypeOverrides {
		if o.Type == "" || o.Name == "" {
			return fmt.Errorf("type_overrides[%d] requires both type and name", i)
		}
	}
	for i, r := range cfg.FieldRenames {
		if r.Resource == "" || r.Field == "" || r.Name == "" {
			return fmt.Errorf("field_renames[%d] requires resource, field and name", i)
		}
	}
	return nil
}
