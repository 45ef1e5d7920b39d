// Package config loads run settings from an optional config file, a .env file and
// SALES_REPORT_* environment variables. Environment variables take precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"sales-report/internal/model"
	"sales-report/pkg/utils"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "SALES_REPORT"

// field: default value
var defaults = map[string]interface{}{
	"input.path":           "sales_data.csv",
	"input.type":           model.SourceAuto,
	"input.table":          "sales",
	"input.sheet":          "",
	"output.dir":           "report",
	"log.level":            "info",
	"server.address":       ":8080",
	"server.read-timeout":  "10s",
	"server.write-timeout": "30s",
	"server.run-timeout":   "25s",
}

var validSourceTypes = []string{
	model.SourceAuto, model.SourceCSV, model.SourceTSV,
	model.SourceJSON, model.SourceXLSX, model.SourceSQLite,
}

var validLogLevels = []string{"debug", "info", "warn", "error"}

// Config represents the application's configuration structure.
type Config struct {
	Input  InputConfig  `mapstructure:"input"`
	Output OutputConfig `mapstructure:"output"`
	Log    LogConfig    `mapstructure:"log"`
	Server ServerConfig `mapstructure:"server"`

	// problems found while loading, reported by Validate
	loadErrs []string
}

type InputConfig struct {
	Path  string `mapstructure:"path"`
	Type  string `mapstructure:"type"`
	Table string `mapstructure:"table"`
	Sheet string `mapstructure:"sheet"`
}

type OutputConfig struct {
	Dir string `mapstructure:"dir"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type ServerConfig struct {
	Address      string        `mapstructure:"address"`
	ReadTimeout  time.Duration `mapstructure:"-"`
	WriteTimeout time.Duration `mapstructure:"-"`
	RunTimeout   time.Duration `mapstructure:"-"`
}

// Load reads configuration. configFile may be empty; a missing .env is not an error.
func Load(configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("could not load .env: %w", err)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("could not read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("could not unmarshal config: %w", err)
	}

	cfg.Server.ReadTimeout = cfg.duration(v, "server.read-timeout", 10*time.Second)
	cfg.Server.WriteTimeout = cfg.duration(v, "server.write-timeout", 30*time.Second)
	cfg.Server.RunTimeout = cfg.duration(v, "server.run-timeout", 25*time.Second)

	return &cfg, nil
}

func (c *Config) duration(v *viper.Viper, key string, def time.Duration) time.Duration {
	d, err := utils.ParseDuration(v.GetString(key), def)
	if err != nil {
		c.loadErrs = append(c.loadErrs, fmt.Sprintf("%s: %v", key, err))
	}
	return d
}

// Validate validates the configuration and returns every problem in one error
func (c *Config) Validate() error {
	errs := append([]string(nil), c.loadErrs...)

	if strings.TrimSpace(c.Input.Path) == "" {
		errs = append(errs, "input path cannot be empty")
	}
	if !contains(validSourceTypes, strings.ToLower(c.Input.Type)) {
		errs = append(errs, fmt.Sprintf("invalid input type '%s': must be one of %v", c.Input.Type, validSourceTypes))
	}
	if strings.TrimSpace(c.Output.Dir) == "" {
		errs = append(errs, "output directory cannot be empty")
	}
	if !contains(validLogLevels, strings.ToLower(c.Log.Level)) {
		errs = append(errs, fmt.Sprintf("invalid log level '%s': must be one of %v", c.Log.Level, validLogLevels))
	}
	if c.Server.Address == "" {
		errs = append(errs, "server address cannot be empty")
	}
	if c.Server.RunTimeout < time.Second {
		errs = append(errs, fmt.Sprintf("invalid run timeout %v: must be at least 1 second", c.Server.RunTimeout))
	}
	// a run must finish inside the write deadline
	if c.Server.WriteTimeout > 0 && c.Server.RunTimeout > c.Server.WriteTimeout {
		errs = append(errs, fmt.Sprintf("invalid run timeout %v: must not exceed write timeout %v", c.Server.RunTimeout, c.Server.WriteTimeout))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

// JobSpec builds the report job described by the configuration
func (c *Config) JobSpec() model.ReportJobSpec {
	return model.ReportJobSpec{
		Source: model.Source{
			Type:  c.Input.Type,
			Path:  c.Input.Path,
			Table: c.Input.Table,
			Sheet: c.Input.Sheet,
		},
		Export: model.Export{Dir: c.Output.Dir},
	}
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
