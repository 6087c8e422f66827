// internal/appconfig/appconfig.go
// Package appconfig manages loading and interpreting application configuration.
package appconfig

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const (
	// DefaultConfigPath is the default path to the application's configuration file.
	DefaultConfigPath = "config/config.json"
	// EnvPrefix prefixes every environment override, e.g. FIELDREPORT_INPUT.
	EnvPrefix = "FIELDREPORT"

	defaultInput      = "data/data_analysis_results.json"
	defaultRSRPDir    = "data/rsrp_data"
	defaultRSRPRuns   = 5
	defaultHTMLOutput = "reports/field-report.html"
	defaultTitle      = "Field Test Performance Report"
	defaultLogLevel   = "info"
	defaultCacheSize  = 16
)

// Config represents the top-level application configuration.
type Config struct {
	Input      string `json:"input"`
	RSRPDir    string `json:"rsrpDir"`
	RSRPRuns   int    `json:"rsrpRuns"`
	HTMLOutput string `json:"htmlOutput"`
	Title      string `json:"title"`
	LogFile    string `json:"logFile,omitempty"`
	LogLevel   string `json:"logLevel"`
	Debug      bool   `json:"debug"`
	CacheSize  int    `json:"cacheSize"`
	NoColor    bool   `json:"noColor"`
	ConfigPath string `json:"-"`
}

// Defaults returns the configuration used when nothing overrides it.
func Defaults() Config {
	return Config{
		Input:      defaultInput,
		RSRPDir:    defaultRSRPDir,
		RSRPRuns:   defaultRSRPRuns,
		HTMLOutput: defaultHTMLOutput,
		Title:      defaultTitle,
		LogLevel:   defaultLogLevel,
		CacheSize:  defaultCacheSize,
	}
}

// Configure registers defaults and environment overrides on v.
func Configure(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("input", d.Input)
	v.SetDefault("rsrpDir", d.RSRPDir)
	v.SetDefault("rsrpRuns", d.RSRPRuns)
	v.SetDefault("htmlOutput", d.HTMLOutput)
	v.SetDefault("title", d.Title)
	v.SetDefault("logFile", d.LogFile)
	v.SetDefault("logLevel", d.LogLevel)
	v.SetDefault("debug", d.Debug)
	v.SetDefault("cacheSize", d.CacheSize)
	v.SetDefault("noColor", d.NoColor)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
}

// LoadDotEnv loads every existing env file into the process environment.
// Variables already set take precedence. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("could not load env file %q: %w", path, err)
		}
	}
	return nil
}

// Validate checks values that would otherwise fail later in the run.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Input) == "" {
		return errors.New("input path must not be empty")
	}
	if c.RSRPRuns < 0 {
		return fmt.Errorf("rsrpRuns must not be negative, got %d", c.RSRPRuns)
	}
	if c.CacheSize <= 0 {
		return fmt.Errorf("cacheSize must be positive, got %d", c.CacheSize)
	}
	if level := strings.TrimSpace(c.LogLevel); level != "" {
		if _, err := logrus.ParseLevel(level); err != nil {
			return fmt.Errorf("logLevel: %w", err)
		}
	}
	return nil
}

// LogFilePath returns the path to the application log file. Empty means
// stderr only.
func (c Config) LogFilePath() string {
	return strings.TrimSpace(c.LogFile)
}

// Load reads the configuration at path on top of the defaults and the
// environment. A missing file at the default path is not an error.
func Load(path string) (Config, error) {
	v := viper.New()
	Configure(v)

	if path == "" {
		path = DefaultConfigPath
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		if !errors.Is(err, os.ErrNotExist) || path != DefaultConfigPath {
			return Config{}, fmt.Errorf("could not read config file %q: %w", path, err)
		}
		path = ""
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.ConfigPath = path
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
