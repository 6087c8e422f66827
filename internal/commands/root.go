// internal/commands/root.go
// Package commands holds the fieldreport cobra command tree.
package commands

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/mwiater/fieldreport/internal/appconfig"
	"github.com/mwiater/fieldreport/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile       string
	currentConfig *appconfig.Config
	appVersion    = "dev"
	appCommit     = "none"
	appDate       = "unknown"
)

// flagKeys maps persistent flag names onto their viper keys.
var flagKeys = map[string]string{
	"input":       "input",
	"rsrp-dir":    "rsrpDir",
	"rsrp-runs":   "rsrpRuns",
	"html-output": "htmlOutput",
	"title":       "title",
	"log-file":    "logFile",
	"log-level":   "logLevel",
	"debug":       "debug",
	"cache-size":  "cacheSize",
	"no-color":    "noColor",
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "fieldreport",
	Short: "fieldreport turns field-test DUT vs REF results into verdict reports",
	Long: `fieldreport reads a field-test results document comparing a device under
test against a reference device, classifies every comparison into a verdict
tier and renders an HTML report, record dumps or a terminal summary.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := appconfig.LoadDotEnv(".env"); err != nil {
			return err
		}
		if err := ensureConfigLoaded(cmd); err != nil {
			return err
		}

		for _, name := range []string{"debug", "no-color"} {
			if !cmd.Flags().Changed(name) {
				_ = cmd.Flags().Set(name, strconv.FormatBool(viper.GetBool(flagKeys[name])))
			}
		}

		var cfg appconfig.Config
		if err := viper.Unmarshal(&cfg); err != nil {
			return fmt.Errorf("unmarshal config: %w", err)
		}
		cfg.ConfigPath = viper.ConfigFileUsed()
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		currentConfig = &cfg

		level := cfg.LogLevel
		if cfg.Debug {
			level = "debug"
		}
		if err := logging.Init(cfg.LogFilePath(), level); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", appVersion, appCommit, appDate)

	defer logging.Close()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	appconfig.Configure(viper.GetViper())

	d := appconfig.Defaults()
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", appconfig.DefaultConfigPath, "config file (e.g., config/config.json)")
	flags.StringP("input", "i", d.Input, "results JSON document")
	flags.String("rsrp-dir", d.RSRPDir, "directory holding Run<N>_PC2_PC3_RSRP_Analysis.csv files")
	flags.Int("rsrp-runs", d.RSRPRuns, "number of RSRP runs to load")
	flags.String("html-output", d.HTMLOutput, "destination of the HTML report")
	flags.String("title", d.Title, "report title")
	flags.String("log-file", "", "path to the log file")
	flags.String("log-level", d.LogLevel, "log level (debug, info, warn, error)")
	flags.Bool("debug", false, "enable debug logging")
	flags.Int("cache-size", d.CacheSize, "number of parsed documents kept in the extraction cache")
	flags.Bool("no-color", false, "disable coloured terminal output")

	for name, key := range flagKeys {
		_ = viper.BindPFlag(key, flags.Lookup(name))
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
}

// ensureConfigLoaded reads the config file. Only the default path may be
// missing.
func ensureConfigLoaded(cmd *cobra.Command) error {
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		explicit := cmd.Flags().Changed("config") || cfgFile != appconfig.DefaultConfigPath
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return nil
		}
		return fmt.Errorf("failed to load config: %w", err)
	}
	return nil
}

// GetConfig returns the loaded application configuration for other packages.
func GetConfig() *appconfig.Config {
	return currentConfig
}

// config returns the loaded configuration. Without the root pre-run hook it
// reads the default config file, then falls back to the defaults.
func config() appconfig.Config {
	if currentConfig != nil {
		return *currentConfig
	}
	cfg, err := appconfig.Load("")
	if err != nil {
		logging.GetLogger().WithError(err).Warn("using default configuration")
		return appconfig.Defaults()
	}
	return cfg
}

// SetVersionInfo allows the main package to inject build-time variables.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}
