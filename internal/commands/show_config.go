package commands

import (
	"github.com/mwiater/fieldreport/internal/appconfig"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// showConfigCmd implements the 'show config' command, which displays the current configuration settings.
var showConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show config settings",
	Long:  `Show config settings ensuring that the JSON configs are loaded properly and overridden by flags and environment variables accordingly.`,
	Run: func(cmd *cobra.Command, args []string) {
		fallback := appconfig.Config{
			Input:      viper.GetString("input"),
			RSRPDir:    viper.GetString("rsrpDir"),
			RSRPRuns:   viper.GetInt("rsrpRuns"),
			HTMLOutput: viper.GetString("htmlOutput"),
			Title:      viper.GetString("title"),
			LogFile:    viper.GetString("logFile"),
			LogLevel:   viper.GetString("logLevel"),
			Debug:      viper.GetBool("debug"),
			CacheSize:  viper.GetInt("cacheSize"),
			NoColor:    viper.GetBool("noColor"),
		}
		appconfig.ShowConfig(cmd.OutOrStdout(), viper.ConfigFileUsed(), GetConfig(), fallback)
	},
}

func init() {
	showCmd.AddCommand(showConfigCmd)
}
