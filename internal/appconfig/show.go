package appconfig

import (
	"fmt"
	"io"

	"github.com/k0kubun/pp"
)

// ShowConfig prints the current configuration summary. With debug set the
// full struct is dumped as well.
func ShowConfig(out io.Writer, file string, cfg *Config, fallback Config) {
	if file == "" {
		fmt.Fprintln(out, "No config file loaded (using defaults).")
	} else {
		fmt.Fprintf(out, "Config file: %s\n\n", file)
	}

	c := fallback
	if cfg != nil {
		c = *cfg
	}

	fmt.Fprintln(out, "Current configuration:")
	fmt.Fprintf(out, "  Input:           %s\n", c.Input)
	fmt.Fprintf(out, "  RSRP Dir:        %s\n", c.RSRPDir)
	fmt.Fprintf(out, "  RSRP Runs:       %d\n", c.RSRPRuns)
	fmt.Fprintf(out, "  HTML Output:     %s\n", c.HTMLOutput)
	fmt.Fprintf(out, "  Title:           %s\n", c.Title)
	fmt.Fprintf(out, "  Log File:        %s\n", displayOr(c.LogFilePath(), "(stderr)"))
	fmt.Fprintf(out, "  Log Level:       %s\n", c.LogLevel)
	fmt.Fprintf(out, "  Debug:           %v\n", c.Debug)
	fmt.Fprintf(out, "  Cache Size:      %d\n", c.CacheSize)
	fmt.Fprintf(out, "  No Color:        %v\n", c.NoColor)

	if c.Debug {
		fmt.Fprintln(out)
		pp.Fprintln(out, c)
	}
}

func displayOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
