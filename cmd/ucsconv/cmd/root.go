package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/fung04/ucsconv/pkg/convert"
)

var (
	cfgFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "ucsconv",
	Short: "Convert BIG-IP UCS archives and tmsh configuration to JSON or YAML",
	Long: `ucsconv parses F5 BIG-IP configuration files in the tmsh dialect and
renders them as structured JSON or YAML documents.

It accepts whole UCS backup archives (.ucs) or individual .conf files,
preserves key order, folds repeated keys into lists, and tags object
references so converted documents stay navigable.`,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if debug {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		})))
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "options file (TOML)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadOptions returns the conversion options from the --config file,
// or the defaults when no file is given.
func loadOptions() (convert.Options, error) {
	if cfgFile == "" {
		return convert.DefaultOptions(), nil
	}
	return convert.LoadOptions(cfgFile)
}
