// Command skillforge manages skill and solution draft documents: creating,
// mutating, validating, and importing them against a configurable entity
// store.
package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/craftlab/skillforge/pkg/logger"
	"github.com/craftlab/skillforge/pkg/presenter"
)

var rootCmd = &cobra.Command{
	Use:   "skillforge",
	Short: "Author and validate AI-agent skill and solution drafts",
	Long: `skillforge manages draft skill and solution documents for an AI-agent
platform: problem statement, intents, tools, policies, triggers, and
multi-skill topologies with grants and handoffs.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logger.SetLogLevel(viper.GetString("log_level")); err != nil {
			return err
		}
		logger.SetLogFormat(viper.GetString("log_format"))
		presenter.SetQuiet(viper.GetBool("quiet"))
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	viper.SetEnvPrefix("SKILLFORGE")
	viper.AutomaticEnv()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME/.skillforge")
	viper.AddConfigPath(".")
	_ = viper.ReadInConfig()

	flags := rootCmd.PersistentFlags()
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "text", "log format (text, json)")
	flags.String("store", "", "store backend (json, sqlite)")
	flags.String("base-path", "", "storage root for entity documents")
	flags.Bool("quiet", false, "suppress informational output")

	_ = viper.BindPFlag("log_level", flags.Lookup("log-level"))
	_ = viper.BindPFlag("log_format", flags.Lookup("log-format"))
	_ = viper.BindPFlag("store_type", flags.Lookup("store"))
	_ = viper.BindPFlag("base_path", flags.Lookup("base-path"))
	_ = viper.BindPFlag("quiet", flags.Lookup("quiet"))

	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_format", "text")

	rootCmd.AddCommand(
		createCmd,
		listCmd,
		showCmd,
		updateCmd,
		messageCmd,
		validateCmd,
		importCmd,
		deleteCmd,
		versionCmd,
	)
}

func main() {
	ctx := context.Background()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		presenter.Error(err, "command failed")
		os.Exit(1)
	}
}
