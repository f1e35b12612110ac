package cli

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/amlstack/advisor/pkg/config"
	"github.com/amlstack/advisor/pkg/logger"
)

// RootCmd assembles the advisor command tree. Every subcommand inherits
// the logging flags and a logger stored on the command context.
func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "advisor",
		Short:         "AML advisory workflow CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// A missing .env file is not an error; explicit environment
			// variables win either way.
			_ = godotenv.Load()
			logLevel, logJSON, err := resolveLogSettings(cmd)
			if err != nil {
				return err
			}
			log := logger.SetupLogger(logLevel, logJSON)
			cmd.SetContext(logger.ContextWithLogger(cmd.Context(), log))
			return nil
		},
	}

	root.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	root.PersistentFlags().Bool("log-json", false, "Emit logs as JSON")

	root.AddCommand(
		AdviseCmd(),
		ChatCmd(),
		SetupCmd(),
	)

	return root
}

// resolveLogSettings merges the logging flags with the loaded
// configuration. An explicitly set flag wins; otherwise the ADVISOR_LOG_*
// settings apply. Config load failures fall back to the flag values so
// the command itself can surface the error with a working logger.
func resolveLogSettings(cmd *cobra.Command) (string, bool, error) {
	logLevel, logJSON, err := logger.GetLoggerConfig(cmd)
	if err != nil {
		return "", false, err
	}
	cfg, err := config.Load()
	if err != nil {
		return logLevel, logJSON, nil
	}
	if !cmd.Flags().Changed("log-level") {
		logLevel = cfg.Log.Level
	}
	if !cmd.Flags().Changed("log-json") {
		logJSON = cfg.Log.JSON
	}
	return logLevel, logJSON, nil
}
