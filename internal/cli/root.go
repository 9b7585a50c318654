package cli

import (
	"github.com/spf13/cobra"

	"github.com/logimind/advisor/internal/config"
	"github.com/logimind/advisor/internal/logging"
)

var (
	cfgFile  string
	logLevel string

	// loaded at init time
	paths config.Paths
	log   *logging.Logger
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "advisor",
		Short: "Conversational risk assessment for logistics shipments",
		Long:  "Advisor is a conversational assistant that answers questions about shipment risk assessments, exports reports, runs what-if scenarios and recommends mitigations.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			paths, err = config.ResolvePaths()
			if err != nil {
				return err
			}
			if cfgFile != "" {
				paths.Config = cfgFile
			}
			level := logLevel
			if level == "" {
				level = "info"
			}
			log = logging.New(nil, level)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.advisor/config.yaml)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error, fatal, silent)")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newAskCmd())
	cmd.AddCommand(newChatCmd())
	cmd.AddCommand(newConfigCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}
