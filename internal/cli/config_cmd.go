package cli

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/logimind/advisor/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect advisor configuration",
	}

	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigPathCmd())
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(paths.Config)
			if err != nil {
				log.Warn().Err(err).Msg("config load failed, showing defaults")
				cfg = config.Defaults()
			}
			if cfg.LLM.APIKey != "" {
				cfg.LLM.APIKey = "***"
			}

			out, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			cmd.Print(string(out))
			return nil
		},
	}
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println(paths.Config)
		},
	}
}
