package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/todosync/internal/config"
)

func newConfigCmd(load func() (*config.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as TOML",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			out, err := cfg.Encode()
			if err != nil {
				return err
			}
			if cfg.Path != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "# loaded from %s\n", cfg.Path)
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
}
