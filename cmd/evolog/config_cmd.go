package main

import (
	"errors"
	"fmt"

	"evolog/internal/config"
	"evolog/internal/repo"

	"github.com/spf13/cobra"
)

func newConfigCmd(g *globalFlags) *cobra.Command {
	var cfgGlobal bool
	setCmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a config key (repo-level by default, or --global)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, val := args[0], args[1]

			if cfgGlobal {
				return config.SetGlobalConfigValue(key, val)
			}
			rp, err := repo.FindRepoRoot(g.dir)
			if err != nil {
				// fallback to global
				return config.SetGlobalConfigValue(key, val)
			}
			return config.SetRepoConfigValue(rp, key, val)
		},
	}
	setCmd.Flags().BoolVar(&cfgGlobal, "global", false, "Set global config instead of repo-level")

	getCmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Get a config value (repo-level overrides global)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			rp, err := repo.FindRepoRoot(g.dir)
			if err != nil {
				rp = ""
			}
			val, err := config.GetConfigValue(rp, key)
			if errors.Is(err, config.ErrNoValue) {
				fmt.Fprintf(cmd.OutOrStdout(), "No value found for key: %s\n", key)
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), val)
			return nil
		},
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage evolog configuration",
	}
	configCmd.AddCommand(setCmd, getCmd)
	return configCmd
}
