package main

import (
	"fmt"
	"os"

	"evolog/internal/config"
	"evolog/internal/repo"

	"github.com/spf13/cobra"
)

func newInitCmd(g *globalFlags) *cobra.Command {
	var nonce string
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Start a new evolog session",
		Long: `Creates a .evolog directory holding a fresh log whose root commit is seeded
with a random nonce, or with --nonce / the root.nonce config key when set.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := g.dir
			if len(args) > 0 {
				path = args[0]
			}
			if err := os.MkdirAll(path, 0755); err != nil {
				return err
			}
			if nonce == "" {
				settings, err := config.Load(path)
				if err != nil {
					return err
				}
				nonce = settings.RootNonce
			}
			logger, err := g.logger(path)
			if err != nil {
				return err
			}
			e, err := repo.InitRepo(path, nonce, logger)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized evolog session at %s\n", path)
			fmt.Fprintln(cmd.OutOrStdout(), e.Head().PrettyPrint())
			return nil
		},
	}
	initCmd.Flags().StringVar(&nonce, "nonce", "", "Seed the root commit with this nonce")
	return initCmd
}
