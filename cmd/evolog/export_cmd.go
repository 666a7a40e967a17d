package main

import (
	"fmt"

	"evolog/internal/repo"

	"github.com/spf13/cobra"
)

func newExportCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file>",
		Short: "Write the edits from the root to the cursor as a binary op file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.open()
			if err != nil {
				return err
			}
			n, err := repo.ExportOps(args[0], s.log)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d operations to %s\n", n, args[0])
			return nil
		},
	}
}

func newReplayCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "replay <file>",
		Short: "Append every edit of a binary op file on top of the cursor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.open()
			if err != nil {
				return err
			}
			n, err := repo.ReplayOps(args[0], s.log)
			if err != nil {
				return err
			}
			if err := s.save(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Replayed %d operations, cursor at %s\n", n, shortID(s.log.Cursor()))
			return nil
		},
	}
}
