package main

import (
	"fmt"

	"evolog/internal/commits"

	"github.com/spf13/cobra"
)

func newCherryPickCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "cherry-pick <commit>",
		Short: "Replay a commit's edit as a new commit on top of the cursor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.open()
			if err != nil {
				return err
			}
			source, err := s.log.Resolve(args[0])
			if err != nil {
				return err
			}
			if _, err := s.log.CherryPick(source); err != nil {
				return err
			}
			if err := s.save(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cherry-picked %s as %s\n", shortID(source), s.log.Head().PrettyPrint())
			return nil
		},
	}
}

func shortID(id string) string {
	if len(id) > commits.ShortLen {
		return id[:commits.ShortLen]
	}
	return id
}
