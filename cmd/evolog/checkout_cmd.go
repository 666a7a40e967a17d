package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCheckoutCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "checkout <commit>",
		Short: "Move the cursor to an existing commit",
		Long:  `History is not changed. New edits after a checkout are chained from the checked-out commit.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.open()
			if err != nil {
				return err
			}
			target, err := s.log.Resolve(args[0])
			if err != nil {
				return err
			}
			if err := s.log.Checkout(target); err != nil {
				return err
			}
			if err := s.save(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cursor at %s\n", s.log.Head().PrettyPrint())
			return nil
		},
	}
}
