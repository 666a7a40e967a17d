package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the cursor and the size of the history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.open()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "cursor:  %s\n", s.log.Cursor())
			fmt.Fprintf(out, "head:    %s\n", s.log.Head().PrettyPrint())
			fmt.Fprintf(out, "commits: %d\n", s.log.Len())
			if last := s.log.Last(); last.ID != s.log.Cursor() {
				fmt.Fprintf(out, "latest:  %s\n", last.PrettyPrint())
			}
			return nil
		},
	}
}
