package main

import (
	"fmt"
	"sort"
	"strings"

	"evolog/internal/commits"

	"github.com/sanity-io/litter"
	"github.com/spf13/cobra"
)

func newLogCmd(g *globalFlags) *cobra.Command {
	var kind string
	var dump, summary bool
	logCmd := &cobra.Command{
		Use:   "log",
		Short: "Show every commit in append order",
		Long: `Lists commits oldest first; the commit at the cursor is marked with '*'.
--kind filters by operation kind glob, e.g. 'New*' or '{NewCircle,NewRectangle}'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.open()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if summary {
				present := s.log.Kinds().ToSlice()
				sort.Slice(present, func(i, j int) bool { return present[i] < present[j] })
				for _, k := range present {
					matched, err := s.log.Filter(k.String())
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "%-22s %d\n", k, len(matched))
				}
				return nil
			}

			var cc []commits.Commit
			if kind == "" {
				cc = s.log.Commits()
			} else if cc, err = s.log.Filter(kind); err != nil {
				return err
			}
			if len(cc) == 0 {
				fmt.Fprintln(out, "No commits match.")
				return nil
			}
			if dump {
				fmt.Fprintln(out, litter.Sdump(cc))
				return nil
			}
			cursor := s.log.Cursor()
			var sb strings.Builder
			for _, c := range cc {
				prefix := "  "
				if c.ID == cursor {
					prefix = "* "
				}
				sb.WriteString(prefix + c.PrettyPrint() + "\n")
			}
			fmt.Fprint(out, sb.String())
			return nil
		},
	}
	logCmd.Flags().StringVar(&kind, "kind", "", "Only show commits whose operation kind matches this glob")
	logCmd.Flags().BoolVar(&dump, "dump", false, "Dump full commit structures")
	logCmd.Flags().BoolVar(&summary, "summary", false, "Count commits per operation kind")
	return logCmd
}
