package main

import (
	"errors"
	"fmt"

	"evolog/internal/repo"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

func newVerifyCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Recompute every fingerprint and check the chain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rp, err := repo.FindRepoRoot(g.dir)
			if err != nil {
				return err
			}
			logger, err := g.logger(rp)
			if err != nil {
				return err
			}
			// LoadLog verifies while decoding
			e, err := repo.LoadLog(rp, logger)
			if err != nil {
				found := violations(err)
				for _, verr := range found {
					fmt.Fprintln(cmd.ErrOrStderr(), verr)
				}
				return fmt.Errorf("session failed verification with %d violation(s)", len(found))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "OK: %d commits, cursor %s\n", e.Len(), shortID(e.Cursor()))
			return nil
		},
	}
}

// violations splits the first multierr group found in err's wrap chain
func violations(err error) []error {
	for cur := err; cur != nil; cur = errors.Unwrap(cur) {
		if errs := multierr.Errors(cur); len(errs) > 1 {
			return errs
		}
	}
	return []error{err}
}
