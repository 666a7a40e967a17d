package main

import (
	"fmt"
	"os"

	"evolog/internal/config"
	"evolog/internal/evolution"
	"evolog/internal/logging"
	"evolog/internal/repo"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type globalFlags struct {
	dir     string
	verbose bool
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	rootCmd := &cobra.Command{
		Use:   "evolog",
		Short: "Evolog - content-addressed edit history for parametric documents",
		Long: `Evolog records every edit of a design document as a hash-linked commit.
A cursor names the current commit; checkout moves it without touching history,
and cherry-pick replays an old edit on top of the cursor.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&g.dir, "dir", "C", ".", "Run as if started in this directory")
	rootCmd.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "Log at debug level")

	rootCmd.AddCommand(
		newInitCmd(g),
		newAppendCmd(g),
		newCheckoutCmd(g),
		newCherryPickCmd(g),
		newLogCmd(g),
		newStatusCmd(g),
		newVerifyCmd(g),
		newExportCmd(g),
		newReplayCmd(g),
		newConfigCmd(g),
	)
	return rootCmd
}

// logger builds the logger for a repo, honoring log.level and --verbose
func (g *globalFlags) logger(repoPath string) (*logrus.Entry, error) {
	settings, err := config.Load(repoPath)
	if err != nil {
		return nil, err
	}
	level := settings.LogLevel
	if g.verbose {
		level = logrus.DebugLevel.String()
	}
	return logging.New(os.Stderr, level)
}

// session is an open repo plus its evolution log
type session struct {
	root string
	log  *evolution.EvolutionLog
}

func (g *globalFlags) open() (*session, error) {
	rp, err := repo.FindRepoRoot(g.dir)
	if err != nil {
		return nil, fmt.Errorf("not inside an evolog session (run 'evolog init'): %w", err)
	}
	logger, err := g.logger(rp)
	if err != nil {
		return nil, err
	}
	e, err := repo.LoadLog(rp, logger)
	if err != nil {
		return nil, err
	}
	return &session{root: rp, log: e}, nil
}

func (s *session) save() error {
	return repo.SaveLog(s.root, s.log)
}

// Execute runs the CLI
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
