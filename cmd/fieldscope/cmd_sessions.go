package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/chimera-data/fieldscope/internal/store"
)

var (
	sessionsCmd = &cobra.Command{
		Use:   "sessions",
		Short: "Manage stored profiling sessions",
	}

	sessionsListCmd = &cobra.Command{
		Use:   "list",
		Short: "List stored sessions, newest first",
		Args:  cobra.NoArgs,
		RunE:  runSessionsList,
	}

	sessionsShowCmd = &cobra.Command{
		Use:   "show <session-id>",
		Short: "Print a stored session's profile as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  runSessionsShow,
	}

	sessionsRmCmd = &cobra.Command{
		Use:   "rm <session-id>",
		Short: "Delete a stored session",
		Args:  cobra.ExactArgs(1),
		RunE:  runSessionsRm,
	}
)

func init() {
	sessionsCmd.AddCommand(sessionsListCmd, sessionsShowCmd, sessionsRmCmd)
	rootCmd.AddCommand(sessionsCmd)
}

func openStore() (*store.Store, error) {
	return store.Open(cli.cfg.StorePath)
}

func runSessionsList(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	sessions, err := s.List(cmd.Context())
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Println("no stored sessions")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCREATED\tNAME\tSOURCE\tRECORDS\tFIELDS")
	for _, sess := range sessions {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\n",
			sess.ID, sess.CreatedAt.Format("2006-01-02 15:04:05"),
			sess.Name, sess.Source, sess.Records, sess.Fields)
	}
	return w.Flush()
}

func runSessionsShow(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	_, profile, err := s.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return writeProfile(profile, "")
}

func runSessionsRm(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.Delete(cmd.Context(), args[0]); err != nil {
		return err
	}
	cli.logger.Info("session deleted", "id", args[0])
	return nil
}
