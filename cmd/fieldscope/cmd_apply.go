package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chimera-data/fieldscope"
	"github.com/chimera-data/fieldscope/internal/pgschema"
)

var (
	applyTable  string
	applyDryRun bool

	applyCmd = &cobra.Command{
		Use:   "apply <session-id | profile.json>",
		Short: "Create the recommended table for a profile in Postgres",
		Args:  cobra.ExactArgs(1),
		RunE:  runApply,
	}
)

func init() {
	applyCmd.Flags().StringVarP(&applyTable, "table", "t", "profiled_records", "target table name")
	applyCmd.Flags().BoolVar(&applyDryRun, "dry-run", false, "print the DDL without executing it")
	rootCmd.AddCommand(applyCmd)
}

func runApply(cmd *cobra.Command, args []string) error {
	profile, err := resolveProfile(cmd, args[0])
	if err != nil {
		return err
	}

	rec := fieldscope.DeriveSchema(profile)
	if applyDryRun {
		ddl, err := pgschema.DDL(applyTable, rec)
		if err != nil {
			return err
		}
		fmt.Println(ddl + ";")
		return nil
	}

	if cli.cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required unless --dry-run is set")
	}
	if err := pgschema.Apply(cmd.Context(), cli.cfg.DatabaseURL, applyTable, rec); err != nil {
		return err
	}
	cli.logger.Info("schema applied", "table", applyTable, "columns", len(rec.Fields))
	return nil
}

// resolveProfile loads a profile either from the session store or from a
// JSON file, keyed on the session ID prefix.
func resolveProfile(cmd *cobra.Command, ref string) (*fieldscope.Profile, error) {
	if strings.HasPrefix(ref, "sess-") {
		s, err := openStore()
		if err != nil {
			return nil, err
		}
		defer s.Close()

		_, profile, err := s.Get(cmd.Context(), ref)
		return profile, err
	}
	return loadProfile(ref)
}
