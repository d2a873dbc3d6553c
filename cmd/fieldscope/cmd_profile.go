package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/chimera-data/fieldscope"
	"github.com/chimera-data/fieldscope/internal/reader"
	"github.com/chimera-data/fieldscope/internal/store"
)

var (
	profileOut     string
	profileSave    bool
	profileName    string
	profileWorkers int
	profileDict    string

	profileCmd = &cobra.Command{
		Use:   "profile [file...]",
		Short: "Profile NDJSON files (or stdin) and emit the profile as JSON",
		Args:  cobra.ArbitraryArgs,
		RunE:  runProfile,
	}
)

func init() {
	profileCmd.Flags().StringVarP(&profileOut, "out", "o", "", "write the profile to a file instead of stdout")
	profileCmd.Flags().BoolVar(&profileSave, "save", false, "store the profile in the session database")
	profileCmd.Flags().StringVar(&profileName, "name", "", "session name used with --save")
	profileCmd.Flags().IntVar(&profileWorkers, "workers", 0, "shard count (defaults to FIELDSCOPE_WORKERS)")
	profileCmd.Flags().StringVar(&profileDict, "dictionary", "", "field dictionary JSON (defaults to FIELDSCOPE_DICTIONARY)")
	rootCmd.AddCommand(profileCmd)
}

func runProfile(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if profileDict != "" {
		cli.cfg.DictionaryPath = profileDict
	}
	workers := cli.cfg.Workers
	if profileWorkers > 0 {
		workers = profileWorkers
	}
	opts, err := cli.profileOptions()
	if err != nil {
		return err
	}

	rd := reader.New(cli.logger)
	records := make(chan any, 256)

	started := time.Now()
	var (
		profile *fieldscope.Profile
		stats   reader.Stats
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if len(args) == 0 {
			defer close(records)
			stats, err = rd.Stream(gctx, os.Stdin, records)
		} else {
			stats, err = rd.StreamFiles(gctx, args, records)
		}
		return err
	})
	g.Go(func() error {
		var err error
		profile, err = fieldscope.ProfileStream(gctx, records, workers, opts...)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	elapsed := time.Since(started)
	cli.metrics.Records.Add(ctx, profile.TotalRecords)
	cli.metrics.Malformed.Add(ctx, profile.MalformedRecords+stats.Skipped)
	cli.metrics.Fields.Record(ctx, int64(len(profile.DiscoveredFields)))
	cli.metrics.Duration.Record(ctx, elapsed.Seconds())

	cli.logger.Info("profiling complete",
		"records", profile.TotalRecords,
		"malformed", profile.MalformedRecords,
		"undecodable_lines", stats.Skipped,
		"fields", len(profile.DiscoveredFields),
		"elapsed", elapsed)

	if profileSave {
		s, err := store.Open(cli.cfg.StorePath)
		if err != nil {
			return err
		}
		defer s.Close()

		name := profileName
		if name == "" && len(args) > 0 {
			name = args[0]
		}
		sess, err := s.Save(ctx, name, sourceLabel(args), profile)
		if err != nil {
			return err
		}
		cli.logger.Info("session saved", "id", sess.ID)
	}

	return writeProfile(profile, profileOut)
}

func sourceLabel(args []string) string {
	if len(args) == 0 {
		return "stdin"
	}
	if len(args) == 1 {
		return args[0]
	}
	return fmt.Sprintf("%s (+%d more)", args[0], len(args)-1)
}

func writeProfile(p *fieldscope.Profile, path string) error {
	out, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	out = append(out, '\n')

	if path == "" {
		_, err = os.Stdout.Write(out)
		return err
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("write profile: %w", err)
	}
	return nil
}
