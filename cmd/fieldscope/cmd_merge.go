package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chimera-data/fieldscope"
)

var (
	mergeOut string

	mergeCmd = &cobra.Command{
		Use:   "merge <profile.json> <profile.json> [more...]",
		Short: "Merge shard profiles into one combined profile",
		Args:  cobra.MinimumNArgs(2),
		RunE:  runMerge,
	}
)

func init() {
	mergeCmd.Flags().StringVarP(&mergeOut, "out", "o", "", "write the merged profile to a file instead of stdout")
	rootCmd.AddCommand(mergeCmd)
}

func runMerge(cmd *cobra.Command, args []string) error {
	opts, err := cli.profileOptions()
	if err != nil {
		return err
	}

	merged, err := loadProfile(args[0])
	if err != nil {
		return err
	}
	for _, path := range args[1:] {
		next, err := loadProfile(path)
		if err != nil {
			return err
		}
		merged, err = fieldscope.MergeProfiles(merged, next, opts...)
		if err != nil {
			return fmt.Errorf("merge %s: %w", path, err)
		}
	}

	cli.logger.Info("profiles merged",
		"shards", len(args),
		"records", merged.TotalRecords,
		"fields", len(merged.DiscoveredFields))
	return writeProfile(merged, mergeOut)
}

func loadProfile(path string) (*fieldscope.Profile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile %s: %w", path, err)
	}
	var p fieldscope.Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode profile %s: %w", path, err)
	}
	return &p, nil
}
