package main

import (
	"fmt"

	"github.com/jonathan/candidate-tracker/internal/storage"
	"github.com/spf13/cobra"
)

var bucketsCmd = &cobra.Command{
	Use:   "ensure-buckets",
	Short: "Create the object storage buckets and apply the public-read policy",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		objects, err := storage.New(cfg.StorageConfig())
		if err != nil {
			return fmt.Errorf("failed to create object storage client: %w", err)
		}
		if err := objects.EnsureBuckets(cmd.Context(), storage.Buckets, logger); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Buckets ready: %v\n", storage.Buckets)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(bucketsCmd)
}
