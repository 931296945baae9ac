package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	eventsrepo "playverse/internal/events/repository"
	mongoMigration "playverse/internal/migrations/mongo"
	venuesrepo "playverse/internal/venues/repository"
	"playverse/pkg/config"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const JobName = "playverse-admin"

var jobTimeout time.Duration

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:           "playverse-admin",
		Short:         "Maintenance jobs for the Playverse database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().DurationVar(&jobTimeout, "timeout", 120*time.Second, "overall deadline for the job")

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(backfillSlugsCmd())
	rootCmd.AddCommand(purgeVenuesCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// withMongo loads config, connects, runs fn and disconnects.
func withMongo(fn func(ctx context.Context, cfg *config.Config) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	cfg := config.Load(JobName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	return fn(ctx, cfg)
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create collections, schema validators and indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMongo(func(ctx context.Context, cfg *config.Config) error {
				db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
				if err := mongoMigration.RunMigration(ctx, db, cfg.Log); err != nil {
					return fmt.Errorf("migration failed: %w", err)
				}
				return nil
			})
		},
	}
}

func backfillSlugsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backfill-slugs",
		Short: "Assign URL slugs to events created before slugs existed",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMongo(func(ctx context.Context, cfg *config.Config) error {
				report, err := mongoMigration.BackfillSlugs(ctx, eventsrepo.NewMongoEventRepository(cfg), cfg.Log)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Found %d events, updated %d, disambiguated %d, failed %d\n",
					report.Found, report.Updated, report.Disambiguated, report.Failed)
				return nil
			})
		},
	}
}

func purgeVenuesCmd() *cobra.Command {
	var confirmed bool

	cmd := &cobra.Command{
		Use:   "purge-venues",
		Short: "Delete every venue in the catalogue",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirmed {
				return errors.New("refusing to delete venues without --yes")
			}
			return withMongo(func(ctx context.Context, cfg *config.Config) error {
				deleted, err := venuesrepo.NewMongoVenueRepository(cfg).DeleteAll(ctx)
				if err != nil {
					return err
				}
				cfg.Log.Info("Deleted all venues", "count", deleted)
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d venues\n", deleted)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&confirmed, "yes", false, "confirm deleting the whole venue catalogue")

	return cmd
}
