package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/neexbeast/spotfinder/internal/config"
	"github.com/neexbeast/spotfinder/internal/geo"
	"github.com/neexbeast/spotfinder/internal/nearby"
	"github.com/neexbeast/spotfinder/internal/ranking"
	"github.com/neexbeast/spotfinder/internal/spot"
	"github.com/neexbeast/spotfinder/internal/storage"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "spotctl",
		Short:         "Operator tools for the campus spot finder",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newSeedCmd(), newDistanceCmd(), newNearbyCmd())
	return root
}

func newSeedCmd() *cobra.Command {
	var skipMigrations bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Apply migrations and upsert the built-in campus catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadDatabase()
			if err != nil {
				return err
			}

			log := slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), nil))
			ctx := cmd.Context()

			pool, err := storage.Connect(ctx, cfg.DatabaseURL, 0)
			if err != nil {
				return fmt.Errorf("connecting to database: %w", err)
			}
			defer pool.Close()

			if !skipMigrations {
				applied, err := storage.RunMigrations(ctx, pool, cfg.MigrationsDir)
				if err != nil {
					return fmt.Errorf("running migrations: %w", err)
				}
				log.Info("migrations applied", "files", applied)
			}

			n, err := seedCatalog(ctx, storage.NewRepository(pool), spot.Catalog())
			if err != nil {
				return err
			}
			log.Info("catalog seeded", "locations", n)
			return nil
		},
	}
	cmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "Do not apply migrations before seeding")
	return cmd
}

type locationUpserter interface {
	UpsertLocation(ctx context.Context, l spot.Location) error
}

func seedCatalog(ctx context.Context, repo locationUpserter, locations []spot.Location) (int, error) {
	for i, l := range locations {
		if err := l.Validate(); err != nil {
			return i, err
		}
		if err := repo.UpsertLocation(ctx, l); err != nil {
			return i, fmt.Errorf("seeding location %s: %w", l.ID, err)
		}
	}
	return len(locations), nil
}

func newDistanceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "distance LAT1 LNG1 LAT2 LNG2",
		Short: "Print the great-circle distance between two points and the check-in verdict",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := geo.ParsePoint(args[0], args[1])
			if err != nil {
				return err
			}
			b, err := geo.ParsePoint(args[2], args[3])
			if err != nil {
				return err
			}
			if a == nil || b == nil {
				return geo.ErrInvalidPoint
			}

			fence := geo.CheckGeofence(*a, *b)
			verdict := "outside"
			if fence.Allowed {
				verdict = "within"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%.1f m (%s the %.0f m check-in radius)\n",
				fence.DistanceMeters, verdict, geo.CheckInRadiusMeters)
			return nil
		},
	}
	// Negative coordinates would otherwise parse as shorthand flags.
	cmd.DisableFlagParsing = true
	return cmd
}

func newNearbyCmd() *cobra.Command {
	var sort string

	cmd := &cobra.Command{
		Use:     "nearby [flags] -- LAT LNG RADIUS_METERS",
		Short:   "List catalog locations within a radius, ranked",
		Example: "  spotctl nearby --sort crowdedness -- 40.0067 -83.0298 300",
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			center, err := geo.ParsePoint(args[0], args[1])
			if err != nil {
				return err
			}
			if center == nil {
				return geo.ErrInvalidPoint
			}
			radius, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return fmt.Errorf("parsing radius: %w", err)
			}
			mode, err := ranking.ParseMode(sort, ranking.ByDistance)
			if err != nil {
				return err
			}

			return printNearby(cmd.OutOrStdout(), spot.Catalog(), *center, radius, mode)
		},
	}
	cmd.Flags().StringVarP(&sort, "sort", "s", "", "Ranking mode: distance, crowdedness, noise or popularity")
	return cmd
}

func printNearby(w io.Writer, locations []spot.Location, center geo.Point, radius float64, mode ranking.Mode) error {
	spots := make([]ranking.Spot, len(locations))
	for i, l := range locations {
		spots[i] = l.Rankable()
	}

	idx := nearby.NewIndex(spots)
	ids, err := idx.Within(center, radius)
	if err != nil {
		return err
	}

	byID := spot.ByID(locations)
	within := make([]ranking.Spot, len(ids))
	for i, id := range ids {
		within[i] = byID[id].Rankable()
	}

	for _, r := range ranking.Rank(mode, within, &center) {
		fmt.Fprintf(w, "%-4s %8.1f m  %s\n", r.ID, *r.DistanceMeters, byID[r.ID].Name)
	}
	fmt.Fprintf(w, "%d of %d located spots within %.0f m\n", len(ids), idx.Size(), radius)
	return nil
}
