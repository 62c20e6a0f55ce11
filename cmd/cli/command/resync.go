package command

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"readhub/database"
	"readhub/internal/cache"
	"readhub/internal/config"
	"readhub/internal/microservices/http-api/repository"
	"readhub/internal/microservices/http-api/service"
	"readhub/internal/scheduler"
)

// resyncCmd repairs XP drift for the logged-in user, or with --local
// connects to the database directly and repairs every profile.
var resyncCmd = &cobra.Command{
	Use:   "resync",
	Short: "Recompute XP from the reading log",
	Long: `Recompute XP from the reading log and overwrite the stored total.

By default the API resyncs the logged-in user. With --local the command reads
DATABASE_URL (and REDIS_URL, if set) from the environment or .env and resyncs
every profile, or only --user.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		local, _ := cmd.Flags().GetBool("local")
		if local {
			return runLocalResync(cmd)
		}

		httpClient, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()

		res, err := httpClient.Resync(ctx)
		if err != nil {
			return err
		}
		printResync(cmd.OutOrStdout(), res)
		return nil
	},
}

func printResync(out io.Writer, res *service.ResyncResult) {
	if res.Drift == 0 {
		fmt.Fprintf(out, "✓ XP is in sync: %d XP, level %d\n", res.XP, res.Level)
		return
	}
	fmt.Fprintf(out, "✓ Repaired XP: %d → %d (drift %+d), level %d\n", res.PreviousXP, res.XP, res.Drift, res.Level)
}

func runLocalResync(cmd *cobra.Command) error {
	userID, _ := cmd.Flags().GetString("user")
	workers, _ := cmd.Flags().GetInt("workers")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	db, err := database.Connect(cfg, logger)
	if err != nil {
		return err
	}
	defer database.Close(db)

	var rdb *redis.Client
	if cfg.RedisEnabled() {
		if rdb, err = cache.NewClient(cmd.Context(), cfg.RedisURL, cfg.RedisPassword); err != nil {
			return err
		}
		defer rdb.Close()
	}

	xp := service.NewXPSyncService(
		repository.NewStore(db),
		cache.NewProgressCache(rdb, cfg.CacheTTL),
		cache.NewUserLocker(rdb, cfg.LockTTL, cfg.LockWait, logger),
		logger,
	)
	out := cmd.OutOrStdout()
	ctx := cmd.Context()

	if userID != "" {
		if dryRun {
			res, err := xp.Check(ctx, userID)
			var drift *service.DriftError
			if err != nil && !errors.As(err, &drift) {
				return err
			}
			fmt.Fprintf(out, "stored %d, canonical %d (drift %+d)\n", res.PreviousXP, res.XP, res.Drift)
			return nil
		}
		res, err := xp.Resync(ctx, userID)
		if err != nil {
			return err
		}
		printResync(out, res)
		return nil
	}

	if dryRun {
		return fmt.Errorf("--dry-run needs --user")
	}
	stats, err := scheduler.NewResyncJob(xp, workers, logger).RunOnce(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "✓ Resynced %d profile(s), %d failed\n", stats.Succeeded, stats.Failed)
	return nil
}

func init() {
	rootCmd.AddCommand(resyncCmd)

	resyncCmd.Flags().Bool("local", false, "connect to the database instead of the API")
	resyncCmd.Flags().String("user", "", "with --local, resync only this user")
	resyncCmd.Flags().Int("workers", 4, "with --local, concurrent resyncs")
	resyncCmd.Flags().Bool("dry-run", false, "with --local --user, report drift without writing")
}
