package command

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"readhub/internal/microservices/http-api/dto"
)

var badgesCmd = &cobra.Command{
	Use:   "badges",
	Short: "List your unlocked badges",
	RunE: func(cmd *cobra.Command, args []string) error {
		httpClient, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()

		resp, err := httpClient.ListBadges(ctx)
		if err != nil {
			return err
		}
		if resp.Total == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No badges yet. Keep reading!")
			return nil
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "BADGE\tTYPE\tTIER\tUNLOCKED")
		for _, b := range resp.Badges {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", b.BadgeName, b.BadgeType, b.BadgeTier, b.UnlockedAt.Local().Format("2006-01-02"))
		}
		return w.Flush()
	},
}

var badgesCatalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List every badge that can be earned",
	RunE: func(cmd *cobra.Command, args []string) error {
		badgeType, _ := cmd.Flags().GetString("type")

		httpClient, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()

		resp, err := httpClient.BadgeCatalog(ctx)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tTYPE\tTARGET\tREWARD XP")
		for _, b := range resp.Badges {
			if badgeType != "" && string(b.Type) != badgeType {
				continue
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\n", b.ID, b.Name, b.Type, b.Target, b.RewardXP)
		}
		return w.Flush()
	},
}

var badgesProgressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show progress towards locked badges",
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")

		httpClient, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()

		resp, err := httpClient.BadgeProgress(ctx)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "BADGE\tPROGRESS\t")
		for _, p := range resp.Progress {
			if p.Unlocked && !all {
				continue
			}
			if p.Current == 0 && !all {
				continue
			}
			fmt.Fprintf(w, "%s\t%d/%d\t%.0f%%\n", p.Badge.Name, p.Current, p.Target, p.Progress*100)
		}
		return w.Flush()
	},
}

var badgesEvaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Re-check badge conditions and unlock anything earned",
	RunE: func(cmd *cobra.Command, args []string) error {
		event, _ := cmd.Flags().GetString("event")

		httpClient, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()

		resp, err := httpClient.EvaluateBadges(ctx, &dto.EvaluateBadgesRequest{EventType: event})
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if resp.Total == 0 {
			fmt.Fprintln(out, "No new badges.")
			return nil
		}
		for _, b := range resp.NewBadges {
			fmt.Fprintf(out, "🏅 %s: %s\n", b.BadgeName, b.Description)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(badgesCmd)
	badgesCmd.AddCommand(badgesCatalogCmd, badgesProgressCmd, badgesEvaluateCmd)

	badgesCatalogCmd.Flags().String("type", "", "genre, milestone, streak or reading_style")
	badgesProgressCmd.Flags().Bool("all", false, "include unlocked and untouched badges")
	badgesEvaluateCmd.Flags().String("event", "manual", "session_submitted, book_completed, streak_updated or manual")
}
