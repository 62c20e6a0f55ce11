package command

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"readhub/internal/gamification"
	"readhub/internal/microservices/http-api/service"
)

// progressCmd shows the dashboard view of the profile
var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show your XP, level and streak",
	RunE: func(cmd *cobra.Command, args []string) error {
		httpClient, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()

		p, err := httpClient.GetProgress(ctx)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if p.Username != "" {
			fmt.Fprintf(out, "%s\n", p.Username)
		}
		printLevel(out, p.Level)
		fmt.Fprintf(out, "Streak:      %d day(s)\n", p.Streak)
		if p.LastReadingDate != "" {
			fmt.Fprintf(out, "Last read:   %s\n", p.LastReadingDate)
		}
		fmt.Fprintf(out, "Pages read:  %d\n", p.TotalPagesRead)
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show reading statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		httpClient, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()

		s, err := httpClient.GetStats(ctx)
		if err != nil {
			return err
		}
		printStats(cmd.OutOrStdout(), s)
		return nil
	},
}

func printStats(out io.Writer, s *service.Stats) {
	fmt.Fprintf(out, "Books:          %d (%d reading, %d completed)\n", s.TotalBooks, s.ReadingBooks, s.CompletedBooks)
	fmt.Fprintf(out, "Pages read:     %d\n", s.TotalPagesRead)
	fmt.Fprintf(out, "Avg pages/day:  %d\n", s.AveragePagesPerDay)
	fmt.Fprintf(out, "Top genre:      %s\n", s.TopGenre)
	fmt.Fprintf(out, "Streak:         %d (longest %d)\n", s.CurrentStreak, s.LongestStreak)

	if len(s.Month) == 0 {
		return
	}
	fmt.Fprintln(out, "\nThis month:")
	var b strings.Builder
	for i, d := range s.Month {
		switch {
		case d.Pages == 0:
			b.WriteString("·")
		case d.Pages < 20:
			b.WriteString("▪")
		default:
			b.WriteString("█")
		}
		if (i+1)%7 == 0 {
			b.WriteString(" ")
		}
	}
	fmt.Fprintln(out, b.String())
}

var activityCmd = &cobra.Command{
	Use:   "activity",
	Short: "Show recent activity",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		httpClient, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()

		resp, err := httpClient.GetActivities(ctx, limit)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "WHEN\tWHAT\tBOOK")
		for _, a := range resp.Activities {
			what := a.Type
			switch a.Type {
			case service.ActivityAddBook:
				what = "added"
			case service.ActivityCompleteBook:
				what = fmt.Sprintf("finished (%d pages)", a.TotalPages)
			case service.ActivityReadingSession:
				what = fmt.Sprintf("read %d pages", a.PagesRead)
			}
			fmt.Fprintf(w, "%s\t%s\t%s by %s\n", a.Time.Local().Format("2006-01-02 15:04"), what, a.Title, a.Author)
		}
		return w.Flush()
	},
}

// levelCmd works offline with --xp, otherwise it asks the server.
var levelCmd = &cobra.Command{
	Use:   "level",
	Short: "Show the level ladder",
	Long: `Show where an XP total sits on the level curve.

With --xp the curve is computed locally and no login is needed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if cmd.Flags().Changed("xp") {
			xp, _ := cmd.Flags().GetInt64("xp")
			if xp < 0 {
				return fmt.Errorf("--xp cannot be negative")
			}
			info := gamification.LevelForXP(xp)
			printLevel(out, info)
			return printLadder(out, gamification.LevelHistory(xp))
		}

		httpClient, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()

		resp, err := httpClient.GetLevels(ctx)
		if err != nil {
			return err
		}
		printLevel(out, resp.Current)
		return printLadder(out, resp.Levels)
	},
}

func printLevel(out io.Writer, info gamification.LevelInfo) {
	fmt.Fprintf(out, "Level %d: %s\n", info.Level, info.Title)
	fmt.Fprintf(out, "XP:          %d total, %d/%d in level\n", info.TotalXP, info.CurrentXPInLevel, info.XPRequiredForNext)
}

// printLadder shows the last few completed levels plus current and next.
func printLadder(out io.Writer, steps []gamification.LevelStep) error {
	const tail = 5
	if len(steps) > tail {
		steps = steps[len(steps)-tail:]
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\nLEVEL\tTITLE\tXP\t")
	for _, s := range steps {
		marker := ""
		switch {
		case s.IsCurrent:
			marker = "← you"
		case s.IsComplete:
			marker = "✓"
		}
		fmt.Fprintf(w, "%d\t%s\t%d/%d\t%s\n", s.Level, s.Title, s.CurrentXP, s.XPToNext, marker)
	}
	return w.Flush()
}

func init() {
	rootCmd.AddCommand(progressCmd, statsCmd, activityCmd, levelCmd)

	activityCmd.Flags().Int("limit", 20, "number of entries to show")
	levelCmd.Flags().Int64("xp", 0, "compute the level for this XP total offline")
}
