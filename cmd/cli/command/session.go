package command

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"readhub/internal/microservices/http-api/dto"
	"readhub/internal/microservices/http-api/service"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Log and list reading sessions",
}

var sessionSubmitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Log a reading session",
	Long: `Log pages read for a book you are currently reading.

Use --pages for the number of pages read now, or --page for the page you
stopped on. Exactly one of them is required.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		bookID, _ := cmd.Flags().GetString("book")
		pages, _ := cmd.Flags().GetInt("pages")
		page, _ := cmd.Flags().GetInt("page")

		if bookID == "" {
			return fmt.Errorf("--book is required")
		}
		req := &dto.SubmitSessionRequest{BookID: bookID}
		switch {
		case cmd.Flags().Changed("pages") && cmd.Flags().Changed("page"):
			return fmt.Errorf("use either --pages or --page, not both")
		case cmd.Flags().Changed("pages"):
			req.Mode, req.Value = string(service.ModePagesRead), pages
		case cmd.Flags().Changed("page"):
			req.Mode, req.Value = string(service.ModeCurrentPage), page
		default:
			return fmt.Errorf("one of --pages or --page is required")
		}

		httpClient, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()

		result, err := httpClient.SubmitSession(ctx, req)
		if err != nil {
			return fmt.Errorf("✗ Session not saved: %w", err)
		}
		printSubmitResult(cmd.OutOrStdout(), result)
		return nil
	},
}

func printSubmitResult(out io.Writer, r *service.SubmitResult) {
	fmt.Fprintf(out, "✓ Logged %d pages (+%d XP)\n", r.ActualPagesRead, r.XPAwarded)
	fmt.Fprintf(out, "  pages %d", r.XP.Pages)
	if r.XP.CompletionBonus > 0 {
		fmt.Fprintf(out, " | completion bonus %d", r.XP.CompletionBonus)
	}
	if r.XP.StreakBonus > 0 {
		fmt.Fprintf(out, " | streak bonus %d", r.XP.StreakBonus)
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Streak: %d day(s)\n", r.Streak)
	fmt.Fprintf(out, "Level:  %d %s (%d/%d XP)\n",
		r.Level.Level, r.Level.Title, r.Level.CurrentXPInLevel, r.Level.XPRequiredForNext)
	if r.LeveledUp {
		fmt.Fprintf(out, "🎉 Level up! %d → %d\n", r.PreviousLevel, r.Level.Level)
	}
	if c := r.Celebration; c != nil {
		fmt.Fprintf(out, "📖 Finished %q by %s (%d pages) on %s\n", c.Title, c.Author, c.TotalPages, c.FinishedOn)
	}
	for _, b := range r.NewBadges {
		fmt.Fprintf(out, "🏅 %s: %s\n", b.BadgeName, b.Description)
	}
	if r.Quote != "" {
		fmt.Fprintf(out, "\n%s\n", r.Quote)
	}
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent reading sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		httpClient, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()

		resp, err := httpClient.ListSessions(ctx, limit)
		if err != nil {
			return err
		}
		if resp.Total == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No reading sessions yet.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "DATE\tBOOK\tPAGES\tSTREAK BONUS")
		for _, s := range resp.Items {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", s.Date, s.BookID, s.PagesRead, s.StreakBonusXP)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionSubmitCmd, sessionListCmd)

	sessionSubmitCmd.Flags().String("book", "", "book id")
	sessionSubmitCmd.Flags().Int("pages", 0, "pages read in this session")
	sessionSubmitCmd.Flags().Int("page", 0, "page you stopped on")

	sessionListCmd.Flags().Int("limit", 20, "number of sessions to show")
}
