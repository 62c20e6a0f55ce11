package command

import (
	"fmt"

	"github.com/spf13/cobra"
)

var notificationsCmd = &cobra.Command{
	Use:     "notifications",
	Aliases: []string{"inbox"},
	Short:   "Show unread notifications",
	RunE: func(cmd *cobra.Command, args []string) error {
		markRead, _ := cmd.Flags().GetBool("mark-read")

		httpClient, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()

		resp, err := httpClient.UnreadNotifications(ctx)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(resp.Notifications) == 0 {
			fmt.Fprintln(out, "Nothing new.")
			return nil
		}
		for _, n := range resp.Notifications {
			fmt.Fprintf(out, "[%s] %s: %s\n", n.CreatedAt.Local().Format("2006-01-02 15:04"), n.Title, n.Message)
		}

		if markRead {
			if err := httpClient.MarkAllNotificationsRead(ctx); err != nil {
				return fmt.Errorf("failed to mark notifications read: %w", err)
			}
			fmt.Fprintln(out, "✓ Marked all as read")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(notificationsCmd)
	notificationsCmd.Flags().Bool("mark-read", false, "mark everything read after listing")
}
