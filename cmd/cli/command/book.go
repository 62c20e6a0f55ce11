package command

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"readhub/internal/microservices/http-api/dto"
)

var bookCmd = &cobra.Command{
	Use:   "book",
	Short: "Manage the books on your shelf",
}

var bookAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a book",
	RunE: func(cmd *cobra.Command, args []string) error {
		var req dto.CreateBookRequest
		req.Title, _ = cmd.Flags().GetString("title")
		req.Author, _ = cmd.Flags().GetString("author")
		req.Genres, _ = cmd.Flags().GetStringSlice("genre")
		req.TotalPages, _ = cmd.Flags().GetInt("pages")
		req.CurrentPage, _ = cmd.Flags().GetInt("current")
		req.Status, _ = cmd.Flags().GetString("status")

		if strings.TrimSpace(req.Title) == "" {
			return fmt.Errorf("--title is required")
		}
		if req.TotalPages <= 0 {
			return fmt.Errorf("--pages must be a positive number")
		}

		httpClient, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()

		book, err := httpClient.CreateBook(ctx, &req)
		if err != nil {
			return fmt.Errorf("failed to add book: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Added %q (%s)\n", book.Title, book.ID)
		return nil
	},
}

var bookListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your books",
	RunE: func(cmd *cobra.Command, args []string) error {
		status, _ := cmd.Flags().GetString("status")

		httpClient, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()

		resp, err := httpClient.ListBooks(ctx, status)
		if err != nil {
			return err
		}
		if resp.Total == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Your shelf is empty.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tAUTHOR\tSTATUS\tPROGRESS")
		for _, b := range resp.Items {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d/%d\n", b.ID, b.Title, b.Author, b.Status, b.CurrentPage, b.TotalPages)
		}
		return w.Flush()
	},
}

var bookUpdateCmd = &cobra.Command{
	Use:   "update <book-id>",
	Short: "Edit a book",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var req dto.UpdateBookRequest
		flags := cmd.Flags()
		if flags.Changed("title") {
			v, _ := flags.GetString("title")
			req.Title = &v
		}
		if flags.Changed("author") {
			v, _ := flags.GetString("author")
			req.Author = &v
		}
		if flags.Changed("genre") {
			req.Genres, _ = flags.GetStringSlice("genre")
		}
		if flags.Changed("pages") {
			v, _ := flags.GetInt("pages")
			req.TotalPages = &v
		}
		if flags.Changed("current") {
			v, _ := flags.GetInt("current")
			req.CurrentPage = &v
		}
		if flags.Changed("status") {
			v, _ := flags.GetString("status")
			req.Status = &v
		}

		httpClient, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()

		book, err := httpClient.UpdateBook(ctx, args[0], &req)
		if err != nil {
			return fmt.Errorf("failed to update book: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Updated %q: %s, %d/%d\n", book.Title, book.Status, book.CurrentPage, book.TotalPages)
		return nil
	},
}

var bookRemoveCmd = &cobra.Command{
	Use:   "remove <book-id>",
	Short: "Remove a book and its sessions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		httpClient, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()

		if err := httpClient.DeleteBook(ctx, args[0]); err != nil {
			return fmt.Errorf("failed to remove book: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Book removed")
		return nil
	},
}

func addBookFlags(cmd *cobra.Command) {
	cmd.Flags().String("title", "", "book title")
	cmd.Flags().String("author", "", "author")
	cmd.Flags().StringSlice("genre", nil, "genre, repeat or comma separate")
	cmd.Flags().Int("pages", 0, "total pages")
	cmd.Flags().Int("current", 0, "current page")
	cmd.Flags().String("status", "", "wishlist, reading or completed")
}

func init() {
	rootCmd.AddCommand(bookCmd)
	bookCmd.AddCommand(bookAddCmd, bookListCmd, bookUpdateCmd, bookRemoveCmd)

	addBookFlags(bookAddCmd)
	addBookFlags(bookUpdateCmd)
	bookListCmd.Flags().String("status", "", "filter by status")
}
