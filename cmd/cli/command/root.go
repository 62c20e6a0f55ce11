package command

// root.go defines the root command for the readhub CLI and its global flags.

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"readhub/cmd/cli/authentication"
	"readhub/cmd/cli/command/client"
)

var (
	apiURL  string        // Global flag for API server URL
	token   string        // bearer token override (jwt)
	timeout time.Duration // per-command request timeout
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "readhub",
	Short: "readhub - reading tracker with levels, streaks and badges",
	Long: `readhub is a command line client for the readhub API. Use it to:
- Log reading sessions and watch your XP, level and streak grow
- Manage the books on your shelf
- Browse unlocked badges and the progress towards the next ones
- Repair XP drift with a resync

Use "readhub command --help" to see all available commands.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	defaultAPI := os.Getenv("READHUB_API")
	if defaultAPI == "" {
		defaultAPI = "http://localhost:8080"
	}

	// Global persistent flags = available to all subcommands
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", defaultAPI, "API server URL")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "bearer token (defaults to READHUB_TOKEN, then the keyring)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 15*time.Second, "request timeout")
}

// resolveToken picks the flag, then READHUB_TOKEN, then the keyring.
func resolveToken() (string, error) {
	if token != "" {
		return token, nil
	}
	if env := os.Getenv("READHUB_TOKEN"); env != "" {
		return env, nil
	}
	creds, err := authentication.GetTokens()
	if err != nil {
		if errors.Is(err, authentication.ErrNoCredentials) {
			return "", client.ErrUnauthorized
		}
		return "", fmt.Errorf("read keyring: %w", err)
	}
	if creds.Expired(time.Now()) {
		return "", client.ErrUnauthorized
	}
	return creds.AccessToken, nil
}

// GetAuthenticatedClient returns an HTTP client carrying the resolved token.
func GetAuthenticatedClient() (*client.HTTPClient, error) {
	t, err := resolveToken()
	if err != nil {
		return nil, err
	}
	httpClient := client.NewHTTPClient(apiURL)
	httpClient.SetToken(t)
	return httpClient, nil
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, timeout)
}
