package command

import (
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"

	"readhub/cmd/cli/authentication"
	"readhub/cmd/cli/command/client"
	"readhub/internal/microservices/http-api/dto"
	"readhub/internal/microservices/http-api/middleware"
)

// auth.go handles storing, issuing and clearing the CLI's bearer token.

// loginCmd stores a token in the keyring and makes sure the profile exists.
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store an access token and create your profile",
	Long: `Store an access token in the OS keyring.

Pass a token issued by your identity provider with --access-token, or sign a
development token locally with --secret and --user.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		accessToken, _ := cmd.Flags().GetString("access-token")
		secret, _ := cmd.Flags().GetString("secret")
		userID, _ := cmd.Flags().GetString("user")
		username, _ := cmd.Flags().GetString("username")
		ttl, _ := cmd.Flags().GetDuration("ttl")
		timezone, _ := cmd.Flags().GetString("timezone")

		if accessToken == "" {
			if secret == "" {
				secret = os.Getenv("JWT_SECRET")
			}
			if secret == "" || userID == "" {
				return fmt.Errorf("either --access-token or --secret with --user is required")
			}
			signed, err := middleware.SignToken([]byte(secret), userID, username, ttl)
			if err != nil {
				return fmt.Errorf("sign token: %w", err)
			}
			accessToken = signed
		}

		creds, err := credentialsFromToken(accessToken)
		if err != nil {
			return err
		}

		httpClient := client.NewHTTPClient(apiURL)
		httpClient.SetToken(creds.AccessToken)
		ctx, cancel := commandContext(cmd)
		defer cancel()
		profile, err := httpClient.EnsureProfile(ctx, &dto.EnsureProfileRequest{
			Username: creds.Username,
			Timezone: timezone,
		})
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}

		if err := authentication.StoreTokens(creds); err != nil {
			return fmt.Errorf("store token: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "✓ Logged in")
		fmt.Fprintf(out, "User:  %s\n", profile.UserID)
		fmt.Fprintf(out, "Level: %d (%d XP)\n", profile.Level, profile.XP)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored access token",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := authentication.DeleteTokens(); err != nil {
			return fmt.Errorf("logout failed: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the stored identity",
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := resolveToken()
		if err != nil {
			return err
		}
		creds, err := credentialsFromToken(t)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "User:     %s\n", creds.UserID)
		if creds.Username != "" {
			fmt.Fprintf(out, "Username: %s\n", creds.Username)
		}
		if creds.ExpiresAt > 0 {
			fmt.Fprintf(out, "Expires:  %s\n", time.Unix(creds.ExpiresAt, 0).Format(time.RFC3339))
		}
		return nil
	},
}

// credentialsFromToken reads the claims without verifying the signature;
// the server does that on every request.
func credentialsFromToken(accessToken string) (*authentication.StoredCredentials, error) {
	claims := &middleware.Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return nil, fmt.Errorf("malformed token: %w", err)
	}
	if claims.User() == "" {
		return nil, middleware.ErrMissingSubject
	}
	creds := &authentication.StoredCredentials{
		AccessToken: accessToken,
		UserID:      claims.User(),
		Username:    claims.Username,
	}
	if claims.ExpiresAt != nil {
		creds.ExpiresAt = claims.ExpiresAt.Unix()
	}
	return creds, nil
}

func init() {
	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd)

	loginCmd.Flags().String("access-token", "", "token issued by your identity provider")
	loginCmd.Flags().String("secret", "", "HS256 secret for a development token (defaults to JWT_SECRET)")
	loginCmd.Flags().String("user", "", "user id for a development token")
	loginCmd.Flags().String("username", "", "display name for a development token")
	loginCmd.Flags().Duration("ttl", 24*time.Hour, "lifetime of a development token")
	loginCmd.Flags().String("timezone", "", "IANA timezone used for your streak days, e.g. Asia/Jakarta")
}
