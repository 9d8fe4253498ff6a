package main

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/heartmarshall/quotediary-backend/internal/auth"
	"github.com/heartmarshall/quotediary-backend/internal/config"
)

func newTokenCmd() *cobra.Command {
	var (
		user      string
		anonymous bool
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an access token signed with the server secret",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if anonymous == (user != "") {
				return errors.New("exactly one of --user or --anonymous is required")
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			jwt := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL)

			var token string
			if anonymous {
				token, err = jwt.GenerateAnonymousToken()
			} else {
				userID, perr := uuid.Parse(user)
				if perr != nil {
					return fmt.Errorf("--user: %w", perr)
				}
				token, err = jwt.GenerateAccessToken(userID)
			}
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "User ID the token is issued for")
	cmd.Flags().BoolVar(&anonymous, "anonymous", false, "Issue a signed-out token")
	return cmd
}
