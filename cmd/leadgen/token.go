package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/octobees/leadforge/internal/auth"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for local testing",
	Long:  "Signs a token with JWT_SECRET so the API can be called without the identity provider.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		subject, _ := cmd.Flags().GetString("subject")
		tenant, _ := cmd.Flags().GetString("tenant")
		email, _ := cmd.Flags().GetString("email")
		role, _ := cmd.Flags().GetString("role")

		token, err := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL).GenerateToken(auth.Identity{
			Subject:  subject,
			Email:    email,
			Role:     role,
			TenantID: tenant,
		})
		if err != nil {
			return eris.Wrap(err, "sign token")
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().String("subject", "local-user", "token subject (user id)")
	tokenCmd.Flags().String("tenant", "", "tenant id carried by the token")
	tokenCmd.Flags().String("email", "", "user email")
	tokenCmd.Flags().String("role", "member", "user role")
	_ = tokenCmd.MarkFlagRequired("tenant")
	rootCmd.AddCommand(tokenCmd)
}
