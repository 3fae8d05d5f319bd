package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"leadintake/internal/config"
	jwtsvc "leadintake/internal/pkg/jwt"
)

func newTokenCmd() *cobra.Command {
	var userID, role, name, email, secret string
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a dashboard token for local testing",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if secret == "" {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				if cfg.IsProd() {
					return fmt.Errorf("refusing to mint tokens with APP_ENV=%s", cfg.AppEnv)
				}
				secret = cfg.JWTSecret
			}
			token, err := jwtsvc.New(secret, ttl).GenerateToken(userID, role, name, email)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id")
	cmd.Flags().StringVar(&role, "role", "agent", "dashboard role")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "email")
	cmd.Flags().StringVar(&secret, "secret", "", "signing secret (defaults to JWT_SECRET)")
	cmd.Flags().DurationVar(&ttl, "ttl", 8*time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
