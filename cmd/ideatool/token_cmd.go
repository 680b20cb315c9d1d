package main

import (
	"fmt"
	"time"

	"github.com/dalemusser/ideatrack/internal/app/system/auth"
	"github.com/spf13/cobra"
)

func newTokenCmd(g *globals) *cobra.Command {
	var (
		subject string
		email   string
		role    string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign a bearer token with IDEATRACK_JWT_SECRET for local testing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := auth.NewVerifier(g.cfg.JWTSecret, g.cfg.JWTIssuer, g.log)
			if err != nil {
				return err
			}
			token, err := v.Sign(auth.User{ID: subject, Email: email, Role: role}, ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}

	cmd.Flags().StringVar(&subject, "sub", "", "User id placed in the subject claim (required)")
	cmd.Flags().StringVar(&email, "email", "", "Email claim")
	cmd.Flags().StringVar(&role, "role", "", "Role claim")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("sub")
	return cmd
}
