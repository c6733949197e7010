package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/tradebook/internal/http/auth"
)

func NewTokenCommand(opts *RootOptions) *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print a bearer token for the API (requires AUTH_SECRET)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.cfg.Auth.Secret == "" {
				return errors.New("AUTH_SECRET is not set")
			}

			if !cmd.Flags().Changed("ttl") {
				ttl = opts.cfg.Auth.TokenTTL
			}

			token, err := auth.Issue(opts.cfg.Auth.Secret, subject, ttl, time.Now())
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)

			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "tradebook", "token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime, 0 for no expiry (default AUTH_TOKEN_TTL)")

	return cmd
}
