package main

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/wh40k-terms/internal/auth"
)

func newTokenCommand(ctx *commandContext) *cobra.Command {
	var reviewer string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a reviewer token for the feedback review endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.Auth.Enabled() {
				return errors.New("reviewer auth is disabled: set auth.jwt_secret")
			}

			if !cmd.Flags().Changed("ttl") {
				ttl = cfg.Auth.TokenTTL
			}
			token, err := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, ttl).GenerateReviewerToken(reviewer)
			if err != nil {
				return err
			}

			if ctx.jsonOutput() {
				return writeJSON(cmd, map[string]string{"reviewer": reviewer, "token": token})
			}
			printLine(cmd, "%s", token)
			return nil
		},
	}

	cmd.Flags().StringVar(&reviewer, "reviewer", "", "Reviewer name recorded on resolved items")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Token lifetime (default auth.token_ttl)")
	_ = cmd.MarkFlagRequired("reviewer")
	return cmd
}
