package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/vault/internal/auth"
	"github.com/abhisek/vault/internal/ui/theme"
)

var tokenCmd = &cobra.Command{
	Use:   "token <user-id>",
	Short: "Sign a bearer token for a user (development)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cfg.App.Env == "production" {
			return fmt.Errorf("refusing to mint tokens in production")
		}

		tok, err := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL).Sign(args[0])
		if err != nil {
			return err
		}
		if cfg.UsesDevSecret() {
			fmt.Fprintln(os.Stderr, theme.Warning.Render("signed with the development secret"))
		}
		fmt.Println(tok)
		return nil
	},
}
