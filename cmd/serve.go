package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abhisek/vault/internal/app"
	"github.com/abhisek/vault/internal/llm"
	"github.com/abhisek/vault/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Server.Addr = addr
		}
		logger := cfg.App.NewLogger(os.Stderr)

		if !cfg.LLM.HasKey() {
			if found, ok := llm.DiscoverConfig(); ok {
				found.Retry, found.Timeout = cfg.LLM.Retry, cfg.LLM.Timeout
				cfg.LLM = found
				logger.Info("using discovered LLM credentials", "provider", found.Provider)
			}
		}
		if cfg.UsesDevSecret() {
			logger.Warn("signing tokens with the development secret; set VAULT_JWT_SECRET")
		}

		dbPath, err := resolveDBPath(cmd, cfg)
		if err != nil {
			return fmt.Errorf("resolve database path: %w", err)
		}
		st, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := app.New(ctx, app.Options{
			Config:  cfg,
			Store:   st,
			Logger:  logger,
			Version: version,
		})
		if err != nil {
			return err
		}
		logger.Info("database ready", "path", dbPath)
		return a.Run(ctx)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
}
