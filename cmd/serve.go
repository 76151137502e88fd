package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abhisek/certifica/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.HTTPAddr = addr
		}
		if err := cfg.ValidateServe(); err != nil {
			return err
		}
		logger := cfg.NewLogger(os.Stderr)

		ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
		defer stop()

		svc, err := server.Build(ctx, cfg, logger, server.Options{})
		if err != nil {
			return err
		}
		defer svc.Close()

		return server.Serve(ctx, cfg.HTTPAddr, svc.Handler(), logger)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides CERTIFICA_HTTP_ADDR)")
}
