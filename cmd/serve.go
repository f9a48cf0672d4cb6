package cmd

import (
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/clawboard/clawboard/pkg/config"
	"github.com/clawboard/clawboard/pkg/gateway"
	"github.com/clawboard/clawboard/pkg/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dashboard HTTP API",
	Long:  longServe,
	RunE: func(cmd *cobra.Command, args []string) error {
		v := viper.GetViper()
		if err := v.BindPFlags(cmd.Flags()); err != nil {
			return err
		}
		if err := v.BindPFlags(cmd.Root().PersistentFlags()); err != nil {
			return err
		}

		cfg := config.FromViper(v)
		if cfg.Debug {
			log.SetLevel(log.DebugLevel)
		}

		gw := gateway.NewRuntimeClient(cfg.CLIBinary, cfg.GatewayURL)
		srv := service.NewServer(cfg, gw)

		log.Info("clawboard listening",
			"addr", cfg.Listen,
			"workspace", cfg.Workspace,
			"provider", cfg.Provider,
		)
		return srv.Start()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("cli", "claw", "runtime CLI binary")
	serveCmd.Flags().String("gateway", "http://127.0.0.1:8400", "runtime JSON-RPC gateway URL")
	serveCmd.Flags().String("provider", "openai", "extraction LLM provider (openai, anthropic, ollama)")
	serveCmd.Flags().String("model", "gpt-4o-mini", "extraction model")
	serveCmd.Flags().String("listen", ":4173", "dashboard bind address")
}

var longServe = `
Serve the dashboard API.

Examples:
  # Defaults: openai extraction, runtime CLI "claw" on PATH
  clawboard serve

  # Point at a runtime gateway on another host
  clawboard serve --gateway http://10.0.0.5:8400 --listen :8080
`
