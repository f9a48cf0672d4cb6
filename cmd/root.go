/*
Package cmd implements the clawboard command-line interface.
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "clawboard",
	Short: "Dashboard API for claw-family agent runtimes",
	Long:  longRoot,
}

/*
Execute is the main entry point for the clawboard CLI.
*/
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	viper.SetEnvPrefix("CLAWBOARD")
	viper.AutomaticEnv()

	rootCmd.PersistentFlags().String(
		"workspace",
		os.Getenv("CLAWBOARD_WORKSPACE"),
		"agent workspace root (default ~/.clawboard/workspace)",
	)
	rootCmd.PersistentFlags().String(
		"agent-home",
		os.Getenv("CLAWBOARD_AGENT_HOME"),
		"agent home directory holding the .env credential file (default $HOME)",
	)
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
}

var longRoot = `
clawboard is the headless core of a dashboard that administers a
claw-family agent runtime: it synthesizes a knowledge graph out of the
agent's memory files, persists it next to them, and serves it over HTTP
alongside thin pass-throughs to the runtime itself.

Examples:
  # Serve against the default workspace
  clawboard serve

  # Serve against an explicit workspace with a local model
  clawboard serve --workspace ~/agents/dev --provider ollama --model llama3.2
`
