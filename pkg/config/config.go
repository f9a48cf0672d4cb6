/*
Package config builds the one configuration value that gets passed into
every component. Paths are resolved once here; nothing else in the repo
reads module-level path globals, which keeps the harvester and
synthesizer testable against arbitrary temp directories.
*/
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/ini.v1"
)

// MemoryFileName is the agent's living memory document at the
// workspace root. Only its marker-delimited snapshot region is ever
// touched by this process.
const MemoryFileName = "MEMORY.md"

type Config struct {
	// Workspace is the agent workspace root.
	Workspace string
	// AgentHome is the agent's home directory; its .env file is the
	// fallback source for provider API keys.
	AgentHome string
	// MemoryDir is <workspace>/memory, home of journals and the
	// persisted graph files.
	MemoryDir string
	// GraphJSONPath and GraphMarkdownPath are the persisted graph and
	// its regenerated markdown mirror.
	GraphJSONPath     string
	GraphMarkdownPath string
	// MemoryFilePath is <workspace>/MEMORY.md.
	MemoryFilePath string

	// CLIBinary is the agent runtime's CLI entrypoint.
	CLIBinary string
	// GatewayURL is the runtime's JSON-RPC gateway.
	GatewayURL string

	// Provider selects the extraction LLM: openai, anthropic or ollama.
	Provider string
	Model    string

	// Listen is the dashboard's bind address.
	Listen string
	Debug  bool
}

/*
FromViper assembles a Config from bound flags/env vars, deriving every
dependent path from the workspace root.
*/
func FromViper(v *viper.Viper) *Config {
	workspace := v.GetString("workspace")
	if workspace == "" {
		home, _ := os.UserHomeDir()
		workspace = filepath.Join(home, ".clawboard", "workspace")
	}

	agentHome := v.GetString("agent-home")
	if agentHome == "" {
		home, _ := os.UserHomeDir()
		agentHome = home
	}

	cfg := &Config{
		Workspace: workspace,
		AgentHome: agentHome,
		CLIBinary: v.GetString("cli"),
		GatewayURL: strings.TrimRight(
			v.GetString("gateway"), "/",
		),
		Provider: v.GetString("provider"),
		Model:    v.GetString("model"),
		Listen:   v.GetString("listen"),
		Debug:    v.GetBool("debug"),
	}
	cfg.deriveFilePaths()
	return cfg
}

// New builds a Config rooted at explicit directories. Tests use this to
// point the engine at temp dirs.
func New(workspace, agentHome string) *Config {
	cfg := &Config{
		Workspace: workspace,
		AgentHome: agentHome,
		CLIBinary: "claw",
		Provider:  "openai",
		Model:     "gpt-4o-mini",
		Listen:    ":4173",
	}
	cfg.deriveFilePaths()
	return cfg
}

func (cfg *Config) deriveFilePaths() {
	cfg.MemoryDir = filepath.Join(cfg.Workspace, "memory")
	cfg.GraphJSONPath = filepath.Join(cfg.MemoryDir, "knowledge-graph.json")
	cfg.GraphMarkdownPath = filepath.Join(cfg.MemoryDir, "knowledge-graph.md")
	cfg.MemoryFilePath = filepath.Join(cfg.Workspace, MemoryFileName)
}

/*
ResolveAPIKey looks up a provider credential: the process environment
wins, then the agent home's .env file. Returns an empty string when
neither has it; extraction degrades rather than fails on a missing key.
*/
func (cfg *Config) ResolveAPIKey(envVar string) string {
	if key := os.Getenv(envVar); key != "" {
		return key
	}

	envPath := filepath.Join(cfg.AgentHome, ".env")
	file, err := ini.LoadSources(ini.LoadOptions{
		SkipUnrecognizableLines: true,
	}, envPath)
	if err != nil {
		return ""
	}
	return strings.Trim(file.Section("").Key(envVar).String(), `"'`)
}
