package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewDerivesPaths(t *testing.T) {
	cfg := New("/tmp/ws", "/tmp/home")

	if cfg.MemoryDir != filepath.Join("/tmp/ws", "memory") {
		t.Fatalf("memory dir = %q", cfg.MemoryDir)
	}
	if filepath.Base(cfg.GraphJSONPath) != "knowledge-graph.json" {
		t.Fatalf("graph json path = %q", cfg.GraphJSONPath)
	}
	if filepath.Base(cfg.GraphMarkdownPath) != "knowledge-graph.md" {
		t.Fatalf("graph markdown path = %q", cfg.GraphMarkdownPath)
	}
	if cfg.MemoryFilePath != filepath.Join("/tmp/ws", "MEMORY.md") {
		t.Fatalf("memory file path = %q", cfg.MemoryFilePath)
	}
}

func TestResolveAPIKeyPrefersEnvironment(t *testing.T) {
	t.Setenv("CLAWBOARD_TEST_KEY", "from-env")

	cfg := New(t.TempDir(), t.TempDir())
	if got := cfg.ResolveAPIKey("CLAWBOARD_TEST_KEY"); got != "from-env" {
		t.Fatalf("key = %q, want from-env", got)
	}
}

func TestResolveAPIKeyFallsBackToDotEnv(t *testing.T) {
	home := t.TempDir()
	envFile := filepath.Join(home, ".env")
	content := "# agent credentials\nOPENAI_API_KEY=\"sk-test-123\"\nexport IGNORED\n"
	if err := os.WriteFile(envFile, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := New(t.TempDir(), home)
	if got := cfg.ResolveAPIKey("OPENAI_API_KEY"); got != "sk-test-123" {
		t.Fatalf("key = %q, want sk-test-123", got)
	}
}

func TestResolveAPIKeyMissingEverywhere(t *testing.T) {
	cfg := New(t.TempDir(), t.TempDir())
	if got := cfg.ResolveAPIKey("NO_SUCH_KEY_VAR"); got != "" {
		t.Fatalf("expected empty key, got %q", got)
	}
}
