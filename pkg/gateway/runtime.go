package gateway

import (
	"context"
	"encoding/json"
	"strings"
	"time"
)

// Typed views over the runtime's answers. Only the fields the memory
// engine reads are modeled; everything else passes through untouched.

type Agent struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type MemoryStatus struct {
	// IndexPath is the sqlite database behind the runtime's vector
	// index. Empty when indexing has never run.
	IndexPath string `json:"indexPath"`
	Files     int    `json:"files"`
	Chunks    int    `json:"chunks"`
}

type Session struct {
	Key       string `json:"key"`
	Label     string `json:"label"`
	UpdatedAt int64  `json:"updatedAt"`
}

type ChatMessage struct {
	Role      string          `json:"role"`
	Timestamp int64           `json:"timestamp"`
	Content   json.RawMessage `json:"content"`
}

const (
	cliTimeout = 10 * time.Second
	rpcTimeout = 10 * time.Second
	// reindexTimeout is generous: indexing a large workspace is slow
	// and the call is fire-and-forget anyway.
	reindexTimeout = 120 * time.Second
)

// ListAgents returns the runtime's agent roster.
func ListAgents(ctx context.Context, c Client) ([]Agent, error) {
	raw, err := c.RunCLIJSON(ctx, []string{"agents", "list", "--json"}, cliTimeout)
	if err != nil {
		return nil, err
	}

	var wire struct {
		Agents []Agent `json:"agents"`
	}
	if err := json.Unmarshal(raw, &wire); err != nil {
		// Some runtime versions emit a bare array.
		var bare []Agent
		if err2 := json.Unmarshal(raw, &bare); err2 != nil {
			return nil, err
		}
		return bare, nil
	}
	return wire.Agents, nil
}

// GetMemoryStatus asks the runtime where its vector index lives.
func GetMemoryStatus(ctx context.Context, c Client) (*MemoryStatus, error) {
	raw, err := c.RunCLIJSON(ctx, []string{"memory", "status", "--json"}, cliTimeout)
	if err != nil {
		return nil, err
	}

	var status MemoryStatus
	if err := json.Unmarshal(raw, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// TriggerReindex asks the runtime to refresh the vector index over the
// workspace. Callers treat failures as diagnostics, never as errors.
func TriggerReindex(ctx context.Context, c Client, workspace string) error {
	_, err := c.RunCLI(ctx, []string{"memory", "index", "--workspace", workspace}, reindexTimeout)
	return err
}

// ListSessions returns recent sessions, newest first.
func ListSessions(ctx context.Context, c Client, limit int) ([]Session, error) {
	raw, err := c.Call(ctx, "sessions.list", map[string]any{"limit": limit}, rpcTimeout)
	if err != nil {
		return nil, err
	}

	var wire struct {
		Sessions []Session `json:"sessions"`
	}
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, err
	}
	return wire.Sessions, nil
}

// ChatHistory returns the newest messages of one session.
func ChatHistory(ctx context.Context, c Client, sessionKey string, limit int) ([]ChatMessage, error) {
	raw, err := c.Call(ctx, "chat.history", map[string]any{
		"sessionKey": sessionKey,
		"limit":      limit,
	}, rpcTimeout)
	if err != nil {
		return nil, err
	}

	var wire struct {
		Messages []ChatMessage `json:"messages"`
	}
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, err
	}
	return wire.Messages, nil
}

// MessageText flattens a chat message's content into plain text. The
// runtime stores either a bare string or a list of typed parts.
func MessageText(content json.RawMessage) string {
	var text string
	if err := json.Unmarshal(content, &text); err == nil {
		return text
	}

	var parts []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal(content, &parts); err != nil {
		return ""
	}

	var out []string
	for _, part := range parts {
		if part.Type == "" || part.Type == "text" {
			if part.Text != "" {
				out = append(out, part.Text)
			}
		}
	}
	return strings.Join(out, "\n")
}
