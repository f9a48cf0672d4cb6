/*
Package gateway is the dashboard's only doorway to the agent runtime:
a CLI binary for administrative commands and a JSON-RPC HTTP gateway
for session/chat queries. Every call either succeeds once or the caller
proceeds with degraded data; there is no retry policy here.
*/
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os/exec"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Client is what the memory engine consumes; the concrete runtime
// client and the test doubles both satisfy it.
type Client interface {
	// RunCLIJSON runs the agent CLI and decodes its stdout as JSON.
	RunCLIJSON(ctx context.Context, args []string, timeout time.Duration) (json.RawMessage, error)
	// RunCLI runs the agent CLI and returns raw stdout.
	RunCLI(ctx context.Context, args []string, timeout time.Duration) (string, error)
	// Call invokes a JSON-RPC method on the runtime gateway.
	Call(ctx context.Context, method string, params any, timeout time.Duration) (json.RawMessage, error)
}

// RuntimeClient shells out to the CLI binary and posts JSON-RPC to the
// gateway URL.
type RuntimeClient struct {
	binary     string
	gatewayURL string
	httpClient *http.Client
}

func NewRuntimeClient(binary, gatewayURL string) *RuntimeClient {
	return &RuntimeClient{
		binary:     binary,
		gatewayURL: strings.TrimRight(gatewayURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *RuntimeClient) RunCLI(ctx context.Context, args []string, timeout time.Duration) (string, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, c.binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s %s: %w (%s)", c.binary, strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

func (c *RuntimeClient) RunCLIJSON(ctx context.Context, args []string, timeout time.Duration) (json.RawMessage, error) {
	out, err := c.RunCLI(ctx, args, timeout)
	if err != nil {
		return nil, err
	}

	trimmed := strings.TrimSpace(out)
	if !json.Valid([]byte(trimmed)) {
		return nil, fmt.Errorf("%s %s: output is not JSON", c.binary, strings.Join(args, " "))
	}
	return json.RawMessage(trimmed), nil
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("gateway error %d: %s", e.Code, e.Message)
}

func (c *RuntimeClient) Call(ctx context.Context, method string, params any, timeout time.Duration) (json.RawMessage, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      uuid.NewString(),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.gatewayURL+"/rpc", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("gateway returned %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	var decoded rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode gateway response: %w", err)
	}
	if decoded.Error != nil {
		return nil, decoded.Error
	}
	return decoded.Result, nil
}
