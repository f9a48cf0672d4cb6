package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"
)

/*
FakeClient is the in-memory test double used across the repo. CLI
responses are keyed by joined args, RPC responses by method name; every
call is recorded so tests can assert on invocation counts.
*/
type FakeClient struct {
	mu sync.Mutex

	CLIResponses map[string]string
	RPCResponses map[string]string
	Err          error

	CLICalls []string
	RPCCalls []string
}

func NewFakeClient() *FakeClient {
	return &FakeClient{
		CLIResponses: map[string]string{},
		RPCResponses: map[string]string{},
	}
}

func (f *FakeClient) RunCLI(ctx context.Context, args []string, timeout time.Duration) (string, error) {
	key := strings.Join(args, " ")

	f.mu.Lock()
	f.CLICalls = append(f.CLICalls, key)
	f.mu.Unlock()

	if f.Err != nil {
		return "", f.Err
	}
	for prefix, response := range f.CLIResponses {
		if strings.HasPrefix(key, prefix) {
			return response, nil
		}
	}
	return "", fmt.Errorf("fake: no CLI response for %q", key)
}

func (f *FakeClient) RunCLIJSON(ctx context.Context, args []string, timeout time.Duration) (json.RawMessage, error) {
	out, err := f.RunCLI(ctx, args, timeout)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(out), nil
}

func (f *FakeClient) Call(ctx context.Context, method string, params any, timeout time.Duration) (json.RawMessage, error) {
	f.mu.Lock()
	f.RPCCalls = append(f.RPCCalls, method)
	f.mu.Unlock()

	if f.Err != nil {
		return nil, f.Err
	}
	if response, ok := f.RPCResponses[method]; ok {
		return json.RawMessage(response), nil
	}
	return nil, fmt.Errorf("fake: no RPC response for %q", method)
}

// CLICallCount returns how many CLI invocations started with prefix.
func (f *FakeClient) CLICallCount(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	count := 0
	for _, call := range f.CLICalls {
		if strings.HasPrefix(call, prefix) {
			count++
		}
	}
	return count
}
