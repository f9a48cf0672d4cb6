package service

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/clawboard/clawboard/pkg/gateway"
)

// ReindexStatus is the side channel for fire-and-forget reindex
// outcomes: a save responds before indexing finishes, so the result of
// the previous run rides along on the next request instead.
type ReindexStatus struct {
	Running     bool   `json:"running"`
	LastError   string `json:"lastError,omitempty"`
	CompletedAt string `json:"completedAt,omitempty"`
}

type reindexTracker struct {
	mu     sync.Mutex
	status ReindexStatus
}

func (t *reindexTracker) Status() ReindexStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// start launches one reindex run unless one is already in flight.
func (t *reindexTracker) start(gw gateway.Client, workspace string) {
	t.mu.Lock()
	if t.status.Running {
		t.mu.Unlock()
		return
	}
	t.status.Running = true
	t.mu.Unlock()

	go func() {
		err := gateway.TriggerReindex(context.Background(), gw, workspace)

		t.mu.Lock()
		t.status.Running = false
		t.status.CompletedAt = time.Now().UTC().Format(time.RFC3339)
		if err != nil {
			t.status.LastError = err.Error()
			log.Warn("workspace reindex failed", "error", err)
		} else {
			t.status.LastError = ""
		}
		t.mu.Unlock()
	}()
}
