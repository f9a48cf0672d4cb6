/*
Package telemetry assembles the read-only context block the dashboard
renders next to the graph: recent chat activity pulled from the runtime
and an evidence scan of every discoverable source document. Assembly is
best-effort throughout; a failing branch degrades to an empty slice and
never fails the request.
*/
package telemetry

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/clawboard/clawboard/pkg/evidence"
	"github.com/clawboard/clawboard/pkg/gateway"
	"github.com/clawboard/clawboard/pkg/harvest"
)

const (
	// sessionLimit bounds how many recent sessions feed the chat feed.
	sessionLimit = 3
	// historyLimit bounds messages per session.
	historyLimit = 10
	// chunksPerDocument bounds the evidence scan per file.
	chunksPerDocument = 40
)

// RecentChatMessage is one flattened message of the recent-activity
// feed.
type RecentChatMessage struct {
	SessionKey string `json:"sessionKey"`
	Role       string `json:"role"`
	Timestamp  int64  `json:"timestamp"`
	Text       string `json:"text"`
}

// DocumentEvidence is the evidence scan of one source document.
type DocumentEvidence struct {
	Name   string           `json:"name"`
	Source string           `json:"source"`
	Size   int64            `json:"size"`
	Chunks []evidence.Chunk `json:"chunks"`
	Facts  []evidence.Fact  `json:"facts"`
}

type Telemetry struct {
	RecentChat []RecentChatMessage `json:"recentChat"`
	Documents  []DocumentEvidence  `json:"documents"`
}

type Assembler struct {
	gw        gateway.Client
	harvester *harvest.Harvester
}

func New(gw gateway.Client, harvester *harvest.Harvester) *Assembler {
	return &Assembler{gw: gw, harvester: harvester}
}

// Assemble gathers both branches concurrently and joins them.
func (a *Assembler) Assemble(ctx context.Context) *Telemetry {
	out := &Telemetry{
		RecentChat: []RecentChatMessage{},
		Documents:  []DocumentEvidence{},
	}

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		out.RecentChat = a.recentChat(ctx)
	}()

	go func() {
		defer wg.Done()
		out.Documents = a.documentEvidence()
	}()

	wg.Wait()
	return out
}

func (a *Assembler) recentChat(ctx context.Context) []RecentChatMessage {
	messages := []RecentChatMessage{}

	sessions, err := gateway.ListSessions(ctx, a.gw, sessionLimit)
	if err != nil {
		log.Debug("session list unavailable", "error", err)
		return messages
	}

	for _, session := range sessions {
		history, err := gateway.ChatHistory(ctx, a.gw, session.Key, historyLimit)
		if err != nil {
			log.Debug("chat history unavailable", "session", session.Key, "error", err)
			continue
		}
		for _, msg := range history {
			text := gateway.MessageText(msg.Content)
			if text == "" {
				continue
			}
			messages = append(messages, RecentChatMessage{
				SessionKey: session.Key,
				Role:       msg.Role,
				Timestamp:  msg.Timestamp,
				Text:       text,
			})
		}
	}
	return messages
}

func (a *Assembler) documentEvidence() []DocumentEvidence {
	docs := []DocumentEvidence{}

	for _, doc := range a.harvester.WorkspaceAndMemoryDocuments() {
		chunks, facts := evidence.Extract(doc.Content, chunksPerDocument)
		docs = append(docs, DocumentEvidence{
			Name:   doc.Name,
			Source: doc.Source,
			Size:   doc.Size,
			Chunks: chunks,
			Facts:  facts,
		})
	}
	return docs
}
