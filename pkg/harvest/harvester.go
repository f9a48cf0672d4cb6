/*
Package harvest discovers and loads the documents the graph builder
extracts from: the runtime's already-indexed chunk text when available,
dated journal entries as a fallback, workspace reference notes, and the
living MEMORY.md itself. Missing files and directories are empty input,
never errors.
*/
package harvest

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/clawboard/clawboard/pkg/config"
	"github.com/clawboard/clawboard/pkg/gateway"
)

const (
	// journalBudget truncates each journal file read off disk.
	journalBudget = 10000
	// maxJournals caps the filesystem fallback at the newest entries.
	maxJournals = 6

	// SourceIndexed and SourceFilesystem tag which retrieval strategy
	// produced the seed set.
	SourceIndexed    = "indexed"
	SourceFilesystem = "filesystem"
)

// journalPattern matches dated journal filenames like 2026-08-30.md or
// 2026-08-30-standup.md.
var journalPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}.*\.md$`)

// SourceDocument is one discovered .md file. Ephemeral: recomputed on
// every read, never persisted.
type SourceDocument struct {
	Name    string    `json:"name"`
	Path    string    `json:"path"`
	Source  string    `json:"source"` // "workspace" or "memory"
	ModTime time.Time `json:"modTime"`
	Size    int64     `json:"size"`
	Content string    `json:"-"`
}

type Harvester struct {
	cfg *config.Config
	gw  gateway.Client
}

func New(cfg *config.Config, gw gateway.Client) *Harvester {
	return &Harvester{cfg: cfg, gw: gw}
}

/*
Seeds assembles the bootstrap document set. Indexed retrieval is tried
first; the filesystem journal fallback only runs when the index yields
nothing. Workspace root notes are always added on top, MEMORY.md is
always seeded when non-empty, and everything is deduplicated by
filename. A best-effort reindex of the workspace is fired without
blocking; its failure is logged and swallowed.
*/
func (h *Harvester) Seeds(ctx context.Context) ([]SourceDocument, string) {
	docs := h.indexedDocuments(ctx)
	source := SourceIndexed
	if len(docs) == 0 {
		docs = h.journalDocuments()
		source = SourceFilesystem
	}

	docs = append(docs, h.workspaceDocuments()...)
	if memory := h.memoryDocument(); memory != nil {
		docs = append(docs, *memory)
	}

	go func() {
		if err := gateway.TriggerReindex(context.Background(), h.gw, h.cfg.Workspace); err != nil {
			log.Debug("bootstrap reindex failed", "error", err)
		}
	}()

	return dedupeByName(docs), source
}

// WorkspaceAndMemoryDocuments lists every discoverable source document
// with content loaded, for the telemetry evidence panel.
func (h *Harvester) WorkspaceAndMemoryDocuments() []SourceDocument {
	docs := h.workspaceDocuments()
	docs = append(docs, h.memoryDirDocuments()...)
	if memory := h.memoryDocument(); memory != nil {
		docs = append(docs, *memory)
	}
	return dedupeByName(docs)
}

func (h *Harvester) indexedDocuments(ctx context.Context) []SourceDocument {
	status, err := gateway.GetMemoryStatus(ctx, h.gw)
	if err != nil || status.IndexPath == "" {
		if err != nil {
			log.Debug("memory status unavailable", "error", err)
		}
		return nil
	}

	files, err := readIndexedFiles(status.IndexPath)
	if err != nil {
		log.Debug("index read failed", "path", status.IndexPath, "error", err)
		return nil
	}

	var docs []SourceDocument
	for _, file := range files {
		if strings.TrimSpace(file.Text) == "" {
			continue
		}
		docs = append(docs, SourceDocument{
			Name:    filepath.Base(file.Path),
			Path:    file.Path,
			Source:  "memory",
			Size:    int64(len(file.Text)),
			Content: file.Text,
		})
	}
	return docs
}

func (h *Harvester) journalDocuments() []SourceDocument {
	entries, err := os.ReadDir(h.cfg.MemoryDir)
	if err != nil {
		return nil
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && journalPattern.MatchString(entry.Name()) {
			names = append(names, entry.Name())
		}
	}

	// Dated filenames sort chronologically; newest first.
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	if len(names) > maxJournals {
		names = names[:maxJournals]
	}

	var docs []SourceDocument
	for _, name := range names {
		if doc := h.loadDocument(filepath.Join(h.cfg.MemoryDir, name), "memory", journalBudget); doc != nil {
			docs = append(docs, *doc)
		}
	}
	return docs
}

func (h *Harvester) memoryDirDocuments() []SourceDocument {
	entries, err := os.ReadDir(h.cfg.MemoryDir)
	if err != nil {
		return nil
	}

	var docs []SourceDocument
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".md") {
			continue
		}
		if doc := h.loadDocument(filepath.Join(h.cfg.MemoryDir, name), "memory", journalBudget); doc != nil {
			docs = append(docs, *doc)
		}
	}
	return docs
}

// workspaceDocuments reads root-level .md files, excluding the primary
// memory document, which is seeded separately.
func (h *Harvester) workspaceDocuments() []SourceDocument {
	entries, err := os.ReadDir(h.cfg.Workspace)
	if err != nil {
		return nil
	}

	var docs []SourceDocument
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".md") || name == config.MemoryFileName {
			continue
		}
		if doc := h.loadDocument(filepath.Join(h.cfg.Workspace, name), "workspace", journalBudget); doc != nil {
			docs = append(docs, *doc)
		}
	}
	return docs
}

func (h *Harvester) memoryDocument() *SourceDocument {
	doc := h.loadDocument(h.cfg.MemoryFilePath, "workspace", journalBudget)
	if doc == nil || strings.TrimSpace(doc.Content) == "" {
		return nil
	}
	return doc
}

func (h *Harvester) loadDocument(path, source string, budget int) *SourceDocument {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Debug("source document unreadable", "path", path, "error", err)
		return nil
	}

	content := string(data)
	if len(content) > budget {
		content = content[:budget]
	}

	return &SourceDocument{
		Name:    filepath.Base(path),
		Path:    path,
		Source:  source,
		ModTime: info.ModTime(),
		Size:    info.Size(),
		Content: content,
	}
}

// dedupeByName keeps the first document seen under each filename, so
// indexed or fallback content wins over a later duplicate.
func dedupeByName(docs []SourceDocument) []SourceDocument {
	seen := map[string]struct{}{}
	out := docs[:0]
	for _, doc := range docs {
		if _, dup := seen[doc.Name]; dup {
			continue
		}
		seen[doc.Name] = struct{}{}
		out = append(out, doc)
	}
	return out
}
