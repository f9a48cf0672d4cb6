package service

import (
	"encoding/json"
	"os"

	"github.com/charmbracelet/log"
	"github.com/cohesivestack/valgo"
	"github.com/gofiber/fiber/v3"

	"github.com/clawboard/clawboard/pkg/errors"
	"github.com/clawboard/clawboard/pkg/extract"
	"github.com/clawboard/clawboard/pkg/gateway"
	"github.com/clawboard/clawboard/pkg/graph"
	"github.com/clawboard/clawboard/pkg/provider"
	"github.com/clawboard/clawboard/pkg/synth"
	"github.com/clawboard/clawboard/pkg/telemetry"
)

// bootstrapInfo is the provenance block returned with a freshly built
// graph.
type bootstrapInfo struct {
	Source          string   `json:"source"`
	Files           []string `json:"files"`
	ExtractionError string   `json:"extractionError,omitempty"`
	DocumentErrors  []string `json:"documentErrors,omitempty"`
}

type pathsInfo struct {
	GraphJSON     string `json:"graphJson"`
	GraphMarkdown string `json:"graphMarkdown"`
	MemoryFile    string `json:"memoryFile"`
}

type graphResponse struct {
	Graph     *graph.KnowledgeGraph `json:"graph"`
	Bootstrap *bootstrapInfo        `json:"bootstrap,omitempty"`
	Telemetry *telemetry.Telemetry  `json:"telemetry,omitempty"`
	Workspace string                `json:"workspace"`
	Paths     pathsInfo             `json:"paths"`
	Reindex   ReindexStatus         `json:"reindex"`
}

type graphWriteRequest struct {
	Action  string          `json:"action"`
	Graph   json.RawMessage `json:"graph"`
	Reindex *bool           `json:"reindex"`
}

/*
handleGetGraph serves the dashboard's main read. The persisted graph is
loaded and reconciled against the live agent roster; with
mode=bootstrap, or when nothing is persisted yet, a fresh graph is
built from harvested documents instead.
*/
func (srv *Server) handleGetGraph(ctx fiber.Ctx) error {
	roster := srv.roster(ctx)

	var (
		g    *graph.KnowledgeGraph
		info *bootstrapInfo
	)

	if ctx.Query("mode") == "bootstrap" || !srv.store.Exists() {
		g, info = srv.bootstrap(ctx, roster)
		if err := srv.persist(g); err != nil {
			return fail(ctx, err)
		}
	} else {
		loaded, err := srv.store.Load()
		if err != nil {
			return fail(ctx, err)
		}
		g = graph.ReconcileAgents(loaded, roster, srv.store.Meta())
	}

	return ctx.JSON(graphResponse{
		Graph:     g,
		Bootstrap: info,
		Telemetry: srv.assembler.Assemble(ctx.Context()),
		Workspace: srv.cfg.Workspace,
		Paths:     srv.paths(),
		Reindex:   srv.reindex.Status(),
	})
}

/*
handlePostGraph applies one of two write actions: "save" normalizes and
persists a client-supplied graph, "publish-memory-md" rewrites the
snapshot region of MEMORY.md from the persisted graph. Both optionally
trigger a workspace reindex; `reindex:false` suppresses it.
*/
func (srv *Server) handlePostGraph(ctx fiber.Ctx) error {
	var req graphWriteRequest
	if err := ctx.Bind().Body(&req); err != nil {
		return fail(ctx, errors.ErrInvalidParams.WithMessagef("invalid body: %v", err))
	}

	val := valgo.Is(
		valgo.String(req.Action, "action").Not().Blank().
			InSlice([]string{"save", "publish-memory-md"}),
	)
	if req.Action == "save" {
		val.Is(valgo.String(string(req.Graph), "graph").Not().Blank())
	}
	if !val.Valid() {
		return fail(ctx, errors.ErrInvalidParams.WithMessagef("%v", val.Error()))
	}

	switch req.Action {
	case "save":
		return srv.saveGraph(ctx, req)
	default:
		return srv.publishMemory(ctx, req)
	}
}

func (srv *Server) saveGraph(ctx fiber.Ctx, req graphWriteRequest) error {
	var raw graph.RawGraph
	if err := json.Unmarshal(req.Graph, &raw); err != nil {
		return fail(ctx, errors.ErrInvalidParams.WithMessagef("graph is not an object: %v", err))
	}

	g := graph.Normalize(raw, srv.store.Meta())
	if err := srv.persist(g); err != nil {
		return fail(ctx, err)
	}

	srv.maybeReindex(req.Reindex)

	return ctx.JSON(graphResponse{
		Graph:     g,
		Workspace: srv.cfg.Workspace,
		Paths:     srv.paths(),
		Reindex:   srv.reindex.Status(),
	})
}

func (srv *Server) publishMemory(ctx fiber.Ctx, req graphWriteRequest) error {
	g, err := srv.store.LoadIfExists()
	if err != nil {
		return fail(ctx, err)
	}
	if g == nil {
		return fail(ctx, errors.ErrNotFound.WithMessagef("no persisted graph to publish"))
	}

	document := ""
	if data, err := os.ReadFile(srv.cfg.MemoryFilePath); err == nil {
		document = string(data)
	}

	updated := synth.UpsertSnapshot(document, synth.SnapshotSection(g))
	if err := os.WriteFile(srv.cfg.MemoryFilePath, []byte(updated), 0o644); err != nil {
		return fail(ctx, err)
	}

	srv.maybeReindex(req.Reindex)

	return ctx.JSON(fiber.Map{
		"ok":      true,
		"path":    srv.cfg.MemoryFilePath,
		"reindex": srv.reindex.Status(),
	})
}

/*
bootstrap harvests seed documents and builds a fresh graph. A missing
API key disables extraction rather than failing the request; the reason
is surfaced in the provenance block.
*/
func (srv *Server) bootstrap(ctx fiber.Ctx, roster []graph.Agent) (*graph.KnowledgeGraph, *bootstrapInfo) {
	docs, source := srv.harvester.Seeds(ctx.Context())

	seeds := make([]graph.Seed, 0, len(docs))
	for _, doc := range docs {
		seeds = append(seeds, graph.Seed{Name: doc.Name, Content: doc.Content})
	}

	info := &bootstrapInfo{Source: source}

	ex, err := srv.newExtractor()
	if err != nil {
		info.ExtractionError = graph.NoKeyReport(err)
		log.Warn("extraction disabled for bootstrap", "reason", info.ExtractionError)
	}

	g, report := graph.Build(ctx.Context(), ex, seeds, roster, srv.store.Meta())
	info.Files = report.Files
	for _, docErr := range report.Errors {
		info.DocumentErrors = append(info.DocumentErrors, docErr.Error())
	}

	return graph.NormalizeGraph(g, srv.store.Meta()), info
}

func (srv *Server) newExtractor() (*extract.Extractor, error) {
	prvdr, err := provider.New(provider.Config{
		Name:   srv.cfg.Provider,
		Model:  srv.cfg.Model,
		APIKey: srv.cfg.ResolveAPIKey(provider.KeyVar(srv.cfg.Provider)),
	})
	if err != nil {
		return nil, err
	}
	return extract.New(prvdr), nil
}

// persist writes the canonical JSON and regenerates the markdown
// mirror next to it.
func (srv *Server) persist(g *graph.KnowledgeGraph) error {
	if err := srv.store.Save(g); err != nil {
		return err
	}
	if err := os.WriteFile(srv.cfg.GraphMarkdownPath, []byte(synth.ToMarkdown(g)), 0o644); err != nil {
		return err
	}
	return nil
}

// roster fetches the live agent roster, degrading to empty on error.
func (srv *Server) roster(ctx fiber.Ctx) []graph.Agent {
	agents, err := gateway.ListAgents(ctx.Context(), srv.gw)
	if err != nil {
		log.Debug("agent roster unavailable", "error", err)
		return nil
	}

	roster := make([]graph.Agent, 0, len(agents))
	for _, agent := range agents {
		roster = append(roster, graph.Agent{ID: agent.ID, Name: agent.Name})
	}
	return roster
}

func (srv *Server) maybeReindex(flag *bool) {
	if flag != nil && !*flag {
		return
	}
	srv.reindex.start(srv.gw, srv.cfg.Workspace)
}

func (srv *Server) paths() pathsInfo {
	return pathsInfo{
		GraphJSON:     srv.cfg.GraphJSONPath,
		GraphMarkdown: srv.cfg.GraphMarkdownPath,
		MemoryFile:    srv.cfg.MemoryFilePath,
	}
}
