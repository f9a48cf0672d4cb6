/*
Package service is the dashboard's HTTP surface: the knowledge-graph
read/write endpoints plus thin pass-throughs to the agent runtime.
*/
package service

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/clawboard/clawboard/pkg/config"
	"github.com/clawboard/clawboard/pkg/errors"
	"github.com/clawboard/clawboard/pkg/gateway"
	"github.com/clawboard/clawboard/pkg/graph"
	"github.com/clawboard/clawboard/pkg/harvest"
	"github.com/clawboard/clawboard/pkg/telemetry"
)

/*
Server is safe for concurrent use: the graph store writes whole files
and the reindex tracker carries its own lock. Concurrent saves are
last-write-wins on the graph files.
*/
type Server struct {
	app       *fiber.App
	cfg       *config.Config
	gw        gateway.Client
	store     *graph.Store
	harvester *harvest.Harvester
	assembler *telemetry.Assembler
	reindex   *reindexTracker
}

func NewServer(cfg *config.Config, gw gateway.Client) *Server {
	meta := graph.Meta{
		Workspace:    cfg.Workspace,
		GraphPath:    cfg.GraphJSONPath,
		MarkdownPath: cfg.GraphMarkdownPath,
	}
	harvester := harvest.New(cfg, gw)

	srv := &Server{
		app: fiber.New(fiber.Config{
			AppName:      "clawboard",
			ServerHeader: "Clawboard",
		}),
		cfg:       cfg,
		gw:        gw,
		store:     graph.NewStore(meta),
		harvester: harvester,
		assembler: telemetry.New(gw, harvester),
		reindex:   &reindexTracker{},
	}

	srv.app.Use(logger.New(), healthcheck.NewHealthChecker())
	srv.app.Get("/api/memory/graph", srv.handleGetGraph)
	srv.app.Post("/api/memory/graph", srv.handlePostGraph)
	srv.app.Get("/api/agents", srv.handleAgents)
	srv.app.Get("/api/sessions", srv.handleSessions)

	return srv
}

// App exposes the fiber app for tests (app.Test) and embedding.
func (srv *Server) App() *fiber.App {
	return srv.app
}

func (srv *Server) Start() error {
	return srv.app.Listen(srv.cfg.Listen, fiber.ListenConfig{
		DisableStartupMessage: true,
	})
}

// fail maps an error onto the wire: typed API errors keep their status,
// anything else becomes a 500 with the stringified error.
func fail(ctx fiber.Ctx, err error) error {
	if apiErr, ok := err.(*errors.APIError); ok {
		return ctx.Status(apiErr.Status).JSON(apiErr)
	}
	return ctx.Status(fiber.StatusInternalServerError).JSON(
		errors.ErrInternal.WithMessagef("%s", err.Error()),
	)
}
