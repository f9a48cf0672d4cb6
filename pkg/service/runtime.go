package service

import (
	"github.com/gofiber/fiber/v3"

	"github.com/clawboard/clawboard/pkg/gateway"
)

const sessionListLimit = 20

// handleAgents forwards the runtime's agent roster.
func (srv *Server) handleAgents(ctx fiber.Ctx) error {
	agents, err := gateway.ListAgents(ctx.Context(), srv.gw)
	if err != nil {
		return fail(ctx, err)
	}
	if agents == nil {
		agents = []gateway.Agent{}
	}
	return ctx.JSON(fiber.Map{"agents": agents})
}

// handleSessions forwards recent sessions, newest first.
func (srv *Server) handleSessions(ctx fiber.Ctx) error {
	sessions, err := gateway.ListSessions(ctx.Context(), srv.gw, sessionListLimit)
	if err != nil {
		return fail(ctx, err)
	}
	if sessions == nil {
		sessions = []gateway.Session{}
	}
	return ctx.JSON(fiber.Map{"sessions": sessions})
}
