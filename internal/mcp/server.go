// ABOUTME: MCP server setup for the tribe gamification engine.
// ABOUTME: Wraps the MCP server with storage, engine, and a default profile.
package mcp

import (
	"context"

	"github.com/harperreed/tribe/internal/gamification"
	"github.com/harperreed/tribe/internal/models"
	"github.com/harperreed/tribe/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the MCP server with storage and engine access.
type Server struct {
	mcpServer *mcp.Server
	repo      storage.Repository
	engine    *gamification.Engine
	profile   models.UserProfile
}

// NewServer creates a new MCP server. profile is used when a tool call
// names no user or tribe.
func NewServer(repo storage.Repository, engine *gamification.Engine, profile models.UserProfile) (*Server, error) {
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "tribe",
			Version: "1.0.0",
		},
		nil,
	)

	s := &Server{
		mcpServer: mcpServer,
		repo:      repo,
		engine:    engine,
		profile:   profile,
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve starts the MCP server using stdio transport.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}

// profileFor resolves a tool's user and tribe arguments against the default.
func (s *Server) profileFor(user, tribe string) models.UserProfile {
	p := s.profile
	if user != "" && user != p.DisplayName {
		p.DisplayName = user
		p.ID = user
	}
	if tribe != "" {
		p.TribeID = tribe
	}
	return p
}
