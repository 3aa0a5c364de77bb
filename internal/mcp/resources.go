// ABOUTME: MCP resource implementations for tribe.
// ABOUTME: Provides tribe://badges and tribe://leaderboard resources.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/harperreed/tribe/internal/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	badgesURI      = "tribe://badges"
	leaderboardURI = "tribe://leaderboard"
)

func (s *Server) registerResources() {
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         badgesURI,
		Name:        "Badge Catalog",
		Description: "Every badge with rarity and whether the configured user holds it",
		MIMEType:    "application/json",
	}, s.handleBadgesResource)

	s.mcpServer.AddResource(&mcp.Resource{
		URI:         leaderboardURI,
		Name:        "Tribe Leaderboard",
		Description: "Members of the configured tribe ranked by lifetime XP",
		MIMEType:    "application/json",
	}, s.handleLeaderboardResource)
}

type badgeView struct {
	models.Badge
	Unlocked bool `json:"unlocked"`
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

func (s *Server) handleBadgesResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	state, err := s.engine.State(ctx, s.profile)
	if err != nil {
		return nil, fmt.Errorf("failed to load state: %w", err)
	}

	badges := make([]badgeView, 0, len(models.Badges))
	unlocked := 0
	for _, b := range models.Badges {
		has := state.HasBadge(b.ID)
		if has {
			unlocked++
		}
		badges = append(badges, badgeView{Badge: b, Unlocked: has})
	}

	return jsonResource(badgesURI, map[string]any{
		"user":     s.profile.DisplayName,
		"badges":   badges,
		"unlocked": unlocked,
		"total":    len(badges),
	})
}

func (s *Server) handleLeaderboardResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	rows, err := s.engine.Leaderboard(ctx, s.profile.TribeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}
	stats, err := s.engine.TeamStats().Get(ctx, s.profile.TribeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load team stats: %w", err)
	}

	return jsonResource(leaderboardURI, map[string]any{
		"generated_at": time.Now().Format(time.RFC3339),
		"tribe":        s.profile.TribeID,
		"members":      rows,
		"team":         stats,
	})
}
