package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jengzang/taste-records-go/internal/models"
)

// GuildAPI wraps the /guilds endpoints
type GuildAPI struct {
	c *Client
}

// Guilds returns the guild endpoints
func (c *Client) Guilds() *GuildAPI {
	return &GuildAPI{c: c}
}

// Create creates a guild owned by the current user
func (a *GuildAPI) Create(ctx context.Context, req models.CreateGuildRequest) (*models.Guild, error) {
	var g models.Guild
	if err := a.c.Do(ctx, http.MethodPost, "/api/v1/guilds", req, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// List returns all guilds, or only the user's when mine is set
func (a *GuildAPI) List(ctx context.Context, mine bool) ([]models.Guild, error) {
	path := "/api/v1/guilds"
	if mine {
		path += "?mine=true"
	}
	var out []models.Guild
	if err := a.c.Do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns a guild with its members
func (a *GuildAPI) Get(ctx context.Context, id int64) (*models.Guild, error) {
	var g models.Guild
	if err := a.c.Do(ctx, http.MethodGet, fmt.Sprintf("/api/v1/guilds/%d", id), nil, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// Join joins a guild
func (a *GuildAPI) Join(ctx context.Context, id int64) (*models.Guild, error) {
	var g models.Guild
	if err := a.c.Do(ctx, http.MethodPost, fmt.Sprintf("/api/v1/guilds/%d/join", id), nil, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// Leave leaves a guild
func (a *GuildAPI) Leave(ctx context.Context, id int64) error {
	return a.c.Do(ctx, http.MethodPost, fmt.Sprintf("/api/v1/guilds/%d/leave", id), nil, nil)
}

// CreateMission posts a mission to a guild the user owns
func (a *GuildAPI) CreateMission(ctx context.Context, guildID int64, req models.CreateMissionRequest) (*models.Mission, error) {
	var m models.Mission
	if err := a.c.Do(ctx, http.MethodPost, fmt.Sprintf("/api/v1/guilds/%d/missions", guildID), req, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// ListMissions lists a guild's missions
func (a *GuildAPI) ListMissions(ctx context.Context, guildID int64) ([]models.Mission, error) {
	var out []models.Mission
	if err := a.c.Do(ctx, http.MethodGet, fmt.Sprintf("/api/v1/guilds/%d/missions", guildID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CompleteMission marks a mission done for the current user
func (a *GuildAPI) CompleteMission(ctx context.Context, guildID, missionID int64) (*models.Mission, error) {
	var m models.Mission
	path := fmt.Sprintf("/api/v1/guilds/%d/missions/%d/complete", guildID, missionID)
	if err := a.c.Do(ctx, http.MethodPost, path, nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
