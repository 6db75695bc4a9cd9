package client

import (
	"context"
	"net/http"

	"github.com/jengzang/taste-records-go/internal/models"
)

// DashboardAPI wraps the /dashboard endpoints
type DashboardAPI struct {
	c *Client
}

// Dashboard returns the dashboard endpoints
func (c *Client) Dashboard() *DashboardAPI {
	return &DashboardAPI{c: c}
}

// Personal returns the current user's dashboard
func (a *DashboardAPI) Personal(ctx context.Context) (*models.PersonalDashboard, error) {
	var d models.PersonalDashboard
	if err := a.c.Do(ctx, http.MethodGet, "/api/v1/dashboard/me", nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// Aggregate returns the dashboard across all users
func (a *DashboardAPI) Aggregate(ctx context.Context) (*models.AggregateDashboard, error) {
	var d models.AggregateDashboard
	if err := a.c.Do(ctx, http.MethodGet, "/api/v1/dashboard/aggregate", nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}
