package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jengzang/taste-records-go/internal/models"
	"github.com/jengzang/taste-records-go/internal/stay"
)

// StayAPI wraps the /stays endpoints
type StayAPI struct {
	c *Client
}

// Stays returns the stay endpoints
func (c *Client) Stays() *StayAPI {
	return &StayAPI{c: c}
}

// Create stores one detected stay
func (a *StayAPI) Create(ctx context.Context, req models.CreateStayRequest) (*models.Stay, error) {
	var s models.Stay
	if err := a.c.Do(ctx, http.MethodPost, "/api/v1/stays", req, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// List returns the user's stays
func (a *StayAPI) List(ctx context.Context, filter models.StayFilter) (*models.StaysResponse, error) {
	q := url.Values{}
	setInt(q, "startTime", filter.StartTime)
	setInt(q, "endTime", filter.EndTime)
	setInt(q, "minDuration", filter.MinDurationMs)
	setInt(q, "page", int64(filter.Page))
	setInt(q, "pageSize", int64(filter.PageSize))

	var out models.StaysResponse
	if err := a.c.Do(ctx, http.MethodGet, withQuery("/api/v1/stays", q), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// StayReporter sends detected stays through the stays endpoint
type StayReporter struct {
	api *StayAPI
}

// NewStayReporter creates a reporter for a tracker
func NewStayReporter(c *Client) *StayReporter {
	return &StayReporter{api: c.Stays()}
}

// ReportStay implements stay.Reporter
func (r *StayReporter) ReportStay(ctx context.Context, rep stay.Report) error {
	_, err := r.api.Create(ctx, models.CreateStayRequest{
		Lat:       rep.Lat,
		Lng:       rep.Lng,
		StartTime: rep.StartTimeMs,
		EndTime:   rep.EndTimeMs,
	})
	if err != nil {
		return fmt.Errorf("report stay: %w", err)
	}
	return nil
}

func setInt(q url.Values, key string, v int64) {
	if v > 0 {
		q.Set(key, strconv.FormatInt(v, 10))
	}
}

func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}
