package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/jengzang/taste-records-go/internal/models"
)

// TasteRecordAPI wraps the /taste-records endpoints
type TasteRecordAPI struct {
	c *Client
}

// TasteRecords returns the taste record endpoints
func (c *Client) TasteRecords() *TasteRecordAPI {
	return &TasteRecordAPI{c: c}
}

// Create stores a record
func (a *TasteRecordAPI) Create(ctx context.Context, in models.TasteRecordInput) (*models.TasteRecord, error) {
	var rec models.TasteRecord
	if err := a.c.Do(ctx, http.MethodPost, "/api/v1/taste-records", in, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// List returns the user's records
func (a *TasteRecordAPI) List(ctx context.Context, filter models.TasteRecordFilter) (*models.TasteRecordsResponse, error) {
	q := url.Values{}
	if filter.Category != "" {
		q.Set("category", filter.Category)
	}
	if filter.Tag != "" {
		q.Set("tag", filter.Tag)
	}
	setInt(q, "page", int64(filter.Page))
	setInt(q, "pageSize", int64(filter.PageSize))

	var out models.TasteRecordsResponse
	if err := a.c.Do(ctx, http.MethodGet, withQuery("/api/v1/taste-records", q), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Get returns one record
func (a *TasteRecordAPI) Get(ctx context.Context, id int64) (*models.TasteRecord, error) {
	var rec models.TasteRecord
	if err := a.c.Do(ctx, http.MethodGet, fmt.Sprintf("/api/v1/taste-records/%d", id), nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Update replaces a record
func (a *TasteRecordAPI) Update(ctx context.Context, id int64, in models.TasteRecordInput) (*models.TasteRecord, error) {
	var rec models.TasteRecord
	if err := a.c.Do(ctx, http.MethodPut, fmt.Sprintf("/api/v1/taste-records/%d", id), in, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Delete removes a record
func (a *TasteRecordAPI) Delete(ctx context.Context, id int64) error {
	return a.c.Do(ctx, http.MethodDelete, fmt.Sprintf("/api/v1/taste-records/%d", id), nil, nil)
}

// Categories lists the accepted categories
func (a *TasteRecordAPI) Categories(ctx context.Context) ([]string, error) {
	var out []string
	if err := a.c.Do(ctx, http.MethodGet, "/api/v1/categories", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
