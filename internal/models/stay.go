package models

// Stay is a persisted dwell window reported by a tracking client
type Stay struct {
	ID         int64   `json:"id" db:"id"`
	UserID     int64   `json:"userId" db:"user_id"`
	Lat        float64 `json:"lat" db:"lat"`
	Lng        float64 `json:"lng" db:"lng"`
	StartTime  int64   `json:"startTime" db:"start_time"`   // epoch milliseconds
	EndTime    int64   `json:"endTime" db:"end_time"`       // epoch milliseconds
	DurationMs int64   `json:"durationMs" db:"duration_ms"` // EndTime - StartTime
	CreatedAt  string  `json:"createdAt,omitempty" db:"created_at"`
}

// CreateStayRequest is the body of POST /api/v1/stays
type CreateStayRequest struct {
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	StartTime int64   `json:"startTime"`
	EndTime   int64   `json:"endTime"`
}

// StaysResponse represents a paginated response of stays
type StaysResponse struct {
	Data       []Stay `json:"data"`
	Total      int64  `json:"total"`
	Page       int    `json:"page"`
	PageSize   int    `json:"pageSize"`
	TotalPages int    `json:"totalPages"`
}

// StayFilter represents filter parameters for querying stays
type StayFilter struct {
	UserID        int64 `form:"-"`
	StartTime     int64 `form:"startTime"`
	EndTime       int64 `form:"endTime"`
	MinDurationMs int64 `form:"minDuration"`
	Page          int   `form:"page"`
	PageSize      int   `form:"pageSize"`
}
