package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jengzang/taste-records-go/internal/models"
)

// StayRepository handles database operations for stays
type StayRepository struct {
	db DBTX
}

// NewStayRepository creates a new stay repository
func NewStayRepository(db DBTX) *StayRepository {
	return &StayRepository{db: db}
}

const stayColumns = `id, user_id, lat, lng, start_time, end_time, duration_ms, created_at`

func scanStay(row interface{ Scan(...interface{}) error }, s *models.Stay) error {
	return row.Scan(&s.ID, &s.UserID, &s.Lat, &s.Lng, &s.StartTime, &s.EndTime, &s.DurationMs, &s.CreatedAt)
}

// Create inserts a stay and returns its ID
func (r *StayRepository) Create(ctx context.Context, s *models.Stay) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO stays (user_id, lat, lng, start_time, end_time, duration_ms) VALUES (?, ?, ?, ?, ?, ?)`,
		s.UserID, s.Lat, s.Lng, s.StartTime, s.EndTime, s.DurationMs)
	if err != nil {
		return 0, fmt.Errorf("failed to insert stay: %w", err)
	}
	return res.LastInsertId()
}

// GetStays retrieves stays with filtering and pagination
func (r *StayRepository) GetStays(ctx context.Context, filter models.StayFilter) ([]models.Stay, int64, error) {
	var conditions []string
	var args []interface{}

	if filter.UserID > 0 {
		conditions = append(conditions, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.StartTime > 0 {
		conditions = append(conditions, "start_time >= ?")
		args = append(args, filter.StartTime)
	}
	if filter.EndTime > 0 {
		conditions = append(conditions, "end_time <= ?")
		args = append(args, filter.EndTime)
	}
	if filter.MinDurationMs > 0 {
		conditions = append(conditions, "duration_ms >= ?")
		args = append(args, filter.MinDurationMs)
	}
	where := whereClause(conditions)

	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM stays"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count stays: %w", err)
	}

	page, pageSize := normalizePage(filter.Page, filter.PageSize)
	query := "SELECT " + stayColumns + " FROM stays" + where + " ORDER BY start_time DESC LIMIT ? OFFSET ?"
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query stays: %w", err)
	}
	defer rows.Close()

	stays := []models.Stay{}
	for rows.Next() {
		var s models.Stay
		if err := scanStay(rows, &s); err != nil {
			return nil, 0, fmt.Errorf("failed to scan stay: %w", err)
		}
		stays = append(stays, s)
	}

	return stays, total, rows.Err()
}

// GetStayByID retrieves a single stay, or nil if none exists
func (r *StayRepository) GetStayByID(ctx context.Context, id int64) (*models.Stay, error) {
	var s models.Stay
	err := scanStay(r.db.QueryRowContext(ctx, "SELECT "+stayColumns+" FROM stays WHERE id = ?", id), &s)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get stay: %w", err)
	}
	return &s, nil
}

// Summary returns the number of stays and the total dwell time of a user
func (r *StayRepository) Summary(ctx context.Context, userID int64) (count int64, totalMs int64, err error) {
	err = r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(duration_ms), 0) FROM stays WHERE user_id = ?`, userID).
		Scan(&count, &totalMs)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to summarize stays: %w", err)
	}
	return count, totalMs, nil
}

// Recent returns the latest stays of a user, newest first
func (r *StayRepository) Recent(ctx context.Context, userID int64, limit int) ([]models.Stay, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+stayColumns+" FROM stays WHERE user_id = ? ORDER BY start_time DESC LIMIT ?", userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent stays: %w", err)
	}
	defer rows.Close()

	var stays []models.Stay
	for rows.Next() {
		var s models.Stay
		if err := scanStay(rows, &s); err != nil {
			return nil, fmt.Errorf("failed to scan stay: %w", err)
		}
		stays = append(stays, s)
	}
	return stays, rows.Err()
}
