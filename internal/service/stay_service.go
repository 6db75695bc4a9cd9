package service

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/jengzang/taste-records-go/internal/models"
	"github.com/jengzang/taste-records-go/internal/repository"
	"github.com/jengzang/taste-records-go/internal/spatial"
)

// StayService handles business logic for reported stays
type StayService struct {
	repo   *repository.StayRepository
	logger *zap.Logger
}

// NewStayService creates a new stay service
func NewStayService(repo *repository.StayRepository, logger *zap.Logger) *StayService {
	return &StayService{repo: repo, logger: logger}
}

// CreateStay validates and stores one reported dwell window
func (s *StayService) CreateStay(ctx context.Context, userID int64, req models.CreateStayRequest) (*models.Stay, error) {
	if !spatial.ValidCoordinate(req.Lat, req.Lng) {
		return nil, invalid("lat/lng", "out of range")
	}
	if req.StartTime <= 0 {
		return nil, invalid("startTime", "must be a positive epoch millisecond timestamp")
	}
	if req.EndTime < req.StartTime {
		return nil, invalid("endTime", "must not precede startTime")
	}

	stay := &models.Stay{
		UserID:     userID,
		Lat:        req.Lat,
		Lng:        req.Lng,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		DurationMs: req.EndTime - req.StartTime,
	}
	id, err := s.repo.Create(ctx, stay)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Stay recorded",
		zap.Int64("stay_id", id),
		zap.Int64("user_id", userID),
		zap.Int64("duration_ms", stay.DurationMs))

	return s.repo.GetStayByID(ctx, id)
}

// GetStays retrieves a user's stays with filtering and pagination
func (s *StayService) GetStays(ctx context.Context, filter models.StayFilter) (*models.StaysResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 100
	}
	if filter.PageSize > 1000 {
		filter.PageSize = 1000
	}

	stays, total, err := s.repo.GetStays(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to get stays: %w", err)
	}

	return &models.StaysResponse{
		Data:       stays,
		Total:      total,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.PageSize))),
	}, nil
}

// GetStayByID retrieves one of the user's stays
func (s *StayService) GetStayByID(ctx context.Context, userID, id int64) (*models.Stay, error) {
	stay, err := s.repo.GetStayByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if stay == nil || stay.UserID != userID {
		return nil, ErrNotFound
	}
	return stay, nil
}
