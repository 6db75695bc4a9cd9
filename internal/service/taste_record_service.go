package service

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jengzang/taste-records-go/internal/database"
	"github.com/jengzang/taste-records-go/internal/models"
	"github.com/jengzang/taste-records-go/internal/repository"
	"github.com/jengzang/taste-records-go/internal/spatial"
)

const maxTags = 10

// TasteRecordService handles business logic for taste records
type TasteRecordService struct {
	db     *sql.DB
	repo   *repository.TasteRecordRepository
	logger *zap.Logger
	now    func() time.Time
}

// NewTasteRecordService creates a new taste record service
func NewTasteRecordService(db *sql.DB, repo *repository.TasteRecordRepository, logger *zap.Logger) *TasteRecordService {
	return &TasteRecordService{db: db, repo: repo, logger: logger, now: time.Now}
}

func (s *TasteRecordService) normalize(in models.TasteRecordInput) (*models.TasteRecord, error) {
	name := strings.TrimSpace(in.PlaceName)
	if name == "" || len([]rune(name)) > 100 {
		return nil, invalid("placeName", "must be 1 to 100 characters")
	}
	category := strings.ToUpper(strings.TrimSpace(in.Category))
	if !slices.Contains(models.Categories, category) {
		return nil, invalid("category", "must be one of "+strings.Join(models.Categories, ", "))
	}
	if in.Rating < 1 || in.Rating > 5 {
		return nil, invalid("rating", "must be between 1 and 5")
	}
	if (in.Lat == nil) != (in.Lng == nil) {
		return nil, invalid("lat/lng", "must be given together")
	}
	if in.Lat != nil && !spatial.ValidCoordinate(*in.Lat, *in.Lng) {
		return nil, invalid("lat/lng", "out of range")
	}

	var tags []string
	for _, tag := range in.Tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" || slices.Contains(tags, tag) {
			continue
		}
		tags = append(tags, tag)
	}
	if len(tags) > maxTags {
		return nil, invalid("tags", fmt.Sprintf("at most %d tags", maxTags))
	}

	visitedAt := in.VisitedAt
	if visitedAt <= 0 {
		visitedAt = s.now().UnixMilli()
	}

	return &models.TasteRecord{
		PlaceName: name,
		Category:  category,
		Rating:    in.Rating,
		Memo:      strings.TrimSpace(in.Memo),
		Tags:      tags,
		Lat:       in.Lat,
		Lng:       in.Lng,
		VisitedAt: visitedAt,
	}, nil
}

// Create stores a new record owned by userID
func (s *TasteRecordService) Create(ctx context.Context, userID int64, in models.TasteRecordInput) (*models.TasteRecord, error) {
	rec, err := s.normalize(in)
	if err != nil {
		return nil, err
	}
	rec.UserID = userID

	var id int64
	err = database.Transaction(ctx, s.db, func(tx *sql.Tx) error {
		repo := s.repo.WithTx(tx)
		var err error
		if id, err = repo.Create(ctx, rec); err != nil {
			return err
		}
		return repo.ReplaceTags(ctx, id, rec.Tags)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Taste record created", zap.Int64("record_id", id), zap.String("category", rec.Category))
	return s.repo.GetByID(ctx, id)
}

// Get returns one of the user's records
func (s *TasteRecordService) Get(ctx context.Context, userID, id int64) (*models.TasteRecord, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil || rec.UserID != userID {
		return nil, ErrNotFound
	}
	return rec, nil
}

func (s *TasteRecordService) owned(ctx context.Context, userID, id int64) error {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if rec == nil {
		return ErrNotFound
	}
	if rec.UserID != userID {
		return ErrForbidden
	}
	return nil
}

// Update replaces a record's fields; only the owner may update it
func (s *TasteRecordService) Update(ctx context.Context, userID, id int64, in models.TasteRecordInput) (*models.TasteRecord, error) {
	if err := s.owned(ctx, userID, id); err != nil {
		return nil, err
	}
	rec, err := s.normalize(in)
	if err != nil {
		return nil, err
	}
	rec.ID = id

	err = database.Transaction(ctx, s.db, func(tx *sql.Tx) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Update(ctx, rec); err != nil {
			return err
		}
		return repo.ReplaceTags(ctx, id, rec.Tags)
	})
	if err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// Delete removes a record; only the owner may delete it
func (s *TasteRecordService) Delete(ctx context.Context, userID, id int64) error {
	if err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// List returns the user's records
func (s *TasteRecordService) List(ctx context.Context, filter models.TasteRecordFilter) (*models.TasteRecordsResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 100
	}
	if filter.PageSize > 1000 {
		filter.PageSize = 1000
	}
	filter.Category = strings.ToUpper(strings.TrimSpace(filter.Category))
	filter.Tag = strings.ToLower(strings.TrimSpace(filter.Tag))

	records, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list taste records: %w", err)
	}

	return &models.TasteRecordsResponse{
		Data:       records,
		Total:      total,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.PageSize))),
	}, nil
}
