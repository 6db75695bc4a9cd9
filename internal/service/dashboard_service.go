package service

import (
	"cmp"
	"context"
	"math"
	"slices"

	"github.com/jengzang/taste-records-go/internal/models"
	"github.com/jengzang/taste-records-go/internal/repository"
	"github.com/jengzang/taste-records-go/internal/spatial"
	"github.com/jengzang/taste-records-go/internal/stats"
)

const (
	dashboardTopTags   = 10
	dashboardTopPlaces = 5
	// stays scanned when grouping places
	dashboardStayScan = 1000
)

// DashboardService builds personal and aggregate preference summaries
type DashboardService struct {
	records *repository.TasteRecordRepository
	stays   *repository.StayRepository
	guilds  *repository.GuildRepository
	users   *repository.UserRepository
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	records *repository.TasteRecordRepository,
	stays *repository.StayRepository,
	guilds *repository.GuildRepository,
	users *repository.UserRepository,
) *DashboardService {
	return &DashboardService{records: records, stays: stays, guilds: guilds, users: users}
}

// Personal summarizes one user's records, stays and guilds
func (s *DashboardService) Personal(ctx context.Context, userID int64) (*models.PersonalDashboard, error) {
	categories, err := s.records.CategoryStats(ctx, userID)
	if err != nil {
		return nil, err
	}
	tags, err := s.records.TopTags(ctx, userID, dashboardTopTags)
	if err != nil {
		return nil, err
	}
	stayCount, dwellMs, err := s.stays.Summary(ctx, userID)
	if err != nil {
		return nil, err
	}
	recent, err := s.stays.Recent(ctx, userID, dashboardStayScan)
	if err != nil {
		return nil, err
	}
	guildCount, err := s.guilds.CountForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	durations := make([]int64, len(recent))
	for i, st := range recent {
		durations[i] = st.DurationMs
	}
	dwell := stats.Quantiles(durations, 0.5, 0.9)

	count, avg := totals(categories)
	return &models.PersonalDashboard{
		RecordCount:   count,
		AvgRating:     avg,
		Categories:    categories,
		TopTags:       tags,
		StayCount:     stayCount,
		TotalDwellMs:  dwellMs,
		MedianDwellMs: int64(math.Round(dwell[0])),
		P90DwellMs:    int64(math.Round(dwell[1])),
		TopPlaces:     topPlaces(recent, dashboardTopPlaces),
		GuildCount:    guildCount,
	}, nil
}

// Aggregate summarizes records across all users
func (s *DashboardService) Aggregate(ctx context.Context) (*models.AggregateDashboard, error) {
	categories, err := s.records.CategoryStats(ctx, 0)
	if err != nil {
		return nil, err
	}
	tags, err := s.records.TopTags(ctx, 0, dashboardTopTags)
	if err != nil {
		return nil, err
	}
	users, err := s.users.Count(ctx)
	if err != nil {
		return nil, err
	}

	count, _ := totals(categories)
	return &models.AggregateDashboard{
		UserCount:   users,
		RecordCount: count,
		Categories:  categories,
		TopTags:     tags,
	}, nil
}

// totals returns the record count and the overall average rating
func totals(categories []models.CategoryCount) (int64, float64) {
	var count int64
	var sum float64
	for _, c := range categories {
		count += c.Count
		sum += c.AvgRating * float64(c.Count)
	}
	if count == 0 {
		return 0, 0
	}
	return count, sum / float64(count)
}

// topPlaces groups stays by s2 cell and ranks cells by visits, then dwell time
func topPlaces(stays []models.Stay, limit int) []models.PlaceStat {
	byCell := make(map[string]*models.PlaceStat)
	for _, st := range stays {
		token, lat, lng := spatial.PlaceCell(st.Lat, st.Lng, spatial.PlaceCellLevel)
		p, ok := byCell[token]
		if !ok {
			p = &models.PlaceStat{CellToken: token, Lat: lat, Lng: lng}
			byCell[token] = p
		}
		p.Visits++
		p.TotalDwellMs += st.DurationMs
		p.LastVisitedAt = max(p.LastVisitedAt, st.EndTime)
	}

	places := make([]models.PlaceStat, 0, len(byCell))
	for _, p := range byCell {
		places = append(places, *p)
	}
	slices.SortFunc(places, func(a, b models.PlaceStat) int {
		if c := cmp.Compare(b.Visits, a.Visits); c != 0 {
			return c
		}
		if c := cmp.Compare(b.TotalDwellMs, a.TotalDwellMs); c != 0 {
			return c
		}
		return cmp.Compare(a.CellToken, b.CellToken)
	})

	if len(places) > limit {
		places = places[:limit]
	}
	return places
}
