package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jengzang/taste-records-go/internal/database"
	"github.com/jengzang/taste-records-go/internal/models"
	"github.com/jengzang/taste-records-go/internal/repository"
)

// GuildService handles guilds, memberships and missions
type GuildService struct {
	db            *sql.DB
	guilds        *repository.GuildRepository
	notifications *repository.NotificationRepository
	users         *repository.UserRepository
	logger        *zap.Logger
}

// NewGuildService creates a new guild service
func NewGuildService(
	db *sql.DB,
	guilds *repository.GuildRepository,
	notifications *repository.NotificationRepository,
	users *repository.UserRepository,
	logger *zap.Logger,
) *GuildService {
	return &GuildService{
		db:            db,
		guilds:        guilds,
		notifications: notifications,
		users:         users,
		logger:        logger,
	}
}

// Create creates a guild owned by userID, who becomes its first member
func (s *GuildService) Create(ctx context.Context, userID int64, req models.CreateGuildRequest) (*models.Guild, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" || len([]rune(name)) > 50 {
		return nil, invalid("name", "must be 1 to 50 characters")
	}

	g := &models.Guild{
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		Category:    strings.ToUpper(strings.TrimSpace(req.Category)),
		OwnerID:     userID,
	}

	var id int64
	err := database.Transaction(ctx, s.db, func(tx *sql.Tx) error {
		repo := s.guilds.WithTx(tx)
		var err error
		if id, err = repo.Create(ctx, g); err != nil {
			return err
		}
		return repo.AddMember(ctx, id, userID, models.GuildRoleOwner)
	})
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, fmt.Errorf("guild name taken: %w", ErrConflict)
		}
		return nil, err
	}

	s.logger.Info("Guild created", zap.Int64("guild_id", id), zap.Int64("owner_id", userID))
	return s.Get(ctx, id)
}

// List returns all guilds, or only those userID belongs to when mine is set
func (s *GuildService) List(ctx context.Context, userID int64, mine bool) ([]models.Guild, error) {
	if !mine {
		userID = 0
	}
	return s.guilds.List(ctx, userID)
}

// Get returns a guild with its members
func (s *GuildService) Get(ctx context.Context, id int64) (*models.Guild, error) {
	g, err := s.guilds.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, ErrNotFound
	}
	if g.Members, err = s.guilds.Members(ctx, id); err != nil {
		return nil, err
	}
	return g, nil
}

// Join adds userID to a guild and notifies the owner
func (s *GuildService) Join(ctx context.Context, userID, guildID int64) (*models.Guild, error) {
	g, err := s.guilds.GetByID(ctx, guildID)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, ErrNotFound
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUnauthenticated
	}

	err = database.Transaction(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.guilds.WithTx(tx).AddMember(ctx, guildID, userID, models.GuildRoleMember); err != nil {
			return err
		}
		_, err := s.notifications.WithTx(tx).Create(ctx, &models.Notification{
			UserID:  g.OwnerID,
			Type:    models.NotificationGuildJoined,
			Message: fmt.Sprintf("%s joined %s", u.Nickname, g.Name),
			RefID:   &guildID,
		})
		return err
	})
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, fmt.Errorf("already a member: %w", ErrConflict)
		}
		return nil, err
	}

	return s.Get(ctx, guildID)
}

// Leave removes userID from a guild. The owner cannot leave.
func (s *GuildService) Leave(ctx context.Context, userID, guildID int64) error {
	g, err := s.guilds.GetByID(ctx, guildID)
	if err != nil {
		return err
	}
	if g == nil {
		return ErrNotFound
	}
	if g.OwnerID == userID {
		return fmt.Errorf("owner cannot leave the guild: %w", ErrForbidden)
	}

	removed, err := s.guilds.RemoveMember(ctx, guildID, userID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrNotFound
	}
	return nil
}

// CreateMission posts a mission; only the owner may do so. Other members are notified.
func (s *GuildService) CreateMission(ctx context.Context, userID, guildID int64, req models.CreateMissionRequest) (*models.Mission, error) {
	g, err := s.guilds.GetByID(ctx, guildID)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, ErrNotFound
	}
	if g.OwnerID != userID {
		return nil, ErrForbidden
	}
	title := strings.TrimSpace(req.Title)
	if title == "" || len([]rune(title)) > 100 {
		return nil, invalid("title", "must be 1 to 100 characters")
	}

	memberIDs, err := s.guilds.MemberIDs(ctx, guildID)
	if err != nil {
		return nil, err
	}

	var id int64
	err = database.Transaction(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		id, err = s.guilds.WithTx(tx).CreateMission(ctx, &models.Mission{
			GuildID:     guildID,
			Title:       title,
			Description: strings.TrimSpace(req.Description),
			Category:    strings.ToUpper(strings.TrimSpace(req.Category)),
		})
		if err != nil {
			return err
		}

		notes := s.notifications.WithTx(tx)
		for _, memberID := range memberIDs {
			if memberID == userID {
				continue
			}
			if _, err := notes.Create(ctx, &models.Notification{
				UserID:  memberID,
				Type:    models.NotificationMissionCreated,
				Message: fmt.Sprintf("New mission in %s: %s", g.Name, title),
				RefID:   &guildID,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.guilds.GetMission(ctx, id, userID)
}

// ListMissions lists a guild's missions as seen by userID
func (s *GuildService) ListMissions(ctx context.Context, userID, guildID int64) ([]models.Mission, error) {
	g, err := s.guilds.GetByID(ctx, guildID)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, ErrNotFound
	}
	return s.guilds.ListMissions(ctx, guildID, userID)
}

// CompleteMission marks a mission done for userID and notifies the owner.
// Only members may complete a mission, and only once.
func (s *GuildService) CompleteMission(ctx context.Context, userID, guildID, missionID int64) (*models.Mission, error) {
	g, err := s.guilds.GetByID(ctx, guildID)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, ErrNotFound
	}
	m, err := s.guilds.GetMission(ctx, missionID, userID)
	if err != nil {
		return nil, err
	}
	if m == nil || m.GuildID != guildID {
		return nil, ErrNotFound
	}
	member, err := s.guilds.IsMember(ctx, guildID, userID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, ErrForbidden
	}
	if m.CompletedBy {
		return nil, fmt.Errorf("mission already completed: %w", ErrConflict)
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUnauthenticated
	}

	err = database.Transaction(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.guilds.WithTx(tx).CompleteMission(ctx, missionID, userID); err != nil {
			return err
		}
		if g.OwnerID == userID {
			return nil
		}
		_, err := s.notifications.WithTx(tx).Create(ctx, &models.Notification{
			UserID:  g.OwnerID,
			Type:    models.NotificationMissionCompleted,
			Message: fmt.Sprintf("%s completed %s", u.Nickname, m.Title),
			RefID:   &missionID,
		})
		return err
	})
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, fmt.Errorf("mission already completed: %w", ErrConflict)
		}
		return nil, err
	}

	s.logger.Info("Mission completed", zap.Int64("mission_id", missionID), zap.Int64("user_id", userID))
	return s.guilds.GetMission(ctx, missionID, userID)
}
