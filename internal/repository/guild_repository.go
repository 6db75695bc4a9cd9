package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jengzang/taste-records-go/internal/models"
)

// GuildRepository handles database operations for guilds, members and missions
type GuildRepository struct {
	db DBTX
}

// NewGuildRepository creates a new guild repository
func NewGuildRepository(db DBTX) *GuildRepository {
	return &GuildRepository{db: db}
}

// WithTx returns a repository bound to tx
func (r *GuildRepository) WithTx(tx *sql.Tx) *GuildRepository {
	return &GuildRepository{db: tx}
}

const guildSelect = `SELECT g.id, g.name, g.description, g.category, g.owner_id, g.created_at,
	(SELECT COUNT(*) FROM guild_members m WHERE m.guild_id = g.id)
	FROM guilds g`

func scanGuild(row interface{ Scan(...interface{}) error }, g *models.Guild) error {
	return row.Scan(&g.ID, &g.Name, &g.Description, &g.Category, &g.OwnerID, &g.CreatedAt, &g.MemberCount)
}

// Create inserts a guild and returns its ID
func (r *GuildRepository) Create(ctx context.Context, g *models.Guild) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO guilds (name, description, category, owner_id) VALUES (?, ?, ?, ?)`,
		g.Name, g.Description, g.Category, g.OwnerID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert guild: %w", err)
	}
	return res.LastInsertId()
}

// List returns guilds, optionally only those a user belongs to
func (r *GuildRepository) List(ctx context.Context, memberID int64) ([]models.Guild, error) {
	query := guildSelect
	var args []interface{}
	if memberID > 0 {
		query += ` WHERE g.id IN (SELECT guild_id FROM guild_members WHERE user_id = ?)`
		args = append(args, memberID)
	}
	query += ` ORDER BY g.id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query guilds: %w", err)
	}
	defer rows.Close()

	guilds := []models.Guild{}
	for rows.Next() {
		var g models.Guild
		if err := scanGuild(rows, &g); err != nil {
			return nil, fmt.Errorf("failed to scan guild: %w", err)
		}
		guilds = append(guilds, g)
	}
	return guilds, rows.Err()
}

// GetByID retrieves a guild without members, or nil if none exists
func (r *GuildRepository) GetByID(ctx context.Context, id int64) (*models.Guild, error) {
	var g models.Guild
	err := scanGuild(r.db.QueryRowContext(ctx, guildSelect+` WHERE g.id = ?`, id), &g)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get guild: %w", err)
	}
	return &g, nil
}

// Members lists the members of a guild in join order
func (r *GuildRepository) Members(ctx context.Context, guildID int64) ([]models.GuildMember, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT m.user_id, u.nickname, m.role, m.joined_at
		 FROM guild_members m JOIN users u ON u.id = m.user_id
		 WHERE m.guild_id = ? ORDER BY m.joined_at, m.user_id`, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to query guild members: %w", err)
	}
	defer rows.Close()

	members := []models.GuildMember{}
	for rows.Next() {
		var m models.GuildMember
		if err := rows.Scan(&m.UserID, &m.Nickname, &m.Role, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan guild member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// IsMember reports whether a user belongs to a guild
func (r *GuildRepository) IsMember(ctx context.Context, guildID, userID int64) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM guild_members WHERE guild_id = ? AND user_id = ?`, guildID, userID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return n > 0, nil
}

// AddMember inserts a membership
func (r *GuildRepository) AddMember(ctx context.Context, guildID, userID int64, role string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO guild_members (guild_id, user_id, role) VALUES (?, ?, ?)`, guildID, userID, role)
	if err != nil {
		return fmt.Errorf("failed to add guild member: %w", err)
	}
	return nil
}

// RemoveMember deletes a membership and reports whether it existed
func (r *GuildRepository) RemoveMember(ctx context.Context, guildID, userID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM guild_members WHERE guild_id = ? AND user_id = ?`, guildID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to remove guild member: %w", err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// MemberIDs returns the user IDs of all members of a guild
func (r *GuildRepository) MemberIDs(ctx context.Context, guildID int64) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT user_id FROM guild_members WHERE guild_id = ?`, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to query member ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CountForUser returns how many guilds a user belongs to
func (r *GuildRepository) CountForUser(ctx context.Context, userID int64) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM guild_members WHERE user_id = ?`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count guilds: %w", err)
	}
	return n, nil
}

// CreateMission inserts a mission and returns its ID
func (r *GuildRepository) CreateMission(ctx context.Context, m *models.Mission) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO guild_missions (guild_id, title, description, category) VALUES (?, ?, ?, ?)`,
		m.GuildID, m.Title, m.Description, m.Category)
	if err != nil {
		return 0, fmt.Errorf("failed to insert mission: %w", err)
	}
	return res.LastInsertId()
}

const missionSelect = `SELECT ms.id, ms.guild_id, ms.title, ms.description, ms.category, ms.created_at,
	(SELECT COUNT(*) FROM mission_completions c WHERE c.mission_id = ms.id),
	EXISTS (SELECT 1 FROM mission_completions c WHERE c.mission_id = ms.id AND c.user_id = ?)
	FROM guild_missions ms`

func scanMission(row interface{ Scan(...interface{}) error }, m *models.Mission) error {
	return row.Scan(&m.ID, &m.GuildID, &m.Title, &m.Description, &m.Category, &m.CreatedAt,
		&m.Completions, &m.CompletedBy)
}

// ListMissions lists a guild's missions with completion state for viewerID
func (r *GuildRepository) ListMissions(ctx context.Context, guildID, viewerID int64) ([]models.Mission, error) {
	rows, err := r.db.QueryContext(ctx, missionSelect+` WHERE ms.guild_id = ? ORDER BY ms.id`, viewerID, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to query missions: %w", err)
	}
	defer rows.Close()

	missions := []models.Mission{}
	for rows.Next() {
		var m models.Mission
		if err := scanMission(rows, &m); err != nil {
			return nil, fmt.Errorf("failed to scan mission: %w", err)
		}
		missions = append(missions, m)
	}
	return missions, rows.Err()
}

// GetMission retrieves a mission, or nil if none exists
func (r *GuildRepository) GetMission(ctx context.Context, missionID, viewerID int64) (*models.Mission, error) {
	var m models.Mission
	err := scanMission(r.db.QueryRowContext(ctx, missionSelect+` WHERE ms.id = ?`, viewerID, missionID), &m)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get mission: %w", err)
	}
	return &m, nil
}

// CompleteMission records that a user completed a mission
func (r *GuildRepository) CompleteMission(ctx context.Context, missionID, userID int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO mission_completions (mission_id, user_id) VALUES (?, ?)`, missionID, userID)
	if err != nil {
		return fmt.Errorf("failed to complete mission: %w", err)
	}
	return nil
}
