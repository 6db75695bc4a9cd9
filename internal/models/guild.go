package models

// Guild is a social group that members join to share missions
type Guild struct {
	ID          int64         `json:"id" db:"id"`
	Name        string        `json:"name" db:"name"`
	Description string        `json:"description" db:"description"`
	Category    string        `json:"category" db:"category"`
	OwnerID     int64         `json:"ownerId" db:"owner_id"`
	MemberCount int           `json:"memberCount"`
	Members     []GuildMember `json:"members,omitempty"`
	CreatedAt   string        `json:"createdAt,omitempty" db:"created_at"`
}

// GuildMember is a user's membership in a guild
type GuildMember struct {
	UserID   int64  `json:"userId" db:"user_id"`
	Nickname string `json:"nickname"`
	Role     string `json:"role" db:"role"`
	JoinedAt string `json:"joinedAt" db:"joined_at"`
}

// Mission is a challenge posted by a guild owner
type Mission struct {
	ID          int64  `json:"id" db:"id"`
	GuildID     int64  `json:"guildId" db:"guild_id"`
	Title       string `json:"title" db:"title"`
	Description string `json:"description" db:"description"`
	Category    string `json:"category" db:"category"`
	Completions int    `json:"completions"`
	CompletedBy bool   `json:"completedByMe"`
	CreatedAt   string `json:"createdAt,omitempty" db:"created_at"`
}

// CreateGuildRequest is the body of POST /api/v1/guilds
type CreateGuildRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// CreateMissionRequest is the body of POST /api/v1/guilds/:id/missions
type CreateMissionRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// Guild role constants
const (
	GuildRoleOwner  = "OWNER"
	GuildRoleMember = "MEMBER"
)
