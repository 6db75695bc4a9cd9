package models

// Notification is a message delivered to a single user
type Notification struct {
	ID        int64  `json:"id" db:"id"`
	UserID    int64  `json:"userId" db:"user_id"`
	Type      string `json:"type" db:"type"`
	Message   string `json:"message" db:"message"`
	RefID     *int64 `json:"refId,omitempty" db:"ref_id"`
	IsRead    bool   `json:"isRead" db:"is_read"`
	CreatedAt string `json:"createdAt,omitempty" db:"created_at"`
}

// Notification type constants
const (
	NotificationGuildJoined      = "GUILD_JOINED"
	NotificationMissionCreated   = "MISSION_CREATED"
	NotificationMissionCompleted = "MISSION_COMPLETED"
)
