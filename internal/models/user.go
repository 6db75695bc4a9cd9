package models

// User is an account that owns taste records, stays and guild memberships
type User struct {
	ID           int64  `json:"id" db:"id"`
	Email        string `json:"email" db:"email"`
	Nickname     string `json:"nickname" db:"nickname"`
	PasswordHash string `json:"-" db:"password_hash"`
	CreatedAt    string `json:"createdAt,omitempty" db:"created_at"`
}

// RegisterRequest is the body of POST /api/v1/auth/register
type RegisterRequest struct {
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
	Password string `json:"password"`
}

// LoginRequest is the body of POST /api/v1/auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
