package client

import (
	"context"
	"net/http"

	"github.com/jengzang/taste-records-go/internal/models"
)

// AuthAPI wraps the /auth endpoints
type AuthAPI struct {
	c *Client
}

// Auth returns the auth endpoints
func (c *Client) Auth() *AuthAPI {
	return &AuthAPI{c: c}
}

// Register creates an account
func (a *AuthAPI) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	var u models.User
	if err := a.c.Do(ctx, http.MethodPost, "/api/v1/auth/register", req, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Login starts a session; the session cookie is kept in the client's jar
func (a *AuthAPI) Login(ctx context.Context, email, password string) (*models.User, error) {
	var u models.User
	req := models.LoginRequest{Email: email, Password: password}
	if err := a.c.Do(ctx, http.MethodPost, "/api/v1/auth/login", req, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Logout ends the session
func (a *AuthAPI) Logout(ctx context.Context) error {
	return a.c.Do(ctx, http.MethodPost, "/api/v1/auth/logout", nil, nil)
}

// Me returns the user behind the current session
func (a *AuthAPI) Me(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := a.c.Do(ctx, http.MethodGet, "/api/v1/auth/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}
