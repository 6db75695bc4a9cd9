package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/jengzang/taste-records-go/internal/models"
)

// AuthStore holds the logged-in user of a client. It is hydrated once by
// Init and cleared by Logout or Reset. When a path is set the user and the
// session cookies are kept in a YAML snapshot so a later process resumes
// the same session.
type AuthStore struct {
	client *Client
	path   string
	logger *zap.Logger

	mu   sync.RWMutex
	user *models.User
}

type authSnapshot struct {
	User    *models.User     `yaml:"user"`
	Cookies []snapshotCookie `yaml:"cookies"`
	SavedAt time.Time        `yaml:"savedAt"`
}

type snapshotCookie struct {
	Name    string    `yaml:"name"`
	Value   string    `yaml:"value"`
	Path    string    `yaml:"path,omitempty"`
	Expires time.Time `yaml:"expires,omitempty"`
}

// NewAuthStore creates a store for c. An empty path keeps the state in memory only.
func NewAuthStore(c *Client, path string, logger *zap.Logger) *AuthStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthStore{client: c, path: path, logger: logger.Named("auth")}
}

// Init restores the saved session and confirms it with GET /auth/me.
// A 401 clears the store. Other errors are returned with the restored
// user left in place.
func (s *AuthStore) Init(ctx context.Context) error {
	snap, err := s.load()
	if err != nil {
		s.logger.Warn("Ignoring unreadable auth snapshot", zap.String("path", s.path), zap.Error(err))
	}
	if snap != nil {
		s.client.SetCookies(snap.cookies())
		s.setUser(snap.User)
	}

	user, err := s.client.Auth().Me(ctx)
	if err != nil {
		if IsUnauthorized(err) {
			s.logger.Debug("No active session")
			return s.Reset()
		}
		return fmt.Errorf("check session: %w", err)
	}

	s.setUser(user)
	return s.save()
}

// User returns the logged-in user or nil
func (s *AuthStore) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// IsLoggedIn reports whether a user is set
func (s *AuthStore) IsLoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// Login starts a session and saves it
func (s *AuthStore) Login(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.client.Auth().Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	s.setUser(user)
	if err := s.save(); err != nil {
		return nil, err
	}
	s.logger.Info("Logged in", zap.Int64("user_id", user.ID))
	return s.User(), nil
}

// Logout ends the session on the server and clears the store. The store is
// cleared even when the request fails.
func (s *AuthStore) Logout(ctx context.Context) error {
	apiErr := s.client.Auth().Logout(ctx)
	resetErr := s.Reset()
	if apiErr != nil {
		return fmt.Errorf("logout: %w", apiErr)
	}
	return resetErr
}

// Reset drops the user, the session cookie and the snapshot
func (s *AuthStore) Reset() error {
	s.setUser(nil)
	s.client.SetCookies([]*http.Cookie{{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1}})

	if s.path == "" {
		return nil
	}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove auth snapshot: %w", err)
	}
	return nil
}

func (s *AuthStore) setUser(u *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = u
}

func (s *AuthStore) load() (*authSnapshot, error) {
	if s.path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var snap authSnapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (s *AuthStore) save() error {
	if s.path == "" {
		return nil
	}

	snap := authSnapshot{User: s.User(), SavedAt: time.Now().UTC()}
	for _, c := range s.client.Cookies() {
		snap.Cookies = append(snap.Cookies, snapshotCookie{Name: c.Name, Value: c.Value, Path: "/"})
	}

	data, err := yaml.Marshal(&snap)
	if err != nil {
		return fmt.Errorf("encode auth snapshot: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create auth snapshot dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write auth snapshot: %w", err)
	}
	return nil
}

func (snap *authSnapshot) cookies() []*http.Cookie {
	out := make([]*http.Cookie, 0, len(snap.Cookies))
	for _, c := range snap.Cookies {
		if !c.Expires.IsZero() && c.Expires.Before(time.Now()) {
			continue
		}
		out = append(out, &http.Cookie{Name: c.Name, Value: c.Value, Path: c.Path, Expires: c.Expires})
	}
	return out
}

// CategoryStore caches the taste record categories for the lifetime of a client
type CategoryStore struct {
	api *TasteRecordAPI

	mu         sync.RWMutex
	categories []string
}

// NewCategoryStore creates an empty store
func NewCategoryStore(c *Client) *CategoryStore {
	return &CategoryStore{api: c.TasteRecords()}
}

// Load fetches the categories, replacing any cached list
func (s *CategoryStore) Load(ctx context.Context) error {
	cats, err := s.api.Categories(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.categories = cats
	s.mu.Unlock()
	return nil
}

// List returns the cached categories
func (s *CategoryStore) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.categories...)
}

// Contains reports whether name is a known category
func (s *CategoryStore) Contains(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.categories {
		if c == name {
			return true
		}
	}
	return false
}
