package client

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/jengzang/taste-records-go/internal/models"
)

// fakeAuthServer accepts one account and issues a fixed session token
type fakeAuthServer struct {
	mu       sync.Mutex
	sessions map[string]bool
	down     bool
}

func newFakeAuthServer() *fakeAuthServer {
	return &fakeAuthServer{sessions: map[string]bool{}}
}

func (f *fakeAuthServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.down {
		writeEnvelope(w, http.StatusServiceUnavailable, nil, "maintenance")
		return
	}

	user := models.User{ID: 42, Email: "cat@example.com", Nickname: "cat"}
	switch r.URL.Path {
	case "/api/v1/auth/login":
		var req models.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Password != "meow-meow" {
			writeEnvelope(w, http.StatusUnauthorized, nil, "Invalid email or password")
			return
		}
		f.sessions["tok-42"] = true
		http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "tok-42", Path: "/", HttpOnly: true})
		writeEnvelope(w, http.StatusOK, user, "Success")
	case "/api/v1/auth/logout":
		if ck, err := r.Cookie(sessionCookie); err == nil {
			delete(f.sessions, ck.Value)
		}
		http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1})
		writeEnvelope(w, http.StatusOK, nil, "Success")
	case "/api/v1/auth/me":
		ck, err := r.Cookie(sessionCookie)
		if err != nil || !f.sessions[ck.Value] {
			writeEnvelope(w, http.StatusUnauthorized, nil, "Login required")
			return
		}
		writeEnvelope(w, http.StatusOK, user, "Success")
	default:
		http.NotFound(w, r)
	}
}

func TestAuthStore_InitWithoutSession(t *testing.T) {
	c := newTestClient(t, newFakeAuthServer())
	store := NewAuthStore(c, "", zaptest.NewLogger(t))

	require.NoError(t, store.Init(context.Background()))
	assert.False(t, store.IsLoggedIn())
	assert.Nil(t, store.User())
}

func TestAuthStore_LoginPersistsAndResumes(t *testing.T) {
	srv := newFakeAuthServer()
	c := newTestClient(t, srv)
	path := filepath.Join(t.TempDir(), "auth.yaml")
	ctx := context.Background()

	store := NewAuthStore(c, path, zaptest.NewLogger(t))
	require.NoError(t, store.Init(ctx))

	u, err := store.Login(ctx, "cat@example.com", "meow-meow")
	require.NoError(t, err)
	assert.Equal(t, int64(42), u.ID)
	assert.True(t, store.IsLoggedIn())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	// A fresh client has an empty jar; the snapshot supplies the cookie.
	c2, err := New(c.baseURL.String())
	require.NoError(t, err)
	resumed := NewAuthStore(c2, path, zaptest.NewLogger(t))
	require.NoError(t, resumed.Init(ctx))
	require.True(t, resumed.IsLoggedIn())
	assert.Equal(t, "cat@example.com", resumed.User().Email)
}

func TestAuthStore_WrongPassword(t *testing.T) {
	c := newTestClient(t, newFakeAuthServer())
	store := NewAuthStore(c, "", nil)

	_, err := store.Login(context.Background(), "cat@example.com", "nope")
	assert.True(t, IsUnauthorized(err))
	assert.False(t, store.IsLoggedIn())
}

func TestAuthStore_LogoutClears(t *testing.T) {
	c := newTestClient(t, newFakeAuthServer())
	path := filepath.Join(t.TempDir(), "auth.yaml")
	ctx := context.Background()

	store := NewAuthStore(c, path, nil)
	_, err := store.Login(ctx, "cat@example.com", "meow-meow")
	require.NoError(t, err)

	require.NoError(t, store.Logout(ctx))
	assert.False(t, store.IsLoggedIn())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	_, err = c.Auth().Me(ctx)
	assert.True(t, IsUnauthorized(err))
}

func TestAuthStore_ExpiredSessionIsCleared(t *testing.T) {
	srv := newFakeAuthServer()
	c := newTestClient(t, srv)
	path := filepath.Join(t.TempDir(), "auth.yaml")
	ctx := context.Background()

	store := NewAuthStore(c, path, nil)
	_, err := store.Login(ctx, "cat@example.com", "meow-meow")
	require.NoError(t, err)

	srv.mu.Lock()
	srv.sessions = map[string]bool{}
	srv.mu.Unlock()

	require.NoError(t, store.Init(ctx))
	assert.False(t, store.IsLoggedIn())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestAuthStore_ServerDownKeepsSnapshotUser(t *testing.T) {
	srv := newFakeAuthServer()
	c := newTestClient(t, srv)
	path := filepath.Join(t.TempDir(), "auth.yaml")
	ctx := context.Background()

	_, err := NewAuthStore(c, path, nil).Login(ctx, "cat@example.com", "meow-meow")
	require.NoError(t, err)

	srv.mu.Lock()
	srv.down = true
	srv.mu.Unlock()

	store := NewAuthStore(c, path, nil)
	err = store.Init(ctx)
	assert.Error(t, err)
	assert.True(t, store.IsLoggedIn())
}

func TestCategoryStore(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, models.Categories, "Success")
	}))
	store := NewCategoryStore(c)
	assert.Empty(t, store.List())

	require.NoError(t, store.Load(context.Background()))
	assert.Equal(t, models.Categories, store.List())
	assert.True(t, store.Contains(models.CategoryCafe))
	assert.False(t, store.Contains("SPACE"))
}
