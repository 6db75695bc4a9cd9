package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jengzang/taste-records-go/internal/client"
	"github.com/jengzang/taste-records-go/internal/config"
	"github.com/jengzang/taste-records-go/internal/database"
	"github.com/jengzang/taste-records-go/internal/models"
)

func newServer(t *testing.T, cfg *config.Config) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Open(database.Config{Path: ":memory:"}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	srv := httptest.NewServer(SetupRouter(ctx, cfg, db, zap.NewNop()))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:   "router-test-secret",
		CORSOrigins: []string{"http://localhost:5173"},
	}
}

// loggedIn registers a user and returns a client holding its session
func loggedIn(t *testing.T, url, email, nickname string) (*client.Client, *models.User) {
	t.Helper()
	c, err := client.New(url)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = c.Auth().Register(ctx, models.RegisterRequest{Email: email, Nickname: nickname, Password: "password-123"})
	require.NoError(t, err)
	u, err := c.Auth().Login(ctx, email, "password-123")
	require.NoError(t, err)
	return c, u
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	return apiErr.Status
}

func TestHealth(t *testing.T) {
	srv := newServer(t, testConfig())
	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCORSPreflight(t *testing.T) {
	srv := newServer(t, testConfig())
	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/v1/stays", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))
}

func TestSessionLifecycle(t *testing.T) {
	srv := newServer(t, testConfig())
	ctx := context.Background()

	anon, err := client.New(srv.URL)
	require.NoError(t, err)
	_, err = anon.Auth().Me(ctx)
	assert.True(t, client.IsUnauthorized(err))
	_, err = anon.Stays().Create(ctx, models.CreateStayRequest{Lat: 1, Lng: 1, StartTime: 1, EndTime: 2})
	assert.True(t, client.IsUnauthorized(err), "stays require a session")

	c, u := loggedIn(t, srv.URL, "walker@example.com", "walker")
	me, err := c.Auth().Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, u.ID, me.ID)

	_, err = c.Auth().Register(ctx, models.RegisterRequest{Email: "walker@example.com", Nickname: "again", Password: "password-123"})
	assert.Equal(t, http.StatusConflict, statusOf(t, err))

	_, err = anon.Auth().Login(ctx, "walker@example.com", "nope-nope")
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))

	require.NoError(t, c.Auth().Logout(ctx))
	_, err = c.Auth().Me(ctx)
	assert.True(t, client.IsUnauthorized(err))
}

func TestStayEndpoints(t *testing.T) {
	srv := newServer(t, testConfig())
	ctx := context.Background()
	c, u := loggedIn(t, srv.URL, "walker@example.com", "walker")

	s, err := c.Stays().Create(ctx, models.CreateStayRequest{
		Lat: 37.5665, Lng: 126.978, StartTime: 1_700_000_000_000, EndTime: 1_700_000_030_000,
	})
	require.NoError(t, err)
	assert.Equal(t, u.ID, s.UserID)
	assert.Equal(t, int64(30_000), s.DurationMs)

	_, err = c.Stays().Create(ctx, models.CreateStayRequest{Lat: 95, Lng: 0, StartTime: 1, EndTime: 2})
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))

	list, err := c.Stays().List(ctx, models.StayFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.Total)

	other, _ := loggedIn(t, srv.URL, "other@example.com", "other")
	list, err = other.Stays().List(ctx, models.StayFilter{})
	require.NoError(t, err)
	assert.Zero(t, list.Total)

	d, err := c.Dashboard().Personal(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), d.StayCount)
	require.Len(t, d.TopPlaces, 1)
}

func TestTasteRecordEndpoints(t *testing.T) {
	srv := newServer(t, testConfig())
	ctx := context.Background()
	c, _ := loggedIn(t, srv.URL, "foodie@example.com", "foodie")
	other, _ := loggedIn(t, srv.URL, "other@example.com", "other")

	cats, err := c.TasteRecords().Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Categories, cats)

	rec, err := c.TasteRecords().Create(ctx, models.TasteRecordInput{
		PlaceName: "Roastery", Category: "CAFE", Rating: 4, Tags: []string{"latte"},
	})
	require.NoError(t, err)

	_, err = c.TasteRecords().Create(ctx, models.TasteRecordInput{PlaceName: "x", Category: "FOOD", Rating: 9})
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))

	got, err := c.TasteRecords().Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"latte"}, got.Tags)

	_, err = other.TasteRecords().Update(ctx, rec.ID, models.TasteRecordInput{PlaceName: "Mine", Category: "CAFE", Rating: 1})
	assert.Equal(t, http.StatusForbidden, statusOf(t, err))

	updated, err := c.TasteRecords().Update(ctx, rec.ID, models.TasteRecordInput{PlaceName: "Roastery", Category: "CAFE", Rating: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Rating)

	list, err := c.TasteRecords().List(ctx, models.TasteRecordFilter{Category: "cafe"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.Total)

	require.NoError(t, c.TasteRecords().Delete(ctx, rec.ID))
	_, err = c.TasteRecords().Get(ctx, rec.ID)
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))

	agg, err := other.Dashboard().Aggregate(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), agg.UserCount)
	assert.Zero(t, agg.RecordCount)
}

func TestGuildEndpoints(t *testing.T) {
	srv := newServer(t, testConfig())
	ctx := context.Background()
	owner, _ := loggedIn(t, srv.URL, "owner@example.com", "owner")
	member, _ := loggedIn(t, srv.URL, "member@example.com", "member")

	g, err := owner.Guilds().Create(ctx, models.CreateGuildRequest{Name: "Night Markets", Category: "FOOD"})
	require.NoError(t, err)

	all, err := member.Guilds().List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 1)
	mine, err := member.Guilds().List(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, mine)

	joined, err := member.Guilds().Join(ctx, g.ID)
	require.NoError(t, err)
	assert.Len(t, joined.Members, 2)

	_, err = member.Guilds().CreateMission(ctx, g.ID, models.CreateMissionRequest{Title: "Eat tteokbokki"})
	assert.Equal(t, http.StatusForbidden, statusOf(t, err))

	m, err := owner.Guilds().CreateMission(ctx, g.ID, models.CreateMissionRequest{Title: "Eat tteokbokki"})
	require.NoError(t, err)

	missions, err := member.Guilds().ListMissions(ctx, g.ID)
	require.NoError(t, err)
	require.Len(t, missions, 1)
	assert.False(t, missions[0].CompletedBy)

	done, err := member.Guilds().CompleteMission(ctx, g.ID, m.ID)
	require.NoError(t, err)
	assert.True(t, done.CompletedBy)

	_, err = member.Guilds().CompleteMission(ctx, g.ID, m.ID)
	assert.Equal(t, http.StatusConflict, statusOf(t, err))

	notes, err := owner.Notifications().List(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, int64(2), notes.Unread)
	require.Len(t, notes.Data, 2)

	require.NoError(t, owner.Notifications().MarkRead(ctx, notes.Data[0].ID))
	err = member.Notifications().MarkRead(ctx, notes.Data[1].ID)
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))

	n, err := owner.Notifications().MarkAllRead(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	err = owner.Guilds().Leave(ctx, g.ID)
	assert.Equal(t, http.StatusForbidden, statusOf(t, err))
	require.NoError(t, member.Guilds().Leave(ctx, g.ID))

	got, err := owner.Guilds().Get(ctx, g.ID)
	require.NoError(t, err)
	assert.Len(t, got.Members, 1)
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = 2
	srv := newServer(t, cfg)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		resp, err := http.Get(srv.URL + "/health")
		require.NoError(t, err)
		resp.Body.Close()
		codes = append(codes, resp.StatusCode)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}
