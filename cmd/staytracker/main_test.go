package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jengzang/taste-records-go/internal/api"
	"github.com/jengzang/taste-records-go/internal/client"
	"github.com/jengzang/taste-records-go/internal/config"
	"github.com/jengzang/taste-records-go/internal/database"
	"github.com/jengzang/taste-records-go/internal/models"
)

func startServer(t *testing.T) string {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Open(database.Config{Path: ":memory:"}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	srvCfg := &config.Config{JWTSecret: "test-secret", CORSOrigins: []string{"http://localhost:5173"}}
	srv := httptest.NewServer(api.SetupRouter(ctx, srvCfg, db, zap.NewNop()))
	t.Cleanup(srv.Close)
	return srv.URL
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFeed(t *testing.T) string {
	t.Helper()
	const t0 = int64(1_700_000_000_000)
	lines := []string{
		fmt.Sprintf(`{"coords":{"latitude":37.5665,"longitude":126.9780},"timestamp":%d}`, t0),
		fmt.Sprintf(`{"coords":{"latitude":37.56652,"longitude":126.97801},"timestamp":%d}`, t0+10_000),
		`{"error":{"code":3,"message":"Timeout expired"}}`,
		fmt.Sprintf(`{"coords":{"latitude":37.56651,"longitude":126.97799},"timestamp":%d}`, t0+30_000),
		fmt.Sprintf(`{"coords":{"latitude":37.56650,"longitude":126.97800},"timestamp":%d}`, t0+45_000),
		fmt.Sprintf(`{"coords":{"latitude":37.5700,"longitude":126.9900},"timestamp":%d}`, t0+60_000),
	}
	path := filepath.Join(t.TempDir(), "feed.ndjson")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}

func TestStaytracker_EndToEnd(t *testing.T) {
	url := startServer(t)
	state := filepath.Join(t.TempDir(), "auth.yaml")
	common := []string{"--api", url, "--state", state, "--log-level", "error"}

	c, err := client.New(url)
	require.NoError(t, err)
	_, err = c.Auth().Register(context.Background(), models.RegisterRequest{
		Email: "walker@example.com", Nickname: "walker", Password: "long-enough-pw",
	})
	require.NoError(t, err)

	_, err = run(t, append([]string{"track", "--input", writeFeed(t)}, common...)...)
	require.Error(t, err, "tracking needs a session")

	out, err := run(t, append([]string{"login", "--email", "walker@example.com", "--password", "long-enough-pw"}, common...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as walker")

	out, err = run(t, append([]string{"track", "--input", writeFeed(t), "--radius", "50", "--dwell", "30s"}, common...)...)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "stay at 37.566500,126.978000"), out)
	assert.Contains(t, out, "Timed out")

	out, err = run(t, append([]string{"stays", "list"}, common...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "page 1/1, 1 stays")

	out, err = run(t, append([]string{"whoami"}, common...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "walker <walker@example.com>")
	assert.Contains(t, out, "stays:         1")

	out, err = run(t, append([]string{"logout"}, common...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out")
	_, err = os.Stat(state)
	assert.True(t, os.IsNotExist(err))
}
