package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "RATE_LIMIT", "STAY_RADIUS_METERS", "STAY_DWELL_THRESHOLD", "CORS_ORIGINS", "COOKIE_SECURE"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, ":8080", cfg.Port)
	assert.Equal(t, 600, cfg.RateLimit)
	assert.Equal(t, 50.0, cfg.StayRadiusMeters)
	assert.Equal(t, 30*time.Second, cfg.StayDwellThreshold)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORSOrigins)
	assert.False(t, cfg.CookieSecure)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("PORT", ":9090")
	t.Setenv("RATE_LIMIT", "0")
	t.Setenv("STAY_RADIUS_METERS", "75.5")
	t.Setenv("STAY_DWELL_THRESHOLD", "10m")
	t.Setenv("CORS_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("HTTP_TIMEOUT", "not-a-duration")

	cfg := Load()
	assert.Equal(t, ":9090", cfg.Port)
	assert.Equal(t, 0, cfg.RateLimit)
	assert.Equal(t, 75.5, cfg.StayRadiusMeters)
	assert.Equal(t, 10*time.Minute, cfg.StayDwellThreshold)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout, "invalid values fall back to the default")
}
