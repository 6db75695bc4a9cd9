package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config 应用配置
type Config struct {
	Port         string
	DBPath       string
	JWTSecret    string
	CookieSecure bool
	CORSOrigins  []string
	LogLevel     string

	// 每个 IP 每分钟允许的请求数，0 表示不限制
	RateLimit int

	// 停留检测参数
	StayRadiusMeters   float64
	StayDwellThreshold time.Duration
	APIBaseURL         string
	HTTPTimeout        time.Duration
}

// Load 加载配置，先尝试读取 .env 文件
func Load() *Config {
	// .env 不存在时直接使用环境变量
	_ = godotenv.Load()

	return &Config{
		Port:               getEnv("PORT", ":8080"),
		DBPath:             getEnv("DB_PATH", "./data/taste.db"),
		JWTSecret:          getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		CookieSecure:       getBool("COOKIE_SECURE", false),
		CORSOrigins:        getList("CORS_ORIGINS", []string{"http://localhost:5173"}),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		RateLimit:          getInt("RATE_LIMIT", 600),
		StayRadiusMeters:   getFloat("STAY_RADIUS_METERS", 50),
		StayDwellThreshold: getDuration("STAY_DWELL_THRESHOLD", 30*time.Second),
		APIBaseURL:         getEnv("API_BASE_URL", "http://localhost:8080"),
		HTTPTimeout:        getDuration("HTTP_TIMEOUT", 10*time.Second),
	}
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func getFloat(key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return fallback
	}
	return v
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func getList(key string, fallback []string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
