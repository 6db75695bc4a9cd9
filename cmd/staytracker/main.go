// Command staytracker replays a geolocation feed through the stay detector
// and reports each detected stay to the taste-records API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jengzang/taste-records-go/internal/client"
	"github.com/jengzang/taste-records-go/internal/config"
	"github.com/jengzang/taste-records-go/internal/logging"
)

var (
	// 全局参数
	apiURL      string
	statePath   string
	logLevel    string
	httpTimeout time.Duration

	// 包级变量先于各文件的 init 初始化，子命令的默认值依赖它
	cfg = config.Load()

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "staytracker",
	Short: "Detect stays from a location feed and report them",
	Long: `staytracker reads position updates as newline-delimited JSON, detects
places where you stayed within a radius for long enough, and posts each
stay to the taste-records API using a saved login session.

  staytracker login --email me@example.com
  gpsd-to-json | staytracker track --input -
  staytracker stays list`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = logging.New(logLevel)
		if err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", cfg.APIBaseURL, "API base URL")
	rootCmd.PersistentFlags().StringVar(&statePath, "state", defaultStatePath(), "file holding the login session")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error; add -console for text)")
	rootCmd.PersistentFlags().DurationVar(&httpTimeout, "timeout", cfg.HTTPTimeout, "per-request timeout")
}

func defaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".staytracker-auth.yaml"
	}
	return filepath.Join(dir, "staytracker", "auth.yaml")
}

// newSession builds the API client and restores the saved login
func newSession(ctx context.Context) (*client.Client, *client.AuthStore, error) {
	c, err := client.New(apiURL, client.WithTimeout(httpTimeout), client.WithLogger(logger.Named("api")))
	if err != nil {
		return nil, nil, err
	}
	store := client.NewAuthStore(c, statePath, logger)
	if err := store.Init(ctx); err != nil {
		// 网络错误时保留本地会话
		logger.Warn("Session check failed", zap.Error(err))
	}
	return c, store, nil
}

// requireLogin restores the session and fails when no user is logged in
func requireLogin(ctx context.Context) (*client.Client, *client.AuthStore, error) {
	c, store, err := newSession(ctx)
	if err != nil {
		return nil, nil, err
	}
	if !store.IsLoggedIn() {
		return nil, nil, fmt.Errorf("not logged in, run 'staytracker login' first")
	}
	return c, store, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
