package api

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jengzang/taste-records-go/internal/config"
	"github.com/jengzang/taste-records-go/internal/handler"
	"github.com/jengzang/taste-records-go/internal/middleware"
	"github.com/jengzang/taste-records-go/internal/repository"
	"github.com/jengzang/taste-records-go/internal/service"
)

// SetupRouter 设置路由，ctx 结束时停止后台清理任务
func SetupRouter(ctx context.Context, cfg *config.Config, db *sql.DB, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger(logger.Named("http")))

	// CORS 中间件，会话 cookie 需要 AllowCredentials
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if cfg.RateLimit > 0 {
		r.Use(middleware.RateLimit(middleware.NewRateLimiter(ctx, cfg.RateLimit, time.Minute)))
	}

	// 仓储与服务
	users := repository.NewUserRepository(db)
	stays := repository.NewStayRepository(db)
	records := repository.NewTasteRecordRepository(db)
	guilds := repository.NewGuildRepository(db)
	notifications := repository.NewNotificationRepository(db)

	authService := service.NewAuthService(users, cfg.JWTSecret, logger.Named("auth"))

	authHandler := handler.NewAuthHandler(authService, cfg.CookieSecure)
	stayHandler := handler.NewStayHandler(service.NewStayService(stays, logger.Named("stay")))
	recordHandler := handler.NewTasteRecordHandler(service.NewTasteRecordService(db, records, logger.Named("record")))
	guildHandler := handler.NewGuildHandler(service.NewGuildService(db, guilds, notifications, users, logger.Named("guild")))
	notificationHandler := handler.NewNotificationHandler(service.NewNotificationService(notifications))
	dashboardHandler := handler.NewDashboardHandler(service.NewDashboardService(records, stays, guilds, users))

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Taste Records API is running",
		})
	})

	// API 路由组
	api := r.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireSession(authService), authHandler.Me)
		}

		api.GET("/categories", recordHandler.Categories)

		// 以下接口需要登录
		protected := api.Group("", middleware.RequireSession(authService))

		// 停留记录
		st := protected.Group("/stays")
		{
			st.POST("", stayHandler.CreateStay)
			st.GET("", stayHandler.GetStays)
			st.GET("/:id", stayHandler.GetStayByID)
		}

		// 口味记录
		tr := protected.Group("/taste-records")
		{
			tr.POST("", recordHandler.Create)
			tr.GET("", recordHandler.List)
			tr.GET("/:id", recordHandler.Get)
			tr.PUT("/:id", recordHandler.Update)
			tr.DELETE("/:id", recordHandler.Delete)
		}

		// 公会与任务
		g := protected.Group("/guilds")
		{
			g.POST("", guildHandler.Create)
			g.GET("", guildHandler.List)
			g.GET("/:id", guildHandler.Get)
			g.POST("/:id/join", guildHandler.Join)
			g.POST("/:id/leave", guildHandler.Leave)
			g.POST("/:id/missions", guildHandler.CreateMission)
			g.GET("/:id/missions", guildHandler.ListMissions)
			g.POST("/:id/missions/:missionId/complete", guildHandler.CompleteMission)
		}

		// 通知
		n := protected.Group("/notifications")
		{
			n.GET("", notificationHandler.List)
			n.POST("/read-all", notificationHandler.MarkAllRead)
			n.POST("/:id/read", notificationHandler.MarkRead)
		}

		// 仪表盘
		d := protected.Group("/dashboard")
		{
			d.GET("/me", dashboardHandler.Personal)
			d.GET("/aggregate", dashboardHandler.Aggregate)
		}
	}

	return r
}
