package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"notevi/internal/api"
	"notevi/internal/config"
	"notevi/internal/mailer"
	"notevi/internal/model"
	"notevi/internal/storage"
)

func main() {
	// .env 仅用于本地开发,缺失时静默跳过
	_ = godotenv.Load()

	// 初始化配置
	cfg, err := config.ParseConfig()
	if err != nil {
		logrus.WithError(err).Error("Failed to parse config")
		return
	}

	// 初始化logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.InfoLevel)

	repo, err := model.InitRepository(&cfg)
	if err != nil {
		logrus.WithError(err).Error("failed to initialise repository")
		return
	}

	if err := model.SeedDefaultRoles(context.Background(), repo); err != nil {
		logrus.WithError(err).Warn("failed to seed default roles")
	}

	store, err := storage.NewStorage(cfg)
	if err != nil {
		logrus.WithError(err).Error("failed to initialise storage")
		return
	}

	publisher := mailer.NewPublisher(cfg)
	if cfg.EmailEnabled {
		go mailer.NewConsumer(cfg).Start()
	}

	httpHandler, err := api.NewHTTPHandler(cfg, repo, store, publisher)
	if err != nil {
		logrus.WithError(err).Error("failed to initialise http handler")
		return
	}

	// 设置Gin模式
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// 添加中间件
	r.Use(LoggingMiddleware())
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	apiGroup := r.Group("/api")

	authGroup := apiGroup.Group("/auth")
	authGroup.POST("/register", httpHandler.Register)
	authGroup.POST("/login", httpHandler.Login)
	authGroup.POST("/logout", httpHandler.Logout)
	authGroup.GET("/accept", httpHandler.AcceptVerify)
	authGroup.GET("/me", httpHandler.AuthMiddleware(), httpHandler.Me)
	authGroup.POST("/verify", httpHandler.AuthMiddleware(), httpHandler.RequestVerify)

	// 文档的读取接口对匿名开放,非公开文档由服务层按可见性过滤
	notes := apiGroup.Group("/notes")
	notes.GET("", httpHandler.OptionalAuthMiddleware(), httpHandler.ListNotes)
	notes.GET("/:id", httpHandler.OptionalAuthMiddleware(), httpHandler.GetNote)
	notes.GET("/favorites", httpHandler.AuthMiddleware(), httpHandler.ListFavoriteNotes)

	notesWrite := notes.Group("", httpHandler.AuthMiddleware(), httpHandler.RequireVerified())
	notesWrite.POST("", httpHandler.CreateNote)
	notesWrite.PATCH("/:id", httpHandler.UpdateNote)
	notesWrite.DELETE("/:id", httpHandler.DeleteNote)
	notesWrite.POST("/:id/images", httpHandler.AddNoteImages)
	notesWrite.DELETE("/:id/images/:image_id", httpHandler.DeleteNoteImage)
	notesWrite.PUT("/:id/favorite", httpHandler.FavoriteNote)
	notesWrite.DELETE("/:id/favorite", httpHandler.UnfavoriteNote)

	summaries := apiGroup.Group("/summaries")
	summaries.GET("", httpHandler.OptionalAuthMiddleware(), httpHandler.ListSummaries)
	summaries.GET("/:id", httpHandler.OptionalAuthMiddleware(), httpHandler.GetSummary)
	summaries.GET("/favorites", httpHandler.AuthMiddleware(), httpHandler.ListFavoriteSummaries)

	summariesWrite := summaries.Group("", httpHandler.AuthMiddleware(), httpHandler.RequireVerified())
	summariesWrite.POST("", httpHandler.CreateSummary)
	summariesWrite.PATCH("/:id", httpHandler.UpdateSummary)
	summariesWrite.DELETE("/:id", httpHandler.DeleteSummary)
	summariesWrite.POST("/:id/images", httpHandler.AddSummaryImages)
	summariesWrite.DELETE("/:id/images/:image_id", httpHandler.DeleteSummaryImage)
	summariesWrite.PUT("/:id/favorite", httpHandler.FavoriteSummary)
	summariesWrite.DELETE("/:id/favorite", httpHandler.UnfavoriteSummary)

	files := apiGroup.Group("/files", httpHandler.AuthMiddleware())
	files.GET("", httpHandler.ListFiles)
	files.POST("", httpHandler.RequireVerified(), httpHandler.UploadFile)
	files.DELETE("/:id", httpHandler.DeleteFile)

	users := apiGroup.Group("/users", httpHandler.AuthMiddleware())
	users.GET("/:id", httpHandler.GetUser)
	users.PATCH("/:id", httpHandler.UpdateUser)
	users.DELETE("/:id", httpHandler.DeleteUser)
	users.GET("", httpHandler.RequireAdmin(), httpHandler.ListUsers)

	roles := apiGroup.Group("/roles", httpHandler.AuthMiddleware(), httpHandler.RequireAdmin())
	roles.GET("", httpHandler.ListRoles)
	roles.POST("", httpHandler.CreateRole)
	roles.GET("/:id", httpHandler.GetRole)
	roles.DELETE("/:id", httpHandler.DeleteRole)

	if localProvider, ok := store.(storage.LocalBaseDirProvider); ok {
		publicPrefix := strings.TrimSpace(cfg.StoragePublicBaseURL)
		if publicPrefix == "" {
			publicPrefix = "/static"
		}
		if !strings.HasPrefix(publicPrefix, "http://") && !strings.HasPrefix(publicPrefix, "https://") {
			if !strings.HasPrefix(publicPrefix, "/") {
				publicPrefix = "/" + publicPrefix
			}
			r.Static(publicPrefix, localProvider.LocalBaseDir())
		}
	}

	serverHost := fmt.Sprintf("0.0.0.0:%s", cfg.HTTPPort)
	logger.WithField("host", serverHost).Info("服务器启动")
	// 创建HTTP服务器
	httpServer := &http.Server{
		Addr:         serverHost,
		Handler:      r,
		ReadTimeout:  300 * time.Second,
		WriteTimeout: 300 * time.Second,
		IdleTimeout:  600 * time.Second,
	}
	err = httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		logger.WithError(err).Error("服务器启动失败")
	}
}

// LoggingMiddleware 日志记录中间件
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		// 处理请求
		c.Next()
		// 记录请求结束
		duration := time.Since(start)
		logrus.WithFields(logrus.Fields{
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"status":    c.Writer.Status(),
			"duration":  duration.String(),
			"size":      c.Writer.Size(),
			"client_ip": c.ClientIP(),
		}).Info("http_request")
	}
}
