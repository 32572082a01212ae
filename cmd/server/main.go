package main

import (
	"errors"
	"fmt"
	"net/http"
	"shortlink-platform/internal/config"
	"shortlink-platform/internal/handler"
	"shortlink-platform/internal/middleware"
	"shortlink-platform/internal/model"
	"shortlink-platform/internal/slug"
	"shortlink-platform/internal/store"
	"shortlink-platform/pkg/database"
	auth "shortlink-platform/pkg/jwt"
	"shortlink-platform/pkg/logger"
	"shortlink-platform/pkg/redis"
	"time"

	_ "shortlink-platform/docs"

	"github.com/gin-gonic/gin"
	redisClient "github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// @title ShortLink Platform API
// @version 1.0
// @description 短链接服务：slug 跳转、链接创建、二维码与统计
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

func main() {
	logger.InitLogger()
	defer func() {
		if err := logger.Logger.Sync(); err != nil {
			fmt.Println("日志同步失败:", err)
		}
	}()
	sugaredLogger := zap.S()

	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		sugaredLogger.Fatalf("配置加载失败: %v", err)
	}

	db, err := database.InitMySQL(cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Password, cfg.Database.Name)
	if err != nil {
		sugaredLogger.Fatalf("数据库初始化失败: %v", err)
	}
	sugaredLogger.Info("✅ 数据库连接成功")

	var rdb *redisClient.Client
	if cfg.Cache.Host != "" {
		rdb, err = redis.NewClient(&redis.Options{
			Host: cfg.Cache.Host, Port: cfg.Cache.Port, Password: cfg.Cache.Password, DB: cfg.Cache.DB,
		})
		if err != nil {
			sugaredLogger.Warnf("缓存连接失败: %v", err)
		} else {
			defer func() {
				if err := rdb.Close(); err != nil {
					sugaredLogger.Errorf("关闭 Redis 连接失败: %v", err)
				}
			}()
			sugaredLogger.Info("✅ 缓存连接成功")
		}
	}

	links := store.NewGormLinkStore(db)

	// 初始化并启动随机 slug 生成器
	slugGenerator := slug.NewGenerator(db, sugaredLogger)
	slugGenerator.Start()
	defer slugGenerator.Stop()
	sugaredLogger.Info("✅ slug 生成器已启动")

	tokenManager := auth.NewManager(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.ExpirationHours)
	sugaredLogger.Info("✅ 认证管理器初始化成功")

	if err := createAdminUser(db); err != nil {
		sugaredLogger.Errorf("创建管理员失败: %v", err)
	}

	if cfg.App.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.GinZapRecovery(logger.Logger, true))
	router.Use(middleware.GinZapLogger(logger.Logger))

	// slug 跳转装在全局中间件上，未注册的路径都会在这里尝试按 slug 解析
	router.Use(middleware.SlugRedirect(links, sugaredLogger))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	authMiddleware := middleware.AuthMiddleware(tokenManager)
	adminMiddleware := middleware.AdminMiddleware()
	rateLimitMiddleware := middleware.RateLimit(rdb, &cfg.RateLimit)
	router.Use(rateLimitMiddleware)

	linkHandler := handler.NewShortLinkHandler(links, slugGenerator, &cfg.App)
	authHandler := handler.NewAuthHandler(db, rdb, tokenManager)

	registerRoutes(router, linkHandler, authHandler, authMiddleware, adminMiddleware)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	sugaredLogger.Infof("🚀 服务启动成功, 访问 http://localhost:%d", cfg.Server.Port)
	sugaredLogger.Infof("📚 Swagger 文档地址: http://localhost:%d/swagger/index.html", cfg.Server.Port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		sugaredLogger.Fatalf("服务启动失败: %v", err)
	}
}

func registerRoutes(
	router *gin.Engine,
	linkHandler *handler.ShortLinkHandler,
	authHandler *handler.AuthHandler,
	authMiddleware, adminMiddleware gin.HandlerFunc,
) {
	router.GET("/", linkHandler.IndexPage)
	router.GET("/health", linkHandler.HealthCheck)

	authGroup := router.Group("/auth")
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/register", authHandler.Register)
	}

	api := router.Group("/api")
	api.Use(authMiddleware)
	{
		api.GET("/me", authHandler.GetCurrentUser)
		api.POST("/shorten", linkHandler.CreateShortLink)
		api.GET("/links", linkHandler.GetLinks)
	}

	// 全局统计只开放给管理员
	admin := api.Group("")
	admin.Use(adminMiddleware)
	{
		admin.GET("/stats", linkHandler.GetStats)
	}
}

func createAdminUser(db *gorm.DB) error {
	var existing model.User
	if err := db.Where("username = ?", "admin").First(&existing).Error; err == nil {
		return nil
	}

	admin := model.User{Username: "admin", Email: "admin@shortlink.local", Role: "admin", IsActive: true}
	if err := admin.SetPassword("admin"); err != nil {
		return err
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	zap.S().Infow("✅ 默认管理员创建成功", "username", "admin")
	return nil
}
