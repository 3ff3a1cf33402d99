package app

import (
	"context"

	"oauth-login-service/internal/auth/handler"
	"oauth-login-service/internal/auth/resolver"
	"oauth-login-service/internal/config"
	"oauth-login-service/internal/middleware"
	"oauth-login-service/internal/secrets"
	"oauth-login-service/internal/session"
	"oauth-login-service/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {

	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	// ----------------------------
	// Dependencies
	// ----------------------------

	box, err := secrets.NewBox(cfg.SecretboxMasterKey)
	if err != nil {
		return nil, nil, err
	}

	var (
		sessionStore session.Store
		flowStore    session.FlowStore
	)
	if infra.Redis != nil {
		redisStore := session.NewRedisStore(infra.Redis.Client)
		sessionStore = redisStore
		flowStore = redisStore
	} else {
		memStore := session.NewMemoryStore()
		sessionStore = memStore
		flowStore = memStore
	}

	userStore := user.NewPGStore(infra.DB)
	accountResolver := resolver.New(userStore, user.NoopNotifier{}, cfg.ResolverPolicy())

	authHandler := handler.NewHandler(
		cfg,
		flowStore,
		sessionStore,
		userStore,
		accountResolver,
		box,
	)

	authMiddleware := middleware.NewAuthMiddleware(sessionStore)

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(gin.Recovery())

	// ----------------------------
	// Public Routes
	// ----------------------------

	authHandler.RegisterRoutes(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// ----------------------------
	// Protected API Routes
	// ----------------------------

	api := router.Group("/api")
	api.Use(middleware.GinRequireAuth(authMiddleware))

	api.GET("/me", func(c *gin.Context) {
		userID, _ := middleware.UserIDFromContext(c.Request.Context())
		c.JSON(200, gin.H{
			"user_id": userID,
		})
	})

	// ----------------------------
	// Protected Web Routes
	// ----------------------------

	web := router.Group("/")
	web.Use(middleware.GinRequireAuth(authMiddleware))

	web.GET("/my/account", func(c *gin.Context) {
		userID, _ := middleware.UserIDFromContext(c.Request.Context())
		c.JSON(200, gin.H{
			"user_id": userID,
		})
	})

	// ----------------------------
	// Cleanup
	// ----------------------------

	return router, func() error {
		return infra.DB.Close()
	}, nil
}
