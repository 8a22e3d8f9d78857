package handler

import (
	"log/slog"
	"net/http"

	"tam_website/internal/middleware"
	"tam_website/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers groups every handler mounted by NewRouter.
type Handlers struct {
	Auth         *AuthHandler
	AdminUsers   *AdminUserHandler
	Blog         *BlogHandler
	AdminArticle *AdminArticleHandler
	AdminContent *AdminContentHandler
	Dashboard    *DashboardHandler
	Health       *HealthHandler
}

// RouterConfig carries what the router needs besides handlers.
type RouterConfig struct {
	JWT      *utils.JWTUtil
	Users    middleware.UserLoader
	Logger   *slog.Logger
	Registry *prometheus.Registry
	// MaxUploadMemory bounds multipart parsing; 0 keeps gin's default.
	MaxUploadMemory int64
}

// NewRouter builds the gin engine with the middleware chain and every route group.
func NewRouter(h Handlers, cfg RouterConfig) (*gin.Engine, error) {
	router := gin.New()
	if cfg.MaxUploadMemory > 0 {
		router.MaxMultipartMemory = cfg.MaxUploadMemory
	}

	promMW, err := middleware.NewPrometheusMiddleware(cfg.Registry)
	if err != nil {
		return nil, err
	}

	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(cfg.Logger),
		promMW.Handler(),
		middleware.CORS(),
		middleware.Language(),
	)

	jwtAuthMW := middleware.JWTAuthMiddleware(cfg.JWT, cfg.Users)
	guestMW := middleware.GuestOnlyMiddleware(cfg.JWT)
	superuserMW := middleware.SuperuserMiddleware()
	contentMW := middleware.ContentManagerMiddleware()
	authorMW := middleware.AuthorMiddleware()

	apiGroup := router.Group("/api/v1")
	h.Auth.RegisterAuthRoutes(apiGroup, jwtAuthMW, guestMW)
	h.AdminUsers.RegisterAdminUserRoutes(apiGroup, jwtAuthMW, superuserMW)
	h.Blog.RegisterBlogRoutes(apiGroup, jwtAuthMW, authorMW)
	h.AdminArticle.RegisterAdminArticleRoutes(apiGroup, jwtAuthMW, contentMW)
	h.AdminContent.RegisterAdminContentRoutes(apiGroup, jwtAuthMW, contentMW)
	h.Dashboard.RegisterDashboardRoutes(apiGroup, jwtAuthMW, contentMW)

	router.GET("/health", h.Health.Health)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{})))
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found."})
	})

	return router, nil
}
