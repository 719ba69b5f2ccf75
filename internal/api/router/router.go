package router

import (
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/d60-Lab/warbler/config"
	_ "github.com/d60-Lab/warbler/docs"
	"github.com/d60-Lab/warbler/internal/api/handler"
	"github.com/d60-Lab/warbler/internal/auth"
	"github.com/d60-Lab/warbler/internal/middleware"
	"github.com/d60-Lab/warbler/internal/session"
	appvalidator "github.com/d60-Lab/warbler/pkg/validator"
)

// SetupRouter 组装中间件与路由
func SetupRouter(cfg *config.Config, h *handler.Handler, store session.Store, resolver *auth.Resolver) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	appvalidator.RegisterGin()

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger())
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	if cfg.Tracing.Enabled {
		r.Use(otelgin.Middleware(cfg.Tracing.ServiceName))
	}
	if cfg.Sentry.DSN != "" {
		r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}

	r.GET("/healthz", h.Health)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	app := r.Group("/", middleware.Session(store), middleware.Identity(resolver))
	{
		var limited []gin.HandlerFunc
		if cfg.RateLimit.Enabled {
			limited = append(limited, middleware.RateLimit(middleware.NewIPRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)))
		}
		app.GET("/", h.Home)
		app.POST("/signup", append(limited, h.Signup)...)
		app.POST("/login", append(limited, h.Login)...)
		app.POST("/logout", h.Logout)

		users := app.Group("/users")
		{
			users.GET("", h.ListUsers)
			users.POST("/profile", h.UpdateProfile)
			users.POST("/delete", h.DeleteUser)
			users.POST("/follow/:id", h.Follow)
			users.POST("/stop-following/:id", h.Unfollow)
			users.GET("/:id", h.ShowUser)
			users.GET("/:id/following", h.ListFollowing)
			users.GET("/:id/followers", h.ListFollowers)
			users.GET("/:id/likes", h.ListLikes)
			users.POST("/:id/follow", h.ToggleFollow)
			users.POST("/:id/like", h.ToggleLike)
		}

		messages := app.Group("/messages")
		{
			messages.POST("/new", h.NewMessage)
			messages.GET("/:id", h.ShowMessage)
			messages.POST("/:id/delete", h.DeleteMessage)
		}
	}
	return r
}
