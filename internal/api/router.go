package api

import (
	"fmt"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/d60-Lab/daily-poem/config"
	_ "github.com/d60-Lab/daily-poem/docs"
	"github.com/d60-Lab/daily-poem/internal/api/handler"
	"github.com/d60-Lab/daily-poem/internal/api/middleware"
	"github.com/d60-Lab/daily-poem/internal/web"
)

// NewRouter 注册全部路由
func NewRouter(h *handler.Handler, cfg *config.Config) (*gin.Engine, error) {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		middleware.AccessLog(),
		otelgin.Middleware(cfg.Tracing.ServiceName),
		gzip.Gzip(gzip.DefaultCompression),
		middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst).Middleware(),
	)

	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	r.SetHTMLTemplate(tmpl)

	r.GET("/", h.PoemForm)
	r.POST("/", h.SubmitPoemForm)
	r.GET("/healthz", h.Health)
	r.POST("/auth/token", h.IssueToken)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	poems := r.Group("/poems")
	{
		poems.GET("", h.ListPoems)
		poems.POST("", h.CreatePoem)
		poems.GET("/:id", h.GetPoem)
	}

	admin := poems.Group("", middleware.AdminAuth(cfg.Auth.JWTSecret))
	{
		admin.POST("/bulk", h.CreatePoemsBulk)
		admin.PUT("/:id", h.UpdatePoem)
		admin.DELETE("/:id", h.DeletePoem)
		admin.POST("/tweetrandom", h.TweetRandom)
		admin.POST("/reset", h.ResetPosted)
	}
	return r, nil
}
