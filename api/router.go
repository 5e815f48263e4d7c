package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"panbot/service"
	"panbot/util"
)

// RouterOptions 路由可选配置
type RouterOptions struct {
	Auth              *service.AuthService
	EnableCompression bool
	MinSizeToCompress int
	RateRPS           float64
	RateBurst         int
}

// SetupRouter 设置路由
func SetupRouter(h *Handler, opts RouterOptions) *gin.Engine {
	r := gin.New()

	// 添加中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware())
	r.Use(MetricsMiddleware())
	r.Use(CORSMiddleware())
	if opts.EnableCompression {
		r.Use(util.GzipMiddleware(opts.MinSizeToCompress))
	}

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	limiter := NewRateLimiter(opts.RateRPS, opts.RateBurst)
	admin := AdminAuthMiddleware(opts.Auth)

	// 定义API路由组
	api := r.Group("/api")
	api.Use(limiter.Handler())
	{
		// 搜索接口 - 支持POST和GET两种方式
		api.GET("/search", h.Search)
		api.POST("/search", h.Search)
		api.GET("/select", h.Select)

		// 搜索源
		api.GET("/sources", h.Sources)
		api.PUT("/sources/current", admin, h.SwitchSource)

		// 聊天命令入口
		api.POST("/command", h.Command)

		// 搜索历史
		api.GET("/history", h.History)
		api.DELETE("/history", admin, h.ClearHistory)

		// 健康检查接口
		api.GET("/health", h.Health)
	}

	return r
}
