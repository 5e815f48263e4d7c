package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"panbot/api"
	"panbot/config"
	"panbot/model"
	"panbot/plugin"
	"panbot/plugin/catso"
	"panbot/plugin/upso"
	"panbot/service"
	"panbot/util"
	"panbot/util/cache"
)

func main() {
	issueToken := flag.String("issue-token", "", "签发管理员令牌（参数为令牌主体）后退出")
	flag.Parse()

	// 初始化应用
	initApp()

	if *issueToken != "" {
		printAdminToken(*issueToken)
		return
	}

	// 启动服务器
	startServer()
}

// initApp 初始化应用程序
func initApp() {
	// 初始化配置
	config.Init()

	// 初始化日志
	util.InitLogger(config.AppConfig.LogLevel, config.AppConfig.LogPretty)

	// 初始化HTTP客户端
	util.InitHTTPClient()

	if config.AppConfig.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
}

// registerStrategies 注册全部搜索源，返回需要定期清理的验证码缓存
func registerStrategies(registry *plugin.Registry, client *http.Client) []*cache.CodeCache {
	cfg := config.AppConfig

	upsoCodes := cache.NewCodeCache(cfg.VerifyCodeTTL)
	ocr := util.NewOCRClient(cfg.OCRURL, client)

	registry.Register(upso.New(client, cfg.UpSoAPIURL, ocr, upsoCodes))
	registry.Register(catso.New(client, cfg.CatSoHomeURL, cfg.DetailRetryBudget))

	return []*cache.CodeCache{upsoCodes}
}

// startServer 启动Web服务器
func startServer() {
	cfg := config.AppConfig

	registry := plugin.NewRegistry()
	codes := registerStrategies(registry, util.GetHTTPClient())

	defaultSource, ok := model.ParseSearchSource(cfg.DefaultSource)
	if !ok || !registry.Has(defaultSource) {
		log.Warn().Str("source", cfg.DefaultSource).Msg("默认搜索源无效，使用 upso")
		defaultSource = model.SourceUpSo
	}

	results := cache.NewResultCache(cfg.ResultCacheMaxEntries, cfg.ResultCacheTTL)
	searchService := service.NewSearchService(registry, service.NewSourceSelector(defaultSource), results)

	var historyService *service.HistoryService
	if cfg.HistoryDBPath != "" {
		db, err := service.OpenHistoryDB(cfg.HistoryDBPath)
		if err != nil {
			log.Error().Err(err).Str("path", cfg.HistoryDBPath).Msg("打开搜索历史数据库失败，历史记录已禁用")
		} else {
			historyService = service.NewHistoryService(db)
			searchService.SetHistory(historyService)
		}
	}

	authService := service.NewAuthService(cfg.JWTSecret, cfg.AdminTokenTTL)
	if !authService.Enabled() {
		log.Warn().Msg("未配置 JWT_SECRET，管理接口不做鉴权")
	}

	sweeper := service.NewCacheSweeper(searchService, service.DefaultSweepSpec, codes...)
	if err := sweeper.Start(); err != nil {
		log.Fatal().Err(err).Msg("启动缓存清理任务失败")
	}

	handler := api.NewHandler(searchService, service.NewCommandService(searchService), historyService)
	router := api.SetupRouter(handler, api.RouterOptions{
		Auth:              authService,
		EnableCompression: cfg.EnableCompression,
		MinSizeToCompress: cfg.MinSizeToCompress,
		RateRPS:           cfg.RateRPS,
		RateBurst:         cfg.RateBurst,
	})

	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     router,
		ReadTimeout: 10 * time.Second,
		// 详情解析最多串行四次上游请求
		WriteTimeout: 4*cfg.HTTPTimeout + 10*time.Second,
	}

	printServiceInfo(cfg.Port, registry, searchService)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("启动服务器失败")
		}
	}()

	// 优雅退出
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Info().Msg("正在关闭服务器")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("关闭服务器失败")
	}
	sweeper.Stop()
	log.Info().Msg("服务器已停止")
}

// printAdminToken 签发并输出管理员令牌
func printAdminToken(subject string) {
	authService := service.NewAuthService(config.AppConfig.JWTSecret, config.AppConfig.AdminTokenTTL)
	token, expiresAt, err := authService.GenerateToken(subject)
	if err != nil {
		fmt.Fprintf(os.Stderr, "签发令牌失败: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
	fmt.Fprintf(os.Stderr, "有效期至 %s\n", expiresAt.Format(time.RFC3339))
}

// printServiceInfo 打印服务信息
func printServiceInfo(port string, registry *plugin.Registry, searchService *service.SearchService) {
	cfg := config.AppConfig

	event := log.Info().Str("addr", "http://localhost:"+port)
	if cfg.UseProxy {
		event = event.Str("proxy", cfg.ProxyURL)
	}
	event.
		Bool("compression", cfg.EnableCompression).
		Bool("history", cfg.HistoryDBPath != "").
		Str("current_source", string(searchService.CurrentSource())).
		Msg("服务器启动")

	for _, source := range registry.Sources() {
		log.Info().Str("source", string(source)).Msg("已加载搜索源")
	}
}
