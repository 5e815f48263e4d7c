package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config 应用配置结构
type Config struct {
	Port     string
	ProxyURL string
	UseProxy bool
	// 上游请求相关配置
	HTTPTimeoutSeconds int           // 单次上游请求超时时间（秒）
	HTTPTimeout        time.Duration // 单次上游请求超时时间（Duration）
	UpSoAPIURL         string        // UpSo搜索接口地址
	OCRURL             string        // 验证码识别服务地址
	CatSoHomeURL       string        // CatSo站点首页
	DefaultSource      string        // 默认搜索源
	SearchRetryBudget  int           // 验证码恢复重试次数
	DetailRetryBudget  int           // 详情链接解析重试次数
	// 验证码缓存配置
	VerifyCodeTTL time.Duration
	// 会话结果缓存配置
	ResultCacheTTL        time.Duration
	ResultCacheMaxEntries int
	// 搜索历史配置
	HistoryDBPath string // 为空时不记录搜索历史
	// 管理员令牌配置
	JWTSecret     string
	AdminTokenTTL time.Duration
	// 日志配置
	LogLevel  string
	LogPretty bool
	// 压缩相关配置
	EnableCompression bool
	MinSizeToCompress int // 最小压缩大小（字节）
	// 限流配置
	RateRPS   float64
	RateBurst int
}

// 全局配置实例
var AppConfig *Config

// Init 初始化配置
func Init() {
	// .env 文件不存在时忽略，直接使用进程环境变量
	_ = godotenv.Load()

	AppConfig = Load()
}

// Load 从环境变量读取配置，未设置的项使用默认值
func Load() *Config {
	proxyURL := getProxyURL()
	httpTimeoutSeconds := getInt("HTTP_TIMEOUT", 10)

	return &Config{
		Port:     getString("PORT", "8888"),
		ProxyURL: proxyURL,
		UseProxy: proxyURL != "",
		// 上游请求相关配置
		HTTPTimeoutSeconds: httpTimeoutSeconds,
		HTTPTimeout:        time.Duration(httpTimeoutSeconds) * time.Second,
		UpSoAPIURL:         getString("UPSO_API_URL", "https://upapi.juapp9.com/search"),
		OCRURL:             getString("OCR_URL", "http://127.0.0.1:5000/ocr"),
		CatSoHomeURL:       strings.TrimRight(getString("CATSO_HOME_URL", "https://www.alipansou.com"), "/"),
		DefaultSource:      strings.ToLower(getString("DEFAULT_SOURCE", "upso")),
		SearchRetryBudget:  getInt("SEARCH_RETRY_BUDGET", 2),
		DetailRetryBudget:  getInt("DETAIL_RETRY_BUDGET", 2),
		// 验证码缓存配置
		VerifyCodeTTL: time.Duration(getInt("VERIFY_CODE_TTL_MINUTES", 20)) * time.Minute,
		// 会话结果缓存配置
		ResultCacheTTL:        time.Duration(getInt("RESULT_CACHE_TTL_MINUTES", 60)) * time.Minute,
		ResultCacheMaxEntries: getInt("RESULT_CACHE_MAX_ENTRIES", 1000),
		// 搜索历史配置
		HistoryDBPath: getHistoryDBPath(),
		// 管理员令牌配置
		JWTSecret:     os.Getenv("JWT_SECRET"),
		AdminTokenTTL: time.Duration(getInt("ADMIN_TOKEN_TTL_HOURS", 24)) * time.Hour,
		// 日志配置
		LogLevel:  strings.ToLower(getString("LOG_LEVEL", "info")),
		LogPretty: getBool("LOG_PRETTY", false),
		// 压缩相关配置
		EnableCompression: getBool("ENABLE_COMPRESSION", false),
		MinSizeToCompress: getInt("MIN_SIZE_TO_COMPRESS", 1024),
		// 限流配置
		RateRPS:   getFloat("RATE_RPS", 5),
		RateBurst: getInt("RATE_BURST", 10),
	}
}

// 从环境变量获取SOCKS5/HTTP代理URL，如果未设置则返回空字符串
func getProxyURL() string {
	return os.Getenv("PROXY")
}

// 搜索历史数据库路径，显式设置为空时关闭历史记录
func getHistoryDBPath() string {
	if value, ok := os.LookupEnv("HISTORY_DB_PATH"); ok {
		return strings.TrimSpace(value)
	}
	return "./data/history.db"
}

// 从环境变量获取字符串，未设置时返回默认值
func getString(key, def string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	return value
}

// 从环境变量获取正整数，未设置或非法时返回默认值
func getInt(key string, def int) int {
	valueEnv := os.Getenv(key)
	if valueEnv == "" {
		return def
	}
	value, err := strconv.Atoi(strings.TrimSpace(valueEnv))
	if err != nil || value <= 0 {
		return def
	}
	return value
}

// 从环境变量获取正浮点数，未设置或非法时返回默认值
func getFloat(key string, def float64) float64 {
	valueEnv := os.Getenv(key)
	if valueEnv == "" {
		return def
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(valueEnv), 64)
	if err != nil || value < 0 {
		return def
	}
	return value
}

// 从环境变量获取布尔值，"true"/"1" 为真，"false"/"0" 为假
func getBool(key string, def bool) bool {
	enabled := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch enabled {
	case "":
		return def
	case "true", "1":
		return true
	case "false", "0":
		return false
	default:
		return def
	}
}
