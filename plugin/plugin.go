package plugin

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"panbot/model"
)

var (
	// ErrStrategyNotFound 请求的搜索源未注册
	ErrStrategyNotFound = errors.New("search strategy not found")

	// ErrCaptchaResolutionFailed 重试次数耗尽仍未通过验证码校验
	ErrCaptchaResolutionFailed = errors.New("captcha resolution failed")

	// ErrNetworkFailure 单次上游请求的传输层错误
	ErrNetworkFailure = errors.New("network failure")

	// ErrUpstreamRejected 上游返回失败且没有可恢复的验证码挑战
	ErrUpstreamRejected = errors.New("upstream rejected request")
)

// SearchStrategy 单个上游资源站的搜索实现
type SearchStrategy interface {
	// Name 返回搜索源名称，与注册的 SearchSource 一致
	Name() string

	// Search 执行搜索，retryBudget 为验证码恢复可用的轮数
	Search(ctx context.Context, req model.SearchRequest, retryBudget int) ([]model.SearchResult, error)

	// GetDetail 将缓存的条目解析为最终直链；解析失败返回占位结果而不是错误
	GetDetail(ctx context.Context, title, link string) ([]model.SearchResult, error)
}

// Registry 搜索源到策略单例的注册表，启动时填充，之后只读
type Registry struct {
	mu         sync.RWMutex
	strategies map[model.SearchSource]SearchStrategy
	order      []model.SearchSource
}

// NewRegistry 创建空注册表
func NewRegistry() *Registry {
	return &Registry{
		strategies: make(map[model.SearchSource]SearchStrategy),
	}
}

// Register 注册策略，同名策略会被替换
func (r *Registry) Register(strategy SearchStrategy) {
	if strategy == nil {
		return
	}

	name := model.SearchSource(strategy.Name())
	if name == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.strategies[name]; !exists {
		r.order = append(r.order, name)
	}
	r.strategies[name] = strategy
}

// Get 根据搜索源获取策略
func (r *Registry) Get(source model.SearchSource) (SearchStrategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	strategy, exists := r.strategies[source]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrStrategyNotFound, source)
	}
	return strategy, nil
}

// Has 判断搜索源是否已注册
func (r *Registry) Has(source model.SearchSource) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.strategies[source]
	return exists
}

// Sources 按注册顺序返回所有搜索源
func (r *Registry) Sources() []model.SearchSource {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sources := make([]model.SearchSource, len(r.order))
	copy(sources, r.order)
	return sources
}

// FilterSentinelResults 移除上游占位条目
func FilterSentinelResults(results []model.SearchResult) []model.SearchResult {
	filtered := make([]model.SearchResult, 0, len(results))
	for _, result := range results {
		if result.IsSentinel() {
			continue
		}
		filtered = append(filtered, result)
	}
	return filtered
}
