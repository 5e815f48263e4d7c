package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"panbot/config"
	"panbot/model"
	"panbot/plugin"
	"panbot/util/cache"
	"panbot/util/metrics"
)

const (
	defaultRetryBudget = 2
	defaultPage        = 1
	defaultSearchType  = 2
	defaultOrigin      = 1
)

// HistoryRecorder 搜索历史记录器
type HistoryRecorder interface {
	Record(ctx context.Context, entry *model.SearchHistory) error
}

// SearchService 搜索服务：按当前源路由搜索请求，并按会话缓存结果供序号选择
type SearchService struct {
	registry    *plugin.Registry
	selector    *SourceSelector
	results     *cache.ResultCache
	history     HistoryRecorder
	retryBudget int
}

// NewSearchService 创建搜索服务实例
func NewSearchService(registry *plugin.Registry, selector *SourceSelector, results *cache.ResultCache) *SearchService {
	retryBudget := defaultRetryBudget
	if config.AppConfig != nil && config.AppConfig.SearchRetryBudget > 0 {
		retryBudget = config.AppConfig.SearchRetryBudget
	}

	return &SearchService{
		registry:    registry,
		selector:    selector,
		results:     results,
		retryBudget: retryBudget,
	}
}

// SetHistory 设置搜索历史记录器，为nil时不记录
func (s *SearchService) SetHistory(history HistoryRecorder) {
	s.history = history
}

// Search 执行搜索。未指定搜索源时使用当前源；结果整体替换该会话的缓存
func (s *SearchService) Search(ctx context.Context, query model.SearchQuery) (model.SearchResponse, error) {
	keyword := strings.TrimSpace(query.Keyword)
	if keyword == "" {
		return model.SearchResponse{}, ErrEmptyKeyword
	}

	source := s.resolveSource(query.Source)
	strategy, err := s.registry.Get(source)
	if err != nil {
		return model.SearchResponse{}, err
	}

	req := model.SearchRequest{
		Keyword:    keyword,
		Page:       query.Page,
		SearchType: query.SearchType,
		Origin:     query.Origin,
	}
	if req.Page <= 0 {
		req.Page = defaultPage
	}
	if req.SearchType == 0 {
		req.SearchType = defaultSearchType
	}
	if req.Origin == 0 {
		req.Origin = defaultOrigin
	}

	results, err := strategy.Search(ctx, req, s.retryBudget)
	if err != nil {
		metrics.SearchRequests.WithLabelValues(string(source), "error").Inc()
		return model.SearchResponse{}, err
	}
	results = plugin.FilterSentinelResults(results)
	metrics.SearchRequests.WithLabelValues(string(source), "success").Inc()

	s.results.Set(query.ConversationID, source, results)
	metrics.ResultCacheConversations.Set(float64(s.results.Len()))

	s.recordHistory(ctx, query.ConversationID, keyword, source, len(results))

	return model.SearchResponse{
		Source:  source,
		Total:   len(results),
		Results: results,
	}, nil
}

// SelectByIndex 选择会话上次搜索结果中的第 index 项（从1开始）并解析最终链接
func (s *SearchService) SelectByIndex(ctx context.Context, conversationID int64, index int) (model.SearchResult, error) {
	entry, ok := s.results.Get(conversationID)
	if !ok {
		return model.SearchResult{}, ErrCacheMiss
	}
	if index < 1 || index > len(entry.Results) {
		return model.SearchResult{}, fmt.Errorf("%w: %d not in [1, %d]", ErrIndexOutOfRange, index, len(entry.Results))
	}
	item := entry.Results[index-1]

	// 使用产生该结果的搜索源解析，而不是当前源
	strategy, err := s.registry.Get(entry.Source)
	if err != nil {
		return model.SearchResult{}, err
	}

	details, err := strategy.GetDetail(ctx, item.Title, item.Link)
	if err != nil {
		return model.SearchResult{}, err
	}
	if len(details) == 0 {
		// 该源的结果本身就是直链
		return item, nil
	}
	return details[0], nil
}

// SwitchSource 切换当前搜索源，名称不区分大小写
func (s *SearchService) SwitchSource(name string) (model.SearchSource, error) {
	source, ok := model.ParseSearchSource(name)
	if !ok || !s.registry.Has(source) {
		return "", fmt.Errorf("%w: %s", plugin.ErrStrategyNotFound, name)
	}
	s.selector.Set(source)
	log.Info().Str("source", string(source)).Msg("已切换搜索源")
	return source, nil
}

// CurrentSource 返回当前搜索源
func (s *SearchService) CurrentSource() model.SearchSource {
	return s.selector.Current()
}

// CurrentSourceName 返回当前搜索源名称
func (s *SearchService) CurrentSourceName() string {
	return s.SourceName(s.selector.Current())
}

// SourceName 返回搜索源对应策略的名称
func (s *SearchService) SourceName(source model.SearchSource) string {
	strategy, err := s.registry.Get(source)
	if err != nil {
		return string(source)
	}
	return strategy.Name()
}

// ListSources 按注册顺序返回所有搜索源
func (s *SearchService) ListSources() []model.SearchSource {
	return s.registry.Sources()
}

// SourceInfos 返回搜索源列表及当前源标记
func (s *SearchService) SourceInfos() []model.SourceInfo {
	current := s.selector.Current()
	sources := s.registry.Sources()
	infos := make([]model.SourceInfo, 0, len(sources))
	for _, source := range sources {
		infos = append(infos, model.SourceInfo{
			Source:  source,
			Name:    s.SourceName(source),
			Current: source == current,
		})
	}
	return infos
}

// CleanExpiredResults 清理过期的会话结果缓存
func (s *SearchService) CleanExpiredResults() int {
	removed := s.results.CleanExpired()
	metrics.ResultCacheConversations.Set(float64(s.results.Len()))
	return removed
}

func (s *SearchService) resolveSource(source model.SearchSource) model.SearchSource {
	if source == "" {
		return s.selector.Current()
	}
	if parsed, ok := model.ParseSearchSource(string(source)); ok {
		return parsed
	}
	return source
}

// recordHistory 记录搜索历史，失败只记日志
func (s *SearchService) recordHistory(ctx context.Context, conversationID int64, keyword string, source model.SearchSource, count int) {
	if s.history == nil {
		return
	}

	entry := &model.SearchHistory{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Keyword:        keyword,
		Source:         source,
		ResultCount:    count,
		SearchedAt:     time.Now(),
	}
	if err := s.history.Record(ctx, entry); err != nil {
		log.Warn().Err(err).Int64("conversation", conversationID).Msg("记录搜索历史失败")
	}
}
