package upso

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"panbot/model"
	"panbot/plugin"
	"panbot/util"
	"panbot/util/cache"
	"panbot/util/json"
	"panbot/util/metrics"
)

const (
	// DefaultAPIURL UpSo搜索接口地址
	DefaultAPIURL = "https://upapi.juapp9.com/search"

	// DefaultRetryBudget 默认验证码恢复轮数
	DefaultRetryBudget = 2

	statusFailed = "failed"
)

// Recognizer 验证码识别服务
type Recognizer interface {
	Recognize(ctx context.Context, imageURL string) (string, error)
}

// UpSoStrategy UpSo搜索策略：响应为base64包装的JSON，失败时携带验证码图片地址
type UpSoStrategy struct {
	*plugin.BaseStrategy
	apiURL string
	ocr    Recognizer
	codes  *cache.CodeCache
}

// New 创建UpSo搜索策略，codes 为该搜索源独享的验证码缓存
func New(client *http.Client, apiURL string, ocr Recognizer, codes *cache.CodeCache) *UpSoStrategy {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	return &UpSoStrategy{
		BaseStrategy: plugin.NewBaseStrategy(string(model.SourceUpSo), client),
		apiURL:       apiURL,
		ocr:          ocr,
		codes:        codes,
	}
}

// Codes 返回验证码缓存
func (p *UpSoStrategy) Codes() *cache.CodeCache {
	return p.codes
}

// Search 执行搜索，遇到验证码挑战时识别新验证码并重试，最多 retryBudget 轮
func (p *UpSoStrategy) Search(ctx context.Context, req model.SearchRequest, retryBudget int) ([]model.SearchResult, error) {
	code := req.VerificationCode
	if code == "" {
		if cached, ok := p.codes.Get(); ok {
			code = cached
		}
	}

	attempts := 0
	for budget := retryBudget; budget > 0; budget-- {
		resp, err := p.fetch(ctx, req, code)
		if err != nil {
			return nil, err
		}

		if resp.Status != statusFailed {
			return p.convertResults(resp.Result.Items), nil
		}
		if resp.Result.Code == "" {
			return nil, fmt.Errorf("%w: %s", plugin.ErrUpstreamRejected, resp.Msg)
		}

		attempts++
		metrics.CaptchaRecoveries.WithLabelValues(p.Name()).Inc()
		newCode, err := p.ocr.Recognize(ctx, resp.Result.Code)
		if err != nil {
			return nil, fmt.Errorf("%w: recognize verification code: %v", plugin.ErrNetworkFailure, err)
		}
		p.codes.Set(newCode)
		p.Logger().Info().
			Int("attempt", attempts).
			Int("code_len", len(newCode)).
			Time("expires_at", p.codes.ExpiresAt()).
			Msg("获取新的验证码")
		code = newCode
	}

	return nil, fmt.Errorf("%w: verification code rejected after %d attempts", plugin.ErrCaptchaResolutionFailed, attempts)
}

// GetDetail UpSo结果已是直链，无需解析
func (p *UpSoStrategy) GetDetail(ctx context.Context, title, link string) ([]model.SearchResult, error) {
	return []model.SearchResult{}, nil
}

// fetch 发起一次搜索请求并解码base64包装的JSON
func (p *UpSoStrategy) fetch(ctx context.Context, req model.SearchRequest, code string) (*apiResponse, error) {
	searchURL := p.buildURL(req, code)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("User-Agent", util.DefaultUserAgent)

	resp, err := p.Client().Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", plugin.ErrNetworkFailure, err)
	}
	body, err := util.ReadBody(resp)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", plugin.ErrNetworkFailure, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: upso returned status %d", plugin.ErrNetworkFailure, resp.StatusCode)
	}

	decoded, err := util.DecodeBase64Body(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", plugin.ErrUpstreamRejected, err)
	}

	var apiResp apiResponse
	if err := json.Unmarshal(decoded, &apiResp); err != nil {
		return nil, fmt.Errorf("%w: decode response failed: %v", plugin.ErrUpstreamRejected, err)
	}
	return &apiResp, nil
}

// buildURL 按 keyword, page, s_type, from, code 的顺序拼接查询参数
func (p *UpSoStrategy) buildURL(req model.SearchRequest, code string) string {
	page := req.Page
	if page < 1 {
		page = 1
	}

	params := []string{
		"keyword=" + url.QueryEscape(req.Keyword),
		"page=" + strconv.Itoa(page),
		"s_type=" + strconv.Itoa(req.SearchType),
		"from=" + strconv.Itoa(req.Origin),
	}
	if code != "" {
		params = append(params, "code="+url.QueryEscape(code))
	}

	sep := "?"
	if strings.Contains(p.apiURL, "?") {
		sep = "&"
	}
	return p.apiURL + sep + strings.Join(params, "&")
}

// convertResults 将API条目转换为标准结果，丢弃占位条目
func (p *UpSoStrategy) convertResults(items []apiItem) []model.SearchResult {
	results := make([]model.SearchResult, 0, len(items))
	for _, item := range items {
		if item.ID == model.SentinelItemID {
			continue
		}
		results = append(results, model.SearchResult{
			Title:        item.Title,
			Link:         item.PageURL,
			SourceItemID: item.ID,
		})
	}
	return results
}

// apiResponse API响应结构
type apiResponse struct {
	Status string    `json:"status"`
	Msg    string    `json:"msg"`
	Result apiResult `json:"result"`
}

// apiResult 结果部分；失败时 Code 为验证码图片地址
type apiResult struct {
	Items []apiItem `json:"items"`
	Code  string    `json:"code"`
}

// apiItem 单个结果条目
type apiItem struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	PageURL string `json:"page_url"`
	Path    string `json:"path"`
}
