package catso

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"panbot/model"
	"panbot/plugin"
	"panbot/util"
	"panbot/util/metrics"
)

const (
	// DefaultHomeURL 站点首页
	DefaultHomeURL = "https://www.alipansou.com"

	// DefaultDetailBudget 详情解析最多尝试的轮数
	DefaultDetailBudget = 2

	// UserAgent 站点要求的浏览器标识
	UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/130.0.0.0 Safari/537.36"

	activationCode      = "5678"
	sessionCookiePrefix = "_egg"
)

// CatSoStrategy CatSo搜索策略：HTML页面抓取，挑战Cookie握手，详情页重定向解析
type CatSoStrategy struct {
	*plugin.BaseStrategy
	homeURL      string
	detailBudget int
	extractor    ItemExtractor
	noRedirect   *http.Client

	// 挑战Cookie在同一实例的所有请求间共享
	mu     sync.Mutex
	cookie string
}

// New 创建CatSo搜索策略
func New(client *http.Client, homeURL string, detailBudget int) *CatSoStrategy {
	if client == nil {
		client = http.DefaultClient
	}
	homeURL = strings.TrimRight(homeURL, "/")
	if homeURL == "" {
		homeURL = DefaultHomeURL
	}
	if detailBudget <= 0 {
		detailBudget = DefaultDetailBudget
	}
	return &CatSoStrategy{
		BaseStrategy: plugin.NewBaseStrategy(string(model.SourceCatSo), client),
		homeURL:      homeURL,
		detailBudget: detailBudget,
		extractor:    PageExtractor{HomeURL: homeURL},
		noRedirect:   util.NoRedirectClient(client),
	}
}

// SetExtractor 替换结果页提取器
func (p *CatSoStrategy) SetExtractor(extractor ItemExtractor) {
	if extractor != nil {
		p.extractor = extractor
	}
}

// Cookie 返回当前挑战Cookie
func (p *CatSoStrategy) Cookie() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cookie
}

// Search 搜索资源。站点没有验证码，retryBudget 不参与；任何请求失败都降级为空结果
func (p *CatSoStrategy) Search(ctx context.Context, req model.SearchRequest, retryBudget int) ([]model.SearchResult, error) {
	searchURL := p.searchURL(req.Keyword)

	html, err := p.fetchPage(ctx, searchURL)
	if err != nil {
		p.Logger().Warn().Err(err).Str("keyword", req.Keyword).Msg("搜索请求失败")
		return []model.SearchResult{}, nil
	}

	if token, ok := ExtractChallengeToken(html); ok {
		p.Logger().Debug().Str("token", token).Msg("重新获取 ck_ml_sea")
		if err := p.refreshCookie(token); err != nil {
			p.Logger().Warn().Err(err).Msg("计算挑战Cookie失败")
			return []model.SearchResult{}, nil
		}

		html, err = p.fetchPage(ctx, searchURL)
		if err != nil {
			p.Logger().Warn().Err(err).Str("keyword", req.Keyword).Msg("握手后搜索请求失败")
			return []model.SearchResult{}, nil
		}
	}

	return p.extractor.Extract(html), nil
}

// GetDetail 解析详情页的最终跳转地址，失败时链接为占位文本
func (p *CatSoStrategy) GetDetail(ctx context.Context, title, link string) ([]model.SearchResult, error) {
	resolved, err := p.resolveRedirect(ctx, link)
	if err != nil {
		p.Logger().Warn().Err(err).Str("link", link).Msg("详情链接解析失败")
	}

	outcome := "resolved"
	if resolved == "" {
		resolved = model.UnresolvedLink
		outcome = "unresolved"
	}
	metrics.DetailResolutions.WithLabelValues(p.Name(), outcome).Inc()

	return []model.SearchResult{{Title: title, Link: resolved}}, nil
}

// resolveRedirect 激活会话后请求 /cv/ 页面并读取 Location，遇到挑战时刷新Cookie重试
func (p *CatSoStrategy) resolveRedirect(ctx context.Context, link string) (string, error) {
	target := link
	for budget := p.detailBudget; budget > 0; budget-- {
		activation, err := p.activate(ctx, target)
		if err != nil {
			return "", err
		}
		target = rewriteToCV(target)

		if token, ok := ExtractChallengeToken(activation.body); ok {
			if err := p.refreshCookie(token); err != nil {
				return "", err
			}
			continue
		}

		location, err := p.fetchLocation(ctx, target, activation.sessionCookie)
		if err != nil {
			return "", err
		}
		return location, nil
	}
	return "", fmt.Errorf("%w: challenge persisted after %d rounds", plugin.ErrCaptchaResolutionFailed, p.detailBudget)
}

type activationResult struct {
	body          string
	sessionCookie string
}

// activate 提交激活码解锁会话
func (p *CatSoStrategy) activate(ctx context.Context, referer string) (*activationResult, error) {
	form := url.Values{"code": {activationCode}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.homeURL+"/active", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	p.setHeaders(req, referer, "")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.Client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", plugin.ErrNetworkFailure, err)
	}
	body, err := util.ReadBody(resp)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", plugin.ErrNetworkFailure, err)
	}

	result := &activationResult{body: string(body)}
	for _, c := range resp.Cookies() {
		if strings.HasPrefix(c.Name, sessionCookiePrefix) {
			result.sessionCookie = c.Name + "=" + c.Value
			break
		}
	}
	return result, nil
}

// fetchLocation 不跟随重定向请求目标页，返回 Location 头
func (p *CatSoStrategy) fetchLocation(ctx context.Context, target, sessionCookie string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("create request failed: %w", err)
	}
	p.setHeaders(req, target, sessionCookie)

	resp, err := p.noRedirect.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", plugin.ErrNetworkFailure, err)
	}
	body, err := util.ReadBody(resp)
	if err != nil {
		return "", fmt.Errorf("%w: %v", plugin.ErrNetworkFailure, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		return "", fmt.Errorf("%w: unexpected status %d", plugin.ErrNetworkFailure, resp.StatusCode)
	}

	// 挑战只影响后续请求，本次的 Location 仍然有效
	if token, ok := ExtractChallengeToken(string(body)); ok {
		if err := p.refreshCookie(token); err != nil {
			p.Logger().Warn().Err(err).Msg("计算挑战Cookie失败")
		}
	}

	return resp.Header.Get("Location"), nil
}

// fetchPage 获取页面HTML
func (p *CatSoStrategy) fetchPage(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request failed: %w", err)
	}
	p.setHeaders(req, "", "")

	resp, err := p.Client().Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", plugin.ErrNetworkFailure, err)
	}
	body, err := util.ReadBody(resp)
	if err != nil {
		return "", fmt.Errorf("%w: %v", plugin.ErrNetworkFailure, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: unexpected status %d", plugin.ErrNetworkFailure, resp.StatusCode)
	}
	return string(body), nil
}

// setHeaders 设置浏览器标识、来源页和Cookie
func (p *CatSoStrategy) setHeaders(req *http.Request, referer, sessionCookie string) {
	req.Header.Set("User-Agent", UserAgent)
	if referer != "" {
		req.Header.Set("Referer", referer)
	}

	cookies := make([]string, 0, 2)
	if cookie := p.Cookie(); cookie != "" {
		cookies = append(cookies, cookie)
	}
	if sessionCookie != "" {
		cookies = append(cookies, sessionCookie)
	}
	if len(cookies) > 0 {
		req.Header.Set("Cookie", strings.Join(cookies, "; "))
	}
}

// refreshCookie 根据挑战令牌重新计算Cookie
func (p *CatSoStrategy) refreshCookie(token string) error {
	cookie, err := ChallengeCookie(token)
	if err != nil {
		return err
	}
	metrics.HandshakeRounds.WithLabelValues(p.Name()).Inc()

	p.mu.Lock()
	p.cookie = cookie
	p.mu.Unlock()
	return nil
}

// searchURL 构建搜索地址，空格编码为 %20
func (p *CatSoStrategy) searchURL(keyword string) string {
	escaped := strings.ReplaceAll(url.QueryEscape(keyword), "+", "%20")
	return p.homeURL + "/search?k=" + escaped + "&s=2&t=-1"
}

// rewriteToCV 将 /s/ 详情路径改写为 /cv/ 跳转路径
func rewriteToCV(link string) string {
	u, err := url.Parse(link)
	if err != nil || !strings.HasPrefix(u.Path, "/s/") {
		return link
	}
	u.Path = "/cv/" + strings.TrimPrefix(u.Path, "/s/")
	return u.String()
}
