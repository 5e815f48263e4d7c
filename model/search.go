package model

import "strings"

// SearchSource 搜索源标识
type SearchSource string

const (
	SourceUpSo  SearchSource = "upso"
	SourceCatSo SearchSource = "catso"
)

// SentinelItemID 上游返回的占位条目ID，需始终过滤
const SentinelItemID = "-1"

// UnresolvedLink 详情链接解析失败时的占位链接
const UnresolvedLink = "not resolved"

// AllSources 返回所有已知搜索源（按展示顺序）
func AllSources() []SearchSource {
	return []SearchSource{SourceUpSo, SourceCatSo}
}

// ParseSearchSource 将用户输入解析为搜索源，不区分大小写
func ParseSearchSource(input string) (SearchSource, bool) {
	source := SearchSource(strings.ToLower(strings.TrimSpace(input)))
	for _, s := range AllSources() {
		if s == source {
			return s, true
		}
	}
	return "", false
}

// SearchRequest 发往单个搜索源的请求参数
type SearchRequest struct {
	Keyword          string
	Page             int
	SearchType       int
	Origin           int
	VerificationCode string
}

// SearchResult 归一化后的搜索结果
type SearchResult struct {
	Title        string `json:"title" sonic:"title"`
	Link         string `json:"link" sonic:"link"`
	SourceItemID string `json:"source_item_id,omitempty" sonic:"source_item_id,omitempty"`
}

// IsSentinel 判断是否为上游占位条目
func (r SearchResult) IsSentinel() bool {
	return r.SourceItemID == SentinelItemID
}
