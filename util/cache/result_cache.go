package cache

import (
	"sync"
	"time"

	"panbot/model"
)

// 会话结果缓存项
type resultCacheItem struct {
	source   model.SearchSource
	results  []model.SearchResult
	expiry   time.Time
	lastUsed time.Time
}

// ResultEntry 某个会话最近一次搜索的结果
type ResultEntry struct {
	Source  model.SearchSource
	Results []model.SearchResult
}

// ResultCache 按会话保存最近一次搜索结果，供按序号选择使用
type ResultCache struct {
	items    map[int64]*resultCacheItem
	mutex    sync.Mutex
	maxItems int
	ttl      time.Duration
	now      func() time.Time
}

// NewResultCache 创建会话结果缓存，maxItems<=0 表示不限制会话数，ttl<=0 表示不过期
func NewResultCache(maxItems int, ttl time.Duration) *ResultCache {
	return &ResultCache{
		items:    make(map[int64]*resultCacheItem),
		maxItems: maxItems,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Set 整体替换会话的结果列表
func (c *ResultCache) Set(conversationID int64, source model.SearchSource, results []model.SearchResult) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := c.now()
	copied := make([]model.SearchResult, len(results))
	copy(copied, results)

	item := &resultCacheItem{
		source:   source,
		results:  copied,
		lastUsed: now,
	}
	if c.ttl > 0 {
		item.expiry = now.Add(c.ttl)
	}

	if _, exists := c.items[conversationID]; !exists && c.maxItems > 0 && len(c.items) >= c.maxItems {
		c.evict()
	}
	c.items[conversationID] = item
}

// Get 获取会话的结果列表，序号从1开始对应切片下标0
func (c *ResultCache) Get(conversationID int64) (ResultEntry, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	item, exists := c.items[conversationID]
	if !exists {
		return ResultEntry{}, false
	}
	now := c.now()
	if c.expired(item, now) {
		delete(c.items, conversationID)
		return ResultEntry{}, false
	}
	item.lastUsed = now

	results := make([]model.SearchResult, len(item.results))
	copy(results, item.results)
	return ResultEntry{Source: item.source, Results: results}, true
}

// Len 返回当前缓存的会话数
func (c *ResultCache) Len() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.items)
}

// CleanExpired 清理过期项，返回清理数量
func (c *ResultCache) CleanExpired() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := c.now()
	removed := 0
	for k, v := range c.items {
		if c.expired(v, now) {
			delete(c.items, k)
			removed++
		}
	}
	return removed
}

func (c *ResultCache) expired(item *resultCacheItem, now time.Time) bool {
	return !item.expiry.IsZero() && now.After(item.expiry)
}

// 驱逐策略 - LRU
func (c *ResultCache) evict() {
	var oldestKey int64
	var oldestTime time.Time
	found := false

	for k, v := range c.items {
		if !found || v.lastUsed.Before(oldestTime) {
			oldestKey = k
			oldestTime = v.lastUsed
			found = true
		}
	}

	if found {
		delete(c.items, oldestKey)
	}
}
