package cache

import (
	"sync"
	"time"
)

// CodeCache 保存单个搜索源最近一次识别出的验证码，过期后视为不存在
type CodeCache struct {
	mutex     sync.Mutex
	value     string
	expiresAt time.Time
	ttl       time.Duration
	now       func() time.Time
}

// NewCodeCache 创建验证码缓存
func NewCodeCache(ttl time.Duration) *CodeCache {
	return &CodeCache{ttl: ttl, now: time.Now}
}

// Set 保存新验证码并重新计算过期时间
func (c *CodeCache) Set(code string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.value = code
	c.expiresAt = c.now().Add(c.ttl)
}

// Get 获取未过期的验证码，过期的验证码会被清除
func (c *CodeCache) Get() (string, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.value == "" {
		return "", false
	}
	if c.now().After(c.expiresAt) {
		c.value = ""
		c.expiresAt = time.Time{}
		return "", false
	}
	return c.value, true
}

// ExpiresAt 返回当前验证码的过期时间，无验证码时返回零值
func (c *CodeCache) ExpiresAt() time.Time {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.expiresAt
}

// Clear 清除验证码
func (c *CodeCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.value = ""
	c.expiresAt = time.Time{}
}

// CleanExpired 清除已过期的验证码，返回是否发生清除
func (c *CodeCache) CleanExpired() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.value != "" && c.now().After(c.expiresAt) {
		c.value = ""
		c.expiresAt = time.Time{}
		return true
	}
	return false
}
