package service

import (
	"sync"

	"panbot/model"
)

// SourceSelector 进程内共享的当前搜索源，切换后对所有会话立即生效
type SourceSelector struct {
	mu      sync.RWMutex
	current model.SearchSource
}

// NewSourceSelector 创建选择器，默认源为空时使用 UpSo
func NewSourceSelector(initial model.SearchSource) *SourceSelector {
	if initial == "" {
		initial = model.SourceUpSo
	}
	return &SourceSelector{current: initial}
}

// Current 返回当前搜索源
func (s *SourceSelector) Current() model.SearchSource {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Set 切换当前搜索源
func (s *SourceSelector) Set(source model.SearchSource) {
	s.mu.Lock()
	s.current = source
	s.mu.Unlock()
}
