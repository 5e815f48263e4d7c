package service

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"panbot/util/cache"
)

// DefaultSweepSpec 默认清理周期
const DefaultSweepSpec = "@every 5m"

// CacheSweeper 定期清理过期的会话结果和验证码
type CacheSweeper struct {
	cron   *cron.Cron
	search *SearchService
	codes  []*cache.CodeCache
	spec   string
}

// NewCacheSweeper 创建清理任务，spec 为空时使用 DefaultSweepSpec
func NewCacheSweeper(search *SearchService, spec string, codes ...*cache.CodeCache) *CacheSweeper {
	if spec == "" {
		spec = DefaultSweepSpec
	}
	return &CacheSweeper{
		cron:   cron.New(),
		search: search,
		codes:  codes,
		spec:   spec,
	}
}

// Start 注册并启动定时任务
func (s *CacheSweeper) Start() error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.RunOnce() }); err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}
	s.cron.Start()
	log.Info().Str("spec", s.spec).Msg("缓存清理任务已启动")
	return nil
}

// Stop 停止定时任务并等待正在执行的清理完成
func (s *CacheSweeper) Stop() {
	<-s.cron.Stop().Done()
}

// RunOnce 执行一次清理，返回清理的会话数和验证码数
func (s *CacheSweeper) RunOnce() (int, int) {
	results := s.search.CleanExpiredResults()

	codes := 0
	for _, c := range s.codes {
		if c != nil && c.CleanExpired() {
			codes++
		}
	}

	if results > 0 || codes > 0 {
		log.Debug().Int("results", results).Int("codes", codes).Msg("已清理过期缓存")
	}
	return results, codes
}
