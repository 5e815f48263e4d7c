package plugin

import (
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// BaseStrategy 策略公共部分：名称、HTTP客户端和带来源字段的日志
type BaseStrategy struct {
	name   string
	client *http.Client
	logger zerolog.Logger
}

// NewBaseStrategy 创建策略基础结构
func NewBaseStrategy(name string, client *http.Client) *BaseStrategy {
	if client == nil {
		client = http.DefaultClient
	}
	return &BaseStrategy{
		name:   name,
		client: client,
		logger: log.With().Str("source", name).Logger(),
	}
}

// Name 返回策略名称
func (p *BaseStrategy) Name() string {
	return p.name
}

// Client 返回HTTP客户端
func (p *BaseStrategy) Client() *http.Client {
	return p.client
}

// Logger 返回带来源字段的日志
func (p *BaseStrategy) Logger() *zerolog.Logger {
	return &p.logger
}
