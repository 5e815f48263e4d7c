package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// SearchRequests 按搜索源和结果统计搜索次数
	SearchRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "panbot_search_requests_total",
			Help: "Total number of search calls by source and outcome.",
		},
		[]string{"source", "outcome"},
	)

	// CaptchaRecoveries 验证码恢复（OCR识别）次数
	CaptchaRecoveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "panbot_captcha_recoveries_total",
			Help: "Total number of verification-code recovery rounds.",
		},
		[]string{"source"},
	)

	// HandshakeRounds Cookie握手次数
	HandshakeRounds = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "panbot_cookie_handshakes_total",
			Help: "Total number of challenge cookie handshakes.",
		},
		[]string{"source"},
	)

	// DetailResolutions 详情链接解析结果
	DetailResolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "panbot_detail_resolutions_total",
			Help: "Total number of detail link resolutions by outcome.",
		},
		[]string{"source", "outcome"},
	)

	// ResultCacheConversations 当前缓存的会话数
	ResultCacheConversations = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "panbot_result_cache_conversations",
			Help: "Number of conversations holding cached search results.",
		},
	)
)

func init() {
	prometheus.MustRegister(SearchRequests, CaptchaRecoveries, HandshakeRounds, DetailResolutions, ResultCacheConversations)
}
