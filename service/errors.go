package service

import "errors"

// 结果选择相关错误，由调用方转换为提示文本或HTTP状态码
var (
	// ErrCacheMiss 当前会话没有可供选择的搜索结果
	ErrCacheMiss = errors.New("no cached results for conversation")

	// ErrIndexOutOfRange 序号不在 [1, 结果数] 范围内
	ErrIndexOutOfRange = errors.New("result index out of range")

	// ErrEmptyKeyword 搜索关键词为空
	ErrEmptyKeyword = errors.New("keyword is empty")
)

// 管理接口相关错误
var (
	// ErrUnauthorized 令牌缺失、无效或已过期
	ErrUnauthorized = errors.New("unauthorized")

	// ErrAuthDisabled 未配置 JWT_SECRET，无法签发令牌
	ErrAuthDisabled = errors.New("admin auth is not configured")
)
